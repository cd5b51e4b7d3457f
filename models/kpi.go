package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type KPI struct {
	ID              primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	DashboardID     primitive.ObjectID  `json:"dashboard_id" bson:"dashboard_id"`
	OrganizationID  primitive.ObjectID  `json:"organization_id" bson:"organization_id"`
	OwnerID         *primitive.ObjectID `json:"owner_id" bson:"owner_id,omitempty"`
	Name            string              `json:"name" bson:"name"`
	Unit            string              `json:"unit,omitempty" bson:"unit,omitempty"`
	Frequency       Frequency           `json:"frequency" bson:"frequency"`
	Direction       Direction           `json:"direction" bson:"direction"`
	ThresholdGreen  float64             `json:"threshold_green" bson:"threshold_green"`
	ThresholdOrange float64             `json:"threshold_orange" bson:"threshold_orange"`
	ThresholdRed    float64             `json:"threshold_red" bson:"threshold_red"`
	IsActive        bool                `json:"is_active" bson:"is_active"`
	Metadata        Metadata            `json:"metadata" bson:"metadata"`

	// Filled on listing only, never stored.
	LatestValue     *float64   `json:"latest_value,omitempty" bson:"-"`
	LatestStatus    *Status    `json:"latest_status,omitempty" bson:"-"`
	LatestPeriodEnd *time.Time `json:"latest_period_end,omitempty" bson:"-"`
}

// KPIValue is one observation of a KPI. Values are append-only.
type KPIValue struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	KPIID          primitive.ObjectID `json:"kpi_id" bson:"kpi_id"`
	OrganizationID primitive.ObjectID `json:"organization_id" bson:"organization_id"`
	PeriodStart    time.Time          `json:"period_start" bson:"period_start"`
	PeriodEnd      time.Time          `json:"period_end" bson:"period_end"`
	Value          float64            `json:"value" bson:"value"`
	Status         Status             `json:"status" bson:"status"`
	Comment        string             `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}
