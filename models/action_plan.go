package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActionPlan struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	KPIID          primitive.ObjectID  `json:"kpi_id" bson:"kpi_id"`
	OrganizationID primitive.ObjectID  `json:"organization_id" bson:"organization_id"`
	OwnerID        *primitive.ObjectID `json:"owner_id" bson:"owner_id,omitempty"`
	Title          string              `json:"title" bson:"title"`
	Description    string              `json:"description,omitempty" bson:"description,omitempty"`
	DueDate        *time.Time          `json:"due_date" bson:"due_date,omitempty"`
	Progress       int                 `json:"progress" bson:"progress"`
	Status         ActionStatus        `json:"status" bson:"status"`
	Metadata       Metadata            `json:"metadata" bson:"metadata"`
}
