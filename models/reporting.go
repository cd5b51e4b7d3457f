package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DashboardOverview struct {
	DashboardID     primitive.ObjectID `json:"dashboard_id"`
	Title           string             `json:"title"`
	ProcessName     string             `json:"process_name,omitempty"`
	TotalKPIs       int                `json:"total_kpis"`
	StatusBreakdown map[Status]int     `json:"status_breakdown"`
	OpenActions     int                `json:"open_actions"`
	OverdueActions  int                `json:"overdue_actions"`
}

type ReportingOverview struct {
	Dashboards []DashboardOverview `json:"dashboards"`
}

// KPISnapshot is the latest known state of a KPI.
type KPISnapshot struct {
	KPIID          primitive.ObjectID `json:"kpi_id"`
	DashboardID    primitive.ObjectID `json:"dashboard_id"`
	DashboardTitle string             `json:"dashboard_title"`
	Name           string             `json:"name"`
	Status         *Status            `json:"status"`
	Value          *float64           `json:"value"`
	PeriodEnd      *time.Time         `json:"period_end"`
}

type TopRisks struct {
	Items []KPISnapshot `json:"items"`
}

type KPITrend struct {
	KPIID           primitive.ObjectID `json:"kpi_id"`
	DashboardID     primitive.ObjectID `json:"dashboard_id"`
	DashboardTitle  string             `json:"dashboard_title"`
	Name            string             `json:"name"`
	Direction       Direction          `json:"direction"`
	CurrentValue    float64            `json:"current_value"`
	PreviousValue   float64            `json:"previous_value"`
	CurrentStatus   Status             `json:"current_status"`
	PreviousStatus  Status             `json:"previous_status"`
	Delta           float64            `json:"delta"`
	DeltaNormalized float64            `json:"delta_normalized"`
}

type ActionSummary struct {
	ActionID       primitive.ObjectID `json:"action_id"`
	KPIID          primitive.ObjectID `json:"kpi_id"`
	KPIName        string             `json:"kpi_name"`
	DashboardID    primitive.ObjectID `json:"dashboard_id"`
	DashboardTitle string             `json:"dashboard_title"`
	Title          string             `json:"title"`
	Status         ActionStatus       `json:"status"`
	DueDate        *time.Time         `json:"due_date"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

type DirectionOverview struct {
	TopRedKPIs            []KPISnapshot   `json:"top_red_kpis"`
	OverdueActions        []ActionSummary `json:"overdue_actions"`
	LatestValues          []KPISnapshot   `json:"latest_values"`
	ImprovingKPIs         []KPITrend      `json:"improving_kpis"`
	WorseningKPIs         []KPITrend      `json:"worsening_kpis"`
	UpcomingActions48h    []ActionSummary `json:"upcoming_actions_48h"`
	UpcomingActions7d     []ActionSummary `json:"upcoming_actions_7d"`
	ClosedActionsThisWeek []ActionSummary `json:"closed_actions_this_week"`
}
