package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment belongs to exactly one of a KPI or an action plan.
type Comment struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID  `json:"organization_id" bson:"organization_id"`
	KPIID          *primitive.ObjectID `json:"kpi_id" bson:"kpi_id,omitempty"`
	ActionPlanID   *primitive.ObjectID `json:"action_plan_id" bson:"action_plan_id,omitempty"`
	AuthorID       primitive.ObjectID  `json:"author_id" bson:"author_id"`
	Content        string              `json:"content" bson:"content"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
}
