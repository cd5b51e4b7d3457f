package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ImportJob struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID  `json:"organization_id" bson:"organization_id"`
	Type           ImportType          `json:"type" bson:"type"`
	Status         ImportStatus        `json:"status" bson:"status"`
	Filename       string              `json:"filename" bson:"filename"`
	FileID         *primitive.ObjectID `json:"file_id,omitempty" bson:"file_id,omitempty"` // GridFS file ID
	Ingested       int                 `json:"ingested" bson:"ingested"`
	ErrorMessage   string              `json:"error_message,omitempty" bson:"error_message,omitempty"`
	CreatedBy      primitive.ObjectID  `json:"created_by" bson:"created_by"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" bson:"updated_at"`
}

type ImportResult struct {
	JobID    primitive.ObjectID `json:"job_id"`
	Ingested int                `json:"ingested"`
	Failed   int                `json:"failed"`
	Errors   []string           `json:"errors"`
}
