package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Dashboard struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID  `json:"organization_id" bson:"organization_id"`
	OwnerID        *primitive.ObjectID `json:"owner_id" bson:"owner_id,omitempty"`
	Title          string              `json:"title" bson:"title"`
	Description    string              `json:"description,omitempty" bson:"description,omitempty"`
	ProcessName    string              `json:"process_name,omitempty" bson:"process_name,omitempty"`
	Metadata       Metadata            `json:"metadata" bson:"metadata"`
}
