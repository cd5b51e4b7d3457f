package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Metadata struct {
	CreatedBy string    `json:"created_by" bson:"created_by"`
	UpdatedBy string    `json:"updated_by" bson:"updated_by"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// OwnedBy reports whether a resource with the given owner may be edited by userID.
// Unowned resources are editable by everyone in the organization.
func OwnedBy(owner *primitive.ObjectID, userID primitive.ObjectID) bool {
	return owner == nil || *owner == userID
}
