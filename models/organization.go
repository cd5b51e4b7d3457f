package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Organization struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

type User struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID `json:"organization_id" bson:"organization_id"`
	Email          string             `json:"email" bson:"email"`
	FullName       string             `json:"full_name" bson:"full_name"`
	PasswordHash   string             `json:"-" bson:"password_hash"`
	Role           Role               `json:"role" bson:"role"`
	IsActive       bool               `json:"is_active" bson:"is_active"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}
