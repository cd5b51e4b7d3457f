package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID         primitive.ObjectID
	OrganizationID primitive.ObjectID
	Role           Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanEdit reports whether the caller may modify a resource with the given owner.
func (p Principal) CanEdit(owner *primitive.ObjectID) bool {
	return p.IsAdmin() || OwnedBy(owner, p.UserID)
}
