package repository

import (
	"errors"

	"github.com/agentdouble/kpix/engine"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// translate maps driver errors onto the engine error taxonomy.
func translate(err error, resource string, id primitive.ObjectID) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return &engine.NotFoundError{Resource: resource, ID: hexOrEmpty(id)}
	case mongo.IsDuplicateKeyError(err):
		return &engine.ConflictError{Resource: resource, Message: "already exists"}
	default:
		return err
	}
}

func notFound(resource string, id primitive.ObjectID) error {
	return &engine.NotFoundError{Resource: resource, ID: hexOrEmpty(id)}
}

func hexOrEmpty(id primitive.ObjectID) string {
	if id.IsZero() {
		return ""
	}
	return id.Hex()
}
