package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Transactor runs fn inside a multi-document transaction. Repositories called
// with the ctx handed to fn take part in the transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoTransactor struct {
	client *mongo.Client
}

func NewTransactor(client *mongo.Client) Transactor {
	return &mongoTransactor{client: client}
}

func (t *mongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	sessionCtx := mongo.NewSessionContext(ctx, session)
	if err := session.StartTransaction(); err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	if err := fn(sessionCtx); err != nil {
		if abortErr := session.AbortTransaction(sessionCtx); abortErr != nil {
			return fmt.Errorf("%w (abort failed: %v)", err, abortErr)
		}
		return err
	}

	if err := session.CommitTransaction(sessionCtx); err != nil {
		_ = session.AbortTransaction(sessionCtx)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
