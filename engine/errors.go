package engine

import "fmt"

// ValidationError reports malformed or inconsistent input. The caller can always
// recover by correcting the input.
type ValidationError struct {
	Field   string
	Message string
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError rejects a write that collides with an existing record,
// e.g. a second value for the same KPI period.
type ConflictError struct {
	Resource string
	Message  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Resource, e.Message)
}

// NotFoundError is returned both for missing records and for records owned by
// another organization.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}
