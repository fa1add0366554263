package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid execution context")

	// Subscription engine errors
	ErrInvalidPlanConfiguration = errors.New("invalid plan configuration")
	ErrMissingMealSelection     = errors.New("missing meal selection")
	ErrMealNotOffered           = errors.New("meal not offered")
	ErrInvalidStatusTransition  = errors.New("invalid status transition")
	ErrSubscriptionNotDeletable = errors.New("subscription not deletable")
	ErrPricingMismatch          = errors.New("stored pricing does not match recomputed split")
	ErrRequestInProgress        = errors.New("request already in progress")
)

// ValidationError reports malformed input per field. It unwraps to ErrInvalidArgument.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records a message for field. The first message for a field wins.
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) HasErrors() bool { return e != nil && len(e.Fields) > 0 }

// OrNil returns nil when no field errors were recorded.
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }
