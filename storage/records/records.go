// Package records loads the stored patient collection as ordered raw JSON
// entries. It performs no schema validation.
package records

import (
	"context"
	"encoding/json"
)

// Source loads the whole collection. Implementations return a *LoadError on
// any failure and never return partial data.
type Source interface {
	Load(ctx context.Context) ([]json.RawMessage, error)
	Name() string
}

// LoadError reports a store that is missing, unreadable or malformed.
type LoadError struct {
	Cause error
}

func (e *LoadError) Error() string {
	return "Error loading patient data: " + e.Cause.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

func loadError(err error) error {
	return &LoadError{Cause: err}
}
