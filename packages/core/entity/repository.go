package entity

import (
	"context"

	Error "entiq/packages/common/errors"
	"entiq/packages/core/query"
)

// A stored entity instance. The id field is always present under "id".
type Record = map[string]any

const IDField = "id"

// Repository is the capability interface every backend adapter
// implements. The engine receives an implementation as an explicit
// dependency, it is never looked up from ambient global state.
type Repository interface {
	// Create persists the record and returns its id.
	// Unique violations surface as conflict with the offending field.
	Create(ctx context.Context, entity string, record Record) (string, *Error.Status)

	GetByID(ctx context.Context, entity string, id string) (Record, *Error.Status)

	// GetAll returns the requested page plus the total count of all
	// matching records ignoring pagination.
	GetAll(ctx context.Context, q *query.Query) ([]Record, int64, *Error.Status)

	Update(ctx context.Context, entity string, id string, changes Record) *Error.Status

	Delete(ctx context.Context, entity string, id string) *Error.Status

	// EnsureUniqueIndexes installs unique constraints for the given
	// fields, immediate-consistency backends delegate to native
	// indexes.
	EnsureUniqueIndexes(ctx context.Context, entity string, fields []string) *Error.Status

	// Whether the store cascades deletes through native foreign keys.
	// When false the synthetic cascade helper drives the walk.
	SupportsNativeCascade() bool

	// DeleteWithCascade removes the record and every record
	// transitively referencing it. Deleting an id that is already gone
	// is a no-op, not an error.
	DeleteWithCascade(ctx context.Context, entity string, id string) *Error.Status
}
