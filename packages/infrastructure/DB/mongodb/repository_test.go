package mongodb

import (
	"testing"

	Error "entiq/packages/common/errors"
	"entiq/packages/core/entity"

	"go.mongodb.org/mongo-driver/mongo"
)

func duplicateKeyError(message string) error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: message,
	}}}
}

func TestMapErrorNamedUniqueIndex(t *testing.T) {
	err := duplicateKeyError(`E11000 duplicate key error collection: entiq.user index: uq_username dup key: { username: "mark" }`)

	status := mapError(err, "User", "Create")

	if status.Code() != Error.Conflict {
		t.Fatalf("code = %v, want conflict", status.Code())
	}
	if status.Field() != "username" {
		t.Errorf("field = %q, want username", status.Field())
	}
}

func TestMapErrorDuplicateID(t *testing.T) {
	err := duplicateKeyError(`E11000 duplicate key error collection: entiq.user index: _id_ dup key: { _id: "u-01" }`)

	status := mapError(err, "User", "Create")

	if status.Code() != Error.Conflict {
		t.Fatalf("duplicate _id must be a conflict, got %v", status.Code())
	}
	if status.Field() != entity.IDField {
		t.Errorf("field = %q, want %s", status.Field(), entity.IDField)
	}
}
