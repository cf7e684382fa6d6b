package notification

import (
	"strings"
	"testing"

	Error "entiq/packages/common/errors"

	json "github.com/json-iterator/go"
)

func TestMarshalShape(t *testing.T) {
	set := NewSet()
	set.AddError("user-1", Error.NewFieldError(Error.Conflict, "username", "Value already in use"))
	set.AddWarning("user-1", Error.NewStatusError(Error.NotFound, "Referenced account wasn't found"))
	set.AddRequestWarning(Error.NewStatusError(Error.BadRequest, "Duplicate parameter ignored"))

	raw, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	bucket, ok := decoded["user-1"].(map[string]any)
	if !ok {
		t.Fatalf("missing user-1 bucket in %s", raw)
	}

	errors, ok := bucket["errors"].([]any)
	if !ok || len(errors) != 1 {
		t.Fatalf("expected 1 error, got %v", bucket["errors"])
	}

	item := errors[0].(map[string]any)
	if item["type"] != "conflict" || item["field"] != "username" {
		t.Errorf("unexpected error item: %v", item)
	}

	warnings, ok := bucket["warnings"].([]any)
	if !ok || len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", bucket["warnings"])
	}
	if field, present := warnings[0].(map[string]any)["field"]; present && field != "" {
		t.Errorf("entity-scoped warning must not carry a field, got %v", field)
	}

	reqWarnings, ok := decoded[RequestWarningsKey].([]any)
	if !ok || len(reqWarnings) != 1 {
		t.Fatalf("expected request_warnings array, got %v", decoded[RequestWarningsKey])
	}
}

func TestEmptyBucketsMarshalAsArrays(t *testing.T) {
	set := NewSet()
	set.AddError("u1", Error.NewStatusError(Error.NotFound, "gone"))

	raw, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if !strings.Contains(string(raw), `"warnings":[]`) {
		t.Errorf("empty warnings must serialize as [], got %s", raw)
	}
}

func TestMessageIsCapped(t *testing.T) {
	item := ItemFromStatus(Error.NewStatusError(Error.Internal, strings.Repeat("y", 500)))

	if len(item.Message) > Error.MaxMessageLength {
		t.Errorf("message length %d exceeds cap", len(item.Message))
	}
}

func TestIsEmpty(t *testing.T) {
	set := NewSet()
	if !set.IsEmpty() {
		t.Error("fresh set should be empty")
	}

	set.AddRequestWarning(Error.NewStatusError(Error.BadRequest, "w"))
	if set.IsEmpty() {
		t.Error("set with request warning should not be empty")
	}
}
