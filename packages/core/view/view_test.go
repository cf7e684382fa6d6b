package view

import (
	"context"
	"testing"

	Error "entiq/packages/common/errors"
	"entiq/packages/core/entity"
	"entiq/packages/core/meta"
	"entiq/packages/core/query"
)

var orderEntity = &meta.EntityDescriptor{
	Name: "Order",
	Fields: []meta.FieldDescriptor{
		{Name: "id", Type: meta.TypeObjectID},
		{Name: "total", Type: meta.TypeNumber},
		{Name: "customer", Type: meta.TypeObjectID, Ref: "Customer"},
	},
}

type fixedRepo struct {
	entity.Repository

	records map[string]entity.Record
	calls   int
}

func (r *fixedRepo) GetByID(ctx context.Context, entityName string, id string) (entity.Record, *Error.Status) {
	r.calls++

	record, ok := r.records[id]
	if !ok {
		return nil, Error.StatusNotFound
	}

	return record, nil
}

func TestExpandProjectsRequestedFields(t *testing.T) {
	repo := &fixedRepo{records: map[string]entity.Record{
		"c1": {"id": "c1", "name": "Acme", "tier": "gold", "secret": "x"},
	}}

	records := []entity.Record{
		{"id": "o1", "customer": "c1"},
	}

	views := []query.ViewSpec{{Entity: "Customer", Fields: []string{"id", "name"}}}

	if err := Expand(context.Background(), repo, orderEntity, records, views); err != nil {
		t.Fatalf("Expand failed: %s", err.Error())
	}

	embedded, ok := records[0]["Customer"].(entity.Record)
	if !ok {
		t.Fatal("expected embedded Customer object")
	}

	if embedded[ExistsField] != true {
		t.Error("resolved reference must carry exists: true")
	}
	if embedded["name"] != "Acme" {
		t.Errorf("expected projected name, got %v", embedded["name"])
	}
	if _, leaked := embedded["tier"]; leaked {
		t.Error("fields outside the projection must not be embedded")
	}
}

func TestExpandMarksDanglingAndNullReferences(t *testing.T) {
	repo := &fixedRepo{records: map[string]entity.Record{}}

	records := []entity.Record{
		{"id": "o1", "customer": "gone"},
		{"id": "o2"},
	}

	views := []query.ViewSpec{{Entity: "Customer", Fields: []string{"id"}}}

	if err := Expand(context.Background(), repo, orderEntity, records, views); err != nil {
		t.Fatalf("Expand failed: %s", err.Error())
	}

	for _, record := range records {
		embedded, ok := record["Customer"].(entity.Record)
		if !ok {
			t.Fatalf("record %v: expected embedded Customer object", record["id"])
		}
		if embedded[ExistsField] != false {
			t.Errorf("record %v: expected exists: false", record["id"])
		}
	}

	// The null FK must not hit the backend at all.
	if repo.calls != 1 {
		t.Errorf("expected 1 lookup, got %d", repo.calls)
	}
}

func TestExpandWithoutViewsIsNoop(t *testing.T) {
	repo := &fixedRepo{}

	records := []entity.Record{{"id": "o1", "customer": "c1"}}

	if err := Expand(context.Background(), repo, orderEntity, records, nil); err != nil {
		t.Fatalf("Expand failed: %s", err.Error())
	}

	if repo.calls != 0 {
		t.Errorf("expected no lookups, got %d", repo.calls)
	}
	if _, ok := records[0]["Customer"]; ok {
		t.Error("no view requested, nothing should be embedded")
	}
}
