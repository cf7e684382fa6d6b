package sortspec

import (
	"testing"

	"entiq/packages/core/meta"
	"entiq/packages/core/query"
)

var personEntity = &meta.EntityDescriptor{
	Name: "Person",
	Fields: []meta.FieldDescriptor{
		{Name: "lastName", Type: meta.TypeString},
		{Name: "firstName", Type: meta.TypeString},
		{Name: "age", Type: meta.TypeNumber},
	},
}

func names(records []map[string]any) []string {
	var out []string
	for _, r := range records {
		last, _ := r["lastName"].(string)
		first, _ := r["firstName"].(string)
		out = append(out, last+"/"+first)
	}
	return out
}

func TestApplyMultiField(t *testing.T) {
	records := []map[string]any{
		{"lastName": "smith", "firstName": "zoe", "age": 31.0},
		{"lastName": "adams", "firstName": "tom", "age": 40.0},
		{"lastName": "Smith", "firstName": "anna", "age": 25.0},
		{"lastName": "adams", "firstName": "bea", "age": 22.0},
	}

	spec := []query.SortField{
		{Field: "lastName"},
		{Field: "firstName"},
	}

	Apply(records, spec, personEntity, false)

	want := []string{"adams/bea", "adams/tom", "Smith/anna", "smith/zoe"}
	got := names(records)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	if !VerifyOrder(records, spec, personEntity, false) {
		t.Error("VerifyOrder rejected the order Apply produced")
	}
}

func TestApplyDescending(t *testing.T) {
	records := []map[string]any{
		{"lastName": "a", "firstName": "x", "age": 10.0},
		{"lastName": "b", "firstName": "y", "age": 30.0},
		{"lastName": "c", "firstName": "z", "age": 20.0},
	}

	spec := []query.SortField{{Field: "age", Desc: true}}

	Apply(records, spec, personEntity, false)

	if records[0]["age"] != 30.0 || records[2]["age"] != 10.0 {
		t.Errorf("descending order = %v", names(records))
	}
	if !VerifyOrder(records, spec, personEntity, false) {
		t.Error("VerifyOrder rejected descending order")
	}
}

func TestStableTies(t *testing.T) {
	records := []map[string]any{
		{"lastName": "same", "firstName": "first", "age": 1.0},
		{"lastName": "same", "firstName": "second", "age": 2.0},
		{"lastName": "same", "firstName": "third", "age": 3.0},
	}

	spec := []query.SortField{{Field: "lastName"}}

	Apply(records, spec, personEntity, false)

	// Ties on all sort fields preserve the incoming order.
	if records[0]["age"] != 1.0 || records[1]["age"] != 2.0 || records[2]["age"] != 3.0 {
		t.Errorf("tie order not preserved: %v", records)
	}
}

func TestVerifyOrderDetectsViolation(t *testing.T) {
	records := []map[string]any{
		{"lastName": "b", "firstName": "x"},
		{"lastName": "a", "firstName": "y"},
	}

	spec := []query.SortField{{Field: "lastName"}}

	if VerifyOrder(records, spec, personEntity, false) {
		t.Error("VerifyOrder accepted a descending pair under asc spec")
	}
}

func TestNilValuesUnconstrained(t *testing.T) {
	records := []map[string]any{
		{"lastName": "z", "firstName": "x"},
		{"lastName": nil, "firstName": "y"},
		{"lastName": "a", "firstName": "w"},
	}

	spec := []query.SortField{{Field: "lastName"}}

	// The nil row breaks the adjacency chain, so z..nil..a passes
	// even though z > a.
	if !VerifyOrder(records, spec, personEntity, false) {
		t.Error("VerifyOrder must not constrain rows with nil sort values")
	}

	// Apply still keeps nil rows in the result set, ordered first.
	Apply(records, spec, personEntity, false)
	if records[0]["lastName"] != nil {
		t.Errorf("nil should sort first, got %v", records[0]["lastName"])
	}
	if len(records) != 3 {
		t.Errorf("nil rows must not be dropped, len = %d", len(records))
	}
}
