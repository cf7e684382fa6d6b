package elastic

import (
	"testing"

	"entiq/packages/core/filter"
	"entiq/packages/core/meta"
)

var testEntity = &meta.EntityDescriptor{
	Name: "User",
	Fields: []meta.FieldDescriptor{
		{Name: "id", Type: meta.TypeObjectID},
		{Name: "username", Type: meta.TypeString},
		{Name: "netWorth", Type: meta.TypeNumber},
		{Name: "dob", Type: meta.TypeDate},
	},
}

func TestQueryPushesDownNumericRanges(t *testing.T) {
	q := buildSearchQuery(testEntity, []filter.Condition{
		{Field: "netWorth", Op: filter.GreaterOrEqual, Raw: "100", Value: int64(100)},
		{Field: "netWorth", Op: filter.Less, Raw: "5000", Value: int64(5000)},
	})

	boolQuery, ok := q["bool"].(map[string]any)
	if !ok {
		t.Fatalf("expected bool query, got %v", q)
	}

	clauses, ok := boolQuery["filter"].([]map[string]any)
	if !ok || len(clauses) != 2 {
		t.Fatalf("both bounds must push down, got %v", boolQuery["filter"])
	}

	lower := clauses[0]["range"].(map[string]any)["netWorth"].(map[string]any)
	if lower["gte"] != int64(100) {
		t.Errorf("lower bound = %v", lower)
	}
	upper := clauses[1]["range"].(map[string]any)["netWorth"].(map[string]any)
	if upper["lt"] != int64(5000) {
		t.Errorf("upper bound = %v", upper)
	}
}

func TestQueryKeepsDateRangesInMemory(t *testing.T) {
	// A keyword index orders "2000-01-01T00:00:00Z" after "2000-01-01"
	// while the comparator treats them as the same instant, so a
	// pushed-down bound would exclude records the evaluator matches.
	q := buildSearchQuery(testEntity, []filter.Condition{
		{Field: "dob", Op: filter.LessOrEqual, Raw: "2000-01-01", Value: "2000-01-01"},
	})

	if _, ok := q["match_all"]; !ok {
		t.Errorf("date ranges must not push down, got %v", q)
	}
}

func TestQueryKeepsEqualityInMemory(t *testing.T) {
	q := buildSearchQuery(testEntity, []filter.Condition{
		{Field: "username", Op: filter.Equal, Raw: "mark", Value: "mark"},
	})

	if _, ok := q["match_all"]; !ok {
		t.Errorf("equality must not push down, got %v", q)
	}
}

func TestQuerySkipsNonCoercibleBounds(t *testing.T) {
	q := buildSearchQuery(testEntity, []filter.Condition{
		{Field: "netWorth", Op: filter.Greater, Raw: "abc", Value: "abc"},
	})

	if _, ok := q["match_all"]; !ok {
		t.Errorf("a bound that does not coerce stays in memory, got %v", q)
	}
}

func TestQueryEmptyFilters(t *testing.T) {
	q := buildSearchQuery(testEntity, nil)

	if _, ok := q["match_all"]; !ok {
		t.Errorf("no conditions must produce match_all, got %v", q)
	}
}

func TestSearchBodyCapsFetchSize(t *testing.T) {
	body := buildSearchBody(testEntity, nil)

	if body["size"] != fetchCap {
		t.Errorf("size = %v, want %d", body["size"], fetchCap)
	}
}

func TestSearchBodySortsByIDForScanContinuation(t *testing.T) {
	body := buildSearchBody(testEntity, nil)

	sortSpec, ok := body["sort"].([]map[string]any)
	if !ok || len(sortSpec) != 1 {
		t.Fatalf("scan must sort by a single key, got %v", body["sort"])
	}
	if sortSpec[0]["id"] != "asc" {
		t.Errorf("scan must be keyed by ascending id, got %v", sortSpec[0])
	}
}
