package mongodb

import (
	"testing"

	"entiq/packages/core/filter"
	"entiq/packages/core/meta"
	"entiq/packages/core/query"

	"go.mongodb.org/mongo-driver/bson"
)

var testEntity = &meta.EntityDescriptor{
	Name: "User",
	Fields: []meta.FieldDescriptor{
		{Name: "id", Type: meta.TypeObjectID},
		{Name: "username", Type: meta.TypeString},
		{Name: "role", Type: meta.TypeString, IsEnum: true, EnumValues: []string{"admin", "user"}},
		{Name: "netWorth", Type: meta.TypeNumber},
		{Name: "dob", Type: meta.TypeDate},
	},
}

func eq(field string, raw string, value any) filter.Condition {
	return filter.Condition{Field: field, Op: filter.Equal, Raw: raw, Value: value}
}

func fieldClause(t *testing.T, out bson.M, field string) bson.M {
	t.Helper()
	clause, ok := out[field].(bson.M)
	if !ok {
		t.Fatalf("missing clause for %s: %v", field, out)
	}
	return clause
}

func TestFilterSubstring(t *testing.T) {
	out := buildFilter(testEntity, []filter.Condition{eq("username", "mar", "mar")}, filter.MatchSubstring, false)

	clause := fieldClause(t, out, "username")
	if clause["$regex"] != "mar" {
		t.Errorf("substring regex must be anchorless, got %v", clause["$regex"])
	}
	if clause["$options"] != "i" {
		t.Errorf("substring match must fold case, got %v", clause["$options"])
	}
}

func TestFilterFullMatch(t *testing.T) {
	out := buildFilter(testEntity, []filter.Condition{eq("username", "mark", "mark")}, filter.MatchFull, false)

	clause := fieldClause(t, out, "username")
	if clause["$regex"] != "^mark$" {
		t.Errorf("full match regex must be anchored, got %v", clause["$regex"])
	}
}

func TestFilterEscapesRegexMetacharacters(t *testing.T) {
	out := buildFilter(testEntity, []filter.Condition{eq("username", "a.b*", "a.b*")}, filter.MatchSubstring, false)

	clause := fieldClause(t, out, "username")
	if clause["$regex"] != `a\.b\*` {
		t.Errorf("user input must never act as a pattern, got %v", clause["$regex"])
	}
}

func TestFilterEnumAlwaysAnchored(t *testing.T) {
	for _, mode := range []filter.MatchMode{filter.MatchSubstring, filter.MatchFull} {
		out := buildFilter(testEntity, []filter.Condition{eq("role", "ADMIN", "ADMIN")}, mode, true)

		clause := fieldClause(t, out, "role")
		if clause["$regex"] != "^ADMIN$" {
			t.Errorf("mode %s: enum match must be whole-value, got %v", mode, clause["$regex"])
		}
		// Enum comparison ignores the collation flag.
		if clause["$options"] != "i" {
			t.Errorf("mode %s: enum match must fold case, got %v", mode, clause["$options"])
		}
	}
}

func TestFilterIDLiteral(t *testing.T) {
	out := buildFilter(testEntity, []filter.Condition{eq("id", "u-01", "u-01")}, filter.MatchSubstring, false)

	if out["id"] != "u-01" {
		t.Errorf("identifier equality must be literal, got %v", out["id"])
	}
}

func TestFilterNumericRangePair(t *testing.T) {
	out := buildFilter(testEntity, []filter.Condition{
		{Field: "netWorth", Op: filter.GreaterOrEqual, Raw: "100", Value: int64(100)},
		{Field: "netWorth", Op: filter.Less, Raw: "5000", Value: int64(5000)},
	}, filter.MatchSubstring, false)

	clauses, ok := out["$and"].([]bson.M)
	if !ok {
		t.Fatalf("range pair on one field must AND-compose, got %v", out)
	}
	if len(clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %d", len(clauses))
	}

	lower := fieldClause(t, clauses[0], "netWorth")
	if lower["$gte"] != int64(100) {
		t.Errorf("lower bound = %v", lower)
	}
	upper := fieldClause(t, clauses[1], "netWorth")
	if upper["$lt"] != int64(5000) {
		t.Errorf("upper bound = %v", upper)
	}
}

func TestDateConditionsAreNotPushedDown(t *testing.T) {
	conds := []filter.Condition{
		eq("username", "mark", "mark"),
		eq("dob", "2000-01-01", "2000-01-01"),
		{Field: "dob", Op: filter.Less, Raw: "2010-01-01", Value: "2010-01-01"},
	}

	native, deferred := splitPushdown(testEntity, conds)

	if len(native) != 1 || native[0].Field != "username" {
		t.Fatalf("expected only the string condition pushed down, got %v", native)
	}
	if len(deferred) != 2 {
		t.Fatalf("expected both date conditions deferred, got %v", deferred)
	}

	out := buildFilter(testEntity, native, filter.MatchSubstring, false)
	if _, ok := out["dob"]; ok {
		t.Errorf("native predicate must not constrain the date field, got %v", out)
	}

	// A midnight datetime equals its bare date in the evaluator, which
	// a raw string predicate can never reproduce. The deferred
	// conditions run through the evaluator instead.
	record := map[string]any{"dob": "2000-01-01T00:00:00Z", "username": "mark"}
	if !filter.Matches(record, conds, filter.MatchSubstring, testEntity, false) {
		t.Error("evaluator must match the midnight datetime against the bare date")
	}
}

func TestHasDateSort(t *testing.T) {
	if !hasDateSort(testEntity, []query.SortField{{Field: "dob"}}) {
		t.Error("declared date field must force in-memory sorting")
	}
	if hasDateSort(testEntity, []query.SortField{{Field: "username"}}) {
		t.Error("string sort stays native")
	}
}

func TestFilterEmpty(t *testing.T) {
	out := buildFilter(testEntity, nil, filter.MatchSubstring, false)

	if len(out) != 0 {
		t.Errorf("no conditions must produce an empty filter, got %v", out)
	}
}

func TestSortIncludesTieBreak(t *testing.T) {
	sort := buildSort([]query.SortField{
		{Field: "lastName"},
		{Field: "netWorth", Desc: true},
	})

	if len(sort) != 3 {
		t.Fatalf("expected 3 sort keys, got %d", len(sort))
	}
	if sort[0].Key != "lastName" || sort[0].Value != 1 {
		t.Errorf("sort[0] = %+v", sort[0])
	}
	if sort[1].Key != "netWorth" || sort[1].Value != -1 {
		t.Errorf("sort[1] = %+v", sort[1])
	}
	if sort[2].Key != "id" || sort[2].Value != 1 {
		t.Errorf("id must be the final tie-break, got %+v", sort[2])
	}
}
