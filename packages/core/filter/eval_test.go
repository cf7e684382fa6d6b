package filter

import (
	"testing"

	"entiq/packages/core/meta"
)

var userEntity = &meta.EntityDescriptor{
	Name: "User",
	Fields: []meta.FieldDescriptor{
		{Name: "id", Type: meta.TypeObjectID},
		{Name: "username", Type: meta.TypeString},
		{Name: "role", Type: meta.TypeString, IsEnum: true, EnumValues: []string{"admin", "user"}},
		{Name: "netWorth", Type: meta.TypeNumber},
		{Name: "isActive", Type: meta.TypeBoolean},
		{Name: "dob", Type: meta.TypeDate},
	},
}

func users() []map[string]any {
	return []map[string]any{
		{"id": "1", "username": "mark", "role": "admin", "netWorth": 50000.0, "isActive": true, "dob": "1990-04-01"},
		{"id": "2", "username": "mary", "role": "user", "netWorth": 75000.0, "isActive": false, "dob": "1985-09-12"},
		{"id": "3", "username": "marcus", "role": "User", "netWorth": 20000.0, "isActive": true, "dob": "2000-01-30"},
		{"id": "4", "username": "bob", "role": "admin", "netWorth": 50000.0, "isActive": true, "dob": "1990-04-01"},
	}
}

func filterUsers(t *testing.T, conds []Condition, mode MatchMode) []string {
	t.Helper()

	var ids []string
	for _, u := range users() {
		if Matches(u, conds, mode, userEntity, false) {
			ids = append(ids, u["id"].(string))
		}
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSubstringVsFullMatch(t *testing.T) {
	conds := []Condition{{Field: "username", Op: Equal, Raw: "mar", Value: "mar"}}

	t.Run("substring matches all three", func(t *testing.T) {
		got := filterUsers(t, conds, MatchSubstring)
		if !equalIDs(got, []string{"1", "2", "3"}) {
			t.Errorf("substring match = %v, want [1 2 3]", got)
		}
	})

	t.Run("full match is empty", func(t *testing.T) {
		got := filterUsers(t, conds, MatchFull)
		if len(got) != 0 {
			t.Errorf("full match = %v, want empty", got)
		}
	})

	t.Run("full never returns more than substring", func(t *testing.T) {
		for _, needle := range []string{"mar", "mark", "MARK", "a", ""} {
			c := []Condition{{Field: "username", Op: Equal, Raw: needle, Value: needle}}
			full := filterUsers(t, c, MatchFull)
			sub := filterUsers(t, c, MatchSubstring)
			if len(full) > len(sub) {
				t.Errorf("needle %q: full returned %d, substring %d", needle, len(full), len(sub))
			}
		}
	})
}

func TestEnumAlwaysExact(t *testing.T) {
	// Substring mode and full mode must produce identical results on
	// enum fields.
	conds := []Condition{{Field: "role", Op: Equal, Raw: "user", Value: "user"}}

	sub := filterUsers(t, conds, MatchSubstring)
	full := filterUsers(t, conds, MatchFull)

	if !equalIDs(sub, full) {
		t.Errorf("enum filter differs by mode: substring=%v full=%v", sub, full)
	}
	// Case-insensitive: matches both "user" and "User"
	if !equalIDs(sub, []string{"2", "3"}) {
		t.Errorf("enum match = %v, want [2 3]", sub)
	}

	// "adm" is not a member, exact matching means no substring hit
	partial := []Condition{{Field: "role", Op: Equal, Raw: "adm", Value: "adm"}}
	if got := filterUsers(t, partial, MatchSubstring); len(got) != 0 {
		t.Errorf("partial enum value matched %v, want empty", got)
	}
}

func TestRangeOperators(t *testing.T) {
	tests := []struct {
		name  string
		conds []Condition
		want  []string
	}{
		{
			"gte",
			[]Condition{{Field: "netWorth", Op: GreaterOrEqual, Raw: "50000", Value: int64(50000)}},
			[]string{"1", "2", "4"},
		},
		{
			"gt excludes boundary",
			[]Condition{{Field: "netWorth", Op: Greater, Raw: "50000", Value: int64(50000)}},
			[]string{"2"},
		},
		{
			"range conjunction equals eq",
			[]Condition{
				{Field: "netWorth", Op: GreaterOrEqual, Raw: "50000", Value: int64(50000)},
				{Field: "netWorth", Op: LessOrEqual, Raw: "50000", Value: int64(50000)},
			},
			[]string{"1", "4"},
		},
		{
			"date range",
			[]Condition{{Field: "dob", Op: Less, Raw: "1990-01-01", Value: "1990-01-01"}},
			[]string{"2"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := filterUsers(t, tc.conds, MatchSubstring)
			if !equalIDs(got, tc.want) {
				t.Errorf("filter = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRangeEqRoundTrip(t *testing.T) {
	// gte:X AND lte:X must select exactly the records eq:X selects.
	ranged := []Condition{
		{Field: "netWorth", Op: GreaterOrEqual, Raw: "50000", Value: int64(50000)},
		{Field: "netWorth", Op: LessOrEqual, Raw: "50000", Value: int64(50000)},
	}
	exact := []Condition{{Field: "netWorth", Op: Equal, Raw: "50000", Value: int64(50000)}}

	if got, want := filterUsers(t, ranged, MatchSubstring), filterUsers(t, exact, MatchSubstring); !equalIDs(got, want) {
		t.Errorf("range pair = %v, eq = %v, expected identical", got, want)
	}
}

func TestBooleanAndIDMatching(t *testing.T) {
	t.Run("boolean eq", func(t *testing.T) {
		conds := []Condition{{Field: "isActive", Op: Equal, Raw: "false", Value: false}}
		if got := filterUsers(t, conds, MatchSubstring); !equalIDs(got, []string{"2"}) {
			t.Errorf("boolean filter = %v, want [2]", got)
		}
	})

	t.Run("id is literal even in substring mode", func(t *testing.T) {
		conds := []Condition{{Field: "id", Op: Equal, Raw: "1", Value: int64(1)}}
		if got := filterUsers(t, conds, MatchSubstring); !equalIDs(got, []string{"1"}) {
			t.Errorf("id filter = %v, want [1]", got)
		}
	})
}

func TestMissingFieldNeverMatchesEqual(t *testing.T) {
	record := map[string]any{"id": "9"}
	conds := []Condition{{Field: "username", Op: Equal, Raw: "mark", Value: "mark"}}

	if Matches(record, conds, MatchSubstring, userEntity, false) {
		t.Error("record without the field must not match eq")
	}
}
