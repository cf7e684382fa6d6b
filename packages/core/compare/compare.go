// Type-aware total-order comparison shared by sort-order validation
// and filter-range evaluation. Comparators never fail on malformed
// data, they degrade to plain string comparison.
package compare

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"entiq/packages/core/meta"
)

type Kind int8

const (
	KindString Kind = iota
	KindNumber
	KindBoolean
	KindDate
)

var nameHintsDate = []string{"date", "time", "dob"}
var nameHintsNumber = []string{"worth", "balance", "amount", "price"}
var nameHintsBoolean = []string{"active", "enabled"}

// Resolution precedence: declared metadata type, then field-name
// heuristic, then value-shape inference, then string.
func ResolveKind(fd *meta.FieldDescriptor, fieldName string, sample any) Kind {
	if fd != nil {
		switch fd.Type {
		case meta.TypeNumber:
			return KindNumber
		case meta.TypeBoolean:
			return KindBoolean
		case meta.TypeDate:
			return KindDate
		case meta.TypeString, meta.TypeObjectID:
			return KindString
		}
	}

	lower := strings.ToLower(fieldName)

	for _, hint := range nameHintsDate {
		if strings.Contains(lower, hint) {
			return KindDate
		}
	}
	for _, hint := range nameHintsNumber {
		if strings.Contains(lower, hint) {
			return KindNumber
		}
	}
	if strings.HasPrefix(lower, "is") {
		return KindBoolean
	}
	for _, hint := range nameHintsBoolean {
		if strings.Contains(lower, hint) {
			return KindBoolean
		}
	}

	return inferKindFromShape(sample)
}

func inferKindFromShape(value any) Kind {
	switch v := value.(type) {
	case nil:
		return KindString
	case bool:
		return KindBoolean
	case int, int32, int64, float32, float64:
		return KindNumber
	case time.Time:
		return KindDate
	case string:
		if _, ok := parseFloat(v); ok {
			return KindNumber
		}
		if _, _, ok := parseDate(v); ok {
			return KindDate
		}
		switch v {
		case "true", "false", "1", "0":
			return KindBoolean
		}
	}
	return KindString
}

// Values compares a and b under the given kind.
// Returns a negative value if a < b, 0 if equal, positive if a > b.
//
// Nil ordering: nil < any value, nil == nil.
func Values(kind Kind, a any, b any, caseSensitive bool) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	switch kind {
	case KindNumber:
		af, aok := toFloat(a)
		bf, bok := toFloat(b)
		if aok && bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	case KindBoolean:
		ab, aok := toBool(a)
		bb, bok := toBool(b)
		if aok && bok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	case KindDate:
		at, aDateOnly, aok := toTime(a)
		bt, bDateOnly, bok := toTime(b)
		if aok && bok {
			// A datetime at exactly midnight compared against a bare
			// date compares only the date component. Documented legacy
			// behavior, keep as is.
			if aDateOnly != bDateOnly && isMidnight(at) && isMidnight(bt) {
				return strings.Compare(at.Format(bareDateLayout), bt.Format(bareDateLayout))
			}
			return at.Compare(bt)
		}
	case KindString:
		return compareStrings(asString(a), asString(b), caseSensitive)
	}

	// Both values failed to parse under the inferred type,
	// degrade to case-sensitive string comparison.
	return compareStrings(asString(a), asString(b), true)
}

// Coerces reports whether the value can be interpreted under the kind.
// Used by write-path validation against declared field types.
func Coerces(kind Kind, value any) bool {
	if value == nil {
		return false
	}

	switch kind {
	case KindNumber:
		_, ok := toFloat(value)
		return ok
	case KindBoolean:
		_, ok := toBool(value)
		return ok
	case KindDate:
		_, _, ok := toTime(value)
		return ok
	}

	return true
}

func compareStrings(a string, b string, caseSensitive bool) int {
	if !caseSensitive {
		a = strings.ToLower(a)
		b = strings.ToLower(b)
	}
	return strings.Compare(a, b)
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0
}

func asString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func parseFloat(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		return parseFloat(v)
	}
	return 0, false
}

func toBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(v) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	case int:
		if v == 0 || v == 1 {
			return v == 1, true
		}
	case int64:
		if v == 0 || v == 1 {
			return v == 1, true
		}
	}
	return false, false
}

const bareDateLayout = "2006-01-02"

// parseDate accepts RFC3339 or bare YYYY-MM-DD.
// The second result reports whether the value carried no time component.
func parseDate(raw string) (time.Time, bool, bool) {
	raw = strings.TrimSpace(raw)

	if len(raw) == len(bareDateLayout) {
		if t, err := time.Parse(bareDateLayout, raw); err == nil {
			return t, true, true
		}
		return time.Time{}, false, false
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, true
	}

	return time.Time{}, false, false
}

func toTime(value any) (time.Time, bool, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, false, true
	case string:
		return parseDate(v)
	}
	return time.Time{}, false, false
}
