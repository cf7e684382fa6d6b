// Entity filter conditions
package filter

import (
	"strings"
)

type Op byte

const (
	Equal Op = 1 + iota
	Greater
	GreaterOrEqual
	Less
	LessOrEqual
)

var opToStrMap = map[Op]string{
	Equal:          "eq",
	Greater:        "gt",
	GreaterOrEqual: "gte",
	Less:           "lt",
	LessOrEqual:    "lte",
}

func (op Op) String() string {
	return opToStrMap[op]
}

// Operator tokens are case-insensitive.
func OpFromString(raw string) (Op, bool) {
	switch strings.ToLower(raw) {
	case "eq":
		return Equal, true
	case "gt":
		return Greater, true
	case "gte":
		return GreaterOrEqual, true
	case "lt":
		return Less, true
	case "lte":
		return LessOrEqual, true
	}
	return 0, false
}

func (op Op) IsRange() bool {
	return op != Equal
}

// A single parsed filter predicate.
// Raw keeps the value exactly as the caller sent it,
// Value holds the opportunistically coerced form.
type Condition struct {
	Field string
	Op    Op
	Raw   string
	Value any
}

// MatchMode controls how eq compares non-enum string fields.
// Enum and non-string fields are always exact regardless of mode.
type MatchMode string

const (
	MatchSubstring MatchMode = "substring"
	MatchFull      MatchMode = "full"
)

func MatchModeFromString(raw string) (MatchMode, bool) {
	switch MatchMode(raw) {
	case MatchSubstring, MatchFull:
		return MatchMode(raw), true
	}
	return "", false
}
