package filter

import (
	"strings"

	"entiq/packages/core/compare"
	"entiq/packages/core/meta"
)

// Matches decides per-record inclusion for a validated condition list.
// Adapters that push filtering down to the store must produce native
// predicates with semantics identical to this function.
func Matches(
	record map[string]any,
	conds []Condition,
	mode MatchMode,
	ent *meta.EntityDescriptor,
	caseSensitive bool,
) bool {
	for i := range conds {
		if !matchesCondition(record, &conds[i], mode, ent, caseSensitive) {
			return false
		}
	}
	return true
}

func matchesCondition(
	record map[string]any,
	cond *Condition,
	mode MatchMode,
	ent *meta.EntityDescriptor,
	caseSensitive bool,
) bool {
	fd, _ := ent.Field(cond.Field)
	value := record[cond.Field]

	if cond.Op == Equal {
		return matchesEqual(value, cond, mode, fd, caseSensitive)
	}

	kind := compare.ResolveKind(fd, cond.Field, value)
	diff := compare.Values(kind, value, cond.Value, caseSensitive)

	switch cond.Op {
	case Greater:
		return diff > 0
	case GreaterOrEqual:
		return diff >= 0
	case Less:
		return diff < 0
	case LessOrEqual:
		return diff <= 0
	}

	return false
}

func matchesEqual(
	value any,
	cond *Condition,
	mode MatchMode,
	fd *meta.FieldDescriptor,
	caseSensitive bool,
) bool {
	// Enum fields are always exact, case-insensitive. MatchMode is
	// ignored for them, that's an invariant, not a default.
	if fd != nil && fd.IsEnum {
		s, ok := value.(string)
		if !ok {
			return false
		}
		return strings.EqualFold(s, cond.Raw)
	}

	// Identifiers are not free-text, always literal equality.
	if fd != nil && fd.Type == meta.TypeObjectID {
		s, ok := value.(string)
		if !ok {
			return false
		}
		return s == cond.Raw
	}

	kind := compare.ResolveKind(fd, cond.Field, value)

	if kind == compare.KindString {
		s, ok := value.(string)
		if !ok {
			return false
		}

		if mode == MatchFull {
			if caseSensitive {
				return s == cond.Raw
			}
			return strings.EqualFold(s, cond.Raw)
		}

		if caseSensitive {
			return strings.Contains(s, cond.Raw)
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(cond.Raw))
	}

	return compare.Values(kind, value, cond.Value, caseSensitive) == 0
}
