package mongodb

import (
	"regexp"

	"entiq/packages/common/util"
	"entiq/packages/core/compare"
	"entiq/packages/core/filter"
	"entiq/packages/core/meta"
	"entiq/packages/core/query"

	"go.mongodb.org/mongo-driver/bson"
)

// Translates parsed conditions into a find filter. String matching is
// expressed through regular expressions so the case rules stay
// identical across match modes.

func regexOptions(caseSensitive bool) string {
	return util.Ternary(caseSensitive, "", "i")
}

func opKey(op filter.Op) string {
	switch op {
	case filter.Greater:
		return "$gt"
	case filter.GreaterOrEqual:
		return "$gte"
	case filter.Less:
		return "$lt"
	case filter.LessOrEqual:
		return "$lte"
	default:
		return "$eq"
	}
}

// Stored date values mix bare dates and datetimes, and comparing them
// as strings does not order them like instants. Date conditions are
// kept out of the native predicate and re-checked in memory by the
// seeker with the shared evaluator.
func splitPushdown(ent *meta.EntityDescriptor, conds []filter.Condition) (native []filter.Condition, deferred []filter.Condition) {
	for _, c := range conds {
		fd, _ := ent.Field(c.Field)
		if compare.ResolveKind(fd, c.Field, c.Value) == compare.KindDate {
			deferred = append(deferred, c)
			continue
		}
		native = append(native, c)
	}
	return native, deferred
}

func hasDateSort(ent *meta.EntityDescriptor, sort []query.SortField) bool {
	for _, s := range sort {
		fd, _ := ent.Field(s.Field)
		if compare.ResolveKind(fd, s.Field, nil) == compare.KindDate {
			return true
		}
	}
	return false
}

func buildFilter(ent *meta.EntityDescriptor, conds []filter.Condition, mode filter.MatchMode, caseSensitive bool) bson.M {
	if len(conds) == 0 {
		return bson.M{}
	}

	// Range pairs on one field would collide as map keys, so every
	// condition gets its own clause.
	clauses := make([]bson.M, 0, len(conds))
	for _, c := range conds {
		clauses = append(clauses, condition(ent, c, mode, caseSensitive))
	}

	if len(clauses) == 1 {
		return clauses[0]
	}

	return bson.M{"$and": clauses}
}

func condition(ent *meta.EntityDescriptor, c filter.Condition, mode filter.MatchMode, caseSensitive bool) bson.M {
	fd, ok := ent.Field(c.Field)
	if !ok {
		// Unknown fields are rejected during parsing.
		return bson.M{"$expr": false}
	}

	if c.Op == filter.Equal {
		if fd.IsEnum {
			return bson.M{c.Field: anchoredRegex(c.Raw, false)}
		}
		if fd.Type == meta.TypeObjectID {
			return bson.M{c.Field: c.Raw}
		}
	}

	kind := compare.ResolveKind(fd, c.Field, c.Value)

	switch kind {
	case compare.KindNumber, compare.KindBoolean:
		if compare.Coerces(kind, c.Value) {
			return bson.M{c.Field: bson.M{opKey(c.Op): c.Value}}
		}
	default:
		if c.Op == filter.Equal {
			if mode == filter.MatchFull {
				return bson.M{c.Field: anchoredRegex(c.Raw, caseSensitive)}
			}
			return bson.M{c.Field: containsRegex(c.Raw, caseSensitive)}
		}
	}

	// Graceful fallback: plain string comparison on the raw value.
	return bson.M{c.Field: bson.M{opKey(c.Op): c.Raw}}
}

func anchoredRegex(value string, caseSensitive bool) bson.M {
	return bson.M{
		"$regex":   "^" + regexp.QuoteMeta(value) + "$",
		"$options": regexOptions(caseSensitive),
	}
}

func containsRegex(value string, caseSensitive bool) bson.M {
	return bson.M{
		"$regex":   regexp.QuoteMeta(value),
		"$options": regexOptions(caseSensitive),
	}
}

// buildSort renders the sort spec with the record id as the final
// tie-break. Order matters, so this is a bson.D.
func buildSort(sort []query.SortField) bson.D {
	out := make(bson.D, 0, len(sort)+1)

	for _, s := range sort {
		direction := 1
		if s.Desc {
			direction = -1
		}
		out = append(out, bson.E{Key: s.Field, Value: direction})
	}

	return append(out, bson.E{Key: "id", Value: 1})
}
