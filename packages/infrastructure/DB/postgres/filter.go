package postgres

import (
	"fmt"
	"strings"

	"entiq/packages/core/compare"
	"entiq/packages/core/filter"
	"entiq/packages/core/meta"
	"entiq/packages/core/query"
)

// Translates parsed conditions into SQL over the jsonb payload.
// Typed comparisons are guarded so a record holding a malformed value
// falls back to a plain string comparison instead of failing the
// whole query.

type sqlBuilder struct {
	ent  *meta.EntityDescriptor
	args []any
}

func newBuilder(ent *meta.EntityDescriptor) *sqlBuilder {
	return &sqlBuilder{ent: ent}
}

func (b *sqlBuilder) arg(value any) string {
	b.args = append(b.args, value)
	return fmt.Sprintf("$%d", len(b.args))
}

func opSymbol(op filter.Op) string {
	switch op {
	case filter.Greater:
		return ">"
	case filter.GreaterOrEqual:
		return ">="
	case filter.Less:
		return "<"
	case filter.LessOrEqual:
		return "<="
	default:
		return "="
	}
}

func (b *sqlBuilder) Where(conds []filter.Condition, mode filter.MatchMode, caseSensitive bool) string {
	if len(conds) == 0 {
		return ""
	}

	exprs := make([]string, 0, len(conds))
	for _, c := range conds {
		exprs = append(exprs, b.condition(c, mode, caseSensitive))
	}

	return "WHERE " + strings.Join(exprs, " AND ")
}

func (b *sqlBuilder) condition(c filter.Condition, mode filter.MatchMode, caseSensitive bool) string {
	fd, ok := b.ent.Field(c.Field)
	if !ok {
		// Unknown fields are rejected during parsing, a stray one
		// must not widen the result set.
		return "FALSE"
	}

	key := jsonKey(c.Field)
	sym := opSymbol(c.Op)

	if c.Op == filter.Equal {
		if fd.IsEnum {
			return fmt.Sprintf("lower(payload->>%s) = lower(%s)", key, b.arg(c.Raw))
		}
		if fd.Type == meta.TypeObjectID {
			return fmt.Sprintf("payload->>%s = %s", key, b.arg(c.Raw))
		}
	}

	kind := compare.ResolveKind(fd, c.Field, c.Value)

	switch kind {
	case compare.KindNumber:
		if compare.Coerces(compare.KindNumber, c.Value) {
			return fmt.Sprintf(
				"CASE WHEN jsonb_typeof(payload->%s) = 'number' THEN (payload->>%s)::numeric %s %s ELSE payload->>%s %s %s END",
				key, key, sym, b.arg(c.Value), key, sym, b.arg(c.Raw),
			)
		}
	case compare.KindBoolean:
		if compare.Coerces(compare.KindBoolean, c.Value) {
			return fmt.Sprintf(
				"CASE WHEN jsonb_typeof(payload->%s) = 'boolean' THEN (payload->%s)::boolean %s %s ELSE payload->>%s %s %s END",
				key, key, sym, b.arg(c.Value), key, sym, b.arg(c.Raw),
			)
		}
	case compare.KindDate:
		if compare.Coerces(compare.KindDate, c.Raw) {
			value := b.arg(c.Raw)
			return fmt.Sprintf(
				"CASE WHEN try_timestamptz(payload->>%s) IS NOT NULL THEN try_timestamptz(payload->>%s) %s (%s)::timestamptz ELSE payload->>%s %s %s END",
				key, key, sym, value, key, sym, value,
			)
		}
	default:
		if c.Op == filter.Equal {
			return b.stringEqual(key, c.Raw, mode, caseSensitive)
		}
		if !caseSensitive {
			return fmt.Sprintf("lower(payload->>%s) %s lower(%s)", key, sym, b.arg(c.Raw))
		}
	}

	// Graceful fallback: plain case-sensitive string comparison.
	return fmt.Sprintf("payload->>%s %s %s", key, sym, b.arg(c.Raw))
}

func (b *sqlBuilder) stringEqual(key string, value string, mode filter.MatchMode, caseSensitive bool) string {
	if mode == filter.MatchFull {
		if caseSensitive {
			return fmt.Sprintf("payload->>%s = %s", key, b.arg(value))
		}
		return fmt.Sprintf("lower(payload->>%s) = lower(%s)", key, b.arg(value))
	}

	if caseSensitive {
		return fmt.Sprintf("position(%s in payload->>%s) > 0", b.arg(value), key)
	}
	return fmt.Sprintf("position(lower(%s) in lower(payload->>%s)) > 0", b.arg(value), key)
}

// OrderBy renders the sort spec with the id column as the final
// tie-break. Records missing the sort field order first ascending,
// last descending, matching the in-memory comparator's nil rules.
func (b *sqlBuilder) OrderBy(sort []query.SortField, caseSensitive bool) string {
	terms := make([]string, 0, len(sort)+1)

	for _, s := range sort {
		fd, ok := b.ent.Field(s.Field)
		if !ok {
			continue
		}

		expr := sortExpr(fd, s.Field, caseSensitive)

		if s.Desc {
			terms = append(terms, expr+" DESC NULLS LAST")
		} else {
			terms = append(terms, expr+" ASC NULLS FIRST")
		}
	}

	terms = append(terms, "id ASC")

	return "ORDER BY " + strings.Join(terms, ", ")
}

func sortExpr(fd *meta.FieldDescriptor, field string, caseSensitive bool) string {
	key := jsonKey(field)

	switch compare.ResolveKind(fd, field, nil) {
	case compare.KindNumber:
		return fmt.Sprintf("CASE WHEN jsonb_typeof(payload->%s) = 'number' THEN (payload->>%s)::numeric END", key, key)
	case compare.KindBoolean:
		return fmt.Sprintf("CASE WHEN jsonb_typeof(payload->%s) = 'boolean' THEN (payload->%s)::boolean END", key, key)
	case compare.KindDate:
		return fmt.Sprintf("try_timestamptz(payload->>%s)", key)
	}

	if caseSensitive {
		return fmt.Sprintf("payload->>%s", key)
	}
	return fmt.Sprintf("lower(payload->>%s)", key)
}
