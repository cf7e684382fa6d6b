package elastic

import (
	"bytes"
	"io"

	jsonenc "entiq/packages/common/encoding/json"
	"entiq/packages/core/compare"
	"entiq/packages/core/filter"
	"entiq/packages/core/meta"
)

// The index is used to narrow candidates, not to answer the query:
// only numeric range conditions with a typed bound push down.
// Equality, substring matching, date comparison and ordering run
// through the shared in-memory evaluators afterwards, which keeps the
// semantics byte-for-byte identical to the other backends. Date ranges
// must not narrow: the keyword index orders mixed bare-date and
// datetime strings lexicographically and would exclude records the
// evaluator matches.

func encodeBody(value any) (io.Reader, error) {
	raw, err := jsonenc.Encode(value)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(raw), nil
}

func rangeKey(op filter.Op) string {
	switch op {
	case filter.Greater:
		return "gt"
	case filter.GreaterOrEqual:
		return "gte"
	case filter.Less:
		return "lt"
	case filter.LessOrEqual:
		return "lte"
	}
	return ""
}

func buildSearchQuery(ent *meta.EntityDescriptor, conds []filter.Condition) map[string]any {
	var clauses []map[string]any

	for _, c := range conds {
		if !c.Op.IsRange() {
			continue
		}

		fd, ok := ent.Field(c.Field)
		if !ok {
			continue
		}

		kind := compare.ResolveKind(fd, c.Field, c.Value)
		if kind != compare.KindNumber {
			continue
		}
		if !compare.Coerces(kind, c.Value) {
			continue
		}

		clauses = append(clauses, map[string]any{
			"range": map[string]any{
				c.Field: map[string]any{rangeKey(c.Op): c.Value},
			},
		})
	}

	if len(clauses) == 0 {
		return map[string]any{"match_all": map[string]any{}}
	}

	return map[string]any{
		"bool": map[string]any{"filter": clauses},
	}
}

// The scan is keyed by id so deeper result sets continue with
// search_after, and so records arrive with id as the baseline order
// the stable sort ties back to.
func buildSearchBody(ent *meta.EntityDescriptor, conds []filter.Condition) map[string]any {
	return map[string]any{
		"query":   buildSearchQuery(ent, conds),
		"size":    fetchCap,
		"_source": true,
		"sort":    []map[string]any{{"id": "asc"}},
	}
}
