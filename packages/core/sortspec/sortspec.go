// Multi-field sort evaluation over already-fetched records.
// Used by adapters that cannot push ordering down to the store, and by
// order validation in tests.
package sortspec

import (
	"sort"

	"entiq/packages/core/compare"
	"entiq/packages/core/meta"
	"entiq/packages/core/query"
)

// Compares two records under the sort spec. Records equal on field i
// are ordered by field i+1; ties after the last field return 0 and
// preserve the incoming (backend) order.
func Less(
	a map[string]any,
	b map[string]any,
	spec []query.SortField,
	ent *meta.EntityDescriptor,
	caseSensitive bool,
) int {
	for _, sf := range spec {
		fd, _ := ent.Field(sf.Field)

		av := a[sf.Field]
		bv := b[sf.Field]

		sample := av
		if sample == nil {
			sample = bv
		}

		kind := compare.ResolveKind(fd, sf.Field, sample)

		diff := compare.Values(kind, av, bv, caseSensitive)
		if diff == 0 {
			continue
		}

		if sf.Desc {
			return -diff
		}
		return diff
	}

	return 0
}

// Apply sorts records in place, stable, so ties keep the backend's
// deterministic order.
func Apply(
	records []map[string]any,
	spec []query.SortField,
	ent *meta.EntityDescriptor,
	caseSensitive bool,
) {
	if len(spec) == 0 {
		return
	}

	sort.SliceStable(records, func(i, j int) bool {
		return Less(records[i], records[j], spec, ent, caseSensitive) < 0
	})
}

// VerifyOrder reports whether records appear in an order consistent
// with the spec. Records with a nil value in a sort field are not
// constrained by that field.
func VerifyOrder(
	records []map[string]any,
	spec []query.SortField,
	ent *meta.EntityDescriptor,
	caseSensitive bool,
) bool {
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1], records[i]

		for _, sf := range spec {
			pv := prev[sf.Field]
			cv := cur[sf.Field]

			// nil values are excluded from order validation
			if pv == nil || cv == nil {
				break
			}

			fd, _ := ent.Field(sf.Field)
			kind := compare.ResolveKind(fd, sf.Field, pv)

			diff := compare.Values(kind, pv, cv, caseSensitive)
			if sf.Desc {
				diff = -diff
			}

			if diff > 0 {
				return false
			}
			if diff < 0 {
				break
			}
		}
	}

	return true
}
