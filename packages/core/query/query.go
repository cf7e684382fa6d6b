// Request-scoped query value objects. Constructed once per call by
// Parse, immutable afterwards.
package query

import (
	"entiq/packages/core/filter"
)

const DefaultPage = 1
const DefaultPageSize = 25

type SortField struct {
	Field string
	Desc  bool
}

// Projection of a related entity requested through the view parameter.
type ViewSpec struct {
	Entity string
	Fields []string
}

type Query struct {
	Entity   string
	Filters  []filter.Condition
	Sort     []SortField
	Views    []ViewSpec
	Page     int
	PageSize int
	Match    filter.MatchMode
}

func (q *Query) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Paginate slices an already-sorted full result set to one page.
// Guarantees len(result) == min(pageSize, total-(page-1)*pageSize),
// clamped to >= 0.
func Paginate[T any](items []T, page int, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}

	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	return items[start:end]
}

// Raw parameter strings as received from the routing layer.
// Parameter name normalization (case-insensitivity, duplicate
// last-wins) is the routing layer's job.
type RawRequest struct {
	Filter      string
	Sort        string
	View        string
	Page        string
	PageSize    string
	FilterMatch string
}
