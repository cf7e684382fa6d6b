package query

import (
	"strconv"
	"strings"

	Error "entiq/packages/common/errors"
	"entiq/packages/common/logger"
	"entiq/packages/core/filter"
	"entiq/packages/core/meta"
)

var parserLogger = logger.NewSource("QUERY PARSER", logger.Default)

// Parse builds a Query from raw request parameters and validates it
// against entity metadata. Every error returned here is a bad_request,
// malformed requests never reach a backend.
func Parse(
	provider meta.Provider,
	ent *meta.EntityDescriptor,
	raw RawRequest,
	defaultPageSize int,
	maxPageSize int,
) (*Query, *Error.Status) {
	parserLogger.Trace("Parsing query for "+ent.Name+"...", nil)

	filters, err := parseFilter(ent, raw.Filter)
	if err != nil {
		return nil, err
	}

	sort, err := parseSort(ent, raw.Sort)
	if err != nil {
		return nil, err
	}

	views, err := parseView(provider, ent, raw.View)
	if err != nil {
		return nil, err
	}

	page, err := parsePositiveInt("page", raw.Page, DefaultPage)
	if err != nil {
		return nil, err
	}

	if defaultPageSize < 1 {
		defaultPageSize = DefaultPageSize
	}
	pageSize, err := parsePositiveInt("pageSize", raw.PageSize, defaultPageSize)
	if err != nil {
		return nil, err
	}
	if maxPageSize > 0 && pageSize > maxPageSize {
		return nil, Error.NewStatusError(
			Error.BadRequest,
			"Invalid pageSize: "+strconv.Itoa(pageSize)+". It must be between 1 and "+strconv.Itoa(maxPageSize),
		)
	}

	match, err := parseMatchMode(raw.FilterMatch)
	if err != nil {
		return nil, err
	}

	return &Query{
		Entity:   ent.Name,
		Filters:  filters,
		Sort:     sort,
		Views:    views,
		Page:     page,
		PageSize: pageSize,
		Match:    match,
	}, nil
}

// Grammar: comma-separated field:value (implies eq) or field:op:value.
// Repeated eq on the same field: last occurrence wins. Repeated range
// operators all apply.
func parseFilter(ent *meta.EntityDescriptor, raw string) ([]filter.Condition, *Error.Status) {
	if raw == "" {
		return nil, nil
	}

	var conds []filter.Condition

	for _, segment := range strings.Split(raw, ",") {
		if segment == "" {
			continue
		}

		parts := strings.SplitN(segment, ":", 3)
		if len(parts) < 2 || parts[0] == "" {
			return nil, Error.NewStatusError(
				Error.BadRequest,
				"Filter is missing or has invalid format: "+segment,
			)
		}

		field := parts[0]
		fd, ok := ent.Field(field)
		if !ok {
			return nil, Error.NewStatusError(
				Error.BadRequest,
				"Unknown filter field: "+field,
			)
		}

		op := filter.Equal
		value := parts[1]

		if len(parts) == 3 {
			parsed, ok := filter.OpFromString(parts[1])
			if !ok {
				return nil, Error.NewStatusError(
					Error.BadRequest,
					"Unknown filter operator: "+parts[1],
				)
			}
			op = parsed
			value = parts[2]
		}

		if fd.IsEnum && op == filter.Equal && !fd.EnumContains(value) {
			return nil, Error.NewStatusError(
				Error.BadRequest,
				"Invalid value for enum field "+field+": "+value,
			)
		}

		conds = append(conds, filter.Condition{
			Field: field,
			Op:    op,
			Raw:   value,
			Value: coerceValue(value),
		})
	}

	return dedupeEquals(conds), nil
}

// Models overwrite-on-duplicate-param semantics: only the last eq per
// field survives, range conditions are untouched.
func dedupeEquals(conds []filter.Condition) []filter.Condition {
	lastEq := make(map[string]int)
	for i, c := range conds {
		if c.Op == filter.Equal {
			lastEq[c.Field] = i
		}
	}

	out := conds[:0]
	for i, c := range conds {
		if c.Op == filter.Equal && lastEq[c.Field] != i {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Opportunistic coercion: int, then float, then bool, else string.
func coerceValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if raw == "true" || raw == "false" {
		return raw == "true"
	}
	return raw
}

// Grammar: comma-separated field[:asc|desc]. Empty segments are
// ignored, unknown direction tokens are rejected.
func parseSort(ent *meta.EntityDescriptor, raw string) ([]SortField, *Error.Status) {
	if raw == "" {
		return nil, nil
	}

	var fields []SortField

	for _, segment := range strings.Split(raw, ",") {
		if segment == "" {
			continue
		}

		parts := strings.SplitN(segment, ":", 2)

		if _, ok := ent.Field(parts[0]); !ok {
			return nil, Error.NewStatusError(
				Error.BadRequest,
				"Unknown sort field: "+parts[0],
			)
		}

		desc := false
		if len(parts) == 2 {
			switch strings.ToLower(parts[1]) {
			case "asc":
				desc = false
			case "desc":
				desc = true
			default:
				return nil, Error.NewStatusError(
					Error.BadRequest,
					"Unknown sort direction: "+parts[1],
				)
			}
		}

		fields = append(fields, SortField{Field: parts[0], Desc: desc})
	}

	return fields, nil
}

// ParseViews parses just the view parameter. Single-record reads use
// this directly, there is nothing else to parse for them.
func ParseViews(provider meta.Provider, owner *meta.EntityDescriptor, raw string) ([]ViewSpec, *Error.Status) {
	return parseView(provider, owner, raw)
}

// Grammar: comma-separated entity(field1,field2,...).
// All projections are validated before any backend call is issued.
func parseView(provider meta.Provider, owner *meta.EntityDescriptor, raw string) ([]ViewSpec, *Error.Status) {
	if raw == "" {
		return nil, nil
	}

	var views []ViewSpec

	rest := raw
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		if open <= 0 {
			return nil, Error.NewStatusError(
				Error.BadRequest,
				"Invalid view format: "+raw,
			)
		}

		closing := strings.IndexByte(rest, ')')
		if closing < open {
			return nil, Error.NewStatusError(
				Error.BadRequest,
				"Invalid view format: "+raw,
			)
		}

		entityName := rest[:open]
		fieldList := rest[open+1 : closing]

		rest = rest[closing+1:]
		rest = strings.TrimPrefix(rest, ",")

		target, ok := provider.Entity(entityName)
		if !ok {
			return nil, Error.NewStatusError(
				Error.BadRequest,
				"Unknown view entity: "+entityName,
			)
		}

		if _, ok := owner.RefField(target.Name); !ok {
			return nil, Error.NewStatusError(
				Error.BadRequest,
				owner.Name+" has no reference to "+target.Name,
			)
		}

		var fields []string
		for _, f := range strings.Split(fieldList, ",") {
			if f == "" {
				continue
			}
			if _, ok := target.Field(f); !ok {
				return nil, Error.NewStatusError(
					Error.BadRequest,
					"Unknown field "+f+" on view entity "+target.Name,
				)
			}
			fields = append(fields, f)
		}

		if len(fields) == 0 {
			return nil, Error.NewStatusError(
				Error.BadRequest,
				"View for "+target.Name+" has an empty field list",
			)
		}

		views = append(views, ViewSpec{Entity: target.Name, Fields: fields})
	}

	return views, nil
}

func parsePositiveInt(name string, raw string, fallback int) (int, *Error.Status) {
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, Error.NewStatusError(
			Error.BadRequest,
			"Invalid "+name+": "+raw+". It must be a positive integer",
		)
	}

	return v, nil
}

func parseMatchMode(raw string) (filter.MatchMode, *Error.Status) {
	if raw == "" {
		return filter.MatchSubstring, nil
	}

	mode, ok := filter.MatchModeFromString(raw)
	if !ok {
		return "", Error.NewStatusError(
			Error.BadRequest,
			"Invalid filter_match: "+raw+". Expected substring or full",
		)
	}

	return mode, nil
}
