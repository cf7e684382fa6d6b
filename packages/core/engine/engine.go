// The query engine: a strict filter -> sort -> paginate -> view-expand
// pipeline over a single injected backend adapter.
package engine

import (
	"context"

	Error "entiq/packages/common/errors"
	"entiq/packages/common/logger"
	"entiq/packages/core/entity"
	"entiq/packages/core/meta"
	"entiq/packages/core/notification"
	"entiq/packages/core/query"
	"entiq/packages/core/view"

	"github.com/google/uuid"
)

var engineLogger = logger.NewSource("ENGINE", logger.Default)

// Collation is an adapter concern, each backend reads its collation
// flag from configuration when it builds predicates and sorts.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
}

type Engine struct {
	repo     entity.Repository
	provider meta.Provider
	opts     Options
}

// New wires the engine to its backend adapter and metadata provider.
// The adapter is an explicit dependency, there is no ambient database
// singleton to fall back on.
func New(repo entity.Repository, provider meta.Provider, opts Options) *Engine {
	if opts.DefaultPageSize < 1 {
		opts.DefaultPageSize = query.DefaultPageSize
	}

	return &Engine{
		repo:     repo,
		provider: provider,
		opts:     opts,
	}
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func newPagination(page int, pageSize int, total int64) Pagination {
	totalPages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPages++
	}

	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// The response envelope. Data is never null, an empty result is [].
type Result struct {
	Data          []entity.Record   `json:"data"`
	Pagination    Pagination        `json:"pagination"`
	Notifications *notification.Set `json:"notifications"`
}

func newResult() *Result {
	return &Result{
		Data:          []entity.Record{},
		Notifications: notification.NewSet(),
	}
}

func (e *Engine) entityDescriptor(name string) (*meta.EntityDescriptor, *Error.Status) {
	ent, ok := e.provider.Entity(name)
	if !ok {
		return nil, Error.NewStatusError(Error.NotFound, "Unknown entity: "+name)
	}
	return ent, nil
}

// Search runs the full pipeline for a collection query. View expansion
// only ever touches the already-paginated page, never the full result
// set.
func (e *Engine) Search(ctx context.Context, entityName string, raw query.RawRequest) (*Result, *Error.Status) {
	ent, err := e.entityDescriptor(entityName)
	if err != nil {
		return nil, err
	}

	q, err := query.Parse(e.provider, ent, raw, e.opts.DefaultPageSize, e.opts.MaxPageSize)
	if err != nil {
		return nil, err
	}

	records, total, err := e.repo.GetAll(ctx, q)
	if err != nil {
		return nil, err
	}

	if err := view.Expand(ctx, e.repo, ent, records, q.Views); err != nil {
		return nil, err
	}

	result := newResult()
	if records != nil {
		result.Data = records
	}
	result.Pagination = newPagination(q.Page, q.PageSize, total)

	warnDanglingViews(ent, records, q.Views, result.Notifications)

	return result, nil
}

// A reference that is set but does not resolve is reported as a
// warning on the owning instance, on top of the exists marker inside
// the embedded object. A null reference is not an anomaly and stays
// silent.
func warnDanglingViews(
	ent *meta.EntityDescriptor,
	records []entity.Record,
	views []query.ViewSpec,
	set *notification.Set,
) {
	for _, v := range views {
		fk, ok := ent.RefField(v.Entity)
		if !ok {
			continue
		}

		for _, record := range records {
			target, _ := record[fk.Name].(string)
			if target == "" {
				continue
			}

			embedded, ok := record[v.Entity].(entity.Record)
			if !ok || embedded[view.ExistsField] != false {
				continue
			}

			id, _ := record[entity.IDField].(string)
			set.AddWarning(id, Error.NewStatusError(
				Error.NotFound,
				"Referenced "+v.Entity+" "+target+" does not exist",
			))
		}
	}
}

// Get fetches a single record by id, with optional view expansion.
func (e *Engine) Get(ctx context.Context, entityName string, id string, rawView string) (*Result, *Error.Status) {
	ent, err := e.entityDescriptor(entityName)
	if err != nil {
		return nil, err
	}

	views, err := query.ParseViews(e.provider, ent, rawView)
	if err != nil {
		return nil, err
	}

	record, err := e.repo.GetByID(ctx, ent.Name, id)
	if err != nil {
		return nil, err
	}

	if err := view.Expand(ctx, e.repo, ent, []entity.Record{record}, views); err != nil {
		return nil, err
	}

	result := newResult()
	result.Data = []entity.Record{record}
	result.Pagination = newPagination(1, 1, 1)

	warnDanglingViews(ent, result.Data, views, result.Notifications)

	return result, nil
}

// Create validates the payload against metadata and persists it.
// Validation failures come back as notifications keyed by the new
// instance id, uniqueness violations as conflict with the offending
// field.
func (e *Engine) Create(ctx context.Context, entityName string, payload entity.Record) (*Result, *Error.Status) {
	ent, err := e.entityDescriptor(entityName)
	if err != nil {
		return nil, err
	}

	id, _ := payload[entity.IDField].(string)
	if id == "" {
		id = uuid.NewString()
		payload[entity.IDField] = id
	}

	result := newResult()

	if errors := ValidateRecord(ent, payload, true); len(errors) > 0 {
		for _, ve := range errors {
			result.Notifications.AddError(id, ve)
		}
		return result, errors[0]
	}

	createdID, err := e.repo.Create(ctx, ent.Name, payload)
	if err != nil {
		result.Notifications.AddError(id, err)
		return result, err
	}

	record, err := e.repo.GetByID(ctx, ent.Name, createdID)
	if err != nil {
		engineLogger.Error("Created record is not readable: "+ent.Name+" "+createdID, err.Error(), nil)
		return nil, Error.StatusInternalError
	}

	result.Data = []entity.Record{record}
	result.Pagination = newPagination(1, 1, 1)

	return result, nil
}

// Update validates only the provided fields, then applies the change.
func (e *Engine) Update(ctx context.Context, entityName string, id string, changes entity.Record) (*Result, *Error.Status) {
	ent, err := e.entityDescriptor(entityName)
	if err != nil {
		return nil, err
	}

	result := newResult()

	if errors := ValidateRecord(ent, changes, false); len(errors) > 0 {
		for _, ve := range errors {
			result.Notifications.AddError(id, ve)
		}
		return result, errors[0]
	}

	if err := e.repo.Update(ctx, ent.Name, id, changes); err != nil {
		result.Notifications.AddError(id, err)
		return result, err
	}

	record, err := e.repo.GetByID(ctx, ent.Name, id)
	if err != nil {
		return nil, err
	}

	result.Data = []entity.Record{record}
	result.Pagination = newPagination(1, 1, 1)

	return result, nil
}

// Delete removes one record. With cascade enabled, records referencing
// it go first, either through the store's native FK cascade or the
// synthetic walk.
func (e *Engine) Delete(ctx context.Context, entityName string, id string, withCascade bool) *Error.Status {
	ent, err := e.entityDescriptor(entityName)
	if err != nil {
		return err
	}

	if withCascade {
		return e.repo.DeleteWithCascade(ctx, ent.Name, id)
	}

	return e.repo.Delete(ctx, ent.Name, id)
}
