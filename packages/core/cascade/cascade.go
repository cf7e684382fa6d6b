// Synthetic cascade: application-level emulation of ON DELETE CASCADE
// for stores without native foreign-key support.
//
// The walk is not atomic. A crash mid-cascade can leave orphans, the
// accepted mitigation is idempotent re-invocation: deleting an already
// deleted id is a no-op.
package cascade

import (
	"context"

	Error "entiq/packages/common/errors"
	"entiq/packages/common/logger"
	"entiq/packages/core/entity"
	"entiq/packages/core/filter"
	"entiq/packages/core/meta"
	"entiq/packages/core/query"
)

var cascadeLogger = logger.NewSource("CASCADE", logger.Default)

// Children are fetched in batches of this size.
const batchSize = 500

// Run deletes every record transitively referencing (entityName, id),
// children first, then the record itself. Child lookups use the
// adjacency map precomputed from metadata at load time.
//
// The whole operation fails as internal_error unless every step
// succeeds.
func Run(
	ctx context.Context,
	repo entity.Repository,
	provider meta.Provider,
	entityName string,
	id string,
) *Error.Status {
	w := walker{
		repo:     repo,
		provider: provider,
		visited:  make(map[string]bool),
	}

	return w.delete(ctx, entityName, id)
}

type walker struct {
	repo     entity.Repository
	provider meta.Provider

	// Guards against FK cycles, keyed by entity+id.
	visited map[string]bool
}

func (w *walker) delete(ctx context.Context, entityName string, id string) *Error.Status {
	key := entityName + "\x00" + id
	if w.visited[key] {
		return nil
	}
	w.visited[key] = true

	for _, child := range w.provider.ChildrenOf(entityName) {
		if err := w.deleteChildren(ctx, child, id); err != nil {
			return err
		}
	}

	err := w.repo.Delete(ctx, entityName, id)
	if err == nil || err.Code() == Error.NotFound {
		// Deleting an id that is already gone is a no-op.
		return nil
	}

	cascadeLogger.Error("Cascade delete failed for "+entityName+" "+id, err.Error(), nil)

	return Error.StatusInternalError
}

func (w *walker) deleteChildren(ctx context.Context, child meta.ChildRef, parentID string) *Error.Status {
	q := &query.Query{
		Entity: child.Entity,
		Filters: []filter.Condition{{
			Field: child.Field,
			Op:    filter.Equal,
			Raw:   parentID,
			Value: parentID,
		}},
		Page:     1,
		PageSize: batchSize,
		Match:    filter.MatchFull,
	}

	for {
		records, _, err := w.repo.GetAll(ctx, q)
		if err != nil {
			cascadeLogger.Error("Cascade child lookup failed for "+child.Entity, err.Error(), nil)
			return Error.StatusInternalError
		}

		if len(records) == 0 {
			return nil
		}

		progressed := false
		for _, record := range records {
			childID, _ := record[entity.IDField].(string)
			if childID == "" {
				continue
			}

			key := child.Entity + "\x00" + childID
			if !w.visited[key] {
				progressed = true
			}

			if err := w.delete(ctx, child.Entity, childID); err != nil {
				return err
			}
		}

		// Every remaining child was already visited, nothing left to
		// make progress on.
		if !progressed {
			return nil
		}
	}
}
