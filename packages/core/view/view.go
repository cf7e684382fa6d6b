// View expansion: embedding projected fields of referenced entities
// into an already-paginated page of records.
package view

import (
	"context"

	Error "entiq/packages/common/errors"
	"entiq/packages/core/entity"
	"entiq/packages/core/meta"
	"entiq/packages/core/query"
)

// Marker distinguishing "requested but missing" from "not requested".
// A view key is always present on every record once requested, with
// Exists=false when the FK is null or dangling.
const ExistsField = "exists"

// Expand embeds the requested projections into each record, in place.
// It must only ever be called with the paginated page, never the full
// result set, expansion cost is bounded by pageSize.
//
// Projections are validated at parse time, so reaching here means
// every referenced entity and field resolves.
func Expand(
	ctx context.Context,
	repo entity.Repository,
	owner *meta.EntityDescriptor,
	records []entity.Record,
	views []query.ViewSpec,
) *Error.Status {
	if len(views) == 0 {
		return nil
	}

	for _, v := range views {
		fk, ok := owner.RefField(v.Entity)
		if !ok {
			return Error.NewStatusError(
				Error.BadRequest,
				owner.Name+" has no reference to "+v.Entity,
			)
		}

		for _, record := range records {
			embedded, err := expandOne(ctx, repo, v, record[fk.Name])
			if err != nil {
				return err
			}

			record[v.Entity] = embedded
		}
	}

	return nil
}

func expandOne(
	ctx context.Context,
	repo entity.Repository,
	v query.ViewSpec,
	fkValue any,
) (entity.Record, *Error.Status) {
	missing := entity.Record{ExistsField: false}

	id, ok := fkValue.(string)
	if !ok || id == "" {
		return missing, nil
	}

	target, err := repo.GetByID(ctx, v.Entity, id)
	if err != nil {
		if err.Code() == Error.NotFound {
			return missing, nil
		}
		return nil, err
	}

	embedded := entity.Record{ExistsField: true}
	for _, field := range v.Fields {
		embedded[field] = target[field]
	}

	return embedded, nil
}
