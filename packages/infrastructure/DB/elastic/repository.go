package elastic

import (
	"bytes"
	"context"
	"strings"

	"entiq/packages/common/config"
	jsonenc "entiq/packages/common/encoding/json"
	Error "entiq/packages/common/errors"
	"entiq/packages/common/util"
	"entiq/packages/core/cascade"
	"entiq/packages/core/entity"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

type repository struct {
	con *connector

	// The full driver, the synthetic cascade queries through it.
	self entity.Repository
}

// Writes either block until the change is searchable or return
// immediately, depending on the consistency mode.
func refreshParam() string {
	return util.Ternary(config.DB.StrictConsistency, "wait_for", "false")
}

// The index has no unique constraint, so uniqueness is probed before
// every write. Under strict consistency the index refreshes first,
// otherwise a recent unflushed write may slip past the probe.
func (r *repository) checkUnique(ctx context.Context, entityName string, record entity.Record, excludeID string) *Error.Status {
	fields := r.con.getUniqueFields(entityName)
	if len(fields) == 0 {
		return nil
	}

	if config.DB.StrictConsistency {
		_, err := r.con.perform(func() (*esapi.Response, error) {
			return r.con.client.Indices.Refresh(
				r.con.client.Indices.Refresh.WithIndex(indexFor(entityName)),
				r.con.client.Indices.Refresh.WithContext(ctx),
			)
		})
		if err != nil {
			return r.con.mapError(err, entityName, "Refresh")
		}
	}

	for _, field := range fields {
		value, ok := record[field].(string)
		if !ok || value == "" {
			continue
		}

		body, encodeErr := encodeBody(map[string]any{
			"query": map[string]any{
				"match": map[string]any{field: value},
			},
			"size": 10,
		})
		if encodeErr != nil {
			return Error.StatusInternalError
		}

		raw, err := r.con.perform(func() (*esapi.Response, error) {
			return r.con.client.Search(
				r.con.client.Search.WithContext(ctx),
				r.con.client.Search.WithIndex(indexFor(entityName)),
				r.con.client.Search.WithBody(body),
			)
		})
		if err != nil {
			return r.con.mapError(err, entityName, "Unique probe")
		}

		parsed, decodeErr := jsonenc.Decode[searchResponse](bytes.NewReader(raw))
		if decodeErr != nil {
			return Error.StatusInternalError
		}

		for _, hit := range parsed.Hits.Hits {
			hitID, _ := hit.Source[entity.IDField].(string)
			if hitID == excludeID {
				continue
			}

			existing, _ := hit.Source[field].(string)
			if strings.EqualFold(existing, value) {
				return Error.NewFieldError(
					Error.Conflict,
					field,
					"Value already in use: "+field,
				)
			}
		}
	}

	return nil
}

func (r *repository) Create(ctx context.Context, entityName string, record entity.Record) (string, *Error.Status) {
	id, _ := record[entity.IDField].(string)
	if id == "" {
		return "", Error.NewStatusError(Error.Internal, "Record has no id")
	}

	ctx, cancel := r.con.queryContext(ctx)

	defer cancel()

	if err := r.checkUnique(ctx, entityName, record, id); err != nil {
		return "", err
	}

	body, encodeErr := encodeBody(record)
	if encodeErr != nil {
		return "", Error.StatusInternalError
	}

	_, err := r.con.perform(func() (*esapi.Response, error) {
		return r.con.client.Create(
			indexFor(entityName),
			id,
			body,
			r.con.client.Create.WithContext(ctx),
			r.con.client.Create.WithRefresh(refreshParam()),
		)
	})
	if err != nil {
		if strings.Contains(err.Error(), "version_conflict_engine_exception") {
			return "", Error.NewFieldError(
				Error.Conflict,
				entity.IDField,
				"Record already exists: "+id,
			)
		}
		return "", r.con.mapError(err, entityName, "Create")
	}

	return id, nil
}

func (r *repository) Update(ctx context.Context, entityName string, id string, changes entity.Record) *Error.Status {
	ctx, cancel := r.con.queryContext(ctx)

	defer cancel()

	if err := r.checkUnique(ctx, entityName, changes, id); err != nil {
		return err
	}

	body, encodeErr := encodeBody(map[string]any{"doc": changes})
	if encodeErr != nil {
		return Error.StatusInternalError
	}

	_, err := r.con.perform(func() (*esapi.Response, error) {
		return r.con.client.Update(
			indexFor(entityName),
			id,
			body,
			r.con.client.Update.WithContext(ctx),
			r.con.client.Update.WithRefresh(refreshParam()),
		)
	})
	if err != nil {
		return r.con.mapError(err, entityName, "Update")
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, entityName string, id string) *Error.Status {
	ctx, cancel := r.con.queryContext(ctx)

	defer cancel()

	_, err := r.con.perform(func() (*esapi.Response, error) {
		return r.con.client.Delete(
			indexFor(entityName),
			id,
			r.con.client.Delete.WithContext(ctx),
			r.con.client.Delete.WithRefresh(refreshParam()),
		)
	})
	if err != nil {
		return r.con.mapError(err, entityName, "Delete")
	}

	return nil
}

// The index keeps no unique constraints, the fields are remembered and
// enforced by the write-path probes.
func (r *repository) EnsureUniqueIndexes(ctx context.Context, entityName string, fields []string) *Error.Status {
	r.con.setUniqueFields(entityName, fields)
	return nil
}

func (r *repository) SupportsNativeCascade() bool {
	return false
}

func (r *repository) DeleteWithCascade(ctx context.Context, entityName string, id string) *Error.Status {
	return cascade.Run(ctx, r.self, r.con.provider, entityName, id)
}
