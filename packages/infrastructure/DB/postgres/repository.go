package postgres

import (
	"context"
	"strconv"
	"strings"

	"entiq/packages/common/config"
	jsonenc "entiq/packages/common/encoding/json"
	Error "entiq/packages/common/errors"
	"entiq/packages/common/util"
	"entiq/packages/core/entity"
)

type repository struct {
	con *connector
}

func (r *repository) Create(ctx context.Context, entityName string, record entity.Record) (string, *Error.Status) {
	ent, ok := r.con.provider.Entity(entityName)
	if !ok {
		return "", Error.StatusNotFound
	}

	id, _ := record[entity.IDField].(string)
	if id == "" {
		return "", Error.NewStatusError(Error.Internal, "Record has no id")
	}

	payload, err := jsonenc.Encode(record)
	if err != nil {
		return "", Error.StatusInternalError
	}

	columns := []string{"id", "payload"}
	values := []any{id, payload}

	for _, fd := range refFields(ent) {
		columns = append(columns, strings.ToLower(fd.Name))
		if ref, ok := record[fd.Name].(string); ok && ref != "" {
			values = append(values, ref)
		} else {
			values = append(values, nil)
		}
	}

	placeholders := make([]string, len(values))
	for i := range values {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdent(col)
	}

	sql := "INSERT INTO " + tableFor(entityName) +
		" (" + strings.Join(quoted, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ")"

	ctx, cancel := r.con.queryContext(ctx)

	defer cancel()

	if _, err := r.con.pool.Exec(ctx, sql, values...); err != nil {
		return "", mapError(err, entityName, "Create")
	}

	return id, nil
}

func (r *repository) Update(ctx context.Context, entityName string, id string, changes entity.Record) *Error.Status {
	ent, ok := r.con.provider.Entity(entityName)
	if !ok {
		return Error.StatusNotFound
	}

	patch, err := jsonenc.Encode(changes)
	if err != nil {
		return Error.StatusInternalError
	}

	sets := []string{"payload = payload || $2"}
	values := []any{id, patch}

	// Changed reference fields keep their mirror columns in sync.
	for _, fd := range refFields(ent) {
		changed, present := changes[fd.Name]
		if !present {
			continue
		}

		placeholder := "$" + strconv.Itoa(len(values)+1)
		sets = append(sets, quoteIdent(fd.Name)+" = "+placeholder)

		if ref, ok := changed.(string); ok && ref != "" {
			values = append(values, ref)
		} else {
			values = append(values, nil)
		}
	}

	sql := "UPDATE " + tableFor(entityName) + " SET " + strings.Join(sets, ", ") + " WHERE id = $1"

	ctx, cancel := r.con.queryContext(ctx)

	defer cancel()

	tag, execErr := r.con.pool.Exec(ctx, sql, values...)
	if execErr != nil {
		return mapError(execErr, entityName, "Update")
	}

	if tag.RowsAffected() == 0 {
		return Error.StatusNotFound
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, entityName string, id string) *Error.Status {
	ctx, cancel := r.con.queryContext(ctx)

	defer cancel()

	tag, err := r.con.pool.Exec(
		ctx,
		"DELETE FROM "+tableFor(entityName)+" WHERE id = $1",
		id,
	)
	if err != nil {
		return mapError(err, entityName, "Delete")
	}

	if tag.RowsAffected() == 0 {
		return Error.StatusNotFound
	}

	return nil
}

func (r *repository) EnsureUniqueIndexes(ctx context.Context, entityName string, fields []string) *Error.Status {
	for _, field := range fields {
		name := "uq_" + strings.ToLower(entityName) + "_" + field

		expr := util.Ternary(
			config.DB.CaseSensitiveCollation,
			"((payload->>"+jsonKey(field)+"))",
			"(lower(payload->>"+jsonKey(field)+"))",
		)

		ddl := "CREATE UNIQUE INDEX IF NOT EXISTS " + quoteName(name) +
			" ON " + tableFor(entityName) + " " + expr

		if err := r.con.exec("Verifying unique index "+name, ddl); err != nil {
			dbLogger.Error("Failed to install unique index", err.Error(), nil)
			return Error.StatusInternalError
		}
	}

	return nil
}

// Deletes cascade through the mirrored foreign key columns.
func (r *repository) SupportsNativeCascade() bool {
	return true
}

func (r *repository) DeleteWithCascade(ctx context.Context, entityName string, id string) *Error.Status {
	err := r.Delete(ctx, entityName, id)

	// Deleting an id that is already gone is a no-op.
	if err != nil && err.Code() == Error.NotFound {
		return nil
	}

	return err
}
