package postgres

import (
	"bytes"
	"context"
	"errors"
	"strconv"

	"entiq/packages/common/config"
	jsonenc "entiq/packages/common/encoding/json"
	Error "entiq/packages/common/errors"
	"entiq/packages/core/entity"
	"entiq/packages/core/query"

	"github.com/jackc/pgx/v5"
)

type seeker struct {
	con *connector
}

func decodePayload(raw []byte) (entity.Record, *Error.Status) {
	record, err := jsonenc.Decode[entity.Record](bytes.NewReader(raw))
	if err != nil {
		return nil, Error.StatusInternalError
	}
	return record, nil
}

func (s *seeker) GetByID(ctx context.Context, entityName string, id string) (entity.Record, *Error.Status) {
	ctx, cancel := s.con.queryContext(ctx)

	defer cancel()

	var raw []byte

	err := s.con.pool.QueryRow(
		ctx,
		"SELECT payload FROM "+tableFor(entityName)+" WHERE id = $1",
		id,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, Error.StatusNotFound
		}
		return nil, mapError(err, entityName, "GetByID")
	}

	return decodePayload(raw)
}

func (s *seeker) GetAll(ctx context.Context, q *query.Query) ([]entity.Record, int64, *Error.Status) {
	ent, ok := s.con.provider.Entity(q.Entity)
	if !ok {
		return nil, 0, Error.StatusNotFound
	}

	ctx, cancel := s.con.queryContext(ctx)

	defer cancel()

	caseSensitive := config.DB.CaseSensitiveCollation

	builder := newBuilder(ent)
	where := builder.Where(q.Filters, q.Match, caseSensitive)
	order := builder.OrderBy(q.Sort, caseSensitive)

	table := tableFor(q.Entity)

	var total int64

	err := s.con.pool.QueryRow(
		ctx,
		"SELECT COUNT(*) FROM "+table+" "+where,
		builder.args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, mapError(err, q.Entity, "GetAll count")
	}

	sql := "SELECT payload FROM " + table + " " + where + " " + order +
		" LIMIT " + strconv.Itoa(q.PageSize) +
		" OFFSET " + strconv.Itoa(q.Offset())

	rows, err := s.con.pool.Query(ctx, sql, builder.args...)
	if err != nil {
		return nil, 0, mapError(err, q.Entity, "GetAll")
	}

	defer rows.Close()

	records := []entity.Record{}

	for rows.Next() {
		var raw []byte

		if err := rows.Scan(&raw); err != nil {
			return nil, 0, mapError(err, q.Entity, "GetAll scan")
		}

		record, decodeErr := decodePayload(raw)
		if decodeErr != nil {
			return nil, 0, decodeErr
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err, q.Entity, "GetAll rows")
	}

	return records, total, nil
}
