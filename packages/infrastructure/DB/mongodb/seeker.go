package mongodb

import (
	"context"
	"errors"
	"sort"

	"entiq/packages/common/config"
	Error "entiq/packages/common/errors"
	"entiq/packages/core/entity"
	"entiq/packages/core/filter"
	"entiq/packages/core/meta"
	"entiq/packages/core/query"
	"entiq/packages/core/sortspec"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seeker struct {
	con *connector
}

func queryCollation() *options.Collation {
	if config.DB.CaseSensitiveCollation {
		return nil
	}
	// Strength 2 folds case but keeps diacritics significant.
	return &options.Collation{Locale: "en", Strength: 2}
}

func cleanRecord(doc bson.M) entity.Record {
	record := entity.Record(doc)
	delete(record, "_id")
	return record
}

func (s *seeker) GetByID(ctx context.Context, entityName string, id string) (entity.Record, *Error.Status) {
	ctx, cancel := s.con.queryContext(ctx)

	defer cancel()

	var doc bson.M

	err := s.con.collection(entityName).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, Error.StatusNotFound
		}
		return nil, mapError(err, entityName, "GetByID")
	}

	return cleanRecord(doc), nil
}

func (s *seeker) GetAll(ctx context.Context, q *query.Query) ([]entity.Record, int64, *Error.Status) {
	ent, ok := s.con.provider.Entity(q.Entity)
	if !ok {
		return nil, 0, Error.StatusNotFound
	}

	ctx, cancel := s.con.queryContext(ctx)

	defer cancel()

	caseSensitive := config.DB.CaseSensitiveCollation

	native, deferred := splitPushdown(ent, q.Filters)

	mongoFilter := buildFilter(ent, native, q.Match, caseSensitive)

	collection := s.con.collection(q.Entity)

	// Date conditions and date sorts need instant semantics the
	// string-typed store cannot express, those queries are finished
	// in memory by the shared evaluator.
	if len(deferred) > 0 || hasDateSort(ent, q.Sort) {
		return s.getAllScan(ctx, collection, ent, q, mongoFilter, caseSensitive)
	}

	countOpts := options.Count()
	findOpts := options.Find().
		SetSort(buildSort(q.Sort)).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.PageSize))

	if collation := queryCollation(); collation != nil {
		countOpts.SetCollation(collation)
		findOpts.SetCollation(collation)
	}

	total, err := collection.CountDocuments(ctx, mongoFilter, countOpts)
	if err != nil {
		return nil, 0, mapError(err, q.Entity, "GetAll count")
	}

	cur, err := collection.Find(ctx, mongoFilter, findOpts)
	if err != nil {
		return nil, 0, mapError(err, q.Entity, "GetAll")
	}

	defer cur.Close(ctx)

	records := []entity.Record{}

	for cur.Next(ctx) {
		var doc bson.M

		if err := cur.Decode(&doc); err != nil {
			return nil, 0, mapError(err, q.Entity, "GetAll decode")
		}

		records = append(records, cleanRecord(doc))
	}

	if err := cur.Err(); err != nil {
		return nil, 0, mapError(err, q.Entity, "GetAll cursor")
	}

	return records, total, nil
}

// getAllScan narrows the scan with the pushed-down conditions, then
// filters, sorts and paginates in memory so date comparisons follow
// the evaluator exactly, including the bare-date against midnight
// equivalence.
func (s *seeker) getAllScan(
	ctx context.Context,
	collection *mongo.Collection,
	ent *meta.EntityDescriptor,
	q *query.Query,
	mongoFilter bson.M,
	caseSensitive bool,
) ([]entity.Record, int64, *Error.Status) {
	findOpts := options.Find()

	if collation := queryCollation(); collation != nil {
		findOpts.SetCollation(collation)
	}

	cur, err := collection.Find(ctx, mongoFilter, findOpts)
	if err != nil {
		return nil, 0, mapError(err, q.Entity, "GetAll")
	}

	defer cur.Close(ctx)

	matched := []entity.Record{}

	for cur.Next(ctx) {
		var doc bson.M

		if err := cur.Decode(&doc); err != nil {
			return nil, 0, mapError(err, q.Entity, "GetAll decode")
		}

		record := cleanRecord(doc)

		if filter.Matches(record, q.Filters, q.Match, ent, caseSensitive) {
			matched = append(matched, record)
		}
	}

	if err := cur.Err(); err != nil {
		return nil, 0, mapError(err, q.Entity, "GetAll cursor")
	}

	sort.Slice(matched, func(i, j int) bool {
		a, _ := matched[i][entity.IDField].(string)
		b, _ := matched[j][entity.IDField].(string)
		return a < b
	})
	sortspec.Apply(matched, q.Sort, ent, caseSensitive)

	page := query.Paginate(matched, q.Page, q.PageSize)
	if page == nil {
		page = []entity.Record{}
	}

	return page, int64(len(matched)), nil
}
