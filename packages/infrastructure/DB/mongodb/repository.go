package mongodb

import (
	"context"
	"strings"

	Error "entiq/packages/common/errors"
	"entiq/packages/core/cascade"
	"entiq/packages/core/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type repository struct {
	con *connector

	// The full driver, the synthetic cascade queries through it.
	self entity.Repository
}

const uniqueIndexPrefix = "uq_"

// Index names carry the field so conflicts can name it.
func fieldFromIndexError(err error) string {
	message := err.Error()

	start := strings.Index(message, uniqueIndexPrefix)
	if start < 0 {
		return ""
	}

	field := message[start+len(uniqueIndexPrefix):]
	if end := strings.IndexByte(field, ' '); end >= 0 {
		return field[:end]
	}

	return field
}

func mapError(err error, entityName string, operation string) *Error.Status {
	if mongo.IsTimeout(err) {
		return Error.StatusTimeout
	}

	if mongo.IsDuplicateKeyError(err) {
		if field := fieldFromIndexError(err); field != "" {
			return Error.NewFieldError(
				Error.Conflict,
				field,
				"Value already in use: "+field,
			)
		}
		// A duplicate _id trips the builtin _id_ index, which carries
		// no uq_ prefix.
		if strings.Contains(err.Error(), "_id_") {
			return Error.NewFieldError(
				Error.Conflict,
				entity.IDField,
				"Record already exists",
			)
		}
		return Error.NewStatusError(Error.Internal, "Unexpected unique violation")
	}

	dbLogger.Error(operation+" failed for "+entityName, err.Error(), nil)

	return Error.StatusInternalError
}

func (r *repository) Create(ctx context.Context, entityName string, record entity.Record) (string, *Error.Status) {
	id, _ := record[entity.IDField].(string)
	if id == "" {
		return "", Error.NewStatusError(Error.Internal, "Record has no id")
	}

	doc := bson.M{"_id": id}
	for k, v := range record {
		doc[k] = v
	}

	ctx, cancel := r.con.queryContext(ctx)

	defer cancel()

	if _, err := r.con.collection(entityName).InsertOne(ctx, doc); err != nil {
		return "", mapError(err, entityName, "Create")
	}

	return id, nil
}

func (r *repository) Update(ctx context.Context, entityName string, id string, changes entity.Record) *Error.Status {
	ctx, cancel := r.con.queryContext(ctx)

	defer cancel()

	result, err := r.con.collection(entityName).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M(changes)},
	)
	if err != nil {
		return mapError(err, entityName, "Update")
	}

	if result.MatchedCount == 0 {
		return Error.StatusNotFound
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, entityName string, id string) *Error.Status {
	ctx, cancel := r.con.queryContext(ctx)

	defer cancel()

	result, err := r.con.collection(entityName).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapError(err, entityName, "Delete")
	}

	if result.DeletedCount == 0 {
		return Error.StatusNotFound
	}

	return nil
}

func (r *repository) EnsureUniqueIndexes(ctx context.Context, entityName string, fields []string) *Error.Status {
	ctx, cancel := r.con.queryContext(ctx)

	defer cancel()

	for _, field := range fields {
		opts := options.Index().
			SetUnique(true).
			SetName(uniqueIndexPrefix + field)

		if collation := queryCollation(); collation != nil {
			opts.SetCollation(collation)
		}

		model := mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: opts,
		}

		if _, err := r.con.collection(entityName).Indexes().CreateOne(ctx, model); err != nil {
			dbLogger.Error("Failed to install unique index on "+entityName+"."+field, err.Error(), nil)
			return Error.StatusInternalError
		}
	}

	return nil
}

func (r *repository) SupportsNativeCascade() bool {
	return false
}

func (r *repository) DeleteWithCascade(ctx context.Context, entityName string, id string) *Error.Status {
	return cascade.Run(ctx, r.self, r.con.provider, entityName, id)
}
