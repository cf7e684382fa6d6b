package postgres

import (
	"context"
	"errors"
	"strings"

	Error "entiq/packages/common/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Unique index names encode the offending field: uq_<table>_<field>.
func fieldFromConstraint(constraint string, table string) string {
	prefix := "uq_" + strings.ToLower(table) + "_"
	if strings.HasPrefix(constraint, prefix) {
		return constraint[len(prefix):]
	}
	return ""
}

func mapError(err error, entityName string, operation string) *Error.Status {
	if errors.Is(err, context.DeadlineExceeded) {
		return Error.StatusTimeout
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			field := fieldFromConstraint(pgErr.ConstraintName, entityName)
			if field != "" {
				return Error.NewFieldError(
					Error.Conflict,
					field,
					"Value already in use: "+field,
				)
			}
			return Error.NewStatusError(Error.Internal, "Unexpected unique violation")
		case foreignKeyViolation:
			return Error.NewStatusError(
				Error.BadRequest,
				"Referenced record does not exist",
			)
		}
	}

	dbLogger.Error(operation+" failed for "+entityName, err.Error(), nil)

	return Error.StatusInternalError
}
