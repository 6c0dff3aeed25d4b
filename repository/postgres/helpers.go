package postgres

import (
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fastygo/taskproof/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

// classifyWriteError turns constraint violations into domain errors so the
// offline buffer stops retrying writes that can never succeed.
func classifyWriteError(err error, entity string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return domain.WrapError(domain.ErrCodeConflict, entity+" already exists", err)
	case pgForeignKeyViolation, pgCheckViolation:
		return domain.WrapError(domain.ErrCodeInvalid, entity+" violates a constraint", err)
	default:
		return err
	}
}
