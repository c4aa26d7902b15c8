package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeInvalidTextRepr      = "22P02"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// sqlState extracts the SQLSTATE from either driver's error type.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return sqlState(err) == codeUniqueViolation
}

// mapError turns driver errors into entity sentinels; anything else is wrapped with op.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrNotFound
	}
	switch sqlState(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%s: %w", op, entity.ErrStorageConflict)
	case codeForeignKeyViolation, codeInvalidTextRepr:
		// 22P02: an id that is not a UUID cannot name any row.
		return fmt.Errorf("%s: %w", op, entity.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
