package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Common store errors for use with errors.Is()
var (
	ErrNotFound    = errors.New("not found")
	ErrDuplicate   = errors.New("duplicate entry")
	ErrInvalidSort = errors.New("invalid sort field")
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	// 23505 = unique_violation
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
