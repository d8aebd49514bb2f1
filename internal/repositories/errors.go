package repositories

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"messenger-service/internal/apperrors"
)

const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a Postgres unique-constraint error.
// Duplicate keys from check-then-insert races surface as Conflict this way.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}

// translateErr maps store-level errors onto the shared taxonomy.
func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return apperrors.ErrNotFound
	case isUniqueViolation(err):
		return apperrors.ErrConflict
	default:
		return err
	}
}
