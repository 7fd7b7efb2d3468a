package persistence

import (
	"database/sql"
	"errors"
	"time"

	"ai-promoter/domain/apperror"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// storeError maps driver errors onto apperror kinds.
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return apperror.Wrap(apperror.NotFound, op, err)
	case isUniqueViolation(err):
		return apperror.Wrap(apperror.Duplicate, op, err)
	default:
		return apperror.Wrap(apperror.Persistence, op, err)
	}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func int64Ptr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time
	return &v
}
