package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the store boundary maps to domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeSerializationError  = "40001"
	codeDeadlockDetected    = "40P01"
	codeLockNotAvailable    = "55P03"
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation reports a unique-constraint violation (23505).
func isUniqueViolation(err error) bool {
	return pgErrCode(err) == codeUniqueViolation
}

// isForeignKeyViolation reports a foreign-key violation (23503), raised when a
// delete hits a protective reference.
func isForeignKeyViolation(err error) bool {
	return pgErrCode(err) == codeForeignKeyViolation
}

// isConcurrencyConflict reports errors a retried transaction can recover from:
// serialization failures, deadlocks and lock-wait timeouts.
func isConcurrencyConflict(err error) bool {
	switch pgErrCode(err) {
	case codeSerializationError, codeDeadlockDetected, codeLockNotAvailable:
		return true
	}
	return false
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefStr(p *string) string {
	if p != nil {
		return *p
	}
	return ""
}
