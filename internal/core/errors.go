package core

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// NotFoundError reports a referenced entity that does not exist or has been soft-deleted.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConflictError reports a uniqueness violation on a vendor field.
type ConflictError struct {
	Entity string
	Field  string
	Value  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Entity, e.Field, e.Value)
}

// ValidationError reports malformed input. Field is empty when the error is not tied to a
// single input field (for example an overpayment).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InvalidStateError reports an operation that is illegal for the entity's current lifecycle state.
type InvalidStateError struct {
	Entity  string
	ID      int
	Status  string
	Message string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %d (status %s): %s", e.Entity, e.ID, e.Status, e.Message)
}

// RetryableError reports a transaction-level failure (lock timeout, serialization conflict,
// deadlock, exhausted identifier attempts). The whole request may be retried by the caller.
type RetryableError struct {
	Op  string
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("%s: retryable failure: %v", e.Op, e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

// SQLSTATE codes the core interprets.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
)

// wrapDBError turns transaction-level PostgreSQL failures into *RetryableError and wraps
// everything else with op for context.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RetryableError
	if errors.As(err, &re) {
		return err
	}
	if isRetryablePgError(err) {
		return &RetryableError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isRetryablePgError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable, pgQueryCanceled:
		return true
	}
	return false
}

// uniqueViolation returns the violated constraint name when err is a unique violation.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
