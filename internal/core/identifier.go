package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

const (
	poNumberPrefix         = "PO"
	paymentReferencePrefix = "PAY"

	// maxIdentifierAttempts bounds how often an insert is retried after its generated
	// identifier collided with an existing row.
	maxIdentifierAttempts = 3
)

// IdentifierGenerator produces PO numbers and payment references inside the caller's
// transaction.
type IdentifierGenerator interface {
	NextPONumber(ctx context.Context, tx pgx.Tx) (string, error)
	NextPaymentReference(ctx context.Context, tx pgx.Tx) (string, error)
}

type sequenceGenerator struct {
	now Clock
}

// Sequences backing each identifier kind.
const (
	poNumberSequence         = "po_number_seq"
	paymentReferenceSequence = "payment_reference_seq"
)

// NewSequenceGenerator returns a generator that draws numbers from PostgreSQL sequences.
// Identifiers have the form PREFIX-YYYYMMDD-NNNNN where YYYYMMDD is the UTC issue date
// and NNNNN is the sequence value. nextval is not rolled back with the caller's
// transaction and never waits for one, so numbers can have gaps but two callers never
// block each other or receive the same number.
func NewSequenceGenerator(now Clock) IdentifierGenerator {
	if now == nil {
		now = SystemClock
	}
	return &sequenceGenerator{now: now}
}

func (g *sequenceGenerator) NextPONumber(ctx context.Context, tx pgx.Tx) (string, error) {
	return g.next(ctx, tx, poNumberPrefix, poNumberSequence)
}

func (g *sequenceGenerator) NextPaymentReference(ctx context.Context, tx pgx.Tx) (string, error) {
	return g.next(ctx, tx, paymentReferencePrefix, paymentReferenceSequence)
}

func (g *sequenceGenerator) next(ctx context.Context, tx pgx.Tx, prefix, sequence string) (string, error) {
	var n int64
	if err := tx.QueryRow(ctx, "SELECT nextval($1::regclass)", sequence).Scan(&n); err != nil {
		return "", wrapDBError("generate "+prefix+" identifier", err)
	}
	return FormatIdentifier(prefix, g.now().UTC(), n), nil
}

// FormatIdentifier renders PREFIX-YYYYMMDD-NNNNN.
func FormatIdentifier(prefix string, day time.Time, n int64) string {
	return fmt.Sprintf("%s-%s-%05d", prefix, day.Format("20060102"), n)
}

// insertWithIdentifier runs insert inside a savepoint with a freshly generated identifier.
// When the insert violates constraint (the identifier's unique constraint) it asks next for
// another identifier, up to maxIdentifierAttempts, then fails with *RetryableError.
func insertWithIdentifier(ctx context.Context, tx pgx.Tx, op, constraint string,
	next func(context.Context, pgx.Tx) (string, error),
	insert func(ctx context.Context, sp pgx.Tx, identifier string) error,
) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxIdentifierAttempts; attempt++ {
		id, err := next(ctx, tx)
		if err != nil {
			return "", err
		}

		sp, err := tx.Begin(ctx)
		if err != nil {
			return "", wrapDBError(op+": savepoint", err)
		}
		err = insert(ctx, sp, id)
		if err == nil {
			if err := sp.Commit(ctx); err != nil {
				return "", wrapDBError(op+": release savepoint", err)
			}
			return id, nil
		}
		_ = sp.Rollback(ctx)

		if name, ok := uniqueViolation(err); ok && name == constraint {
			lastErr = err
			continue
		}
		return "", err
	}
	return "", &RetryableError{
		Op:  op,
		Err: fmt.Errorf("identifier collided %d times: %w", maxIdentifierAttempts, lastErr),
	}
}
