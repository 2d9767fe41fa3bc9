package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const paymentColumns = `p.id, p.reference, p.purchase_order_id, p.amount_paid, p.payment_date,
	p.method, p.notes, p.created_by, p.created_at, p.deleted_at`

type paymentService struct {
	pool *pgxpool.Pool
	ids  IdentifierGenerator
	now  Clock
}

// NewPaymentService constructs the payment reconciliation engine.
func NewPaymentService(pool *pgxpool.Pool, ids IdentifierGenerator, now Clock) PaymentService {
	if now == nil {
		now = SystemClock
	}
	return &paymentService{pool: pool, ids: ids, now: now}
}

func scanPayment(row pgx.Row, p *Payment, extra ...any) error {
	dest := []any{
		&p.ID, &p.Reference, &p.PurchaseOrderID, &p.AmountPaid, &p.PaymentDate,
		&p.Method, &p.Notes, &p.CreatedBy, &p.CreatedAt, &p.DeletedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// ApplyPayment records a payment against a PO and advances its status.
func (s *paymentService) ApplyPayment(ctx context.Context, input PaymentInput) (*PaymentResult, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if err := checkMoney("amountPaid", input.Amount); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, wrapDBError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	po, err := lockPO(ctx, tx, input.POID)
	if err != nil {
		return nil, err
	}
	paid, err := paidSum(ctx, tx, po.ID)
	if err != nil {
		return nil, err
	}

	newStatus, summary, err := planPayment(po.ID, po.Status, po.TotalAmount, paid, input.Amount)
	if err != nil {
		return nil, err
	}

	actor := nullable(input.Actor)
	payment := Payment{}
	_, err = insertWithIdentifier(ctx, tx, "apply payment", "payments_reference_key",
		s.ids.NextPaymentReference,
		func(ctx context.Context, sp pgx.Tx, reference string) error {
			return scanPayment(sp.QueryRow(ctx, `
				INSERT INTO payments AS p
				       (reference, purchase_order_id, amount_paid, payment_date, method, notes, created_by)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING `+paymentColumns,
				reference, po.ID, input.Amount, s.now().UTC(), input.Method, nullable(input.Notes), actor,
			), &payment)
		},
	)
	if err != nil {
		return nil, wrapDBError(fmt.Sprintf("insert payment for purchase order %d", po.ID), err)
	}

	if err := setPOStatus(ctx, tx, po.ID, newStatus, actor); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, wrapDBError("commit payment", err)
	}
	return &PaymentResult{Payment: payment, POStatus: newStatus, Summary: summary}, nil
}

// VoidPayment marks a payment voided and re-derives the owning PO's status.
func (s *paymentService) VoidPayment(ctx context.Context, id int, actor string) (*VoidResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, wrapDBError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var poID int
	if err := tx.QueryRow(ctx,
		"SELECT purchase_order_id FROM payments WHERE id = $1 AND deleted_at IS NULL", id,
	).Scan(&poID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "payment", ID: id}
		}
		return nil, wrapDBError(fmt.Sprintf("load payment %d", id), err)
	}

	po, err := lockPO(ctx, tx, poID)
	if err != nil {
		return nil, err
	}
	paid, err := paidSum(ctx, tx, po.ID)
	if err != nil {
		return nil, err
	}

	// The PO lock serializes voids, so a payment voided concurrently shows up as no row here.
	payment := Payment{}
	if err := scanPayment(tx.QueryRow(ctx, `
		UPDATE payments AS p
		SET deleted_at = $1
		WHERE p.id = $2 AND p.deleted_at IS NULL
		RETURNING `+paymentColumns,
		s.now().UTC(), id,
	), &payment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "payment", ID: id}
		}
		return nil, wrapDBError(fmt.Sprintf("void payment %d", id), err)
	}

	newStatus, summary := planVoid(po.TotalAmount, paid, payment.AmountPaid)
	if err := setPOStatus(ctx, tx, po.ID, newStatus, nullable(actor)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, wrapDBError("commit void", err)
	}
	return &VoidResult{Payment: payment, POStatus: newStatus, Summary: summary}, nil
}

// ListPayments returns one page of non-voided payments, newest payment date first.
func (s *paymentService) ListPayments(ctx context.Context, page Page) (*Paginated[PaymentListItem], error) {
	page = page.Normalize()

	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM payments WHERE deleted_at IS NULL",
	).Scan(&total); err != nil {
		return nil, wrapDBError("count payments", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+paymentColumns+`,
		       po.id, po.po_number, po.total_amount, po.status, v.id, v.name
		FROM payments p
		JOIN purchase_orders po ON po.id = p.purchase_order_id
		JOIN vendors v ON v.id = po.vendor_id
		WHERE p.deleted_at IS NULL
		ORDER BY p.payment_date DESC, p.id DESC
		LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset(),
	)
	if err != nil {
		return nil, wrapDBError("list payments", err)
	}
	defer rows.Close()

	var payments []PaymentListItem
	for rows.Next() {
		var item PaymentListItem
		po := &item.PurchaseOrder
		if err := scanPayment(rows, &item.Payment,
			&po.ID, &po.PONumber, &po.TotalAmount, &po.Status, &po.Vendor.ID, &po.Vendor.Name,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("list payments", err)
	}
	return newPaginated(payments, total, page), nil
}

// GetPayment returns a non-voided payment with its PO and the PO's payment summary.
func (s *paymentService) GetPayment(ctx context.Context, id int) (*PaymentDetail, error) {
	d := &PaymentDetail{}
	po := &d.PurchaseOrder
	err := scanPayment(s.pool.QueryRow(ctx, `
		SELECT `+paymentColumns+`,
		       po.id, po.po_number, po.total_amount, po.status, v.id, v.name, v.email
		FROM payments p
		JOIN purchase_orders po ON po.id = p.purchase_order_id
		JOIN vendors v ON v.id = po.vendor_id
		WHERE p.id = $1 AND p.deleted_at IS NULL`,
		id,
	), &d.Payment,
		&po.ID, &po.PONumber, &po.TotalAmount, &po.Status, &po.Vendor.ID, &po.Vendor.Name, &po.Vendor.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "payment", ID: id}
		}
		return nil, wrapDBError(fmt.Sprintf("get payment %d", id), err)
	}

	payments, err := fetchPayments(ctx, s.pool, po.ID)
	if err != nil {
		return nil, err
	}
	amounts := make([]decimal.Decimal, len(payments))
	for i, p := range payments {
		amounts[i] = p.AmountPaid
	}
	d.PaymentSummary = summarize(po.TotalAmount, amounts)
	return d, nil
}

// setPOStatus persists a status computed by the state machine.
func setPOStatus(ctx context.Context, tx pgx.Tx, poID int, status POStatus, actor *string) error {
	if _, err := tx.Exec(ctx, `
		UPDATE purchase_orders
		SET status = $1, updated_by = COALESCE($2, updated_by), updated_at = NOW()
		WHERE id = $3`,
		status, actor, poID,
	); err != nil {
		return wrapDBError(fmt.Sprintf("set status of purchase order %d", poID), err)
	}
	return nil
}

// fetchPayments returns a PO's non-voided payments, newest payment date first.
func fetchPayments(ctx context.Context, q querier, poID int) ([]Payment, error) {
	rows, err := q.Query(ctx, `
		SELECT `+paymentColumns+`
		FROM payments p
		WHERE p.purchase_order_id = $1 AND p.deleted_at IS NULL
		ORDER BY p.payment_date DESC, p.id DESC`,
		poID,
	)
	if err != nil {
		return nil, wrapDBError(fmt.Sprintf("fetch payments of purchase order %d", poID), err)
	}
	defer rows.Close()

	payments := []Payment{}
	for rows.Next() {
		var p Payment
		if err := scanPayment(rows, &p); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(fmt.Sprintf("fetch payments of purchase order %d", poID), err)
	}
	return payments, nil
}
