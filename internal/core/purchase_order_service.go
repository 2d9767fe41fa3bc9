package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const poColumns = `po.id, po.po_number, po.vendor_id, po.po_date, po.total_amount, po.due_date,
	po.status, po.created_by, po.updated_by, po.created_at, po.updated_at`

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type purchaseOrderService struct {
	pool *pgxpool.Pool
	ids  IdentifierGenerator
	now  Clock
}

// NewPurchaseOrderService constructs a PurchaseOrderService. now supplies the PO date.
func NewPurchaseOrderService(pool *pgxpool.Pool, ids IdentifierGenerator, now Clock) PurchaseOrderService {
	if now == nil {
		now = SystemClock
	}
	return &purchaseOrderService{pool: pool, ids: ids, now: now}
}

func scanPO(row pgx.Row, po *PurchaseOrder, extra ...any) error {
	dest := []any{
		&po.ID, &po.PONumber, &po.VendorID, &po.PODate, &po.TotalAmount, &po.DueDate,
		&po.Status, &po.CreatedBy, &po.UpdatedBy, &po.CreatedAt, &po.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// CreatePO creates an APPROVED purchase order and its line items in one transaction.
func (s *purchaseOrderService) CreatePO(ctx context.Context, input CreatePOInput) (*PurchaseOrder, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	items, total, err := priceItems(input.Items)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, wrapDBError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	// FOR SHARE keeps the vendor from being deactivated or deleted until the PO is in.
	var (
		vendor       VendorRef
		paymentTerms int
		vendorStatus VendorStatus
	)
	err = tx.QueryRow(ctx, `
		SELECT id, name, contact_person, payment_terms, status
		FROM vendors
		WHERE id = $1 AND deleted_at IS NULL
		FOR SHARE`,
		input.VendorID,
	).Scan(&vendor.ID, &vendor.Name, &vendor.ContactPerson, &paymentTerms, &vendorStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "vendor", ID: input.VendorID}
		}
		return nil, wrapDBError(fmt.Sprintf("load vendor %d", input.VendorID), err)
	}
	if vendorStatus != VendorStatusActive {
		return nil, &InvalidStateError{
			Entity: "vendor", ID: vendor.ID, Status: string(vendorStatus),
			Message: "cannot create PO for inactive vendor",
		}
	}

	poDate := s.now().UTC()
	dueDate := poDate.AddDate(0, 0, paymentTerms)
	actor := nullable(input.Actor)

	po := &PurchaseOrder{}
	_, err = insertWithIdentifier(ctx, tx, "create purchase order", "purchase_orders_po_number_key",
		s.ids.NextPONumber,
		func(ctx context.Context, sp pgx.Tx, number string) error {
			return scanPO(sp.QueryRow(ctx, `
				INSERT INTO purchase_orders AS po
				       (po_number, vendor_id, po_date, total_amount, due_date, status, created_by, updated_by)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
				RETURNING `+poColumns,
				number, vendor.ID, poDate, total, dueDate, POStatusApproved, actor,
			), po)
		},
	)
	if err != nil {
		return nil, wrapDBError("insert purchase order", err)
	}

	for i := range items {
		items[i].PurchaseOrderID = po.ID
		if err := tx.QueryRow(ctx, `
			INSERT INTO line_items (purchase_order_id, line_number, description, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			po.ID, items[i].LineNumber, items[i].Description, items[i].Quantity, items[i].UnitPrice, items[i].LineTotal,
		).Scan(&items[i].ID); err != nil {
			return nil, wrapDBError(fmt.Sprintf("insert PO line %d", i+1), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, wrapDBError("commit purchase order", err)
	}

	po.Vendor = &vendor
	po.Items = items
	return po, nil
}

// ListPOs returns one page of purchase orders matching filter.
func (s *purchaseOrderService) ListPOs(ctx context.Context, filter POFilter, page Page) (*Paginated[POListItem], error) {
	page = page.Normalize()
	where, args := poFilterClause(filter)

	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM purchase_orders po"+where, args...,
	).Scan(&total); err != nil {
		return nil, wrapDBError("count purchase orders", err)
	}

	args = append(args, page.Limit, page.Offset())
	query := `
		SELECT ` + poColumns + `,
		       v.id, v.name, v.contact_person,
		       (SELECT COUNT(*) FROM payments p
		        WHERE p.purchase_order_id = po.id AND p.deleted_at IS NULL)
		FROM purchase_orders po
		JOIN vendors v ON v.id = po.vendor_id` + where + fmt.Sprintf(`
		ORDER BY po.created_at DESC, po.id DESC
		LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapDBError("list purchase orders", err)
	}
	defer rows.Close()

	var orders []POListItem
	var ids []int
	for rows.Next() {
		var o POListItem
		v := &VendorRef{}
		if err := scanPO(rows, &o.PurchaseOrder, &v.ID, &v.Name, &v.ContactPerson, &o.PaymentCount); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		o.Vendor = v
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("list purchase orders", err)
	}

	if len(ids) > 0 {
		items, err := fetchItems(ctx, s.pool, ids)
		if err != nil {
			return nil, err
		}
		for i := range orders {
			orders[i].Items = items[orders[i].ID]
		}
	}
	return newPaginated(orders, total, page), nil
}

// poFilterClause renders filter as a WHERE clause over alias po with positional args.
func poFilterClause(f POFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.VendorID != nil {
		add("po.vendor_id = $%d", *f.VendorID)
	}
	if f.Status != nil {
		add("po.status = $%d", *f.Status)
	}
	if f.DateFrom != nil {
		add("po.po_date >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("po.po_date <= $%d", *f.DateTo)
	}
	if f.AmountMin != nil {
		add("po.total_amount >= $%d", *f.AmountMin)
	}
	if f.AmountMax != nil {
		add("po.total_amount <= $%d", *f.AmountMax)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// GetPO returns a PO with items, non-voided payments and its payment summary.
func (s *purchaseOrderService) GetPO(ctx context.Context, id int) (*PODetail, error) {
	d := &PODetail{}
	v := &VendorRef{}
	err := scanPO(s.pool.QueryRow(ctx, `
		SELECT `+poColumns+`, v.id, v.name, v.contact_person, v.email
		FROM purchase_orders po
		JOIN vendors v ON v.id = po.vendor_id
		WHERE po.id = $1`,
		id,
	), &d.PurchaseOrder, &v.ID, &v.Name, &v.ContactPerson, &v.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "purchase order", ID: id}
		}
		return nil, wrapDBError(fmt.Sprintf("get purchase order %d", id), err)
	}
	d.Vendor = v

	items, err := fetchItems(ctx, s.pool, []int{id})
	if err != nil {
		return nil, err
	}
	d.Items = items[id]

	d.Payments, err = fetchPayments(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	amounts := make([]decimal.Decimal, len(d.Payments))
	for i, p := range d.Payments {
		amounts[i] = p.AmountPaid
	}
	d.PaymentSummary = summarize(d.TotalAmount, amounts)
	return d, nil
}

// UpdateStatus overrides a PO's status under the same row lock the payment engine takes.
func (s *purchaseOrderService) UpdateStatus(ctx context.Context, id int, status POStatus, actor string) (*PurchaseOrder, error) {
	if !status.IsValid() {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, wrapDBError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	current, err := lockPO(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	paid, err := paidSum(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := checkStatusOverride(id, current.Status, status, current.TotalAmount, paid); err != nil {
		return nil, err
	}

	po := &PurchaseOrder{}
	if err := scanPO(tx.QueryRow(ctx, `
		UPDATE purchase_orders AS po
		SET status = $1, updated_by = $2, updated_at = NOW()
		WHERE po.id = $3
		RETURNING `+poColumns,
		status, nullable(actor), id,
	), po); err != nil {
		return nil, wrapDBError(fmt.Sprintf("update status of purchase order %d", id), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, wrapDBError("commit status update", err)
	}
	return po, nil
}

// lockPO loads a PO and holds its row lock until tx ends. Every write that depends on the
// PO's paid sum goes through here first.
func lockPO(ctx context.Context, tx pgx.Tx, id int) (*PurchaseOrder, error) {
	po := &PurchaseOrder{}
	err := scanPO(tx.QueryRow(ctx,
		"SELECT "+poColumns+" FROM purchase_orders po WHERE po.id = $1 FOR UPDATE", id,
	), po)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "purchase order", ID: id}
		}
		return nil, wrapDBError(fmt.Sprintf("lock purchase order %d", id), err)
	}
	return po, nil
}

// paidSum is the sum of a PO's non-voided payments.
func paidSum(ctx context.Context, q querier, poID int) (decimal.Decimal, error) {
	var paid decimal.Decimal
	if err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount_paid), 0)
		FROM payments
		WHERE purchase_order_id = $1 AND deleted_at IS NULL`,
		poID,
	).Scan(&paid); err != nil {
		return decimal.Zero, wrapDBError(fmt.Sprintf("sum payments of purchase order %d", poID), err)
	}
	return paid, nil
}

// fetchItems returns the line items of the given POs keyed by PO id, in line order.
func fetchItems(ctx context.Context, q querier, poIDs []int) (map[int][]LineItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, purchase_order_id, line_number, description, quantity, unit_price, line_total
		FROM line_items
		WHERE purchase_order_id = ANY($1)
		ORDER BY purchase_order_id, line_number`,
		poIDs,
	)
	if err != nil {
		return nil, wrapDBError("fetch line items", err)
	}
	defer rows.Close()

	items := make(map[int][]LineItem, len(poIDs))
	for rows.Next() {
		var l LineItem
		if err := rows.Scan(
			&l.ID, &l.PurchaseOrderID, &l.LineNumber, &l.Description,
			&l.Quantity, &l.UnitPrice, &l.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		items[l.PurchaseOrderID] = append(items[l.PurchaseOrderID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("fetch line items", err)
	}
	return items, nil
}

// maxAmount is the largest value a NUMERIC(14,2) money column holds.
var maxAmount = decimal.RequireFromString("999999999999.99")

// checkMoney requires a positive amount with at most two decimal places that fits the
// money columns.
func checkMoney(field string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return &ValidationError{Field: field, Message: "must be greater than 0"}
	}
	if !d.Equal(d.Round(2)) {
		return &ValidationError{Field: field, Message: "must have at most 2 decimal places"}
	}
	if d.GreaterThan(maxAmount) {
		return &ValidationError{Field: field, Message: "must not exceed " + maxAmount.StringFixed(2)}
	}
	return nil
}

// priceItems validates the requested lines and computes each line total and the PO total.
// Totals past maxAmount are rejected here rather than by the database.
func priceItems(in []LineItemInput) ([]LineItem, decimal.Decimal, error) {
	items := make([]LineItem, len(in))
	total := decimal.Zero
	for i, item := range in {
		if strings.TrimSpace(item.Description) == "" {
			return nil, total, &ValidationError{Field: fmt.Sprintf("items[%d].description", i), Message: "is required"}
		}
		if err := checkMoney(fmt.Sprintf("items[%d].unitPrice", i), item.UnitPrice); err != nil {
			return nil, total, err
		}
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if lineTotal.GreaterThan(maxAmount) {
			return nil, total, &ValidationError{
				Field:   fmt.Sprintf("items[%d]", i),
				Message: "line total " + lineTotal.StringFixed(2) + " exceeds " + maxAmount.StringFixed(2),
			}
		}
		items[i] = LineItem{
			LineNumber:  i + 1,
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   lineTotal,
		}
		total = total.Add(lineTotal)
	}
	if total.GreaterThan(maxAmount) {
		return nil, total, &ValidationError{
			Field:   "items",
			Message: "total amount " + total.StringFixed(2) + " exceeds " + maxAmount.StringFixed(2),
		}
	}
	return items, total, nil
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
