package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const vendorColumns = `id, name, contact_person, email, phone, payment_terms, status,
	created_at, updated_at, deleted_at`

type vendorService struct {
	pool *pgxpool.Pool
}

// NewVendorService constructs a VendorService backed by PostgreSQL.
func NewVendorService(pool *pgxpool.Pool) VendorService {
	return &vendorService{pool: pool}
}

func scanVendor(row pgx.Row, v *Vendor) error {
	return row.Scan(
		&v.ID, &v.Name, &v.ContactPerson, &v.Email, &v.Phone, &v.PaymentTerms, &v.Status,
		&v.CreatedAt, &v.UpdatedAt, &v.DeletedAt,
	)
}

// CreateVendor inserts a new vendor after checking name and email are free.
func (s *vendorService) CreateVendor(ctx context.Context, input VendorInput) (*Vendor, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	if input.Status == "" {
		input.Status = VendorStatusActive
	}
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, wrapDBError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := checkVendorUnique(ctx, tx, 0, &input.Name, &input.Email); err != nil {
		return nil, err
	}

	v := &Vendor{}
	err = scanVendor(tx.QueryRow(ctx, `
		INSERT INTO vendors (name, contact_person, email, phone, payment_terms, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+vendorColumns,
		input.Name, input.ContactPerson, input.Email, input.Phone, input.PaymentTerms, input.Status,
	), v)
	if err != nil {
		if cerr := vendorConflict(err, input.Name, input.Email); cerr != nil {
			return nil, cerr
		}
		return nil, wrapDBError(fmt.Sprintf("create vendor %q", input.Name), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, wrapDBError("commit vendor", err)
	}
	return v, nil
}

// GetVendor returns a non-deleted vendor and its payment summary.
func (s *vendorService) GetVendor(ctx context.Context, id int) (*VendorDetail, error) {
	d := &VendorDetail{}
	err := scanVendor(s.pool.QueryRow(ctx,
		"SELECT "+vendorColumns+" FROM vendors WHERE id = $1 AND deleted_at IS NULL", id,
	), &d.Vendor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "vendor", ID: id}
		}
		return nil, wrapDBError(fmt.Sprintf("get vendor %d", id), err)
	}

	sum := &d.PaymentSummary
	if err := s.pool.QueryRow(ctx, `
		SELECT COUNT(po.id),
		       COALESCE(SUM(po.total_amount), 0),
		       COALESCE(SUM(p.paid), 0)
		FROM purchase_orders po
		LEFT JOIN (
		    SELECT purchase_order_id, SUM(amount_paid) AS paid
		    FROM payments
		    WHERE deleted_at IS NULL
		    GROUP BY purchase_order_id
		) p ON p.purchase_order_id = po.id
		WHERE po.vendor_id = $1`,
		id,
	).Scan(&sum.TotalPOs, &sum.TotalAmount, &sum.TotalPaid); err != nil {
		return nil, wrapDBError(fmt.Sprintf("summarize vendor %d", id), err)
	}
	sum.OutstandingAmount = sum.TotalAmount.Sub(sum.TotalPaid)
	return d, nil
}

// ListVendors returns one page of non-deleted vendors, newest first.
func (s *vendorService) ListVendors(ctx context.Context, page Page) (*Paginated[Vendor], error) {
	page = page.Normalize()

	var total int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM vendors WHERE deleted_at IS NULL",
	).Scan(&total); err != nil {
		return nil, wrapDBError("count vendors", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+vendorColumns+`
		FROM vendors
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset(),
	)
	if err != nil {
		return nil, wrapDBError("list vendors", err)
	}
	defer rows.Close()

	var vendors []Vendor
	for rows.Next() {
		var v Vendor
		if err := scanVendor(rows, &v); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("list vendors", err)
	}
	return newPaginated(vendors, total, page), nil
}

// UpdateVendor applies a partial update to a non-deleted vendor.
func (s *vendorService) UpdateVendor(ctx context.Context, id int, update VendorUpdate) (*Vendor, error) {
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		update.Name = &trimmed
	}
	if update.Email != nil {
		trimmed := strings.TrimSpace(*update.Email)
		update.Email = &trimmed
	}
	if err := validateStruct(update); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, wrapDBError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	current := &Vendor{}
	if err := scanVendor(tx.QueryRow(ctx,
		"SELECT "+vendorColumns+" FROM vendors WHERE id = $1 AND deleted_at IS NULL FOR UPDATE", id,
	), current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "vendor", ID: id}
		}
		return nil, wrapDBError(fmt.Sprintf("load vendor %d", id), err)
	}

	// Only fields that actually change need a uniqueness check.
	var checkName, checkEmail *string
	if update.Name != nil && *update.Name != current.Name {
		checkName = update.Name
	}
	if update.Email != nil && !strings.EqualFold(*update.Email, current.Email) {
		checkEmail = update.Email
	}
	if err := checkVendorUnique(ctx, tx, id, checkName, checkEmail); err != nil {
		return nil, err
	}

	next := *current
	if update.Name != nil {
		next.Name = *update.Name
	}
	if update.ContactPerson != nil {
		next.ContactPerson = *update.ContactPerson
	}
	if update.Email != nil {
		next.Email = *update.Email
	}
	if update.Phone != nil {
		next.Phone = *update.Phone
	}
	if update.PaymentTerms != nil {
		next.PaymentTerms = *update.PaymentTerms
	}
	if update.Status != nil {
		next.Status = *update.Status
	}

	v := &Vendor{}
	err = scanVendor(tx.QueryRow(ctx, `
		UPDATE vendors
		SET name = $1, contact_person = $2, email = $3, phone = $4,
		    payment_terms = $5, status = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING `+vendorColumns,
		next.Name, next.ContactPerson, next.Email, next.Phone, next.PaymentTerms, next.Status, id,
	), v)
	if err != nil {
		if cerr := vendorConflict(err, next.Name, next.Email); cerr != nil {
			return nil, cerr
		}
		return nil, wrapDBError(fmt.Sprintf("update vendor %d", id), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, wrapDBError("commit vendor update", err)
	}
	return v, nil
}

// DeleteVendor marks a vendor deleted. It stays referenced by its purchase orders.
func (s *vendorService) DeleteVendor(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE vendors SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL",
		id,
	)
	if err != nil {
		return wrapDBError(fmt.Sprintf("delete vendor %d", id), err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "vendor", ID: id}
	}
	return nil
}

// checkVendorUnique returns *ConflictError when name or email (if non-nil) is used by a
// non-deleted vendor other than excludeID.
func checkVendorUnique(ctx context.Context, tx pgx.Tx, excludeID int, name, email *string) error {
	if name != nil {
		var taken bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM vendors WHERE name = $1 AND id <> $2 AND deleted_at IS NULL)`,
			*name, excludeID,
		).Scan(&taken); err != nil {
			return wrapDBError("check vendor name", err)
		}
		if taken {
			return &ConflictError{Entity: "vendor", Field: "name", Value: *name}
		}
	}
	if email != nil {
		var taken bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM vendors WHERE lower(email) = lower($1) AND id <> $2 AND deleted_at IS NULL)`,
			*email, excludeID,
		).Scan(&taken); err != nil {
			return wrapDBError("check vendor email", err)
		}
		if taken {
			return &ConflictError{Entity: "vendor", Field: "email", Value: *email}
		}
	}
	return nil
}

// vendorConflict maps a unique-index violation raised by a concurrent writer to *ConflictError.
func vendorConflict(err error, name, email string) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return nil
	}
	switch constraint {
	case "vendors_name_active_key":
		return &ConflictError{Entity: "vendor", Field: "name", Value: name}
	case "vendors_email_active_key":
		return &ConflictError{Entity: "vendor", Field: "email", Value: email}
	}
	return nil
}
