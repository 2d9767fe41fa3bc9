package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Vendor is a supplier that purchase orders are raised against.
type Vendor struct {
	ID            int          `json:"id"`
	Name          string       `json:"name"`
	ContactPerson string       `json:"contactPerson"`
	Email         string       `json:"email"`
	Phone         string       `json:"phone"`
	PaymentTerms  int          `json:"paymentTerms"`
	Status        VendorStatus `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	DeletedAt     *time.Time   `json:"deletedAt,omitempty"`
}

// VendorPaymentSummary aggregates a vendor's purchase orders and their non-voided payments.
type VendorPaymentSummary struct {
	TotalPOs          int             `json:"totalPOs"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	TotalPaid         decimal.Decimal `json:"totalPaid"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
}

// VendorDetail is a vendor with its computed payment summary.
type VendorDetail struct {
	Vendor
	PaymentSummary VendorPaymentSummary `json:"paymentSummary"`
}

// VendorInput holds the fields required to create a vendor. Status defaults to ACTIVE.
type VendorInput struct {
	Name          string       `json:"name" validate:"required,max=200"`
	ContactPerson string       `json:"contactPerson" validate:"required,max=200"`
	Email         string       `json:"email" validate:"required,email"`
	Phone         string       `json:"phone" validate:"required,max=50"`
	PaymentTerms  int          `json:"paymentTerms" validate:"oneof=7 15 30 45 60"`
	Status        VendorStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

// VendorUpdate is a partial update; nil fields are left unchanged.
type VendorUpdate struct {
	Name          *string       `json:"name" validate:"omitnil,min=1,max=200"`
	ContactPerson *string       `json:"contactPerson" validate:"omitnil,min=1,max=200"`
	Email         *string       `json:"email" validate:"omitnil,email"`
	Phone         *string       `json:"phone" validate:"omitnil,min=1,max=50"`
	PaymentTerms  *int          `json:"paymentTerms" validate:"omitnil,oneof=7 15 30 45 60"`
	Status        *VendorStatus `json:"status" validate:"omitnil,oneof=ACTIVE INACTIVE"`
}

// VendorService owns vendor records: uniqueness among non-deleted vendors and soft delete.
type VendorService interface {
	// CreateVendor validates and inserts a vendor. Returns *ConflictError if the name or
	// email is already used by a non-deleted vendor.
	CreateVendor(ctx context.Context, input VendorInput) (*Vendor, error)

	// GetVendor returns a non-deleted vendor with its payment summary.
	GetVendor(ctx context.Context, id int) (*VendorDetail, error)

	// ListVendors returns non-deleted vendors, newest first.
	ListVendors(ctx context.Context, page Page) (*Paginated[Vendor], error)

	// UpdateVendor applies a partial update, re-checking name/email uniqueness for changed fields.
	UpdateVendor(ctx context.Context, id int, update VendorUpdate) (*Vendor, error)

	// DeleteVendor soft-deletes a vendor. Purchase orders and payments are kept.
	DeleteVendor(ctx context.Context, id int) error
}
