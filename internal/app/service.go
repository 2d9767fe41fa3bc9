package app

import (
	"context"

	"payables/internal/core"
)

// ApplicationService is the single interface the HTTP and CLI adapters call. It maps
// adapter requests onto the core services and holds no presentation logic.
type ApplicationService interface {
	// ── Vendors ───────────────────────────────────────────────────────────────

	// CreateVendor registers a vendor. Name and email must be unused by other live vendors.
	CreateVendor(ctx context.Context, req CreateVendorRequest) (*VendorResult, error)

	// GetVendor returns a vendor with its purchase order and payment totals.
	GetVendor(ctx context.Context, vendorID int) (*VendorDetailResult, error)

	// ListVendors returns one page of live vendors, newest first.
	ListVendors(ctx context.Context, page core.Page) (*VendorsResult, error)

	// UpdateVendor applies the non-nil fields of req.
	UpdateVendor(ctx context.Context, vendorID int, req UpdateVendorRequest) (*VendorResult, error)

	// DeleteVendor soft-deletes a vendor.
	DeleteVendor(ctx context.Context, vendorID int) error

	// ── Purchase orders ───────────────────────────────────────────────────────

	// CreatePurchaseOrder creates an APPROVED purchase order due after the vendor's terms.
	CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResult, error)

	// ListPurchaseOrders returns one page of purchase orders matching every set filter.
	ListPurchaseOrders(ctx context.Context, req ListPurchaseOrdersRequest) (*PurchaseOrdersResult, error)

	// GetPurchaseOrder returns a purchase order with its items, live payments and totals.
	GetPurchaseOrder(ctx context.Context, poID int) (*PurchaseOrderDetailResult, error)

	// UpdatePurchaseOrderStatus is the administrative status override. It only accepts the
	// status the live payments imply, or DRAFT/APPROVED when there are none.
	UpdatePurchaseOrderStatus(ctx context.Context, req UpdatePOStatusRequest) (*PurchaseOrderResult, error)

	// ── Payments ──────────────────────────────────────────────────────────────

	// RecordPayment applies a payment against a purchase order and settles its status.
	RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResult, error)

	// VoidPayment voids a live payment and re-derives the purchase order status.
	VoidPayment(ctx context.Context, paymentID int, actor string) (*VoidResult, error)

	// ListPayments returns one page of live payments, newest payment date first.
	ListPayments(ctx context.Context, page core.Page) (*PaymentsResult, error)

	// GetPayment returns a live payment with its purchase order and settlement totals.
	GetPayment(ctx context.Context, paymentID int) (*PaymentDetailResult, error)

	// ── Analytics ─────────────────────────────────────────────────────────────

	GetVendorOutstanding(ctx context.Context) (*core.VendorOutstandingReport, error)
	GetPaymentAging(ctx context.Context) (*core.AgingReport, error)
	GetPaymentTrends(ctx context.Context) (*core.TrendsReport, error)

	// ExportAnalytics renders the three reports as an XLSX workbook.
	ExportAnalytics(ctx context.Context) (*AnalyticsExportResult, error)

	// ── Users ─────────────────────────────────────────────────────────────────

	// AuthenticateUser verifies credentials. Any failure is core.ErrInvalidCredentials.
	AuthenticateUser(ctx context.Context, username, password string) (*UserResult, error)

	// GetUser returns a user profile by ID.
	GetUser(ctx context.Context, userID int) (*UserResult, error)

	// SaveUser creates a user or resets an existing user's password and role.
	SaveUser(ctx context.Context, req SaveUserRequest) (*UserResult, error)

	// Seed saves users and, on an empty database, records demo purchasing data.
	Seed(ctx context.Context, users []SaveUserRequest, withDemo bool) (*SeedResult, error)
}
