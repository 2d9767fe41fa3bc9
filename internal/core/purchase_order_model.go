package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrder is a PO header. TotalAmount is fixed at creation from the line items.
type PurchaseOrder struct {
	ID          int             `json:"id"`
	PONumber    string          `json:"poNumber"`
	VendorID    int             `json:"vendorId"`
	PODate      time.Time       `json:"poDate"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	DueDate     time.Time       `json:"dueDate"`
	Status      POStatus        `json:"status"`
	CreatedBy   *string         `json:"createdBy,omitempty"`
	UpdatedBy   *string         `json:"updatedBy,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Vendor      *VendorRef      `json:"vendor,omitempty"`
	Items       []LineItem      `json:"items"`
}

// LineItem is one immutable line of a purchase order.
type LineItem struct {
	ID              int             `json:"id"`
	PurchaseOrderID int             `json:"purchaseOrderId"`
	LineNumber      int             `json:"lineNumber"`
	Description     string          `json:"description"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	LineTotal       decimal.Decimal `json:"lineTotal"`
}

// VendorRef is the vendor projection embedded in PO and payment views.
type VendorRef struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contactPerson,omitempty"`
	Email         string `json:"email,omitempty"`
}

// POListItem is one row of ListPOs.
type POListItem struct {
	PurchaseOrder
	PaymentCount int `json:"paymentCount"`
}

// PODetail is a PO with its non-voided payments and derived payment summary.
type PODetail struct {
	PurchaseOrder
	Payments       []Payment      `json:"payments"`
	PaymentSummary PaymentSummary `json:"paymentSummary"`
}

// LineItemInput holds the fields of one requested line item.
type LineItemInput struct {
	Description string          `json:"description" validate:"required,max=500"`
	Quantity    int             `json:"quantity" validate:"min=1,max=1000000"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// CreatePOInput holds the fields required to create a purchase order.
type CreatePOInput struct {
	VendorID int             `json:"vendorId" validate:"required"`
	Items    []LineItemInput `json:"items" validate:"required,min=1,dive"`
	Actor    string          `json:"-"`
}

// POFilter narrows ListPOs. Nil fields do not filter; set fields are AND-combined.
// Date bounds apply to poDate and amount bounds to totalAmount, all inclusive.
type POFilter struct {
	VendorID  *int
	Status    *POStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	AmountMin *decimal.Decimal
	AmountMax *decimal.Decimal
}

// PurchaseOrderService records purchase orders and their administrative status changes.
type PurchaseOrderService interface {
	// CreatePO creates an APPROVED PO against an ACTIVE vendor. The due date is the PO date
	// plus the vendor's payment terms.
	CreatePO(ctx context.Context, input CreatePOInput) (*PurchaseOrder, error)

	// ListPOs returns POs matching filter, newest first, with line items and payment counts.
	ListPOs(ctx context.Context, filter POFilter, page Page) (*Paginated[POListItem], error)

	// GetPO returns a PO with its items, non-voided payments and payment summary.
	GetPO(ctx context.Context, id int) (*PODetail, error)

	// UpdateStatus is an administrative override. Once the PO has payments the status is
	// pinned to the one derived from them; otherwise only DRAFT and APPROVED are accepted.
	UpdateStatus(ctx context.Context, id int, status POStatus, actor string) (*PurchaseOrder, error)
}
