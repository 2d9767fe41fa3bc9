package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Payment is one settlement against a purchase order. DeletedAt is set when the payment
// is voided; voided payments never count toward a PO's paid sum.
type Payment struct {
	ID              int             `json:"id"`
	Reference       string          `json:"reference"`
	PurchaseOrderID int             `json:"purchaseOrderId"`
	AmountPaid      decimal.Decimal `json:"amountPaid"`
	PaymentDate     time.Time       `json:"paymentDate"`
	Method          PaymentMethod   `json:"paymentMethod"`
	Notes           *string         `json:"notes,omitempty"`
	CreatedBy       *string         `json:"createdBy,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	DeletedAt       *time.Time      `json:"deletedAt,omitempty"`
}

// PaymentPO is the purchase order projection attached to payment views.
type PaymentPO struct {
	ID          int             `json:"id"`
	PONumber    string          `json:"poNumber"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      POStatus        `json:"status"`
	Vendor      VendorRef       `json:"vendor"`
}

// PaymentListItem is one row of ListPayments.
type PaymentListItem struct {
	Payment
	PurchaseOrder PaymentPO `json:"purchaseOrder"`
}

// PaymentDetail is a payment with its PO and the PO's current payment summary.
type PaymentDetail struct {
	Payment
	PurchaseOrder  PaymentPO      `json:"purchaseOrder"`
	PaymentSummary PaymentSummary `json:"paymentSummary"`
}

// PaymentInput holds the fields required to apply a payment.
type PaymentInput struct {
	POID   int             `json:"purchaseOrderId" validate:"required"`
	Amount decimal.Decimal `json:"amountPaid"`
	Method PaymentMethod   `json:"paymentMethod" validate:"required,oneof=CASH CHEQUE BANK_TRANSFER UPI NEFT RTGS CREDIT_CARD"`
	Notes  string          `json:"notes" validate:"max=1000"`
	Actor  string          `json:"-"`
}

// PaymentResult is returned by ApplyPayment.
type PaymentResult struct {
	Payment  Payment           `json:"payment"`
	POStatus POStatus          `json:"poStatus"`
	Summary  SettlementSummary `json:"summary"`
}

// VoidResult is returned by VoidPayment.
type VoidResult struct {
	Payment  Payment     `json:"payment"`
	POStatus POStatus    `json:"poStatus"`
	Summary  VoidSummary `json:"summary"`
}

// PaymentService applies and voids payments. Every mutation runs in one transaction holding
// the owning PO's row lock, so a PO's non-voided paid sum never exceeds its total.
type PaymentService interface {
	// ApplyPayment records a payment and moves the PO to PARTIALLY_PAID or FULLY_PAID.
	// Overpayment and non-positive amounts return *ValidationError; DRAFT and FULLY_PAID
	// POs return *InvalidStateError.
	ApplyPayment(ctx context.Context, input PaymentInput) (*PaymentResult, error)

	// VoidPayment soft-deletes a payment and re-derives the PO status from what remains.
	// Voiding an already voided payment returns *NotFoundError.
	VoidPayment(ctx context.Context, id int, actor string) (*VoidResult, error)

	// ListPayments returns non-voided payments, newest payment date first.
	ListPayments(ctx context.Context, page Page) (*Paginated[PaymentListItem], error)

	// GetPayment returns a non-voided payment with its PO and payment summary.
	GetPayment(ctx context.Context, id int) (*PaymentDetail, error)
}
