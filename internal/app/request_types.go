package app

import (
	"github.com/shopspring/decimal"

	"payables/internal/core"
)

// CreateVendorRequest is the input for registering a vendor.
type CreateVendorRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contactPerson"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PaymentTerms  int    `json:"paymentTerms"`
	Status        string `json:"status"` // empty means ACTIVE
}

// UpdateVendorRequest is a partial vendor update; nil fields are left unchanged.
type UpdateVendorRequest struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contactPerson"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	PaymentTerms  *int    `json:"paymentTerms"`
	Status        *string `json:"status"`
}

// CreatePurchaseOrderRequest is the input for creating a purchase order.
type CreatePurchaseOrderRequest struct {
	VendorID int           `json:"vendorId"`
	Items    []POLineInput `json:"items"`
	Actor    string        `json:"-"`
}

// POLineInput is a single line within a CreatePurchaseOrderRequest.
type POLineInput struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// ListPurchaseOrdersRequest selects a page of purchase orders.
type ListPurchaseOrdersRequest struct {
	Filter core.POFilter
	Page   core.Page
}

// UpdatePOStatusRequest is the input for the status override.
type UpdatePOStatusRequest struct {
	PurchaseOrderID int
	Status          string
	Actor           string
}

// RecordPaymentRequest is the input for applying a payment to a purchase order.
type RecordPaymentRequest struct {
	PurchaseOrderID int             `json:"purchaseOrderId"`
	AmountPaid      decimal.Decimal `json:"amountPaid"`
	PaymentMethod   string          `json:"paymentMethod"`
	Notes           string          `json:"notes"`
	Actor           string          `json:"-"`
}

// SaveUserRequest is the input for creating or resetting a login.
type SaveUserRequest struct {
	Username string
	Password string
	Role     string
}
