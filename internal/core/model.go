package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// POStatus is the lifecycle state of a purchase order.
type POStatus string

const (
	POStatusDraft         POStatus = "DRAFT"
	POStatusApproved      POStatus = "APPROVED"
	POStatusPartiallyPaid POStatus = "PARTIALLY_PAID"
	POStatusFullyPaid     POStatus = "FULLY_PAID"
)

// IsValid reports whether s is one of the four known PO states.
func (s POStatus) IsValid() bool {
	switch s {
	case POStatusDraft, POStatusApproved, POStatusPartiallyPaid, POStatusFullyPaid:
		return true
	}
	return false
}

// VendorStatus is ACTIVE or INACTIVE. POs can only be raised against ACTIVE vendors.
type VendorStatus string

const (
	VendorStatusActive   VendorStatus = "ACTIVE"
	VendorStatusInactive VendorStatus = "INACTIVE"
)

// PaymentMethod is how a payment was settled.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodUPI          PaymentMethod = "UPI"
	PaymentMethodNEFT         PaymentMethod = "NEFT"
	PaymentMethodRTGS         PaymentMethod = "RTGS"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
)

// PaymentMethods is the accepted method set.
var PaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCheque,
	PaymentMethodBankTransfer,
	PaymentMethodUPI,
	PaymentMethodNEFT,
	PaymentMethodRTGS,
	PaymentMethodCreditCard,
}

// IsValid reports whether m is in PaymentMethods.
func (m PaymentMethod) IsValid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// PaymentSummary is the derived paid/outstanding position of one purchase order.
type PaymentSummary struct {
	TotalPaid         decimal.Decimal `json:"totalPaid"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	PaymentCount      int             `json:"paymentCount"`
}

// Page selects one page of a list. Zero values fall back to page 1 and DefaultPageLimit.
type Page struct {
	Page  int
	Limit int
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Normalize clamps the page into a usable range.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Offset is the number of rows to skip for this page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Paginated wraps one page of results with the total row count.
type Paginated[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

func newPaginated[T any](data []T, total int, p Page) *Paginated[T] {
	if data == nil {
		data = []T{}
	}
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return &Paginated[T]{Data: data, Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages}
}

// Clock returns the current time. Services use it for "now" so tests can pin the date.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time { return time.Now().UTC() }
