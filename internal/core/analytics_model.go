package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// VendorOutstanding is one vendor's position across all its purchase orders.
type VendorOutstanding struct {
	VendorID            int             `json:"vendorId"`
	VendorName          string          `json:"vendorName"`
	ContactPerson       string          `json:"contactPerson"`
	Status              VendorStatus    `json:"status"`
	TotalPurchaseOrders int             `json:"totalPurchaseOrders"`
	TotalPOAmount       decimal.Decimal `json:"totalPOAmount"`
	TotalPaid           decimal.Decimal `json:"totalPaid"`
	OutstandingAmount   decimal.Decimal `json:"outstandingAmount"`
}

// VendorOutstandingReport lists vendors by outstanding amount, largest first.
type VendorOutstandingReport struct {
	Vendors []VendorOutstanding `json:"vendors"`
	Summary struct {
		TotalOutstanding       decimal.Decimal `json:"totalOutstanding"`
		TotalVendors           int             `json:"totalVendors"`
		VendorsWithOutstanding int             `json:"vendorsWithOutstanding"`
	} `json:"summary"`
}

// AgingEntry is one unpaid PO in the aging report.
type AgingEntry struct {
	POID        int             `json:"poId"`
	PONumber    string          `json:"poNumber"`
	VendorID    int             `json:"vendorId"`
	VendorName  string          `json:"vendorName"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalPaid   decimal.Decimal `json:"totalPaid"`
	Outstanding decimal.Decimal `json:"outstanding"`
	DueDate     time.Time       `json:"dueDate"`
	DaysOverdue int             `json:"daysOverdue"`
}

// AgingBucket groups POs by how many days past due they are.
type AgingBucket struct {
	Count            int             `json:"count"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
	PurchaseOrders   []AgingEntry    `json:"purchaseOrders"`
}

// AgingReport buckets open POs by days overdue. Not-yet-due POs count as current.
type AgingReport struct {
	AsOf             time.Time       `json:"asOf"`
	Current          AgingBucket     `json:"current"`
	Days31To60       AgingBucket     `json:"days31to60"`
	Days61To90       AgingBucket     `json:"days61to90"`
	Over90           AgingBucket     `json:"over90"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
}

// TrendPayment is one payment listed under its month.
type TrendPayment struct {
	ID          int             `json:"id"`
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
	Method      PaymentMethod   `json:"method"`
	PONumber    string          `json:"poNumber"`
	VendorName  string          `json:"vendorName"`
	PaymentDate time.Time       `json:"paymentDate"`
}

// MonthlyTrend aggregates the non-voided payments of one calendar month.
type MonthlyTrend struct {
	Month          string          `json:"month"` // YYYY-MM
	PaymentCount   int             `json:"paymentCount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	AveragePayment decimal.Decimal `json:"averagePayment"`
	Payments       []TrendPayment  `json:"payments"`
}

// MonthRef names a month in the trends summary.
type MonthRef struct {
	Month        string          `json:"month"`
	PaymentCount int             `json:"paymentCount"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

// TrendsReport covers the trailing six calendar months, oldest first.
type TrendsReport struct {
	Trends  []MonthlyTrend `json:"trends"`
	Summary struct {
		Period         string          `json:"period"`
		TotalPayments  int             `json:"totalPayments"`
		TotalAmount    decimal.Decimal `json:"totalAmount"`
		AveragePayment decimal.Decimal `json:"averagePayment"`
		HighestMonth   MonthRef        `json:"highestMonth"`
		LowestMonth    *MonthRef       `json:"lowestMonth"`
	} `json:"summary"`
}

// AnalyticsService produces read-only reports over vendors, POs and payments.
type AnalyticsService interface {
	VendorOutstanding(ctx context.Context) (*VendorOutstandingReport, error)
	PaymentAging(ctx context.Context) (*AgingReport, error)
	PaymentTrends(ctx context.Context) (*TrendsReport, error)
}
