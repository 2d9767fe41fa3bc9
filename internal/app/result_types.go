package app

import "payables/internal/core"

// VendorResult is returned by vendor create and update.
type VendorResult struct {
	Vendor *core.Vendor
}

// VendorDetailResult is returned by GetVendor.
type VendorDetailResult struct {
	Vendor *core.VendorDetail
}

// VendorsResult is returned by ListVendors.
type VendorsResult struct {
	Vendors *core.Paginated[core.Vendor]
}

// PurchaseOrderResult is returned by purchase order create and status override.
type PurchaseOrderResult struct {
	PurchaseOrder *core.PurchaseOrder
}

// PurchaseOrderDetailResult is returned by GetPurchaseOrder.
type PurchaseOrderDetailResult struct {
	PurchaseOrder *core.PODetail
}

// PurchaseOrdersResult is returned by ListPurchaseOrders.
type PurchaseOrdersResult struct {
	PurchaseOrders *core.Paginated[core.POListItem]
}

// PaymentResult is returned by RecordPayment.
type PaymentResult struct {
	Settlement *core.PaymentResult
}

// VoidResult is returned by VoidPayment.
type VoidResult struct {
	Settlement *core.VoidResult
}

// PaymentsResult is returned by ListPayments.
type PaymentsResult struct {
	Payments *core.Paginated[core.PaymentListItem]
}

// PaymentDetailResult is returned by GetPayment.
type PaymentDetailResult struct {
	Payment *core.PaymentDetail
}

// AnalyticsExportResult is an XLSX workbook ready to download.
type AnalyticsExportResult struct {
	Filename    string
	ContentType string
	Content     []byte
}

// UserResult is returned by the user operations.
type UserResult struct {
	User *core.User
}

// SeedResult reports what Seed created. Zero ids mean the demo data already existed or
// was not requested.
type SeedResult struct {
	Users     int
	VendorID  int
	POID      int
	PONumber  string
	PaymentID int
}
