package app_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"payables/internal/app"
	"payables/internal/core"
)

// ── Fakes ─────────────────────────────────────────────────────────────────────

type fakeVendors struct {
	core.VendorService
	created []core.VendorInput
	updated []core.VendorUpdate
	err     error
}

func (f *fakeVendors) CreateVendor(_ context.Context, in core.VendorInput) (*core.Vendor, error) {
	f.created = append(f.created, in)
	if f.err != nil {
		return nil, f.err
	}
	return &core.Vendor{ID: 11, Name: in.Name, Email: in.Email, Status: in.Status}, nil
}

func (f *fakeVendors) UpdateVendor(_ context.Context, id int, u core.VendorUpdate) (*core.Vendor, error) {
	f.updated = append(f.updated, u)
	return &core.Vendor{ID: id}, nil
}

type fakeOrders struct {
	core.PurchaseOrderService
	created  []core.CreatePOInput
	statuses []core.POStatus
}

func (f *fakeOrders) CreatePO(_ context.Context, in core.CreatePOInput) (*core.PurchaseOrder, error) {
	f.created = append(f.created, in)
	return &core.PurchaseOrder{ID: 21, PONumber: "PO-20261015-00001", VendorID: in.VendorID}, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id int, status core.POStatus, _ string) (*core.PurchaseOrder, error) {
	f.statuses = append(f.statuses, status)
	return &core.PurchaseOrder{ID: id, Status: status}, nil
}

type fakePayments struct {
	core.PaymentService
	applied []core.PaymentInput
}

func (f *fakePayments) ApplyPayment(_ context.Context, in core.PaymentInput) (*core.PaymentResult, error) {
	f.applied = append(f.applied, in)
	return &core.PaymentResult{
		Payment:  core.Payment{ID: 31, Reference: "PAY-20261015-00001", AmountPaid: in.Amount},
		POStatus: core.POStatusPartiallyPaid,
	}, nil
}

type fakeAnalytics struct {
	err error
}

func (f fakeAnalytics) VendorOutstanding(context.Context) (*core.VendorOutstandingReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &core.VendorOutstandingReport{Vendors: []core.VendorOutstanding{{VendorID: 1, VendorName: "Acme"}}}, nil
}

func (f fakeAnalytics) PaymentAging(context.Context) (*core.AgingReport, error) {
	return &core.AgingReport{}, nil
}

func (f fakeAnalytics) PaymentTrends(context.Context) (*core.TrendsReport, error) {
	return &core.TrendsReport{Trends: []core.MonthlyTrend{{Month: "2026-10"}}}, nil
}

type fakeUsers struct {
	core.UserService
	saved []string
}

func (f *fakeUsers) CreateUser(_ context.Context, username, _, role string) (*core.User, error) {
	f.saved = append(f.saved, username)
	return &core.User{ID: len(f.saved), Username: username, Role: role, IsActive: true}, nil
}

type fixture struct {
	vendors  *fakeVendors
	orders   *fakeOrders
	payments *fakePayments
	users    *fakeUsers
	svc      app.ApplicationService
}

func newFixture(analytics core.AnalyticsService) *fixture {
	f := &fixture{
		vendors:  &fakeVendors{},
		orders:   &fakeOrders{},
		payments: &fakePayments{},
		users:    &fakeUsers{},
	}
	now := func() time.Time { return time.Date(2026, time.October, 15, 23, 30, 0, 0, time.UTC) }
	f.svc = app.NewAppService(f.vendors, f.orders, f.payments, analytics, f.users, now, zap.NewNop())
	return f
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestCreateVendor_MapsRequest(t *testing.T) {
	f := newFixture(fakeAnalytics{})

	res, err := f.svc.CreateVendor(context.Background(), app.CreateVendorRequest{
		Name: "Acme", Email: "ap@acme.test", PaymentTerms: 45, Status: "INACTIVE",
	})
	require.NoError(t, err)
	assert.Equal(t, 11, res.Vendor.ID)
	require.Len(t, f.vendors.created, 1)
	assert.Equal(t, 45, f.vendors.created[0].PaymentTerms)
	assert.Equal(t, core.VendorStatusInactive, f.vendors.created[0].Status)
}

func TestUpdateVendor_KeepsOmittedFieldsNil(t *testing.T) {
	f := newFixture(fakeAnalytics{})
	status := "INACTIVE"

	_, err := f.svc.UpdateVendor(context.Background(), 4, app.UpdateVendorRequest{Status: &status})
	require.NoError(t, err)
	require.Len(t, f.vendors.updated, 1)
	u := f.vendors.updated[0]
	require.NotNil(t, u.Status)
	assert.Equal(t, core.VendorStatusInactive, *u.Status)
	assert.Nil(t, u.Name)
	assert.Nil(t, u.PaymentTerms)
}

func TestCreatePurchaseOrder_MapsLines(t *testing.T) {
	f := newFixture(fakeAnalytics{})

	res, err := f.svc.CreatePurchaseOrder(context.Background(), app.CreatePurchaseOrderRequest{
		VendorID: 3,
		Items: []app.POLineInput{
			{Description: "Staplers", Quantity: 10, UnitPrice: decimal.RequireFromString("50")},
		},
		Actor: "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "PO-20261015-00001", res.PurchaseOrder.PONumber)
	require.Len(t, f.orders.created, 1)
	in := f.orders.created[0]
	assert.Equal(t, 3, in.VendorID)
	assert.Equal(t, "admin", in.Actor)
	require.Len(t, in.Items, 1)
	assert.Equal(t, 10, in.Items[0].Quantity)
}

func TestRecordPayment_MapsRequest(t *testing.T) {
	f := newFixture(fakeAnalytics{})

	res, err := f.svc.RecordPayment(context.Background(), app.RecordPaymentRequest{
		PurchaseOrderID: 7,
		AmountPaid:      decimal.RequireFromString("400.50"),
		PaymentMethod:   "UPI",
		Notes:           "first",
		Actor:           "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, core.POStatusPartiallyPaid, res.Settlement.POStatus)
	require.Len(t, f.payments.applied, 1)
	in := f.payments.applied[0]
	assert.Equal(t, 7, in.POID)
	assert.Equal(t, core.PaymentMethodUPI, in.Method)
	assert.True(t, in.Amount.Equal(decimal.RequireFromString("400.5")))
	assert.Equal(t, "admin", in.Actor)
}

func TestExportAnalytics_Workbook(t *testing.T) {
	f := newFixture(fakeAnalytics{})

	res, err := f.svc.ExportAnalytics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "payables-analytics-20261015.xlsx", res.Filename)
	assert.Equal(t, app.XLSXContentType, res.ContentType)
	assert.True(t, bytes.HasPrefix(res.Content, []byte("PK")), "xlsx is a zip archive")
}

func TestExportAnalytics_PropagatesReportError(t *testing.T) {
	boom := &core.RetryableError{Op: "vendor outstanding", Err: errors.New("statement timeout")}
	f := newFixture(fakeAnalytics{err: boom})

	_, err := f.svc.ExportAnalytics(context.Background())
	var rerr *core.RetryableError
	assert.ErrorAs(t, err, &rerr)
}

func TestSeed_WithoutDemo(t *testing.T) {
	f := newFixture(fakeAnalytics{})

	res, err := f.svc.Seed(context.Background(), app.DefaultUsers, false)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Users)
	assert.Equal(t, []string{"admin", "user"}, f.users.saved)
	assert.Empty(t, f.vendors.created)
}

func TestSeed_DemoData(t *testing.T) {
	f := newFixture(fakeAnalytics{})

	res, err := f.svc.Seed(context.Background(), app.DefaultUsers, true)
	require.NoError(t, err)
	assert.Equal(t, 11, res.VendorID)
	assert.Equal(t, 21, res.POID)
	assert.Equal(t, 31, res.PaymentID)
	assert.Equal(t, []core.POStatus{core.POStatusApproved}, f.orders.statuses)
	require.Len(t, f.payments.applied, 1)
	assert.True(t, f.payments.applied[0].Amount.Equal(decimal.NewFromInt(400)))
}

func TestSeed_ExistingDemoVendor(t *testing.T) {
	f := newFixture(fakeAnalytics{})
	f.vendors.err = &core.ConflictError{Entity: "vendor", Field: "email", Value: "accounts@acme-supplies.example"}

	res, err := f.svc.Seed(context.Background(), app.DefaultUsers, true)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Users)
	assert.Zero(t, res.POID)
	assert.Empty(t, f.orders.created)
}
