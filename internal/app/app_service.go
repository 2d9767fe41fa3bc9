// Package app is the application service layer. Both the HTTP server and the CLI go through
// ApplicationService and never call the core services directly.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"payables/internal/core"
	"payables/internal/export"
)

// XLSXContentType is the media type of AnalyticsExportResult.Content.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type appService struct {
	vendors   core.VendorService
	orders    core.PurchaseOrderService
	payments  core.PaymentService
	analytics core.AnalyticsService
	users     core.UserService
	now       core.Clock
	logger    *zap.Logger
}

// NewAppService wraps already-built core services. A nil clock means the UTC wall clock; a
// nil logger discards.
func NewAppService(
	vendors core.VendorService,
	orders core.PurchaseOrderService,
	payments core.PaymentService,
	analytics core.AnalyticsService,
	users core.UserService,
	now core.Clock,
	logger *zap.Logger,
) ApplicationService {
	if now == nil {
		now = core.SystemClock
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &appService{
		vendors:   vendors,
		orders:    orders,
		payments:  payments,
		analytics: analytics,
		users:     users,
		now:       now,
		logger:    logger,
	}
}

// New builds every core service over pool and returns the application service.
func New(pool *pgxpool.Pool, now core.Clock, logger *zap.Logger) ApplicationService {
	if now == nil {
		now = core.SystemClock
	}
	ids := core.NewSequenceGenerator(now)
	return NewAppService(
		core.NewVendorService(pool),
		core.NewPurchaseOrderService(pool, ids, now),
		core.NewPaymentService(pool, ids, now),
		core.NewAnalyticsService(pool, now),
		core.NewUserService(pool),
		now,
		logger,
	)
}

// ── Vendors ───────────────────────────────────────────────────────────────────

func (s *appService) CreateVendor(ctx context.Context, req CreateVendorRequest) (*VendorResult, error) {
	v, err := s.vendors.CreateVendor(ctx, core.VendorInput{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		PaymentTerms:  req.PaymentTerms,
		Status:        core.VendorStatus(req.Status),
	})
	if err != nil {
		return nil, err
	}
	return &VendorResult{Vendor: v}, nil
}

func (s *appService) GetVendor(ctx context.Context, vendorID int) (*VendorDetailResult, error) {
	v, err := s.vendors.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	return &VendorDetailResult{Vendor: v}, nil
}

func (s *appService) ListVendors(ctx context.Context, page core.Page) (*VendorsResult, error) {
	list, err := s.vendors.ListVendors(ctx, page)
	if err != nil {
		return nil, err
	}
	return &VendorsResult{Vendors: list}, nil
}

func (s *appService) UpdateVendor(ctx context.Context, vendorID int, req UpdateVendorRequest) (*VendorResult, error) {
	update := core.VendorUpdate{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		PaymentTerms:  req.PaymentTerms,
	}
	if req.Status != nil {
		st := core.VendorStatus(*req.Status)
		update.Status = &st
	}
	v, err := s.vendors.UpdateVendor(ctx, vendorID, update)
	if err != nil {
		return nil, err
	}
	return &VendorResult{Vendor: v}, nil
}

func (s *appService) DeleteVendor(ctx context.Context, vendorID int) error {
	return s.vendors.DeleteVendor(ctx, vendorID)
}

// ── Purchase orders ───────────────────────────────────────────────────────────

func (s *appService) CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResult, error) {
	items := make([]core.LineItemInput, len(req.Items))
	for i, l := range req.Items {
		items[i] = core.LineItemInput{Description: l.Description, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}
	po, err := s.orders.CreatePO(ctx, core.CreatePOInput{VendorID: req.VendorID, Items: items, Actor: req.Actor})
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderResult{PurchaseOrder: po}, nil
}

func (s *appService) ListPurchaseOrders(ctx context.Context, req ListPurchaseOrdersRequest) (*PurchaseOrdersResult, error) {
	list, err := s.orders.ListPOs(ctx, req.Filter, req.Page)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrdersResult{PurchaseOrders: list}, nil
}

func (s *appService) GetPurchaseOrder(ctx context.Context, poID int) (*PurchaseOrderDetailResult, error) {
	po, err := s.orders.GetPO(ctx, poID)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrderDetailResult{PurchaseOrder: po}, nil
}

func (s *appService) UpdatePurchaseOrderStatus(ctx context.Context, req UpdatePOStatusRequest) (*PurchaseOrderResult, error) {
	po, err := s.orders.UpdateStatus(ctx, req.PurchaseOrderID, core.POStatus(req.Status), req.Actor)
	if err != nil {
		return nil, err
	}
	s.logger.Info("purchase order status overridden",
		zap.Int("po_id", po.ID),
		zap.String("status", string(po.Status)),
		zap.String("actor", req.Actor),
	)
	return &PurchaseOrderResult{PurchaseOrder: po}, nil
}

// ── Payments ──────────────────────────────────────────────────────────────────

func (s *appService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*PaymentResult, error) {
	res, err := s.payments.ApplyPayment(ctx, core.PaymentInput{
		POID:   req.PurchaseOrderID,
		Amount: req.AmountPaid,
		Method: core.PaymentMethod(req.PaymentMethod),
		Notes:  req.Notes,
		Actor:  req.Actor,
	})
	if err != nil {
		return nil, err
	}
	return &PaymentResult{Settlement: res}, nil
}

func (s *appService) VoidPayment(ctx context.Context, paymentID int, actor string) (*VoidResult, error) {
	res, err := s.payments.VoidPayment(ctx, paymentID, actor)
	if err != nil {
		return nil, err
	}
	return &VoidResult{Settlement: res}, nil
}

func (s *appService) ListPayments(ctx context.Context, page core.Page) (*PaymentsResult, error) {
	list, err := s.payments.ListPayments(ctx, page)
	if err != nil {
		return nil, err
	}
	return &PaymentsResult{Payments: list}, nil
}

func (s *appService) GetPayment(ctx context.Context, paymentID int) (*PaymentDetailResult, error) {
	p, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return &PaymentDetailResult{Payment: p}, nil
}

// ── Analytics ─────────────────────────────────────────────────────────────────

func (s *appService) GetVendorOutstanding(ctx context.Context) (*core.VendorOutstandingReport, error) {
	return s.analytics.VendorOutstanding(ctx)
}

func (s *appService) GetPaymentAging(ctx context.Context) (*core.AgingReport, error) {
	return s.analytics.PaymentAging(ctx)
}

func (s *appService) GetPaymentTrends(ctx context.Context) (*core.TrendsReport, error) {
	return s.analytics.PaymentTrends(ctx)
}

func (s *appService) ExportAnalytics(ctx context.Context) (*AnalyticsExportResult, error) {
	outstanding, err := s.analytics.VendorOutstanding(ctx)
	if err != nil {
		return nil, err
	}
	aging, err := s.analytics.PaymentAging(ctx)
	if err != nil {
		return nil, err
	}
	trends, err := s.analytics.PaymentTrends(ctx)
	if err != nil {
		return nil, err
	}

	buf, err := export.AnalyticsWorkbook(outstanding, aging, trends)
	if err != nil {
		return nil, fmt.Errorf("build analytics workbook: %w", err)
	}
	return &AnalyticsExportResult{
		Filename:    fmt.Sprintf("payables-analytics-%s.xlsx", s.now().UTC().Format("20060102")),
		ContentType: XLSXContentType,
		Content:     buf.Bytes(),
	}, nil
}

// ── Users ─────────────────────────────────────────────────────────────────────

func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserResult, error) {
	u, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return &UserResult{User: u}, nil
}

func (s *appService) GetUser(ctx context.Context, userID int) (*UserResult, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserResult{User: u}, nil
}

func (s *appService) SaveUser(ctx context.Context, req SaveUserRequest) (*UserResult, error) {
	u, err := s.users.CreateUser(ctx, req.Username, req.Password, req.Role)
	if err != nil {
		return nil, err
	}
	return &UserResult{User: u}, nil
}
