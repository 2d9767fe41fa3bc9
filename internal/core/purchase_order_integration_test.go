package core_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"payables/internal/core"
)

func TestPurchaseOrder_EndToEndSettlement(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	s := newServices(pool)

	vendor := mustVendor(t, s.vendors, "Initech", "billing@initech.test", 30)
	po := mustPO(t, s.orders, vendor.ID, item("Staplers", 10, "50"), item("Chairs", 5, "100"))

	assertAmount(t, "totalAmount", po.TotalAmount, "1000")
	if po.Status != core.POStatusApproved {
		t.Errorf("expected APPROVED, got %s", po.Status)
	}
	if !po.DueDate.Equal(po.PODate.UTC().AddDate(0, 0, 30)) {
		t.Errorf("expected due date poDate+30d, got %s (poDate %s)", po.DueDate, po.PODate)
	}
	if po.PONumber != "PO-20261015-00001" {
		t.Errorf("unexpected PO number %s", po.PONumber)
	}
	if len(po.Items) != 2 || po.Items[1].LineNumber != 2 {
		t.Errorf("expected 2 numbered items, got %+v", po.Items)
	}

	first, err := pay(ctx, s.payments, po.ID, "400")
	if err != nil {
		t.Fatalf("pay 400: %v", err)
	}
	if first.POStatus != core.POStatusPartiallyPaid {
		t.Errorf("expected PARTIALLY_PAID, got %s", first.POStatus)
	}
	assertAmount(t, "outstanding after 400", first.Summary.OutstandingAmount, "600")
	if !strings.HasPrefix(first.Payment.Reference, "PAY-20261015-") {
		t.Errorf("unexpected reference %s", first.Payment.Reference)
	}

	second, err := pay(ctx, s.payments, po.ID, "600")
	if err != nil {
		t.Fatalf("pay 600: %v", err)
	}
	if second.POStatus != core.POStatusFullyPaid {
		t.Errorf("expected FULLY_PAID, got %s", second.POStatus)
	}
	assertAmount(t, "outstanding after 600", second.Summary.OutstandingAmount, "0")

	detail, err := s.orders.GetPO(ctx, po.ID)
	if err != nil {
		t.Fatalf("GetPO: %v", err)
	}
	if detail.PaymentSummary.PaymentCount != 2 || detail.Status != core.POStatusFullyPaid {
		t.Errorf("unexpected detail: count=%d status=%s", detail.PaymentSummary.PaymentCount, detail.Status)
	}

	voided, err := s.payments.VoidPayment(ctx, second.Payment.ID, "tester")
	if err != nil {
		t.Fatalf("VoidPayment: %v", err)
	}
	if voided.POStatus != core.POStatusPartiallyPaid {
		t.Errorf("expected PARTIALLY_PAID after void, got %s", voided.POStatus)
	}
	assertAmount(t, "outstanding after void", voided.Summary.OutstandingAmount, "600")
	if voided.Payment.DeletedAt == nil {
		t.Error("expected voided payment to carry deletedAt")
	}

	var nf *core.NotFoundError
	if _, err := s.payments.VoidPayment(ctx, second.Payment.ID, "tester"); !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError voiding twice, got %v", err)
	}
	if _, err := s.payments.GetPayment(ctx, second.Payment.ID); !errors.As(err, &nf) {
		t.Errorf("expected voided payment hidden from GetPayment, got %v", err)
	}

	got, err := s.payments.GetPayment(ctx, first.Payment.ID)
	if err != nil {
		t.Fatalf("GetPayment: %v", err)
	}
	assertAmount(t, "payment detail totalPaid", got.PaymentSummary.TotalPaid, "400")
	if got.PurchaseOrder.Vendor.Email != vendor.Email {
		t.Errorf("expected vendor email on payment detail, got %q", got.PurchaseOrder.Vendor.Email)
	}

	vd, err := s.vendors.GetVendor(ctx, vendor.ID)
	if err != nil {
		t.Fatalf("GetVendor: %v", err)
	}
	if vd.PaymentSummary.TotalPOs != 1 {
		t.Errorf("expected 1 PO, got %d", vd.PaymentSummary.TotalPOs)
	}
	assertAmount(t, "vendor outstanding", vd.PaymentSummary.OutstandingAmount, "600")

	if _, err := s.payments.VoidPayment(ctx, first.Payment.ID, "tester"); err != nil {
		t.Fatalf("void first: %v", err)
	}
	detail, _ = s.orders.GetPO(ctx, po.ID)
	if detail.Status != core.POStatusApproved {
		t.Errorf("expected APPROVED once all payments are voided, got %s", detail.Status)
	}
}

func TestPurchaseOrder_StatusOverride(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	s := newServices(pool)

	vendor := mustVendor(t, s.vendors, "Hooli", "ap@hooli.test", 15)
	po := mustPO(t, s.orders, vendor.ID, item("Servers", 1, "5000"))

	if _, err := s.orders.UpdateStatus(ctx, po.ID, core.POStatusDraft, "admin"); err != nil {
		t.Fatalf("UpdateStatus to DRAFT: %v", err)
	}

	var serr *core.InvalidStateError
	if _, err := pay(ctx, s.payments, po.ID, "100"); !errors.As(err, &serr) {
		t.Fatalf("expected InvalidStateError paying a DRAFT PO, got %v", err)
	}
	if _, err := s.orders.UpdateStatus(ctx, po.ID, core.POStatusFullyPaid, "admin"); !errors.As(err, &serr) {
		t.Errorf("expected InvalidStateError forcing FULLY_PAID, got %v", err)
	}

	updated, err := s.orders.UpdateStatus(ctx, po.ID, core.POStatusApproved, "admin")
	if err != nil {
		t.Fatalf("UpdateStatus to APPROVED: %v", err)
	}
	if updated.UpdatedBy == nil || *updated.UpdatedBy != "admin" {
		t.Errorf("expected updatedBy admin, got %v", updated.UpdatedBy)
	}

	if _, err := pay(ctx, s.payments, po.ID, "100"); err != nil {
		t.Fatalf("pay after approval: %v", err)
	}
	if _, err := s.orders.UpdateStatus(ctx, po.ID, core.POStatusApproved, "admin"); !errors.As(err, &serr) {
		t.Errorf("expected InvalidStateError reverting a paid PO, got %v", err)
	}

	var verr *core.ValidationError
	if _, err := s.orders.UpdateStatus(ctx, po.ID, core.POStatus("CLOSED"), "admin"); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for unknown status, got %v", err)
	}
}

func TestPurchaseOrder_CreateRejections(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	s := newServices(pool)

	vendor := mustVendor(t, s.vendors, "Wayne", "ap@wayne.test", 60)

	var verr *core.ValidationError
	if _, err := s.orders.CreatePO(ctx, core.CreatePOInput{VendorID: vendor.ID}); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for no items, got %v", err)
	}
	if _, err := s.orders.CreatePO(ctx, core.CreatePOInput{
		VendorID: vendor.ID, Items: []core.LineItemInput{item("Free", 1, "0")},
	}); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for zero unit price, got %v", err)
	}
	if _, err := s.orders.CreatePO(ctx, core.CreatePOInput{
		VendorID: vendor.ID, Items: []core.LineItemInput{item("Turbines", 1000000, "1000000")},
	}); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for a total past the money column, got %v", err)
	}

	var nf *core.NotFoundError
	if _, err := s.orders.CreatePO(ctx, core.CreatePOInput{
		VendorID: 424242, Items: []core.LineItemInput{item("Gadget", 1, "10")},
	}); !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError for missing vendor, got %v", err)
	}

	inactive := core.VendorStatusInactive
	if _, err := s.vendors.UpdateVendor(ctx, vendor.ID, core.VendorUpdate{Status: &inactive}); err != nil {
		t.Fatalf("deactivate vendor: %v", err)
	}
	var serr *core.InvalidStateError
	if _, err := s.orders.CreatePO(ctx, core.CreatePOInput{
		VendorID: vendor.ID, Items: []core.LineItemInput{item("Gadget", 1, "10")},
	}); !errors.As(err, &serr) {
		t.Errorf("expected InvalidStateError for inactive vendor, got %v", err)
	}
}

func TestPurchaseOrder_ListFilters(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	s := newServices(pool)

	a := mustVendor(t, s.vendors, "Alpha", "a@alpha.test", 30)
	b := mustVendor(t, s.vendors, "Beta", "b@beta.test", 30)
	small := mustPO(t, s.orders, a.ID, item("Pens", 10, "10"))
	big := mustPO(t, s.orders, a.ID, item("Desks", 5, "400"))
	mustPO(t, s.orders, b.ID, item("Lamps", 3, "150"))

	if _, err := pay(ctx, s.payments, big.ID, "500"); err != nil {
		t.Fatalf("pay: %v", err)
	}

	page, err := s.orders.ListPOs(ctx, core.POFilter{VendorID: &a.ID}, core.Page{})
	if err != nil {
		t.Fatalf("ListPOs: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("expected 2 POs for vendor Alpha, got %d", page.Total)
	}

	partial := core.POStatusPartiallyPaid
	page, err = s.orders.ListPOs(ctx, core.POFilter{Status: &partial}, core.Page{})
	if err != nil {
		t.Fatalf("ListPOs: %v", err)
	}
	if page.Total != 1 || page.Data[0].ID != big.ID || page.Data[0].PaymentCount != 1 {
		t.Errorf("unexpected status filter result: %+v", page.Data)
	}

	minAmt := decimal.RequireFromString("100")
	maxAmt := decimal.RequireFromString("450")
	page, err = s.orders.ListPOs(ctx, core.POFilter{AmountMin: &minAmt, AmountMax: &maxAmt}, core.Page{})
	if err != nil {
		t.Fatalf("ListPOs: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("expected 2 POs between 100 and 450 inclusive, got %d", page.Total)
	}
	foundSmall := false
	for _, po := range page.Data {
		if po.ID == small.ID {
			foundSmall = true
		}
		if po.ID == big.ID {
			t.Errorf("PO %d outside amount range returned", po.ID)
		}
		if len(po.Items) == 0 || po.Vendor == nil {
			t.Errorf("PO %d missing items or vendor", po.ID)
		}
	}
	if !foundSmall {
		t.Error("expected the 100.00 PO on the inclusive lower bound")
	}

	from := fixedNow.Add(-time.Hour)
	to := fixedNow.Add(time.Hour)
	page, err = s.orders.ListPOs(ctx, core.POFilter{DateFrom: &from, DateTo: &to}, core.Page{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("ListPOs: %v", err)
	}
	if page.Total != 3 || len(page.Data) != 1 || page.TotalPages != 2 {
		t.Errorf("unexpected pagination: total=%d len=%d pages=%d", page.Total, len(page.Data), page.TotalPages)
	}
}
