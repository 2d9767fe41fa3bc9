package core_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"payables/internal/core"
	"payables/internal/db"
	"payables/migrations"
)

var fixedNow = time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database; these tests truncate every table.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.Migrate(ctx, pool, migrations.FS, zap.NewNop()); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE payments, line_items, purchase_orders, vendors, users
		RESTART IDENTITY CASCADE`)
	if err != nil {
		pool.Close()
		t.Fatalf("Failed to clean test database: %v", err)
	}
	return pool
}

type services struct {
	vendors   core.VendorService
	orders    core.PurchaseOrderService
	payments  core.PaymentService
	analytics core.AnalyticsService
	users     core.UserService
}

func newServices(pool *pgxpool.Pool) services {
	ids := core.NewSequenceGenerator(fixedClock)
	return services{
		vendors:   core.NewVendorService(pool),
		orders:    core.NewPurchaseOrderService(pool, ids, fixedClock),
		payments:  core.NewPaymentService(pool, ids, fixedClock),
		analytics: core.NewAnalyticsService(pool, fixedClock),
		users:     core.NewUserService(pool),
	}
}

func mustVendor(t *testing.T, svc core.VendorService, name, email string, terms int) *core.Vendor {
	t.Helper()
	v, err := svc.CreateVendor(context.Background(), core.VendorInput{
		Name:          name,
		ContactPerson: "Contact " + name,
		Email:         email,
		Phone:         "+91-90000-00000",
		PaymentTerms:  terms,
	})
	if err != nil {
		t.Fatalf("CreateVendor(%s): %v", name, err)
	}
	return v
}

func mustPO(t *testing.T, svc core.PurchaseOrderService, vendorID int, items ...core.LineItemInput) *core.PurchaseOrder {
	t.Helper()
	po, err := svc.CreatePO(context.Background(), core.CreatePOInput{VendorID: vendorID, Items: items, Actor: "tester"})
	if err != nil {
		t.Fatalf("CreatePO: %v", err)
	}
	return po
}

func item(desc string, qty int, price string) core.LineItemInput {
	return core.LineItemInput{Description: desc, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
}

func pay(ctx context.Context, svc core.PaymentService, poID int, amount string) (*core.PaymentResult, error) {
	return svc.ApplyPayment(ctx, core.PaymentInput{
		POID:   poID,
		Amount: decimal.RequireFromString(amount),
		Method: core.PaymentMethodBankTransfer,
		Actor:  "tester",
	})
}

func assertAmount(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s: expected %s, got %s", label, want, got)
	}
}

func TestPayment_Overpayment(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	s := newServices(pool)

	vendor := mustVendor(t, s.vendors, "Umbrella", "pay@umbrella.test", 7)
	po := mustPO(t, s.orders, vendor.ID, item("Filters", 4, "250"))

	if _, err := pay(ctx, s.payments, po.ID, "800"); err != nil {
		t.Fatalf("pay 800: %v", err)
	}

	var verr *core.ValidationError
	if _, err := pay(ctx, s.payments, po.ID, "201"); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for overpayment, got %v", err)
	}

	res, err := pay(ctx, s.payments, po.ID, "200")
	if err != nil {
		t.Fatalf("pay 200: %v", err)
	}
	if res.POStatus != core.POStatusFullyPaid {
		t.Errorf("expected FULLY_PAID, got %s", res.POStatus)
	}

	var serr *core.InvalidStateError
	if _, err := pay(ctx, s.payments, po.ID, "1"); !errors.As(err, &serr) {
		t.Errorf("expected InvalidStateError on fully paid PO, got %v", err)
	}

	var nf *core.NotFoundError
	if _, err := pay(ctx, s.payments, 999999, "1"); !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError for missing PO, got %v", err)
	}
}

func TestPayment_ConcurrentApplyOnSamePO(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	s := newServices(pool)

	vendor := mustVendor(t, s.vendors, "Stark", "ap@stark.test", 30)
	po := mustPO(t, s.orders, vendor.ID, item("Reactors", 1, "1000"))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = pay(ctx, s.payments, po.ID, "600")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var verr *core.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("expected the loser to fail with ValidationError, got %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one payment to succeed, got %d", succeeded)
	}

	detail, err := s.orders.GetPO(ctx, po.ID)
	if err != nil {
		t.Fatalf("GetPO: %v", err)
	}
	assertAmount(t, "total paid", detail.PaymentSummary.TotalPaid, "600")
}

func TestPayment_DifferentPOsDoNotBlock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	s := newServices(pool)

	vendor := mustVendor(t, s.vendors, "Cyberdyne", "ap@cyberdyne.test", 30)
	poA := mustPO(t, s.orders, vendor.ID, item("Chips", 10, "100"))
	poB := mustPO(t, s.orders, vendor.ID, item("Arms", 2, "300"))

	// Hold an uncommitted payment on PO A: its row lock and a freshly drawn reference.
	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, "SELECT id FROM purchase_orders WHERE id = $1 FOR UPDATE", poA.ID); err != nil {
		t.Fatalf("lock PO A: %v", err)
	}
	ref, err := core.NewSequenceGenerator(fixedClock).NextPaymentReference(ctx, tx)
	if err != nil {
		t.Fatalf("NextPaymentReference: %v", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO payments (reference, purchase_order_id, amount_paid, payment_date, method)
		VALUES ($1, $2, 100, $3, 'CASH')`, ref, poA.ID, fixedNow); err != nil {
		t.Fatalf("insert pending payment: %v", err)
	}

	deadline, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	res, err := pay(deadline, s.payments, poB.ID, "250")
	if err != nil {
		t.Fatalf("payment on PO B waited on PO A's open transaction: %v", err)
	}
	if res.Payment.Reference == ref {
		t.Errorf("PO B reused pending reference %s", ref)
	}

	blocked, cancelBlocked := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancelBlocked()
	if _, err := pay(blocked, s.payments, poA.ID, "50"); err == nil {
		t.Error("expected a payment on PO A to wait for its row lock")
	}

	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if _, err := pay(ctx, s.payments, poA.ID, "50"); err != nil {
		t.Fatalf("pay PO A after release: %v", err)
	}
}
