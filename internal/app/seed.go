package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"payables/internal/core"
)

// DefaultUsers are the accounts every fresh install gets.
var DefaultUsers = []SaveUserRequest{
	{Username: "admin", Password: "admin123", Role: core.RoleAdmin},
	{Username: "user", Password: "user123", Role: core.RoleUser},
}

const demoVendorEmail = "accounts@acme-supplies.example"

// Seed saves users and, when withDemo is set and the demo vendor does not exist yet, records
// it with one approved purchase order and a partial payment. Running it again only
// refreshes the users.
func (s *appService) Seed(ctx context.Context, users []SaveUserRequest, withDemo bool) (*SeedResult, error) {
	res := &SeedResult{}
	for _, u := range users {
		if _, err := s.SaveUser(ctx, u); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", u.Username, err)
		}
		s.logger.Info("seeded user", zap.String("username", u.Username), zap.String("role", u.Role))
		res.Users++
	}
	if !withDemo {
		return res, nil
	}

	vendor, err := s.vendors.CreateVendor(ctx, core.VendorInput{
		Name:          "Acme Supplies",
		ContactPerson: "Priya Raman",
		Email:         demoVendorEmail,
		Phone:         "+91-80-5550-0100",
		PaymentTerms:  30,
	})
	var conflict *core.ConflictError
	if errors.As(err, &conflict) {
		s.logger.Info("demo data already present", zap.String("field", conflict.Field))
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("seed vendor: %w", err)
	}
	res.VendorID = vendor.ID

	po, err := s.orders.CreatePO(ctx, core.CreatePOInput{
		VendorID: vendor.ID,
		Items: []core.LineItemInput{
			{Description: "A4 paper, 500 sheets", Quantity: 10, UnitPrice: decimal.NewFromInt(50)},
			{Description: "Toner cartridge", Quantity: 5, UnitPrice: decimal.NewFromInt(100)},
		},
		Actor: "seed",
	})
	if err != nil {
		return nil, fmt.Errorf("seed purchase order: %w", err)
	}
	if _, err := s.orders.UpdateStatus(ctx, po.ID, core.POStatusApproved, "seed"); err != nil {
		return nil, fmt.Errorf("approve seed purchase order: %w", err)
	}
	res.POID, res.PONumber = po.ID, po.PONumber

	paid, err := s.payments.ApplyPayment(ctx, core.PaymentInput{
		POID:   po.ID,
		Amount: decimal.NewFromInt(400),
		Method: core.PaymentMethodBankTransfer,
		Notes:  "advance",
		Actor:  "seed",
	})
	if err != nil {
		return nil, fmt.Errorf("seed payment: %w", err)
	}
	res.PaymentID = paid.Payment.ID

	s.logger.Info("seeded demo data",
		zap.Int("vendor_id", vendor.ID),
		zap.String("po_number", po.PONumber),
		zap.String("payment_reference", paid.Payment.Reference),
		zap.String("po_status", string(paid.POStatus)),
	)
	return res, nil
}
