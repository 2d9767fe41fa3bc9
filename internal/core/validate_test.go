package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validVendorInput() VendorInput {
	return VendorInput{
		Name:          "Acme Supplies",
		ContactPerson: "Asha",
		Email:         "asha@acme.test",
		Phone:         "+91-98765-43210",
		PaymentTerms:  30,
	}
}

func requireValidationError(t *testing.T, err error, field string) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	assert.Equal(t, field, verr.Field)
	return verr
}

func TestValidateStruct_VendorInput(t *testing.T) {
	require.NoError(t, validateStruct(validVendorInput()))

	in := validVendorInput()
	in.Email = "not-an-email"
	requireValidationError(t, validateStruct(in), "email")

	in = validVendorInput()
	in.PaymentTerms = 10
	verr := requireValidationError(t, validateStruct(in), "paymentTerms")
	assert.Equal(t, "must be one of: 7, 15, 30, 45, 60", verr.Message)

	in = validVendorInput()
	in.Status = "SUSPENDED"
	requireValidationError(t, validateStruct(in), "status")

	in = validVendorInput()
	in.Name = ""
	verr = requireValidationError(t, validateStruct(in), "name")
	assert.Equal(t, "is required", verr.Message)
}

func TestValidateStruct_VendorUpdate(t *testing.T) {
	require.NoError(t, validateStruct(VendorUpdate{}), "empty update is valid")

	bad := "nope"
	requireValidationError(t, validateStruct(VendorUpdate{Email: &bad}), "email")

	terms := 45
	require.NoError(t, validateStruct(VendorUpdate{PaymentTerms: &terms}))

	empty := ""
	requireValidationError(t, validateStruct(VendorUpdate{Name: &empty}), "name")
}

func TestValidateStruct_CreatePOInput(t *testing.T) {
	verr := requireValidationError(t, validateStruct(CreatePOInput{VendorID: 1, Items: []LineItemInput{}}), "items")
	assert.Contains(t, verr.Message, "at least 1")

	requireValidationError(t, validateStruct(CreatePOInput{Items: []LineItemInput{{Description: "x", Quantity: 1}}}), "vendorId")

	requireValidationError(t, validateStruct(CreatePOInput{
		VendorID: 1,
		Items:    []LineItemInput{{Description: "Bolts", Quantity: 1}, {Description: "Nuts", Quantity: 0}},
	}), "items[1].quantity")
}

func TestValidateStruct_PaymentInput(t *testing.T) {
	ok := PaymentInput{POID: 1, Amount: d("10"), Method: PaymentMethodUPI}
	require.NoError(t, validateStruct(ok))

	bad := ok
	bad.Method = "BARTER"
	requireValidationError(t, validateStruct(bad), "paymentMethod")
}

func TestCheckMoney(t *testing.T) {
	assert.NoError(t, checkMoney("unitPrice", d("10.25")))
	requireValidationError(t, checkMoney("unitPrice", d("0")), "unitPrice")
	requireValidationError(t, checkMoney("unitPrice", d("-1")), "unitPrice")
	verr := requireValidationError(t, checkMoney("unitPrice", d("10.005")), "unitPrice")
	assert.Contains(t, verr.Message, "decimal places")

	assert.NoError(t, checkMoney("amountPaid", d("999999999999.99")))
	verr = requireValidationError(t, checkMoney("amountPaid", d("1000000000000")), "amountPaid")
	assert.Contains(t, verr.Message, "must not exceed")
}

func TestPriceItems(t *testing.T) {
	items, total, err := priceItems([]LineItemInput{
		{Description: " Staplers ", Quantity: 10, UnitPrice: d("50")},
		{Description: "Chairs", Quantity: 5, UnitPrice: d("100")},
	})
	require.NoError(t, err)
	assert.True(t, total.Equal(d("1000")))
	require.Len(t, items, 2)
	assert.Equal(t, "Staplers", items[0].Description)
	assert.Equal(t, 2, items[1].LineNumber)
	assert.True(t, items[1].LineTotal.Equal(d("500")))

	requireValidationError(t, func() error {
		_, _, err := priceItems([]LineItemInput{{Description: "  ", Quantity: 1, UnitPrice: d("1")}})
		return err
	}(), "items[0].description")

	verr := requireValidationError(t, func() error {
		_, _, err := priceItems([]LineItemInput{{Description: "Turbines", Quantity: 1000000, UnitPrice: d("1000000")}})
		return err
	}(), "items[0]")
	assert.Contains(t, verr.Message, "line total")

	verr = requireValidationError(t, func() error {
		_, _, err := priceItems([]LineItemInput{
			{Description: "Hull", Quantity: 1, UnitPrice: d("600000000000")},
			{Description: "Engines", Quantity: 1, UnitPrice: d("600000000000")},
		})
		return err
	}(), "items")
	assert.Contains(t, verr.Message, "total amount")
}

func TestValidateStruct_QuantityCap(t *testing.T) {
	requireValidationError(t, validateStruct(CreatePOInput{
		VendorID: 1,
		Items:    []LineItemInput{{Description: "Bolts", Quantity: 1000001, UnitPrice: d("1")}},
	}), "items[0].quantity")
}
