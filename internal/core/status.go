package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// The functions in this file are the PO payment state machine. They are pure so the
// services and the tests share exactly one definition of each transition.

// DeriveStatus returns the status a PO must carry given its non-voided paid sum:
// APPROVED when nothing is paid, PARTIALLY_PAID below the total, FULLY_PAID at or above it.
func DeriveStatus(totalAmount, totalPaid decimal.Decimal) POStatus {
	switch {
	case !totalPaid.IsPositive():
		return POStatusApproved
	case totalPaid.GreaterThanOrEqual(totalAmount):
		return POStatusFullyPaid
	default:
		return POStatusPartiallyPaid
	}
}

// SettlementSummary describes a PO's position around one applied payment.
type SettlementSummary struct {
	POTotalAmount     decimal.Decimal `json:"poTotalAmount"`
	PreviouslyPaid    decimal.Decimal `json:"previouslyPaid"`
	CurrentPayment    decimal.Decimal `json:"currentPayment"`
	TotalPaid         decimal.Decimal `json:"totalPaid"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
}

// VoidSummary describes a PO's position after one payment was voided.
type VoidSummary struct {
	POTotalAmount     decimal.Decimal `json:"poTotalAmount"`
	PreviouslyPaid    decimal.Decimal `json:"previouslyPaid"`
	VoidedAmount      decimal.Decimal `json:"voidedAmount"`
	TotalPaid         decimal.Decimal `json:"totalPaid"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
}

// planPayment validates applying amount to a PO in status with totalPaid already settled
// and returns the resulting status and summary. It does not touch storage.
func planPayment(poID int, status POStatus, totalAmount, totalPaid, amount decimal.Decimal) (POStatus, SettlementSummary, error) {
	if !amount.IsPositive() {
		return "", SettlementSummary{}, &ValidationError{Field: "amountPaid", Message: "must be greater than 0"}
	}

	switch status {
	case POStatusDraft:
		return "", SettlementSummary{}, &InvalidStateError{
			Entity: "purchase order", ID: poID, Status: string(status),
			Message: "approve PO before accepting payment",
		}
	case POStatusFullyPaid:
		return "", SettlementSummary{}, &InvalidStateError{
			Entity: "purchase order", ID: poID, Status: string(status),
			Message: "PO is fully paid, no further payments accepted",
		}
	}

	outstanding := totalAmount.Sub(totalPaid)
	if amount.GreaterThan(outstanding) {
		return "", SettlementSummary{}, &ValidationError{
			Field: "amountPaid",
			Message: fmt.Sprintf("payment amount %s exceeds outstanding amount %s on purchase order %d: overpayment not allowed",
				amount.StringFixed(2), outstanding.StringFixed(2), poID),
		}
	}

	newTotalPaid := totalPaid.Add(amount)
	newStatus := POStatusPartiallyPaid
	if newTotalPaid.GreaterThanOrEqual(totalAmount) {
		newStatus = POStatusFullyPaid
	}

	return newStatus, SettlementSummary{
		POTotalAmount:     totalAmount,
		PreviouslyPaid:    totalPaid,
		CurrentPayment:    amount,
		TotalPaid:         newTotalPaid,
		OutstandingAmount: totalAmount.Sub(newTotalPaid),
	}, nil
}

// planVoid returns the status and summary after removing voided from a PO whose
// non-voided payments (including voided) summed to totalPaid.
func planVoid(totalAmount, totalPaid, voided decimal.Decimal) (POStatus, VoidSummary) {
	remaining := totalPaid.Sub(voided)
	return DeriveStatus(totalAmount, remaining), VoidSummary{
		POTotalAmount:     totalAmount,
		PreviouslyPaid:    totalPaid,
		VoidedAmount:      voided,
		TotalPaid:         remaining,
		OutstandingAmount: totalAmount.Sub(remaining),
	}
}

// checkStatusOverride decides whether an administrative status change is consistent with
// the PO's paid sum. Once anything is paid the status is pinned to DeriveStatus; with
// nothing paid the PO may move between DRAFT and APPROVED.
func checkStatusOverride(poID int, current, requested POStatus, totalAmount, totalPaid decimal.Decimal) error {
	if !requested.IsValid() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", requested)}
	}

	if totalPaid.IsPositive() {
		derived := DeriveStatus(totalAmount, totalPaid)
		if requested != derived {
			return &InvalidStateError{
				Entity: "purchase order", ID: poID, Status: string(current),
				Message: fmt.Sprintf("status is derived from payments (paid %s of %s): only %s is allowed",
					totalPaid.StringFixed(2), totalAmount.StringFixed(2), derived),
			}
		}
		return nil
	}

	if requested != POStatusDraft && requested != POStatusApproved {
		return &InvalidStateError{
			Entity: "purchase order", ID: poID, Status: string(current),
			Message: fmt.Sprintf("no payments recorded: status %s requires payments", requested),
		}
	}
	return nil
}

// summarize computes the PaymentSummary for a PO from its non-voided payment amounts.
func summarize(totalAmount decimal.Decimal, amounts []decimal.Decimal) PaymentSummary {
	paid := decimal.Zero
	for _, a := range amounts {
		paid = paid.Add(a)
	}
	return PaymentSummary{
		TotalPaid:         paid,
		OutstandingAmount: totalAmount.Sub(paid),
		PaymentCount:      len(amounts),
	}
}
