// Package export renders analytics reports as spreadsheet workbooks.
package export

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"payables/internal/core"
)

const (
	SheetVendorOutstanding = "Vendor Outstanding"
	SheetPaymentAging      = "Payment Aging"
	SheetPaymentTrends     = "Payment Trends"
)

// AnalyticsWorkbook writes the three analytics reports to an XLSX workbook, one sheet each,
// with a bold header row.
func AnalyticsWorkbook(outstanding *core.VendorOutstandingReport, aging *core.AgingReport, trends *core.TrendsReport) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	w := &sheetWriter{f: f, header: header}

	w.sheet(SheetVendorOutstanding, []any{
		"Vendor ID", "Vendor", "Contact", "Status", "POs", "PO Amount", "Paid", "Outstanding",
	})
	for _, v := range outstanding.Vendors {
		w.row(v.VendorID, v.VendorName, v.ContactPerson, string(v.Status), v.TotalPurchaseOrders,
			money(v.TotalPOAmount), money(v.TotalPaid), money(v.OutstandingAmount))
	}
	w.row()
	w.row("Total outstanding", "", "", "", "", "", "", money(outstanding.Summary.TotalOutstanding))

	w.sheet(SheetPaymentAging, []any{
		"Bucket", "PO ID", "PO Number", "Vendor", "Total", "Paid", "Outstanding", "Due Date", "Days Overdue",
	})
	for _, b := range []struct {
		label  string
		bucket core.AgingBucket
	}{
		{"0-30", aging.Current},
		{"31-60", aging.Days31To60},
		{"61-90", aging.Days61To90},
		{"90+", aging.Over90},
	} {
		for _, e := range b.bucket.PurchaseOrders {
			w.row(b.label, e.POID, e.PONumber, e.VendorName, money(e.TotalAmount), money(e.TotalPaid),
				money(e.Outstanding), e.DueDate.UTC().Format("2006-01-02"), e.DaysOverdue)
		}
	}
	w.row()
	w.row("Total outstanding", "", "", "", "", "", money(aging.TotalOutstanding))

	w.sheet(SheetPaymentTrends, []any{"Month", "Payments", "Total", "Average"})
	for _, m := range trends.Trends {
		w.row(m.Month, m.PaymentCount, money(m.TotalAmount), money(m.AveragePayment))
	}
	w.row()
	w.row("Period", trends.Summary.Period)
	w.row("Total", trends.Summary.TotalPayments, money(trends.Summary.TotalAmount), money(trends.Summary.AveragePayment))

	if w.err != nil {
		return nil, w.err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("remove default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(SheetVendorOutstanding); err == nil {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

// sheetWriter appends rows to the current sheet and keeps the first error.
type sheetWriter struct {
	f      *excelize.File
	header int
	name   string
	next   int
	err    error
}

func (w *sheetWriter) sheet(name string, columns []any) {
	if w.err != nil {
		return
	}
	if _, err := w.f.NewSheet(name); err != nil {
		w.err = fmt.Errorf("create sheet %q: %w", name, err)
		return
	}
	w.name, w.next = name, 1
	w.row(columns...)
	if w.err != nil {
		return
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := w.f.SetCellStyle(name, "A1", last, w.header); err != nil {
		w.err = fmt.Errorf("style header of %q: %w", name, err)
		return
	}
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	if err := w.f.SetColWidth(name, "A", lastCol, 16); err != nil {
		w.err = fmt.Errorf("size columns of %q: %w", name, err)
	}
}

func (w *sheetWriter) row(values ...any) {
	if w.err != nil {
		return
	}
	if len(values) > 0 {
		cell, _ := excelize.CoordinatesToCellName(1, w.next)
		if err := w.f.SetSheetRow(w.name, cell, &values); err != nil {
			w.err = fmt.Errorf("write row %d of %q: %w", w.next, w.name, err)
			return
		}
	}
	w.next++
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
