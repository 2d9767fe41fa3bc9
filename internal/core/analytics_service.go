package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// trendMonths is the width of the payment trends window, current month included.
const trendMonths = 6

type analyticsService struct {
	pool *pgxpool.Pool
	now  Clock
}

// NewAnalyticsService constructs an AnalyticsService. now supplies "today" for aging and trends.
func NewAnalyticsService(pool *pgxpool.Pool, now Clock) AnalyticsService {
	if now == nil {
		now = SystemClock
	}
	return &analyticsService{pool: pool, now: now}
}

// ── Vendor outstanding ──────────────────────────────────────────────────────

func (s *analyticsService) VendorOutstanding(ctx context.Context) (*VendorOutstandingReport, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT v.id, v.name, v.contact_person, v.status,
		       COUNT(po.id),
		       COALESCE(SUM(po.total_amount), 0),
		       COALESCE(SUM(p.paid), 0)
		FROM vendors v
		LEFT JOIN purchase_orders po ON po.vendor_id = v.id
		LEFT JOIN (
		    SELECT purchase_order_id, SUM(amount_paid) AS paid
		    FROM payments
		    WHERE deleted_at IS NULL
		    GROUP BY purchase_order_id
		) p ON p.purchase_order_id = po.id
		WHERE v.deleted_at IS NULL
		GROUP BY v.id`)
	if err != nil {
		return nil, wrapDBError("vendor outstanding", err)
	}
	defer rows.Close()

	var vendors []VendorOutstanding
	for rows.Next() {
		var v VendorOutstanding
		if err := rows.Scan(
			&v.VendorID, &v.VendorName, &v.ContactPerson, &v.Status,
			&v.TotalPurchaseOrders, &v.TotalPOAmount, &v.TotalPaid,
		); err != nil {
			return nil, fmt.Errorf("scan vendor outstanding: %w", err)
		}
		v.OutstandingAmount = v.TotalPOAmount.Sub(v.TotalPaid)
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("vendor outstanding", err)
	}
	return rankOutstanding(vendors), nil
}

// rankOutstanding sorts vendors by outstanding amount descending (ties by vendor id) and
// computes the report summary.
func rankOutstanding(vendors []VendorOutstanding) *VendorOutstandingReport {
	if vendors == nil {
		vendors = []VendorOutstanding{}
	}
	sort.SliceStable(vendors, func(i, j int) bool {
		if c := vendors[i].OutstandingAmount.Cmp(vendors[j].OutstandingAmount); c != 0 {
			return c > 0
		}
		return vendors[i].VendorID < vendors[j].VendorID
	})

	r := &VendorOutstandingReport{Vendors: vendors}
	r.Summary.TotalOutstanding = decimal.Zero
	r.Summary.TotalVendors = len(vendors)
	for _, v := range vendors {
		r.Summary.TotalOutstanding = r.Summary.TotalOutstanding.Add(v.OutstandingAmount)
		if v.OutstandingAmount.IsPositive() {
			r.Summary.VendorsWithOutstanding++
		}
	}
	return r
}

// ── Payment aging ───────────────────────────────────────────────────────────

func (s *analyticsService) PaymentAging(ctx context.Context) (*AgingReport, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT po.id, po.po_number, v.id, v.name, po.total_amount,
		       COALESCE(p.paid, 0), po.due_date
		FROM purchase_orders po
		JOIN vendors v ON v.id = po.vendor_id
		LEFT JOIN (
		    SELECT purchase_order_id, SUM(amount_paid) AS paid
		    FROM payments
		    WHERE deleted_at IS NULL
		    GROUP BY purchase_order_id
		) p ON p.purchase_order_id = po.id
		WHERE po.status IN ($1, $2)
		ORDER BY po.due_date, po.id`,
		POStatusApproved, POStatusPartiallyPaid,
	)
	if err != nil {
		return nil, wrapDBError("payment aging", err)
	}
	defer rows.Close()

	var entries []AgingEntry
	for rows.Next() {
		var e AgingEntry
		if err := rows.Scan(
			&e.POID, &e.PONumber, &e.VendorID, &e.VendorName, &e.TotalAmount,
			&e.TotalPaid, &e.DueDate,
		); err != nil {
			return nil, fmt.Errorf("scan aging row: %w", err)
		}
		e.Outstanding = e.TotalAmount.Sub(e.TotalPaid)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("payment aging", err)
	}
	return bucketAging(s.now(), entries), nil
}

// daysOverdue counts calendar days (UTC) from due to now, clamped at 0.
func daysOverdue(now, due time.Time) int {
	days := int(civilDate(now).Sub(civilDate(due)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// bucketAging drops fully settled entries and files the rest by days overdue:
// 0..30 current, 31..60, 61..90, over 90.
func bucketAging(now time.Time, entries []AgingEntry) *AgingReport {
	r := &AgingReport{AsOf: civilDate(now), TotalOutstanding: decimal.Zero}
	for _, b := range []*AgingBucket{&r.Current, &r.Days31To60, &r.Days61To90, &r.Over90} {
		b.TotalOutstanding = decimal.Zero
		b.PurchaseOrders = []AgingEntry{}
	}

	for _, e := range entries {
		if !e.Outstanding.IsPositive() {
			continue
		}
		e.DaysOverdue = daysOverdue(now, e.DueDate)

		var b *AgingBucket
		switch {
		case e.DaysOverdue <= 30:
			b = &r.Current
		case e.DaysOverdue <= 60:
			b = &r.Days31To60
		case e.DaysOverdue <= 90:
			b = &r.Days61To90
		default:
			b = &r.Over90
		}
		b.Count++
		b.TotalOutstanding = b.TotalOutstanding.Add(e.Outstanding)
		b.PurchaseOrders = append(b.PurchaseOrders, e)
		r.TotalOutstanding = r.TotalOutstanding.Add(e.Outstanding)
	}
	return r
}

// ── Payment trends ──────────────────────────────────────────────────────────

func (s *analyticsService) PaymentTrends(ctx context.Context) (*TrendsReport, error) {
	now := s.now()
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.reference, p.amount_paid, p.method, po.po_number, v.name, p.payment_date
		FROM payments p
		JOIN purchase_orders po ON po.id = p.purchase_order_id
		JOIN vendors v ON v.id = po.vendor_id
		WHERE p.deleted_at IS NULL
		  AND p.payment_date >= $1
		  AND p.payment_date <= $2
		ORDER BY p.payment_date, p.id`,
		trendWindowStart(now), now,
	)
	if err != nil {
		return nil, wrapDBError("payment trends", err)
	}
	defer rows.Close()

	var payments []TrendPayment
	for rows.Next() {
		var p TrendPayment
		if err := rows.Scan(
			&p.ID, &p.Reference, &p.Amount, &p.Method, &p.PONumber, &p.VendorName, &p.PaymentDate,
		); err != nil {
			return nil, fmt.Errorf("scan trend payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("payment trends", err)
	}
	return buildTrends(now, payments), nil
}

// trendWindowStart is midnight UTC on the first day of the oldest month in the window.
func trendWindowStart(now time.Time) time.Time {
	y, m, _ := now.UTC().Date()
	return time.Date(y, m-(trendMonths-1), 1, 0, 0, 0, 0, time.UTC)
}

// buildTrends groups payments into the trailing calendar months ending with now's month.
// Payments outside the window are ignored.
func buildTrends(now time.Time, payments []TrendPayment) *TrendsReport {
	start := trendWindowStart(now)
	r := &TrendsReport{Trends: make([]MonthlyTrend, trendMonths)}
	index := make(map[string]int, trendMonths)
	for i := range r.Trends {
		key := start.AddDate(0, i, 0).Format("2006-01")
		r.Trends[i] = MonthlyTrend{
			Month:          key,
			TotalAmount:    decimal.Zero,
			AveragePayment: decimal.Zero,
			Payments:       []TrendPayment{},
		}
		index[key] = i
	}

	total := decimal.Zero
	count := 0
	for _, p := range payments {
		i, ok := index[p.PaymentDate.UTC().Format("2006-01")]
		if !ok {
			continue
		}
		t := &r.Trends[i]
		t.PaymentCount++
		t.TotalAmount = t.TotalAmount.Add(p.Amount)
		t.Payments = append(t.Payments, p)
		total = total.Add(p.Amount)
		count++
	}

	highest := 0
	lowest := -1
	for i := range r.Trends {
		t := &r.Trends[i]
		t.AveragePayment = average(t.TotalAmount, t.PaymentCount)
		if t.TotalAmount.GreaterThan(r.Trends[highest].TotalAmount) {
			highest = i
		}
		if t.PaymentCount > 0 && (lowest < 0 || t.TotalAmount.LessThan(r.Trends[lowest].TotalAmount)) {
			lowest = i
		}
	}

	sum := &r.Summary
	sum.Period = fmt.Sprintf("%s to %s", start.Format("2006-01-02"), now.UTC().Format("2006-01-02"))
	sum.TotalPayments = count
	sum.TotalAmount = total
	sum.AveragePayment = average(total, count)
	sum.HighestMonth = monthRef(r.Trends[highest])
	if lowest >= 0 {
		ref := monthRef(r.Trends[lowest])
		sum.LowestMonth = &ref
	}
	return r
}

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n))).Round(2)
}

func monthRef(t MonthlyTrend) MonthRef {
	return MonthRef{Month: t.Month, PaymentCount: t.PaymentCount, TotalAmount: t.TotalAmount}
}
