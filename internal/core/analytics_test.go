package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, time.October, 15, 14, 30, 0, 0, time.UTC)

func TestDaysOverdue(t *testing.T) {
	assert.Equal(t, 0, daysOverdue(today, today.AddDate(0, 0, 10)), "not yet due")
	assert.Equal(t, 0, daysOverdue(today, today), "due today")
	assert.Equal(t, 30, daysOverdue(today, today.AddDate(0, 0, -30)))
	// Only the calendar date counts, not the time of day.
	lateDue := time.Date(2026, time.September, 14, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 31, daysOverdue(today, lateDue))
}

func TestBucketAging(t *testing.T) {
	entry := func(id, daysAgo int, outstanding string) AgingEntry {
		return AgingEntry{
			POID:        id,
			TotalAmount: d("1000"),
			TotalPaid:   d("1000").Sub(d(outstanding)),
			Outstanding: d(outstanding),
			DueDate:     today.AddDate(0, 0, -daysAgo),
		}
	}

	r := bucketAging(today, []AgingEntry{
		entry(1, -5, "100"), // not yet due
		entry(2, 30, "200"),
		entry(3, 31, "300"),
		entry(4, 60, "50"),
		entry(5, 61, "10"),
		entry(6, 90, "20"),
		entry(7, 91, "400"),
		entry(8, 200, "0"), // settled, skipped
	})

	assert.Equal(t, 2, r.Current.Count)
	assert.True(t, r.Current.TotalOutstanding.Equal(d("300")))
	assert.Equal(t, 2, r.Days31To60.Count)
	assert.True(t, r.Days31To60.TotalOutstanding.Equal(d("350")))
	assert.Equal(t, 2, r.Days61To90.Count)
	assert.True(t, r.Days61To90.TotalOutstanding.Equal(d("30")))
	assert.Equal(t, 1, r.Over90.Count)
	assert.True(t, r.TotalOutstanding.Equal(d("1080")))

	assert.Equal(t, 0, r.Current.PurchaseOrders[0].DaysOverdue)
	assert.Equal(t, 31, r.Days31To60.PurchaseOrders[0].DaysOverdue)
}

func TestBucketAging_Empty(t *testing.T) {
	r := bucketAging(today, nil)
	assert.True(t, r.TotalOutstanding.IsZero())
	assert.NotNil(t, r.Over90.PurchaseOrders)
	assert.Equal(t, 0, r.Current.Count)
}

func TestBuildTrends(t *testing.T) {
	at := func(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 9, 0, 0, 0, time.UTC) }
	payments := []TrendPayment{
		{ID: 1, Amount: d("100"), PaymentDate: at(2026, time.April, 30)}, // outside window
		{ID: 2, Amount: d("300"), PaymentDate: at(2026, time.May, 1)},
		{ID: 3, Amount: d("200"), PaymentDate: at(2026, time.July, 3)},
		{ID: 4, Amount: d("100"), PaymentDate: at(2026, time.July, 20)},
		{ID: 5, Amount: d("50"), PaymentDate: at(2026, time.October, 2)},
	}

	r := buildTrends(today, payments)
	require.Len(t, r.Trends, 6)
	assert.Equal(t, "2026-05", r.Trends[0].Month)
	assert.Equal(t, "2026-10", r.Trends[5].Month)

	assert.Equal(t, 1, r.Trends[0].PaymentCount)
	assert.Equal(t, 2, r.Trends[2].PaymentCount)
	assert.True(t, r.Trends[2].AveragePayment.Equal(d("150")))
	assert.True(t, r.Trends[1].AveragePayment.IsZero())

	assert.Equal(t, 4, r.Summary.TotalPayments)
	assert.True(t, r.Summary.TotalAmount.Equal(d("650")))
	assert.True(t, r.Summary.AveragePayment.Equal(d("162.5")))
	assert.Equal(t, "2026-05-01 to 2026-10-15", r.Summary.Period)

	// May and July tie at 300; the earlier month wins.
	assert.Equal(t, "2026-05", r.Summary.HighestMonth.Month)
	require.NotNil(t, r.Summary.LowestMonth)
	assert.Equal(t, "2026-10", r.Summary.LowestMonth.Month)
}

func TestBuildTrends_NoPayments(t *testing.T) {
	r := buildTrends(today, nil)
	assert.Equal(t, 0, r.Summary.TotalPayments)
	assert.Nil(t, r.Summary.LowestMonth)
	assert.Equal(t, "2026-05", r.Summary.HighestMonth.Month)
}

func TestTrendWindowStart_CrossesYear(t *testing.T) {
	feb := time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), trendWindowStart(feb))
}

func TestRankOutstanding(t *testing.T) {
	r := rankOutstanding([]VendorOutstanding{
		{VendorID: 3, OutstandingAmount: d("100")},
		{VendorID: 1, OutstandingAmount: d("0")},
		{VendorID: 2, OutstandingAmount: d("100")},
		{VendorID: 4, OutstandingAmount: d("500")},
	})

	var ids []int
	for _, v := range r.Vendors {
		ids = append(ids, v.VendorID)
	}
	assert.Equal(t, []int{4, 2, 3, 1}, ids)
	assert.Equal(t, 4, r.Summary.TotalVendors)
	assert.Equal(t, 3, r.Summary.VendorsWithOutstanding)
	assert.True(t, r.Summary.TotalOutstanding.Equal(d("700")))
}
