package web

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"payables/internal/app"
	"payables/internal/core"
)

// apiCreatePurchaseOrder handles POST /api/purchase-orders.
func (h *Handler) apiCreatePurchaseOrder(w http.ResponseWriter, r *http.Request) {
	var req app.CreatePurchaseOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Actor = actor(r)

	result, err := h.svc.CreatePurchaseOrder(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result.PurchaseOrder)
}

// apiListPurchaseOrders handles
// GET /api/purchase-orders?vendorId&status&dateFrom&dateTo&amountMin&amountMax&page&limit.
func (h *Handler) apiListPurchaseOrders(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	filter, err := poFilterFromQuery(r.URL.Query())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	result, err := h.svc.ListPurchaseOrders(r.Context(), app.ListPurchaseOrdersRequest{Filter: filter, Page: page})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result.PurchaseOrders)
}

// apiGetPurchaseOrder handles GET /api/purchase-orders/{id}.
func (h *Handler) apiGetPurchaseOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetPurchaseOrder(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result.PurchaseOrder)
}

// apiUpdatePurchaseOrderStatus handles PATCH /api/purchase-orders/{id}/status.
func (h *Handler) apiUpdatePurchaseOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.UpdatePurchaseOrderStatus(r.Context(), app.UpdatePOStatusRequest{
		PurchaseOrderID: id,
		Status:          req.Status,
		Actor:           actor(r),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result.PurchaseOrder)
}

// poFilterFromQuery parses the list filters. Dates accept RFC 3339 or YYYY-MM-DD; a bare
// dateTo covers that whole UTC day.
func poFilterFromQuery(q url.Values) (core.POFilter, error) {
	var f core.POFilter

	if v := q.Get("vendorId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			return f, &core.ValidationError{Field: "vendorId", Message: "must be a positive integer"}
		}
		f.VendorID = &id
	}
	if v := q.Get("status"); v != "" {
		s := core.POStatus(v)
		if !s.IsValid() {
			return f, &core.ValidationError{Field: "status", Message: "must be one of: DRAFT, APPROVED, PARTIALLY_PAID, FULLY_PAID"}
		}
		f.Status = &s
	}
	if v := q.Get("dateFrom"); v != "" {
		t, _, err := parseDate(v)
		if err != nil {
			return f, &core.ValidationError{Field: "dateFrom", Message: "must be YYYY-MM-DD or RFC 3339"}
		}
		f.DateFrom = &t
	}
	if v := q.Get("dateTo"); v != "" {
		t, dateOnly, err := parseDate(v)
		if err != nil {
			return f, &core.ValidationError{Field: "dateTo", Message: "must be YYYY-MM-DD or RFC 3339"}
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		f.DateTo = &t
	}
	for _, a := range []struct {
		key string
		dst **decimal.Decimal
	}{
		{"amountMin", &f.AmountMin},
		{"amountMax", &f.AmountMax},
	} {
		v := q.Get(a.key)
		if v == "" {
			continue
		}
		amt, err := decimal.NewFromString(v)
		if err != nil {
			return f, &core.ValidationError{Field: a.key, Message: "must be a number"}
		}
		*a.dst = &amt
	}
	return f, nil
}

func parseDate(v string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.DateOnly, v); err == nil {
		return t, true, nil
	}
	t, err = time.Parse(time.RFC3339, v)
	return t.UTC(), false, err
}
