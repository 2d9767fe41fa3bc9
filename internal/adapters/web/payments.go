package web

import (
	"net/http"

	"payables/internal/app"
)

// apiCreatePayment handles POST /api/payments.
func (h *Handler) apiCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req app.RecordPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Actor = actor(r)

	result, err := h.svc.RecordPayment(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result.Settlement)
}

// apiListPayments handles GET /api/payments?page&limit.
func (h *Handler) apiListPayments(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	result, err := h.svc.ListPayments(r.Context(), page)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result.Payments)
}

// apiGetPayment handles GET /api/payments/{id}.
func (h *Handler) apiGetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetPayment(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result.Payment)
}

// apiVoidPayment handles DELETE /api/payments/{id}.
func (h *Handler) apiVoidPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.VoidPayment(r.Context(), id, actor(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result.Settlement)
}
