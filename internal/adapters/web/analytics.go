package web

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// ── Analytics (read-only) ─────────────────────────────────────────────────────

// apiVendorOutstanding handles GET /api/analytics/vendor-outstanding.
func (h *Handler) apiVendorOutstanding(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.GetVendorOutstanding(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// apiPaymentAging handles GET /api/analytics/payment-aging.
func (h *Handler) apiPaymentAging(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.GetPaymentAging(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// apiPaymentTrends handles GET /api/analytics/payment-trends.
func (h *Handler) apiPaymentTrends(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.GetPaymentTrends(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// apiExportAnalytics handles GET /api/analytics/export.xlsx.
func (h *Handler) apiExportAnalytics(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ExportAnalytics(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Content)))
	if _, err := w.Write(result.Content); err != nil {
		h.logger.Warn("write workbook", zap.Error(err))
	}
}
