package web

import (
	"net/http"

	"payables/internal/app"
)

// apiCreateVendor handles POST /api/vendors.
func (h *Handler) apiCreateVendor(w http.ResponseWriter, r *http.Request) {
	var req app.CreateVendorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.CreateVendor(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result.Vendor)
}

// apiListVendors handles GET /api/vendors?page&limit.
func (h *Handler) apiListVendors(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	result, err := h.svc.ListVendors(r.Context(), page)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result.Vendors)
}

// apiGetVendor handles GET /api/vendors/{id}.
func (h *Handler) apiGetVendor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetVendor(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result.Vendor)
}

// apiUpdateVendor handles PUT /api/vendors/{id}. Omitted fields are left unchanged.
func (h *Handler) apiUpdateVendor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req app.UpdateVendorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.svc.UpdateVendor(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result.Vendor)
}

// apiDeleteVendor handles DELETE /api/vendors/{id}.
func (h *Handler) apiDeleteVendor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteVendor(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
