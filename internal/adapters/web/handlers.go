package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"payables/internal/app"
	"payables/internal/core"
)

// Options configures NewHandler.
type Options struct {
	AllowedOrigins string
	JWTSecret      string
	TokenTTL       time.Duration
	Logger         *zap.Logger
	// Ping reports database reachability for /api/health. Nil skips the check.
	Ping func(ctx context.Context) error
}

// Handler holds the application service and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
	tokenTTL  time.Duration
	logger    *zap.Logger
	ping      func(ctx context.Context) error
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	h := &Handler{
		svc:       svc,
		jwtSecret: opts.JWTSecret,
		tokenTTL:  ttl,
		logger:    logger,
		ping:      opts.Ping,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(opts.AllowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)

	// ── Protected (401 JSON without a valid bearer token) ────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/api/auth/me", h.me)

		r.Route("/api/vendors", func(r chi.Router) {
			r.Post("/", h.apiCreateVendor)
			r.Get("/", h.apiListVendors)
			r.Get("/{id}", h.apiGetVendor)
			r.Put("/{id}", h.apiUpdateVendor)
			r.Delete("/{id}", h.apiDeleteVendor)
		})

		r.Route("/api/purchase-orders", func(r chi.Router) {
			r.Post("/", h.apiCreatePurchaseOrder)
			r.Get("/", h.apiListPurchaseOrders)
			r.Get("/{id}", h.apiGetPurchaseOrder)
			r.Patch("/{id}/status", h.apiUpdatePurchaseOrderStatus)
		})

		r.Route("/api/payments", func(r chi.Router) {
			r.Post("/", h.apiCreatePayment)
			r.Get("/", h.apiListPayments)
			r.Get("/{id}", h.apiGetPayment)
			r.Delete("/{id}", h.apiVoidPayment)
		})

		r.Route("/api/analytics", func(r chi.Router) {
			r.Get("/vendor-outstanding", h.apiVendorOutstanding)
			r.Get("/payment-aging", h.apiPaymentAging)
			r.Get("/payment-trends", h.apiPaymentTrends)
			r.Get("/export.xlsx", h.apiExportAnalytics)
		})
	})

	h.router = r
	return r
}

// health reports liveness and, when configured, database reachability.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status   string `json:"status"`
		Database string `json:"database,omitempty"`
	}

	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			h.logger.Warn("health check: database unreachable", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(response{Status: "degraded", Database: "unreachable"})
			return
		}
		writeJSON(w, http.StatusOK, response{Status: "ok", Database: "ok"})
		return
	}
	writeJSON(w, http.StatusOK, response{Status: "ok"})
}

// pathID parses the {id} URL parameter. On failure it writes a 400 and returns false.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid id", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// pageFromQuery reads ?page and ?limit. Missing values fall back to core defaults.
func pageFromQuery(r *http.Request) (core.Page, error) {
	var p core.Page
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, &core.ValidationError{Field: "page", Message: "must be a positive integer"}
		}
		p.Page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, &core.ValidationError{Field: "limit", Message: "must be a positive integer"}
		}
		p.Limit = n
	}
	return p.Normalize(), nil
}

// actor is the username recorded as createdBy/updatedBy.
func actor(r *http.Request) string {
	if c := authFromContext(r.Context()); c != nil {
		return c.Username
	}
	return ""
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
