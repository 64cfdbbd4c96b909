package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"payg-ledger/internal/core/port"
)

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP. It holds the ledger service to execute business logic and a logger
// for structured logging. Routes are registered on a chi.Router.
type Handler struct {
	svc    port.LedgerUseCase
	logger *slog.Logger
	router chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(svc port.LedgerUseCase, logger *slog.Logger) *Handler {
	h := &Handler{svc: svc, logger: logger}
	r := chi.NewRouter()

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/products", h.handleCreateProduct)
		r.Get("/products", h.handleListProducts)

		r.Post("/campaigns", h.handleCreateCampaign)
		r.Get("/campaigns/{id}", h.handleGetCampaign)
		r.Post("/campaigns/{id}/charges", h.handleCharge)
		r.Get("/campaigns/{id}/ledger", h.handleLedger)
		r.Get("/campaigns/{id}/policy", h.handlePolicyState)
		r.Get("/campaigns/{id}/summary", h.handleSummary)

		r.Post("/events/order-created", h.handleOrderCreated)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "payg-ledger"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

// writeServiceError translates the ledger error taxonomy onto HTTP statuses.
// Policy violations answer 403 with the violated rule, attempted total and
// cap; transient store faults answer 503 so callers can retry, and are never
// presented as a denial.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var violation *port.PolicyViolationError
	var transient *port.TransientStoreError

	switch {
	case errors.Is(err, port.ErrCampaignNotFound), errors.Is(err, port.ErrProductNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
	case errors.Is(err, port.ErrInvalidAmount), errors.Is(err, port.ErrInvalidCategory):
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
	case errors.As(err, &violation):
		h.writeJSON(w, http.StatusForbidden, map[string]any{
			"error": violation.Error(),
			"violation": map[string]any{
				"rule":            violation.Rule,
				"category":        violation.Category,
				"attempted_cents": violation.AttemptedCents,
				"cap_cents":       violation.CapCents,
			},
		})
	case errors.As(err, &transient):
		h.logger.Error("store failure", slog.Any("error", err))
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "spend store temporarily unavailable"})
	default:
		h.logger.Error("internal error", slog.Any("error", err))
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
	}
}
