package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// handleCreateCampaign creates a running campaign for an existing product.
// Creation generates the campaign brief and books its fixed fee, so the
// response carries both the campaign and the brief.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID   string `json:"product_id"`
		Goal        string `json:"goal"`
		BudgetCents int64  `json:"budget_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON"})
		return
	}
	if req.ProductID == "" || req.Goal == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "product_id and goal are required"})
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid product_id"})
		return
	}

	campaign, brief, err := h.svc.CreateCampaign(r.Context(), productID, req.Goal, req.BudgetCents)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"campaign": toCampaignResponse(*campaign),
		"brief":    brief,
	})
}

// handleGetCampaign returns one campaign by id.
func (h *Handler) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}
	campaign, err := h.svc.GetCampaign(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toCampaignResponse(*campaign))
}

// campaignID parses the {id} path parameter, answering 400 on malformed ids.
func (h *Handler) campaignID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid campaign id"})
		return uuid.Nil, false
	}
	return id, true
}
