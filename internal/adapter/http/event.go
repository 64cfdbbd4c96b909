package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"payg-ledger/internal/core/domain"
)

// handleOrderCreated ingests a simulated sale so the ledger shows revenue.
// occurred_at is optional RFC3339 and defaults to now. The ledger core only
// ever reads these events; this is their single write path.
func (h *Handler) handleOrderCreated(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CampaignID string          `json:"campaign_id"`
		SaleCents  *int64          `json:"sale_cents"`
		Metadata   json.RawMessage `json:"metadata"`
		OccurredAt string          `json:"occurred_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON"})
		return
	}
	if req.CampaignID == "" || req.SaleCents == nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "campaign_id and sale_cents are required"})
		return
	}
	campaignID, err := uuid.Parse(req.CampaignID)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid campaign_id"})
		return
	}

	var occurredAt time.Time
	if req.OccurredAt != "" {
		occurredAt, err = time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid occurred_at timestamp"})
			return
		}
	}

	event, err := h.svc.RecordAttributionEvent(r.Context(), campaignID, domain.EventSale, req.SaleCents, req.Metadata, occurredAt)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"event": toEventResponse(*event)})
}
