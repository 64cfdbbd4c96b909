package httpadapter

import (
	"encoding/json"
	"net/http"

	"payg-ledger/internal/core/domain"
)

// handleCharge proposes a charge against a campaign's budget. The charge is
// admitted or denied against totals recomputed inside the admission
// transaction. Denials answer 403 with the violated rule; they are final for
// that amount. 503 means the store failed and says nothing about
// admissibility.
func (h *Handler) handleCharge(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := h.campaignID(w, r)
	if !ok {
		return
	}

	var req struct {
		AmountCents int64           `json:"amount_cents"`
		Category    string          `json:"category"`
		Payload     json.RawMessage `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON"})
		return
	}
	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	payload := req.Payload
	if payload == nil {
		payload = json.RawMessage("null")
	}

	receipt, err := h.svc.ChargeWithPolicy(r.Context(), campaignID, req.AmountCents, category, payload)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"receipt": toReceiptResponse(*receipt)})
}
