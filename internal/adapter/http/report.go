package httpadapter

import "net/http"

// handleLedger returns the campaign's ordered receipts and attribution
// events with cost and revenue totals.
func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request) {
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}
	view, err := h.svc.Ledger(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toLedgerResponse(view))
}

// handlePolicyState returns the deployment policy next to the campaign's
// current spend, for cap-vs-spend display.
func (h *Handler) handlePolicyState(w http.ResponseWriter, r *http.Request) {
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}
	state, err := h.svc.PolicyState(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toPolicyStateResponse(state))
}

// handleSummary returns cost, revenue, profit, ROI and entry counts. ROI is
// null whenever cost is zero.
func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.campaignID(w, r)
	if !ok {
		return
	}
	sum, err := h.svc.Summary(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toSummaryResponse(sum))
}
