package httpadapter

import (
	"encoding/json"
	"net/http"
)

// handleCreateProduct creates a catalog product. Title is required; all
// other fields are optional. Responds 201 with the created product.
func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		ImageURL    string `json:"image_url"`
		PriceCents  int64  `json:"price_cents"`
		ProductURL  string `json:"product_url"`
		Tags        string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON"})
		return
	}
	if req.Title == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"error": "title is required"})
		return
	}

	product, err := h.svc.CreateProduct(r.Context(), req.Title, req.Description, req.ImageURL, req.ProductURL, req.Tags, req.PriceCents)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toProductResponse(*product))
}

// handleListProducts returns all products, newest first.
func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.ListProducts(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	h.writeJSON(w, http.StatusOK, resp)
}
