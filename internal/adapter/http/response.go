package httpadapter

import (
	"encoding/json"
	"time"

	"payg-ledger/internal/core/domain"
	"payg-ledger/internal/core/port"
)

type productResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	ProductURL  string    `json:"product_url,omitempty"`
	Tags        string    `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		PriceCents:  p.PriceCents,
		ProductURL:  p.ProductURL,
		Tags:        p.Tags,
		CreatedAt:   p.CreatedAt,
	}
}

type campaignResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	Goal        string    `json:"goal"`
	BudgetCents int64     `json:"budget_cents"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCampaignResponse(c domain.Campaign) campaignResponse {
	return campaignResponse{
		ID:          c.ID.String(),
		ProductID:   c.ProductID.String(),
		Goal:        c.Goal,
		BudgetCents: c.BudgetCents,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type receiptResponse struct {
	ID            string    `json:"id"`
	CampaignID    string    `json:"campaign_id"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	Rail          string    `json:"rail"`
	Category      string    `json:"category"`
	PolicyApplied string    `json:"policy_applied"`
	PayloadHash   string    `json:"payload_hash"`
	CreatedAt     time.Time `json:"created_at"`
}

func toReceiptResponse(rec domain.Receipt) receiptResponse {
	return receiptResponse{
		ID:            rec.ID.String(),
		CampaignID:    rec.CampaignID.String(),
		AmountCents:   rec.AmountCents,
		Currency:      rec.Currency,
		Rail:          rec.Rail,
		Category:      string(rec.Category),
		PolicyApplied: rec.PolicyApplied,
		PayloadHash:   rec.PayloadHash,
		CreatedAt:     rec.CreatedAt,
	}
}

type eventResponse struct {
	ID          string          `json:"id"`
	CampaignID  string          `json:"campaign_id"`
	Type        string          `json:"type"`
	AmountCents *int64          `json:"amount_cents"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

func toEventResponse(ev domain.AttributionEvent) eventResponse {
	return eventResponse{
		ID:          ev.ID.String(),
		CampaignID:  ev.CampaignID.String(),
		Type:        ev.Type,
		AmountCents: ev.AmountCents,
		Metadata:    ev.Metadata,
		OccurredAt:  ev.OccurredAt,
	}
}

type policyStateResponse struct {
	Policy struct {
		CampaignCapCents int64            `json:"campaign_cap_cents"`
		CategoryCaps     map[string]int64 `json:"category_caps_cents"`
	} `json:"policy"`
	Spend struct {
		TotalCents int64            `json:"total_cents"`
		ByCategory map[string]int64 `json:"by_category"`
	} `json:"spend"`
}

func toPolicyStateResponse(ps *port.PolicyState) policyStateResponse {
	var resp policyStateResponse
	resp.Policy.CampaignCapCents = ps.Policy.CampaignCapCents
	resp.Policy.CategoryCaps = make(map[string]int64, len(ps.Policy.CategoryCapCents))
	for category, limit := range ps.Policy.CategoryCapCents {
		resp.Policy.CategoryCaps[string(category)] = limit
	}
	resp.Spend.TotalCents = ps.Spend.TotalCents
	resp.Spend.ByCategory = make(map[string]int64, len(ps.Spend.ByCategory))
	for category, sum := range ps.Spend.ByCategory {
		resp.Spend.ByCategory[string(category)] = sum
	}
	return resp
}

type summaryResponse struct {
	Totals struct {
		CostCents    int64    `json:"cost_cents"`
		RevenueCents int64    `json:"revenue_cents"`
		ProfitCents  int64    `json:"profit_cents"`
		ROI          *float64 `json:"roi"`
	} `json:"totals"`
	Counts struct {
		Receipts int `json:"receipts"`
		Sales    int `json:"sales"`
		Posts    int `json:"posts"`
	} `json:"counts"`
}

func toSummaryResponse(sum *port.Summary) summaryResponse {
	var resp summaryResponse
	resp.Totals.CostCents = sum.CostCents
	resp.Totals.RevenueCents = sum.RevenueCents
	resp.Totals.ProfitCents = sum.ProfitCents
	resp.Totals.ROI = sum.ROI
	resp.Counts.Receipts = sum.ReceiptCount
	resp.Counts.Sales = sum.SaleCount
	resp.Counts.Posts = sum.PostCount
	return resp
}

type ledgerResponse struct {
	TotalCostCents int64             `json:"total_cost_cents"`
	RevenueCents   int64             `json:"revenue_cents"`
	Receipts       []receiptResponse `json:"receipts"`
	Events         []eventResponse   `json:"events"`
}

func toLedgerResponse(view *port.LedgerView) ledgerResponse {
	resp := ledgerResponse{
		TotalCostCents: view.TotalCostCents,
		RevenueCents:   view.RevenueCents,
		Receipts:       make([]receiptResponse, 0, len(view.Receipts)),
		Events:         make([]eventResponse, 0, len(view.Events)),
	}
	for _, rec := range view.Receipts {
		resp.Receipts = append(resp.Receipts, toReceiptResponse(rec))
	}
	for _, ev := range view.Events {
		resp.Events = append(resp.Events, toEventResponse(ev))
	}
	return resp
}
