package port

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"payg-ledger/internal/core/domain"
)

// LedgerUseCase is the primary port into the spend ledger. It is the only
// writer of receipts; everything else is read-only derivation.
type LedgerUseCase interface {
	// ChargeWithPolicy admits or denies a charge against fresh totals and,
	// on admission, durably records a receipt. Denials return a
	// *PolicyViolationError and leave state untouched.
	ChargeWithPolicy(ctx context.Context, campaignID uuid.UUID, amountCents int64, category domain.SpendCategory, payload any) (*domain.Receipt, error)

	// ChargeWithoutPolicy records a receipt bypassing cap evaluation. It is
	// reserved for small platform-fixed bookkeeping costs; it still rejects
	// non-positive amounts and unknown campaigns.
	ChargeWithoutPolicy(ctx context.Context, campaignID uuid.UUID, amountCents int64, category domain.SpendCategory, payload any) (*domain.Receipt, error)

	// RecordAttributionEvent ingests an external sale outcome.
	RecordAttributionEvent(ctx context.Context, campaignID uuid.UUID, eventType string, amountCents *int64, metadata json.RawMessage, occurredAt time.Time) (*domain.AttributionEvent, error)

	// PolicyState returns the deployment policy next to the campaign's
	// current spend, for cap-vs-spend display.
	PolicyState(ctx context.Context, campaignID uuid.UUID) (*PolicyState, error)

	// Summary returns cost/revenue/profit/ROI roll-ups and entry counts.
	Summary(ctx context.Context, campaignID uuid.UUID) (*Summary, error)

	// Ledger returns the ordered receipts and events with cost and revenue
	// totals, for audit and display.
	Ledger(ctx context.Context, campaignID uuid.UUID) (*LedgerView, error)

	CreateProduct(ctx context.Context, title, description, imageURL, productURL, tags string, priceCents int64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// CreateCampaign creates a running campaign for an existing product,
	// generates its brief and books the fixed brief fee through the
	// unrestricted path.
	CreateCampaign(ctx context.Context, productID uuid.UUID, goal string, budgetCents int64) (*domain.Campaign, *domain.Brief, error)
	GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)
}

// PolicyState pairs the fixed deployment policy with a campaign's current
// derived spend.
type PolicyState struct {
	Policy domain.Policy
	Spend  domain.SpendState
}

// Summary is the campaign roll-up. ROI is nil whenever cost is zero: with no
// denominator there is no ratio, not zero and not infinity.
type Summary struct {
	CostCents    int64
	RevenueCents int64
	ProfitCents  int64
	ROI          *float64
	ReceiptCount int
	SaleCount    int
	PostCount    int
}

// LedgerView is the audit view: every receipt and event in order plus the
// same totals the summary reports.
type LedgerView struct {
	TotalCostCents int64
	RevenueCents   int64
	Receipts       []domain.Receipt
	Events         []domain.AttributionEvent
}
