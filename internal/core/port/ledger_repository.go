package port

import (
	"context"

	"github.com/google/uuid"

	"payg-ledger/internal/core/domain"
)

// LedgerRepository is the outbound port for the spend record store. Receipts
// and attribution events are append-only: implementations expose no update or
// delete for them. Implementations must be concurrency-safe and must execute
// ChargeGuarded atomically per campaign.
type LedgerRepository interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	ListProducts(ctx context.Context) ([]domain.Product, error)
	// GetProduct returns nil, nil when the product does not exist.
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)

	CreateCampaign(ctx context.Context, c *domain.Campaign) error
	// GetCampaign returns nil, nil when the campaign does not exist.
	GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error)

	// ChargeGuarded runs the read-state, evaluate, persist sequence for one
	// receipt as a single unit serialized against concurrent charges on the
	// same campaign. Charges on different campaigns proceed in parallel.
	// It returns ErrCampaignNotFound when the campaign is missing and a
	// *PolicyViolationError when the policy denies the charge; in both
	// cases nothing is written.
	ChargeGuarded(ctx context.Context, rec *domain.Receipt, policy domain.Policy) error

	// CreateReceipt persists a receipt without policy evaluation. Used only
	// by the unrestricted charge path.
	CreateReceipt(ctx context.Context, rec *domain.Receipt) error

	// ListReceipts returns all receipts for a campaign ordered by creation
	// time ascending.
	ListReceipts(ctx context.Context, campaignID uuid.UUID) ([]domain.Receipt, error)

	CreateAttributionEvent(ctx context.Context, ev *domain.AttributionEvent) error

	// ListAttributionEvents returns all events for a campaign ordered by
	// occurrence time ascending.
	ListAttributionEvents(ctx context.Context, campaignID uuid.UUID) ([]domain.AttributionEvent, error)

	// GetSpendState recomputes total and per-category spend from stored
	// receipts. Reporting reads; the admission path recomputes inside
	// ChargeGuarded instead.
	GetSpendState(ctx context.Context, campaignID uuid.UUID) (domain.SpendState, error)
}
