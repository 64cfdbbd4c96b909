package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"payg-ledger/internal/core/domain"
	"payg-ledger/internal/core/port"
	"payg-ledger/internal/metrics"
)

const (
	receiptCurrency = "USD"
	receiptRail     = "mock"

	// briefCostCents is the platform-fixed fee for generating a campaign
	// brief. It is booked through the unrestricted path so campaign
	// creation can never be blocked by caps.
	briefCostCents = 2

	unrestrictedPolicy = "unrestricted"
)

// LedgerService implements port.LedgerUseCase. It owns payload hashing and
// input validation; the per-campaign atomicity of admit-and-persist lives in
// the repository's ChargeGuarded.
type LedgerService struct {
	repo    port.LedgerRepository
	policy  domain.Policy
	metrics *metrics.Metrics
}

type Option func(*LedgerService)

// WithMetrics attaches prometheus counters to the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *LedgerService) {
		s.metrics = m
	}
}

// NewLedgerService creates the service. The policy is fixed for the process
// lifetime; it is copied here and never mutated.
func NewLedgerService(repo port.LedgerRepository, policy domain.Policy, opts ...Option) *LedgerService {
	s := &LedgerService{repo: repo, policy: policy}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ChargeWithPolicy admits or denies one charge against fresh totals. On
// admission the persisted receipt is returned; on denial nothing is written
// and the caller gets a *port.PolicyViolationError.
func (s *LedgerService) ChargeWithPolicy(ctx context.Context, campaignID uuid.UUID, amountCents int64, category domain.SpendCategory, payload any) (*domain.Receipt, error) {
	if amountCents <= 0 {
		return nil, port.ErrInvalidAmount
	}
	if !category.Valid() {
		return nil, port.ErrInvalidCategory
	}

	hash, err := payloadHash(payload)
	if err != nil {
		return nil, fmt.Errorf("hash payload: %w", err)
	}

	rec := &domain.Receipt{
		ID:            uuid.New(),
		CampaignID:    campaignID,
		AmountCents:   amountCents,
		Currency:      receiptCurrency,
		Rail:          receiptRail,
		Category:      category,
		PolicyApplied: s.describeCaps(category),
		PayloadHash:   hash,
	}

	if err := s.repo.ChargeGuarded(ctx, rec, s.policy); err != nil {
		var violation *port.PolicyViolationError
		if errors.As(err, &violation) {
			s.metrics.IncrementDenied(string(violation.Rule))
			return nil, err
		}
		if errors.Is(err, port.ErrCampaignNotFound) || errors.Is(err, port.ErrInvalidAmount) {
			return nil, err
		}
		return nil, &port.TransientStoreError{Err: err}
	}

	s.metrics.IncrementAdmitted(string(category))
	return rec, nil
}

// ChargeWithoutPolicy records a receipt bypassing cap evaluation. Reserved
// for small platform-fixed bookkeeping costs; unrestricted use would defeat
// the budget guarantee.
func (s *LedgerService) ChargeWithoutPolicy(ctx context.Context, campaignID uuid.UUID, amountCents int64, category domain.SpendCategory, payload any) (*domain.Receipt, error) {
	if amountCents <= 0 {
		return nil, port.ErrInvalidAmount
	}
	if !category.Valid() {
		return nil, port.ErrInvalidCategory
	}

	if err := s.requireCampaign(ctx, campaignID); err != nil {
		return nil, err
	}

	hash, err := payloadHash(payload)
	if err != nil {
		return nil, fmt.Errorf("hash payload: %w", err)
	}

	rec := &domain.Receipt{
		ID:            uuid.New(),
		CampaignID:    campaignID,
		AmountCents:   amountCents,
		Currency:      receiptCurrency,
		Rail:          receiptRail,
		Category:      category,
		PolicyApplied: unrestrictedPolicy,
		PayloadHash:   hash,
	}
	if err := s.repo.CreateReceipt(ctx, rec); err != nil {
		return nil, &port.TransientStoreError{Err: err}
	}

	s.metrics.IncrementUnrestricted()
	return rec, nil
}

// RecordAttributionEvent ingests an external outcome. The zero occurredAt
// defaults to now.
func (s *LedgerService) RecordAttributionEvent(ctx context.Context, campaignID uuid.UUID, eventType string, amountCents *int64, metadata json.RawMessage, occurredAt time.Time) (*domain.AttributionEvent, error) {
	if err := s.requireCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	ev := &domain.AttributionEvent{
		ID:          uuid.New(),
		CampaignID:  campaignID,
		Type:        eventType,
		AmountCents: amountCents,
		Metadata:    metadata,
		OccurredAt:  occurredAt,
	}
	if err := s.repo.CreateAttributionEvent(ctx, ev); err != nil {
		return nil, &port.TransientStoreError{Err: err}
	}

	s.metrics.IncrementAttributionEvents()
	return ev, nil
}

// PolicyState returns the fixed policy next to the campaign's current spend.
func (s *LedgerService) PolicyState(ctx context.Context, campaignID uuid.UUID) (*port.PolicyState, error) {
	if err := s.requireCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	state, err := s.repo.GetSpendState(ctx, campaignID)
	if err != nil {
		return nil, &port.TransientStoreError{Err: err}
	}
	return &port.PolicyState{Policy: s.policy, Spend: state}, nil
}

// Summary derives the campaign roll-up. ROI stays nil when cost is zero:
// there is no ratio to report, regardless of revenue.
func (s *LedgerService) Summary(ctx context.Context, campaignID uuid.UUID) (*port.Summary, error) {
	receipts, events, err := s.entries(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	sum := &port.Summary{ReceiptCount: len(receipts)}
	for _, rec := range receipts {
		sum.CostCents += rec.AmountCents
		if rec.Category == domain.CategoryPost {
			sum.PostCount++
		}
	}
	for _, ev := range events {
		if ev.Type == domain.EventSale && ev.AmountCents != nil {
			sum.RevenueCents += *ev.AmountCents
			sum.SaleCount++
		}
	}
	sum.ProfitCents = sum.RevenueCents - sum.CostCents
	if sum.CostCents > 0 {
		roi := float64(sum.RevenueCents) / float64(sum.CostCents)
		sum.ROI = &roi
	}
	return sum, nil
}

// Ledger returns the ordered receipts and events plus cost and revenue
// totals for audit display.
func (s *LedgerService) Ledger(ctx context.Context, campaignID uuid.UUID) (*port.LedgerView, error) {
	receipts, events, err := s.entries(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	view := &port.LedgerView{Receipts: receipts, Events: events}
	for _, rec := range receipts {
		view.TotalCostCents += rec.AmountCents
	}
	for _, ev := range events {
		if ev.Type == domain.EventSale && ev.AmountCents != nil {
			view.RevenueCents += *ev.AmountCents
		}
	}
	return view, nil
}

func (s *LedgerService) CreateProduct(ctx context.Context, title, description, imageURL, productURL, tags string, priceCents int64) (*domain.Product, error) {
	if title == "" {
		return nil, errors.New("title is required")
	}
	p := &domain.Product{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		ImageURL:    imageURL,
		PriceCents:  priceCents,
		ProductURL:  productURL,
		Tags:        tags,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, &port.TransientStoreError{Err: err}
	}
	return p, nil
}

func (s *LedgerService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, &port.TransientStoreError{Err: err}
	}
	return products, nil
}

// CreateCampaign creates a running campaign for an existing product,
// generates its brief and books the fixed brief fee through the unrestricted
// path.
func (s *LedgerService) CreateCampaign(ctx context.Context, productID uuid.UUID, goal string, budgetCents int64) (*domain.Campaign, *domain.Brief, error) {
	if goal == "" {
		return nil, nil, errors.New("goal is required")
	}

	product, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, nil, &port.TransientStoreError{Err: err}
	}
	if product == nil {
		return nil, nil, port.ErrProductNotFound
	}

	campaign := &domain.Campaign{
		ID:          uuid.New(),
		ProductID:   productID,
		Goal:        goal,
		BudgetCents: budgetCents,
		Status:      "running",
	}
	if err := s.repo.CreateCampaign(ctx, campaign); err != nil {
		return nil, nil, &port.TransientStoreError{Err: err}
	}

	brief := &domain.Brief{
		Tone:     "friendly, concise",
		Audience: "value-conscious shoppers",
		Angles: []string{
			fmt.Sprintf("Why %s is a steal today", product.Title),
			"Quick benefits",
			"Clear CTA",
		},
	}

	payload := map[string]any{
		"campaign_id": campaign.ID.String(),
		"tool":        "caption",
		"goal":        goal,
	}
	if _, err := s.ChargeWithoutPolicy(ctx, campaign.ID, briefCostCents, domain.CategoryToolCall, payload); err != nil {
		return nil, nil, err
	}

	return campaign, brief, nil
}

func (s *LedgerService) GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	campaign, err := s.repo.GetCampaign(ctx, id)
	if err != nil {
		return nil, &port.TransientStoreError{Err: err}
	}
	if campaign == nil {
		return nil, port.ErrCampaignNotFound
	}
	return campaign, nil
}

func (s *LedgerService) entries(ctx context.Context, campaignID uuid.UUID) ([]domain.Receipt, []domain.AttributionEvent, error) {
	if err := s.requireCampaign(ctx, campaignID); err != nil {
		return nil, nil, err
	}
	receipts, err := s.repo.ListReceipts(ctx, campaignID)
	if err != nil {
		return nil, nil, &port.TransientStoreError{Err: err}
	}
	events, err := s.repo.ListAttributionEvents(ctx, campaignID)
	if err != nil {
		return nil, nil, &port.TransientStoreError{Err: err}
	}
	return receipts, events, nil
}

func (s *LedgerService) requireCampaign(ctx context.Context, id uuid.UUID) error {
	campaign, err := s.repo.GetCampaign(ctx, id)
	if err != nil {
		return &port.TransientStoreError{Err: err}
	}
	if campaign == nil {
		return port.ErrCampaignNotFound
	}
	return nil
}

func (s *LedgerService) describeCaps(category domain.SpendCategory) string {
	return fmt.Sprintf("caps: %s<=%d, total<=%d", category, s.policy.CategoryCapCents[category], s.policy.CampaignCapCents)
}

// payloadHash returns the sha256 hex digest of the payload's canonical JSON
// form. Raw JSON input is decoded and re-encoded so equivalent documents
// hash identically; Go sorts map keys on encode, which gives the stable key
// ordering the digest needs to be reproducible.
func payloadHash(payload any) (string, error) {
	switch raw := payload.(type) {
	case json.RawMessage:
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return "", err
		}
		payload = decoded
	case []byte:
		var decoded any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return "", err
		}
		payload = decoded
	}
	canonical, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(canonical)
	return hex.EncodeToString(digest[:]), nil
}
