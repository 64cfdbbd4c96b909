package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"payg-ledger/internal/core/domain"
	"payg-ledger/internal/core/port"
)

// LedgerRepository is an in-memory implementation of port.LedgerRepository,
// used by unit tests and the memory store mode. ChargeGuarded serializes per
// campaign through a lock map so charges on different campaigns still run in
// parallel, matching the Postgres row-lock behaviour.
type LedgerRepository struct {
	mu        sync.RWMutex
	products  map[uuid.UUID]domain.Product
	campaigns map[uuid.UUID]domain.Campaign
	receipts  map[uuid.UUID][]domain.Receipt
	events    map[uuid.UUID][]domain.AttributionEvent

	lockMu        sync.Mutex
	campaignLocks map[uuid.UUID]*sync.Mutex
}

// NewLedgerRepository returns an empty in-memory store.
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{
		products:      make(map[uuid.UUID]domain.Product),
		campaigns:     make(map[uuid.UUID]domain.Campaign),
		receipts:      make(map[uuid.UUID][]domain.Receipt),
		events:        make(map[uuid.UUID][]domain.AttributionEvent),
		campaignLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (r *LedgerRepository) campaignLock(id uuid.UUID) *sync.Mutex {
	r.lockMu.Lock()
	defer r.lockMu.Unlock()
	l, ok := r.campaignLocks[id]
	if !ok {
		l = &sync.Mutex{}
		r.campaignLocks[id] = l
	}
	return l
}

func (r *LedgerRepository) CreateProduct(_ context.Context, p *domain.Product) error {
	p.CreatedAt = time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	return nil
}

func (r *LedgerRepository) ListProducts(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *LedgerRepository) GetProduct(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *LedgerRepository) CreateCampaign(_ context.Context, c *domain.Campaign) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.mu.Lock()
	defer r.mu.Unlock()
	r.campaigns[c.ID] = *c
	return nil
}

func (r *LedgerRepository) GetCampaign(_ context.Context, id uuid.UUID) (*domain.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.campaigns[id]; ok {
		return &c, nil
	}
	return nil, nil
}

// ChargeGuarded holds the campaign's lock across the read-evaluate-append
// sequence. A denial leaves the stored receipts untouched.
func (r *LedgerRepository) ChargeGuarded(ctx context.Context, rec *domain.Receipt, policy domain.Policy) error {
	lock := r.campaignLock(rec.CampaignID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.RLock()
	_, exists := r.campaigns[rec.CampaignID]
	r.mu.RUnlock()
	if !exists {
		return port.ErrCampaignNotFound
	}

	state, err := r.GetSpendState(ctx, rec.CampaignID)
	if err != nil {
		return err
	}

	decision := domain.Evaluate(state, domain.Charge{AmountCents: rec.AmountCents, Category: rec.Category}, policy)
	if !decision.Admitted {
		return port.ViolationFromDecision(decision)
	}

	rec.CreatedAt = time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts[rec.CampaignID] = append(r.receipts[rec.CampaignID], *rec)
	return nil
}

func (r *LedgerRepository) CreateReceipt(_ context.Context, rec *domain.Receipt) error {
	rec.CreatedAt = time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts[rec.CampaignID] = append(r.receipts[rec.CampaignID], *rec)
	return nil
}

func (r *LedgerRepository) ListReceipts(_ context.Context, campaignID uuid.UUID) ([]domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	recs := r.receipts[campaignID]
	out := make([]domain.Receipt, len(recs))
	copy(out, recs)
	return out, nil
}

func (r *LedgerRepository) CreateAttributionEvent(_ context.Context, ev *domain.AttributionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := append(r.events[ev.CampaignID], *ev)
	sort.SliceStable(events, func(i, j int) bool { return events[i].OccurredAt.Before(events[j].OccurredAt) })
	r.events[ev.CampaignID] = events
	return nil
}

func (r *LedgerRepository) ListAttributionEvents(_ context.Context, campaignID uuid.UUID) ([]domain.AttributionEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	events := r.events[campaignID]
	out := make([]domain.AttributionEvent, len(events))
	copy(out, events)
	return out, nil
}

func (r *LedgerRepository) GetSpendState(_ context.Context, campaignID uuid.UUID) (domain.SpendState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state := domain.SpendState{ByCategory: make(map[domain.SpendCategory]int64)}
	for _, rec := range r.receipts[campaignID] {
		state.TotalCents += rec.AmountCents
		state.ByCategory[rec.Category] += rec.AmountCents
	}
	return state, nil
}
