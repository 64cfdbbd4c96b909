package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"payg-ledger/internal/core/domain"
	"payg-ledger/internal/core/port"
)

// LedgerRepository implements port.LedgerRepository using pgxpool for
// PostgreSQL. Admission atomicity comes from locking the campaign row FOR
// UPDATE for the duration of the read-evaluate-insert transaction, so charges
// on the same campaign serialize while other campaigns stay fully parallel.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository returns a new repository instance.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so spend totals can
// be computed inside or outside a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *LedgerRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	p.CreatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx, `INSERT INTO products
(id, title, description, image_url, price_cents, product_url, tags, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.Title, p.Description, p.ImageURL, p.PriceCents, p.ProductURL, p.Tags, p.CreatedAt)
	return err
}

func (r *LedgerRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, title, description, image_url, price_cents, product_url, tags, created_at
FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Product, error) {
		var p domain.Product
		err := row.Scan(&p.ID, &p.Title, &p.Description, &p.ImageURL, &p.PriceCents, &p.ProductURL, &p.Tags, &p.CreatedAt)
		return p, err
	})
}

// GetProduct returns a product by id, or nil when it does not exist.
func (r *LedgerRepository) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx, `SELECT id, title, description, image_url, price_cents, product_url, tags, created_at
FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Title, &p.Description, &p.ImageURL, &p.PriceCents, &p.ProductURL, &p.Tags, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *LedgerRepository) CreateCampaign(ctx context.Context, c *domain.Campaign) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `INSERT INTO campaigns
(id, product_id, goal, budget_cents, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.ProductID, c.Goal, c.BudgetCents, c.Status, c.CreatedAt, c.UpdatedAt)
	return err
}

// GetCampaign returns a campaign by id, or nil when it does not exist.
func (r *LedgerRepository) GetCampaign(ctx context.Context, id uuid.UUID) (*domain.Campaign, error) {
	var c domain.Campaign
	err := r.pool.QueryRow(ctx, `SELECT id, product_id, goal, budget_cents, status, created_at, updated_at
FROM campaigns WHERE id = $1`, id).
		Scan(&c.ID, &c.ProductID, &c.Goal, &c.BudgetCents, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ChargeGuarded locks the campaign row, recomputes spend from receipts,
// evaluates the policy and inserts the receipt, all in one transaction. A
// denial rolls back without having written anything.
func (r *LedgerRepository) ChargeGuarded(ctx context.Context, rec *domain.Receipt, policy domain.Policy) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	// no-op once the transaction has committed
	defer func() { _ = tx.Rollback(ctx) }()

	// lock campaign
	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM campaigns WHERE id = $1 FOR UPDATE`, rec.CampaignID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return port.ErrCampaignNotFound
	}
	if err != nil {
		return err
	}

	state, err := spendState(ctx, tx, rec.CampaignID)
	if err != nil {
		return err
	}

	decision := domain.Evaluate(state, domain.Charge{AmountCents: rec.AmountCents, Category: rec.Category}, policy)
	if !decision.Admitted {
		return port.ViolationFromDecision(decision)
	}

	rec.CreatedAt = time.Now().UTC()
	_, err = tx.Exec(ctx, `INSERT INTO receipts
(id, campaign_id, amount_cents, currency, rail, category, policy_applied, payload_hash, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.ID, rec.CampaignID, rec.AmountCents, rec.Currency, rec.Rail, rec.Category, rec.PolicyApplied, rec.PayloadHash, rec.CreatedAt)
	if err != nil {
		return err
	}

	// a failed commit means the receipt was never written
	return tx.Commit(ctx)
}

// CreateReceipt inserts a receipt without evaluating policy.
func (r *LedgerRepository) CreateReceipt(ctx context.Context, rec *domain.Receipt) error {
	rec.CreatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx, `INSERT INTO receipts
(id, campaign_id, amount_cents, currency, rail, category, policy_applied, payload_hash, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.ID, rec.CampaignID, rec.AmountCents, rec.Currency, rec.Rail, rec.Category, rec.PolicyApplied, rec.PayloadHash, rec.CreatedAt)
	return err
}

func (r *LedgerRepository) ListReceipts(ctx context.Context, campaignID uuid.UUID) ([]domain.Receipt, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, campaign_id, amount_cents, currency, rail, category, policy_applied, payload_hash, created_at
FROM receipts WHERE campaign_id = $1 ORDER BY created_at ASC, id ASC`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Receipt, error) {
		var rec domain.Receipt
		err := row.Scan(&rec.ID, &rec.CampaignID, &rec.AmountCents, &rec.Currency, &rec.Rail, &rec.Category, &rec.PolicyApplied, &rec.PayloadHash, &rec.CreatedAt)
		return rec, err
	})
}

func (r *LedgerRepository) CreateAttributionEvent(ctx context.Context, ev *domain.AttributionEvent) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO attribution_events
(id, campaign_id, type, amount_cents, metadata, occurred_at)
VALUES ($1,$2,$3,$4,$5,$6)`,
		ev.ID, ev.CampaignID, ev.Type, ev.AmountCents, ev.Metadata, ev.OccurredAt)
	return err
}

func (r *LedgerRepository) ListAttributionEvents(ctx context.Context, campaignID uuid.UUID) ([]domain.AttributionEvent, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, campaign_id, type, amount_cents, metadata, occurred_at
FROM attribution_events WHERE campaign_id = $1 ORDER BY occurred_at ASC, id ASC`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AttributionEvent, error) {
		var ev domain.AttributionEvent
		err := row.Scan(&ev.ID, &ev.CampaignID, &ev.Type, &ev.AmountCents, &ev.Metadata, &ev.OccurredAt)
		return ev, err
	})
}

// GetSpendState recomputes current totals from receipts. Reporting reads go
// through here; the admission path recomputes inside ChargeGuarded's
// transaction instead.
func (r *LedgerRepository) GetSpendState(ctx context.Context, campaignID uuid.UUID) (domain.SpendState, error) {
	return spendState(ctx, r.pool, campaignID)
}

func spendState(ctx context.Context, q querier, campaignID uuid.UUID) (domain.SpendState, error) {
	state := domain.SpendState{ByCategory: make(map[domain.SpendCategory]int64)}

	rows, err := q.Query(ctx, `SELECT category, COALESCE(SUM(amount_cents), 0)
FROM receipts WHERE campaign_id = $1 GROUP BY category`, campaignID)
	if err != nil {
		return state, err
	}
	defer rows.Close()

	for rows.Next() {
		var category domain.SpendCategory
		var sum int64
		if err := rows.Scan(&category, &sum); err != nil {
			return state, err
		}
		state.ByCategory[category] = sum
		state.TotalCents += sum
	}
	return state, rows.Err()
}
