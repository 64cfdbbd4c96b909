package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"payg-ledger/internal/adapter/memory"
	"payg-ledger/internal/core/domain"
	"payg-ledger/internal/core/port"
)

func testPolicy() domain.Policy {
	return domain.Policy{
		CampaignCapCents: 500,
		CategoryCapCents: map[domain.SpendCategory]int64{
			domain.CategoryToolCall:      100,
			domain.CategoryAssetPurchase: 300,
			domain.CategoryPost:          50,
		},
	}
}

func newTestService(t *testing.T) (*LedgerService, uuid.UUID) {
	t.Helper()
	repo := memory.NewLedgerRepository()
	svc := NewLedgerService(repo, testPolicy())

	campaign := &domain.Campaign{
		ID:          uuid.New(),
		ProductID:   uuid.New(),
		Goal:        "drive sales",
		BudgetCents: 500,
		Status:      "running",
	}
	require.NoError(t, repo.CreateCampaign(context.Background(), campaign))
	return svc, campaign.ID
}

func TestChargeWithPolicyAdmits(t *testing.T) {
	svc, campaignID := newTestService(t)
	ctx := context.Background()

	rec, err := svc.ChargeWithPolicy(ctx, campaignID, 60, domain.CategoryToolCall, map[string]any{"tool": "caption"})
	require.NoError(t, err)

	assert.Equal(t, campaignID, rec.CampaignID)
	assert.Equal(t, int64(60), rec.AmountCents)
	assert.Equal(t, "USD", rec.Currency)
	assert.Equal(t, "mock", rec.Rail)
	assert.Equal(t, domain.CategoryToolCall, rec.Category)
	assert.Equal(t, "caps: tool_call<=100, total<=500", rec.PolicyApplied)
	assert.Len(t, rec.PayloadHash, 64)
	assert.False(t, rec.CreatedAt.IsZero())

	state, err := svc.PolicyState(ctx, campaignID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), state.Spend.TotalCents)
	assert.Equal(t, int64(60), state.Spend.ByCategory[domain.CategoryToolCall])
}

func TestChargeWithPolicyValidation(t *testing.T) {
	svc, campaignID := newTestService(t)
	ctx := context.Background()

	_, err := svc.ChargeWithPolicy(ctx, campaignID, 0, domain.CategoryToolCall, nil)
	assert.ErrorIs(t, err, port.ErrInvalidAmount)

	_, err = svc.ChargeWithPolicy(ctx, campaignID, -10, domain.CategoryToolCall, nil)
	assert.ErrorIs(t, err, port.ErrInvalidAmount)

	_, err = svc.ChargeWithPolicy(ctx, campaignID, 10, domain.SpendCategory("shipping"), nil)
	assert.ErrorIs(t, err, port.ErrInvalidCategory)

	_, err = svc.ChargeWithPolicy(ctx, uuid.New(), 10, domain.CategoryToolCall, nil)
	assert.ErrorIs(t, err, port.ErrCampaignNotFound)
}

// TestDenialLeavesStateUnchanged verifies a denied charge writes nothing:
// spend state after the attempt is identical to before it.
func TestDenialLeavesStateUnchanged(t *testing.T) {
	svc, campaignID := newTestService(t)
	ctx := context.Background()

	_, err := svc.ChargeWithPolicy(ctx, campaignID, 98, domain.CategoryToolCall, nil)
	require.NoError(t, err)

	before, err := svc.PolicyState(ctx, campaignID)
	require.NoError(t, err)

	_, err = svc.ChargeWithPolicy(ctx, campaignID, 3, domain.CategoryToolCall, nil)
	var violation *port.PolicyViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, domain.RuleCategoryCap, violation.Rule)
	assert.Equal(t, int64(101), violation.AttemptedCents)
	assert.Equal(t, int64(100), violation.CapCents)

	after, err := svc.PolicyState(ctx, campaignID)
	require.NoError(t, err)
	assert.Equal(t, before.Spend, after.Spend)

	ledger, err := svc.Ledger(ctx, campaignID)
	require.NoError(t, err)
	assert.Len(t, ledger.Receipts, 1)
}

func TestBoundaryInclusive(t *testing.T) {
	svc, campaignID := newTestService(t)
	ctx := context.Background()

	_, err := svc.ChargeWithPolicy(ctx, campaignID, 98, domain.CategoryToolCall, nil)
	require.NoError(t, err)

	// landing exactly on the cap is admitted
	_, err = svc.ChargeWithPolicy(ctx, campaignID, 2, domain.CategoryToolCall, nil)
	require.NoError(t, err)

	// one more cent is denied
	_, err = svc.ChargeWithPolicy(ctx, campaignID, 1, domain.CategoryToolCall, nil)
	var violation *port.PolicyViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, domain.RuleCategoryCap, violation.Rule)
}

// TestChargeSequence walks a full campaign: admits, a category denial, a
// large asset purchase, then a charge both caps would reject.
func TestChargeSequence(t *testing.T) {
	svc, campaignID := newTestService(t)
	ctx := context.Background()

	_, err := svc.ChargeWithPolicy(ctx, campaignID, 60, domain.CategoryToolCall, nil)
	require.NoError(t, err)

	_, err = svc.ChargeWithPolicy(ctx, campaignID, 50, domain.CategoryToolCall, nil)
	var violation *port.PolicyViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, domain.RuleCategoryCap, violation.Rule)
	assert.Equal(t, int64(110), violation.AttemptedCents)

	_, err = svc.ChargeWithPolicy(ctx, campaignID, 300, domain.CategoryAssetPurchase, nil)
	require.NoError(t, err)

	state, err := svc.PolicyState(ctx, campaignID)
	require.NoError(t, err)
	assert.Equal(t, int64(360), state.Spend.TotalCents)

	// both caps would deny; the category rule runs first
	_, err = svc.ChargeWithPolicy(ctx, campaignID, 150, domain.CategoryPost, nil)
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, domain.RuleCategoryCap, violation.Rule)

	state, err = svc.PolicyState(ctx, campaignID)
	require.NoError(t, err)
	assert.Equal(t, int64(360), state.Spend.TotalCents)
}

// TestIndependentCategories verifies exhausting one category's cap does not
// block another while the campaign total has headroom.
func TestIndependentCategories(t *testing.T) {
	svc, campaignID := newTestService(t)
	ctx := context.Background()

	_, err := svc.ChargeWithPolicy(ctx, campaignID, 100, domain.CategoryToolCall, nil)
	require.NoError(t, err)

	_, err = svc.ChargeWithPolicy(ctx, campaignID, 1, domain.CategoryToolCall, nil)
	var violation *port.PolicyViolationError
	require.ErrorAs(t, err, &violation)

	_, err = svc.ChargeWithPolicy(ctx, campaignID, 200, domain.CategoryAssetPurchase, nil)
	require.NoError(t, err)
}

// TestChargeWithoutPolicyBypassesCaps verifies the unrestricted path records
// receipts beyond any cap, identical in shape except for the recorded
// admission description.
func TestChargeWithoutPolicyBypassesCaps(t *testing.T) {
	svc, campaignID := newTestService(t)
	ctx := context.Background()

	rec, err := svc.ChargeWithoutPolicy(ctx, campaignID, 10_000, domain.CategoryAssetPurchase, map[string]any{"kind": "platform fee"})
	require.NoError(t, err)
	assert.Equal(t, "unrestricted", rec.PolicyApplied)
	assert.Equal(t, "USD", rec.Currency)
	assert.Equal(t, "mock", rec.Rail)
	assert.Len(t, rec.PayloadHash, 64)

	// the unrestricted spend still counts against future policy decisions
	_, err = svc.ChargeWithPolicy(ctx, campaignID, 1, domain.CategoryToolCall, nil)
	var violation *port.PolicyViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, domain.RuleCampaignCap, violation.Rule)

	_, err = svc.ChargeWithoutPolicy(ctx, campaignID, 0, domain.CategoryToolCall, nil)
	assert.ErrorIs(t, err, port.ErrInvalidAmount)

	_, err = svc.ChargeWithoutPolicy(ctx, uuid.New(), 5, domain.CategoryToolCall, nil)
	assert.ErrorIs(t, err, port.ErrCampaignNotFound)
}

// TestConcurrentChargesRespectCaps races many charges against one campaign
// and verifies admitted receipts never sum over the caps, while a second
// campaign admits in parallel.
func TestConcurrentChargesRespectCaps(t *testing.T) {
	repo := memory.NewLedgerRepository()
	svc := NewLedgerService(repo, testPolicy())
	ctx := context.Background()

	first := &domain.Campaign{ID: uuid.New(), ProductID: uuid.New(), Goal: "g", Status: "running"}
	second := &domain.Campaign{ID: uuid.New(), ProductID: uuid.New(), Goal: "g", Status: "running"}
	require.NoError(t, repo.CreateCampaign(ctx, first))
	require.NoError(t, repo.CreateCampaign(ctx, second))

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			_, err := svc.ChargeWithPolicy(ctx, first.ID, 10, domain.CategoryToolCall, nil)
			var violation *port.PolicyViolationError
			if err != nil && !errors.As(err, &violation) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			_, err := svc.ChargeWithPolicy(ctx, second.ID, 10, domain.CategoryAssetPurchase, nil)
			var violation *port.PolicyViolationError
			if err != nil && !errors.As(err, &violation) {
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	state, err := svc.PolicyState(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), state.Spend.ByCategory[domain.CategoryToolCall])
	assert.LessOrEqual(t, state.Spend.TotalCents, int64(500))

	state, err = svc.PolicyState(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(300), state.Spend.ByCategory[domain.CategoryAssetPurchase])
}

// faultyRepository fails ChargeGuarded with a fixed error, standing in for a
// backend that is down.
type faultyRepository struct {
	*memory.LedgerRepository
	failure error
}

func (r *faultyRepository) ChargeGuarded(ctx context.Context, rec *domain.Receipt, policy domain.Policy) error {
	return r.failure
}

// TestChargeWithPolicyWrapsStoreFailure verifies an infrastructure fault from
// the repository surfaces as *port.TransientStoreError, distinct from a
// policy denial, and keeps the original cause reachable through Unwrap.
func TestChargeWithPolicyWrapsStoreFailure(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewLedgerRepository()
	cause := errors.New("connection refused")
	repo := &faultyRepository{LedgerRepository: inner, failure: cause}
	svc := NewLedgerService(repo, testPolicy())

	campaign := &domain.Campaign{ID: uuid.New(), ProductID: uuid.New(), Goal: "g", Status: "running"}
	require.NoError(t, inner.CreateCampaign(ctx, campaign))

	_, err := svc.ChargeWithPolicy(ctx, campaign.ID, 10, domain.CategoryToolCall, nil)
	var transient *port.TransientStoreError
	require.ErrorAs(t, err, &transient)
	assert.ErrorIs(t, err, cause)

	var violation *port.PolicyViolationError
	assert.False(t, errors.As(err, &violation))
	assert.NotErrorIs(t, err, port.ErrCampaignNotFound)
}

func TestSummaryROI(t *testing.T) {
	svc, campaignID := newTestService(t)
	ctx := context.Background()

	// zero cost, zero revenue: no ratio
	sum, err := svc.Summary(ctx, campaignID)
	require.NoError(t, err)
	assert.Nil(t, sum.ROI)

	// zero cost, nonzero revenue: still no ratio
	sale := int64(1000)
	_, err = svc.RecordAttributionEvent(ctx, campaignID, domain.EventSale, &sale, nil, time.Now())
	require.NoError(t, err)
	sum, err = svc.Summary(ctx, campaignID)
	require.NoError(t, err)
	assert.Nil(t, sum.ROI)
	assert.Equal(t, int64(1000), sum.RevenueCents)
	assert.Equal(t, 1, sum.SaleCount)

	// with cost the ratio is defined
	_, err = svc.ChargeWithPolicy(ctx, campaignID, 50, domain.CategoryPost, nil)
	require.NoError(t, err)
	sum, err = svc.Summary(ctx, campaignID)
	require.NoError(t, err)
	require.NotNil(t, sum.ROI)
	assert.InDelta(t, 20.0, *sum.ROI, 1e-9)
	assert.Equal(t, int64(950), sum.ProfitCents)
	assert.Equal(t, 1, sum.PostCount)
	assert.Equal(t, 1, sum.ReceiptCount)
}

func TestLedgerView(t *testing.T) {
	svc, campaignID := newTestService(t)
	ctx := context.Background()

	_, err := svc.ChargeWithPolicy(ctx, campaignID, 60, domain.CategoryToolCall, nil)
	require.NoError(t, err)
	_, err = svc.ChargeWithPolicy(ctx, campaignID, 40, domain.CategoryAssetPurchase, nil)
	require.NoError(t, err)

	sale := int64(250)
	_, err = svc.RecordAttributionEvent(ctx, campaignID, domain.EventSale, &sale, json.RawMessage(`{"order":"o-1"}`), time.Now())
	require.NoError(t, err)

	view, err := svc.Ledger(ctx, campaignID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), view.TotalCostCents)
	assert.Equal(t, int64(250), view.RevenueCents)
	require.Len(t, view.Receipts, 2)
	assert.Len(t, view.Events, 1)

	// receipts come back in creation order
	assert.Equal(t, int64(60), view.Receipts[0].AmountCents)
	assert.Equal(t, int64(40), view.Receipts[1].AmountCents)

	_, err = svc.Ledger(ctx, uuid.New())
	assert.ErrorIs(t, err, port.ErrCampaignNotFound)
}

func TestRecordAttributionEventUnknownCampaign(t *testing.T) {
	svc, _ := newTestService(t)
	sale := int64(100)
	_, err := svc.RecordAttributionEvent(context.Background(), uuid.New(), domain.EventSale, &sale, nil, time.Time{})
	assert.ErrorIs(t, err, port.ErrCampaignNotFound)
}

func TestCreateCampaignBooksBriefFee(t *testing.T) {
	repo := memory.NewLedgerRepository()
	svc := NewLedgerService(repo, testPolicy())
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, "Walnut desk organizer", "", "", "", "", 1500)
	require.NoError(t, err)

	campaign, brief, err := svc.CreateCampaign(ctx, product.ID, "drive first sales", 500)
	require.NoError(t, err)
	assert.Equal(t, "running", campaign.Status)
	require.NotNil(t, brief)
	assert.Contains(t, brief.Angles[0], product.Title)

	view, err := svc.Ledger(ctx, campaign.ID)
	require.NoError(t, err)
	require.Len(t, view.Receipts, 1)
	assert.Equal(t, int64(2), view.Receipts[0].AmountCents)
	assert.Equal(t, domain.CategoryToolCall, view.Receipts[0].Category)
	assert.Equal(t, "unrestricted", view.Receipts[0].PolicyApplied)

	_, _, err = svc.CreateCampaign(ctx, uuid.New(), "goal", 0)
	assert.ErrorIs(t, err, port.ErrProductNotFound)
}

// TestPayloadHashCanonical verifies equivalent JSON documents hash
// identically regardless of key order, and different documents do not.
func TestPayloadHashCanonical(t *testing.T) {
	a, err := payloadHash(json.RawMessage(`{"tool":"caption","id":"t-1"}`))
	require.NoError(t, err)
	b, err := payloadHash(json.RawMessage(`{"id":"t-1","tool":"caption"}`))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := payloadHash(json.RawMessage(`{"id":"t-2","tool":"caption"}`))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	_, err = payloadHash(json.RawMessage(`{not json`))
	assert.Error(t, err)
}

// TestReceiptImmutability verifies stored receipts are unaffected by later
// operations, including denied charges.
func TestReceiptImmutability(t *testing.T) {
	svc, campaignID := newTestService(t)
	ctx := context.Background()

	rec, err := svc.ChargeWithPolicy(ctx, campaignID, 60, domain.CategoryToolCall, map[string]any{"tool": "caption"})
	require.NoError(t, err)

	_, err = svc.ChargeWithPolicy(ctx, campaignID, 500, domain.CategoryToolCall, nil)
	var violation *port.PolicyViolationError
	require.ErrorAs(t, err, &violation)

	view, err := svc.Ledger(ctx, campaignID)
	require.NoError(t, err)
	require.Len(t, view.Receipts, 1)
	assert.Equal(t, rec.ID, view.Receipts[0].ID)
	assert.Equal(t, rec.AmountCents, view.Receipts[0].AmountCents)
	assert.Equal(t, rec.Category, view.Receipts[0].Category)
	assert.Equal(t, rec.PayloadHash, view.Receipts[0].PayloadHash)
}
