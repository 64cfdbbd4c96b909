package port

import (
	"errors"
	"fmt"

	"payg-ledger/internal/core/domain"
)

var (
	// ErrInvalidAmount is returned for non-positive charge amounts.
	ErrInvalidAmount = errors.New("amount_cents must be > 0")
	// ErrInvalidCategory is returned for categories outside the closed set.
	ErrInvalidCategory = errors.New("unknown spend category")
	// ErrCampaignNotFound is returned when a campaign id does not resolve.
	ErrCampaignNotFound = errors.New("campaign not found")
	// ErrProductNotFound is returned when a product id does not resolve.
	ErrProductNotFound = errors.New("product not found")
)

// PolicyViolationError is the final, correctly-evaluated denial of a charge.
// It is not retryable with the same amount. It carries the would-be total and
// the cap so the caller can decide to retry smaller or abandon.
type PolicyViolationError struct {
	Rule           domain.ViolationRule
	Category       domain.SpendCategory
	AttemptedCents int64
	CapCents       int64
}

func (e *PolicyViolationError) Error() string {
	switch e.Rule {
	case domain.RuleCategoryCap:
		return fmt.Sprintf("policy block: %s cap exceeded (%d > %d cents)", e.Category, e.AttemptedCents, e.CapCents)
	case domain.RuleCampaignCap:
		return fmt.Sprintf("policy block: campaign budget exceeded (%d > %d cents)", e.AttemptedCents, e.CapCents)
	default:
		return fmt.Sprintf("policy block: %s", e.Rule)
	}
}

// ViolationFromDecision converts a denying policy decision into an error.
// Invalid amounts map onto ErrInvalidAmount so callers see one validation
// error regardless of which layer caught it.
func ViolationFromDecision(d domain.Decision) error {
	if d.Admitted {
		return nil
	}
	if d.Rule == domain.RuleInvalidAmount {
		return ErrInvalidAmount
	}
	return &PolicyViolationError{
		Rule:           d.Rule,
		Category:       d.Category,
		AttemptedCents: d.AttemptedCents,
		CapCents:       d.CapCents,
	}
}

// TransientStoreError marks a storage fault. It carries no information about
// whether the charge would have been admissible; callers may retry, but must
// never treat it as a denial.
type TransientStoreError struct {
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("transient store failure: %v", e.Err)
}

func (e *TransientStoreError) Unwrap() error {
	return e.Err
}
