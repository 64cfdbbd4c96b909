package domain

// Policy is the process-wide spend policy. It is loaded once at startup and
// passed by value; nothing mutates it afterwards.
type Policy struct {
	// CampaignCapCents caps total spend per campaign across all categories.
	CampaignCapCents int64
	// CategoryCapCents caps spend per campaign within one category.
	CategoryCapCents map[SpendCategory]int64
}

// SpendState is a derived snapshot of a campaign's admitted spend. It is
// recomputed from stored receipts on every admission check and on every
// read; it is never cached across requests.
type SpendState struct {
	TotalCents int64
	ByCategory map[SpendCategory]int64
}

// Charge is a proposed debit against a campaign's budget.
type Charge struct {
	AmountCents int64
	Category    SpendCategory
}

// ViolationRule identifies which policy rule denied a charge.
type ViolationRule string

const (
	RuleInvalidAmount ViolationRule = "invalid_amount"
	RuleCategoryCap   ViolationRule = "category_cap_exceeded"
	RuleCampaignCap   ViolationRule = "campaign_cap_exceeded"
)

// Decision is the outcome of evaluating one charge. For denials it carries
// the would-be total and the cap it collided with.
type Decision struct {
	Admitted       bool
	Rule           ViolationRule
	Category       SpendCategory
	AttemptedCents int64
	CapCents       int64
}

func admit() Decision {
	return Decision{Admitted: true}
}

func deny(rule ViolationRule, category SpendCategory, attempted, cap int64) Decision {
	return Decision{
		Admitted:       false,
		Rule:           rule,
		Category:       category,
		AttemptedCents: attempted,
		CapCents:       cap,
	}
}

// Evaluate decides whether a proposed charge is admissible under the policy
// given a fresh spend state. It is a pure function: no side effects, no
// storage access, deterministic in its inputs.
//
// Rules are checked in order and the first failure is terminal:
//  1. the amount must be positive;
//  2. category spend plus the charge must stay within the category cap;
//  3. total spend plus the charge must stay within the campaign cap.
//
// Caps are inclusive: a charge landing exactly on a cap is admitted.
func Evaluate(state SpendState, charge Charge, policy Policy) Decision {
	if charge.AmountCents <= 0 {
		return deny(RuleInvalidAmount, charge.Category, charge.AmountCents, 0)
	}

	categoryCap := policy.CategoryCapCents[charge.Category]
	nextCategoryTotal := state.ByCategory[charge.Category] + charge.AmountCents
	if nextCategoryTotal > categoryCap {
		return deny(RuleCategoryCap, charge.Category, nextCategoryTotal, categoryCap)
	}

	nextTotal := state.TotalCents + charge.AmountCents
	if nextTotal > policy.CampaignCapCents {
		return deny(RuleCampaignCap, charge.Category, nextTotal, policy.CampaignCapCents)
	}

	return admit()
}
