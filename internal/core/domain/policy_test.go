package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testPolicy() Policy {
	return Policy{
		CampaignCapCents: 500,
		CategoryCapCents: map[SpendCategory]int64{
			CategoryToolCall:      100,
			CategoryAssetPurchase: 300,
			CategoryPost:          50,
		},
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		state   SpendState
		charge  Charge
		admit   bool
		rule    ViolationRule
		attempt int64
		cap     int64
	}{
		{
			name:   "admits within caps",
			state:  SpendState{},
			charge: Charge{AmountCents: 60, Category: CategoryToolCall},
			admit:  true,
		},
		{
			name:    "denies zero amount",
			state:   SpendState{},
			charge:  Charge{AmountCents: 0, Category: CategoryToolCall},
			rule:    RuleInvalidAmount,
			attempt: 0,
		},
		{
			name:    "denies negative amount",
			state:   SpendState{},
			charge:  Charge{AmountCents: -5, Category: CategoryPost},
			rule:    RuleInvalidAmount,
			attempt: -5,
		},
		{
			name: "admits exactly onto the category cap",
			state: SpendState{
				TotalCents: 98,
				ByCategory: map[SpendCategory]int64{CategoryToolCall: 98},
			},
			charge: Charge{AmountCents: 2, Category: CategoryToolCall},
			admit:  true,
		},
		{
			name: "denies one cent over the category cap",
			state: SpendState{
				TotalCents: 98,
				ByCategory: map[SpendCategory]int64{CategoryToolCall: 98},
			},
			charge:  Charge{AmountCents: 3, Category: CategoryToolCall},
			rule:    RuleCategoryCap,
			attempt: 101,
			cap:     100,
		},
		{
			name: "admits exactly onto the campaign cap",
			state: SpendState{
				TotalCents: 400,
				ByCategory: map[SpendCategory]int64{CategoryAssetPurchase: 200},
			},
			charge: Charge{AmountCents: 100, Category: CategoryAssetPurchase},
			admit:  true,
		},
		{
			name: "denies over the campaign cap",
			state: SpendState{
				TotalCents: 450,
				ByCategory: map[SpendCategory]int64{CategoryAssetPurchase: 200},
			},
			charge:  Charge{AmountCents: 60, Category: CategoryAssetPurchase},
			rule:    RuleCampaignCap,
			attempt: 510,
			cap:     500,
		},
		{
			name: "category cap is checked before campaign cap",
			state: SpendState{
				TotalCents: 360,
				ByCategory: map[SpendCategory]int64{
					CategoryToolCall:      60,
					CategoryAssetPurchase: 300,
				},
			},
			charge:  Charge{AmountCents: 150, Category: CategoryPost},
			rule:    RuleCategoryCap,
			attempt: 150,
			cap:     50,
		},
		{
			name: "exhausted category does not block another category",
			state: SpendState{
				TotalCents: 100,
				ByCategory: map[SpendCategory]int64{CategoryToolCall: 100},
			},
			charge: Charge{AmountCents: 200, Category: CategoryAssetPurchase},
			admit:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.state, tt.charge, testPolicy())
			assert.Equal(t, tt.admit, d.Admitted)
			if !tt.admit {
				assert.Equal(t, tt.rule, d.Rule)
				assert.Equal(t, tt.attempt, d.AttemptedCents)
				assert.Equal(t, tt.cap, d.CapCents)
			}
		})
	}
}

// TestEvaluateIsPure verifies the engine leaves its inputs untouched.
func TestEvaluateIsPure(t *testing.T) {
	state := SpendState{
		TotalCents: 60,
		ByCategory: map[SpendCategory]int64{CategoryToolCall: 60},
	}
	policy := testPolicy()

	Evaluate(state, Charge{AmountCents: 50, Category: CategoryToolCall}, policy)
	Evaluate(state, Charge{AmountCents: 5000, Category: CategoryToolCall}, policy)

	assert.Equal(t, int64(60), state.TotalCents)
	assert.Equal(t, int64(60), state.ByCategory[CategoryToolCall])
	assert.Equal(t, int64(100), policy.CategoryCapCents[CategoryToolCall])
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		parsed, err := ParseCategory(string(c))
		assert.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	_, err := ParseCategory("shipping")
	assert.Error(t, err)
}
