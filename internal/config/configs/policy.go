package configs

import "payg-ledger/internal/core/domain"

// Policy carries the deployment-wide spend caps in integer cents. Values are
// read once at startup; the resulting domain policy is passed by value and
// never mutated at runtime.
type Policy struct {
	// CampaignCapCents caps total spend per campaign across all categories.
	CampaignCapCents int64 `env:"CAMPAIGN_CAP_CENTS" envDefault:"500"`
	// ToolCallCapCents caps per-campaign spend on tool calls.
	ToolCallCapCents int64 `env:"TOOL_CALL_CAP_CENTS" envDefault:"100"`
	// AssetPurchaseCapCents caps per-campaign spend on purchased assets.
	AssetPurchaseCapCents int64 `env:"ASSET_PURCHASE_CAP_CENTS" envDefault:"300"`
	// PostCapCents caps per-campaign spend on published posts.
	PostCapCents int64 `env:"POST_CAP_CENTS" envDefault:"50"`
}

// Domain converts the section into the immutable policy value the ledger
// service is constructed with.
func (c Policy) Domain() domain.Policy {
	return domain.Policy{
		CampaignCapCents: c.CampaignCapCents,
		CategoryCapCents: map[domain.SpendCategory]int64{
			domain.CategoryToolCall:      c.ToolCallCapCents,
			domain.CategoryAssetPurchase: c.AssetPurchaseCapCents,
			domain.CategoryPost:          c.PostCapCents,
		},
	}
}
