package domain

import "fmt"

// SpendCategory classifies what a charge paid for. The set is closed and
// fixed per deployment; each category carries its own cap in Policy.
type SpendCategory string

const (
	CategoryToolCall      SpendCategory = "tool_call"
	CategoryAssetPurchase SpendCategory = "asset_purchase"
	CategoryPost          SpendCategory = "post"
)

// Categories lists every known spend category in a stable order.
func Categories() []SpendCategory {
	return []SpendCategory{CategoryToolCall, CategoryAssetPurchase, CategoryPost}
}

// Valid reports whether c is one of the known categories.
func (c SpendCategory) Valid() bool {
	switch c {
	case CategoryToolCall, CategoryAssetPurchase, CategoryPost:
		return true
	}
	return false
}

// ParseCategory converts a raw string into a SpendCategory.
func ParseCategory(s string) (SpendCategory, error) {
	c := SpendCategory(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown spend category %q", s)
	}
	return c, nil
}
