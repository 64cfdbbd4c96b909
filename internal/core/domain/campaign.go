package domain

import (
	"time"

	"github.com/google/uuid"
)

// Campaign represents one promotion run for a product.
// All monetary amounts are stored in integer cents.
type Campaign struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	Goal        string
	BudgetCents int64
	Status      string // running, completed, cancelled
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Brief is the canned campaign brief produced at campaign creation. Its
// generation is billed as a fixed-cost tool call on the unrestricted path.
type Brief struct {
	Tone     string   `json:"tone"`
	Audience string   `json:"audience"`
	Angles   []string `json:"angles"`
}
