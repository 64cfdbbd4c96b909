package domain

import (
	"time"

	"github.com/google/uuid"
)

// Receipt is an immutable record of one admitted charge. It is created
// exclusively by the ledger service and never mutated or deleted afterwards.
// PayloadHash is a sha256 hex digest of the charge's originating payload,
// kept for tamper evidence, not secrecy.
type Receipt struct {
	ID            uuid.UUID
	CampaignID    uuid.UUID
	AmountCents   int64
	Currency      string // fixed "USD" minor units
	Rail          string // abstract rail, always "mock" in this core
	Category      SpendCategory
	PolicyApplied string // human-readable description of the admission path
	PayloadHash   string
	CreatedAt     time.Time
}
