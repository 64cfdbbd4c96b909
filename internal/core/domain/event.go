package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventSale is the only attribution event type external ingestion currently
// emits. The Type field stays a string so new kinds can be added without a
// schema change.
const EventSale = "sale"

// AttributionEvent is an immutable record of an external outcome linked to a
// campaign. AmountCents is nil for non-monetary events. The ledger core only
// reads these for revenue aggregation.
type AttributionEvent struct {
	ID          uuid.UUID
	CampaignID  uuid.UUID
	Type        string
	AmountCents *int64
	Metadata    json.RawMessage
	OccurredAt  time.Time
}
