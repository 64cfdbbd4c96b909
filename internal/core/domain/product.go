package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog item a campaign promotes.
type Product struct {
	ID          uuid.UUID
	Title       string
	Description string
	ImageURL    string
	PriceCents  int64
	ProductURL  string
	Tags        string
	CreatedAt   time.Time
}
