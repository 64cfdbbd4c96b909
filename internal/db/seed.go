package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed inserts demo catalog and ledger data: a few products, one running
// campaign each, and a handful of admitted receipts and sale events so the
// reporting endpoints have something to show. Amounts stay within the
// default caps.
func Seed(ctx context.Context, db *pgxpool.Pool) error {
	titles := []string{"Walnut desk organizer", "Ceramic pour-over set", "Linen tote bag"}

	for i, title := range titles {
		productID := uuid.New()
		_, err := db.Exec(ctx, `INSERT INTO products
(id, title, description, image_url, price_cents, product_url, tags, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,now()) ON CONFLICT DO NOTHING`,
			productID, title,
			fmt.Sprintf("Demo product %d", i+1),
			fmt.Sprintf("https://example.com/img/%d.jpg", i+1),
			int64(1500+500*i),
			fmt.Sprintf("https://example.com/p/%d", i+1),
			"demo")
		if err != nil {
			return err
		}

		campaignID := uuid.New()
		_, err = db.Exec(ctx, `INSERT INTO campaigns
(id, product_id, goal, budget_cents, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,'running',now(),now()) ON CONFLICT DO NOTHING`,
			campaignID, productID, "drive first sales", int64(500))
		if err != nil {
			return err
		}

		// one brief fee plus a few policy-admitted charges
		receipts := []struct {
			amount   int64
			category string
			applied  string
		}{
			{2, "tool_call", "unrestricted"},
			{40, "tool_call", "caps: tool_call<=100, total<=500"},
			{120, "asset_purchase", "caps: asset_purchase<=300, total<=500"},
			{25, "post", "caps: post<=50, total<=500"},
		}
		for j, rec := range receipts {
			_, err = db.Exec(ctx, `INSERT INTO receipts
(id, campaign_id, amount_cents, currency, rail, category, policy_applied, payload_hash, created_at)
VALUES ($1,$2,$3,'USD','mock',$4,$5,$6,$7) ON CONFLICT DO NOTHING`,
				uuid.New(), campaignID, rec.amount, rec.category, rec.applied,
				fmt.Sprintf("%064d", i*10+j),
				time.Now().UTC().Add(time.Duration(j)*time.Minute))
			if err != nil {
				return err
			}
		}

		metadata, _ := json.Marshal(map[string]any{"order_id": fmt.Sprintf("demo-%d", i+1)})
		_, err = db.Exec(ctx, `INSERT INTO attribution_events
(id, campaign_id, type, amount_cents, metadata, occurred_at)
VALUES ($1,$2,'sale',$3,$4,now()) ON CONFLICT DO NOTHING`,
			uuid.New(), campaignID, int64(1500+500*i), metadata)
		if err != nil {
			return err
		}
	}
	return nil
}
