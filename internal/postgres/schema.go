package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is applied at startup; every statement is idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS payment_intents (
		id               UUID PRIMARY KEY,
		session_id       TEXT        NOT NULL,
		user_id          TEXT        NOT NULL,
		amount_subunits  BIGINT      NOT NULL,
		currency         TEXT        NOT NULL,
		status           TEXT        NOT NULL DEFAULT 'OPENED',
		payment_id       TEXT UNIQUE,
		signature        TEXT,
		order_id         BIGINT,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS payment_intents_status_created_idx
		ON payment_intents (status, created_at)`,
}

func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range Schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
