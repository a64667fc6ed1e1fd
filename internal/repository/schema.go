package repository

import (
	"context"
	"fmt"
)

// Plan inputs keep two decimal places; day-entry amounts are unconstrained
// NUMERIC so exact compounded values round-trip.
const schemaSQL = `
CREATE SCHEMA IF NOT EXISTS marathon;

CREATE TABLE IF NOT EXISTS marathon.users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS marathon.plans (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL REFERENCES marathon.users(id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    start_wager NUMERIC(12, 2) NOT NULL CHECK (start_wager >= 1),
    odds        NUMERIC(4, 2) NOT NULL CHECK (odds > 1),
    days        INTEGER NOT NULL CHECK (days BETWEEN 1 AND 365),
    status      TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'stopped', 'completed')),
    hmac        TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_plans_user_created ON marathon.plans (user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_plans_status ON marathon.plans (status);

CREATE TABLE IF NOT EXISTS marathon.day_entries (
    id       TEXT PRIMARY KEY,
    plan_id  TEXT NOT NULL REFERENCES marathon.plans(id) ON DELETE CASCADE,
    day      INTEGER NOT NULL CHECK (day >= 1),
    wager    NUMERIC NOT NULL,
    odds     NUMERIC(4, 2) NOT NULL,
    winnings NUMERIC NOT NULL,
    result   TEXT NOT NULL DEFAULT 'pending' CHECK (result IN ('pending', 'win', 'loss')),
    UNIQUE (plan_id, day)
);
`

// Migrate creates the schema if it does not exist yet
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
