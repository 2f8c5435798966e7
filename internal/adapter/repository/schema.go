package repository

import (
	"context"
	"fmt"
)

// schemaStatements create the entity tables and uniqueness constraints.
// The primary keys double as the upsert conflict targets, which is what
// makes every write in this package idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id               TEXT PRIMARY KEY,
		ts               TIMESTAMPTZ,
		lat              DOUBLE PRECISION,
		lon              DOUBLE PRECISION,
		event_code       TEXT NOT NULL DEFAULT '',
		actor_1          TEXT NOT NULL DEFAULT '',
		actor_2          TEXT NOT NULL DEFAULT '',
		source_url       TEXT NOT NULL DEFAULT '',
		confidence_score INTEGER,
		status           TEXT,
		scored_at        TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS flights (
		icao24         TEXT PRIMARY KEY,
		callsign       TEXT NOT NULL DEFAULT '',
		origin_country TEXT NOT NULL DEFAULT '',
		latitude       DOUBLE PRECISION NOT NULL,
		longitude      DOUBLE PRECISION NOT NULL,
		geo_altitude   DOUBLE PRECISION,
		velocity       DOUBLE PRECISION,
		tag            TEXT,
		on_ground      BOOLEAN,
		last_contact   TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS sources (
		name TEXT PRIMARY KEY,
		tier INTEGER NOT NULL DEFAULT 3,
		type TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS articles (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL DEFAULT '',
		summary       TEXT NOT NULL DEFAULT '',
		link          TEXT NOT NULL DEFAULT '',
		published_utc TIMESTAMPTZ,
		source_name   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS channels (
		name TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id           TEXT PRIMARY KEY,
		channel_name TEXT NOT NULL DEFAULT '',
		text         TEXT NOT NULL DEFAULT '',
		posted_at    TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS locations (
		name TEXT PRIMARY KEY,
		lat  DOUBLE PRECISION,
		lon  DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS edges (
		from_id  TEXT NOT NULL,
		rel_type TEXT NOT NULL,
		to_id    TEXT NOT NULL,
		PRIMARY KEY (from_id, rel_type, to_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_ts ON events (ts)`,
	`CREATE INDEX IF NOT EXISTS idx_flights_position ON flights (latitude, longitude)`,
	`CREATE INDEX IF NOT EXISTS idx_edges_rel ON edges (rel_type, to_id)`,
}

// EnsureSchema creates tables, constraints and indexes. It must complete
// single-threaded before any concurrent load or scoring run starts.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
