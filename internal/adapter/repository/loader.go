package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hive-corporation/sentinel/internal/core/ports"
)

// LoadBatch upserts every entity and edge in the batch using a single
// pgx batch round-trip. Entity attributes are refreshed on conflict, but
// the score columns stay untouched: those belong to the scoring pipeline.
// Loading the same batch twice leaves the store unchanged.
func (r *PostgresRepository) LoadBatch(ctx context.Context, batch *ports.GraphBatch) error {
	b := &pgx.Batch{}

	for _, e := range batch.Events {
		b.Queue(`
			INSERT INTO events (id, ts, lat, lon, event_code, actor_1, actor_2, source_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				ts = EXCLUDED.ts,
				lat = EXCLUDED.lat,
				lon = EXCLUDED.lon,
				event_code = EXCLUDED.event_code,
				actor_1 = EXCLUDED.actor_1,
				actor_2 = EXCLUDED.actor_2,
				source_url = EXCLUDED.source_url
		`, e.ID, e.Timestamp, e.Lat, e.Lon, e.EventCode, e.Actor1, e.Actor2, e.SourceURL)
	}

	for _, s := range batch.Sources {
		b.Queue(`
			INSERT INTO sources (name, tier, type)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET tier = EXCLUDED.tier, type = EXCLUDED.type
		`, s.Name, s.Tier, s.Type)
	}

	for _, a := range batch.Articles {
		b.Queue(`
			INSERT INTO articles (id, title, summary, link, published_utc, source_name)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title,
				summary = EXCLUDED.summary,
				link = EXCLUDED.link,
				published_utc = EXCLUDED.published_utc,
				source_name = EXCLUDED.source_name
		`, a.ID, a.Title, a.Summary, a.Link, a.PublishedUTC, a.SourceName)
	}

	for _, c := range batch.Channels {
		b.Queue(`
			INSERT INTO channels (name) VALUES ($1)
			ON CONFLICT (name) DO NOTHING
		`, c.Name)
	}

	for _, p := range batch.Posts {
		b.Queue(`
			INSERT INTO posts (id, channel_name, text, posted_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET
				channel_name = EXCLUDED.channel_name,
				text = EXCLUDED.text,
				posted_at = EXCLUDED.posted_at
		`, p.ID, p.ChannelName, p.Text, p.Date)
	}

	for _, f := range batch.Flights {
		b.Queue(`
			INSERT INTO flights (icao24, callsign, origin_country, latitude, longitude,
			                     geo_altitude, velocity, tag, on_ground, last_contact)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (icao24) DO UPDATE SET
				callsign = EXCLUDED.callsign,
				origin_country = EXCLUDED.origin_country,
				latitude = EXCLUDED.latitude,
				longitude = EXCLUDED.longitude,
				geo_altitude = EXCLUDED.geo_altitude,
				velocity = EXCLUDED.velocity,
				tag = EXCLUDED.tag,
				on_ground = EXCLUDED.on_ground,
				last_contact = EXCLUDED.last_contact
		`, f.ICAO24, f.Callsign, f.OriginCountry, f.Latitude, f.Longitude,
			f.GeoAltitude, f.Velocity, f.Tag, f.OnGround, f.LastContact)
	}

	for _, l := range batch.Locations {
		b.Queue(`
			INSERT INTO locations (name, lat, lon)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO UPDATE SET lat = EXCLUDED.lat, lon = EXCLUDED.lon
		`, l.Name, l.Lat, l.Lon)
	}

	for _, edge := range batch.Edges {
		b.Queue(`
			INSERT INTO edges (from_id, rel_type, to_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (from_id, rel_type, to_id) DO NOTHING
		`, edge.FromID, string(edge.Kind), edge.ToID)
	}

	br := r.db.SendBatch(ctx, b)
	defer br.Close()

	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to execute batch statement %d: %w", i, err)
		}
	}

	return nil
}
