package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hive-corporation/sentinel/internal/core/domain"
	"github.com/hive-corporation/sentinel/internal/core/ports"
)

// metersPerDegreeLat is close enough for the bounding-box prefilter; the
// exact great-circle check happens in Go afterwards.
const metersPerDegreeLat = 111320.0

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

const eventColumns = `
	e.id, e.ts, e.lat, e.lon, e.event_code, e.actor_1, e.actor_2, e.source_url,
	COALESCE(l.name, ''), COALESCE(e.confidence_score, 0), COALESCE(e.status, ''), e.scored_at
`

const eventJoin = `
	FROM events e
	LEFT JOIN edges g ON g.from_id = e.id AND g.rel_type = 'occurred_in'
	LEFT JOIN locations l ON l.name = g.to_id
`

func (r *PostgresRepository) FindEventsSince(ctx context.Context, cutoff time.Time) ([]domain.Event, error) {
	query := `SELECT` + eventColumns + eventJoin + `
		WHERE e.ts >= $1 OR e.ts IS NULL
		ORDER BY e.ts DESC NULLS LAST
	`

	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *PostgresRepository) FindEventByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT` + eventColumns + eventJoin + `
		WHERE e.id = $1
		LIMIT 1
	`

	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query event %s: %w", id, err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("event %s not found", id)
	}
	return &events[0], nil
}

func (r *PostgresRepository) FindScoredEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	query := `SELECT` + eventColumns + eventJoin + `
		WHERE e.scored_at IS NOT NULL
		ORDER BY e.confidence_score DESC, e.id
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scored events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	var events []domain.Event

	for rows.Next() {
		var e domain.Event
		var lat, lon *float64

		err := rows.Scan(
			&e.ID,
			&e.Timestamp,
			&lat,
			&lon,
			&e.EventCode,
			&e.Actor1,
			&e.Actor2,
			&e.SourceURL,
			&e.GridLocation,
			&e.ConfidenceScore,
			&e.Status,
			&e.ScoredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		// NULL coordinates surface as NaN so the pipeline records the
		// event as malformed instead of matching at (0, 0).
		e.Lat, e.Lon = math.NaN(), math.NaN()
		if lat != nil {
			e.Lat = *lat
		}
		if lon != nil {
			e.Lon = *lon
		}

		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return events, nil
}

func (r *PostgresRepository) FindFlightsNear(ctx context.Context, lat, lon, radiusMeters float64, window *ports.TimeWindow) ([]domain.Flight, error) {
	// Index-friendly bounding box first; the exact haversine check below
	// trims the corners.
	latMargin := radiusMeters / metersPerDegreeLat
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lonMargin := radiusMeters / (metersPerDegreeLat * cosLat)

	query := `
		SELECT icao24, callsign, origin_country, latitude, longitude,
		       COALESCE(geo_altitude, 0), COALESCE(velocity, 0),
		       COALESCE(tag, ''), COALESCE(on_ground, false), last_contact
		FROM flights
		WHERE latitude BETWEEN $1 AND $2
		  AND longitude BETWEEN $3 AND $4
	`
	args := []any{lat - latMargin, lat + latMargin, lon - lonMargin, lon + lonMargin}

	if window != nil {
		// Flights with no last-contact time pass any temporal filter:
		// excluding them would drop the strongest signal on feeds that
		// omit fix times.
		query += ` AND (last_contact IS NULL OR last_contact BETWEEN $5 AND $6)`
		args = append(args, window.From, window.To)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	var flights []domain.Flight

	for rows.Next() {
		var f domain.Flight
		err := rows.Scan(
			&f.ICAO24,
			&f.Callsign,
			&f.OriginCountry,
			&f.Latitude,
			&f.Longitude,
			&f.GeoAltitude,
			&f.Velocity,
			&f.Tag,
			&f.OnGround,
			&f.LastContact,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}

		if domain.HaversineMeters(lat, lon, f.Latitude, f.Longitude) <= radiusMeters {
			flights = append(flights, f)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return flights, nil
}

func (r *PostgresRepository) FindArticleMentions(ctx context.Context, places []string) ([]domain.ArticleMention, error) {
	if len(places) == 0 {
		return nil, nil
	}

	query := `
		SELECT DISTINCT a.id, a.title, a.summary, a.link, a.published_utc,
		       a.source_name, COALESCE(s.tier, 3), l.name
		FROM articles a
		JOIN edges m ON m.from_id = a.id AND m.rel_type = 'mentions'
		JOIN locations l ON l.name = m.to_id
		LEFT JOIN sources s ON s.name = a.source_name
		WHERE l.name = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, places)
	if err != nil {
		return nil, fmt.Errorf("failed to query article mentions: %w", err)
	}
	defer rows.Close()

	var mentions []domain.ArticleMention

	for rows.Next() {
		var m domain.ArticleMention
		err := rows.Scan(
			&m.ID,
			&m.Title,
			&m.Summary,
			&m.Link,
			&m.PublishedUTC,
			&m.SourceName,
			&m.SourceTier,
			&m.Place,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article mention: %w", err)
		}
		mentions = append(mentions, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return mentions, nil
}

func (r *PostgresRepository) FindPostsContaining(ctx context.Context, places []string) ([]domain.Post, error) {
	if len(places) == 0 {
		return nil, nil
	}

	patterns := make([]string, len(places))
	for i, place := range places {
		patterns[i] = "%" + place + "%"
	}

	query := `
		SELECT id, channel_name, text, posted_at
		FROM posts
		WHERE text ILIKE ANY($1)
	`

	rows, err := r.db.Query(ctx, query, patterns)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post

	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.ChannelName, &p.Text, &p.Date); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return posts, nil
}

func (r *PostgresRepository) UpsertRelationship(ctx context.Context, fromID string, kind domain.RelKind, toID string) error {
	query := `
		INSERT INTO edges (from_id, rel_type, to_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (from_id, rel_type, to_id) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, fromID, string(kind), toID); err != nil {
		return fmt.Errorf("failed to upsert %s edge: %w", kind, err)
	}
	return nil
}

func (r *PostgresRepository) EnsureLocation(ctx context.Context, loc domain.Location) error {
	query := `
		INSERT INTO locations (name, lat, lon)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, loc.Name, loc.Lat, loc.Lon); err != nil {
		return fmt.Errorf("failed to ensure location %s: %w", loc.Name, err)
	}
	return nil
}

func (r *PostgresRepository) UpdateEventScore(ctx context.Context, eventID string, score int, status string, scoredAt time.Time) error {
	query := `
		UPDATE events
		SET confidence_score = $2, status = $3, scored_at = $4
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, eventID, score, status, scoredAt)
	if err != nil {
		return fmt.Errorf("failed to update score for event %s: %w", eventID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("event %s not found", eventID)
	}
	return nil
}
