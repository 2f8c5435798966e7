package ports

import (
	"context"
	"time"

	"github.com/hive-corporation/sentinel/internal/core/domain"
)

// TimeWindow bounds a temporal filter. A nil *TimeWindow means the
// temporal constraint is skipped entirely.
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// GraphRepository is the narrow query surface the correlation engine needs
// from the backing store. Every operation is individually atomic; no
// multi-entity transaction is assumed. Relationship upserts have set
// semantics: creating the same edge twice is a no-op, never a duplicate.
type GraphRepository interface {
	// Ping verifies connectivity. A failure here aborts a scoring run
	// before any event is touched.
	Ping(ctx context.Context) error

	// FindEventsSince returns events whose timestamp is at or after
	// cutoff, plus every event with no timestamp at all. Undated events
	// are never silently dropped.
	FindEventsSince(ctx context.Context, cutoff time.Time) ([]domain.Event, error)

	// FindFlightsNear returns flights within radiusMeters great-circle
	// distance of the coordinate. When window is non-nil, a flight's
	// last-contact time must fall inside it; flights with no last-contact
	// time always pass the temporal filter.
	FindFlightsNear(ctx context.Context, lat, lon, radiusMeters float64, window *TimeWindow) ([]domain.Flight, error)

	// FindArticleMentions returns articles linked by a mentions edge to
	// any Location named in places, joined with their publishing source's
	// tier. Empty places returns nothing.
	FindArticleMentions(ctx context.Context, places []string) ([]domain.ArticleMention, error)

	// FindPostsContaining returns posts whose text contains any of the
	// given place names, case-insensitively. Empty places returns nothing.
	FindPostsContaining(ctx context.Context, places []string) ([]domain.Post, error)

	// UpsertRelationship creates the edge if absent.
	UpsertRelationship(ctx context.Context, fromID string, kind domain.RelKind, toID string) error

	// EnsureLocation creates the Location if absent.
	EnsureLocation(ctx context.Context, loc domain.Location) error

	// UpdateEventScore overwrites the score fields owned by the engine.
	UpdateEventScore(ctx context.Context, eventID string, score int, status string, scoredAt time.Time) error

	// FindEventByID returns one event, or an error when it is absent.
	FindEventByID(ctx context.Context, id string) (*domain.Event, error)

	// FindScoredEvents returns previously scored events ordered by
	// descending confidence score.
	FindScoredEvents(ctx context.Context, limit int) ([]domain.Event, error)
}
