package ports

import (
	"context"

	"github.com/hive-corporation/sentinel/internal/core/domain"
)

// Edge is a directed relationship to be created with set semantics.
type Edge struct {
	FromID string
	Kind   domain.RelKind
	ToID   string
}

// GraphBatch is one feed's worth of entities and edges, ready to load.
type GraphBatch struct {
	Events    []domain.Event
	Articles  []domain.Article
	Sources   []domain.Source
	Posts     []domain.Post
	Channels  []domain.Channel
	Flights   []domain.Flight
	Locations []domain.Location
	Edges     []Edge
}

// Size returns the number of entities in the batch (edges excluded).
func (b *GraphBatch) Size() int {
	return len(b.Events) + len(b.Articles) + len(b.Sources) +
		len(b.Posts) + len(b.Channels) + len(b.Flights) + len(b.Locations)
}

// FeedSource parses one collector's output into a loadable batch. Sources
// read files the collectors already wrote; they never fetch from the
// network themselves.
type FeedSource interface {
	Name() string
	Load(ctx context.Context) (*GraphBatch, error)
}

// GraphLoader is the loader-side write surface of the store.
type GraphLoader interface {
	// EnsureSchema creates tables and uniqueness constraints. Must run
	// single-threaded before any concurrent load or scoring starts.
	EnsureSchema(ctx context.Context) error

	// LoadBatch upserts every entity and edge in the batch. Loading the
	// same batch twice leaves the store unchanged.
	LoadBatch(ctx context.Context, batch *GraphBatch) error
}
