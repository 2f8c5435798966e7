package correlation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hive-corporation/sentinel/internal/core/domain"
	"github.com/hive-corporation/sentinel/internal/core/ports"
)

// memRepo is an in-memory GraphRepository for pipeline tests. Edge storage
// is a set, mirroring the upsert semantics the real store guarantees.
type memRepo struct {
	mu sync.Mutex

	events    map[string]domain.Event
	flights   []domain.Flight
	mentions  []domain.ArticleMention // one row per (article, place) pair
	posts     []domain.Post
	locations map[string]domain.Location
	edges     map[string]bool

	pingErr      error
	persistFails map[string]int // event id -> failures still to inject
}

func newMemRepo() *memRepo {
	return &memRepo{
		events:       map[string]domain.Event{},
		locations:    map[string]domain.Location{},
		edges:        map[string]bool{},
		persistFails: map[string]int{},
	}
}

func (m *memRepo) addEvent(e domain.Event) {
	m.events[e.ID] = e
}

func edgeKey(fromID string, kind domain.RelKind, toID string) string {
	return fromID + "|" + string(kind) + "|" + toID
}

func (m *memRepo) edgeCount(kind domain.RelKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key := range m.edges {
		if strings.Contains(key, "|"+string(kind)+"|") {
			n++
		}
	}
	return n
}

func (m *memRepo) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *memRepo) FindEventsSince(ctx context.Context, cutoff time.Time) ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Event
	for _, e := range m.events {
		if e.Timestamp == nil || !e.Timestamp.Before(cutoff) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) FindFlightsNear(ctx context.Context, lat, lon, radiusMeters float64, window *ports.TimeWindow) ([]domain.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Flight
	for _, f := range m.flights {
		if domain.HaversineMeters(lat, lon, f.Latitude, f.Longitude) > radiusMeters {
			continue
		}
		if window != nil && f.LastContact != nil {
			if f.LastContact.Before(window.From) || f.LastContact.After(window.To) {
				continue
			}
		}
		out = append(out, f)
	}
	return out, nil
}

func (m *memRepo) FindArticleMentions(ctx context.Context, places []string) ([]domain.ArticleMention, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := map[string]bool{}
	for _, p := range places {
		wanted[p] = true
	}

	var out []domain.ArticleMention
	for _, mention := range m.mentions {
		if wanted[mention.Place] {
			out = append(out, mention)
		}
	}
	return out, nil
}

func (m *memRepo) FindPostsContaining(ctx context.Context, places []string) ([]domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Post
	for _, p := range m.posts {
		lower := strings.ToLower(p.Text)
		for _, place := range places {
			if strings.Contains(lower, strings.ToLower(place)) {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (m *memRepo) UpsertRelationship(ctx context.Context, fromID string, kind domain.RelKind, toID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges[edgeKey(fromID, kind, toID)] = true
	return nil
}

func (m *memRepo) EnsureLocation(ctx context.Context, loc domain.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.locations[loc.Name]; !ok {
		m.locations[loc.Name] = loc
	}
	return nil
}

func (m *memRepo) UpdateEventScore(ctx context.Context, eventID string, score int, status string, scoredAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.persistFails[eventID] > 0 {
		m.persistFails[eventID]--
		return errors.New("simulated write failure")
	}

	e, ok := m.events[eventID]
	if !ok {
		return fmt.Errorf("event %s not found", eventID)
	}
	e.ConfidenceScore = score
	e.Status = status
	e.ScoredAt = &scoredAt
	m.events[eventID] = e
	return nil
}

func (m *memRepo) FindEventByID(ctx context.Context, id string) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s not found", id)
	}
	return &e, nil
}

func (m *memRepo) FindScoredEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Event
	for _, e := range m.events {
		if e.ScoredAt != nil {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ConfidenceScore != out[j].ConfidenceScore {
			return out[i].ConfidenceScore > out[j].ConfidenceScore
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
