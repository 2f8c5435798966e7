// Package ingest turns the collectors' JSON output files into loadable
// graph batches. Nothing in this package touches the network: the
// collection agents write these files, this package only parses them.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/hive-corporation/sentinel/internal/core/domain"
	"github.com/hive-corporation/sentinel/internal/core/ports"
)

// EventFeed parses the conflict-event collector's output
// (kinetic_events.json): one record per detected event with coordinates
// and a CAMEO event code.
type EventFeed struct {
	path string
}

func NewEventFeed(path string) *EventFeed {
	return &EventFeed{path: path}
}

func (f *EventFeed) Name() string {
	return "gdelt-events"
}

type eventRecord struct {
	ID             string  `json:"id"`
	Timestamp      string  `json:"timestamp"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	SourceURL      string  `json:"source_url"`
	EventCode      string  `json:"event_code"`
	Actor1         string  `json:"actor_1"`
	Actor2         string  `json:"actor_2"`
	GoldsteinScale float64 `json:"goldstein_scale"`
}

func (f *EventFeed) Load(ctx context.Context) (*ports.GraphBatch, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event feed: %w", err)
	}

	var records []eventRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to parse event feed: %w", err)
	}

	batch := &ports.GraphBatch{}
	seenLocations := map[string]bool{}

	for i, rec := range records {
		id := rec.ID
		if id == "" {
			id = fmt.Sprintf("gdelt_%d_%s", i, rec.Timestamp)
		}

		event := domain.Event{
			ID:        id,
			Timestamp: parseFeedTime(rec.Timestamp),
			Lat:       rec.Lat,
			Lon:       rec.Lon,
			EventCode: rec.EventCode,
			Actor1:    rec.Actor1,
			Actor2:    rec.Actor2,
			SourceURL: rec.SourceURL,
		}
		batch.Events = append(batch.Events, event)

		if !domain.ValidCoordinate(rec.Lat, rec.Lon) {
			continue
		}

		cell := domain.GridCell(rec.Lat, rec.Lon)
		if !seenLocations[cell] {
			seenLocations[cell] = true
			batch.Locations = append(batch.Locations, domain.Location{
				Name: cell,
				Lat:  math.Round(rec.Lat),
				Lon:  math.Round(rec.Lon),
			})
		}
		batch.Edges = append(batch.Edges, ports.Edge{FromID: id, Kind: domain.OccurredIn, ToID: cell})
	}

	return batch, nil
}

// parseFeedTime parses the collectors' ISO-8601 UTC timestamps. Invalid or
// missing values come back nil; undated records stay scoreable downstream.
func parseFeedTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
