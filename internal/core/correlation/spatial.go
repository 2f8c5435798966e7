package correlation

import (
	"context"
	"fmt"
	"time"

	"github.com/hive-corporation/sentinel/internal/core/domain"
	"github.com/hive-corporation/sentinel/internal/core/ports"
)

// SpatialConfig holds the flight correlation tunables.
type SpatialConfig struct {
	RadiusMeters float64       // max great-circle distance to the event
	Window       time.Duration // +/- around the event timestamp
}

// DefaultSpatialConfig returns the reference correlation parameters:
// 50 km radius, +/- 1 hour.
func DefaultSpatialConfig() SpatialConfig {
	return SpatialConfig{
		RadiusMeters: 50 * 1000,
		Window:       time.Hour,
	}
}

// SpatialCorrelator finds evidence-of-presence flights near an event and
// links them with detected_near edges.
type SpatialCorrelator struct {
	repo ports.GraphRepository
	cfg  SpatialConfig
}

func NewSpatialCorrelator(repo ports.GraphRepository, cfg SpatialConfig) *SpatialCorrelator {
	return &SpatialCorrelator{repo: repo, cfg: cfg}
}

// Correlate matches flights within the configured radius and window of the
// event. When the event has no timestamp the temporal filter is skipped and
// only the spatial radius applies; noisy feeds drop timestamps often enough
// that rejecting undated events would discard real signal.
//
// Each match gets an idempotent detected_near edge, so running twice never
// doubles the relationship count.
func (c *SpatialCorrelator) Correlate(ctx context.Context, event domain.Event) (domain.SpatialEvidence, error) {
	var evidence domain.SpatialEvidence

	var window *ports.TimeWindow
	if event.Timestamp != nil {
		window = &ports.TimeWindow{
			From: event.Timestamp.Add(-c.cfg.Window),
			To:   event.Timestamp.Add(c.cfg.Window),
		}
	}

	flights, err := c.repo.FindFlightsNear(ctx, event.Lat, event.Lon, c.cfg.RadiusMeters, window)
	if err != nil {
		return evidence, fmt.Errorf("flight query for event %s: %w", event.ID, err)
	}

	for _, flight := range flights {
		if err := c.repo.UpsertRelationship(ctx, flight.ICAO24, domain.DetectedNear, event.ID); err != nil {
			return evidence, fmt.Errorf("linking flight %s to event %s: %w", flight.ICAO24, event.ID, err)
		}
		evidence.Total++
		if flight.IsMilitaryProxy() {
			evidence.Military++
		}
	}

	return evidence, nil
}
