package correlation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/hive-corporation/sentinel/internal/core/domain"
	"github.com/hive-corporation/sentinel/internal/core/ports"
)

// ErrStoreUnavailable is returned when the store cannot be reached at the
// start of a run. It is the only fatal failure: the pipeline aborts early
// rather than silently scoring against a half-available store.
var ErrStoreUnavailable = errors.New("store unavailable")

// Config holds the pipeline tunables.
type Config struct {
	// Lookback selects candidate events: timestamp within the window, or
	// no timestamp at all.
	Lookback time.Duration

	// Workers bounds per-event fan-out. 1 reproduces the sequential
	// reference behavior; larger values are safe because events share no
	// mutable state and edge upserts are idempotent.
	Workers int

	Spatial SpatialConfig
	Weights domain.ScoreWeights

	// PersistRetryInterval seeds the backoff for the single write-back
	// retry on persist failure.
	PersistRetryInterval time.Duration
}

// DefaultConfig returns the reference pipeline parameters.
func DefaultConfig() Config {
	return Config{
		Lookback:             24 * time.Hour,
		Workers:              1,
		Spatial:              DefaultSpatialConfig(),
		Weights:              domain.DefaultScoreWeights(),
		PersistRetryInterval: 500 * time.Millisecond,
	}
}

// Pipeline runs a full corroboration scoring pass: select candidate
// events, correlate each against flights and narrative sources, score,
// and write the results back.
type Pipeline struct {
	repo      ports.GraphRepository
	resolver  *domain.LocationResolver
	spatial   *SpatialCorrelator
	narrative *NarrativeCorrelator
	cfg       Config

	now func() time.Time
}

// NewPipeline wires a pipeline over the given repository with the default
// location tables.
func NewPipeline(repo ports.GraphRepository, cfg Config) *Pipeline {
	return &Pipeline{
		repo:      repo,
		resolver:  domain.NewLocationResolver(),
		spatial:   NewSpatialCorrelator(repo, cfg.Spatial),
		narrative: NewNarrativeCorrelator(repo),
		cfg:       cfg,
		now:       time.Now,
	}
}

// Run executes one scoring pass. Cancelling ctx lets in-flight events
// finish but starts no new one. Per-event failures are accumulated into
// the report; only store unavailability aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	started := p.now()

	if err := p.repo.Ping(ctx); err != nil {
		RecordRun("aborted", p.now().Sub(started))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	cutoff := started.Add(-p.cfg.Lookback)
	events, err := p.repo.FindEventsSince(ctx, cutoff)
	if err != nil {
		RecordRun("aborted", p.now().Sub(started))
		return nil, fmt.Errorf("selecting candidate events: %w", err)
	}

	report := &RunReport{
		RunID:      uuid.NewString(),
		StartedAt:  started.UTC(),
		Candidates: len(events),
	}

	workers := p.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan domain.Event)
	type outcome struct {
		result EventResult
		err    *EventError
	}
	outcomes := make(chan outcome, len(events))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for event := range jobs {
				result, evErr := p.scoreEvent(ctx, event)
				outcomes <- outcome{result: result, err: evErr}
			}
		}()
	}

feed:
	for _, event := range events {
		// Cooperative cancellation: stop feeding, let in-flight events
		// finish.
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- event:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)

	wg.Wait()
	close(outcomes)

	for o := range outcomes {
		if o.err != nil {
			report.Errors = append(report.Errors, *o.err)
			RecordEventError(o.err.Stage)
			continue
		}
		report.Results = append(report.Results, o.result)
		RecordEventScored(o.result.Status, o.result.Score)
	}

	report.finalize()
	report.Duration = p.now().Sub(started)
	RecordRun("completed", report.Duration)
	return report, nil
}

// scoreEvent runs the correlate -> score -> persist steps for one event.
func (p *Pipeline) scoreEvent(ctx context.Context, event domain.Event) (EventResult, *EventError) {
	if event.ID == "" || !domain.ValidCoordinate(event.Lat, event.Lon) {
		return EventResult{}, &EventError{
			EventID: event.ID,
			Stage:   "malformed",
			Message: fmt.Sprintf("invalid coordinates (%v, %v)", event.Lat, event.Lon),
		}
	}

	cell := event.GridLocation
	if cell == "" {
		// The loader normally links events to their grid cell; cover the
		// gap lazily so scoring works on partially linked stores.
		cell = domain.GridCell(event.Lat, event.Lon)
		loc := domain.Location{Name: cell, Lat: math.Round(event.Lat), Lon: math.Round(event.Lon)}
		if err := p.repo.EnsureLocation(ctx, loc); err != nil {
			return EventResult{}, &EventError{EventID: event.ID, Stage: "link", Message: err.Error()}
		}
		if err := p.repo.UpsertRelationship(ctx, event.ID, domain.OccurredIn, cell); err != nil {
			return EventResult{}, &EventError{EventID: event.ID, Stage: "link", Message: err.Error()}
		}
	}

	spatial, err := p.spatial.Correlate(ctx, event)
	if err != nil {
		return EventResult{}, &EventError{EventID: event.ID, Stage: "spatial", Message: err.Error()}
	}

	// Unknown grid cells resolve to no places and thus zero narrative
	// evidence. That is an accepted precision gap, not a failure.
	places := p.resolver.PlacesForGridCell(cell)

	narrative, err := p.narrative.Correlate(ctx, event, places)
	if err != nil {
		return EventResult{}, &EventError{EventID: event.ID, Stage: "narrative", Message: err.Error()}
	}

	score := p.cfg.Weights.Score(spatial, narrative)
	status := p.cfg.Weights.Status(score)

	if err := p.persistScore(ctx, event.ID, score, status); err != nil {
		return EventResult{}, &EventError{EventID: event.ID, Stage: "persist", Message: err.Error()}
	}

	return EventResult{
		EventID:         event.ID,
		GridCell:        cell,
		Score:           score,
		Status:          status,
		Sources:         narrative.Sources,
		TotalFlights:    spatial.Total,
		MilitaryFlights: spatial.Military,
	}, nil
}

// persistScore writes the score back, retrying once with backoff. After
// the retry fails the event is recorded as unscored and the run continues.
func (p *Pipeline) persistScore(ctx context.Context, eventID string, score int, status string) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = p.cfg.PersistRetryInterval

	operation := func() error {
		return p.repo.UpdateEventScore(ctx, eventID, score, status, p.now().UTC())
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, 1), ctx))
	if err != nil {
		return fmt.Errorf("score write-back failed after retry: %w", err)
	}
	return nil
}
