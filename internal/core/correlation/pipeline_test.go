package correlation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/hive-corporation/sentinel/internal/core/domain"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.PersistRetryInterval = time.Millisecond
	return cfg
}

func findResult(t *testing.T, report *RunReport, eventID string) EventResult {
	t.Helper()
	for _, r := range report.Results {
		if r.EventID == eventID {
			return r
		}
	}
	t.Fatalf("event %s not in results: %+v", eventID, report.Results)
	return EventResult{}
}

// Scenario: an undated event with a military-proxy flight nearby scores 40
// and lands at least at Plausible.
func TestPipelineMilitaryFlightScenario(t *testing.T) {
	repo := newMemRepo()
	repo.addEvent(domain.Event{ID: "ev1", Lat: 34.0, Lon: 33.5})
	repo.flights = []domain.Flight{
		{ICAO24: "abc123", Latitude: 34.02, Longitude: 33.51, Tag: domain.MilitaryProxyTag},
	}

	report, err := NewPipeline(repo, testConfig()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	result := findResult(t, report, "ev1")
	if result.MilitaryFlights != 1 {
		t.Errorf("MilitaryFlights = %d, want 1", result.MilitaryFlights)
	}
	if result.Score < 40 {
		t.Errorf("Score = %d, want >= 40", result.Score)
	}
	if result.Status != domain.StatusPlausible && result.Status != domain.StatusConfirmed {
		t.Errorf("Status = %q, want at least Plausible", result.Status)
	}
}

// Scenario: a tier-1 article and 7 posts mentioning Lebanon score
// 20 + min(35, 30) = 50, Plausible.
func TestPipelineNarrativeScenario(t *testing.T) {
	repo := newMemRepo()
	// (33.2, 36.4) rounds to Grid_33_36 which maps to Lebanon.
	repo.addEvent(domain.Event{ID: "ev1", Lat: 33.2, Lon: 36.4})
	repo.mentions = []domain.ArticleMention{
		{Article: domain.Article{ID: "a1", SourceName: "npr"}, SourceTier: 1, Place: "Lebanon"},
	}
	for i := 0; i < 7; i++ {
		repo.posts = append(repo.posts, domain.Post{
			ID:   fmt.Sprintf("p%d", i),
			Text: "shelling reported in Lebanon",
		})
	}

	report, err := NewPipeline(repo, testConfig()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	result := findResult(t, report, "ev1")
	if result.Score != 50 {
		t.Errorf("Score = %d, want 50", result.Score)
	}
	if result.Status != domain.StatusPlausible {
		t.Errorf("Status = %q, want Plausible", result.Status)
	}
	if len(result.Sources) != 1 || result.Sources[0] != "npr" {
		t.Errorf("Sources = %v, want [npr]", result.Sources)
	}
}

// Scenario: an event outside the curated grid table with no matches scores
// zero and stays Unverified.
func TestPipelineUnresolvableLocationScenario(t *testing.T) {
	repo := newMemRepo()
	repo.addEvent(domain.Event{ID: "ev1", Lat: 10.0, Lon: 10.0})
	repo.posts = []domain.Post{{ID: "p1", Text: "chatter about lebanon"}}

	report, err := NewPipeline(repo, testConfig()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	result := findResult(t, report, "ev1")
	if result.Score != 0 {
		t.Errorf("Score = %d, want 0", result.Score)
	}
	if result.Status != domain.StatusUnverified {
		t.Errorf("Status = %q, want Unverified", result.Status)
	}
	if result.GridCell != "Grid_10_10" {
		t.Errorf("GridCell = %q, want Grid_10_10", result.GridCell)
	}
}

func TestPipelineIdempotentReruns(t *testing.T) {
	repo := newMemRepo()
	repo.addEvent(domain.Event{ID: "ev1", Lat: 33.2, Lon: 36.4})
	repo.addEvent(domain.Event{ID: "ev2", Lat: 34.0, Lon: 33.5})
	repo.mentions = []domain.ArticleMention{
		{Article: domain.Article{ID: "a1", SourceName: "npr"}, SourceTier: 1, Place: "Lebanon"},
	}
	repo.flights = []domain.Flight{
		{ICAO24: "f1", Latitude: 34.01, Longitude: 33.5, Tag: domain.MilitaryProxyTag},
	}

	pipeline := NewPipeline(repo, testConfig())

	first, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	edgesAfterFirst := len(repo.edges)

	second, err := pipeline.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if len(first.Results) != len(second.Results) {
		t.Fatalf("result counts differ: %d vs %d", len(first.Results), len(second.Results))
	}
	for i := range first.Results {
		a, b := first.Results[i], second.Results[i]
		if a.EventID != b.EventID || a.Score != b.Score || a.Status != b.Status {
			t.Errorf("rerun drift: %+v vs %+v", a, b)
		}
	}
	if len(repo.edges) != edgesAfterFirst {
		t.Errorf("edges grew on rerun: %d vs %d", len(repo.edges), edgesAfterFirst)
	}
}

func TestPipelineSkipsMalformedEvents(t *testing.T) {
	repo := newMemRepo()
	repo.addEvent(domain.Event{ID: "bad", Lat: math.NaN(), Lon: 35.0})
	repo.addEvent(domain.Event{ID: "worse", Lat: 95.0, Lon: 200.0})
	repo.addEvent(domain.Event{ID: "good", Lat: 33.2, Lon: 36.4})

	report, err := NewPipeline(repo, testConfig()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Scored() != 1 {
		t.Errorf("Scored() = %d, want 1", report.Scored())
	}
	if len(report.Errors) != 2 {
		t.Fatalf("Errors = %+v, want 2 entries", report.Errors)
	}
	for _, e := range report.Errors {
		if e.Stage != "malformed" {
			t.Errorf("error stage = %q, want malformed", e.Stage)
		}
	}
	findResult(t, report, "good")
}

func TestPipelineStoreUnavailableIsFatal(t *testing.T) {
	repo := newMemRepo()
	repo.addEvent(domain.Event{ID: "ev1", Lat: 33.2, Lon: 36.4})
	repo.pingErr = errors.New("connection refused")

	_, err := NewPipeline(repo, testConfig()).Run(context.Background())
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Run() error = %v, want ErrStoreUnavailable", err)
	}
}

func TestPipelinePersistRetry(t *testing.T) {
	repo := newMemRepo()
	repo.addEvent(domain.Event{ID: "flaky", Lat: 33.2, Lon: 36.4})
	repo.addEvent(domain.Event{ID: "broken", Lat: 33.2, Lon: 36.4})
	repo.persistFails["flaky"] = 1  // first write fails, retry succeeds
	repo.persistFails["broken"] = 2 // both attempts fail

	report, err := NewPipeline(repo, testConfig()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	findResult(t, report, "flaky")

	if len(report.Errors) != 1 {
		t.Fatalf("Errors = %+v, want exactly the broken event", report.Errors)
	}
	if report.Errors[0].EventID != "broken" || report.Errors[0].Stage != "persist" {
		t.Errorf("error = %+v, want broken/persist", report.Errors[0])
	}
}

func TestPipelineCancellationStartsNoNewEvents(t *testing.T) {
	repo := newMemRepo()
	for _, id := range []string{"a", "b", "c", "d"} {
		repo.addEvent(domain.Event{ID: id, Lat: 33.2, Lon: 36.4})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewPipeline(repo, testConfig()).Run(ctx)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Scored() != 0 {
		t.Errorf("Scored() = %d, want 0 after pre-run cancellation", report.Scored())
	}
}

func TestPipelineLookbackKeepsUndatedEvents(t *testing.T) {
	repo := newMemRepo()
	old := time.Now().UTC().Add(-72 * time.Hour)
	recent := time.Now().UTC().Add(-time.Hour)
	repo.addEvent(domain.Event{ID: "old", Timestamp: &old, Lat: 33.2, Lon: 36.4})
	repo.addEvent(domain.Event{ID: "recent", Timestamp: &recent, Lat: 33.2, Lon: 36.4})
	repo.addEvent(domain.Event{ID: "undated", Lat: 33.2, Lon: 36.4})

	report, err := NewPipeline(repo, testConfig()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Scored() != 2 {
		t.Errorf("Scored() = %d, want 2 (recent + undated)", report.Scored())
	}
	findResult(t, report, "recent")
	findResult(t, report, "undated")
}

func TestPipelineWorkerPoolMatchesSequential(t *testing.T) {
	build := func() *memRepo {
		repo := newMemRepo()
		repo.addEvent(domain.Event{ID: "ev1", Lat: 33.2, Lon: 36.4})
		repo.addEvent(domain.Event{ID: "ev2", Lat: 34.0, Lon: 33.5})
		repo.addEvent(domain.Event{ID: "ev3", Lat: 31.3, Lon: 34.3})
		repo.mentions = []domain.ArticleMention{
			{Article: domain.Article{ID: "a1", SourceName: "bbc"}, SourceTier: 1, Place: "Lebanon"},
			{Article: domain.Article{ID: "a2", SourceName: "aljazeera"}, SourceTier: 2, Place: "Gaza"},
		}
		repo.flights = []domain.Flight{
			{ICAO24: "f1", Latitude: 34.01, Longitude: 33.5, Tag: domain.MilitaryProxyTag},
		}
		return repo
	}

	seqCfg := testConfig()
	seqReport, err := NewPipeline(build(), seqCfg).Run(context.Background())
	if err != nil {
		t.Fatalf("sequential Run() error = %v", err)
	}

	parCfg := testConfig()
	parCfg.Workers = 4
	parReport, err := NewPipeline(build(), parCfg).Run(context.Background())
	if err != nil {
		t.Fatalf("parallel Run() error = %v", err)
	}

	if len(seqReport.Results) != len(parReport.Results) {
		t.Fatalf("result counts differ: %d vs %d", len(seqReport.Results), len(parReport.Results))
	}
	for i := range seqReport.Results {
		a, b := seqReport.Results[i], parReport.Results[i]
		if a.EventID != b.EventID || a.Score != b.Score || a.Status != b.Status {
			t.Errorf("fan-out drift at %d: %+v vs %+v", i, a, b)
		}
	}
}

func TestPipelineReportTotalsAndOrder(t *testing.T) {
	repo := newMemRepo()
	repo.addEvent(domain.Event{ID: "confirmed", Lat: 33.2, Lon: 36.4})
	repo.addEvent(domain.Event{ID: "zero", Lat: 10.0, Lon: 10.0})
	repo.mentions = []domain.ArticleMention{
		{Article: domain.Article{ID: "a1", SourceName: "npr"}, SourceTier: 1, Place: "Lebanon"},
	}
	repo.flights = []domain.Flight{
		{ICAO24: "f1", Latitude: 33.21, Longitude: 36.41, Tag: domain.MilitaryProxyTag},
	}

	report, err := NewPipeline(repo, testConfig()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Military (40) + tier1 (20) = 60 -> Confirmed; the other event is 0.
	if report.Confirmed != 1 || report.Unverified != 1 || report.Plausible != 0 {
		t.Errorf("totals = %d/%d/%d (confirmed/plausible/unverified), want 1/0/1",
			report.Confirmed, report.Plausible, report.Unverified)
	}
	if report.Results[0].EventID != "confirmed" {
		t.Errorf("results not sorted by descending score: %+v", report.Results)
	}
	if report.RunID == "" {
		t.Error("RunID is empty")
	}
}
