package correlation

import (
	"sort"
	"time"

	"github.com/hive-corporation/sentinel/internal/core/domain"
)

// EventResult is one scored event in a run report.
type EventResult struct {
	EventID         string   `json:"event_id"`
	GridCell        string   `json:"grid_cell,omitempty"`
	Score           int      `json:"score"`
	Status          string   `json:"status"`
	Sources         []string `json:"sources,omitempty"`
	TotalFlights    int      `json:"total_flights"`
	MilitaryFlights int      `json:"military_flights"`
}

// EventError records a per-event failure. Errors are accumulated into the
// report instead of aborting the run.
type EventError struct {
	EventID string `json:"event_id"`
	Stage   string `json:"stage"` // malformed, link, spatial, narrative, persist
	Message string `json:"message"`
}

// RunReport is the outcome of one scoring run.
type RunReport struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
	Candidates int           `json:"candidates"`

	Confirmed  int `json:"confirmed"`
	Plausible  int `json:"plausible"`
	Unverified int `json:"unverified"`

	// Results holds every scored event, sorted by descending score.
	Results []EventResult `json:"results"`
	Errors  []EventError  `json:"errors,omitempty"`
}

// Scored returns the number of events that made it through to a score.
func (r *RunReport) Scored() int {
	return len(r.Results)
}

// finalize sorts results by descending score (ties by event id for a
// stable table) and fills the per-status totals.
func (r *RunReport) finalize() {
	sort.Slice(r.Results, func(i, j int) bool {
		if r.Results[i].Score != r.Results[j].Score {
			return r.Results[i].Score > r.Results[j].Score
		}
		return r.Results[i].EventID < r.Results[j].EventID
	})

	r.Confirmed, r.Plausible, r.Unverified = 0, 0, 0
	for _, res := range r.Results {
		switch res.Status {
		case domain.StatusConfirmed:
			r.Confirmed++
		case domain.StatusPlausible:
			r.Plausible++
		default:
			r.Unverified++
		}
	}
}
