package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/hive-corporation/sentinel/internal/core/correlation"
	"github.com/hive-corporation/sentinel/internal/core/domain"
	"github.com/hive-corporation/sentinel/internal/core/ports"
)

// RunFunc triggers one scoring run over the given lookback window. It is
// the whole operator contract of the correlation engine.
type RunFunc func(ctx context.Context, lookback time.Duration) (*correlation.RunReport, error)

type RestHandler struct {
	repo   ports.GraphRepository
	runner RunFunc
}

func NewRestHandler(repo ports.GraphRepository, runner RunFunc) *RestHandler {
	return &RestHandler{repo: repo, runner: runner}
}

// Health check endpoint
func (h *RestHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "sentinel-api",
	}
	writeJSON(w, http.StatusOK, response)
}

// GetEvent returns one event with its current score and status.
func (h *RestHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing 'id' parameter")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	event, err := h.repo.FindEventByID(ctx, id)
	if err != nil {
		response := map[string]interface{}{
			"exists": false,
			"id":     id,
		}
		writeJSON(w, http.StatusOK, response)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"exists": true,
		"event":  eventJSON(*event),
	})
}

// ListScoredEvents returns scored events ordered by descending confidence.
func (h *RestHandler) ListScoredEvents(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	events, err := h.repo.FindScoredEvents(ctx, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query events")
		return
	}

	results := make([]map[string]interface{}, len(events))
	for i, event := range events {
		results[i] = eventJSON(event)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(results),
		"events": results,
	})
}

// TriggerRun starts a scoring run and returns its report. Lookback
// defaults to 24 hours, overridable with ?lookback_hours=N.
func (h *RestHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	lookback := 24 * time.Hour
	if raw := r.URL.Query().Get("lookback_hours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours < 1 {
			writeError(w, http.StatusBadRequest, "invalid 'lookback_hours' parameter")
			return
		}
		lookback = time.Duration(hours) * time.Hour
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
	defer cancel()

	report, err := h.runner(ctx, lookback)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func eventJSON(event domain.Event) map[string]interface{} {
	out := map[string]interface{}{
		"id":               event.ID,
		"event_code":       event.EventCode,
		"grid_location":    event.GridLocation,
		"confidence_score": event.ConfidenceScore,
		"status":           event.Status,
	}
	// Malformed events carry NaN coordinates, which encoding/json rejects.
	if domain.ValidCoordinate(event.Lat, event.Lon) {
		out["lat"] = event.Lat
		out["lon"] = event.Lon
	}
	if event.Timestamp != nil {
		out["timestamp"] = event.Timestamp.Format(time.RFC3339)
	}
	if event.ScoredAt != nil {
		out["scored_at"] = event.ScoredAt.Format(time.RFC3339)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
