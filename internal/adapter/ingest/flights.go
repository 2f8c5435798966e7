package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/hive-corporation/sentinel/internal/core/domain"
	"github.com/hive-corporation/sentinel/internal/core/ports"
)

// FlightFeed parses the flight collector's output (flight_radar.json):
// one state vector per aircraft, pre-tagged by the collector when the
// altitude/speed profile looks military.
type FlightFeed struct {
	path string
}

func NewFlightFeed(path string) *FlightFeed {
	return &FlightFeed{path: path}
}

func (f *FlightFeed) Name() string {
	return "flight-radar"
}

type flightDocument struct {
	Aircraft []flightRecord `json:"aircraft"`
}

type flightRecord struct {
	ICAO24        string   `json:"icao24"`
	Callsign      string   `json:"callsign"`
	OriginCountry string   `json:"origin_country"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	GeoAltitude   *float64 `json:"geo_altitude"`
	Velocity      *float64 `json:"velocity"`
	Tag           *string  `json:"tag"`
	OnGround      bool     `json:"on_ground"`
	LastContact   string   `json:"last_contact"`
}

func (f *FlightFeed) Load(ctx context.Context) (*ports.GraphBatch, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flight feed: %w", err)
	}

	var doc flightDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse flight feed: %w", err)
	}

	batch := &ports.GraphBatch{}
	seenLocations := map[string]bool{}

	for _, rec := range doc.Aircraft {
		if rec.ICAO24 == "" || !domain.ValidCoordinate(rec.Latitude, rec.Longitude) {
			continue
		}

		flight := domain.Flight{
			ICAO24:        rec.ICAO24,
			Callsign:      rec.Callsign,
			OriginCountry: rec.OriginCountry,
			Latitude:      rec.Latitude,
			Longitude:     rec.Longitude,
			OnGround:      rec.OnGround,
			LastContact:   parseFeedTime(rec.LastContact),
		}
		if rec.GeoAltitude != nil {
			flight.GeoAltitude = *rec.GeoAltitude
		}
		if rec.Velocity != nil {
			flight.Velocity = *rec.Velocity
		}
		if rec.Tag != nil {
			flight.Tag = *rec.Tag
		}
		batch.Flights = append(batch.Flights, flight)

		cell := domain.GridCell(rec.Latitude, rec.Longitude)
		if !seenLocations[cell] {
			seenLocations[cell] = true
			batch.Locations = append(batch.Locations, domain.Location{
				Name: cell,
				Lat:  math.Round(rec.Latitude),
				Lon:  math.Round(rec.Longitude),
			})
		}
		batch.Edges = append(batch.Edges, ports.Edge{
			FromID: rec.ICAO24, Kind: domain.Patrolling, ToID: cell,
		})
	}

	return batch, nil
}
