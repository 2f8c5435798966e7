package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hive-corporation/sentinel/internal/core/domain"
	"github.com/hive-corporation/sentinel/internal/core/ports"
)

// NewsFeed parses the news collector's output (news_feed.json): articles
// with their publishing source's tier. Location mentions are resolved here
// from title + summary with the keyword table, so the correlator can join
// articles to events purely through mention edges.
type NewsFeed struct {
	path     string
	resolver *domain.LocationResolver
}

func NewNewsFeed(path string, resolver *domain.LocationResolver) *NewsFeed {
	if resolver == nil {
		resolver = domain.NewLocationResolver()
	}
	return &NewsFeed{path: path, resolver: resolver}
}

func (f *NewsFeed) Name() string {
	return "news-articles"
}

type newsDocument struct {
	Articles []articleRecord `json:"articles"`
}

type articleRecord struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	Link         string `json:"link"`
	PublishedUTC string `json:"published_utc"`
	SourceID     string `json:"source_id"`
	SourceTier   int    `json:"source_tier"`
	SourceType   string `json:"source_type"`
}

func (f *NewsFeed) Load(ctx context.Context) (*ports.GraphBatch, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read news feed: %w", err)
	}

	var doc newsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse news feed: %w", err)
	}

	batch := &ports.GraphBatch{}
	seenSources := map[string]bool{}
	seenLocations := map[string]bool{}

	for _, rec := range doc.Articles {
		if rec.ID == "" {
			continue
		}

		if rec.SourceID != "" && !seenSources[rec.SourceID] {
			seenSources[rec.SourceID] = true
			batch.Sources = append(batch.Sources, domain.Source{
				Name: rec.SourceID,
				Tier: rec.SourceTier,
				Type: rec.SourceType,
			})
		}

		batch.Articles = append(batch.Articles, domain.Article{
			ID:           rec.ID,
			Title:        rec.Title,
			Summary:      rec.Summary,
			Link:         rec.Link,
			PublishedUTC: parseFeedTime(rec.PublishedUTC),
			SourceName:   rec.SourceID,
		})

		if rec.SourceID != "" {
			batch.Edges = append(batch.Edges, ports.Edge{
				FromID: rec.SourceID, Kind: domain.Published, ToID: rec.ID,
			})
		}

		for _, place := range f.resolver.PlacesFromKeywords(rec.Title + " " + rec.Summary) {
			if !seenLocations[place] {
				seenLocations[place] = true
				batch.Locations = append(batch.Locations, domain.Location{Name: place})
			}
			batch.Edges = append(batch.Edges, ports.Edge{
				FromID: rec.ID, Kind: domain.Mentions, ToID: place,
			})
		}
	}

	return batch, nil
}
