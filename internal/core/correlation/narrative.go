package correlation

import (
	"context"
	"fmt"
	"sort"

	"github.com/hive-corporation/sentinel/internal/core/domain"
	"github.com/hive-corporation/sentinel/internal/core/ports"
)

// NarrativeCorrelator finds articles and posts that mention an event's
// location and links them with corroborates edges.
type NarrativeCorrelator struct {
	repo ports.GraphRepository
}

func NewNarrativeCorrelator(repo ports.GraphRepository) *NarrativeCorrelator {
	return &NarrativeCorrelator{repo: repo}
}

// Correlate tallies corroborating articles (by publishing-source tier) and
// posts (always tier 3) for the given place names. An event with no
// resolvable place names gets all-zero counts: absence of location evidence
// must never be treated as universal corroboration.
func (c *NarrativeCorrelator) Correlate(ctx context.Context, event domain.Event, places []string) (domain.NarrativeEvidence, error) {
	var evidence domain.NarrativeEvidence
	if len(places) == 0 {
		return evidence, nil
	}

	mentions, err := c.repo.FindArticleMentions(ctx, places)
	if err != nil {
		return evidence, fmt.Errorf("article query for event %s: %w", event.ID, err)
	}

	seenArticles := map[string]bool{}
	seenSources := map[string]bool{}

	for _, mention := range mentions {
		if seenArticles[mention.ID] {
			continue
		}
		seenArticles[mention.ID] = true

		if err := c.repo.UpsertRelationship(ctx, mention.ID, domain.Corroborates, event.ID); err != nil {
			return evidence, fmt.Errorf("linking article %s to event %s: %w", mention.ID, event.ID, err)
		}

		switch mention.SourceTier {
		case 1:
			evidence.Tier1++
		case 2:
			evidence.Tier2++
		default:
			evidence.Tier3++
		}
		if mention.SourceName != "" {
			seenSources[mention.SourceName] = true
		}
	}

	posts, err := c.repo.FindPostsContaining(ctx, places)
	if err != nil {
		return evidence, fmt.Errorf("post query for event %s: %w", event.ID, err)
	}

	for _, post := range posts {
		if err := c.repo.UpsertRelationship(ctx, post.ID, domain.Corroborates, event.ID); err != nil {
			return evidence, fmt.Errorf("linking post %s to event %s: %w", post.ID, event.ID, err)
		}
		// Posts count as tier 3 regardless of channel.
		evidence.Tier3++
	}

	for name := range seenSources {
		evidence.Sources = append(evidence.Sources, name)
	}
	sort.Strings(evidence.Sources)

	return evidence, nil
}
