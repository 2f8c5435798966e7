package domain

// SpatialEvidence summarizes flight correlation for one event.
type SpatialEvidence struct {
	Total    int // flights within the radius/window
	Military int // subset tagged as military proxies
}

// NarrativeEvidence summarizes article/post correlation for one event,
// tallied by the tier of the publishing source. Posts always land in Tier3.
type NarrativeEvidence struct {
	Tier1   int
	Tier2   int
	Tier3   int
	Sources []string
}

// ScoreWeights holds the tunable scoring constants. Tier 1/2 contributions
// are boolean on purpose: counting every syndicated copy of a wire story
// would reward fake consensus. Tier 3 is linear but capped so that no
// volume of unverified posts can alone push an event past Plausible.
type ScoreWeights struct {
	Tier1Source    int
	Tier2Source    int
	Tier3Source    int // per source
	Tier3Cap       int
	MilitaryFlight int

	UnverifiedBelow int // score below this = Unverified
	PlausibleBelow  int // score below this (but >= UnverifiedBelow) = Plausible
}

// DefaultScoreWeights returns the reference scoring constants.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Tier1Source:     20,
		Tier2Source:     10,
		Tier3Source:     5,
		Tier3Cap:        30,
		MilitaryFlight:  40,
		UnverifiedBelow: 30,
		PlausibleBelow:  60,
	}
}

// Score combines spatial and narrative evidence into a confidence score.
// Pure function with no I/O dependencies; result is always in [0, 100].
func (w ScoreWeights) Score(spatial SpatialEvidence, narrative NarrativeEvidence) int {
	score := 0

	if narrative.Tier1 > 0 {
		score += w.Tier1Source
	}
	if narrative.Tier2 > 0 {
		score += w.Tier2Source
	}

	tier3 := narrative.Tier3 * w.Tier3Source
	if tier3 > w.Tier3Cap {
		tier3 = w.Tier3Cap
	}
	score += tier3

	// A corroborating military-proxy flight is the hardest signal to
	// fabricate cheaply and outweighs all narrative evidence combined.
	if spatial.Military > 0 {
		score += w.MilitaryFlight
	}

	if score > 100 {
		score = 100
	}
	return score
}

// Status classifies a confidence score. Deterministic in the score alone.
func (w ScoreWeights) Status(score int) string {
	switch {
	case score < w.UnverifiedBelow:
		return StatusUnverified
	case score < w.PlausibleBelow:
		return StatusPlausible
	default:
		return StatusConfirmed
	}
}
