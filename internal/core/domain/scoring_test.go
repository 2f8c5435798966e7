package domain

import "testing"

func TestScoreBounds(t *testing.T) {
	w := DefaultScoreWeights()

	tests := []struct {
		name      string
		spatial   SpatialEvidence
		narrative NarrativeEvidence
	}{
		{"no_evidence", SpatialEvidence{}, NarrativeEvidence{}},
		{"everything", SpatialEvidence{Total: 50, Military: 50}, NarrativeEvidence{Tier1: 100, Tier2: 100, Tier3: 100}},
		{"tier3_swarm", SpatialEvidence{}, NarrativeEvidence{Tier3: 100000}},
		{"negative_free", SpatialEvidence{Total: 3}, NarrativeEvidence{Tier2: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := w.Score(tt.spatial, tt.narrative)
			if score < 0 || score > 100 {
				t.Errorf("Score() = %d, want within [0, 100]", score)
			}
		})
	}
}

func TestScoreTier3Cap(t *testing.T) {
	w := DefaultScoreWeights()

	// An unlimited number of unverified posts can never alone push an
	// event past Plausible.
	if got := w.Score(SpatialEvidence{}, NarrativeEvidence{Tier3: 1000}); got != 30 {
		t.Errorf("Score(tier3=1000) = %d, want 30", got)
	}
	if got := w.Score(SpatialEvidence{}, NarrativeEvidence{Tier3: 6}); got != 30 {
		t.Errorf("Score(tier3=6) = %d, want 30", got)
	}
	if got := w.Score(SpatialEvidence{}, NarrativeEvidence{Tier3: 2}); got != 10 {
		t.Errorf("Score(tier3=2) = %d, want 10", got)
	}
}

func TestScoreMilitaryFlightDominates(t *testing.T) {
	w := DefaultScoreWeights()

	if got := w.Score(SpatialEvidence{Total: 1, Military: 1}, NarrativeEvidence{}); got != 40 {
		t.Errorf("Score(military=1, no narrative) = %d, want 40", got)
	}

	// Non-military flights contribute nothing on their own.
	if got := w.Score(SpatialEvidence{Total: 12}, NarrativeEvidence{}); got != 0 {
		t.Errorf("Score(total=12, military=0) = %d, want 0", got)
	}
}

func TestScoreTierContributionsAreBoolean(t *testing.T) {
	w := DefaultScoreWeights()

	// Syndicated copies of the same wire story must not stack.
	one := w.Score(SpatialEvidence{}, NarrativeEvidence{Tier1: 1})
	many := w.Score(SpatialEvidence{}, NarrativeEvidence{Tier1: 40})
	if one != many || one != 20 {
		t.Errorf("tier1 contribution: one=%d many=%d, want both 20", one, many)
	}

	if got := w.Score(SpatialEvidence{}, NarrativeEvidence{Tier2: 9}); got != 10 {
		t.Errorf("Score(tier2=9) = %d, want 10", got)
	}
}

func TestScoreCombined(t *testing.T) {
	w := DefaultScoreWeights()

	// Tier 1 article plus 7 posts: 20 + min(35, 30) = 50.
	got := w.Score(SpatialEvidence{}, NarrativeEvidence{Tier1: 1, Tier3: 7})
	if got != 50 {
		t.Errorf("Score(tier1=1, tier3=7) = %d, want 50", got)
	}

	// Everything at once still caps at 100.
	got = w.Score(SpatialEvidence{Military: 3}, NarrativeEvidence{Tier1: 2, Tier2: 4, Tier3: 50})
	if got != 100 {
		t.Errorf("Score(all signals) = %d, want 100", got)
	}
}

func TestStatusBoundaries(t *testing.T) {
	w := DefaultScoreWeights()

	tests := []struct {
		score int
		want  string
	}{
		{0, StatusUnverified},
		{29, StatusUnverified},
		{30, StatusPlausible},
		{59, StatusPlausible},
		{60, StatusConfirmed},
		{100, StatusConfirmed},
	}

	for _, tt := range tests {
		if got := w.Status(tt.score); got != tt.want {
			t.Errorf("Status(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
