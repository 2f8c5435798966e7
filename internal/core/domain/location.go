package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// GridTable maps coarse grid-cell ids to the human-readable place names the
// cell covers. Hand-curated; cells outside the table resolve to nothing,
// which means events there score with zero narrative evidence.
type GridTable map[string][]string

// KeywordTable maps lower-case text keywords to canonical place names,
// used to tag free text with locations.
type KeywordTable map[string]string

// GridCell buckets a coordinate into a Grid_{lat}_{lon} cell id.
// Coordinates are rounded half away from zero (math.Round); the exact
// rounding mode only matters for determinism, not geographic precision.
func GridCell(lat, lon float64) string {
	return fmt.Sprintf("Grid_%d_%d", int(math.Round(lat)), int(math.Round(lon)))
}

// LocationResolver resolves coordinates and free text to place names using
// injectable lookup tables.
type LocationResolver struct {
	Grid     GridTable
	Keywords KeywordTable
}

// NewLocationResolver returns a resolver over the default curated tables.
func NewLocationResolver() *LocationResolver {
	return &LocationResolver{
		Grid:     DefaultGridTable(),
		Keywords: DefaultKeywordTable(),
	}
}

// PlacesForGridCell returns the place names covered by a grid cell, or nil
// for unmapped cells.
func (r *LocationResolver) PlacesForGridCell(cell string) []string {
	if cell == "" {
		return nil
	}
	return r.Grid[cell]
}

// PlacesForCoordinate buckets a coordinate and resolves its grid cell.
func (r *LocationResolver) PlacesForCoordinate(lat, lon float64) []string {
	return r.PlacesForGridCell(GridCell(lat, lon))
}

// PlacesFromKeywords returns the distinct canonical place names whose
// keywords occur as substrings of text, case-insensitively. Result is
// sorted so callers see a stable order across runs.
func (r *LocationResolver) PlacesFromKeywords(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)

	found := map[string]bool{}
	for keyword, place := range r.Keywords {
		if strings.Contains(lower, keyword) {
			found[place] = true
		}
	}
	if len(found) == 0 {
		return nil
	}

	places := make([]string, 0, len(found))
	for place := range found {
		places = append(places, place)
	}
	sort.Strings(places)
	return places
}

// DefaultGridTable covers the Eastern Mediterranean area of interest.
func DefaultGridTable() GridTable {
	return GridTable{
		// Israel
		"Grid_32_35": {"Israel", "Tel Aviv", "Jerusalem", "West Bank"},
		"Grid_31_35": {"Israel", "Jerusalem", "Gaza"},
		"Grid_32_34": {"Israel", "Tel Aviv"},
		// Lebanon
		"Grid_34_36": {"Lebanon", "Beirut"},
		"Grid_33_36": {"Lebanon"},
		"Grid_34_35": {"Lebanon", "Golan Heights"},
		// Syria
		"Grid_35_36": {"Syria", "Damascus"},
		"Grid_35_37": {"Syria"},
		"Grid_36_37": {"Syria", "Aleppo"},
		"Grid_36_36": {"Syria", "Idlib"},
		// Gaza
		"Grid_31_34": {"Gaza", "Palestine"},
		// Jordan
		"Grid_32_36": {"Jordan"},
		"Grid_31_36": {"Jordan"},
	}
}

// DefaultKeywordTable maps text keywords to canonical place names.
func DefaultKeywordTable() KeywordTable {
	return KeywordTable{
		// Countries
		"israel":      "Israel",
		"israeli":     "Israel",
		"palestine":   "Palestine",
		"palestinian": "Palestine",
		"gaza":        "Gaza",
		"lebanon":     "Lebanon",
		"lebanese":    "Lebanon",
		"hezbollah":   "Lebanon",
		"syria":       "Syria",
		"syrian":      "Syria",
		"damascus":    "Syria",
		"iran":        "Iran",
		"iranian":     "Iran",
		"tehran":      "Iran",
		"iraq":        "Iraq",
		"iraqi":       "Iraq",
		"jordan":      "Jordan",
		"egypt":       "Egypt",
		"egyptian":    "Egypt",
		"saudi":       "Saudi Arabia",
		"yemen":       "Yemen",
		"houthi":      "Yemen",
		// Cities/Regions
		"tel aviv":  "Tel Aviv",
		"jerusalem": "Jerusalem",
		"west bank": "West Bank",
		"beirut":    "Beirut",
		"aleppo":    "Aleppo",
		"idlib":     "Idlib",
		"golan":     "Golan Heights",
	}
}
