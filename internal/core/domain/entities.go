package domain

import "time"

// RelKind identifies a directed relationship between two graph entities.
type RelKind string

const (
	// DetectedNear links a Flight to an Event it was observed close to.
	DetectedNear RelKind = "detected_near"
	// Corroborates links an Article or Post to an Event it supports.
	Corroborates RelKind = "corroborates"
	// Published links a Source to an Article it published.
	Published RelKind = "published"
	// Posted links a Channel to a Post it carried.
	Posted RelKind = "posted"
	// OccurredIn links an Event to its grid-cell Location.
	OccurredIn RelKind = "occurred_in"
	// Mentions links an Article to a Location found in its text.
	Mentions RelKind = "mentions"
	// Patrolling links a Flight to the grid-cell Location of its last fix.
	Patrolling RelKind = "patrolling"
)

// Event status labels derived from the confidence score.
const (
	StatusUnverified = "Unverified"
	StatusPlausible  = "Plausible"
	StatusConfirmed  = "Confirmed"
)

// MilitaryProxyTag marks flights whose altitude/speed profile is consistent
// with military aircraft (heuristic set by the flight collector).
const MilitaryProxyTag = "high_altitude_fast"

// Event is a detected kinetic/conflict occurrence from the event collector.
// ConfidenceScore, Status and ScoredAt are owned by the correlation engine
// and overwritten on every scoring run; all other fields are read-only here.
type Event struct {
	ID        string
	Timestamp *time.Time // may be absent for noisy feeds
	Lat       float64
	Lon       float64
	EventCode string
	Actor1    string
	Actor2    string
	SourceURL string

	GridLocation string // name of the linked occurred_in Location, if any

	ConfidenceScore int
	Status          string
	ScoredAt        *time.Time
}

// Flight is one aircraft position sample from the flight collector.
type Flight struct {
	ICAO24        string
	Callsign      string
	OriginCountry string
	Latitude      float64
	Longitude     float64
	GeoAltitude   float64
	Velocity      float64
	Tag           string     // MilitaryProxyTag or empty
	OnGround      bool
	LastContact   *time.Time // absent when the feed carried no fix time
}

// IsMilitaryProxy reports whether the collector flagged this aircraft's
// altitude/speed profile as consistent with a military jet.
func (f Flight) IsMilitaryProxy() bool {
	return f.Tag == MilitaryProxyTag
}

// Article is a news item from the news collector.
type Article struct {
	ID           string // content-addressed by the collector
	Title        string
	Summary      string
	Link         string
	PublishedUTC *time.Time
	SourceName   string
}

// ArticleMention is an Article matched through a mentions edge, carrying
// the tier of its publishing source for scoring.
type ArticleMention struct {
	Article
	SourceTier int
	Place      string // the Location name that produced the match
}

// Post is a social-channel message from the social collector.
type Post struct {
	ID          string // composite channel + message id
	ChannelName string
	Text        string
	Date        *time.Time
}

// Source is a news publisher. Tier ranks independence/reliability:
// 1 = wire service / primary, 2 = mainstream international, 3 = local or
// state-affiliated. Tier drives the scoring weight of its articles.
type Source struct {
	Name string
	Tier int
	Type string
}

// Channel is a social-channel publisher. Channels carry no tier; their
// posts always score as tier 3.
type Channel struct {
	Name string
}

// Location is a coarse geography bucket: either a grid-cell id
// (Grid_{lat}_{lon}) or a canonical place name. It is the join key between
// spatially-described and textually-described entities.
type Location struct {
	Name string
	Lat  float64
	Lon  float64
}
