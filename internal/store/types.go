package store

// Session identifies one play-through.
type Session struct {
	ID         string
	Seed       int64
	Difficulty string
	StartPack  string
}

// Round is the journal record of one completed round.
type Round struct {
	SessionID string
	Number    int64
	Money     float64
	Stage     int
	Complete  bool
	Values    []Value
	Entries   []Entry
}

// Value is an active tradeable's state at the end of a round.
type Value struct {
	Tradeable string
	Value     float64
	Shares    int
}

// Entry is one thing that happened during a round.
type Entry struct {
	Kind    string
	Subject string
	Detail  string
	Amount  float64
}

// Entry kinds written by the engine.
const (
	KindAdmitted    = "admitted"
	KindSuccessor   = "successor"
	KindExpired     = "expired"
	KindInfluence   = "influence"
	KindWalk        = "walk"
	KindLevelPassed = "level_passed"
	KindLevelStart  = "level_started"
	KindComplete    = "campaign_complete"
)
