package content

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Kind is a top-level record list.
type Kind string

const (
	KindEnvironment Kind = "environments"
	KindTradeable   Kind = "tradeables"
	KindEvent       Kind = "events"
	KindPack        Kind = "packs"
)

// Kinds lists the record kinds in install order.
var Kinds = []Kind{KindEnvironment, KindTradeable, KindEvent, KindPack}

// Range is an inclusive float interval.
type Range struct {
	Bottom float64 `json:"bottom"`
	Top    float64 `json:"top"`
}

// IntRange is an inclusive integer interval.
type IntRange struct {
	Bottom int `json:"bottom"`
	Top    int `json:"top"`
}

// EnvironmentRecord declares an environment and its outgoing links.
type EnvironmentRecord struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Rank        string   `json:"rank"`
	Links       []string `json:"links,omitempty"`
}

// TradeableRecord declares a tradeable and the environments owning it.
type TradeableRecord struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Value       Range    `json:"value"`
	Influence   Range    `json:"influence"`
	Shares      IntRange `json:"shares"`
	Owners      []string `json:"owners,omitempty"`
}

// AdmissionRecord is a main event's pressure index.
type AdmissionRecord struct {
	Init      IntRange `json:"init"`
	Step      IntRange `json:"step"`
	Ceiling   int      `json:"ceiling"`
	Threshold int      `json:"threshold"`
}

// GroupRecord is an influence group inside an event.
type GroupRecord struct {
	Name     string   `json:"name"`
	Percent  Range    `json:"percent"`
	Positive bool     `json:"positive,omitempty"`
	Members  []string `json:"members"`
}

// EventRecord declares an event. Events with admission data are main events.
type EventRecord struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Priority    string             `json:"priority"`
	Rounds      IntRange           `json:"rounds"`
	Admission   *AdmissionRecord   `json:"admission,omitempty"`
	Groups      []GroupRecord      `json:"groups,omitempty"`
	Effects     map[string]float64 `json:"effects,omitempty"`
	Successors  []string           `json:"successors,omitempty"`
	HasOptions  bool               `json:"has_options,omitempty"`
}

// GoalRecord is a level goal. An empty goal is never reached.
type GoalRecord struct {
	MoneyAtLeast *float64 `json:"money_at_least,omitempty"`
}

// AwardRecord is what passing a level confers.
type AwardRecord struct {
	Money float64 `json:"money,omitempty"`
}

// LevelRecord declares a level inside a pack.
type LevelRecord struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Goal        GoalRecord  `json:"goal"`
	Award       AwardRecord `json:"award"`
	Events      []string    `json:"events,omitempty"`
	Tradeables  []string    `json:"tradeables,omitempty"`
	Successors  []string    `json:"successors,omitempty"`
	HasOptions  bool        `json:"has_options,omitempty"`
}

// PackRecord declares a level pack.
type PackRecord struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Nation      string        `json:"nation,omitempty"`
	Stage       int           `json:"stage"`
	HasOption   bool          `json:"has_option,omitempty"`
	Events      []string      `json:"events,omitempty"`
	Tradeables  []string      `json:"tradeables,omitempty"`
	FirstLevels []string      `json:"first_levels"`
	Levels      []LevelRecord `json:"levels"`
}

// RecordError reports one skipped record.
type RecordError struct {
	File  string
	Kind  Kind
	Index int
	Name  string
	Err   error
}

func (e *RecordError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s[%d] %q: %v", e.File, e.Kind, e.Index, e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %s[%d]: %v", e.File, e.Kind, e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// source locates a record for error reporting.
type source struct {
	file  string
	index int
}

func (s source) errorf(kind Kind, name, format string, args ...any) *RecordError {
	return &RecordError{File: s.file, Kind: kind, Index: s.index, Name: name, Err: fmt.Errorf(format, args...)}
}

func normalize(s string) string {
	return norm.NFC.String(s)
}

func normalizeAll(names []string) []string {
	for i, n := range names {
		names[i] = normalize(n)
	}
	return names
}

func (r *EnvironmentRecord) normalize() {
	r.Name = normalize(r.Name)
	r.Links = normalizeAll(r.Links)
}

func (r *TradeableRecord) normalize() {
	r.Name = normalize(r.Name)
	r.Owners = normalizeAll(r.Owners)
}

func (r *EventRecord) normalize() {
	r.Name = normalize(r.Name)
	r.Successors = normalizeAll(r.Successors)
	for i := range r.Groups {
		r.Groups[i].Members = normalizeAll(r.Groups[i].Members)
	}
}

func (r *PackRecord) normalize() {
	r.Name = normalize(r.Name)
	r.Events = normalizeAll(r.Events)
	r.Tradeables = normalizeAll(r.Tradeables)
	r.FirstLevels = normalizeAll(r.FirstLevels)
	for i := range r.Levels {
		l := &r.Levels[i]
		l.Name = normalize(l.Name)
		l.Events = normalizeAll(l.Events)
		l.Tradeables = normalizeAll(l.Tradeables)
		l.Successors = normalizeAll(l.Successors)
	}
}
