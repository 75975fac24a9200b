package engine

import (
	"github.com/roach88/bourse/internal/environment"
	"github.com/roach88/bourse/internal/market"
	"github.com/roach88/bourse/internal/store"
)

// EventChange records an event starting or ending during a round.
type EventChange struct {
	Event     string `json:"event"`
	Priority  string `json:"priority"`
	Change    string `json:"change"` // store.KindAdmitted, KindSuccessor or KindExpired
	Remaining int    `json:"remaining,omitempty"`
}

// LevelChange records a passed level and what replaced it.
type LevelChange struct {
	Passed   string `json:"passed"`
	Pack     string `json:"pack"`
	Next     string `json:"next,omitempty"`
	NextPack string `json:"next_pack,omitempty"`
	Complete bool   `json:"complete,omitempty"`
}

// RoundReport is everything that happened in one round.
type RoundReport struct {
	Round      int64                   `json:"round"`
	Events     []EventChange           `json:"events,omitempty"`
	Influences []environment.Influence `json:"influences,omitempty"`
	Walked     []string                `json:"walked,omitempty"`
	Levels     []LevelChange           `json:"levels,omitempty"`
	Quotes     []market.Quote          `json:"quotes"`
	Money      float64                 `json:"money"`
	Stage      int                     `json:"stage"`
	Complete   bool                    `json:"complete,omitempty"`
}

// journalRound converts a report to its journal record.
func journalRound(sessionID string, r RoundReport) store.Round {
	rec := store.Round{
		SessionID: sessionID,
		Number:    r.Round,
		Money:     r.Money,
		Stage:     r.Stage,
		Complete:  r.Complete,
	}
	for _, q := range r.Quotes {
		rec.Values = append(rec.Values, store.Value{Tradeable: q.Name, Value: q.Value, Shares: q.Shares})
	}
	for _, e := range r.Events {
		rec.Entries = append(rec.Entries, store.Entry{
			Kind:    e.Change,
			Subject: e.Event,
			Detail:  e.Priority,
			Amount:  float64(e.Remaining),
		})
	}
	for _, inf := range r.Influences {
		rec.Entries = append(rec.Entries, store.Entry{
			Kind:    store.KindInfluence,
			Subject: inf.Tradeable,
			Detail:  inf.Group,
			Amount:  inf.After - inf.Before,
		})
	}
	for _, name := range r.Walked {
		rec.Entries = append(rec.Entries, store.Entry{Kind: store.KindWalk, Subject: name})
	}
	for _, l := range r.Levels {
		rec.Entries = append(rec.Entries, store.Entry{Kind: store.KindLevelPassed, Subject: l.Passed, Detail: l.Pack})
		switch {
		case l.Next != "":
			rec.Entries = append(rec.Entries, store.Entry{Kind: store.KindLevelStart, Subject: l.Next, Detail: l.NextPack})
		case l.Complete:
			rec.Entries = append(rec.Entries, store.Entry{Kind: store.KindComplete, Subject: l.Pack})
		}
	}
	return rec
}
