package testutil

// FixedSessionGenerator returns the same session ID every time.
//
// engine.FixedGenerator hands out a sequence and panics when it runs out;
// this one never runs out, which suits scenarios that may start any number
// of sessions under one recorded ID.
//
// Thread-safety: FixedSessionGenerator is stateless and safe for concurrent use.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator creates a generator for id. An empty id becomes
// "test-session-default".
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = "test-session-default"
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed session ID.
//
// Implements engine.SessionIDGenerator interface.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
