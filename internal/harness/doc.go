// Package harness runs scripted play-throughs of the simulation and checks
// their outcome.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: lemon_plague
//	description: "The plague pushes lemon prices down"
//	seed: 42
//	session: test-session-lemon
//	difficulty: normal
//	builtin: true
//	content:
//	  - content/harbor.yaml
//	config:
//	  events: { execution_rate: 0 }
//	choices: [0, 1]
//	steps:
//	  - rounds: 5
//	  - buy: { index: 1, amount: 2 }
//	  - set_money: 100
//	  - check_levels: true
//	assertions:
//	  - type: event_count
//	    event: Greece lemon plague
//	    count: 1
//	  - type: money
//	    min: 100
//
// Content paths are relative to the scenario file. config overrides the
// default tunables field by field. choices answer interactive prompts in
// order; a prompt with no answer left fails the run.
//
// # Assertion Types
//
//   - event_count: an event changed state (admitted by default) N times
//   - event_order: events first started in the given order
//   - level_passed: a level was passed
//   - money: the final balance lies in [min, max]
//   - quote: a tradeable's final value lies in [min, max]
//   - active_tradeables: the tradeables in play at the end, in order
//   - campaign_complete: whether the campaign ended
//   - stage: the final campaign stage
//
// # Deterministic Testing
//
// A scenario fixes the seed, the session ID and every interactive answer, so
// a run is reproducible. Each run journals to a fresh in-memory SQLite store
// and the harness checks the journal against the rounds it played.
// RunWithGolden compares the resulting trace with a golden file.
package harness
