// Package store provides the SQLite-backed round journal.
//
// Every session gets one row in sessions. Each completed round appends:
//   - rounds: player balance, campaign stage and completion flag
//   - round_values: the active tradeables' values and shares, in market order
//   - round_entries: what happened during the round (admissions, expiries,
//     influences, autonomous moves, level changes), in occurrence order
//
// # Ordering
//
// Rounds are numbered by the engine's round clock, never by wall time. Every
// query orders by (round, ord) so a trace reads back exactly as it was
// written.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
