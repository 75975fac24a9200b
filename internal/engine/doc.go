// Package engine runs a trading session round by round.
//
// A Simulation is the single context object that owns every piece of mutable
// session state: the market, the environment graph, the player, the stage
// registry, the main-event pool, the active events and the active levels.
// Nothing is process-global, so tests build isolated simulations freely.
//
// ROUND SEQUENCE:
//
//  1. Market.SaveSnapshot records the active values
//  2. IterateActiveEvents applies group influence, ticks and retires events
//  3. IterateMainEvents lets idle main events admit themselves under quota
//  4. IterateActiveLevels checks goals and advances levels and packs
//  5. Market.UpdateUnchanged walks every tradeable no event moved
//
// A round holds the simulation lock from step 1 through the counter check
// that follows step 5, so trades never interleave with a round.
//
// DETERMINISM:
//
// All randomness comes from one seeded random.Source. Map iteration never
// decides order: the pool, the active events, the active levels and the
// market are all ordered slices. The same seed, content and choices replay
// the same session.
package engine
