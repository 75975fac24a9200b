// Package action implements the successor graph shared by events and levels.
//
// An Action is a named node with an ordered, duplicate-free list of
// successors. When an action finishes, exactly one successor (or none) takes
// its place:
//
//   - no successors: the chain ends
//   - one successor: that successor, without consulting anyone
//   - several successors: a uniform random pick, or - when HasOptions is set -
//     the player's choice, re-prompted until it is in range
//
// Events and levels embed Action and carry a Kind tag so callers dispatch on
// the tag rather than on the concrete type.
package action
