// Package content loads declarative game content: environments, tradeables,
// events and level packs.
//
// Content files are YAML (.yaml, .yml) or CUE (.cue). Every file is a
// document with up to four top-level lists:
//
//	environments: [...]
//	tradeables:   [...]
//	events:       [...]
//	packs:        [...]
//
// Each record is validated on its own against an embedded JSON Schema. A
// record that fails validation, or that later references something unknown,
// is reported as a *RecordError and skipped. The rest of the content still
// loads.
//
// Loading and installing are separate steps. Load only parses and validates.
// Install creates the objects inside a simulation and returns one
// engine.PackFactory per pack, so packs go through the same registration
// path as the built-in ones.
//
// Names are NFC-normalized on load, so references match regardless of the
// Unicode form the file was saved in.
package content
