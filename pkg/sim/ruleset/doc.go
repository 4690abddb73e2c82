// Package ruleset loads declarative rule definitions from YAML and turns
// them into live rules via a kind factory.
//
// A rule set document lists rule specs: name, kind, optional scope and
// priority, an enabled flag, and kind-specific parameters. Kinds are
// registered with a Factory by the rule library (or by third-party rule
// authors), so the set of available behaviors is open-ended while the file
// format stays fixed.
//
// The Watcher reloads a rule set when its files change on disk, debounced,
// and swaps the engine's registry atomically between ticks.
package ruleset
