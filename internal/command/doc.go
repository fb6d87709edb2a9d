// Package command holds the natty command table: the configured
// trigger→action bindings and their live activation and timing state.
//
// A Table is built once from validated bindings and is never resized
// afterwards. Only the mutable fields of each Command (Active, LastFiredAt,
// NextCPS and the one-shot latch) change at runtime, and those are owned by
// the engine package, which serializes access with a single table-wide lock.
//
// Table is not safe for concurrent use on its own.
package command
