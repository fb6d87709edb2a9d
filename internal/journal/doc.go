// Package journal records natty run sessions in SQLite.
//
// A session is one `natty run`. Within it the journal keeps every resolved
// input event and every dispatch, each numbered by a per-session sequence
// so a timeline can be rebuilt in the order the engine saw it.
//
// Writes go through a Recorder, which implements engine.Observer and hands
// records to a single writer goroutine over a bounded buffer. When the
// buffer is full, records are dropped rather than stalling the engine.
//
// The journal is a diagnostics log. Command state is never restored from
// it.
//
// Database configuration matches the rest of the tooling: WAL mode, NORMAL
// synchronous, 5s busy timeout, foreign keys on, schema versioned with
// PRAGMA user_version.
package journal
