// Package engine advances the natty command table: it resolves input
// events into activation changes and periodically fires the commands that
// are due.
//
// ARCHITECTURE:
//
// Two actors share one command.Table behind a single mutex owned by Engine:
//
//   - Event actor: drains the inbox queue and applies Resolve to each event.
//     It holds the lock for one lookup and mutation.
//   - Scheduler actor: wakes every tick, runs Sweep under the lock to decide
//     which commands are due and advance their timing state, releases the
//     lock, then dispatches the collected firings to the Sink.
//
// Dispatching outside the lock keeps slow sink calls from delaying state
// updates. The cost is a narrow race: a release processed between a sweep
// and its dispatches does not cancel a firing already decided in that
// sweep, so a command may click at most once more after being deactivated.
//
// TIMING:
//
// Timestamps are milliseconds from a Clock. A click-repeat command is due
// when now - LastFiredAt > round(1000 / NextCPS). After each firing a new
// NextCPS is drawn uniformly from the command's rate range through the
// injected Rand. Press-once commands fire on the first sweep after
// activation and are then latched until the next activation.
//
// ERRORS:
//
// Events for triggers that are not in the table are ignored. Sink failures
// are logged and reported to the Observer; they never stop either actor or
// affect other commands.
package engine
