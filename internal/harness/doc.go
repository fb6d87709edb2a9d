// Package harness runs natty commands against scripted input, offline.
//
// A scenario binds commands exactly like a config file, then feeds the
// engine a timed sequence of presses and releases on a manual clock with
// a scripted or seeded random source. Every resolved event and dispatch
// is captured in a trace, which assertions inspect and golden files pin
// down.
//
// # Scenario Format
//
//	name: toggle_click_repeat
//	description: "Toggle on, click at 4-5 cps, toggle off"
//	tick_ms: 1            # scheduler period (default 1)
//	rand: [5]             # scripted cps draws, cycled; or
//	seed: [7, 11]         # a seeded uniform source
//	commands:
//	  - method: Toggle
//	    listen: {type: Key, value: a}
//	    action: {type: Button, value: Left}
//	    range: {min: 4, max: 5}
//	steps:
//	  - press: {type: Key, value: a}
//	  - release: {type: Key, value: a}
//	  - advance: 1000     # milliseconds, ticking every tick_ms
//	assertions:
//	  - type: dispatch_count
//	    target: {type: Button, value: Left}
//	    min: 5
//	    max: 5
//
// # Assertion Types
//
//   - dispatch_count: number of dispatches, filtered by trigger and/or
//     target, within [min, max]
//   - spacing: every gap between consecutive matching dispatches, in
//     milliseconds, within [min, max]
//   - active: a command's final Active flag equals expect
//
// # Traces
//
// Times in a trace are milliseconds since the scenario started.
// Dispatches decided in the same tick are ordered by trigger so traces are
// stable across runs.
package harness
