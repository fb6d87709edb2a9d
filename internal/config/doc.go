// Package config loads natty configuration files.
//
// A file is TOML or YAML, chosen by extension, and has two parts: a
// [general] section for runtime settings and a list of command bindings.
//
//	[general]
//	tick_ms   = 5
//	log_level = "info"
//
//	[[commands]]
//	method = "Toggle"
//	listen = { type = "Key", value = "a" }
//	action = { type = "Button", value = "Left" }
//	range  = { min = 5, max = 10 }
//
// Loading happens in three stages, each with its own failure mode:
//
//  1. Decode: unknown fields and syntax errors fail with E004.
//  2. Schema: the decoded document is checked against an embedded CUE
//     schema; violations fail with E005.
//  3. Build: bindings become a command.Table; semantic problems are
//     reported as command.ConfigError values.
//
// Stages 1 and 2 happen in Load. Stage 3 happens in File.Table so callers
// can choose the key resolver.
package config
