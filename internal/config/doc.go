// Package config provides configuration management for eventscan.
//
// Configuration has three layers:
//
//   - Config: run-level settings (timeouts, page budgets, delays, output
//     format) populated from CLI flags with documented defaults.
//   - Source list: the organizations to crawl, loaded from a YAML file.
//     A missing or malformed file produces an empty list and a warning,
//     never a crash; the run then reports zero sources processed.
//   - Vocabulary: the keyword lists and thresholds driving link
//     classification, heuristic filtering, and field extraction. The
//     vocabulary is an injected immutable value so tests can substitute
//     alternate word lists without global state.
//
// Design decision: configuration is passed by dependency injection.
// No package reads flags or environment variables on its own; the CLI
// layer builds one Config and hands relevant pieces to each component.
package config
