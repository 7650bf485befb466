// Package model defines the data structures shared across the pipeline:
// the durable EventRecord and the run summaries the pipeline reports.
//
// Design decision: EventRecord is a fixed-shape struct rather than an
// open-ended map so that a missing or renamed field is caught at compile
// time, not at access time. Unknown dates and strings are explicit empty
// values; there is no null-vs-empty ambiguity anywhere in the model.
package model
