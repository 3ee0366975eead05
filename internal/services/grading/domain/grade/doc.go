// Package grade defines the immutable grade-change record, the grading
// opportunity it accumulates against, and the total order used to replay a
// log of changes.
//
// A grade change is an append-only fact about one (opportunity,
// participation) pair. Changes are never edited; a correction is a new
// change, usually a do-over. The current grade is always re-derived from the
// full ordered log.
package grade
