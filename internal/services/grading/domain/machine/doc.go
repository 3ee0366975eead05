// Package machine replays a grade change log into a current grade.
//
// A Machine is a fresh accumulator built for one (opportunity,
// participation) replay. Changes must be fed in grade.Compare order. Graded
// changes are grouped by attempt, and a later change for an attempt replaces
// the earlier one. Unavailable and exempt are terminal overrides that only a
// do-over clears. A graded change arriving while an override is in force is
// a protocol violation and is returned as an error, never skipped.
//
// Nothing here is persisted or cached: the same ordered log always yields
// the same machine.
package machine
