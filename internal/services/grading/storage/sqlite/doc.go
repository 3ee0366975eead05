// Package sqlite implements the grade log read store on SQLite.
//
// Timestamps are stored as UTC unix milliseconds. Grade change rows are
// returned as stored; unrecognized state labels are passed through so the
// state machine can report them instead of the store hiding them.
package sqlite
