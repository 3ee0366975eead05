// Package storage defines the read side of the grade change log.
//
// The grading layer only ever reads the log: records are appended by grading
// tools elsewhere and are immutable once written. Implementations (e.g.,
// SQLite) live in subpackages.
//
// Common error types:
//   - ErrNotFound: requested record is missing
package storage
