// Package gradebook replays stored grade logs into grades.
//
// Every call reads the log again and folds it from scratch; nothing computed
// here is cached or written back.
package gradebook
