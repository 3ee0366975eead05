package machine

import "strings"

// Override is the terminal mode that suppresses numeric aggregation.
type Override string

const (
	OverrideNone        Override = "none"
	OverrideUnavailable Override = "unavailable"
	OverrideExempt      Override = "exempt"
)

// LegacyAttemptMode controls how changes without an attempt id are grouped.
type LegacyAttemptMode string

const (
	// LegacyAttemptSingleton treats each attempt-less change as its own attempt.
	LegacyAttemptSingleton LegacyAttemptMode = "singleton"
	// LegacyAttemptMerged groups all attempt-less changes into one attempt.
	LegacyAttemptMerged LegacyAttemptMode = "merged"
)

// Option configures a Machine.
type Option func(*Machine)

// WithLegacyAttemptMode selects the grouping for attempt-less changes.
func WithLegacyAttemptMode(mode LegacyAttemptMode) Option {
	return func(m *Machine) {
		m.legacyMode = mode
	}
}

// ParseLegacyAttemptMode maps a configured label to a mode. Empty selects the
// singleton default.
func ParseLegacyAttemptMode(value string) (LegacyAttemptMode, bool) {
	switch LegacyAttemptMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", LegacyAttemptSingleton:
		return LegacyAttemptSingleton, true
	case LegacyAttemptMerged:
		return LegacyAttemptMerged, true
	default:
		return "", false
	}
}
