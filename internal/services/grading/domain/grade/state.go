package grade

import "strings"

// State identifies what a grade change records.
type State string

const (
	StateGradingStarted State = "grading_started"
	StateGraded         State = "graded"
	StateRetrieved      State = "retrieved"
	StateUnavailable    State = "unavailable"
	StateExtension      State = "extension"
	StateReportSent     State = "report_sent"
	StateDoOver         State = "do_over"
	StateExempt         State = "exempt"
)

// States lists every known grade change state.
func States() []State {
	return []State{
		StateGradingStarted,
		StateGraded,
		StateRetrieved,
		StateUnavailable,
		StateExtension,
		StateReportSent,
		StateDoOver,
		StateExempt,
	}
}

// ParseState canonicalizes a stored state label.
func ParseState(value string) (State, bool) {
	label := State(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range States() {
		if label == known {
			return known, true
		}
	}
	return "", false
}
