// Package render turns a replayed grade machine into the strings shown to
// people and exported to other systems. Nothing rendered here is stored.
package render

import (
	"fmt"
	"strconv"

	"github.com/louisbranch/gradebook/internal/services/grading/domain/machine"
)

// Machine-readable sentinels.
const (
	MachineNone       = "NONE"
	MachineOtherState = "OTHER_STATE"
	MachineExempt     = "EXEMPT"
)

// Human-readable labels. They double as message keys for localization.
const (
	LabelNone       = "- ∅ -"
	LabelOtherState = "(other state)"
	LabelExempt     = "(exempt)"
)

// MachineReadable renders the grade for exports and equality checks. Numeric
// grades use the shortest decimal that parses back to the same float64.
func MachineReadable(m *machine.Machine) string {
	switch m.Override() {
	case machine.OverrideUnavailable:
		return MachineOtherState
	case machine.OverrideExempt:
		return MachineExempt
	}
	value, ok := m.Percentage()
	if !ok {
		return MachineNone
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// HumanReadable renders the grade with one decimal place, adding the number
// of contributing attempts when there is more than one.
func HumanReadable(m *machine.Machine) string {
	switch m.Override() {
	case machine.OverrideUnavailable:
		return LabelOtherState
	case machine.OverrideExempt:
		return LabelExempt
	}
	value, ok := m.Percentage()
	if !ok {
		return LabelNone
	}
	result := fmt.Sprintf("%.1f%%", value)
	if n := len(m.ValidPercentages()); n > 1 {
		result += fmt.Sprintf(" (/%d)", n)
	}
	return result
}

// PercentageString renders only the numeric grade, or "" when there is none.
func PercentageString(m *machine.Machine) string {
	value, ok := m.Percentage()
	if !ok {
		return ""
	}
	return fmt.Sprintf("%.1f", value)
}
