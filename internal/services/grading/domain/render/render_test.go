package render

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/louisbranch/gradebook/internal/services/grading/domain/aggregation"
	"github.com/louisbranch/gradebook/internal/services/grading/domain/grade"
	"github.com/louisbranch/gradebook/internal/services/grading/domain/machine"
)

var t0 = time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)

func graded(record int64, attempt string, percent float64, hour int) grade.Change {
	return grade.Change{
		RecordID:  record,
		AttemptID: grade.Attempt(attempt),
		State:     grade.StateGraded,
		Points:    grade.Points(percent),
		MaxPoints: 100,
		GradeTime: t0.Add(time.Duration(hour) * time.Hour),
	}
}

func marker(record int64, state grade.State, hour int) grade.Change {
	return grade.Change{RecordID: record, State: state, MaxPoints: 100, GradeTime: t0.Add(time.Duration(hour) * time.Hour)}
}

func replay(t *testing.T, strategy aggregation.Strategy, changes ...grade.Change) *machine.Machine {
	t.Helper()
	m, err := machine.Replay(grade.Opportunity{ID: "opp-1", AggregationStrategy: strategy}, changes)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	return m
}

func TestRenderAveragedScenario(t *testing.T) {
	m := replay(t, aggregation.StrategyAvgGrade,
		graded(1, "main", 6, 1),
		graded(2, "s1", 0, 2),
		graded(3, "main", 7, 3),
		graded(4, "s2", 6, 4),
	)
	machineReadable := MachineReadable(m)
	if !strings.HasPrefix(machineReadable, "4.333") {
		t.Fatalf("machine readable = %q, want 4.333...", machineReadable)
	}
	parsed, err := strconv.ParseFloat(machineReadable, 64)
	if err != nil {
		t.Fatalf("parse machine readable: %v", err)
	}
	if want, _ := m.Percentage(); parsed != want {
		t.Fatalf("machine readable does not round-trip: %v vs %v", parsed, want)
	}
	if got := HumanReadable(m); got != "4.3% (/3)" {
		t.Fatalf("human readable = %q, want %q", got, "4.3% (/3)")
	}
	if got := PercentageString(m); got != "4.3" {
		t.Fatalf("percentage string = %q, want %q", got, "4.3")
	}
}

func TestRenderSingleAttemptHasNoCountSuffix(t *testing.T) {
	m := replay(t, aggregation.StrategyUseLatest, graded(1, "main", 5, 1), graded(2, "main", 8, 2))
	if got := HumanReadable(m); got != "8.0%" {
		t.Fatalf("human readable = %q, want %q", got, "8.0%")
	}
	if got := MachineReadable(m); got != "8" {
		t.Fatalf("machine readable = %q, want %q", got, "8")
	}
}

func TestRenderStates(t *testing.T) {
	pending := graded(1, "main", 0, 1)
	pending.Points = nil
	tests := []struct {
		name        string
		changes     []grade.Change
		wantMachine string
		wantHuman   string
		wantPercent string
	}{
		{name: "empty log", wantMachine: MachineNone, wantHuman: LabelNone},
		{name: "pending only", changes: []grade.Change{pending}, wantMachine: MachineNone, wantHuman: LabelNone},
		{
			name:        "unavailable",
			changes:     []grade.Change{graded(1, "main", 50, 1), marker(2, grade.StateUnavailable, 2)},
			wantMachine: MachineOtherState,
			wantHuman:   LabelOtherState,
		},
		{
			name:        "exempt",
			changes:     []grade.Change{marker(1, grade.StateExempt, 1)},
			wantMachine: MachineExempt,
			wantHuman:   LabelExempt,
		},
		{
			name:        "do-over",
			changes:     []grade.Change{marker(1, grade.StateExempt, 1), marker(2, grade.StateDoOver, 2)},
			wantMachine: MachineNone,
			wantHuman:   LabelNone,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := replay(t, aggregation.StrategyUseLatest, tc.changes...)
			if got := MachineReadable(m); got != tc.wantMachine {
				t.Fatalf("machine readable = %q, want %q", got, tc.wantMachine)
			}
			if got := HumanReadable(m); got != tc.wantHuman {
				t.Fatalf("human readable = %q, want %q", got, tc.wantHuman)
			}
			if got := PercentageString(m); got != tc.wantPercent {
				t.Fatalf("percentage string = %q, want %q", got, tc.wantPercent)
			}
		})
	}
}

func TestLocalizedEnglishMatchesHumanReadable(t *testing.T) {
	m := replay(t, aggregation.StrategyAvgGrade, graded(1, "a", 10, 1), graded(2, "b", 20, 2))
	p := Printer(language.AmericanEnglish)
	if got, want := Localized(p, m), HumanReadable(m); got != want {
		t.Fatalf("localized = %q, want %q", got, want)
	}
}

func TestLocalizedPortuguese(t *testing.T) {
	p := Printer(language.BrazilianPortuguese)

	exempt := replay(t, aggregation.StrategyUseLatest, marker(1, grade.StateExempt, 1))
	if got := Localized(p, exempt); got != "(dispensado)" {
		t.Fatalf("localized exempt = %q, want %q", got, "(dispensado)")
	}

	other := replay(t, aggregation.StrategyUseLatest, marker(1, grade.StateUnavailable, 1))
	if got := Localized(p, other); got != "(outro estado)" {
		t.Fatalf("localized unavailable = %q, want %q", got, "(outro estado)")
	}

	numeric := replay(t, aggregation.StrategyUseLatest, graded(1, "main", 12.5, 1))
	if got := Localized(p, numeric); !strings.HasPrefix(got, "12,5") {
		t.Fatalf("localized grade = %q, want decimal comma", got)
	}
}

func TestSupportedTags(t *testing.T) {
	tags := SupportedTags()
	if len(tags) != 2 || tags[0] != language.AmericanEnglish || tags[1] != language.BrazilianPortuguese {
		t.Fatalf("supported tags = %v, want [en-US pt-BR]", tags)
	}
}
