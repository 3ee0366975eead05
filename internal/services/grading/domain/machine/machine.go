package machine

import (
	"slices"
	"strconv"
	"time"

	apperrors "github.com/louisbranch/gradebook/internal/platform/errors"
	"github.com/louisbranch/gradebook/internal/services/grading/domain/aggregation"
	"github.com/louisbranch/gradebook/internal/services/grading/domain/grade"
)

// attemptKey identifies one attempt. Legacy changes without an attempt id
// use legacy=true and, in singleton mode, the consumption position.
type attemptKey struct {
	attemptID string
	legacy    bool
	position  int
}

// contribution is the latest graded change seen for one attempt.
type contribution struct {
	percentage float64
	hasValue   bool
	definedAt  time.Time
	position   int
	recordID   int64
}

// Machine accumulates a single replay of a grade change log.
type Machine struct {
	opportunity grade.Opportunity
	legacyMode  LegacyAttemptMode

	override       Override
	perAttempt     map[attemptKey]contribution
	dueTime        *time.Time
	lastReportTime *time.Time
	lastGradedTime *time.Time
	superseded     map[int64]struct{}
	applied        int
}

// New returns a machine for replaying changes of opportunity. An
// unrecognized aggregation strategy fails here, before any change is read.
func New(opportunity grade.Opportunity, opts ...Option) (*Machine, error) {
	if err := opportunity.AggregationStrategy.Validate(); err != nil {
		return nil, err
	}
	m := &Machine{
		opportunity: opportunity,
		legacyMode:  LegacyAttemptSingleton,
		override:    OverrideNone,
		perAttempt:  make(map[attemptKey]contribution),
		superseded:  make(map[int64]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	switch m.legacyMode {
	case LegacyAttemptSingleton, LegacyAttemptMerged:
	default:
		return nil, apperrors.WithMetadata(apperrors.CodeGradeInvalidLegacyAttempt,
			"invalid legacy attempt mode '"+string(m.legacyMode)+"'",
			map[string]string{"mode": string(m.legacyMode)})
	}
	if opportunity.DueTime != nil {
		due := *opportunity.DueTime
		m.dueTime = &due
	}
	return m, nil
}

// Replay sorts a copy of changes into consumption order and folds them into
// a new machine.
func Replay(opportunity grade.Opportunity, changes []grade.Change, opts ...Option) (*Machine, error) {
	m, err := New(opportunity, opts...)
	if err != nil {
		return nil, err
	}
	if err := m.Consume(grade.Sorted(changes)...); err != nil {
		return m, err
	}
	return m, nil
}

// Consume applies changes in the given order and stops at the first error.
// Changes before the failing one stay applied.
func (m *Machine) Consume(changes ...grade.Change) error {
	for _, change := range changes {
		if err := m.Apply(change); err != nil {
			return err
		}
	}
	return nil
}

// Apply folds one change into the machine.
func (m *Machine) Apply(change grade.Change) error {
	if change.OpportunityID != "" && m.opportunity.ID != "" && change.OpportunityID != m.opportunity.ID {
		return apperrors.WithMetadata(apperrors.CodeGradeOpportunityMismatch,
			"grade change belongs to a different grading opportunity",
			map[string]string{
				"record_id":      strconv.FormatInt(change.RecordID, 10),
				"opportunity_id": change.OpportunityID,
				"expected":       m.opportunity.ID,
			})
	}
	if err := change.Validate(); err != nil {
		return err
	}

	switch change.State {
	case grade.StateGraded:
		if m.override != OverrideNone {
			return apperrors.WithMetadata(apperrors.CodeGradeAfterOverride,
				"cannot accept grade once opportunity has been marked '"+string(m.override)+"'",
				map[string]string{
					"record_id": strconv.FormatInt(change.RecordID, 10),
					"state":     string(change.State),
					"override":  string(m.override),
				})
		}
		m.applyGraded(change)
	case grade.StateUnavailable:
		m.clearContributions()
		m.override = OverrideUnavailable
	case grade.StateExempt:
		m.clearContributions()
		m.override = OverrideExempt
	case grade.StateDoOver:
		m.clearContributions()
		m.override = OverrideNone
	case grade.StateReportSent:
		reported := change.GradeTime
		m.lastReportTime = &reported
	case grade.StateExtension:
		m.dueTime = nil
		if change.DueTime != nil {
			due := *change.DueTime
			m.dueTime = &due
		}
	case grade.StateGradingStarted, grade.StateRetrieved:
	default:
		return apperrors.WithMetadata(apperrors.CodeGradeUnknownState,
			"invalid grade change state '"+string(change.State)+"'",
			map[string]string{
				"record_id": strconv.FormatInt(change.RecordID, 10),
				"state":     string(change.State),
			})
	}
	m.applied++
	return nil
}

func (m *Machine) applyGraded(change grade.Change) {
	key := m.keyFor(change)
	if previous, ok := m.perAttempt[key]; ok {
		m.superseded[previous.recordID] = struct{}{}
	}
	percentage, hasValue := change.Percentage()
	m.perAttempt[key] = contribution{
		percentage: percentage,
		hasValue:   hasValue,
		definedAt:  change.GradeTime,
		position:   m.applied,
		recordID:   change.RecordID,
	}
	graded := change.GradeTime
	m.lastGradedTime = &graded
}

func (m *Machine) keyFor(change grade.Change) attemptKey {
	if change.AttemptID != nil {
		return attemptKey{attemptID: *change.AttemptID}
	}
	if m.legacyMode == LegacyAttemptMerged {
		return attemptKey{legacy: true}
	}
	return attemptKey{legacy: true, position: m.applied}
}

func (m *Machine) clearContributions() {
	clear(m.perAttempt)
}

// Opportunity returns the opportunity being replayed.
func (m *Machine) Opportunity() grade.Opportunity {
	return m.opportunity
}

// Override returns the current override mode.
func (m *Machine) Override() Override {
	return m.override
}

// Applied returns how many changes were accepted.
func (m *Machine) Applied() int {
	return m.applied
}

// DueTime returns the effective due time: the opportunity's own, replaced
// by the most recent extension.
func (m *Machine) DueTime() *time.Time {
	return copyTime(m.dueTime)
}

// LastReportTime returns the grade time of the most recent report_sent change.
func (m *Machine) LastReportTime() *time.Time {
	return copyTime(m.lastReportTime)
}

// LastGradedTime returns the grade time of the most recent accepted graded
// change. Resets do not clear it.
func (m *Machine) LastGradedTime() *time.Time {
	return copyTime(m.lastGradedTime)
}

// Superseded reports whether the graded change with recordID was replaced by
// a later graded change for the same attempt.
func (m *Machine) Superseded(recordID int64) bool {
	_, ok := m.superseded[recordID]
	return ok
}

// Contributions returns the attempts that currently carry a percentage,
// ordered by when their defining change was consumed.
func (m *Machine) Contributions() []aggregation.Contribution {
	entries := make([]contribution, 0, len(m.perAttempt))
	for _, entry := range m.perAttempt {
		if entry.hasValue {
			entries = append(entries, entry)
		}
	}
	slices.SortFunc(entries, func(a, b contribution) int {
		return a.position - b.position
	})
	out := make([]aggregation.Contribution, len(entries))
	for i, entry := range entries {
		out[i] = aggregation.Contribution{Percentage: entry.percentage, DefinedAt: entry.definedAt}
	}
	return out
}

// ValidPercentages returns the percentages of Contributions in order.
func (m *Machine) ValidPercentages() []float64 {
	contributions := m.Contributions()
	out := make([]float64, len(contributions))
	for i, c := range contributions {
		out[i] = c.Percentage
	}
	return out
}

// Percentage returns the aggregate percentage. It is false when an override
// is in force or no attempt carries a value.
func (m *Machine) Percentage() (float64, bool) {
	if m.override != OverrideNone {
		return 0, false
	}
	value, ok, err := aggregation.Aggregate(m.opportunity.AggregationStrategy, m.Contributions())
	if err != nil {
		// New rejects invalid strategies.
		return 0, false
	}
	return value, ok
}

func copyTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	t := *value
	return &t
}
