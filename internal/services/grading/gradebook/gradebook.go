package gradebook

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/gradebook/internal/services/grading/domain/grade"
	"github.com/louisbranch/gradebook/internal/services/grading/domain/machine"
	"github.com/louisbranch/gradebook/internal/services/grading/domain/render"
	"github.com/louisbranch/gradebook/internal/services/grading/storage"
)

const tracerName = "github.com/louisbranch/gradebook/internal/services/grading/gradebook"

// Options tune how logs are folded.
type Options struct {
	// LegacyAttemptMode controls how changes without an attempt id aggregate.
	// The zero value uses the machine default.
	LegacyAttemptMode machine.LegacyAttemptMode
}

func (o Options) machineOptions() []machine.Option {
	if o.LegacyAttemptMode == "" {
		return nil
	}
	return []machine.Option{machine.WithLegacyAttemptMode(o.LegacyAttemptMode)}
}

// Result is one replayed (opportunity, participation) grade.
type Result struct {
	ParticipationID string
	Machine         *machine.Machine
	MachineReadable string
	HumanReadable   string
	Applied         int
}

// Row is one participation's line in a grade table.
type Row struct {
	Participation storage.Participation
	// Cells follow the table's opportunity order.
	Cells []Result
}

// GradeTable is the grade book for a course.
type GradeTable struct {
	CourseID      string
	Opportunities []grade.Opportunity
	Rows          []Row
}

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Replay loads the opportunity and the pair's log, then folds it in order.
func Replay(ctx context.Context, store storage.GradeLogStore, opportunityID, participationID string, opts Options) (result Result, err error) {
	ctx, span := tracer().Start(ctx, "gradebook.replay", trace.WithAttributes(
		attribute.String("gradebook.opportunity_id", opportunityID),
		attribute.String("gradebook.participation_id", participationID),
	))
	defer func() { endSpan(span, err) }()

	if store == nil {
		return Result{}, fmt.Errorf("grade log store is required")
	}
	opportunityID = strings.TrimSpace(opportunityID)
	participationID = strings.TrimSpace(participationID)
	if opportunityID == "" {
		return Result{}, fmt.Errorf("opportunity id is required")
	}
	if participationID == "" {
		return Result{}, fmt.Errorf("participation id is required")
	}

	opp, err := store.GetOpportunity(ctx, opportunityID)
	if err != nil {
		return Result{}, fmt.Errorf("get opportunity %s: %w", opportunityID, err)
	}
	changes, err := store.ListGradeChanges(ctx, opportunityID, participationID)
	if err != nil {
		return Result{}, fmt.Errorf("list grade changes: %w", err)
	}

	result, err = replayPair(opp, participationID, changes, opts)
	if err != nil {
		return Result{}, err
	}
	span.SetAttributes(
		attribute.Int("gradebook.applied", result.Applied),
		attribute.String("gradebook.grade", result.MachineReadable),
	)
	return result, nil
}

// Table replays every active participation against every opportunity shown
// in the course grade book. Any failing cell fails the table.
func Table(ctx context.Context, store storage.GradeLogStore, courseID string, opts Options) (table GradeTable, err error) {
	ctx, span := tracer().Start(ctx, "gradebook.table", trace.WithAttributes(
		attribute.String("gradebook.course_id", courseID),
	))
	defer func() { endSpan(span, err) }()

	if store == nil {
		return GradeTable{}, fmt.Errorf("grade log store is required")
	}
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return GradeTable{}, fmt.Errorf("course id is required")
	}

	opportunities, err := store.ListOpportunities(ctx, courseID)
	if err != nil {
		return GradeTable{}, fmt.Errorf("list opportunities: %w", err)
	}
	participations, err := store.ListActiveParticipations(ctx, courseID)
	if err != nil {
		return GradeTable{}, fmt.Errorf("list participations: %w", err)
	}

	table = GradeTable{
		CourseID:      courseID,
		Opportunities: opportunities,
		Rows:          make([]Row, len(participations)),
	}
	for i, p := range participations {
		table.Rows[i] = Row{Participation: p, Cells: make([]Result, len(opportunities))}
	}

	for col, opp := range opportunities {
		byParticipation, err := loadOpportunityLog(ctx, store, opp.ID)
		if err != nil {
			return GradeTable{}, err
		}
		for i, p := range participations {
			cell, err := replayPair(opp, p.ID, byParticipation[p.ID], opts)
			if err != nil {
				return GradeTable{}, err
			}
			table.Rows[i].Cells[col] = cell
		}
	}

	span.SetAttributes(
		attribute.Int("gradebook.opportunities", len(opportunities)),
		attribute.Int("gradebook.participations", len(participations)),
	)
	return table, nil
}

// Average returns the mean aggregate percentage over participations with a
// numeric grade for the opportunity. A zero count means there was no data.
func Average(ctx context.Context, store storage.GradeLogStore, opportunityID string, opts Options) (mean float64, count int, err error) {
	ctx, span := tracer().Start(ctx, "gradebook.average", trace.WithAttributes(
		attribute.String("gradebook.opportunity_id", opportunityID),
	))
	defer func() { endSpan(span, err) }()

	if store == nil {
		return 0, 0, fmt.Errorf("grade log store is required")
	}
	opportunityID = strings.TrimSpace(opportunityID)
	if opportunityID == "" {
		return 0, 0, fmt.Errorf("opportunity id is required")
	}

	opp, err := store.GetOpportunity(ctx, opportunityID)
	if err != nil {
		return 0, 0, fmt.Errorf("get opportunity %s: %w", opportunityID, err)
	}
	byParticipation, err := loadOpportunityLog(ctx, store, opp.ID)
	if err != nil {
		return 0, 0, err
	}

	ids := make([]string, 0, len(byParticipation))
	for id := range byParticipation {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var sum float64
	for _, id := range ids {
		result, err := replayPair(opp, id, byParticipation[id], opts)
		if err != nil {
			return 0, 0, err
		}
		value, ok := result.Machine.Percentage()
		if !ok {
			continue
		}
		sum += value
		count++
	}

	span.SetAttributes(attribute.Int("gradebook.count", count))
	if count == 0 {
		return 0, 0, nil
	}
	return sum / float64(count), count, nil
}

func loadOpportunityLog(ctx context.Context, store storage.GradeChangeStore, opportunityID string) (map[string][]grade.Change, error) {
	changes, err := store.ListOpportunityGradeChanges(ctx, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("list grade changes for %s: %w", opportunityID, err)
	}
	out := make(map[string][]grade.Change)
	for _, change := range changes {
		out[change.ParticipationID] = append(out[change.ParticipationID], change)
	}
	return out, nil
}

func replayPair(opp grade.Opportunity, participationID string, changes []grade.Change, opts Options) (Result, error) {
	m, err := machine.Replay(opp, changes, opts.machineOptions()...)
	if err != nil {
		return Result{}, fmt.Errorf("replay %s/%s: %w", opp.ID, participationID, err)
	}
	return Result{
		ParticipationID: participationID,
		Machine:         m,
		MachineReadable: render.MachineReadable(m),
		HumanReadable:   render.HumanReadable(m),
		Applied:         m.Applied(),
	}, nil
}
