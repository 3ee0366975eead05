package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/gradebook/internal/services/grading/domain/aggregation"
	"github.com/louisbranch/gradebook/internal/services/grading/domain/grade"
	"github.com/louisbranch/gradebook/internal/services/grading/storage"
)

const opportunityColumns = `id, course_id, identifier, name, flow_id, aggregation_strategy, due_time, shown_in_grade_book`

const gradeChangeColumns = `record_id, opportunity_id, participation_id, attempt_id, state, points, max_points, due_time, grade_time`

type rowScanner interface {
	Scan(dest ...any) error
}

// GetOpportunity loads one grading opportunity by id.
func (s *Store) GetOpportunity(ctx context.Context, opportunityID string) (grade.Opportunity, error) {
	if err := s.ready(ctx); err != nil {
		return grade.Opportunity{}, err
	}
	opportunityID = strings.TrimSpace(opportunityID)
	if opportunityID == "" {
		return grade.Opportunity{}, fmt.Errorf("opportunity id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+opportunityColumns+` FROM grading_opportunities WHERE id = ?`, opportunityID)
	opp, err := scanOpportunity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grade.Opportunity{}, storage.ErrNotFound
		}
		return grade.Opportunity{}, fmt.Errorf("get opportunity: %w", err)
	}
	return opp, nil
}

// ListOpportunities returns a course's grade book opportunities ordered by identifier.
func (s *Store) ListOpportunities(ctx context.Context, courseID string) ([]grade.Opportunity, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+opportunityColumns+` FROM grading_opportunities
		WHERE course_id = ? AND shown_in_grade_book = 1
		ORDER BY identifier`, strings.TrimSpace(courseID))
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()

	var out []grade.Opportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		out = append(out, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	return out, nil
}

// ListActiveParticipations returns a course's active participations ordered by id.
func (s *Store) ListActiveParticipations(ctx context.Context, courseID string) ([]storage.Participation, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, course_id, status FROM participations
		WHERE course_id = ? AND status = ?
		ORDER BY id`, strings.TrimSpace(courseID), storage.ParticipationStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()

	var out []storage.Participation
	for rows.Next() {
		var p storage.Participation
		if err := rows.Scan(&p.ID, &p.CourseID, &p.Status); err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	return out, nil
}

// ListGradeChanges returns every change for an (opportunity, participation) pair.
func (s *Store) ListGradeChanges(ctx context.Context, opportunityID, participationID string) ([]grade.Change, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.listGradeChanges(ctx,
		`SELECT `+gradeChangeColumns+` FROM grade_changes
		WHERE opportunity_id = ? AND participation_id = ?
		ORDER BY grade_time, record_id`,
		strings.TrimSpace(opportunityID), strings.TrimSpace(participationID))
}

// ListOpportunityGradeChanges returns every change for an opportunity.
func (s *Store) ListOpportunityGradeChanges(ctx context.Context, opportunityID string) ([]grade.Change, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.listGradeChanges(ctx,
		`SELECT `+gradeChangeColumns+` FROM grade_changes
		WHERE opportunity_id = ?
		ORDER BY participation_id, grade_time, record_id`,
		strings.TrimSpace(opportunityID))
}

func (s *Store) listGradeChanges(ctx context.Context, query string, args ...any) ([]grade.Change, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list grade changes: %w", err)
	}
	defer rows.Close()

	var out []grade.Change
	for rows.Next() {
		change, err := scanGradeChange(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grade change: %w", err)
		}
		out = append(out, change)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list grade changes: %w", err)
	}
	return out, nil
}

func scanOpportunity(row rowScanner) (grade.Opportunity, error) {
	var (
		opp      grade.Opportunity
		strategy string
		dueTime  sql.NullInt64
		shown    int64
	)
	if err := row.Scan(&opp.ID, &opp.CourseID, &opp.Identifier, &opp.Name, &opp.FlowID, &strategy, &dueTime, &shown); err != nil {
		return grade.Opportunity{}, err
	}
	// Unknown strategies stay as stored; the machine rejects them loudly.
	opp.AggregationStrategy = aggregation.Strategy(strategy)
	if normalized, ok := aggregation.NormalizeStrategy(strategy); ok {
		opp.AggregationStrategy = normalized
	}
	opp.DueTime = fromNullMillis(dueTime)
	opp.ShownInGradeBook = shown != 0
	return opp, nil
}

func scanGradeChange(row rowScanner) (grade.Change, error) {
	var (
		change    grade.Change
		attemptID sql.NullString
		state     string
		points    sql.NullFloat64
		dueTime   sql.NullInt64
		gradeTime int64
	)
	if err := row.Scan(
		&change.RecordID,
		&change.OpportunityID,
		&change.ParticipationID,
		&attemptID,
		&state,
		&points,
		&change.MaxPoints,
		&dueTime,
		&gradeTime,
	); err != nil {
		return grade.Change{}, err
	}
	if attemptID.Valid {
		change.AttemptID = grade.Attempt(attemptID.String)
	}
	change.State = grade.State(state)
	if parsed, ok := grade.ParseState(state); ok {
		change.State = parsed
	}
	if points.Valid {
		change.Points = grade.Points(points.Float64)
	}
	change.DueTime = fromNullMillis(dueTime)
	change.GradeTime = fromMillis(gradeTime)
	return change, nil
}
