package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/louisbranch/gradebook/internal/services/grading/domain/aggregation"
	"github.com/louisbranch/gradebook/internal/services/grading/domain/grade"
	"github.com/louisbranch/gradebook/internal/services/grading/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestCloseIsNilSafe(t *testing.T) {
	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
}

func TestGetOpportunity(t *testing.T) {
	store := openTestStore(t)
	seedOpportunity(t, store, "opp-1", "course-1", "quiz_1", "avg_grade", true)
	mustExec(t, store, `UPDATE grading_opportunities SET due_time = ? WHERE id = ?`, toMillis(testBase), "opp-1")

	opp, err := store.GetOpportunity(context.Background(), "opp-1")
	if err != nil {
		t.Fatalf("get opportunity: %v", err)
	}
	if opp.Identifier != "quiz_1" || opp.CourseID != "course-1" {
		t.Fatalf("unexpected opportunity: %+v", opp)
	}
	if opp.AggregationStrategy != aggregation.StrategyAvgGrade {
		t.Fatalf("strategy = %s, want %s", opp.AggregationStrategy, aggregation.StrategyAvgGrade)
	}
	if opp.DueTime == nil || !opp.DueTime.Equal(testBase) {
		t.Fatalf("due time = %v, want %v", opp.DueTime, testBase)
	}
	if !opp.ShownInGradeBook {
		t.Fatal("expected opportunity to be shown in grade book")
	}
}

func TestGetOpportunityNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetOpportunity(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetOpportunityKeepsUnknownStrategy(t *testing.T) {
	store := openTestStore(t)
	seedOpportunity(t, store, "opp-1", "course-1", "quiz_1", "median", true)

	opp, err := store.GetOpportunity(context.Background(), "opp-1")
	if err != nil {
		t.Fatalf("get opportunity: %v", err)
	}
	if opp.AggregationStrategy != "median" {
		t.Fatalf("strategy = %q, want stored value", opp.AggregationStrategy)
	}
}

func TestListOpportunitiesFiltersAndOrders(t *testing.T) {
	store := openTestStore(t)
	seedOpportunity(t, store, "opp-b", "course-1", "quiz_b", "use_latest", true)
	seedOpportunity(t, store, "opp-a", "course-1", "quiz_a", "use_latest", true)
	seedOpportunity(t, store, "opp-hidden", "course-1", "quiz_0", "use_latest", false)
	seedOpportunity(t, store, "opp-other", "course-2", "quiz_x", "use_latest", true)

	opps, err := store.ListOpportunities(context.Background(), "course-1")
	if err != nil {
		t.Fatalf("list opportunities: %v", err)
	}
	if len(opps) != 2 || opps[0].ID != "opp-a" || opps[1].ID != "opp-b" {
		t.Fatalf("unexpected opportunities: %+v", opps)
	}
}

func TestListActiveParticipations(t *testing.T) {
	store := openTestStore(t)
	seedParticipation(t, store, "p-2", "course-1", "active")
	seedParticipation(t, store, "p-1", "course-1", "active")
	seedParticipation(t, store, "p-3", "course-1", "dropped")
	seedParticipation(t, store, "p-4", "course-2", "active")

	participations, err := store.ListActiveParticipations(context.Background(), "course-1")
	if err != nil {
		t.Fatalf("list participations: %v", err)
	}
	if len(participations) != 2 || participations[0].ID != "p-1" || participations[1].ID != "p-2" {
		t.Fatalf("unexpected participations: %+v", participations)
	}
}

func TestListGradeChangesMapsColumns(t *testing.T) {
	store := openTestStore(t)
	seedOpportunity(t, store, "opp-1", "course-1", "quiz_1", "use_latest", true)
	seedParticipation(t, store, "p-1", "course-1", "active")
	seedParticipation(t, store, "p-2", "course-1", "active")

	first := seedChange(t, store, "opp-1", "p-1", "main", "graded", 7.5, testBase)
	legacy := seedChange(t, store, "opp-1", "p-1", nil, "graded", nil, testBase.Add(time.Hour))
	seedChange(t, store, "opp-1", "p-2", "main", "graded", 3, testBase)
	unknown := seedChange(t, store, "opp-1", "p-1", "main", "regraded", nil, testBase.Add(2*time.Hour))

	changes, err := store.ListGradeChanges(context.Background(), "opp-1", "p-1")
	if err != nil {
		t.Fatalf("list grade changes: %v", err)
	}
	if len(changes) != 3 {
		t.Fatalf("changes = %d, want 3", len(changes))
	}

	got := changes[0]
	if got.RecordID != first || got.AttemptID == nil || *got.AttemptID != "main" {
		t.Fatalf("unexpected first change: %+v", got)
	}
	if got.State != grade.StateGraded || got.Points == nil || *got.Points != 7.5 || got.MaxPoints != 10 {
		t.Fatalf("unexpected first change values: %+v", got)
	}
	if !got.GradeTime.Equal(testBase) {
		t.Fatalf("grade time = %v, want %v", got.GradeTime, testBase)
	}

	if changes[1].RecordID != legacy || changes[1].AttemptID != nil || changes[1].Points != nil {
		t.Fatalf("expected legacy change with null attempt and points: %+v", changes[1])
	}
	if changes[2].RecordID != unknown || changes[2].State != grade.State("regraded") {
		t.Fatalf("expected unknown state to pass through: %+v", changes[2])
	}
}

func TestListOpportunityGradeChanges(t *testing.T) {
	store := openTestStore(t)
	seedOpportunity(t, store, "opp-1", "course-1", "quiz_1", "use_latest", true)
	seedOpportunity(t, store, "opp-2", "course-1", "quiz_2", "use_latest", true)
	seedParticipation(t, store, "p-1", "course-1", "active")
	seedParticipation(t, store, "p-2", "course-1", "active")

	seedChange(t, store, "opp-1", "p-2", "main", "graded", 1, testBase)
	seedChange(t, store, "opp-1", "p-1", "main", "graded", 2, testBase)
	seedChange(t, store, "opp-2", "p-1", "main", "graded", 3, testBase)

	changes, err := store.ListOpportunityGradeChanges(context.Background(), "opp-1")
	if err != nil {
		t.Fatalf("list opportunity grade changes: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("changes = %d, want 2", len(changes))
	}
	if changes[0].ParticipationID != "p-1" || changes[1].ParticipationID != "p-2" {
		t.Fatalf("expected changes grouped by participation: %+v", changes)
	}
}

func TestStoreRejectsCanceledContext(t *testing.T) {
	store := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.ListGradeChanges(ctx, "opp-1", "p-1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}
