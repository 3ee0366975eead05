package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

var testBase = time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "grades.sqlite"))
	if err != nil {
		t.Fatalf("open grades store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close grades store: %v", err)
		}
	})
	return store
}

func mustExec(t *testing.T, store *Store, query string, args ...any) sql.Result {
	t.Helper()
	result, err := store.sqlDB.Exec(query, args...)
	if err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
	return result
}

func seedOpportunity(t *testing.T, store *Store, id, courseID, identifier, strategy string, shown bool) {
	t.Helper()
	mustExec(t, store,
		`INSERT INTO grading_opportunities (id, course_id, identifier, name, aggregation_strategy, shown_in_grade_book)
		VALUES (?, ?, ?, ?, ?, ?)`, id, courseID, identifier, identifier, strategy, shown)
}

func seedParticipation(t *testing.T, store *Store, id, courseID, status string) {
	t.Helper()
	mustExec(t, store, `INSERT INTO participations (id, course_id, status) VALUES (?, ?, ?)`, id, courseID, status)
}

func seedChange(t *testing.T, store *Store, opportunityID, participationID string, attemptID any, state string, points any, at time.Time) int64 {
	t.Helper()
	result := mustExec(t, store,
		`INSERT INTO grade_changes (opportunity_id, participation_id, attempt_id, state, points, max_points, grade_time)
		VALUES (?, ?, ?, ?, ?, 10, ?)`,
		opportunityID, participationID, attemptID, state, points, toMillis(at))
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}
	return id
}
