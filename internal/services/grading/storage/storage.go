package storage

import (
	"context"

	apperrors "github.com/louisbranch/gradebook/internal/platform/errors"
	"github.com/louisbranch/gradebook/internal/services/grading/domain/grade"
)

// ErrNotFound indicates a requested persistence record is missing.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// Participation is a learner enrolled in a course.
type Participation struct {
	ID       string
	CourseID string
	Status   string
}

// ParticipationStatusActive marks participations shown in the grade book.
const ParticipationStatusActive = "active"

// OpportunityStore reads grading opportunity definitions.
type OpportunityStore interface {
	// GetOpportunity returns ErrNotFound when the opportunity does not exist.
	GetOpportunity(ctx context.Context, opportunityID string) (grade.Opportunity, error)
	// ListOpportunities returns the course's opportunities shown in the grade
	// book, ordered by identifier.
	ListOpportunities(ctx context.Context, courseID string) ([]grade.Opportunity, error)
}

// ParticipationStore reads course participations.
type ParticipationStore interface {
	// ListActiveParticipations returns active participations ordered by id.
	ListActiveParticipations(ctx context.Context, courseID string) ([]Participation, error)
}

// GradeChangeStore reads the immutable grade change log.
type GradeChangeStore interface {
	// ListGradeChanges returns every change for one (opportunity,
	// participation) pair. Order is unspecified; callers sort.
	ListGradeChanges(ctx context.Context, opportunityID, participationID string) ([]grade.Change, error)
	// ListOpportunityGradeChanges returns every change for an opportunity
	// across all participations.
	ListOpportunityGradeChanges(ctx context.Context, opportunityID string) ([]grade.Change, error)
}

// GradeLogStore is everything the gradebook layer reads.
type GradeLogStore interface {
	OpportunityStore
	ParticipationStore
	GradeChangeStore
}
