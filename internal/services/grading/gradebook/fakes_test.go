package gradebook

import (
	"context"
	"slices"

	"github.com/louisbranch/gradebook/internal/services/grading/domain/grade"
	"github.com/louisbranch/gradebook/internal/services/grading/storage"
)

// fakeStore implements storage.GradeLogStore with canned records.
type fakeStore struct {
	opportunities  []grade.Opportunity
	participations []storage.Participation
	changes        []grade.Change
	listErr        error
}

func (f *fakeStore) GetOpportunity(_ context.Context, opportunityID string) (grade.Opportunity, error) {
	for _, opp := range f.opportunities {
		if opp.ID == opportunityID {
			return opp, nil
		}
	}
	return grade.Opportunity{}, storage.ErrNotFound
}

func (f *fakeStore) ListOpportunities(_ context.Context, courseID string) ([]grade.Opportunity, error) {
	var out []grade.Opportunity
	for _, opp := range f.opportunities {
		if opp.CourseID == courseID && opp.ShownInGradeBook {
			out = append(out, opp)
		}
	}
	return out, nil
}

func (f *fakeStore) ListActiveParticipations(_ context.Context, courseID string) ([]storage.Participation, error) {
	var out []storage.Participation
	for _, p := range f.participations {
		if p.CourseID == courseID && p.Status == storage.ParticipationStatusActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ListGradeChanges(_ context.Context, opportunityID, participationID string) ([]grade.Change, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []grade.Change
	for _, change := range f.changes {
		if change.OpportunityID == opportunityID && change.ParticipationID == participationID {
			out = append(out, change)
		}
	}
	// Stores may return any order; replay sorts.
	slices.Reverse(out)
	return out, nil
}

func (f *fakeStore) ListOpportunityGradeChanges(_ context.Context, opportunityID string) ([]grade.Change, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []grade.Change
	for _, change := range f.changes {
		if change.OpportunityID == opportunityID {
			out = append(out, change)
		}
	}
	slices.Reverse(out)
	return out, nil
}
