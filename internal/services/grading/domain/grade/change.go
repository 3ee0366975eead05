package grade

import (
	"math"
	"strconv"
	"time"

	apperrors "github.com/louisbranch/gradebook/internal/platform/errors"
	"github.com/louisbranch/gradebook/internal/services/grading/domain/aggregation"
)

// Opportunity is a gradable item of a course.
type Opportunity struct {
	ID                  string
	CourseID            string
	Identifier          string
	Name                string
	FlowID              string
	AggregationStrategy aggregation.Strategy
	DueTime             *time.Time
	ShownInGradeBook    bool
}

// Change is one immutable grade change for an (opportunity, participation) pair.
type Change struct {
	// RecordID is assigned monotonically by the log store and never reused.
	RecordID        int64
	OpportunityID   string
	ParticipationID string
	// AttemptID groups re-gradings of one submission. Nil marks legacy
	// records written before attempts existed.
	AttemptID *string
	State     State
	// Points is nil while no numeric value exists yet.
	Points    *float64
	MaxPoints float64
	// DueTime is only meaningful for extensions.
	DueTime   *time.Time
	GradeTime time.Time
}

// Attempt returns an attempt identifier suitable for Change.AttemptID.
func Attempt(id string) *string {
	return &id
}

// Points returns a points value suitable for Change.Points.
func Points(value float64) *float64 {
	return &value
}

// Percentage returns points/max_points*100, or false when the change carries
// no numeric value.
func (c Change) Percentage() (float64, bool) {
	if c.Points == nil || c.MaxPoints == 0 {
		return 0, false
	}
	return 100 * *c.Points / c.MaxPoints, true
}

// Validate checks the numeric invariants of a change.
func (c Change) Validate() error {
	if c.Points == nil {
		return nil
	}
	if !isFinite(*c.Points) || !isFinite(c.MaxPoints) {
		return apperrors.WithMetadata(apperrors.CodeGradeInvalidPoints,
			"grade change points must be finite numbers",
			map[string]string{"record_id": strconv.FormatInt(c.RecordID, 10)})
	}
	if *c.Points < 0 {
		return apperrors.WithMetadata(apperrors.CodeGradeInvalidPoints,
			"grade change points must not be negative",
			map[string]string{"record_id": strconv.FormatInt(c.RecordID, 10)})
	}
	if c.MaxPoints <= 0 {
		return apperrors.WithMetadata(apperrors.CodeGradeInvalidPoints,
			"grade change with points requires positive max points",
			map[string]string{"record_id": strconv.FormatInt(c.RecordID, 10)})
	}
	return nil
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
