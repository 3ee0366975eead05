package aggregation

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/gradebook/internal/platform/errors"
)

// Strategy identifies how multiple attempt percentages combine into one grade.
type Strategy string

const (
	StrategyUnspecified Strategy = ""
	StrategyMaxGrade    Strategy = "max_grade"
	StrategyAvgGrade    Strategy = "avg_grade"
	StrategyMinGrade    Strategy = "min_grade"
	StrategyUseEarliest Strategy = "use_earliest"
	StrategyUseLatest   Strategy = "use_latest"
)

// Strategies lists every supported strategy.
func Strategies() []Strategy {
	return []Strategy{
		StrategyMaxGrade,
		StrategyAvgGrade,
		StrategyMinGrade,
		StrategyUseEarliest,
		StrategyUseLatest,
	}
}

// NormalizeStrategy parses a strategy label into a canonical value.
func NormalizeStrategy(value string) (Strategy, bool) {
	switch Strategy(strings.ToLower(strings.TrimSpace(value))) {
	case StrategyMaxGrade:
		return StrategyMaxGrade, true
	case StrategyAvgGrade:
		return StrategyAvgGrade, true
	case StrategyMinGrade:
		return StrategyMinGrade, true
	case StrategyUseEarliest:
		return StrategyUseEarliest, true
	case StrategyUseLatest:
		return StrategyUseLatest, true
	default:
		return StrategyUnspecified, false
	}
}

// Validate returns a configuration error unless s is a canonical strategy.
func (s Strategy) Validate() error {
	if normalized, ok := NormalizeStrategy(string(s)); !ok || normalized != s {
		return apperrors.WithMetadata(
			apperrors.CodeGradeInvalidAggregation,
			"invalid grade aggregation strategy '"+string(s)+"'",
			map[string]string{"strategy": string(s)},
		)
	}
	return nil
}

// Contribution is one attempt's current percentage and the grade time of the
// change that defined it.
type Contribution struct {
	Percentage float64
	DefinedAt  time.Time
}

// Aggregate combines contributions, which must be ordered by definition
// (earliest first), using strategy. The boolean is false when there is
// nothing to aggregate.
func Aggregate(strategy Strategy, contributions []Contribution) (float64, bool, error) {
	if err := strategy.Validate(); err != nil {
		return 0, false, err
	}
	if len(contributions) == 0 {
		return 0, false, nil
	}

	switch strategy {
	case StrategyMaxGrade:
		best := contributions[0].Percentage
		for _, c := range contributions[1:] {
			best = max(best, c.Percentage)
		}
		return best, true, nil
	case StrategyMinGrade:
		worst := contributions[0].Percentage
		for _, c := range contributions[1:] {
			worst = min(worst, c.Percentage)
		}
		return worst, true, nil
	case StrategyAvgGrade:
		var sum float64
		for _, c := range contributions {
			sum += c.Percentage
		}
		return sum / float64(len(contributions)), true, nil
	case StrategyUseEarliest:
		earliest := contributions[0]
		for _, c := range contributions[1:] {
			if c.DefinedAt.Before(earliest.DefinedAt) {
				earliest = c
			}
		}
		return earliest.Percentage, true, nil
	case StrategyUseLatest:
		latest := contributions[len(contributions)-1]
		for i := len(contributions) - 2; i >= 0; i-- {
			if contributions[i].DefinedAt.After(latest.DefinedAt) {
				latest = contributions[i]
			}
		}
		return latest.Percentage, true, nil
	}
	// Validate rejects everything else.
	return 0, false, nil
}
