// Package aggregation reduces per-attempt grade percentages into one
// aggregate percentage according to a grading opportunity's strategy.
//
// Strategies are pure functions over contributions ordered by the time their
// defining grade change occurred. An empty set of contributions has no
// aggregate; that is a normal outcome for an ungraded learner, not an error.
package aggregation
