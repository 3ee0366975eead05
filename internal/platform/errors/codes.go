// Package errors provides structured error handling for the grading services.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Grade state machine errors
	CodeGradeAfterOverride        Code = "GRADE_AFTER_OVERRIDE"
	CodeGradeUnknownState         Code = "GRADE_UNKNOWN_STATE"
	CodeGradeInvalidAggregation   Code = "GRADE_INVALID_AGGREGATION"
	CodeGradeOpportunityMismatch  Code = "GRADE_OPPORTUNITY_MISMATCH"
	CodeGradeInvalidPoints        Code = "GRADE_INVALID_POINTS"
	CodeGradeInvalidLegacyAttempt Code = "GRADE_INVALID_LEGACY_ATTEMPT_MODE"

	// Operator input errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// Storage errors
	CodeNotFound           Code = "NOT_FOUND"
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - malformed records or configuration
	case CodeInvalidArgument,
		CodeGradeInvalidPoints,
		CodeGradeInvalidAggregation,
		CodeGradeInvalidLegacyAttempt,
		CodeGradeOpportunityMismatch:
		return codes.InvalidArgument

	// FailedPrecondition - the log cannot be replayed in its current shape
	case CodeGradeAfterOverride,
		CodeGradeUnknownState:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	// Unavailable - the grade log database cannot be opened
	case CodeStorageUnavailable:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}
