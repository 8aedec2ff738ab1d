// Package planner holds the error taxonomy and shared validation for
// the campaign planning pipeline.
package planner

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable class of a pipeline failure.
type ErrorKind string

const (
	KindValidation             ErrorKind = "validation_error"
	KindInsufficientCandidates ErrorKind = "insufficient_candidates"
	KindBudgetTooSmall         ErrorKind = "budget_too_small"
	KindGenerationTransient    ErrorKind = "generation_transient"
	KindGenerationExhausted    ErrorKind = "generation_exhausted"
	KindQAExhausted            ErrorKind = "qa_exhausted"
	KindDeployment             ErrorKind = "deployment_error"
	KindUpstreamTimeout        ErrorKind = "upstream_timeout"
	KindParse                  ErrorKind = "parse_error"
)

// Error is a pipeline failure with a kind and context. Stage-fatal
// errors are surfaced verbatim to the caller.
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Fatal reports whether this error aborts the whole run.
func (e *Error) Fatal() bool {
	switch e.Kind {
	case KindValidation, KindInsufficientCandidates, KindBudgetTooSmall, KindParse:
		return true
	}
	return false
}

// NewError builds a pipeline error with optional key-value details.
func NewError(kind ErrorKind, message string, kv ...any) *Error {
	details := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		details[fmt.Sprintf("%v", kv[i])] = kv[i+1]
	}
	return &Error{Kind: kind, Message: message, Details: details}
}

// KindOf extracts the kind from a pipeline error; plain errors are
// treated as validation failures.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindValidation
}
