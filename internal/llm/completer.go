// Package llm wraps the external text-completion collaborator behind a
// narrow request/response contract and classifies its failures so the
// retry policy can treat them as data.
package llm

import (
	"context"
	"errors"
	"strings"
)

// Params holds per-call generation parameters.
type Params struct {
	MaxTokens   int
	Temperature float64
}

// Completer is the contract to the external generation service. Both
// the creative generator and the intent parser consume it.
type Completer interface {
	Complete(ctx context.Context, prompt string, p Params) (string, error)
}

// transientError marks a failure another attempt may fix (timeout,
// rate limit, service hiccup).
type transientError struct{ err error }

func (e *transientError) Error() string { return "transient: " + e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// MarkTransient wraps err so IsTransient reports true for it.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether the failure is worth retrying. Context
// expiry is not transient: the run's deadline is gone either way.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var te *transientError
	return errors.As(err, &te)
}

// classify wraps provider errors, marking rate limits and server-side
// hiccups transient. Anything else (bad prompt, auth) is permanent.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"throttl", "rate", "timeout", "deadline", "unavailable", "too many requests", "500", "502", "503"} {
		if strings.Contains(msg, marker) {
			return MarkTransient(err)
		}
	}
	return err
}
