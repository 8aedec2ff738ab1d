// Package events is the audit trail for planning runs. Appends are
// fire-and-forget: a sink failure is logged and never blocks the plan.
package events

import (
	"context"
	"time"
)

// Event is one audit record: a stage transition, a warning, or a
// deployment outcome for a run.
type Event struct {
	RunID   string            `json:"run_id"`
	Type    string            `json:"type"`
	Stage   string            `json:"stage,omitempty"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	At      time.Time         `json:"at"`
}

// Event types.
const (
	TypeStageStarted  = "stage_started"
	TypeStageFinished = "stage_finished"
	TypeStageFailed   = "stage_failed"
	TypeWarning       = "warning"
	TypeRunFinished   = "run_finished"
	TypeDeployment    = "deployment"
)

// Sink receives events. Append returns the sink-assigned event id.
type Sink interface {
	Append(ctx context.Context, e Event) (string, error)
}
