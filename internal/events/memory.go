package events

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemorySink keeps events in memory. It serves single-process
// deployments without Redis and tests that assert on the event trail.
type MemorySink struct {
	mu     sync.Mutex
	next   int
	events []Event
}

// NewMemorySink builds an empty in-memory sink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Append(_ context.Context, e Event) (string, error) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.events = append(s.events, e)
	return fmt.Sprintf("%d", s.next), nil
}

// Events returns a copy of everything appended so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// ForRun returns the events recorded for one run, in append order.
func (s *MemorySink) ForRun(runID string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out
}
