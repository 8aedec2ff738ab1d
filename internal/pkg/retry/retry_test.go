package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestDoSuccessFirstAttempt(t *testing.T) {
	var calls int
	err := fastPolicy().Do(context.Background(), func(ctx context.Context, attempt int) (Outcome, error) {
		calls++
		return Success, nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoRetriesTransient(t *testing.T) {
	var calls int
	err := fastPolicy().Do(context.Background(), func(ctx context.Context, attempt int) (Outcome, error) {
		calls++
		if calls < 3 {
			return Transient, errors.New("hiccup")
		}
		return Success, nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoExhaustion(t *testing.T) {
	hiccup := errors.New("hiccup")
	var calls int
	err := fastPolicy().Do(context.Background(), func(ctx context.Context, attempt int) (Outcome, error) {
		calls++
		return Transient, hiccup
	})
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
	if !errors.Is(err, hiccup) {
		t.Errorf("exhaustion must carry the last error, got %v", err)
	}
}

func TestDoPermanentStopsImmediately(t *testing.T) {
	rejected := errors.New("rejected")
	var calls int
	err := fastPolicy().Do(context.Background(), func(ctx context.Context, attempt int) (Outcome, error) {
		calls++
		return Permanent, rejected
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, rejected) {
		t.Errorf("expected the permanent error, got %v", err)
	}
	if errors.Is(err, ErrExhausted) {
		t.Error("permanent failures are not exhaustion")
	}
}

func TestDoHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	err := Policy{MaxAttempts: 5, BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second}.Do(ctx,
		func(ctx context.Context, attempt int) (Outcome, error) {
			calls++
			cancel()
			return Transient, errors.New("hiccup")
		})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (cancellation interrupts the backoff wait)", calls)
	}
}

func TestDelayCappedAndFloored(t *testing.T) {
	p := Policy{MaxAttempts: 10, BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}
	for n := 1; n <= 9; n++ {
		d := p.delay(n)
		if d < 50*time.Millisecond {
			t.Errorf("delay(%d) = %v below the jitter floor", n, d)
		}
		if d > p.MaxDelay {
			t.Errorf("delay(%d) = %v exceeds the cap", n, d)
		}
	}
}
