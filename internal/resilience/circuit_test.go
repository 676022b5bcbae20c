package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

var errUpstream = errors.New("upstream 503")

func fail(b *Breaker, err error) {
	_, _ = Do(context.Background(), b, func(_ context.Context) (struct{}, error) {
		return struct{}{}, err
	})
}

func TestBreaker_ClosedPassesThrough(t *testing.T) {
	b := NewBreaker("primary", DefaultConfig())

	calls := 0
	v, err := Do(context.Background(), b, func(_ context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "ok" || calls != 1 {
		t.Errorf("got %q after %d calls", v, calls)
	}
	if b.State() != Closed {
		t.Errorf("expected closed, got %s", b.State())
	}
}

func TestBreaker_OpensAtThreshold(t *testing.T) {
	b := NewBreaker("primary", Config{Threshold: 3, CoolDown: time.Minute})

	for i := 0; i < 3; i++ {
		fail(b, errUpstream)
	}
	if b.State() != Open {
		t.Fatalf("expected open, got %s", b.State())
	}

	v, err := Do(context.Background(), b, func(_ context.Context) (int, error) {
		t.Error("fn must not run while open")
		return 1, nil
	})
	if !errors.Is(err, ErrOpen) {
		t.Errorf("expected ErrOpen, got %v", err)
	}
	if v != 0 {
		t.Errorf("expected zero value, got %d", v)
	}
}

func TestBreaker_SuccessClearsFailures(t *testing.T) {
	b := NewBreaker("primary", Config{Threshold: 3, CoolDown: time.Minute})

	fail(b, errUpstream)
	fail(b, errUpstream)
	if s := b.Snapshot(); s.Failures != 2 || s.State != Closed {
		t.Fatalf("unexpected snapshot %+v", s)
	}

	fail(b, nil)
	if s := b.Snapshot(); s.Failures != 0 {
		t.Errorf("expected failures reset, got %d", s.Failures)
	}
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	now := time.Now()
	b := NewBreaker("primary", Config{Threshold: 2, CoolDown: 100 * time.Millisecond})
	b.now = func() time.Time { return now }

	fail(b, errUpstream)
	fail(b, errUpstream)
	if b.State() != Open {
		t.Fatalf("expected open, got %s", b.State())
	}

	b.now = func() time.Time { return now.Add(200 * time.Millisecond) }
	if b.State() != HalfOpen {
		t.Fatalf("expected half-open, got %s", b.State())
	}

	fail(b, nil)
	if b.State() != Closed {
		t.Errorf("expected closed after probe, got %s", b.State())
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker("primary", Config{Threshold: 2, CoolDown: 100 * time.Millisecond})
	b.now = func() time.Time { return now }

	fail(b, errUpstream)
	fail(b, errUpstream)

	later := now.Add(200 * time.Millisecond)
	b.now = func() time.Time { return later }
	fail(b, errUpstream)

	s := b.Snapshot()
	if s.State != Open {
		t.Errorf("expected open after failed probe, got %s", s.State)
	}
	if s.Failures != 3 {
		t.Errorf("expected 3 failures, got %d", s.Failures)
	}
}

func TestBreaker_CountsFilter(t *testing.T) {
	parseErr := errors.New("bad json")
	b := NewBreaker("primary", Config{
		Threshold: 2,
		CoolDown:  time.Minute,
		Counts:    func(err error) bool { return !errors.Is(err, parseErr) },
	})

	for i := 0; i < 5; i++ {
		fail(b, parseErr)
	}
	if b.State() != Closed {
		t.Fatalf("uncounted errors must not open the breaker, got %s", b.State())
	}

	fail(b, errUpstream)
	fail(b, errUpstream)
	if b.State() != Open {
		t.Errorf("expected open, got %s", b.State())
	}
}

func TestBreaker_Reset(t *testing.T) {
	b := NewBreaker("primary", Config{Threshold: 1, CoolDown: time.Hour})
	fail(b, errUpstream)
	if b.State() != Open {
		t.Fatalf("expected open, got %s", b.State())
	}

	b.Reset()
	if b.State() != Closed {
		t.Errorf("expected closed after reset, got %s", b.State())
	}
}

func TestBreaker_Concurrent(t *testing.T) {
	t.Parallel()
	b := NewBreaker("primary", Config{Threshold: 100, CoolDown: time.Minute})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				fail(b, errUpstream)
			} else {
				fail(b, nil)
			}
		}()
	}
	wg.Wait()
}

func TestBreakers_PerModel(t *testing.T) {
	set := NewBreakers(Config{Threshold: 1, CoolDown: time.Hour})

	a1 := set.For("small-model")
	a2 := set.For("small-model")
	b := set.For("large-model")
	if a1 != a2 {
		t.Error("expected the same breaker for the same model")
	}
	if a1 == b {
		t.Error("expected distinct breakers per model")
	}

	fail(a1, errUpstream)

	snaps := set.Snapshots()
	if snaps["small-model"].State != Open {
		t.Errorf("expected small-model open, got %s", snaps["small-model"].State)
	}
	if snaps["large-model"].State != Closed {
		t.Errorf("expected large-model closed, got %s", snaps["large-model"].State)
	}

	models := set.Models()
	if len(models) != 2 || models[0] != "large-model" {
		t.Errorf("unexpected models %v", models)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Closed, "closed"},
		{Open, "open"},
		{HalfOpen, "half-open"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
