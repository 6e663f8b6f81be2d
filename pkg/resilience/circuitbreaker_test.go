package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pitwall-ai/pitwall/pkg/fn"
)

func okStage(_ context.Context, in int) fn.Result[int] {
	return fn.Ok(in)
}

func errStage(_ context.Context, _ int) fn.Result[int] {
	return fn.Err[int](errors.New("upstream down"))
}

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 2, Timeout: time.Minute})
	stage := BreakerStage(b, okStage)

	for i := 0; i < 10; i++ {
		if r := stage(context.Background(), i); r.IsErr() {
			t.Fatalf("call %d failed", i)
		}
	}
	if b.State() != StateClosed {
		t.Fatalf("state = %v, want closed", b.State())
	}
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 3, Timeout: time.Minute})
	stage := BreakerStage(b, errStage)

	for i := 0; i < 3; i++ {
		stage(context.Background(), i)
	}
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	r := stage(context.Background(), 0)
	if _, err := r.Unwrap(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: time.Minute, HalfOpenMax: 1})
	clock := time.Now()
	b.now = func() time.Time { return clock }

	// Trip it.
	CallResult(b, context.Background(), func(context.Context) fn.Result[int] {
		return fn.Err[int](errors.New("boom"))
	})
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	// Timeout elapses, probe succeeds, breaker closes.
	clock = clock.Add(2 * time.Minute)
	if b.State() != StateHalfOpen {
		t.Fatalf("state = %v, want half-open", b.State())
	}
	r := CallResult(b, context.Background(), func(context.Context) fn.Result[int] {
		return fn.Ok(1)
	})
	if r.IsErr() {
		t.Fatal("probe should pass through")
	}
	if b.State() != StateClosed {
		t.Fatalf("state = %v, want closed", b.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: time.Minute})
	clock := time.Now()
	b.now = func() time.Time { return clock }

	CallResult(b, context.Background(), func(context.Context) fn.Result[int] {
		return fn.Err[int](errors.New("boom"))
	})
	clock = clock.Add(2 * time.Minute)

	CallResult(b, context.Background(), func(context.Context) fn.Result[int] {
		return fn.Err[int](errors.New("still down"))
	})
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open again", b.State())
	}
}

func TestBreakerHalfOpenLimitsProbes(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: time.Minute, HalfOpenMax: 1})
	clock := time.Now()
	b.now = func() time.Time { return clock }

	CallResult(b, context.Background(), func(context.Context) fn.Result[int] {
		return fn.Err[int](errors.New("boom"))
	})
	clock = clock.Add(2 * time.Minute)

	probed := make(chan struct{})
	release := make(chan struct{})
	go CallResult(b, context.Background(), func(context.Context) fn.Result[int] {
		close(probed)
		<-release
		return fn.Ok(1)
	})
	<-probed

	// Second call while the probe is in flight is rejected.
	r := CallResult(b, context.Background(), func(context.Context) fn.Result[int] {
		return fn.Ok(2)
	})
	if _, err := r.Unwrap(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	close(release)
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half-open",
		State(99):     "unknown",
	}
	for st, want := range cases {
		if got := st.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", st, got, want)
		}
	}
}
