package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLimiterAllowDrainsBurst(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 1, Burst: 3})
	clock := time.Now()
	l.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		if !l.Allow() {
			t.Fatalf("call %d should be allowed", i)
		}
	}
	if l.Allow() {
		t.Fatal("bucket should be empty")
	}
}

func TestLimiterRefills(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 2, Burst: 1})
	clock := time.Now()
	l.now = func() time.Time { return clock }

	if !l.Allow() {
		t.Fatal("first call should be allowed")
	}
	if l.Allow() {
		t.Fatal("bucket should be empty")
	}

	clock = clock.Add(time.Second)
	if !l.Allow() {
		t.Fatal("bucket should have refilled")
	}
}

func TestLimiterRefillCapsAtBurst(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 100, Burst: 2})
	clock := time.Now()
	l.now = func() time.Time { return clock }

	l.Allow()
	clock = clock.Add(time.Hour)

	allowed := 0
	for l.Allow() {
		allowed++
	}
	if allowed != 2 {
		t.Fatalf("allowed = %d, want burst cap 2", allowed)
	}
}

func TestLimiterWaitBlocksThenAllows(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 100, Burst: 1})

	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	// Bucket is empty, Wait should block for roughly 10ms.
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("second Wait: %v", err)
	}
}

func TestLimiterWaitHonorsContext(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 0.001, Burst: 1})
	l.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestNewLimiterDefaultsBurst(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 1})
	if !l.Allow() {
		t.Fatal("burst should default to 1")
	}
	if l.Allow() {
		t.Fatal("only one token expected")
	}
}
