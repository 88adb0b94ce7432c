package rpc

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucketAllowsBurstUpToCapacity(t *testing.T) {
	t.Parallel()
	tb := NewTokenBucket(3, 1)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := tb.Wait(ctx); err != nil {
			t.Fatalf("Wait(%d): %v", i, err)
		}
	}
}

func TestTokenBucketBlocksUntilRefill(t *testing.T) {
	t.Parallel()
	tb := NewTokenBucket(1, 50) // 50/s refill => ~20ms per token
	ctx := context.Background()

	if err := tb.Wait(ctx); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	start := time.Now()
	if err := tb.Wait(ctx); err != nil {
		t.Fatalf("second Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("second Wait returned after %v, expected to block for a refill", elapsed)
	}
}

func TestTokenBucketRespectsContextCancellation(t *testing.T) {
	t.Parallel()
	tb := NewTokenBucket(1, 0.001) // effectively never refills within the test window
	tb.Wait(context.Background())  // drain the only token

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := tb.Wait(ctx)
	if err == nil {
		t.Error("expected Wait to return an error when the context is cancelled first")
	}
}

func TestNewRateLimiterAppliesBurstFloor(t *testing.T) {
	t.Parallel()
	rl := NewRateLimiter(10, 0, 5, 20)

	if rl.Reads == nil || rl.Events == nil || rl.DevInspect == nil || rl.Submit == nil {
		t.Fatal("expected all four buckets to be constructed")
	}
	// A zero configured rate must not produce a zero-capacity bucket that
	// can never admit a single call.
	if err := rl.Events.Wait(context.Background()); err != nil {
		t.Errorf("Events.Wait with a zero configured rate should still admit once: %v", err)
	}
}
