package limiters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/kv"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestTracker(t *testing.T, cfg LockoutConfig) (*LockoutTracker, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	client := kv.NewClient(rdb, time.Second, 100*time.Millisecond)

	return NewLockoutTracker(client, cfg), mr, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func TestRecordFailureLocksAtThreshold(t *testing.T) {
	tracker, _, done := newTestTracker(t, LockoutConfig{Threshold: 3, Cooldown: time.Minute})
	defer done()

	ctx := context.Background()

	for i := 1; i < 3; i++ {
		count, locked, err := tracker.RecordFailure(ctx, "acct")
		if err != nil {
			t.Fatalf("RecordFailure %d failed: %v", i, err)
		}
		if locked {
			t.Fatalf("attempt %d should not lock yet", i)
		}
		if count != i {
			t.Fatalf("attempt %d: expected count %d, got %d", i, i, count)
		}
	}

	count, locked, err := tracker.RecordFailure(ctx, "acct")
	if err != nil {
		t.Fatalf("threshold attempt failed: %v", err)
	}
	if !locked || count != 3 {
		t.Fatalf("expected lock at threshold, got locked=%v count=%d", locked, count)
	}

	isLocked, retryAfter, err := tracker.IsLocked(ctx, "acct")
	if err != nil {
		t.Fatalf("IsLocked failed: %v", err)
	}
	if !isLocked {
		t.Fatal("expected locked account")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Fatalf("unexpected retry-after %v", retryAfter)
	}
}

func TestResetClearsCounterAndLock(t *testing.T) {
	tracker, _, done := newTestTracker(t, LockoutConfig{Threshold: 2, Cooldown: time.Minute})
	defer done()

	ctx := context.Background()

	tracker.RecordFailure(ctx, "acct")
	tracker.RecordFailure(ctx, "acct")

	if err := tracker.Reset(ctx, "acct"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	locked, _, err := tracker.IsLocked(ctx, "acct")
	if err != nil {
		t.Fatalf("IsLocked failed: %v", err)
	}
	if locked {
		t.Fatal("expected unlocked account after reset")
	}
	count, err := tracker.FailureCount(ctx, "acct")
	if err != nil {
		t.Fatalf("FailureCount failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero failures after reset, got %d", count)
	}
}

func TestFailureWindowExpires(t *testing.T) {
	tracker, mr, done := newTestTracker(t, LockoutConfig{Threshold: 3, Cooldown: time.Minute, Window: 10 * time.Second})
	defer done()

	ctx := context.Background()

	tracker.RecordFailure(ctx, "acct")
	tracker.RecordFailure(ctx, "acct")

	mr.FastForward(11 * time.Second)

	count, locked, err := tracker.RecordFailure(ctx, "acct")
	if err != nil {
		t.Fatalf("RecordFailure failed: %v", err)
	}
	if locked {
		t.Fatal("window expiry should have reset the counter")
	}
	if count != 1 {
		t.Fatalf("expected fresh counter after window expiry, got %d", count)
	}
}

func TestIsLockedFailsClosedOnStoreOutage(t *testing.T) {
	tracker, mr, done := newTestTracker(t, LockoutConfig{Threshold: 3, Cooldown: time.Minute})
	defer done()

	mr.Close()

	_, _, err := tracker.IsLocked(context.Background(), "acct")
	if !errors.Is(err, ErrLockoutUnavailable) {
		t.Fatalf("expected ErrLockoutUnavailable, got %v", err)
	}
}

func TestZeroThresholdDisablesTracking(t *testing.T) {
	tracker, _, done := newTestTracker(t, LockoutConfig{Threshold: 0, Cooldown: time.Minute})
	defer done()

	count, locked, err := tracker.RecordFailure(context.Background(), "acct")
	if err != nil || locked || count != 0 {
		t.Fatalf("disabled tracker must be inert, got count=%d locked=%v err=%v", count, locked, err)
	}
}
