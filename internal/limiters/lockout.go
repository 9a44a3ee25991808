package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goSession/kv"
)

// LockoutConfig holds configuration for the account lockout tracker.
type LockoutConfig struct {
	Threshold int
	Cooldown  time.Duration
	// Window bounds the rolling failure-counting window. Zero falls back
	// to Cooldown.
	Window time.Duration
}

var (
	// ErrLockoutUnavailable indicates the lockout backend is unreachable.
	ErrLockoutUnavailable = errors.New("lockout backend unavailable")
)

// LockoutTracker tracks failed login attempts per account identifier and
// places a cooldown lock once the configured threshold is reached.
type LockoutTracker struct {
	kv     *kv.Client
	config LockoutConfig
}

// NewLockoutTracker creates a new lockout tracker.
func NewLockoutTracker(client *kv.Client, cfg LockoutConfig) *LockoutTracker {
	if cfg.Window <= 0 {
		cfg.Window = cfg.Cooldown
	}
	return &LockoutTracker{kv: client, config: cfg}
}

func (l *LockoutTracker) counterKey(accountID string) string {
	return "glf:" + accountID
}

func (l *LockoutTracker) lockKey(accountID string) string {
	return "gll:" + accountID
}

// RecordFailure increments the failure counter for an account and, once the
// threshold is crossed, writes the cooldown lock marker. Returns the current
// count and whether the account is now locked.
func (l *LockoutTracker) RecordFailure(ctx context.Context, accountID string) (int, bool, error) {
	if accountID == "" || l.config.Threshold <= 0 {
		return 0, false, nil
	}

	res := l.kv.Increment(ctx, l.counterKey(accountID))
	if res.Status != kv.StatusOK {
		return 0, false, fmt.Errorf("%w: %v", ErrLockoutUnavailable, res.Err)
	}

	if res.Value == 1 && l.config.Window > 0 {
		// TTL on first failure makes the counter a rolling window.
		if eres := l.kv.Expire(ctx, l.counterKey(accountID), l.config.Window); eres.Status != kv.StatusOK && eres.Status != kv.StatusNotFound {
			return int(res.Value), false, fmt.Errorf("%w: %v", ErrLockoutUnavailable, eres.Err)
		}
	}

	if res.Value < int64(l.config.Threshold) {
		return int(res.Value), false, nil
	}

	if sres := l.kv.SetWithTTL(ctx, l.lockKey(accountID), []byte("1"), l.config.Cooldown); sres.Status != kv.StatusOK {
		return int(res.Value), false, fmt.Errorf("%w: %v", ErrLockoutUnavailable, sres.Err)
	}
	return int(res.Value), true, nil
}

// IsLocked reports whether the cooldown lock marker exists. A store
// communication failure propagates as an error; it is never reported as
// "not locked".
func (l *LockoutTracker) IsLocked(ctx context.Context, accountID string) (bool, time.Duration, error) {
	if accountID == "" || l.config.Threshold <= 0 {
		return false, 0, nil
	}

	res := l.kv.Get(ctx, l.lockKey(accountID))
	switch res.Status {
	case kv.StatusFound:
		return true, res.TTL, nil
	case kv.StatusNotFound:
		return false, 0, nil
	default:
		return false, 0, fmt.Errorf("%w: %v", ErrLockoutUnavailable, res.Err)
	}
}

// Reset clears both the failure counter and the lock marker, e.g. after a
// successful login or a manual unlock.
func (l *LockoutTracker) Reset(ctx context.Context, accountID string) error {
	if accountID == "" {
		return nil
	}

	res := l.kv.Delete(ctx, l.counterKey(accountID), l.lockKey(accountID))
	if res.Status != kv.StatusOK {
		return fmt.Errorf("%w: %v", ErrLockoutUnavailable, res.Err)
	}
	return nil
}

// FailureCount returns the current failure count for an account.
func (l *LockoutTracker) FailureCount(ctx context.Context, accountID string) (int, error) {
	if accountID == "" {
		return 0, nil
	}

	res := l.kv.Get(ctx, l.counterKey(accountID))
	switch res.Status {
	case kv.StatusFound:
		count := 0
		for _, c := range res.Value {
			if c < '0' || c > '9' {
				return 0, nil
			}
			count = count*10 + int(c-'0')
		}
		return count, nil
	case kv.StatusNotFound:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrLockoutUnavailable, res.Err)
	}
}
