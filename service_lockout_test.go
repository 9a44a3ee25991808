package goSession

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLockoutThresholdTriggersLock(t *testing.T) {
	service, _, done := newTestService(t, func(cfg *Config) {
		cfg.Lockout.Threshold = 3
		cfg.Lockout.Cooldown = time.Minute
	})
	defer done()

	ctx := context.Background()

	for i := 1; i < 3; i++ {
		status, err := service.RecordFailedLogin(ctx, "acct")
		if err != nil {
			t.Fatalf("RecordFailedLogin %d failed: %v", i, err)
		}
		if status.Locked {
			t.Fatalf("attempt %d should not lock yet", i)
		}
		if status.Failures != i {
			t.Fatalf("attempt %d: expected %d failures, got %d", i, i, status.Failures)
		}
	}

	status, err := service.RecordFailedLogin(ctx, "acct")
	if err != nil {
		t.Fatalf("threshold attempt failed: %v", err)
	}
	if !status.Locked {
		t.Fatal("expected lock at threshold")
	}

	current, err := service.IsLockedOut(ctx, "acct")
	if err != nil {
		t.Fatalf("IsLockedOut failed: %v", err)
	}
	if !current.Locked {
		t.Fatal("expected locked account")
	}
	if current.RetryAfter <= 0 || current.RetryAfter > time.Minute {
		t.Fatalf("unexpected retry-after %v", current.RetryAfter)
	}
}

func TestLockedAccountCannotIssueSessions(t *testing.T) {
	service, _, done := newTestService(t, func(cfg *Config) {
		cfg.Lockout.Threshold = 2
		cfg.Lockout.Cooldown = time.Minute
	})
	defer done()

	ctx := context.Background()

	service.RecordFailedLogin(ctx, "u1")
	service.RecordFailedLogin(ctx, "u1")

	if _, err := service.IssueSession(ctx, "u1", "dev"); !errors.Is(err, ErrLockedOut) {
		t.Fatalf("expected ErrLockedOut, got %v", err)
	}
}

func TestSuccessfulLoginResetsLockout(t *testing.T) {
	service, _, done := newTestService(t, func(cfg *Config) {
		cfg.Lockout.Threshold = 2
		cfg.Lockout.Cooldown = time.Minute
	})
	defer done()

	ctx := context.Background()

	service.RecordFailedLogin(ctx, "u1")
	service.RecordFailedLogin(ctx, "u1")

	if err := service.RecordSuccessfulLogin(ctx, "u1"); err != nil {
		t.Fatalf("RecordSuccessfulLogin failed: %v", err)
	}

	status, err := service.IsLockedOut(ctx, "u1")
	if err != nil {
		t.Fatalf("IsLockedOut failed: %v", err)
	}
	if status.Locked || status.Failures != 0 {
		t.Fatalf("expected clean slate after reset, got %+v", status)
	}

	if _, err := service.IssueSession(ctx, "u1", "dev"); err != nil {
		t.Fatalf("IssueSession after reset failed: %v", err)
	}
}

func TestLockoutCooldownExpires(t *testing.T) {
	service, mr, done := newTestService(t, func(cfg *Config) {
		cfg.Lockout.Threshold = 2
		cfg.Lockout.Cooldown = 30 * time.Second
	})
	defer done()

	ctx := context.Background()

	service.RecordFailedLogin(ctx, "u1")
	service.RecordFailedLogin(ctx, "u1")

	mr.FastForward(31 * time.Second)

	status, err := service.IsLockedOut(ctx, "u1")
	if err != nil {
		t.Fatalf("IsLockedOut failed: %v", err)
	}
	if status.Locked {
		t.Fatal("cooldown should have expired")
	}
}

func TestIsLockedOutFailsClosedOnStoreOutage(t *testing.T) {
	service, mr, done := newTestService(t, nil)
	defer done()

	mr.Close()

	if _, err := service.IsLockedOut(context.Background(), "u1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestIsBlacklistedFailsClosedOnStoreOutage(t *testing.T) {
	service, mr, done := newTestService(t, nil)
	defer done()

	mr.Close()

	if _, err := service.IsBlacklisted(context.Background(), "token-1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestDisabledLockoutIsInert(t *testing.T) {
	service, _, done := newTestService(t, func(cfg *Config) {
		cfg.Lockout.Enabled = false
	})
	defer done()

	ctx := context.Background()

	for i := 0; i < 10; i++ {
		status, err := service.RecordFailedLogin(ctx, "u1")
		if err != nil {
			t.Fatalf("RecordFailedLogin failed: %v", err)
		}
		if status.Locked {
			t.Fatal("disabled lockout must never lock")
		}
	}

	if _, err := service.IssueSession(ctx, "u1", "dev"); err != nil {
		t.Fatalf("IssueSession failed: %v", err)
	}
}
