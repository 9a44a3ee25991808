package goSession

import (
	"context"
	"fmt"
)

/*
====================================
LOCKOUT & BLACKLIST
====================================
*/

// RecordFailedLogin increments the rolling failure counter for an account
// and, once the configured threshold is reached, places the cooldown lock.
// Returns the updated [LockoutStatus].
//
// RecordFailedLogin may return an error when input validation, dependency calls, or security checks fail.
// RecordFailedLogin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) RecordFailedLogin(ctx context.Context, accountID string) (LockoutStatus, error) {
	if s == nil {
		return LockoutStatus{}, ErrServiceNotReady
	}
	if !s.config.Lockout.Enabled {
		return LockoutStatus{}, nil
	}

	count, locked, err := s.lockout.RecordFailure(ctx, accountID)
	if err != nil {
		s.metricInc(MetricStoreUnavailable)
		return LockoutStatus{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	status := LockoutStatus{Failures: count, Locked: locked}
	if locked {
		status.RetryAfter = s.config.Lockout.Cooldown
		s.metricInc(MetricLockoutTriggered)
		s.emitAudit(ctx, AuditEvent{
			EventType: AuditLockoutTrigger,
			UserID:    accountID,
			Metadata:  map[string]string{"failures": fmt.Sprint(count)},
		})
	}
	return status, nil
}

// RecordSuccessfulLogin clears the failure counter and any lock for an
// account after a successful authentication.
//
// RecordSuccessfulLogin may return an error when input validation, dependency calls, or security checks fail.
// RecordSuccessfulLogin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) RecordSuccessfulLogin(ctx context.Context, accountID string) error {
	if s == nil {
		return ErrServiceNotReady
	}
	if !s.config.Lockout.Enabled {
		return nil
	}

	if err := s.lockout.Reset(ctx, accountID); err != nil {
		s.metricInc(MetricStoreUnavailable)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// IsLockedOut reports the current lockout state for an account. A store
// communication failure propagates as an error rather than reporting
// "not locked".
//
// IsLockedOut may return an error when input validation, dependency calls, or security checks fail.
// IsLockedOut does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) IsLockedOut(ctx context.Context, accountID string) (LockoutStatus, error) {
	if s == nil {
		return LockoutStatus{}, ErrServiceNotReady
	}
	if !s.config.Lockout.Enabled {
		return LockoutStatus{}, nil
	}

	locked, retryAfter, err := s.lockout.IsLocked(ctx, accountID)
	if err != nil {
		s.metricInc(MetricStoreUnavailable)
		return LockoutStatus{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	count, err := s.lockout.FailureCount(ctx, accountID)
	if err != nil {
		s.metricInc(MetricStoreUnavailable)
		return LockoutStatus{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return LockoutStatus{
		Failures:   count,
		Locked:     locked,
		RetryAfter: retryAfter,
	}, nil
}

// IsBlacklisted reports whether an access credential's token ID has been
// revoked. A store communication failure propagates as an error — the check
// fails closed.
//
// IsBlacklisted may return an error when input validation, dependency calls, or security checks fail.
// IsBlacklisted does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) IsBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	if s == nil {
		return false, ErrServiceNotReady
	}

	hit, err := s.blacklist.IsBlacklisted(ctx, tokenID)
	if err != nil {
		s.metricInc(MetricStoreUnavailable)
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if hit {
		s.metricInc(MetricBlacklistHit)
	}
	return hit, nil
}

// VerifyAccess validates a signed access credential and checks it against
// the blacklist. Returns the user ID it carries.
//
// VerifyAccess may return an error when input validation, dependency calls, or security checks fail.
// VerifyAccess does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) VerifyAccess(ctx context.Context, accessToken string) (string, error) {
	if s == nil {
		return "", ErrServiceNotReady
	}

	userID, tokenID, _, err := s.issuer.Verify(accessToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAccessInvalid, err)
	}

	hit, err := s.IsBlacklisted(ctx, tokenID)
	if err != nil {
		return "", err
	}
	if hit {
		return "", ErrAccessInvalid
	}
	return userID, nil
}
