package goSession

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/MrEthical07/goSession/internal"
	"github.com/MrEthical07/goSession/internal/flows"
)

/*
====================================
SESSION LIFECYCLE
====================================
*/

// IssueSession creates a fresh session for an authenticated user: a new
// refresh credential bound to the user, tracked in the user's bounded
// session set, plus a signed access credential. Callers authenticate the
// user first; this call only mints.
//
// IssueSession may return an error when input validation, dependency calls, or security checks fail.
// IssueSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) IssueSession(ctx context.Context, userID, deviceInfo string) (*SessionTokens, error) {
	if s == nil {
		return nil, ErrServiceNotReady
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", ErrSessionCreationFailed)
	}

	if s.config.Lockout.Enabled {
		locked, _, err := s.lockout.IsLocked(ctx, userID)
		if err != nil {
			s.metricInc(MetricStoreUnavailable)
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if locked {
			s.metricInc(MetricLockoutDenied)
			s.emitAudit(ctx, AuditEvent{
				EventType: AuditLockoutDenied,
				UserID:    userID,
			})
			return nil, ErrLockedOut
		}
	}

	result := flows.RunIssue(ctx, userID, deviceInfo, s.issueDeps())

	s.recordEvictions(ctx, userID, result.Evicted)

	switch result.Failure {
	case flows.IssueFailureNone:
	case flows.IssueFailureUnavailable, flows.IssueFailureStore:
		s.metricInc(MetricSessionIssueFailure)
		s.metricInc(MetricStoreUnavailable)
		if result.Err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Err)
		}
		return nil, ErrStoreUnavailable
	default:
		s.metricInc(MetricSessionIssueFailure)
		return nil, fmt.Errorf("%w: %v", ErrSessionCreationFailed, result.Err)
	}

	s.metricInc(MetricSessionIssued)
	s.emitAudit(ctx, AuditEvent{
		EventType:    AuditSessionIssued,
		UserID:       userID,
		CredentialID: result.CredentialID,
		Success:      true,
	})

	return &SessionTokens{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.AccessExpiresAt.Sub(s.clock.Now()),
	}, nil
}

// Refresh rotates a refresh credential: the presented single-use credential
// is validated, a replacement is written and confirmed, and only then is the
// old one retired. Presenting an already-rotated credential revokes the
// user's entire session set and returns [ErrTokenReused].
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*SessionTokens, error) {
	if s == nil {
		return nil, ErrServiceNotReady
	}

	start := s.clock.Now()
	result := flows.RunRefresh(ctx, refreshToken, s.refreshDeps())
	s.metricObserve(MetricRefreshLatency, s.clock.Now().Sub(start))

	switch result.Failure {
	case flows.RefreshFailureNone:
	case flows.RefreshFailureDecode, flows.RefreshFailureInvalid:
		s.metricInc(MetricRefreshFailure)
		s.emitAudit(ctx, AuditEvent{
			EventType:    AuditSessionRefresh,
			UserID:       result.UserID,
			CredentialID: result.OldCredentialID,
			Error:        "invalid credential",
		})
		return nil, ErrTokenInvalid
	case flows.RefreshFailureReuse:
		s.metricInc(MetricRefreshFailure)
		s.metricInc(MetricRefreshReuseDetected)
		s.metricInc(MetricRevokeAll)
		s.emitAudit(ctx, AuditEvent{
			EventType:    AuditReuseDetected,
			UserID:       result.UserID,
			CredentialID: result.OldCredentialID,
		})
		s.emitAudit(ctx, AuditEvent{
			EventType: AuditRevokeAll,
			UserID:    result.UserID,
			Success:   true,
			Metadata:  map[string]string{"reason": "refresh_reuse"},
		})
		return nil, ErrTokenReused
	case flows.RefreshFailureUnavailable:
		s.metricInc(MetricRefreshFailure)
		s.metricInc(MetricStoreUnavailable)
		if result.Err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Err)
		}
		return nil, ErrStoreUnavailable
	case flows.RefreshFailurePartialWrite:
		s.metricInc(MetricRefreshFailure)
		s.metricInc(MetricRotationAborted)
		s.emitAudit(ctx, AuditEvent{
			EventType:    AuditRotationAborted,
			UserID:       result.UserID,
			CredentialID: result.OldCredentialID,
			Error:        "new record unconfirmed",
		})
		if result.Err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRotationAborted, result.Err)
		}
		return nil, ErrRotationAborted
	default:
		s.metricInc(MetricRefreshFailure)
		return nil, fmt.Errorf("%w: %v", ErrSessionCreationFailed, result.Err)
	}

	s.metricInc(MetricRefreshSuccess)
	s.emitAudit(ctx, AuditEvent{
		EventType:    AuditSessionRefresh,
		UserID:       result.UserID,
		CredentialID: result.NewCredentialID,
		Success:      true,
	})

	return &SessionTokens{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.AccessExpiresAt.Sub(s.clock.Now()),
	}, nil
}

// Logout invalidates one session: the access credential is blacklisted for
// its remaining natural lifetime and the refresh record is destroyed. An
// already-expired access credential has nothing to blacklist, so the refresh
// side still proceeds.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if s == nil {
		return ErrServiceNotReady
	}

	result := flows.RunLogout(ctx, accessToken, refreshToken, flows.LogoutDeps{
		VerifyAccess:       s.issuer.Verify,
		DecodeRefreshToken: internal.DecodeRefreshToken,
		CredentialID:       internal.CredentialID,
		Blacklist:          s.blacklist.Add,
		Now:                s.clock.Now,
		ProbeHealth:        s.kv.Health,
		Warn:               s.warnf,
		Store:              s.store,
	})

	switch result.Failure {
	case flows.LogoutFailureNone:
	case flows.LogoutFailureDecode:
		return ErrTokenInvalid
	default:
		s.metricInc(MetricStoreUnavailable)
		if result.Err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Err)
		}
		return ErrStoreUnavailable
	}

	s.metricInc(MetricLogout)
	s.emitAudit(ctx, AuditEvent{
		EventType:    AuditLogout,
		UserID:       result.UserID,
		CredentialID: result.CredentialID,
		Success:      true,
		Metadata: map[string]string{
			"access_invalid": strconv.FormatBool(result.AccessInvalid),
		},
	})
	return nil
}

// RevokeAll destroys every refresh record the user has along with the
// session set itself. Outstanding access credentials keep working until
// their natural expiry unless individually blacklisted.
//
// RevokeAll may return an error when input validation, dependency calls, or security checks fail.
// RevokeAll does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) RevokeAll(ctx context.Context, userID string) error {
	if s == nil {
		return ErrServiceNotReady
	}
	if userID == "" {
		return nil
	}

	if err := s.store.RevokeAll(ctx, userID); err != nil {
		s.metricInc(MetricStoreUnavailable)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s.metricInc(MetricRevokeAll)
	s.emitAudit(ctx, AuditEvent{
		EventType: AuditRevokeAll,
		UserID:    userID,
		Success:   true,
	})
	return nil
}

func (s *Service) issueDeps() flows.IssueDeps {
	return flows.IssueDeps{
		NewRefreshSecret:   internal.NewRefreshSecret,
		CredentialID:       internal.CredentialID,
		EncodeRefreshToken: internal.EncodeRefreshToken,
		IssueAccess:        s.issueAccess,
		Now:                s.clock.Now,
		RefreshTTL:         s.config.Session.RefreshTTL,
		MaxSessions:        s.config.Session.MaxSessionsPerUser,
		ProbeHealth:        s.kv.Health,
		Warn:               s.warnf,
		Store:              s.store,
	}
}

func (s *Service) refreshDeps() flows.RefreshDeps {
	return flows.RefreshDeps{
		DecodeRefreshToken: internal.DecodeRefreshToken,
		NewRefreshSecret:   internal.NewRefreshSecret,
		CredentialID:       internal.CredentialID,
		EncodeRefreshToken: internal.EncodeRefreshToken,
		IssueAccess:        s.issueAccess,
		Now:                s.clock.Now,
		RefreshTTL:         s.config.Session.RefreshTTL,
		ProbeHealth:        s.kv.Health,
		Warn:               s.warnf,
		Store:              s.store,
	}
}

func (s *Service) issueAccess(userID string) (string, time.Time, error) {
	token, _, expiresAt, err := s.issuer.Issue(userID)
	return token, expiresAt, err
}

func (s *Service) recordEvictions(ctx context.Context, userID string, evicted []string) {
	for _, credentialID := range evicted {
		s.metricInc(MetricSessionEvicted)
		s.emitAudit(ctx, AuditEvent{
			EventType:    AuditSessionEvicted,
			UserID:       userID,
			CredentialID: credentialID,
			Success:      true,
		})
	}
}
