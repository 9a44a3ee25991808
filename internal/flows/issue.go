package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goSession/kv"
	"github.com/MrEthical07/goSession/session"
)

// IssueFailureKind classifies issue flow failures for root-level mapping.
type IssueFailureKind int

const (
	IssueFailureNone IssueFailureKind = iota
	IssueFailureUnavailable
	IssueFailureSecret
	IssueFailureStore
	IssueFailureIssueAccess
	IssueFailureEncode
)

// IssueResult carries either the issued token pair or failure metadata.
type IssueResult struct {
	Failure         IssueFailureKind
	Err             error
	UserID          string
	CredentialID    string
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
	Evicted         []string
}

// IssueDeps captures issue flow dependencies.
type IssueDeps struct {
	NewRefreshSecret   func() ([32]byte, error)
	CredentialID       func([32]byte) string
	EncodeRefreshToken func(string, [32]byte) (string, error)
	IssueAccess        func(userID string) (token string, expiresAt time.Time, err error)
	Now                func() time.Time
	RefreshTTL         time.Duration
	MaxSessions        int
	ProbeHealth        func(context.Context) kv.Health
	Warn               func(string, ...any)
	Store              SessionStore
}

// RunIssue creates a fresh refresh record, tracks it in the user's session
// set with cap enforcement, and issues the access/refresh pair.
func RunIssue(ctx context.Context, userID, deviceInfo string, deps IssueDeps) IssueResult {
	if deps.ProbeHealth != nil && deps.ProbeHealth(ctx) == kv.Unavailable {
		return IssueResult{
			Failure: IssueFailureUnavailable,
			UserID:  userID,
		}
	}

	secret, err := deps.NewRefreshSecret()
	if err != nil {
		return IssueResult{
			Failure: IssueFailureSecret,
			Err:     err,
			UserID:  userID,
		}
	}

	credentialID := deps.CredentialID(secret)
	now := deps.Now()
	rec := &session.RefreshRecord{
		UserID:       userID,
		CredentialID: credentialID,
		DeviceInfo:   deviceInfo,
		CreatedAt:    now.Unix(),
		ExpiresAt:    now.Add(deps.RefreshTTL).Unix(),
	}

	// The record, the set membership, the cap, and the TTL resync are one
	// logical mutation: the first step that fails aborts the whole call
	// with a retryable error. An orphaned record self-expires.
	if err := deps.Store.SaveRecord(ctx, rec, deps.RefreshTTL); err != nil {
		return IssueResult{
			Failure:      IssueFailureStore,
			Err:          err,
			UserID:       userID,
			CredentialID: credentialID,
		}
	}
	if err := deps.Store.AddToSet(ctx, userID, credentialID, now); err != nil {
		return IssueResult{
			Failure:      IssueFailureStore,
			Err:          err,
			UserID:       userID,
			CredentialID: credentialID,
		}
	}
	evicted, err := deps.Store.EnforceCap(ctx, userID, deps.MaxSessions)
	if err != nil {
		return IssueResult{
			Failure:      IssueFailureStore,
			Err:          err,
			UserID:       userID,
			CredentialID: credentialID,
			Evicted:      evicted,
		}
	}
	if err := deps.Store.ResyncTTL(ctx, userID); err != nil {
		return IssueResult{
			Failure:      IssueFailureStore,
			Err:          err,
			UserID:       userID,
			CredentialID: credentialID,
			Evicted:      evicted,
		}
	}

	access, accessExpiry, err := deps.IssueAccess(userID)
	if err != nil {
		return IssueResult{
			Failure:      IssueFailureIssueAccess,
			Err:          err,
			UserID:       userID,
			CredentialID: credentialID,
			Evicted:      evicted,
		}
	}

	refresh, err := deps.EncodeRefreshToken(userID, secret)
	if err != nil {
		return IssueResult{
			Failure:      IssueFailureEncode,
			Err:          err,
			UserID:       userID,
			CredentialID: credentialID,
			Evicted:      evicted,
		}
	}

	return IssueResult{
		Failure:         IssueFailureNone,
		UserID:          userID,
		CredentialID:    credentialID,
		AccessToken:     access,
		RefreshToken:    refresh,
		AccessExpiresAt: accessExpiry,
		Evicted:         evicted,
	}
}
