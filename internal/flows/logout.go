package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goSession/kv"
)

// LogoutFailureKind classifies logout flow failures for root-level mapping.
type LogoutFailureKind int

const (
	LogoutFailureNone LogoutFailureKind = iota
	LogoutFailureDecode
	LogoutFailureUnavailable
	LogoutFailureBlacklist
	LogoutFailureStore
)

// LogoutResult carries logout outcome metadata.
type LogoutResult struct {
	Failure       LogoutFailureKind
	Err           error
	UserID        string
	TokenID       string
	CredentialID  string
	AccessInvalid bool
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	VerifyAccess       func(string) (userID, tokenID string, expiresAt time.Time, err error)
	DecodeRefreshToken func(string) (string, [32]byte, error)
	CredentialID       func([32]byte) string
	Blacklist          func(ctx context.Context, tokenID string, remaining time.Duration) error
	Now                func() time.Time
	ProbeHealth        func(context.Context) kv.Health
	Warn               func(string, ...any)
	Store              SessionStore
}

// RunLogout blacklists the access credential for its remaining natural
// lifetime and destroys the presented refresh record. An invalid or expired
// access credential has nothing left to blacklist, so the refresh side still
// proceeds.
func RunLogout(ctx context.Context, accessToken, refreshToken string, deps LogoutDeps) LogoutResult {
	if deps.ProbeHealth != nil && deps.ProbeHealth(ctx) == kv.Unavailable {
		return LogoutResult{Failure: LogoutFailureUnavailable}
	}

	result := LogoutResult{Failure: LogoutFailureNone}

	userID, tokenID, expiresAt, err := deps.VerifyAccess(accessToken)
	if err != nil {
		result.AccessInvalid = true
	} else {
		result.UserID = userID
		result.TokenID = tokenID
		remaining := expiresAt.Sub(deps.Now())
		if blErr := deps.Blacklist(ctx, tokenID, remaining); blErr != nil {
			return LogoutResult{
				Failure: LogoutFailureBlacklist,
				Err:     blErr,
				UserID:  userID,
				TokenID: tokenID,
			}
		}
	}

	refreshUserID, secret, err := deps.DecodeRefreshToken(refreshToken)
	if err != nil {
		result.Failure = LogoutFailureDecode
		result.Err = err
		return result
	}
	if result.UserID == "" {
		result.UserID = refreshUserID
	}
	credentialID := deps.CredentialID(secret)
	result.CredentialID = credentialID

	if err := deps.Store.DeleteRecord(ctx, refreshUserID, credentialID); err != nil {
		result.Failure = LogoutFailureStore
		result.Err = err
		return result
	}
	if err := deps.Store.RemoveFromSet(ctx, refreshUserID, credentialID); err != nil {
		result.Failure = LogoutFailureStore
		result.Err = err
		return result
	}
	if err := deps.Store.ResyncTTL(ctx, refreshUserID); err != nil {
		result.Failure = LogoutFailureStore
		result.Err = err
		return result
	}

	return result
}
