package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goSession/kv"
	"github.com/MrEthical07/goSession/session"
)

// RefreshFailureKind classifies refresh flow failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureDecode
	RefreshFailureUnavailable
	RefreshFailureInvalid
	RefreshFailureReuse
	RefreshFailurePartialWrite
	RefreshFailureNextSecret
	RefreshFailureIssueAccess
)

// RefreshResult carries either the rotated token pair or failure metadata.
type RefreshResult struct {
	Failure         RefreshFailureKind
	Err             error
	UserID          string
	OldCredentialID string
	NewCredentialID string
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	DecodeRefreshToken func(string) (string, [32]byte, error)
	NewRefreshSecret   func() ([32]byte, error)
	CredentialID       func([32]byte) string
	EncodeRefreshToken func(string, [32]byte) (string, error)
	IssueAccess        func(userID string) (token string, expiresAt time.Time, err error)
	Now                func() time.Time
	RefreshTTL         time.Duration
	ProbeHealth        func(context.Context) kv.Health
	Warn               func(string, ...any)
	Store              SessionStore
}

// RunRefresh executes the ordered rotation protocol:
//
//	validate old → store new → verify new → retire old → done
//
// The new record is written and read back before anything about the old
// record is touched. A failed or unconfirmed write aborts with the old
// credential fully intact; a presentation of a superseded credential revokes
// the user's entire session set.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) RefreshResult {
	userID, providedSecret, err := deps.DecodeRefreshToken(refreshToken)
	if err != nil {
		return RefreshResult{
			Failure: RefreshFailureDecode,
			Err:     err,
		}
	}
	oldCredentialID := deps.CredentialID(providedSecret)

	if deps.ProbeHealth != nil && deps.ProbeHealth(ctx) == kv.Unavailable {
		return RefreshResult{
			Failure:         RefreshFailureUnavailable,
			UserID:          userID,
			OldCredentialID: oldCredentialID,
		}
	}

	// Validate the presented credential.
	rec, err := deps.Store.GetRecord(ctx, userID, oldCredentialID)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrRecordNotFound):
			return RefreshResult{
				Failure:         RefreshFailureInvalid,
				Err:             err,
				UserID:          userID,
				OldCredentialID: oldCredentialID,
			}
		case errors.Is(err, session.ErrRecordCorrupt):
			if delErr := deps.Store.DeleteRecord(ctx, userID, oldCredentialID); delErr != nil && deps.Warn != nil {
				deps.Warn("goSession: corrupt refresh record cleanup failed")
			}
			return RefreshResult{
				Failure:         RefreshFailureInvalid,
				Err:             err,
				UserID:          userID,
				OldCredentialID: oldCredentialID,
			}
		default:
			return RefreshResult{
				Failure:         RefreshFailureUnavailable,
				Err:             err,
				UserID:          userID,
				OldCredentialID: oldCredentialID,
			}
		}
	}

	if rec.Superseded {
		// The secret was already rotated away: either theft replay or the
		// losing side of a concurrent refresh. Both get the conservative
		// treatment — revoke everything this user has.
		if revokeErr := deps.Store.RevokeAll(ctx, userID); revokeErr != nil && deps.Warn != nil {
			deps.Warn("goSession: session revocation after reuse failed")
		}
		return RefreshResult{
			Failure:         RefreshFailureReuse,
			UserID:          userID,
			OldCredentialID: oldCredentialID,
		}
	}

	nextSecret, err := deps.NewRefreshSecret()
	if err != nil {
		return RefreshResult{
			Failure:         RefreshFailureNextSecret,
			Err:             err,
			UserID:          userID,
			OldCredentialID: oldCredentialID,
		}
	}
	newCredentialID := deps.CredentialID(nextSecret)

	now := deps.Now()
	newRec := &session.RefreshRecord{
		UserID:       userID,
		CredentialID: newCredentialID,
		DeviceInfo:   rec.DeviceInfo,
		CreatedAt:    now.Unix(),
		ExpiresAt:    now.Add(deps.RefreshTTL).Unix(),
	}

	// Store the new record. The old record stays untouched until the new one is
	// confirmed, so a failure here loses nothing.
	if err := deps.Store.SaveRecord(ctx, newRec, deps.RefreshTTL); err != nil {
		return RefreshResult{
			Failure:         RefreshFailureUnavailable,
			Err:             err,
			UserID:          userID,
			OldCredentialID: oldCredentialID,
			NewCredentialID: newCredentialID,
		}
	}

	// Read back the write to catch stores that acknowledge
	// without persisting. An unconfirmed write aborts with the old
	// credential still valid; the caller just retries.
	if _, err := deps.Store.GetRecord(ctx, userID, newCredentialID); err != nil {
		return RefreshResult{
			Failure:         RefreshFailurePartialWrite,
			Err:             err,
			UserID:          userID,
			OldCredentialID: oldCredentialID,
			NewCredentialID: newCredentialID,
		}
	}

	// Access issuance is local signing; do it before the old record is
	// retired so a signing failure cannot strand the user between
	// credentials.
	access, accessExpiry, err := deps.IssueAccess(userID)
	if err != nil {
		return RefreshResult{
			Failure:         RefreshFailureIssueAccess,
			Err:             err,
			UserID:          userID,
			OldCredentialID: oldCredentialID,
			NewCredentialID: newCredentialID,
		}
	}
	refresh, err := deps.EncodeRefreshToken(userID, nextSecret)
	if err != nil {
		return RefreshResult{
			Failure:         RefreshFailureIssueAccess,
			Err:             err,
			UserID:          userID,
			OldCredentialID: oldCredentialID,
			NewCredentialID: newCredentialID,
		}
	}

	// Track the new member and resync the set TTL while aborting is still
	// safe. The new member holds the full refresh TTL, so it is the max.
	// Rotation replaces one member with another, so the cap is never
	// enforced here: the set is back at its previous size once the old
	// member is retired below, and an eviction would hard-delete either an
	// innocent live session or the tombstone replay detection depends on.
	if err := deps.Store.AddToSet(ctx, userID, newCredentialID, now); err != nil {
		return RefreshResult{
			Failure:         RefreshFailureUnavailable,
			Err:             err,
			UserID:          userID,
			OldCredentialID: oldCredentialID,
			NewCredentialID: newCredentialID,
		}
	}
	if err := deps.Store.ResyncTTL(ctx, userID); err != nil {
		return RefreshResult{
			Failure:         RefreshFailureUnavailable,
			Err:             err,
			UserID:          userID,
			OldCredentialID: oldCredentialID,
			NewCredentialID: newCredentialID,
		}
	}

	// Retire the old credential. The new one is confirmed and superseding; from
	// here every failure is logged and tolerated. The old record stays
	// behind as a superseded tombstone until its TTL fires, so any replay
	// of the retired secret is distinguishable from a never-issued one.
	if err := deps.Store.MarkSuperseded(ctx, userID, oldCredentialID); err != nil && deps.Warn != nil {
		deps.Warn("goSession: supersede mark failed, replay detection degrades to invalid-token")
	}
	if err := deps.Store.RemoveFromSet(ctx, userID, oldCredentialID); err != nil && deps.Warn != nil {
		deps.Warn("goSession: old session set member removal failed")
	}

	// Done.
	return RefreshResult{
		Failure:         RefreshFailureNone,
		UserID:          userID,
		OldCredentialID: oldCredentialID,
		NewCredentialID: newCredentialID,
		AccessToken:     access,
		RefreshToken:    refresh,
		AccessExpiresAt: accessExpiry,
	}
}
