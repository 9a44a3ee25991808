package flows

import (
	"context"
	"time"

	"github.com/MrEthical07/goSession/session"
)

// SessionStore captures the session-store surface the flow runners drive.
// Implemented by [session.Store]; stubbed in tests to simulate partial
// store failures.
type SessionStore interface {
	GetRecord(ctx context.Context, userID, credentialID string) (*session.RefreshRecord, error)
	SaveRecord(ctx context.Context, rec *session.RefreshRecord, ttl time.Duration) error
	MarkSuperseded(ctx context.Context, userID, credentialID string) error
	DeleteRecord(ctx context.Context, userID, credentialID string) error
	AddToSet(ctx context.Context, userID, credentialID string, createdAt time.Time) error
	RemoveFromSet(ctx context.Context, userID, credentialID string) error
	EnforceCap(ctx context.Context, userID string, maxSessions int) ([]string, error)
	ResyncTTL(ctx context.Context, userID string) error
	RevokeAll(ctx context.Context, userID string) error
}
