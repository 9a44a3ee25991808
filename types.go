package goSession

import (
	"time"
)

// SessionTokens defines a public type used by goSession APIs.
//
// SessionTokens instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionTokens struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn is the access credential's lifetime at issuance.
	ExpiresIn time.Duration
}

// LockoutStatus defines a public type used by goSession APIs.
//
// LockoutStatus instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LockoutStatus struct {
	Failures   int
	Locked     bool
	RetryAfter time.Duration
}

// CredentialIssuer issues and verifies the signed bearer credentials handed
// to clients. The wire format is opaque to this module; [jwt.Manager] is the
// supplied implementation.
type CredentialIssuer interface {
	// Issue returns a signed credential for the user, its unique token ID,
	// and its expiry.
	Issue(userID string) (token, tokenID string, expiresAt time.Time, err error)
	// Verify validates a credential and returns the user ID, token ID, and
	// expiry it carries.
	Verify(token string) (userID, tokenID string, expiresAt time.Time, err error)
}

// Clock supplies time to the lifecycle manager. Injectable for tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall-clock [Clock] used by default.
func SystemClock() Clock { return systemClock{} }
