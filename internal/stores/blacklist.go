package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goSession/kv"
)

var (
	// ErrBlacklistUnavailable indicates the blacklist backend is unreachable.
	ErrBlacklistUnavailable = errors.New("blacklist backend unavailable")
)

// Blacklist records invalidated bearer-credential identifiers. Each entry's
// TTL equals the credential's remaining natural lifetime at the time of
// revocation, so entries garbage-collect themselves exactly when the
// credential would have expired anyway.
type Blacklist struct {
	kv     *kv.Client
	prefix string
}

// NewBlacklist creates a new blacklist store.
func NewBlacklist(client *kv.Client, prefix string) *Blacklist {
	if prefix == "" {
		prefix = "gbl"
	}
	return &Blacklist{kv: client, prefix: prefix}
}

func (b *Blacklist) key(credentialID string) string {
	return b.prefix + ":" + credentialID
}

// Add writes a deny entry for a bearer credential. A credential with no
// remaining lifetime has nothing to revoke, so the call is a no-op.
func (b *Blacklist) Add(ctx context.Context, credentialID string, remaining time.Duration) error {
	if credentialID == "" || remaining <= 0 {
		return nil
	}

	res := b.kv.SetWithTTL(ctx, b.key(credentialID), []byte("1"), remaining)
	if res.Status != kv.StatusOK {
		return fmt.Errorf("%w: %v", ErrBlacklistUnavailable, res.Err)
	}
	return nil
}

// IsBlacklisted reports whether a deny entry exists. A store communication
// failure propagates as an error — failing open on a blacklist check would
// accept revoked credentials.
func (b *Blacklist) IsBlacklisted(ctx context.Context, credentialID string) (bool, error) {
	if credentialID == "" {
		return false, nil
	}

	res := b.kv.Get(ctx, b.key(credentialID))
	switch res.Status {
	case kv.StatusFound:
		return true, nil
	case kv.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrBlacklistUnavailable, res.Err)
	}
}

// RemainingTTL returns how long a deny entry will continue to exist. Absent
// entries report zero.
func (b *Blacklist) RemainingTTL(ctx context.Context, credentialID string) (time.Duration, error) {
	res := b.kv.TTL(ctx, b.key(credentialID))
	switch res.Status {
	case kv.StatusFound:
		return res.TTL, nil
	case kv.StatusNotFound:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrBlacklistUnavailable, res.Err)
	}
}
