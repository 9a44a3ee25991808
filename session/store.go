package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goSession/kv"
)

// ErrStoreUnavailable is an exported constant or variable used by the session lifecycle manager.
var ErrStoreUnavailable = errors.New("session store unavailable")

// ErrRecordNotFound is returned when a refresh record legitimately does not exist.
var ErrRecordNotFound = errors.New("refresh record not found")

// ErrRecordCorrupt is returned when a stored refresh record blob is invalid.
var ErrRecordCorrupt = errors.New("refresh record corrupt")

// Store is a Redis-backed store for refresh-credential records and the
// bounded per-user session set.
//
//	Docs: docs/session.md
type Store struct {
	kv     *kv.Client
	prefix string
	now    func() time.Time
}

// NewStore creates a session [Store] over the given kv client. prefix sets
// the Redis key namespace; now supplies the clock used for TTL derivation.
//
//	Docs: docs/session.md
func NewStore(client *kv.Client, prefix string, now func() time.Time) *Store {
	if prefix == "" {
		prefix = "gs"
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		kv:     client,
		prefix: prefix,
		now:    now,
	}
}

func (s *Store) recordKey(userID, credentialID string) string {
	return s.prefix + "r:" + userID + ":" + credentialID
}

func (s *Store) setKey(userID string) string {
	return s.prefix + "u:" + userID
}

// Health probes the underlying store. See [kv.Client.Health].
func (s *Store) Health(ctx context.Context) kv.Health {
	return s.kv.Health(ctx)
}

// SaveRecord persists a [RefreshRecord] with the given TTL.
//
//	Performance: 1 SET.
//	Docs: docs/session.md
func (s *Store) SaveRecord(ctx context.Context, rec *RefreshRecord, ttl time.Duration) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	res := s.kv.SetWithTTL(ctx, s.recordKey(rec.UserID, rec.CredentialID), data, ttl)
	if res.Status != kv.StatusOK {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Err)
	}
	return nil
}

// GetRecord retrieves a refresh record by (user ID, credential ID). A
// communication failure surfaces as [ErrStoreUnavailable], never as
// [ErrRecordNotFound].
//
//	Performance: 1 pipelined GET+PTTL.
//	Docs: docs/session.md
func (s *Store) GetRecord(ctx context.Context, userID, credentialID string) (*RefreshRecord, error) {
	res := s.kv.Get(ctx, s.recordKey(userID, credentialID))
	switch res.Status {
	case kv.StatusFound:
	case kv.StatusNotFound:
		return nil, ErrRecordNotFound
	default:
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Err)
	}

	rec, err := decodeRecord(res.Value)
	if err != nil {
		return nil, err
	}
	if rec.ExpiresAt <= s.now().Unix() {
		return nil, ErrRecordNotFound
	}
	return rec, nil
}

// MarkSuperseded rewrites a record with its superseded flag set, preserving
// the remaining TTL. A record that is already gone is not an error; the
// delete it was defending against has simply landed first.
//
//	Docs: docs/session.md, docs/flows.md#refresh-rotation
func (s *Store) MarkSuperseded(ctx context.Context, userID, credentialID string) error {
	key := s.recordKey(userID, credentialID)

	res := s.kv.Get(ctx, key)
	switch res.Status {
	case kv.StatusFound:
	case kv.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Err)
	}

	rec, err := decodeRecord(res.Value)
	if err != nil {
		return err
	}
	if rec.Superseded {
		return nil
	}
	rec.Superseded = true

	ttl := res.TTL
	if ttl <= 0 {
		return nil
	}

	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	if wres := s.kv.SetWithTTL(ctx, key, data, ttl); wres.Status != kv.StatusOK {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, wres.Err)
	}
	return nil
}

// DeleteRecord removes a refresh record. Deleting an absent record is a no-op.
func (s *Store) DeleteRecord(ctx context.Context, userID, credentialID string) error {
	res := s.kv.Delete(ctx, s.recordKey(userID, credentialID))
	if res.Status != kv.StatusOK {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Err)
	}
	return nil
}

// AddToSet tracks a credential ID in the user's session set, scored by
// creation time so that cap enforcement evicts oldest-first.
func (s *Store) AddToSet(ctx context.Context, userID, credentialID string, createdAt time.Time) error {
	res := s.kv.SetAdd(ctx, s.setKey(userID), credentialID, float64(createdAt.UnixNano()))
	if res.Status != kv.StatusOK {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Err)
	}
	return nil
}

// RemoveFromSet untracks a credential ID from the user's session set.
func (s *Store) RemoveFromSet(ctx context.Context, userID, credentialID string) error {
	res := s.kv.SetRemove(ctx, s.setKey(userID), credentialID)
	if res.Status != kv.StatusOK {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Err)
	}
	return nil
}

// Members returns the tracked credential IDs for a user, oldest first.
func (s *Store) Members(ctx context.Context, userID string) ([]string, error) {
	res := s.kv.SetMembers(ctx, s.setKey(userID))
	if res.Status != kv.StatusOK {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Err)
	}
	return res.Members, nil
}

// EnforceCap evicts oldest members until the session set fits maxSessions.
// Each eviction deletes both the member's refresh record and its set entry.
// Returns the evicted credential IDs.
//
//	Docs: docs/session.md#bounded-session-sets
func (s *Store) EnforceCap(ctx context.Context, userID string, maxSessions int) ([]string, error) {
	if maxSessions <= 0 {
		return nil, nil
	}

	members, err := s.Members(ctx, userID)
	if err != nil {
		return nil, err
	}

	var evicted []string
	for len(members) > maxSessions {
		oldest := members[0]
		if err := s.DeleteRecord(ctx, userID, oldest); err != nil {
			return evicted, err
		}
		if err := s.RemoveFromSet(ctx, userID, oldest); err != nil {
			return evicted, err
		}
		evicted = append(evicted, oldest)
		members = members[1:]
	}

	return evicted, nil
}

// ResyncTTL re-derives the session set's TTL as the maximum remaining
// lifetime across its members' records. Members whose record is already gone
// are dropped; an empty set is deleted rather than left behind with an
// arbitrary TTL.
//
//	Performance: 1 ZRANGE + 1 PTTL per member + 1 EXPIRE or DEL.
//	Docs: docs/session.md#bounded-session-sets
func (s *Store) ResyncTTL(ctx context.Context, userID string) error {
	setKey := s.setKey(userID)

	members, err := s.Members(ctx, userID)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		if res := s.kv.Delete(ctx, setKey); res.Status != kv.StatusOK {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Err)
		}
		return nil
	}

	var maxTTL time.Duration
	for _, credentialID := range members {
		res := s.kv.TTL(ctx, s.recordKey(userID, credentialID))
		switch res.Status {
		case kv.StatusFound:
			if res.TTL > maxTTL {
				maxTTL = res.TTL
			}
		case kv.StatusNotFound:
			// Stale member; its record expired or was deleted out of band.
			if rres := s.kv.SetRemove(ctx, setKey, credentialID); rres.Status != kv.StatusOK {
				return fmt.Errorf("%w: %v", ErrStoreUnavailable, rres.Err)
			}
		default:
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Err)
		}
	}

	if maxTTL <= 0 {
		if res := s.kv.Delete(ctx, setKey); res.Status != kv.StatusOK {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Err)
		}
		return nil
	}

	res := s.kv.Expire(ctx, setKey, maxTTL)
	if res.Status != kv.StatusOK && res.Status != kv.StatusNotFound {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Err)
	}
	return nil
}

// RevokeAll deletes every refresh record for a user along with the session
// set itself. Used on reuse detection and logout-everywhere.
//
//	Docs: docs/flows.md#reuse-detection
func (s *Store) RevokeAll(ctx context.Context, userID string) error {
	members, err := s.Members(ctx, userID)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(members)+1)
	for _, credentialID := range members {
		keys = append(keys, s.recordKey(userID, credentialID))
	}
	keys = append(keys, s.setKey(userID))

	if res := s.kv.Delete(ctx, keys...); res.Status != kv.StatusOK {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, res.Err)
	}
	return nil
}
