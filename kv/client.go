package kv

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultOpTimeout     = 3 * time.Second
	defaultDegradedAfter = 100 * time.Millisecond
)

// Client is a thin Redis wrapper that applies a per-operation timeout and
// classifies every failure as not-found, unavailable, or store error.
//
//	Docs: docs/kv.md
type Client struct {
	redis         redis.UniversalClient
	opTimeout     time.Duration
	degradedAfter time.Duration
}

// NewClient creates a [Client] over the given Redis client. opTimeout bounds
// every store round trip; degradedAfter is the ping latency above which
// [Client.Health] reports [Degraded]. Zero values select defaults.
//
//	Docs: docs/kv.md
func NewClient(redisClient redis.UniversalClient, opTimeout, degradedAfter time.Duration) *Client {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	if degradedAfter <= 0 {
		degradedAfter = defaultDegradedAfter
	}
	return &Client{
		redis:         redisClient,
		opTimeout:     opTimeout,
		degradedAfter: degradedAfter,
	}
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, c.opTimeout)
}

// classify maps a Redis error to a [Status]. redis.Nil is checked before the
// generic redis.Error interface because the nil sentinel implements it too.
func classify(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, redis.Nil):
		return StatusNotFound
	default:
		var rerr redis.Error
		if errors.As(err, &rerr) {
			return StatusError
		}
		// Timeouts, context cancellation, dropped connections.
		return StatusUnavailable
	}
}

// Get reads a key together with its remaining TTL.
//
//	Performance: 1 pipelined round trip (GET + PTTL).
//	Docs: docs/kv.md
func (c *Client) Get(ctx context.Context, key string) GetResult {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	pipe := c.redis.Pipeline()
	getCmd := pipe.Get(ctx, key)
	ttlCmd := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return GetResult{Status: classify(err), Err: err}
	}

	value, err := getCmd.Bytes()
	if err != nil {
		return GetResult{Status: classify(err), Err: err}
	}

	ttl, err := ttlCmd.Result()
	if err != nil {
		return GetResult{Status: classify(err), Err: err}
	}
	if ttl < 0 {
		ttl = 0
	}

	return GetResult{Status: StatusFound, Value: value, TTL: ttl}
}

// SetWithTTL writes a key with the given TTL.
func (c *Client) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) OpResult {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		return OpResult{Status: classify(err), Err: err}
	}
	return OpResult{Status: StatusOK}
}

// Delete removes a key. Deleting an absent key is OK, not NotFound.
func (c *Client) Delete(ctx context.Context, keys ...string) OpResult {
	if len(keys) == 0 {
		return OpResult{Status: StatusOK}
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		return OpResult{Status: classify(err), Err: err}
	}
	return OpResult{Status: StatusOK}
}

// SetAdd adds a member to a scored set. The score carries creation order so
// that readers can evict oldest-first.
func (c *Client) SetAdd(ctx context.Context, key, member string, score float64) OpResult {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.redis.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err(); err != nil {
		return OpResult{Status: classify(err), Err: err}
	}
	return OpResult{Status: StatusOK}
}

// SetRemove removes a member from a scored set.
func (c *Client) SetRemove(ctx context.Context, key, member string) OpResult {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	if err := c.redis.ZRem(ctx, key, member).Err(); err != nil {
		return OpResult{Status: classify(err), Err: err}
	}
	return OpResult{Status: StatusOK}
}

// SetMembers returns all members of a scored set, oldest first. An absent
// set yields StatusOK with no members.
func (c *Client) SetMembers(ctx context.Context, key string) MembersResult {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	members, err := c.redis.ZRange(ctx, key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return MembersResult{Status: StatusOK, Members: []string{}}
		}
		return MembersResult{Status: classify(err), Err: err}
	}
	return MembersResult{Status: StatusOK, Members: members}
}

// TTL queries the remaining lifetime of a key.
func (c *Client) TTL(ctx context.Context, key string) TTLResult {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	ttl, err := c.redis.PTTL(ctx, key).Result()
	if err != nil {
		return TTLResult{Status: classify(err), Err: err}
	}
	// go-redis passes the PTTL sentinels through raw: -2 for a missing key,
	// -1 for a key without an expiry, no precision applied.
	if ttl == -2 {
		return TTLResult{Status: StatusNotFound}
	}
	if ttl < 0 {
		ttl = 0
	}
	return TTLResult{Status: StatusFound, TTL: ttl}
}

// Expire reapplies a TTL to a key.
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) OpResult {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	ok, err := c.redis.Expire(ctx, key, ttl).Result()
	if err != nil {
		return OpResult{Status: classify(err), Err: err}
	}
	if !ok {
		return OpResult{Status: StatusNotFound}
	}
	return OpResult{Status: StatusOK}
}

// Increment atomically increments a counter key.
func (c *Client) Increment(ctx context.Context, key string) IncrResult {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	n, err := c.redis.Incr(ctx, key).Result()
	if err != nil {
		return IncrResult{Status: classify(err), Err: err}
	}
	return IncrResult{Status: StatusOK, Value: n}
}

// Health probes the store with a live PING. It is intended to run
// immediately before a write sequence; cached connection flags go stale
// after the transport has already dropped.
//
//	Performance: 1 PING round trip.
func (c *Client) Health(ctx context.Context) Health {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	if err := c.redis.Ping(ctx).Err(); err != nil {
		return Unavailable
	}
	if time.Since(start) > c.degradedAfter {
		return Degraded
	}
	return Healthy
}
