// Package goSession is a session and refresh-credential lifecycle manager
// built on a TTL-capable key-value store.
//
// # What it owns
//
// Issuing, rotating, invalidating, and bounding per-user authentication
// sessions: single-use refresh credentials with loss-safe rotation, a capped
// per-user session set, an access-credential blacklist, and an account
// lockout tracker. Password verification, HTTP transport, rate limiting, and
// user storage are external collaborators.
//
// # Getting started
//
//	svc, err := goSession.New().
//		WithRedis(redisClient).
//		WithConfig(cfg).
//		Build()
//
// The [Service] façade then exposes IssueSession, Refresh, Logout,
// RecordFailedLogin, IsLockedOut, and IsBlacklisted.
//
// # Safety model
//
// The store is non-transactional; correctness under partial execution comes
// from ordering, not atomic multi-key commits. Rotation writes and verifies
// the new record before touching the old one, so no single failure can
// destroy both credentials. Store communication failures are typed
// ([ErrStoreUnavailable]) and never downgraded to "not found" or "false".
package goSession
