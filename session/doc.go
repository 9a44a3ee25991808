// Package session provides Redis-backed refresh-credential records and the
// bounded per-user session set.
//
// # Data model
//
// One RefreshRecord exists per issued, non-rotated refresh secret, keyed by
// (user ID, credential ID) with a TTL equal to the refresh lifetime. Each
// user additionally owns one scored set of credential IDs, scored by creation
// time so that eviction is oldest-first. The set's TTL is resynced to the
// longest-lived member after every mutation and the set is deleted outright
// when its last member goes.
//
// # Architecture boundaries
//
// This package owns the key layout and the record codec. It does NOT run the
// rotation protocol, issue credentials, or enforce lockout policy — those
// responsibilities belong to the flow runners and the Service.
//
// # What this package must NOT do
//
//   - Import goSession or jwt (no upward imports).
//   - Coerce a store communication failure into a not-found result.
//   - Store plaintext refresh secrets; only credential IDs (secret hashes)
//     ever reach Redis.
package session
