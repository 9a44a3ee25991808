// Package kv wraps the Redis client with typed operation results for the
// session lifecycle hot paths.
//
// # Result model
//
// Every operation reports one of four outcomes: the key was found, the key
// legitimately does not exist, the store could not be reached, or the store
// answered with a server-side error. A communication failure is never
// reported as not-found; callers that conflate the two silently treat live
// sessions as absent, which is the failure mode this package exists to
// prevent.
//
// # Architecture boundaries
//
// This package owns timeouts, health probing, and error classification for
// raw Redis commands. It does NOT know about refresh records, session sets,
// or any key layout — those belong to the session package.
package kv
