package kv

import "time"

// Status defines a public type used by goSession APIs.
//
// Status instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Status uint8

const (
	// StatusOK is an exported constant or variable used by the session lifecycle manager.
	StatusOK Status = iota
	// StatusFound is an exported constant or variable used by the session lifecycle manager.
	StatusFound
	// StatusNotFound means the key legitimately does not exist. It is never
	// produced by a communication failure.
	StatusNotFound
	// StatusUnavailable means the store could not be reached or timed out;
	// nothing can be said about the key.
	StatusUnavailable
	// StatusError means the store answered with a server-side error.
	StatusError
)

// Retryable reports whether an operation with this status may be retried
// without changing its meaning.
func (s Status) Retryable() bool {
	return s == StatusUnavailable
}

// Health defines a public type used by goSession APIs.
//
// Health instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Health uint8

const (
	// Healthy is an exported constant or variable used by the session lifecycle manager.
	Healthy Health = iota
	// Degraded is an exported constant or variable used by the session lifecycle manager.
	Degraded
	// Unavailable is an exported constant or variable used by the session lifecycle manager.
	Unavailable
)

// GetResult carries the outcome of a single-key read.
type GetResult struct {
	Status Status
	Value  []byte
	TTL    time.Duration
	Err    error
}

// OpResult carries the outcome of a write-style operation.
type OpResult struct {
	Status Status
	Err    error
}

// MembersResult carries the outcome of a set-members read. Members are
// ordered by ascending score, i.e. oldest first.
type MembersResult struct {
	Status  Status
	Members []string
	Err     error
}

// TTLResult carries the outcome of a TTL query. A found key with no expiry
// reports TTL zero.
type TTLResult struct {
	Status Status
	TTL    time.Duration
	Err    error
}

// IncrResult carries the outcome of a counter increment.
type IncrResult struct {
	Status Status
	Value  int64
	Err    error
}
