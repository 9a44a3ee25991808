package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef defines a public type used by goSession APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goSession APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session lifecycle manager.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricSessionIssued, Name: "gosession_session_issued_total", Help: "Issued sessions."},
	{ID: goSession.MetricSessionIssueFailure, Name: "gosession_session_issue_failure_total", Help: "Failed session issuances."},
	{ID: goSession.MetricSessionEvicted, Name: "gosession_session_evicted_total", Help: "Sessions evicted by the per-user cap."},
	{ID: goSession.MetricRefreshSuccess, Name: "gosession_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: goSession.MetricRefreshFailure, Name: "gosession_refresh_failure_total", Help: "Failed refresh rotations."},
	{ID: goSession.MetricRefreshReuseDetected, Name: "gosession_refresh_reuse_detected_total", Help: "Detected refresh credential reuses."},
	{ID: goSession.MetricRotationAborted, Name: "gosession_rotation_aborted_total", Help: "Rotations aborted with the old credential intact."},
	{ID: goSession.MetricStoreUnavailable, Name: "gosession_store_unavailable_total", Help: "Operations failed by store unavailability."},
	{ID: goSession.MetricLogout, Name: "gosession_logout_total", Help: "Single-session logout operations."},
	{ID: goSession.MetricRevokeAll, Name: "gosession_revoke_all_total", Help: "Full session-set revocations."},
	{ID: goSession.MetricBlacklistHit, Name: "gosession_blacklist_hit_total", Help: "Access credentials rejected by the blacklist."},
	{ID: goSession.MetricLockoutTriggered, Name: "gosession_lockout_triggered_total", Help: "Accounts placed into lockout cooldown."},
	{ID: goSession.MetricLockoutDenied, Name: "gosession_lockout_denied_total", Help: "Operations denied while an account was locked."},
}

// HistogramDefs is an exported constant or variable used by the session lifecycle manager.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricRefreshLatency, Name: "gosession_refresh_latency_seconds", Help: "Refresh rotation latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session lifecycle manager.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session lifecycle manager.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
