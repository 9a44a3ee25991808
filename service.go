package goSession

import (
	"context"
	"log"
	"time"

	"github.com/MrEthical07/goSession/internal/limiters"
	"github.com/MrEthical07/goSession/internal/stores"
	"github.com/MrEthical07/goSession/kv"
	"github.com/MrEthical07/goSession/session"
)

// Service defines a public type used by goSession APIs.
//
// Service instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Service struct {
	config Config

	kv        *kv.Client
	store     *session.Store
	lockout   *limiters.LockoutTracker
	blacklist *stores.Blacklist

	issuer CredentialIssuer
	clock  Clock

	metrics *Metrics
	audit   *auditDispatcher
}

// Close flushes and stops the audit dispatcher. The underlying Redis client
// is owned by the caller and stays open.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) Close() {
	if s == nil {
		return
	}
	s.audit.Close()
}

// Health reports the live reachability of the backing store. The probe is
// issued on every call; nothing is cached.
//
// Health does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) Health(ctx context.Context) kv.Health {
	return s.kv.Health(ctx)
}

// MetricsSnapshot returns a point-in-time copy of all lifecycle counters and
// histograms.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// AuditDropped returns the number of audit events discarded because the
// dispatch buffer was full.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) AuditDropped() uint64 {
	return s.audit.Dropped()
}

// ActiveSessions returns the credential IDs of the user's live sessions,
// oldest first.
//
// ActiveSessions may return an error when input validation, dependency calls, or security checks fail.
// ActiveSessions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) ActiveSessions(ctx context.Context, userID string) ([]string, error) {
	if s == nil {
		return nil, ErrServiceNotReady
	}
	return s.store.Members(ctx, userID)
}

func (s *Service) metricInc(id MetricID) {
	s.metrics.Inc(id)
}

func (s *Service) metricObserve(id MetricID, d time.Duration) {
	s.metrics.Observe(id, d)
}

func (s *Service) emitAudit(ctx context.Context, event AuditEvent) {
	if s.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock.Now()
	}
	s.audit.Emit(ctx, event)
}

func (s *Service) warnf(format string, args ...any) {
	log.Printf(format, args...)
}
