//go:build integration
// +build integration

package test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/kv"
	"github.com/MrEthical07/goSession/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// rtCounter is a go-redis Hook that counts Redis round-trips. A pipeline
// call is one round-trip regardless of how many commands it carries.
type rtCounter struct {
	roundTrips atomic.Int64
}

func (h *rtCounter) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *rtCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.roundTrips.Add(1)
		return next(ctx, cmd)
	}
}

func (h *rtCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		h.roundTrips.Add(1)
		return next(ctx, cmds)
	}
}

func (h *rtCounter) Reset()            { h.roundTrips.Store(0) }
func (h *rtCounter) RoundTrips() int64 { return h.roundTrips.Load() }

// newCountedStore creates a session.Store backed by miniredis with an
// rtCounter hook installed. Reset the counter before each measured operation.
func newCountedStore(t *testing.T) (*session.Store, *rtCounter, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	counter := &rtCounter{}
	rdb.AddHook(counter)

	client := kv.NewClient(rdb, 3*time.Second, 100*time.Millisecond)
	store := session.NewStore(client, "gs", time.Now)

	// Warm the connection pool so handshake traffic does not pollute the
	// first measured operation.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("warm-up ping failed: %v", err)
	}

	return store, counter, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func newCountedService(t *testing.T) (*goSession.Service, *rtCounter, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	counter := &rtCounter{}
	rdb.AddHook(counter)

	svc, err := goSession.New().
		WithConfig(integrationConfig(t)).
		WithRedis(rdb).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("warm-up ping failed: %v", err)
	}

	return svc, counter, func() {
		svc.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

func TestBudgetGetRecordIsOneRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, counter, cleanup := newCountedStore(t)
	defer cleanup()

	rec := makeRecord("u1", "cred-budget", time.Hour)
	if err := store.SaveRecord(ctx, rec, time.Hour); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}

	counter.Reset()
	if _, err := store.GetRecord(ctx, "u1", "cred-budget"); err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if got := counter.RoundTrips(); got != 1 {
		t.Fatalf("GetRecord took %d round-trips, want 1", got)
	}
}

func TestBudgetSaveRecordIsOneRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, counter, cleanup := newCountedStore(t)
	defer cleanup()

	rec := makeRecord("u1", "cred-budget", time.Hour)

	counter.Reset()
	if err := store.SaveRecord(ctx, rec, time.Hour); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}
	if got := counter.RoundTrips(); got != 1 {
		t.Fatalf("SaveRecord took %d round-trips, want 1", got)
	}
}

func TestBudgetIssueSession(t *testing.T) {
	ctx := context.Background()
	svc, counter, cleanup := newCountedService(t)
	defer cleanup()

	counter.Reset()
	if _, err := svc.IssueSession(ctx, "user-budget", "device-a"); err != nil {
		t.Fatalf("IssueSession failed: %v", err)
	}
	if got := counter.RoundTrips(); got > 10 {
		t.Fatalf("IssueSession took %d round-trips, budget is 10", got)
	}
}

func TestBudgetRefresh(t *testing.T) {
	ctx := context.Background()
	svc, counter, cleanup := newCountedService(t)
	defer cleanup()

	tokens, err := svc.IssueSession(ctx, "user-budget", "device-a")
	if err != nil {
		t.Fatalf("IssueSession failed: %v", err)
	}

	counter.Reset()
	if _, err := svc.Refresh(ctx, tokens.RefreshToken); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if got := counter.RoundTrips(); got > 16 {
		t.Fatalf("Refresh took %d round-trips, budget is 16", got)
	}
}

func TestBudgetVerifyAccess(t *testing.T) {
	ctx := context.Background()
	svc, counter, cleanup := newCountedService(t)
	defer cleanup()

	tokens, err := svc.IssueSession(ctx, "user-budget", "device-a")
	if err != nil {
		t.Fatalf("IssueSession failed: %v", err)
	}

	counter.Reset()
	if _, err := svc.VerifyAccess(ctx, tokens.AccessToken); err != nil {
		t.Fatalf("VerifyAccess failed: %v", err)
	}
	if got := counter.RoundTrips(); got > 2 {
		t.Fatalf("VerifyAccess took %d round-trips, budget is 2", got)
	}
}
