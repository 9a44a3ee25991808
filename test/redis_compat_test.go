//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// redisMode describes which Redis backend the compatibility suite runs against.
type redisMode struct {
	name  string
	setup func(t *testing.T) (redis.UniversalClient, func())
}

// redisModes returns the set of Redis backends to test.
// miniredis is always available.
// Real Redis standalone is used when REDIS_ADDR is set (e.g. "127.0.0.1:6379").
func redisModes(t *testing.T) []redisMode {
	t.Helper()
	modes := []redisMode{
		{
			name: "miniredis",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				mr, err := miniredis.Run()
				if err != nil {
					t.Fatalf("miniredis: %v", err)
				}
				rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				return rdb, func() { _ = rdb.Close(); mr.Close() }
			},
		},
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		modes = append(modes, redisMode{
			name: "standalone:" + addr,
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				rdb := redis.NewClient(&redis.Options{Addr: addr})
				if err := rdb.Ping(context.Background()).Err(); err != nil {
					t.Skipf("redis at %s not reachable: %v", addr, err)
				}
				return rdb, func() { _ = rdb.Close() }
			},
		})
	}

	return modes
}

func compatService(t *testing.T, rdb redis.UniversalClient) *goSession.Service {
	t.Helper()

	cfg := integrationConfig(t)
	// Unique prefix per run so a shared real Redis instance is not polluted
	// across test invocations.
	cfg.Session.RedisPrefix = fmt.Sprintf("gs-compat-%d", time.Now().UnixNano())

	svc, err := goSession.New().
		WithConfig(cfg).
		WithRedis(rdb).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return svc
}

func TestCompatSessionLifecycle(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			ctx := context.Background()
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			svc := compatService(t, rdb)
			defer svc.Close()

			tokens, err := svc.IssueSession(ctx, "user-compat", "device-a")
			if err != nil {
				t.Fatalf("IssueSession failed: %v", err)
			}

			uid, err := svc.VerifyAccess(ctx, tokens.AccessToken)
			if err != nil {
				t.Fatalf("VerifyAccess failed: %v", err)
			}
			if uid != "user-compat" {
				t.Fatalf("VerifyAccess returned %q, want user-compat", uid)
			}

			rotated, err := svc.Refresh(ctx, tokens.RefreshToken)
			if err != nil {
				t.Fatalf("Refresh failed: %v", err)
			}
			if rotated.RefreshToken == tokens.RefreshToken {
				t.Fatal("expected rotation to mint a new refresh token")
			}

			if err := svc.Logout(ctx, rotated.AccessToken, rotated.RefreshToken); err != nil {
				t.Fatalf("Logout failed: %v", err)
			}
			if _, err := svc.VerifyAccess(ctx, rotated.AccessToken); !errors.Is(err, goSession.ErrAccessInvalid) {
				t.Fatalf("expected blacklisted access after logout, got %v", err)
			}
		})
	}
}

func TestCompatReuseDetection(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			ctx := context.Background()
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			svc := compatService(t, rdb)
			defer svc.Close()

			tokens, err := svc.IssueSession(ctx, "user-reuse", "device-a")
			if err != nil {
				t.Fatalf("IssueSession failed: %v", err)
			}
			if _, err := svc.Refresh(ctx, tokens.RefreshToken); err != nil {
				t.Fatalf("Refresh failed: %v", err)
			}
			if _, err := svc.Refresh(ctx, tokens.RefreshToken); !errors.Is(err, goSession.ErrTokenReused) {
				t.Fatalf("expected ErrTokenReused on replay, got %v", err)
			}

			sessions, err := svc.ActiveSessions(ctx, "user-reuse")
			if err != nil {
				t.Fatalf("ActiveSessions failed: %v", err)
			}
			if len(sessions) != 0 {
				t.Fatalf("expected all sessions revoked after reuse, got %d", len(sessions))
			}
		})
	}
}

func TestCompatSessionCap(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			ctx := context.Background()
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			svc := compatService(t, rdb)
			defer svc.Close()

			for i := 0; i < 7; i++ {
				if _, err := svc.IssueSession(ctx, "user-cap", fmt.Sprintf("device-%d", i)); err != nil {
					t.Fatalf("IssueSession %d failed: %v", i, err)
				}
				// Distinct creation scores keep eviction order deterministic.
				time.Sleep(2 * time.Millisecond)
			}

			sessions, err := svc.ActiveSessions(ctx, "user-cap")
			if err != nil {
				t.Fatalf("ActiveSessions failed: %v", err)
			}
			if len(sessions) != 5 {
				t.Fatalf("expected cap of 5 sessions, got %d", len(sessions))
			}
		})
	}
}
