//go:build integration
// +build integration

package test

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/kv"
	"github.com/MrEthical07/goSession/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newIntegrationService(t *testing.T) (*goSession.Service, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc, err := goSession.New().
		WithConfig(integrationConfig(t)).
		WithRedis(rdb).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	return svc, mr, func() {
		svc.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

func newIntegrationStore(t *testing.T) (*session.Store, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	client := kv.NewClient(rdb, 3*time.Second, 100*time.Millisecond)
	store := session.NewStore(client, "gs", time.Now)

	return store, mr, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

func integrationConfig(t *testing.T) goSession.Config {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	cfg := goSession.DefaultConfig()
	cfg.JWT.PrivateKey = priv
	cfg.JWT.PublicKey = pub
	cfg.JWT.Issuer = "gosession-integration"
	return cfg
}

func makeRecord(userID, credentialID string, ttl time.Duration) *session.RefreshRecord {
	now := time.Now()
	return &session.RefreshRecord{
		UserID:       userID,
		CredentialID: credentialID,
		DeviceInfo:   "integration",
		CreatedAt:    now.Unix(),
		ExpiresAt:    now.Add(ttl).Unix(),
	}
}
