package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"
)

func newTestManager(t *testing.T, clock func() time.Time) *Manager {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}

	mgr, err := NewManager(Config{
		AccessTTL:     15 * time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
		Issuer:        "test",
	}, clock)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return mgr
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	mgr := newTestManager(t, nil)

	token, tokenID, expiresAt, err := mgr.Issue("u1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" || tokenID == "" {
		t.Fatal("expected non-empty token and token ID")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatal("expiry must be in the future")
	}

	userID, gotTokenID, gotExpiry, err := mgr.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("expected user u1, got %q", userID)
	}
	if gotTokenID != tokenID {
		t.Fatalf("token ID mismatch: %q vs %q", gotTokenID, tokenID)
	}
	if gotExpiry.Unix() != expiresAt.Unix() {
		t.Fatalf("expiry mismatch: %v vs %v", gotExpiry, expiresAt)
	}
}

func TestTokenIDsAreUnique(t *testing.T) {
	mgr := newTestManager(t, nil)

	_, first, _, err := mgr.Issue("u1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	_, second, _, err := mgr.Issue("u1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if first == second {
		t.Fatal("token IDs must be unique per issuance")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	mgr := newTestManager(t, func() time.Time { return past })

	token, _, _, err := mgr.Issue("u1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, _, _, err := mgr.Verify(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	mgr := newTestManager(t, nil)
	other := newTestManager(t, nil)

	token, _, _, err := other.Issue("u1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, _, _, err := mgr.Verify(token); err == nil {
		t.Fatal("expected foreign signature to be rejected")
	}
}

func TestHS256RoundTrip(t *testing.T) {
	mgr, err := NewManager(Config{
		AccessTTL:     time.Minute,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
	}, nil)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, _, _, err := mgr.Issue("u1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	userID, _, _, err := mgr.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("expected u1, got %q", userID)
	}
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	if _, err := NewManager(Config{SigningMethod: MethodEd25519}, nil); err == nil {
		t.Fatal("expected error for missing TTL")
	}
	if _, err := NewManager(Config{AccessTTL: time.Minute, SigningMethod: MethodEd25519}, nil); err == nil {
		t.Fatal("expected error for missing public key")
	}
	if _, err := NewManager(Config{AccessTTL: time.Minute, SigningMethod: MethodHS256}, nil); err == nil {
		t.Fatal("expected error for missing hs256 key")
	}
	if _, err := NewManager(Config{AccessTTL: time.Minute, SigningMethod: "rs512"}, nil); err == nil {
		t.Fatal("expected error for unsupported method")
	}
}
