package flows

import (
	"context"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/internal"
	"github.com/MrEthical07/goSession/kv"
)

func testIssueDeps(store *stubStore) IssueDeps {
	return IssueDeps{
		NewRefreshSecret:   internal.NewRefreshSecret,
		CredentialID:       internal.CredentialID,
		EncodeRefreshToken: internal.EncodeRefreshToken,
		IssueAccess: func(string) (string, time.Time, error) {
			return "access-token", time.Now().Add(15 * time.Minute), nil
		},
		Now:         time.Now,
		RefreshTTL:  time.Hour,
		MaxSessions: 5,
		Store:       store,
	}
}

func TestRunIssueCreatesTrackedSession(t *testing.T) {
	store := newStubStore()

	result := RunIssue(context.Background(), "u1", "dev", testIssueDeps(store))
	if result.Failure != IssueFailureNone {
		t.Fatalf("expected success, got %v (err=%v)", result.Failure, result.Err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected token pair")
	}

	rec, ok := store.records[store.key("u1", result.CredentialID)]
	if !ok {
		t.Fatal("refresh record should be stored")
	}
	if rec.DeviceInfo != "dev" {
		t.Fatalf("device info lost: %q", rec.DeviceInfo)
	}
	if len(store.set) != 1 || store.set[0] != result.CredentialID {
		t.Fatalf("session set should track the credential, got %v", store.set)
	}
}

func TestRunIssueStoreFailureAborts(t *testing.T) {
	store := newStubStore()
	store.failSaveRecord = true

	result := RunIssue(context.Background(), "u1", "", testIssueDeps(store))
	if result.Failure != IssueFailureStore {
		t.Fatalf("expected IssueFailureStore, got %v", result.Failure)
	}
	if result.AccessToken != "" || result.RefreshToken != "" {
		t.Fatal("no tokens may be returned on abort")
	}
}

func TestRunIssueProbeShortCircuits(t *testing.T) {
	store := newStubStore()

	deps := testIssueDeps(store)
	deps.ProbeHealth = func(context.Context) kv.Health { return kv.Unavailable }

	result := RunIssue(context.Background(), "u1", "", deps)
	if result.Failure != IssueFailureUnavailable {
		t.Fatalf("expected IssueFailureUnavailable, got %v", result.Failure)
	}
	if len(store.records) != 0 {
		t.Fatal("no writes may run when the probe reports unavailable")
	}
}
