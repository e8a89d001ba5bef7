package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/freightdash/tracking-gateway/internal/core/domain"
)

func TestSettings_SaveStoresObfuscatedAndInvalidates(t *testing.T) {
	repo := newStubCredentialRepo()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	resolver := NewCredentialResolver(repo, 5*time.Minute, clock.now, zerolog.Nop())
	settings := NewCredentialSettings(repo, resolver, zerolog.Nop())

	// Warm the cache with the initial key.
	seedCredential(repo, "org-1", domain.VersionV1, "first")
	if creds, _ := resolver.Resolve(context.Background(), "org-1", domain.VersionV1); creds.Secret != "first" {
		t.Fatalf("precondition failed")
	}

	if err := settings.Save(context.Background(), "org-1", domain.VersionV1, "rotated"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	stored := repo.byKey["org-1:v1"]
	if stored.Secret == "rotated" {
		t.Errorf("secret stored in the clear")
	}
	if decoded, _ := decodeSecret(stored.Secret); decoded != "rotated" {
		t.Errorf("stored secret does not decode to the new value")
	}

	// Within the original TTL window the rotation must already be visible.
	creds, err := resolver.Resolve(context.Background(), "org-1", domain.VersionV1)
	if err != nil {
		t.Fatalf("resolve after save: %v", err)
	}
	if creds.Secret != "rotated" {
		t.Errorf("resolver served stale secret %q after rotation", creds.Secret)
	}
}

func TestSettings_RemoveFallsBackToNotConfigured(t *testing.T) {
	repo := newStubCredentialRepo()
	seedCredential(repo, "org-1", domain.VersionV1, "secret")
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	resolver := NewCredentialResolver(repo, 5*time.Minute, clock.now, zerolog.Nop())
	settings := NewCredentialSettings(repo, resolver, zerolog.Nop())

	_, _ = resolver.Resolve(context.Background(), "org-1", domain.VersionV1)

	if err := settings.Remove(context.Background(), "org-1", domain.VersionV1); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	_, err := resolver.Resolve(context.Background(), "org-1", domain.VersionV1)
	if !errors.Is(err, domain.ErrCredentialNotConfigured) {
		t.Errorf("expected ErrCredentialNotConfigured after removal, got %v", err)
	}
}

func TestSettings_RemoveMissingCredential(t *testing.T) {
	repo := newStubCredentialRepo()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	resolver := NewCredentialResolver(repo, 5*time.Minute, clock.now, zerolog.Nop())
	settings := NewCredentialSettings(repo, resolver, zerolog.Nop())

	err := settings.Remove(context.Background(), "org-none", domain.VersionV1)
	if !errors.Is(err, domain.ErrCredentialNotFound) {
		t.Errorf("expected ErrCredentialNotFound, got %v", err)
	}
}
