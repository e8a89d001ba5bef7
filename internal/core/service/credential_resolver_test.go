package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/freightdash/tracking-gateway/internal/core/domain"
	"github.com/freightdash/tracking-gateway/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubCredentialRepo struct {
	byKey map[string]*ports.StoredCredential
	reads int
	err   error
}

func newStubCredentialRepo() *stubCredentialRepo {
	return &stubCredentialRepo{byKey: map[string]*ports.StoredCredential{}}
}

func (r *stubCredentialRepo) Find(_ context.Context, scopeID string, version domain.ProviderVersion) (*ports.StoredCredential, error) {
	r.reads++
	if r.err != nil {
		return nil, r.err
	}
	cred, ok := r.byKey[scopeID+":"+string(version)]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	return cred, nil
}

func (r *stubCredentialRepo) Upsert(_ context.Context, cred *ports.StoredCredential) error {
	r.byKey[cred.ScopeID+":"+string(cred.Version)] = cred
	return nil
}

func (r *stubCredentialRepo) Delete(_ context.Context, scopeID string, version domain.ProviderVersion) error {
	key := scopeID + ":" + string(version)
	if _, ok := r.byKey[key]; !ok {
		return domain.ErrCredentialNotFound
	}
	delete(r.byKey, key)
	return nil
}

// fakeClock advances only when told to.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func seedCredential(repo *stubCredentialRepo, scope string, version domain.ProviderVersion, secret string) {
	repo.byKey[scope+":"+string(version)] = &ports.StoredCredential{
		ScopeID: scope,
		Version: version,
		Secret:  EncodeSecret(secret),
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestResolve_CacheHitWithinTTL(t *testing.T) {
	repo := newStubCredentialRepo()
	seedCredential(repo, "org-1", domain.VersionV1, "topsecret")
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}

	r := NewCredentialResolver(repo, 5*time.Minute, clock.now, zerolog.Nop())

	first, err := r.Resolve(context.Background(), "org-1", domain.VersionV1)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if first.Secret != "topsecret" {
		t.Errorf("secret = %q, want decoded topsecret", first.Secret)
	}

	clock.advance(4 * time.Minute)
	if _, err := r.Resolve(context.Background(), "org-1", domain.VersionV1); err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	if repo.reads != 1 {
		t.Errorf("store reads = %d, want exactly 1 within TTL", repo.reads)
	}
}

func TestResolve_TTLExpiryTriggersFreshRead(t *testing.T) {
	repo := newStubCredentialRepo()
	seedCredential(repo, "org-1", domain.VersionV1, "topsecret")
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}

	r := NewCredentialResolver(repo, 5*time.Minute, clock.now, zerolog.Nop())

	_, _ = r.Resolve(context.Background(), "org-1", domain.VersionV1)
	clock.advance(6 * time.Minute)
	_, _ = r.Resolve(context.Background(), "org-1", domain.VersionV1)

	if repo.reads != 2 {
		t.Errorf("store reads = %d, want 2 after TTL expiry", repo.reads)
	}
}

func TestResolve_InvalidateForcesReadWithinTTL(t *testing.T) {
	repo := newStubCredentialRepo()
	seedCredential(repo, "org-1", domain.VersionV1, "old-secret")
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}

	r := NewCredentialResolver(repo, 5*time.Minute, clock.now, zerolog.Nop())

	_, _ = r.Resolve(context.Background(), "org-1", domain.VersionV1)

	// Rotation: the settings collaborator writes and invalidates.
	seedCredential(repo, "org-1", domain.VersionV1, "new-secret")
	r.Invalidate("org-1", domain.VersionV1)

	clock.advance(time.Minute) // still inside the original TTL window
	creds, err := r.Resolve(context.Background(), "org-1", domain.VersionV1)
	if err != nil {
		t.Fatalf("resolve after invalidation: %v", err)
	}
	if creds.Secret != "new-secret" {
		t.Errorf("secret = %q, want rotated new-secret", creds.Secret)
	}
	if repo.reads != 2 {
		t.Errorf("store reads = %d, want 2 (invalidation bypasses TTL)", repo.reads)
	}
}

func TestResolve_KeysAreScopedPerVersion(t *testing.T) {
	repo := newStubCredentialRepo()
	seedCredential(repo, "org-1", domain.VersionV1, "v1-secret")
	seedCredential(repo, "org-1", domain.VersionV2, "v2-secret")
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}

	r := NewCredentialResolver(repo, 5*time.Minute, clock.now, zerolog.Nop())

	v1, _ := r.Resolve(context.Background(), "org-1", domain.VersionV1)
	v2, _ := r.Resolve(context.Background(), "org-1", domain.VersionV2)

	if v1.Secret != "v1-secret" || v2.Secret != "v2-secret" {
		t.Errorf("secrets = %q/%q, want per-version values", v1.Secret, v2.Secret)
	}
	if repo.reads != 2 {
		t.Errorf("store reads = %d, want one per (scope, version) pair", repo.reads)
	}
}

func TestResolve_NotConfiguredIsCached(t *testing.T) {
	repo := newStubCredentialRepo() // empty store
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}

	r := NewCredentialResolver(repo, 5*time.Minute, clock.now, zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, err := r.Resolve(context.Background(), "org-none", domain.VersionV1)
		if !errors.Is(err, domain.ErrCredentialNotConfigured) {
			t.Fatalf("resolve %d: expected ErrCredentialNotConfigured, got %v", i, err)
		}
	}
	if repo.reads != 1 {
		t.Errorf("store reads = %d, want 1 (negative result cached)", repo.reads)
	}
}

func TestResolve_UndecodableSecretTreatedAsAbsent(t *testing.T) {
	repo := newStubCredentialRepo()
	repo.byKey["org-1:v1"] = &ports.StoredCredential{
		ScopeID: "org-1",
		Version: domain.VersionV1,
		Secret:  "%%% not base64 %%%",
	}
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}

	r := NewCredentialResolver(repo, 5*time.Minute, clock.now, zerolog.Nop())

	_, err := r.Resolve(context.Background(), "org-1", domain.VersionV1)
	if !errors.Is(err, domain.ErrCredentialNotConfigured) {
		t.Errorf("expected ErrCredentialNotConfigured for undecodable secret, got %v", err)
	}
}

func TestResolve_StoreErrorNotCached(t *testing.T) {
	repo := newStubCredentialRepo()
	repo.err = errors.New("store down")
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}

	r := NewCredentialResolver(repo, 5*time.Minute, clock.now, zerolog.Nop())

	if _, err := r.Resolve(context.Background(), "org-1", domain.VersionV1); err == nil {
		t.Fatalf("expected store error")
	}

	repo.err = nil
	seedCredential(repo, "org-1", domain.VersionV1, "recovered")
	creds, err := r.Resolve(context.Background(), "org-1", domain.VersionV1)
	if err != nil {
		t.Fatalf("resolve after recovery: %v", err)
	}
	if creds.Secret != "recovered" {
		t.Errorf("secret = %q, want recovered (error result must not be cached)", creds.Secret)
	}
}

func TestEncodeSecretRoundTrip(t *testing.T) {
	secret := "api-key-0123456789"
	decoded, err := decodeSecret(EncodeSecret(secret))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != secret {
		t.Errorf("round trip = %q, want %q", decoded, secret)
	}
}
