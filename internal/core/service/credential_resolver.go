package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/freightdash/tracking-gateway/internal/api/metrics"
	"github.com/freightdash/tracking-gateway/internal/core/domain"
	"github.com/freightdash/tracking-gateway/internal/core/ports"
)

const defaultCredentialTTL = 5 * time.Minute

type credentialCacheEntry struct {
	creds         *domain.ProviderCredentials
	notConfigured bool
	expiresAt     time.Time
}

// CredentialResolver resolves per-scope provider credentials from the external
// store, caching each (scope, version) pair for a short TTL. The cache is the
// only shared mutable state in the service: concurrent reads are cheap, and
// duplicate in-flight lookups for the same key are tolerated — the later write
// wins, and staleness is bounded by the TTL either way.
type CredentialResolver struct {
	repo ports.CredentialRepository
	ttl  time.Duration
	now  func() time.Time
	log  zerolog.Logger

	mu    sync.RWMutex
	cache map[string]credentialCacheEntry
}

// NewCredentialResolver builds a resolver. ttl <= 0 selects the default of
// five minutes; now == nil selects time.Now (tests inject a fake clock).
func NewCredentialResolver(repo ports.CredentialRepository, ttl time.Duration, now func() time.Time, log zerolog.Logger) *CredentialResolver {
	if ttl <= 0 {
		ttl = defaultCredentialTTL
	}
	if now == nil {
		now = time.Now
	}
	return &CredentialResolver{
		repo:  repo,
		ttl:   ttl,
		now:   now,
		log:   log,
		cache: make(map[string]credentialCacheEntry),
	}
}

// Resolve returns the active credential for (scopeID, version), reading the
// store at most once per TTL window. A scope with no stored key, or with a key
// that fails de-obfuscation, yields domain.ErrCredentialNotConfigured — a
// valid terminal state, cached like any other result.
func (r *CredentialResolver) Resolve(ctx context.Context, scopeID string, version domain.ProviderVersion) (*domain.ProviderCredentials, error) {
	key := cacheKey(scopeID, version)

	r.mu.RLock()
	entry, ok := r.cache[key]
	r.mu.RUnlock()

	if ok && r.now().Before(entry.expiresAt) {
		metrics.CredentialCacheTotal.WithLabelValues("hit").Inc()
		return entry.result()
	}
	metrics.CredentialCacheTotal.WithLabelValues("miss").Inc()

	entry = credentialCacheEntry{expiresAt: r.now().Add(r.ttl)}

	stored, err := r.repo.Find(ctx, scopeID, version)
	switch {
	case errors.Is(err, domain.ErrCredentialNotFound):
		entry.notConfigured = true
	case err != nil:
		// Store errors are not cached; the next resolve retries.
		return nil, fmt.Errorf("resolve credential %s/%s: %w", scopeID, version, err)
	default:
		secret, decErr := decodeSecret(stored.Secret)
		if decErr != nil {
			r.log.Warn().
				Str("scope_id", scopeID).
				Str("version", string(version)).
				Err(decErr).
				Msg("stored credential failed decoding, treating as absent")
			entry.notConfigured = true
		} else {
			entry.creds = &domain.ProviderCredentials{
				Version: version,
				Secret:  secret,
				ScopeID: scopeID,
			}
		}
	}

	r.mu.Lock()
	r.cache[key] = entry
	r.mu.Unlock()

	return entry.result()
}

// Invalidate drops the cached entry for (scopeID, version). Called by the
// settings collaborator on every credential write, update, or removal, so a
// rotated secret is never served from a stale entry.
func (r *CredentialResolver) Invalidate(scopeID string, version domain.ProviderVersion) {
	r.mu.Lock()
	delete(r.cache, cacheKey(scopeID, version))
	r.mu.Unlock()
}

func (e credentialCacheEntry) result() (*domain.ProviderCredentials, error) {
	if e.notConfigured {
		return nil, domain.ErrCredentialNotConfigured
	}
	return e.creds, nil
}

func cacheKey(scopeID string, version domain.ProviderVersion) string {
	return scopeID + ":" + string(version)
}

// decodeSecret reverses the at-rest obfuscation (base64 — deterrence against
// shoulder-surfing the store, not cryptographic protection).
func decodeSecret(obfuscated string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(obfuscated)
	if err != nil {
		return "", fmt.Errorf("decode secret: %w", err)
	}
	return string(raw), nil
}

// EncodeSecret applies the at-rest obfuscation. Used by the settings write
// path before handing the secret to the store.
func EncodeSecret(secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(secret))
}
