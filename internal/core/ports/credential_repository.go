package ports

import (
	"context"

	"github.com/freightdash/tracking-gateway/internal/core/domain"
)

// StoredCredential is the at-rest credential row from the external store.
// Secret is still obfuscated; the resolver decodes it.
type StoredCredential struct {
	ScopeID string
	Version domain.ProviderVersion
	Secret  string // obfuscated
}

// CredentialRepository is the narrow read/write contract against the external
// store's credential collection.
type CredentialRepository interface {
	// Find returns the stored credential for (scopeID, version), or
	// domain.ErrCredentialNotFound.
	Find(ctx context.Context, scopeID string, version domain.ProviderVersion) (*StoredCredential, error)
	// Upsert creates or replaces the credential for (scopeID, version).
	Upsert(ctx context.Context, cred *StoredCredential) error
	// Delete removes the credential for (scopeID, version);
	// domain.ErrCredentialNotFound when nothing was stored.
	Delete(ctx context.Context, scopeID string, version domain.ProviderVersion) error
}

// CredentialResolver resolves the active credential for a scope and provider
// version, caching results for a short TTL.
type CredentialResolver interface {
	// Resolve returns the active credential, or domain.ErrCredentialNotConfigured
	// when the scope has no usable key. The caller decides the fallback policy.
	Resolve(ctx context.Context, scopeID string, version domain.ProviderVersion) (*domain.ProviderCredentials, error)
	// Invalidate eagerly drops the cached entry for (scopeID, version) after a
	// credential write, so a rotation is never served stale within the TTL.
	Invalidate(scopeID string, version domain.ProviderVersion)
}
