package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/freightdash/tracking-gateway/internal/core/domain"
	"github.com/freightdash/tracking-gateway/internal/core/ports"
)

// CredentialSettings is the write side of credential management: the settings
// collaborator saves or removes a scope's key here, and every write eagerly
// invalidates the resolver cache so rotations take effect immediately.
type CredentialSettings struct {
	repo     ports.CredentialRepository
	resolver ports.CredentialResolver
	log      zerolog.Logger
}

func NewCredentialSettings(repo ports.CredentialRepository, resolver ports.CredentialResolver, log zerolog.Logger) *CredentialSettings {
	return &CredentialSettings{repo: repo, resolver: resolver, log: log}
}

// Save stores (obfuscated) the secret for (scopeID, version), replacing any
// previous value.
func (s *CredentialSettings) Save(ctx context.Context, scopeID string, version domain.ProviderVersion, secret string) error {
	stored := &ports.StoredCredential{
		ScopeID: scopeID,
		Version: version,
		Secret:  EncodeSecret(secret),
	}
	if err := s.repo.Upsert(ctx, stored); err != nil {
		return fmt.Errorf("save credential %s/%s: %w", scopeID, version, err)
	}
	s.resolver.Invalidate(scopeID, version)
	s.log.Info().Str("scope_id", scopeID).Str("version", string(version)).Msg("credential saved")
	return nil
}

// Remove deletes the credential for (scopeID, version). The scope falls back
// to the sandbox policy afterwards.
func (s *CredentialSettings) Remove(ctx context.Context, scopeID string, version domain.ProviderVersion) error {
	if err := s.repo.Delete(ctx, scopeID, version); err != nil {
		return fmt.Errorf("remove credential %s/%s: %w", scopeID, version, err)
	}
	s.resolver.Invalidate(scopeID, version)
	s.log.Info().Str("scope_id", scopeID).Str("version", string(version)).Msg("credential removed")
	return nil
}
