package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/freightdash/tracking-gateway/internal/core/domain"
	"github.com/freightdash/tracking-gateway/internal/core/ports"
)

const collectionCredentials = "provider_credentials"

// CredentialRepository implements ports.CredentialRepository on the external
// store's credential collection. Secrets are stored obfuscated; this layer
// never decodes them.
type CredentialRepository struct {
	col *mongo.Collection
}

func NewCredentialRepository(db *mongo.Database) *CredentialRepository {
	return &CredentialRepository{col: db.Collection(collectionCredentials)}
}

type credentialDoc struct {
	ScopeID   string `bson:"scope_id"`
	Version   string `bson:"version"`
	Secret    string `bson:"secret"`
	UpdatedAt int64  `bson:"updated_at"`
}

// Find returns the stored credential for (scopeID, version).
func (r *CredentialRepository) Find(ctx context.Context, scopeID string, version domain.ProviderVersion) (*ports.StoredCredential, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc credentialDoc
	err := r.col.FindOne(ctx, bson.M{"scope_id": scopeID, "version": string(version)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}

	return &ports.StoredCredential{
		ScopeID: doc.ScopeID,
		Version: domain.ProviderVersion(doc.Version),
		Secret:  doc.Secret,
	}, nil
}

// Upsert creates or replaces the credential for (scopeID, version).
func (r *CredentialRepository) Upsert(ctx context.Context, cred *ports.StoredCredential) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"scope_id": cred.ScopeID, "version": string(cred.Version)}
	doc := credentialDoc{
		ScopeID:   cred.ScopeID,
		Version:   string(cred.Version),
		Secret:    cred.Secret,
		UpdatedAt: time.Now().Unix(),
	}

	_, err := r.col.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}

// Delete removes the credential for (scopeID, version).
func (r *CredentialRepository) Delete(ctx context.Context, scopeID string, version domain.ProviderVersion) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"scope_id": scopeID, "version": string(version)})
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCredentialNotFound
	}
	return nil
}

// EnsureIndexes creates the unique (scope_id, version) index.
func (r *CredentialRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "scope_id", Value: 1}, {Key: "version", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
