package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/sociograph/auth-service/internal/domain"
	"github.com/sociograph/auth-service/pkg/database"
)

const revokedTokenCollection = "revoked_tokens"

// revokedTokenRepository implements RevokedTokenRepository over MongoDB.
// Records expire via a TTL index on expires_at; that sweep is storage
// hygiene only, since a token past its own expiry fails signature
// validation before the revocation check is ever reached.
type revokedTokenRepository struct {
	collection *mongo.Collection
}

// NewRevokedTokenRepository creates a new revoked token repository.
func NewRevokedTokenRepository(ctx context.Context, db *database.Mongo) (RevokedTokenRepository, error) {
	collection := db.Database.Collection(revokedTokenCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "access_token_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "refresh_token_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create revoked token indexes: %w", err)
	}

	return &revokedTokenRepository{collection: collection}, nil
}

// Revoke records both jtis of a token pair. Revocation records are
// never updated after insertion.
func (r *revokedTokenRepository) Revoke(ctx context.Context, accessJTI, refreshJTI string, expiresAt time.Time) error {
	record := &domain.RevokedToken{
		AccessTokenID:  accessJTI,
		RefreshTokenID: refreshJTI,
		ExpiresAt:      expiresAt,
	}

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert revocation record: %w", err)
	}

	return nil
}

// IsAccessRevoked reports whether an access token jti has been revoked.
func (r *revokedTokenRepository) IsAccessRevoked(ctx context.Context, accessJTI string) (bool, error) {
	return r.exists(ctx, bson.M{"access_token_id": accessJTI})
}

// IsRefreshRevoked reports whether a refresh token jti has been revoked.
func (r *revokedTokenRepository) IsRefreshRevoked(ctx context.Context, refreshJTI string) (bool, error) {
	return r.exists(ctx, bson.M{"refresh_token_id": refreshJTI})
}

func (r *revokedTokenRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return count > 0, nil
}
