package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/sociograph/auth-service/internal/domain"
	"github.com/sociograph/auth-service/pkg/database"
)

const otpCollection = "user_otps"

// otpRepository implements OTPRepository over MongoDB
type otpRepository struct {
	collection *mongo.Collection
}

// NewOTPRepository creates a new OTP repository with a unique index on
// account id, which is what makes the upsert race-free.
func NewOTPRepository(ctx context.Context, db *database.Mongo) (OTPRepository, error) {
	collection := db.Database.Collection(otpCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "account_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create otp indexes: %w", err)
	}

	return &otpRepository{collection: collection}, nil
}

// Upsert writes the code hash into the given slot of the account's OTP
// record, creating the record if absent. A single update with the
// upsert option; no read-then-write.
func (r *otpRepository) Upsert(ctx context.Context, accountID string, slot domain.OTPSlot, codeHash string, expiration time.Time) error {
	objectID, err := bson.ObjectIDFromHex(accountID)
	if err != nil {
		return fmt.Errorf("invalid account id %q: %w", accountID, ErrNotFound)
	}

	update := bson.M{"$set": bson.M{
		string(slot): codeHash,
		"expiration": expiration,
	}}

	_, err = r.collection.UpdateOne(
		ctx,
		bson.M{"account_id": objectID},
		update,
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert otp record: %w", err)
	}

	return nil
}

// GetByAccountID retrieves the outstanding OTP record for an account.
func (r *otpRepository) GetByAccountID(ctx context.Context, accountID string) (*domain.OTPRecord, error) {
	objectID, err := bson.ObjectIDFromHex(accountID)
	if err != nil {
		return nil, fmt.Errorf("invalid account id %q: %w", accountID, ErrNotFound)
	}

	var record domain.OTPRecord
	err = r.collection.FindOne(ctx, bson.M{"account_id": objectID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("otp record not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get otp record: %w", err)
	}

	return &record, nil
}

// DeleteByAccountID removes the account's OTP record after a successful
// verification. Missing records are not an error.
func (r *otpRepository) DeleteByAccountID(ctx context.Context, accountID string) error {
	objectID, err := bson.ObjectIDFromHex(accountID)
	if err != nil {
		return fmt.Errorf("invalid account id %q: %w", accountID, ErrNotFound)
	}

	if _, err := r.collection.DeleteOne(ctx, bson.M{"account_id": objectID}); err != nil {
		return fmt.Errorf("failed to delete otp record: %w", err)
	}

	return nil
}
