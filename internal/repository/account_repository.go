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

const accountCollection = "users"

// accountRepository implements AccountRepository over MongoDB
type accountRepository struct {
	collection *mongo.Collection
}

// NewAccountRepository creates a new account repository and ensures the
// unique email index.
func NewAccountRepository(ctx context.Context, db *database.Mongo) (AccountRepository, error) {
	collection := db.Database.Collection(accountCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create account indexes: %w", err)
	}

	return &accountRepository{collection: collection}, nil
}

// Create inserts a new account document.
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("account with email %s already exists: %w", account.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		account.ID = objectID
	}

	return nil
}

// GetByEmail retrieves an account by email
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByID retrieves an account by its hex id
func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid account id %q: %w", id, ErrNotFound)
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

// GetByGoogleID retrieves an account by its Google subject id
func (r *accountRepository) GetByGoogleID(ctx context.Context, googleID string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"google_id": googleID})
}

func (r *accountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var account domain.Account
	err := r.collection.FindOne(ctx, filter).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("account not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// Update replaces the mutable fields of an account document.
func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	account.UpdatedAt = time.Now()

	update := bson.M{"$set": bson.M{
		"username":                 account.Username,
		"email":                    account.Email,
		"password_hash":            account.PasswordHash,
		"providers":                account.Providers,
		"google_id":                account.GoogleID,
		"status":                   account.Status,
		"two_factor_enabled":       account.TwoFactorEnabled,
		"needs_profile_completion": account.NeedsProfileCompletion,
		"gender":                   account.Gender,
		"date_of_birth":            account.DateOfBirth,
		"phone_number":             account.EncryptedPhoneNumber,
		"updated_at":               account.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": account.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("account with email %s already exists: %w", account.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to update account: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("account %s not found: %w", account.ID.Hex(), ErrNotFound)
	}

	return nil
}

// EmailTakenByOther reports whether a different account already owns the email.
func (r *accountRepository) EmailTakenByOther(ctx context.Context, accountID, email string) (bool, error) {
	objectID, err := bson.ObjectIDFromHex(accountID)
	if err != nil {
		return false, fmt.Errorf("invalid account id %q: %w", accountID, ErrNotFound)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"_id":   bson.M{"$ne": objectID},
		"email": email,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check email availability: %w", err)
	}

	return count > 0, nil
}
