package repository

import (
	"context"
	"fmt"

	"github.com/sociograph/auth-service/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	Account      AccountRepository
	OTP          OTPRepository
	RevokedToken RevokedTokenRepository
}

// NewRepositories creates all repositories and ensures their indexes.
func NewRepositories(ctx context.Context, db *database.Mongo) (*Repositories, error) {
	account, err := NewAccountRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create account repository: %w", err)
	}

	otp, err := NewOTPRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create otp repository: %w", err)
	}

	revoked, err := NewRevokedTokenRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create revoked token repository: %w", err)
	}

	return &Repositories{
		Account:      account,
		OTP:          otp,
		RevokedToken: revoked,
	}, nil
}
