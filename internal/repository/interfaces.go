package repository

import (
	"context"
	"time"

	"github.com/sociograph/auth-service/internal/domain"
)

// AccountRepository defines methods for account operations
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByGoogleID(ctx context.Context, googleID string) (*domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
	EmailTakenByOther(ctx context.Context, accountID, email string) (bool, error)
}

// OTPRepository defines methods for one-time-code records. Upsert must
// be atomic per account id: at most one record exists per account and a
// new request replaces the slot in place.
type OTPRepository interface {
	Upsert(ctx context.Context, accountID string, slot domain.OTPSlot, codeHash string, expiration time.Time) error
	GetByAccountID(ctx context.Context, accountID string) (*domain.OTPRecord, error)
	DeleteByAccountID(ctx context.Context, accountID string) error
}

// RevokedTokenRepository is the shared revocation set consulted on every
// authenticated request.
type RevokedTokenRepository interface {
	Revoke(ctx context.Context, accessJTI, refreshJTI string, expiresAt time.Time) error
	IsAccessRevoked(ctx context.Context, accessJTI string) (bool, error)
	IsRefreshRevoked(ctx context.Context, refreshJTI string) (bool, error)
}
