package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// TokenKind discriminates the four token types the service issues.
// Guards check the kind explicitly, so a limited two-factor token or a
// recovery token can never be used on a general protected route.
type TokenKind string

const (
	TokenKindAccess    TokenKind = "access"
	TokenKindRefresh   TokenKind = "refresh"
	TokenKindTwoFactor TokenKind = "twofactor"
	TokenKindRecovery  TokenKind = "recovery"
)

// AccessClaims is the claim set of access, two-factor and recovery
// tokens. RefreshTokenID binds an access token to the refresh token it
// was minted with; it is empty for two-factor and recovery tokens,
// which are never paired.
type AccessClaims struct {
	AccountID      string    `json:"account_id"`
	Email          string    `json:"email"`
	TokenUse       TokenKind `json:"token_use"`
	RefreshTokenID string    `json:"refresh_jti,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims is the claim set of refresh tokens.
type RefreshClaims struct {
	AccountID string    `json:"account_id"`
	Email     string    `json:"email"`
	TokenUse  TokenKind `json:"token_use"`
	jwt.RegisteredClaims
}

// TokenPair is a freshly minted access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RevokedToken is a revocation record covering one access/refresh pair.
// ExpiresAt is copied from the access token's own expiry; after that
// point the record may be garbage-collected since the tokens it covers
// can no longer pass signature validation anyway.
type RevokedToken struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	AccessTokenID  string        `bson:"access_token_id"`
	RefreshTokenID string        `bson:"refresh_token_id"`
	ExpiresAt      time.Time     `bson:"expires_at"`
}
