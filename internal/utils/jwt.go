package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sociograph/auth-service/internal/domain"
)

// TokenIssuer mints and verifies the signed tokens the service uses.
// Access, two-factor and recovery tokens share the access secret and
// are told apart by their token_use claim; refresh tokens use their
// own secret.
type TokenIssuer struct {
	accessSecret    []byte
	refreshSecret   []byte
	accessExpiry    time.Duration
	refreshExpiry   time.Duration
	twoFactorExpiry time.Duration
	recoveryExpiry  time.Duration
}

// NewTokenIssuer creates a new token issuer.
func NewTokenIssuer(accessSecret, refreshSecret string, accessExpiry, refreshExpiry, twoFactorExpiry, recoveryExpiry time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:    []byte(accessSecret),
		refreshSecret:   []byte(refreshSecret),
		accessExpiry:    accessExpiry,
		refreshExpiry:   refreshExpiry,
		twoFactorExpiry: twoFactorExpiry,
		recoveryExpiry:  recoveryExpiry,
	}
}

// IssuePair mints a bound access/refresh token pair. The access token's
// refresh_jti claim carries the refresh token's jti so guards can detect
// mixed-and-matched pairs.
func (i *TokenIssuer) IssuePair(accountID, email string) (*domain.TokenPair, error) {
	refreshJTI := uuid.New().String()

	refreshToken, err := i.signRefreshToken(accountID, email, refreshJTI)
	if err != nil {
		return nil, err
	}

	accessToken, err := i.IssueAccessToken(accountID, email, refreshJTI)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// IssueAccessToken mints an access token bound to an existing refresh
// token's jti. Used both when minting full pairs and on refresh, where
// the refresh token itself is not rotated.
func (i *TokenIssuer) IssueAccessToken(accountID, email, refreshJTI string) (string, error) {
	now := time.Now()
	claims := &domain.AccessClaims{
		AccountID:      accountID,
		Email:          email,
		TokenUse:       domain.TokenKindAccess,
		RefreshTokenID: refreshJTI,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, nil
}

// IssueLimitedToken mints a short-lived two-factor or recovery token.
// These tokens are not paired with a refresh token.
func (i *TokenIssuer) IssueLimitedToken(kind domain.TokenKind, accountID, email string) (string, error) {
	var expiry time.Duration
	switch kind {
	case domain.TokenKindTwoFactor:
		expiry = i.twoFactorExpiry
	case domain.TokenKindRecovery:
		expiry = i.recoveryExpiry
	default:
		return "", fmt.Errorf("token kind %q is not a limited token", kind)
	}

	now := time.Now()
	claims := &domain.AccessClaims{
		AccountID: accountID,
		Email:     email,
		TokenUse:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}

	return signed, nil
}

func (i *TokenIssuer) signRefreshToken(accountID, email, jti string) (string, error) {
	now := time.Now()
	claims := &domain.RefreshClaims{
		AccountID: accountID,
		Email:     email,
		TokenUse:  domain.TokenKindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.refreshExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return signed, nil
}

// VerifyAccessToken validates signature and expiry and checks that the
// token's kind is one of the expected kinds.
func (i *TokenIssuer) VerifyAccessToken(tokenString string, kinds ...domain.TokenKind) (*domain.AccessClaims, error) {
	claims := &domain.AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.accessSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("token is missing jti")
	}

	for _, kind := range kinds {
		if claims.TokenUse == kind {
			return claims, nil
		}
	}

	return nil, fmt.Errorf("token kind %q not accepted here", claims.TokenUse)
}

// VerifyRefreshToken validates a refresh token's signature, expiry and kind.
func (i *TokenIssuer) VerifyRefreshToken(tokenString string) (*domain.RefreshClaims, error) {
	claims := &domain.RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.refreshSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse refresh token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid refresh token")
	}
	if claims.TokenUse != domain.TokenKindRefresh {
		return nil, fmt.Errorf("token kind %q is not a refresh token", claims.TokenUse)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("refresh token is missing jti")
	}

	return claims, nil
}
