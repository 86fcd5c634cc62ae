package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sociograph/auth-service/internal/domain"
)

func testIssuer() *TokenIssuer {
	return NewTokenIssuer(
		"test-access-secret-0123456789abcdef",
		"test-refresh-secret-0123456789abcde",
		15*time.Minute,
		7*24*time.Hour,
		10*time.Minute,
		15*time.Minute,
	)
}

func TestIssuePair(t *testing.T) {
	issuer := testIssuer()

	pair, err := issuer.IssuePair("account-1", "alice@example.com")
	require.NoError(t, err)

	access, err := issuer.VerifyAccessToken(pair.AccessToken, domain.TokenKindAccess)
	require.NoError(t, err)
	refresh, err := issuer.VerifyRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, "account-1", access.AccountID)
	assert.Equal(t, "alice@example.com", access.Email)
	assert.Equal(t, domain.TokenKindAccess, access.TokenUse)
	assert.Equal(t, domain.TokenKindRefresh, refresh.TokenUse)

	// The access token carries the refresh token's jti.
	assert.Equal(t, refresh.ID, access.RefreshTokenID)
	assert.NotEmpty(t, access.ID)
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestVerifyAccessToken(t *testing.T) {
	issuer := testIssuer()

	t.Run("rejects a refresh token on the access secret", func(t *testing.T) {
		pair, err := issuer.IssuePair("account-1", "alice@example.com")
		require.NoError(t, err)

		_, err = issuer.VerifyAccessToken(pair.RefreshToken, domain.TokenKindAccess)
		assert.Error(t, err)
	})

	t.Run("rejects tokens of an unexpected kind", func(t *testing.T) {
		limited, err := issuer.IssueLimitedToken(domain.TokenKindTwoFactor, "account-1", "alice@example.com")
		require.NoError(t, err)

		_, err = issuer.VerifyAccessToken(limited, domain.TokenKindAccess)
		assert.Error(t, err)

		claims, err := issuer.VerifyAccessToken(limited, domain.TokenKindTwoFactor)
		require.NoError(t, err)
		assert.Equal(t, domain.TokenKindTwoFactor, claims.TokenUse)
		assert.Empty(t, claims.RefreshTokenID)
	})

	t.Run("accepts any of several kinds", func(t *testing.T) {
		recovery, err := issuer.IssueLimitedToken(domain.TokenKindRecovery, "account-1", "alice@example.com")
		require.NoError(t, err)

		claims, err := issuer.VerifyAccessToken(recovery, domain.TokenKindAccess, domain.TokenKindRecovery)
		require.NoError(t, err)
		assert.Equal(t, domain.TokenKindRecovery, claims.TokenUse)
	})

	t.Run("rejects tokens signed with another secret", func(t *testing.T) {
		other := NewTokenIssuer(
			"other-access-secret-0123456789abcde",
			"other-refresh-secret-0123456789abcd",
			time.Minute, time.Hour, time.Minute, time.Minute,
		)
		pair, err := other.IssuePair("account-1", "alice@example.com")
		require.NoError(t, err)

		_, err = issuer.VerifyAccessToken(pair.AccessToken, domain.TokenKindAccess)
		assert.Error(t, err)
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		expired := NewTokenIssuer(
			"test-access-secret-0123456789abcdef",
			"test-refresh-secret-0123456789abcde",
			-time.Minute, -time.Minute, -time.Minute, -time.Minute,
		)
		pair, err := expired.IssuePair("account-1", "alice@example.com")
		require.NoError(t, err)

		_, err = issuer.VerifyAccessToken(pair.AccessToken, domain.TokenKindAccess)
		assert.Error(t, err)
		_, err = issuer.VerifyRefreshToken(pair.RefreshToken)
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := issuer.VerifyAccessToken("not.a.jwt", domain.TokenKindAccess)
		assert.Error(t, err)
	})
}

func TestIssueAccessToken(t *testing.T) {
	issuer := testIssuer()

	pair, err := issuer.IssuePair("account-1", "alice@example.com")
	require.NoError(t, err)
	refresh, err := issuer.VerifyRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	// A refreshed access token stays bound to the original refresh jti
	// but gets a jti of its own.
	refreshed, err := issuer.IssueAccessToken(refresh.AccountID, refresh.Email, refresh.ID)
	require.NoError(t, err)

	claims, err := issuer.VerifyAccessToken(refreshed, domain.TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, refresh.ID, claims.RefreshTokenID)

	original, err := issuer.VerifyAccessToken(pair.AccessToken, domain.TokenKindAccess)
	require.NoError(t, err)
	assert.NotEqual(t, original.ID, claims.ID)
}

func TestIssueLimitedToken(t *testing.T) {
	issuer := testIssuer()

	_, err := issuer.IssueLimitedToken(domain.TokenKindAccess, "account-1", "alice@example.com")
	assert.Error(t, err)
	_, err = issuer.IssueLimitedToken(domain.TokenKindRefresh, "account-1", "alice@example.com")
	assert.Error(t, err)
}
