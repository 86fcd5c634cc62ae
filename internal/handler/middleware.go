package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sociograph/auth-service/internal/apperr"
	"github.com/sociograph/auth-service/internal/domain"
	"github.com/sociograph/auth-service/internal/service"
)

// Context keys set by the guards for downstream handlers.
const (
	ContextAccount       = "account"
	ContextAccessClaims  = "accessClaims"
	ContextRefreshClaims = "refreshClaims"
)

// Token header names. Tokens arrive as "<prefix> <token>" with the
// prefix word from configuration.
const (
	headerAccessToken   = "accesstoken"
	headerRefreshToken  = "refreshtoken"
	headerRecoveryToken = "recoverytoken"
)

// AuthMiddleware guards routes behind an access-family token. The kinds
// say which token_use values the route accepts, so a limited two-factor
// or recovery token cannot open a general protected route.
func AuthMiddleware(authService service.AuthService, tokenPrefix string, kinds ...domain.TokenKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(headerAccessToken)
		if raw == "" {
			raw = c.GetHeader(headerRecoveryToken)
		}
		if raw == "" {
			respondError(c, apperr.BadRequest("please insert token"))
			c.Abort()
			return
		}

		token, err := stripPrefix(raw, tokenPrefix)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		account, claims, err := authService.Authenticate(c.Request.Context(), token, kinds...)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextAccount, account)
		c.Set(ContextAccessClaims, claims)

		c.Next()
	}
}

// RefreshMiddleware guards routes behind a refresh token. When it runs
// after AuthMiddleware it also cross-checks the jti binding between the
// two presented tokens.
func RefreshMiddleware(authService service.AuthService, tokenPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(headerRefreshToken)
		if raw == "" {
			respondError(c, apperr.BadRequest("please insert token"))
			c.Abort()
			return
		}

		token, err := stripPrefix(raw, tokenPrefix)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		var access *domain.AccessClaims
		if value, exists := c.Get(ContextAccessClaims); exists {
			access = value.(*domain.AccessClaims)
		}

		claims, err := authService.AuthenticateRefresh(c.Request.Context(), token, access)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextRefreshClaims, claims)

		c.Next()
	}
}

func stripPrefix(raw, tokenPrefix string) (string, error) {
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 || parts[0] != tokenPrefix {
		return "", apperr.BadRequest("invalid token")
	}
	return parts[1], nil
}

// mustAccount returns the account a guard attached to the context.
func mustAccount(c *gin.Context) *domain.Account {
	return c.MustGet(ContextAccount).(*domain.Account)
}

func mustAccessClaims(c *gin.Context) *domain.AccessClaims {
	return c.MustGet(ContextAccessClaims).(*domain.AccessClaims)
}

func mustRefreshClaims(c *gin.Context) *domain.RefreshClaims {
	return c.MustGet(ContextRefreshClaims).(*domain.RefreshClaims)
}
