package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sociograph/auth-service/internal/dto"
	"github.com/sociograph/auth-service/internal/service"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// SignUp handles account registration
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	result, err := h.authService.SignUp(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "registered successfully, now please confirm your email"
	if result.MergedIntoOAuth {
		message = "registered successfully, now you can login with email/password or google"
	}

	respondSuccess(c, http.StatusCreated, message, gin.H{"userData": result.Account})
}

// ConfirmEmail handles email confirmation with an OTP
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	var req dto.ConfirmEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.authService.ConfirmEmail(c.Request.Context(), req.Email, req.OTP); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "email has been confirmed, now you can login", nil)
}

// GoogleAuth handles login/signup with a Google ID token
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	var req dto.GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	pair, account, err := h.authService.GoogleAuth(c.Request.Context(), req.IDToken)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "logged in successfully", gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
		"userData":     account,
	})
}

// Login handles email/password login, branching into the 2FA challenge
// when the account has two-step verification enabled.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.TwoFactorRequired {
		respondSuccess(c, http.StatusOK, "please check your email for the login code", gin.H{
			"twoFactorToken": result.TwoFactorToken,
		})
		return
	}

	respondSuccess(c, http.StatusOK, "logged in successfully", gin.H{
		"accessToken":  result.Pair.AccessToken,
		"refreshToken": result.Pair.RefreshToken,
	})
}

// TwoFactorLogin completes a 2FA-gated login. The route is guarded by
// the limited two-factor token from the login step.
func (h *AuthHandler) TwoFactorLogin(c *gin.Context) {
	var req dto.TwoFactorLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	pair, err := h.authService.ConfirmTwoFactorLogin(c.Request.Context(), mustAccount(c), req.OTP)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "logged in successfully", gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Logout revokes the presented access/refresh pair. Both guards have
// already validated and cross-checked the tokens.
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.authService.Logout(c.Request.Context(), mustAccessClaims(c), mustRefreshClaims(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "logged out successfully", nil)
}

// Refresh mints a new access token against a valid refresh token
func (h *AuthHandler) Refresh(c *gin.Context) {
	accessToken, err := h.authService.Refresh(c.Request.Context(), mustRefreshClaims(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "token has been refreshed", gin.H{"accessToken": accessToken})
}

// ForgetPassword starts password recovery
func (h *AuthHandler) ForgetPassword(c *gin.Context) {
	var req dto.ForgetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	recoveryToken, err := h.authService.ForgetPassword(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "please check your email", gin.H{"recoveryToken": recoveryToken})
}

// ResetPassword completes password recovery. The route is guarded by
// the recovery token from the forget-password step.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	err := h.authService.ResetPassword(c.Request.Context(), mustAccount(c), mustAccessClaims(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "password has been changed, now try to login", nil)
}

// EnableTwoFactor starts enabling two-step verification
func (h *AuthHandler) EnableTwoFactor(c *gin.Context) {
	if err := h.authService.EnableTwoFactor(c.Request.Context(), mustAccount(c)); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "please check your email for the verification code", nil)
}

// ConfirmTwoFactor completes enabling two-step verification
func (h *AuthHandler) ConfirmTwoFactor(c *gin.Context) {
	var req dto.TwoFactorLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.authService.ConfirmTwoFactor(c.Request.Context(), mustAccount(c), req.OTP); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "two-step verification is now enabled", nil)
}

// DisableTwoFactor turns two-step verification off
func (h *AuthHandler) DisableTwoFactor(c *gin.Context) {
	if err := h.authService.DisableTwoFactor(c.Request.Context(), mustAccount(c)); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "two-step verification is now disabled", nil)
}
