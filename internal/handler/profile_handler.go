package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sociograph/auth-service/internal/dto"
	"github.com/sociograph/auth-service/internal/service"
)

// ProfileHandler handles account lifecycle requests for a logged-in user
type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// Deactivate soft-deactivates the account and revokes the presented session
func (h *ProfileHandler) Deactivate(c *gin.Context) {
	err := h.profileService.Deactivate(c.Request.Context(), mustAccount(c), mustAccessClaims(c), mustRefreshClaims(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "account has been deactivated, login again to reactivate it", nil)
}

// ChangeEmail starts an email change by sending an OTP to the new address
func (h *ProfileHandler) ChangeEmail(c *gin.Context) {
	var req dto.ChangeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	err := h.profileService.ChangeEmail(c.Request.Context(), mustAccount(c), req.NewEmail)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "please check your new email for the verification code", nil)
}

// ConfirmEmailChange completes an email change and revokes the presented session
func (h *ProfileHandler) ConfirmEmailChange(c *gin.Context) {
	var req dto.ConfirmEmailChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	err := h.profileService.ConfirmEmailChange(c.Request.Context(), mustAccount(c), mustAccessClaims(c), mustRefreshClaims(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "email has been updated, now try to login", nil)
}

// UpdatePassword changes the password and revokes the presented session
func (h *ProfileHandler) UpdatePassword(c *gin.Context) {
	var req dto.UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	err := h.profileService.UpdatePassword(c.Request.Context(), mustAccount(c), mustAccessClaims(c), mustRefreshClaims(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "password has been changed, now try to login", nil)
}
