package dto

// SignUpRequest represents a signup request
type SignUpRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	Gender          string `json:"gender" binding:"omitempty,oneof=male female"`
	DateOfBirth     string `json:"DOB" binding:"omitempty"`
	PhoneNumber     string `json:"phoneNumber" binding:"omitempty"`
}

// ConfirmEmailRequest represents an email confirmation request
type ConfirmEmailRequest struct {
	OTP   string `json:"OTP" binding:"required,len=6,numeric"`
	Email string `json:"email" binding:"required,email"`
}

// GoogleAuthRequest represents a Google OAuth login/signup request
type GoogleAuthRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TwoFactorLoginRequest carries the OTP for the 2FA confirmation step
type TwoFactorLoginRequest struct {
	OTP string `json:"OTP" binding:"required,len=6,numeric"`
}

// ForgetPasswordRequest represents a password recovery request
type ForgetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest represents a password reset request
type ResetPasswordRequest struct {
	OTP                string `json:"otp" binding:"required,len=6,numeric"`
	NewPassword        string `json:"newPassword" binding:"required,min=8"`
	ConfirmNewPassword string `json:"confirmNewPassword" binding:"required"`
}

// ChangeEmailRequest initiates an email change
type ChangeEmailRequest struct {
	NewEmail string `json:"newEmail" binding:"required,email"`
}

// ConfirmEmailChangeRequest completes an email change
type ConfirmEmailChangeRequest struct {
	NewEmail string `json:"newEmail" binding:"required,email"`
	OTP      string `json:"OTP" binding:"required,len=6,numeric"`
}

// UpdatePasswordRequest changes the password of a logged-in account
type UpdatePasswordRequest struct {
	OldPassword        string `json:"oldPassword" binding:"required"`
	NewPassword        string `json:"newPassword" binding:"required,min=8"`
	ConfirmNewPassword string `json:"confirmNewPassword" binding:"required"`
}
