package service

import (
	"context"

	"github.com/sociograph/auth-service/internal/domain"
	"github.com/sociograph/auth-service/internal/dto"
)

// SignUpResult reports what signup did: created a fresh pending account,
// or attached the local provider to an existing OAuth-only account.
type SignUpResult struct {
	Account         *dto.AccountInfo
	MergedIntoOAuth bool
}

// LoginResult is either a full token pair or, when the account has 2FA
// enabled, a limited token that only authorizes the confirmation step.
type LoginResult struct {
	Account           *dto.AccountInfo
	Pair              *domain.TokenPair
	TwoFactorRequired bool
	TwoFactorToken    string
}

// AuthService defines the authentication and session-lifecycle operations
type AuthService interface {
	SignUp(ctx context.Context, req *dto.SignUpRequest) (*SignUpResult, error)
	ConfirmEmail(ctx context.Context, email, otp string) error
	GoogleAuth(ctx context.Context, idToken string) (*domain.TokenPair, *dto.AccountInfo, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ConfirmTwoFactorLogin(ctx context.Context, account *domain.Account, otp string) (*domain.TokenPair, error)
	Logout(ctx context.Context, access *domain.AccessClaims, refresh *domain.RefreshClaims) error
	Refresh(ctx context.Context, refresh *domain.RefreshClaims) (string, error)
	ForgetPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, account *domain.Account, claims *domain.AccessClaims, req *dto.ResetPasswordRequest) error
	EnableTwoFactor(ctx context.Context, account *domain.Account) error
	ConfirmTwoFactor(ctx context.Context, account *domain.Account, otp string) error
	DisableTwoFactor(ctx context.Context, account *domain.Account) error

	// Authenticate backs the request guard: it verifies an access-family
	// token of one of the given kinds, checks revocation, and loads the
	// account.
	Authenticate(ctx context.Context, token string, kinds ...domain.TokenKind) (*domain.Account, *domain.AccessClaims, error)

	// AuthenticateRefresh verifies a refresh token, checks revocation,
	// and when access claims are present cross-checks the jti binding.
	AuthenticateRefresh(ctx context.Context, token string, access *domain.AccessClaims) (*domain.RefreshClaims, error)
}

// ProfileService covers the account-lifecycle operations that interact
// with the token and OTP machinery.
type ProfileService interface {
	Deactivate(ctx context.Context, account *domain.Account, access *domain.AccessClaims, refresh *domain.RefreshClaims) error
	ChangeEmail(ctx context.Context, account *domain.Account, newEmail string) error
	ConfirmEmailChange(ctx context.Context, account *domain.Account, access *domain.AccessClaims, refresh *domain.RefreshClaims, req *dto.ConfirmEmailChangeRequest) error
	UpdatePassword(ctx context.Context, account *domain.Account, access *domain.AccessClaims, refresh *domain.RefreshClaims, req *dto.UpdatePasswordRequest) error
}

// Notifier dispatches transactional email. Implementations are
// fire-and-forget: a failed send is logged, never surfaced.
type Notifier interface {
	VerificationEmail(to, otp string)
	WelcomeEmail(to, username string)
	TwoFactorCode(to, otp string)
	TwoFactorEnabled(to string)
	PasswordResetRequest(to, otp string)
	PasswordChanged(to string)
	EmailChangeVerification(to, otp string)
	EmailUpdated(to, username string)
}

// GoogleTokenPayload is the subset of a verified Google ID token the
// service cares about.
type GoogleTokenPayload struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
}

// GoogleVerifier validates a Google ID token against the configured
// web client id.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleTokenPayload, error)
}
