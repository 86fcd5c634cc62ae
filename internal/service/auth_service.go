package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sociograph/auth-service/internal/apperr"
	"github.com/sociograph/auth-service/internal/domain"
	"github.com/sociograph/auth-service/internal/dto"
	"github.com/sociograph/auth-service/internal/repository"
	"github.com/sociograph/auth-service/internal/utils"
)

// authService implements AuthService
type authService struct {
	accounts   repository.AccountRepository
	otps       repository.OTPRepository
	revoked    repository.RevokedTokenRepository
	issuer     *utils.TokenIssuer
	notifier   Notifier
	google     GoogleVerifier
	phone      *utils.PhoneCipher
	bcryptCost int
	otpExpiry  time.Duration
	logger     *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	repos *repository.Repositories,
	issuer *utils.TokenIssuer,
	notifier Notifier,
	google GoogleVerifier,
	phone *utils.PhoneCipher,
	bcryptCost int,
	otpExpiry time.Duration,
	logger *zap.Logger,
) AuthService {
	return &authService{
		accounts:   repos.Account,
		otps:       repos.OTP,
		revoked:    repos.RevokedToken,
		issuer:     issuer,
		notifier:   notifier,
		google:     google,
		phone:      phone,
		bcryptCost: bcryptCost,
		otpExpiry:  otpExpiry,
		logger:     logger,
	}
}

// SignUp registers a new account, or attaches the local provider to an
// existing OAuth-only account with the same email.
func (s *authService) SignUp(ctx context.Context, req *dto.SignUpRequest) (*SignUpResult, error) {
	if req.Password != req.ConfirmPassword {
		return nil, apperr.BadRequest("passwords do not match")
	}
	if !utils.ValidatePassword(req.Password) {
		return nil, apperr.BadRequest("password must be at least 8 characters long and contain uppercase, lowercase, and number")
	}

	email := utils.SanitizeEmail(req.Email)

	passwordHash, err := utils.HashSecret(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var encryptedPhone string
	if req.PhoneNumber != "" {
		encryptedPhone, err = s.phone.Encrypt(req.PhoneNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt phone number: %w", err)
		}
	}

	existing, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.HasProvider(domain.ProviderLocal) {
			return nil, apperr.Conflict("account already exists").WithDetails(map[string]string{"email": email})
		}
		// OAuth-only account: attach the local provider in place. The
		// Google login already proved inbox ownership, so no OTP round.
		existing.PasswordHash = passwordHash
		existing.Providers = append(existing.Providers, domain.ProviderLocal)
		existing.Gender = req.Gender
		existing.DateOfBirth = req.DateOfBirth
		existing.EncryptedPhoneNumber = encryptedPhone
		existing.NeedsProfileCompletion = false
		if err := s.accounts.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to attach local provider: %w", err)
		}
		return &SignUpResult{Account: accountInfo(existing), MergedIntoOAuth: true}, nil

	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to check account existence: %w", err)
	}

	account := &domain.Account{
		Username:             req.Username,
		Email:                email,
		PasswordHash:         passwordHash,
		Providers:            []domain.Provider{domain.ProviderLocal},
		Status:               domain.StatusPending,
		Gender:               req.Gender,
		DateOfBirth:          req.DateOfBirth,
		EncryptedPhoneNumber: encryptedPhone,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperr.Conflict("account already exists").WithDetails(map[string]string{"email": email})
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if err := s.issueOTP(ctx, account.ID.Hex(), domain.OTPSlotConfirm, func(code string) {
		s.notifier.VerificationEmail(email, code)
	}); err != nil {
		return nil, err
	}

	s.logger.Info("account registered", zap.String("account_id", account.ID.Hex()))
	return &SignUpResult{Account: accountInfo(account)}, nil
}

// ConfirmEmail verifies the signup OTP and activates the account.
func (s *authService) ConfirmEmail(ctx context.Context, email, otp string) error {
	account, err := s.accounts.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("no account found with this email")
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	if err := s.verifyOTP(ctx, account.ID.Hex(), domain.OTPSlotConfirm, otp); err != nil {
		return err
	}

	account.Status = domain.StatusActive
	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to activate account: %w", err)
	}

	if err := s.otps.DeleteByAccountID(ctx, account.ID.Hex()); err != nil {
		return fmt.Errorf("failed to delete otp record: %w", err)
	}

	s.notifier.WelcomeEmail(account.Email, account.Username)
	return nil
}

// GoogleAuth logs in or signs up via a Google ID token.
func (s *authService) GoogleAuth(ctx context.Context, idToken string) (*domain.TokenPair, *dto.AccountInfo, error) {
	payload, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, nil, apperr.Unauthorized("invalid google token")
	}
	if !payload.EmailVerified {
		return nil, nil, apperr.Unauthorized("this email is not verified")
	}

	account, err := s.accounts.GetByGoogleID(ctx, payload.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		account, err = s.linkOrCreateGoogleAccount(ctx, payload)
	}
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.issuer.IssuePair(account.ID.Hex(), account.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue token pair: %w", err)
	}

	return pair, accountInfo(account), nil
}

func (s *authService) linkOrCreateGoogleAccount(ctx context.Context, payload *GoogleTokenPayload) (*domain.Account, error) {
	email := utils.SanitizeEmail(payload.Email)

	account, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		// Local account with the same email: attach the Google provider.
		account.Providers = append(account.Providers, domain.ProviderGoogle)
		account.GoogleID = payload.Subject
		if account.Status == domain.StatusPending {
			account.Status = domain.StatusActive
		}
		if err := s.accounts.Update(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to attach google provider: %w", err)
		}
		// A pending signup OTP is now moot.
		if err := s.otps.DeleteByAccountID(ctx, account.ID.Hex()); err != nil {
			return nil, fmt.Errorf("failed to delete otp record: %w", err)
		}
		return account, nil

	case errors.Is(err, repository.ErrNotFound):
		account = &domain.Account{
			Username:               payload.Name,
			Email:                  email,
			Providers:              []domain.Provider{domain.ProviderGoogle},
			GoogleID:               payload.Subject,
			Status:                 domain.StatusActive,
			NeedsProfileCompletion: true,
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
		s.logger.Info("account created from google login", zap.String("account_id", account.ID.Hex()))
		return account, nil

	default:
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
}

// Login authenticates email/password. Missing account, pending account
// and wrong password all fail with the same message so nothing leaks.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.accounts.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Unauthorized("invalid email/password")
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !account.CanLogin() || !utils.CheckSecretHash(password, account.PasswordHash) {
		return nil, apperr.Unauthorized("invalid email/password")
	}

	if account.TwoFactorEnabled {
		// No full session yet: store a fresh code and hand back a
		// limited token that only the 2FA confirmation step accepts.
		if err := s.issueOTP(ctx, account.ID.Hex(), domain.OTPSlotConfirm, func(code string) {
			s.notifier.TwoFactorCode(account.Email, code)
		}); err != nil {
			return nil, err
		}

		limited, err := s.issuer.IssueLimitedToken(domain.TokenKindTwoFactor, account.ID.Hex(), account.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to issue two-factor token: %w", err)
		}

		return &LoginResult{
			Account:           accountInfo(account),
			TwoFactorRequired: true,
			TwoFactorToken:    limited,
		}, nil
	}

	if err := s.reactivate(ctx, account); err != nil {
		return nil, err
	}

	pair, err := s.issuer.IssuePair(account.ID.Hex(), account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token pair: %w", err)
	}

	return &LoginResult{Account: accountInfo(account), Pair: pair}, nil
}

// ConfirmTwoFactorLogin completes a login that was parked behind a 2FA
// challenge.
func (s *authService) ConfirmTwoFactorLogin(ctx context.Context, account *domain.Account, otp string) (*domain.TokenPair, error) {
	if err := s.verifyOTP(ctx, account.ID.Hex(), domain.OTPSlotConfirm, otp); err != nil {
		return nil, err
	}

	if err := s.reactivate(ctx, account); err != nil {
		return nil, err
	}

	if err := s.otps.DeleteByAccountID(ctx, account.ID.Hex()); err != nil {
		return nil, fmt.Errorf("failed to delete otp record: %w", err)
	}

	pair, err := s.issuer.IssuePair(account.ID.Hex(), account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token pair: %w", err)
	}

	return pair, nil
}

// Logout revokes the presented access/refresh pair. The revocation
// record inherits the access token's own expiry.
func (s *authService) Logout(ctx context.Context, access *domain.AccessClaims, refresh *domain.RefreshClaims) error {
	if err := s.revoked.Revoke(ctx, access.ID, refresh.ID, access.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token pair: %w", err)
	}
	return nil
}

// Refresh mints a new access token bound to the same refresh token.
// Refresh tokens are not rotated.
func (s *authService) Refresh(ctx context.Context, refresh *domain.RefreshClaims) (string, error) {
	accessToken, err := s.issuer.IssueAccessToken(refresh.AccountID, refresh.Email, refresh.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}
	return accessToken, nil
}

// ForgetPassword stores a recovery code and returns the recovery token
// that gates the reset step.
func (s *authService) ForgetPassword(ctx context.Context, email string) (string, error) {
	account, err := s.accounts.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperr.NotFound("no account with this email")
		}
		return "", fmt.Errorf("failed to get account: %w", err)
	}

	recoveryToken, err := s.issuer.IssueLimitedToken(domain.TokenKindRecovery, account.ID.Hex(), account.Email)
	if err != nil {
		return "", fmt.Errorf("failed to issue recovery token: %w", err)
	}

	// The recovery slot is separate from confirm, so a concurrent email
	// confirmation code survives this upsert.
	if err := s.issueOTP(ctx, account.ID.Hex(), domain.OTPSlotRecovery, func(code string) {
		s.notifier.PasswordResetRequest(account.Email, code)
	}); err != nil {
		return "", err
	}

	return recoveryToken, nil
}

// ResetPassword validates the recovery code and stores the new password.
// The presented recovery token is revoked so it cannot gate a second reset.
func (s *authService) ResetPassword(ctx context.Context, account *domain.Account, claims *domain.AccessClaims, req *dto.ResetPasswordRequest) error {
	if err := s.verifyOTP(ctx, account.ID.Hex(), domain.OTPSlotRecovery, req.OTP); err != nil {
		return err
	}

	if req.NewPassword != req.ConfirmNewPassword {
		return apperr.BadRequest("passwords do not match")
	}
	if !utils.ValidatePassword(req.NewPassword) {
		return apperr.BadRequest("password must be at least 8 characters long and contain uppercase, lowercase, and number")
	}

	passwordHash, err := utils.HashSecret(req.NewPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	account.PasswordHash = passwordHash
	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.otps.DeleteByAccountID(ctx, account.ID.Hex()); err != nil {
		return fmt.Errorf("failed to delete otp record: %w", err)
	}

	if err := s.revoked.Revoke(ctx, claims.ID, "", claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke recovery token: %w", err)
	}

	s.notifier.PasswordChanged(account.Email)
	return nil
}

// EnableTwoFactor stores a confirmation code; 2FA flips on only after
// ConfirmTwoFactor validates it.
func (s *authService) EnableTwoFactor(ctx context.Context, account *domain.Account) error {
	if account.TwoFactorEnabled {
		return apperr.BadRequest("two-step verification is already enabled")
	}

	return s.issueOTP(ctx, account.ID.Hex(), domain.OTPSlotConfirm, func(code string) {
		s.notifier.TwoFactorCode(account.Email, code)
	})
}

// ConfirmTwoFactor validates the enable code and flips 2FA on.
func (s *authService) ConfirmTwoFactor(ctx context.Context, account *domain.Account, otp string) error {
	if account.TwoFactorEnabled {
		return apperr.BadRequest("two-step verification is already enabled")
	}

	if err := s.verifyOTP(ctx, account.ID.Hex(), domain.OTPSlotConfirm, otp); err != nil {
		return err
	}

	account.TwoFactorEnabled = true
	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to enable two-step verification: %w", err)
	}

	if err := s.otps.DeleteByAccountID(ctx, account.ID.Hex()); err != nil {
		return fmt.Errorf("failed to delete otp record: %w", err)
	}

	s.notifier.TwoFactorEnabled(account.Email)
	return nil
}

// DisableTwoFactor flips 2FA off; disabling when not enabled is an error
// and changes nothing.
func (s *authService) DisableTwoFactor(ctx context.Context, account *domain.Account) error {
	if !account.TwoFactorEnabled {
		return apperr.BadRequest("two-step verification is not enabled")
	}

	account.TwoFactorEnabled = false
	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to disable two-step verification: %w", err)
	}

	return nil
}

// Authenticate backs the access-token guard.
func (s *authService) Authenticate(ctx context.Context, token string, kinds ...domain.TokenKind) (*domain.Account, *domain.AccessClaims, error) {
	claims, err := s.issuer.VerifyAccessToken(token, kinds...)
	if err != nil {
		return nil, nil, apperr.BadRequest("invalid token")
	}

	isRevoked, err := s.revoked.IsAccessRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if isRevoked {
		return nil, nil, apperr.Conflict("this token is revoked")
	}

	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperr.Unauthorized("register first")
		}
		return nil, nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, claims, nil
}

// AuthenticateRefresh backs the refresh-token guard. When access claims
// are present the refresh jti must equal the access token's refresh_jti,
// which catches mixed-and-matched pairs.
func (s *authService) AuthenticateRefresh(ctx context.Context, token string, access *domain.AccessClaims) (*domain.RefreshClaims, error) {
	claims, err := s.issuer.VerifyRefreshToken(token)
	if err != nil {
		return nil, apperr.BadRequest("invalid refresh token")
	}

	isRevoked, err := s.revoked.IsRefreshRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if isRevoked {
		return nil, apperr.Conflict("this token is revoked")
	}

	if access != nil && access.RefreshTokenID != claims.ID {
		return nil, apperr.Conflict("access and refresh tokens do not match")
	}

	return claims, nil
}

// issueOTP generates a fresh code, dispatches it through send, hashes it
// and upserts it into the given slot. The last writer wins when two
// requests for the same account race; both emailed codes are honest
// about it since only the stored hash counts.
func (s *authService) issueOTP(ctx context.Context, accountID string, slot domain.OTPSlot, send func(code string)) error {
	code, err := utils.GenerateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	codeHash, err := utils.HashSecret(code, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash otp: %w", err)
	}

	expiration := time.Now().Add(s.otpExpiry)
	if err := s.otps.Upsert(ctx, accountID, slot, codeHash, expiration); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	send(code)
	return nil
}

// verifyOTP checks the submitted code against the stored slot hash. A
// wrong code leaves the record in place and usable until expiry.
func (s *authService) verifyOTP(ctx context.Context, accountID string, slot domain.OTPSlot, code string) error {
	record, err := s.otps.GetByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.BadRequest("otp expired, request a new one")
		}
		return fmt.Errorf("failed to get otp record: %w", err)
	}

	hash := record.Hash(slot)
	if hash == "" || record.Expired(time.Now()) {
		return apperr.BadRequest("otp expired, request a new one")
	}

	if !utils.CheckSecretHash(code, hash) {
		return apperr.BadRequest("wrong OTP")
	}

	return nil
}

// reactivate flips a deactivated account back to active as a side
// effect of a successful login.
func (s *authService) reactivate(ctx context.Context, account *domain.Account) error {
	if account.Status != domain.StatusDeactivated {
		return nil
	}

	account.Status = domain.StatusActive
	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to reactivate account: %w", err)
	}

	return nil
}

func accountInfo(account *domain.Account) *dto.AccountInfo {
	return &dto.AccountInfo{
		ID:                     account.ID.Hex(),
		Username:               account.Username,
		Email:                  account.Email,
		Status:                 string(account.Status),
		TwoFactorEnabled:       account.TwoFactorEnabled,
		NeedsProfileCompletion: account.NeedsProfileCompletion,
	}
}
