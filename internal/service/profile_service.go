package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sociograph/auth-service/internal/apperr"
	"github.com/sociograph/auth-service/internal/domain"
	"github.com/sociograph/auth-service/internal/dto"
	"github.com/sociograph/auth-service/internal/repository"
	"github.com/sociograph/auth-service/internal/utils"
)

// profileService implements the account-lifecycle operations that touch
// the token and OTP machinery. It shares the authService's collaborators.
type profileService struct {
	accounts   repository.AccountRepository
	otps       repository.OTPRepository
	revoked    repository.RevokedTokenRepository
	notifier   Notifier
	bcryptCost int
	otpExpiry  time.Duration
}

// NewProfileService creates a new profile service
func NewProfileService(
	repos *repository.Repositories,
	notifier Notifier,
	bcryptCost int,
	otpExpiry time.Duration,
) ProfileService {
	return &profileService{
		accounts:   repos.Account,
		otps:       repos.OTP,
		revoked:    repos.RevokedToken,
		notifier:   notifier,
		bcryptCost: bcryptCost,
		otpExpiry:  otpExpiry,
	}
}

// Deactivate parks the account and revokes the presented token pair.
// The next successful login reactivates it.
func (s *profileService) Deactivate(ctx context.Context, account *domain.Account, access *domain.AccessClaims, refresh *domain.RefreshClaims) error {
	account.Status = domain.StatusDeactivated
	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	if err := s.revoked.Revoke(ctx, access.ID, refresh.ID, access.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token pair: %w", err)
	}

	return nil
}

// ChangeEmail starts an email change by mailing a confirmation code to
// the new address.
func (s *profileService) ChangeEmail(ctx context.Context, account *domain.Account, newEmail string) error {
	newEmail = utils.SanitizeEmail(newEmail)

	if account.Email == newEmail {
		return apperr.BadRequest("this is your current email")
	}

	taken, err := s.accounts.EmailTakenByOther(ctx, account.ID.Hex(), newEmail)
	if err != nil {
		return fmt.Errorf("failed to check email availability: %w", err)
	}
	if taken {
		return apperr.Conflict("this email already exists")
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	codeHash, err := utils.HashSecret(code, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash otp: %w", err)
	}

	expiration := time.Now().Add(s.otpExpiry)
	if err := s.otps.Upsert(ctx, account.ID.Hex(), domain.OTPSlotConfirm, codeHash, expiration); err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	s.notifier.EmailChangeVerification(newEmail, code)
	return nil
}

// ConfirmEmailChange validates the code sent to the new address, swaps
// the email, and revokes the presented token pair so the old session
// cannot keep acting under the old identity.
func (s *profileService) ConfirmEmailChange(ctx context.Context, account *domain.Account, access *domain.AccessClaims, refresh *domain.RefreshClaims, req *dto.ConfirmEmailChangeRequest) error {
	newEmail := utils.SanitizeEmail(req.NewEmail)

	record, err := s.otps.GetByAccountID(ctx, account.ID.Hex())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.BadRequest("otp expired, request a new one")
		}
		return fmt.Errorf("failed to get otp record: %w", err)
	}

	hash := record.Hash(domain.OTPSlotConfirm)
	if hash == "" || record.Expired(time.Now()) {
		return apperr.BadRequest("otp expired, request a new one")
	}
	if !utils.CheckSecretHash(req.OTP, hash) {
		return apperr.BadRequest("wrong OTP")
	}

	if err := s.otps.DeleteByAccountID(ctx, account.ID.Hex()); err != nil {
		return fmt.Errorf("failed to delete otp record: %w", err)
	}

	oldUsername := account.Username
	account.Email = newEmail
	if err := s.accounts.Update(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return apperr.Conflict("this email already exists")
		}
		return fmt.Errorf("failed to update email: %w", err)
	}

	if err := s.revoked.Revoke(ctx, access.ID, refresh.ID, access.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token pair: %w", err)
	}

	s.notifier.EmailUpdated(newEmail, oldUsername)
	return nil
}

// UpdatePassword changes the password of a logged-in account and
// revokes the presented token pair.
func (s *profileService) UpdatePassword(ctx context.Context, account *domain.Account, access *domain.AccessClaims, refresh *domain.RefreshClaims, req *dto.UpdatePasswordRequest) error {
	if !utils.CheckSecretHash(req.OldPassword, account.PasswordHash) {
		return apperr.Unauthorized("wrong password")
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

	if err := s.revoked.Revoke(ctx, access.ID, refresh.ID, access.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token pair: %w", err)
	}

	s.notifier.PasswordChanged(account.Email)
	return nil
}
