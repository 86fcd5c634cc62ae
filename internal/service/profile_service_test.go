package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sociograph/auth-service/internal/domain"
	"github.com/sociograph/auth-service/internal/dto"
	"github.com/sociograph/auth-service/internal/repository"
)

type profileFixture struct {
	*authFixture
	profile ProfileService
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()

	auth := newAuthFixture(t)
	profile := NewProfileService(
		&repository.Repositories{
			Account:      auth.accounts,
			OTP:          auth.otps,
			RevokedToken: auth.revoked,
		},
		auth.notifier,
		bcrypt.MinCost,
		15*time.Minute,
	)

	return &profileFixture{authFixture: auth, profile: profile}
}

// session logs the account in and returns everything a guarded request
// would carry.
func (f *profileFixture) session(t *testing.T, email, password string) (*domain.Account, *domain.AccessClaims, *domain.RefreshClaims) {
	t.Helper()
	ctx := context.Background()

	result, err := f.svc.Login(ctx, email, password)
	require.NoError(t, err)

	account, access, err := f.svc.Authenticate(ctx, result.Pair.AccessToken, domain.TokenKindAccess)
	require.NoError(t, err)
	refresh, err := f.svc.AuthenticateRefresh(ctx, result.Pair.RefreshToken, access)
	require.NoError(t, err)

	return account, access, refresh
}

func TestDeactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("parks the account and revokes the session", func(t *testing.T) {
		f := newProfileFixture(t)
		f.signUpAndConfirm(t, "alice@example.com")
		account, access, refresh := f.session(t, "alice@example.com", "Password1")

		require.NoError(t, f.profile.Deactivate(ctx, account, access, refresh))

		stored, err := f.accounts.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDeactivated, stored.Status)

		revoked, err := f.revoked.IsAccessRevoked(ctx, access.ID)
		require.NoError(t, err)
		assert.True(t, revoked)

		// The next login brings the account back.
		result, err := f.svc.Login(ctx, "alice@example.com", "Password1")
		require.NoError(t, err)
		require.NotNil(t, result.Pair)

		stored, err = f.accounts.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, stored.Status)
	})
}

func TestChangeEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("full change round trip revokes the session", func(t *testing.T) {
		f := newProfileFixture(t)
		f.signUpAndConfirm(t, "alice@example.com")
		account, access, refresh := f.session(t, "alice@example.com", "Password1")

		require.NoError(t, f.profile.ChangeEmail(ctx, account, "new@example.com"))

		// The code goes to the new address.
		code := f.notifier.codeFor("new@example.com")
		require.NotEmpty(t, code)

		err := f.profile.ConfirmEmailChange(ctx, account, access, refresh, &dto.ConfirmEmailChangeRequest{
			NewEmail: "new@example.com",
			OTP:      code,
		})
		require.NoError(t, err)

		_, err = f.accounts.GetByEmail(ctx, "alice@example.com")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		stored, err := f.accounts.GetByEmail(ctx, "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, stored.Status)

		revoked, err := f.revoked.IsAccessRevoked(ctx, access.ID)
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("same email is rejected", func(t *testing.T) {
		f := newProfileFixture(t)
		f.signUpAndConfirm(t, "alice@example.com")
		account, _, _ := f.session(t, "alice@example.com", "Password1")

		err := f.profile.ChangeEmail(ctx, account, "Alice@Example.com")
		requireAppErr(t, err, http.StatusBadRequest, "this is your current email")
	})

	t.Run("email owned by another account conflicts", func(t *testing.T) {
		f := newProfileFixture(t)
		f.signUpAndConfirm(t, "alice@example.com")
		f.signUpAndConfirm(t, "bob@example.com")
		account, _, _ := f.session(t, "alice@example.com", "Password1")

		err := f.profile.ChangeEmail(ctx, account, "bob@example.com")
		requireAppErr(t, err, http.StatusConflict, "this email already exists")
	})

	t.Run("wrong code does not change the email", func(t *testing.T) {
		f := newProfileFixture(t)
		f.signUpAndConfirm(t, "alice@example.com")
		account, access, refresh := f.session(t, "alice@example.com", "Password1")

		require.NoError(t, f.profile.ChangeEmail(ctx, account, "new@example.com"))
		code := f.notifier.codeFor("new@example.com")

		wrong := "000000"
		if wrong == code {
			wrong = "111111"
		}
		err := f.profile.ConfirmEmailChange(ctx, account, access, refresh, &dto.ConfirmEmailChangeRequest{
			NewEmail: "new@example.com",
			OTP:      wrong,
		})
		requireAppErr(t, err, http.StatusBadRequest, "wrong OTP")

		_, err = f.accounts.GetByEmail(ctx, "alice@example.com")
		assert.NoError(t, err)
	})
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("changes the password and revokes the session", func(t *testing.T) {
		f := newProfileFixture(t)
		f.signUpAndConfirm(t, "alice@example.com")
		account, access, refresh := f.session(t, "alice@example.com", "Password1")

		err := f.profile.UpdatePassword(ctx, account, access, refresh, &dto.UpdatePasswordRequest{
			OldPassword:        "Password1",
			NewPassword:        "NewPassword1",
			ConfirmNewPassword: "NewPassword1",
		})
		require.NoError(t, err)

		_, err = f.svc.Login(ctx, "alice@example.com", "Password1")
		requireAppErr(t, err, http.StatusUnauthorized, "invalid email/password")
		_, err = f.svc.Login(ctx, "alice@example.com", "NewPassword1")
		assert.NoError(t, err)

		revoked, err := f.revoked.IsRefreshRevoked(ctx, refresh.ID)
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("wrong old password is unauthorized", func(t *testing.T) {
		f := newProfileFixture(t)
		f.signUpAndConfirm(t, "alice@example.com")
		account, access, refresh := f.session(t, "alice@example.com", "Password1")

		err := f.profile.UpdatePassword(ctx, account, access, refresh, &dto.UpdatePasswordRequest{
			OldPassword:        "WrongPass1",
			NewPassword:        "NewPassword1",
			ConfirmNewPassword: "NewPassword1",
		})
		requireAppErr(t, err, http.StatusUnauthorized, "wrong password")
	})

	t.Run("mismatched new passwords are rejected", func(t *testing.T) {
		f := newProfileFixture(t)
		f.signUpAndConfirm(t, "alice@example.com")
		account, access, refresh := f.session(t, "alice@example.com", "Password1")

		err := f.profile.UpdatePassword(ctx, account, access, refresh, &dto.UpdatePasswordRequest{
			OldPassword:        "Password1",
			NewPassword:        "NewPassword1",
			ConfirmNewPassword: "Different1",
		})
		requireAppErr(t, err, http.StatusBadRequest, "passwords do not match")

		// The old password still works.
		_, err = f.svc.Login(ctx, "alice@example.com", "Password1")
		assert.NoError(t, err)
	})
}
