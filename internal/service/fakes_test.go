package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/sociograph/auth-service/internal/domain"
	"github.com/sociograph/auth-service/internal/repository"
)

// fakeAccountRepo is an in-memory AccountRepository with the same
// uniqueness semantics as the Mongo implementation.
type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return repository.ErrDuplicateEmail
		}
	}

	account.ID = bson.NewObjectID()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	copied := *account
	r.accounts[account.ID.Hex()] = &copied
	return nil
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, account := range r.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) GetByGoogleID(_ context.Context, googleID string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, account := range r.accounts {
		if account.GoogleID != "" && account.GoogleID == googleID {
			copied := *account
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAccountRepo) Update(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.ID.Hex()]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.accounts {
		if id != account.ID.Hex() && existing.Email == account.Email {
			return repository.ErrDuplicateEmail
		}
	}

	account.UpdatedAt = time.Now()
	copied := *account
	r.accounts[account.ID.Hex()] = &copied
	return nil
}

func (r *fakeAccountRepo) EmailTakenByOther(_ context.Context, accountID, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, account := range r.accounts {
		if id != accountID && account.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// fakeOTPRepo keeps one record per account, like the unique index does.
type fakeOTPRepo struct {
	mu      sync.Mutex
	records map[string]*domain.OTPRecord
}

func newFakeOTPRepo() *fakeOTPRepo {
	return &fakeOTPRepo{records: make(map[string]*domain.OTPRecord)}
}

func (r *fakeOTPRepo) Upsert(_ context.Context, accountID string, slot domain.OTPSlot, codeHash string, expiration time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[accountID]
	if !ok {
		objectID, err := bson.ObjectIDFromHex(accountID)
		if err != nil {
			return fmt.Errorf("invalid account id %q: %w", accountID, repository.ErrNotFound)
		}
		record = &domain.OTPRecord{ID: bson.NewObjectID(), AccountID: objectID}
		r.records[accountID] = record
	}

	if slot == domain.OTPSlotRecovery {
		record.RecoveryHash = codeHash
	} else {
		record.ConfirmHash = codeHash
	}
	record.Expiration = expiration
	return nil
}

func (r *fakeOTPRepo) GetByAccountID(_ context.Context, accountID string) (*domain.OTPRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[accountID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *fakeOTPRepo) DeleteByAccountID(_ context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, accountID)
	return nil
}

// expire backdates the record so the next verification sees it expired.
func (r *fakeOTPRepo) expire(accountID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record, ok := r.records[accountID]; ok {
		record.Expiration = time.Now().Add(-time.Minute)
	}
}

// fakeRevokedTokenRepo is an in-memory revocation set.
type fakeRevokedTokenRepo struct {
	mu      sync.Mutex
	access  map[string]bool
	refresh map[string]bool
}

func newFakeRevokedTokenRepo() *fakeRevokedTokenRepo {
	return &fakeRevokedTokenRepo{
		access:  make(map[string]bool),
		refresh: make(map[string]bool),
	}
}

func (r *fakeRevokedTokenRepo) Revoke(_ context.Context, accessJTI, refreshJTI string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if accessJTI != "" {
		r.access[accessJTI] = true
	}
	if refreshJTI != "" {
		r.refresh[refreshJTI] = true
	}
	return nil
}

func (r *fakeRevokedTokenRepo) IsAccessRevoked(_ context.Context, accessJTI string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.access[accessJTI], nil
}

func (r *fakeRevokedTokenRepo) IsRefreshRevoked(_ context.Context, refreshJTI string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refresh[refreshJTI], nil
}

// recordingNotifier captures sent codes instead of mailing them, so
// tests can complete the OTP round trips.
type recordingNotifier struct {
	mu       sync.Mutex
	lastCode map[string]string
	sent     []string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{lastCode: make(map[string]string)}
}

func (n *recordingNotifier) record(kind, to, code string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if code != "" {
		n.lastCode[to] = code
	}
	n.sent = append(n.sent, kind)
}

func (n *recordingNotifier) codeFor(to string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastCode[to]
}

func (n *recordingNotifier) VerificationEmail(to, otp string)       { n.record("verification", to, otp) }
func (n *recordingNotifier) WelcomeEmail(to, _ string)              { n.record("welcome", to, "") }
func (n *recordingNotifier) TwoFactorCode(to, otp string)           { n.record("twofactor", to, otp) }
func (n *recordingNotifier) TwoFactorEnabled(to string)             { n.record("twofactor_enabled", to, "") }
func (n *recordingNotifier) PasswordResetRequest(to, otp string)    { n.record("reset_request", to, otp) }
func (n *recordingNotifier) PasswordChanged(to string)              { n.record("password_changed", to, "") }
func (n *recordingNotifier) EmailChangeVerification(to, otp string) { n.record("email_change", to, otp) }
func (n *recordingNotifier) EmailUpdated(to, _ string)              { n.record("email_updated", to, "") }

// fakeGoogleVerifier maps raw tokens to canned payloads.
type fakeGoogleVerifier struct {
	payloads map[string]*GoogleTokenPayload
}

func newFakeGoogleVerifier() *fakeGoogleVerifier {
	return &fakeGoogleVerifier{payloads: make(map[string]*GoogleTokenPayload)}
}

func (v *fakeGoogleVerifier) Verify(_ context.Context, idToken string) (*GoogleTokenPayload, error) {
	payload, ok := v.payloads[idToken]
	if !ok {
		return nil, fmt.Errorf("unrecognized token")
	}
	return payload, nil
}
