package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// AccountStatus is the lifecycle state of an account.
// Pending accounts have signed up but not confirmed their email yet;
// deactivated accounts are reactivated by the next successful login.
type AccountStatus string

const (
	StatusPending     AccountStatus = "pending"
	StatusActive      AccountStatus = "active"
	StatusDeactivated AccountStatus = "deactivated"
)

// Provider is an authentication method linked to an account.
type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGoogle Provider = "google"
)

// Account represents a user account in the system.
type Account struct {
	ID                     bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Username               string        `bson:"username" json:"username"`
	Email                  string        `bson:"email" json:"email"`
	PasswordHash           string        `bson:"password_hash,omitempty" json:"-"`
	Providers              []Provider    `bson:"providers" json:"providers"`
	GoogleID               string        `bson:"google_id,omitempty" json:"-"`
	Status                 AccountStatus `bson:"status" json:"status"`
	TwoFactorEnabled       bool          `bson:"two_factor_enabled" json:"two_factor_enabled"`
	NeedsProfileCompletion bool          `bson:"needs_profile_completion" json:"needs_profile_completion"`
	Gender                 string        `bson:"gender,omitempty" json:"gender,omitempty"`
	DateOfBirth            string        `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	EncryptedPhoneNumber   string        `bson:"phone_number,omitempty" json:"-"`
	CreatedAt              time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt              time.Time     `bson:"updated_at" json:"updated_at"`
}

// HasProvider reports whether the given provider is linked to the account.
func (a *Account) HasProvider(p Provider) bool {
	for _, linked := range a.Providers {
		if linked == p {
			return true
		}
	}
	return false
}

// CanLogin reports whether password login may proceed. Pending accounts
// are rejected with the same message as a wrong password so callers
// cannot probe which emails are registered.
func (a *Account) CanLogin() bool {
	return a.Status == StatusActive || a.Status == StatusDeactivated
}
