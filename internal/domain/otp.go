package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// OTPSlot selects which code hash of an OTPRecord an operation uses.
// Confirm codes gate email confirmation, email changes and 2FA; recovery
// codes gate password reset. Keeping the slots separate means a pending
// email confirmation is not clobbered by a concurrent password recovery.
type OTPSlot string

const (
	OTPSlotConfirm  OTPSlot = "confirm"
	OTPSlotRecovery OTPSlot = "recovery"
)

// OTPRecord holds the outstanding one-time codes for an account.
// At most one record exists per account; new requests upsert in place.
type OTPRecord struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	AccountID    bson.ObjectID `bson:"account_id"`
	ConfirmHash  string        `bson:"confirm,omitempty"`
	RecoveryHash string        `bson:"recovery,omitempty"`
	Expiration   time.Time     `bson:"expiration"`
}

// Hash returns the stored hash for the given slot, or "" if the slot
// holds no outstanding code.
func (r *OTPRecord) Hash(slot OTPSlot) string {
	if slot == OTPSlotRecovery {
		return r.RecoveryHash
	}
	return r.ConfirmHash
}

// Expired reports whether the record is past its expiration. The
// comparison is strict: a record expiring exactly now is still usable.
func (r *OTPRecord) Expired(now time.Time) bool {
	return now.After(r.Expiration)
}
