package domain

import "time"

// Purpose scopes a one-time code to a single flow. At most one active code
// exists per (account, purpose).
type Purpose string

const (
	PurposeEmailVerify     Purpose = "email-verification"
	PurposePasswordReset   Purpose = "password-reset"
	PurposeAccountDeletion Purpose = "account-deletion"
	PurposeLogin           Purpose = "login"
)

func (p Purpose) Valid() bool {
	switch p {
	case PurposeEmailVerify, PurposePasswordReset, PurposeAccountDeletion, PurposeLogin:
		return true
	}
	return false
}

// MaxCodeAttempts is the number of failed verifications before a code is
// locked out and must be re-issued.
const MaxCodeAttempts = 3

// OneTimeCode is a short-lived numeric secret bound to one account and one
// purpose. Resends overwrite the row in place rather than appending.
type OneTimeCode struct {
	AccountID   string
	Purpose     Purpose
	Code        string
	ExpiresAt   time.Time
	ResendAfter time.Time // next allowed resend
	Attempts    int       // failed verification count, reset by replacement
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Expired reports whether the code is past its expiry.
func (c OneTimeCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// AttemptsExhausted reports whether the code has hit the failed-attempt cap.
func (c OneTimeCode) AttemptsExhausted() bool {
	return c.Attempts >= MaxCodeAttempts
}

// ResendLocked reports whether a resend request must still wait.
func (c OneTimeCode) ResendLocked(now time.Time) bool {
	return now.Before(c.ResendAfter)
}
