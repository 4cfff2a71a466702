package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mioNacs/SITCoders-sub000/internal/community/domain"
	"github.com/mioNacs/SITCoders-sub000/internal/community/notify"
	"github.com/mioNacs/SITCoders-sub000/internal/community/store"
	"github.com/mioNacs/SITCoders-sub000/pkg/clockx"
	"github.com/mioNacs/SITCoders-sub000/pkg/cryptox"
	"github.com/mioNacs/SITCoders-sub000/pkg/slogx"
)

const (
	codeTTL        = 5 * time.Minute
	resendCooldown = 2 * time.Minute
)

var (
	ErrInvalidPurpose = errors.New("invalid code purpose")
	ErrCodeNotFound   = errors.New("no active code for this account and purpose")
	ErrCodeInvalid    = errors.New("code is wrong or expired")
	ErrMaxAttempts    = errors.New("too many failed attempts, request a new code")
	ErrResendTooSoon  = errors.New("resend requested too soon")
)

// TooSoonError carries how long the caller must wait before the next resend.
type TooSoonError struct {
	RetryAfter time.Duration
}

func (e *TooSoonError) Error() string {
	return fmt.Sprintf("resend requested too soon, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *TooSoonError) Unwrap() error { return ErrResendTooSoon }

// OTPService owns the one-time code lifecycle: issue, verify, resend. Codes
// are mutated in place (one row per account+purpose) to bound storage and
// prevent replay across resends.
type OTPService struct {
	Store    store.Store
	Notifier notify.Notifier
	Clock    clockx.Clock
}

// Issue generates a new code for (account, purpose), overwriting any prior
// one, and dispatches it. The code row and the dispatch commit or roll back
// together so a failed delivery leaves no live code behind.
func (s *OTPService) Issue(ctx context.Context, accountID string, purpose domain.Purpose) (string, error) {
	if !purpose.Valid() {
		return "", ErrInvalidPurpose
	}

	acct, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrAccountNotFound
		}
		return "", err
	}

	var code string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		code, err = s.issueOn(ctx, tx, acct, purpose)
		return err
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// Resend replaces the current code, unless the resend lock is still active,
// in which case it fails with a TooSoonError and leaves the existing code
// untouched.
func (s *OTPService) Resend(ctx context.Context, accountID string, purpose domain.Purpose) (string, error) {
	if !purpose.Valid() {
		return "", ErrInvalidPurpose
	}

	existing, err := s.Store.Codes().GetCode(ctx, accountID, purpose)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	if err == nil && existing.ResendLocked(s.Clock.Now()) {
		return "", &TooSoonError{RetryAfter: existing.ResendAfter.Sub(s.Clock.Now())}
	}

	return s.Issue(ctx, accountID, purpose)
}

// Verify checks a submitted code. The attempt cap is enforced before any
// comparison so a locked-out code can't be probed further, not even with the
// right value. On match the code row is deleted; on mismatch or expiry the
// attempt counter is incremented and persisted.
func (s *OTPService) Verify(ctx context.Context, accountID string, purpose domain.Purpose, submitted string) error {
	if _, err := s.check(ctx, s.Store, accountID, purpose, submitted); err != nil {
		return err
	}
	return s.Store.Codes().DeleteCode(ctx, accountID, purpose)
}

// issueOn writes and dispatches a fresh code using the given store, which
// may be a transaction shared with other writes (registration).
func (s *OTPService) issueOn(ctx context.Context, st store.Store, acct domain.Account, purpose domain.Purpose) (string, error) {
	log := slogx.FromContext(ctx)

	code, err := cryptox.GenerateNumericCode(cryptox.CodeLength)
	if err != nil {
		return "", err
	}

	now := s.Clock.Now()
	rec := domain.OneTimeCode{
		AccountID:   acct.ID,
		Purpose:     purpose,
		Code:        code,
		ExpiresAt:   now.Add(codeTTL),
		ResendAfter: now.Add(resendCooldown),
		Attempts:    0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := st.Codes().UpsertCode(ctx, rec); err != nil {
		return "", err
	}

	if err := s.Notifier.Send(ctx, notify.CodeDelivery(acct.Email, purpose, code, codeTTL)); err != nil {
		log.Error("failed to dispatch one-time code",
			slog.String("account_id", acct.ID),
			slog.String("purpose", string(purpose)),
			slog.Any("error", err),
		)
		return "", fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}

	log.Debug("one-time code issued",
		slog.String("account_id", acct.ID),
		slog.String("purpose", string(purpose)),
	)
	return code, nil
}

// check runs the verification state machine against st without consuming
// the code. Callers delete the row (and apply any coupled account mutation)
// after a nil return.
func (s *OTPService) check(ctx context.Context, st store.Store, accountID string, purpose domain.Purpose, submitted string) (domain.OneTimeCode, error) {
	log := slogx.FromContext(ctx)

	rec, err := st.Codes().GetCode(ctx, accountID, purpose)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.OneTimeCode{}, ErrCodeNotFound
		}
		return domain.OneTimeCode{}, err
	}

	// Checked before comparing so attempts can't be probed past the cap.
	if rec.AttemptsExhausted() {
		log.Warn("verification attempted on locked-out code",
			slog.String("account_id", accountID),
			slog.String("purpose", string(purpose)),
		)
		return domain.OneTimeCode{}, ErrMaxAttempts
	}

	now := s.Clock.Now()
	if rec.Expired(now) || !cryptox.ConstantTimeEquals(rec.Code, submitted) {
		if err := st.Codes().IncrementAttempts(ctx, accountID, purpose); err != nil {
			return domain.OneTimeCode{}, err
		}
		return domain.OneTimeCode{}, ErrCodeInvalid
	}

	return rec, nil
}
