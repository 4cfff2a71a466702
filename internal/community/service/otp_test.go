package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mioNacs/SITCoders-sub000/internal/community/domain"
	"github.com/mioNacs/SITCoders-sub000/internal/community/store"
)

func TestOTPIssueAndVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.seedAccount(t, ctx, nil)

	code, err := f.otp.Issue(ctx, acct.ID, domain.PurposeEmailVerify)
	require.NoError(t, err)
	require.Len(t, code, 6)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, acct.Email, sent[0].To)
	require.Contains(t, sent[0].Body, code)

	require.NoError(t, f.otp.Verify(ctx, acct.ID, domain.PurposeEmailVerify, code))

	// Consumed: a second verification finds nothing.
	err = f.otp.Verify(ctx, acct.ID, domain.PurposeEmailVerify, code)
	require.ErrorIs(t, err, ErrCodeNotFound)
}

func TestOTPIssueUnknownAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.otp.Issue(context.Background(), "nope", domain.PurposeLogin)
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestOTPIssueInvalidPurpose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.seedAccount(t, ctx, nil)

	_, err := f.otp.Issue(ctx, acct.ID, domain.Purpose("promotion"))
	require.ErrorIs(t, err, ErrInvalidPurpose)
}

func TestOTPIssueRollsBackOnDispatchFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.seedAccount(t, ctx, nil)

	f.notifier.FailWith = errors.New("smtp down")
	_, err := f.otp.Issue(ctx, acct.ID, domain.PurposeEmailVerify)
	require.ErrorIs(t, err, ErrDispatchFailed)

	// The failed dispatch rolled the code row back with it.
	_, err = f.store.Codes().GetCode(ctx, acct.ID, domain.PurposeEmailVerify)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestOTPVerifyWrongCodeIncrementsAttempts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.seedAccount(t, ctx, nil)

	_, err := f.otp.Issue(ctx, acct.ID, domain.PurposeEmailVerify)
	require.NoError(t, err)

	err = f.otp.Verify(ctx, acct.ID, domain.PurposeEmailVerify, "000000x")
	require.ErrorIs(t, err, ErrCodeInvalid)

	rec := f.activeCode(t, ctx, acct.ID, domain.PurposeEmailVerify)
	require.Equal(t, 1, rec.Attempts)
}

func TestOTPVerifyMaxAttemptsLockout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.seedAccount(t, ctx, nil)

	code, err := f.otp.Issue(ctx, acct.ID, domain.PurposeLogin)
	require.NoError(t, err)

	for i := 0; i < domain.MaxCodeAttempts; i++ {
		err := f.otp.Verify(ctx, acct.ID, domain.PurposeLogin, "wrong-0")
		require.ErrorIs(t, err, ErrCodeInvalid)
	}

	// Locked out before any comparison: even the right code is refused.
	err = f.otp.Verify(ctx, acct.ID, domain.PurposeLogin, code)
	require.ErrorIs(t, err, ErrMaxAttempts)

	// A fresh issue resets the counter and works again.
	code, err = f.otp.Issue(ctx, acct.ID, domain.PurposeLogin)
	require.NoError(t, err)
	require.NoError(t, f.otp.Verify(ctx, acct.ID, domain.PurposeLogin, code))
}

func TestOTPVerifyExpiredCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.seedAccount(t, ctx, nil)

	code, err := f.otp.Issue(ctx, acct.ID, domain.PurposeEmailVerify)
	require.NoError(t, err)

	f.clock.Advance(5 * time.Minute)

	// The right value past expiry still fails and burns an attempt.
	err = f.otp.Verify(ctx, acct.ID, domain.PurposeEmailVerify, code)
	require.ErrorIs(t, err, ErrCodeInvalid)

	rec := f.activeCode(t, ctx, acct.ID, domain.PurposeEmailVerify)
	require.Equal(t, 1, rec.Attempts)
}

func TestOTPResendCooldown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.seedAccount(t, ctx, nil)

	_, err := f.otp.Issue(ctx, acct.ID, domain.PurposeEmailVerify)
	require.NoError(t, err)
	before := f.activeCode(t, ctx, acct.ID, domain.PurposeEmailVerify)

	_, err = f.otp.Resend(ctx, acct.ID, domain.PurposeEmailVerify)
	require.ErrorIs(t, err, ErrResendTooSoon)

	var tooSoon *TooSoonError
	require.ErrorAs(t, err, &tooSoon)
	require.Greater(t, tooSoon.RetryAfter, time.Duration(0))

	// The refused resend left the pending code untouched.
	after := f.activeCode(t, ctx, acct.ID, domain.PurposeEmailVerify)
	require.Equal(t, before.Code, after.Code)
	require.True(t, before.ExpiresAt.Equal(after.ExpiresAt))
	require.Len(t, f.notifier.Sent(), 1)
}

func TestOTPResendAfterCooldownReplacesCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.seedAccount(t, ctx, nil)

	_, err := f.otp.Issue(ctx, acct.ID, domain.PurposeEmailVerify)
	require.NoError(t, err)
	before := f.activeCode(t, ctx, acct.ID, domain.PurposeEmailVerify)

	f.clock.Advance(2 * time.Minute)

	_, err = f.otp.Resend(ctx, acct.ID, domain.PurposeEmailVerify)
	require.NoError(t, err)

	after := f.activeCode(t, ctx, acct.ID, domain.PurposeEmailVerify)
	require.True(t, after.ExpiresAt.After(before.ExpiresAt))
	require.Equal(t, 0, after.Attempts)
	require.Len(t, f.notifier.Sent(), 2)
}

func TestOTPResendWithoutPriorCodeIssues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.seedAccount(t, ctx, nil)

	code, err := f.otp.Resend(ctx, acct.ID, domain.PurposeLogin)
	require.NoError(t, err)
	require.Len(t, code, 6)
}

func TestOTPCodesIsolatedByPurpose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.seedAccount(t, ctx, nil)

	verifyCode, err := f.otp.Issue(ctx, acct.ID, domain.PurposeEmailVerify)
	require.NoError(t, err)
	loginCode, err := f.otp.Issue(ctx, acct.ID, domain.PurposeLogin)
	require.NoError(t, err)

	// Consuming the login code leaves the verification code live.
	require.NoError(t, f.otp.Verify(ctx, acct.ID, domain.PurposeLogin, loginCode))
	require.NoError(t, f.otp.Verify(ctx, acct.ID, domain.PurposeEmailVerify, verifyCode))
}
