package sqlite

import (
	"context"
	"time"

	"github.com/mioNacs/SITCoders-sub000/internal/community/domain"
)

type codesRepo struct {
	q querier
}

func (r *codesRepo) GetCode(ctx context.Context, accountID string, purpose domain.Purpose) (domain.OneTimeCode, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT account_id, purpose, code, expires_at, resend_after, attempts, created_at, updated_at
		FROM one_time_codes WHERE account_id = ? AND purpose = ?`,
		accountID, string(purpose))

	var c domain.OneTimeCode
	var purposeStr string
	err := row.Scan(&c.AccountID, &purposeStr, &c.Code, &c.ExpiresAt, &c.ResendAfter,
		&c.Attempts, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.OneTimeCode{}, mapNotFound(err)
	}
	c.Purpose = domain.Purpose(purposeStr)
	return c, nil
}

func (r *codesRepo) UpsertCode(ctx context.Context, c domain.OneTimeCode) error {
	// Replacement resets the code value, expiry, resend lock and attempts in
	// a single write so there is never more than one live code per purpose.
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO one_time_codes (account_id, purpose, code, expires_at, resend_after, attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (account_id, purpose) DO UPDATE SET
			code = excluded.code,
			expires_at = excluded.expires_at,
			resend_after = excluded.resend_after,
			attempts = excluded.attempts,
			updated_at = excluded.updated_at`,
		c.AccountID, string(c.Purpose), c.Code, c.ExpiresAt.UTC(), c.ResendAfter.UTC(),
		c.Attempts, c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	return err
}

func (r *codesRepo) IncrementAttempts(ctx context.Context, accountID string, purpose domain.Purpose) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE one_time_codes SET attempts = attempts + 1, updated_at = ?
		WHERE account_id = ? AND purpose = ?`,
		time.Now().UTC(), accountID, string(purpose))
	return err
}

func (r *codesRepo) DeleteCode(ctx context.Context, accountID string, purpose domain.Purpose) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM one_time_codes WHERE account_id = ? AND purpose = ?`,
		accountID, string(purpose))
	return err
}

func (r *codesRepo) DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM one_time_codes WHERE expires_at < ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
