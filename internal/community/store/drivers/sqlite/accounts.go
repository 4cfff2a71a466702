package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/mioNacs/SITCoders-sub000/internal/community/domain"
	"github.com/mioNacs/SITCoders-sub000/internal/community/store"
)

type accountsRepo struct {
	q querier
}

const accountColumns = `id, username, email, password_hash, full_name, roll_number,
	gender, bio, avatar_url, avatar_id, email_verified, admin_verified,
	suspended, suspended_until, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var a domain.Account
	var suspendedUntil sql.NullTime
	err := row.Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.FullName, &a.RollNumber,
		&a.Gender, &a.Bio, &a.AvatarURL, &a.AvatarID, &a.EmailVerified, &a.AdminVerified,
		&a.Suspended, &suspendedUntil, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, err
	}
	a.SuspendedUntil = mapNullTimePtr(suspendedUntil)
	return a, nil
}

// mapConstraint converts sqlite unique-constraint failures to the store
// sentinel so services don't depend on driver error strings.
func mapConstraint(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByUsername(ctx context.Context, username string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, strings.ToLower(email))
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByRollNumber(ctx context.Context, rollNumber string) (domain.Account, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE roll_number = ?`, rollNumber)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO accounts (
			id, username, email, password_hash, full_name, roll_number,
			gender, bio, avatar_url, avatar_id, email_verified, admin_verified,
			suspended, suspended_until, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Username, strings.ToLower(a.Email), a.PasswordHash, a.FullName, a.RollNumber,
		a.Gender, a.Bio, a.AvatarURL, a.AvatarID, a.EmailVerified, a.AdminVerified,
		a.Suspended, mapOptionalTime(a.SuspendedUntil), a.CreatedAt, a.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *accountsRepo) SetEmailVerified(ctx context.Context, accountID string) error {
	return r.exec(ctx,
		`UPDATE accounts SET email_verified = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), accountID)
}

func (r *accountsRepo) SetAdminVerified(ctx context.Context, accountID string) error {
	return r.exec(ctx,
		`UPDATE accounts SET admin_verified = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), accountID)
}

func (r *accountsRepo) SetSuspension(ctx context.Context, accountID string, suspended bool, until *time.Time) error {
	return r.exec(ctx,
		`UPDATE accounts SET suspended = ?, suspended_until = ?, updated_at = ? WHERE id = ?`,
		suspended, mapOptionalTime(until), time.Now().UTC(), accountID)
}

func (r *accountsRepo) ClearExpiredSuspensions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE accounts
		SET suspended = 0, suspended_until = NULL, updated_at = ?
		WHERE suspended = 1 AND suspended_until IS NOT NULL AND suspended_until < ?`,
		time.Now().UTC(), now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *accountsRepo) ListSuspended(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE suspended = 1 ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *accountsRepo) UpdatePasswordHash(ctx context.Context, accountID string, newHash string) error {
	return r.exec(ctx,
		`UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), accountID)
}

func (r *accountsRepo) DeleteUnverifiedCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM accounts WHERE email_verified = 0 AND created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, accountID string) error {
	return r.exec(ctx, `DELETE FROM accounts WHERE id = ?`, accountID)
}

func (r *accountsRepo) exec(ctx context.Context, query string, args ...any) error {
	_, err := r.q.ExecContext(ctx, query, args...)
	return err
}
