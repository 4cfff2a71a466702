package store

import (
	"context"
	"errors"
	"time"

	"github.com/mioNacs/SITCoders-sub000/internal/community/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and a transaction entry point for the handful of multi-record
// writes that must be atomic (suspension + notice, registration, cascades).
type Store interface {
	Accounts() Accounts
	Codes() Codes
	Grants() Grants
	Comments() Comments

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. This is the
	// recommended way to run atomic units.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByUsername is used during login and registration uniqueness checks.
	GetAccountByUsername(ctx context.Context, username string) (domain.Account, error)

	// GetAccountByEmail looks up by lowercase email.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// GetAccountByRollNumber is used for registration uniqueness checks.
	GetAccountByRollNumber(ctx context.Context, rollNumber string) (domain.Account, error)

	// CreateAccount inserts a new account (id is provided by app via ULID).
	CreateAccount(ctx context.Context, a domain.Account) error

	// SetEmailVerified flips email_verified and bumps updated_at.
	SetEmailVerified(ctx context.Context, accountID string) error

	// SetAdminVerified flips admin_verified and bumps updated_at.
	SetAdminVerified(ctx context.Context, accountID string) error

	// SetSuspension writes both suspension fields in one statement.
	// until must be nil unless suspended is true.
	SetSuspension(ctx context.Context, accountID string, suspended bool, until *time.Time) error

	// ClearExpiredSuspensions bulk-lifts every bounded suspension whose end
	// has passed, returning the number of rows touched.
	ClearExpiredSuspensions(ctx context.Context, now time.Time) (int64, error)

	// ListSuspended returns all currently suspended accounts.
	ListSuspended(ctx context.Context) ([]domain.Account, error)

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, accountID string, newHash string) error

	// DeleteUnverifiedCreatedBefore removes accounts that never verified
	// their email and were created before cutoff. Dependent rows go with
	// them (per schema). Returns the number of accounts removed.
	DeleteUnverifiedCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteAccount cascades to one_time_codes, admin_grants and comments
	// (per schema).
	DeleteAccount(ctx context.Context, accountID string) error
}

type Codes interface {
	// GetCode returns the active code for (account, purpose).
	GetCode(ctx context.Context, accountID string, purpose domain.Purpose) (domain.OneTimeCode, error)

	// UpsertCode inserts or replaces the code row for (account, purpose).
	// Replacement resets attempts and timestamps in one write.
	UpsertCode(ctx context.Context, c domain.OneTimeCode) error

	// IncrementAttempts bumps the failed-attempt counter and updated_at.
	IncrementAttempts(ctx context.Context, accountID string, purpose domain.Purpose) error

	// DeleteCode removes the code row after successful verification.
	DeleteCode(ctx context.Context, accountID string, purpose domain.Purpose) error

	// DeleteExpiredCodes removes all codes past their expiry (housekeeping).
	DeleteExpiredCodes(ctx context.Context, now time.Time) (int64, error)
}

type Grants interface {
	// GetGrantByAccount returns the grant for an account, if any.
	GetGrantByAccount(ctx context.Context, accountID string) (domain.AdminGrant, error)

	// CreateGrant inserts a new grant. Fails with ErrAlreadyExists if the
	// account already holds one.
	CreateGrant(ctx context.Context, g domain.AdminGrant) error

	// DeleteGrantByAccount revokes the account's grant.
	DeleteGrantByAccount(ctx context.Context, accountID string) error

	// ListGrants returns all grants ordered by creation date.
	ListGrants(ctx context.Context) ([]domain.AdminGrant, error)
}

type Comments interface {
	// GetCommentByID returns a comment by id.
	GetCommentByID(ctx context.Context, id string) (domain.Comment, error)

	// CreateComment inserts a comment or reply.
	CreateComment(ctx context.Context, c domain.Comment) error

	// DeleteReplies removes every comment whose parent is commentID and
	// returns how many were removed.
	DeleteReplies(ctx context.Context, commentID string) (int64, error)

	// DeleteComment removes a single comment row.
	DeleteComment(ctx context.Context, id string) error

	// CountReplies returns the number of replies under a comment.
	CountReplies(ctx context.Context, commentID string) (int64, error)
}
