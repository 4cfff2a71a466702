package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/mioNacs/SITCoders-sub000/internal/community/blob"
	"github.com/mioNacs/SITCoders-sub000/internal/community/domain"
	"github.com/mioNacs/SITCoders-sub000/internal/community/store"
	"github.com/mioNacs/SITCoders-sub000/pkg/clockx"
	"github.com/mioNacs/SITCoders-sub000/pkg/cryptox"
	"github.com/mioNacs/SITCoders-sub000/pkg/idx"
	"github.com/mioNacs/SITCoders-sub000/pkg/slogx"
)

var (
	ErrUsernameTaken    = errors.New("username already taken")
	ErrEmailTaken       = errors.New("email already registered")
	ErrRollNumberTaken  = errors.New("roll number already registered")
	ErrBadCredentials   = errors.New("wrong username or password")
	ErrEmailNotVerified = errors.New("email address is not verified")
)

var (
	usernamePattern   = regexp.MustCompile(`^[a-z0-9_.]{3,20}$`)
	rollNumberPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{2,5}[0-9]{2,4}$`)
)

// RegisterParams is the input for a new registration.
type RegisterParams struct {
	Username   string
	Email      string
	Password   string
	FullName   string
	RollNumber string
	Gender     string
	Bio        string
	Avatar     *blob.Asset // already uploaded, optional
}

// Validate applies the registration input rules.
func (p RegisterParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Username, validation.Required, validation.Match(usernamePattern)),
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&p.FullName, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.RollNumber, validation.Required, validation.Match(rollNumberPattern)),
		validation.Field(&p.Bio, validation.Length(0, 500)),
	)
}

// RegistrationService owns account creation and the self-service flows that
// ride on one-time codes: email verification, login, password reset and
// account deletion.
type RegistrationService struct {
	Store  store.Store
	OTP    *OTPService
	Tokens *TokenService
	Blobs  blob.Store
	Clock  clockx.Clock
}

// Register creates an unverified account and its email-verification code in
// one transaction. If the code can't be dispatched nothing is persisted, so
// the whole registration is safe to retry.
func (s *RegistrationService) Register(ctx context.Context, p RegisterParams) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	if err := p.Validate(); err != nil {
		return domain.Account{}, err
	}

	if err := s.checkAvailable(ctx, p); err != nil {
		return domain.Account{}, err
	}

	passwordHash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.Clock.Now()
	acct := domain.Account{
		ID:           idx.New().String(),
		Username:     p.Username,
		Email:        strings.ToLower(p.Email),
		PasswordHash: passwordHash,
		FullName:     p.FullName,
		RollNumber:   p.RollNumber,
		Gender:       p.Gender,
		Bio:          p.Bio,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if p.Avatar != nil {
		acct.AvatarURL = p.Avatar.URL
		acct.AvatarID = p.Avatar.ID
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().CreateAccount(ctx, acct); err != nil {
			return err
		}
		_, err := s.OTP.issueOn(ctx, tx, acct, domain.PurposeEmailVerify)
		return err
	})
	if err != nil {
		return domain.Account{}, err
	}

	log.Info("account registered",
		slog.String("account_id", acct.ID),
		slog.String("username", acct.Username),
	)
	return acct, nil
}

// VerifyEmail consumes an email-verification code and flips the
// email-verified flag. The code deletion and the flag flip share one
// transaction; failed attempts are persisted regardless.
func (s *RegistrationService) VerifyEmail(ctx context.Context, accountID, code string) error {
	// check runs against the base store so attempt increments survive even
	// though no flag is flipped.
	if _, err := s.OTP.check(ctx, s.Store, accountID, domain.PurposeEmailVerify, code); err != nil {
		return err
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Codes().DeleteCode(ctx, accountID, domain.PurposeEmailVerify); err != nil {
			return err
		}
		return tx.Accounts().SetEmailVerified(ctx, accountID)
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("email verified", slog.String("account_id", accountID))
	return nil
}

// ResendEmailCode replaces the pending email-verification code, subject to
// the resend cooldown.
func (s *RegistrationService) ResendEmailCode(ctx context.Context, accountID string) error {
	_, err := s.OTP.Resend(ctx, accountID, domain.PurposeEmailVerify)
	return err
}

// BeginLogin checks credentials and issues a login code. Both unknown
// accounts and wrong passwords surface as ErrBadCredentials.
func (s *RegistrationService) BeginLogin(ctx context.Context, usernameOrEmail, password string) (string, error) {
	acct, err := s.Store.Accounts().GetAccountByUsername(ctx, usernameOrEmail)
	if errors.Is(err, store.ErrNotFound) {
		acct, err = s.Store.Accounts().GetAccountByEmail(ctx, usernameOrEmail)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrBadCredentials
		}
		return "", err
	}

	if err := cryptox.VerifyPassword(password, acct.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Warn("login with wrong password",
				slog.String("account_id", acct.ID))
			return "", ErrBadCredentials
		}
		return "", err
	}

	if !acct.EmailVerified {
		return "", ErrEmailNotVerified
	}

	if _, err := s.OTP.Issue(ctx, acct.ID, domain.PurposeLogin); err != nil {
		return "", err
	}
	return acct.ID, nil
}

// CompleteLogin consumes the login code and mints a session token carrying
// the account's current role.
func (s *RegistrationService) CompleteLogin(ctx context.Context, accountID, code string) (string, error) {
	if err := s.OTP.Verify(ctx, accountID, domain.PurposeLogin, code); err != nil {
		return "", err
	}

	role := domain.RoleNone
	grant, err := s.Store.Grants().GetGrantByAccount(ctx, accountID)
	if err == nil {
		role = grant.Role
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	return s.Tokens.Mint(accountID, role)
}

// RequestPasswordReset issues a password-reset code to the account behind
// the given email address.
func (s *RegistrationService) RequestPasswordReset(ctx context.Context, email string) error {
	acct, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	_, err = s.OTP.Issue(ctx, acct.ID, domain.PurposePasswordReset)
	return err
}

// ResetPassword consumes a reset code and writes the new password hash in
// the same transaction.
func (s *RegistrationService) ResetPassword(ctx context.Context, accountID, code, newPassword string) error {
	if err := validation.Validate(newPassword, validation.Required, validation.Length(8, 72)); err != nil {
		return err
	}

	if _, err := s.OTP.check(ctx, s.Store, accountID, domain.PurposePasswordReset, code); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Codes().DeleteCode(ctx, accountID, domain.PurposePasswordReset); err != nil {
			return err
		}
		return tx.Accounts().UpdatePasswordHash(ctx, accountID, hash)
	})
}

// RequestAccountDeletion issues a deletion-confirmation code.
func (s *RegistrationService) RequestAccountDeletion(ctx context.Context, accountID string) error {
	_, err := s.OTP.Issue(ctx, accountID, domain.PurposeAccountDeletion)
	return err
}

// ConfirmAccountDeletion consumes the deletion code and removes the account
// together with everything hanging off it: codes, admin grant and comments
// go with the row, the profile asset is removed from the blob store first.
func (s *RegistrationService) ConfirmAccountDeletion(ctx context.Context, accountID, code string) error {
	log := slogx.FromContext(ctx)

	if _, err := s.OTP.check(ctx, s.Store, accountID, domain.PurposeAccountDeletion, code); err != nil {
		return err
	}

	acct, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	if acct.AvatarID != "" {
		if err := s.Blobs.Delete(ctx, acct.AvatarID); err != nil {
			return fmt.Errorf("%w: profile asset cleanup: %w", ErrDispatchFailed, err)
		}
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Accounts().DeleteAccount(ctx, acct.ID)
	})
	if err != nil {
		return err
	}

	log.Info("account deleted on request", slog.String("account_id", acct.ID))
	return nil
}

func (s *RegistrationService) checkAvailable(ctx context.Context, p RegisterParams) error {
	if _, err := s.Store.Accounts().GetAccountByUsername(ctx, p.Username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if _, err := s.Store.Accounts().GetAccountByEmail(ctx, p.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if _, err := s.Store.Accounts().GetAccountByRollNumber(ctx, p.RollNumber); err == nil {
		return ErrRollNumberTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	return nil
}
