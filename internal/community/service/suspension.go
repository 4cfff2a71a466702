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
	"github.com/mioNacs/SITCoders-sub000/pkg/slogx"
)

var (
	ErrInvalidSuspension = errors.New("suspension needs a positive duration or forever")
	ErrTargetIsAdmin     = errors.New("accounts holding an admin grant cannot be suspended")
)

// SuspensionService applies and lifts suspensions. Every state change and
// its notification commit or abort together: an account never ends up
// suspended without notice, nor unsuspended without notice.
type SuspensionService struct {
	Store    store.Store
	Notifier notify.Notifier
	Clock    clockx.Clock
}

// Suspend blocks the target account for amount*unit, or indefinitely when
// forever is set. Admins cannot be suspended; revoke the grant first.
func (s *SuspensionService) Suspend(ctx context.Context, adminID, targetID string, amount int, unit domain.SuspensionUnit, forever bool, reason string) error {
	log := slogx.FromContext(ctx)

	if !forever && (amount <= 0 || !unit.Valid()) {
		return ErrInvalidSuspension
	}

	target, err := s.Store.Accounts().GetAccountByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	if _, err := s.Store.Grants().GetGrantByAccount(ctx, targetID); err == nil {
		return ErrTargetIsAdmin
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	actor, err := s.Store.Accounts().GetAccountByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	var until *time.Time
	if !forever {
		t := s.Clock.Now().Add(unit.Duration(amount))
		until = &t
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().SetSuspension(ctx, targetID, true, until); err != nil {
			return err
		}
		msg := notify.SuspensionNotice(target.Email, actor.FullName, reason, until)
		if err := s.Notifier.Send(ctx, msg); err != nil {
			return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("account suspended",
		slog.String("admin_id", adminID),
		slog.String("target_id", targetID),
		slog.Bool("forever", forever),
	)
	return nil
}

// Lift unconditionally clears the target's suspension.
func (s *SuspensionService) Lift(ctx context.Context, adminID, targetID string) error {
	target, err := s.Store.Accounts().GetAccountByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().SetSuspension(ctx, targetID, false, nil); err != nil {
			return err
		}
		if err := s.Notifier.Send(ctx, notify.SuspensionLifted(target.Email)); err != nil {
			return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("suspension lifted",
		slog.String("admin_id", adminID),
		slog.String("target_id", targetID),
	)
	return nil
}

// LiftIfExpired lazily reconciles a bounded suspension whose end has
// passed. There is no timer firing at the boundary; this runs on access
// plus the batch sweep. Returns true only when a lift actually happened.
func (s *SuspensionService) LiftIfExpired(ctx context.Context, accountID string) (bool, error) {
	acct, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrAccountNotFound
		}
		return false, err
	}

	if !acct.SuspensionState().Expired(s.Clock.Now()) {
		return false, nil
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().SetSuspension(ctx, accountID, false, nil); err != nil {
			return err
		}
		if err := s.Notifier.Send(ctx, notify.SuspensionLifted(acct.Email)); err != nil {
			return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	slogx.FromContext(ctx).Info("expired suspension lifted", slog.String("account_id", accountID))
	return true, nil
}

// SweepExpired bulk-clears every expired bounded suspension. No per-account
// notifications in this path; it is cleanup, not the primary lift.
func (s *SuspensionService) SweepExpired(ctx context.Context) (int, error) {
	n, err := s.Store.Accounts().ClearExpiredSuspensions(ctx, s.Clock.Now())
	return int(n), err
}

// IsBlocked is the gate used to disable posting, commenting and voting. It
// reconciles expiry first so an account whose time has passed isn't
// incorrectly blocked.
func (s *SuspensionService) IsBlocked(ctx context.Context, accountID string) (bool, error) {
	lifted, err := s.LiftIfExpired(ctx, accountID)
	if err != nil {
		return false, err
	}
	if lifted {
		return false, nil
	}

	acct, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrAccountNotFound
		}
		return false, err
	}
	return acct.Suspended, nil
}
