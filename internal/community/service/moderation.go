package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mioNacs/SITCoders-sub000/internal/community/blob"
	"github.com/mioNacs/SITCoders-sub000/internal/community/domain"
	"github.com/mioNacs/SITCoders-sub000/internal/community/notify"
	"github.com/mioNacs/SITCoders-sub000/internal/community/store"
	"github.com/mioNacs/SITCoders-sub000/pkg/clockx"
	"github.com/mioNacs/SITCoders-sub000/pkg/slogx"
)

var (
	ErrNotPending      = errors.New("account is not awaiting admin verification")
	ErrCommentNotFound = errors.New("comment not found")
)

// ModerationService handles the admin decisions on pending accounts and the
// cascading deletes they trigger.
type ModerationService struct {
	Store    store.Store
	Notifier notify.Notifier
	Blobs    blob.Store
	Clock    clockx.Clock
}

// ApprovePending marks a registration as admin-verified, enabling posting
// rights. The email must already be verified; the admin-verified flag is
// never set ahead of it.
func (s *ModerationService) ApprovePending(ctx context.Context, adminID, accountID string) error {
	acct, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if acct.AdminVerified {
		return ErrNotPending
	}
	if !acct.EmailVerified {
		return ErrEmailNotVerified
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Accounts().SetAdminVerified(ctx, accountID); err != nil {
			return err
		}
		if err := s.Notifier.Send(ctx, notify.ApprovalNotice(acct.Email)); err != nil {
			return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("account approved",
		slog.String("admin_id", adminID),
		slog.String("account_id", accountID),
	)
	return nil
}

// RejectPending removes a registration that was never admin-verified. The
// profile asset is deleted from the blob store first and a failure there
// aborts the whole rejection, so the account row survives until cleanup can
// succeed. Codes, grants and comments go with the row per schema.
func (s *ModerationService) RejectPending(ctx context.Context, adminID, accountID string) error {
	log := slogx.FromContext(ctx)

	acct, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if acct.AdminVerified {
		return ErrNotPending
	}

	if acct.AvatarID != "" {
		if err := s.Blobs.Delete(ctx, acct.AvatarID); err != nil {
			log.Error("profile asset cleanup failed, rejection aborted",
				slog.String("account_id", accountID),
				slog.Any("error", err),
			)
			return fmt.Errorf("%w: profile asset cleanup: %w", ErrDispatchFailed, err)
		}
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.Notifier.Send(ctx, notify.RejectionNotice(acct.Email)); err != nil {
			return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
		}
		return tx.Accounts().DeleteAccount(ctx, accountID)
	})
	if err != nil {
		return err
	}

	log.Info("pending account rejected",
		slog.String("admin_id", adminID),
		slog.String("account_id", accountID),
	)
	return nil
}

// DeleteCommentSubtree removes a comment and its replies (replies are one
// level deep, so this is the full subtree) and returns how many replies
// went with it. Ownership checks belong to the caller: the author and any
// admin may both end up here.
func (s *ModerationService) DeleteCommentSubtree(ctx context.Context, commentID string) (int, error) {
	if _, err := s.Store.Comments().GetCommentByID(ctx, commentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrCommentNotFound
		}
		return 0, err
	}

	var replies int64
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		replies, err = tx.Comments().DeleteReplies(ctx, commentID)
		if err != nil {
			return err
		}
		return tx.Comments().DeleteComment(ctx, commentID)
	})
	if err != nil {
		return 0, err
	}

	slogx.FromContext(ctx).Info("comment subtree deleted",
		slog.String("comment_id", commentID),
		slog.Int64("replies", replies),
	)
	return int(replies), nil
}

// ListSuspended returns every currently suspended account for the admin
// overview.
func (s *ModerationService) ListSuspended(ctx context.Context) ([]domain.Account, error) {
	return s.Store.Accounts().ListSuspended(ctx)
}
