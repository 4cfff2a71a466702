package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mioNacs/SITCoders-sub000/internal/community/domain"
	"github.com/mioNacs/SITCoders-sub000/internal/community/store"
	"github.com/mioNacs/SITCoders-sub000/pkg/idx"
)

func (f *fixture) seedComment(t *testing.T, ctx context.Context, authorID, parentID string) domain.Comment {
	t.Helper()

	now := f.clock.Now()
	c := domain.Comment{
		ID:        idx.New().String(),
		PostID:    "post-1",
		AuthorID:  authorID,
		ParentID:  parentID,
		Body:      "hello",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.store.Comments().CreateComment(ctx, c))
	return c
}

func TestApprovePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAdmin(t, ctx, domain.RoleAdmin)
	pending := f.seedAccount(t, ctx, func(a *domain.Account) { a.EmailVerified = true })

	require.NoError(t, f.moderation.ApprovePending(ctx, admin.ID, pending.ID))

	stored, err := f.store.Accounts().GetAccountByID(ctx, pending.ID)
	require.NoError(t, err)
	require.True(t, stored.AdminVerified)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, pending.Email, sent[0].To)

	// A second approval finds nothing pending.
	err = f.moderation.ApprovePending(ctx, admin.ID, pending.ID)
	require.ErrorIs(t, err, ErrNotPending)
}

func TestApproveRequiresVerifiedEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAdmin(t, ctx, domain.RoleAdmin)
	pending := f.seedAccount(t, ctx, nil)

	err := f.moderation.ApprovePending(ctx, admin.ID, pending.ID)
	require.ErrorIs(t, err, ErrEmailNotVerified)

	stored, err := f.store.Accounts().GetAccountByID(ctx, pending.ID)
	require.NoError(t, err)
	require.False(t, stored.AdminVerified)
}

func TestApproveUnknownAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAdmin(t, ctx, domain.RoleAdmin)

	err := f.moderation.ApprovePending(ctx, admin.ID, "ghost")
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestRejectPendingCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAdmin(t, ctx, domain.RoleAdmin)

	asset, err := f.blobs.Upload(ctx, []byte("jpeg bytes"), "image/jpeg")
	require.NoError(t, err)
	pending := f.seedAccount(t, ctx, func(a *domain.Account) {
		a.EmailVerified = true
		a.AvatarURL = asset.URL
		a.AvatarID = asset.ID
	})
	_, err = f.otp.Issue(ctx, pending.ID, domain.PurposeEmailVerify)
	require.NoError(t, err)
	f.notifier.Reset()

	require.NoError(t, f.moderation.RejectPending(ctx, admin.ID, pending.ID))

	_, err = f.store.Accounts().GetAccountByID(ctx, pending.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Codes went with the account row, the asset with the blob store.
	_, err = f.store.Codes().GetCode(ctx, pending.ID, domain.PurposeEmailVerify)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.False(t, f.blobs.Has(asset.ID))

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, pending.Email, sent[0].To)
}

func TestRejectAbortsWhenAssetCleanupFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAdmin(t, ctx, domain.RoleAdmin)

	asset, err := f.blobs.Upload(ctx, []byte("jpeg bytes"), "image/jpeg")
	require.NoError(t, err)
	pending := f.seedAccount(t, ctx, func(a *domain.Account) {
		a.AvatarURL = asset.URL
		a.AvatarID = asset.ID
	})

	f.blobs.FailDelete = errors.New("s3 unavailable")
	err = f.moderation.RejectPending(ctx, admin.ID, pending.ID)
	require.Error(t, err)

	// Nothing was deleted and no notice went out.
	_, err = f.store.Accounts().GetAccountByID(ctx, pending.ID)
	require.NoError(t, err)
	require.Empty(t, f.notifier.Sent())
}

func TestRejectApprovedAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAdmin(t, ctx, domain.RoleAdmin)
	approved := f.seedAccount(t, ctx, func(a *domain.Account) {
		a.EmailVerified = true
		a.AdminVerified = true
	})

	err := f.moderation.RejectPending(ctx, admin.ID, approved.ID)
	require.ErrorIs(t, err, ErrNotPending)
}

func TestDeleteCommentSubtree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.seedAccount(t, ctx, nil)

	parent := f.seedComment(t, ctx, author.ID, "")
	for i := 0; i < 3; i++ {
		f.seedComment(t, ctx, author.ID, parent.ID)
	}
	other := f.seedComment(t, ctx, author.ID, "")

	replies, err := f.moderation.DeleteCommentSubtree(ctx, parent.ID)
	require.NoError(t, err)
	require.Equal(t, 3, replies)

	_, err = f.store.Comments().GetCommentByID(ctx, parent.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := f.store.Comments().CountReplies(ctx, parent.ID)
	require.NoError(t, err)
	require.Zero(t, n)

	// Unrelated comments are untouched.
	_, err = f.store.Comments().GetCommentByID(ctx, other.ID)
	require.NoError(t, err)
}

func TestDeleteCommentSubtreeMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.moderation.DeleteCommentSubtree(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrCommentNotFound)
}

func TestDeleteReplyHasNoSubtree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.seedAccount(t, ctx, nil)

	parent := f.seedComment(t, ctx, author.ID, "")
	reply := f.seedComment(t, ctx, author.ID, parent.ID)

	replies, err := f.moderation.DeleteCommentSubtree(ctx, reply.ID)
	require.NoError(t, err)
	require.Zero(t, replies)

	_, err = f.store.Comments().GetCommentByID(ctx, parent.ID)
	require.NoError(t, err)
}
