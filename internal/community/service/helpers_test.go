package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mioNacs/SITCoders-sub000/internal/community/blob"
	"github.com/mioNacs/SITCoders-sub000/internal/community/domain"
	"github.com/mioNacs/SITCoders-sub000/internal/community/notify"
	"github.com/mioNacs/SITCoders-sub000/internal/community/store"
	"github.com/mioNacs/SITCoders-sub000/internal/community/store/drivers/sqlite"
	"github.com/mioNacs/SITCoders-sub000/pkg/clockx"
	"github.com/mioNacs/SITCoders-sub000/pkg/idx"
)

var seedSeq atomic.Int64

// fixture wires every service against an in-memory store, a fake clock and
// a recording notifier.
type fixture struct {
	store        store.Store
	clock        *clockx.Fake
	notifier     *notify.Recorder
	blobs        *blob.Memory
	otp          *OTPService
	tokens       *TokenService
	registration *RegistrationService
	admins       *AdminService
	suspensions  *SuspensionService
	moderation   *ModerationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	clock := clockx.NewFake(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	rec := &notify.Recorder{}
	blobs := blob.NewMemory()

	otp := &OTPService{Store: st, Notifier: rec, Clock: clock}
	tokens := &TokenService{Secret: []byte("test-secret"), TTL: 24 * time.Hour, Clock: clock}

	return &fixture{
		store:    st,
		clock:    clock,
		notifier: rec,
		blobs:    blobs,
		otp:      otp,
		tokens:   tokens,
		registration: &RegistrationService{
			Store: st, OTP: otp, Tokens: tokens, Blobs: blobs, Clock: clock,
		},
		admins:      &AdminService{Store: st, Clock: clock},
		suspensions: &SuspensionService{Store: st, Notifier: rec, Clock: clock},
		moderation:  &ModerationService{Store: st, Notifier: rec, Blobs: blobs, Clock: clock},
	}
}

// seedAccount inserts an account directly. mutate may be nil.
func (f *fixture) seedAccount(t *testing.T, ctx context.Context, mutate func(*domain.Account)) domain.Account {
	t.Helper()

	n := seedSeq.Add(1)
	now := f.clock.Now()
	a := domain.Account{
		ID:           idx.New().String(),
		Username:     fmt.Sprintf("member%d", n),
		Email:        fmt.Sprintf("member%d@college.test", n),
		PasswordHash: "unusable",
		FullName:     fmt.Sprintf("Member %d", n),
		RollNumber:   fmt.Sprintf("23CS%03d", n%1000),
		Gender:       "other",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if mutate != nil {
		mutate(&a)
	}
	require.NoError(t, f.store.Accounts().CreateAccount(ctx, a))
	return a
}

// seedAdmin inserts an account holding the given role.
func (f *fixture) seedAdmin(t *testing.T, ctx context.Context, role domain.Role) domain.Account {
	t.Helper()

	a := f.seedAccount(t, ctx, func(a *domain.Account) {
		a.EmailVerified = true
		a.AdminVerified = true
	})
	require.NoError(t, f.store.Grants().CreateGrant(ctx, domain.AdminGrant{
		ID:        idx.New().String(),
		AccountID: a.ID,
		Role:      role,
		CreatedAt: f.clock.Now(),
	}))
	return a
}

// activeCode reads the live code row for an account and purpose.
func (f *fixture) activeCode(t *testing.T, ctx context.Context, accountID string, purpose domain.Purpose) domain.OneTimeCode {
	t.Helper()

	c, err := f.store.Codes().GetCode(ctx, accountID, purpose)
	require.NoError(t, err)
	return c
}
