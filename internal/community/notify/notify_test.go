package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mioNacs/SITCoders-sub000/internal/community/domain"
)

func TestCodeDeliveryMessage(t *testing.T) {
	m := CodeDelivery("someone@college.test", domain.PurposeEmailVerify, "042137", 5*time.Minute)

	require.Equal(t, "someone@college.test", m.To)
	require.NotEmpty(t, m.Subject)
	require.Contains(t, m.Body, "042137")
}

func TestSuspensionNoticeMentionsEnd(t *testing.T) {
	until := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	bounded := SuspensionNotice("someone@college.test", "Dean Admin", "spam", &until)
	require.Contains(t, bounded.Body, "spam")
	require.Contains(t, bounded.Body, until.Format(time.RFC1123))

	indefinite := SuspensionNotice("someone@college.test", "Dean Admin", "spam", nil)
	require.NotContains(t, indefinite.Body, until.Format(time.RFC1123))
}

func TestRateLimitedAllowsBurst(t *testing.T) {
	rec := &Recorder{}
	limited := NewRateLimited(rec, 60, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, limited.Send(ctx, Message{To: "a@college.test"}))
	}
	require.Len(t, rec.Sent(), 5)
}

func TestRateLimitedHonorsContext(t *testing.T) {
	rec := &Recorder{}
	limited := NewRateLimited(rec, 1, 1)

	// Drain the only token, then a cancelled context must fail fast.
	require.NoError(t, limited.Send(context.Background(), Message{To: "a@college.test"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := limited.Send(ctx, Message{To: "b@college.test"})
	require.Error(t, err)
	require.Len(t, rec.Sent(), 1)
}
