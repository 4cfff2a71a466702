// Package notify is the outbound notification port. Actual delivery (SMTP,
// push, whatever ops wires up) lives behind the Notifier interface; services
// only build messages and await dispatch before committing state.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mioNacs/SITCoders-sub000/internal/community/domain"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers a message to an address. Implementations must return an
// error on failed delivery so callers can abort the surrounding transaction.
type Notifier interface {
	Send(ctx context.Context, m Message) error
}

// CodeDelivery builds the message carrying a freshly issued one-time code.
func CodeDelivery(to string, purpose domain.Purpose, code string, ttl time.Duration) Message {
	var subject string
	switch purpose {
	case domain.PurposeEmailVerify:
		subject = "Verify your email address"
	case domain.PurposePasswordReset:
		subject = "Reset your password"
	case domain.PurposeAccountDeletion:
		subject = "Confirm account deletion"
	case domain.PurposeLogin:
		subject = "Your login code"
	default:
		subject = "Your verification code"
	}

	return Message{
		To:      to,
		Subject: subject,
		Body:    fmt.Sprintf("Your code is %s. It expires in %d minutes.", code, int(ttl.Minutes())),
	}
}

// SuspensionNotice tells a member they have been suspended, by whom and why.
func SuspensionNotice(to, actorName, reason string, until *time.Time) Message {
	body := fmt.Sprintf("Your account has been suspended by %s. Reason: %s.", actorName, reason)
	if until != nil {
		body += fmt.Sprintf(" The suspension ends on %s.", until.Format(time.RFC1123))
	} else {
		body += " The suspension is indefinite."
	}
	return Message{To: to, Subject: "Your account has been suspended", Body: body}
}

// SuspensionLifted tells a member their suspension is over.
func SuspensionLifted(to string) Message {
	return Message{
		To:      to,
		Subject: "Your suspension has been lifted",
		Body:    "Your account is active again. Welcome back.",
	}
}

// ApprovalNotice tells a member an admin verified their account.
func ApprovalNotice(to string) Message {
	return Message{
		To:      to,
		Subject: "Your account has been approved",
		Body:    "An admin verified your account. You can now post and comment.",
	}
}

// RejectionNotice tells a pending member their registration was rejected.
func RejectionNotice(to string) Message {
	return Message{
		To:      to,
		Subject: "Your registration was not approved",
		Body:    "An admin reviewed your registration and did not approve it. The account has been removed.",
	}
}

// Slog is a Notifier that writes messages to the structured log instead of
// delivering them. Used in dev and as the default when no transport is
// configured.
type Slog struct {
	Logger *slog.Logger
}

func (s *Slog) Send(ctx context.Context, m Message) error {
	s.Logger.Info("notification dispatched",
		slog.String("to", m.To),
		slog.String("subject", m.Subject),
	)
	return nil
}
