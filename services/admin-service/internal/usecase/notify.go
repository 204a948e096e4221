package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vasapolrittideah/identity-docstore/identity/model"
	"github.com/vasapolrittideah/identity-docstore/shared/mailer"
)

// LockoutNotifier is told when a user gets locked out.
type LockoutNotifier interface {
	NotifyLockout(ctx context.Context, user *model.User, until time.Time) error
}

// EmailSender sends a single email.
type EmailSender interface {
	Send(email mailer.Email) error
}

type mailLockoutNotifier struct {
	sender EmailSender
}

// NewMailLockoutNotifier emails the locked out user. Users without an email
// address are skipped.
func NewMailLockoutNotifier(sender EmailSender) LockoutNotifier {
	return &mailLockoutNotifier{sender: sender}
}

func (n *mailLockoutNotifier) NotifyLockout(_ context.Context, user *model.User, until time.Time) error {
	if user.Email == "" {
		return nil
	}

	return n.sender.Send(mailer.Email{
		To:      []string{user.Email},
		Subject: "Your account has been locked",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour account was locked after too many failed sign-in attempts. "+
				"You can try again after %s.\n",
			user.UserName,
			until.UTC().Format(time.RFC1123),
		),
	})
}
