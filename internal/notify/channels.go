package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"

	applog "tabungan/internal/log"
)

// LogNotifier writes notifications to the log. It is the delivery channel in
// development and when no email provider is configured.
type LogNotifier struct {
	logger *applog.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: applog.WithComponent(applog.ComponentNotify)}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notification) error {
	l.logger.InfoContext(ctx, "notification delivered (log)",
		applog.FieldUserID, n.UserID,
		applog.FieldNotificationID, n.ID,
		applog.FieldCategory, string(n.Category),
		"title", n.Title,
		"body", n.Body,
	)
	return nil
}

// EmailSender is the subset of the resend client used here.
type EmailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// EmailNotifier delivers notifications through Resend.
type EmailNotifier struct {
	sender EmailSender
	from   string
	logger *applog.Logger
}

func NewEmailNotifier(apiKey, from string) *EmailNotifier {
	client := resend.NewClient(apiKey)
	return NewEmailNotifierWithSender(client.Emails, from)
}

func NewEmailNotifierWithSender(sender EmailSender, from string) *EmailNotifier {
	return &EmailNotifier{sender: sender, from: from, logger: applog.WithComponent(applog.ComponentNotify)}
}

func (e *EmailNotifier) Notify(ctx context.Context, n Notification) error {
	if n.Email == "" {
		return fmt.Errorf("user %s has no email address: %w", n.UserID, ErrPermissionDenied)
	}
	if e.sender == nil {
		return errors.New("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    e.from,
		To:      []string{n.Email},
		Subject: n.Title,
		Text:    n.Body,
	}
	if _, err := e.sender.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	e.logger.InfoContext(ctx, "email sent",
		applog.FieldUserID, n.UserID,
		applog.FieldCategory, string(n.Category),
	)
	return nil
}

// Fallback tries primary and, when it denies permission, delivers through
// secondary instead.
func Fallback(primary, secondary Notifier) Notifier {
	return NotifierFunc(func(ctx context.Context, n Notification) error {
		err := primary.Notify(ctx, n)
		if errors.Is(err, ErrPermissionDenied) {
			return secondary.Notify(ctx, n)
		}
		return err
	})
}

// Delivery returns the end channel for notifications: email through Resend
// when an API key is set, with the log for users without an address, or the
// log alone otherwise.
func Delivery(resendAPIKey, from string) Notifier {
	if resendAPIKey == "" {
		return NewLogNotifier()
	}
	return Fallback(NewEmailNotifier(resendAPIKey, from), NewLogNotifier())
}
