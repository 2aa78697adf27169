package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/resend/resend-go/v2"
)

type fakeSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "email-1"}, nil
}

type recorder struct {
	got []Notification
}

func (r *recorder) Notify(_ context.Context, n Notification) error {
	r.got = append(r.got, n)
	return nil
}

func TestIDForIsStable(t *testing.T) {
	a := IDFor("goal-1")
	if a != IDFor("goal-1") {
		t.Fatalf("id must be deterministic")
	}
	if a == IDFor("goal-2") {
		t.Fatalf("different goals should get different ids")
	}
}

func TestEmailNotifierSends(t *testing.T) {
	sender := &fakeSender{}
	n := NewEmailNotifierWithSender(sender, "Tabungan <noreply@example.com>")

	err := n.Notify(context.Background(), Notification{UserID: "u1", Email: "a@example.com", Title: "T", Body: "B"})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.sent))
	}
	got := sender.sent[0]
	if got.Subject != "T" || got.Text != "B" || got.To[0] != "a@example.com" || got.From != "Tabungan <noreply@example.com>" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestEmailNotifierWithoutAddressIsDenied(t *testing.T) {
	sender := &fakeSender{}
	err := NewEmailNotifierWithSender(sender, "x@example.com").Notify(context.Background(), Notification{UserID: "u1"})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("nothing should be sent")
	}
}

func TestEmailNotifierPropagatesFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("boom")}
	err := NewEmailNotifierWithSender(sender, "x@example.com").Notify(context.Background(), Notification{Email: "a@example.com"})
	if err == nil || errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected a delivery error, got %v", err)
	}
}

func TestGuard(t *testing.T) {
	rec := &recorder{}
	allowErr := errors.New("lookup failed")
	g := Guard(rec, func(_ context.Context, n Notification) (bool, error) {
		switch n.UserID {
		case "broken":
			return false, allowErr
		case "muted":
			return false, nil
		}
		return true, nil
	})

	ctx := context.Background()
	if err := g.Notify(ctx, Notification{UserID: "ok"}); err != nil {
		t.Fatalf("allowed notification failed: %v", err)
	}
	if err := g.Notify(ctx, Notification{UserID: "muted"}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if err := g.Notify(ctx, Notification{UserID: "broken"}); !errors.Is(err, allowErr) {
		t.Fatalf("expected lookup error, got %v", err)
	}
	if len(rec.got) != 1 || rec.got[0].UserID != "ok" {
		t.Fatalf("unexpected deliveries %+v", rec.got)
	}
}

func TestFallbackOnDenial(t *testing.T) {
	rec := &recorder{}
	email := NewEmailNotifierWithSender(&fakeSender{}, "x@example.com")

	if err := Fallback(email, rec).Notify(context.Background(), Notification{UserID: "u1"}); err != nil {
		t.Fatalf("fallback failed: %v", err)
	}
	if len(rec.got) != 1 {
		t.Fatalf("secondary channel should have received the notification")
	}
}

func TestDeliveryWithoutAPIKeyLogs(t *testing.T) {
	if _, ok := Delivery("", "x@example.com").(*LogNotifier); !ok {
		t.Fatalf("expected the log channel without a Resend key")
	}
	if _, ok := Delivery("re_test", "x@example.com").(*LogNotifier); ok {
		t.Fatalf("a Resend key should enable email delivery")
	}
}
