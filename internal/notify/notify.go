// Package notify defines the notification event and its delivery channels.
package notify

import (
	"context"
	"errors"
	"hash/fnv"
	"time"
)

type Category string

const (
	CategoryGoalReached  Category = "goal_reached"
	CategoryGoalDeadline Category = "goal_deadline"
)

// ErrPermissionDenied means the user cannot receive the notification right
// now. Callers treat it as a skip, not a failure.
var ErrPermissionDenied = errors.New("notification permission denied")

// Notification is the unit published on the bus and handed to a Notifier.
type Notification struct {
	ID        int32     `json:"id"`
	UserID    string    `json:"user_id"`
	Category  Category  `json:"category"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

// IDFor derives a stable notification id from a goal id, so a repeated
// notification for the same goal replaces the previous one on the device.
func IDFor(goalID string) int32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(goalID))
	return int32(h.Sum32())
}

// Guard wraps next so that notifications for which allow reports false fail
// with ErrPermissionDenied instead of being delivered.
func Guard(next Notifier, allow func(ctx context.Context, n Notification) (bool, error)) Notifier {
	return NotifierFunc(func(ctx context.Context, n Notification) error {
		ok, err := allow(ctx, n)
		if err != nil {
			return err
		}
		if !ok {
			return ErrPermissionDenied
		}
		return next.Notify(ctx, n)
	})
}
