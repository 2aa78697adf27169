package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"tabungan/internal/notify"
)

// NotificationMessage is the envelope published for one notification.
type NotificationMessage struct {
	Notification notify.Notification `json:"notification"`
	Timestamp    time.Time           `json:"timestamp"`
}

func NewNotificationMessage(n notify.Notification) *NotificationMessage {
	return &NotificationMessage{Notification: n, Timestamp: time.Now().UTC()}
}

// ToJSON converts the message to JSON bytes
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON decodes a message and rejects envelopes that
// cannot be routed to a user.
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Notification.UserID == "" {
		return nil, errors.New("notification without user id")
	}
	return &msg, nil
}
