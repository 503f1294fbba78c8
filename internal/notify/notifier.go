// Package notify defines the notification events the settlement workflow
// emits and the interface an external delivery mechanism implements.
//
// Delivery is advisory: a failed notification is logged and counted by
// the caller, never allowed to unwind a committed ledger mutation.
package notify

import (
	"context"
	"log/slog"
)

// EventType identifies the kind of notification.
type EventType string

const (
	// EventRequestCreated is delivered to the recipient of a new
	// settlement request.
	EventRequestCreated EventType = "request_created"
	// EventRequestApproved is delivered to both parties when a
	// settlement request is approved.
	EventRequestApproved EventType = "request_approved"
)

// Event carries the team and counterparty context a delivery channel
// needs to render the notification.
type Event struct {
	Type      EventType
	TeamID    string
	TeamName  string
	RequestID string
	FromID    string
	FromName  string
	ToID      string
	ToName    string
	Amount    float64
	Message   string
}

// Notifier delivers notification events. Implementations may send email,
// push messages, or anything else; the workflow only requires that
// Notify be safe to call after a committed mutation.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// LogNotifier writes events to the structured log. It is the default
// delivery channel and the stand-in used in tests.
type LogNotifier struct{}

// Notify logs the event.
func (LogNotifier) Notify(_ context.Context, ev Event) error {
	slog.Info("notification",
		"type", ev.Type,
		"team_id", ev.TeamID,
		"team", ev.TeamName,
		"request_id", ev.RequestID,
		"from", ev.FromName,
		"to", ev.ToName,
		"amount", ev.Amount,
	)
	return nil
}
