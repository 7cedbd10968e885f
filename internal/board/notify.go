package board

import "time"

// DismissAfter is how long a notification stays visible.
const DismissAfter = 1500 * time.Millisecond

// Notification is a transient success/failure message for the dispatcher.
type Notification struct {
	Success  bool
	Message  string
	PostedAt time.Time
}

// Notifier is a depth-1 notification channel: a new notification replaces
// the visible one, and notifications auto-dismiss after a fixed delay. It
// is decoupled from any particular presentation.
type Notifier struct {
	current *Notification
	ttl     time.Duration
}

// NewNotifier creates a notifier with the standard dismiss delay.
func NewNotifier() *Notifier {
	return &Notifier{ttl: DismissAfter}
}

// Publish replaces the visible notification.
func (n *Notifier) Publish(success bool, message string, at time.Time) {
	n.current = &Notification{Success: success, Message: message, PostedAt: at}
}

// Current returns the visible notification at the given instant, nil once
// it has expired or none was published.
func (n *Notifier) Current(at time.Time) *Notification {
	if n.current == nil {
		return nil
	}
	if at.Sub(n.current.PostedAt) >= n.ttl {
		return nil
	}
	return n.current
}

// Clear dismisses the visible notification.
func (n *Notifier) Clear() { n.current = nil }
