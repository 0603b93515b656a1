package engine

// Notifier is a concurrency primitive for informing worker routines about the
// arrival of new work unit(s). Notifiers behave like channels in that they can
// be passed by value and still allow concurrent updates of the same internal
// state.
//
// A Notifier remembers at most one pending notification: notifying an already
// notified Notifier is a no-op, and a worker reading from Channel consumes the
// pending notification. Workers are expected to drain their work queue fully
// each time they are woken up.
type Notifier struct {
	notifier chan struct{} // buffered channel with capacity 1
}

// NewNotifier instantiates a Notifier.
func NewNotifier() Notifier {
	return Notifier{make(chan struct{}, 1)}
}

// Notify sends a notification. It never blocks.
func (n Notifier) Notify() {
	select {
	case n.notifier <- struct{}{}:
	default:
	}
}

// Channel returns a channel for receiving notifications
func (n Notifier) Channel() <-chan struct{} {
	return n.notifier
}
