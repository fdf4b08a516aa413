package scan

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bft-labs/qrship/pkg/log"
)

// ErrInvalidTransition is returned when an event is not valid in the current status.
var ErrInvalidTransition = errors.New("scan: invalid status transition")

// Lifecycle is the camera status state machine.
type Lifecycle struct {
	// notifyMu orders whole Apply calls so listeners see changes in the
	// order they were made. mu guards the status only.
	notifyMu sync.Mutex

	mu       sync.RWMutex
	status   Status
	listener StatusListener
	logger   log.Logger
}

// NewLifecycle creates a lifecycle in StatusAccessing. Listener and logger may be nil.
func NewLifecycle(logger log.Logger, listener StatusListener) *Lifecycle {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Lifecycle{
		status:   StatusAccessing,
		listener: listener,
		logger:   logger,
	}
}

// Status returns the current camera status.
func (l *Lifecycle) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// Ready reports whether frames may be decoded.
func (l *Lifecycle) Ready() bool {
	return l.Status() == StatusReady
}

// Apply feeds one camera event to the state machine. Events that keep the
// status unchanged succeed without notifying anyone. Invalid events return
// ErrInvalidTransition and leave the status unchanged. Listeners must not
// call Apply.
func (l *Lifecycle) Apply(e Event, reason string) error {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()

	l.mu.Lock()
	previous := l.status
	current, ok := next(previous, e)
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s in %s", ErrInvalidTransition, e, previous)
	}
	if current == previous {
		l.mu.Unlock()
		return nil
	}
	l.status = current
	listener := l.listener
	l.mu.Unlock()

	// Notify outside of lock
	if listener != nil {
		listener.OnStatusChange(previous, current, reason)
		if (previous == StatusReady) != (current == StatusReady) {
			listener.OnReadyChange(current == StatusReady)
		}
	}

	l.logger.Info("camera status",
		log.String("from", previous.String()),
		log.String("to", current.String()),
		log.String("event", e.String()),
		log.String("reason", reason),
	)
	return nil
}

// SetListener replaces the single listener slot.
func (l *Lifecycle) SetListener(listener StatusListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listener = listener
}
