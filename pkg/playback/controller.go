package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/qrship/pkg/log"
)

var (
	// ErrClosed is returned by operations on a closed controller.
	ErrClosed = errors.New("playback: controller closed")

	// ErrNoSession is returned when an operation needs a session and none is playing.
	ErrNoSession = errors.New("playback: no session playing")

	// ErrInvalidRefreshSpeed is returned for a non-positive refresh speed.
	ErrInvalidRefreshSpeed = errors.New("playback: refresh speed must be positive")
)

// Controller plays one session at a time into a FrameSink.
type Controller struct {
	sink   FrameSink
	logger log.Logger

	mu      sync.Mutex
	current *Session
	speed   time.Duration
	closed  bool

	// emitMu is held by the goroutine from reading a frame until ShowFrame
	// returns. Finish takes it once so no frame of the finished session is
	// shown after Finish returns.
	emitMu sync.Mutex

	// kick wakes the goroutine after the session or speed changed.
	kick   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController starts the playback goroutine. Call Close to stop it.
func NewController(sink FrameSink, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		sink:   sink,
		logger: log.NewNoopLogger(),
		speed:  DefaultRefreshSpeed,
		kick:   make(chan struct{}, 1),
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.wg.Add(1)
	go c.run(ctx)
	return c
}

// Play replaces the current session with a new one for payload and shows its
// first frame immediately. A replaced session is abandoned without resolving.
func (c *Controller) Play(payload []byte, opts Options) (*Session, error) {
	opts = opts.withDefaults()
	s, err := newSession(payload, opts)
	if err != nil {
		return nil, fmt.Errorf("split payload: %w", err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	previous := c.current
	c.current = s
	c.speed = opts.RefreshSpeed
	c.mu.Unlock()

	c.wake()

	fields := []log.Field{
		log.String("session", s.ID()),
		log.Int("bytes", len(payload)),
		log.Int("fragments", s.Total()),
		log.Duration("refresh_speed", opts.RefreshSpeed),
	}
	if previous != nil {
		fields = append(fields, log.String("abandoned", previous.ID()))
	}
	c.logger.Info("playback started", fields...)
	return s, nil
}

// Finish resolves the current session and returns the controller to idle
// with the default refresh speed. No frame of the session is shown after
// Finish returns.
func (c *Controller) Finish() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	s := c.current
	if s == nil {
		c.mu.Unlock()
		return ErrNoSession
	}
	c.current = nil
	c.speed = DefaultRefreshSpeed
	c.mu.Unlock()

	// Wait out a frame read before current was cleared.
	c.emitMu.Lock()
	c.emitMu.Unlock()

	c.wake()
	s.finish()
	c.logger.Info("playback finished", log.String("session", s.ID()))
	return nil
}

// SetRefreshSpeed changes the tick interval of the current session. The
// encoder position is untouched, so no frame is skipped or repeated.
func (c *Controller) SetRefreshSpeed(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidRefreshSpeed
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.current == nil {
		c.mu.Unlock()
		return ErrNoSession
	}
	c.speed = d
	c.mu.Unlock()

	c.wake()
	c.logger.Debug("refresh speed changed", log.Duration("refresh_speed", d))
	return nil
}

// Current returns the playing session, or nil when idle.
func (c *Controller) Current() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// RefreshSpeed returns the current tick interval.
func (c *Controller) RefreshSpeed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// ButtonLabel returns "Continue" when the playing session has HasNext set
// and "Finish" otherwise.
func (c *Controller) ButtonLabel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return LabelFinish
	}
	return c.current.opts.ButtonLabel()
}

// Close stops the playback goroutine and waits for it to exit. No frame is
// shown after Close returns. The current session is left unresolved.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.current = nil
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	return nil
}

func (c *Controller) wake() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

func (c *Controller) run(ctx context.Context) {
	defer c.wg.Done()

	var (
		ticker *time.Ticker
		tickC  <-chan time.Time
		shown  *Session
		speed  time.Duration
	)
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-c.kick:
			c.emitMu.Lock()
			c.mu.Lock()
			s := c.current
			interval := c.speed
			var frame Frame
			fresh := s != nil && s != shown
			if fresh {
				frame = s.next()
			}
			c.mu.Unlock()

			switch {
			case s == nil:
				if ticker != nil {
					ticker.Stop()
				}
				tickC = nil
			case ticker == nil:
				ticker = time.NewTicker(interval)
				tickC = ticker.C
			case fresh || interval != speed:
				ticker.Reset(interval)
				tickC = ticker.C
			}
			shown, speed = s, interval

			if fresh {
				c.sink.ShowFrame(frame)
			}
			c.emitMu.Unlock()

		case <-tickC:
			c.emitMu.Lock()
			c.mu.Lock()
			s := c.current
			if s == nil || s != shown {
				// A kick is pending for the new state.
				c.mu.Unlock()
				c.emitMu.Unlock()
				continue
			}
			frame := s.next()
			c.mu.Unlock()

			c.sink.ShowFrame(frame)
			c.emitMu.Unlock()
		}
	}
}
