package playback

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/bft-labs/qrship/pkg/fountain"
)

// Frame is one rendered step of a session, handed to the FrameSink.
type Frame struct {
	Text        string `json:"text"`
	SeqNum      uint32 `json:"seq"`
	Total       int    `json:"total"`
	HasNext     bool   `json:"hasNext"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	SessionID   string `json:"sessionId"`
}

// FrameSink displays frames. ShowFrame is called from the controller
// goroutine, one call at a time, and must not call back into the Controller.
type FrameSink interface {
	ShowFrame(frame Frame)
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(Frame)

// ShowFrame calls f(frame).
func (f FrameSinkFunc) ShowFrame(frame Frame) { f(frame) }

// Session is one Play call. It resolves once, when the consumer finishes it.
type Session struct {
	id      string
	opts    Options
	encoder *fountain.Encoder

	done     chan struct{}
	doneOnce sync.Once
}

func newSession(payload []byte, opts Options) (*Session, error) {
	enc, err := fountain.Split(payload, opts.FragmentLen, opts.MaxDegree)
	if err != nil {
		return nil, err
	}
	return &Session{
		id:      uuid.NewString(),
		opts:    opts,
		encoder: enc,
		done:    make(chan struct{}),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Options returns the options the session was started with, defaults applied.
func (s *Session) Options() Options {
	return s.opts
}

// Total returns the number of pure fragments in the payload.
func (s *Session) Total() int {
	return s.encoder.Total()
}

// Done is closed when the session is finished.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session is finished or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) finish() {
	s.doneOnce.Do(func() { close(s.done) })
}

// next renders the frame at the encoder position and advances it.
// Callers hold the controller lock.
func (s *Session) next() Frame {
	seq := s.encoder.Position()
	return Frame{
		Text:        s.encoder.NextPart(),
		SeqNum:      seq,
		Total:       s.encoder.Total(),
		HasNext:     s.opts.HasNext,
		Title:       s.opts.Title,
		Description: s.opts.Description,
		SessionID:   s.id,
	}
}
