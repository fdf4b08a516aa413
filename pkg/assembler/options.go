package assembler

import "github.com/bft-labs/qrship/pkg/log"

// Option configures an Assembler.
type Option func(*options)

type options struct {
	logger     log.Logger
	onComplete func(payload []byte)
	onState    func(previous, current State)
}

func defaultOptions() options {
	return options{logger: log.NewNoopLogger()}
}

// WithLogger sets the logger. Rejections and transitions are logged at debug level.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithOnComplete registers the single completion callback. It runs once per
// session, outside the assembler lock, on the goroutine whose Ingest
// finished the payload.
func WithOnComplete(fn func(payload []byte)) Option {
	return func(o *options) {
		o.onComplete = fn
	}
}

// WithStateListener registers a callback for state transitions.
func WithStateListener(fn func(previous, current State)) Option {
	return func(o *options) {
		o.onState = fn
	}
}
