package playback

import (
	"time"

	"github.com/bft-labs/qrship/pkg/fountain"
	"github.com/bft-labs/qrship/pkg/log"
)

const (
	// DefaultRefreshSpeed is the tick interval when Options.RefreshSpeed is zero.
	DefaultRefreshSpeed = 100 * time.Millisecond

	// DefaultFragmentLen keeps a frame comfortably inside a version 10 QR symbol.
	DefaultFragmentLen = 100

	// LabelContinue and LabelFinish are the two finish-action labels.
	LabelContinue = "Continue"
	LabelFinish   = "Finish"
)

// Options configures one Play call. Zero values select defaults.
type Options struct {
	// RefreshSpeed is the interval between frames.
	RefreshSpeed time.Duration

	// HasNext only affects labeling: another payload follows this one.
	HasNext bool

	Title       string
	Description string

	// FragmentLen is the pure fragment size in bytes.
	FragmentLen int

	// MaxDegree caps how many pure fragments a mixed fragment covers.
	// Zero selects fountain.DefaultMaxDegree.
	MaxDegree uint16
}

func (o Options) withDefaults() Options {
	if o.RefreshSpeed <= 0 {
		o.RefreshSpeed = DefaultRefreshSpeed
	}
	if o.FragmentLen <= 0 {
		o.FragmentLen = DefaultFragmentLen
	}
	if o.MaxDegree == 0 {
		o.MaxDegree = fountain.DefaultMaxDegree
	}
	return o
}

// ButtonLabel returns the label of the finish action.
func (o Options) ButtonLabel() string {
	if o.HasNext {
		return LabelContinue
	}
	return LabelFinish
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}
