package assembler

// State is the assembly state of the current session.
type State int

const (
	StateEmpty State = iota
	StateAccumulating
	StateComplete
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateEmpty:
		return "Empty"
	case StateAccumulating:
		return "Accumulating"
	case StateComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// OutcomeKind classifies one Ingest call.
type OutcomeKind int

const (
	// OutcomeProgress means the frame was accepted, possibly without new information.
	OutcomeProgress OutcomeKind = iota

	// OutcomeComplete means this frame finished the payload.
	OutcomeComplete

	// OutcomeRejected means the frame was malformed or belonged to another payload.
	OutcomeRejected
)

// String returns a human-readable representation of the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeProgress:
		return "Progress"
	case OutcomeComplete:
		return "Complete"
	case OutcomeRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Outcome is the result of ingesting one frame.
type Outcome struct {
	Kind OutcomeKind

	// Payload is set only when Kind is OutcomeComplete.
	Payload []byte

	// Reason explains a rejection. It wraps fountain.ErrMalformedFrame or
	// fountain.ErrSessionMismatch.
	Reason error

	// NewInfo reports whether an accepted frame taught the decoder anything.
	NewInfo bool

	// Known and Total describe progress after this frame.
	Known int
	Total int
}

// Stats counts frames seen by the current session.
type Stats struct {
	Received   int
	Accepted   int
	Duplicates int
	Malformed  int
	Mismatched int
}

// Rejected returns the number of dropped frames.
func (s Stats) Rejected() int {
	return s.Malformed + s.Mismatched
}
