package assembler

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/bft-labs/qrship/pkg/fountain"
	"github.com/bft-labs/qrship/pkg/log"
)

// Assembler reassembles one payload from frames arriving in any order.
type Assembler struct {
	mu        sync.Mutex
	opts      options
	sessionID string
	state     State
	decoder   *fountain.Decoder
	payload   []byte
	stats     Stats
}

// New creates an assembler in StateEmpty.
func New(opts ...Option) *Assembler {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Assembler{
		opts:      o,
		sessionID: uuid.NewString(),
		state:     StateEmpty,
		decoder:   fountain.NewDecoder(),
	}
}

// SessionID identifies the current session. Reset starts a new one.
func (a *Assembler) SessionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionID
}

// State returns the current assembly state.
func (a *Assembler) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Stats returns the counters of the current session.
func (a *Assembler) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Progress returns known and total pure fragments. Total is zero while Empty.
func (a *Assembler) Progress() (known, total int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.decoder.Progress()
}

// Payload returns the reassembled payload once Complete.
func (a *Assembler) Payload() ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.payload, a.state == StateComplete
}

// Ingest feeds one scanned frame to the session.
func (a *Assembler) Ingest(raw string) Outcome {
	a.mu.Lock()
	a.stats.Received++
	sessionID := a.sessionID

	frag, err := fountain.ParseFrame(raw)
	if err != nil {
		a.stats.Malformed++
		out := a.outcomeLocked(Outcome{Kind: OutcomeRejected, Reason: err})
		a.mu.Unlock()
		a.opts.logger.Debug("frame dropped",
			log.String("session", sessionID),
			log.String("reason", "malformed"),
			log.Err(err),
		)
		return out
	}

	res := a.decoder.Merge(frag)
	switch res.Status {
	case fountain.MergeRejected:
		if errors.Is(res.Err, fountain.ErrMalformedFrame) {
			a.stats.Malformed++
		} else {
			a.stats.Mismatched++
		}
		out := a.outcomeLocked(Outcome{Kind: OutcomeRejected, Reason: res.Err})
		a.mu.Unlock()
		a.opts.logger.Debug("frame dropped",
			log.String("session", sessionID),
			log.String("reason", "mismatch"),
			log.Uint32("seq", frag.SeqNum),
			log.Err(res.Err),
		)
		return out

	case fountain.MergeAlreadyComplete:
		a.stats.Accepted++
		a.stats.Duplicates++
		out := a.outcomeLocked(Outcome{Kind: OutcomeProgress})
		a.mu.Unlock()
		return out
	}

	a.stats.Accepted++
	if !res.NewInfo {
		a.stats.Duplicates++
	}

	var transitions [][2]State
	if a.state == StateEmpty {
		transitions = append(transitions, [2]State{StateEmpty, StateAccumulating})
		a.state = StateAccumulating
	}

	out := Outcome{Kind: OutcomeProgress, NewInfo: res.NewInfo}
	var completed []byte
	if res.Completed {
		payload, err := a.decoder.Result()
		if err != nil {
			// Only reachable if fragments passing their own checksums still
			// disagree with the digest. Start over rather than deliver garbage.
			a.stats.Mismatched++
			a.decoder = fountain.NewDecoder()
			transitions = append(transitions, [2]State{a.state, StateEmpty})
			a.state = StateEmpty
			out = Outcome{Kind: OutcomeRejected, Reason: err}
		} else {
			a.payload = payload
			transitions = append(transitions, [2]State{a.state, StateComplete})
			a.state = StateComplete
			out = Outcome{Kind: OutcomeComplete, Payload: payload, NewInfo: true}
			completed = payload
		}
	}
	out = a.outcomeLocked(out)
	a.mu.Unlock()

	// Callbacks run outside the lock.
	a.emitTransitions(sessionID, transitions)
	if completed != nil {
		a.opts.logger.Info("payload complete",
			log.String("session", sessionID),
			log.Int("bytes", len(completed)),
			log.Int("fragments", out.Total),
		)
		if a.opts.onComplete != nil {
			a.opts.onComplete(completed)
		}
	}
	return out
}

// Reset discards the session and returns to StateEmpty with a new session ID.
func (a *Assembler) Reset() {
	a.mu.Lock()
	previous := a.state
	a.state = StateEmpty
	a.decoder = fountain.NewDecoder()
	a.payload = nil
	a.stats = Stats{}
	a.sessionID = uuid.NewString()
	sessionID := a.sessionID
	a.mu.Unlock()

	if previous != StateEmpty {
		a.emitTransitions(sessionID, [][2]State{{previous, StateEmpty}})
	}
}

func (a *Assembler) outcomeLocked(out Outcome) Outcome {
	out.Known, out.Total = a.decoder.Progress()
	return out
}

func (a *Assembler) emitTransitions(sessionID string, transitions [][2]State) {
	for _, tr := range transitions {
		if a.opts.onState != nil {
			a.opts.onState(tr[0], tr[1])
		}
		a.opts.logger.Debug("assembly state transition",
			log.String("session", sessionID),
			log.String("from", tr[0].String()),
			log.String("to", tr[1].String()),
		)
	}
}
