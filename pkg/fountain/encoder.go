package fountain

// Encoder produces the endless frame stream for one payload. Sequence numbers
// 0..Total-1 are the pure fragments in order; every later number is a mixed
// fragment. The 32-bit sequence wraps, so the stream is cyclic.
//
// An Encoder holds no timer: each NextPart call advances by one frame.
// It is not safe for concurrent use.
type Encoder struct {
	key  SessionKey
	pure [][]byte
	seq  uint32
}

// Split partitions payload into fragments of fragmentLen bytes and returns an
// encoder positioned at the first pure fragment. A maxDegree of zero lets
// mixed fragments cover up to every pure fragment.
func Split(payload []byte, fragmentLen int, maxDegree uint16) (*Encoder, error) {
	if fragmentLen <= 0 {
		return nil, ErrInvalidFragmentLen
	}
	if len(payload) > MaxPayloadLen {
		return nil, ErrPayloadTooLarge
	}
	if fragmentCount(len(payload), fragmentLen) > MaxTotal {
		return nil, ErrTooManyFragments
	}

	pure := partition(payload, fragmentLen)
	return &Encoder{
		key: SessionKey{
			Total:       uint32(len(pure)),
			PayloadLen:  uint32(len(payload)),
			Digest:      Digest(payload),
			MaxDegree:   maxDegree,
			FragmentLen: fragmentLen,
		},
		pure: pure,
	}, nil
}

// Key returns the session identity shared by every fragment of this encoder.
func (e *Encoder) Key() SessionKey {
	return e.key
}

// Total returns the number of pure fragments.
func (e *Encoder) Total() int {
	return len(e.pure)
}

// Position returns the sequence number NextPart will emit next.
func (e *Encoder) Position() uint32 {
	return e.seq
}

// Reset rewinds the stream to pure fragment 0.
func (e *Encoder) Reset() {
	e.seq = 0
}

// Fragment materializes the fragment with the given sequence number without
// moving the stream.
func (e *Encoder) Fragment(seq uint32) Fragment {
	data := make([]byte, e.key.FragmentLen)
	for _, i := range ChooseFragments(seq, e.key.Total, e.key.Digest, e.key.MaxDegree) {
		xorInto(data, e.pure[i])
	}
	return Fragment{
		SeqNum:     seq,
		Total:      e.key.Total,
		PayloadLen: e.key.PayloadLen,
		Digest:     e.key.Digest,
		MaxDegree:  e.key.MaxDegree,
		Data:       data,
	}
}

// NextFragment returns the fragment at the current position and advances.
func (e *Encoder) NextFragment() Fragment {
	f := e.Fragment(e.seq)
	e.seq++
	return f
}

// NextPart returns the next encoded frame and advances.
func (e *Encoder) NextPart() string {
	return EncodeFrame(e.NextFragment())
}
