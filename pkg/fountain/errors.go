package fountain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedFrame is returned when frame text cannot be parsed.
	ErrMalformedFrame = errors.New("fountain: malformed frame")

	// ErrChecksum is returned when a frame body fails its CRC32 check.
	ErrChecksum = fmt.Errorf("%w: checksum mismatch", ErrMalformedFrame)

	// ErrSessionMismatch is returned when a fragment belongs to a different
	// payload than the one the decoder is assembling.
	ErrSessionMismatch = errors.New("fountain: fragment from another session")

	// ErrDigestMismatch is returned when digest, total, payload length or
	// max degree differ from the recorded session.
	ErrDigestMismatch = fmt.Errorf("%w: digest mismatch", ErrSessionMismatch)

	// ErrFragmentLength is returned when the fragment length differs from the
	// recorded session.
	ErrFragmentLength = fmt.Errorf("%w: fragment length mismatch", ErrSessionMismatch)

	// ErrInvalidFragmentLen is returned by Split for a non-positive fragment length.
	ErrInvalidFragmentLen = errors.New("fountain: fragment length must be positive")

	// ErrPayloadTooLarge is returned by Split when the payload exceeds MaxPayloadLen.
	ErrPayloadTooLarge = errors.New("fountain: payload too large")

	// ErrTooManyFragments is returned by Split when the payload would need more
	// than MaxTotal fragments at the requested fragment length.
	ErrTooManyFragments = errors.New("fountain: too many fragments")

	// ErrIncomplete is returned by Decoder.Result before every pure fragment is known.
	ErrIncomplete = errors.New("fountain: payload incomplete")

	// ErrCorruptPayload is returned when the reassembled payload does not match its digest.
	ErrCorruptPayload = errors.New("fountain: reassembled payload does not match digest")
)
