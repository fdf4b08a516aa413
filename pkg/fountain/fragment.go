package fountain

import "hash/crc32"

const (
	// MaxTotal bounds the number of pure fragments in one session.
	MaxTotal = 1 << 16

	// MaxPayloadLen bounds the payload size in bytes.
	MaxPayloadLen = 64 << 20
)

// SessionKey identifies the payload a fragment was derived from. Every
// fragment of one payload carries the same key.
type SessionKey struct {
	Total       uint32
	PayloadLen  uint32
	Digest      uint32
	MaxDegree   uint16
	FragmentLen int
}

// Fragment is one unit of a split payload, pure or mixed.
type Fragment struct {
	// SeqNum is the position in the encoder stream. Values below Total are pure.
	SeqNum uint32

	// Total is the number of pure fragments.
	Total uint32

	// PayloadLen is the unpadded payload length in bytes.
	PayloadLen uint32

	// Digest is the CRC32-IEEE of the whole payload.
	Digest uint32

	// MaxDegree bounds how many pure fragments a mixed fragment covers.
	MaxDegree uint16

	// Data holds exactly FragmentLen bytes.
	Data []byte
}

// IsPure reports whether the fragment is an unmodified slice of the payload.
func (f Fragment) IsPure() bool {
	return f.SeqNum < f.Total
}

// Indexes returns the pure fragment indexes this fragment covers.
func (f Fragment) Indexes() []int {
	return ChooseFragments(f.SeqNum, f.Total, f.Digest, f.MaxDegree)
}

// Key returns the session identity of the fragment.
func (f Fragment) Key() SessionKey {
	return SessionKey{
		Total:       f.Total,
		PayloadLen:  f.PayloadLen,
		Digest:      f.Digest,
		MaxDegree:   f.MaxDegree,
		FragmentLen: len(f.Data),
	}
}

// Digest computes the payload digest carried by every fragment.
func Digest(payload []byte) uint32 {
	return crc32.ChecksumIEEE(payload)
}

// fragmentCount returns ceil(payloadLen/fragmentLen), never less than one.
func fragmentCount(payloadLen, fragmentLen int) int {
	if payloadLen == 0 {
		return 1
	}
	return (payloadLen-1)/fragmentLen + 1
}

// partition splits payload into zero-padded pure fragments.
func partition(payload []byte, fragmentLen int) [][]byte {
	n := fragmentCount(len(payload), fragmentLen)
	frags := make([][]byte, n)
	for i := range frags {
		frag := make([]byte, fragmentLen)
		start := i * fragmentLen
		if start < len(payload) {
			copy(frag, payload[start:])
		}
		frags[i] = frag
	}
	return frags
}

// validKey reports whether total and payload length agree with the fragment
// length and stay within MaxTotal and MaxPayloadLen.
func validKey(k SessionKey) bool {
	if k.Total == 0 || k.FragmentLen <= 0 {
		return false
	}
	if k.Total > MaxTotal || k.PayloadLen > MaxPayloadLen {
		return false
	}
	return fragmentCount(int(k.PayloadLen), k.FragmentLen) == int(k.Total)
}

// xorInto XORs src into dst byte by byte. Both have the session fragment length.
func xorInto(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}
