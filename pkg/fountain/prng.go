package fountain

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/crypto/blake2b"
)

// xoshiro256 is xoshiro256** seeded from a BLAKE2b-256 digest. The generator
// and every sampling step built on it are part of the frame format: changing
// either breaks interoperability with existing receivers.
type xoshiro256 struct {
	s [4]uint64
}

func newXoshiro256(seed [32]byte) *xoshiro256 {
	x := &xoshiro256{}
	for i := range x.s {
		x.s[i] = binary.BigEndian.Uint64(seed[i*8:])
	}
	if x.s == [4]uint64{} {
		x.s[0] = 1
	}
	return x
}

// seedFor derives the generator seed for a mixed fragment.
func seedFor(digest, seq uint32) [32]byte {
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[0:4], digest)
	binary.BigEndian.PutUint32(buf[4:8], seq)
	return blake2b.Sum256(buf[:])
}

func (x *xoshiro256) next() uint64 {
	result := bits.RotateLeft64(x.s[1]*5, 7) * 9
	t := x.s[1] << 17

	x.s[2] ^= x.s[0]
	x.s[3] ^= x.s[1]
	x.s[1] ^= x.s[2]
	x.s[0] ^= x.s[3]
	x.s[2] ^= t
	x.s[3] = bits.RotateLeft64(x.s[3], 45)

	return result
}

// float64 returns a value in [0, 1) built from the top 53 bits.
func (x *xoshiro256) float64() float64 {
	return float64(x.next()>>11) / (1 << 53)
}

// intn returns a value in [0, n). n must be positive.
func (x *xoshiro256) intn(n int) int {
	return int(x.next() % uint64(n))
}
