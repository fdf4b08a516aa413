// Package fountain implements the fragment codec behind animated QR transfers.
//
// A payload is split into Total fixed-length pure fragments. After the pure
// fragments, an [Encoder] keeps producing mixed fragments forever: each is the
// XOR of a subset of pure fragments. The subset is a pure function of the
// payload digest, the sequence number and the maximum degree, so a [Decoder]
// recomputes it from the frame alone and no coverage list travels on the wire.
//
// # Frames
//
// Every fragment is carried as one text frame:
//
//	QRS:<seq>-<total>/<BASE32 BODY>
//
// The body is unpadded RFC 4648 base32 of a big-endian record (seq, total,
// payload length, digest, max degree, fragment bytes) followed by a CRC32 of
// the record. Every character of a frame is in the QR alphanumeric set.
// Parsing is case-insensitive.
//
// # Decoding
//
// The decoder accepts fragments in any order and any multiplicity. Mixed
// fragments are reduced by known pure fragments and by other retained mixed
// fragments whose coverage is a strict subset of theirs. Every merge cascades
// until one pass over the retained fragments produces nothing new.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package fountain
