package fountain

import (
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strconv"
	"strings"
)

// FramePrefix starts every encoded frame.
const FramePrefix = "QRS:"

const (
	headerSize   = 4 + 4 + 4 + 4 + 2
	checksumSize = 4
)

var bodyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// EncodeFrame renders a fragment as frame text.
func EncodeFrame(f Fragment) string {
	body := make([]byte, headerSize+len(f.Data)+checksumSize)
	binary.BigEndian.PutUint32(body[0:4], f.SeqNum)
	binary.BigEndian.PutUint32(body[4:8], f.Total)
	binary.BigEndian.PutUint32(body[8:12], f.PayloadLen)
	binary.BigEndian.PutUint32(body[12:16], f.Digest)
	binary.BigEndian.PutUint16(body[16:18], f.MaxDegree)
	copy(body[headerSize:], f.Data)

	sumAt := len(body) - checksumSize
	binary.BigEndian.PutUint32(body[sumAt:], crc32.ChecksumIEEE(body[:sumAt]))

	return FramePrefix + strconv.FormatUint(uint64(f.SeqNum), 10) + "-" +
		strconv.FormatUint(uint64(f.Total), 10) + "/" + bodyEncoding.EncodeToString(body)
}

// ParseFrame decodes frame text into a fragment. Case and surrounding
// whitespace are ignored. Errors wrap ErrMalformedFrame.
func ParseFrame(text string) (Fragment, error) {
	s := strings.ToUpper(strings.TrimSpace(text))
	if !strings.HasPrefix(s, FramePrefix) {
		return Fragment{}, fmt.Errorf("%w: missing %q prefix", ErrMalformedFrame, FramePrefix)
	}
	s = s[len(FramePrefix):]

	head, encoded, ok := strings.Cut(s, "/")
	if !ok {
		return Fragment{}, fmt.Errorf("%w: missing body separator", ErrMalformedFrame)
	}
	seqText, totalText, ok := strings.Cut(head, "-")
	if !ok {
		return Fragment{}, fmt.Errorf("%w: bad sequence header %q", ErrMalformedFrame, head)
	}
	seq, err := strconv.ParseUint(seqText, 10, 32)
	if err != nil {
		return Fragment{}, fmt.Errorf("%w: sequence number: %v", ErrMalformedFrame, err)
	}
	total, err := strconv.ParseUint(totalText, 10, 32)
	if err != nil {
		return Fragment{}, fmt.Errorf("%w: total: %v", ErrMalformedFrame, err)
	}

	body, err := bodyEncoding.DecodeString(encoded)
	if err != nil {
		return Fragment{}, fmt.Errorf("%w: body: %v", ErrMalformedFrame, err)
	}
	if len(body) <= headerSize+checksumSize {
		return Fragment{}, fmt.Errorf("%w: body too short (%d bytes)", ErrMalformedFrame, len(body))
	}

	sumAt := len(body) - checksumSize
	if crc32.ChecksumIEEE(body[:sumAt]) != binary.BigEndian.Uint32(body[sumAt:]) {
		return Fragment{}, ErrChecksum
	}

	f := Fragment{
		SeqNum:     binary.BigEndian.Uint32(body[0:4]),
		Total:      binary.BigEndian.Uint32(body[4:8]),
		PayloadLen: binary.BigEndian.Uint32(body[8:12]),
		Digest:     binary.BigEndian.Uint32(body[12:16]),
		MaxDegree:  binary.BigEndian.Uint16(body[16:18]),
		Data:       append([]byte(nil), body[headerSize:sumAt]...),
	}
	if uint64(f.SeqNum) != seq || uint64(f.Total) != total {
		return Fragment{}, fmt.Errorf("%w: header %d-%d disagrees with body %d-%d",
			ErrMalformedFrame, seq, total, f.SeqNum, f.Total)
	}
	if !validKey(f.Key()) {
		return Fragment{}, fmt.Errorf("%w: %d fragments of %d bytes for a %d byte payload",
			ErrMalformedFrame, f.Total, len(f.Data), f.PayloadLen)
	}
	return f, nil
}
