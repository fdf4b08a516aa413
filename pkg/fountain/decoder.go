package fountain

import (
	"bytes"
	"sort"
	"strconv"
	"strings"
)

// MergeStatus classifies the result of Decoder.Merge.
type MergeStatus int

const (
	// MergeProgress means the fragment was accepted. It may or may not carry
	// new information; see MergeResult.NewInfo.
	MergeProgress MergeStatus = iota

	// MergeAlreadyComplete means the decoder had every pure fragment already.
	MergeAlreadyComplete

	// MergeRejected means the fragment belongs to another session.
	MergeRejected
)

// String returns a human-readable representation of the status.
func (s MergeStatus) String() string {
	switch s {
	case MergeProgress:
		return "Progress"
	case MergeAlreadyComplete:
		return "AlreadyComplete"
	case MergeRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// MergeResult reports what one Merge call did.
type MergeResult struct {
	Status MergeStatus

	// NewInfo is true when a pure fragment was recovered or a new mixed
	// fragment was retained.
	NewInfo bool

	// Completed is true only for the merge that recovered the last pure fragment.
	Completed bool

	// Err explains a rejection.
	Err error
}

// mixedPart is a retained, partially reduced mixed fragment.
type mixedPart struct {
	indexes []int
	data    []byte
}

func (m *mixedPart) id() string {
	var b strings.Builder
	for i, idx := range m.indexes {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(idx))
	}
	return b.String()
}

// Decoder is the receive side of the codec for one session. The first
// fragment merged fixes the session key; fragments with any other key are
// rejected and never change the decoder.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	key    SessionKey
	hasKey bool

	pure  [][]byte
	known int

	mixed    []*mixedPart
	complete bool
}

// NewDecoder returns an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Key returns the recorded session key and whether one has been recorded.
func (d *Decoder) Key() (SessionKey, bool) {
	return d.key, d.hasKey
}

// Complete reports whether every pure fragment is known.
func (d *Decoder) Complete() bool {
	return d.complete
}

// Progress returns the number of known pure fragments and the total.
// Total is zero until the first fragment is merged.
func (d *Decoder) Progress() (known, total int) {
	return d.known, len(d.pure)
}

// Retained returns the number of mixed fragments waiting for more information.
func (d *Decoder) Retained() int {
	return len(d.mixed)
}

// EstimatedPercentComplete returns known/total in [0, 1].
func (d *Decoder) EstimatedPercentComplete() float64 {
	if len(d.pure) == 0 {
		return 0
	}
	return float64(d.known) / float64(len(d.pure))
}

// Merge folds one fragment into the decoder.
func (d *Decoder) Merge(f Fragment) MergeResult {
	key := f.Key()
	if !d.hasKey {
		if !validKey(key) {
			return MergeResult{Status: MergeRejected, Err: ErrMalformedFrame}
		}
		d.key = key
		d.hasKey = true
		d.pure = make([][]byte, key.Total)
	} else if key != d.key {
		err := ErrDigestMismatch
		if key.FragmentLen != d.key.FragmentLen && sameKeyIgnoringLen(key, d.key) {
			err = ErrFragmentLength
		}
		return MergeResult{Status: MergeRejected, Err: err}
	}

	if d.complete {
		return MergeResult{Status: MergeAlreadyComplete}
	}

	part := &mixedPart{
		indexes: f.Indexes(),
		data:    append([]byte(nil), f.Data...),
	}
	newInfo := d.absorb(part)
	if newInfo {
		d.cascade()
		if d.known < len(d.pure) && len(d.mixed) >= len(d.pure)-d.known {
			if d.eliminate() {
				d.cascade()
			}
		}
	}

	res := MergeResult{Status: MergeProgress, NewInfo: newInfo}
	if d.known == len(d.pure) {
		d.complete = true
		d.mixed = nil
		res.Completed = true
	}
	return res
}

// Result returns the reassembled payload.
func (d *Decoder) Result() ([]byte, error) {
	if !d.complete {
		return nil, ErrIncomplete
	}
	var buf bytes.Buffer
	buf.Grow(len(d.pure) * d.key.FragmentLen)
	for _, frag := range d.pure {
		buf.Write(frag)
	}
	payload := buf.Bytes()[:d.key.PayloadLen]
	if Digest(payload) != d.key.Digest {
		return nil, ErrCorruptPayload
	}
	return payload, nil
}

// absorb reduces part by known pure fragments and records what is left.
// It reports whether the decoder learned anything.
func (d *Decoder) absorb(part *mixedPart) bool {
	d.reduceByKnown(part)
	switch len(part.indexes) {
	case 0:
		return false
	case 1:
		d.solve(part)
		return true
	}
	id := part.id()
	for _, m := range d.mixed {
		if m.id() == id {
			return false
		}
	}
	d.mixed = append(d.mixed, part)
	return true
}

// cascade re-reduces retained fragments until a pass makes no progress.
func (d *Decoder) cascade() {
	for progress := true; progress && d.known < len(d.pure); {
		progress = false

		kept := make([]*mixedPart, 0, len(d.mixed))
		for _, m := range d.mixed {
			if d.reduceByKnown(m) {
				progress = true
			}
			switch len(m.indexes) {
			case 0:
			case 1:
				d.solve(m)
				progress = true
			default:
				kept = append(kept, m)
			}
		}

		for _, m := range kept {
			for _, sub := range kept {
				if sub != m && isStrictSubset(sub.indexes, m.indexes) {
					xorInto(m.data, sub.data)
					m.indexes = difference(m.indexes, sub.indexes)
					progress = true
				}
			}
		}

		seen := make(map[string]struct{}, len(kept))
		d.mixed = d.mixed[:0]
		for _, m := range kept {
			id := m.id()
			if _, dup := seen[id]; dup || len(m.indexes) == 0 {
				continue
			}
			seen[id] = struct{}{}
			d.mixed = append(d.mixed, m)
		}
	}
}

// eliminate runs Gauss-Jordan elimination over GF(2) on the retained mixed
// fragments. Peeling alone stalls on sets such as {0,1,2} {0,3} {1,3} {2,3}
// that are solvable only together. Solved rows become pure fragments and the
// rest replace the retained set. It reports whether any fragment was solved.
func (d *Decoder) eliminate() bool {
	var unknown []int
	column := make(map[int]int)
	for _, m := range d.mixed {
		for _, i := range m.indexes {
			if _, ok := column[i]; !ok {
				column[i] = len(unknown)
				unknown = append(unknown, i)
			}
		}
	}

	words := (len(unknown) + 63) / 64
	rows := make([]gf2Row, len(d.mixed))
	for r, m := range d.mixed {
		bits := make([]uint64, words)
		for _, i := range m.indexes {
			c := column[i]
			bits[c/64] |= 1 << (c % 64)
		}
		rows[r] = gf2Row{bits: bits, data: append([]byte(nil), m.data...)}
	}

	rank := 0
	for c := 0; c < len(unknown) && rank < len(rows); c++ {
		pivot := -1
		for r := rank; r < len(rows); r++ {
			if rows[r].has(c) {
				pivot = r
				break
			}
		}
		if pivot < 0 {
			continue
		}
		rows[rank], rows[pivot] = rows[pivot], rows[rank]
		for r := range rows {
			if r != rank && rows[r].has(c) {
				rows[r].xor(&rows[rank])
			}
		}
		rank++
	}

	solved := false
	d.mixed = d.mixed[:0]
	for _, row := range rows[:rank] {
		var indexes []int
		for c := range unknown {
			if row.has(c) {
				indexes = append(indexes, unknown[c])
			}
		}
		part := &mixedPart{indexes: indexes, data: row.data}
		if len(indexes) == 1 {
			d.solve(part)
			solved = true
			continue
		}
		sort.Ints(part.indexes)
		d.mixed = append(d.mixed, part)
	}
	return solved
}

// gf2Row is one equation of the elimination: a coverage bitset over the
// unknown columns and the XOR of the covered fragments.
type gf2Row struct {
	bits []uint64
	data []byte
}

func (r *gf2Row) has(c int) bool {
	return r.bits[c/64]&(1<<(c%64)) != 0
}

func (r *gf2Row) xor(o *gf2Row) {
	for i := range r.bits {
		r.bits[i] ^= o.bits[i]
	}
	xorInto(r.data, o.data)
}

// reduceByKnown XORs out every known pure fragment covered by part.
// It reports whether any index was removed.
func (d *Decoder) reduceByKnown(part *mixedPart) bool {
	remaining := part.indexes[:0:0]
	for _, i := range part.indexes {
		if d.pure[i] != nil {
			xorInto(part.data, d.pure[i])
			continue
		}
		remaining = append(remaining, i)
	}
	changed := len(remaining) != len(part.indexes)
	part.indexes = remaining
	return changed
}

func (d *Decoder) solve(part *mixedPart) {
	i := part.indexes[0]
	if d.pure[i] != nil {
		return
	}
	d.pure[i] = part.data
	d.known++
}

func sameKeyIgnoringLen(a, b SessionKey) bool {
	a.FragmentLen = b.FragmentLen
	return a == b
}

// isStrictSubset reports whether sorted a is a proper subset of sorted b.
func isStrictSubset(a, b []int) bool {
	if len(a) >= len(b) {
		return false
	}
	j := 0
	for _, x := range a {
		for j < len(b) && b[j] < x {
			j++
		}
		if j == len(b) || b[j] != x {
			return false
		}
		j++
	}
	return true
}

// difference returns sorted a minus sorted b.
func difference(a, b []int) []int {
	out := make([]int, 0, len(a))
	j := 0
	for _, x := range a {
		for j < len(b) && b[j] < x {
			j++
		}
		if j < len(b) && b[j] == x {
			continue
		}
		out = append(out, x)
	}
	return out
}
