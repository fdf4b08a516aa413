package fountain

import (
	"bytes"
	"errors"
	"testing"
)

func TestSplit_ThirtySevenBytes(t *testing.T) {
	payload := make([]byte, 37)
	for i := range payload {
		payload[i] = byte(i + 1)
	}

	enc, err := Split(payload, 10, 0)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if enc.Total() != 4 {
		t.Fatalf("Total() = %d, want 4", enc.Total())
	}

	last := enc.Fragment(3)
	if !bytes.Equal(last.Data[:7], payload[30:]) {
		t.Errorf("last fragment = %v, want %v", last.Data[:7], payload[30:])
	}
	if !bytes.Equal(last.Data[7:], []byte{0, 0, 0}) {
		t.Errorf("padding = %v, want zeros", last.Data[7:])
	}
	if last.PayloadLen != 37 {
		t.Errorf("PayloadLen = %d, want 37", last.PayloadLen)
	}
}

func TestSplit_Empty(t *testing.T) {
	enc, err := Split(nil, 10, 0)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if enc.Total() != 1 {
		t.Fatalf("Total() = %d, want 1", enc.Total())
	}
	f := enc.NextFragment()
	if !f.IsPure() || f.PayloadLen != 0 || len(f.Data) != 10 {
		t.Errorf("fragment = %+v, want one zero-length pure fragment", f)
	}
}

func TestSplit_InvalidFragmentLen(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := Split([]byte("x"), n, 0); !errors.Is(err, ErrInvalidFragmentLen) {
			t.Errorf("Split(len %d) error = %v, want ErrInvalidFragmentLen", n, err)
		}
	}
}

func TestEncoder_Sequence(t *testing.T) {
	enc, err := Split(bytes.Repeat([]byte("ab"), 25), 10, 3)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	for want := uint32(0); want < 12; want++ {
		if enc.Position() != want {
			t.Fatalf("Position() = %d, want %d", enc.Position(), want)
		}
		f := enc.NextFragment()
		if f.SeqNum != want {
			t.Fatalf("SeqNum = %d, want %d", f.SeqNum, want)
		}
		if f.IsPure() != (want < 5) {
			t.Fatalf("seq %d: IsPure() = %v", want, f.IsPure())
		}
	}

	enc.Reset()
	if enc.Position() != 0 {
		t.Errorf("Position() after Reset = %d, want 0", enc.Position())
	}
}

func TestEncoder_MixedIsXorOfCoverage(t *testing.T) {
	payload := []byte("0123456789abcdefghijABCDEFGHIJ!@#$%^&*()")
	enc, err := Split(payload, 10, 0)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	for seq := uint32(4); seq < 50; seq++ {
		f := enc.Fragment(seq)
		want := make([]byte, 10)
		for _, i := range f.Indexes() {
			xorInto(want, enc.Fragment(uint32(i)).Data)
		}
		if !bytes.Equal(f.Data, want) {
			t.Fatalf("seq %d: data %v, want %v", seq, f.Data, want)
		}
	}
}

func TestEncoder_Wraps(t *testing.T) {
	enc, err := Split([]byte("wrap"), 2, 0)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	enc.seq = ^uint32(0)
	_ = enc.NextFragment()
	if f := enc.NextFragment(); f.SeqNum != 0 || !f.IsPure() {
		t.Errorf("after wrap got seq %d, want pure fragment 0", f.SeqNum)
	}
}

func TestSplit_Limits(t *testing.T) {
	if _, err := Split(make([]byte, MaxTotal+1), 1, 0); !errors.Is(err, ErrTooManyFragments) {
		t.Errorf("Split(MaxTotal+1 fragments) error = %v, want ErrTooManyFragments", err)
	}
	if _, err := Split(make([]byte, MaxTotal), 1, 0); err != nil {
		t.Errorf("Split(MaxTotal fragments) error = %v", err)
	}
	if testing.Short() {
		t.Skip("skipping oversized payload allocation in short mode")
	}
	if _, err := Split(make([]byte, MaxPayloadLen+1), MaxPayloadLen, 0); !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("Split(MaxPayloadLen+1 bytes) error = %v, want ErrPayloadTooLarge", err)
	}
}
