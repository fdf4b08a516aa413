package fountain

import (
	"reflect"
	"testing"
)

func TestChooseFragments_Pure(t *testing.T) {
	for seq := uint32(0); seq < 5; seq++ {
		got := ChooseFragments(seq, 5, 0xdeadbeef, 3)
		if !reflect.DeepEqual(got, []int{int(seq)}) {
			t.Errorf("ChooseFragments(%d) = %v, want [%d]", seq, got, seq)
		}
	}
}

func TestChooseFragments_Deterministic(t *testing.T) {
	for seq := uint32(10); seq < 200; seq++ {
		a := ChooseFragments(seq, 10, 42, 4)
		b := ChooseFragments(seq, 10, 42, 4)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("seq %d: %v != %v", seq, a, b)
		}
	}
}

func TestChooseFragments_Bounds(t *testing.T) {
	tests := []struct {
		name      string
		total     uint32
		maxDegree uint16
		wantMax   int
	}{
		{"capped by max degree", 20, 3, 3},
		{"capped by total", 4, 10, 4},
		{"zero means total", 6, 0, 6},
		{"single fragment", 1, 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seq := tt.total; seq < tt.total+500; seq++ {
				got := ChooseFragments(seq, tt.total, 7, tt.maxDegree)
				if len(got) == 0 || len(got) > tt.wantMax {
					t.Fatalf("seq %d: degree %d outside 1..%d", seq, len(got), tt.wantMax)
				}
				for i, idx := range got {
					if idx < 0 || idx >= int(tt.total) {
						t.Fatalf("seq %d: index %d out of range", seq, idx)
					}
					if i > 0 && got[i-1] >= idx {
						t.Fatalf("seq %d: indexes not strictly increasing: %v", seq, got)
					}
				}
			}
		})
	}
}

func TestChooseFragments_DependsOnDigest(t *testing.T) {
	differ := false
	for seq := uint32(8); seq < 40; seq++ {
		if !reflect.DeepEqual(ChooseFragments(seq, 8, 1, 0), ChooseFragments(seq, 8, 2, 0)) {
			differ = true
			break
		}
	}
	if !differ {
		t.Error("coverage identical for two digests across 32 mixed fragments")
	}
}

func TestChooseFragments_ZeroTotal(t *testing.T) {
	if got := ChooseFragments(3, 0, 1, 1); got != nil {
		t.Errorf("ChooseFragments with zero total = %v, want nil", got)
	}
}

func TestSubsetHelpers(t *testing.T) {
	if !isStrictSubset([]int{1, 3}, []int{0, 1, 2, 3}) {
		t.Error("[1 3] should be a strict subset of [0 1 2 3]")
	}
	if isStrictSubset([]int{1, 3}, []int{1, 3}) {
		t.Error("equal sets are not strict subsets")
	}
	if isStrictSubset([]int{1, 4}, []int{0, 1, 2, 3}) {
		t.Error("[1 4] is not a subset of [0 1 2 3]")
	}
	if got := difference([]int{0, 1, 2, 3}, []int{1, 3}); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Errorf("difference = %v, want [0 2]", got)
	}
}
