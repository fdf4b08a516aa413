package fountain

import "sort"

// DefaultMaxDegree bounds how many pure fragments a mixed fragment covers
// when the caller does not choose a limit.
const DefaultMaxDegree = 8

// ChooseFragments returns the sorted pure fragment indexes covered by the
// fragment with the given sequence number. Pure fragments cover themselves.
// A maxDegree of zero means "up to total".
func ChooseFragments(seq, total, digest uint32, maxDegree uint16) []int {
	if total == 0 {
		return nil
	}
	if seq < total {
		return []int{int(seq)}
	}

	n := int(total)
	limit := n
	if maxDegree > 0 && int(maxDegree) < limit {
		limit = int(maxDegree)
	}

	rng := newXoshiro256(seedFor(digest, seq))
	degree := chooseDegree(rng, limit)

	// Partial Fisher-Yates over 0..n-1. Only swapped slots are stored, so
	// the cost follows the degree rather than the total.
	swapped := make(map[int]int, 2*degree)
	at := func(i int) int {
		if v, ok := swapped[i]; ok {
			return v
		}
		return i
	}
	chosen := make([]int, degree)
	for k := 0; k < degree; k++ {
		j := k + rng.intn(n-k)
		vk, vj := at(k), at(j)
		swapped[k], swapped[j] = vj, vk
		chosen[k] = vj
	}

	sort.Ints(chosen)
	return chosen
}

// chooseDegree samples d in 1..limit with weight 1/d.
func chooseDegree(rng *xoshiro256, limit int) int {
	var sum float64
	for d := 1; d <= limit; d++ {
		sum += 1 / float64(d)
	}

	r := rng.float64() * sum
	var cum float64
	for d := 1; d <= limit; d++ {
		cum += 1 / float64(d)
		if r < cum {
			return d
		}
	}
	return limit
}
