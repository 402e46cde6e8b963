package bitwire

import "fmt"

// reorderPairs returns, for every position 0..size-1, which old index's bit
// should land there: pairs[newPos] = oldIdx. perm gives the destination for
// old indices 0..len(perm)-1 explicitly; the remaining old indices
// (len(perm)..size-1) fill whatever destination positions perm didn't
// claim, in ascending order of both old index and destination.
//
// This is the sole implementation backing Bits.Reorder / Bits.Unreorder and
// RecordDef's _reorder support. The permutation convention is fixed: P[i]
// is the destination of bit i on encode, the one unambiguous choice
// between the two conventions in circulation (see DESIGN.md's Open
// Question notes).
func reorderPairs(perm []int, size int) ([]int, error) {
	if len(perm) > size {
		return nil, fmt.Errorf("%w: permutation longer than bit length %d", ErrBadReorder, size)
	}
	seen := make(map[int]bool, len(perm))
	for _, p := range perm {
		if p < 0 || p >= size {
			return nil, fmt.Errorf("%w: index %d out of bounds for length %d", ErrBadReorder, p, size)
		}
		if seen[p] {
			return nil, fmt.Errorf("%w: duplicate destination index %d", ErrBadReorder, p)
		}
		seen[p] = true
	}

	pairs := make([]int, size)
	claimed := make([]bool, size)
	for oldIdx, newPos := range perm {
		pairs[newPos] = oldIdx
		claimed[newPos] = true
	}

	nextOld := len(perm)
	for newPos := 0; newPos < size; newPos++ {
		if claimed[newPos] {
			continue
		}
		pairs[newPos] = nextOld
		nextOld++
	}
	return pairs, nil
}

// validateReorder checks perm against the reorder constraints without
// performing the permutation: every index in [0, length), no duplicates,
// and perm no longer than length. Used by RecordDef construction to reject
// a malformed _reorder at schema-compile time rather than at first encode.
func validateReorder(perm []int, length int) error {
	_, err := reorderPairs(perm, length)
	return err
}
