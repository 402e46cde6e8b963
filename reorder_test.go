package bitwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReorderPairsFillsUnclaimedPositionsInOrder(t *testing.T) {
	// perm names destinations for old indices 0 and 1 only; old indices
	// 2 and 3 must fill whatever destinations remain, in ascending order.
	pairs, err := reorderPairs([]int{3, 2}, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 1, 0}, pairs)
}

func TestReorderPairsRejectsOutOfBounds(t *testing.T) {
	_, err := reorderPairs([]int{4}, 4)
	assert.ErrorIs(t, err, ErrBadReorder)
}

func TestReorderPairsRejectsDuplicates(t *testing.T) {
	_, err := reorderPairs([]int{1, 1}, 4)
	assert.ErrorIs(t, err, ErrBadReorder)
}

func TestReorderPairsRejectsOverlongPermutation(t *testing.T) {
	_, err := reorderPairs([]int{0, 1, 2, 3, 4}, 4)
	assert.ErrorIs(t, err, ErrBadReorder)
}

func TestValidateReorderAcceptsWellFormedPermutation(t *testing.T) {
	// An identity permutation over every bit of a 4-bit record is well
	// formed.
	err := validateReorder([]int{0, 1, 2, 3}, 4)
	assert.NoError(t, err)
}
