package bitwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSiblingProxyGetAfterSet(t *testing.T) {
	p := newSiblingProxy()
	p.set("a", uint64(7))
	assert.True(t, p.Has("a"))
	assert.Equal(t, uint64(7), p.Get("a"))
	assert.Equal(t, []string{"a"}, p.Names())
}

func TestSiblingProxyGetUndecodedPanics(t *testing.T) {
	p := newSiblingProxy()
	assert.False(t, p.Has("missing"))
	assert.Panics(t, func() { p.Get("missing") })
}

func TestSiblingProxyPreservesInsertionOrder(t *testing.T) {
	p := newSiblingProxy()
	p.set("z", 1)
	p.set("a", 2)
	p.set("m", 3)
	assert.Equal(t, []string{"z", "a", "m"}, p.Names())
}
