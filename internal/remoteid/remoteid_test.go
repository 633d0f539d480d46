package remoteid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocator(t *testing.T) {
	a := New(200)
	assert.Equal(t, 200, a.Peek())

	for want := 200; want < 210; want++ {
		assert.Equal(t, want, a.Next())
	}
	assert.Equal(t, 210, a.Peek())
}

func TestAllocator_NegativeStart(t *testing.T) {
	a := New(-1)
	assert.Equal(t, -1, a.Next())
	assert.Equal(t, 0, a.Next())
}
