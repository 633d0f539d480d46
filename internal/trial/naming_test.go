package trial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuffix(t *testing.T) {
	tests := []struct {
		index, numTrials int
		want             string
	}{
		{3, 10, "03"},
		{10, 10, "10"},
		{3, 100, "003"},
		{1, 9, "1"},
		{42, 1000, "0042"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Suffix(tt.index, tt.numTrials))
	}
}

func TestPadWidth(t *testing.T) {
	assert.Equal(t, 1, PadWidth(1))
	assert.Equal(t, 2, PadWidth(10))
	assert.Equal(t, 2, PadWidth(99))
	assert.Equal(t, 3, PadWidth(100))
}
