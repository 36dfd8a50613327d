package drbg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministic(t *testing.T) {
	assert := assert.New(t)

	a, b := make([]byte, 100), make([]byte, 100)
	New([]byte("seed")).Read(a)
	New([]byte("seed")).Read(b)
	assert.Equal(a, b)

	New([]byte("other")).Read(b)
	assert.NotEqual(a, b)

	r := NewFromUint64(7)
	x, y := make([]byte, 32), make([]byte, 32)
	r.Read(x)
	r.Read(y)
	assert.NotEqual(x, y)
}
