package kerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := New(OutOfMemory, "graph.Create", nil)
	assert.True(t, errors.Is(err, ErrOutOfMemory))
	assert.False(t, errors.Is(err, ErrInvalidArg))
}

func TestErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("allocator exhausted")
	err := New(OutOfMemory, "graph.Create", cause)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "graph.Create")
	assert.Contains(t, err.Error(), "out of memory")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "would block", WouldBlock.String())
	assert.Equal(t, "unknown kind", Kind(99).String())
}
