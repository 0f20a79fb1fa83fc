package ring

import (
	"testing"

	"github.com/joeycumines/go-korecore/kerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSlotsRejectsZero(t *testing.T) {
	_, err := NewSlots(0, 8)
	assert.Error(t, err)
	_, err = NewSlots(8, 0)
	assert.Error(t, err)
}

func TestAllocateWriteReadRoundTrip(t *testing.T) {
	s, err := NewSlots(4, 8)
	require.NoError(t, err)

	idx, err := s.Allocate(false)
	require.NoError(t, err)
	require.NoError(t, s.Write(idx, []byte("hi")))

	out, err := s.Read(idx)
	require.NoError(t, err)
	assert.Equal(t, "hi\x00\x00\x00\x00\x00\x00", string(out))
}

func TestNonBlockingAllocateFailsWhenFull(t *testing.T) {
	s, err := NewSlots(2, 4)
	require.NoError(t, err)

	idx1, err := s.Allocate(false)
	require.NoError(t, err)
	_, err = s.Allocate(false)
	require.NoError(t, err)

	_, err = s.Allocate(false)
	assert.ErrorIs(t, err, kerrors.ErrWouldBlock)

	require.NoError(t, s.Free(idx1))

	idx3, err := s.Allocate(false)
	assert.NoError(t, err)
	assert.Equal(t, 0, idx3, "the head index keeps advancing and wraps by the slot count")
}

func TestFreeUnblocksBlockingAllocate(t *testing.T) {
	s, err := NewSlots(1, 4)
	require.NoError(t, err)

	idx, err := s.Allocate(false)
	require.NoError(t, err)

	_, err = s.Allocate(false)
	assert.ErrorIs(t, err, kerrors.ErrWouldBlock)

	done := make(chan struct{})
	go func() {
		_, err := s.Allocate(true)
		assert.NoError(t, err)
		close(done)
	}()

	require.NoError(t, s.Free(idx))
	<-done
}
