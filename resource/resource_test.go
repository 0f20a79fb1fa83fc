package resource

import (
	"sync"
	"testing"

	"github.com/joeycumines/go-korecore/driverregistry"
	"github.com/joeycumines/go-korecore/kerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCallsDriverInit(t *testing.T) {
	initCalled := false
	def := &driverregistry.Definition{
		Init: func(state any, args any) error {
			initCalled = true
			return nil
		},
	}
	require.NoError(t, driverregistry.Register(driverregistry.GroupBaseDevice, 1, def))

	r, err := Init(driverregistry.GroupBaseDevice, 1, nil)
	require.NoError(t, err)
	assert.True(t, initCalled)
	assert.NotZero(t, r.ID)
}

func TestInitPropagatesDriverError(t *testing.T) {
	wantErr := kerrors.New(kerrors.InvalidArg, "driver.Init", nil)
	def := &driverregistry.Definition{
		Init: func(state any, args any) error { return wantErr },
	}
	require.NoError(t, driverregistry.Register(driverregistry.GroupBaseDevice, 2, def))

	_, err := Init(driverregistry.GroupBaseDevice, 2, nil)
	assert.ErrorIs(t, err, wantErr)
}

func TestInitUnregisteredDriverFails(t *testing.T) {
	_, err := Init(driverregistry.GroupBaseDevice, 99999, nil)
	assert.ErrorIs(t, err, kerrors.ErrNotFound)
}

func TestUninitRefusesWhileReferenced(t *testing.T) {
	uninitCalled := false
	def := &driverregistry.Definition{
		Init: func(state any, args any) error { return nil },
		Uninit: func(state any) error {
			uninitCalled = true
			return nil
		},
	}
	require.NoError(t, driverregistry.Register(driverregistry.GroupBaseDevice, 3, def))

	r, err := Init(driverregistry.GroupBaseDevice, 3, nil)
	require.NoError(t, err)

	ref, err := Reference(r, 42, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 42, ref.Owner())
	assert.ErrorIs(t, Uninit(r), kerrors.ErrInUse)
	assert.False(t, uninitCalled)

	require.NoError(t, Unreference(ref))
	assert.NoError(t, Uninit(r))
	assert.True(t, uninitCalled)
}

// TestUninitNegotiatesSingleReferenceViaSignal exercises the signal
// path directly: with exactly one Reference attached, Uninit asks it
// to Close instead of refusing outright, and tearing down succeeds or
// aborts purely on that callback's answer, with no explicit
// Unreference call at all.
func TestUninitNegotiatesSingleReferenceViaSignal(t *testing.T) {
	uninitCalled := false
	def := &driverregistry.Definition{
		Init: func(state any, args any) error { return nil },
		Uninit: func(state any) error {
			uninitCalled = true
			return nil
		},
	}
	require.NoError(t, driverregistry.Register(driverregistry.GroupBaseDevice, 4, def))

	r, err := Init(driverregistry.GroupBaseDevice, 4, nil)
	require.NoError(t, err)

	accept := false
	signalled := 0
	ref, err := Reference(r, 7, func(ev Event, arg any) bool {
		signalled++
		assert.Equal(t, Close, ev)
		return accept
	})
	require.NoError(t, err)

	assert.ErrorIs(t, Uninit(r), kerrors.ErrInUse)
	assert.Equal(t, 1, signalled)
	assert.False(t, uninitCalled)
	assert.EqualValues(t, 1, r.RefCount()) // refused signal leaves the reference attached

	accept = true
	require.NoError(t, Uninit(r))
	assert.Equal(t, 2, signalled)
	assert.True(t, uninitCalled)
	assert.EqualValues(t, 0, r.RefCount())
	_ = ref
}

func TestUninitRefusesOutrightWithMultipleReferences(t *testing.T) {
	def := &driverregistry.Definition{
		Init:   func(state any, args any) error { return nil },
		Uninit: func(state any) error { return nil },
	}
	require.NoError(t, driverregistry.Register(driverregistry.GroupBaseDevice, 5, def))

	r, err := Init(driverregistry.GroupBaseDevice, 5, nil)
	require.NoError(t, err)

	signalled := false
	accepting := func(Event, any) bool { signalled = true; return true }
	ref1, err := Reference(r, 1, accepting)
	require.NoError(t, err)
	ref2, err := Reference(r, 2, accepting)
	require.NoError(t, err)

	assert.ErrorIs(t, Uninit(r), kerrors.ErrInUse)
	assert.False(t, signalled) // two or more references refuse outright, no negotiation

	require.NoError(t, Unreference(ref1))
	require.NoError(t, Unreference(ref2))
	assert.NoError(t, Uninit(r))
}

// TestUnreferenceAdjacentConcurrently attaches three references (so
// the middle one has a live neighbor on both sides) and unreferences
// all of them from separate goroutines at once. Run with -race, this
// is the test that would catch both a lock-order deadlock between
// adjacent unlinks and any unsynchronized access to prev/next.
func TestUnreferenceAdjacentConcurrently(t *testing.T) {
	def := &driverregistry.Definition{
		Init:   func(state any, args any) error { return nil },
		Uninit: func(state any) error { return nil },
	}
	require.NoError(t, driverregistry.Register(driverregistry.GroupBaseDevice, 6, def))

	r, err := Init(driverregistry.GroupBaseDevice, 6, nil)
	require.NoError(t, err)

	refs := make([]*Reference, 3)
	for i := range refs {
		ref, err := Reference(r, uint64(i), nil)
		require.NoError(t, err)
		refs[i] = ref
	}
	require.EqualValues(t, 3, r.RefCount())

	var wg sync.WaitGroup
	for _, ref := range refs {
		wg.Add(1)
		go func(ref *Reference) {
			defer wg.Done()
			assert.NoError(t, Unreference(ref))
		}(ref)
	}
	wg.Wait()

	assert.Zero(t, r.RefCount())
	assert.NoError(t, Uninit(r))
}
