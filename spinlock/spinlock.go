// Package spinlock implements the plainest lock in this module: a
// single test-and-set bit, busy-waited with no yield and no queueing.
package spinlock

import (
	"github.com/joeycumines/go-korecore/katomic"
	"github.com/joeycumines/go-korecore/kerrors"
)

// Spinlock is a test-and-set lock: Lock busy-waits, spinning on a CAS
// of a single flag, until it observes the lock free. There is no
// fairness, no yield, and no queueing; hold it for very short
// critical sections only.
type Spinlock struct {
	locked katomic.Flag
}

// New returns an unlocked Spinlock. A zero-value Spinlock is also
// directly usable.
func New() *Spinlock {
	return &Spinlock{}
}

// Lock spins until it acquires the lock. Returns InvalidArg if l is
// nil.
func Lock(l *Spinlock) error {
	if l == nil {
		return kerrors.New(kerrors.InvalidArg, "spinlock.Lock", nil)
	}
	for !l.locked.CompareAndSwap(false, true) {
		// pure spin, no yield
	}
	return nil
}

// Unlock clears the lock. Unlocking an already-unlocked Spinlock is a
// no-op.
func Unlock(l *Spinlock) error {
	if l == nil {
		return kerrors.New(kerrors.InvalidArg, "spinlock.Unlock", nil)
	}
	l.locked.Store(false)
	return nil
}

// TryLock attempts to acquire the lock without spinning, reporting
// whether it succeeded, for callers that need to poll rather than
// block.
func TryLock(l *Spinlock) (bool, error) {
	if l == nil {
		return false, kerrors.New(kerrors.InvalidArg, "spinlock.TryLock", nil)
	}
	return l.locked.CompareAndSwap(false, true), nil
}
