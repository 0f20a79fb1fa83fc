// Package tasmutex implements a test-and-set mutex that differs from
// spinlock only in what it does on contention: instead of spinning
// blind, it records which thread currently holds the lock and yields
// to that thread specifically, via ksched, on every failed attempt.
package tasmutex

import (
	"github.com/joeycumines/go-korecore/katomic"
	"github.com/joeycumines/go-korecore/kerrors"
	"github.com/joeycumines/go-korecore/ksched"
)

// Mutex is a test-and-set lock that yields to its current holder on
// contention, rather than spinning blind like Spinlock.
type Mutex struct {
	locked katomic.Flag
	wake   katomic.Ptr[ksched.Handle]
}

// New returns an unlocked Mutex. A zero-value Mutex is also directly
// usable. The Scheduler used for yield-to-owner is passed to each Lock
// call; a nil Scheduler falls back to ksched.Goroutine{}.
func New() *Mutex {
	return &Mutex{}
}

// Lock acquires the lock, yielding to the current holder (per sched)
// between attempts instead of spinning blind.
func Lock(l *Mutex, sched ksched.Scheduler) error {
	if l == nil {
		return kerrors.New(kerrors.InvalidArg, "tasmutex.Lock", nil)
	}
	if sched == nil {
		sched = ksched.Goroutine{}
	}
	for !l.locked.CompareAndSwap(false, true) {
		if h := l.wake.Load(); h != nil {
			sched.YieldTo(*h)
		}
	}
	self := sched.CurrentThread()
	l.wake.Store(&self)
	return nil
}

// Unlock releases the lock unconditionally.
func Unlock(l *Mutex) error {
	if l == nil {
		return kerrors.New(kerrors.InvalidArg, "tasmutex.Unlock", nil)
	}
	l.wake.Store(nil)
	l.locked.Store(false)
	return nil
}
