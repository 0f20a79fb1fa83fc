// Package listmutex implements a FIFO wait-list mutex. Unlike
// tasmutex, waiters queue in strict arrival order: each Lock call
// supplies its own intrusive *Element, appends it to a singly-linked
// queue under an atomic exchange of the tail pointer, and then
// busy-waits, yielding to the current head's thread, until it becomes
// the head itself. Unlock advances the head to the holder's successor,
// or, when no waiter is queued behind it, releases the tail so the next
// Lock becomes the head directly.
package listmutex

import (
	"github.com/joeycumines/go-korecore/katomic"
	"github.com/joeycumines/go-korecore/kerrors"
	"github.com/joeycumines/go-korecore/ksched"
)

// Element is the intrusive queue node a caller supplies to Lock. Its
// zero value is ready to use; one Element must not be reused by two
// concurrent Lock calls.
type Element struct {
	next katomic.Ptr[Element]
	wake ksched.Handle
}

// ListMutex is a FIFO, unbounded mutex: waiters are granted the lock
// in the order they called Lock.
type ListMutex struct {
	current katomic.Ptr[Element]
	last    katomic.Ptr[Element]
}

// New returns an unlocked ListMutex.
func New() *ListMutex {
	return &ListMutex{}
}

// Lock enqueues elem and busy-waits until it is at the head of the
// queue, yielding to the current head's thread (per sched) between
// attempts. elem must not be reused until the matching Unlock call
// that dequeues it returns.
func Lock(m *ListMutex, elem *Element, sched ksched.Scheduler) error {
	if m == nil || elem == nil {
		return kerrors.New(kerrors.InvalidArg, "listmutex.Lock", nil)
	}
	if sched == nil {
		sched = ksched.Goroutine{}
	}

	elem.wake = sched.CurrentThread()
	elem.next.Store(nil)

	prev := m.last.Swap(elem)
	if prev != nil {
		prev.next.Store(elem)
	} else {
		m.current.Store(elem)
	}

	for m.current.Load() != elem {
		if head := m.current.Load(); head != nil {
			sched.YieldTo(head.wake)
		}
	}
	return nil
}

// Unlock advances the queue head to the current head's successor,
// granting the lock to whichever Lock call enqueued next (if any).
// Unlock must be called by the holder only.
func Unlock(m *ListMutex) error {
	if m == nil {
		return kerrors.New(kerrors.InvalidArg, "listmutex.Unlock", nil)
	}
	head := m.current.Load()
	if head == nil {
		return nil
	}
	next := head.next.Load()
	if next == nil {
		// No successor linked yet. Clear the head while head still holds
		// the tail, then release the tail; if another Lock already took
		// the tail, wait for its forward link and hand the lock to it.
		m.current.Store(nil)
		if m.last.CompareAndSwap(head, nil) {
			return nil
		}
		for next == nil {
			next = head.next.Load()
		}
	}
	m.current.Store(next)
	return nil
}
