// Package ksched models the kernel scheduler collaborator: the
// current thread's handle and id, plus a directed yield. The list
// mutex and ticket lock depend on this for their suspension points;
// neither implements real blocking itself, both just yield to
// whatever thread the scheduler says currently owns the resource
// they're waiting on.
package ksched

import (
	"runtime"
	"sync/atomic"
)

// Handle identifies a logical execution context, opaque to this package.
// Comparable, so it can be used as a map key or compared with ==.
type Handle any

// Scheduler is the injectable stand-in for the kernel scheduler.
type Scheduler interface {
	// CurrentThread returns a handle identifying the calling thread.
	CurrentThread() Handle
	// CurrentTID returns a numeric id for the calling thread.
	CurrentTID() uint64
	// YieldTo hints that the scheduler should run the given thread (or,
	// if it is not immediately runnable, any other ready thread) before
	// returning control to the caller.
	YieldTo(h Handle)
}

// Goroutine is the default Scheduler. The Go runtime has no primitive
// to yield specifically to one goroutine (it gives no handle a caller
// could direct execution toward), so YieldTo calls runtime.Gosched()
// and relies on the runtime's own fairness to eventually run the lock
// holder. Callers that need true yield-to-owner semantics, such as a
// custom cooperative scheduler embedding this core, implement their
// own Scheduler.
type Goroutine struct{}

// goroutineHandle is a private, per-call marker: since Go goroutines
// have no public identity, CurrentThread returns a comparable token by
// value, not a true identity. Two concurrent calls never equal each
// other; this is sufficient for the list mutex and ticket lock, which
// never compare handles and only pass a recorded one back to YieldTo.
type goroutineHandle struct{ tid uint64 }

var tidCounter atomic.Uint64

func nextTID() uint64 {
	// Not goroutine-identity, just a monotone counter used as a stand-in
	// TID, since Go exposes no public goroutine id.
	return tidCounter.Add(1)
}

func (Goroutine) CurrentThread() Handle {
	return goroutineHandle{tid: nextTID()}
}

func (Goroutine) CurrentTID() uint64 {
	return nextTID()
}

func (Goroutine) YieldTo(Handle) {
	runtime.Gosched()
}
