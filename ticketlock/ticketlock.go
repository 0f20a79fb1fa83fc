// Package ticketlock implements a FIFO ticket lock with a freeze/thaw
// pair. Each waiter allocates a queue node carrying its ticket
// number, appends it under the lock's own queue mutex, and then
// busy-waits (optionally yielding to the current head) until its
// ticket is called. Freeze lets a caller temporarily refuse new
// waiters without holding the lock itself, returning a token only
// that caller can Thaw with. Unlock also records the
// served sequence number onto a bounded ring.Generic history for
// diagnostics (see ServedHistory).
package ticketlock

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-korecore/kalloc"
	"github.com/joeycumines/go-korecore/katomic"
	"github.com/joeycumines/go-korecore/kerrors"
	"github.com/joeycumines/go-korecore/ksched"
	"github.com/joeycumines/go-korecore/ring"
)

type node struct {
	ticket uint64
	wake   ksched.Handle
	next   katomic.Ptr[node]
}

// servedHistoryLimit bounds the window Unlock's served-sequence ring
// retains; older entries are trimmed as new ones arrive.
const servedHistoryLimit = 64

// TicketLock is a FIFO lock where waiters are served strictly in the
// order they enqueued, identified by a monotonically increasing
// ticket number.
type TicketLock struct {
	head       katomic.Ptr[node]
	tail       katomic.Ptr[node]
	nextTicket atomic.Uint64 // no typed uint64 counter in katomic; a plain monotone ticket source is a fine use of sync/atomic directly
	frozen     katomic.Flag
	freezer    katomic.Ptr[FreezeToken] // set by the Freeze that won, required by Thaw
	queueMu    katomic.Flag             // guards head/tail/nextTicket updates

	servedMu  sync.Mutex
	servedSeq uint64
	served    *ring.Generic[uint64] // bounded history of Unlock sequence numbers, oldest first
}

// New returns an unlocked, unfrozen TicketLock.
func New() *TicketLock {
	return &TicketLock{served: ring.NewGeneric[uint64](8)}
}

// ServedHistory returns a snapshot of the most recent bounded window of
// Unlock sequence numbers, oldest first: a diagnostic trail of how many
// waiters have been released so far, backed by ring.Generic so the
// window grows on demand rather than being preallocated to its cap.
func ServedHistory(l *TicketLock) []uint64 {
	l.servedMu.Lock()
	defer l.servedMu.Unlock()
	return l.served.Slice()
}

func (l *TicketLock) lockQueue() {
	for !l.queueMu.CompareAndSwap(false, true) {
	}
}

func (l *TicketLock) unlockQueue() {
	l.queueMu.Store(false)
}

// Lock enqueues a new waiter (one node allocated per call, charged
// against alloc) and busy-waits, without yielding, until its ticket
// is called. Returns Frozen if the lock is currently frozen,
// OutOfMemory if alloc fails.
func Lock(l *TicketLock, alloc kalloc.Allocator) error {
	if l == nil {
		return kerrors.New(kerrors.InvalidArg, "ticketlock.Lock", nil)
	}
	if l.frozen.Load() {
		return kerrors.New(kerrors.Frozen, "ticketlock.Lock", nil)
	}
	if alloc == nil {
		alloc = kalloc.Heap{}
	}
	if _, ok := alloc.Alloc(1); !ok {
		return kerrors.New(kerrors.OutOfMemory, "ticketlock.Lock", nil)
	}

	n := &node{}
	l.lockQueue()
	n.ticket = l.nextTicket.Add(1) - 1
	if tail := l.tail.Load(); tail != nil {
		tail.next.Store(n)
	} else {
		l.head.Store(n)
	}
	l.tail.Store(n)
	l.unlockQueue()

	for l.head.Load() != n {
	}
	return nil
}

// LockYield is Lock, but busy-waits by yielding (per sched) to the
// current head's thread between attempts instead of spinning blind.
func LockYield(l *TicketLock, alloc kalloc.Allocator, sched ksched.Scheduler) error {
	if l == nil {
		return kerrors.New(kerrors.InvalidArg, "ticketlock.LockYield", nil)
	}
	if l.frozen.Load() {
		return kerrors.New(kerrors.Frozen, "ticketlock.LockYield", nil)
	}
	if alloc == nil {
		alloc = kalloc.Heap{}
	}
	if sched == nil {
		sched = ksched.Goroutine{}
	}
	if _, ok := alloc.Alloc(1); !ok {
		return kerrors.New(kerrors.OutOfMemory, "ticketlock.LockYield", nil)
	}

	n := &node{wake: sched.CurrentThread()}
	l.lockQueue()
	n.ticket = l.nextTicket.Add(1) - 1
	if tail := l.tail.Load(); tail != nil {
		tail.next.Store(n)
	} else {
		l.head.Store(n)
	}
	l.tail.Store(n)
	l.unlockQueue()

	for {
		head := l.head.Load()
		if head == n {
			return nil
		}
		if head != nil {
			sched.YieldTo(head.wake)
		}
	}
}

// Unlock dequeues the current head, granting the lock to the next
// waiter (if any). When the queue empties, the ticket counter resets
// to zero.
func Unlock(l *TicketLock) error {
	if l == nil {
		return kerrors.New(kerrors.InvalidArg, "ticketlock.Unlock", nil)
	}
	l.lockQueue()
	defer l.unlockQueue()

	head := l.head.Load()
	if head == nil {
		return kerrors.New(kerrors.InvalidArg, "ticketlock.Unlock", nil)
	}
	next := head.next.Load()
	l.head.Store(next)
	if next == nil {
		l.tail.Store(nil)
		l.nextTicket.Store(0)
	}

	l.servedMu.Lock()
	l.servedSeq++
	l.served.Insert(l.servedSeq)
	if l.servedSeq > servedHistoryLimit {
		l.served.RemoveBefore(l.servedSeq - servedHistoryLimit + 1)
	}
	l.servedMu.Unlock()
	return nil
}

// FreezeToken is the proof of a successful Freeze call. Thaw only
// accepts the token the matching Freeze returned, so a caller that
// never froze the lock cannot thaw it.
type FreezeToken struct {
	lock *TicketLock
}

// Freeze marks the lock as refusing new Lock/LockYield callers, then
// busy-waits for every already-queued waiter to release before
// returning the token Thaw requires. Waiters already queued when
// Freeze is called are still served in ticket order; Freeze only
// blocks new arrivals. Freezing an already-frozen lock fails with
// Frozen.
func Freeze(l *TicketLock) (*FreezeToken, error) {
	if l == nil {
		return nil, kerrors.New(kerrors.InvalidArg, "ticketlock.Freeze", nil)
	}
	if !l.frozen.CompareAndSwap(false, true) {
		return nil, kerrors.New(kerrors.Frozen, "ticketlock.Freeze", nil)
	}
	tok := &FreezeToken{lock: l}
	l.freezer.Store(tok)
	for l.head.Load() != nil {
	}
	return tok, nil
}

// Thaw clears a prior Freeze, admitting new waiters again. tok must be
// the token that Freeze returned; any other caller's Thaw is rejected
// with Frozen and the lock stays frozen.
func Thaw(l *TicketLock, tok *FreezeToken) error {
	if l == nil {
		return kerrors.New(kerrors.InvalidArg, "ticketlock.Thaw", nil)
	}
	if tok == nil || tok.lock != l || l.freezer.Load() != tok {
		return kerrors.New(kerrors.Frozen, "ticketlock.Thaw", nil)
	}
	l.freezer.Store(nil)
	l.frozen.Store(false)
	return nil
}
