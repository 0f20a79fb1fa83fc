// Package event implements a handler-chain event broadcaster: Register
// appends a handler onto a singly-linked chain under an atomic
// exchange of the tail, and Trigger splices a terminator through that
// same exchange, invokes every handler ahead of it in registration
// order, then detaches the dispatched prefix.
package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-korecore/kerrors"
	"github.com/joeycumines/go-korecore/ring"
)

// Handler is one registered callback.
type Handler func(args any)

type element struct {
	handler Handler
	next    atomic.Pointer[element]
}

// completedRoundsLimit bounds the window of completed Trigger
// generation numbers the history ring retains.
const completedRoundsLimit = 32

// Event is a FIFO chain of registered handlers.
type Event struct {
	current atomic.Pointer[element]
	last    atomic.Pointer[element]

	historyMu  sync.Mutex
	generation uint64
	history    *ring.Generic[uint64] // bounded history of completed dispatch-round generations
}

// New returns an empty Event.
func New() *Event {
	return &Event{history: ring.NewGeneric[uint64](8)}
}

// CompletedRounds returns a snapshot of the most recent bounded window
// of completed Trigger/TriggerContext generation numbers, oldest
// first: each entry marks one round of handler dispatch that ran to
// completion.
func CompletedRounds(e *Event) []uint64 {
	e.historyMu.Lock()
	defer e.historyMu.Unlock()
	return e.history.Slice()
}

func (e *Event) recordCompletedRound() {
	e.historyMu.Lock()
	e.generation++
	e.history.Insert(e.generation)
	if e.generation > completedRoundsLimit {
		e.history.RemoveBefore(e.generation - completedRoundsLimit + 1)
	}
	e.historyMu.Unlock()
}

// splice appends elem through the one protocol every writer shares:
// exchange the tail, then either link the old tail forward or, when
// the chain was empty, publish elem as the head. Trigger inserts its
// terminator through the same path, so a concurrent Register can
// never observe a torn head/tail pair.
func (e *Event) splice(elem *element) {
	prev := e.last.Swap(elem)
	if prev != nil {
		prev.next.Store(elem)
	} else {
		e.current.Store(elem)
	}
}

// Register appends handler to the chain via an atomic exchange of the
// tail pointer.
func Register(e *Event, handler Handler) error {
	if e == nil || handler == nil {
		return kerrors.New(kerrors.InvalidArg, "event.Register", nil)
	}
	e.splice(&element{handler: handler})
	return nil
}

// Trigger invokes every handler registered before it was called, in
// registration order, then detaches the dispatched prefix: handlers
// registered during dispatch (by a callback or a concurrent Register)
// do not run until the next Trigger call.
func Trigger(e *Event, args any) error {
	if e == nil {
		return kerrors.New(kerrors.InvalidArg, "event.Trigger", nil)
	}
	return TriggerContext(context.Background(), e, args)
}

// TriggerContext is Trigger, but stops dispatching (without re-queuing
// the remaining handlers in its round) as soon as ctx is done. A round
// cut short by cancellation is not recorded to CompletedRounds'
// history: only a round that dispatched every handler counts as
// completed.
func TriggerContext(ctx context.Context, e *Event, args any) error {
	if e == nil {
		return kerrors.New(kerrors.InvalidArg, "event.TriggerContext", nil)
	}

	// The terminator bounds this round. Splicing it through the shared
	// tail-exchange protocol, rather than resetting the tail directly,
	// is what keeps a concurrent Register from being dropped.
	terminator := &element{}
	e.splice(terminator)

	var err error
	n := e.current.Load()
	for n == nil {
		// a concurrent Register won the tail exchange but has not yet
		// published the head
		n = e.current.Load()
	}
	for n != terminator {
		if err == nil {
			select {
			case <-ctx.Done():
				err = ctx.Err()
			default:
				n.handler(args)
			}
		}
		next := n.next.Load()
		for next == nil {
			// the forward link trails the tail exchange; the terminator
			// is already past n, so the link must land
			next = n.next.Load()
		}
		n = next
	}

	// Detach the dispatched prefix. The head is cleared while the
	// terminator still holds the tail (no Register publishes a head
	// while the tail is non-nil), then the tail is released; if another
	// writer already took the tail, its element becomes the new head.
	e.current.Store(nil)
	if !e.last.CompareAndSwap(terminator, nil) {
		next := terminator.next.Load()
		for next == nil {
			next = terminator.next.Load()
		}
		e.current.Store(next)
	}

	if err != nil {
		return err
	}
	e.recordCompletedRound()
	return nil
}
