// Package kalloc models the kernel's memory-management collaborator:
// alloc(size) -> ptr|null and free(ptr). Go's own allocator cannot be
// made to fail on demand, so OutOfMemory paths (the ticket lock's
// per-waiter node allocation) are only reachable by injecting a
// Bounded allocator; production code uses Heap, which never fails.
package kalloc

import "sync"

// Allocator is the injectable stand-in for the kernel's alloc/free pair.
// Alloc returns (nil, false) on failure; Free is a no-op for slices
// backed by the Go heap (the garbage collector reclaims them) but is
// still paired with every Alloc so a budget-tracking Allocator can
// account for it.
type Allocator interface {
	Alloc(n int) ([]byte, bool)
	Free(b []byte)
}

// Heap is the default Allocator: it never fails, backed directly by
// make([]byte, n). All allocation is funneled through this one choke
// point so a different strategy can be swapped in without touching
// callers.
type Heap struct{}

func (Heap) Alloc(n int) ([]byte, bool) {
	if n < 0 {
		return nil, false
	}
	return make([]byte, n), true
}

func (Heap) Free([]byte) {}

// Bounded wraps an Allocator with a budget, in bytes, that Alloc calls
// draw down; once the budget is exhausted, Alloc fails until a Free
// returns bytes to the pool. This is the mechanism by which this
// module's tests exercise OutOfMemory without needing to exhaust the
// real Go heap.
type Bounded struct {
	mu        sync.Mutex
	Remaining int
	Under     Allocator
}

// NewBounded returns a Bounded allocator with the given byte budget,
// delegating successful allocations to Heap{}.
func NewBounded(budget int) *Bounded {
	return &Bounded{Remaining: budget, Under: Heap{}}
}

func (b *Bounded) Alloc(n int) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n > b.Remaining {
		return nil, false
	}
	buf, ok := b.Under.Alloc(n)
	if !ok {
		return nil, false
	}
	b.Remaining -= n
	return buf, true
}

func (b *Bounded) Free(buf []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Remaining += len(buf)
	b.Under.Free(buf)
}
