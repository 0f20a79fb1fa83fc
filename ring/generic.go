package ring

import (
	"golang.org/x/exp/constraints"
)

// Generic is a growable, power-of-two masked ring buffer of ordered
// values. It backs callers that need an ordered, appendable window
// (e.g. a timestamp history) rather than the fixed-slot Slots ring.
type Generic[E constraints.Ordered] struct {
	buf   []E
	head  int // index of the oldest element
	count int
}

// NewGeneric returns an empty Generic ring with at least the given
// initial capacity, rounded up to the next power of two.
func NewGeneric[E constraints.Ordered](capacityHint int) *Generic[E] {
	size := 1
	for size < capacityHint {
		size <<= 1
	}
	if size < 1 {
		size = 1
	}
	return &Generic[E]{buf: make([]E, size)}
}

func (r *Generic[E]) mask() int {
	return len(r.buf) - 1
}

// Len returns the number of elements currently stored.
func (r *Generic[E]) Len() int {
	return r.count
}

// Get returns the i'th element, oldest-first, i.e. Get(0) is the
// oldest element still retained.
func (r *Generic[E]) Get(i int) E {
	return r.buf[(r.head+i)&r.mask()]
}

// Slice returns a newly allocated, oldest-first copy of all retained
// elements.
func (r *Generic[E]) Slice() []E {
	out := make([]E, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.Get(i)
	}
	return out
}

// Insert appends v as the newest element, growing the backing array
// (doubling capacity) if the ring is full.
func (r *Generic[E]) Insert(v E) {
	if r.count == len(r.buf) {
		r.grow()
	}
	idx := (r.head + r.count) & r.mask()
	r.buf[idx] = v
	r.count++
}

func (r *Generic[E]) grow() {
	newBuf := make([]E, len(r.buf)*2)
	for i := 0; i < r.count; i++ {
		newBuf[i] = r.Get(i)
	}
	r.buf = newBuf
	r.head = 0
}

// RemoveBefore drops every retained element strictly less than
// threshold, assuming elements are inserted in non-decreasing order
// (the usual case for a timestamp window).
func (r *Generic[E]) RemoveBefore(threshold E) {
	for r.count > 0 && r.Get(0) < threshold {
		r.head = (r.head + 1) & r.mask()
		r.count--
	}
}

// Search returns the index of the first retained element >= v,
// assuming non-decreasing insertion order, or r.Len() if none
// qualifies. A straightforward binary search over the logical
// (oldest-first) view.
func (r *Generic[E]) Search(v E) int {
	lo, hi := 0, r.count
	for lo < hi {
		mid := (lo + hi) / 2
		if r.Get(mid) < v {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
