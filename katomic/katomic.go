// Package katomic is the typed atomics façade the rest of this module
// builds on: load/store/CAS/inc/dec/xchg with acquire/release intent
// documented at each call site. Go's memory model gives every
// sync/atomic operation sequential consistency, which is strictly
// stronger than acquire/release pairing; the doc comments below
// annotate which operations are conceptually the acquire and which
// are the release.
package katomic

import "sync/atomic"

// Ptr is a thin generic wrapper over atomic.Pointer[T], used throughout
// graph and listmutex for the intrusive next/child/tail links.
type Ptr[T any] struct {
	v atomic.Pointer[T]
}

// Load is the acquire-side read of a published pointer.
func (p *Ptr[T]) Load() *T { return p.v.Load() }

// Store is the release-side publish of a pointer.
func (p *Ptr[T]) Store(val *T) { p.v.Store(val) }

// CompareAndSwap attempts the given transition, acquire on success.
func (p *Ptr[T]) CompareAndSwap(old, new *T) bool { return p.v.CompareAndSwap(old, new) }

// Swap exchanges the pointer, returning the prior value (the graph's
// "atomically exchange parent.child" and the list mutex's "atomically
// exchange tail" both reduce to this).
func (p *Ptr[T]) Swap(new *T) *T { return p.v.Swap(new) }

// Counter is a typed wrapper over atomic.Int64 for ref_count, child_count,
// and similar monotone or fluctuating counters.
type Counter struct {
	v atomic.Int64
}

func (c *Counter) Load() int64      { return c.v.Load() }
func (c *Counter) Store(val int64)  { c.v.Store(val) }
func (c *Counter) Inc() int64       { return c.v.Add(1) }
func (c *Counter) Dec() int64       { return c.v.Add(-1) }
func (c *Counter) Add(delta int64) int64 { return c.v.Add(delta) }

// CompareAndSwap attempts the given transition.
func (c *Counter) CompareAndSwap(old, new int64) bool { return c.v.CompareAndSwap(old, new) }

// Flag is a typed wrapper over atomic.Bool, used by the spinlock's
// single bit of state and similar booleans (is_frozen, overflowPending
// style flags).
type Flag struct {
	v atomic.Bool
}

// TestAndSet performs the spinlock/TAS-mutex acquire primitive: it
// atomically sets the flag and returns whatever it held immediately
// before (true means "already held").
func (f *Flag) TestAndSet() (old bool) {
	return f.v.Swap(true)
}

// Clear is the release-side unlock.
func (f *Flag) Clear() { f.v.Store(false) }

func (f *Flag) Load() bool     { return f.v.Load() }
func (f *Flag) Store(val bool) { f.v.Store(val) }

func (f *Flag) CompareAndSwap(old, new bool) bool { return f.v.CompareAndSwap(old, new) }
