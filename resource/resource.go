// Package resource implements lifetime-managed driver instances. A
// Resource binds a driver Definition (looked up from driverregistry)
// to per-instance state and a unique id. Every external holder of a
// *Resource attaches a *Reference, a doubly-linked list node; every
// structural edit to that list (insert, unlink) happens under the
// resource's own single refMu, so two references splicing or
// unlinking concurrently can never deadlock against each other the
// way per-node locks taken in inconsistent orders can. Teardown walks
// that list asking each Reference to release via its signal callback
// before tearing the resource down.
package resource

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-korecore/driverregistry"
	"github.com/joeycumines/go-korecore/kerrors"
	"github.com/joeycumines/go-korecore/klog"
)

var nextID atomic.Uint64

// Resource is one initialized driver instance.
type Resource struct {
	ID          uint64
	Group       driverregistry.Group
	DriverIndex int
	Driver      *driverregistry.Definition
	DriverState any

	mu sync.Mutex // embedded driver-state mutex, held around the driver's Init and Uninit hooks

	refCount atomic.Int64 // number of attached References
	refMu    sync.Mutex   // guards refHead and every Reference's prev/next: the whole list, one mutex
	refHead  *Reference
}

// Event identifies a signal sent to a Reference during teardown
// negotiation. Close is the only event this core defines; drivers may
// extend the space for their own out-of-band notifications.
type Event int

// Close is sent to every attached Reference during Uninit.
const Close Event = 0

// Reference is one external holder of a Resource: a doubly-linked
// list node carrying the owning resource, a signal callback invoked
// during teardown negotiation, and an owner id (thread or process).
// prev/next are guarded by res.refMu, not by anything on Reference
// itself.
type Reference struct {
	res    *Resource
	signal func(Event, any) bool
	owner  uint64

	prev, next *Reference // guarded by res.refMu
}

// Owner returns the thread or process id that attached this Reference.
func (ref *Reference) Owner() uint64 { return ref.owner }

// Init looks up the driver registered at (group, index), allocates a
// unique id, and calls the driver's Init hook with args. If the
// driver isn't registered, or its Init hook fails, Init returns the
// lookup or init error without constructing a Resource.
func Init(group driverregistry.Group, index int, args any) (*Resource, error) {
	def, err := driverregistry.Lookup(group, index)
	if err != nil {
		return nil, err
	}
	if def.Init == nil {
		return nil, kerrors.New(kerrors.InvalidArg, "resource.Init", nil)
	}

	r := &Resource{
		ID:          nextID.Add(1),
		Group:       group,
		DriverIndex: index,
		Driver:      def,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := def.Init(r.DriverState, args); err != nil {
		klog.Debug(klog.LevelErr, "resource %d: driver %d/%d init failed: %v", r.ID, group, index, err)
		return nil, err
	}
	return r, nil
}

// InitPCI resolves a driver by (vendor, device) via
// driverregistry.LookupPCI, then proceeds as Init.
func InitPCI(group driverregistry.Group, vendor, device uint16, args any) (*Resource, error) {
	def, err := driverregistry.LookupPCI(group, vendor, device)
	if err != nil {
		return nil, err
	}
	if def.Init == nil {
		return nil, kerrors.New(kerrors.InvalidArg, "resource.InitPCI", nil)
	}
	r := &Resource{
		ID:     nextID.Add(1),
		Group:  group,
		Driver: def,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := def.Init(r.DriverState, args); err != nil {
		klog.Debug(klog.LevelErr, "resource %d: pci %04x:%04x init failed: %v", r.ID, vendor, device, err)
		return nil, err
	}
	return r, nil
}

// Reference attaches a new external holder to r: a Reference spliced
// onto the head of r's list under r.refMu, and increments r's
// reference count. signal is invoked
// during Uninit's teardown negotiation and must report whether this
// holder accepts release; a nil signal defaults to always refusing,
// since a holder that hasn't opted into negotiation must be explicitly
// released via Unreference. owner is an opaque thread or process id,
// recorded for diagnostics only.
func Reference(r *Resource, owner uint64, signal func(Event, any) bool) (*Reference, error) {
	if r == nil {
		return nil, kerrors.New(kerrors.InvalidArg, "resource.Reference", nil)
	}
	if signal == nil {
		signal = func(Event, any) bool { return false }
	}

	ref := &Reference{res: r, signal: signal, owner: owner}
	r.refMu.Lock()
	old := r.refHead
	ref.next = old
	if old != nil {
		old.prev = ref
	}
	r.refHead = ref
	r.refMu.Unlock()

	r.refCount.Add(1)
	return ref, nil
}

// Unreference detaches ref from its resource's list and decrements the
// resource's reference count.
func Unreference(ref *Reference) error {
	if ref == nil {
		return kerrors.New(kerrors.InvalidArg, "resource.Unreference", nil)
	}
	unlinkReference(ref)
	ref.res.refCount.Add(-1)
	return nil
}

// unlinkReference splices ref out of its resource's reference list
// without touching the resource's reference count; Unreference and
// Uninit's teardown walk both use it, each decrementing the count
// itself once per reference it unlinks. The whole splice happens
// under r.refMu, a single mutex for the whole list rather than a
// per-node one: two adjacent references unlinking concurrently only
// ever contend for the one lock, never for each other's in opposite
// orders, so the classic ABBA deadlock a pairwise locking scheme
// invites can't arise here.
func unlinkReference(ref *Reference) {
	r := ref.res
	r.refMu.Lock()
	defer r.refMu.Unlock()

	prev, next := ref.prev, ref.next
	if prev != nil {
		prev.next = next
	} else {
		r.refHead = next
	}
	if next != nil {
		next.prev = prev
	}
}

// RefCount reports the number of References currently attached to r.
func (r *Resource) RefCount() int64 { return r.refCount.Load() }

// Uninit tears r down. With two or more
// references outstanding it refuses with InUse outright, no
// negotiation attempted. With exactly one reference, or none, it
// walks whatever remains, sending each one Close; a reference that
// refuses aborts teardown immediately, leaving r intact and any
// already-accepted references detached. Once the list is empty it
// invokes the driver's Uninit hook.
func Uninit(r *Resource) error {
	if r == nil {
		return kerrors.New(kerrors.InvalidArg, "resource.Uninit", nil)
	}
	if r.refCount.Load() > 1 {
		return kerrors.New(kerrors.InUse, "resource.Uninit", nil)
	}

	for {
		r.refMu.Lock()
		ref := r.refHead
		r.refMu.Unlock()
		if ref == nil {
			break
		}
		if !ref.signal(Close, nil) {
			klog.Debug(klog.LevelWarn, "resource %d: reference owned by %d refused close", r.ID, ref.owner)
			return kerrors.New(kerrors.InUse, "resource.Uninit", nil)
		}
		unlinkReference(ref)
		r.refCount.Add(-1)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Driver != nil && r.Driver.Uninit != nil {
		return r.Driver.Uninit(r.DriverState)
	}
	return nil
}
