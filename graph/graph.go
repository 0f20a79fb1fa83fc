// Package graph implements a concurrent named tree. Every node is
// reachable from its parent's singly-linked, atomically-updated child
// list; Find walks that list under a reference-counting discipline
// that lets additions and removals race a concurrent lookup without a
// lock, using a child-count before/after comparison to decide whether
// to restart, recheck once, or accept a stable miss.
package graph

import (
	"sync"

	"github.com/joeycumines/go-korecore/katomic"
	"github.com/joeycumines/go-korecore/kerrors"
)

// Node is one entry in the tree: a name, a value, and links to its
// parent, its first child, and its next sibling. All list-structural
// fields are atomic so Find can walk a subtree while Add/Remove
// mutate it concurrently.
type Node[T any] struct {
	mu sync.Mutex // serializes Remove calls on this node's own child list; Add links children by CAS without it

	name  string
	Value T

	refCount   katomic.Counter
	childCount katomic.Counter

	parent katomic.Ptr[Node[T]]
	child  katomic.Ptr[Node[T]]
	next   katomic.Ptr[Node[T]]
}

// Name returns the node's name. The empty string is the sentinel for
// "no name was given".
func (n *Node[T]) Name() string { return n.name }

// RefCount reports the node's current pin count.
func (n *Node[T]) RefCount() int64 { return n.refCount.Load() }

// ChildCount reports the node's current direct child count.
func (n *Node[T]) ChildCount() int64 { return n.childCount.Load() }

// Parent returns the node's parent, or nil for a root.
func (n *Node[T]) Parent() *Node[T] { return n.parent.Load() }

// Children returns a point-in-time snapshot of the node's direct
// children, oldest-added last (Add prepends onto the head of the
// list).
func (n *Node[T]) Children() []*Node[T] {
	var out []*Node[T]
	for c := n.child.Load(); c != nil; c = c.next.Load() {
		out = append(out, c)
	}
	return out
}

// Create returns a new, unattached root node.
func Create[T any](value T) *Node[T] {
	return &Node[T]{Value: value}
}

// InitRoot is Create, with the conventional root name "/" set so
// pathalg can render and parse a path that terminates at this node,
// and the ref count seeded to 1: the root's permanent hold, never
// released, so no caller can ever observe the root as removable.
func InitRoot[T any](value T) *Node[T] {
	n := &Node[T]{name: "/", Value: value}
	n.refCount.Add(1)
	return n
}

// Add creates a new child of parent and links it atomically onto the
// head of parent's child list via a CAS loop that threads the old
// head through the new child's sibling link. If name is empty, the
// child is unnamed.
func Add[T any](parent *Node[T], name string, value T) (*Node[T], error) {
	if parent == nil {
		return nil, kerrors.New(kerrors.InvalidArg, "graph.Add", nil)
	}
	child := &Node[T]{name: name, Value: value}
	child.parent.Store(parent)

	for {
		old := parent.child.Load()
		child.next.Store(old)
		if parent.child.CompareAndSwap(old, child) {
			break
		}
	}
	parent.childCount.Add(1)
	return child, nil
}

// Duplicate adds a new child of parent carrying src's name and value,
// for hard-link-style re-parenting (a copy, not a shared node: the
// two are independent thereafter).
func Duplicate[T any](parent *Node[T], src *Node[T]) (*Node[T], error) {
	if parent == nil || src == nil {
		return nil, kerrors.New(kerrors.InvalidArg, "graph.Duplicate", nil)
	}
	return Add(parent, src.name, src.Value)
}

// Remove detaches target from parent's child list. It refuses with
// InUse if target is referenced by a reader (RefCount() > 0, observed
// before any claim is attempted). It then claims exclusive removal
// rights with an atomic increment of the same ref count that must
// observe exactly 1; a
// racing Remove (or a reader's pin landing in the window between the
// Load above and this increment) makes the increment observe some
// other value, and that contender refuses with Busy instead of
// silently double-removing the node. The claim is released once the
// detach (or the failed search for target among parent's children)
// completes. On success, target's sibling link is set to point at
// itself, marking it as removed for any Find call concurrently walking
// past it (see walkOnce).
func Remove[T any](parent *Node[T], target *Node[T]) error {
	if parent == nil || target == nil {
		return kerrors.New(kerrors.InvalidArg, "graph.Remove", nil)
	}
	if target.refCount.Load() > 0 {
		return kerrors.New(kerrors.InUse, "graph.Remove", nil)
	}
	if target.refCount.Inc() != 1 {
		target.refCount.Dec()
		return kerrors.New(kerrors.Busy, "graph.Remove", nil)
	}
	defer target.refCount.Dec()

	parent.mu.Lock()
	defer parent.mu.Unlock()

	var prev *Node[T]
	cur := parent.child.Load()
	for cur != nil {
		if cur == target {
			next := cur.next.Load()
			if prev == nil {
				if !parent.child.CompareAndSwap(cur, next) {
					// a concurrent Add pushed a new head; rescan from it
					cur = parent.child.Load()
					continue
				}
			} else {
				prev.next.Store(next)
			}
			parent.childCount.Add(-1)
			target.next.Store(target)
			return nil
		}
		prev = cur
		cur = cur.next.Load()
	}
	return kerrors.New(kerrors.NotFound, "graph.Remove", nil)
}

// Freeable reports whether n and every one of its descendants has a
// zero ref count: any descendant still referenced makes the whole
// subtree non-freeable, not just that descendant.
func Freeable[T any](n *Node[T]) bool {
	if n == nil {
		return true
	}
	if n.refCount.Load() > 0 {
		return false
	}
	for c := n.child.Load(); c != nil; c = c.next.Load() {
		if !Freeable(c) {
			return false
		}
	}
	return true
}

// Find resolves path, a sequence of child names walked from root,
// pinning (incrementing the ref count of) the final node before
// returning it. Callers must call Release on the result once done.
// Returns NotFound if any component is missing.
func Find[T any](root *Node[T], path []string) (*Node[T], error) {
	if root == nil {
		return nil, kerrors.New(kerrors.InvalidArg, "graph.Find", nil)
	}
	if len(path) == 0 {
		root.refCount.Add(1)
		return root, nil
	}

	current := root
	for _, name := range path {
		next, err := findChild(current, name)
		if current != root {
			current.refCount.Add(-1)
		}
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// Release undoes one pin obtained from Find or Pin.
func Release[T any](n *Node[T]) {
	if n != nil {
		n.refCount.Add(-1)
	}
}

// Pin increments n's ref count directly, the same discipline walkOnce
// uses internally, for callers (pathalg's node-based path walk) that
// already hold a node and need to hold it stable across a manual
// traversal rather than going through Find. Callers must Release every
// node they Pin.
func Pin[T any](n *Node[T]) {
	if n != nil {
		n.refCount.Add(1)
	}
}

// findChild locates the direct child of parent named name, recording
// the child count before and after a walk; if unchanged, a miss is
// real; if it
// dropped (a concurrent Remove raced the walk), restart entirely; if
// it grew (a concurrent Add raced the walk), one more walk is enough
// since a new match can only have been added at the head, never removed.
func findChild[T any](parent *Node[T], name string) (*Node[T], error) {
	for {
		before := parent.childCount.Load()
		found := walkOnce(parent, name)
		after := parent.childCount.Load()

		if found != nil {
			return found, nil
		}

		switch {
		case before == after:
			return nil, kerrors.New(kerrors.NotFound, "graph.Find", nil)
		case before > after:
			continue
		default:
			if found = walkOnce(parent, name); found != nil {
				return found, nil
			}
			return nil, kerrors.New(kerrors.NotFound, "graph.Find", nil)
		}
	}
}

// walkOnce scans parent's child list once, pinning and returning the
// first node named name. A node whose next pointer refers to itself
// has just been removed by a concurrent Remove (see Remove); walkOnce
// treats that as an interrupted walk and reports a miss, letting
// findChild's child_count comparison decide whether to retry.
func walkOnce[T any](parent *Node[T], name string) *Node[T] {
	cur := parent.child.Load()
	for cur != nil {
		cur.refCount.Add(1)
		if cur.name == name {
			return cur
		}
		next := cur.next.Load()
		cur.refCount.Add(-1)
		if next == cur {
			return nil
		}
		cur = next
	}
	return nil
}
