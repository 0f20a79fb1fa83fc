// Package pathalg implements the kernel's path algebra: collapsing a
// raw path into its canonical form, composing an absolute path from a
// base and a relative fragment, computing one path relative to
// another, and traversing a graph.Node tree component by component.
package pathalg

import (
	"strings"

	"github.com/joeycumines/go-korecore/graph"
	"github.com/joeycumines/go-korecore/kerrors"
)

// Collapse reduces path to its canonical form, one pass over its
// slash-separated segments: empty segments (runs of "//") and "."
// segments are dropped, ".." pops the preceding real component (or,
// for a relative path with nothing left to pop, is kept verbatim); an
// absolute ".." above the root is absorbed into the root. Any
// segment that resolves to "stay in a directory" rather than "name a
// component" (an empty run, a ".", or a successful ".." pop) leaves
// the result trailing a "/":
//
//	Collapse("/a/b/")    == "/a/b/"
//	Collapse("/a//b")    == "/a/b"
//	Collapse("/a/./b")   == "/a/b"
//	Collapse("/a/b/..")  == "/a/"
//	Collapse("a/../../b") == "../b"
//	Collapse("/..")      == "/"
//	Collapse("./")       == ""
//	Collapse("")         == ""
func Collapse(path string) string {
	if path == "" {
		return ""
	}
	absolute := strings.HasPrefix(path, "/")
	inner := path
	if absolute {
		inner = path[1:]
	}

	var out []string
	trailing := false
	for _, seg := range strings.Split(inner, "/") {
		switch seg {
		case "", ".":
			trailing = true
		case "..":
			switch {
			case len(out) > 0 && out[len(out)-1] != "..":
				out = out[:len(out)-1]
				trailing = true
			case absolute:
				trailing = true // ".." above root collapses into the root
			default:
				out = append(out, "..")
				trailing = true
			}
		default:
			out = append(out, seg)
			trailing = false
		}
	}

	if absolute {
		if len(out) == 0 {
			return "/"
		}
		result := "/" + strings.Join(out, "/")
		if trailing {
			result += "/"
		}
		return result
	}

	if len(out) == 0 {
		return ""
	}
	result := strings.Join(out, "/")
	if trailing {
		result += "/"
	}
	return result
}

// Absolute renders the path of target as seen from root, walking
// target's parent chain upward (stopping at root, or at the true root
// of the tree if root is nil), pinning each node it visits with
// graph.Pin and collecting its name onto a stack. Every pin taken
// during the walk is released (via a deferred sweep, so an
// interrupted walk never leaks one) before Absolute returns the
// collected names joined with "/", root-anchored and trailing-slash
// terminated to match Collapse's directory-reference convention.
// Round-tripping the result through Traverse recovers target: with a
// tree root -> a -> {x, y}, Absolute(root, y) == "/a/y/".
func Absolute[T any](root, target *graph.Node[T]) (string, error) {
	if target == nil {
		return "", kerrors.New(kerrors.InvalidArg, "pathalg.Absolute", nil)
	}

	var pinned []*graph.Node[T]
	defer func() {
		for _, n := range pinned {
			graph.Release(n)
		}
	}()

	var names []string
	for cur := target; cur != nil; cur = cur.Parent() {
		if cur == root || (root == nil && cur.Parent() == nil) {
			break
		}
		graph.Pin(cur)
		pinned = append(pinned, cur)
		names = append(names, cur.Name())
	}

	var b strings.Builder
	b.WriteByte('/')
	for i := len(names) - 1; i >= 0; i-- {
		b.WriteString(names[i])
		b.WriteByte('/')
	}
	return b.String(), nil
}

// AbsoluteString composes base (assumed already absolute and
// collapsed) with rel, returning a collapsed absolute path. If rel is
// itself absolute, it is returned collapsed, ignoring base, matching
// the usual chdir/openat convention that an absolute operand overrides
// the base. This is a string-composition convenience built on top of
// Collapse; it does not walk a graph.Node tree (see Absolute for
// that).
func AbsoluteString(base, rel string) string {
	if strings.HasPrefix(rel, "/") {
		return Collapse(rel)
	}
	if base == "" {
		base = "/"
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return Collapse(base + rel)
}

// Relative computes the path of target relative to base, both assumed
// absolute strings. The result, when composed back with
// AbsoluteString(base, ...), collapses to target. Like AbsoluteString,
// this is a string-level helper, not the node-walking operation.
func Relative(base, target string) string {
	baseSegs := splitClean(Collapse(base))
	targetSegs := splitClean(Collapse(target))

	common := 0
	for common < len(baseSegs) && common < len(targetSegs) && baseSegs[common] == targetSegs[common] {
		common++
	}

	var out []string
	for i := common; i < len(baseSegs); i++ {
		out = append(out, "..")
	}
	out = append(out, targetSegs[common:]...)

	if len(out) == 0 {
		return "."
	}
	return strings.Join(out, "/")
}

func splitClean(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// Traverse resolves path against root component by component using
// graph.Find, calling onMiss (if non-nil) to create a missing
// component on the fly whenever one isn't found (the usual
// create-on-traverse behavior for operations like mkdir -p). The
// returned node is pinned; callers must graph.Release it.
func Traverse[T any](root *graph.Node[T], path string, onMiss func(parent *graph.Node[T], name string) (*graph.Node[T], error)) (*graph.Node[T], error) {
	if root == nil {
		return nil, kerrors.New(kerrors.InvalidArg, "pathalg.Traverse", nil)
	}
	segs := splitClean(Collapse(path))
	if len(segs) == 0 {
		return graph.Find(root, nil)
	}

	current := root
	pinnedNonRoot := false
	for _, name := range segs {
		if name == ".." {
			// only a leading run of ".." can survive Collapse; each one
			// moves up a level, stopping at the tree's root
			parent := current.Parent()
			if parent == nil {
				continue
			}
			graph.Pin(parent)
			if pinnedNonRoot {
				graph.Release(current)
			}
			current = parent
			pinnedNonRoot = true
			continue
		}
		next, err := graph.Find(current, []string{name})
		if err != nil {
			if onMiss == nil {
				if pinnedNonRoot {
					graph.Release(current)
				}
				return nil, err
			}
			next, err = onMiss(current, name)
			if err != nil {
				if pinnedNonRoot {
					graph.Release(current)
				}
				return nil, err
			}
			pinned, findErr := graph.Find(current, []string{name})
			if findErr != nil {
				if pinnedNonRoot {
					graph.Release(current)
				}
				return nil, findErr
			}
			next = pinned
		}
		if pinnedNonRoot {
			graph.Release(current)
		}
		current = next
		pinnedNonRoot = true
	}
	return current, nil
}
