// Package kerrors implements the kernel core's error-kind taxonomy.
//
// The core never aborts the kernel: every operation that can fail
// returns one of a small set of error kinds, which the caller matches
// with errors.Is. Kinds carry no payload of their own; where a caller
// needs detail (e.g. which argument was nil), wrap the sentinel with
// fmt.Errorf("%w: ...", kerrors.ErrInvalidArg).
package kerrors

import "errors"

// Kind identifies one of the taxonomy's error classes.
type Kind int

const (
	// InvalidArg: null pointers, out-of-range indices, bad driver indices.
	InvalidArg Kind = iota
	// OutOfMemory: any allocator failure; always non-fatal, always propagated.
	OutOfMemory
	// InUse: removal or teardown attempted on a referenced object.
	InUse
	// Busy: a conflicting operation (e.g. a concurrent remove) is in flight.
	Busy
	// Frozen: acquisition attempted on a frozen ticket lock.
	Frozen
	// WouldBlock: non-blocking ring buffer allocation attempted while full.
	WouldBlock
	// NotFound: find/traverse miss with no on-miss callback registered.
	NotFound
	// Corrupt: returned by external callers (not this core) on malformed data.
	Corrupt
)

func (k Kind) String() string {
	switch k {
	case InvalidArg:
		return "invalid argument"
	case OutOfMemory:
		return "out of memory"
	case InUse:
		return "in use"
	case Busy:
		return "busy"
	case Frozen:
		return "frozen"
	case WouldBlock:
		return "would block"
	case NotFound:
		return "not found"
	case Corrupt:
		return "corrupt"
	default:
		return "unknown kind"
	}
}

// Error is the concrete error type produced by this module. Op names the
// failing operation (e.g. "graph.Add"), for log lines and debugging; it
// is not part of the errors.Is match, which is keyed on Kind alone.
type Error struct {
	Kind Kind
	Op   string
	Err  error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Op != "" {
			return e.Op + ": " + e.Kind.String() + ": " + e.Err.Error()
		}
		return e.Kind.String() + ": " + e.Err.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + e.Kind.String()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind, or any other
// *Error sharing the same Kind. This lets callers write
// errors.Is(err, kerrors.ErrOutOfMemory) regardless of which Op produced it.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// New constructs an *Error for the given kind and operation, optionally
// wrapping a cause.
func New(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Sentinel values, one per Kind, for use with errors.Is(err, kerrors.ErrXxx).
var (
	ErrInvalidArg  = &Error{Kind: InvalidArg}
	ErrOutOfMemory = &Error{Kind: OutOfMemory}
	ErrInUse       = &Error{Kind: InUse}
	ErrBusy        = &Error{Kind: Busy}
	ErrFrozen      = &Error{Kind: Frozen}
	ErrWouldBlock  = &Error{Kind: WouldBlock}
	ErrNotFound    = &Error{Kind: NotFound}
	ErrCorrupt     = &Error{Kind: Corrupt}
)
