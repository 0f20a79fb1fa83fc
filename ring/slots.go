// Package ring provides two ring-buffer flavors: Slots, a fixed-slot
// byte ring with an allocate/write/free protocol, and Generic, a
// growable power-of-two masked ring of ordered values.
package ring

import (
	"sync"

	"github.com/joeycumines/go-korecore/kerrors"
)

// Slots is a fixed-slot byte ring buffer: objs slots of objSize bytes
// each. Allocate claims the next slot index, Write copies data into a
// claimed slot, Free returns a slot to the pool. The full condition
// tracks how many allocated slots remain unfreed; once every slot is
// outstanding, Allocate blocks (or refuses) until a Free lands.
type Slots struct {
	mu          sync.Mutex
	cond        *sync.Cond
	objSize     int
	objs        int
	idx         uint64
	outstanding int
	data        [][]byte
}

// NewSlots returns a Slots ring with the given slot count and
// per-slot size; both must be positive.
func NewSlots(objs, objSize int) (*Slots, error) {
	if objs <= 0 || objSize <= 0 {
		return nil, kerrors.New(kerrors.InvalidArg, "ring.NewSlots", nil)
	}
	s := &Slots{
		objSize: objSize,
		objs:    objs,
		data:    make([][]byte, objs),
	}
	s.cond = sync.NewCond(&s.mu)
	for i := range s.data {
		s.data[i] = make([]byte, objSize)
	}
	return s, nil
}

// Allocate claims the next slot index. If every slot is currently
// outstanding, Allocate blocks until one frees when block is true, or
// returns WouldBlock immediately when block is false.
func (s *Slots) Allocate(block bool) (int, error) {
	if s == nil {
		return 0, kerrors.New(kerrors.InvalidArg, "ring.Slots.Allocate", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.outstanding >= s.objs {
		if !block {
			return 0, kerrors.New(kerrors.WouldBlock, "ring.Slots.Allocate", nil)
		}
		s.cond.Wait()
	}

	claimed := int(s.idx % uint64(s.objs))
	s.idx++
	s.outstanding++
	return claimed, nil
}

// Free releases one outstanding allocation and wakes any blocked
// Allocate. idx is not used: Allocate hands out slots in ring order
// whichever index was freed.
func (s *Slots) Free(idx int) error {
	if s == nil {
		return kerrors.New(kerrors.InvalidArg, "ring.Slots.Free", nil)
	}
	s.mu.Lock()
	if s.outstanding > 0 {
		s.outstanding--
	}
	s.mu.Unlock()
	s.cond.Broadcast()
	return nil
}

// Write copies data (zero-filling any remainder) into slot idx; a nil
// data zeroes the slot. idx is wrapped by the slot count.
func (s *Slots) Write(idx int, data []byte) error {
	if s == nil {
		return kerrors.New(kerrors.InvalidArg, "ring.Slots.Write", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := s.data[idx%s.objs]
	clear(slot)
	if data != nil {
		copy(slot, data)
	}
	return nil
}

// Read returns a copy of the bytes currently stored in slot idx.
func (s *Slots) Read(idx int) ([]byte, error) {
	if s == nil {
		return nil, kerrors.New(kerrors.InvalidArg, "ring.Slots.Read", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, s.objSize)
	copy(out, s.data[idx%s.objs])
	return out, nil
}
