package listmutex

import (
	"runtime"
	"sync"
	"testing"

	"github.com/joeycumines/go-korecore/ksched"
	"github.com/stretchr/testify/assert"
)

func TestLockUnlockRoundTrip(t *testing.T) {
	m := New()
	var e Element
	assert.NoError(t, Lock(m, &e, ksched.Goroutine{}))
	assert.NoError(t, Unlock(m))
}

func TestNilReportsInvalidArg(t *testing.T) {
	var e Element
	assert.Error(t, Lock(nil, &e, ksched.Goroutine{}))
	assert.Error(t, Lock(New(), nil, ksched.Goroutine{}))
	assert.Error(t, Unlock(nil))
}

func TestFIFOOrdering(t *testing.T) {
	m := New()
	sched := ksched.Goroutine{}
	const n = 20
	order := make([]int, 0, n)
	var mu sync.Mutex

	var first Element
	assert.NoError(t, Lock(m, &first, sched))

	// Waiters start one at a time, each observed to have taken the tail
	// before the next starts, so they enqueue in the order 0..n-1.
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		prevTail := m.last.Load()
		go func(i int) {
			defer wg.Done()
			var e Element
			assert.NoError(t, Lock(m, &e, sched))
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			assert.NoError(t, Unlock(m))
		}(i)
		for m.last.Load() == prevTail {
			runtime.Gosched()
		}
	}
	assert.NoError(t, Unlock(m))
	wg.Wait()

	assert.Len(t, order, n)
	want := make([]int, n)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, order)
}
