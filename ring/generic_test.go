package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertAndGetPreserveOrder(t *testing.T) {
	r := NewGeneric[int](2)
	for i := 0; i < 5; i++ {
		r.Insert(i)
	}
	assert.Equal(t, 5, r.Len())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, r.Slice())
}

func TestGrowPreservesOrder(t *testing.T) {
	r := NewGeneric[int](1)
	for i := 0; i < 20; i++ {
		r.Insert(i)
	}
	want := make([]int, 20)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, r.Slice())
}

func TestRemoveBeforeDropsOldEntries(t *testing.T) {
	r := NewGeneric[int](4)
	for _, v := range []int{1, 2, 3, 4, 5} {
		r.Insert(v)
	}
	r.RemoveBefore(4)
	assert.Equal(t, []int{4, 5}, r.Slice())
}

func TestSearchFindsInsertionPoint(t *testing.T) {
	r := NewGeneric[int](4)
	for _, v := range []int{1, 3, 5, 7} {
		r.Insert(v)
	}
	assert.Equal(t, 0, r.Search(0))
	assert.Equal(t, 2, r.Search(5))
	assert.Equal(t, 4, r.Search(8))
}
