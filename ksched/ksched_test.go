package ksched

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoroutineCurrentThreadDistinct(t *testing.T) {
	var s Scheduler = Goroutine{}
	a := s.CurrentThread()
	b := s.CurrentThread()
	assert.NotEqual(t, a, b)
}

func TestGoroutineCurrentTIDMonotone(t *testing.T) {
	s := Goroutine{}
	a := s.CurrentTID()
	b := s.CurrentTID()
	assert.Less(t, a, b)
}

func TestGoroutineYieldToDoesNotPanic(t *testing.T) {
	s := Goroutine{}
	assert.NotPanics(t, func() { s.YieldTo(s.CurrentThread()) })
}
