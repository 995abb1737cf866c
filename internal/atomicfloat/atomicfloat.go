// Package atomicfloat provides a lock-free float64 cell, used where a hot
// 1 kHz loop needs to publish a running figure (e.g. peak velocity) without
// contending with the shared store's per-record mutexes. Grounded on
// atomic_float/atomic_float.go's CAS-loop technique, generalized from a
// standalone float cell into the PeakTracker built on top of it.
package atomicfloat

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Float64 encapsulates a float64 for lock-free atomic reads and
// compare-and-swap updates, implemented via the bit-pattern CAS trick over
// atomic.CompareAndSwapUint64 (float64 itself has no native atomic op).
type Float64 struct {
	val float64
}

// NewFloat64 wraps val for atomic operations.
func NewFloat64(val float64) *Float64 {
	return &Float64{val: val}
}

// Load returns the current value.
func (f *Float64) Load() float64 {
	bits := atomic.LoadUint64((*uint64)(unsafe.Pointer(&f.val)))
	return math.Float64frombits(bits)
}

// Add attempts to add addend to the current value via compare-and-swap,
// reporting the value it wrote and whether the swap won the race. Callers
// that must not lose an update should retry in a loop; callers that can
// tolerate a stale add (like a best-effort peak tracker) can ignore a
// failed swap and pick it up on the next tick.
func (f *Float64) Add(addend float64) (newVal float64, succeeded bool) {
	old := f.Load()
	newVal = old + addend
	succeeded = atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(&f.val)),
		math.Float64bits(old),
		math.Float64bits(newVal))
	return
}

// Store attempts to set the value via compare-and-swap against the value it
// loads immediately beforehand, reporting success. It does not compare
// against any value the caller read earlier.
func (f *Float64) Store(newVal float64) (succeeded bool) {
	old := f.Load()
	succeeded = atomic.CompareAndSwapUint64(
		(*uint64)(unsafe.Pointer(&f.val)),
		math.Float64bits(old),
		math.Float64bits(newVal))
	return
}
