package atomicfloat

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// PeakTracker records the highest magnitude value observed, lock-free.
// Navigation updates it once per tick from its own goroutine; telemetry's
// sender goroutine reads it every ~100 ms for the additional_data section
// (spec.md §4.4) without taking the kinematic record's lock.
type PeakTracker struct {
	peak *Float64
}

// NewPeakTracker starts tracking from zero.
func NewPeakTracker() *PeakTracker {
	return &PeakTracker{peak: NewFloat64(0)}
}

// Observe updates the tracked peak if |v| exceeds it.
func (t *PeakTracker) Observe(v float64) {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	for {
		cur := t.peak.Load()
		if abs <= cur {
			return
		}
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&t.peak.val)),
			math.Float64bits(cur),
			math.Float64bits(abs)) {
			return
		}
	}
}

// Peak returns the highest magnitude observed so far.
func (t *PeakTracker) Peak() float64 {
	return t.peak.Load()
}
