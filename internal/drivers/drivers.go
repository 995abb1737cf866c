// Package drivers models the pod's hardware producers/consumers as thin
// typed interfaces over the shared store (spec.md's explicit Non-goal:
// "low-level hardware drivers ... are modeled as producers/consumers of
// typed records in the shared store; their internal protocol handling is a
// thin layer the core consumes"). Real drivers are out of scope; this
// package supplies the interface boundary plus fake implementations for
// bench testing, selected at startup by Config (spec.md §9 "dynamic
// dispatch for fakes/real drivers: ... tagged variants or interface
// abstractions; do not rely on runtime plugin loading").
package drivers

import (
	"context"
	"time"

	"github.com/hyped-pod/podctl/internal/podlog"
)

// Source produces one record per poll. Real implementations talk to
// hardware (SPI/I2C/CAN/GPIO); fakes synthesize values for bench testing.
type Source[T any] interface {
	Read() (T, error)
}

// RunProducer polls src every interval and hands the result to write,
// until ctx is cancelled. Grounded on reinforcement.Train's
// goroutine-per-worker model (learning.go's agent_worker loop), narrowed
// from episode generation to a fixed-period poll-and-publish cycle.
func RunProducer[T any](ctx context.Context, interval time.Duration, src Source[T], write func(T), log podlog.Logger, name string) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v, err := src.Read()
			if err != nil {
				log.Error("driver read failed", "driver", name, "error", err)
				continue
			}
			write(v)
		}
	}
}
