package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	channerics "github.com/niceyeti/channerics/channels"

	"github.com/hyped-pod/podctl/internal/podlog"
	"github.com/hyped-pod/podctl/internal/store"
)

// RunSender snapshots the store every period and writes one
// newline-terminated JSON message to conn, until ctx is cancelled or a
// write fails. Grounded on sendloop.cpp's fixed-period pack-and-send loop;
// the ticker is the teacher's channerics.NewTicker pattern
// (server/server.go's ping loop).
// publish, if non-nil, receives every snapshot as it's sent — the hook
// Dashboard.Publish uses to mirror the control-critical stream locally.
// peakVelocity is forwarded to BuildSnapshot unchanged.
func RunSender(ctx context.Context, conn net.Conn, st *store.Store, period time.Duration, log podlog.Logger, publish func(Snapshot), peakVelocity func() float64) error {
	ticker := channerics.NewTicker(ctx.Done(), period)
	enc := json.NewEncoder(conn)

	var sequenceID uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case now, ok := <-ticker:
			if !ok {
				return nil
			}
			sequenceID++
			snap := BuildSnapshot(st, sequenceID, now.Unix(), peakVelocity)
			if publish != nil {
				publish(snap)
			}
			if err := enc.Encode(snap); err != nil {
				markCriticalFailure(st)
				log.Error("telemetry sender: write failed", "error", err)
				return fmt.Errorf("telemetry: send: %w", err)
			}
		}
	}
}
