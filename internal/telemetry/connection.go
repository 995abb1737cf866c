package telemetry

import (
	"fmt"
	"net"
	"time"

	"github.com/hyped-pod/podctl/internal/store"
)

// Dial opens the single TCP connection to the ground endpoint that the
// sender and receiver tasks share (spec.md §4.4 "Connection"). An initial
// failure to connect sets telemetry's module status to CriticalFailure, per
// spec.md's stated behavior, and is returned to the caller so it can exit
// the task cleanly rather than retrying.
func Dial(st *store.Store, host string, port int, timeout time.Duration) (net.Conn, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		markCriticalFailure(st)
		return nil, fmt.Errorf("telemetry: connect %s: %w", addr, err)
	}
	return conn, nil
}

func markCriticalFailure(st *store.Store) {
	cmd := st.GetTelemetryCommand()
	cmd.ModuleStatus = store.CriticalFailure
	st.SetTelemetryCommand(cmd)
}
