package telemetry

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/hyped-pod/podctl/internal/podlog"
)

// dashboardWriteWait and dashboardPushPeriod mirror the teacher's
// server/server.go websocket timing constants, narrowed to this mirror's
// push-only use.
const (
	dashboardWriteWait   = 1 * time.Second
	dashboardPushPeriod  = 200 * time.Millisecond
)

var dashboardUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Dashboard is a read-only local mirror of the most recent outbound
// telemetry Snapshot, served over a websocket for a ground-station-less dev
// view. It is not part of the control-critical link (see SPEC_FULL.md §4.4)
// and carries no command input. Grounded on the teacher's
// server/server.go + server/fastview websocket-push pattern, renamed from
// grid-world state updates to telemetry snapshots.
type Dashboard struct {
	addr string

	mu   sync.RWMutex
	last Snapshot

	log podlog.Logger
}

// NewDashboard constructs a Dashboard that will serve on addr once Run is
// called.
func NewDashboard(addr string, log podlog.Logger) *Dashboard {
	return &Dashboard{addr: addr, log: log}
}

// Publish records the latest snapshot for new and existing websocket
// clients to pick up. Safe to call from the sender's goroutine.
func (d *Dashboard) Publish(snap Snapshot) {
	d.mu.Lock()
	d.last = snap
	d.mu.Unlock()
}

func (d *Dashboard) current() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last
}

// Run serves the dashboard's HTTP+websocket endpoint until ctx is
// cancelled.
func (d *Dashboard) Run(ctx context.Context) error {
	r := mux.NewRouter()
	r.HandleFunc("/ws", d.serveWebsocket)

	srv := &http.Server{Addr: d.addr, Handler: r}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (d *Dashboard) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := dashboardUpgrader.Upgrade(w, r, nil)
	if err != nil {
		d.log.Error("dashboard: upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	ticker := time.NewTicker(dashboardPushPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := ws.SetWriteDeadline(time.Now().Add(dashboardWriteWait)); err != nil {
			return
		}
		if err := ws.WriteJSON(d.current()); err != nil {
			return
		}
	}
}
