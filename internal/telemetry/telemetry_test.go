package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/hyped-pod/podctl/internal/podlog"
	"github.com/hyped-pod/podctl/internal/store"
)

func TestMissionStateWireNames(t *testing.T) {
	for _, s := range []store.MissionState{
		store.Idle, store.PreCalibrating, store.Calibrating, store.PreReady,
		store.Ready, store.Accelerating, store.Cruising, store.PreBraking,
		store.NominalBraking, store.Finished, store.FailurePreBraking,
		store.FailureBraking, store.FailureStopped, store.Off,
	} {
		got := s.String()
		parsed, ok := store.ParseMissionState(got)
		if !ok {
			t.Fatalf("ParseMissionState(%q) failed to parse its own String()", got)
		}
		if parsed != s {
			t.Fatalf("round trip mismatch: %v -> %q -> %v", s, got, parsed)
		}
	}
	if store.MissionState(999).String() != "INVALID" {
		t.Fatalf("expected INVALID for an out-of-range state")
	}
}

func TestBuildSnapshot(t *testing.T) {
	Convey("Given a store with kinematic and status data set", t, func() {
		st := store.New()
		st.SetKinematic(store.KinematicRecord{Displacement: 10, Velocity: 5, Acceleration: 1, ModuleStatus: store.Ready})

		snap := BuildSnapshot(st, 42, 1000, nil)

		Convey("The snapshot carries the sequence id and crucial data through unchanged", func() {
			So(snap.SequenceID, ShouldEqual, uint64(42))
			So(snap.CrucialData.Displacement.Value, ShouldEqual, 10)
			So(snap.CrucialData.Velocity.Value, ShouldEqual, 5)
			So(snap.CrucialData.MissionState, ShouldEqual, "IDLE")
			So(snap.StatusData.Navigation, ShouldEqual, "READY")
		})

		Convey("It marshals to JSON without error", func() {
			_, err := json.Marshal(snap)
			So(err, ShouldBeNil)
		})
	})
}

func TestReceiverAppliesKnownTokens(t *testing.T) {
	Convey("Given a receiver reading from an in-memory connection", t, func() {
		server, client := net.Pipe()
		defer client.Close()
		st := store.New()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- RunReceiver(ctx, server, st, podlog.Discard) }()

		Convey("CALIBRATE sets calibrate_command", func() {
			sendToken(client, "CALIBRATE")
			time.Sleep(20 * time.Millisecond)
			So(st.GetTelemetryCommand().CalibrateCommand, ShouldBeTrue)
			cancel()
		})

		Convey("An unrecognised token sets CriticalFailure and stops the loop", func() {
			sendToken(client, "GARBAGE")
			err := <-done
			So(err, ShouldNotBeNil)
			So(st.GetTelemetryCommand().ModuleStatus, ShouldEqual, store.CriticalFailure)
		})
	})
}

func sendToken(conn net.Conn, token string) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%8d", len(token))
	buf.WriteString(token)
	conn.Write(buf.Bytes())
}
