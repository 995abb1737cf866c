package statemachine

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/hyped-pod/podctl/internal/podlog"
	"github.com/hyped-pod/podctl/internal/store"
)

func readyStore() *store.Store {
	st := store.New()
	for _, setStatus := range []func(store.ModuleStatus){
		func(s store.ModuleStatus) { k := st.GetKinematic(); k.ModuleStatus = s; st.SetKinematic(k) },
		func(s store.ModuleStatus) { b := st.GetBrakes(); b.ModuleStatus = s; st.SetBrakes(b) },
		func(s store.ModuleStatus) { m := st.GetMotors(); m.ModuleStatus = s; st.SetMotors(m) },
		func(s store.ModuleStatus) { sr := st.GetSensors(); sr.ModuleStatus = s; st.SetSensors(sr) },
		func(s store.ModuleStatus) { b := st.GetBatteries(); b.ModuleStatus = s; st.SetBatteries(b) },
		func(s store.ModuleStatus) { t := st.GetTemperature(); t.ModuleStatus = s; st.SetTemperature(t) },
	} {
		setStatus(store.Ready)
	}
	return st
}

func TestMissionStateMachine(t *testing.T) {
	Convey("Given a state machine over a freshly-initialised store", t, func() {
		cfg := Config{RunLengthMeters: 1250, MaxVelocityMps: 100, AccelerationTimeoutUs: 120_000_000}
		st := readyStore()
		sm := New(st, podlog.Discard, cfg)

		Convey("It starts Idle and stays there until calibrate_command", func() {
			_, fired, _ := sm.Tick(0)
			So(fired, ShouldBeFalse)
			So(st.GetMissionState().CurrentState, ShouldEqual, store.Idle)

			cmd := st.GetTelemetryCommand()
			cmd.CalibrateCommand = true
			st.SetTelemetryCommand(cmd)

			next, fired, guard := sm.Tick(1)
			So(fired, ShouldBeTrue)
			So(next, ShouldEqual, store.PreCalibrating)
			So(guard, ShouldEqual, "calibrate_command")
		})

		Convey("It walks the full happy path from Idle to Off", func() {
			cmd := st.GetTelemetryCommand()
			cmd.CalibrateCommand = true
			st.SetTelemetryCommand(cmd)
			next, _, _ := sm.Tick(1)
			So(next, ShouldEqual, store.PreCalibrating)

			next, _, _ = sm.Tick(2)
			So(next, ShouldEqual, store.Calibrating)

			next, _, _ = sm.Tick(3)
			So(next, ShouldEqual, store.PreReady)

			batt := st.GetBatteries()
			batt.HighPowerRelaysOff = false
			st.SetBatteries(batt)
			next, _, _ = sm.Tick(4)
			So(next, ShouldEqual, store.Ready)

			cmd = st.GetTelemetryCommand()
			cmd.LaunchCommand = true
			st.SetTelemetryCommand(cmd)
			next, _, _ = sm.Tick(5)
			So(next, ShouldEqual, store.Accelerating)

			k := st.GetKinematic()
			k.Velocity = 100
			st.SetKinematic(k)
			next, _, _ = sm.Tick(6)
			So(next, ShouldEqual, store.Cruising)

			k = st.GetKinematic()
			k.Displacement = 1240
			k.BrakingDistance = 50
			st.SetKinematic(k)
			next, _, guard := sm.Tick(7)
			So(next, ShouldEqual, store.PreBraking)
			So(guard, ShouldEqual, "entered_braking_zone")

			batt = st.GetBatteries()
			batt.HighPowerRelaysOff = true
			st.SetBatteries(batt)
			next, _, _ = sm.Tick(8)
			So(next, ShouldEqual, store.NominalBraking)

			k = st.GetKinematic()
			k.Velocity = 0
			st.SetKinematic(k)
			brakes := st.GetBrakes()
			for i := range brakes.Clamped {
				brakes.Clamped[i] = true
			}
			st.SetBrakes(brakes)
			next, _, guard = sm.Tick(9)
			So(next, ShouldEqual, store.Finished)
			So(guard, ShouldEqual, "pod_stopped")

			cmd = st.GetTelemetryCommand()
			cmd.ShutdownCommand = true
			st.SetTelemetryCommand(cmd)
			next, _, _ = sm.Tick(10)
			So(next, ShouldEqual, store.Off)
		})

		Convey("An emergency-stop command during Accelerating routes through the failure spine", func() {
			cmd := st.GetTelemetryCommand()
			cmd.CalibrateCommand, cmd.LaunchCommand = true, true
			st.SetTelemetryCommand(cmd)
			sm.Tick(1) // Idle -> PreCalibrating
			sm.Tick(2) // -> Calibrating
			sm.Tick(3) // -> PreReady
			batt := st.GetBatteries()
			batt.HighPowerRelaysOff = false
			st.SetBatteries(batt)
			sm.Tick(4) // -> Ready
			sm.Tick(5) // -> Accelerating

			cmd = st.GetTelemetryCommand()
			cmd.EmergencyStopCommand = true
			st.SetTelemetryCommand(cmd)
			next, fired, guard := sm.Tick(6)
			So(fired, ShouldBeTrue)
			So(next, ShouldEqual, store.FailurePreBraking)
			So(guard, ShouldEqual, "has_emergency")
			So(st.GetMissionState().CriticalFailure, ShouldBeTrue)

			batt = st.GetBatteries()
			batt.HighPowerRelaysOff = true
			st.SetBatteries(batt)
			next, _, _ = sm.Tick(7)
			So(next, ShouldEqual, store.FailureBraking)

			k := st.GetKinematic()
			k.Velocity = 0
			st.SetKinematic(k)
			brakes := st.GetBrakes()
			for i := range brakes.Clamped {
				brakes.Clamped[i] = true
			}
			st.SetBrakes(brakes)
			next, _, _ = sm.Tick(8)
			So(next, ShouldEqual, store.FailureStopped)
		})

		Convey("Accelerating past the timeout bound fails without reaching cruise velocity", func() {
			cmd := st.GetTelemetryCommand()
			cmd.CalibrateCommand, cmd.LaunchCommand = true, true
			st.SetTelemetryCommand(cmd)
			sm.Tick(1)
			sm.Tick(2)
			sm.Tick(3)
			batt := st.GetBatteries()
			batt.HighPowerRelaysOff = false
			st.SetBatteries(batt)
			sm.Tick(4)
			sm.Tick(5) // -> Accelerating, enteredAcceleratingAtUs = 5

			next, fired, guard := sm.Tick(cfg.AccelerationTimeoutUs + 6)
			So(fired, ShouldBeTrue)
			So(next, ShouldEqual, store.FailurePreBraking)
			So(guard, ShouldEqual, "acceleration_time_exceeded")
		})

		Convey("Off is terminal", func() {
			st.SetMissionState(store.MissionStateRecord{CurrentState: store.Off})
			_, fired, _ := sm.Tick(0)
			So(fired, ShouldBeFalse)
		})
	})
}
