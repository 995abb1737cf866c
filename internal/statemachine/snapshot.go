// Package statemachine implements the pod's mission state machine: the
// 14-state DAG of spec.md §4.2, driven entirely off the shared store and
// written back to it once per tick. Grounded on
// original_source/src/state_machine/main.cpp's structure (one guard
// function per named check, state handled by a single switch), generalized
// to the full demo-variant DAG spec.md §9 calls for.
package statemachine

import "github.com/hyped-pod/podctl/internal/store"

// snapshot is a single consistent read of every record the guards need,
// taken once per tick so a guard never observes two different ticks' data.
type snapshot struct {
	kinematic store.KinematicRecord
	telemetry store.TelemetryCommandRecord
	brakes    store.BrakeFeedbackRecord
	motors    store.MotorRecord
	sensors   store.SensorsRecord
	batteries store.BatteriesRecord
	temp      store.TemperatureRecord
}

func takeSnapshot(st *store.Store) snapshot {
	return snapshot{
		kinematic: st.GetKinematic(),
		telemetry: st.GetTelemetryCommand(),
		brakes:    st.GetBrakes(),
		motors:    st.GetMotors(),
		sensors:   st.GetSensors(),
		batteries: st.GetBatteries(),
		temp:      st.GetTemperature(),
	}
}

// moduleStatuses returns the status of every module the guards fold over.
func (s snapshot) moduleStatuses() [6]store.ModuleStatus {
	return [6]store.ModuleStatus{
		s.kinematic.ModuleStatus,
		s.brakes.ModuleStatus,
		s.motors.ModuleStatus,
		s.sensors.ModuleStatus,
		s.batteries.ModuleStatus,
		s.temp.ModuleStatus,
	}
}
