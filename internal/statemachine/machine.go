package statemachine

import (
	"github.com/hyped-pod/podctl/internal/podlog"
	"github.com/hyped-pod/podctl/internal/store"
)

// Config bounds the guards that need a number spec.md leaves to deployment:
// run length, cruise velocity, and how long Accelerating may run before it's
// considered stalled.
type Config struct {
	RunLengthMeters       float64
	MaxVelocityMps        float64
	AccelerationTimeoutUs int64
}

// StateMachine advances store.MissionStateRecord.CurrentState one tick at a
// time, switching on the current state and checking that state's guards in
// priority order: emergency first, then forward progress. Grounded on
// original_source/src/state_machine/main.cpp's per-state switch; the
// Pre-prefixed states (PreCalibrating, PreReady, PreBraking,
// FailurePreBraking) are this repo's demo-variant additions (spec.md §9),
// each gating a risky transition behind one extra, independently-checked
// condition rather than folding it into the state it precedes.
type StateMachine struct {
	st  *store.Store
	log podlog.Logger
	cfg Config

	enteredAcceleratingAtUs int64
}

// New constructs a state machine driven by st and logging through log.
func New(st *store.Store, log podlog.Logger, cfg Config) *StateMachine {
	return &StateMachine{st: st, log: log, cfg: cfg}
}

// Tick reads one snapshot of the store, evaluates the current state's
// guards, and writes back any resulting transition. nowUs is the caller's
// monotonic clock, used only by the acceleration-timeout guard. It reports
// whether a transition fired and, for logging/tests, the guard that fired
// it.
func (m *StateMachine) Tick(nowUs int64) (next store.MissionState, fired bool, guard string) {
	rec := m.st.GetMissionState()
	s := takeSnapshot(m.st)
	cur := rec.CurrentState
	next = cur

	emergency := hasEmergency(s, rec.CriticalFailure)

	switch cur {
	case store.Idle:
		if emergency {
			next, fired, guard = store.FailureStopped, true, "has_emergency"
		} else if calibrateCommand(s) {
			next, fired, guard = store.PreCalibrating, true, "calibrate_command"
		}

	case store.PreCalibrating:
		if emergency {
			next, fired, guard = store.FailureStopped, true, "has_emergency"
		} else if modulesInitialised(s) {
			next, fired, guard = store.Calibrating, true, "modules_initialised"
		}

	case store.Calibrating:
		if emergency {
			next, fired, guard = store.FailureStopped, true, "has_emergency"
		} else if modulesReady(s) {
			next, fired, guard = store.PreReady, true, "modules_ready"
		}

	case store.PreReady:
		if emergency {
			next, fired, guard = store.FailureStopped, true, "has_emergency"
		} else if !highPowerOff(s) {
			next, fired, guard = store.Ready, true, "high_power_on"
		}

	case store.Ready:
		if emergency {
			next, fired, guard = store.FailureStopped, true, "has_emergency"
		} else if launchCommand(s) {
			next, fired, guard = store.Accelerating, true, "launch_command"
			m.enteredAcceleratingAtUs = nowUs
		}

	case store.Accelerating:
		switch {
		case emergency:
			next, fired, guard = store.FailurePreBraking, true, "has_emergency"
		case accelerationTimeExceeded(m.enteredAcceleratingAtUs, nowUs, m.cfg.AccelerationTimeoutUs):
			next, fired, guard = store.FailurePreBraking, true, "acceleration_time_exceeded"
		case enteredBrakingZone(s, m.cfg.RunLengthMeters) || brakingCommand(s):
			if highPowerOff(s) {
				next, fired, guard = store.NominalBraking, true, "entered_braking_zone,high_power_off"
			} else {
				next, fired, guard = store.PreBraking, true, "entered_braking_zone"
			}
		case reachedMaxVelocity(s, m.cfg.MaxVelocityMps):
			next, fired, guard = store.Cruising, true, "reached_max_velocity"
		}

	case store.Cruising:
		switch {
		case emergency:
			next, fired, guard = store.FailurePreBraking, true, "has_emergency"
		case enteredBrakingZone(s, m.cfg.RunLengthMeters) || brakingCommand(s):
			if highPowerOff(s) {
				next, fired, guard = store.NominalBraking, true, "entered_braking_zone,high_power_off"
			} else {
				next, fired, guard = store.PreBraking, true, "entered_braking_zone"
			}
		}

	case store.PreBraking:
		if emergency {
			next, fired, guard = store.FailurePreBraking, true, "has_emergency"
		} else if highPowerOff(s) {
			next, fired, guard = store.NominalBraking, true, "high_power_off"
		}

	case store.NominalBraking:
		if emergency {
			next, fired, guard = store.FailureBraking, true, "has_emergency"
		} else if podStopped(s) {
			next, fired, guard = store.Finished, true, "pod_stopped"
		}

	case store.FailurePreBraking:
		if highPowerOff(s) {
			next, fired, guard = store.FailureBraking, true, "high_power_off"
		}

	case store.FailureBraking:
		if podStopped(s) {
			next, fired, guard = store.FailureStopped, true, "pod_stopped"
		}

	case store.Finished:
		if shutdownCommand(s) {
			next, fired, guard = store.Off, true, "shutdown_command"
		}

	case store.FailureStopped:
		if shutdownCommand(s) {
			next, fired, guard = store.Off, true, "shutdown_command"
		}

	case store.Off:
		// Terminal; no transitions permitted.
	}

	if !fired {
		return cur, false, ""
	}

	newRec := store.MissionStateRecord{
		CurrentState:    next,
		CriticalFailure: rec.CriticalFailure || isFailureState(next),
	}
	m.st.SetMissionState(newRec)

	m.log.Info("mission state transition",
		"from", cur.String(), "to", next.String(), "guard", guard)

	return next, true, guard
}

func isFailureState(s store.MissionState) bool {
	switch s {
	case store.FailurePreBraking, store.FailureBraking, store.FailureStopped:
		return true
	default:
		return false
	}
}
