package statemachine

import (
	"math"

	"github.com/hyped-pod/podctl/internal/store"
)

// PodStoppedThresholdMps is the velocity below which the pod is considered
// at rest (original_source checkAtRest uses an epsilon in the same range).
const PodStoppedThresholdMps = 0.1

// hasEmergency reports any condition that must pre-empt the forward-progress
// guard for the current state, regardless of which state that is: a latched
// critical failure from any module, or an operator emergency-stop command.
func hasEmergency(s snapshot, criticalFailure bool) bool {
	if criticalFailure || s.telemetry.EmergencyStopCommand {
		return true
	}
	if s.telemetry.ModuleStatus == store.CriticalFailure {
		return true
	}
	for _, st := range s.moduleStatuses() {
		if st == store.CriticalFailure {
			return true
		}
	}
	return false
}

// modulesInitialised reports every module past Start.
func modulesInitialised(s snapshot) bool {
	for _, st := range s.moduleStatuses() {
		if !st.AtLeast(store.Init) {
			return false
		}
	}
	return true
}

// modulesReady reports every module at Ready.
func modulesReady(s snapshot) bool {
	for _, st := range s.moduleStatuses() {
		if !st.AtLeast(store.Ready) {
			return false
		}
	}
	return true
}

func calibrateCommand(s snapshot) bool { return s.telemetry.CalibrateCommand }
func launchCommand(s snapshot) bool    { return s.telemetry.LaunchCommand }
func shutdownCommand(s snapshot) bool  { return s.telemetry.ShutdownCommand }
func resetCommand(s snapshot) bool     { return s.telemetry.ResetCommand }
func brakingCommand(s snapshot) bool   { return s.telemetry.NominalBrakingCommand }

// highPowerOff reports every high-power relay confirmed open.
func highPowerOff(s snapshot) bool { return s.batteries.HighPowerRelaysOff }

// BrakingBufferMeters is the small positive safety margin spec.md's
// entered_braking_zone guard adds on top of the raw braking distance.
const BrakingBufferMeters = 20.0

// enteredBrakingZone reports displacement + braking_distance + buffer has
// reached the configured run length — the pod must begin nominal braking.
func enteredBrakingZone(s snapshot, runLengthMeters float64) bool {
	return s.kinematic.Displacement+s.kinematic.BrakingDistance+BrakingBufferMeters >= runLengthMeters
}

// reachedMaxVelocity reports the pod at or above the configured cruise
// velocity, the trigger to stop accelerating.
func reachedMaxVelocity(s snapshot, maxVelocityMps float64) bool {
	return s.kinematic.Velocity >= maxVelocityMps
}

// podStopped reports the pod's velocity at rest and every brake clamped.
func podStopped(s snapshot) bool {
	if math.Abs(s.kinematic.Velocity) > PodStoppedThresholdMps {
		return false
	}
	for _, clamped := range s.brakes.Clamped {
		if !clamped {
			return false
		}
	}
	return true
}

// accelerationTimeExceeded reports whether the pod has spent longer than
// boundUs in Accelerating without reaching cruise velocity — a standing
// failure independent of any single sensor, since a stalled pod otherwise
// looks identical to a slow one. The state machine passes
// Config.AccelerationTimeoutUs as boundUs; the same bound applies to every
// run type, and the run type does not change it.
func accelerationTimeExceeded(enteredAcceleratingAtUs, nowUs, boundUs int64) bool {
	if enteredAcceleratingAtUs == 0 {
		return false
	}
	return nowUs-enteredAcceleratingAtUs > boundUs
}
