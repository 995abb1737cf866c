package store

import (
	"sync"
	"sync/atomic"
)

// slot wraps one record behind its own RWMutex. Teacher precedent:
// atomic_float.AtomicFloat64 guards a single float64 with a CAS loop; a
// whole multi-field record cannot be updated with a single CAS, so each
// slot here uses a plain RWMutex instead, held only for the duration of a
// value copy in or out (spec.md §4.1's "brief lock holds"). No code ever
// holds two slots' locks at once.
type slot[T any] struct {
	mu  sync.RWMutex
	val T
}

func (s *slot[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.val
}

func (s *slot[T]) set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.val = v
}

// Store is the single process-wide shared state store. It is constructed
// once at process start (store.New) and lives for the process lifetime;
// no record slot is ever destroyed. Zero-initialized slots hold the
// spec's "safe neutral" default: zero kinematics, Start statuses, all
// command booleans false, mission state Idle.
type Store struct {
	kinematic  slot[KinematicRecord]
	imu        [NumIMUs]slot[IMURecord]
	stripe     [NumStripeCounters]slot[StripeRecord]
	lpBattery  [NumLowPowerBatteries]slot[BatteryRecord]
	hpBattery  [NumHighPowerBatteries]slot[BatteryRecord]
	batteries  slot[BatteriesRecord]
	brakes     slot[BrakeFeedbackRecord]
	motors     slot[MotorRecord]
	sensors    slot[SensorsRecord]
	temperature slot[TemperatureRecord]
	telemetryCmd slot[TelemetryCommandRecord]
	missionState slot[MissionStateRecord]

	// running is the process-wide shutdown flag (spec.md §5, §9): a single
	// atomic boolean, set false only by the signal handler or by the state
	// machine reaching Off. Every task loop polls it once per iteration.
	running atomic.Bool
}

// New constructs a Store with every slot at its safe-neutral default.
func New() *Store {
	s := &Store{}
	s.running.Store(true)
	s.missionState.set(MissionStateRecord{CurrentState: Idle})
	return s
}

// Running reports whether task loops should keep iterating.
func (s *Store) Running() bool { return s.running.Load() }

// Stop clears the running flag. Idempotent; safe to call from a signal handler.
func (s *Store) Stop() { s.running.Store(false) }

// Kinematic record (written by navigation).
func (s *Store) GetKinematic() KinematicRecord   { return s.kinematic.get() }
func (s *Store) SetKinematic(r KinematicRecord)  { s.kinematic.set(r) }

// IMU records (written by the IMU sensor producer).
func (s *Store) GetIMU(i int) IMURecord  { return s.imu[i].get() }
func (s *Store) SetIMU(i int, r IMURecord) { s.imu[i].set(r) }

// Stripe counter records (written by the stripe-counter sensor producer).
func (s *Store) GetStripe(i int) StripeRecord   { return s.stripe[i].get() }
func (s *Store) SetStripe(i int, r StripeRecord) { s.stripe[i].set(r) }

// Battery records (written by the battery-management producer).
func (s *Store) GetLowPowerBattery(i int) BatteryRecord    { return s.lpBattery[i].get() }
func (s *Store) SetLowPowerBattery(i int, r BatteryRecord) { s.lpBattery[i].set(r) }
func (s *Store) GetHighPowerBattery(i int) BatteryRecord    { return s.hpBattery[i].get() }
func (s *Store) SetHighPowerBattery(i int, r BatteryRecord) { s.hpBattery[i].set(r) }
func (s *Store) GetBatteries() BatteriesRecord  { return s.batteries.get() }
func (s *Store) SetBatteries(r BatteriesRecord) { s.batteries.set(r) }

// Brake feedback record (written by the brake-feedback producer).
func (s *Store) GetBrakes() BrakeFeedbackRecord  { return s.brakes.get() }
func (s *Store) SetBrakes(r BrakeFeedbackRecord) { s.brakes.set(r) }

// Motor record (written by the motor-feedback producer).
func (s *Store) GetMotors() MotorRecord  { return s.motors.get() }
func (s *Store) SetMotors(r MotorRecord) { s.motors.set(r) }

// Sensors aggregate module status (written by the sensor manager).
func (s *Store) GetSensors() SensorsRecord  { return s.sensors.get() }
func (s *Store) SetSensors(r SensorsRecord) { s.sensors.set(r) }

// Temperature record (written by the temperature sensor producer).
func (s *Store) GetTemperature() TemperatureRecord  { return s.temperature.get() }
func (s *Store) SetTemperature(r TemperatureRecord) { s.temperature.set(r) }

// Telemetry-command record (written by the telemetry receiver).
func (s *Store) GetTelemetryCommand() TelemetryCommandRecord  { return s.telemetryCmd.get() }
func (s *Store) SetTelemetryCommand(r TelemetryCommandRecord) { s.telemetryCmd.set(r) }

// Mission-state record (written by the state machine).
func (s *Store) GetMissionState() MissionStateRecord  { return s.missionState.get() }
func (s *Store) SetMissionState(r MissionStateRecord) { s.missionState.set(r) }
