package store

// NumIMUs is the number of redundant accelerometer units navigation fuses.
const NumIMUs = 4

// NumStripeCounters is the number of redundant optical stripe counters.
const NumStripeCounters = 2

// NumLowPowerBatteries and NumHighPowerBatteries mirror the pod's battery bank layout.
const (
	NumLowPowerBatteries  = 3
	NumHighPowerBatteries = 2
	NumBatteryCells       = 36
	NumBrakes             = 4
	NumMotors             = 4
)

// Vector3 is a 3-axis reading along (x, y, z).
type Vector3 struct {
	X, Y, Z float64
}

// KinematicRecord is navigation's sole output: fused displacement, velocity,
// acceleration, and the two braking-distance figures the state machine
// gates transitions on. Single writer: the navigation estimator.
type KinematicRecord struct {
	Displacement             float64 // m
	Velocity                 float64 // m/s
	Acceleration             float64 // m/s^2
	EmergencyBrakingDistance float64 // m
	BrakingDistance          float64 // m
	ModuleStatus             ModuleStatus
}

// IMURecord is one accelerometer's raw reading plus operability and a
// shared acquisition timestamp (microseconds since process start).
type IMURecord struct {
	Acceleration Vector3
	Operational  bool
	TimestampUs  int64
}

// StripeRecord is one optical stripe counter's monotonic count and the
// timestamp of its last genuine increment.
type StripeRecord struct {
	Count       uint32
	TimestampUs int64
}

// BatteryRecord describes one battery pack, low- or high-power.
type BatteryRecord struct {
	VoltageDv          int16 // deci-volts
	CurrentDa          int16 // deci-amps
	ChargePercent       uint8
	AverageTemperatureC int8
	CellVoltagesMv      [NumBatteryCells]uint16 // high-power only; zero for low-power
	LowTemperatureC     int8
	HighTemperatureC    int8
	LowVoltageCellMv    uint16
	HighVoltageCellMv   uint16
	InsulationFault     bool
}

// BrakeFeedbackRecord reports per-brake retracted/clamped state.
type BrakeFeedbackRecord struct {
	Retracted    [NumBrakes]bool
	Clamped      [NumBrakes]bool
	ModuleStatus ModuleStatus
}

// MotorRecord reports per-motor RPM.
type MotorRecord struct {
	RPM          [NumMotors]uint32
	ModuleStatus ModuleStatus
}

// TemperatureRecord is a single ambient temperature scalar, degrees C.
type TemperatureRecord struct {
	Celsius      float64
	ModuleStatus ModuleStatus
}

// BatteriesRecord bundles the module status shared by all battery packs;
// the packs themselves are stored as parallel slots (see
// Store.GetLowPowerBattery and Store.GetHighPowerBattery).
// HighPowerRelaysOff is true once every high-voltage propulsion relay has
// reported open — the state machine's "high power off" precondition for
// safe braking (spec.md GLOSSARY).
type BatteriesRecord struct {
	ModuleStatus       ModuleStatus
	HighPowerRelaysOff bool
}

// SensorsRecord is the aggregate module status of the raw sensor producers
// (IMUs + stripe counters); the readings themselves live in their own slots.
type SensorsRecord struct {
	ModuleStatus ModuleStatus
}

// TelemetryCommandRecord is telemetry's sole write target: the ground
// station's latest commands plus telemetry's own module status.
type TelemetryCommandRecord struct {
	CalibrateCommand      bool
	LaunchCommand         bool
	ShutdownCommand       bool
	EmergencyStopCommand  bool
	ServicePropulsionGo   bool
	NominalBrakingCommand bool
	ResetCommand          bool
	ModuleStatus          ModuleStatus
}

// MissionState enumerates the mission state machine's states (spec.md §4.2).
type MissionState int

const (
	Idle MissionState = iota
	PreCalibrating
	Calibrating
	PreReady
	Ready
	Accelerating
	Cruising
	PreBraking
	NominalBraking
	Finished
	FailurePreBraking
	FailureBraking
	FailureStopped
	Off
)

// String returns the ground-station wire name for a mission state
// (spec.md §4.4's table). Unmapped/invalid states serialize to INVALID.
func (s MissionState) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case PreCalibrating:
		return "PRE_CALIBRATING"
	case Calibrating:
		return "CALIBRATING"
	case PreReady:
		return "PRE_READY"
	case Ready:
		return "READY"
	case Accelerating:
		return "ACCELERATING"
	case Cruising:
		return "CRUISING"
	case PreBraking:
		return "PRE_BRAKING"
	case NominalBraking:
		return "NOMINAL_BRAKING"
	case Finished:
		return "FINISHED"
	case FailurePreBraking:
		return "FAILURE_PRE_BRAKING"
	case FailureBraking:
		return "FAILURE_BRAKING"
	case FailureStopped:
		return "FAILURE_STOPPED"
	case Off:
		return "OFF"
	default:
		return "INVALID"
	}
}

// ParseMissionState is the inverse of MissionState.String, used by tests
// asserting the P8 round-trip property.
func ParseMissionState(s string) (MissionState, bool) {
	for st := Idle; st <= Off; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}

// MissionStateRecord is the state machine's sole write target.
type MissionStateRecord struct {
	CurrentState     MissionState
	CriticalFailure  bool
}
