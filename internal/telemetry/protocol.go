// Package telemetry implements the pod's bidirectional ground link: a
// sender that snapshots the store into a periodic wire message, and a
// receiver that decodes ground commands into the telemetry-command record.
// Grounded on original_source/src/telemetry/sendloop.cpp (per-record
// pack*Message functions) and recvloop.cpp (token-to-command-field
// dispatch); wire framing adapted from the teacher's server/server.go
// connection-lifecycle pattern.
package telemetry

import "github.com/hyped-pod/podctl/internal/store"

// Point is one named numeric datum with declared bounds, the shape
// spec.md §4.4 requires for both crucial_data and additional_data.
type Point struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Unit  string  `json:"unit"`
}

// CrucialData is the kinematic headline figures plus the current mission
// state, the section ground-station visualisation treats as load-bearing.
type CrucialData struct {
	Displacement Point  `json:"displacement"`
	Velocity     Point  `json:"velocity"`
	Acceleration Point  `json:"acceleration"`
	MissionState string `json:"mission_state"`
}

// StatusData mirrors every module's status, keyed by module name.
type StatusData struct {
	Navigation  string `json:"navigation"`
	Brakes      string `json:"brakes"`
	Motors      string `json:"motors"`
	Sensors     string `json:"sensors"`
	Batteries   string `json:"batteries"`
	Temperature string `json:"temperature"`
	Telemetry   string `json:"telemetry"`
}

// Snapshot is one full telemetry message: spec.md §4.4's
// sequence id + wall-clock timestamp + crucial/status/additional sections.
type Snapshot struct {
	SequenceID     uint64    `json:"sequence_id"`
	TimestampUnix  int64     `json:"timestamp_unix"`
	CrucialData    CrucialData `json:"crucial_data"`
	StatusData     StatusData  `json:"status_data"`
	AdditionalData []Point     `json:"additional_data"`
}

// kinematicBounds are the declared min/max figures attached to each
// crucial_data point; wide enough to cover every run type in Config.
const (
	displacementMin, displacementMax = -10.0, 1500.0
	velocityMin, velocityMax         = -5.0, 120.0
	accelerationMin, accelerationMax = -40.0, 40.0
)

// BuildSnapshot packs one tick's worth of store state into a Snapshot,
// assigning it sequenceID. peakVelocity, if non-nil, is read lock-free
// (internal/atomicfloat.PeakTracker) and folded into additional_data.
// Grounded on sendloop.cpp's packCrucialData / packStatusData /
// packAdditionalData.
func BuildSnapshot(st *store.Store, sequenceID uint64, nowUnix int64, peakVelocity func() float64) Snapshot {
	k := st.GetKinematic()
	ms := st.GetMissionState()
	brakes := st.GetBrakes()
	motors := st.GetMotors()
	sensors := st.GetSensors()
	batteries := st.GetBatteries()
	temp := st.GetTemperature()
	cmd := st.GetTelemetryCommand()

	return Snapshot{
		SequenceID:    sequenceID,
		TimestampUnix: nowUnix,
		CrucialData: CrucialData{
			Displacement: Point{Name: "displacement", Value: k.Displacement, Min: displacementMin, Max: displacementMax, Unit: "m"},
			Velocity:     Point{Name: "velocity", Value: k.Velocity, Min: velocityMin, Max: velocityMax, Unit: "m/s"},
			Acceleration: Point{Name: "acceleration", Value: k.Acceleration, Min: accelerationMin, Max: accelerationMax, Unit: "m/s^2"},
			MissionState: ms.CurrentState.String(),
		},
		StatusData: StatusData{
			Navigation:  k.ModuleStatus.String(),
			Brakes:      brakes.ModuleStatus.String(),
			Motors:      motors.ModuleStatus.String(),
			Sensors:     sensors.ModuleStatus.String(),
			Batteries:   batteries.ModuleStatus.String(),
			Temperature: temp.ModuleStatus.String(),
			Telemetry:   cmd.ModuleStatus.String(),
		},
		AdditionalData: buildAdditionalData(k, temp, peakVelocity),
	}
}

func buildAdditionalData(k store.KinematicRecord, temp store.TemperatureRecord, peakVelocity func() float64) []Point {
	points := []Point{
		{Name: "emergency_braking_distance", Value: k.EmergencyBrakingDistance, Min: 0, Max: displacementMax, Unit: "m"},
		{Name: "braking_distance", Value: k.BrakingDistance, Min: 0, Max: displacementMax, Unit: "m"},
		{Name: "ambient_temperature", Value: temp.Celsius, Min: -40, Max: 80, Unit: "C"},
	}
	if peakVelocity != nil {
		points = append(points, Point{Name: "peak_velocity", Value: peakVelocity(), Min: velocityMin, Max: velocityMax, Unit: "m/s"})
	}
	return points
}

// commandTokens maps the wire tokens spec.md §4.4's receiver table defines
// to the mutation each applies to a TelemetryCommandRecord.
var commandTokens = map[string]func(*store.TelemetryCommandRecord){
	"ACK":                      func(*store.TelemetryCommandRecord) {},
	"STOP":                     func(c *store.TelemetryCommandRecord) { c.EmergencyStopCommand = true },
	"CALIBRATE":                func(c *store.TelemetryCommandRecord) { c.CalibrateCommand = true },
	"LAUNCH":                   func(c *store.TelemetryCommandRecord) { c.LaunchCommand = true },
	"RESET":                    func(c *store.TelemetryCommandRecord) { c.ResetCommand = true },
	"SHUTDOWN":                 func(c *store.TelemetryCommandRecord) { c.ShutdownCommand = true },
	"SERVER_PROPULSION_GO":     func(c *store.TelemetryCommandRecord) { c.ServicePropulsionGo = true },
	"SERVER_PROPULSION_STOP":   func(c *store.TelemetryCommandRecord) { c.ServicePropulsionGo = false },
	"NOMINAL_BRAKING":          func(c *store.TelemetryCommandRecord) { c.NominalBrakingCommand = true },
	"NOMINAL_RETRACT":          func(c *store.TelemetryCommandRecord) { c.NominalBrakingCommand = false },
}

// applyToken mutates the command record for a recognised token and reports
// whether the token was recognised at all.
func applyToken(rec *store.TelemetryCommandRecord, token string) bool {
	mutate, ok := commandTokens[token]
	if !ok {
		return false
	}
	mutate(rec)
	return true
}
