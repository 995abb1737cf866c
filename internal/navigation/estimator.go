// Package navigation fuses four redundant accelerometers and two optical
// stripe counters into the pod's kinematic estimate (spec.md §4.3),
// grounded on original_source/src/navigation/navigation.cpp.
package navigation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hyped-pod/podctl/internal/atomicfloat"
	"github.com/hyped-pod/podctl/internal/podlog"
	"github.com/hyped-pod/podctl/internal/store"
)

// Tunables matching the orders of magnitude spec.md §4.3 names explicitly.
const (
	CalibrationQueries          = 1000 // readings per IMU during calibration, order 10^3
	CalibrationAttempts         = 3
	CalibrationVarianceLimit    = 0.05 // m/s^2, per axis
	OutlierCounterThreshold     = 1000 // consecutive-tick threshold, order 10^3
	DefaultTukeyMultiplier      = 1.5
	RollingHistorySize          = 1000 // order 10^3
	EmergencyDecelerationMPS2   = 30.0 // fixed worst-case deceleration figure
	BrakingSafetyFactor         = 1.2  // braking_distance = factor * emergency_braking_distance
	UncertaintyWarmupTicks      = 5
)

// rawImuSample is a single tick's 3-axis reading across all four IMUs.
type rawImuSample [store.NumIMUs][3]float64

// Estimator is navigation's estimator task. One Estimator is owned and
// driven by a single goroutine (spec.md §5); it is not safe for concurrent
// use from multiple goroutines.
type Estimator struct {
	st  *store.Store
	log podlog.Logger

	axis int // 0=x, 1=y, 2=z: the motion axis

	tukeyMultiplier float64
	stripeDistance  float64

	gravity             [store.NumIMUs]store.Vector3
	calibrationVariance [3]float64

	filters       [store.NumIMUs]*Kalman
	imuReliable   [store.NumIMUs]bool
	outlierCount  [store.NumIMUs]int
	numUnreliable int

	accelIntegrator *Integrator // acceleration -> velocity
	velIntegrator   *Integrator // velocity -> displacement

	stripes *StripeHandler

	velocityUncertainty     float64
	displacementUncertainty float64
	prevAcceleration        float64
	prevVelocity            float64
	prevTimestampUs         int64
	ticks                   int64

	history      [RollingHistorySize]rawImuSample
	historyIdx   int
	historyFull  bool

	hasInit    bool
	initTimeUs int64

	moduleStatus store.ModuleStatus

	peakVelocity *atomicfloat.PeakTracker
}

// New constructs an Estimator writing into st, with the given motion axis
// (0, 1, or 2) and Tukey-fence multiplier.
func New(st *store.Store, log podlog.Logger, axis int, tukeyMultiplier float64) *Estimator {
	e := &Estimator{
		st:              st,
		log:             log,
		axis:            axis,
		tukeyMultiplier: tukeyMultiplier,
		stripeDistance:  StripeDistanceMeters,
		accelIntegrator: NewIntegrator(),
		velIntegrator:   NewIntegrator(),
		stripes:         NewStripeHandler(StripeDistanceMeters),
		moduleStatus:    store.Start,
		peakVelocity:    atomicfloat.NewPeakTracker(),
	}
	for i := range e.imuReliable {
		e.imuReliable[i] = true
		e.filters[i] = New(1, 1)
		_ = e.filters[i].SetModels(
			mat.NewDense(1, 1, []float64{1}),
			mat.NewDense(1, 1, []float64{0.01}),
			mat.NewDense(1, 1, []float64{1}),
			mat.NewDense(1, 1, []float64{1}),
		)
		_ = e.filters[i].SetInitial(
			mat.NewVecDense(1, []float64{0}),
			mat.NewDense(1, 1, []float64{1}),
		)
	}
	e.moduleStatus = store.Init
	e.publishStatus()
	return e
}

func (e *Estimator) publishStatus() {
	k := e.st.GetKinematic()
	k.ModuleStatus = e.moduleStatus
	e.st.SetKinematic(k)
}

// ModuleStatus returns navigation's current module status.
func (e *Estimator) ModuleStatus() store.ModuleStatus { return e.moduleStatus }

// PeakVelocity returns the highest-magnitude velocity observed so far,
// read lock-free by the telemetry sender (internal/atomicfloat.PeakTracker).
func (e *Estimator) PeakVelocity() float64 { return e.peakVelocity.Peak() }

func axisValue(v store.Vector3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Calibrate collects CalibrationQueries readings per IMU while the pod is
// at rest, computing a running mean/variance per axis and retrying up to
// CalibrationAttempts times. It accepts only if every axis variance is
// below CalibrationVarianceLimit; otherwise navigation enters
// CriticalFailure (spec.md §4.3 "Gravity calibration").
//
// readIMUs is called once per simulated tick and must return the four raw
// IMU vectors for that tick (grounded on original_source's
// data_.getSensorsImuData() poll-loop).
func (e *Estimator) Calibrate(readIMUs func() [store.NumIMUs]store.Vector3) error {
	for attempt := 0; attempt < CalibrationAttempts; attempt++ {
		var mean [store.NumIMUs]store.Vector3
		var m2 [store.NumIMUs][3]float64
		var count float64

		for q := 0; q < CalibrationQueries; q++ {
			readings := readIMUs()
			count++
			for i := 0; i < store.NumIMUs; i++ {
				updateRunningMoments(&mean[i], &m2[i], readings[i], count)
			}
		}

		ok := true
		var variance [store.NumIMUs][3]float64
		for i := 0; i < store.NumIMUs; i++ {
			for axis := 0; axis < 3; axis++ {
				variance[i][axis] = m2[i][axis] / count
				if variance[i][axis] >= CalibrationVarianceLimit {
					ok = false
				}
			}
		}

		if ok {
			e.gravity = mean
			for axis := 0; axis < 3; axis++ {
				sumSq := 0.0
				for i := 0; i < store.NumIMUs; i++ {
					sumSq += variance[i][axis] * variance[i][axis]
				}
				e.calibrationVariance[axis] = math.Sqrt(sumSq)
			}
			for i := 0; i < store.NumIMUs; i++ {
				v := variance[i][0] + variance[i][1] + variance[i][2]
				_ = e.filters[i].UpdateR(mat.NewDense(1, 1, []float64{v}))
			}
			e.moduleStatus = store.Ready
			e.publishStatus()
			e.log.Info("navigation calibration succeeded", "attempt", attempt+1)
			return nil
		}
		e.log.Info("navigation calibration attempt failed variance check", "attempt", attempt+1)
	}

	e.moduleStatus = store.CriticalFailure
	e.publishStatus()
	return fmt.Errorf("navigation: calibration failed after %d attempts", CalibrationAttempts)
}

// updateRunningMoments folds one sample into Welford's online mean/M2
// accumulators for a single IMU's 3-axis vector.
func updateRunningMoments(mean *store.Vector3, m2 *[3]float64, sample store.Vector3, count float64) {
	delta := [3]float64{sample.X - mean.X, sample.Y - mean.Y, sample.Z - mean.Z}
	mean.X += delta[0] / count
	mean.Y += delta[1] / count
	mean.Z += delta[2] / count
	delta2 := [3]float64{sample.X - mean.X, sample.Y - mean.Y, sample.Z - mean.Z}
	m2[0] += delta[0] * delta2[0]
	m2[1] += delta[1] * delta2[1]
	m2[2] += delta[2] * delta2[2]
}

// ResetCounters clears the soft per-IMU outlier counters accumulated since
// the last calibration. The state machine's reset_command has no modeled
// transition in the mission DAG (spec.md §9 treats the DAG as exhaustive);
// the caller loop consumes it here, only while sitting in Idle, so a
// ground-commanded retry doesn't inherit outlier history from a previous
// run. It never clears a latched CriticalFailure.
func (e *Estimator) ResetCounters() {
	for i := range e.outlierCount {
		e.outlierCount[i] = 0
	}
}

// BeginRun marks t0 as the timestamp from which stripe corrections are
// measured (navigation entering Accelerating) and enables stripe fusion in
// Tick.
func (e *Estimator) BeginRun(t0 int64, stripeCounts [2]uint32) {
	e.hasInit = true
	e.initTimeUs = t0
	e.stripes.SetInit(t0, stripeCounts)
}

// Tick runs one full fusion cycle: reads the four IMU records and two
// stripe records from the store, fuses them into an acceleration/velocity/
// displacement estimate, updates uncertainty, and writes the resulting
// KinematicRecord. Grounded on Navigation::queryImus + checkVibration +
// updateUncertainty + StripeHandler::queryKeyence.
func (e *Estimator) Tick() error {
	if e.moduleStatus == store.CriticalFailure {
		return nil
	}

	var imus [store.NumIMUs]store.IMURecord
	for i := 0; i < store.NumIMUs; i++ {
		imus[i] = e.st.GetIMU(i)
	}
	timestampUs := imus[0].TimestampUs

	var sample rawImuSample
	motionAxis := make([]float64, store.NumIMUs)
	for i := 0; i < store.NumIMUs; i++ {
		corrected := store.Vector3{
			X: imus[i].Acceleration.X - e.gravity[i].X,
			Y: imus[i].Acceleration.Y - e.gravity[i].Y,
			Z: imus[i].Acceleration.Z - e.gravity[i].Z,
		}
		sample[i] = [3]float64{corrected.X, corrected.Y, corrected.Z}
		if e.imuReliable[i] {
			motionAxis[i] = axisValue(corrected, e.axis)
		} else {
			motionAxis[i] = 0
		}
	}

	replaced := tukeyFences(motionAxis, e.imuReliable[:], e.tukeyMultiplier)
	for i, wasReplaced := range replaced {
		if !e.imuReliable[i] {
			continue
		}
		if !wasReplaced {
			e.outlierCount[i] = 0
			continue
		}
		e.outlierCount[i]++
		if e.outlierCount[i] > OutlierCounterThreshold {
			e.imuReliable[i] = false
			e.numUnreliable++
			e.log.Info("imu marked permanently unreliable", "imu", i)
		}
	}
	if e.numUnreliable > 1 {
		e.moduleStatus = store.CriticalFailure
		e.publishStatus()
		e.log.Error("navigation critical failure: more than one unreliable IMU")
		return nil
	}

	sumAccel, numReliable := 0.0, 0
	var estVariance float64
	for i := 0; i < store.NumIMUs; i++ {
		if !e.imuReliable[i] {
			continue
		}
		z := mat.NewVecDense(1, []float64{motionAxis[i]})
		if err := e.filters[i].Filter(z); err != nil {
			return fmt.Errorf("navigation: imu %d filter: %w", i, err)
		}
		sumAccel += e.filters[i].StateEstimate().AtVec(0)
		estVariance += e.filters[i].StateCovariance().At(0, 0)
		numReliable++
	}
	if numReliable == 0 {
		e.moduleStatus = store.CriticalFailure
		e.publishStatus()
		return fmt.Errorf("navigation: no reliable IMUs remain")
	}
	acceleration := sumAccel / float64(numReliable)
	estVariance /= float64(numReliable)

	e.history[e.historyIdx] = sample
	e.historyIdx++
	if e.historyIdx == RollingHistorySize {
		e.historyIdx = 0
		e.historyFull = true
	}
	if e.historyFull {
		e.checkVibration()
	}

	velocity := e.accelIntegrator.Update(Point{TimestampUs: timestampUs, Value: acceleration}).Value
	displacement := e.velIntegrator.Update(Point{TimestampUs: timestampUs, Value: velocity}).Value
	e.peakVelocity.Observe(velocity)

	if e.ticks >= UncertaintyWarmupTicks && e.prevTimestampUs != 0 {
		deltaT := float64(timestampUs-e.prevTimestampUs) / 1e6
		e.velocityUncertainty += math.Abs(acceleration-e.prevAcceleration) * deltaT / 2
		e.velocityUncertainty += math.Sqrt(estVariance) * deltaT
		e.displacementUncertainty += e.velocityUncertainty * deltaT
		e.displacementUncertainty += math.Abs(velocity-e.prevVelocity) * deltaT / 2
		if e.velocityUncertainty < 0 {
			e.velocityUncertainty = 0
		}
		if e.displacementUncertainty < 0 {
			e.displacementUncertainty = 0
		}
	}
	e.prevAcceleration = acceleration
	e.prevVelocity = velocity
	e.prevTimestampUs = timestampUs
	e.ticks++

	if e.hasInit {
		var counts [2]uint32
		var timestamps [2]int64
		for i := 0; i < store.NumStripeCounters; i++ {
			sr := e.st.GetStripe(i)
			counts[i] = sr.Count
			timestamps[i] = sr.TimestampUs
		}
		e.stripes.QueryStripes(counts, timestamps, &displacement, &velocity, &e.velocityUncertainty, e.displacementUncertainty)

		if e.stripes.CheckFailure(displacement) {
			e.moduleStatus = store.CriticalFailure
			e.publishStatus()
			e.log.Error("navigation critical failure: stripe disagreement")
			return nil
		}
	}

	emergencyBraking := 0.0
	if velocity != 0 {
		emergencyBraking = velocity * velocity / (2 * EmergencyDecelerationMPS2)
	}
	brakingDistance := emergencyBraking * BrakingSafetyFactor

	e.st.SetKinematic(store.KinematicRecord{
		Displacement:             displacement,
		Velocity:                 velocity,
		Acceleration:             acceleration,
		EmergencyBrakingDistance: emergencyBraking,
		BrakingDistance:          brakingDistance,
		ModuleStatus:             e.moduleStatus,
	})
	return nil
}

// checkVibration compares the variance of the non-motion axes over the
// full rolling history against the calibration-time variance, logging a
// warning (not fatal) when the ratio is abnormally high. Grounded on
// Navigation::checkVibration.
func (e *Estimator) checkVibration() {
	var sum, sumSq [3]float64
	n := float64(RollingHistorySize * store.NumIMUs)
	for _, sample := range e.history {
		for axis := 0; axis < 3; axis++ {
			if axis == e.axis {
				continue
			}
			for i := 0; i < store.NumIMUs; i++ {
				sum[axis] += sample[i][axis]
				sumSq[axis] += sample[i][axis] * sample[i][axis]
			}
		}
	}
	for axis := 0; axis < 3; axis++ {
		if axis == e.axis || e.calibrationVariance[axis] == 0 {
			continue
		}
		mean := sum[axis] / n
		variance := sumSq[axis]/n - mean*mean
		ratio := variance / e.calibrationVariance[axis]
		statisticalRatio := float64(CalibrationQueries) / float64(RollingHistorySize)
		if ratio > statisticalRatio {
			e.log.Info("vibration warning", "axis", axis, "ratio", ratio)
		}
	}
}
