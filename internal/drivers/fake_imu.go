package drivers

import (
	"math/rand"

	"github.com/hyped-pod/podctl/internal/store"
)

// FakeIMU synthesizes a constant-gravity, optionally-noisy acceleration
// reading for one IMU, driven by a monotonic microsecond clock supplied by
// the caller (tests never call time.Now, per the surrounding process's
// determinism requirements).
type FakeIMU struct {
	Gravity     store.Vector3
	NoiseStdDev float64
	Fail        bool

	clockUs func() int64
	rng     *rand.Rand
}

// NewFakeIMU constructs a fake IMU whose timestamps come from clockUs.
func NewFakeIMU(clockUs func() int64, gravity store.Vector3, noiseStdDev float64, fail bool, seed int64) *FakeIMU {
	return &FakeIMU{
		Gravity:     gravity,
		NoiseStdDev: noiseStdDev,
		Fail:        fail,
		clockUs:     clockUs,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// Read implements Source[store.IMURecord]. With Fail set, it reports
// Operational=false, the --fake_imu_fail bench-testing mode spec.md §6 names.
func (f *FakeIMU) Read() (store.IMURecord, error) {
	noise := func() float64 {
		if f.NoiseStdDev == 0 {
			return 0
		}
		return f.rng.NormFloat64() * f.NoiseStdDev
	}
	return store.IMURecord{
		Acceleration: store.Vector3{
			X: f.Gravity.X + noise(),
			Y: f.Gravity.Y + noise(),
			Z: f.Gravity.Z + noise(),
		},
		Operational: !f.Fail,
		TimestampUs: f.clockUs(),
	}, nil
}
