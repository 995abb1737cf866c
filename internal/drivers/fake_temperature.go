package drivers

import "github.com/hyped-pod/podctl/internal/store"

// FakeTemperature synthesizes a stable ambient reading, or an
// out-of-range one when Fail is set.
type FakeTemperature struct {
	Celsius float64
	Fail    bool
}

// Read implements Source[float64].
func (f *FakeTemperature) Read() (float64, error) {
	if f.Fail {
		return 95.0, nil
	}
	return f.Celsius, nil
}

var _ Source[float64] = (*FakeTemperature)(nil)
var _ Source[store.BatteryRecord] = (*FakeBattery)(nil)
