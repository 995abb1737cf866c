package drivers

import (
	"testing"

	"github.com/hyped-pod/podctl/internal/store"
)

func TestFakeIMUFailSetsNotOperational(t *testing.T) {
	clock := func() int64 { return 42 }
	imu := NewFakeIMU(clock, store.Vector3{Z: 9.8}, 0, true, 1)
	rec, err := imu.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Operational {
		t.Fatalf("expected Operational=false when Fail=true")
	}
	if rec.TimestampUs != 42 {
		t.Fatalf("expected timestamp from clock, got %d", rec.TimestampUs)
	}
}

func TestBatteryRangeGuard(t *testing.T) {
	g := DefaultBatteryRangeGuard()
	cases := []struct {
		name string
		rec  store.BatteryRecord
		want bool
	}{
		{"nominal", store.BatteryRecord{VoltageDv: 300, LowTemperatureC: 20, HighTemperatureC: 30}, true},
		{"undervoltage", store.BatteryRecord{VoltageDv: 50, LowTemperatureC: 20, HighTemperatureC: 30}, false},
		{"overtemp", store.BatteryRecord{VoltageDv: 300, LowTemperatureC: 20, HighTemperatureC: 70}, false},
	}
	for _, c := range cases {
		if got := g.InRange(c.rec); got != c.want {
			t.Errorf("%s: InRange = %v, want %v", c.name, got, c.want)
		}
	}
}
