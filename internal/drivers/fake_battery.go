package drivers

import "github.com/hyped-pod/podctl/internal/store"

// FakeBattery synthesizes a stable battery reading, or a failure reading
// when Fail is set (the --fake_batteries_fail bench-testing mode).
type FakeBattery struct {
	VoltageDv  int16
	CurrentDa  int16
	Charge     uint8
	HighPower  bool
	Fail       bool
}

// Read implements Source[store.BatteryRecord].
func (f *FakeBattery) Read() (store.BatteryRecord, error) {
	rec := store.BatteryRecord{
		VoltageDv:           f.VoltageDv,
		CurrentDa:           f.CurrentDa,
		ChargePercent:       f.Charge,
		AverageTemperatureC: 25,
		LowTemperatureC:     20,
		HighTemperatureC:    30,
		LowVoltageCellMv:    3700,
		HighVoltageCellMv:   3750,
	}
	if f.HighPower {
		for i := range rec.CellVoltagesMv {
			rec.CellVoltagesMv[i] = 3720
		}
	}
	if f.Fail {
		rec.InsulationFault = true
		rec.LowVoltageCellMv = 2800
	}
	return rec, nil
}
