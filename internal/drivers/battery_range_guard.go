package drivers

import "github.com/hyped-pod/podctl/internal/store"

// BatteryRangeGuard checks every battery record's voltage/temperature
// against configured bounds, separately from the per-battery module
// status. spec.md §9 Open Questions: the source carries this check
// commented out with its intended thresholds documented but never
// enforced; it's reproduced here as an optional guard, off by default
// (Config.EnableBatteryRangeGuard), rather than folded into the always-on
// module-status path.
type BatteryRangeGuard struct {
	MinVoltageDv, MaxVoltageDv int16
	MinTemperatureC, MaxTemperatureC int8
}

// DefaultBatteryRangeGuard returns the thresholds named in the source's
// commented-out check.
func DefaultBatteryRangeGuard() BatteryRangeGuard {
	return BatteryRangeGuard{
		MinVoltageDv:     100, // 10.0V
		MaxVoltageDv:     500, // 50.0V
		MinTemperatureC:  0,
		MaxTemperatureC:  60,
	}
}

// InRange reports whether rec's voltage and temperature both fall within
// the guard's bounds.
func (g BatteryRangeGuard) InRange(rec store.BatteryRecord) bool {
	if rec.VoltageDv < g.MinVoltageDv || rec.VoltageDv > g.MaxVoltageDv {
		return false
	}
	if rec.LowTemperatureC < g.MinTemperatureC || rec.HighTemperatureC > g.MaxTemperatureC {
		return false
	}
	return true
}
