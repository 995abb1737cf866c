// Package config loads the pod's typed configuration. Grounded on
// reinforcement.FromYaml's viper+yaml.v3 two-pass decode (outer viper
// unmarshal into a loosely-typed shape, then a yaml.v3 remarshal/decode
// into the real struct), generalized from a single nested "def" blob to a
// flat top-level document since the pod config has no algorithm-selector
// indirection to preserve.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// RunType names the bench scenario the pod is run in. It is recorded in
// Config (set from the file or the --*-run flags); no guard, timeout or
// filter setting reads it.
type RunType string

const (
	RunTube       RunType = "tube"
	RunElevator   RunType = "elevator"
	RunStationary RunType = "stationary"
	RunOutside    RunType = "outside"
)

// FakeHardwareConfig toggles a simulated driver in place of the real one for
// a single subsystem, optionally forcing it to report failure — used by the
// CLI's --fake-* / --fake-*-fail flags for bench testing without hardware.
type FakeHardwareConfig struct {
	Enabled bool `yaml:"enabled"`
	Fail    bool `yaml:"fail"`
}

// Config is the pod's full typed configuration, read once at startup.
type Config struct {
	RunType RunType `yaml:"runType"`

	RunLengthMeters float64 `yaml:"runLengthMeters"`
	MaxVelocityMps  float64 `yaml:"maxVelocityMps"`

	AccelerationTimeout time.Duration `yaml:"accelerationTimeout"`

	MotionAxis int `yaml:"motionAxis"`

	CalibrationQueries       int     `yaml:"calibrationQueries"`
	CalibrationAttempts      int     `yaml:"calibrationAttempts"`
	CalibrationVarianceLimit float64 `yaml:"calibrationVarianceLimit"`
	TukeyMultiplier          float64 `yaml:"tukeyMultiplier"`

	GroundHost string `yaml:"groundHost"`
	GroundPort int    `yaml:"groundPort"`

	TelemetryPeriod time.Duration `yaml:"telemetryPeriod"`

	DashboardEnabled bool `yaml:"dashboardEnabled"`
	DashboardAddr    string `yaml:"dashboardAddr"`

	EnableBatteryRangeGuard bool `yaml:"enableBatteryRangeGuard"`

	FakeIMU         FakeHardwareConfig `yaml:"fakeImu"`
	FakeBatteries   FakeHardwareConfig `yaml:"fakeBatteries"`
	FakeTemperature FakeHardwareConfig `yaml:"fakeTemperature"`

	Debug         bool           `yaml:"debug"`
	ModuleDebug   map[string]int `yaml:"moduleDebug"`
}

// Default returns the configuration used when no file is supplied, tuned
// to the values spec.md names explicitly.
func Default() Config {
	return Config{
		RunType:                  RunTube,
		RunLengthMeters:          1250,
		MaxVelocityMps:           100,
		AccelerationTimeout:      120 * time.Second,
		MotionAxis:               0,
		CalibrationQueries:       1000,
		CalibrationAttempts:      3,
		CalibrationVarianceLimit: 0.05,
		TukeyMultiplier:          1.5,
		GroundHost:               "127.0.0.1",
		GroundPort:               8080,
		TelemetryPeriod:          100 * time.Millisecond,
		DashboardEnabled:         false,
		DashboardAddr:            "127.0.0.1:8090",
		EnableBatteryRangeGuard:  false,
	}
}

// FromYaml reads and decodes a config file, falling back to Default for any
// field the file omits.
func FromYaml(path string) (Config, error) {
	cfg := Default()

	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	raw, err := yaml.Marshal(vp.AllSettings())
	if err != nil {
		return Config{}, fmt.Errorf("config: remarshal: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}

	return cfg, nil
}
