// Command podctl is the pod's real-time control core: shared state store,
// mission state machine, navigation estimator, and telemetry link,
// wired together and run as one process (SPEC_FULL.md §5).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hyped-pod/podctl/internal/config"
	"github.com/hyped-pod/podctl/internal/drivers"
	"github.com/hyped-pod/podctl/internal/navigation"
	"github.com/hyped-pod/podctl/internal/podlog"
	"github.com/hyped-pod/podctl/internal/statemachine"
	"github.com/hyped-pod/podctl/internal/store"
	"github.com/hyped-pod/podctl/internal/telemetry"
)

var (
	configPath = flag.String("config", "config.yaml", "path to the pod's configuration file")
	debug      = flag.Bool("debug", false, "enable debug logging for every module")

	debugNavigation = flag.Int("debug-navigation", 0, "navigation debug verbosity")
	debugTelemetry  = flag.Int("debug-telemetry", 0, "telemetry debug verbosity")

	fakeIMU        = flag.Bool("fake-imu", false, "use a simulated IMU driver")
	fakeIMUFail    = flag.Bool("fake-imu-fail", false, "simulated IMU reports not-operational")
	fakeBatteries  = flag.Bool("fake-batteries", false, "use a simulated battery driver")
	fakeBatteriesFail = flag.Bool("fake-batteries-fail", false, "simulated battery reports a fault")
	fakeTemperature     = flag.Bool("fake-temperature", false, "use a simulated temperature driver")
	fakeTemperatureFail = flag.Bool("fake-temperature-fail", false, "simulated temperature reports out of range")

	tubeRun       = flag.Bool("tube-run", false, "record the tube run type in the config")
	elevatorRun   = flag.Bool("elevator-run", false, "record the elevator run type in the config")
	stationaryRun = flag.Bool("stationary-run", false, "record the stationary run type in the config")
	outsideRun    = flag.Bool("outside-run", false, "record the outside run type in the config")
)

func runTypeFromFlags() config.RunType {
	switch {
	case *elevatorRun:
		return config.RunElevator
	case *stationaryRun:
		return config.RunStationary
	case *outsideRun:
		return config.RunOutside
	default:
		return config.RunTube
	}
}

func loadConfig() config.Config {
	cfg, err := config.FromYaml(*configPath)
	if err != nil {
		cfg = config.Default()
	}
	if *tubeRun || *elevatorRun || *stationaryRun || *outsideRun {
		cfg.RunType = runTypeFromFlags()
	}
	cfg.FakeIMU = config.FakeHardwareConfig{Enabled: *fakeIMU, Fail: *fakeIMUFail}
	cfg.FakeBatteries = config.FakeHardwareConfig{Enabled: *fakeBatteries, Fail: *fakeBatteriesFail}
	cfg.FakeTemperature = config.FakeHardwareConfig{Enabled: *fakeTemperature, Fail: *fakeTemperatureFail}
	cfg.Debug = *debug
	cfg.ModuleDebug = map[string]int{"navigation": *debugNavigation, "telemetry": *debugTelemetry}
	return cfg
}

func main() {
	flag.Parse()
	os.Exit(run())
}

// run wires every long-running task onto its own goroutine, per
// SPEC_FULL.md §5's one-task-per-OS-thread model (Go goroutines stand in
// for OS threads; nothing here assumes a 1:1 goroutine:thread mapping).
// It returns the process's exit code rather than calling os.Exit directly,
// so deferred cleanup always runs.
func run() int {
	cfg := loadConfig()
	log := podlog.New("podctl")

	st := store.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	installSignalHandler(ctx, cancel, st)

	clockStart := time.Now()
	clockUs := func() int64 { return time.Since(clockStart).Microseconds() }

	conn, err := telemetry.Dial(st, cfg.GroundHost, cfg.GroundPort, 5*time.Second)
	if err != nil {
		log.Error("telemetry connect failed before Init", "error", err)
		return 1
	}
	defer conn.Close()

	group, groupCtx := errgroup.WithContext(ctx)

	var dashboard *telemetry.Dashboard
	var publish func(telemetry.Snapshot)
	if cfg.DashboardEnabled {
		dashboard = telemetry.NewDashboard(cfg.DashboardAddr, podlog.New("dashboard"))
		publish = dashboard.Publish
		group.Go(func() error { return dashboard.Run(groupCtx) })
	}

	wireDrivers(groupCtx, st, cfg, clockUs)

	nav := navigation.New(st, podlog.New("navigation"), cfg.MotionAxis, cfg.TukeyMultiplier)
	group.Go(func() error { runNavigationLoop(groupCtx, st, nav); return nil })
	group.Go(func() error { runResetCommandLoop(groupCtx, st, nav); return nil })

	group.Go(func() error {
		return telemetry.RunSender(groupCtx, conn, st, cfg.TelemetryPeriod, podlog.New("telemetry.sender"), publish, nav.PeakVelocity)
	})
	group.Go(func() error {
		return telemetry.RunReceiver(groupCtx, conn, st, podlog.New("telemetry.receiver"))
	})

	smCfg := statemachine.Config{
		RunLengthMeters:       cfg.RunLengthMeters,
		MaxVelocityMps:        cfg.MaxVelocityMps,
		AccelerationTimeoutUs: cfg.AccelerationTimeout.Microseconds(),
	}
	sm := statemachine.New(st, podlog.New("statemachine"), smCfg)
	exitCode := runStateMachineLoop(groupCtx, st, sm, clockUs)

	cancel()
	if err := group.Wait(); err != nil {
		log.Error("a task exited with an error during shutdown", "error", err)
	}
	return exitCode
}

// runNavigationLoop drives the estimator at sensor-publish rate (order
// 1 kHz per spec.md §5), polling store.Running so it honors the signal
// handler even outside Go's own context-cancellation idiom (the literal
// "single atomic boolean" instruction of spec.md §9, kept alongside ctx
// cancellation — see SPEC_FULL.md §5).
func runNavigationLoop(ctx context.Context, st *store.Store, nav *navigation.Estimator) {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for st.Running() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := nav.Tick(); err != nil {
				return
			}
		}
	}
}

// runResetCommandLoop consumes reset_command while the pod sits in Idle.
// The mission DAG (SPEC_FULL.md §4.2) has no modeled transition for this
// telemetry boolean; a ground-commanded retry still needs to clear the
// estimator's latched per-IMU outlier counters before the next calibration,
// so it's serviced here rather than inside the state machine's own switch.
func runResetCommandLoop(ctx context.Context, st *store.Store, nav *navigation.Estimator) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for st.Running() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cmd := st.GetTelemetryCommand()
			if cmd.ResetCommand && st.GetMissionState().CurrentState == store.Idle {
				nav.ResetCounters()
				cmd.ResetCommand = false
				st.SetTelemetryCommand(cmd)
			}
		}
	}
}

// runStateMachineLoop drives the mission state machine at least 50 Hz
// (spec.md §5) until it reaches the terminal Off state, then returns the
// process exit code (0 clean shutdown).
func runStateMachineLoop(ctx context.Context, st *store.Store, sm *statemachine.StateMachine, clockUs func() int64) int {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for st.Running() {
		select {
		case <-ctx.Done():
			return 0
		case <-ticker.C:
			state, _, _ := sm.Tick(clockUs())
			if state == store.Off {
				st.Stop()
				return 0
			}
		}
	}
	return 0
}

// installSignalHandler does nothing beyond set store.Stop and cancel ctx,
// per spec.md §9: "signal handlers must do nothing other than set this
// flag."
func installSignalHandler(ctx context.Context, cancel context.CancelFunc, st *store.Store) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh,
		syscall.SIGINT, syscall.SIGTERM,
		syscall.SIGABRT, syscall.SIGFPE, syscall.SIGILL, syscall.SIGSEGV)
	go func() {
		select {
		case <-sigCh:
			st.Stop()
			cancel()
		case <-ctx.Done():
		}
	}()
}

// wireDrivers starts one producer goroutine per sensor record, each backed
// by either a fake source (bench testing, spec.md §6) or left unimplemented
// for real hardware (a non-goal; see SPEC_FULL.md).
func wireDrivers(ctx context.Context, st *store.Store, cfg config.Config, clockUs func() int64) {
	log := podlog.New("drivers")

	if cfg.FakeIMU.Enabled {
		for i := 0; i < store.NumIMUs; i++ {
			i := i
			imu := drivers.NewFakeIMU(clockUs, store.Vector3{Z: 9.81}, 0.02, cfg.FakeIMU.Fail, int64(i+1))
			go drivers.RunProducer[store.IMURecord](ctx, time.Millisecond, imu, func(r store.IMURecord) { st.SetIMU(i, r) }, log, fmt.Sprintf("imu[%d]", i))
		}
	}

	if cfg.FakeBatteries.Enabled {
		guard := drivers.DefaultBatteryRangeGuard()
		for i := 0; i < store.NumLowPowerBatteries; i++ {
			i := i
			batt := &drivers.FakeBattery{VoltageDv: 240, CurrentDa: 10, Charge: 90, Fail: cfg.FakeBatteries.Fail}
			go drivers.RunProducer[store.BatteryRecord](ctx, 10*time.Millisecond, batt, func(r store.BatteryRecord) {
				checkBatteryRange(st, guard, cfg.EnableBatteryRangeGuard, r, log)
				st.SetLowPowerBattery(i, r)
			}, log, fmt.Sprintf("battery.lp[%d]", i))
		}
		for i := 0; i < store.NumHighPowerBatteries; i++ {
			i := i
			batt := &drivers.FakeBattery{VoltageDv: 400, CurrentDa: 50, Charge: 90, HighPower: true, Fail: cfg.FakeBatteries.Fail}
			go drivers.RunProducer[store.BatteryRecord](ctx, 10*time.Millisecond, batt, func(r store.BatteryRecord) {
				checkBatteryRange(st, guard, cfg.EnableBatteryRangeGuard, r, log)
				st.SetHighPowerBattery(i, r)
			}, log, fmt.Sprintf("battery.hp[%d]", i))
		}
	}

	if cfg.FakeTemperature.Enabled {
		temp := &drivers.FakeTemperature{Celsius: 22, Fail: cfg.FakeTemperature.Fail}
		go drivers.RunProducer[float64](ctx, 100*time.Millisecond, temp, func(c float64) {
			st.SetTemperature(store.TemperatureRecord{Celsius: c, ModuleStatus: store.Ready})
		}, log, "temperature")
	}
}

// checkBatteryRange promotes the batteries module to CriticalFailure the
// first time a reading falls outside guard's bounds, when the guard is
// enabled. Disabled by default (cfg.EnableBatteryRangeGuard); spec.md §9
// leaves this check as opt-in bench tooling rather than a baked-in
// invariant.
func checkBatteryRange(st *store.Store, guard drivers.BatteryRangeGuard, enabled bool, rec store.BatteryRecord, log podlog.Logger) {
	if !enabled || guard.InRange(rec) {
		return
	}
	b := st.GetBatteries()
	if b.ModuleStatus == store.CriticalFailure {
		return
	}
	b.ModuleStatus = store.CriticalFailure
	st.SetBatteries(b)
	log.Error("battery reading outside configured range", "voltage_dv", rec.VoltageDv, "low_temp_c", rec.LowTemperatureC, "high_temp_c", rec.HighTemperatureC)
}
