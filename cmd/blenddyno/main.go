package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/ovesen/blenddyno/internal/config"
	"codeberg.org/ovesen/blenddyno/internal/engine"
	"codeberg.org/ovesen/blenddyno/internal/logger"
	"codeberg.org/ovesen/blenddyno/internal/noise"
	"codeberg.org/ovesen/blenddyno/internal/pid"
	"codeberg.org/ovesen/blenddyno/internal/report"
	"codeberg.org/ovesen/blenddyno/internal/telemetry"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogLevel, logger.IsService()); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Error().Err(err).Msg("another run appears to be in progress")
		os.Exit(1)
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove pid file")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Error().Err(err).Msg("run failed")
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove pid file")
		}
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	geo, err := engine.NewGeometry(cfg.CompressionRatio, cfg.Bore, cfg.Stroke)
	if err != nil {
		return err
	}

	sweep := engine.Sweep{
		Start: cfg.RPMStart,
		End:   cfg.RPMEnd,
		Step:  cfg.RPMStep,
	}
	if err := sweep.Validate(); err != nil {
		return err
	}
	rpm := sweep.Values()

	e10 := engine.Compute(geo, engine.E10(), rpm)
	e20 := engine.Compute(geo, engine.E20(), rpm)

	injector, err := noise.NewInjector(cfg.Noise, cfg.Seed)
	if err != nil {
		return err
	}
	injector.Apply(e10, e20)

	logger.Debug().
		Int("points", len(rpm)).
		Float64("noise", cfg.Noise).
		Int64("seed", cfg.Seed).
		Msg("Series computed and perturbed")

	collector, err := telemetry.NewService(telemetry.Config{
		Enabled: cfg.Telemetry,
		DBPath:  cfg.Database,
	}, logger.New())
	if err != nil {
		return err
	}
	defer func() {
		if err := collector.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close telemetry")
		}
	}()

	if err := collector.Record(ctx, &telemetry.RunSnapshot{
		Timestamp:     time.Now(),
		Seed:          cfg.Seed,
		NoiseFraction: cfg.Noise,
		Series:        []*engine.Series{e10, e20},
	}); err != nil {
		return err
	}

	exporter := report.NewExporter(report.Config{
		OutputDir: cfg.OutputDir,
		BaseName:  report.DefaultBaseName,
	}, logger.New())

	paths, err := exporter.Export(e10, e20)
	if err != nil {
		return err
	}

	if cfg.CSV {
		csvPath, err := exporter.ExportCSV(e10, e20)
		if err != nil {
			return err
		}
		paths = append(paths, csvPath)
	}

	logSummary(e10)
	logSummary(e20)
	logger.Info().Strs("artifacts", paths).Msg("Run complete")

	return nil
}

// logSummary reports the headline numbers of one blend.
func logSummary(s *engine.Series) {
	peakPower, peakPowerRPM := maxAt(s.Power, s.RPM)
	peakTorque, peakTorqueRPM := maxAt(s.Torque, s.RPM)
	minBSFC, minBSFCRPM := minAt(s.BSFC, s.RPM)

	logger.Info().
		Str("fuel", s.Fuel).
		Float64("peak_power_kw", peakPower).
		Float64("peak_power_rpm", peakPowerRPM).
		Float64("peak_torque_nm", peakTorque).
		Float64("peak_torque_rpm", peakTorqueRPM).
		Float64("min_bsfc_g_kwh", minBSFC*1000).
		Float64("min_bsfc_rpm", minBSFCRPM).
		Msg("Blend summary")
}

func maxAt(values, rpm []float64) (float64, float64) {
	best, bestRPM := values[0], rpm[0]
	for i := 1; i < len(values); i++ {
		if values[i] > best {
			best, bestRPM = values[i], rpm[i]
		}
	}

	return best, bestRPM
}

func minAt(values, rpm []float64) (float64, float64) {
	best, bestRPM := values[0], rpm[0]
	for i := 1; i < len(values); i++ {
		if values[i] < best {
			best, bestRPM = values[i], rpm[i]
		}
	}

	return best, bestRPM
}
