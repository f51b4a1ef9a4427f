package config

import (
	"os"

	"codeberg.org/ovesen/blenddyno/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Defaults for the stock single-cylinder test engine and run options.
const (
	DefaultCompressionRatio = 10.0
	DefaultBore             = 0.08 // m
	DefaultStroke           = 0.09 // m
	DefaultRPMStart         = 1000.0
	DefaultRPMEnd           = 5000.0
	DefaultRPMStep          = 500.0
	DefaultNoise            = 0.02
	DefaultSeed             = int64(42)
	DefaultLogLevel         = "info"
	DefaultDatabase         = "blenddyno.db"
)

type Config struct {
	CompressionRatio float64 `mapstructure:"compression_ratio"`
	Bore             float64 `mapstructure:"bore"`
	Stroke           float64 `mapstructure:"stroke"`
	RPMStart         float64 `mapstructure:"rpm_start"`
	RPMEnd           float64 `mapstructure:"rpm_end"`
	RPMStep          float64 `mapstructure:"rpm_step"`
	Noise            float64 `mapstructure:"noise"`
	Seed             int64   `mapstructure:"seed"`
	OutputDir        string  `mapstructure:"output_dir"`
	CSV              bool    `mapstructure:"csv"`
	Telemetry        bool    `mapstructure:"telemetry"`
	Database         string  `mapstructure:"database"`
	LogLevel         string  `mapstructure:"log_level"`
}

// Load layers configuration from defaults, an optional TOML file
// (path via BLENDDYNO_CONFIG, else blenddyno.toml in the working
// directory or /etc/blenddyno), BLENDDYNO_* environment variables,
// and command line flags, in ascending priority.
func Load() (*Config, error) {
	errFactory := errors.New()
	v := viper.New()

	setDefaults(v)

	fs := pflag.NewFlagSet("blenddyno", pflag.ContinueOnError)
	fs.Float64("compression-ratio", DefaultCompressionRatio, "Compression ratio (informational)")
	fs.Float64("bore", DefaultBore, "Cylinder bore in meters")
	fs.Float64("stroke", DefaultStroke, "Piston stroke in meters")
	fs.Float64("rpm-start", DefaultRPMStart, "First engine speed of the sweep")
	fs.Float64("rpm-end", DefaultRPMEnd, "Last engine speed of the sweep")
	fs.Float64("rpm-step", DefaultRPMStep, "Engine speed increment")
	fs.Float64("noise", DefaultNoise, "Measurement noise fraction")
	fs.Int64("seed", DefaultSeed, "Random seed for noise injection")
	fs.String("output-dir", ".", "Directory for exported artifacts")
	fs.Bool("csv", false, "Also export the series as CSV")
	fs.Bool("telemetry", false, "Persist the run to the telemetry database")
	fs.String("database", DefaultDatabase, "Path to the telemetry database")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	// pflag names use dashes; config keys use underscores.
	for flagName, key := range map[string]string{
		"compression-ratio": "compression_ratio",
		"bore":              "bore",
		"stroke":            "stroke",
		"rpm-start":         "rpm_start",
		"rpm-end":           "rpm_end",
		"rpm-step":          "rpm_step",
		"noise":             "noise",
		"seed":              "seed",
		"output-dir":        "output_dir",
		"csv":               "csv",
		"telemetry":         "telemetry",
		"database":          "database",
		"log-level":         "log_level",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flagName)); err != nil {
			return nil, errFactory.Wrap(errors.ErrBindFlags, err)
		}
	}

	if path := os.Getenv("BLENDDYNO_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("blenddyno")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/blenddyno")
	}

	v.SetEnvPrefix("BLENDDYNO")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("compression_ratio", DefaultCompressionRatio)
	v.SetDefault("bore", DefaultBore)
	v.SetDefault("stroke", DefaultStroke)
	v.SetDefault("rpm_start", DefaultRPMStart)
	v.SetDefault("rpm_end", DefaultRPMEnd)
	v.SetDefault("rpm_step", DefaultRPMStep)
	v.SetDefault("noise", DefaultNoise)
	v.SetDefault("seed", DefaultSeed)
	v.SetDefault("output_dir", ".")
	v.SetDefault("csv", false)
	v.SetDefault("telemetry", false)
	v.SetDefault("database", DefaultDatabase)
	v.SetDefault("log_level", DefaultLogLevel)
}

// Validate fails fast on parameters the model would otherwise turn
// into numeric anomalies deep in the pipeline.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Bore <= 0 || c.Stroke <= 0 {
		return errFactory.WithData(errors.ErrInvalidGeometry, struct {
			Bore   float64
			Stroke float64
		}{
			Bore:   c.Bore,
			Stroke: c.Stroke,
		})
	}

	if c.RPMStart <= 0 || c.RPMStep <= 0 || c.RPMEnd < c.RPMStart {
		return errFactory.WithData(errors.ErrInvalidSweep, struct {
			Start float64
			End   float64
			Step  float64
		}{
			Start: c.RPMStart,
			End:   c.RPMEnd,
			Step:  c.RPMStep,
		})
	}

	if c.Noise < 0 {
		return errFactory.WithData(errors.ErrInvalidNoise, c.Noise)
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.Telemetry && c.Database == "" {
		return errFactory.WithMessage(errors.ErrInvalidConfig, "telemetry enabled without a database path")
	}

	return nil
}
