package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/ovesen/blenddyno/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blenddyno.toml")
	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err)
	return path
}

// resetArgs strips the test binary's own flags so Load parses a clean
// command line.
func resetArgs(t *testing.T, args ...string) {
	t.Helper()
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = append([]string{"blenddyno"}, args...)
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
bore = 0.086
stroke = 0.086
compression_ratio = 11.0
rpm_start = 1500
rpm_end = 6500
rpm_step = 250
noise = 0.05
seed = 7
output_dir = "/tmp/out"
csv = true
telemetry = true
database = "/path/to/telemetry.db"
log_level = "debug"
`)
	t.Setenv("BLENDDYNO_CONFIG", configPath)
	resetArgs(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 0.086, cfg.Bore, "Expected Bore 0.086")
	assert.Equal(t, 0.086, cfg.Stroke, "Expected Stroke 0.086")
	assert.Equal(t, 11.0, cfg.CompressionRatio, "Expected CompressionRatio 11.0")
	assert.Equal(t, 1500.0, cfg.RPMStart, "Expected RPMStart 1500")
	assert.Equal(t, 6500.0, cfg.RPMEnd, "Expected RPMEnd 6500")
	assert.Equal(t, 250.0, cfg.RPMStep, "Expected RPMStep 250")
	assert.Equal(t, 0.05, cfg.Noise, "Expected Noise 0.05")
	assert.Equal(t, int64(7), cfg.Seed, "Expected Seed 7")
	assert.Equal(t, "/tmp/out", cfg.OutputDir, "Expected OutputDir /tmp/out")
	assert.True(t, cfg.CSV, "Expected CSV true")
	assert.True(t, cfg.Telemetry, "Expected Telemetry true")
	assert.Equal(t, "/path/to/telemetry.db", cfg.Database, "Expected Database /path/to/telemetry.db")
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel debug")
}

func TestLoadDefaults(t *testing.T) {
	// Point the config path at an empty directory so no file is found.
	t.Setenv("BLENDDYNO_CONFIG", "")
	resetArgs(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := config.Load()
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultBore, cfg.Bore, "Expected default Bore")
	assert.Equal(t, config.DefaultStroke, cfg.Stroke, "Expected default Stroke")
	assert.Equal(t, config.DefaultRPMStart, cfg.RPMStart, "Expected default RPMStart")
	assert.Equal(t, config.DefaultRPMEnd, cfg.RPMEnd, "Expected default RPMEnd")
	assert.Equal(t, config.DefaultRPMStep, cfg.RPMStep, "Expected default RPMStep")
	assert.Equal(t, config.DefaultNoise, cfg.Noise, "Expected default Noise")
	assert.Equal(t, config.DefaultSeed, cfg.Seed, "Expected default Seed")
	assert.False(t, cfg.CSV, "Expected default CSV false")
	assert.False(t, cfg.Telemetry, "Expected default Telemetry false")
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel, "Expected default LogLevel info")
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	configPath := writeConfig(t, `
This is not a valid TOML file
`)
	t.Setenv("BLENDDYNO_CONFIG", configPath)
	resetArgs(t)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestInvalidLogLevel(t *testing.T) {
	configPath := writeConfig(t, `
log_level = "loud"
`)
	t.Setenv("BLENDDYNO_CONFIG", configPath)
	resetArgs(t)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid log level")
}

func TestInvalidGeometry(t *testing.T) {
	configPath := writeConfig(t, `
bore = -0.08
`)
	t.Setenv("BLENDDYNO_CONFIG", configPath)
	resetArgs(t)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid engine geometry")
}

func TestInvalidSweep(t *testing.T) {
	configPath := writeConfig(t, `
rpm_start = 5000
rpm_end = 1000
`)
	t.Setenv("BLENDDYNO_CONFIG", configPath)
	resetArgs(t)

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid RPM sweep")
}

func TestFlagsOverrideFile(t *testing.T) {
	configPath := writeConfig(t, `
seed = 7
noise = 0.05
`)
	t.Setenv("BLENDDYNO_CONFIG", configPath)
	resetArgs(t, "--seed", "99", "--log-level", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, int64(99), cfg.Seed, "Expected Seed from flag")
	assert.Equal(t, 0.05, cfg.Noise, "Expected Noise from file")
	assert.Equal(t, "debug", cfg.LogLevel, "Expected LogLevel from flag")
}
