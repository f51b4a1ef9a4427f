package telemetry_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/ovesen/blenddyno/internal/engine"
	"codeberg.org/ovesen/blenddyno/internal/logger"
	"codeberg.org/ovesen/blenddyno/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRun(t *testing.T) *telemetry.RunSnapshot {
	t.Helper()
	geo, err := engine.NewGeometry(10.0, 0.08, 0.09)
	require.NoError(t, err)
	rpm := engine.DefaultSweep().Values()
	return &telemetry.RunSnapshot{
		Timestamp:     time.Now(),
		Seed:          42,
		NoiseFraction: 0.02,
		Series: []*engine.Series{
			engine.Compute(geo, engine.E10(), rpm),
			engine.Compute(geo, engine.E20(), rpm),
		},
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, telemetry.DefaultConfig().Validate())
	require.NoError(t, telemetry.Config{Enabled: false}.Validate())
	assert.Error(t, telemetry.Config{Enabled: true, DBPath: ""}.Validate())
}

func TestDisabledServiceIsNoop(t *testing.T) {
	require.NoError(t, logger.Init("error", true))

	svc, err := telemetry.NewService(telemetry.Config{Enabled: false}, logger.New())
	require.NoError(t, err)

	require.NoError(t, svc.Record(context.Background(), testRun(t)))
	require.NoError(t, svc.Close())
}

func TestRecordRoundTrip(t *testing.T) {
	require.NoError(t, logger.Init("error", true))

	dbPath := filepath.Join(t.TempDir(), "telemetry.db")
	svc, err := telemetry.NewService(telemetry.Config{Enabled: true, DBPath: dbPath}, logger.New())
	require.NoError(t, err)

	run := testRun(t)
	require.NoError(t, svc.Record(context.Background(), run))
	require.NoError(t, svc.Close())

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var points int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM performance_points").Scan(&points))
	assert.Equal(t, 18, points, "9 sweep points per blend")

	var fuels int
	require.NoError(t, db.QueryRow("SELECT COUNT(DISTINCT fuel) FROM performance_points").Scan(&fuels))
	assert.Equal(t, 2, fuels)

	var version int
	require.NoError(t, db.QueryRow("SELECT MAX(version) FROM schema_versions").Scan(&version))
	assert.Equal(t, telemetry.SchemaVersion, version)
}

func TestRecordRejectsEmptyRun(t *testing.T) {
	require.NoError(t, logger.Init("error", true))

	dbPath := filepath.Join(t.TempDir(), "telemetry.db")
	svc, err := telemetry.NewService(telemetry.Config{Enabled: true, DBPath: dbPath}, logger.New())
	require.NoError(t, err)
	defer svc.Close()

	assert.Error(t, svc.Record(context.Background(), nil))
	assert.Error(t, svc.Record(context.Background(), &telemetry.RunSnapshot{}))
}

func TestRecordHonorsCancelledContext(t *testing.T) {
	require.NoError(t, logger.Init("error", true))

	dbPath := filepath.Join(t.TempDir(), "telemetry.db")
	svc, err := telemetry.NewService(telemetry.Config{Enabled: true, DBPath: dbPath}, logger.New())
	require.NoError(t, err)
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, svc.Record(ctx, testRun(t)))
}
