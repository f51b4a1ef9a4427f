package telemetry

import "codeberg.org/ovesen/blenddyno/internal/errors"

const (
	defaultDirPerm = 0o755
	defaultDBPath  = "blenddyno.db"
)

type Config struct {
	DBPath  string
	Enabled bool
}

func DefaultConfig() Config {
	return Config{
		DBPath:  defaultDBPath,
		Enabled: false,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	return nil
}
