// Package telemetry optionally persists post-noise performance runs
// to a local SQLite database so separate runs can be compared later.
package telemetry

import (
	"context"

	"codeberg.org/ovesen/blenddyno/internal/errors"
	"codeberg.org/ovesen/blenddyno/internal/logger"
)

type service struct {
	repo Repository
	cfg  Config
}

// No-op implementation used when telemetry is disabled
type noopCollector struct{}

func NewService(cfg Config, log logger.Logger) (Collector, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		log.Debug().Msg("Telemetry disabled, using no-op collector")
		return &noopCollector{}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	return &service{
		repo: repo,
		cfg:  cfg,
	}, nil
}

func (s *service) Record(ctx context.Context, run *RunSnapshot) error {
	errFactory := errors.New()

	if run == nil || len(run.Series) == 0 {
		return errFactory.New(ErrInvalidRun)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.Record(run); err != nil {
			return errFactory.Wrap(ErrRunCollection, err)
		}
	}

	return nil
}

func (s *service) Close() error {
	errFactory := errors.New()

	if err := s.repo.Close(); err != nil {
		return errFactory.Wrap(ErrServiceShutdown, err)
	}
	return nil
}

func (*noopCollector) Record(_ context.Context, _ *RunSnapshot) error {
	return nil
}

func (*noopCollector) Close() error {
	return nil
}
