package report

import "codeberg.org/ovesen/blenddyno/internal/errors"

const (
	ErrInvalidSeries = errors.ErrorCode("report_invalid_series")
	ErrRenderFailed  = errors.ErrorCode("report_render_failed")
	ErrWriteFailed   = errors.ErrorCode("report_write_failed")
)
