package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/ovesen/blenddyno/internal/engine"
	"codeberg.org/ovesen/blenddyno/internal/errors"
)

// ExportCSV writes the series as a CSV sidecar next to the figure,
// one row per RPM point, in the same display units as the plots
// (g/kWh, percent).
func (e *Exporter) ExportCSV(series ...*engine.Series) (string, error) {
	errFactory := errors.New()

	if err := checkSeries(series); err != nil {
		return "", err
	}
	n := series[0].Len()
	for _, s := range series {
		if s.Len() != n {
			return "", errFactory.WithMessage(ErrInvalidSeries, "series length mismatch")
		}
	}

	if err := os.MkdirAll(e.cfg.OutputDir, defaultDirPerm); err != nil {
		return "", errFactory.Wrap(ErrWriteFailed, err)
	}

	path := filepath.Join(e.cfg.OutputDir, e.cfg.BaseName+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", errFactory.Wrap(ErrWriteFailed, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"rpm"}
	for _, s := range series {
		fuel := strings.ToLower(s.Fuel)
		header = append(header,
			fuel+"_power_kw",
			fuel+"_torque_nm",
			fuel+"_bsfc_g_kwh",
			fuel+"_efficiency_pct",
		)
	}
	if err := w.Write(header); err != nil {
		return "", errFactory.Wrap(ErrWriteFailed, err)
	}

	for i := 0; i < n; i++ {
		row := []string{formatValue(series[0].RPM[i])}
		for _, s := range series {
			row = append(row,
				formatValue(s.Power[i]),
				formatValue(s.Torque[i]),
				formatValue(s.BSFC[i]*1000),
				formatValue(s.Efficiency[i]*100),
			)
		}
		if err := w.Write(row); err != nil {
			return "", errFactory.Wrap(ErrWriteFailed, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", errFactory.Wrap(ErrWriteFailed, err)
	}

	e.logger.Info().Str("csv", path).Msg("CSV exported")

	return path, nil
}

func formatValue(v float64) string {
	return fmt.Sprintf("%.6g", v)
}
