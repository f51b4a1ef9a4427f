// Package report renders computed performance series into a 2×2
// comparison figure and writes it as PNG and PDF, with an optional CSV
// sidecar of the raw values. It only reads the series it is handed.
package report

import (
	"bufio"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"

	"codeberg.org/ovesen/blenddyno/internal/engine"
	"codeberg.org/ovesen/blenddyno/internal/errors"
	"codeberg.org/ovesen/blenddyno/internal/logger"
)

const (
	// Fixed artifact base name; consumers rely on it.
	DefaultBaseName = "E10_E20_PerformanceGraphs"

	defaultDPI     = 300
	defaultDirPerm = 0o755

	figWidth  = 12 * vg.Inch
	figHeight = 9 * vg.Inch
)

type Config struct {
	OutputDir string
	BaseName  string
	DPI       int
}

func DefaultConfig() Config {
	return Config{
		OutputDir: ".",
		BaseName:  DefaultBaseName,
		DPI:       defaultDPI,
	}
}

// Exporter renders and writes run artifacts.
type Exporter struct {
	cfg    Config
	logger logger.Logger
}

func NewExporter(cfg Config, log logger.Logger) *Exporter {
	if cfg.BaseName == "" {
		cfg.BaseName = DefaultBaseName
	}
	if cfg.DPI <= 0 {
		cfg.DPI = defaultDPI
	}

	return &Exporter{
		cfg:    cfg,
		logger: log,
	}
}

// Export writes the PNG and PDF figure for the given blend series and
// returns the written paths.
func (e *Exporter) Export(series ...*engine.Series) ([]string, error) {
	errFactory := errors.New()

	if err := checkSeries(series); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(e.cfg.OutputDir, defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrWriteFailed, err)
	}

	pngPath := filepath.Join(e.cfg.OutputDir, e.cfg.BaseName+".png")
	if err := e.writePNG(pngPath, series); err != nil {
		return nil, err
	}

	pdfPath := filepath.Join(e.cfg.OutputDir, e.cfg.BaseName+".pdf")
	if err := e.writePDF(pdfPath, series); err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("png", pngPath).
		Str("pdf", pdfPath).
		Msg("Report exported")

	return []string{pngPath, pdfPath}, nil
}

func checkSeries(series []*engine.Series) error {
	errFactory := errors.New()

	if len(series) == 0 {
		return errFactory.WithMessage(ErrInvalidSeries, "no series to export")
	}
	for _, s := range series {
		if s.Len() == 0 || len(s.Power) != s.Len() || len(s.Torque) != s.Len() ||
			len(s.BSFC) != s.Len() || len(s.Efficiency) != s.Len() {
			return errFactory.WithData(ErrInvalidSeries, s.Fuel)
		}
	}

	return nil
}

// panels builds the four subplots. BSFC is scaled to g/kWh and thermal
// efficiency to percent at display time; the series keep model units.
func (e *Exporter) panels(series []*engine.Series) ([][]*plot.Plot, error) {
	power, err := panel("Brake Power vs RPM", "Engine Speed (RPM)", "Brake Power (kW)",
		series, func(s *engine.Series) []float64 { return s.Power }, 1)
	if err != nil {
		return nil, err
	}
	torque, err := panel("Torque vs RPM", "Engine Speed (RPM)", "Torque (N·m)",
		series, func(s *engine.Series) []float64 { return s.Torque }, 1)
	if err != nil {
		return nil, err
	}
	bsfc, err := panel("BSFC vs RPM", "Engine Speed (RPM)", "BSFC (g/kWh)",
		series, func(s *engine.Series) []float64 { return s.BSFC }, 1000)
	if err != nil {
		return nil, err
	}
	eta, err := panel("Thermal Efficiency vs RPM", "Engine Speed (RPM)", "Thermal Efficiency (%)",
		series, func(s *engine.Series) []float64 { return s.Efficiency }, 100)
	if err != nil {
		return nil, err
	}

	return [][]*plot.Plot{
		{power, torque},
		{bsfc, eta},
	}, nil
}

var (
	seriesColors = []color.RGBA{
		{R: 214, G: 69, B: 65, A: 255},  // E10 red
		{R: 31, G: 119, B: 180, A: 255}, // E20 blue
	}
	seriesGlyphs = []draw.GlyphDrawer{
		draw.CircleGlyph{},
		draw.PyramidGlyph{},
	}
)

func panel(title, xlabel, ylabel string, series []*engine.Series,
	pick func(*engine.Series) []float64, scale float64,
) (*plot.Plot, error) {
	errFactory := errors.New()

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	stylePanel(p)

	for i, s := range series {
		values := pick(s)
		pts := make(plotter.XYs, len(values))
		for j := range values {
			pts[j].X = s.RPM[j]
			pts[j].Y = values[j] * scale
		}

		line, scatter, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, errFactory.Wrap(ErrRenderFailed, err)
		}

		c := seriesColors[i%len(seriesColors)]
		line.Color = c
		line.Width = vg.Points(1.5)
		scatter.GlyphStyle.Color = c
		scatter.GlyphStyle.Shape = seriesGlyphs[i%len(seriesGlyphs)]
		scatter.GlyphStyle.Radius = vg.Points(3)

		p.Add(line, scatter)
		p.Legend.Add(s.Fuel, line, scatter)
	}

	p.Legend.Top = true

	return p, nil
}

func stylePanel(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Title.Padding = vg.Points(6)
	p.X.Label.TextStyle.Font.Size = vg.Points(11)
	p.Y.Label.TextStyle.Font.Size = vg.Points(11)
	p.Add(plotter.NewGrid())
}

func (e *Exporter) drawFigure(dc draw.Canvas, series []*engine.Series) error {
	panels, err := e.panels(series)
	if err != nil {
		return err
	}

	tiles := draw.Tiles{
		Rows:      2,
		Cols:      2,
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 4,
		PadBottom: vg.Millimeter * 4,
		PadLeft:   vg.Millimeter * 4,
		PadRight:  vg.Millimeter * 4,
	}

	canvases := plot.Align(panels, tiles, dc)
	for i := range panels {
		for j := range panels[i] {
			panels[i][j].Draw(canvases[i][j])
		}
	}

	return nil
}

func (e *Exporter) writePNG(path string, series []*engine.Series) error {
	errFactory := errors.New()

	c := vgimg.NewWith(
		vgimg.UseWH(figWidth, figHeight),
		vgimg.UseDPI(e.cfg.DPI),
	)
	if err := e.drawFigure(draw.New(c), series); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(bw); err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}

	return bw.Flush()
}

func (e *Exporter) writePDF(path string, series []*engine.Series) error {
	errFactory := errors.New()

	c := vgpdf.New(figWidth, figHeight)
	if err := e.drawFigure(draw.New(c), series); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}
	defer f.Close()

	if _, err := c.WriteTo(f); err != nil {
		return errFactory.Wrap(ErrWriteFailed, err)
	}

	return nil
}
