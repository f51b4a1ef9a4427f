package engine

import (
	"math"

	"codeberg.org/ovesen/blenddyno/internal/errors"
)

// Geometry describes the cylinder of the modeled engine. The
// compression ratio is part of the physical description but does not
// enter the current formulas.
type Geometry struct {
	CompressionRatio float64
	Bore             float64 // m
	Stroke           float64 // m
}

// NewGeometry validates and returns an immutable Geometry.
func NewGeometry(compressionRatio, bore, stroke float64) (Geometry, error) {
	errFactory := errors.New()

	if bore <= 0 || stroke <= 0 {
		return Geometry{}, errFactory.WithData(errors.ErrInvalidGeometry, struct {
			Bore   float64
			Stroke float64
		}{
			Bore:   bore,
			Stroke: stroke,
		})
	}

	return Geometry{
		CompressionRatio: compressionRatio,
		Bore:             bore,
		Stroke:           stroke,
	}, nil
}

// SweptVolume returns the displaced cylinder volume in m³.
func (g Geometry) SweptVolume() float64 {
	return math.Pi / 4 * g.Bore * g.Bore * g.Stroke
}

// Fuel holds the combustion properties of one blend together with its
// thermal efficiency curve. Each blend carries its own peak, curvature
// and floor; the two stock blends are deliberately not identical.
type Fuel struct {
	Name     string
	LHV      float64 // J/kg
	AFR      float64 // mass air per mass fuel
	EtaPeak  float64 // thermal efficiency at peakRPM
	EtaCurve float64 // quadratic falloff per (rpm-peakRPM)²
	EtaFloor float64
}

// E10 returns the 10% ethanol blend.
func E10() Fuel {
	return Fuel{
		Name:     "E10",
		LHV:      43.54e6,
		AFR:      14.1,
		EtaPeak:  0.32,
		EtaCurve: 0.0000025,
		EtaFloor: 0.25,
	}
}

// E20 returns the 20% ethanol blend.
func E20() Fuel {
	return Fuel{
		Name:     "E20",
		LHV:      41.93e6,
		AFR:      13.5,
		EtaPeak:  0.33,
		EtaCurve: 0.0000020,
		EtaFloor: 0.26,
	}
}

// Validate checks the fuel properties for physical plausibility.
func (f Fuel) Validate() error {
	errFactory := errors.New()

	if f.LHV <= 0 || f.AFR <= 0 || f.EtaPeak <= 0 || f.EtaFloor <= 0 {
		return errFactory.WithData(errors.ErrInvalidFuel, f.Name)
	}

	return nil
}

// Sweep describes the inclusive range of engine speeds to evaluate.
type Sweep struct {
	Start float64 // rev/min
	End   float64
	Step  float64
}

// DefaultSweep returns the stock 1000..5000 rev/min sweep in steps of 500.
func DefaultSweep() Sweep {
	return Sweep{
		Start: 1000,
		End:   5000,
		Step:  500,
	}
}

// Validate rejects sweeps that would produce no points or non-positive
// engine speeds, which the model downstream assumes away.
func (s Sweep) Validate() error {
	errFactory := errors.New()

	if s.Start <= 0 || s.Step <= 0 || s.End < s.Start {
		return errFactory.WithData(errors.ErrInvalidSweep, s)
	}

	return nil
}

// Values expands the sweep into its ordered RPM points.
func (s Sweep) Values() []float64 {
	var rpm []float64
	for r := s.Start; r <= s.End; r += s.Step {
		rpm = append(rpm, r)
	}

	return rpm
}

// Point holds the full computation chain for one engine speed.
type Point struct {
	RPM                  float64
	VolumetricEfficiency float64
	AirMassFlow          float64 // kg/s
	FuelMassFlow         float64 // kg/s
	Efficiency           float64 // thermal, fraction
	Power                float64 // brake, kW
	Torque               float64 // N·m
	BSFC                 float64 // kg/kWh
}

// Series is one blend's output curves, index-aligned with the RPM axis.
// It is constructed by Compute, perturbed in place by the noise
// injector, and read-only thereafter.
type Series struct {
	Fuel       string
	RPM        []float64
	Power      []float64 // kW
	Torque     []float64 // N·m
	BSFC       []float64 // kg/kWh
	Efficiency []float64 // fraction
}

// Len returns the number of sweep points in the series.
func (s *Series) Len() int {
	return len(s.RPM)
}
