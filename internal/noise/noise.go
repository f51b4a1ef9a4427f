// Package noise perturbs computed performance series with
// multiplicative Gaussian noise, emulating dynamometer measurement
// scatter. The generator is owned by the caller so runs are
// reproducible and test-isolated.
package noise

import (
	"math/rand"

	"codeberg.org/ovesen/blenddyno/internal/engine"
	"codeberg.org/ovesen/blenddyno/internal/errors"
)

// DefaultFraction is the stock 2% noise level.
const DefaultFraction = 0.02

// Injector applies v → v·(1 + fraction·z), z ~ N(0,1), one
// independent draw per scalar.
type Injector struct {
	fraction float64
	rng      *rand.Rand
}

// NewInjector validates the noise fraction and returns an Injector
// seeded deterministically. The same seed and inputs reproduce the
// perturbed series bit for bit.
func NewInjector(fraction float64, seed int64) (*Injector, error) {
	errFactory := errors.New()

	if fraction < 0 {
		return nil, errFactory.WithData(errors.ErrInvalidNoise, fraction)
	}

	return &Injector{
		fraction: fraction,
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

// Apply perturbs the given series in place. Draw order is part of the
// contract: quantity-major (power, torque, BSFC, efficiency), series
// in argument order within each quantity, elements by ascending index.
// Perturbed values are not re-clamped; excursions outside physical
// ranges are accepted as sensor realism.
func (n *Injector) Apply(series ...*engine.Series) {
	for _, pick := range []func(*engine.Series) []float64{
		func(s *engine.Series) []float64 { return s.Power },
		func(s *engine.Series) []float64 { return s.Torque },
		func(s *engine.Series) []float64 { return s.BSFC },
		func(s *engine.Series) []float64 { return s.Efficiency },
	} {
		for _, s := range series {
			n.perturb(pick(s))
		}
	}
}

func (n *Injector) perturb(values []float64) {
	for i := range values {
		values[i] *= 1 + n.fraction*n.rng.NormFloat64()
	}
}
