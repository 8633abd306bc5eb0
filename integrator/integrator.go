package integrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/sample"
)

var (
	// ErrInvalidConfig is returned for unusable integrator settings.
	ErrInvalidConfig = errors.New("invalid integrator config")

	// ErrNoSamples is returned when a sample-based estimator has nothing to work with.
	ErrNoSamples = errors.New("integrator: no usable samples")
)

// Integrator estimates the integral of d. Sample-based estimators read s;
// deterministic ones may ignore it.
type Integrator interface {
	Integrate(ctx context.Context, d density.Density, s *sample.Set) (sample.Measurement, error)
}

// Algorithm selects an integrator implementation.
type Algorithm int

const (
	// Cubature is a deterministic grid rule.
	Cubature Algorithm = iota
	// HarmonicMean is a sample-based Gelfand-Dey estimator.
	HarmonicMean
)

func (a Algorithm) String() string {
	switch a {
	case Cubature:
		return "cubature"
	case HarmonicMean:
		return "harmonic-mean"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm parses the String form of an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "", "cubature":
		return Cubature, nil
	case "harmonic-mean", "hm":
		return HarmonicMean, nil
	}
	return 0, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidConfig, s)
}

// Config configures an integrator.
type Config struct {
	Algorithm Algorithm

	// MaxEvals bounds the number of density evaluations of the cubature rule over
	// both resolutions. Default 1<<16.
	MaxEvals int

	// BoxWidth is the half-width, in weighted standard deviations, of the reference
	// box used by HarmonicMean. Default 1.
	BoxWidth float64
}

// DefaultConfig returns the default cubature configuration.
func DefaultConfig() Config {
	return Config{
		Algorithm: Cubature,
		MaxEvals:  1 << 16,
		BoxWidth:  1,
	}
}

// OrDefault fills zero fields with defaults.
func (c Config) OrDefault() Config {
	def := DefaultConfig()
	if c.MaxEvals <= 0 {
		c.MaxEvals = def.MaxEvals
	}
	if c.BoxWidth <= 0 {
		c.BoxWidth = def.BoxWidth
	}
	return c
}

// New creates the integrator selected by cfg.Algorithm.
func New(cfg Config) (Integrator, error) {
	cfg = cfg.OrDefault()
	switch cfg.Algorithm {
	case Cubature:
		return &CubatureIntegrator{maxEvals: cfg.MaxEvals}, nil
	case HarmonicMean:
		return &HarmonicMeanIntegrator{boxWidth: cfg.BoxWidth}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, cfg.Algorithm)
	}
}

// MustNew is like New but panics on error.
func MustNew(cfg Config) Integrator {
	i, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return i
}
