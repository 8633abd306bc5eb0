package sampler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/sample"
)

var (
	// ErrInvalidConfig is returned for unusable sampler settings.
	ErrInvalidConfig = errors.New("invalid sampler config")

	// ErrInitFailed is returned when no starting point with finite log-density is found.
	ErrInitFailed = errors.New("sampler: no valid starting point")
)

// Sampler draws weighted samples from a density.
//
// Implementations must be safe for concurrent use with distinct *rand.Rand values.
type Sampler interface {
	Sample(ctx context.Context, d density.Density, rng *rand.Rand) (*sample.Set, error)
}

// Algorithm selects a sampler implementation.
type Algorithm int

const (
	// Metropolis is random-walk Metropolis MCMC.
	Metropolis Algorithm = iota
	// Importance is uniform importance sampling over finite bounds.
	Importance
)

func (a Algorithm) String() string {
	switch a {
	case Metropolis:
		return "metropolis"
	case Importance:
		return "importance"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm parses the String form of an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "", "metropolis", "mcmc":
		return Metropolis, nil
	case "importance":
		return Importance, nil
	}
	return 0, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidConfig, s)
}

// Config configures a sampler.
type Config struct {
	Algorithm Algorithm

	// Chains is the number of independent Metropolis chains. Default 4.
	Chains int
	// Steps is the number of post burn-in steps per chain. Default 1000.
	Steps int
	// Burnin is the number of tuning steps per chain that are discarded. Default 500.
	Burnin int
	// Scale is the initial proposal width as a fraction of the bounds width
	// (absolute for unbounded dimensions). Default 0.1.
	Scale float64

	// Draws is the number of importance draws. Default 1000.
	Draws int
}

// DefaultConfig returns the default Metropolis configuration.
func DefaultConfig() Config {
	return Config{
		Algorithm: Metropolis,
		Chains:    4,
		Steps:     1000,
		Burnin:    500,
		Scale:     0.1,
		Draws:     1000,
	}
}

// OrDefault fills zero fields with defaults.
func (c Config) OrDefault() Config {
	def := DefaultConfig()
	if c.Chains <= 0 {
		c.Chains = def.Chains
	}
	if c.Steps <= 0 {
		c.Steps = def.Steps
	}
	if c.Burnin <= 0 {
		c.Burnin = def.Burnin
	}
	if c.Scale <= 0 {
		c.Scale = def.Scale
	}
	if c.Draws <= 0 {
		c.Draws = def.Draws
	}
	return c
}

// New creates the sampler selected by cfg.Algorithm.
func New(cfg Config) (Sampler, error) {
	cfg = cfg.OrDefault()
	switch cfg.Algorithm {
	case Metropolis:
		return &MetropolisSampler{cfg: cfg}, nil
	case Importance:
		return &ImportanceSampler{draws: cfg.Draws}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, cfg.Algorithm)
	}
}

// MustNew is like New but panics on error. Intended for tests and static setup.
func MustNew(cfg Config) Sampler {
	s, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return s
}
