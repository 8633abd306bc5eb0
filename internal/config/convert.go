package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hupe1980/bayespart"
	"github.com/hupe1980/bayespart/archive"
	"github.com/hupe1980/bayespart/codec"
	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/integrator"
	"github.com/hupe1980/bayespart/partition"
	"github.com/hupe1980/bayespart/sampler"
)

// Sampler converts to a sampler.Config.
func (s SamplerConfig) Sampler() (sampler.Config, error) {
	algo, err := sampler.ParseAlgorithm(s.Algorithm)
	if err != nil {
		return sampler.Config{}, err
	}
	return sampler.Config{
		Algorithm: algo,
		Chains:    s.Chains,
		Steps:     s.Steps,
		Burnin:    s.Burnin,
		Scale:     s.Scale,
		Draws:     s.Draws,
	}, nil
}

// Partitioner converts to a partition.Config.
func (p PartitionConfig) Partitioner() (partition.Config, error) {
	method, err := partition.ParseMethod(p.Method)
	if err != nil {
		return partition.Config{}, err
	}
	cost, err := partition.ParseCost(p.Cost)
	if err != nil {
		return partition.Config{}, err
	}
	return partition.Config{
		Method:         method,
		Cost:           cost,
		MinLeafSamples: p.MinLeafSamples,
		Dims:           p.Dims,
	}, nil
}

// Integrator converts to an integrator.Config.
func (i IntegratorConfig) Integrator() (integrator.Config, error) {
	algo, err := integrator.ParseAlgorithm(i.Algorithm)
	if err != nil {
		return integrator.Config{}, err
	}
	return integrator.Config{
		Algorithm: algo,
		MaxEvals:  i.MaxEvals,
		BoxWidth:  i.BoxWidth,
	}, nil
}

// Density builds the Gaussian-mixture target.
func (t TargetConfig) Density() (density.Density, error) {
	var region density.Bounds
	if len(t.Lo) > 0 {
		region = density.NewBounds(t.Lo, t.Hi)
	}

	components := make([]density.Density, 0, len(t.Components))
	weights := make([]float64, 0, len(t.Components))
	for i, c := range t.Components {
		n, err := density.NewNormal(c.Mean, c.Sigma)
		if err != nil {
			return nil, fmt.Errorf("target component %d: %w", i, err)
		}
		n.Region = region
		components = append(components, n)
		weights = append(weights, c.Weight)
	}
	if len(components) == 1 {
		return components[0], nil
	}
	return density.NewMixture(components, weights)
}

// Builder returns an orchestrator builder for the run settings.
func (c *Config) Builder() (bayespart.Builder, error) {
	explore, err := c.Explore.Sampler()
	if err != nil {
		return bayespart.Builder{}, fmt.Errorf("explore: %w", err)
	}
	sub, err := c.Subspace.Sampler()
	if err != nil {
		return bayespart.Builder{}, fmt.Errorf("subspace: %w", err)
	}
	part, err := c.Partition.Partitioner()
	if err != nil {
		return bayespart.Builder{}, fmt.Errorf("partition: %w", err)
	}
	integ, err := c.Integrator.Integrator()
	if err != nil {
		return bayespart.Builder{}, fmt.Errorf("integrator: %w", err)
	}
	transform, err := density.ParseTransformSpec(c.Run.Transform)
	if err != nil {
		return bayespart.Builder{}, err
	}

	b := bayespart.Partitioned(c.Run.Partitions).
		Explore(explore).
		Subspace(sub).
		Partition(part).
		Integrate(integ).
		Transform(transform).
		SetExtendBounds(c.Run.ExtendBounds).
		Workers(c.Run.Workers).
		MemoryLimit(c.Run.MemoryLimitMB << 20).
		DispatchRate(c.Run.DispatchRate)
	if c.Run.Seed != 0 {
		b = b.Seed(c.Run.Seed)
	}
	return b, nil
}

// ArchiveOptions returns the codec and compression settings for archive.Save.
func (a ArchiveConfig) ArchiveOptions() ([]archive.Option, error) {
	c, ok := codec.ByName(a.Codec)
	if !ok {
		return nil, fmt.Errorf("%w: %q", archive.ErrUnknownCodec, a.Codec)
	}
	comp, err := archive.ParseCompression(a.Compression)
	if err != nil {
		return nil, err
	}
	return []archive.Option{archive.WithCodec(c), archive.WithCompression(comp)}, nil
}

// Logger builds the run logger writing to w.
func (l LoggingConfig) Logger(w io.Writer) (*bayespart.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return bayespart.NewLogger(slog.NewJSONHandler(w, opts)), nil
	}
	return bayespart.NewLogger(slog.NewTextHandler(w, opts)), nil
}
