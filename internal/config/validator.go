package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/bayespart/archive"
	"github.com/hupe1980/bayespart/codec"
	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/integrator"
	"github.com/hupe1980/bayespart/partition"
	"github.com/hupe1980/bayespart/sampler"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "run.partitions")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the list of valid log formats
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// ValidBackends returns the list of valid archive backends
func ValidBackends() []string {
	return []string{"none", "local", "s3", "minio"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, c.validateRun()...)
	errs = append(errs, validateSampler("explore", c.Explore)...)
	errs = append(errs, validateSampler("subspace", c.Subspace)...)
	errs = append(errs, c.validatePartition()...)
	errs = append(errs, c.validateIntegrator()...)
	errs = append(errs, c.validateTarget()...)
	errs = append(errs, c.validateArchive()...)
	errs = append(errs, c.validateLogging()...)
	return errs
}

func (c *Config) validateRun() []ValidationError {
	var errs []ValidationError
	if c.Run.Partitions < 1 {
		errs = append(errs, ValidationError{"run.partitions", c.Run.Partitions, "must be at least 1"})
	}
	if c.Run.Workers < 0 {
		errs = append(errs, ValidationError{"run.workers", c.Run.Workers, "must not be negative"})
	}
	if _, err := density.ParseTransformSpec(c.Run.Transform); err != nil {
		errs = append(errs, ValidationError{"run.transform", c.Run.Transform, "must be none or unit-cube"})
	}
	if c.Run.MemoryLimitMB < 0 {
		errs = append(errs, ValidationError{"run.memory_limit_mb", c.Run.MemoryLimitMB, "must not be negative"})
	}
	if c.Run.DispatchRate < 0 {
		errs = append(errs, ValidationError{"run.dispatch_rate", c.Run.DispatchRate, "must not be negative"})
	}
	if c.Run.Timeout < 0 {
		errs = append(errs, ValidationError{"run.timeout", c.Run.Timeout, "must not be negative"})
	}
	return errs
}

func validateSampler(prefix string, s SamplerConfig) []ValidationError {
	var errs []ValidationError
	if _, err := sampler.ParseAlgorithm(s.Algorithm); err != nil {
		errs = append(errs, ValidationError{prefix + ".algorithm", s.Algorithm, "must be metropolis or importance"})
	}
	for field, v := range map[string]int{"chains": s.Chains, "steps": s.Steps, "burnin": s.Burnin, "draws": s.Draws} {
		if v < 0 {
			errs = append(errs, ValidationError{prefix + "." + field, v, "must not be negative"})
		}
	}
	if s.Scale < 0 {
		errs = append(errs, ValidationError{prefix + ".scale", s.Scale, "must not be negative"})
	}
	slices.SortFunc(errs, func(a, b ValidationError) int { return strings.Compare(a.Field, b.Field) })
	return errs
}

func (c *Config) validatePartition() []ValidationError {
	var errs []ValidationError
	if _, err := partition.ParseMethod(c.Partition.Method); err != nil {
		errs = append(errs, ValidationError{"partition.method", c.Partition.Method, "must be kd-tree or median"})
	}
	if _, err := partition.ParseCost(c.Partition.Cost); err != nil {
		errs = append(errs, ValidationError{"partition.cost", c.Partition.Cost, "must be logd-variance or coordinate-variance"})
	}
	if c.Partition.MinLeafSamples < 0 {
		errs = append(errs, ValidationError{"partition.min_leaf_samples", c.Partition.MinLeafSamples, "must not be negative"})
	}
	for _, d := range c.Partition.Dims {
		if d < 0 {
			errs = append(errs, ValidationError{"partition.dims", c.Partition.Dims, "dimensions must not be negative"})
			break
		}
	}
	return errs
}

func (c *Config) validateIntegrator() []ValidationError {
	var errs []ValidationError
	if _, err := integrator.ParseAlgorithm(c.Integrator.Algorithm); err != nil {
		errs = append(errs, ValidationError{"integrator.algorithm", c.Integrator.Algorithm, "must be cubature or harmonic-mean"})
	}
	if c.Integrator.MaxEvals < 0 {
		errs = append(errs, ValidationError{"integrator.max_evals", c.Integrator.MaxEvals, "must not be negative"})
	}
	if c.Integrator.BoxWidth < 0 {
		errs = append(errs, ValidationError{"integrator.box_width", c.Integrator.BoxWidth, "must not be negative"})
	}
	return errs
}

func (c *Config) validateTarget() []ValidationError {
	t := c.Target
	if len(t.Components) == 0 {
		return []ValidationError{{"target.components", len(t.Components), "at least one component is required"}}
	}

	var errs []ValidationError
	dim := len(t.Components[0].Mean)
	if dim == 0 {
		errs = append(errs, ValidationError{"target.components[0].mean", t.Components[0].Mean, "must not be empty"})
	}
	for i, comp := range t.Components {
		field := fmt.Sprintf("target.components[%d]", i)
		if !(comp.Weight > 0) {
			errs = append(errs, ValidationError{field + ".weight", comp.Weight, "must be positive"})
		}
		if len(comp.Mean) != dim {
			errs = append(errs, ValidationError{field + ".mean", comp.Mean, fmt.Sprintf("must have %d entries", dim)})
		}
		if len(comp.Sigma) != len(comp.Mean) {
			errs = append(errs, ValidationError{field + ".sigma", comp.Sigma, "must match the length of mean"})
		}
		for _, s := range comp.Sigma {
			if !(s > 0) {
				errs = append(errs, ValidationError{field + ".sigma", comp.Sigma, "entries must be positive"})
				break
			}
		}
	}

	if len(t.Lo) > 0 || len(t.Hi) > 0 {
		if len(t.Lo) != dim || len(t.Hi) != dim {
			errs = append(errs, ValidationError{"target.lo/hi", [][]float64{t.Lo, t.Hi}, fmt.Sprintf("must both have %d entries", dim)})
		} else if err := density.NewBounds(t.Lo, t.Hi).Validate(); err != nil {
			errs = append(errs, ValidationError{"target.lo/hi", [][]float64{t.Lo, t.Hi}, err.Error()})
		}
	}
	return errs
}

func (c *Config) validateArchive() []ValidationError {
	a := c.Archive
	var errs []ValidationError
	if !slices.Contains(ValidBackends(), a.Backend) {
		errs = append(errs, ValidationError{"archive.backend", a.Backend, "must be one of " + strings.Join(ValidBackends(), ", ")})
	}
	if _, ok := codec.ByName(a.Codec); !ok {
		errs = append(errs, ValidationError{"archive.codec", a.Codec, "must be one of " + strings.Join(codec.Names(), ", ")})
	}
	if _, err := archive.ParseCompression(a.Compression); err != nil {
		errs = append(errs, ValidationError{"archive.compression", a.Compression, "must be none, lz4 or zstd"})
	}

	switch a.Backend {
	case "local":
		if a.Path == "" {
			errs = append(errs, ValidationError{"archive.path", a.Path, "is required for the local backend"})
		}
	case "s3":
		if a.Bucket == "" {
			errs = append(errs, ValidationError{"archive.bucket", a.Bucket, "is required for the s3 backend"})
		}
	case "minio":
		if a.Bucket == "" {
			errs = append(errs, ValidationError{"archive.bucket", a.Bucket, "is required for the minio backend"})
		}
		if a.Endpoint == "" {
			errs = append(errs, ValidationError{"archive.endpoint", a.Endpoint, "is required for the minio backend"})
		}
	}
	return errs
}

func (c *Config) validateLogging() []ValidationError {
	var errs []ValidationError
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errs = append(errs, ValidationError{"logging.level", c.Logging.Level, "must be one of " + strings.Join(ValidLogLevels(), ", ")})
	}
	if !slices.Contains(ValidLogFormats(), c.Logging.Format) {
		errs = append(errs, ValidationError{"logging.format", c.Logging.Format, "must be text or json"})
	}
	return errs
}
