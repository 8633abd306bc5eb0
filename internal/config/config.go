// Package config loads the bayespart CLI configuration from file, environment and
// flags via viper.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. BAYESPART_RUN_PARTITIONS for
// run.partitions.
const EnvPrefix = "BAYESPART"

// EnvKeyReplacer maps nested keys to environment variable names.
func EnvKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// Config represents the complete CLI configuration.
type Config struct {
	Run        RunConfig        `mapstructure:"run"`
	Explore    SamplerConfig    `mapstructure:"explore"`
	Subspace   SamplerConfig    `mapstructure:"subspace"`
	Partition  PartitionConfig  `mapstructure:"partition"`
	Integrator IntegratorConfig `mapstructure:"integrator"`
	Target     TargetConfig     `mapstructure:"target"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// RunConfig controls the orchestrator.
type RunConfig struct {
	// Partitions is the number of subspaces requested from the partitioner.
	Partitions int `mapstructure:"partitions"`
	// Workers bounds concurrent subspace tasks (0 = GOMAXPROCS).
	Workers int `mapstructure:"workers"`
	// Seed makes runs reproducible (0 = time-based).
	Seed int64 `mapstructure:"seed"`
	// Transform is the sampling-space transform: "none" or "unit-cube".
	Transform string `mapstructure:"transform"`
	// ExtendBounds makes the outer leaves reach the target's support.
	ExtendBounds bool `mapstructure:"extend_bounds"`
	// MemoryLimitMB bounds memory held by subspace results (0 = unlimited).
	MemoryLimitMB int64 `mapstructure:"memory_limit_mb"`
	// DispatchRate limits subspace task starts per second (0 = unlimited).
	DispatchRate float64 `mapstructure:"dispatch_rate"`
	// Timeout cancels the run after this long (0 = no timeout).
	Timeout time.Duration `mapstructure:"timeout"`
}

// SamplerConfig configures a built-in sampler.
type SamplerConfig struct {
	// Algorithm is "metropolis" or "importance".
	Algorithm string  `mapstructure:"algorithm"`
	Chains    int     `mapstructure:"chains"`
	Steps     int     `mapstructure:"steps"`
	Burnin    int     `mapstructure:"burnin"`
	Scale     float64 `mapstructure:"scale"`
	Draws     int     `mapstructure:"draws"`
}

// PartitionConfig configures the partitioner.
type PartitionConfig struct {
	// Method is "kd-tree" or "median".
	Method string `mapstructure:"method"`
	// Cost is "logd-variance" or "coordinate-variance".
	Cost           string `mapstructure:"cost"`
	MinLeafSamples int    `mapstructure:"min_leaf_samples"`
	Dims           []int  `mapstructure:"dims"`
}

// IntegratorConfig configures the integrator.
type IntegratorConfig struct {
	// Algorithm is "cubature" or "harmonic-mean".
	Algorithm string  `mapstructure:"algorithm"`
	MaxEvals  int     `mapstructure:"max_evals"`
	BoxWidth  float64 `mapstructure:"box_width"`
}

// TargetConfig describes the built-in Gaussian-mixture target.
type TargetConfig struct {
	Components []ComponentConfig `mapstructure:"components"`
	// Lo and Hi bound the support. Empty means unbounded.
	Lo []float64 `mapstructure:"lo"`
	Hi []float64 `mapstructure:"hi"`
}

// ComponentConfig is one diagonal normal of the mixture.
type ComponentConfig struct {
	Weight float64   `mapstructure:"weight"`
	Mean   []float64 `mapstructure:"mean"`
	Sigma  []float64 `mapstructure:"sigma"`
}

// ArchiveConfig controls where run results are persisted.
type ArchiveConfig struct {
	// Backend is "none", "local", "s3" or "minio".
	Backend string `mapstructure:"backend"`
	// Path is the root directory of the local backend.
	Path   string `mapstructure:"path"`
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`
	// Endpoint overrides the S3 endpoint; required for minio.
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Secure    bool   `mapstructure:"secure"`
	// Codec is "go-json" or "json".
	Codec string `mapstructure:"codec"`
	// Compression is "none", "lz4" or "zstd".
	Compression string `mapstructure:"compression"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `mapstructure:"level"`
	// Format is "text" or "json".
	Format string `mapstructure:"format"`
}

// Default returns a Config with sensible defaults: a two-component mixture in
// two dimensions on [-10, 10]^2, sampled in four partitions.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			Partitions: 4,
			Transform:  "none",
		},
		Explore: SamplerConfig{
			Algorithm: "metropolis",
			Chains:    4,
			Steps:     1000,
			Burnin:    500,
			Scale:     0.1,
			Draws:     1000,
		},
		Subspace: SamplerConfig{
			Algorithm: "metropolis",
			Chains:    4,
			Steps:     1000,
			Burnin:    500,
			Scale:     0.1,
			Draws:     1000,
		},
		Partition: PartitionConfig{
			Method:         "kd-tree",
			Cost:           "logd-variance",
			MinLeafSamples: 10,
		},
		Integrator: IntegratorConfig{
			Algorithm: "cubature",
			MaxEvals:  1 << 16,
			BoxWidth:  1,
		},
		Target: TargetConfig{
			Components: []ComponentConfig{
				{Weight: 1, Mean: []float64{-3, 0}, Sigma: []float64{1, 1}},
				{Weight: 1, Mean: []float64{3, 0}, Sigma: []float64{1, 1}},
			},
			Lo: []float64{-10, -10},
			Hi: []float64{10, 10},
		},
		Archive: ArchiveConfig{
			Backend:     "none",
			Path:        "runs",
			Codec:       "go-json",
			Compression: "zstd",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers the defaults with viper.
func SetDefaults() {
	defaults := Default()

	// Run defaults
	viper.SetDefault("run.partitions", defaults.Run.Partitions)
	viper.SetDefault("run.workers", defaults.Run.Workers)
	viper.SetDefault("run.seed", defaults.Run.Seed)
	viper.SetDefault("run.transform", defaults.Run.Transform)
	viper.SetDefault("run.extend_bounds", defaults.Run.ExtendBounds)
	viper.SetDefault("run.memory_limit_mb", defaults.Run.MemoryLimitMB)
	viper.SetDefault("run.dispatch_rate", defaults.Run.DispatchRate)
	viper.SetDefault("run.timeout", defaults.Run.Timeout)

	// Sampler defaults
	for key, s := range map[string]SamplerConfig{"explore": defaults.Explore, "subspace": defaults.Subspace} {
		viper.SetDefault(key+".algorithm", s.Algorithm)
		viper.SetDefault(key+".chains", s.Chains)
		viper.SetDefault(key+".steps", s.Steps)
		viper.SetDefault(key+".burnin", s.Burnin)
		viper.SetDefault(key+".scale", s.Scale)
		viper.SetDefault(key+".draws", s.Draws)
	}

	// Partition defaults
	viper.SetDefault("partition.method", defaults.Partition.Method)
	viper.SetDefault("partition.cost", defaults.Partition.Cost)
	viper.SetDefault("partition.min_leaf_samples", defaults.Partition.MinLeafSamples)
	viper.SetDefault("partition.dims", defaults.Partition.Dims)

	// Integrator defaults
	viper.SetDefault("integrator.algorithm", defaults.Integrator.Algorithm)
	viper.SetDefault("integrator.max_evals", defaults.Integrator.MaxEvals)
	viper.SetDefault("integrator.box_width", defaults.Integrator.BoxWidth)

	// Target defaults
	viper.SetDefault("target.components", defaults.Target.Components)
	viper.SetDefault("target.lo", defaults.Target.Lo)
	viper.SetDefault("target.hi", defaults.Target.Hi)

	// Archive defaults
	viper.SetDefault("archive.backend", defaults.Archive.Backend)
	viper.SetDefault("archive.path", defaults.Archive.Path)
	viper.SetDefault("archive.bucket", defaults.Archive.Bucket)
	viper.SetDefault("archive.prefix", defaults.Archive.Prefix)
	viper.SetDefault("archive.region", defaults.Archive.Region)
	viper.SetDefault("archive.endpoint", defaults.Archive.Endpoint)
	viper.SetDefault("archive.access_key", defaults.Archive.AccessKey)
	viper.SetDefault("archive.secret_key", defaults.Archive.SecretKey)
	viper.SetDefault("archive.secure", defaults.Archive.Secure)
	viper.SetDefault("archive.codec", defaults.Archive.Codec)
	viper.SetDefault("archive.compression", defaults.Archive.Compression)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.format", defaults.Logging.Format)
}

// Load reads the configuration from viper and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "bayespart")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "bayespart")
}
