// Package cmd implements the bayespart command line interface.
package cmd

import (
	"errors"

	"github.com/hupe1980/bayespart/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "bayespart",
	Short: "Adaptive partitioned Bayesian sampling",
	Long: `bayespart samples a posterior by exploring it once, partitioning the explored
region into subspaces, sampling and integrating every subspace in parallel and
merging the reweighted draws.

Runs are configured by a YAML/TOML/JSON file, BAYESPART_* environment variables
and flags, in increasing order of precedence.`,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/bayespart/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.PersistentFlags().String("backend", "", "archive backend: none, local, s3 or minio (overrides archive.backend)")
	rootCmd.PersistentFlags().String("archive-path", "", "root directory of the local archive backend (overrides archive.path)")
	_ = viper.BindPFlag("archive.backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag("archive.path", rootCmd.PersistentFlags().Lookup("archive-path"))
}

func initConfig(*cobra.Command, []string) error {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	cfgFile := viper.GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix(config.EnvPrefix)
	// e.g., BAYESPART_RUN_PARTITIONS for run.partitions
	viper.SetEnvKeyReplacer(config.EnvKeyReplacer())

	if err := viper.ReadInConfig(); err != nil {
		// A missing default config file is fine; an explicit one must exist.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}
