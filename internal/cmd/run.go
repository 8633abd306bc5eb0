package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/hupe1980/bayespart"
	"github.com/hupe1980/bayespart/archive"
	"github.com/hupe1980/bayespart/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Sample the configured target",
	Long: `Run explores the configured Gaussian-mixture target, partitions it, samples
every subspace in parallel and prints a summary. When an archive backend is
configured the full result is saved to it.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var (
	runJSON        bool   // Output summary as JSON
	runArchiveName string // Archive blob name
)

func init() {
	runCmd.Flags().Int("partitions", 0, "number of subspaces (overrides run.partitions)")
	runCmd.Flags().Int("workers", 0, "concurrent subspace tasks (overrides run.workers)")
	runCmd.Flags().Int64("seed", 0, "random seed (overrides run.seed)")
	runCmd.Flags().String("transform", "", "sampling-space transform: none or unit-cube")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Output summary as JSON")
	runCmd.Flags().StringVar(&runArchiveName, "name", "", "archive blob name (default <run-id>.bpar)")

	_ = viper.BindPFlag("run.partitions", runCmd.Flags().Lookup("partitions"))
	_ = viper.BindPFlag("run.workers", runCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("run.seed", runCmd.Flags().Lookup("seed"))
	_ = viper.BindPFlag("run.transform", runCmd.Flags().Lookup("transform"))

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := cfg.Logging.Logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	target, err := cfg.Target.Density()
	if err != nil {
		return err
	}
	builder, err := cfg.Builder()
	if err != nil {
		return err
	}
	o, err := builder.Logger(logger).Build()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if cfg.Run.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Run.Timeout)
		defer cancel()
	}

	res, err := o.Run(ctx, target)
	if err != nil {
		return err
	}

	s := summarize(res)
	if name, err := saveResult(ctx, cfg.Archive, res); err != nil {
		return err
	} else if name != "" {
		s.ArchivedAs = name
		logger.Info("result archived", "name", name, "backend", cfg.Archive.Backend)
	}

	if runJSON {
		return s.writeJSON(cmd.OutOrStdout())
	}
	return s.writeText(cmd.OutOrStdout())
}

// saveResult archives res and returns the blob name, or "" when archiving is off.
func saveResult(ctx context.Context, cfg config.ArchiveConfig, res *bayespart.Result) (string, error) {
	store, err := openStore(ctx, cfg)
	if err != nil || store == nil {
		return "", err
	}
	opts, err := cfg.ArchiveOptions()
	if err != nil {
		return "", err
	}

	name := runArchiveName
	if name == "" {
		name = res.RunID + ".bpar"
	}
	if err := archive.Save(ctx, store, name, res, opts...); err != nil {
		return "", fmt.Errorf("save archive: %w", err)
	}
	return name, nil
}
