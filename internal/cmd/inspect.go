package cmd

import (
	"errors"
	"fmt"

	"github.com/hupe1980/bayespart/archive"
	"github.com/hupe1980/bayespart/internal/config"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect NAME",
	Short: "Show an archived run",
	Long: `Inspect loads an archived run from the configured archive backend and prints
its header and summary.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

var listCmd = &cobra.Command{
	Use:   "list [PREFIX]",
	Short: "List archived runs",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

var (
	inspectJSON bool // Output as JSON
)

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Output summary as JSON")
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(listCmd)
}

var errNoBackend = errors.New("no archive backend configured (set archive.backend)")

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context(), cfg.Archive)
	if err != nil {
		return err
	}
	if store == nil {
		return errNoBackend
	}

	data, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	h, _, err := archive.ReadHeader(data)
	if err != nil {
		return err
	}
	res, err := archive.Decode(data)
	if err != nil {
		return err
	}

	s := summarize(res)
	s.ArchivedAs = args[0]
	if inspectJSON {
		return s.writeJSON(cmd.OutOrStdout())
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Format:    v%d, codec %s v%d, compression %s\n", h.Version, h.Codec, h.CodecVersion, h.Compression)
	fmt.Fprintf(w, "Size:      %d bytes stored, %d bytes decoded\n", h.StoredSize, h.Size)
	return s.writeText(w)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := openStore(cmd.Context(), cfg.Archive)
	if err != nil {
		return err
	}
	if store == nil {
		return errNoBackend
	}

	prefix := ""
	if len(args) == 1 {
		prefix = args[0]
	}
	names, err := store.List(cmd.Context(), prefix)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}
