// --- START OF FINAL REVISED FILE cmd/proof/root.go ---
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brandonaviram/proof/internal/cli"
	"github.com/brandonaviram/proof/internal/cli/config"
	"github.com/brandonaviram/proof/pkg/proof"
)

var (
	// These are set during build time using -ldflags
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// runFn executes a configured run. Tests replace it.
	runFn func(ctx context.Context, opts proof.Options, logger *slog.Logger) error = cli.Run
)

// newRootCmd builds the root command with every configuration flag registered.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proof <input-dir>",
		Short: "Builds a visual contact-sheet PDF for a folder of images and videos.",
		Long: `proof scans a delivery folder for images and videos, measures each asset,
generates thumbnails and renders a contact-sheet PDF with Typst.

With --manifest-only it prints a TSV, JSON or YAML manifest instead.
On a terminal, progress is shown in an interactive dashboard.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error { // minimal comment
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfgFile, _ := cmd.Flags().GetString("config")
			profileName, _ := cmd.Flags().GetString("profile")
			opts, logger, err := config.LoadAndValidate(args[0], cfgFile, profileName, version, cmd.Flags())
			if err != nil {
				return err
			}
			return runFn(ctx, opts, logger)
		},
	}
	cmd.SetVersionTemplate(`{{.Name}} version {{.Version}}` + "\n")
	config.DefineFlags(cmd.Flags())
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
// Cobra has already printed "Error: <msg>" by then.
func Execute() { // minimal comment
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// --- END OF FINAL REVISED FILE cmd/proof/root.go ---
