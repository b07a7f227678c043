// Package cli provides the boxdscrape command-line interface: one-shot
// scrapes, archive queries and schema migrations without the HTTP server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kiranshivaraju/boxdscrape/internal/browser"
	"github.com/kiranshivaraju/boxdscrape/internal/config"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

type app struct {
	cfg *config.Config

	// launcher overrides the playwright launcher; set by tests.
	launcher browser.Launcher

	verbose bool
	logFile string
	cleanup func() error
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return newRootCmd(&app{}).ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "boxdscrape",
		Short: "Scrape film-diary profiles and rated-film listings",
		Long: `boxdscrape extracts a user's public profile and every rated film from
their paginated listing using a headless browser.

Configuration is read from the environment (and a .env file if present),
the same variables the API server uses.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "selectors" {
				return nil
			}
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg

			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}
			logger, cleanup := config.SetupLogger(a.logFile, level)
			slog.SetDefault(logger)
			a.cleanup = cleanup
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.cleanup != nil {
				return a.cleanup()
			}
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "also write JSON logs to this file")

	root.AddCommand(newScrapeCmd(a))
	root.AddCommand(newRatingsCmd(a))
	root.AddCommand(newMigrateCmd(a))
	root.AddCommand(newSelectorsCmd())
	return root
}
