package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/boxdscrape/internal/browser"
	"github.com/kiranshivaraju/boxdscrape/internal/jobs"
	"github.com/kiranshivaraju/boxdscrape/internal/scraper"
	"github.com/kiranshivaraju/boxdscrape/internal/store"
	"github.com/kiranshivaraju/boxdscrape/pkg/models"
	"github.com/spf13/cobra"
)

const (
	pollInterval   = 100 * time.Millisecond
	closeTimeout   = 30 * time.Second
	defaultTimeout = 15 * time.Minute
)

type scrapeResult struct {
	JobID      string                 `json:"jobId" yaml:"jobId"`
	Status     models.JobStatus       `json:"status" yaml:"status"`
	TotalPages int                    `json:"totalPages" yaml:"totalPages"`
	Profile    *models.ProfileSummary `json:"profile" yaml:"profile"`
	Films      []models.FilmRecord    `json:"films" yaml:"films"`
	Error      *string                `json:"error,omitempty" yaml:"error,omitempty"`
}

func newScrapeCmd(a *app) *cobra.Command {
	var (
		output  string
		archive bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "scrape <username>",
		Short: "Scrape one user's profile and rated films",
		Long: `Run a single scrape job in-process and print the result.

Examples:
  boxdscrape scrape alice
  boxdscrape scrape alice -o yaml
  boxdscrape scrape alice --archive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(output); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return a.runScrape(ctx, cmd.OutOrStdout(), args[0], output, archive)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatJSON, "output format: json or yaml")
	cmd.Flags().BoolVar(&archive, "archive", false, "save the result to the ratings archive (needs DATABASE_URL)")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultTimeout, "give up after this long")
	return cmd
}

func (a *app) runScrape(ctx context.Context, out io.Writer, username, format string, archive bool) error {
	opts, err := scraper.OptionsFromConfig(a.cfg.Scraper)
	if err != nil {
		return err
	}

	if archive {
		if a.cfg.Database.URL == "" {
			return fmt.Errorf("--archive needs DATABASE_URL")
		}
		pool, err := store.Connect(ctx, a.cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		opts.Archive = store.NewPostgresStore(pool)
	}

	launcher := a.launcher
	if launcher == nil {
		pl := browser.NewPlaywrightLauncher(browser.PlaywrightConfig{
			Headless:       a.cfg.Browser.Headless,
			ExecutablePath: a.cfg.Browser.ExecutablePath,
			UserAgent:      a.cfg.Browser.UserAgent,
			InstallDriver:  a.cfg.Browser.InstallDriver,
		})
		defer func() {
			if err := pl.Close(); err != nil {
				slog.Warn("closing browser", "error", err)
			}
		}()
		launcher = pl
	}

	jobStore := jobs.New()
	defer jobStore.Close()
	svc := scraper.NewService(jobStore, launcher, opts)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := svc.Close(closeCtx); err != nil {
			slog.Warn("stopping scraper", "error", err)
		}
	}()

	jobID, err := svc.Submit(ctx, username)
	if err != nil {
		return err
	}

	job, err := waitForJob(ctx, svc, jobID)
	if err != nil {
		return err
	}

	if err := writeOutput(out, format, scrapeResult{
		JobID:      job.ID,
		Status:     job.Status,
		TotalPages: job.TotalPages,
		Profile:    job.ProfileData,
		Films:      job.Data,
		Error:      job.Error,
	}); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if job.Status == models.JobStatusFailed {
		return fmt.Errorf("scrape of %s failed: %s", username, *job.Error)
	}
	return nil
}

// waitForJob polls until the job is terminal, the way an API client would.
func waitForJob(ctx context.Context, svc *scraper.Service, jobID string) (models.Job, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		job, err := svc.Status(ctx, jobID)
		if err != nil {
			return models.Job{}, fmt.Errorf("reading job %s: %w", jobID, err)
		}
		if job.Status.Terminal() {
			return job, nil
		}
		slog.Debug("scrape in progress", "job_id", jobID, "progress", job.Progress, "total_pages", job.TotalPages)

		select {
		case <-ctx.Done():
			return models.Job{}, fmt.Errorf("waiting for job %s: %w", jobID, ctx.Err())
		case <-ticker.C:
		}
	}
}
