// Package scraper runs scrape jobs: one browser session per job, a profile
// extraction followed by a sequential crawl of the rated-films listing.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kiranshivaraju/boxdscrape/internal/browser"
	"github.com/kiranshivaraju/boxdscrape/internal/extract"
	"github.com/kiranshivaraju/boxdscrape/internal/jobs"
	"github.com/kiranshivaraju/boxdscrape/pkg/models"
)

// ProfileCache stores extracted profile summaries between jobs.
// Get returns nil, nil on a miss.
type ProfileCache interface {
	GetProfile(ctx context.Context, username string) (*models.ProfileSummary, error)
	SetProfile(ctx context.Context, username string, profile models.ProfileSummary) error
}

// Archive receives the results of every completed job.
// profile is nil when only a degraded summary was available.
type Archive interface {
	SaveScrape(ctx context.Context, username string, profile *models.ProfileSummary, films []models.FilmRecord) error
}

// Options tunes a Service. Zero values fall back to defaults.
type Options struct {
	BaseURL           string
	Selectors         extract.Selectors
	PageDelay         time.Duration
	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
	Retention         time.Duration
	MaxConcurrentJobs int

	Cache   ProfileCache
	Archive Archive
}

const (
	DefaultBaseURL           = "https://letterboxd.com"
	DefaultPageDelay         = 750 * time.Millisecond
	DefaultNavigationTimeout = 30 * time.Second
	DefaultSelectorTimeout   = 10 * time.Second
	DefaultRetention         = time.Hour
	DefaultMaxConcurrentJobs = 4

	archiveTimeout = 30 * time.Second
)

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Selectors.Version == "" {
		o.Selectors = extract.SelectorSets[extract.DefaultSelectorVersion]
	}
	if o.PageDelay < 0 {
		o.PageDelay = 0
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = DefaultNavigationTimeout
	}
	if o.SelectorTimeout <= 0 {
		o.SelectorTimeout = DefaultSelectorTimeout
	}
	if o.Retention <= 0 {
		o.Retention = DefaultRetention
	}
	if o.MaxConcurrentJobs <= 0 {
		o.MaxConcurrentJobs = DefaultMaxConcurrentJobs
	}
	return o
}

// Service accepts scrape submissions and drives each job in its own goroutine.
type Service struct {
	store    *jobs.Store
	launcher browser.Launcher
	opts     Options

	slots chan struct{}

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewService creates a Service. PageDelay of zero disables throttling.
func NewService(store *jobs.Store, launcher browser.Launcher, opts Options) *Service {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		store:    store,
		launcher: launcher,
		opts:     opts,
		slots:    make(chan struct{}, opts.MaxConcurrentJobs),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Submit creates a pending job for username and starts it in the background.
// It returns as soon as the job is registered.
func (s *Service) Submit(_ context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", ErrInvalidUsername
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrShuttingDown
	}

	jobID := s.store.Create(username)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run(s.ctx, username, jobID)
	}()

	slog.Info("scrape job submitted", "job_id", jobID, "username", username)
	return jobID, nil
}

// Status returns a snapshot of the job.
func (s *Service) Status(_ context.Context, jobID string) (models.Job, error) {
	return s.store.Get(jobID)
}

// Close stops accepting jobs, cancels running ones and waits for them to
// settle or for ctx to expire.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for scrape jobs: %w", ctx.Err())
	}
}

// Run drives one job to a terminal state. It never panics and always
// releases the browser session before scheduling the job for eviction.
func (s *Service) Run(ctx context.Context, username, jobID string) {
	log := slog.With("job_id", jobID, "username", username)

	var (
		sess     browser.Session
		admitted bool
	)
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic in scrape job", "error", r)
			s.fail(jobID, fmt.Sprintf("internal error: %v", r), log)
		}
		if sess != nil {
			if err := sess.Close(); err != nil {
				log.Warn("closing browser session", "error", err)
			}
		}
		// The slot is held until the browser context is gone.
		if admitted {
			<-s.slots
		}
		if err := s.store.ScheduleEviction(jobID, s.opts.Retention); err != nil {
			log.Warn("scheduling job eviction", "error", err)
		}
	}()

	select {
	case s.slots <- struct{}{}:
		admitted = true
	case <-ctx.Done():
		s.fail(jobID, "scrape cancelled before it started", log)
		return
	}

	if err := s.store.Update(jobID, func(j *models.Job) {
		j.Status = models.JobStatusInProgress
	}); err != nil {
		log.Error("starting job", "error", err)
		return
	}

	var err error
	sess, err = s.launcher.Launch(ctx)
	if err != nil {
		log.Error("launching browser session", "error", err)
		s.fail(jobID, fmt.Sprintf("could not start a browser session: %v", err), log)
		return
	}

	profile, degraded := s.profile(ctx, sess, username, log)
	if err := s.store.Update(jobID, func(j *models.Job) {
		j.ProfileData = &profile
	}); err != nil {
		log.Error("storing profile", "error", err)
	}

	films, err := s.crawl(ctx, sess, jobID, username, log)
	if err != nil {
		log.Error("crawling listing", "error", err, "films", len(films))
		s.fail(jobID, err.Error(), log)
		return
	}

	if err := s.store.Update(jobID, func(j *models.Job) {
		j.Status = models.JobStatusCompleted
		j.Progress = 1
	}); err != nil {
		log.Error("completing job", "error", err)
		return
	}
	log.Info("scrape job completed", "films", len(films))

	var archived *models.ProfileSummary
	if !degraded {
		archived = &profile
	}
	s.archive(username, archived, films, log)
}

func (s *Service) fail(jobID, msg string, log *slog.Logger) {
	err := s.store.Update(jobID, func(j *models.Job) {
		j.Status = models.JobStatusFailed
		j.Error = &msg
	})
	if err != nil && !errors.Is(err, jobs.ErrJobFinalized) {
		log.Error("marking job failed", "error", err)
	}
}

func (s *Service) archive(username string, profile *models.ProfileSummary, films []models.FilmRecord, log *slog.Logger) {
	if s.opts.Archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	if err := s.opts.Archive.SaveScrape(ctx, username, profile, films); err != nil {
		log.Warn("archiving ratings", "error", err)
	}
}

func (s *Service) navigate(ctx context.Context, sess browser.Session, target string) error {
	return sess.Navigate(ctx, target, browser.NavigateOptions{
		WaitUntil: browser.WaitDOMContentLoaded,
		Timeout:   s.opts.NavigationTimeout,
	})
}

func (s *Service) profileURL(username string) string {
	return fmt.Sprintf("%s/%s/", s.opts.BaseURL, url.PathEscape(username))
}

func (s *Service) listingURL(username string, page int) string {
	if page <= 1 {
		return fmt.Sprintf("%s/%s/films/", s.opts.BaseURL, url.PathEscape(username))
	}
	return fmt.Sprintf("%s/%s/films/page/%d/", s.opts.BaseURL, url.PathEscape(username), page)
}
