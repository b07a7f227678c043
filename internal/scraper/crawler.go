package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/boxdscrape/internal/browser"
	"github.com/kiranshivaraju/boxdscrape/internal/extract"
	"github.com/kiranshivaraju/boxdscrape/pkg/models"
)

// crawl walks every listing page in order, appending each page's records to
// the job as it goes. On a fatal error the records gathered so far are
// returned with it; they are already stored on the job.
func (s *Service) crawl(ctx context.Context, sess browser.Session, jobID, username string, log *slog.Logger) ([]models.FilmRecord, error) {
	if err := s.navigate(ctx, sess, s.listingURL(username, 1)); err != nil {
		return nil, fmt.Errorf("could not load the film listing for %s: %w", username, err)
	}

	total, err := s.readTotalPages(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("reading pagination for %s: %w", username, err)
	}
	if err := s.store.Update(jobID, func(j *models.Job) { j.TotalPages = total }); err != nil {
		return nil, fmt.Errorf("recording page count: %w", err)
	}
	log.Info("crawling listing", "total_pages", total)

	all := []models.FilmRecord{}
	for page := 1; page <= total; page++ {
		if page > 1 {
			if err := s.throttle(ctx); err != nil {
				return all, fmt.Errorf("scrape cancelled before page %d: %w", page, err)
			}
		}

		films, err := s.crawlPage(ctx, sess, username, page)
		switch {
		case errors.Is(err, errPageSkipped):
			log.Warn("skipping listing page", "page", page, "error", err)
		case err != nil:
			return all, fmt.Errorf("failed on listing page %d: %w", page, err)
		}

		progress := float64(page) / float64(total)
		if err := s.store.Update(jobID, func(j *models.Job) {
			j.Data = append(j.Data, films...)
			j.Progress = progress
		}); err != nil {
			return all, fmt.Errorf("recording page %d: %w", page, err)
		}
		all = append(all, films...)
		log.Debug("listing page scraped", "page", page, "films", len(films))
	}
	return all, nil
}

func (s *Service) readTotalPages(ctx context.Context, sess browser.Session) (int, error) {
	markup, found, err := sess.Extract(ctx, pageRoot)
	if err != nil {
		return 0, err
	}
	if !found {
		return 1, nil
	}
	doc, err := extract.Parse(markup)
	if err != nil {
		return 0, err
	}
	return extract.TotalPages(doc, s.opts.Selectors), nil
}

// crawlPage scrapes one listing page. The first page reuses the listing root
// already loaded by crawl. Problems confined to the page are reported as
// errPageSkipped; anything else is fatal to the job.
func (s *Service) crawlPage(ctx context.Context, sess browser.Session, username string, page int) ([]models.FilmRecord, error) {
	if page > 1 {
		if err := s.navigate(ctx, sess, s.listingURL(username, page)); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, browser.ErrSessionClosed) {
				return nil, err
			}
			return nil, errors.Join(errPageSkipped, err)
		}
	}

	sel := s.opts.Selectors
	found, err := sess.WaitForSelector(ctx, sel.ListingContainer, s.opts.SelectorTimeout)
	if err != nil {
		return nil, fmt.Errorf("waiting for listing: %w", err)
	}
	if !found {
		return nil, errors.Join(errPageSkipped, extract.ErrListingMissing)
	}

	markup, found, err := sess.Extract(ctx, pageRoot)
	if err != nil {
		return nil, fmt.Errorf("reading listing: %w", err)
	}
	if !found {
		return nil, errors.Join(errPageSkipped, extract.ErrListingMissing)
	}

	doc, err := extract.Parse(markup)
	if err != nil {
		return nil, err
	}
	films, err := extract.ListingPage(doc, sel, s.opts.BaseURL)
	if errors.Is(err, extract.ErrListingMissing) {
		return nil, errors.Join(errPageSkipped, err)
	}
	return films, err
}

// throttle waits the inter-page delay. Only the calling job is held up.
func (s *Service) throttle(ctx context.Context) error {
	if s.opts.PageDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.opts.PageDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
