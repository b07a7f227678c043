package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kiranshivaraju/boxdscrape/internal/browser"
	"github.com/kiranshivaraju/boxdscrape/internal/extract"
	"github.com/kiranshivaraju/boxdscrape/pkg/models"
)

// pageRoot is extracted after the wait marker appears; markers and
// pagination live in different parts of the page.
const pageRoot = "body"

// profile returns the user's summary from the cache or the profile page.
// The second result reports a degraded summary. It never fails.
func (s *Service) profile(ctx context.Context, sess browser.Session, username string, log *slog.Logger) (models.ProfileSummary, bool) {
	if s.opts.Cache != nil {
		cached, err := s.opts.Cache.GetProfile(ctx, username)
		switch {
		case err != nil:
			log.Warn("reading cached profile", "error", err)
		case cached != nil:
			log.Debug("profile cache hit")
			return *cached, false
		}
	}

	p, err := s.extractProfile(ctx, sess, username)
	if err != nil {
		log.Warn("profile extraction degraded", "error", err)
		return extract.DegradedProfile(username), true
	}

	if s.opts.Cache != nil {
		if err := s.opts.Cache.SetProfile(ctx, username, p); err != nil {
			log.Warn("caching profile", "error", err)
		}
	}
	return p, false
}

func (s *Service) extractProfile(ctx context.Context, sess browser.Session, username string) (p models.ProfileSummary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic extracting profile: %v", r)
		}
	}()

	sel := s.opts.Selectors
	if err := s.navigate(ctx, sess, s.profileURL(username)); err != nil {
		return p, fmt.Errorf("loading profile page: %w", err)
	}

	found, err := sess.WaitForSelector(ctx, sel.ProfileMarker, s.opts.SelectorTimeout)
	if err != nil {
		return p, fmt.Errorf("waiting for profile summary: %w", err)
	}
	if !found {
		return p, extract.ErrProfileMissing
	}

	markup, found, err := sess.Extract(ctx, pageRoot)
	if err != nil {
		return p, fmt.Errorf("reading profile page: %w", err)
	}
	if !found {
		return p, extract.ErrProfileMissing
	}

	doc, err := extract.Parse(markup)
	if err != nil {
		return p, err
	}
	return extract.Profile(doc, username, sel)
}
