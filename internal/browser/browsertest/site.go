// Package browsertest provides an in-process browser.Launcher that serves
// fixture markup instead of driving a real browser.
package browsertest

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/kiranshivaraju/boxdscrape/internal/browser"
	"github.com/kiranshivaraju/boxdscrape/internal/extract"
)

// Site maps URLs to canned responses and records every session it hands out.
type Site struct {
	mu        sync.Mutex
	pages     map[string]page
	launchErr error
	visits    []string
	opened    int
	closed    int
	// OnNavigate, when set, runs before every navigation.
	OnNavigate func(url string)
}

type page struct {
	status int
	html   string
	err    error
}

// NewSite returns an empty site. Unknown URLs answer 404.
func NewSite() *Site {
	return &Site{pages: make(map[string]page)}
}

// Handle serves html with status 200 at url.
func (s *Site) Handle(url, html string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = page{status: http.StatusOK, html: html}
}

// HandleStatus serves an error status at url.
func (s *Site) HandleStatus(url string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = page{status: status}
}

// Fail makes navigation to url return err.
func (s *Site) Fail(url string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = page{err: err}
}

// FailLaunch makes every Launch return err.
func (s *Site) FailLaunch(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.launchErr = err
}

// Visits returns every URL navigated to, in order.
func (s *Site) Visits() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.visits...)
}

// OpenSessions is the number of sessions launched but not yet closed.
func (s *Site) OpenSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened - s.closed
}

// Launched is the total number of sessions handed out.
func (s *Site) Launched() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

func (s *Site) Launch(ctx context.Context) (browser.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.launchErr != nil {
		return nil, errors.Join(browser.ErrLaunchFailed, s.launchErr)
	}
	s.opened++
	return &session{site: s}, nil
}

type session struct {
	site    *Site
	current string
	once    sync.Once
	closed  bool
}

func (c *session) Navigate(ctx context.Context, url string, _ browser.NavigateOptions) error {
	if c.closed {
		return browser.ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if hook := c.site.OnNavigate; hook != nil {
		hook(url)
	}

	c.site.mu.Lock()
	c.site.visits = append(c.site.visits, url)
	p, ok := c.site.pages[url]
	c.site.mu.Unlock()

	c.current = ""
	switch {
	case !ok:
		return &browser.StatusError{URL: url, Status: http.StatusNotFound}
	case p.err != nil:
		return errors.Join(browser.ErrNavigationFailed, p.err)
	case p.status >= 400:
		return &browser.StatusError{URL: url, Status: p.status}
	}
	c.current = p.html
	return nil
}

func (c *session) WaitForSelector(ctx context.Context, selector string, _ time.Duration) (bool, error) {
	_, found, err := c.Extract(ctx, selector)
	return found, err
}

func (c *session) Extract(ctx context.Context, selector string) (string, bool, error) {
	if c.closed {
		return "", false, browser.ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	return extract.OuterHTML(c.current, selector)
}

func (c *session) Close() error {
	c.once.Do(func() {
		c.closed = true
		c.site.mu.Lock()
		c.site.closed++
		c.site.mu.Unlock()
	})
	return nil
}

var _ browser.Launcher = (*Site)(nil)
