package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	pw "github.com/playwright-community/playwright-go"
)

// PlaywrightConfig configures the shared Chromium process.
type PlaywrightConfig struct {
	Headless       bool
	ExecutablePath string
	UserAgent      string
	// InstallDriver downloads the playwright driver on first launch.
	InstallDriver bool
}

// PlaywrightLauncher starts one Chromium process lazily and hands out an
// isolated browser context per session.
type PlaywrightLauncher struct {
	cfg PlaywrightConfig

	installOnce sync.Once
	installErr  error

	mu      sync.Mutex
	pw      *pw.Playwright
	browser pw.Browser
}

// NewPlaywrightLauncher creates a launcher. No process is started until the
// first Launch.
func NewPlaywrightLauncher(cfg PlaywrightConfig) *PlaywrightLauncher {
	return &PlaywrightLauncher{cfg: cfg}
}

// Launch opens a fresh browser context and page.
func (l *PlaywrightLauncher) Launch(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}

	b, err := l.ensureBrowser()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}

	opts := pw.BrowserNewContextOptions{}
	if l.cfg.UserAgent != "" {
		opts.UserAgent = pw.String(l.cfg.UserAgent)
	}
	bctx, err := b.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: new context: %v", ErrLaunchFailed, err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("%w: new page: %v", ErrLaunchFailed, err)
	}
	return &playwrightSession{bctx: bctx, page: page}, nil
}

// Close shuts down the browser process and the playwright driver.
func (l *PlaywrightLauncher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	if l.browser != nil {
		if err := l.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		l.browser = nil
	}
	if l.pw != nil {
		if err := l.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
		l.pw = nil
	}
	return errors.Join(errs...)
}

func (l *PlaywrightLauncher) ensureBrowser() (pw.Browser, error) {
	if l.cfg.InstallDriver {
		l.installOnce.Do(func() {
			slog.Info("installing playwright driver")
			l.installErr = pw.Install(&pw.RunOptions{SkipInstallBrowsers: l.cfg.ExecutablePath != ""})
		})
		if l.installErr != nil {
			return nil, fmt.Errorf("install playwright: %w", l.installErr)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.browser != nil && l.browser.IsConnected() {
		return l.browser, nil
	}

	if l.pw == nil {
		p, err := pw.Run()
		if err != nil {
			return nil, fmt.Errorf("start playwright: %w", err)
		}
		l.pw = p
	}

	opts := pw.BrowserTypeLaunchOptions{Headless: pw.Bool(l.cfg.Headless)}
	if l.cfg.ExecutablePath != "" {
		opts.ExecutablePath = pw.String(l.cfg.ExecutablePath)
	}
	b, err := l.pw.Chromium.Launch(opts)
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	slog.Info("chromium launched", "headless", l.cfg.Headless)
	l.browser = b
	return b, nil
}

type playwrightSession struct {
	bctx pw.BrowserContext
	page pw.Page

	closeOnce sync.Once
	closed    bool
	closeErr  error
}

// gone reports whether the session can no longer serve requests, either
// because Close ran or because the page or browser went away underneath it.
func (s *playwrightSession) gone() bool {
	return s.closed || s.page.IsClosed()
}

func (s *playwrightSession) Navigate(ctx context.Context, url string, opts NavigateOptions) error {
	if s.gone() {
		return ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNavigationFailed, url, err)
	}

	gotoOpts := pw.PageGotoOptions{WaitUntil: waitUntilState(opts.WaitUntil)}
	if t := boundedTimeout(ctx, opts.Timeout); t > 0 {
		gotoOpts.Timeout = pw.Float(float64(t.Milliseconds()))
	}

	resp, err := s.page.Goto(url, gotoOpts)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrNavigationFailed, url, sessionErr(err, s.page.IsClosed()))
	}
	if resp != nil && resp.Status() >= 400 {
		return &StatusError{URL: url, Status: resp.Status()}
	}
	return nil
}

func (s *playwrightSession) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) (bool, error) {
	if s.gone() {
		return false, ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	opts := pw.LocatorWaitForOptions{State: pw.WaitForSelectorStateAttached}
	if t := boundedTimeout(ctx, timeout); t > 0 {
		opts.Timeout = pw.Float(float64(t.Milliseconds()))
	}

	err := s.page.Locator(selector).First().WaitFor(opts)
	if errors.Is(err, pw.ErrTimeout) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("wait for %q: %w", selector, sessionErr(err, s.page.IsClosed()))
	}
	return true, nil
}

func (s *playwrightSession) Extract(ctx context.Context, selector string) (string, bool, error) {
	if s.gone() {
		return "", false, ErrSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	loc := s.page.Locator(selector)
	n, err := loc.Count()
	if err != nil {
		return "", false, fmt.Errorf("count %q: %w", selector, sessionErr(err, s.page.IsClosed()))
	}
	if n == 0 {
		return "", false, nil
	}

	v, err := loc.First().Evaluate("el => el.outerHTML", nil)
	if err != nil {
		return "", false, fmt.Errorf("extract %q: %w", selector, sessionErr(err, s.page.IsClosed()))
	}
	html, ok := v.(string)
	if !ok {
		return "", false, fmt.Errorf("extract %q: unexpected result type %T", selector, v)
	}
	return html, true, nil
}

func (s *playwrightSession) Close() error {
	s.closeOnce.Do(func() {
		s.closed = true
		if err := s.page.Close(); err != nil {
			s.closeErr = fmt.Errorf("close page: %w", err)
		}
		if err := s.bctx.Close(); err != nil && s.closeErr == nil {
			s.closeErr = fmt.Errorf("close context: %w", err)
		}
	})
	return s.closeErr
}

// sessionErr marks errors from a crashed or closed target with ErrSessionClosed.
func sessionErr(err error, pageClosed bool) error {
	if pageClosed || errors.Is(err, pw.ErrTargetClosed) {
		return errors.Join(ErrSessionClosed, err)
	}
	return err
}

func waitUntilState(c WaitCondition) *pw.WaitUntilState {
	switch c {
	case WaitLoad:
		return pw.WaitUntilStateLoad
	case WaitNetworkIdle:
		return pw.WaitUntilStateNetworkidle
	default:
		return pw.WaitUntilStateDomcontentloaded
	}
}

// boundedTimeout shortens timeout so it never outlives ctx.
func boundedTimeout(ctx context.Context, timeout time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if remaining := time.Until(dl); timeout <= 0 || remaining < timeout {
			return max(remaining, time.Millisecond)
		}
	}
	return timeout
}
