// Package browser defines the browser-automation sessions the scraper drives.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for session failures.
var (
	ErrLaunchFailed     = errors.New("browser session could not be created")
	ErrNavigationFailed = errors.New("navigation failed")
	ErrSessionClosed    = errors.New("browser session closed")
)

// WaitCondition is the page lifecycle event a navigation waits for.
type WaitCondition string

const (
	WaitDOMContentLoaded WaitCondition = "domcontentloaded"
	WaitLoad             WaitCondition = "load"
	WaitNetworkIdle      WaitCondition = "networkidle"
)

// NavigateOptions controls a single navigation.
type NavigateOptions struct {
	WaitUntil WaitCondition
	Timeout   time.Duration
}

// Session is one isolated browser tab owned by a single job.
// Implementations need not be safe for concurrent use.
type Session interface {
	// Navigate loads url. A response status >= 400 is reported as *StatusError.
	Navigate(ctx context.Context, url string, opts NavigateOptions) error
	// WaitForSelector reports whether selector appeared before timeout.
	// A timeout is not an error.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) (bool, error)
	// Extract returns the outer markup of the first node matching selector.
	Extract(ctx context.Context, selector string) (string, bool, error)
	// Close releases the session. Calling it more than once is safe.
	Close() error
}

// Launcher creates sessions.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// StatusError is returned by Navigate when the server answered with an error status.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s returned status %d", ErrNavigationFailed, e.URL, e.Status)
}

func (e *StatusError) Unwrap() error { return ErrNavigationFailed }
