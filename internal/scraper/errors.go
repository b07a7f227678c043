package scraper

import "errors"

var (
	ErrInvalidUsername = errors.New("username is required")
	ErrShuttingDown    = errors.New("scraper is shutting down")
	// errPageSkipped marks a listing page that contributes no records.
	errPageSkipped = errors.New("listing page skipped")
)
