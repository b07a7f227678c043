package scraper

import (
	"fmt"

	"github.com/kiranshivaraju/boxdscrape/internal/config"
	"github.com/kiranshivaraju/boxdscrape/internal/extract"
)

// OptionsFromConfig maps scraper settings onto Options. Cache and Archive are
// left for the caller to wire.
func OptionsFromConfig(cfg config.ScraperConfig) (Options, error) {
	selectors, err := extract.LookupSelectors(cfg.SelectorSet)
	if err != nil {
		return Options{}, fmt.Errorf("load selectors: %w", err)
	}
	return Options{
		BaseURL:           cfg.BaseURL,
		Selectors:         selectors,
		PageDelay:         cfg.PageDelay,
		NavigationTimeout: cfg.NavigationTimeout,
		SelectorTimeout:   cfg.SelectorTimeout,
		Retention:         cfg.JobRetention,
		MaxConcurrentJobs: cfg.MaxConcurrentJobs,
	}, nil
}
