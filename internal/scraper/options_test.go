package scraper

import (
	"testing"
	"time"

	"github.com/kiranshivaraju/boxdscrape/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromConfig(t *testing.T) {
	opts, err := OptionsFromConfig(config.ScraperConfig{
		BaseURL:           "https://letterboxd.test",
		SelectorSet:       "v1",
		PageDelay:         time.Second,
		NavigationTimeout: 5 * time.Second,
		SelectorTimeout:   2 * time.Second,
		MaxConcurrentJobs: 2,
		JobRetention:      time.Minute,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://letterboxd.test", opts.BaseURL)
	assert.Equal(t, "v1", opts.Selectors.Version)
	assert.Equal(t, time.Second, opts.PageDelay)
	assert.Equal(t, 5*time.Second, opts.NavigationTimeout)
	assert.Equal(t, 2*time.Second, opts.SelectorTimeout)
	assert.Equal(t, 2, opts.MaxConcurrentJobs)
	assert.Equal(t, time.Minute, opts.Retention)
	assert.Nil(t, opts.Cache)
	assert.Nil(t, opts.Archive)
}

func TestOptionsFromConfig_UnknownSelectorSet(t *testing.T) {
	_, err := OptionsFromConfig(config.ScraperConfig{SelectorSet: "v9"})
	assert.ErrorContains(t, err, "v9")
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{BaseURL: "https://letterboxd.test/", PageDelay: -time.Second}.withDefaults()

	assert.Equal(t, "https://letterboxd.test", opts.BaseURL)
	assert.Equal(t, "v2", opts.Selectors.Version)
	assert.Zero(t, opts.PageDelay)
	assert.Equal(t, DefaultNavigationTimeout, opts.NavigationTimeout)
	assert.Equal(t, DefaultSelectorTimeout, opts.SelectorTimeout)
	assert.Equal(t, DefaultRetention, opts.Retention)
	assert.Equal(t, DefaultMaxConcurrentJobs, opts.MaxConcurrentJobs)
}
