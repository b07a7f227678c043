package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/boxdscrape/pkg/models"
)

// ProfileCache keeps profile summaries in a Cache as JSON.
type ProfileCache struct {
	cache Cache
	ttl   time.Duration
}

// NewProfileCache wraps c. Entries expire after ttl.
func NewProfileCache(c Cache, ttl time.Duration) *ProfileCache {
	return &ProfileCache{cache: c, ttl: ttl}
}

// GetProfile returns nil, nil on a miss. Undecodable entries are dropped and
// reported as a miss.
func (p *ProfileCache) GetProfile(ctx context.Context, username string) (*models.ProfileSummary, error) {
	key := ProfileKey(username)
	raw, found, err := p.cache.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	if !found {
		return nil, nil
	}

	var profile models.ProfileSummary
	if err := json.Unmarshal(raw, &profile); err != nil {
		slog.Warn("dropping corrupt profile cache entry", "key", key, "error", err)
		_ = p.cache.Delete(ctx, key)
		return nil, nil
	}
	return &profile, nil
}

func (p *ProfileCache) SetProfile(ctx context.Context, username string, profile models.ProfileSummary) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	return p.cache.Set(ctx, ProfileKey(username), raw, p.ttl)
}
