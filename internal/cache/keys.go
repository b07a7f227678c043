package cache

import (
	"fmt"
	"strings"
)

// ProfileKey is the cache key for a scraped profile summary. Usernames are
// case-insensitive on the site.
func ProfileKey(username string) string {
	return fmt.Sprintf("profile:%s", strings.ToLower(strings.TrimSpace(username)))
}

func RateLimitKey(client string) string {
	return fmt.Sprintf("ratelimit:%s", client)
}
