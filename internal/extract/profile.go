package extract

import (
	"errors"
	"strings"

	"github.com/kiranshivaraju/boxdscrape/pkg/models"
)

// ErrProfileMissing is returned when the profile summary marker is absent.
var ErrProfileMissing = errors.New("profile summary not found")

// Profile pulls the public profile summary out of a profile page.
// identifier is the username that was requested; it backs up any field the
// markup does not provide.
func Profile(doc Selection, identifier string, sel Selectors) (models.ProfileSummary, error) {
	if doc.Find(sel.ProfileMarker).Len() == 0 {
		return models.ProfileSummary{}, ErrProfileMissing
	}

	p := models.ProfileSummary{
		DisplayName: identifier,
		Username:    identifier,
	}

	name := doc.Find(sel.DisplayName).First()
	if text := name.Text(); text != "" {
		p.DisplayName = text
	}
	if sel.UsernameAttr != "" {
		if tip, ok := name.Attr(sel.UsernameAttr); ok && strings.TrimSpace(tip) != "" {
			p.Username = strings.TrimSpace(tip)
		}
	}

	if src, ok := doc.Find(sel.Avatar).First().Attr("src"); ok && src != "" {
		avatar := LargestAvatar(src)
		p.AvatarURL = &avatar
	}

	if loc := doc.Find(sel.Location).First().Text(); loc != "" {
		p.Location = &loc
	}

	if bio := doc.Find(sel.Bio).First().Text(); bio != "" {
		p.Bio = &bio
	}

	p.Stats = profileStats(doc, sel)
	return p, nil
}

// DegradedProfile is the summary reported when extraction fails.
func DegradedProfile(identifier string) models.ProfileSummary {
	return models.ProfileSummary{
		DisplayName: identifier,
		Username:    identifier,
	}
}

func profileStats(doc Selection, sel Selectors) models.ProfileStats {
	var stats models.ProfileStats
	doc.Find(sel.Statistic).Each(func(_ int, s Selection) {
		label := strings.ToLower(s.Find(sel.StatLabel).First().Text())
		value := ParseCount(s.Find(sel.StatValue).First().Text())
		switch {
		case strings.Contains(label, "this year"):
			stats.FilmsThisYear = value
		case strings.Contains(label, "film"):
			stats.TotalFilms = value
		case strings.Contains(label, "following"):
			stats.Following = value
		case strings.Contains(label, "follower"):
			stats.Followers = value
		}
	})
	return stats
}
