package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	fullStar = '★'
	halfStar = '½'
	maxStars = 5.0
)

// Field parsers are compiled once at package init.
var (
	reTitleYear  = regexp.MustCompile(`^(.*?)\s*\((\d{4})\)\s*$`)
	reAvatarCrop = regexp.MustCompile(`-0-\d+-0-\d+-crop`)
	reDigits     = regexp.MustCompile(`^[0-9]+$`)
)

// largestAvatarCrop is the biggest crop variant the image CDN serves.
const largestAvatarCrop = "-0-1000-0-1000-crop"

// ParseRating converts star glyphs into a numeric rating: one per full star
// plus 0.5 when a half star is present. Empty or glyph-free text is 0.
func ParseRating(text string) float64 {
	var rating float64
	for _, r := range text {
		if r == fullStar {
			rating++
		}
	}
	if strings.ContainsRune(text, halfStar) {
		rating += 0.5
	}
	if rating > maxStars {
		rating = maxStars
	}
	return rating
}

// ParseTitleYear splits "Arrival (2016)" into ("Arrival", "2016").
// Without a trailing four-digit year the whole trimmed string is the name.
func ParseTitleYear(combined string) (name, year string) {
	combined = strings.TrimSpace(combined)
	if m := reTitleYear.FindStringSubmatch(combined); m != nil && strings.TrimSpace(m[1]) != "" {
		return strings.TrimSpace(m[1]), m[2]
	}
	return combined, ""
}

// countSeparators are the thousands separators a counter may carry.
var countSeparators = strings.NewReplacer(",", "", ".", "", " ", "", "\u00a0", "", "\u202f", "")

// ParseCount reads a counter such as "1,204" as an integer. Anything that
// is not a run of digits after stripping separators yields 0.
func ParseCount(text string) int {
	digits := countSeparators.Replace(strings.TrimSpace(text))
	if !reDigits.MatchString(digits) {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// LargestAvatar rewrites an avatar URL to request the maximum crop size.
func LargestAvatar(src string) string {
	return reAvatarCrop.ReplaceAllString(src, largestAvatarCrop)
}

// AbsoluteURL prefixes the site origin onto a relative link.
// Links that are already absolute are returned unchanged.
func AbsoluteURL(baseURL, link string) string {
	link = strings.TrimSpace(link)
	if u, err := url.Parse(link); err == nil && u.IsAbs() {
		return link
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(link, "/")
}

// FilmSlug extracts the canonical slug from a film link such as
// "/film/arrival-2016/" or "/alice/film/arrival-2016/".
func FilmSlug(link string) string {
	if u, err := url.Parse(strings.TrimSpace(link)); err == nil {
		link = u.Path
	}
	parts := strings.FieldsFunc(link, func(r rune) bool { return r == '/' })
	for i, p := range parts {
		if p == "film" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
