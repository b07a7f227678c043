package extract

import (
	"fmt"
	"sort"
	"strings"
)

// Selectors is one versioned markup scheme of the scraped site.
type Selectors struct {
	Version string

	// Profile page.
	ProfileMarker string
	DisplayName   string
	UsernameAttr  string // tooltip attribute on DisplayName carrying the canonical username
	Avatar        string
	Location      string
	Bio           string
	Statistic     string
	StatValue     string
	StatLabel     string

	// Listing pages.
	Pagination       string
	ListingContainer string
	ListingItem      string
	ItemName         string
	ItemNameAttr     string
	ItemLink         string
	ItemLinkAttr     string
	ItemRating       string
}

// DefaultSelectorVersion is the scheme used when none is configured.
const DefaultSelectorVersion = "v2"

// SelectorSets holds every known scheme, keyed by version.
var SelectorSets = map[string]Selectors{
	// v1 is the poster-list markup the site used before its grid redesign.
	"v1": {
		Version:          "v1",
		ProfileMarker:    ".profile-summary",
		DisplayName:      ".profile-name h1",
		UsernameAttr:     "title",
		Avatar:           ".profile-avatar img",
		Location:         ".profile-metadata .metadatum .label",
		Bio:              ".collapsible-text",
		Statistic:        ".profile-stats .profile-statistic",
		StatValue:        "span.value",
		StatLabel:        "span.definition",
		Pagination:       ".paginate-pages li",
		ListingContainer: "ul.poster-list",
		ListingItem:      "li.poster-container",
		ItemName:         "div.film-poster img",
		ItemNameAttr:     "alt",
		ItemLink:         "div.film-poster",
		ItemLinkAttr:     "data-target-link",
		ItemRating:       ".poster-viewingdata .rating",
	},
	"v2": {
		Version:          "v2",
		ProfileMarker:    ".profile-summary",
		DisplayName:      ".profile-name .displayname",
		UsernameAttr:     "data-original-title",
		Avatar:           ".profile-avatar img",
		Location:         ".profile-metadata .metadatum .label",
		Bio:              ".collapsible-text",
		Statistic:        ".profile-stats .profile-statistic",
		StatValue:        ".value",
		StatLabel:        ".definition",
		Pagination:       ".paginate-pages li",
		ListingContainer: ".poster-grid ul.grid",
		ListingItem:      "li.griditem",
		ItemName:         ".react-component[data-item-name]",
		ItemNameAttr:     "data-item-name",
		ItemLink:         ".react-component[data-item-link]",
		ItemLinkAttr:     "data-item-link",
		ItemRating:       ".poster-viewingdata .rating",
	},
}

// LookupSelectors returns the scheme for version.
func LookupSelectors(version string) (Selectors, error) {
	s, ok := SelectorSets[version]
	if !ok {
		return Selectors{}, fmt.Errorf("unknown selector set %q: must be one of %s",
			version, strings.Join(SelectorVersions(), ", "))
	}
	return s, nil
}

// SelectorVersions lists the known versions in sorted order.
func SelectorVersions() []string {
	out := make([]string, 0, len(SelectorSets))
	for v := range SelectorSets {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
