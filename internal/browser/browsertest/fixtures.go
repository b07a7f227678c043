package browsertest

import (
	"fmt"
	"html"
	"strings"
)

// Film is one listing entry rendered by ListingHTML.
type Film struct {
	Title  string // combined "Name (Year)" string
	Link   string
	Rating string // star glyphs, may be empty
}

// Profile is the data rendered by ProfileHTML.
type Profile struct {
	DisplayName string
	Username    string
	Avatar      string
	Location    string
	Bio         string
	Films       string
	ThisYear    string
	Following   string
	Followers   string
}

// ProfileHTML renders a profile page in the current (v2) markup scheme.
func ProfileHTML(p Profile) string {
	var b strings.Builder
	b.WriteString(`<html><body><section class="profile-summary">`)
	if p.Avatar != "" {
		fmt.Fprintf(&b, `<div class="profile-avatar"><img src="%s" alt="%s"></div>`,
			html.EscapeString(p.Avatar), html.EscapeString(p.DisplayName))
	}
	fmt.Fprintf(&b, `<div class="profile-name"><span class="displayname tooltip" data-original-title="%s">%s</span></div>`,
		html.EscapeString(p.Username), html.EscapeString(p.DisplayName))
	if p.Location != "" {
		fmt.Fprintf(&b, `<div class="profile-metadata"><div class="metadatum"><span class="label">%s</span></div></div>`,
			html.EscapeString(p.Location))
	}
	b.WriteString(`<div class="profile-stats">`)
	for _, stat := range [][2]string{
		{p.Films, "Films"}, {p.ThisYear, "This year"}, {p.Following, "Following"}, {p.Followers, "Followers"},
	} {
		if stat[0] == "" {
			continue
		}
		fmt.Fprintf(&b, `<h4 class="profile-statistic"><span class="value">%s</span><span class="definition">%s</span></h4>`,
			html.EscapeString(stat[0]), stat[1])
	}
	b.WriteString(`</div></section>`)
	if p.Bio != "" {
		fmt.Fprintf(&b, `<div class="profile-bio"><div class="collapsible-text"><p>%s</p></div></div>`,
			html.EscapeString(p.Bio))
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

// ListingHTML renders one listing page in the current (v2) markup scheme.
// totalPages <= 1 omits the pagination control.
func ListingHTML(films []Film, totalPages int) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="poster-grid"><ul class="grid">`)
	for _, f := range films {
		fmt.Fprintf(&b, `<li class="griditem"><div class="react-component" data-item-name="%s" data-item-link="%s"></div>`,
			html.EscapeString(f.Title), html.EscapeString(f.Link))
		if f.Rating != "" {
			fmt.Fprintf(&b, `<p class="poster-viewingdata"><span class="rating">%s</span></p>`, f.Rating)
		}
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ul></div>`)
	if totalPages > 1 {
		b.WriteString(`<div class="paginate-pages"><ul>`)
		for i := 1; i <= totalPages; i++ {
			fmt.Fprintf(&b, `<li><a href="page/%d/">%d</a></li>`, i, i)
		}
		b.WriteString(`</ul></div>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

// EmptyPageHTML renders a page with no listing container.
func EmptyPageHTML() string {
	return `<html><body><p class="ui-block-heading">No entries</p></body></html>`
}
