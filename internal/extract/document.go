// Package extract turns scraped markup into profile summaries and film records.
// Everything here is pure: no network, no browser, no shared state.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selection is a set of matched nodes. Extraction code depends on this
// interface only, never on a concrete parsing library.
type Selection interface {
	Find(selector string) Selection
	First() Selection
	Last() Selection
	Len() int
	Text() string
	Attr(name string) (string, bool)
	Data(key string) (string, bool)
	Each(fn func(i int, s Selection))
}

// Parse loads a markup fragment or full page into a queryable Selection.
func Parse(markup string) (Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}
	return gqSelection{sel: doc.Selection}, nil
}

// gqSelection implements Selection over goquery.
type gqSelection struct {
	sel *goquery.Selection
}

func (g gqSelection) Find(selector string) Selection {
	return gqSelection{sel: g.sel.Find(selector)}
}

func (g gqSelection) First() Selection { return gqSelection{sel: g.sel.First()} }
func (g gqSelection) Last() Selection  { return gqSelection{sel: g.sel.Last()} }
func (g gqSelection) Len() int         { return g.sel.Length() }

// Text returns the combined text of the selection with surrounding whitespace trimmed.
func (g gqSelection) Text() string {
	return strings.TrimSpace(g.sel.Text())
}

func (g gqSelection) Attr(name string) (string, bool) {
	return g.sel.Attr(name)
}

// Data reads a data-* attribute; key is given without the "data-" prefix.
func (g gqSelection) Data(key string) (string, bool) {
	return g.sel.Attr("data-" + key)
}

func (g gqSelection) Each(fn func(i int, s Selection)) {
	g.sel.Each(func(i int, s *goquery.Selection) {
		fn(i, gqSelection{sel: s})
	})
}

// OuterHTML renders the first node of a parsed fragment matching selector.
// Returns false when nothing matches.
func OuterHTML(markup, selector string) (string, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", false, fmt.Errorf("parsing markup: %w", err)
	}
	match := doc.Find(selector).First()
	if match.Length() == 0 {
		return "", false, nil
	}
	html, err := goquery.OuterHtml(match)
	if err != nil {
		return "", false, fmt.Errorf("rendering %q: %w", selector, err)
	}
	return html, true, nil
}

// attrOrText reads attr from sel when attr is set, otherwise its text.
func attrOrText(sel Selection, attr string) string {
	if attr == "" {
		return sel.Text()
	}
	v, _ := sel.Attr(attr)
	return strings.TrimSpace(v)
}

// within narrows sel by selector; an empty selector means sel itself.
func within(sel Selection, selector string) Selection {
	if selector == "" {
		return sel
	}
	return sel.Find(selector).First()
}
