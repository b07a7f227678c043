package extract

import (
	"errors"
	"strconv"

	"github.com/kiranshivaraju/boxdscrape/pkg/models"
)

// ErrListingMissing means a listing page has no item container. The crawl
// treats it as an empty page, not a failure.
var ErrListingMissing = errors.New("listing container not found")

// TotalPages reads the page count from the last entry of the pagination
// controls. Absent, non-numeric or non-positive values yield 1.
func TotalPages(doc Selection, sel Selectors) int {
	items := doc.Find(sel.Pagination)
	if items.Len() == 0 {
		return 1
	}
	n, err := strconv.Atoi(items.Last().Text())
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ListingPage parses every item in the listing container of one page.
// Items without a name or a link are skipped.
func ListingPage(doc Selection, sel Selectors, baseURL string) ([]models.FilmRecord, error) {
	container := doc.Find(sel.ListingContainer).First()
	if container.Len() == 0 {
		return nil, ErrListingMissing
	}

	films := []models.FilmRecord{}
	container.Find(sel.ListingItem).Each(func(_ int, item Selection) {
		combined := attrOrText(within(item, sel.ItemName), sel.ItemNameAttr)
		link := attrOrText(within(item, sel.ItemLink), sel.ItemLinkAttr)
		if combined == "" || link == "" {
			return
		}

		name, year := ParseTitleYear(combined)
		films = append(films, models.FilmRecord{
			Name:   name,
			Year:   year,
			URI:    AbsoluteURL(baseURL, link),
			Slug:   FilmSlug(link),
			Rating: ParseRating(item.Find(sel.ItemRating).First().Text()),
		})
	})
	return films, nil
}
