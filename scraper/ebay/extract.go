package ebay

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"flea-scout/models"
	"flea-scout/services"
)

// shopPlaceholder is the promotional tile eBay injects at the top of every
// result list; it is not a real listing.
const shopPlaceholder = "shop on ebay"

// searchPage is the extractor's view of one rendered results document.
type searchPage struct {
	CountText *string
	Listings  []models.Listing
}

// parseSearchPage extracts up to limitEach listings from a rendered search
// results document. Entries without a title or detail link are dropped;
// missing optional elements (count heading, price, sold date) are non-fatal
// and leave the field nil. This is the code most exposed to eBay markup
// drift, so every selector failure degrades instead of erroring.
func parseSearchPage(html string, mode models.Mode, limitEach int) (*searchPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("ebay: parse results page: %w", err)
	}

	page := &searchPage{}

	if h := normaliseText(doc.Find("h1.srp-controls__count-heading span.BOLD").First().Text()); h != "" {
		page.CountText = &h
	} else if h := normaliseText(doc.Find("h1.srp-controls__count-heading").First().Text()); h != "" {
		page.CountText = &h
	}

	doc.Find("li.s-item").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if len(page.Listings) >= limitEach {
			return false
		}

		title := normaliseText(item.Find(`div.s-item__title span[role="heading"]`).First().Text())
		if title == "" || strings.ToLower(title) == shopPlaceholder {
			return true
		}

		href, ok := item.Find("a.s-item__link").First().Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return true
		}

		rawPrice := normaliseText(item.Find("span.s-item__price").First().Text())

		listing := models.Listing{
			Title:    title,
			URL:      href,
			RawPrice: rawPrice,
			PriceUSD: services.ParsePriceUSD(rawPrice),
		}

		if mode == models.ModeSold {
			if sd := normaliseText(item.Find("span.s-item__ended-date").First().Text()); sd != "" {
				listing.SoldDate = &sd
			}
		}

		page.Listings = append(page.Listings, listing)
		return true
	})

	return page, nil
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
