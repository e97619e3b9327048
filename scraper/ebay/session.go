package ebay

import (
	"context"
	"net/url"
	"time"

	"flea-scout/models"
	"flea-scout/services"
	"flea-scout/utils"
)

const (
	platform      = "ebay"
	searchBaseURL = "https://www.ebay.com/sch/i.html"

	// DefaultSessionTimeout bounds one (query, mode) page load.
	DefaultSessionTimeout = 25 * time.Second
	// DefaultLimitEach caps listings kept per (query, mode) result.
	DefaultLimitEach = 6
)

// searchURL builds the mode-specific search URL. Sold mode appends the
// completed/sold listing filters.
func searchURL(query string, mode models.Mode) string {
	v := url.Values{"_nkw": {query}}
	u := searchBaseURL + "?" + v.Encode()
	if mode == models.ModeSold {
		u += "&LH_Sold=1&LH_Complete=1"
	}
	return u
}

// session resolves ModeResults one (query, mode) pair at a time, each within
// its own hard time budget. Failures never propagate: a timed-out or
// unparsable page yields an empty ModeResult so one bad query cannot sink
// the whole scout.
type session struct {
	fetcher   PageFetcher
	logger    *utils.Logger
	timeout   time.Duration
	limitEach int
}

func (s *session) run(ctx context.Context, query string, mode models.Mode) models.ModeResult {
	result := models.ModeResult{
		Query:    query,
		Mode:     mode,
		Listings: []models.Listing{},
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	html, err := s.fetcher.Fetch(fetchCtx, searchURL(query, mode))
	if err != nil {
		s.logger.Warn("[ebay] %s search for %q failed: %v", mode, query, err)
		return result
	}

	page, err := parseSearchPage(html, mode, s.limitEach)
	if err != nil {
		s.logger.Warn("[ebay] %s results for %q unparsable: %v", mode, query, err)
		return result
	}

	result.CountText = page.CountText
	result.Listings = page.Listings

	var prices []float64
	for _, l := range page.Listings {
		if l.PriceUSD != nil {
			prices = append(prices, *l.PriceUSD)
		}
	}
	result.PriceRange = services.MinMax(prices)

	return result
}
