package ebay

import (
	"context"
	"fmt"
	"testing"
	"time"

	"flea-scout/models"
	"flea-scout/utils"
)

func soldPage(prices ...float64) string {
	html := "<html><body><ul>"
	for i, p := range prices {
		html += fmt.Sprintf(`<li class="s-item">
			<div class="s-item__title"><span role="heading">Comparable %d</span></div>
			<a class="s-item__link" href="https://www.ebay.com/itm/%d"></a>
			<span class="s-item__price">$%.2f</span>
			<span class="s-item__ended-date">Sold recently</span>
		</li>`, i, i, p)
	}
	return html + "</ul></body></html>"
}

func newTestScout(f PageFetcher) *Scout {
	return NewScout(f, utils.NewLogger(), Options{
		SessionTimeout: time.Second,
		MaxConcurrency: 4,
	})
}

func TestScoutQueriesAggregatesSoldPrices(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		searchURL("query one", models.ModeSold): soldPage(60, 90),
		searchURL("query two", models.ModeSold): soldPage(45, 120),
	}}
	sc := newTestScout(f)

	report := sc.ScoutQueries(context.Background(), []string{"query one", "query two"})

	if len(report.Active) != 2 || len(report.Sold) != 2 {
		t.Fatalf("results: got %d active / %d sold, want 2/2", len(report.Active), len(report.Sold))
	}
	if report.OverallSoldRange == nil {
		t.Fatal("overall sold range: got nil")
	}
	// Envelope across both queries' sold prices.
	if report.OverallSoldRange.Low != 45 || report.OverallSoldRange.High != 120 {
		t.Errorf("overall sold range: got (%v, %v), want (45, 120)",
			report.OverallSoldRange.Low, report.OverallSoldRange.High)
	}

	// Per-query results keep their slot regardless of completion order.
	if report.Sold[0].Query != "query one" || report.Sold[1].Query != "query two" {
		t.Errorf("sold results out of order: %q, %q", report.Sold[0].Query, report.Sold[1].Query)
	}

	// Both modes fetched for both queries.
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.urls) != 4 {
		t.Errorf("fetches: got %d, want 4", len(f.urls))
	}
}

func TestScoutQueriesNoComparables(t *testing.T) {
	f := &fakeFetcher{} // every page renders empty
	sc := newTestScout(f)

	report := sc.ScoutQueries(context.Background(), []string{"obscure item"})

	if report.OverallSoldRange != nil {
		t.Errorf("overall sold range: got %+v, want nil", report.OverallSoldRange)
	}
	if len(report.Sold) != 1 || len(report.Sold[0].Listings) != 0 {
		t.Errorf("expected one empty sold result, got %+v", report.Sold)
	}
}

func TestScoutQueriesOneTimeoutDoesNotSinkOthers(t *testing.T) {
	good := searchURL("good query", models.ModeSold)
	f := &mixedFetcher{
		pages: map[string]string{good: soldPage(75)},
		slow:  searchURL("slow query", models.ModeSold),
	}
	sc := NewScout(f, utils.NewLogger(), Options{
		SessionTimeout: 50 * time.Millisecond,
		MaxConcurrency: 4,
	})

	report := sc.ScoutQueries(context.Background(), []string{"good query", "slow query"})

	if report.OverallSoldRange == nil {
		t.Fatal("healthy query's prices should survive a sibling timeout")
	}
	if report.OverallSoldRange.Low != 75 || report.OverallSoldRange.High != 75 {
		t.Errorf("overall sold range: got (%v, %v), want (75, 75)",
			report.OverallSoldRange.Low, report.OverallSoldRange.High)
	}
	if len(report.Sold[1].Listings) != 0 {
		t.Errorf("timed-out query should yield an empty result, got %d listings",
			len(report.Sold[1].Listings))
	}
}

func TestScoutQueriesCapsQueryCount(t *testing.T) {
	f := &fakeFetcher{}
	sc := newTestScout(f)

	report := sc.ScoutQueries(context.Background(), []string{"a", "b", "c", "d", "e"})

	if len(report.QueriesUsed) != maxQueries {
		t.Errorf("queries used: got %d, want %d", len(report.QueriesUsed), maxQueries)
	}
}

func TestScoutQueriesEmpty(t *testing.T) {
	f := &fakeFetcher{}
	sc := newTestScout(f)

	report := sc.ScoutQueries(context.Background(), nil)

	if report.OverallSoldRange != nil || len(report.Active) != 0 || len(report.Sold) != 0 {
		t.Errorf("empty query list should produce an empty report, got %+v", report)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.urls) != 0 {
		t.Errorf("no fetches expected, got %d", len(f.urls))
	}
}

// mixedFetcher serves canned pages but blocks on one URL until its context
// deadline fires.
type mixedFetcher struct {
	pages map[string]string
	slow  string
}

func (m *mixedFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if url == m.slow {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if html, ok := m.pages[url]; ok {
		return html, nil
	}
	return "<html><body></body></html>", nil
}
