package ebay

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"flea-scout/models"
	"flea-scout/utils"
)

// fakeFetcher serves canned markup keyed by URL and records every request.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	err   error
	urls  []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}
	if html, ok := f.pages[url]; ok {
		return html, nil
	}
	return "<html><body></body></html>", nil
}

// slowFetcher blocks until the per-session deadline fires.
type slowFetcher struct{}

func (slowFetcher) Fetch(ctx context.Context, url string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func newTestSession(f PageFetcher, timeout time.Duration) *session {
	return &session{
		fetcher:   f,
		logger:    utils.NewLogger(),
		timeout:   timeout,
		limitEach: DefaultLimitEach,
	}
}

func TestSearchURL(t *testing.T) {
	active := searchURL("dewalt dcd771", models.ModeActive)
	if active != "https://www.ebay.com/sch/i.html?_nkw=dewalt+dcd771" {
		t.Errorf("active url: got %q", active)
	}
	if strings.Contains(active, "LH_Sold") {
		t.Errorf("active url should not carry sold filters: %q", active)
	}

	sold := searchURL("dewalt dcd771", models.ModeSold)
	if !strings.HasSuffix(sold, "&LH_Sold=1&LH_Complete=1") {
		t.Errorf("sold url missing completed/sold filters: %q", sold)
	}
}

func TestSessionRunParsesResults(t *testing.T) {
	url := searchURL("dewalt dcd771", models.ModeSold)
	f := &fakeFetcher{pages: map[string]string{url: resultsPage}}
	s := newTestSession(f, time.Second)

	got := s.run(context.Background(), "dewalt dcd771", models.ModeSold)

	if got.Query != "dewalt dcd771" || got.Mode != models.ModeSold {
		t.Errorf("identity: got %q/%q", got.Query, got.Mode)
	}
	if len(got.Listings) != 3 {
		t.Fatalf("listings: got %d, want 3", len(got.Listings))
	}
	if got.PriceRange == nil {
		t.Fatal("price range: got nil")
	}
	if got.PriceRange.Low != 45 || got.PriceRange.High != 1299.50 {
		t.Errorf("price range: got (%v, %v), want (45, 1299.50)",
			got.PriceRange.Low, got.PriceRange.High)
	}
}

func TestSessionRunTimeoutDegrades(t *testing.T) {
	s := newTestSession(slowFetcher{}, 20*time.Millisecond)

	start := time.Now()
	got := s.run(context.Background(), "anything", models.ModeActive)
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Errorf("session did not honour its time budget: took %v", elapsed)
	}
	if len(got.Listings) != 0 {
		t.Errorf("timed-out session should return no listings, got %d", len(got.Listings))
	}
	if got.Listings == nil {
		t.Error("listings should be an empty slice, not nil")
	}
	if got.PriceRange != nil {
		t.Errorf("timed-out session should have nil price range, got %+v", got.PriceRange)
	}
}

func TestSessionRunNoParsedPrices(t *testing.T) {
	url := searchURL("rare thing", models.ModeActive)
	f := &fakeFetcher{pages: map[string]string{url: `<html><body><ul>
		<li class="s-item">
			<div class="s-item__title"><span role="heading">Rare thing</span></div>
			<a class="s-item__link" href="https://www.ebay.com/itm/9"></a>
			<span class="s-item__price">Contact seller</span>
		</li>
	</ul></body></html>`}}
	s := newTestSession(f, time.Second)

	got := s.run(context.Background(), "rare thing", models.ModeActive)

	if len(got.Listings) != 1 {
		t.Fatalf("listings: got %d, want 1", len(got.Listings))
	}
	// A result with listings but no parseable price carries no range.
	if got.PriceRange != nil {
		t.Errorf("price range: got %+v, want nil", got.PriceRange)
	}
}
