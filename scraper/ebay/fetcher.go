package ebay

import (
	"context"
	"os"
	"os/exec"

	"github.com/chromedp/chromedp"
)

// PageFetcher renders a search-results URL and returns the page HTML. The
// caller bounds the call with a context deadline; implementations must
// release any browsing resources on every exit path, timeout included.
// Abstracted so the scout logic is testable against canned markup.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ChromeFetcher renders pages with a shared headless Chrome process. Every
// Fetch runs in its own isolated tab context, so concurrent sessions never
// share mutable browser state.
type ChromeFetcher struct {
	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewChromeFetcher starts the exec allocator. Close must be called to shut
// the browser down.
func NewChromeFetcher(chromeBin string) (*ChromeFetcher, error) {
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("lang", "en-US"),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	return &ChromeFetcher{
		allocCtx: silentCtx,
		cancel: func() {
			cancelSilent()
			cancelAlloc()
		},
	}, nil
}

// Fetch navigates an isolated tab to url, waits for minimal readiness and
// returns the rendered document. The tab is torn down before returning.
func (f *ChromeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(f.allocCtx)
	defer cancelTab()

	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		tabCtx, cancelDeadline = context.WithDeadline(tabCtx, deadline)
		defer cancelDeadline()
	}

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}

// Close shuts down the shared browser process.
func (f *ChromeFetcher) Close() {
	f.cancel()
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
