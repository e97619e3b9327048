package ebay

import (
	"context"
	"time"

	"flea-scout/models"
	"flea-scout/services"
	"flea-scout/utils"
)

// soldSignalNote explains why the aggregate leans on sold listings only.
const soldSignalNote = "Sold listings are the primary market signal."

// Options configures a Scout. Zero values fall back to sensible defaults.
type Options struct {
	SessionTimeout time.Duration
	LimitEach      int
	MaxConcurrency int
	RateLimitMs    int
}

// Scout fans comparable-listing searches out over every derived query in
// both active and sold modes and folds the sold prices into one overall
// range. Safe for concurrent use across unrelated requests: all per-request
// state lives in the ScoutReport being built.
type Scout struct {
	fetcher PageFetcher
	logger  *utils.Logger
	opts    Options
}

// NewScout creates a ready-to-use Scout on top of the given fetcher.
func NewScout(fetcher PageFetcher, logger *utils.Logger, opts Options) *Scout {
	if opts.SessionTimeout <= 0 {
		opts.SessionTimeout = DefaultSessionTimeout
	}
	if opts.LimitEach <= 0 {
		opts.LimitEach = DefaultLimitEach
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 3
	}
	return &Scout{fetcher: fetcher, logger: logger, opts: opts}
}

// ScoutItem derives queries from the item guess and hint, then scouts them.
func (sc *Scout) ScoutItem(ctx context.Context, item models.ItemGuess, hint string) *models.ScoutReport {
	return sc.ScoutQueries(ctx, BuildQueries(item, hint))
}

// ScoutQueries runs one session per (query, mode) pair concurrently and
// aggregates. Sessions carry independent timeout scopes, so a timeout on one
// pair never cancels or corrupts the others; aggregation happens only after
// every session has completed.
func (sc *Scout) ScoutQueries(ctx context.Context, queries []string) *models.ScoutReport {
	if len(queries) > maxQueries {
		queries = queries[:maxQueries]
	}

	report := &models.ScoutReport{
		Platform:    platform,
		QueriesUsed: queries,
		Active:      make([]models.ModeResult, len(queries)),
		Sold:        make([]models.ModeResult, len(queries)),
		Note:        soldSignalNote,
	}
	if len(queries) == 0 {
		return report
	}

	sess := &session{
		fetcher:   sc.fetcher,
		logger:    sc.logger,
		timeout:   sc.opts.SessionTimeout,
		limitEach: sc.opts.LimitEach,
	}

	// A fresh pool per call keeps Wait scoped to this request's sessions.
	pool := utils.NewWorkerPool(sc.opts.MaxConcurrency, sc.opts.RateLimitMs)
	for i, q := range queries {
		i, q := i, q
		for _, mode := range []models.Mode{models.ModeActive, models.ModeSold} {
			mode := mode
			// Each task writes a distinct slot, so no lock is needed.
			pool.Submit(func() {
				r := sess.run(ctx, q, mode)
				if mode == models.ModeActive {
					report.Active[i] = r
				} else {
					report.Sold[i] = r
				}
			})
		}
	}
	pool.Wait()

	var soldPrices []float64
	for _, mr := range report.Sold {
		for _, l := range mr.Listings {
			if l.PriceUSD != nil {
				soldPrices = append(soldPrices, *l.PriceUSD)
			}
		}
	}
	// Listings repeated across queries are folded as-is: the aggregate is a
	// deliberately wide envelope, not a deduplicated average.
	report.OverallSoldRange = services.MinMax(soldPrices)

	return report
}
