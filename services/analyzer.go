package services

import (
	"context"

	"flea-scout/models"
	"flea-scout/utils"
)

// Operating modes for one analysis request.
const (
	ModeQuick = "quick" // vision estimate only, no scouting
	ModeDeep  = "deep"  // scout live/sold comparables first
)

// MarketScout is the marketplace lookup the analyzer delegates to.
// Implemented by scraper/ebay.Scout.
type MarketScout interface {
	ScoutItem(ctx context.Context, item models.ItemGuess, hint string) *models.ScoutReport
}

// AnalyzeParams is one complete analysis request: the vision step's item
// guess and rough estimate, the user's hint and asking price, and the
// operating mode.
type AnalyzeParams struct {
	Item        models.ItemGuess
	Hint        string
	Mode        string
	AskingPrice *float64
	Estimate    models.PriceRange
	Confidence  models.Confidence
	RiskLevel   models.RiskLevel
}

// AnalyzeResult carries the verdict plus, when scouting ran, the full scout
// report for transparency. Notes explain any fallback taken.
type AnalyzeResult struct {
	Analysis models.DealAnalysis `json:"deal_analysis"`
	Scout    *models.ScoutReport `json:"scout,omitempty"`
	Notes    []string            `json:"notes,omitempty"`
}

// Analyzer ties the marketplace scout and the deal engine together for one
// request. It never returns an error: every failure inside the pipeline
// degrades to a defined fallback value.
type Analyzer struct {
	scout     MarketScout
	logger    *utils.Logger
	feesPct   float64
	targetROI float64
}

// NewAnalyzer builds an Analyzer. feesPct and targetROI fall back to the
// engine defaults when zero.
func NewAnalyzer(scout MarketScout, logger *utils.Logger, feesPct, targetROI float64) *Analyzer {
	return &Analyzer{scout: scout, logger: logger, feesPct: feesPct, targetROI: targetROI}
}

// Analyze resolves the resale range (scouted sold prices in deep mode, the
// vision estimate otherwise), then runs the decision engine. When deep
// scouting finds zero sold comparables the vision estimate is used instead
// with confidence forced to low and a note recorded.
func (a *Analyzer) Analyze(ctx context.Context, p AnalyzeParams) AnalyzeResult {
	resale := models.NewPriceRange(p.Estimate.Low, p.Estimate.High)
	confidence := p.Confidence

	var report *models.ScoutReport
	var notes []string

	if p.Mode == ModeDeep && a.scout != nil {
		report = a.scout.ScoutItem(ctx, p.Item, p.Hint)
		if report.OverallSoldRange != nil {
			resale = *report.OverallSoldRange
			a.logger.Info("[analyzer] Scouted sold range: $%.2f – $%.2f over %d queries",
				resale.Low, resale.High, len(report.QueriesUsed))
		} else {
			confidence = models.ConfidenceLow
			notes = append(notes, "No sold comparables found; falling back to the vision estimate with low confidence.")
			a.logger.Warn("[analyzer] No sold comparables for %q — using vision estimate", p.Item.Name)
		}
	}

	analysis := AnalyzeDeal(models.DealInput{
		ResaleRange: resale,
		Confidence:  confidence,
		RiskLevel:   p.RiskLevel,
		AskingPrice: p.AskingPrice,
		FeesPct:     a.feesPct,
		TargetROI:   a.targetROI,
	})

	return AnalyzeResult{Analysis: analysis, Scout: report, Notes: notes}
}
