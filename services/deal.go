package services

import (
	"math"

	"flea-scout/models"
)

// Decision engine defaults, overridable per DealInput.
const (
	DefaultFeesPct   = 0.13 // marketplace + payment fees
	DefaultTargetROI = 0.70 // ROI the suggested offer aims for
	minAcceptROI     = 0.15 // implied floor behind the max-buy price

	skipProfitFloor = 5.0
	skipROIFloor    = 15
	buyROIThreshold = 40
)

// AnalyzeDeal converts a resale estimate plus risk context and an optional
// asking price into a verdict and negotiation plan. Pure and stateless:
// identical input always yields identical output, safe for concurrent use.
//
// Without an asking price the verdict is always "BUY IF NEGOTIATED LOWER"
// and every profit/negotiation figure stays nil — the caller still has to
// collect a price before a real verdict exists.
func AnalyzeDeal(in models.DealInput) models.DealAnalysis {
	fees := in.FeesPct
	if fees <= 0 || fees > 1 {
		fees = DefaultFeesPct
	}
	target := in.TargetROI
	if target <= 0 {
		target = DefaultTargetROI
	}

	low := in.ResaleRange.Low
	high := in.ResaleRange.High
	if math.IsNaN(low) || math.IsInf(low, 0) || math.IsNaN(high) || math.IsInf(high, 0) {
		low, high = 0, 0
	}
	if high < low {
		low = high
	}

	// Sell-side basis: the low end of the range, never negative, net of fees.
	conservative := math.Max(0, low)
	net := conservative * (1 - fees)

	// Safety margin widened by risk and, additively, by low confidence.
	buffer := 15.0
	switch in.RiskLevel {
	case models.RiskLow:
		buffer = 10
	case models.RiskHigh:
		buffer = 30
	}
	if in.Confidence == models.ConfidenceLow {
		buffer += 10
	}

	analysis := models.DealAnalysis{
		AskingPrice: in.AskingPrice,
		FeesPctInt:  int(math.Round(fees * 100)),
		BufferUSD:   buffer,
		RiskLevel:   in.RiskLevel,
		Verdict:     models.VerdictNegotiate,
	}

	if in.AskingPrice == nil {
		return analysis
	}
	asking := *in.AskingPrice

	profit := round2(net - asking - buffer)
	analysis.EstimatedProfit = &profit

	var roi *int
	if asking > 0 {
		r := int(math.Round(profit / asking * 100))
		roi = intPtr(r)
	}
	analysis.ROIPct = roi

	if margin := net - buffer; margin > 0 {
		offer := roundOffer(margin / (1 + target))
		maxBuy := roundOffer(margin / (1 + minAcceptROI))
		analysis.Negotiation.SuggestedOffer = &offer
		analysis.Negotiation.MaxBuy = &maxBuy

		profitIfOffer := round2(net - offer - buffer)
		analysis.Negotiation.ProfitIfOffer = &profitIfOffer
		if offer > 0 {
			analysis.Negotiation.ROIIfOfferPct = intPtr(int(math.Round(profitIfOffer / offer * 100)))
		}
	}

	// First match wins: the profit floor and risk cap dominate everything.
	switch {
	case profit < skipProfitFloor || roi == nil || *roi < skipROIFloor || in.RiskLevel == models.RiskHigh:
		analysis.Verdict = models.VerdictSkip
	case *roi >= buyROIThreshold:
		analysis.Verdict = models.VerdictBuy
	}

	return analysis
}

// roundOffer rounds a negotiation figure down to a friendly whole number:
// nearest multiple of 5 for amounts of 20 and up, nearest integer below that.
func roundOffer(v float64) float64 {
	if v >= 20 {
		return math.Floor(v/5) * 5
	}
	return math.Floor(v)
}

func intPtr(v int) *int { return &v }
