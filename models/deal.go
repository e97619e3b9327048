package models

import "strings"

// Confidence grades how much we trust the resale estimate.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// RiskLevel grades how risky the purchase itself is (fakes, damage, niche demand).
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Verdict is the engine's final recommendation.
type Verdict string

const (
	VerdictBuy       Verdict = "BUY"
	VerdictNegotiate Verdict = "BUY IF NEGOTIATED LOWER"
	VerdictSkip      Verdict = "SKIP"
)

// NormalizeConfidence maps arbitrary caller input onto a valid Confidence,
// defaulting to low.
func NormalizeConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceMedium:
		return ConfidenceMedium
	case ConfidenceHigh:
		return ConfidenceHigh
	default:
		return ConfidenceLow
	}
}

// NormalizeRisk maps arbitrary caller input onto a valid RiskLevel,
// defaulting to medium.
func NormalizeRisk(s string) RiskLevel {
	switch RiskLevel(strings.ToLower(strings.TrimSpace(s))) {
	case RiskLow:
		return RiskLow
	case RiskHigh:
		return RiskHigh
	default:
		return RiskMedium
	}
}

// DealInput is everything the decision engine needs for one verdict.
// FeesPct and TargetROI fall back to the engine defaults when zero.
type DealInput struct {
	ResaleRange PriceRange
	Confidence  Confidence
	RiskLevel   RiskLevel
	AskingPrice *float64
	FeesPct     float64
	TargetROI   float64
}

// NegotiationPlan is the suggested haggling strategy. All fields are nil
// when no asking price was given or no profitable offer exists.
type NegotiationPlan struct {
	SuggestedOffer *float64 `json:"suggested_offer"`
	MaxBuy         *float64 `json:"max_buy"`
	ProfitIfOffer  *float64 `json:"profit_if_offer"`
	ROIIfOfferPct  *int     `json:"roi_if_offer_pct"`
}

// DealAnalysis is the engine's full output. EstimatedProfit and ROIPct are
// nil until an asking price is known.
type DealAnalysis struct {
	AskingPrice     *float64        `json:"asking_price"`
	FeesPctInt      int             `json:"fees_pct"`
	BufferUSD       float64         `json:"buffer_usd"`
	EstimatedProfit *float64        `json:"estimated_profit"`
	ROIPct          *int            `json:"roi_pct"`
	Verdict         Verdict         `json:"verdict"`
	RiskLevel       RiskLevel       `json:"risk_level"`
	Negotiation     NegotiationPlan `json:"negotiation"`
}
