package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flea-scout/models"
	"flea-scout/services"
	"flea-scout/utils"
)

// AnalyzeHandler serves the core analyze endpoint.
type AnalyzeHandler struct {
	Analyzer *services.Analyzer
	Limits   *services.LimitService
	Logger   *utils.Logger
}

// analyzeRequest is the JSON body of POST /api/analyze. Item, estimate,
// confidence and risk come from the (external) vision step; hint, mode and
// asking price from the user.
type analyzeRequest struct {
	DeviceID string           `json:"device_id" binding:"required"`
	Item     models.ItemGuess `json:"item"`
	Hint     string           `json:"hint"`
	Mode     string           `json:"mode"`
	Estimate struct {
		ResaleRangeUSD [2]float64 `json:"resale_price_range_usd"`
		Confidence     string     `json:"confidence"`
	} `json:"estimate"`
	RiskLevel   string   `json:"risk_level"`
	AskingPrice *float64 `json:"asking_price"`
}

// Analyze runs the scout + decision pipeline for one item. Core failures
// never produce a 500 — scouting degrades to the vision estimate and the
// engine always returns a well-formed analysis.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	status, err := h.Limits.Check(req.DeviceID)
	if err != nil {
		// Quota bookkeeping must not block analyses; fail open.
		h.Logger.Warn("[api] Limit check failed for device %s: %v", req.DeviceID, err)
	} else if !status.Allowed {
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":  "usage limit reached",
			"limits": status,
		})
		return
	}

	mode := req.Mode
	if mode != services.ModeDeep {
		mode = services.ModeQuick
	}

	result := h.Analyzer.Analyze(c.Request.Context(), services.AnalyzeParams{
		Item:        req.Item,
		Hint:        req.Hint,
		Mode:        mode,
		AskingPrice: req.AskingPrice,
		Estimate:    models.NewPriceRange(req.Estimate.ResaleRangeUSD[0], req.Estimate.ResaleRangeUSD[1]),
		Confidence:  models.NormalizeConfidence(req.Estimate.Confidence),
		RiskLevel:   models.NormalizeRisk(req.RiskLevel),
	})

	if err := h.Limits.RegisterUsage(req.DeviceID); err != nil {
		h.Logger.Warn("[api] Could not register usage for device %s: %v", req.DeviceID, err)
	}

	c.JSON(http.StatusOK, result)
}
