package routes

import (
	"github.com/gin-gonic/gin"

	"flea-scout/handlers"
)

// SetupAnalyzeRoutes wires the core scout + decision endpoint.
func SetupAnalyzeRoutes(rg *gin.RouterGroup, h *handlers.AnalyzeHandler) {
	rg.POST("/analyze", h.Analyze)
}

// SetupLicenseRoutes wires licensing, email registration and payments.
func SetupLicenseRoutes(rg *gin.RouterGroup, h *handlers.LicenseHandler) {
	rg.POST("/license/activate", h.Activate)
	rg.POST("/email/register", h.RegisterEmail)
	rg.POST("/stripe/webhook", h.StripeWebhook)
}
