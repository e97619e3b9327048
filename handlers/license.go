package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"flea-scout/services"
	"flea-scout/storage"
	"flea-scout/utils"
)

// LicenseHandler serves license activation, email registration and the
// Stripe payment webhook.
type LicenseHandler struct {
	Store         storage.Store
	Emailer       *services.Emailer
	Logger        *utils.Logger
	WebhookSecret string
	ProductName   string
}

type activateRequest struct {
	DeviceID   string `json:"device_id" binding:"required"`
	LicenseKey string `json:"license_key" binding:"required"`
}

// Activate binds a purchased license key to one device.
func (h *LicenseHandler) Activate(c *gin.Context) {
	var req activateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	ok, reason, err := h.Store.BindLicense(req.LicenseKey, req.DeviceID)
	if err != nil {
		h.Logger.Error("[license] Bind failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not activate license"})
		return
	}
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "reason": reason})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "reason": reason})
}

type registerEmailRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

// RegisterEmail upgrades a device from the free tier to the email tier.
func (h *LicenseHandler) RegisterEmail(c *gin.Context) {
	var req registerEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if err := h.Store.SetDeviceEmail(req.DeviceID, req.Email); err != nil {
		h.Logger.Error("[license] Email registration failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not register email"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// StripeWebhook handles checkout.session.completed: it issues a license key
// and emails it to the buyer. Other event types are acknowledged and ignored.
func (h *LicenseHandler) StripeWebhook(c *gin.Context) {
	if h.WebhookSecret == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "Stripe not configured"})
		return
	}

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unreadable payload"})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.WebhookSecret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "webhook signature error"})
		return
	}

	if event.Type != "checkout.session.completed" {
		c.JSON(http.StatusOK, gin.H{"ok": true, "ignored": event.Type})
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		h.Logger.Error("[license] Bad checkout session payload: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "bad session payload"})
		return
	}

	email := session.CustomerEmail
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		email = session.CustomerDetails.Email
	}
	if email == "" {
		c.JSON(http.StatusOK, gin.H{"ok": true, "note": "no email in session"})
		return
	}

	key := newLicenseKey()
	if err := h.Store.CreateLicense(key, email, string(services.PlanPaid)); err != nil {
		h.Logger.Error("[license] Could not store license: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "could not create license"})
		return
	}

	subject := "Your " + h.ProductName + " key"
	body := fmt.Sprintf(`Thanks for purchasing %s!

Your license key:
%s

How to activate (1 device):
1) Open the app
2) Paste the license key in the "Activate Pro" field
3) Done — Pro is now bound to this device

— Flea Scout
`, h.ProductName, key)

	emailStatus, err := h.Emailer.Send(email, subject, body)
	if err != nil {
		h.Logger.Error("[license] License email to %s failed: %v", email, err)
		emailStatus = "FAILED"
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "created_license": true, "email_status": emailStatus})
}

// newLicenseKey issues an "FA-" prefixed random key, e.g. FA-3C9A0F12BD44E5A7.
func newLicenseKey() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return "FA-" + strings.ToUpper(hex.EncodeToString(buf))
}
