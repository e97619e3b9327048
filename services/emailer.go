package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"flea-scout/utils"
)

const resendURL = "https://api.resend.com/emails"

// Email delivery statuses reported back to callers.
const (
	EmailSent    = "SENT"
	EmailLogOnly = "LOG_ONLY"
)

// Emailer delivers plain-text mail through Resend's HTTP API. Without an
// API key it logs the message instead of failing, so local development
// never needs mail credentials.
type Emailer struct {
	apiKey string
	from   string
	logger *utils.Logger
	client *http.Client
}

// NewEmailer creates an Emailer. An empty apiKey switches it to log-only mode.
func NewEmailer(apiKey, from string, logger *utils.Logger) *Emailer {
	return &Emailer{
		apiKey: apiKey,
		from:   from,
		logger: logger,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

// Send delivers one message and returns a delivery status string.
func (e *Emailer) Send(to, subject, text string) (string, error) {
	if to == "" {
		return "", fmt.Errorf("emailer: empty recipient")
	}

	if e.apiKey == "" {
		e.logger.Info("[emailer] No RESEND_API_KEY — logging mail to %s: %s", to, subject)
		e.logger.Debug("[emailer] Body:\n%s", text)
		return EmailLogOnly, nil
	}

	body, err := json.Marshal(resendRequest{
		From:    e.from,
		To:      []string{to},
		Subject: subject,
		Text:    text,
	})
	if err != nil {
		return "", fmt.Errorf("emailer: marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, resendURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("emailer: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("emailer: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("emailer: resend returned %d", resp.StatusCode)
	}
	return EmailSent, nil
}
