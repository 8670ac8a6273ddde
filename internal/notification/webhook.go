package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"skyhealth/internal/protocol"
)

// WebhookSender delivers push messages to an HTTP endpoint, typically
// a push gateway in front of the mobile clients.
type WebhookSender struct {
	url        string
	httpClient *http.Client
	log        *logrus.Logger
}

// NewWebhookSender creates a sender. An empty URL disables delivery;
// messages are logged and dropped.
func NewWebhookSender(url string, timeout time.Duration, log *logrus.Logger) *WebhookSender {
	return &WebhookSender{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Deliver sends one push message to the webhook
func (s *WebhookSender) Deliver(ctx context.Context, msg *protocol.PushMessage) error {
	if s.url == "" {
		s.log.WithFields(logrus.Fields{
			"alert_id": msg.AlertID,
			"title":    msg.Title,
		}).Warn("Webhook not configured, skipping push delivery")
		return nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	s.log.WithFields(logrus.Fields{
		"alert_id": msg.AlertID,
		"location": msg.Location,
	}).Info("Push notification delivered")
	return nil
}
