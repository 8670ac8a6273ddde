package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"skyhealth/internal/protocol"
)

func testMessage() *protocol.PushMessage {
	return &protocol.PushMessage{
		AlertID:   "abc-123",
		Type:      "heat_wave",
		Title:     "Heat Wave Alert - Jakarta",
		Body:      "Stay hydrated.",
		Severity:  "high",
		Location:  "Jakarta",
		CreatedAt: time.Now(),
	}
}

func TestWebhookSender_Deliver(t *testing.T) {
	var received protocol.PushMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON content type, got %s", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewWebhookSender(server.URL, 5*time.Second, logrus.New())
	if err := sender.Deliver(context.Background(), testMessage()); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	if received.AlertID != "abc-123" {
		t.Errorf("Expected alert_id abc-123, got %s", received.AlertID)
	}
	if received.Title != "Heat Wave Alert - Jakarta" {
		t.Errorf("Unexpected title: %s", received.Title)
	}
}

func TestWebhookSender_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender := NewWebhookSender(server.URL, 5*time.Second, logrus.New())
	if err := sender.Deliver(context.Background(), testMessage()); err == nil {
		t.Fatal("Expected error for 502 response")
	}
}

func TestWebhookSender_Unconfigured(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	sender := NewWebhookSender("", 5*time.Second, log)
	if err := sender.Deliver(context.Background(), testMessage()); err != nil {
		t.Fatalf("Unconfigured sender should skip without error, got %v", err)
	}
}
