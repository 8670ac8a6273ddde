// Package protocol defines the message format exchanged over the push
// delivery topic.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// PushMessage is one push notification queued for delivery
type PushMessage struct {
	AlertID   string            `json:"alert_id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Severity  string            `json:"severity"`
	Location  string            `json:"location"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// EncodePushMessage serializes a push message for the queue
func EncodePushMessage(msg *PushMessage) ([]byte, error) {
	if msg.Title == "" {
		return nil, fmt.Errorf("push message requires a title")
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode push message: %w", err)
	}
	return data, nil
}

// DecodePushMessage deserializes a push message from the queue
func DecodePushMessage(data []byte) (*PushMessage, error) {
	var msg PushMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to decode push message: %w", err)
	}
	if msg.Title == "" {
		return nil, fmt.Errorf("push message missing title")
	}
	return &msg, nil
}
