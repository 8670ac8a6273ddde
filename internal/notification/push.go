// Package notification carries alert pushes from the pipeline to the
// user. The server side queues messages; the delivery worker sends
// them to the configured webhook.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"skyhealth/internal/protocol"
	"skyhealth/internal/queue"
)

// KafkaNotifier queues push notifications on the delivery topic
type KafkaNotifier struct {
	producer *queue.Producer
	log      *logrus.Logger
}

// NewKafkaNotifier creates a notifier backed by a Kafka producer
func NewKafkaNotifier(producer *queue.Producer, log *logrus.Logger) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, log: log}
}

// Schedule queues one push notification. Messages are keyed by
// location so pushes for one place stay ordered.
func (n *KafkaNotifier) Schedule(ctx context.Context, title, body string, data map[string]string) error {
	msg := &protocol.PushMessage{
		AlertID:   data["alert_id"],
		Type:      data["type"],
		Title:     title,
		Body:      body,
		Severity:  data["severity"],
		Location:  data["location"],
		Data:      data,
		CreatedAt: time.Now(),
	}

	encoded, err := protocol.EncodePushMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to encode push: %w", err)
	}

	if err := n.producer.Publish(ctx, []byte(msg.Location), encoded); err != nil {
		return fmt.Errorf("failed to queue push: %w", err)
	}

	n.log.WithFields(logrus.Fields{
		"alert_id": msg.AlertID,
		"type":     msg.Type,
		"location": msg.Location,
	}).Info("Push notification queued")
	return nil
}

// NopNotifier logs pushes instead of delivering them. Used when no
// broker is configured.
type NopNotifier struct {
	log *logrus.Logger
}

// NewNopNotifier creates a logging-only notifier
func NewNopNotifier(log *logrus.Logger) *NopNotifier {
	return &NopNotifier{log: log}
}

// Schedule logs the push and reports success
func (n *NopNotifier) Schedule(ctx context.Context, title, body string, data map[string]string) error {
	n.log.WithFields(logrus.Fields{
		"title":    title,
		"location": data["location"],
	}).Info("Push delivery not configured, skipping")
	return nil
}
