package main

import (
	"context"
	"errors"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"skyhealth/internal/logging"
	"skyhealth/internal/notification"
	"skyhealth/internal/protocol"
	"skyhealth/internal/queue"
	"skyhealth/pkg/config"
)

// The notifier consumes queued push messages and delivers them to the
// configured webhook. Messages are committed only after delivery, so
// a crashed worker redelivers rather than drops.
func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		stdlog.Fatalf("Failed to set up logging: %v", err)
	}

	consumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicPush, cfg.Kafka.GroupID)
	defer consumer.Close()

	sender := notification.NewWebhookSender(cfg.Notifier.WebhookURL, cfg.Notifier.Timeout, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig.String()).Info("Shutting down")
		cancel()
	}()

	log.WithField("topic", cfg.Kafka.TopicPush).Info("Push delivery worker started")

	for {
		msg, err := consumer.Fetch(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.WithError(err).Error("Failed to fetch message")
			continue
		}

		push, err := protocol.DecodePushMessage(msg.Value)
		if err != nil {
			// Poison message: log and commit so it does not loop forever
			log.WithError(err).Warn("Dropping undecodable push message")
			if err := consumer.Commit(ctx, msg); err != nil {
				log.WithError(err).Error("Failed to commit poison message")
			}
			continue
		}

		if err := sender.Deliver(ctx, push); err != nil {
			// No commit: the message is redelivered on the next fetch cycle
			log.WithError(err).WithField("alert_id", push.AlertID).Error("Push delivery failed")
			continue
		}

		if err := consumer.Commit(ctx, msg); err != nil {
			log.WithError(err).Error("Failed to commit message")
		}
	}
}
