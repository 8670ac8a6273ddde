package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"skyhealth/internal/alert"
	"skyhealth/internal/anomaly"
	"skyhealth/internal/database"
	"skyhealth/internal/kvstore"
	"skyhealth/internal/logging"
	"skyhealth/internal/notification"
	"skyhealth/internal/queue"
	"skyhealth/internal/server"
	"skyhealth/internal/timer"
	"skyhealth/internal/weather"
	"skyhealth/pkg/config"
)

const dailyCheckTaskID = "daily-alert-check"

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		stdlog.Fatalf("Failed to set up logging: %v", err)
	}

	// Postgres is optional: without it favorites and the alert archive
	// are disabled, the alert pipeline itself keeps working.
	var db *database.DB
	if db, err = database.Connect(cfg.Database.ConnectionString()); err != nil {
		log.WithError(err).Warn("Database unavailable, favorites and archive disabled")
		db = nil
	} else {
		defer db.Close()
		if err := db.RunMigrations(cfg.Database.MigrationsDir); err != nil {
			log.WithError(err).Fatal("Failed to run migrations")
		}
	}

	kv := connectKV(cfg, log)

	store := alert.NewStore(kv, log)

	var archiver alert.Archiver
	var prefArchiver alert.PreferenceArchiver
	if db != nil {
		archiver = &dbArchiver{db: db}
		prefArchiver = db
	}
	prefs := alert.NewPreferenceStore(kv, prefArchiver, log)

	weatherClient := weather.NewClient(
		cfg.Weather.APIKey, cfg.Weather.BaseURL, cfg.Weather.GeoURL,
		cfg.Weather.Timeout, log)

	notifier, producer := buildNotifier(cfg, log)
	if producer != nil {
		defer producer.Close()
	}

	orchestrator := alert.NewOrchestrator(
		weatherClient, anomaly.NewSyntheticEstimator(),
		store, prefs, notifier, archiver,
		cfg.Alerts.LookbackDays, log)

	manager := timer.NewManager()
	manager.Start()
	defer manager.Stop()
	scheduleDailyCheck(manager, orchestrator, db, cfg.Alerts.DailyCheckTime, log)

	srv := server.New(cfg.Server.Port, orchestrator, store, prefs, weatherClient, db, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("Shutting down")
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Fatal("Server failed")
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Shutdown did not complete cleanly")
	}
}

// connectKV returns a Redis-backed store, or an in-memory one when
// Redis is unreachable at startup.
func connectKV(cfg *config.Config, log *logrus.Logger) kvstore.Store {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("Redis unavailable, alert state will not survive restarts")
		return kvstore.NewMemoryStore()
	}

	log.WithField("addr", cfg.Redis.Addr).Info("Connected to Redis")
	return kvstore.NewRedisStore(client, 0)
}

// buildNotifier wires push delivery through Kafka, or logs pushes when
// no broker answers.
func buildNotifier(cfg *config.Config, log *logrus.Logger) (alert.Notifier, *queue.Producer) {
	if err := queue.CreateTopic(cfg.Kafka.Brokers, cfg.Kafka.TopicPush, 3); err != nil {
		log.WithError(err).Warn("Kafka unavailable, push notifications will be logged only")
		return notification.NewNopNotifier(log), nil
	}

	producer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicPush)
	log.WithField("topic", cfg.Kafka.TopicPush).Info("Push notifications queued to Kafka")
	return notification.NewKafkaNotifier(producer, log), producer
}

// scheduleDailyCheck refreshes every favorite location once a day and
// reschedules itself for the next slot.
func scheduleDailyCheck(manager *timer.Manager, orchestrator *alert.Orchestrator, db *database.DB, timeOfDay string, log *logrus.Logger) {
	if db == nil {
		log.Warn("No database, daily alert check disabled")
		return
	}

	next, err := timer.NextDailyRun(timeOfDay)
	if err != nil {
		log.WithError(err).Error("Invalid daily check time, daily alert check disabled")
		return
	}

	var run func()
	run = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		favorites, err := db.ListFavorites(ctx)
		if err != nil {
			log.WithError(err).Error("Daily check could not list favorites")
		}
		for _, fav := range favorites {
			loc := alert.Location{Name: fav.Name, Lat: fav.Lat, Lon: fav.Lon}
			if _, err := orchestrator.Refresh(ctx, loc); err != nil {
				log.WithError(err).WithField("location", fav.Name).Warn("Daily check refresh failed")
			}
		}
		log.WithField("locations", len(favorites)).Info("Daily alert check completed")

		next, err := timer.NextDailyRun(timeOfDay)
		if err != nil {
			return
		}
		if err := manager.Schedule(dailyCheckTaskID, next, run); err != nil {
			log.WithError(err).Warn("Could not reschedule daily alert check")
		}
	}

	if err := manager.Schedule(dailyCheckTaskID, next, run); err != nil {
		log.WithError(err).Error("Could not schedule daily alert check")
		return
	}
	log.WithField("next_run", next.Format(time.RFC3339)).Info("Daily alert check scheduled")
}

// dbArchiver adapts the database to the alert pipeline's archiver
type dbArchiver struct {
	db *database.DB
}

func (a *dbArchiver) ArchiveAlert(ctx context.Context, al alert.Alert) error {
	return a.db.ArchiveAlertRecord(ctx, &database.AlertRecord{
		ID:              al.ID,
		Type:            string(al.Type),
		Severity:        string(al.Severity),
		Title:           al.Title,
		Message:         al.Message,
		Location:        al.Location,
		Recommendations: al.Recommendations,
		CreatedAt:       al.Timestamp,
	})
}
