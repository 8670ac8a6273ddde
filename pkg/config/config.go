package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Weather  WeatherConfig
	Alerts   AlertConfig
	Notifier NotifierConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MigrationsDir string
}

func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers   []string
	TopicPush string
	GroupID   string
}

type WeatherConfig struct {
	APIKey  string
	BaseURL string
	GeoURL  string
	Timeout time.Duration
}

type AlertConfig struct {
	LookbackDays   int
	DailyCheckTime string
}

type NotifierConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

type LoggingConfig struct {
	Dir        string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "skyhealth_user"),
			Password: getEnv("DB_PASSWORD", "skyhealth_pass"),
			DBName:   getEnv("DB_NAME", "skyhealth_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MigrationsDir: getEnv("DB_MIGRATIONS_DIR", "internal/database/migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:   strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicPush: getEnv("KAFKA_TOPIC_PUSH", "skyhealth.push"),
			GroupID:   getEnv("KAFKA_GROUP_ID", "push-delivery-group"),
		},
		Weather: WeatherConfig{
			APIKey:  getEnv("OPENWEATHER_API_KEY", ""),
			BaseURL: getEnv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
			GeoURL:  getEnv("OPENWEATHER_GEO_URL", "https://api.openweathermap.org/geo/1.0"),
			Timeout: getEnvAsDuration("WEATHER_TIMEOUT", 10*time.Second),
		},
		Alerts: AlertConfig{
			LookbackDays:   getEnvAsInt("ALERT_LOOKBACK_DAYS", 7),
			DailyCheckTime: getEnv("ALERT_DAILY_CHECK_TIME", "07:00"),
		},
		Notifier: NotifierConfig{
			WebhookURL: getEnv("PUSH_WEBHOOK_URL", ""),
			Timeout:    getEnvAsDuration("PUSH_WEBHOOK_TIMEOUT", 15*time.Second),
		},
		Logging: LoggingConfig{
			Dir:        getEnv("LOG_DIR", "logs"),
			Level:      getEnv("LOG_LEVEL", "info"),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 30),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
