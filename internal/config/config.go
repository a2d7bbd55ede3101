package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Recon    ReconConfig
	Kafka    KafkaConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type ServerConfig struct {
	Port string
}

type AppConfig struct {
	LogLevel string
}

// ReconConfig carries the tunable reconciliation rules: severity bands,
// the backdated-closure window and the dashboard fan-out bound.
type ReconConfig struct {
	WindowDays           int
	ToleranceOK          decimal.Decimal
	ToleranceCritical    decimal.Decimal
	DashboardConcurrency int
}

// KafkaConfig selects the day-closed event sink; empty brokers means the
// events go to the structured log only.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func Load() (*Config, error) {
	windowDays, err := strconv.Atoi(getEnv("RECON_WINDOW_DAYS", "7"))
	if err != nil || windowDays <= 0 {
		windowDays = 7
	}

	concurrency, err := strconv.Atoi(getEnv("DASHBOARD_CONCURRENCY", "8"))
	if err != nil || concurrency <= 0 {
		concurrency = 8
	}

	toleranceOK, err := decimal.NewFromString(getEnv("RECON_TOLERANCE_OK", "1"))
	if err != nil {
		toleranceOK = decimal.NewFromInt(1)
	}
	toleranceCritical, err := decimal.NewFromString(getEnv("RECON_TOLERANCE_CRITICAL", "100"))
	if err != nil {
		toleranceCritical = decimal.NewFromInt(100)
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "fuelrecon_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Recon: ReconConfig{
			WindowDays:           windowDays,
			ToleranceOK:          toleranceOK,
			ToleranceCritical:    toleranceCritical,
			DashboardConcurrency: concurrency,
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   getEnv("KAFKA_TOPIC", "reconciliation.day-closed"),
		},
	}, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
