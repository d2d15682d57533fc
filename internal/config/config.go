package config

import (
	"os"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Ingest   IngestConfig
	Refresh  RefreshConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Migrate  bool
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers []string
	Topic   string
	Enabled bool
}

// RedisConfig holds Redis configuration for the ranking warm cache
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Enabled  bool
}

// IngestConfig holds settings for the daily ingestion run
type IngestConfig struct {
	ScratchDir string
	IgnoreFile string
	Download   bool
}

// RefreshConfig holds the ranking refresh schedule
type RefreshConfig struct {
	CronSpec string
	TopN     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "etf_tracking"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Migrate:  getEnv("DB_AUTO_MIGRATE", "false") == "true",
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			Topic:   getEnv("KAFKA_TOPIC", "etf-holdings-events"),
			Enabled: getEnv("KAFKA_ENABLED", "false") == "true",
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
			Enabled:  getEnv("REDIS_ENABLED", "false") == "true",
		},
		Ingest: IngestConfig{
			ScratchDir: getEnv("INGEST_SCRATCH_DIR", "./data/temp"),
			IgnoreFile: getEnv("INGEST_IGNORE_FILE", "./data/ignore_non_equity_tickers.csv"),
			Download:   getEnv("INGEST_DOWNLOAD", "true") == "true",
		},
		Refresh: RefreshConfig{
			CronSpec: getEnv("REFRESH_CRON", "0 11 * * *"),
			TopN:     5,
		},
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
