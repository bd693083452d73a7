package config

import (
	"os"
	"strings"
	"time"
)

// Config holds all server configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
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
}

// KafkaConfig holds the ingest transport configuration
type KafkaConfig struct {
	Brokers        []string
	SignalsTopic   string
	WatchlistTopic string
	ConsumerGroup  string
}

// RedisConfig holds the optional snapshot cache configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	SnapTTL  time.Duration
}

// WatcherConfig holds the dashboard client configuration
type WatcherConfig struct {
	ServerURL      string
	PollInterval   time.Duration
	RequestTimeout time.Duration
}

// Load reads server configuration from environment variables, falling back to
// defaults for anything unset or unparseable.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "127.0.0.1"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "qmt"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "qmt_signals"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Brokers:        parseBrokers(getEnv("KAFKA_BROKERS", "localhost:9092")),
			SignalsTopic:   getEnv("KAFKA_SIGNALS_TOPIC", "monitor.signals"),
			WatchlistTopic: getEnv("KAFKA_WATCHLIST_TOPIC", "monitor.watchlist"),
			ConsumerGroup:  getEnv("KAFKA_CONSUMER_GROUP", "signalboard"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       0,
			SnapTTL:  getDuration("REDIS_SNAPSHOT_TTL", 2*time.Second),
		},
	}
}

// LoadWatcher reads dashboard client configuration from environment variables.
func LoadWatcher() *WatcherConfig {
	return &WatcherConfig{
		ServerURL:      getEnv("SIGNALBOARD_URL", "http://localhost:8080"),
		PollInterval:   getDuration("POLL_INTERVAL", 3*time.Second),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
	}
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.DBName + "?sslmode=" + d.SSLMode
}

// Address returns the Redis address in host:port format
func (r *RedisConfig) Address() string {
	return r.Host + ":" + r.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration reads a duration env var; malformed or non-positive values fall
// back to the default rather than failing.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

// parseBrokers splits a comma-separated broker list
func parseBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
