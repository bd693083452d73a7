package config

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidConfig marks a configuration problem. It is distinct from store
// errors so operators can tell a bad setting from an unreachable database.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if err := validatePort("SERVER_PORT", c.Server.Port); err != nil {
		return err
	}
	if c.Database.Host == "" {
		return fmt.Errorf("%w: DB_HOST is required", ErrInvalidConfig)
	}
	if err := validatePort("DB_PORT", c.Database.Port); err != nil {
		return err
	}
	if c.Database.User == "" {
		return fmt.Errorf("%w: DB_USER is required", ErrInvalidConfig)
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("%w: DB_NAME is required", ErrInvalidConfig)
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("%w: KAFKA_BROKERS must list at least one broker", ErrInvalidConfig)
	}
	if err := validatePort("REDIS_PORT", c.Redis.Port); err != nil {
		return err
	}
	return nil
}

// Validate checks the dashboard client settings.
func (c *WatcherConfig) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("%w: SIGNALBOARD_URL is required", ErrInvalidConfig)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: POLL_INTERVAL must be positive", ErrInvalidConfig)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: REQUEST_TIMEOUT must be positive", ErrInvalidConfig)
	}
	return nil
}

func validatePort(name, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%w: %s must be a port between 1 and 65535, got %q", ErrInvalidConfig, name, value)
	}
	return nil
}
