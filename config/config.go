// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/freekieb7/werver/http"
)

type Config struct {
	Server    ServerConfig
	Pages     PagesConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	Workers   int
	QueueSize int
}

type PagesConfig struct {
	// Dir is the root template paths are resolved against. Empty means
	// the working directory.
	Dir string
}

type TelemetryConfig struct {
	ServiceName string
	// Endpoint of the OTLP collector. Exporting is disabled when empty.
	Endpoint string
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "127.0.0.1",
			Port:      7878,
			Workers:   4,
			QueueSize: http.DefaultQueueSize,
		},
		Pages: PagesConfig{
			Dir: "pages",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "werver",
		},
	}
}

// Load reads the configuration from the environment on top of the
// defaults and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	var err error
	cfg.Server.Host = getEnvOrDefault("WERVER_HOST", cfg.Server.Host)
	if cfg.Server.Port, err = getEnvAsIntOrDefault("WERVER_PORT", cfg.Server.Port); err != nil {
		return nil, err
	}
	if cfg.Server.Workers, err = getEnvAsIntOrDefault("WERVER_WORKERS", cfg.Server.Workers); err != nil {
		return nil, err
	}
	if cfg.Server.QueueSize, err = getEnvAsIntOrDefault("WERVER_QUEUE_SIZE", cfg.Server.QueueSize); err != nil {
		return nil, err
	}
	cfg.Pages.Dir = getEnvOrDefault("WERVER_PAGES_DIR", cfg.Pages.Dir)
	cfg.Telemetry.ServiceName = getEnvOrDefault("WERVER_SERVICE_NAME", cfg.Telemetry.ServiceName)
	cfg.Telemetry.Endpoint = getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.Endpoint)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Host == "" {
		errs = append(errs, errors.New("host must not be empty"))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port: %d", c.Server.Port))
	}
	if c.Server.Workers <= 0 {
		errs = append(errs, fmt.Errorf("worker count must be positive, got %d", c.Server.Workers))
	}
	if c.Server.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("queue size must be positive, got %d", c.Server.QueueSize))
	}

	return errors.Join(errs...)
}

func (c *Config) ServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}
