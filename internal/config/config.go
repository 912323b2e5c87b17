package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration values for the gateway
type Config struct {
	BackendBaseURL         string `mapstructure:"backend_base_url"`         // Base URL of the downstream backend (required)
	ServerPort             int    `mapstructure:"server_port"`
	BackendTimeoutSeconds  int    `mapstructure:"backend_timeout_seconds"`  // Ceiling for a single outbound backend call
	ForwardingMode         string `mapstructure:"forwarding_mode"`          // "sync", "pool" or "semaphore"
	WorkerPoolSize         int    `mapstructure:"worker_pool_size"`         // Pool mode only; 0 = auto-detect
	JobQueueSize           int    `mapstructure:"job_queue_size"`           // Pool mode only
	SemaphoreMaxConcurrent int    `mapstructure:"semaphore_max_concurrent"` // Semaphore mode only
	MaxRequestSizeMB       int    `mapstructure:"max_request_size_mb"`      // Request body size limit in MB
	ShutdownDrainSeconds   int    `mapstructure:"shutdown_drain_seconds"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds"`
	Debug                  bool   `mapstructure:"debug"`
}

// Load reads configuration from an optional config.toml file merged with
// environment variables (e.g. BACKEND_BASE_URL overrides backend_base_url).
// The backend base URL is the single required setting: a missing value is a
// startup failure, never a per-request one.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Defaults; declaring every key also makes it visible to AutomaticEnv
	v.SetDefault("backend_base_url", "")
	v.SetDefault("server_port", 8080)
	v.SetDefault("backend_timeout_seconds", 10)
	v.SetDefault("forwarding_mode", "sync")
	v.SetDefault("worker_pool_size", 0)
	v.SetDefault("job_queue_size", 1000)
	v.SetDefault("semaphore_max_concurrent", 256)
	v.SetDefault("max_request_size_mb", 1)
	v.SetDefault("shutdown_drain_seconds", 2)
	v.SetDefault("shutdown_timeout_seconds", 10)
	v.SetDefault("debug", false)

	v.AutomaticEnv()

	// The config file is optional; everything can come from the environment
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.BackendBaseURL == "" {
		return nil, fmt.Errorf("backend_base_url is required (set BACKEND_BASE_URL or backend_base_url in config.toml)")
	}
	config.BackendBaseURL = strings.TrimRight(config.BackendBaseURL, "/")

	switch config.ForwardingMode {
	case "sync", "pool", "semaphore":
		// ok
	case "":
		config.ForwardingMode = "sync"
	default:
		log.Printf("WARN:  unknown forwarding_mode=%q, defaulting to 'sync'", config.ForwardingMode)
		config.ForwardingMode = "sync"
	}

	if config.BackendTimeoutSeconds <= 0 {
		log.Printf("WARN:  backend_timeout_seconds <= 0 (%d), defaulting to 10", config.BackendTimeoutSeconds)
		config.BackendTimeoutSeconds = 10
	}
	if config.SemaphoreMaxConcurrent <= 0 {
		log.Printf("WARN:  semaphore_max_concurrent <= 0 (%d), defaulting to 256", config.SemaphoreMaxConcurrent)
		config.SemaphoreMaxConcurrent = 256
	}

	if file := v.ConfigFileUsed(); file != "" {
		log.Printf("INFO:  Configuration loaded from %s (environment overrides applied)", file)
	} else {
		log.Printf("INFO:  Configuration loaded from environment")
	}
	log.Printf("INFO:    backend_base_url: %s", config.BackendBaseURL)
	log.Printf("INFO:    server_port: %d", config.ServerPort)
	log.Printf("INFO:    backend_timeout_seconds: %d", config.BackendTimeoutSeconds)
	log.Printf("INFO:    forwarding_mode: %s", config.ForwardingMode)
	if config.ForwardingMode == "pool" {
		log.Printf("INFO:    worker_pool_size: %d (0 = auto-detect)", config.WorkerPoolSize)
		log.Printf("INFO:    job_queue_size: %d", config.JobQueueSize)
	}
	if config.ForwardingMode == "semaphore" {
		log.Printf("INFO:    semaphore_max_concurrent: %d", config.SemaphoreMaxConcurrent)
	}
	log.Printf("INFO:    max_request_size_mb: %d", config.MaxRequestSizeMB)
	log.Printf("INFO:    shutdown_drain_seconds: %d", config.ShutdownDrainSeconds)
	log.Printf("INFO:    shutdown_timeout_seconds: %d", config.ShutdownTimeoutSeconds)

	return &config, nil
}
