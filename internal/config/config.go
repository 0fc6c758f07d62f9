// Package config provides environment configuration for the agent backend.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	StaticDir          string

	// Gaia node (OpenAI-compatible chat completion API)
	GaiaAPIKey  string
	GaiaNodeURL string
	GaiaModel   string

	// Arweave storage service
	StorageAPIURL string
	PrivateKey    string
	Network       string
	Token         string
	AppName       string
	GatewayURL    string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Events (optional; disabled when URL is empty)
	NATSURL string

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "3000"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
		StaticDir:          getEnv("STATIC_DIR", "public"),

		// Gaia node
		GaiaAPIKey:  getEnv("GAIA_API_KEY", ""),
		GaiaNodeURL: getEnv("GAIA_NODE_URL", ""),
		GaiaModel:   getEnv("GAIA_MODEL", "gpt-3.5-turbo"),

		// Storage service
		StorageAPIURL: getEnv("STORAGE_API_URL", "https://api.arweave.storage"),
		PrivateKey:    getEnv("PRIVATE_KEY", ""),
		Network:       getEnv("NETWORK", "base-testnet"),
		Token:         getEnv("TOKEN", "usdc"),
		AppName:       getEnv("APP_NAME", "Gaia Arweave Chat"),
		GatewayURL:    getEnv("ARWEAVE_GATEWAY_URL", "https://arweave.net"),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Events
		NATSURL: getEnv("NATS_URL", ""),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
