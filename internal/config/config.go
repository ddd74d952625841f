// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Key store providers.
const (
	KeyStoreFile   = "file"
	KeyStoreMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	// DeltaURL is the base URL of the Delta API, including the version prefix.
	DeltaURL string
	// HTTPTimeout bounds each request made by the API client.
	HTTPTimeout time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// KeyStoreProvider selects where private keys live: "file" or "memory".
	KeyStoreProvider string
	// KeyStorePath is the directory of the file key store.
	KeyStorePath string
	// KeyStorePassphrase seals key files with an Argon2id-derived key when set.
	KeyStorePassphrase string
	// KeyStoreKMSKeyURI seals key files through a KMS when set (e.g. "gcpkms://...").
	// It takes precedence over KeyStorePassphrase.
	KeyStoreKMSKeyURI string
	// KeySizeBits is the RSA modulus size for new identities.
	KeySizeBits int

	// RateLimitEnabled throttles outgoing client requests and dev server requests per identity.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for rate limiting.
	RateLimitBurst int

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// ServerHost is the host address the dev server will bind to.
	ServerHost string
	// ServerPort is the port number the dev server will listen on.
	ServerPort int
	// SignatureMaxSkew is the accepted clock difference for signed requests on the dev server.
	SignatureMaxSkew time.Duration

	// CORSEnabled indicates whether CORS is enabled on the dev server.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	loadDotEnv()

	return &Config{
		// Delta API
		DeltaURL:    env.GetString("DELTA_URL", "https://delta.covata.io/v1"),
		HTTPTimeout: env.GetDuration("HTTP_TIMEOUT_SECONDS", 30, time.Second),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Key store
		KeyStoreProvider:   env.GetString("KEYSTORE_PROVIDER", KeyStoreFile),
		KeyStorePath:       env.GetString("KEYSTORE_PATH", defaultKeyStorePath()),
		KeyStorePassphrase: env.GetString("KEYSTORE_PASSPHRASE", ""),
		KeyStoreKMSKeyURI:  env.GetString("KEYSTORE_KMS_KEY_URI", ""),
		KeySizeBits:        env.GetInt("KEY_SIZE_BITS", 4096),

		// Rate Limiting
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", false),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", false),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "delta"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// Dev server
		ServerHost:       env.GetString("SERVER_HOST", "127.0.0.1"),
		ServerPort:       env.GetInt("SERVER_PORT", 8080),
		SignatureMaxSkew: env.GetDuration("SIGNATURE_MAX_SKEW_SECONDS", 300, time.Second),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// defaultKeyStorePath is ~/.delta/keys, or .delta/keys when the home directory is unknown.
func defaultKeyStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".delta", "keys")
	}
	return filepath.Join(home, ".delta", "keys")
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
