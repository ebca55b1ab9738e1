package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the contact gateway server
type Config struct {
	// =============================================================================
	// GROUP 1: HTTP SERVER SETTINGS
	// =============================================================================
	Port            string        // HTTP server port
	Host            string        // HTTP server host/bind address
	ReadTimeout     time.Duration // HTTP read timeout
	WriteTimeout    time.Duration // HTTP write timeout
	RequestTimeout  time.Duration // Timeout for individual requests
	ShutdownTimeout time.Duration // Graceful shutdown timeout
	MaxBodySize     string        // Maximum request body size (Echo body-limit format, e.g. "64K")

	// =============================================================================
	// GROUP 1.1: TLS/HTTPS SETTINGS
	// =============================================================================
	EnableTLS       bool     // Enable HTTPS with automatic Let's Encrypt certificates
	TLSPort         string   // HTTPS server port (default: 443)
	TLSCacheDir     string   // Directory to cache TLS certificates
	TLSHosts        []string // Allowed hostnames for TLS certificates (required for production)
	EnableHTTPSOnly bool     // Redirect all HTTP traffic to HTTPS

	// =============================================================================
	// GROUP 2: UPSTREAM DELIVERY SETTINGS
	// =============================================================================
	// ContactAPIEndpoint and ContactAPIKey are secrets: they are injected
	// into the dispatcher at construction and must never appear in any
	// response or log line.
	ContactAPIEndpoint string        // Upstream messaging API URL
	ContactAPIKey      string        // Bearer credential for the upstream API
	UpstreamTimeout    time.Duration // Timeout for the outbound POST

	// =============================================================================
	// GROUP 3: ORIGIN / CORS SETTINGS
	// =============================================================================
	AllowedOrigins []string // Exact-match origin allow-list (comma-separated in env)

	// =============================================================================
	// GROUP 4: RATE LIMITING SETTINGS
	// =============================================================================
	RateLimitMax      int           // Accepted POSTs per client per window
	RateLimitWindow   time.Duration // Fixed window length
	RateSweepInterval time.Duration // How often expired buckets are pruned

	// First-line Echo rate limiter (token bucket, in front of the fixed window)
	EchoRateLimit          float64       `env:"ECHO_RATE_LIMIT" envDefault:"50"`
	EchoBurstLimit         int           `env:"ECHO_BURST_LIMIT" envDefault:"100"`
	EchoRateLimitExpiresIn time.Duration `env:"ECHO_RATE_LIMIT_EXPIRES_IN" envDefault:"3m"`

	// =============================================================================
	// GROUP 5: IDEMPOTENCY SETTINGS
	// =============================================================================
	IdempotencyTTL        time.Duration // Duplicate-suppression window per requestId
	IdempotencyMaxEntries int           // Capacity bound for the idempotency cache

	// =============================================================================
	// GROUP 6: DEAD-LETTER SETTINGS
	// =============================================================================
	EnableDeadLetter bool          // Persist undeliverable payloads to disk
	DeadLetterDir    string        // Directory for the dead-letter Badger database
	DeadLetterTTL    time.Duration // How long dead-lettered payloads are retained

	// =============================================================================
	// GROUP 7: LOGGING SETTINGS
	// =============================================================================
	EnableRequestLogging    bool `env:"ENABLE_REQUEST_LOGGING"`
	EnableSecurityLogging   bool `env:"ENABLE_SECURITY_LOGGING"`
	EnableValidationLogging bool `env:"ENABLE_VALIDATION_LOGGING"`
	EnableErrorLogging      bool `env:"ENABLE_ERROR_LOGGING"`
}

// Load loads configuration from environment variables
func Load() *Config {
	// Attempt to load .env file but proceed if not found
	godotenv.Load()

	config := &Config{
		// Server settings
		Port:            env("PORT", "8080"),
		Host:            env("HOST", "0.0.0.0"),
		ReadTimeout:     envDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    envDuration("WRITE_TIMEOUT", 15*time.Second),
		RequestTimeout:  envDuration("REQUEST_TIMEOUT", 20*time.Second),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		MaxBodySize:     env("MAX_BODY_SIZE", "64K"),

		// TLS/HTTPS settings
		EnableTLS:       envBool("ENABLE_TLS", false),
		TLSPort:         env("TLS_PORT", "443"),
		TLSCacheDir:     env("TLS_CACHE_DIR", "./certs"),
		TLSHosts:        envStringSlice("TLS_HOSTS", []string{}),
		EnableHTTPSOnly: envBool("ENABLE_HTTPS_ONLY", false),

		// Upstream delivery settings
		ContactAPIEndpoint: env("CONTACT_API_ENDPOINT", ""),
		ContactAPIKey:      env("CONTACT_API_KEY", ""),
		UpstreamTimeout:    envDuration("UPSTREAM_TIMEOUT", 10*time.Second),

		// Origin settings
		AllowedOrigins: envStringSlice("ALLOWED_ORIGINS", []string{}),

		// Rate limiting settings
		RateLimitMax:      envInt("RATE_LIMIT_MAX", 5),
		RateLimitWindow:   envDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateSweepInterval: envDuration("RATE_SWEEP_INTERVAL", 5*time.Minute),

		EchoRateLimit:          envFloat64("ECHO_RATE_LIMIT", 50),
		EchoBurstLimit:         envInt("ECHO_BURST_LIMIT", 100),
		EchoRateLimitExpiresIn: envDuration("ECHO_RATE_LIMIT_EXPIRES_IN", 3*time.Minute),

		// Idempotency settings
		IdempotencyTTL:        envDuration("IDEMPOTENCY_TTL", 10*time.Minute),
		IdempotencyMaxEntries: envInt("IDEMPOTENCY_MAX_ENTRIES", 10000),

		// Dead-letter settings
		EnableDeadLetter: envBool("ENABLE_DEAD_LETTER", false),
		DeadLetterDir:    env("DEAD_LETTER_DIR", "./data/deadletter"),
		DeadLetterTTL:    envDuration("DEAD_LETTER_TTL", 7*24*time.Hour),

		// Logging settings
		EnableRequestLogging:    envBool("ENABLE_REQUEST_LOGGING", false),
		EnableSecurityLogging:   envBool("ENABLE_SECURITY_LOGGING", true),
		EnableValidationLogging: envBool("ENABLE_VALIDATION_LOGGING", false),
		EnableErrorLogging:      envBool("ENABLE_ERROR_LOGGING", true),
	}

	return config
}

// Validate reports configuration problems that prevent the gateway from
// forwarding anything. The server still starts without upstream
// credentials so the health endpoint stays reachable, but every
// submission would fail.
func (cfg *Config) Validate() error {
	if cfg.ContactAPIEndpoint == "" {
		return fmt.Errorf("CONTACT_API_ENDPOINT is not set")
	}
	if cfg.ContactAPIKey == "" {
		return fmt.Errorf("CONTACT_API_KEY is not set")
	}
	if len(cfg.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_ORIGINS is empty; every request would be rejected")
	}
	return nil
}

// DisplayConfiguration shows the current configuration. Secrets are
// reported as present/absent only.
func (cfg *Config) DisplayConfiguration() {
	fmt.Println("⚙️  Configuration:")
	fmt.Printf("   Host: %s\n", cfg.Host)
	fmt.Printf("   Port: %s\n", cfg.Port)
	if cfg.EnableTLS {
		fmt.Printf("   TLS Port: %s\n", cfg.TLSPort)
		fmt.Printf("   TLS Cache Dir: %s\n", cfg.TLSCacheDir)
		fmt.Printf("   TLS Hosts: %v\n", cfg.TLSHosts)
		fmt.Printf("   HTTPS Only: %t\n", cfg.EnableHTTPSOnly)
	}
	fmt.Printf("   Upstream Endpoint Configured: %t\n", cfg.ContactAPIEndpoint != "")
	fmt.Printf("   Upstream Credential Configured: %t\n", cfg.ContactAPIKey != "")
	fmt.Printf("   Upstream Timeout: %v\n", cfg.UpstreamTimeout)
	fmt.Printf("   Allowed Origins: %v\n", cfg.AllowedOrigins)
	fmt.Printf("   Rate Limit: %d per %v\n", cfg.RateLimitMax, cfg.RateLimitWindow)
	fmt.Printf("   Idempotency TTL: %v (max %d entries)\n", cfg.IdempotencyTTL, cfg.IdempotencyMaxEntries)
	fmt.Printf("   Dead Letter: %t (%s)\n", cfg.EnableDeadLetter, cfg.DeadLetterDir)
	fmt.Printf("   Max Body Size: %s\n", cfg.MaxBodySize)
	fmt.Println()
}

// Helper functions to get environment variables with defaults

func env(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func envInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func envBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func envDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func envFloat64(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func envStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		if value == "" {
			return defaultValue
		}
		// Parse comma-separated values
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
