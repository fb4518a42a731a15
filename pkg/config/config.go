package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Timeout bounds, in seconds.
const (
	DefaultRequestTimeout  = 55
	DefaultProviderTimeout = 30
	MaxRequestTimeout      = 300
	MaxProviderTimeout     = 120
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Maps       MapsConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Resilience ResilienceConfig
	Tracing    TracingConfig
	Sentry     SentryConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string
	Environment    string
	ServiceName    string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	CORSOrigins    string // Comma-separated list of allowed origins
}

// MapsConfig configures the directions provider client.
type MapsConfig struct {
	APIKey             string
	BaseURL            string
	TimeoutSeconds     int
	MaxAttempts        int
	RetryBackoffMillis int
	QPS                float64
	HealthCheckEnabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	WindowSeconds     int
	AnonymousLimit    int
	AnonymousBurst    int
	RedisPrefix       string
	EndpointOverrides map[string]EndpointRateLimitConfig
}

// EndpointRateLimitConfig allows customizing limits per endpoint
type EndpointRateLimitConfig struct {
	Limit         int `json:"limit"`
	Burst         int `json:"burst"`
	WindowSeconds int `json:"window_seconds"`
}

// ResilienceConfig groups runtime resilience controls
type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig
}

// CircuitBreakerConfig captures default and per-service breaker tuning
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	SuccessThreshold int
	TimeoutSeconds   int
	IntervalSeconds  int
	ServiceOverrides map[string]CircuitBreakerSettings
}

// CircuitBreakerSettings overrides defaults for a specific upstream service
type CircuitBreakerSettings struct {
	FailureThreshold int `json:"failure_threshold"`
	SuccessThreshold int `json:"success_threshold"`
	TimeoutSeconds   int `json:"timeout_seconds"`
	IntervalSeconds  int `json:"interval_seconds"`
}

// TracingConfig configures the OTLP trace exporter.
type TracingConfig struct {
	Enabled        bool
	OTLPEndpoint   string
	SampleRate     float64
	ServiceVersion string
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	DSN         string
	Environment string
	SampleRate  float64
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	environment := getEnv("ENVIRONMENT", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8090"),
			Environment:    environment,
			ServiceName:    serviceName,
			LogLevel:       getEnv("LOG_LEVEL", ""),
			ReadTimeout:    getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout:   getEnvAsInt("WRITE_TIMEOUT", 60),
			RequestTimeout: getEnvAsInt("REQUEST_TIMEOUT", DefaultRequestTimeout),
			CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Maps: MapsConfig{
			APIKey:             getEnv("GOOGLE_MAPS_API_KEY", ""),
			BaseURL:            getEnv("MAPS_BASE_URL", "https://maps.googleapis.com/maps/api"),
			TimeoutSeconds:     getEnvAsInt("MAPS_TIMEOUT_SECONDS", DefaultProviderTimeout),
			MaxAttempts:        getEnvAsInt("MAPS_MAX_ATTEMPTS", 2),
			RetryBackoffMillis: getEnvAsInt("MAPS_RETRY_BACKOFF_MS", 500),
			QPS:                getEnvAsFloat("MAPS_QPS", 0),
			HealthCheckEnabled: getEnvAsBool("MAPS_HEALTHCHECK_ENABLED", false),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled:        getEnvAsBool("RATE_LIMIT_ENABLED", false),
			WindowSeconds:  getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			AnonymousLimit: getEnvAsInt("RATE_LIMIT_ANON_LIMIT", 60),
			AnonymousBurst: getEnvAsInt("RATE_LIMIT_ANON_BURST", 20),
			RedisPrefix:    getEnv("RATE_LIMIT_REDIS_PREFIX", "rate-limit"),
		},
		Resilience: ResilienceConfig{
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          getEnvAsBool("CB_ENABLED", false),
				FailureThreshold: getEnvAsInt("CB_FAILURE_THRESHOLD", 5),
				SuccessThreshold: getEnvAsInt("CB_SUCCESS_THRESHOLD", 1),
				TimeoutSeconds:   getEnvAsInt("CB_TIMEOUT_SECONDS", 30),
				IntervalSeconds:  getEnvAsInt("CB_INTERVAL_SECONDS", 60),
			},
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   getEnvAsFloat("OTEL_SAMPLE_RATE", 1.0),
		},
		Sentry: SentryConfig{
			DSN:         getEnv("SENTRY_DSN", ""),
			Environment: getEnv("SENTRY_ENVIRONMENT", environment),
			SampleRate:  getEnvAsFloat("SENTRY_SAMPLE_RATE", 1.0),
		},
	}

	if overrides := getEnv("RATE_LIMIT_ENDPOINTS", ""); overrides != "" {
		var endpointConfig map[string]EndpointRateLimitConfig
		if err := json.Unmarshal([]byte(overrides), &endpointConfig); err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_ENDPOINTS value: %w", err)
		}
		cfg.RateLimit.EndpointOverrides = endpointConfig
	}

	if breakerOverrides := getEnv("CB_SERVICE_OVERRIDES", ""); breakerOverrides != "" {
		var serviceConfig map[string]CircuitBreakerSettings
		if err := json.Unmarshal([]byte(breakerOverrides), &serviceConfig); err != nil {
			return nil, fmt.Errorf("invalid CB_SERVICE_OVERRIDES value: %w", err)
		}
		cfg.Resilience.CircuitBreaker.ServiceOverrides = serviceConfig
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.RequestTimeout > MaxRequestTimeout {
		return fmt.Errorf("REQUEST_TIMEOUT must not exceed %d seconds, got %d", MaxRequestTimeout, c.Server.RequestTimeout)
	}
	if c.Maps.TimeoutSeconds > MaxProviderTimeout {
		return fmt.Errorf("MAPS_TIMEOUT_SECONDS must not exceed %d seconds, got %d", MaxProviderTimeout, c.Maps.TimeoutSeconds)
	}
	if c.Maps.MaxAttempts > 2 {
		return fmt.Errorf("MAPS_MAX_ATTEMPTS allows at most one retry, got %d", c.Maps.MaxAttempts)
	}
	if c.Maps.QPS < 0 {
		return fmt.Errorf("MAPS_QPS must not be negative, got %v", c.Maps.QPS)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be within [0,1], got %v", c.Tracing.SampleRate)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = DefaultRequestTimeout
	}
	if c.Maps.TimeoutSeconds <= 0 {
		c.Maps.TimeoutSeconds = DefaultProviderTimeout
	}
	if c.Maps.MaxAttempts <= 0 {
		c.Maps.MaxAttempts = 1
	}
	if c.Maps.RetryBackoffMillis < 0 {
		c.Maps.RetryBackoffMillis = 0
	}

	if c.RateLimit.WindowSeconds <= 0 {
		c.RateLimit.WindowSeconds = int((time.Minute).Seconds())
	}

	breaker := &c.Resilience.CircuitBreaker
	if breaker.TimeoutSeconds <= 0 {
		breaker.TimeoutSeconds = 30
	}
	if breaker.IntervalSeconds <= 0 {
		breaker.IntervalSeconds = 60
	}
	if breaker.FailureThreshold <= 0 {
		breaker.FailureThreshold = 5
	}
	if breaker.SuccessThreshold <= 0 {
		breaker.SuccessThreshold = 1
	}
}

// SettingsFor returns effective breaker settings for a specific upstream service name
func (c CircuitBreakerConfig) SettingsFor(service string) CircuitBreakerSettings {
	settings := CircuitBreakerSettings{
		FailureThreshold: c.FailureThreshold,
		SuccessThreshold: c.SuccessThreshold,
		TimeoutSeconds:   c.TimeoutSeconds,
		IntervalSeconds:  c.IntervalSeconds,
	}

	if override, ok := c.ServiceOverrides[service]; ok {
		if override.FailureThreshold > 0 {
			settings.FailureThreshold = override.FailureThreshold
		}
		if override.SuccessThreshold > 0 {
			settings.SuccessThreshold = override.SuccessThreshold
		}
		if override.TimeoutSeconds > 0 {
			settings.TimeoutSeconds = override.TimeoutSeconds
		}
		if override.IntervalSeconds > 0 {
			settings.IntervalSeconds = override.IntervalSeconds
		}
	}

	if settings.SuccessThreshold <= 0 {
		settings.SuccessThreshold = 1
	}
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = 5
	}
	if settings.TimeoutSeconds <= 0 {
		settings.TimeoutSeconds = 30
	}
	if settings.IntervalSeconds <= 0 {
		settings.IntervalSeconds = 60
	}

	return settings
}

// Timeout returns the provider call timeout.
func (c MapsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryBackoff returns the delay before the single provider retry.
func (c MapsConfig) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMillis) * time.Millisecond
}

// RequestDeadline returns the per-request context deadline.
func (c ServerConfig) RequestDeadline() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// AllowedOrigins splits CORSOrigins into trimmed, non-empty entries.
func (c ServerConfig) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Window returns the configured rate limit window duration
func (c RateLimitConfig) Window() time.Duration {
	if c.WindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.WindowSeconds) * time.Second
}

// Helper functions
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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
