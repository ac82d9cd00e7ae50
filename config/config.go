package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sobhit1/feed-chain/utils"
)

// MaxClockSkew bounds JWT_CLOCK_SKEW.
const MaxClockSkew = 5 * time.Minute

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Cookie        CookieConfig
	Observability ObservabilityConfig
	Environment   string `validate:"required"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int           `validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `validate:"gt=0"`
	WriteTimeout    time.Duration `validate:"gt=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
	HandlerTimeout  time.Duration `validate:"gt=0"`
	TLS             struct {
		Enabled  bool
		CertFile string
		KeyFile  string
	}
}

// JWTConfig holds token signing and verification configuration
type JWTConfig struct {
	PrivateKeyLocation string `validate:"required"`
	PublicKeyLocation  string `validate:"required"`
	Issuer             string
	AccessTokenTTL     time.Duration `validate:"gt=0"`
	RefreshTokenTTL    time.Duration `validate:"gt=0"`
	ClockSkew          time.Duration `validate:"gte=0"`
}

// CORSConfig holds the cross-origin allow-list
type CORSConfig struct {
	AllowedOrigins []string `validate:"required,min=1,dive,required"`
	MaxAge         int      `validate:"gte=0"`
}

// CookieConfig holds token cookie attributes
type CookieConfig struct {
	Secure bool
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string `validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat      string `validate:"required,oneof=json console"`
	MetricsEnabled bool
	MetricsPort    int `validate:"min=1,max=65535"`
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	var parseErrs []error
	duration := func(key string, defaultValue time.Duration) time.Duration {
		d, err := getEnvAsDuration(key, defaultValue)
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		return d
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     duration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    duration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: duration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			HandlerTimeout:  duration("SERVER_HANDLER_TIMEOUT", 25*time.Second),
			TLS: struct {
				Enabled  bool
				CertFile string
				KeyFile  string
			}{
				Enabled:  getEnvAsBool("TLS_ENABLED", false),
				CertFile: getEnv("TLS_CERT_FILE", "certs/cert.pem"),
				KeyFile:  getEnv("TLS_KEY_FILE", "certs/key.pem"),
			},
		},
		JWT: JWTConfig{
			PrivateKeyLocation: getEnv("JWT_PRIVATE_KEY_LOCATION", ""),
			PublicKeyLocation:  getEnv("JWT_PUBLIC_KEY_LOCATION", ""),
			Issuer:             getEnv("JWT_ISSUER", ""),
			AccessTokenTTL:     duration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTokenTTL:    duration("JWT_REFRESH_TOKEN_TTL", 7*24*time.Hour),
			ClockSkew:          duration("JWT_CLOCK_SKEW", 5*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			MaxAge:         getEnvAsInt("CORS_MAX_AGE", 3600),
		},
		Cookie: CookieConfig{
			Secure: getEnvAsBool("COOKIE_SECURE", true),
		},
		Observability: ObservabilityConfig{
			LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
			LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "json")),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
	}

	if err := errors.Join(parseErrs...); err != nil {
		return nil, fmt.Errorf("config parse failed: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if err := utils.Validator().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.JWT.ClockSkew > MaxClockSkew {
		return fmt.Errorf("JWT clock skew %s exceeds maximum of %s", c.JWT.ClockSkew, MaxClockSkew)
	}
	if c.JWT.RefreshTokenTTL < c.JWT.AccessTokenTTL {
		return fmt.Errorf("refresh token TTL (%s) must not be shorter than access token TTL (%s)",
			c.JWT.RefreshTokenTTL, c.JWT.AccessTokenTTL)
	}

	if c.Server.HandlerTimeout >= c.Server.WriteTimeout {
		return fmt.Errorf("handler timeout (%s) must be shorter than write timeout (%s)",
			c.Server.HandlerTimeout, c.Server.WriteTimeout)
	}

	if c.Server.TLS.Enabled && (c.Server.TLS.CertFile == "" || c.Server.TLS.KeyFile == "") {
		return fmt.Errorf("TLS enabled but certificate or key file is missing")
	}

	if c.IsProduction() && !c.Cookie.Secure {
		return fmt.Errorf("insecure cookies are not allowed in production")
	}

	if c.Observability.MetricsEnabled && c.Observability.MetricsPort == c.Server.Port {
		return fmt.Errorf("metrics port %d collides with the server port", c.Observability.MetricsPort)
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	switch c.Environment {
	case "development", "dev", "local", "test":
		return true
	}
	return false
}

// ExposeDiagnostics reports whether 500 payloads may carry exception details.
func (c *Config) ExposeDiagnostics() bool {
	return c.IsDevelopment()
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MetricsAddress returns the metrics listener address
func (c *Config) MetricsAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Observability.MetricsPort)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration parses a Go duration ("15m", "5s"). Unlike the other
// helpers a bad value is an error: a unitless "5" must not silently become
// the default.
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: invalid duration %q: %w", key, valueStr, err)
	}
	return value, nil
}

// getEnvAsList splits a comma-separated value, trimming blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
