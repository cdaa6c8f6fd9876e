// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	View     ViewConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing the response (default: 0, exports stream)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Optional: without it only
	// the built-in tables are served.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool { return c.URL != "" }

// ViewConfig holds table view settings.
type ViewConfig struct {
	// DefaultPageSize is rows per page when a request names none (default: 5)
	DefaultPageSize int `env:"VIEW_DEFAULT_PAGE_SIZE" default:"5"`

	// PageSizeOptions are the page sizes offered to users (default: 5,10,25)
	PageSizeOptions []int `env:"VIEW_PAGE_SIZE_OPTIONS" default:"5,10,25"`

	// MaxPageSize caps any requested page size (default: 100)
	MaxPageSize int `env:"VIEW_MAX_PAGE_SIZE" default:"100"`

	// CacheTTL is how long loaded rows are reused; 0 disables caching (default: 30s)
	CacheTTL time.Duration `env:"VIEW_CACHE_TTL" default:"30s"`

	// LoadTimeout bounds a single table load (default: 30s)
	LoadTimeout time.Duration `env:"VIEW_LOAD_TIMEOUT" default:"30s"`

	// MaxSessions is the maximum number of open view sessions (default: 1000)
	MaxSessions int `env:"VIEW_MAX_SESSIONS" default:"1000"`

	// SessionIdleTimeout closes sessions unused for this long (default: 30m)
	SessionIdleTimeout time.Duration `env:"VIEW_SESSION_IDLE_TIMEOUT" default:"30m"`

	// ReaperInterval is how often idle sessions are swept (default: 1m)
	ReaperInterval time.Duration `env:"VIEW_REAPER_INTERVAL" default:"1m"`

	// MaxConcurrentExports is the maximum number of parallel exports (default: 4)
	MaxConcurrentExports int `env:"EXPORT_MAX_CONCURRENT" default:"4"`

	// ExportWait is how long to wait for an export slot (default: 10s)
	ExportWait time.Duration `env:"EXPORT_MAX_WAIT_TIME" default:"10s"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// Burst is how many requests may arrive at once (default: 50)
	Burst int `env:"RATE_LIMIT_BURST" default:"50"`

	// ExportLimit is requests per minute for export endpoints (default: 10)
	ExportLimit int `env:"RATE_LIMIT_EXPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey enforces X-API-Key on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// SeqURL ships logs to a Seq server when set
	SeqURL string `env:"LOG_SEQ_URL"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics and records request metrics (default: true)
	Enabled bool `env:"METRICS_ENABLED" default:"true"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
