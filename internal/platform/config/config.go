package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr        string
	MetricsAddr string
	Logging     LoggingConfig
	Auth        AuthConfig
	CheckSvc    CheckServiceConfig
	Bulk        BulkConfig
	Redis       RedisConfig
	Session     SessionConfig
	DatabaseURL string
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

// AuthConfig verifies identity tokens issued by the sign-in provider.
type AuthConfig struct {
	JWTSigningKey string
	JWTIssuer     string
}

// CheckServiceConfig points at the remote eligibility check service.
type CheckServiceConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// BulkConfig holds the upload and throttle limits.
type BulkConfig struct {
	RowLimit        int
	AttemptLimit    int
	AttemptWindow   time.Duration
	MaxUploadBytes  int64
	ErrorsToDisplay int
}

// RedisConfig configures the optional session backend. Empty URL means in-memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SessionConfig bounds how long per-session state lives in the store.
type SessionConfig struct {
	TTL time.Duration
}

const (
	DefaultRowLimit        = 1000
	DefaultAttemptLimit    = 5
	DefaultAttemptWindow   = time.Hour
	DefaultMaxUploadBytes  = 10 * 1024 * 1024
	DefaultErrorsToDisplay = 20
	DefaultCheckTimeout    = 30 * time.Second
	DefaultSessionTTL      = 20 * time.Minute
)

// FromEnv builds a Server config from environment variables so main stays lean.
// Malformed numeric or duration values fall back to the default; Validate
// catches values that parse but make no sense.
func FromEnv() Server {
	return Server{
		Addr:        getEnv("ADDR", ":8080"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
		Logging: LoggingConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
		Auth: AuthConfig{
			// Development default; production deployments must override it.
			JWTSigningKey: getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     os.Getenv("JWT_ISSUER"),
		},
		CheckSvc: CheckServiceConfig{
			BaseURL: getEnv("CHECK_SERVICE_URL", "http://localhost:5000/"),
			APIKey:  os.Getenv("CHECK_SERVICE_API_KEY"),
			Timeout: getDuration("CHECK_SERVICE_TIMEOUT", DefaultCheckTimeout),
		},
		Bulk: BulkConfig{
			RowLimit:        getInt("BULK_ELIGIBILITY_CHECK_LIMIT", DefaultRowLimit),
			AttemptLimit:    getInt("BULK_UPLOAD_ATTEMPT_LIMIT", DefaultAttemptLimit),
			AttemptWindow:   getDuration("BULK_UPLOAD_WINDOW", DefaultAttemptWindow),
			MaxUploadBytes:  int64(getInt("BULK_UPLOAD_MAX_BYTES", DefaultMaxUploadBytes)),
			ErrorsToDisplay: getInt("ERRORS_TO_DISPLAY", DefaultErrorsToDisplay),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Session: SessionConfig{
			TTL: getDuration("SESSION_TTL", DefaultSessionTTL),
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}
}

// Validate rejects limits that would disable the pipeline's safeguards.
func (s Server) Validate() error {
	var errs []error
	if s.Auth.JWTSigningKey == "" {
		errs = append(errs, errors.New("JWT_SIGNING_KEY must be set"))
	}
	if s.CheckSvc.BaseURL == "" {
		errs = append(errs, errors.New("CHECK_SERVICE_URL must be set"))
	}
	if s.CheckSvc.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("CHECK_SERVICE_TIMEOUT must be positive, got %s", s.CheckSvc.Timeout))
	}
	if s.Bulk.RowLimit <= 0 {
		errs = append(errs, fmt.Errorf("BULK_ELIGIBILITY_CHECK_LIMIT must be positive, got %d", s.Bulk.RowLimit))
	}
	if s.Bulk.AttemptLimit <= 0 {
		errs = append(errs, fmt.Errorf("BULK_UPLOAD_ATTEMPT_LIMIT must be positive, got %d", s.Bulk.AttemptLimit))
	}
	if s.Bulk.AttemptWindow <= 0 {
		errs = append(errs, fmt.Errorf("BULK_UPLOAD_WINDOW must be positive, got %s", s.Bulk.AttemptWindow))
	}
	if s.Bulk.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("BULK_UPLOAD_MAX_BYTES must be positive, got %d", s.Bulk.MaxUploadBytes))
	}
	if s.Bulk.ErrorsToDisplay <= 0 {
		errs = append(errs, fmt.Errorf("ERRORS_TO_DISPLAY must be positive, got %d", s.Bulk.ErrorsToDisplay))
	}
	if s.Session.TTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", s.Session.TTL))
	}
	switch s.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", s.Logging.Format))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
