package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/language"
)

type Config struct {
	Server    ServerConfig    `envconfig:"SERVER"`
	Dataset   DatasetConfig   `envconfig:"DATASET"`
	Session   SessionConfig   `envconfig:"SESSION"`
	Dashboard DashboardConfig `envconfig:"DASHBOARD"`
	Logger    LoggerConfig    `envconfig:"LOG"`
	Tracing   TracingConfig   `envconfig:"TRACING"`
	Security  SecurityConfig  `envconfig:"SECURITY"`
}

type ServerConfig struct {
	Host            string        `envconfig:"HOST" default:"localhost" validate:"required"`
	Port            int           `envconfig:"PORT" default:"8084" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s" validate:"gt=0"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s" validate:"gt=0"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s" validate:"gt=0"`
}

// DatasetConfig controls ingestion. SeedFile, when set, is loaded once at
// startup and handed to every new session.
type DatasetConfig struct {
	SeedFile       string `envconfig:"SEED_FILE"`
	MaxUploadBytes int64  `envconfig:"MAX_UPLOAD_BYTES" default:"10485760" validate:"gt=0"`
}

type SessionConfig struct {
	TTL         time.Duration `envconfig:"TTL" default:"30m" validate:"gt=0"`
	MaxSessions int           `envconfig:"MAX" default:"1000" validate:"gt=0"`
	CookieName  string        `envconfig:"COOKIE" default:"dashboard_session" validate:"required"`
}

type DashboardConfig struct {
	Locale  string `envconfig:"LOCALE" default:"es" validate:"required"`
	Workers int    `envconfig:"WORKERS" default:"4" validate:"min=1,max=64"`
}

type LoggerConfig struct {
	Level  string `envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
}

type TracingConfig struct {
	Exporter    string  `envconfig:"EXPORTER" default:"none" validate:"oneof=none stdout"`
	SampleRatio float64 `envconfig:"SAMPLE_RATIO" default:"1.0" validate:"gte=0,lte=1"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitRPS    int      `envconfig:"RATE_LIMIT_RPS" default:"100" validate:"gt=0"`
	RateLimitBurst  int      `envconfig:"RATE_LIMIT_BURST" default:"10" validate:"gt=0"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8084"`
	TrustedProxies  []string `envconfig:"TRUSTED_PROXIES" default:"127.0.0.1"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if _, err := language.Parse(c.Dashboard.Locale); err != nil {
		return fmt.Errorf("invalid dashboard locale %q: %w", c.Dashboard.Locale, err)
	}

	return nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
