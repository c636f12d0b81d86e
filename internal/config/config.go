package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"databank/internal/models"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultPath = "config/config.yaml"

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort     int    `yaml:"smtp_port" env:"SMTP_PORT"`
	SMTPUser     string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPassword string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
	FromEmail    string `yaml:"from_email" env:"SMTP_FROM"`
	DryRun       bool   `yaml:"dry_run" env:"SMTP_DRY_RUN"`
}

type VerificationConfig struct {
	// TimeoutMS is the lifetime of a confirmation code in milliseconds.
	TimeoutMS   int64  `yaml:"timeout_ms" env:"VALIDATION_TIMEOUT"`
	MaxAttempts int    `yaml:"max_attempts" env:"MAX_VALIDATION_ATTEMPTS"`
	PolicyKind  string `yaml:"policy" env:"VERIFICATION_POLICY"`
	PolicyRegex string `yaml:"policy_regex" env:"VERIFICATION_REGEX"`
}

func (v VerificationConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutMS) * time.Millisecond
}

// Policy is the policy used until an administrator stores one during setup.
func (v VerificationConfig) Policy() (models.VerificationPolicy, error) {
	return models.ParseVerificationPolicy(v.PolicyKind, v.PolicyRegex)
}

type ResendConfig struct {
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	Window        time.Duration `yaml:"window" env:"RESEND_WINDOW"`
	MaxSends      int           `yaml:"max_sends" env:"RESEND_MAX_SENDS"`
}

type Config struct {
	Server struct {
		Port    int    `yaml:"port" env:"PORT"`
		GinMode string `yaml:"gin_mode" env:"GIN_MODE"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url" env:"DATABASE_URL"`
	} `yaml:"database"`
	JWT struct {
		Secret    string        `yaml:"secret" env:"JWT_SECRET"`
		AccessTTL time.Duration `yaml:"access_ttl" env:"JWT_ACCESS_TTL"`
	} `yaml:"jwt"`
	Log struct {
		Level       string `yaml:"level" env:"LOG_LEVEL"`
		Environment string `yaml:"environment" env:"APP_ENV"`
	} `yaml:"log"`
	Email        EmailConfig        `yaml:"email"`
	Verification VerificationConfig `yaml:"verification"`
	Resend       ResendConfig       `yaml:"resend"`
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.GinMode == "" {
		c.Server.GinMode = "release"
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = 24 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Environment == "" {
		c.Log.Environment = "development"
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	// 5 minutes shown to the user plus 1 for network latency
	if c.Verification.TimeoutMS == 0 {
		c.Verification.TimeoutMS = 360000
	}
	if c.Verification.MaxAttempts == 0 {
		c.Verification.MaxAttempts = 3
	}
	if c.Verification.PolicyKind == "" {
		c.Verification.PolicyKind = models.PolicyManual
	}
	if c.Resend.Window == 0 {
		c.Resend.Window = 10 * time.Minute
	}
	if c.Resend.MaxSends == 0 {
		c.Resend.MaxSends = 5
	}
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.Verification.TimeoutMS <= 0 {
		errs = append(errs, fmt.Errorf("VALIDATION_TIMEOUT must be a positive number of milliseconds, not %d", c.Verification.TimeoutMS))
	}
	if c.Verification.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("MAX_VALIDATION_ATTEMPTS must be set to a positive integer, not %d", c.Verification.MaxAttempts))
	}
	if _, err := c.Verification.Policy(); err != nil {
		errs = append(errs, fmt.Errorf("verification.policy: %w", err))
	}
	if c.Resend.RedisAddr != "" && (c.Resend.Window <= 0 || c.Resend.MaxSends <= 0) {
		errs = append(errs, errors.New("resend.window and resend.max_sends must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads the YAML file at path (optional), overlays .env and process
// environment variables, fills defaults and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// .env is a convenience for local runs; a missing file is fine
	_ = godotenv.Load()

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads the configuration from DATABANK_CONFIG or
// config/config.yaml and panics when it is unusable.
func LoadConfig() *Config {
	path := os.Getenv("DATABANK_CONFIG")
	if path == "" {
		path = defaultPath
	}
	cfg, err := Load(path)
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	return cfg
}
