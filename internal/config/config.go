// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port         string   `mapstructure:"PORT"`
	Env          string   `mapstructure:"ENV"`
	DatabaseURL  string   `mapstructure:"DATABASE_URL"`
	DBMaxConns   int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns   int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret    string   `mapstructure:"JWT_SECRET"`
	CronSecret   string   `mapstructure:"CRON_SECRET"`
	CronEnabled  bool     `mapstructure:"CRON_ENABLED"`
	CronSchedule string   `mapstructure:"CRON_SCHEDULE"`
	SMTPHost     string   `mapstructure:"SMTP_HOST"`
	SMTPPort     int      `mapstructure:"SMTP_PORT"`
	SMTPUser     string   `mapstructure:"SMTP_USER"`
	SMTPPass     string   `mapstructure:"SMTP_PASS"`
	MailFrom     string   `mapstructure:"MAIL_FROM"`
	CORSOrigins  []string `mapstructure:"CORS_ORIGINS"`
	BodyLimit    string   `mapstructure:"BODY_LIMIT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CRON_ENABLED", false)
	v.SetDefault("CRON_SCHEDULE", "*/15 * * * *")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("BODY_LIMIT", "256K")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("CRON_SECRET")
	v.BindEnv("CRON_ENABLED")
	v.BindEnv("CRON_SCHEDULE")
	v.BindEnv("SMTP_HOST")
	v.BindEnv("SMTP_PORT")
	v.BindEnv("SMTP_USER")
	v.BindEnv("SMTP_PASS")
	v.BindEnv("MAIL_FROM")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("BODY_LIMIT")

	// Read .env when present, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SMTPConfigured reports whether enough SMTP settings are present to send
// mail. When false the server falls back to logging alert digests instead of
// emailing them.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

// Validate checks that the configuration is safe to run. Development mode is
// permissive; production requires real secrets.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMaxConns < c.DBMinConns {
		return fmt.Errorf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", c.DBMaxConns, c.DBMinConns)
	}

	if c.IsDev() {
		return nil
	}

	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters outside development")
	}
	if c.CronSecret == "" {
		return fmt.Errorf("CRON_SECRET is required outside development")
	}
	if !c.SMTPConfigured() {
		return fmt.Errorf("SMTP_HOST, SMTP_USER, and SMTP_PASS are required outside development")
	}

	return nil
}
