package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"CardCycle"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"cardcycle"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"console"`
	}

	// Clock holds the fixed UTC offset used for every date-only comparison.
	// There is no DST handling.
	Clock struct {
		OffsetHours int `envconfig:"CLOCK_OFFSET_HOURS" default:"-3"`
	}

	Worker struct {
		Interval        time.Duration `envconfig:"WORKER_INTERVAL" default:"1m"`
		ErrorBackoff    time.Duration `envconfig:"WORKER_ERROR_BACKOFF" default:"30s"`
		ReconcileWarmup time.Duration `envconfig:"RECONCILE_WARMUP" default:"10s"`
	}

	Reminder struct {
		Hour int `envconfig:"REMINDER_HOUR" default:"9"`
	}

	Closing struct {
		Hour int `envconfig:"CLOSING_HOUR" default:"1"`
	}

	Digest struct {
		Weekday time.Weekday `envconfig:"DIGEST_WEEKDAY" default:"1"`
		Hour    int          `envconfig:"DIGEST_HOUR" default:"8"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Offset returns the configured clock offset from UTC.
func (c *Config) Offset() time.Duration {
	return time.Duration(c.Clock.OffsetHours) * time.Hour
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Clock.OffsetHours < -12 || c.Clock.OffsetHours > 14 {
		return fmt.Errorf("CLOCK_OFFSET_HOURS out of range: %d", c.Clock.OffsetHours)
	}

	for name, h := range map[string]int{
		"REMINDER_HOUR": c.Reminder.Hour,
		"CLOSING_HOUR":  c.Closing.Hour,
		"DIGEST_HOUR":   c.Digest.Hour,
	} {
		if h < 0 || h > 23 {
			return fmt.Errorf("%s out of range: %d", name, h)
		}
	}

	if c.Digest.Weekday < time.Sunday || c.Digest.Weekday > time.Saturday {
		return fmt.Errorf("DIGEST_WEEKDAY out of range: %d", c.Digest.Weekday)
	}

	for name, d := range map[string]time.Duration{
		"WORKER_INTERVAL":      c.Worker.Interval,
		"WORKER_ERROR_BACKOFF": c.Worker.ErrorBackoff,
		"RECONCILE_WARMUP":     c.Worker.ReconcileWarmup,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	return nil
}
