// Package config carga la configuración del servicio desde variables de entorno.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"claims-review/internal/platform/logger"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// DB_DSN vacío => stores in-memory (modo dev).
	DatabaseDSN    string `env:"DB_DSN"`
	MigrateOnStart bool   `env:"DB_MIGRATE" envDefault:"true"`

	// JWT_SECRET vacío => modo dev con X-Debug-User-ID.
	JWTSecret   string `env:"JWT_SECRET"`
	JWTIssuer   string `env:"JWT_ISSUER"`
	JWTAudience string `env:"JWT_AUDIENCE"`

	IdPBaseURL string        `env:"IDP_BASE_URL"`
	IdPAPIKey  string        `env:"IDP_API_KEY"`
	IdPTimeout time.Duration `env:"IDP_TIMEOUT" envDefault:"5s"`

	SeedDemo bool `env:"SEED_DEMO"`

	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	AppName string `env:"APP_NAME" envDefault:"claims-review"`
	Log     Log    `envPrefix:"LOG_"`
}

type Log struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// Load parsea el entorno y valida combinaciones.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT must not be empty")
	}
	if (c.IdPBaseURL == "") != (c.IdPAPIKey == "") {
		return errors.New("IDP_BASE_URL and IDP_API_KEY must be set together")
	}
	if c.IdPTimeout <= 0 {
		return errors.New("IDP_TIMEOUT must be positive")
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}

func (c Config) DevAuth() bool {
	return strings.TrimSpace(c.JWTSecret) == ""
}

func (c Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level:  logger.ParseLevel(c.Log.Level),
		Format: logger.ParseFormat(c.Log.Format),
		App:    c.AppName,
	}
}
