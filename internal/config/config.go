package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	MongoURI     string        `env:"MONGODB_URI,required,notEmpty"`
	DBName       string        `env:"DB_NAME" envDefault:"sample_mflix"`
	JWTSecret    string        `env:"JWT_SECRET,required,notEmpty"`
	Port         string        `env:"PORT" envDefault:"8080"`
	DBTimeout    time.Duration `env:"DB_TIMEOUT" envDefault:"10s"`
	TokenTTL     time.Duration `env:"TOKEN_TTL" envDefault:"720h"`
	ResendAPIKey string        `env:"RESEND_API_KEY"`
	FromEmail    string        `env:"FROM_EMAIL" envDefault:"mflix <no-reply@mflix.local>"`
	AppEnv       string        `env:"APP_ENV" envDefault:"production"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	// Missing .env is fine, vars may be set directly
	_ = godotenv.Load()
	return Parse()
}

// Parse parses the process environment without touching .env files.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Development() bool {
	return c.AppEnv == "development"
}

func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}
