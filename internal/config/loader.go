package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "promptana.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < .env < ENV.
// Both the YAML file and the .env file are optional.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < .env < ENV.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	// .env populates the process environment so the ENV overlay picks it up;
	// already-set variables win.
	_ = godotenv.Load()

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "PROMPTANA_PORT")
	setString(&cfg.Server.CORSOrigin, "PROMPTANA_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "PROMPTANA_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "PROMPTANA_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "PROMPTANA_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "PROMPTANA_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "PROMPTANA_PG_HEALTH_CHECK")
	setString(&cfg.OpenRouter.BaseURL, "OPENROUTER_BASE_URL")
	setString(&cfg.OpenRouter.APIKey, "OPENROUTER_API_KEY")
	setDuration(&cfg.OpenRouter.RunTimeout, "PROMPTANA_RUN_TIMEOUT")
	setDuration(&cfg.OpenRouter.ImproveTimeout, "PROMPTANA_IMPROVE_TIMEOUT")
	setString(&cfg.OpenRouter.ImproveModel, "PROMPTANA_IMPROVE_MODEL")
	setStringSlice(&cfg.OpenRouter.Models, "PROMPTANA_MODELS")
	setString(&cfg.Auth.JWTSecret, "PROMPTANA_JWT_SECRET")
	setDuration(&cfg.Auth.AccessTokenExpiry, "PROMPTANA_ACCESS_TOKEN_EXPIRY")
	setDuration(&cfg.Auth.RefreshTokenExpiry, "PROMPTANA_REFRESH_TOKEN_EXPIRY")
	setInt(&cfg.Auth.BcryptCost, "PROMPTANA_BCRYPT_COST")
	setString(&cfg.Logging.Level, "PROMPTANA_LOG_LEVEL")
	setString(&cfg.Logging.Service, "PROMPTANA_LOG_SERVICE")
	setFloat64(&cfg.Rate.RequestsPerSecond, "PROMPTANA_RATE_RPS")
	setInt(&cfg.Rate.Burst, "PROMPTANA_RATE_BURST")
	setDuration(&cfg.Rate.CleanupInterval, "PROMPTANA_RATE_CLEANUP_INTERVAL")
	setDuration(&cfg.Rate.MaxIdleTime, "PROMPTANA_RATE_MAX_IDLE_TIME")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.OpenRouter.BaseURL == "" {
		return errors.New("openrouter.base_url is required")
	}
	if len(cfg.OpenRouter.Models) == 0 {
		return errors.New("openrouter.models must not be empty")
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if cfg.Rate.Burst < 1 {
		return errors.New("rate.burst must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			*dst = out
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
