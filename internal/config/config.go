package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API struct {
		BaseURL       string `yaml:"base_url" validate:"required,url"`
		SessionCookie string `yaml:"session_cookie"`
		CSRFToken     string `yaml:"csrf_token"`
		UserID        int64  `yaml:"user_id" validate:"gte=0"`
		Timeout       string `yaml:"timeout"`
	} `yaml:"api"`
	Server struct {
		Port string `yaml:"port" validate:"omitempty,numeric"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" validate:"gte=0"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	Sessions struct {
		Store string `yaml:"store" validate:"omitempty,oneof=file memory"`
		Dir   string `yaml:"dir"`
	} `yaml:"sessions"`
	Board struct {
		Refresh string `yaml:"refresh"`
	} `yaml:"board"`
	Log struct {
		Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
		Format string `yaml:"format" validate:"omitempty,oneof=text json"`
	} `yaml:"log"`
	Trivia struct {
		BaseURL string `yaml:"base_url" validate:"omitempty,url"`
	} `yaml:"trivia"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.API.BaseURL = "http://localhost:8000"
	cfg.API.Timeout = "15s"
	cfg.Server.Port = "8080"
	cfg.Board.Refresh = "30s"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

// Load reads YAML config from path on top of the defaults, then applies a
// .env file in the working directory (if any) and environment overrides.
// A missing config file is not an error.
func Load(path string) (Config, error) {
	return load(path, ".env")
}

func load(path, envFile string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set(&cfg.API.BaseURL, "QUIZZZ_API_URL")
	set(&cfg.API.SessionCookie, "QUIZZZ_SESSION")
	set(&cfg.API.CSRFToken, "QUIZZZ_CSRF")
	set(&cfg.Redis.Addr, "REDIS_ADDR")
	set(&cfg.Redis.Password, "REDIS_PASSWORD")
	set(&cfg.Postgres.URL, "POSTGRES_URL")
	set(&cfg.Sessions.Dir, "QUIZZZ_SESSION_DIR")
	set(&cfg.Log.Level, "LOG_LEVEL")
	set(&cfg.Server.Port, "PORT")
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("QUIZZZ_USER_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.API.UserID = id
		}
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
