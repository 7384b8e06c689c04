package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config is the fully resolved process configuration.
type Config struct {
	Port             string
	Env              string
	JWTSecret        string
	TokenTTL         time.Duration
	WeatherBaseURL   string
	WeatherAPIKey    string
	WeatherTimeout   time.Duration
	LogLevel         slog.Level
	BatchConcurrency int
}

// IsDevelopment reports whether verbose, developer-facing output is enabled.
func (c Config) IsDevelopment() bool { return c.Env == EnvDevelopment }

// fileConfig mirrors the optional YAML file. Every field is a raw string so
// file and environment values go through the same parsing.
type fileConfig struct {
	Port             string `yaml:"port"`
	Env              string `yaml:"env"`
	JWTSecret        string `yaml:"jwt_secret"`
	JWTExpiresIn     string `yaml:"jwt_expires_in"`
	WeatherBaseURL   string `yaml:"openweather_base_url"`
	WeatherAPIKey    string `yaml:"openweather_api_key"`
	APITimeout       string `yaml:"api_timeout"`
	LogLevel         string `yaml:"log_level"`
	BatchConcurrency string `yaml:"batch_concurrency"`
}

// Load resolves configuration from the environment, layered over the YAML
// file named by CONFIG_FILE when set. Environment values win.
func Load() (Config, error) {
	var fc fileConfig
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		var err error
		if fc, err = loadFile(path); err != nil {
			return Config{}, err
		}
	}

	lookup := func(key, fromFile, fallback string) string {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		if fromFile != "" {
			return fromFile
		}
		return fallback
	}

	var missing []string
	secret := lookup("JWT_SECRET", fc.JWTSecret, "")
	if secret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	apiKey := lookup("OPENWEATHER_API_KEY", fc.WeatherAPIKey, "")
	if apiKey == "" {
		missing = append(missing, "OPENWEATHER_API_KEY")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	env := lookup("APP_ENV", fc.Env, lookup("NODE_ENV", "", EnvDevelopment))
	switch env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: development, production, test)", env)
	}

	ttl, err := time.ParseDuration(lookup("JWT_EXPIRES_IN", fc.JWTExpiresIn, "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("parsing JWT_EXPIRES_IN: %w", err)
	}
	if ttl <= 0 {
		return Config{}, errors.New("JWT_EXPIRES_IN must be positive")
	}

	timeoutMS, err := strconv.Atoi(lookup("API_TIMEOUT", fc.APITimeout, "8000"))
	if err != nil || timeoutMS <= 0 {
		return Config{}, fmt.Errorf("invalid API_TIMEOUT %q (milliseconds, > 0)", lookup("API_TIMEOUT", fc.APITimeout, "8000"))
	}

	level, err := ParseLogLevel(lookup("LOG_LEVEL", fc.LogLevel, "info"))
	if err != nil {
		return Config{}, err
	}

	concurrency, err := strconv.Atoi(lookup("BATCH_CONCURRENCY", fc.BatchConcurrency, "1"))
	if err != nil || concurrency < 1 {
		return Config{}, fmt.Errorf("invalid BATCH_CONCURRENCY %q (integer, >= 1)", lookup("BATCH_CONCURRENCY", fc.BatchConcurrency, "1"))
	}

	port := lookup("PORT", fc.Port, "3000")
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return Config{}, fmt.Errorf("invalid PORT %q", port)
	}

	return Config{
		Port:             port,
		Env:              env,
		JWTSecret:        secret,
		TokenTTL:         ttl,
		WeatherBaseURL:   lookup("OPENWEATHER_BASE_URL", fc.WeatherBaseURL, "https://api.openweathermap.org/data/2.5"),
		WeatherAPIKey:    apiKey,
		WeatherTimeout:   time.Duration(timeoutMS) * time.Millisecond,
		LogLevel:         level,
		BatchConcurrency: concurrency,
	}, nil
}

func loadFile(path string) (fileConfig, error) {
	var fc fileConfig

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fc, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parsing config file: %w", err)
	}

	return fc, nil
}

// ParseLogLevel maps debug|info|warn|error to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
