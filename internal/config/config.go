// Package config loads and validates all environment variables at startup.
// Every other package receives typed values; nothing reads os.Getenv directly.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the fully-parsed application configuration.
type Config struct {
	// ── Server ────────────────────────────────────────────────────────────────
	Port           string        // default "8080"
	Env            string        // "development" | "staging" | "production"
	RequestTimeout time.Duration // default 30s

	// ── Model ─────────────────────────────────────────────────────────────────
	ModelName string // default "en-prose"; "gcp-language" adds Cloud entities
	ModelPath string // directory written by prose Model.Write; empty = embedded

	// LanguageCredentials is the decoded service-account JSON for the Cloud
	// Natural Language API. Only read when ModelName is "gcp-language".
	LanguageCredentials []byte

	// ── Pipeline ──────────────────────────────────────────────────────────────
	PipelineConfig string // optional YAML override of the embedded defaults
	CacheSize      int    // default 256; 0 disables

	// ── Database ──────────────────────────────────────────────────────────────
	// Optional. Persistence and the /api/analyses endpoints need it.
	DatabaseURL string

	// ── Batch ─────────────────────────────────────────────────────────────────
	BatchWorkers int // default 4
	MaxBatchSize int // default 50

	// ── Advisor ───────────────────────────────────────────────────────────────
	// Both providers are optional. With neither, advice is never offered.
	AnthropicAPIKey string
	AnthropicModel  string // default "claude-sonnet-4-5"
	DeepSeekAPIKey  string
	DeepSeekModel   string // default "deepseek-chat"
	DeepSeekBaseURL string // default "https://api.deepseek.com/v1"
	AdvisorTimeout  time.Duration
}

// cloudModelName mirrors nlp.CloudModelName without importing nlp.
const cloudModelName = "gcp-language"

// Load reads all environment variables and returns a validated Config.
// A .env file in the working directory is loaded first when present; real
// environment variables always take precedence over .env values.
func Load() (*Config, error) {
	// godotenv.Load never overrides variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching
// .env.
func FromEnv() (*Config, error) {
	var errs []error

	c := &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		ModelName:       getEnv("MODEL_NAME", "en-prose"),
		ModelPath:       os.Getenv("MODEL_PATH"),
		PipelineConfig:  os.Getenv("PIPELINE_CONFIG"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-5"),
		DeepSeekAPIKey:  os.Getenv("DEEPSEEK_API_KEY"),
		DeepSeekModel:   getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		DeepSeekBaseURL: getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
	}

	c.CacheSize = getEnvAsInt("CACHE_SIZE", 256, &errs)
	c.BatchWorkers = getEnvAsInt("BATCH_WORKERS", 4, &errs)
	c.MaxBatchSize = getEnvAsInt("MAX_BATCH_SIZE", 50, &errs)
	c.RequestTimeout = getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second, &errs)
	c.AdvisorTimeout = getEnvAsDuration("ADVISOR_TIMEOUT", 60*time.Second, &errs)

	if encoded := os.Getenv("NATURAL_LANGUAGE_CREDENTIALS"); encoded != "" {
		creds, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			errs = append(errs, fmt.Errorf("NATURAL_LANGUAGE_CREDENTIALS: not base64: %w", err))
		}
		c.LanguageCredentials = creds
	}

	errs = append(errs, c.validate()...)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool { return c.Env == "production" }

// HasAdvisor reports whether at least one advisor provider is configured.
func (c *Config) HasAdvisor() bool {
	return c.AnthropicAPIKey != "" || c.DeepSeekAPIKey != ""
}

func (c *Config) validate() []error {
	var errs []error

	switch c.Env {
	case "development", "staging", "production":
	default:
		errs = append(errs, fmt.Errorf("ENV: %q is not one of development, staging, production", c.Env))
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("CACHE_SIZE: %d must be >= 0", c.CacheSize))
	}
	if c.BatchWorkers < 1 {
		errs = append(errs, fmt.Errorf("BATCH_WORKERS: %d must be >= 1", c.BatchWorkers))
	}
	if c.MaxBatchSize < 1 {
		errs = append(errs, fmt.Errorf("MAX_BATCH_SIZE: %d must be >= 1", c.MaxBatchSize))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT: must be positive"))
	}
	if c.AdvisorTimeout <= 0 {
		errs = append(errs, fmt.Errorf("ADVISOR_TIMEOUT: must be positive"))
	}
	if c.ModelName == cloudModelName && len(c.LanguageCredentials) == 0 {
		errs = append(errs, fmt.Errorf("MODEL_NAME=%s requires NATURAL_LANGUAGE_CREDENTIALS", cloudModelName))
	}
	return errs
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt returns defaultValue when key is unset and records an error
// when it is set but not an integer.
func getEnvAsInt(key string, defaultValue int, errs *[]error) int {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not an integer", key, valueStr))
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts a plain integer (seconds) or Go duration syntax
// ("30s", "2m").
func getEnvAsDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(value) * time.Second
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	*errs = append(*errs, fmt.Errorf("%s: %q is not a duration", key, valueStr))
	return defaultValue
}
