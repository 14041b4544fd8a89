package config_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nyashahama/overthinker-backend/internal/config"
)

var allKeys = []string{
	"PORT", "ENV", "REQUEST_TIMEOUT", "MODEL_NAME", "MODEL_PATH",
	"NATURAL_LANGUAGE_CREDENTIALS", "PIPELINE_CONFIG", "CACHE_SIZE", "DATABASE_URL",
	"BATCH_WORKERS", "MAX_BATCH_SIZE", "ANTHROPIC_API_KEY", "ANTHROPIC_MODEL",
	"DEEPSEEK_API_KEY", "DEEPSEEK_MODEL", "DEEPSEEK_BASE_URL", "ADVISOR_TIMEOUT",
}

// clearEnv blanks every variable FromEnv reads; t.Setenv restores them.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	got, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	want := &config.Config{
		Port:            "8080",
		Env:             "development",
		RequestTimeout:  30 * time.Second,
		ModelName:       "en-prose",
		CacheSize:       256,
		BatchWorkers:    4,
		MaxBatchSize:    50,
		AnthropicModel:  "claude-sonnet-4-5",
		DeepSeekModel:   "deepseek-chat",
		DeepSeekBaseURL: "https://api.deepseek.com/v1",
		AdvisorTimeout:  60 * time.Second,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
	if got.HasAdvisor() || got.IsProduction() {
		t.Error("defaults should have no advisor and not be production")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_SIZE", "0")
	t.Setenv("BATCH_WORKERS", "8")
	t.Setenv("REQUEST_TIMEOUT", "5")
	t.Setenv("ADVISOR_TIMEOUT", "90s")
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")
	t.Setenv("MODEL_NAME", "gcp-language")
	t.Setenv("NATURAL_LANGUAGE_CREDENTIALS", base64.StdEncoding.EncodeToString([]byte(`{"type":"service_account"}`)))

	got, err := config.FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if got.Port != "9090" || !got.IsProduction() || got.CacheSize != 0 || got.BatchWorkers != 8 {
		t.Errorf("config = %+v", got)
	}
	if got.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", got.RequestTimeout)
	}
	if got.AdvisorTimeout != 90*time.Second {
		t.Errorf("AdvisorTimeout = %v, want 90s", got.AdvisorTimeout)
	}
	if !got.HasAdvisor() {
		t.Error("HasAdvisor = false with DEEPSEEK_API_KEY set")
	}
	if string(got.LanguageCredentials) != `{"type":"service_account"}` {
		t.Errorf("LanguageCredentials = %q", got.LanguageCredentials)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "prod")
	t.Setenv("CACHE_SIZE", "-1")
	t.Setenv("BATCH_WORKERS", "many")
	t.Setenv("MAX_BATCH_SIZE", "0")
	t.Setenv("ADVISOR_TIMEOUT", "soon")
	t.Setenv("MODEL_NAME", "gcp-language")

	_, err := config.FromEnv()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	for _, want := range []string{"ENV", "CACHE_SIZE", "BATCH_WORKERS", "MAX_BATCH_SIZE", "ADVISOR_TIMEOUT", "NATURAL_LANGUAGE_CREDENTIALS"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}
