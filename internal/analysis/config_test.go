package analysis_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nyashahama/overthinker-backend/internal/analysis"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := analysis.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("embedded defaults invalid: %v", err)
	}
	if len(cfg.Perspectives) == 0 {
		t.Error("default config has no active perspectives")
	}
}

func TestLoadConfig_EmptyPathIsDefault(t *testing.T) {
	cfg, err := analysis.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Risk.Weights != analysis.DefaultConfig().Risk.Weights {
		t.Errorf("weights = %+v, want defaults", cfg.Risk.Weights)
	}
}

func TestLoadConfig_Overlay(t *testing.T) {
	path := writeFile(t, `
risk:
  weights:
    entity: 0.1
    action: 0.2
    sentiment: 0.3
  negation_window: 5
perspectives: [safety, financial]
`)
	cfg, err := analysis.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Risk.Weights.Entity != 0.1 || cfg.Risk.Weights.Action != 0.2 {
		t.Errorf("weights = %+v, want overridden values", cfg.Risk.Weights)
	}
	if cfg.Risk.NegationWindow != 5 {
		t.Errorf("NegationWindow = %d, want 5", cfg.Risk.NegationWindow)
	}
	if len(cfg.Perspectives) != 2 || cfg.Perspectives[0] != analysis.LabelSafety {
		t.Errorf("Perspectives = %v, want [safety financial]", cfg.Perspectives)
	}
	// Untouched keys keep their defaults.
	if cfg.Risk.NegationDamping != analysis.DefaultConfig().Risk.NegationDamping {
		t.Errorf("NegationDamping = %v, want default", cfg.Risk.NegationDamping)
	}
	if len(cfg.Risk.Hazards) == 0 {
		t.Error("hazards lost by overlay")
	}
}

func TestLoadConfig_NoPerspectives(t *testing.T) {
	cfg, err := analysis.LoadConfig(writeFile(t, "perspectives: []\n"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Perspectives) != 0 {
		t.Errorf("Perspectives = %v, want none", cfg.Perspectives)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown key":     "risk:\n  weigths:\n    entity: 0.1\n",
		"bad label":       "perspectives: [practical, spiritual]\n",
		"weights too big": "risk:\n  weights:\n    entity: 0.5\n    action: 0.5\n    sentiment: 0.5\n",
		"not yaml":        "risk: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := analysis.LoadConfig(writeFile(t, doc))
			if !errors.Is(err, analysis.ErrInvalidConfiguration) {
				t.Errorf("err = %v, want ErrInvalidConfiguration", err)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := analysis.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, analysis.ErrInvalidConfiguration) {
			t.Errorf("err = %v, want ErrInvalidConfiguration", err)
		}
	})
}
