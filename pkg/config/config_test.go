package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Engine.MaxEditDistance != 4 {
		t.Errorf("expected max edit distance 4, got %d", cfg.Engine.MaxEditDistance)
	}
	if cfg.Engine.CorrectionConfidence != 0.8 {
		t.Errorf("expected correction confidence 0.8, got %f", cfg.Engine.CorrectionConfidence)
	}
	if cfg.Engine.ExposeCorrections {
		t.Error("corrections must stay silent by default")
	}
	if got := cfg.Replacements["node js"]; got != "nodejs" {
		t.Errorf("expected compound replacement for node js, got %q", got)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.toml")
	content := `
[engine]
max_edit_distance = 2
expose_corrections = true

[scoring]
jaro = 0.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Engine.MaxEditDistance != 2 {
		t.Errorf("expected overridden max edit distance 2, got %d", cfg.Engine.MaxEditDistance)
	}
	if !cfg.Engine.ExposeCorrections {
		t.Error("expected expose_corrections true")
	}
	if cfg.Scoring.Jaro != 0.5 {
		t.Errorf("expected overridden jaro weight 0.5, got %f", cfg.Scoring.Jaro)
	}
	// Untouched sections keep their defaults.
	if cfg.Engine.MaxQueryLength != 100 {
		t.Errorf("expected default max query length, got %d", cfg.Engine.MaxQueryLength)
	}
	if cfg.Scoring.Distance != 0.25 {
		t.Errorf("expected default distance weight, got %f", cfg.Scoring.Distance)
	}
}

func TestLoadWithPriorityFallsBack(t *testing.T) {
	cfg := LoadWithPriority("")
	if cfg.Engine.MaxEditDistance != 4 {
		t.Error("empty path should yield defaults")
	}

	cfg = LoadWithPriority(filepath.Join(t.TempDir(), "missing.toml"))
	if cfg.Engine.MaxEditDistance != 4 {
		t.Error("missing file should yield defaults")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	cfg := Default()
	cfg.Engine.MaxTokens = 7

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Engine.MaxTokens != 7 {
		t.Errorf("expected round-tripped max tokens 7, got %d", loaded.Engine.MaxTokens)
	}
}
