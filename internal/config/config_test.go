package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	if err := Init(v, ""); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "Qwen/Qwen2.5-7B-Instruct" {
		t.Errorf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.LLM.Timeout != 120*time.Second {
		t.Errorf("expected 120s timeout, got %s", cfg.LLM.Timeout)
	}
	if cfg.LLM.MaxRetries != 1 {
		t.Errorf("expected 1 retry, got %d", cfg.LLM.MaxRetries)
	}
	if cfg.Translation.TgtLang != "Traditional Chinese" || cfg.Translation.BatchSize != 10 {
		t.Errorf("unexpected translation defaults: %+v", cfg.Translation)
	}
	if cfg.Server.Port != 5000 || cfg.Session.WorkDir != "work_session" {
		t.Errorf("unexpected defaults: port=%d work_dir=%s", cfg.Server.Port, cfg.Session.WorkDir)
	}
}

func TestLoad_LegacyEnv(t *testing.T) {
	t.Setenv("LLM_API_URL", "http://localhost:9000/v1")
	t.Setenv("LLM_MODEL", "local-model")

	v := viper.New()
	if err := Init(v, ""); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.BaseURL != "http://localhost:9000/v1" {
		t.Errorf("LLM_API_URL not applied: %q", cfg.LLM.BaseURL)
	}
	if cfg.LLM.Model != "local-model" {
		t.Errorf("LLM_MODEL not applied: %q", cfg.LLM.Model)
	}
}

func TestLoad_PrefixedEnvWins(t *testing.T) {
	t.Setenv("LLM_MODEL", "legacy")
	t.Setenv("EBT_LLM_MODEL", "prefixed")

	v := viper.New()
	Init(v, "")
	cfg, _ := Load(v)
	if cfg.LLM.Model != "prefixed" {
		t.Errorf("expected prefixed env to win, got %q", cfg.LLM.Model)
	}
}

func TestLoad_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  provider: gemini
  timeout: 30s
  rate_limit: 2.5
translation:
  batch_size: 4
server:
  port: 8080
`
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	if err := Init(v, p); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.Provider != "gemini" || cfg.LLM.Timeout != 30*time.Second || cfg.LLM.RateLimit != 2.5 {
		t.Errorf("file values not applied: %+v", cfg.LLM)
	}
	if cfg.Translation.BatchSize != 4 || cfg.Server.Port != 8080 {
		t.Errorf("file values not applied: batch=%d port=%d", cfg.Translation.BatchSize, cfg.Server.Port)
	}
	// Untouched keys keep their defaults.
	if cfg.Translation.SrcLang != "Japanese" {
		t.Errorf("expected default src lang, got %q", cfg.Translation.SrcLang)
	}
}

func TestInit_MissingFile(t *testing.T) {
	v := viper.New()
	if err := Init(v, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
