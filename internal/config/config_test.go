package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderGoogle {
		t.Errorf("expected default provider %q, got %q", ProviderGoogle, cfg.Provider)
	}
	if cfg.Model != "gemini-2.5-flash-image" {
		t.Errorf("expected default model gemini-2.5-flash-image, got %q", cfg.Model)
	}
	if cfg.CopyFeedbackDelay != 3*time.Second {
		t.Errorf("expected copy feedback delay 3s, got %s", cfg.CopyFeedbackDelay)
	}
	if cfg.MaxOutputTokens != 1024 {
		t.Errorf("expected max_output_tokens 1024, got %d", cfg.MaxOutputTokens)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.palmguru.yml")

	original := DefaultConfig()
	original.Provider = ProviderOpenAI
	original.Model = "gpt-4o"
	original.Quality = QualityMax
	original.Port = 9090
	original.CameraEnabled = false
	original.SessionTTL = 45 * time.Minute
	original.CopyFeedbackDelay = 1500 * time.Millisecond

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "session_ttl: 45m0s") {
		t.Errorf("expected duration written as string, got:\n%s", data)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.Quality != original.Quality {
		t.Errorf("quality: got %q, want %q", loaded.Quality, original.Quality)
	}
	if loaded.Port != original.Port {
		t.Errorf("port: got %d, want %d", loaded.Port, original.Port)
	}
	if loaded.CameraEnabled {
		t.Error("camera_enabled: got true, want false")
	}
	if loaded.SessionTTL != original.SessionTTL {
		t.Errorf("session_ttl: got %s, want %s", loaded.SessionTTL, original.SessionTTL)
	}
	if loaded.CopyFeedbackDelay != original.CopyFeedbackDelay {
		t.Errorf("copy_feedback_delay: got %s, want %s", loaded.CopyFeedbackDelay, original.CopyFeedbackDelay)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderGoogle {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("PALMGURU_PROVIDER", "openai")
	t.Setenv("PALMGURU_PORT", "7000")
	t.Setenv("PALMGURU_COPY_FEEDBACK_DELAY", "5s")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderOpenAI {
		t.Errorf("env override failed: got %q, want %q", loaded.Provider, ProviderOpenAI)
	}
	if loaded.Port != 7000 {
		t.Errorf("port override failed: got %d", loaded.Port)
	}
	if loaded.CopyFeedbackDelay != 5*time.Second {
		t.Errorf("delay override failed: got %s", loaded.CopyFeedbackDelay)
	}
}

func TestLoadProviderWithoutModelUsesPreset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")
	if err := os.WriteFile(path, []byte("provider: anthropic\nquality: lite\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Model != "claude-haiku-4-5-20251001" {
		t.Errorf("expected preset model, got %q", loaded.Model)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envPath, []byte("PALMGURU_RATE_LIMIT_RPM=12\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	orig := dotenvFiles
	dotenvFiles = []string{envPath}
	t.Cleanup(func() {
		dotenvFiles = orig
		os.Unsetenv("PALMGURU_RATE_LIMIT_RPM")
	})

	loaded, err := Load(filepath.Join(dir, "missing.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.RateLimitRPM != 12 {
		t.Errorf("expected rate limit from .env, got %d", loaded.RateLimitRPM)
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"invalid provider", func(c *Config) { c.Provider = "invalid" }},
		{"empty provider", func(c *Config) { c.Provider = "" }},
		{"empty model", func(c *Config) { c.Model = "" }},
		{"invalid quality", func(c *Config) { c.Quality = "ultra" }},
		{"zero tokens", func(c *Config) { c.MaxOutputTokens = 0 }},
		{"negative rpm", func(c *Config) { c.RateLimitRPM = -1 }},
		{"bad port", func(c *Config) { c.Port = 70000 }},
		{"zero upload limit", func(c *Config) { c.MaxUploadBytes = 0 }},
		{"negative camera", func(c *Config) { c.CameraDevice = -1 }},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }},
		{"zero copy delay", func(c *Config) { c.CopyFeedbackDelay = 0 }},
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetModel(t *testing.T) {
	if m := GetModel(ProviderAnthropic, QualityLite); m != "claude-haiku-4-5-20251001" {
		t.Errorf("expected haiku model, got %q", m)
	}
	if m := GetModel(ProviderOpenAI, QualityNormal); m != "gpt-4o" {
		t.Errorf("expected gpt-4o, got %q", m)
	}

	// Unknown combination falls back.
	if m := GetModel("unknown", QualityLite); m != "gemini-2.5-flash-image" {
		t.Errorf("expected fallback to gemini, got %q", m)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderGoogle, "GOOGLE_API_KEY"},
		{ProviderGenAI, "GOOGLE_API_KEY"},
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderOpenRouter, "OPENROUTER_API_KEY"},
		{ProviderOllama, ""},
	}
	for _, tt := range tests {
		got := APIKeyEnvVar(tt.provider)
		if got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestValidatePort(t *testing.T) {
	if err := validatePort("8080"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := validatePort("abc"); err == nil {
		t.Error("expected error for non-numeric port")
	}
	if err := validatePort("99999"); err == nil {
		t.Error("expected error for out-of-range port")
	}
}
