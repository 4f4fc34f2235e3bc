package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("provider = %q, want openai", cfg.Provider)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Store.MaxCachedIndexes != 10 {
		t.Errorf("max cached indexes = %d, want 10", cfg.Store.MaxCachedIndexes)
	}
	if cfg.Store.ChunkSize != 1500 || cfg.Store.ChunkOverlap != 200 {
		t.Errorf("chunking = (%d, %d), want (1500, 200)", cfg.Store.ChunkSize, cfg.Store.ChunkOverlap)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `provider: ollama
model: llama3
data_dir: /tmp/study
server:
  port: 9999
store:
  max_cached_indexes: 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != ProviderOllama || cfg.Model != "llama3" {
		t.Errorf("provider/model = %q/%q", cfg.Provider, cfg.Model)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Store.MaxCachedIndexes != 3 {
		t.Errorf("max cached indexes = %d, want 3", cfg.Store.MaxCachedIndexes)
	}
	// Unset keys keep their defaults.
	if cfg.Store.ChunkSize != 1500 {
		t.Errorf("chunk size = %d, want default 1500", cfg.Store.ChunkSize)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STUDYASSIST_MODEL", "gpt-4.1")
	t.Setenv("STUDYASSIST_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("STUDYASSIST_SERVER__PORT", "7070")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "gpt-4.1" {
		t.Errorf("model = %q, want env override", cfg.Model)
	}
	if cfg.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("base url = %q, want env override", cfg.BaseURL)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want 7070", cfg.Server.Port)
	}
}

func TestAPIKeyFallsBackToOpenAIEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "sk-test" {
		t.Errorf("api key = %q, want the OPENAI_API_KEY value", cfg.APIKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"missing provider", func(c *Config) { c.Provider = "" }, true},
		{"bad provider", func(c *Config) { c.Provider = "bard" }, true},
		{"missing model", func(c *Config) { c.Model = "" }, true},
		{"missing data dir", func(c *Config) { c.DataDir = "" }, true},
		{"zero cache", func(c *Config) { c.Store.MaxCachedIndexes = 0 }, true},
		{"overlap too large", func(c *Config) { c.Store.ChunkOverlap = c.Store.ChunkSize }, true},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		if err := cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := DefaultConfig()
	cfg.Model = "custom-model"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Model != "custom-model" {
		t.Errorf("model = %q, want custom-model", loaded.Model)
	}
}
