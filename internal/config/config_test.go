package config

import (
	"os"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OLLAMA_URL", "MODEL", "DORMCTL_VENV", "DORMCTL_DB", "DORMCTL_PYTHON", "DORMCTL_READY_TIMEOUT_SEC", "DORMCTL_LOG_LEVEL"} {
		os.Unsetenv(k)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.OllamaURL != "http://localhost:11434" {
		t.Fatalf("default endpoint: %q", cfg.OllamaURL)
	}
	if cfg.Model != "llama3.1" {
		t.Fatalf("default model: %q", cfg.Model)
	}
	if cfg.DBPath != "dormitory.db" || cfg.VenvDir != ".venv" {
		t.Fatalf("default paths: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OLLAMA_URL", "http://10.0.2.2:11434")
	t.Setenv("MODEL", "mistral")
	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.OllamaURL != "http://10.0.2.2:11434" || cfg.Model != "mistral" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	// untouched fields keep defaults
	if cfg.DBPath != "dormitory.db" {
		t.Fatalf("db path clobbered: %q", cfg.DBPath)
	}
}

func TestApplyEnvUnsetKeepsDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.OllamaURL != "http://localhost:11434" || cfg.Model != "llama3.1" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestBackendClassification(t *testing.T) {
	cases := []struct {
		url  string
		want Backend
	}{
		{"http://localhost:11434", BackendLocal},
		{"http://127.0.0.1:11434", BackendLocal},
		{"http://[::1]:11434", BackendLocal},
		{"http://LOCALHOST:11434", BackendLocal},
		{"http://10.0.2.2:11434", BackendRemote},
		{"http://ollama.example.com", BackendRemote},
		{"http://192.168.1.10:11434", BackendRemote},
	}
	for _, c := range cases {
		cfg := Config{OllamaURL: c.url}
		if got := cfg.Backend(); got != c.want {
			t.Fatalf("%s: got %v want %v", c.url, got, c.want)
		}
	}
}

func TestMergeOverlaysNonZero(t *testing.T) {
	cfg := Default()
	cfg.Merge(Config{Model: "phi3", ReadyTimeoutSec: 60})
	if cfg.Model != "phi3" || cfg.ReadyTimeoutSec != 60 {
		t.Fatalf("merge: %+v", cfg)
	}
	if cfg.OllamaURL != "http://localhost:11434" {
		t.Fatalf("merge clobbered endpoint: %q", cfg.OllamaURL)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error on empty model")
	}
	cfg = Default()
	cfg.OllamaURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error on empty endpoint")
	}
	cfg = Default()
	cfg.ReadyTimeoutSec = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error on zero timeout")
	}
}
