package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
api:
  endpoint: https://store.example.com
  key_id: my-key
  secret_key: my-secret
  timeout_seconds: 60
  max_retries: 5

files:
  root: ./objects

export:
  concurrency: 8

import:
  safe_mode: true

logging:
  level: debug
  format: json
  output: stdout
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.API.Endpoint != "https://store.example.com" {
		t.Errorf("unexpected endpoint: %s", cfg.API.Endpoint)
	}
	if cfg.API.TimeoutSec != 60 {
		t.Errorf("expected timeout 60, got %d", cfg.API.TimeoutSec)
	}
	if cfg.API.MaxRetries != 5 {
		t.Errorf("expected max_retries 5, got %d", cfg.API.MaxRetries)
	}
	if cfg.Files.Root != "./objects" {
		t.Errorf("unexpected files root: %s", cfg.Files.Root)
	}
	if cfg.Export.Concurrency != 8 {
		t.Errorf("expected concurrency 8, got %d", cfg.Export.Concurrency)
	}
	if !cfg.Import.SafeMode {
		t.Error("expected safe_mode true")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoad_DefaultsFillGaps(t *testing.T) {
	path := writeConfig(t, `
api:
  key_id: my-key
  secret_key: my-secret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	defaults := DefaultConfig()
	if cfg.API.TimeoutSec != defaults.API.TimeoutSec {
		t.Errorf("expected default timeout, got %d", cfg.API.TimeoutSec)
	}
	if cfg.Export.Concurrency != defaults.Export.Concurrency {
		t.Errorf("expected default concurrency, got %d", cfg.Export.Concurrency)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("TEST_SYNC_KEY", "key-from-env")
	t.Setenv("TEST_SYNC_SECRET", "secret-from-env")

	path := writeConfig(t, `
api:
  key_id: ${TEST_SYNC_KEY}
  secret_key: $TEST_SYNC_SECRET
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.API.KeyID != "key-from-env" {
		t.Errorf("expected ${VAR} substitution, got %s", cfg.API.KeyID)
	}
	if cfg.API.SecretKey != "secret-from-env" {
		t.Errorf("expected $VAR substitution, got %s", cfg.API.SecretKey)
	}
}

func TestLoad_MissingEnvVarKeptVerbatim(t *testing.T) {
	path := writeConfig(t, `
api:
  key_id: ${DEFINITELY_NOT_SET_ANYWHERE}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.API.KeyID != "${DEFINITELY_NOT_SET_ANYWHERE}" {
		t.Errorf("unset variables stay verbatim, got %s", cfg.API.KeyID)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/no/such/path.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.KeyID = "k"
	cfg.API.SecretKey = "s"

	if problems := cfg.Validate(); len(problems) != 0 {
		t.Errorf("expected valid config, got %v", problems)
	}
}

func TestValidate_MissingCredentials(t *testing.T) {
	cfg := DefaultConfig()

	problems := cfg.Validate()
	if len(problems) < 2 {
		t.Errorf("expected missing key_id and secret_key to be reported, got %v", problems)
	}
}

func TestValidate_BadEndpointAndLevels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.KeyID = "k"
	cfg.API.SecretKey = "s"
	cfg.API.Endpoint = "not a url"
	cfg.Logging.Level = "loud"
	cfg.Logging.Format = "xml"

	problems := cfg.Validate()
	if len(problems) != 3 {
		t.Errorf("expected 3 problems, got %d: %v", len(problems), problems)
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := DefaultConfig()

	cfg.ApplyOverrides("debug", "json", "/tmp/objects", 16, true)

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging overrides not applied: %+v", cfg.Logging)
	}
	if cfg.Files.Root != "/tmp/objects" {
		t.Errorf("files root override not applied: %s", cfg.Files.Root)
	}
	if cfg.Export.Concurrency != 16 {
		t.Errorf("concurrency override not applied: %d", cfg.Export.Concurrency)
	}
	if !cfg.Import.SafeMode {
		t.Error("safe mode override not applied")
	}

	// Zero values leave existing settings alone.
	cfg.ApplyOverrides("", "", "", 0, false)
	if cfg.Logging.Level != "debug" || cfg.Export.Concurrency != 16 {
		t.Error("zero-value overrides must not reset configuration")
	}
}
