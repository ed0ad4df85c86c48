package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MARITACA_API_KEY", "")
	t.Setenv("OBITOS_API_KEY", "")
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DefaultProvider != "maritaca" || c.DefaultModel != "sabia-3" {
		t.Fatalf("provider defaults: %+v", c)
	}
	if c.MaxTokens != 500 || c.FreeTextMaxTokens != 200 || c.RetryMaxAttempts != 1 {
		t.Fatalf("token/retry defaults: %+v", c)
	}
	if c.YearFrom != 2019 || c.YearTo != 2023 || c.City != "Franca" || c.Delim() != ';' {
		t.Fatalf("dataset defaults: %+v", c)
	}
	if filepath.Base(c.HistoryPath) != "history.json" {
		t.Fatalf("history path: %q", c.HistoryPath)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("language: en\nyear_from: 2020\ndelimiter: tab\napi_key: from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OBITOS_CITY", "Ribeirão Preto")
	t.Setenv("MARITACA_API_KEY", "mk")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OBITOS_API_KEY", "")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Language != "en" || c.YearFrom != 2020 || c.Delim() != '\t' {
		t.Fatalf("file values: %+v", c)
	}
	if c.City != "Ribeirão Preto" {
		t.Fatalf("env override: %q", c.City)
	}
	if c.KeyFor("maritaca") != "mk" || c.KeyFor("openrouter") != "from-file" {
		t.Fatalf("keys: maritaca=%q openrouter=%q", c.KeyFor("maritaca"), c.KeyFor("openrouter"))
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MARITACA_API_KEY", "secret-env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.Language = "en"
	c.MaxTokens = 300
	if err := Save(c, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(raw); strings.Contains(got, "secret-env") {
		t.Fatalf("environment key must not be persisted:\n%s", got)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Language != "en" || again.MaxTokens != 300 {
		t.Fatalf("reloaded: %+v", again)
	}
}
