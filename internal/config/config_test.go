package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.Environments) != 0 {
		t.Fatalf("Environments = %v, want empty", cfg.Environments)
	}
	if cfg.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", cfg.Theme, defaultTheme)
	}
	if cfg.Vim {
		t.Fatalf("Vim = true, want false by default")
	}
}

func TestLoad_ParsesConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`
environments = ["https://a.crm.dynamics.com", "https://b.crm.dynamics.com"]
current_env = "https://b.crm.dynamics.com"
vim = true
theme = "Nord"
`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.Environments) != 2 || cfg.Environments[1] != "https://b.crm.dynamics.com" {
		t.Fatalf("Environments = %v, want 2 entries", cfg.Environments)
	}
	if cfg.CurrentEnv != "https://b.crm.dynamics.com" {
		t.Fatalf("CurrentEnv = %q, want b", cfg.CurrentEnv)
	}
	if !cfg.Vim {
		t.Fatalf("Vim = false, want true")
	}
	if cfg.Theme != "Nord" {
		t.Fatalf("Theme = %q, want Nord", cfg.Theme)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`environments = [`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	want := Config{
		Environments: []string{"https://org.crm.dynamics.com"},
		CurrentEnv:   "https://org.crm.dynamics.com",
		Vim:          true,
		Theme:        "Dracula",
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got.CurrentEnv != want.CurrentEnv || got.Vim != want.Vim || got.Theme != want.Theme {
		t.Fatalf("round trip = %#v, want %#v", got, want)
	}
	if len(got.Environments) != 1 || got.Environments[0] != want.Environments[0] {
		t.Fatalf("Environments = %v, want %v", got.Environments, want.Environments)
	}
}

func TestAddEnvironment_DedupesAndNormalizes(t *testing.T) {
	var cfg Config

	cfg.AddEnvironment("https://org.crm.dynamics.com/")
	cfg.AddEnvironment("  https://org.crm.dynamics.com  ")
	cfg.AddEnvironment("https://other.crm.dynamics.com")

	if len(cfg.Environments) != 2 {
		t.Fatalf("Environments = %v, want 2 entries", cfg.Environments)
	}
	if cfg.Environments[0] != "https://org.crm.dynamics.com" {
		t.Fatalf("Environments[0] = %q, want trailing slash stripped", cfg.Environments[0])
	}
	if cfg.CurrentEnv != "https://other.crm.dynamics.com" {
		t.Fatalf("CurrentEnv = %q, want latest added", cfg.CurrentEnv)
	}

	cfg.AddEnvironment("")
	if len(cfg.Environments) != 2 {
		t.Fatalf("empty URL should be ignored, got %v", cfg.Environments)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
