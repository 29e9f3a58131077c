package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/gitmarks/gitmarks/internal/storage"
)

func TestCredentials_SetAndToken(t *testing.T) {
	t.Setenv("GITMARKS_TOKEN", "")
	configPath := filepath.Join(t.TempDir(), "config.json")

	creds := storage.NewCredentials(configPath)
	if creds.Token() != "" {
		t.Error("expected empty token before Set")
	}

	if err := creds.Set("ghp_stored"); err != nil {
		t.Fatalf("failed to set token: %v", err)
	}
	if got := creds.Token(); got != "ghp_stored" {
		t.Errorf("expected stored token, got %q", got)
	}
}

func TestCredentials_EnvTakesPrecedence(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")

	creds := storage.NewCredentials(configPath)
	if err := creds.Set("ghp_stored"); err != nil {
		t.Fatalf("failed to set token: %v", err)
	}

	t.Setenv("GITMARKS_TOKEN", "ghp_env")
	if got := creds.Token(); got != "ghp_env" {
		t.Errorf("expected env token to win, got %q", got)
	}
}

func TestCredentials_Clear(t *testing.T) {
	t.Setenv("GITMARKS_TOKEN", "")
	configPath := filepath.Join(t.TempDir(), "config.json")

	creds := storage.NewCredentials(configPath)
	if err := creds.Set("ghp_stored"); err != nil {
		t.Fatalf("failed to set token: %v", err)
	}

	if err := creds.Clear(); err != nil {
		t.Fatalf("failed to clear token: %v", err)
	}
	if got := creds.Token(); got != "" {
		t.Errorf("expected empty token after clear, got %q", got)
	}

	// Clearing must not wipe the rest of the config.
	config, err := storage.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if config.Branch != "main" {
		t.Errorf("expected config defaults intact, got branch %q", config.Branch)
	}
}

func TestCredentials_SharedAcrossInstances(t *testing.T) {
	t.Setenv("GITMARKS_TOKEN", "")
	configPath := filepath.Join(t.TempDir(), "config.json")

	a := storage.NewCredentials(configPath)
	b := storage.NewCredentials(configPath)

	if err := a.Set("ghp_stored"); err != nil {
		t.Fatalf("failed to set token: %v", err)
	}
	if err := b.Clear(); err != nil {
		t.Fatalf("failed to clear token: %v", err)
	}
	if got := a.Token(); got != "" {
		t.Errorf("expected clear visible to every instance, got %q", got)
	}
}
