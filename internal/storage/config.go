package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds application configuration.
type Config struct {
	// Token is the bearer credential for the remote service. The
	// GITMARKS_TOKEN environment variable takes precedence when set.
	Token string `json:"token,omitempty"`
	// APIBaseURL overrides the remote API endpoint. Empty selects the
	// public GitHub API.
	APIBaseURL string `json:"apiBaseUrl,omitempty"`

	// Owner/Repo/Branch identify the repository collection for
	// path-in-repo shares.
	Owner  string `json:"owner,omitempty"`
	Repo   string `json:"repo,omitempty"`
	Branch string `json:"branch"`

	Author       string `json:"author,omitempty"`
	Public       bool   `json:"public"`
	IncludeTags  bool   `json:"includeTags"`
	IncludeNotes bool   `json:"includeNotes"`

	// DebounceMs is how long the dispatcher coalesces sync intents for
	// the same folder before executing.
	DebounceMs int `json:"debounceMs"`
	// SyncConcurrency bounds the sync-all worker pool.
	SyncConcurrency int `json:"syncConcurrency"`
	// OrphanExcludes lists JSON file names the reconciler must never
	// treat as snapshot candidates.
	OrphanExcludes []string `json:"orphanExcludes"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Branch:          "main",
		IncludeTags:     true,
		IncludeNotes:    true,
		DebounceMs:      500,
		SyncConcurrency: 4,
		OrphanExcludes: []string{
			"package.json",
			"package-lock.json",
			"tsconfig.json",
			"composer.json",
			"manifest.json",
			"bookmarks.json",
		},
	}
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Create the config file with defaults
			if saveErr := SaveConfig(path, &config); saveErr != nil {
				// Non-fatal: return defaults even if save fails
				return &config, nil
			}
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Apply defaults for missing fields
	defaults := DefaultConfig()
	if config.Branch == "" {
		config.Branch = defaults.Branch
	}
	if config.DebounceMs <= 0 {
		config.DebounceMs = defaults.DebounceMs
	}
	if config.SyncConcurrency <= 0 {
		config.SyncConcurrency = defaults.SyncConcurrency
	}
	if config.OrphanExcludes == nil {
		config.OrphanExcludes = defaults.OrphanExcludes
	}

	return &config, nil
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigFilePath returns the default config path:
// ~/.config/gitmarks/config.json
func DefaultConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}
