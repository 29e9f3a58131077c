package storage

import "os"

// envToken is checked before the stored credential so CI and one-off
// runs never have to write a token to disk.
const envToken = "GITMARKS_TOKEN"

// Credentials reads and clears the bearer token kept in the config
// file. It re-reads on every access so a token cleared by one code
// path is immediately gone for all of them.
type Credentials struct {
	configPath string
}

// NewCredentials creates a Credentials store over the given config file.
func NewCredentials(configPath string) *Credentials {
	return &Credentials{configPath: configPath}
}

// Token returns the current bearer token, or empty when none is
// configured.
func (c *Credentials) Token() string {
	if token := os.Getenv(envToken); token != "" {
		return token
	}
	config, err := LoadConfig(c.configPath)
	if err != nil {
		return ""
	}
	return config.Token
}

// Clear removes the stored token. Called when the remote rejects the
// credential, so the user is prompted to reconnect instead of seeing
// the same failure repeat.
func (c *Credentials) Clear() error {
	config, err := LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	config.Token = ""
	return SaveConfig(c.configPath, config)
}

// Set stores a new token.
func (c *Credentials) Set(token string) error {
	config, err := LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	config.Token = token
	return SaveConfig(c.configPath, config)
}
