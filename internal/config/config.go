// Package config loads braindrive.yaml and the auth environment for the
// bdkeys client.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the config file inside the bdkeys home directory.
	FileName = "braindrive.yaml"

	// DefaultServer is the local BrainDrive backend.
	DefaultServer = "http://localhost:8005"

	// DefaultTokenEnv is the env var holding the backend access token.
	DefaultTokenEnv = "BRAINDRIVE_TOKEN"
)

// Config is the top-level structure of braindrive.yaml.
type Config struct {
	Server   string `yaml:"server,omitempty"`    // backend base URL
	TokenEnv string `yaml:"token_env,omitempty"` // env var containing the access token
	Theme    string `yaml:"theme,omitempty"`     // light | dark
}

// Default returns a Config with all defaults applied.
func Default() *Config {
	return &Config{Server: DefaultServer, TokenEnv: DefaultTokenEnv, Theme: "light"}
}

// Load reads braindrive.yaml from dir, fills defaults for absent fields,
// and loads a sibling .env file into the process environment when one
// exists (existing env vars win). A missing config file yields defaults.
func Load(dir string) (*Config, error) {
	// .env loading never overrides the real environment.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	cfg := Default()
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.TokenEnv == "" {
		cfg.TokenEnv = DefaultTokenEnv
	}
	if cfg.Theme == "" {
		cfg.Theme = "light"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the config for structural errors. It collects all
// problems rather than returning on the first failure.
func (c *Config) Validate() error {
	var errs []string

	u, err := url.Parse(c.Server)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("server %q is not a valid URL", c.Server))
	}

	switch c.Theme {
	case "", "light", "dark":
	default:
		errs = append(errs, fmt.Sprintf("theme %q must be light or dark", c.Theme))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ResolveToken returns the backend access token. The configured env var is
// consulted; BRAINDRIVE_TOKEN acts as a fallback when a custom var is
// unset. An empty result means cookie/no auth.
func (c *Config) ResolveToken() string {
	envVar := c.TokenEnv
	if envVar == "" {
		envVar = DefaultTokenEnv
	}
	if tok := os.Getenv(envVar); tok != "" {
		return tok
	}
	if envVar != DefaultTokenEnv {
		return os.Getenv(DefaultTokenEnv)
	}
	return ""
}
