// Package config models fieldline.yml, the per-workspace configuration.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const fileName = "fieldline.yml"

// Config is the workspace configuration for the CLI and the dev server.
type Config struct {
	Server struct {
		// BaseURL is the dispatch backend the client talks to.
		BaseURL string `yaml:"base_url"`
	} `yaml:"server"`
	Reports struct {
		// LinkBase is the public prefix for engineer report links; the
		// backend base URL is used when empty.
		LinkBase string `yaml:"link_base"`
	} `yaml:"reports"`
	Serve struct {
		// Addr is the listen address for `fl serve`.
		Addr string `yaml:"addr"`
	} `yaml:"serve"`
}

// Default returns the configuration used when no fieldline.yml exists.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.BaseURL = "http://127.0.0.1:8080"
	cfg.Serve.Addr = "127.0.0.1:8080"
	return cfg
}

// Path returns the config path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, fileName)
}

// Load reads the workspace config, falling back to defaults when the file
// does not exist.
func Load(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates a config document.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the config meets the required structure.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.BaseURL) == "" {
		return fmt.Errorf("config.server.base_url is required")
	}
	if !strings.HasPrefix(c.Server.BaseURL, "http://") && !strings.HasPrefix(c.Server.BaseURL, "https://") {
		return fmt.Errorf("config.server.base_url must be an http(s) URL")
	}
	return nil
}

// ReportLinkBase resolves the public report-link prefix.
func (c *Config) ReportLinkBase() string {
	if c.Reports.LinkBase != "" {
		return strings.TrimRight(c.Reports.LinkBase, "/")
	}
	return strings.TrimRight(c.Server.BaseURL, "/")
}

// Save writes the config to the workspace.
func (c *Config) Save(workspace string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(Path(workspace), data, 0o644)
}
