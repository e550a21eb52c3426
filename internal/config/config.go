// Package config loads CLI settings from an HCL file and the environment.
//
// Example file (~/.agentic-research/notional/config.hcl):
//
//	token       = "secret_..."
//	api_version = "2022-06-28"
//	log_level   = "debug"
//	page_size   = 50
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/agentic-research/notional/internal/transport"
)

// Environment variables that override the file.
const (
	EnvToken      = "NOTION_AUTH_TOKEN"
	EnvAPIVersion = "NOTION_API_VERSION"
	EnvBaseURL    = "NOTION_BASE_URL"
)

// Config holds everything needed to reach the API.
type Config struct {
	Token      string `hcl:"token,optional"`
	BaseURL    string `hcl:"base_url,optional"`
	APIVersion string `hcl:"api_version,optional"`
	LogLevel   string `hcl:"log_level,optional"`
	PageSize   int    `hcl:"page_size,optional"`
	ExportPath string `hcl:"export_path,optional"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		BaseURL:    transport.DefaultBaseURL,
		APIVersion: transport.DefaultAPIVersion,
		LogLevel:   "info",
		PageSize:   100,
		ExportPath: "notional.db",
	}
}

// DefaultPath returns ~/.agentic-research/notional/config.hcl.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, ".agentic-research", "notional", "config.hcl"), nil
}

// Load reads path over the defaults and applies environment overrides.
// An empty path means DefaultPath, which may be absent.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	c := Default()
	src, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := c.decode(path, src); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) decode(filename string, src []byte) error {
	var file Config
	if err := hclsimple.Decode(filename, src, nil, &file); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	c.merge(&file)
	return nil
}

// merge copies the fields set in o.
func (c *Config) merge(o *Config) {
	if o.Token != "" {
		c.Token = o.Token
	}
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.APIVersion != "" {
		c.APIVersion = o.APIVersion
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.PageSize != 0 {
		c.PageSize = o.PageSize
	}
	if o.ExportPath != "" {
		c.ExportPath = o.ExportPath
	}
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvToken); ok && v != "" {
		c.Token = v
	}
	if v, ok := os.LookupEnv(EnvAPIVersion); ok && v != "" {
		c.APIVersion = v
	}
	if v, ok := os.LookupEnv(EnvBaseURL); ok && v != "" {
		c.BaseURL = v
	}
	if v, ok := os.LookupEnv("NOTION_PAGE_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NOTION_PAGE_SIZE: %w", err)
		}
		c.PageSize = n
	}
	return nil
}

// Validate reports settings the client cannot run with.
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("no API token: set token in the config file or %s", EnvToken)
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("page_size %d out of range 1..100", c.PageSize)
	}
	if c.BaseURL == "" {
		return errors.New("base_url is empty")
	}
	return nil
}
