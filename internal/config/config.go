// Package config provides configuration file parsing for pkgdrift.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/pkgdrift/internal/pkgutil"
)

// Dir returns the pkgdrift config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/pkgdrift if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "pkgdrift"), nil
}

// Config holds host-level settings. Everything is optional; zero values
// fall back to the standard macOS locations.
type Config struct {
	PkgutilPath   string `yaml:"pkgutil_path,omitempty"`
	InstallerPath string `yaml:"installer_path,omitempty"`
	DBPath        string `yaml:"db_path,omitempty"`
	ReceiptsDir   string `yaml:"receipts_dir,omitempty"`
}

// Load reads {dir}/config.yaml. If the file does not exist, an empty config
// is returned without an error.
func Load(dir string) (*Config, error) {
	cfg := &Config{}

	path := filepath.Join(dir, "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// Tool returns the external tool locations with defaults applied.
func (c *Config) Tool() pkgutil.Tool {
	tool := pkgutil.DefaultTool()
	if c.PkgutilPath != "" {
		tool.PkgutilPath = c.PkgutilPath
	}
	if c.InstallerPath != "" {
		tool.InstallerPath = c.InstallerPath
	}
	return tool
}

// Receipts returns the receipt database directory to watch for drift.
// Defaults to the system receipt store.
func (c *Config) Receipts() string {
	if c.ReceiptsDir != "" {
		return c.ReceiptsDir
	}
	return "/var/db/receipts"
}
