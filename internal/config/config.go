// Package config loads git-force-prefix settings from a TOML file and the
// environment. Command-line flags are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

const (
	// RepoConfigFile is looked up inside the repository's .git directory.
	RepoConfigFile = "force-prefix.toml"
	// UserConfigDir is the directory under the user config dir.
	UserConfigDir  = "git-force-prefix"
	UserConfigFile = "config.toml"

	DefaultRadius = 86400
)

// ErrInvalidConfig is wrapped by every error about a bad setting value.
var ErrInvalidConfig = errors.New("invalid config")

// Output formats for a found match.
const (
	FormatCommand = "command"
	FormatEnv     = "env"
	FormatJSON    = "json"
)

// Config holds search and output settings.
type Config struct {
	Radius        uint64 `toml:"radius"`
	Workers       int    `toml:"workers"` // 0 means one per CPU
	OffsetSteps   int    `toml:"offset_steps"`
	ForwardOnly   bool   `toml:"forward_only"`
	PreserveOrder bool   `toml:"preserve_order"`
	Format        string `toml:"format"`
	LogLevel      string `toml:"log_level"`
	path          string // file the config was read from, if any
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Radius:        DefaultRadius,
		PreserveOrder: true,
		Format:        FormatCommand,
		LogLevel:      "warn",
	}
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// Load returns the defaults overlaid with the first config file found and
// then the environment. An explicit path must exist; the other locations
// are optional. The result is not validated, so that command-line flags can
// still replace bad values; callers run Validate once flags are applied.
func Load(explicit, gitDir string) (*Config, error) {
	cfg := Default()

	path, err := findConfig(explicit, gitDir)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfig returns the config file to read, or "" if there is none.
func findConfig(explicit, gitDir string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	var candidates []string
	if gitDir != "" {
		candidates = append(candidates, filepath.Join(gitDir, RepoConfigFile))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, UserConfigDir, UserConfigFile))
	}
	for _, p := range candidates {
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to stat config %s: %w", p, err)
		}
	}
	return "", nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, path, err)
	}
	c.path = path
	return nil
}

// applyEnv overrides settings from GFP_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("GFP_RADIUS"); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: GFP_RADIUS: %v", ErrInvalidConfig, err)
		}
		c.Radius = n
	}
	if v, ok := lookup("GFP_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: GFP_WORKERS: %v", ErrInvalidConfig, err)
		}
		c.Workers = n
	}
	if v, ok := lookup("GFP_OFFSET_STEPS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: GFP_OFFSET_STEPS: %v", ErrInvalidConfig, err)
		}
		c.OffsetSteps = n
	}
	if v, ok := lookup("GFP_FORMAT"); ok && v != "" {
		c.Format = v
	}
	if v, ok := lookup("GFP_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks that settings are in range.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.OffsetSteps < 0 {
		return fmt.Errorf("%w: offset_steps must not be negative, got %d", ErrInvalidConfig, c.OffsetSteps)
	}
	switch c.Format {
	case FormatCommand, FormatEnv, FormatJSON:
	default:
		return fmt.Errorf("%w: unknown format %q (want command, env or json)", ErrInvalidConfig, c.Format)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q (want debug, info, warn or error)", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// Save writes the config as TOML to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
