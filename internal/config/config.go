// Package config provides reading and writing of sopstory configuration.
// Supports both global (~/.sopstory/config.yaml) and local (.sopstory/config.yaml).
// Reading: uses local if it exists, otherwise global.
// Writing: defaults to global, use --local for local.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jpl-au/sopstory/internal/path"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrUnknownKey is returned when getting/setting an unknown config key.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue is returned when a config value is invalid.
	ErrInvalidValue = errors.New("invalid config value")
)

// Dir is the name of the per-project and per-user configuration directory.
const Dir = ".sopstory"

// Scope represents the configuration scope (global or local).
type Scope int

const (
	// ScopeGlobal is user-wide config in ~/.sopstory/config.yaml (default)
	ScopeGlobal Scope = iota
	// ScopeLocal is project-specific config in .sopstory/config.yaml
	ScopeLocal
)

// Author represents the author metadata recorded with published versions.
type Author struct {
	Name  string `yaml:"name,omitempty"`
	Email string `yaml:"email,omitempty"`
}

// Paths configures reference normalisation.
type Paths struct {
	Staging string   `yaml:"staging,omitempty"`
	Folders []string `yaml:"folders,omitempty"`
	// Base overrides the ascent prefix. Empty derives it from the player
	// output path.
	Base string `yaml:"base,omitempty"`
}

// Check configures existence checking during validation.
type Check struct {
	Files             *bool  `yaml:"files,omitempty"`
	ImageRoot         string `yaml:"image_root,omitempty"`
	SupplementaryRoot string `yaml:"supplementary_root,omitempty"`
}

// Validation configures the document validator.
type Validation struct {
	Reachability *bool    `yaml:"reachability,omitempty"`
	Denylist     []string `yaml:"denylist,omitempty"`
}

// Player configures the player builder.
type Player struct {
	Template   string `yaml:"template,omitempty"`
	ImageWidth *int   `yaml:"image_width,omitempty"`
	ExitHref   string `yaml:"exit_href,omitempty"`
}

// Limits holds size limit configuration options.
type Limits struct {
	MaxContent *int64 `yaml:"max_content,omitempty"`
}

// Defaults applied when not configured.
const (
	DefaultMaxContent = 10 * 1024 * 1024 // 10 MB
	DefaultImageWidth = 65
	DefaultExitHref   = "index.html"
	PlayersDir        = "players"
)

// Validation bounds for configuration values.
const (
	MinMaxContent = 1
	MaxMaxContent = 1024 * 1024 * 1024 // 1 GB
	MinImageWidth = 1
	MaxImageWidth = 100
)

// Config contains configuration for sopstory.
type Config struct {
	Author     Author     `yaml:"author,omitempty"`
	Paths      Paths      `yaml:"paths,omitempty"`
	Check      Check      `yaml:"check,omitempty"`
	Validation Validation `yaml:"validate,omitempty"`
	Player     Player     `yaml:"player,omitempty"`
	Limits     Limits     `yaml:"limits,omitempty"`

	// path is the file this config was loaded from (for Save)
	path  string
	scope Scope
}

// Validate checks that all configured values are within acceptable bounds.
// Returns nil if all values are valid or not set (defaults will be used).
func (c *Config) Validate() error {
	if c.Limits.MaxContent != nil {
		v := *c.Limits.MaxContent
		if v < MinMaxContent || v > MaxMaxContent {
			return fmt.Errorf("%w: max_content must be between %d and %d, got %d",
				ErrInvalidValue, MinMaxContent, MaxMaxContent, v)
		}
	}
	if c.Player.ImageWidth != nil {
		v := *c.Player.ImageWidth
		if v < MinImageWidth || v > MaxImageWidth {
			return fmt.Errorf("%w: image_width must be between %d and %d, got %d",
				ErrInvalidValue, MinImageWidth, MaxImageWidth, v)
		}
	}
	return nil
}

// Staging returns the staging-root token (defaults to "outputs").
func (c *Config) Staging() string {
	if c.Paths.Staging == "" {
		return path.DefaultStaging
	}
	return c.Paths.Staging
}

// Folders returns the bare category folders (defaults to faq, quiz).
func (c *Config) Folders() []string {
	if len(c.Paths.Folders) == 0 {
		return append([]string(nil), path.DefaultFolders...)
	}
	return append([]string(nil), c.Paths.Folders...)
}

// PathOptions returns normalisation options. The configured base wins;
// otherwise base is used, and when that is empty too the default ascent.
func (c *Config) PathOptions(base string) path.Options {
	if c.Paths.Base != "" {
		base = c.Paths.Base
	}
	if base == "" {
		base = path.DefaultBase
	}
	return path.Options{Staging: c.Staging(), Base: base, Folders: c.Folders()}
}

// CheckFiles returns whether existence checking is on (defaults to false).
func (c *Config) CheckFiles() bool {
	if c.Check.Files == nil {
		return false
	}
	return *c.Check.Files
}

// ImageRoot returns the root image references resolve under (defaults to
// the players directory inside the staging root).
func (c *Config) ImageRoot() string {
	if c.Check.ImageRoot == "" {
		return filepath.ToSlash(filepath.Join(c.Staging(), PlayersDir))
	}
	return c.Check.ImageRoot
}

// SupplementaryRoot returns the root supplementary references resolve under
// (defaults to the staging root).
func (c *Config) SupplementaryRoot() string {
	if c.Check.SupplementaryRoot == "" {
		return c.Staging()
	}
	return c.Check.SupplementaryRoot
}

// Reachability returns whether unreachable-step warnings are on (defaults
// to false).
func (c *Config) Reachability() bool {
	if c.Validation.Reachability == nil {
		return false
	}
	return *c.Validation.Reachability
}

// Denylist returns the configured corruption sequences, or nil for the
// built-in list.
func (c *Config) Denylist() []string {
	return c.Validation.Denylist
}

// ImageWidth returns the player image width in percent (defaults to 65).
func (c *Config) ImageWidth() int {
	if c.Player.ImageWidth == nil {
		return DefaultImageWidth
	}
	return *c.Player.ImageWidth
}

// ExitHref returns the player exit link (defaults to index.html).
func (c *Config) ExitHref() string {
	if c.Player.ExitHref == "" {
		return DefaultExitHref
	}
	return c.Player.ExitHref
}

// MaxContent returns the maximum encoded story size in bytes (defaults to 10 MB).
func (c *Config) MaxContent() int64 {
	if c.Limits.MaxContent == nil {
		return DefaultMaxContent
	}
	return *c.Limits.MaxContent
}

// LocalPath returns the path to the local (project) config file.
func LocalPath() string {
	return filepath.Join(Dir, "config.yaml")
}

// GlobalPath returns the path to the global (user) config file: ~/.sopstory/config.yaml
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, Dir, "config.yaml")
}

// Load reads configuration: uses local if it exists, otherwise global.
func Load() (*Config, error) {
	if _, err := os.Stat(LocalPath()); err == nil {
		return LoadScope(ScopeLocal)
	}
	return LoadScope(ScopeGlobal)
}

// LoadScope reads configuration from a specific scope.
func LoadScope(scope Scope) (*Config, error) {
	return LoadFile(pathForScope(scope), scope)
}

// LoadFile reads configuration from an explicit file. A missing file yields
// an empty config bound to that path.
func LoadFile(path string, scope Scope) (*Config, error) {
	if path == "" {
		return &Config{scope: scope}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{path: path, scope: scope}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed config file %s: %w\n\nTo fix: edit the file to correct the YAML syntax, or delete it to use defaults", path, err)
	}
	cfg.path = path
	cfg.scope = scope

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Scope returns which scope this config was loaded from.
func (c *Config) Scope() Scope {
	return c.scope
}

// Save writes the configuration to its original location.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = pathForScope(c.scope)
	}
	if c.path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(c.path)
}

// SaveScope writes the configuration to the specified scope.
func (c *Config) SaveScope(scope Scope) error {
	path := pathForScope(scope)
	if path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(path)
}

// saveToPath writes configuration to a specific filesystem path.
// Creates parent directories as needed with mode 0755.
func (c *Config) saveToPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// pathForScope returns the filesystem path for a given scope.
func pathForScope(scope Scope) string {
	switch scope {
	case ScopeLocal:
		return LocalPath()
	case ScopeGlobal:
		return GlobalPath()
	default:
		return ""
	}
}
