// Package config loads and validates site configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdsite/internal/fileutil"
	"github.com/alnah/go-mdsite/internal/permalink"
	"github.com/alnah/go-mdsite/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidExclude  = errors.New("invalid exclude pattern")
)

// Field length limits. Generous for real sites, tight enough to catch
// a file pasted into the wrong key.
const (
	MaxTitleLength       = 200  // Site title
	MaxDescriptionLength = 500  // Site description
	MaxURLLength         = 2048 // Browser limit
	MaxLayoutNameLength  = 100  // Default layout name
	MaxDirLength         = 1024 // Directory paths
)

// Config holds all configuration for a site build.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Layouts LayoutsConfig `yaml:"layouts"`
	Render  RenderConfig  `yaml:"render"`
}

// SiteConfig defines site-wide metadata exposed to layouts.
type SiteConfig struct {
	Title       string `yaml:"title"`
	BaseURL     string `yaml:"baseURL"`     // No trailing slash (default: empty)
	Description string `yaml:"description"` // Optional
}

// SourceConfig defines where documents come from.
type SourceConfig struct {
	Dir      string   `yaml:"dir"`      // Site source root (default: ".")
	PostsDir string   `yaml:"postsDir"` // Dated posts, relative to dir (default: "_posts")
	Exclude  []string `yaml:"exclude"`  // filepath.Match patterns on relative paths
}

// OutputConfig defines where rendered pages go.
type OutputConfig struct {
	Dir string `yaml:"dir"` // Output root (default: "_site")
}

// LayoutsConfig defines layout template loading.
type LayoutsConfig struct {
	Dir     string `yaml:"dir"`     // Layout templates, relative to source (default: "_layouts")
	Default string `yaml:"default"` // Layout for documents that declare none (default: "default")
}

// RenderConfig defines rendering options.
type RenderConfig struct {
	Permalink string `yaml:"permalink"` // Template or preset for dated posts
}

// DefaultConfig returns the conventional site configuration.
func DefaultConfig() *Config {
	return &Config{
		Site:    SiteConfig{Title: ""},
		Source:  SourceConfig{Dir: ".", PostsDir: "_posts"},
		Output:  OutputConfig{Dir: "_site"},
		Layouts: LayoutsConfig{Dir: "_layouts", Default: "default"},
		Render:  RenderConfig{Permalink: permalink.DefaultTemplate},
	}
}

// Validate checks field lengths and pattern syntax.
// Called automatically by LoadConfig, but available for consumers who
// construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("site.title", c.Site.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("site.baseURL", c.Site.BaseURL, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("site.description", c.Site.Description, MaxDescriptionLength); err != nil {
		return err
	}
	if strings.HasSuffix(c.Site.BaseURL, "/") {
		return fmt.Errorf("site.baseURL: must not end with \"/\", got %q", c.Site.BaseURL)
	}

	if err := validateFieldLength("source.dir", c.Source.Dir, MaxDirLength); err != nil {
		return err
	}
	if err := validateFieldLength("source.postsDir", c.Source.PostsDir, MaxDirLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.dir", c.Output.Dir, MaxDirLength); err != nil {
		return err
	}
	if err := validateFieldLength("layouts.dir", c.Layouts.Dir, MaxDirLength); err != nil {
		return err
	}
	if err := validateFieldLength("layouts.default", c.Layouts.Default, MaxLayoutNameLength); err != nil {
		return err
	}

	for i, pattern := range c.Source.Exclude {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("%w: source.exclude[%d]: %q", ErrInvalidExclude, i, pattern)
		}
	}

	if c.Render.Permalink != "" {
		if err := permalink.ValidateTemplate(c.Render.Permalink); err != nil {
			return fmt.Errorf("render.permalink: %w", err)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values not set in the file keep their conventional defaults.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-mdsite/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-mdsite", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
