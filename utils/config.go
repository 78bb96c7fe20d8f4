package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Reader settings
type ReaderConfig struct {
	VerticalPadding   int    `toml:"vertical_padding"`
	HorizontalPadding int    `toml:"horizontal_padding"`
	LineSpacing       int    `toml:"line_spacing"`
	ScrollStep        int    `toml:"scroll_step"`
	ChordTimeoutMS    int    `toml:"chord_timeout_ms"`
	Theme             string `toml:"theme"`
	FontSize          string `toml:"font_size"`
	Mode              string `toml:"mode"`
	NestedTOC         bool   `toml:"nested_toc"`
	Language          string `toml:"language"`
}

// Library settings
type LibraryConfig struct {
	Paths    []string `toml:"paths"`
	Patterns []string `toml:"patterns"`
}

// Log settings, level is one of none, normal, debug
type LogConfig struct {
	Level       string `toml:"level"`
	Destination string `toml:"destination"`
	Mode        string `toml:"mode"` // append or overwrite
}

// Theme colour overrides
type ThemeConfig struct {
	Foreground string `toml:"foreground"`
	Background string `toml:"background"`
	Accent     string `toml:"accent"`
	Muted      string `toml:"muted"`
}

// Root config
type Config struct {
	Reader  ReaderConfig           `toml:"reader"`
	Library LibraryConfig          `toml:"library"`
	Log     LogConfig              `toml:"log"`
	Themes  map[string]ThemeConfig `toml:"themes"`
}

const appName = "epub_reader"

func DefaultConfig() Config {
	return Config{
		Reader: ReaderConfig{
			VerticalPadding:   1,
			HorizontalPadding: 2,
			LineSpacing:       1,
			ScrollStep:        3,
			ChordTimeoutMS:    750,
			Theme:             "light",
			FontSize:          "100%",
			Mode:              "paged",
			Language:          "en",
		},
		Library: LibraryConfig{
			Paths:    []string{"~/Books"},
			Patterns: []string{"**/*.epub"},
		},
		Log: LogConfig{
			Level: "none",
			Mode:  "overwrite",
		},
	}
}

// ConfigDir is where the config file and the log live.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

func DefaultConfigPath() string {
	dir, err := ConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(dir, "config.toml")
}

// expandPath replaces leading "~" with user home dir
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// LoadConfig reads config.toml over the defaults. A missing file is not an
// error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg.normalize()
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config (%s): %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// SaveConfig writes cfg to path, creating its directory.
func SaveConfig(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// UpdateConfig applies change to the config saved at path. Values that only
// live in memory, like command line overrides, are not written.
func UpdateConfig(path string, change func(*Config)) error {
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	change(&cfg)
	return SaveConfig(path, cfg)
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.Reader.ScrollStep < 1 {
		c.Reader.ScrollStep = d.Reader.ScrollStep
	}
	if c.Reader.ChordTimeoutMS < 0 {
		c.Reader.ChordTimeoutMS = 0
	}
	if c.Reader.LineSpacing < 0 {
		c.Reader.LineSpacing = 0
	}
	if c.Reader.VerticalPadding < 0 {
		c.Reader.VerticalPadding = 0
	}
	if c.Reader.HorizontalPadding < 0 {
		c.Reader.HorizontalPadding = 0
	}
	if strings.TrimSpace(c.Reader.FontSize) == "" {
		c.Reader.FontSize = d.Reader.FontSize
	}
	if c.Reader.Theme == "" {
		c.Reader.Theme = d.Reader.Theme
	}
	if len(c.Library.Patterns) == 0 {
		c.Library.Patterns = d.Library.Patterns
	}

	// Expand ~ in library paths
	for i, p := range c.Library.Paths {
		c.Library.Paths[i] = expandPath(p)
	}
	c.Log.Destination = expandPath(c.Log.Destination)
}
