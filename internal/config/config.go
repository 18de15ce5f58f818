package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Viewport ViewportConfig `yaml:"viewport"`
	Preview  PreviewConfig  `yaml:"preview"`
	Field    FieldConfig    `yaml:"field"`
	Vision   VisionConfig   `yaml:"vision"`
	Output   OutputConfig   `yaml:"output"`
}

// ViewportConfig sizes the panel and its thumbnail overview
type ViewportConfig struct {
	PanelWidth      int `yaml:"panel_width"`
	PanelHeight     int `yaml:"panel_height"`
	ThumbnailWidth  int `yaml:"thumbnail_width"`
	ThumbnailHeight int `yaml:"thumbnail_height"`
}

// PreviewConfig bounds the downsampled image paged through the panel
type PreviewConfig struct {
	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`
}

// FieldConfig holds defaults for newly created fields
type FieldConfig struct {
	// Diameter in original image pixels
	Diameter int `yaml:"diameter"`
}

// VisionConfig holds configuration for vision model field suggestions
type VisionConfig struct {
	Backend       string  `yaml:"backend"` // ollama, llamacpp or stain
	URL           string  `yaml:"url"`
	Model         string  `yaml:"model"`
	MinConfidence float64 `yaml:"min_confidence"`
	MaxCandidates int     `yaml:"max_candidates"`
	SendSize      int     `yaml:"send_size"`
	SendQuality   int     `yaml:"send_quality"`
}

// OutputConfig holds configuration for rendered snapshots
type OutputConfig struct {
	Format   string `yaml:"format"`
	Quality  int    `yaml:"quality"`
	Lossless bool   `yaml:"lossless"`
	Dir      string `yaml:"dir"`
}

var (
	backends = []string{"ollama", "llamacpp", "stain"}
	formats  = []string{"jpg", "jpeg", "png", "webp"}
)

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Viewport: ViewportConfig{
			PanelWidth:      1024,
			PanelHeight:     768,
			ThumbnailWidth:  200,
			ThumbnailHeight: 150,
		},
		Preview: PreviewConfig{
			MaxWidth:  4096,
			MaxHeight: 4096,
		},
		Field: FieldConfig{
			Diameter: 4000,
		},
		Vision: VisionConfig{
			Backend:       "ollama",
			URL:           "http://localhost:11434",
			Model:         "openbmb/minicpm-v4.5",
			MinConfidence: 0.3,
			MaxCandidates: 10,
			SendSize:      1024,
			SendQuality:   90,
		},
		Output: OutputConfig{
			Format:  "jpg",
			Quality: 90,
			Dir:     "./output",
		},
	}
}

// Load reads configuration from path. A missing file yields the defaults; keys
// absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyDefaults fills in values a file explicitly zeroed.
func (c *Config) applyDefaults() {
	defaults := Default()
	if c.Vision.Backend == "" {
		c.Vision.Backend = defaults.Vision.Backend
	}
	if c.Output.Format == "" {
		c.Output.Format = defaults.Output.Format
	}
	c.Vision.Backend = strings.ToLower(c.Vision.Backend)
	c.Output.Format = strings.ToLower(c.Output.Format)
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "field-selector", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}
	return filepath.Join(home, ".config", "field-selector", "config.yaml")
}

func isSupported(values []string) func(string) error {
	return func(v string) error {
		if !slices.Contains(values, v) {
			return fmt.Errorf("must be one of %s, got %q", strings.Join(values, ", "), v)
		}
		return nil
	}
}
