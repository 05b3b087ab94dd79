// Package config handles reading and writing the fo configuration file.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the main configuration for fo. Values absent from the file keep
// their defaults, so a partial config file is merged over Default.
type Config struct {
	DBPath           string `toml:"db_path"`
	LogDir           string `toml:"log_dir"`
	DefaultDimension string `toml:"default_sort_dimension"`
	HistoryLimit     int    `toml:"history_limit"`
	UseColors        bool   `toml:"use_colors"`
	ConfirmActions   bool   `toml:"confirm_actions"`

	// Types maps a semantic category to the extensions it claims.
	Types map[string][]string `toml:"types"`

	// SizeBuckets are evaluated in file order, ascending by bound.
	// max_bytes = 0 marks the open-ended top bucket.
	SizeBuckets []SizeBucket `toml:"size_buckets"`
}

// SizeBucket is one size category threshold.
type SizeBucket struct {
	Label    string `toml:"label"`
	MaxBytes int64  `toml:"max_bytes"`
}

// Default returns the configuration defaults rooted at baseDir.
func Default(baseDir string) *Config {
	return &Config{
		DBPath:           filepath.Join(baseDir, "fo.sqlite"),
		LogDir:           filepath.Join(baseDir, "log"),
		DefaultDimension: "type",
		HistoryLimit:     50,
		UseColors:        true,
		ConfirmActions:   true,
		Types: map[string][]string{
			"images":    {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp"},
			"documents": {".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".txt", ".md", ".csv", ".log", ".odt"},
			"videos":    {".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv", ".webm"},
			"audio":     {".mp3", ".wav", ".flac", ".ogg", ".aac", ".m4a"},
			"archives":  {".zip", ".tar", ".gz", ".rar", ".7z"},
			"code":      {".py", ".js", ".go", ".html", ".css", ".java", ".c", ".cpp", ".h", ".php", ".rb"},
		},
		SizeBuckets: []SizeBucket{
			{Label: "tiny", MaxBytes: 1 << 20},
			{Label: "small", MaxBytes: 10 << 20},
			{Label: "medium", MaxBytes: 100 << 20},
			{Label: "large", MaxBytes: 1 << 30},
			{Label: "huge", MaxBytes: 0},
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader, merging over the defaults
// rooted at baseDir.
func (m *Manager) Read(r io.Reader, baseDir string) (*Config, error) {
	cfg := Default(baseDir)
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path, baseDir string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f, baseDir)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// WriteToFile writes a Config to the specified file path, creating parent
// directories as needed.
func WriteToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path. It refuses to
// overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := WriteToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

// Get returns the scalar configuration value named by key, rendered as a
// string. Used by the `config get` command.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "db_path":
		return c.DBPath, nil
	case "log_dir":
		return c.LogDir, nil
	case "default_sort_dimension":
		return c.DefaultDimension, nil
	case "history_limit":
		return strconv.Itoa(c.HistoryLimit), nil
	case "use_colors":
		return strconv.FormatBool(c.UseColors), nil
	case "confirm_actions":
		return strconv.FormatBool(c.ConfirmActions), nil
	}
	return "", fmt.Errorf("unknown config key: %s", key)
}

// Set updates the scalar configuration value named by key from its string
// form. The caller persists the result with WriteToFile.
func (c *Config) Set(key, value string) error {
	switch key {
	case "db_path":
		c.DBPath = value
	case "log_dir":
		c.LogDir = value
	case "default_sort_dimension":
		switch value {
		case "type", "size", "date":
			c.DefaultDimension = value
		default:
			return fmt.Errorf("invalid sort dimension: %s", value)
		}
	case "history_limit":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("history_limit must be a non-negative integer: %s", value)
		}
		c.HistoryLimit = n
	case "use_colors":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("use_colors must be a boolean: %s", value)
		}
		c.UseColors = b
	case "confirm_actions":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("confirm_actions must be a boolean: %s", value)
		}
		c.ConfirmActions = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
