package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	MusicDirectories []string   `yaml:"music_directories"`
	DataDir          string     `yaml:"data_dir"`
	Playlist         string     `yaml:"playlist"`
	LogLevel         string     `yaml:"log_level"`
	ScanWorkers      int        `yaml:"scan_workers"`
	MetricsAddr      string     `yaml:"metrics_addr"`
	JumpToTrack      JumpConfig `yaml:"jump_to_track"`
	VFS              VFSConfig  `yaml:"vfs"`
	KeyBindings      KeyMap     `yaml:"key_bindings"`
}

// JumpConfig controls the jump-to-track session
type JumpConfig struct {
	CloseOnJump bool `yaml:"close_on_jump"`
	Width       int  `yaml:"width"`
	Height      int  `yaml:"height"`
}

// VFSConfig tunes the stream layer
type VFSConfig struct {
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	LineCapacity    int           `yaml:"line_capacity"`
	MaxContentsSize int64         `yaml:"max_contents_size"`
}

// KeyMap defines keyboard shortcuts for the jump-to-track session
type KeyMap struct {
	Jump        string `yaml:"jump"`
	Queue       string `yaml:"queue"`
	CloseOnJump string `yaml:"close_on_jump"`
	Cancel      string `yaml:"cancel"`
	Refresh     string `yaml:"refresh"`
	Up          string `yaml:"up"`
	Down        string `yaml:"down"`
}

// GetDefaultConfig returns default configuration
func GetDefaultConfig() *Config {
	return &Config{
		MusicDirectories: []string{},
		DataDir:          "./data",
		LogLevel:         "info",
		ScanWorkers:      4,
		JumpToTrack: JumpConfig{
			CloseOnJump: true,
			Width:       80,
			Height:      24,
		},
		VFS: VFSConfig{
			HTTPTimeout:     30 * time.Second,
			LineCapacity:    4096,
			MaxContentsSize: 1 << 30,
		},
		KeyBindings: KeyMap{
			Jump:        "enter",
			Queue:       "ctrl+q",
			CloseOnJump: "ctrl+t",
			Cancel:      "esc",
			Refresh:     "ctrl+r",
			Up:          "up",
			Down:        "down",
		},
	}
}

// LoadConfig reads configuration from a YAML file on top of the
// defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// SaveConfig marshals and saves configuration to file
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadOrCreate loads config from path or creates default if not exists.
// Environment overrides are applied after loading and are not persisted.
func LoadOrCreate(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := SaveConfig(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	ApplyEnv(cfg)
	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from the given files into the
// process environment. Missing files are skipped; variables already set
// win over the files.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg from MUSIC_PLAYER_* environment variables.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("MUSIC_PLAYER_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("MUSIC_PLAYER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MUSIC_PLAYER_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("MUSIC_PLAYER_PLAYLIST"); v != "" {
		cfg.Playlist = v
	}
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	// Check environment variable first
	if path := os.Getenv("MUSIC_PLAYER_CONFIG"); path != "" {
		return path
	}

	// Use XDG config directory if available
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "musicplayer", "config.yaml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}

	return filepath.Join(home, ".config", "musicplayer", "config.yaml")
}
