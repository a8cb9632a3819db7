package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Environment variables that override the config file
const (
	EnvConfig   = "LIPSYNC_CONFIG"
	EnvAssetDir = "LIPSYNC_ASSET_DIR"
	EnvVoiceDir = "LIPSYNC_VOICE_DIR"
	EnvLogLevel = "LIPSYNC_LOG_LEVEL"
)

// Config holds application configuration
type Config struct {
	AssetDir       string        `json:"asset_dir"`
	VoiceDir       string        `json:"voice_dir"`
	Tracks         []TrackConfig `json:"tracks"`
	DefaultTrack   string        `json:"default_track"`
	TickIntervalMS int           `json:"tick_interval_ms"`
	SeekStepMS     int           `json:"seek_step_ms"`
	Autoplay       bool          `json:"autoplay"`
	Volume         float64       `json:"volume"`
	LogDir         string        `json:"log_dir"`
	LogLevel       string        `json:"log_level"`
	WatchTimelines bool          `json:"watch_timelines"`
	KeyBindings    KeyMap        `json:"key_bindings"`
}

// TrackConfig declares a voice track. Empty paths are derived from Name as
// <VoiceDir>/<Name>_voice.wav and <VoiceDir>/<Name>_viseme.json.
type TrackConfig struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Audio   string `json:"audio,omitempty"`
	Visemes string `json:"visemes,omitempty"`
}

// KeyMap defines keyboard shortcuts. Tracks are selected with 1..9.
type KeyMap struct {
	PlayPause   string `json:"play_pause"`
	SeekForward string `json:"seek_forward"`
	SeekBack    string `json:"seek_back"`
	Quit        string `json:"quit"`
}

// GetDefaultConfig returns default configuration
func GetDefaultConfig() *Config {
	return &Config{
		AssetDir: "./assets/visemes",
		VoiceDir: "./assets/voices",
		Tracks: []TrackConfig{
			{ID: "american", Name: "American"},
			{ID: "indian", Name: "Indian"},
		},
		DefaultTrack:   "american",
		TickIntervalMS: 16,
		SeekStepMS:     5000,
		Autoplay:       true,
		Volume:         1.0,
		LogDir:         "./logs",
		LogLevel:       "info",
		KeyBindings: KeyMap{
			PlayPause:   " ",
			SeekForward: "right",
			SeekBack:    "left",
			Quit:        "q",
		},
	}
}

// TickInterval is the animation driver period
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// SeekStep is the distance moved by one seek key press
func (c *Config) SeekStep() time.Duration {
	return time.Duration(c.SeekStepMS) * time.Millisecond
}

// Level returns the parsed log level, info when unset
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	var errs []error
	if c.Volume < 0 || c.Volume > 1 {
		errs = append(errs, fmt.Errorf("volume %.2f must be between 0.0 and 1.0", c.Volume))
	}
	if c.TickIntervalMS <= 0 || c.TickIntervalMS > 1000 {
		errs = append(errs, fmt.Errorf("tick_interval_ms %d must be between 1 and 1000", c.TickIntervalMS))
	}
	if c.SeekStepMS <= 0 {
		errs = append(errs, fmt.Errorf("seek_step_ms %d must be positive", c.SeekStepMS))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	seen := make(map[string]bool, len(c.Tracks))
	for i, t := range c.Tracks {
		if t.ID == "" || t.Name == "" {
			errs = append(errs, fmt.Errorf("track %d needs an id and a name", i))
			continue
		}
		if seen[t.ID] {
			errs = append(errs, fmt.Errorf("track id %q is declared twice", t.ID))
		}
		seen[t.ID] = true
	}
	return errors.Join(errs...)
}

// AudioPath returns the configured or derived audio file of t
func (c *Config) AudioPath(t TrackConfig) string {
	if t.Audio != "" {
		return t.Audio
	}
	return filepath.Join(c.VoiceDir, t.Name+"_voice.wav")
}

// VisemePath returns the configured or derived timeline file of t
func (c *Config) VisemePath(t TrackConfig) string {
	if t.Visemes != "" {
		return t.Visemes
	}
	return filepath.Join(c.VoiceDir, t.Name+"_viseme.json")
}

// LoadEnv loads .env style files into the process environment. Missing
// files are not an error; it reports whether anything was loaded.
func LoadEnv(files ...string) (bool, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return false, nil
	}
	if err := godotenv.Load(present...); err != nil {
		return false, fmt.Errorf("failed to load env file: %w", err)
	}
	return true, nil
}

// ApplyEnv overrides settings from the environment
func (c *Config) ApplyEnv() {
	if dir := os.Getenv(EnvAssetDir); dir != "" {
		c.AssetDir = dir
	}
	if dir := os.Getenv(EnvVoiceDir); dir != "" {
		c.VoiceDir = dir
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
}

// LoadConfig reads and unmarshals configuration from file. Fields missing
// from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	config := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

// SaveConfig marshals and saves configuration to file
func SaveConfig(config *Config, path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadOrCreate loads config from path or creates default if not exists.
// Environment overrides are applied after the file and never saved.
func LoadOrCreate(path string) (*Config, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// Save default config if file didn't exist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveConfig(config, path); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// GetConfigPath returns the default config file path
func GetConfigPath() string {
	// Check environment variable first
	if path := os.Getenv(EnvConfig); path != "" {
		return path
	}

	// Use XDG config directory if available
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "lipsync-avatar", "config.json")
	}

	// Fall back to home directory
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}

	return filepath.Join(home, ".config", "lipsync-avatar", "config.json")
}
