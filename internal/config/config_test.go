package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if cfg.TickInterval() != 16*time.Millisecond {
		t.Errorf("expected 16ms tick, got %v", cfg.TickInterval())
	}
	if cfg.SeekStep() != 5*time.Second {
		t.Errorf("expected 5s seek step, got %v", cfg.SeekStep())
	}
	if len(cfg.Tracks) != 2 || cfg.DefaultTrack != "american" {
		t.Errorf("unexpected default tracks: %+v default %q", cfg.Tracks, cfg.DefaultTrack)
	}
	if cfg.KeyBindings.PlayPause != " " {
		t.Errorf("expected space for play/pause, got %q", cfg.KeyBindings.PlayPause)
	}
}

func TestTrackPaths(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.VoiceDir = "voices"

	derived := TrackConfig{ID: "indian", Name: "Indian"}
	if got := cfg.AudioPath(derived); got != filepath.Join("voices", "Indian_voice.wav") {
		t.Errorf("unexpected audio path %q", got)
	}
	if got := cfg.VisemePath(derived); got != filepath.Join("voices", "Indian_viseme.json") {
		t.Errorf("unexpected viseme path %q", got)
	}

	explicit := TrackConfig{ID: "x", Name: "X", Audio: "/a/x.mp3", Visemes: "/a/x.json"}
	if cfg.AudioPath(explicit) != "/a/x.mp3" || cfg.VisemePath(explicit) != "/a/x.json" {
		t.Errorf("explicit paths were not kept")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"volume too high", func(c *Config) { c.Volume = 1.5 }, "volume"},
		{"volume negative", func(c *Config) { c.Volume = -0.1 }, "volume"},
		{"zero tick", func(c *Config) { c.TickIntervalMS = 0 }, "tick_interval_ms"},
		{"slow tick", func(c *Config) { c.TickIntervalMS = 5000 }, "tick_interval_ms"},
		{"zero seek", func(c *Config) { c.SeekStepMS = 0 }, "seek_step_ms"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"unnamed track", func(c *Config) { c.Tracks = append(c.Tracks, TrackConfig{ID: "x"}) }, "needs an id"},
		{"duplicate track", func(c *Config) { c.Tracks = append(c.Tracks, TrackConfig{ID: "indian", Name: "Again"}) }, "declared twice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.LogLevel = "DEBUG"
	if cfg.Level() != zerolog.DebugLevel {
		t.Errorf("expected debug, got %v", cfg.Level())
	}
	cfg.LogLevel = ""
	if cfg.Level() != zerolog.InfoLevel {
		t.Errorf("expected info fallback, got %v", cfg.Level())
	}
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config was not written: %v", err)
	}

	cfg.Volume = 0.25
	cfg.Autoplay = false
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if loaded.Volume != 0.25 || loaded.Autoplay {
		t.Errorf("saved values not loaded: %+v", loaded)
	}
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"voice_dir": "/srv/voices"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.VoiceDir != "/srv/voices" {
		t.Errorf("voice dir not read, got %q", cfg.VoiceDir)
	}
	if cfg.TickIntervalMS != 16 || len(cfg.Tracks) != 2 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"volume": `), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestLoadOrCreateRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"volume": 3}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOrCreate(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvAssetDir, "/opt/visemes")
	t.Setenv(EnvVoiceDir, "/opt/voices")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := LoadOrCreate(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if cfg.AssetDir != "/opt/visemes" || cfg.VoiceDir != "/opt/voices" || cfg.LogLevel != "debug" {
		t.Errorf("environment not applied: %+v", cfg)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("LIPSYNC_TEST_VALUE=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("LIPSYNC_TEST_VALUE") })

	loaded, err := LoadEnv(filepath.Join(dir, "missing.env"), envFile)
	if err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if !loaded {
		t.Error("expected env file to be loaded")
	}
	if got := os.Getenv("LIPSYNC_TEST_VALUE"); got != "from-file" {
		t.Errorf("expected from-file, got %q", got)
	}

	loaded, err = LoadEnv(filepath.Join(dir, "missing.env"))
	if err != nil || loaded {
		t.Errorf("missing file should be skipped, got %v %v", loaded, err)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv(EnvConfig, "/tmp/custom.json")
	if got := GetConfigPath(); got != "/tmp/custom.json" {
		t.Errorf("expected env path, got %q", got)
	}

	t.Setenv(EnvConfig, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := GetConfigPath(); got != filepath.Join("/xdg", "lipsync-avatar", "config.json") {
		t.Errorf("expected XDG path, got %q", got)
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Volume = 2
	cfg.SeekStepMS = -1

	err := cfg.Validate()
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 2 {
		t.Fatalf("expected two joined errors, got %v", err)
	}
}
