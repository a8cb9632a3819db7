// Package logging sets up structured logging to a dated file, with an
// optional console copy for headless runs.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration
type Config struct {
	LogDir  string        // Directory for log files
	Level   zerolog.Level // Minimum log level
	Console bool          // Also log to stderr
	Now     func() time.Time
}

// Logger owns the log file behind a zerolog.Logger
type Logger struct {
	zlog    zerolog.Logger
	file    *os.File
	logPath string
}

// New creates the log directory and opens today's log file for appending
func New(cfg Config) (*Logger, error) {
	if cfg.LogDir == "" {
		cfg.LogDir = "./logs"
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logFileName := fmt.Sprintf("lipsync_%s.log", cfg.Now().Format("2006-01-02"))
	logPath := filepath.Join(cfg.LogDir, logFileName)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	writers := []io.Writer{file}
	// The TUI owns stdout, so the console copy goes to stderr.
	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		})
	}

	zlog := zerolog.New(io.MultiWriter(writers...)).
		Level(cfg.Level).
		With().
		Timestamp().
		Str("app", "lipsync-avatar").
		Logger()

	zlog.Info().Str("logFile", logPath).Str("level", cfg.Level.String()).Msg("Logger initialized")

	return &Logger{zlog: zlog, file: file, logPath: logPath}, nil
}

// Zerolog returns the root logger; components derive their own with a
// "component" field
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zlog
}

// Component returns a child logger tagged with name
func (l *Logger) Component(name string) zerolog.Logger {
	return l.zlog.With().Str("component", name).Logger()
}

// Path returns the log file path
func (l *Logger) Path() string {
	return l.logPath
}

// Close flushes and closes the log file
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}
