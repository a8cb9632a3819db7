package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesDatedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	day := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	logger, err := New(Config{
		LogDir: dir,
		Level:  zerolog.InfoLevel,
		Now:    func() time.Time { return day },
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "lipsync_2026-03-09.log"), logger.Path())

	comp := logger.Component("tracks")
	comp.Info().Str("track", "american").Msg("Track registered")
	comp.Debug().Msg("filtered out")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(logger.Path())
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `"message":"Logger initialized"`)
	assert.Contains(t, text, `"component":"tracks"`)
	assert.Contains(t, text, `"track":"american"`)
	assert.NotContains(t, text, "filtered out")
	assert.Equal(t, 2, strings.Count(text, "\n"))
}

func TestNewAppends(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 2; i++ {
		logger, err := New(Config{LogDir: dir, Level: zerolog.InfoLevel})
		require.NoError(t, err)
		require.NoError(t, logger.Close())
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "Logger initialized"))
}
