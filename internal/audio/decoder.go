package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"

	playerrors "github.com/jscyril/golang_lipsync_avatar/pkg/errors"
)

// SupportedFormats returns list of supported voice audio formats
func SupportedFormats() []string {
	return []string{".wav", ".mp3", ".flac"}
}

// IsSupported checks if a file format is supported
func IsSupported(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}

// DecodeAudio decodes an audio stream based on the file extension
func DecodeAudio(r io.ReadSeekCloser, filePath string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".wav":
		return wav.Decode(r)
	case ".mp3":
		return mp3.Decode(r)
	case ".flac":
		return flac.Decode(r)
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", playerrors.ErrInvalidFormat, ext)
	}
}

// DecodeFile opens and decodes a voice audio file. The returned streamer
// owns the file and closes it.
func DecodeFile(filePath string) (beep.StreamSeekCloser, beep.Format, error) {
	if !IsSupported(filePath) {
		return nil, beep.Format{}, fmt.Errorf("%w: %s", playerrors.ErrInvalidFormat, filepath.Ext(filePath))
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, beep.Format{}, err
	}

	streamer, format, err := DecodeAudio(file, filePath)
	if err != nil {
		file.Close()
		return nil, beep.Format{}, err
	}
	return streamer, format, nil
}
