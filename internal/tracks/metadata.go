package tracks

import (
	"os"
	"strings"
	"time"

	"github.com/dhowden/tag"

	"github.com/jscyril/golang_lipsync_avatar/internal/audio"
)

// MetadataReader extracts display metadata from voice audio files
type MetadataReader struct{}

// NewMetadataReader creates a new metadata reader
func NewMetadataReader() *MetadataReader {
	return &MetadataReader{}
}

// Title returns the title tag of the file, or "" when it has none. Plain
// WAV recordings usually carry no tags.
func (r *MetadataReader) Title(filePath string) string {
	file, err := os.Open(filePath)
	if err != nil {
		return ""
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(metadata.Title())
}

// Duration decodes the stream header to measure the track length, zero if
// the file cannot be decoded.
func (r *MetadataReader) Duration(filePath string) time.Duration {
	streamer, format, err := audio.DecodeFile(filePath)
	if err != nil {
		return 0
	}
	defer streamer.Close()
	return format.SampleRate.D(streamer.Len())
}
