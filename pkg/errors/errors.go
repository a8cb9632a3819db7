package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrUnknownTrack     = errors.New("unknown voice track")
	ErrInvalidFormat    = errors.New("unsupported audio format")
	ErrNoTrackLoaded    = errors.New("no track loaded")
	ErrEmptyTimeline    = errors.New("viseme timeline is empty")
	ErrMalformedData    = errors.New("viseme data is neither a list nor a keyed object")
	ErrAutoplayRejected = errors.New("playback did not start automatically")
	ErrUnmappedViseme   = errors.New("viseme id has no asset")
	ErrInvalidVolume    = errors.New("volume must be between 0.0 and 1.0")
	ErrTransportBusy    = errors.New("transport command queue is full")
	ErrTransportClosed  = errors.New("transport has stopped")
)

// Kind classifies recoverable failures so the UI can decide what to show.
type Kind int

const (
	KindUnknown Kind = iota
	KindAssetLoad
	KindDataFormat
	KindUnmappedViseme
	KindAutoplayRejected
)

func (k Kind) String() string {
	switch k {
	case KindAssetLoad:
		return "asset load failure"
	case KindDataFormat:
		return "data format failure"
	case KindUnmappedViseme:
		return "unmapped viseme id"
	case KindAutoplayRejected:
		return "autoplay rejected"
	default:
		return "error"
	}
}

// PlayerError wraps errors with additional context
type PlayerError struct {
	Kind  Kind
	Op    string // Operation that failed
	Track string // Track ID if applicable
	Err   error  // Underlying error
}

func (e *PlayerError) Error() string {
	if e.Track != "" {
		return fmt.Sprintf("%s failed for track %s: %v", e.Op, e.Track, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PlayerError) Unwrap() error {
	return e.Err
}

// NewPlayerError creates a new PlayerError
func NewPlayerError(kind Kind, op, track string, err error) *PlayerError {
	return &PlayerError{Kind: kind, Op: op, Track: track, Err: err}
}

// AssetLoad wraps a failed fetch of timeline data, audio or a graphic asset.
func AssetLoad(op, track string, err error) *PlayerError {
	return NewPlayerError(KindAssetLoad, op, track, err)
}

// DataFormat wraps an unparseable timeline source.
func DataFormat(op, track string, err error) *PlayerError {
	return NewPlayerError(KindDataFormat, op, track, err)
}

// KindOf returns the Kind of the first PlayerError in err's chain.
func KindOf(err error) Kind {
	var pe *PlayerError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	switch {
	case errors.Is(err, ErrAutoplayRejected):
		return KindAutoplayRejected
	case errors.Is(err, ErrUnmappedViseme):
		return KindUnmappedViseme
	}
	return KindUnknown
}

// AssetError represents a graphic asset that could not be read
type AssetError struct {
	Path string
	Err  error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("asset error at %s: %v", e.Path, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}
