package api

import "time"

// IdleVisemeID is the rest mouth shape shown when no viseme event applies.
const IdleVisemeID = "0"

// VisemeEvent means "from Offset onward, show VisemeID until superseded".
type VisemeEvent struct {
	Offset   time.Duration `json:"offset"`
	VisemeID string        `json:"viseme_id"`
}

type VoiceTrack struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Title      string        `json:"title"`
	AudioPath  string        `json:"audio_path"`
	VisemePath string        `json:"viseme_path"`
	Duration   time.Duration `json:"duration"`
}

// PlaybackStatus represents the transport status
type PlaybackStatus int

const (
	StatusStopped PlaybackStatus = iota
	StatusLoading
	StatusPlaying
	StatusPaused
)

func (s PlaybackStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "stopped"
	}
}

type PlaybackState struct {
	Status   PlaybackStatus
	Track    *VoiceTrack
	Position time.Duration
	Duration time.Duration
	Volume   float64
}

// EventType identifies a transport notification
type EventType int

const (
	EventReady EventType = iota
	EventPlaying
	EventPaused
	EventSeeked
	EventEnded
	EventPositionUpdate
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventReady:
		return "ready"
	case EventPlaying:
		return "playing"
	case EventPaused:
		return "paused"
	case EventSeeked:
		return "seeked"
	case EventEnded:
		return "ended"
	case EventPositionUpdate:
		return "position"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// AllEventTypes lists every transport notification type.
var AllEventTypes = []EventType{
	EventReady,
	EventPlaying,
	EventPaused,
	EventSeeked,
	EventEnded,
	EventPositionUpdate,
	EventError,
}

// TransportEvent is emitted by the transport. TrackID names the track the
// event belongs to so that late notifications for a replaced track can be
// told apart from current ones.
type TransportEvent struct {
	Type     EventType
	TrackID  string
	Position time.Duration
	Duration time.Duration
	Status   PlaybackStatus // transport status after the event
	Err      error
}

// CommandType identifies a transport command
type CommandType int

const (
	CmdLoad CommandType = iota
	CmdPlay
	CmdPause
	CmdSeek
	CmdVolume
	CmdStop
)

type TransportCommand struct {
	Type    CommandType
	Payload interface{}
}

// Transport is the audio playback collaborator: a clock plus load, play,
// pause, seek and stop commands. Notifications are delivered on the event bus.
type Transport interface {
	Load(track *VoiceTrack) error
	Play() error
	Pause() error
	Seek(position time.Duration) error
	Stop() error
	Position() time.Duration
	Status() PlaybackStatus
}

// Display renders a resolved viseme.
type Display interface {
	Show(visemeID string)
}

// StatusSink receives the user-facing status: loading and error text and
// the active track marker. Track buttons are disabled while loading text
// is shown.
type StatusSink interface {
	SetLoading(message string)
	SetError(err error)
	ClearMessages()
	SetActiveTrack(trackID string)
}
