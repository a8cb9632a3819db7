// Package lipsync drives the avatar mouth from the voice transport: it owns
// the playback session, the animation driver and the state machine reacting
// to transport events and user commands.
package lipsync

import (
	"github.com/google/uuid"

	"github.com/jscyril/golang_lipsync_avatar/api"
	"github.com/jscyril/golang_lipsync_avatar/internal/timeline"
)

// PlaybackSession is the state of one selected voice track: its timeline,
// the cursor into it and the viseme currently on screen. A session is
// replaced, never mutated into another track.
type PlaybackSession struct {
	ID              string
	Track           *api.VoiceTrack
	cursor          *timeline.Cursor
	currentVisemeID string

	// timelineErr explains an empty timeline that failed to load
	timelineErr error
}

func newSession(track *api.VoiceTrack, tl timeline.Timeline) *PlaybackSession {
	return &PlaybackSession{
		ID:              uuid.NewString(),
		Track:           track,
		cursor:          timeline.NewCursor(tl),
		currentVisemeID: api.IdleVisemeID,
	}
}

// Timeline returns the session's timeline
func (s *PlaybackSession) Timeline() timeline.Timeline {
	return s.cursor.Timeline()
}

// CurrentViseme returns the viseme last sent to the display
func (s *PlaybackSession) CurrentViseme() string {
	return s.currentVisemeID
}

// CursorIndex returns the cursor position, timeline.Before when idle
func (s *PlaybackSession) CursorIndex() int {
	return s.cursor.Index()
}

// TrackID returns the selected track id, empty before any selection
func (s *PlaybackSession) TrackID() string {
	if s.Track == nil {
		return ""
	}
	return s.Track.ID
}

// TimelineErr returns why the session's timeline could not be loaded
func (s *PlaybackSession) TimelineErr() error {
	return s.timelineErr
}

// show sends id to the display when it differs from what is on screen, or
// always when force is set.
func (s *PlaybackSession) show(display api.Display, id string, force bool) {
	if !force && id == s.currentVisemeID {
		return
	}
	s.currentVisemeID = id
	display.Show(id)
}
