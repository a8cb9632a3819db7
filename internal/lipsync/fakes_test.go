package lipsync

import (
	"fmt"
	"time"

	"github.com/jscyril/golang_lipsync_avatar/api"
	"github.com/jscyril/golang_lipsync_avatar/internal/timeline"
	playerrors "github.com/jscyril/golang_lipsync_avatar/pkg/errors"
)

type fakeTransport struct {
	status   api.PlaybackStatus
	position time.Duration
	calls    []string
	playErr  error
	loadErr  error
	loaded   *api.VoiceTrack
}

func (f *fakeTransport) Load(track *api.VoiceTrack) error {
	f.calls = append(f.calls, "load:"+track.ID)
	if f.loadErr != nil {
		return f.loadErr
	}
	f.loaded = track
	f.status = api.StatusLoading
	return nil
}

func (f *fakeTransport) Play() error {
	f.calls = append(f.calls, "play")
	if f.playErr != nil {
		return f.playErr
	}
	f.status = api.StatusPlaying
	return nil
}

func (f *fakeTransport) Pause() error {
	f.calls = append(f.calls, "pause")
	if f.status == api.StatusPlaying {
		f.status = api.StatusPaused
	}
	return nil
}

func (f *fakeTransport) Seek(position time.Duration) error {
	f.calls = append(f.calls, fmt.Sprintf("seek:%d", position.Milliseconds()))
	f.position = position
	return nil
}

func (f *fakeTransport) Stop() error {
	f.calls = append(f.calls, "stop")
	f.status = api.StatusStopped
	return nil
}

func (f *fakeTransport) Position() time.Duration    { return f.position }
func (f *fakeTransport) Status() api.PlaybackStatus { return f.status }

type fakeDisplay struct {
	shown []string
}

func (d *fakeDisplay) Show(visemeID string) {
	d.shown = append(d.shown, visemeID)
}

func (d *fakeDisplay) last() string {
	if len(d.shown) == 0 {
		return ""
	}
	return d.shown[len(d.shown)-1]
}

type fakeStatus struct {
	loading string
	err     error
	active  string
	clears  int
}

func (s *fakeStatus) SetLoading(message string)     { s.loading = message }
func (s *fakeStatus) SetError(err error)            { s.err = err; s.loading = "" }
func (s *fakeStatus) SetActiveTrack(trackID string) { s.active = trackID }
func (s *fakeStatus) ClearMessages() {
	s.loading = ""
	s.err = nil
	s.clears++
}

type fakeTracks struct {
	tracks map[string]timeline.Timeline
	failed map[string]error
	def    string
}

func (f *fakeTracks) Lookup(id string) (*api.VoiceTrack, timeline.Timeline, error) {
	tl, ok := f.tracks[id]
	if !ok {
		return nil, timeline.Timeline{}, fmt.Errorf("%w: %q", playerrors.ErrUnknownTrack, id)
	}
	return &api.VoiceTrack{ID: id, Name: id}, tl, nil
}

func (f *fakeTracks) TimelineError(id string) error { return f.failed[id] }
func (f *fakeTracks) DefaultID() string             { return f.def }

type fakeTicker struct {
	c       chan time.Time
	stopped int
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }
func (t *fakeTicker) Stop()               { t.stopped++ }

type tickerFactory struct {
	made []*fakeTicker
}

func (f *tickerFactory) New(time.Duration) Ticker {
	t := &fakeTicker{c: make(chan time.Time)}
	f.made = append(f.made, t)
	return t
}
