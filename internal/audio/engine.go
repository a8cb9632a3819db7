package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/rs/zerolog"

	"github.com/jscyril/golang_lipsync_avatar/api"
	"github.com/jscyril/golang_lipsync_avatar/pkg/events"
	playerrors "github.com/jscyril/golang_lipsync_avatar/pkg/errors"
)

// Ensure AudioEngine implements Transport interface at compile time
var _ api.Transport = (*AudioEngine)(nil)

// AudioEngine is the voice transport: it decodes a track, plays it through
// the speaker and reports ready, playing, paused, seeked and ended on the
// event bus. Commands are processed in order by a single goroutine.
type AudioEngine struct {
	state      *api.PlaybackState
	commands   chan api.TransportCommand
	bus        *events.EventBus
	mu         sync.RWMutex
	streamer   beep.StreamSeekCloser
	ctrl       *beep.Ctrl
	volume     *effects.Volume
	sampleRate beep.SampleRate
	queued     bool // streamer handed to the speaker
	done       chan struct{}
	logger     zerolog.Logger
}

// NewAudioEngine creates a new audio engine instance
func NewAudioEngine(bus *events.EventBus, logger zerolog.Logger) *AudioEngine {
	return &AudioEngine{
		state: &api.PlaybackState{
			Status: api.StatusStopped,
			Volume: 0.5,
		},
		commands: make(chan api.TransportCommand, 10),
		bus:      bus,
		done:     make(chan struct{}),
		logger:   logger.With().Str("component", "audio").Logger(),
	}
}

// Start begins the audio engine goroutines
func (e *AudioEngine) Start(ctx context.Context) {
	go e.run(ctx)
	go e.trackPosition(ctx)
}

// run is the main command processing loop
func (e *AudioEngine) run(ctx context.Context) {
	defer close(e.done)
	for {
		select {
		case <-ctx.Done():
			e.cleanup()
			return

		case cmd := <-e.commands:
			switch cmd.Type {
			case api.CmdLoad:
				track := cmd.Payload.(*api.VoiceTrack)
				if err := e.loadTrack(track); err != nil {
					e.logger.Error().Err(err).Str("track", track.ID).Msg("Voice audio failed to load")
					e.publish(api.EventError, track.ID, playerrors.AssetLoad("load audio", track.ID, err))
					continue
				}
				e.publish(api.EventReady, track.ID, nil)

			case api.CmdPlay:
				if err := e.play(); err != nil {
					e.publish(api.EventError, e.trackID(),
						playerrors.NewPlayerError(playerrors.KindAutoplayRejected, "play", e.trackID(), err))
					continue
				}
				e.publish(api.EventPlaying, e.trackID(), nil)

			case api.CmdPause:
				if e.pause() {
					e.publish(api.EventPaused, e.trackID(), nil)
				}

			case api.CmdSeek:
				pos := cmd.Payload.(time.Duration)
				if e.seekTo(pos) {
					e.publish(api.EventSeeked, e.trackID(), nil)
				}

			case api.CmdStop:
				e.stopPlayback()
				e.mu.Lock()
				e.state.Track = nil
				e.mu.Unlock()

			case api.CmdVolume:
				level := cmd.Payload.(float64)
				e.mu.Lock()
				if e.volume != nil {
					// Convert 0-1 range to decibel-like scale
					speaker.Lock()
					e.volume.Volume = level*2 - 1
					speaker.Unlock()
				}
				e.state.Volume = level
				e.mu.Unlock()
			}
		}
	}
}

// trackPosition publishes the playback position periodically for the
// progress display
func (e *AudioEngine) trackPosition(ctx context.Context) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if e.Status() == api.StatusPlaying {
				e.publish(api.EventPositionUpdate, e.trackID(), nil)
			}
		}
	}
}

func (e *AudioEngine) publish(eventType api.EventType, trackID string, err error) {
	if e.bus == nil {
		return
	}
	state := e.GetState()
	e.bus.Publish(api.TransportEvent{
		Type:     eventType,
		TrackID:  trackID,
		Position: state.Position,
		Duration: state.Duration,
		Status:   state.Status,
		Err:      err,
	})
}

// loadTrack decodes a track and prepares it paused at the start. The
// previous track is released first; on failure no track is loaded.
func (e *AudioEngine) loadTrack(track *api.VoiceTrack) error {
	e.stopPlayback()

	e.mu.Lock()
	e.state.Track = nil
	e.state.Duration = 0
	e.state.Status = api.StatusLoading
	e.mu.Unlock()

	streamer, format, err := DecodeFile(track.AudioPath)
	if err != nil {
		e.mu.Lock()
		e.state.Status = api.StatusStopped
		e.mu.Unlock()
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if format.SampleRate != e.sampleRate {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			e.state.Status = api.StatusStopped
			return fmt.Errorf("speaker init: %w", err)
		}
	}

	e.streamer = streamer
	e.sampleRate = format.SampleRate
	e.ctrl = &beep.Ctrl{Streamer: streamer, Paused: true}
	e.volume = &effects.Volume{
		Streamer: e.ctrl,
		Base:     2,
		Volume:   e.state.Volume*2 - 1,
		Silent:   false,
	}
	e.queued = false
	e.state.Track = track
	e.state.Status = api.StatusPaused
	e.state.Position = 0
	e.state.Duration = format.SampleRate.D(streamer.Len())
	return nil
}

// play starts or resumes the loaded track. A track that ran to the end is
// restarted from the beginning.
func (e *AudioEngine) play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return playerrors.ErrNoTrackLoaded
	}

	if !e.queued {
		speaker.Lock()
		if e.streamer.Position() >= e.streamer.Len() {
			if err := e.streamer.Seek(0); err != nil {
				speaker.Unlock()
				return err
			}
		}
		e.ctrl.Paused = false
		speaker.Unlock()

		trackID := e.state.Track.ID
		speaker.Play(beep.Seq(e.volume, beep.Callback(func() {
			// Runs on the speaker goroutine with the speaker locked
			go e.finish(trackID)
		})))
		e.queued = true
	} else {
		speaker.Lock()
		e.ctrl.Paused = false
		speaker.Unlock()
	}

	e.state.Status = api.StatusPlaying
	return nil
}

// finish marks the end of stream for trackID
func (e *AudioEngine) finish(trackID string) {
	e.mu.Lock()
	if e.state.Track == nil || e.state.Track.ID != trackID {
		e.mu.Unlock()
		return
	}
	e.queued = false
	e.state.Status = api.StatusStopped
	e.mu.Unlock()

	e.publish(api.EventEnded, trackID, nil)
}

func (e *AudioEngine) pause() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctrl == nil || e.state.Status != api.StatusPlaying {
		return false
	}
	speaker.Lock()
	e.ctrl.Paused = true
	speaker.Unlock()
	e.state.Status = api.StatusPaused
	return true
}

// stopPlayback stops the current playback and releases the track
func (e *AudioEngine) stopPlayback() {
	e.mu.Lock()
	defer e.mu.Unlock()

	speaker.Clear()
	if e.streamer != nil {
		e.streamer.Close()
		e.streamer = nil
	}
	e.ctrl = nil
	e.volume = nil
	e.queued = false
	e.state.Status = api.StatusStopped
	e.state.Position = 0
}

// seekTo seeks to a specific position
func (e *AudioEngine) seekTo(pos time.Duration) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.streamer == nil {
		return false
	}

	n := e.sampleRate.N(pos)
	if n < 0 {
		n = 0
	}
	if n > e.streamer.Len() {
		n = e.streamer.Len()
	}

	speaker.Lock()
	err := e.streamer.Seek(n)
	speaker.Unlock()
	if err != nil {
		e.logger.Warn().Err(err).Dur("position", pos).Msg("Seek failed")
		return false
	}
	e.state.Position = e.sampleRate.D(n)
	return true
}

// cleanup releases resources
func (e *AudioEngine) cleanup() {
	e.stopPlayback()
}

func (e *AudioEngine) trackID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state.Track == nil {
		return ""
	}
	return e.state.Track.ID
}

// send queues cmd without blocking. The run loop publishes on the event bus,
// so waiting here for queue space could stall both sides.
func (e *AudioEngine) send(cmd api.TransportCommand) error {
	select {
	case <-e.done:
		return playerrors.ErrTransportClosed
	default:
	}
	select {
	case e.commands <- cmd:
		return nil
	default:
		e.logger.Warn().Int("command", int(cmd.Type)).Msg("Command queue full, dropping command")
		return playerrors.ErrTransportBusy
	}
}

// Load requests the track's audio. EventReady or EventError follows. The
// current track stays loaded until the request is processed, so commands
// queued before it still apply to that track.
func (e *AudioEngine) Load(track *api.VoiceTrack) error {
	if track == nil {
		return playerrors.ErrUnknownTrack
	}
	return e.send(api.TransportCommand{Type: api.CmdLoad, Payload: track})
}

// Play starts or resumes playback
func (e *AudioEngine) Play() error {
	e.mu.RLock()
	loaded := e.state.Track != nil
	e.mu.RUnlock()
	if !loaded {
		return playerrors.ErrNoTrackLoaded
	}
	return e.send(api.TransportCommand{Type: api.CmdPlay})
}

// Pause pauses playback
func (e *AudioEngine) Pause() error {
	return e.send(api.TransportCommand{Type: api.CmdPause})
}

// Stop stops playback and releases the track
func (e *AudioEngine) Stop() error {
	return e.send(api.TransportCommand{Type: api.CmdStop})
}

// Seek seeks to the specified position
func (e *AudioEngine) Seek(position time.Duration) error {
	return e.send(api.TransportCommand{Type: api.CmdSeek, Payload: position})
}

// SetVolume sets the volume level (0.0 to 1.0)
func (e *AudioEngine) SetVolume(level float64) error {
	if level < 0 || level > 1 {
		return playerrors.ErrInvalidVolume
	}
	return e.send(api.TransportCommand{Type: api.CmdVolume, Payload: level})
}

// Position returns the current playback clock
func (e *AudioEngine) Position() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.streamer == nil {
		return e.state.Position
	}
	speaker.Lock()
	n := e.streamer.Position()
	speaker.Unlock()
	return e.sampleRate.D(n)
}

// Status returns the transport status
func (e *AudioEngine) Status() api.PlaybackStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Status
}

// GetState returns a copy of the current playback state
func (e *AudioEngine) GetState() *api.PlaybackState {
	position := e.Position()

	e.mu.RLock()
	defer e.mu.RUnlock()

	// Return a copy to prevent external modification
	state := *e.state
	state.Position = position
	if e.state.Track != nil {
		track := *e.state.Track
		state.Track = &track
	}
	return &state
}
