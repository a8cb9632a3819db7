package lipsync

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jscyril/golang_lipsync_avatar/api"
	"github.com/jscyril/golang_lipsync_avatar/internal/timeline"
	playerrors "github.com/jscyril/golang_lipsync_avatar/pkg/errors"
)

// TrackSource resolves a track id to its audio and viseme timeline.
// TimelineError reports why a track's timeline failed to load, nil when it
// loaded.
type TrackSource interface {
	Lookup(id string) (*api.VoiceTrack, timeline.Timeline, error)
	TimelineError(id string) error
	DefaultID() string
}

// Options configures a Machine
type Options struct {
	Autoplay     bool
	TickInterval time.Duration
	NewTicker    TickerFunc
}

// Machine reacts to transport events and user commands. It is not safe for
// concurrent use; Loop serializes every call onto one goroutine, which is
// what makes a track swap atomic with respect to driver ticks.
type Machine struct {
	tracks    TrackSource
	transport api.Transport
	display   api.Display
	status    api.StatusSink
	driver    *Driver
	session   *PlaybackSession
	autoplay  bool
	logger    zerolog.Logger
}

// NewMachine creates a machine with an idle session and no track selected
func NewMachine(tracks TrackSource, transport api.Transport, display api.Display, status api.StatusSink, opts Options, logger zerolog.Logger) *Machine {
	return &Machine{
		tracks:    tracks,
		transport: transport,
		display:   display,
		status:    status,
		driver:    NewDriver(transport, display, opts.TickInterval, opts.NewTicker),
		session:   newSession(nil, timeline.Timeline{}),
		autoplay:  opts.Autoplay,
		logger:    logger.With().Str("component", "lipsync").Logger(),
	}
}

// Session returns the live playback session
func (m *Machine) Session() *PlaybackSession {
	return m.session
}

// Driver returns the animation driver
func (m *Machine) Driver() *Driver {
	return m.driver
}

// Init shows the idle mouth
func (m *Machine) Init() {
	m.session.show(m.display, api.IdleVisemeID, true)
}

// SelectTrack switches to the track with the given id. The driver is
// stopped before the timeline is swapped; the new track is then loaded and
// playback starts once the transport reports it ready.
func (m *Machine) SelectTrack(id string) error {
	track, tl, err := m.tracks.Lookup(id)
	if err != nil {
		m.logger.Error().Err(err).Str("track", id).Msg("Invalid track selected")
		m.status.SetError(err)
		return err
	}

	m.status.ClearMessages()
	m.status.SetLoading(fmt.Sprintf("Loading %s voice...", track.Name))

	m.driver.Stop()
	if err := m.transport.Pause(); err != nil {
		m.logger.Warn().Err(err).Msg("Pause before track switch failed")
	}
	if err := m.transport.Seek(0); err != nil {
		m.logger.Warn().Err(err).Msg("Rewind before track switch failed")
	}

	m.session = newSession(track, tl)
	m.session.show(m.display, api.IdleVisemeID, true)
	m.status.SetActiveTrack(track.ID)

	m.logger.Info().
		Str("track", track.ID).
		Str("session", m.session.ID).
		Int("visemes", tl.Len()).
		Msg("Track selected")
	if tl.Empty() {
		m.logger.Warn().Str("track", track.ID).Err(playerrors.ErrEmptyTimeline).Msg("Mouth will stay idle")
		if loadErr := m.tracks.TimelineError(track.ID); loadErr != nil {
			kind := playerrors.KindOf(loadErr)
			if kind == playerrors.KindUnknown {
				kind = playerrors.KindAssetLoad
			}
			m.session.timelineErr = playerrors.NewPlayerError(kind, "load visemes", track.Name,
				fmt.Errorf("%w: %w", playerrors.ErrEmptyTimeline, loadErr))
		}
	}

	if err := m.transport.Load(track); err != nil {
		m.fail(playerrors.AssetLoad("load audio", track.ID, err))
		return err
	}
	return nil
}

// HandleEvent applies a transport notification
func (m *Machine) HandleEvent(ev api.TransportEvent) {
	if ev.Type == api.EventPositionUpdate {
		return
	}
	if ev.TrackID != "" && m.session.Track != nil && ev.TrackID != m.session.Track.ID {
		m.logger.Debug().
			Str("event", ev.Type.String()).
			Str("track", ev.TrackID).
			Str("active", m.session.Track.ID).
			Msg("Ignoring event for replaced track")
		return
	}

	m.logger.Debug().Str("event", ev.Type.String()).Dur("position", ev.Position).Msg("Transport event")

	switch ev.Type {
	case api.EventReady:
		m.onReady()
	case api.EventPlaying:
		m.onPlaying()
	case api.EventPaused:
		// The mouth keeps its last shape while paused
		m.driver.Stop()
	case api.EventSeeked:
		m.resync()
	case api.EventEnded:
		m.onEnded()
	case api.EventError:
		m.fail(ev.Err)
	}
}

func (m *Machine) onReady() {
	m.clearStatus()
	if !m.autoplay {
		m.status.SetError(m.autoplayRejected(playerrors.ErrAutoplayRejected))
		return
	}
	if err := m.transport.Play(); err != nil {
		m.status.SetError(m.autoplayRejected(err))
	}
}

func (m *Machine) autoplayRejected(err error) error {
	name := ""
	if m.session.Track != nil {
		name = m.session.Track.Name
	}
	m.logger.Warn().Err(err).Str("track", name).Msg("Autoplay rejected")
	return playerrors.NewPlayerError(playerrors.KindAutoplayRejected, "autoplay", name,
		fmt.Errorf("%w: press play to start %s", err, name))
}

func (m *Machine) onPlaying() {
	m.clearStatus()

	if m.session.Track == nil {
		m.logger.Warn().Msg("Playback started without a track, selecting default")
		if err := m.SelectTrack(m.tracks.DefaultID()); err != nil {
			m.status.SetError(fmt.Errorf("select a voice first: %w", err))
		}
		return
	}

	// Playback may start anywhere, so the cursor is recomputed rather than
	// trusted.
	m.resync()
	if m.session.Timeline().Empty() {
		return
	}
	m.driver.Start()
}

// resync repositions the cursor at the transport clock and redraws
func (m *Machine) resync() {
	at := m.transport.Position()
	id := m.session.cursor.Reseek(at)
	m.session.show(m.display, id, false)
	m.logger.Debug().Dur("position", at).Int("index", m.session.cursor.Index()).Msg("Cursor resynchronized")
}

func (m *Machine) onEnded() {
	m.driver.Stop()
	m.session.cursor.Reset()
	m.session.show(m.display, api.IdleVisemeID, true)
	m.status.SetActiveTrack("")
	m.clearStatus()
}

// clearStatus clears the status line, keeping a timeline load failure of
// the active track on screen.
func (m *Machine) clearStatus() {
	m.status.ClearMessages()
	if err := m.session.timelineErr; err != nil {
		m.status.SetError(err)
	}
}

// ReportError surfaces a failure that happened outside a track switch, such
// as assets or timelines that could not be loaded at startup.
func (m *Machine) ReportError(err error) {
	if err == nil {
		return
	}
	m.logger.Error().Err(err).Msg("Load failure reported")
	m.status.SetError(err)
}

// fail surfaces a recoverable error and leaves the mouth idle
func (m *Machine) fail(err error) {
	if playerrors.KindOf(err) == playerrors.KindAutoplayRejected {
		m.status.SetError(err)
		return
	}
	m.logger.Error().Err(err).Msg("Playback error")
	m.driver.Stop()
	m.session.show(m.display, api.IdleVisemeID, true)
	m.status.SetError(err)
}

// Tick runs one driver step
func (m *Machine) Tick() {
	m.driver.Tick(m.session)
}

// TogglePlay pauses a playing track and plays a paused one. With no track
// selected it selects the default track.
func (m *Machine) TogglePlay() {
	if m.session.Track == nil {
		if err := m.SelectTrack(m.tracks.DefaultID()); err != nil {
			m.status.SetError(fmt.Errorf("select a voice first: %w", err))
		}
		return
	}

	if m.transport.Status() == api.StatusPlaying {
		if err := m.transport.Pause(); err != nil {
			m.status.SetError(err)
		}
		return
	}
	if err := m.transport.Play(); err != nil {
		m.status.SetError(err)
	}
}

// SeekBy moves the transport clock by delta, clamped at the start
func (m *Machine) SeekBy(delta time.Duration) {
	if m.session.Track == nil {
		return
	}
	pos := m.transport.Position() + delta
	if pos < 0 {
		pos = 0
	}
	if err := m.transport.Seek(pos); err != nil {
		m.status.SetError(err)
	}
}

// Shutdown stops the driver and releases the transport
func (m *Machine) Shutdown() {
	m.driver.Stop()
	if err := m.transport.Stop(); err != nil {
		m.logger.Debug().Err(err).Msg("Transport already stopped")
	}
}
