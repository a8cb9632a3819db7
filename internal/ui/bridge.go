package ui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jscyril/golang_lipsync_avatar/api"
)

// MouthMsg asks the view to draw a viseme
type MouthMsg struct{ VisemeID string }

// LoadingMsg sets the loading text, empty to clear it
type LoadingMsg struct{ Text string }

// ErrorMsg shows a recoverable error
type ErrorMsg struct{ Err error }

// ClearMsg removes loading and error text
type ClearMsg struct{}

// ActiveTrackMsg moves the playing-track marker, empty to clear it
type ActiveTrackMsg struct{ TrackID string }

// PlaybackMsg carries the transport status and clock of a track
type PlaybackMsg struct {
	TrackID  string
	Status   api.PlaybackStatus
	Position time.Duration
	Duration time.Duration
}

// NoticeMsg shows an informational line until the next status change
type NoticeMsg struct{ Text string }

// Sender delivers messages into a running program; *tea.Program is one.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge forwards display and status calls from the playback loop into the
// bubbletea program.
type Bridge struct {
	mu     sync.RWMutex
	sender Sender
}

// NewBridge creates a bridge; messages sent before SetSender are dropped
func NewBridge(sender Sender) *Bridge {
	return &Bridge{sender: sender}
}

// SetSender attaches the program once it exists
func (b *Bridge) SetSender(sender Sender) {
	b.mu.Lock()
	b.sender = sender
	b.mu.Unlock()
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.RLock()
	sender := b.sender
	b.mu.RUnlock()
	if sender != nil {
		sender.Send(msg)
	}
}

// Show draws visemeID
func (b *Bridge) Show(visemeID string) { b.send(MouthMsg{VisemeID: visemeID}) }

// SetLoading shows message with a spinner
func (b *Bridge) SetLoading(message string) { b.send(LoadingMsg{Text: message}) }

// SetError shows err
func (b *Bridge) SetError(err error) { b.send(ErrorMsg{Err: err}) }

// ClearMessages clears the status line
func (b *Bridge) ClearMessages() { b.send(ClearMsg{}) }

// SetActiveTrack marks the playing track
func (b *Bridge) SetActiveTrack(trackID string) { b.send(ActiveTrackMsg{TrackID: trackID}) }

// Notify shows text as a notice
func (b *Bridge) Notify(text string) { b.send(NoticeMsg{Text: text}) }

// Forward turns transport events into PlaybackMsgs until ctx ends or events
// closes.
func (b *Bridge) Forward(ctx context.Context, events <-chan api.TransportEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			b.send(PlaybackMsg{
				TrackID:  ev.TrackID,
				Status:   ev.Status,
				Position: ev.Position,
				Duration: ev.Duration,
			})
		}
	}
}

var (
	_ api.Display    = (*Bridge)(nil)
	_ api.StatusSink = (*Bridge)(nil)
)
