package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jscyril/golang_lipsync_avatar/api"
	"github.com/jscyril/golang_lipsync_avatar/internal/config"
	"github.com/jscyril/golang_lipsync_avatar/internal/ui/components"
	"github.com/jscyril/golang_lipsync_avatar/internal/ui/views"
)

// Controller accepts user commands. The lipsync loop implements it.
type Controller interface {
	SelectTrack(id string) bool
	TogglePlay() bool
	SeekBy(delta time.Duration) bool
}

// Model is the main bubbletea model
type Model struct {
	// Dimensions
	width  int
	height int

	playerView views.PlayerView
	trackList  components.TrackList

	controller Controller
	keys       config.KeyMap
	seekStep   time.Duration

	headerStyle lipgloss.Style
}

// NewModel creates a new application model
func NewModel(controller Controller, tracks []*api.VoiceTrack, keys config.KeyMap, seekStep time.Duration) Model {
	m := Model{
		width:      80,
		height:     24,
		playerView: views.NewPlayerView(80),
		trackList:  components.NewTrackList(80),
		controller: controller,
		keys:       keys,
		seekStep:   seekStep,
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			MarginBottom(1),
	}
	m.trackList.SetItems(tracks)
	return m
}

// Init starts the loading spinner
func (m Model) Init() tea.Cmd {
	return m.playerView.Spinner.Tick
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playerView.Width = msg.Width
		m.playerView.ProgressBar.Width = msg.Width - 8
		m.trackList.Width = msg.Width

	case PlaybackMsg:
		// Late events of a replaced track would move the wrong progress bar
		if msg.TrackID == m.trackList.Active {
			m.playerView.SetPlayback(msg.Status, msg.Position, msg.Duration)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.playerView, cmd = m.playerView.Update(msg)
		return m, cmd

	case MouthMsg:
		m.playerView.VisemeID = msg.VisemeID

	case LoadingMsg:
		m.playerView.Loading = msg.Text
		m.playerView.Err = nil
		m.playerView.Notice = ""
		m.trackList.Disabled = msg.Text != ""

	case ErrorMsg:
		m.playerView.Loading = ""
		m.playerView.Err = msg.Err
		m.trackList.Disabled = false

	case ClearMsg:
		m.playerView.Loading = ""
		m.playerView.Err = nil
		m.playerView.Notice = ""
		m.trackList.Disabled = false

	case NoticeMsg:
		m.playerView.Notice = msg.Text

	case ActiveTrackMsg:
		m.trackList.Active = msg.TrackID
		track, _ := m.trackList.Track(msg.TrackID)
		m.playerView.SetTrack(track)

	case tea.KeyMsg:
		return m, m.handleKey(msg.String())
	}

	return m, nil
}

// handleKey maps a key to a controller call. Calls run as commands so
// Update never waits on the playback loop.
func (m Model) handleKey(key string) tea.Cmd {
	switch key {
	case m.keys.Quit, "ctrl+c":
		return tea.Quit

	case m.keys.PlayPause:
		return m.do(func(c Controller) { c.TogglePlay() })

	case m.keys.SeekForward:
		return m.do(func(c Controller) { c.SeekBy(m.seekStep) })

	case m.keys.SeekBack:
		return m.do(func(c Controller) { c.SeekBy(-m.seekStep) })
	}

	if track, ok := m.trackList.ForKey(key); ok && !m.trackList.Disabled {
		id := track.ID
		return m.do(func(c Controller) { c.SelectTrack(id) })
	}
	return nil
}

func (m Model) do(fn func(Controller)) tea.Cmd {
	if m.controller == nil {
		return nil
	}
	c := m.controller
	return func() tea.Msg {
		fn(c)
		return nil
	}
}

// View renders the UI
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerStyle.Render("Lip-sync avatar"),
		m.playerView.View(),
		m.trackList.View(),
	)
}

// Run starts the bubbletea program. ready receives the program before it
// starts so that other goroutines can send it messages.
func Run(ctx context.Context, model Model, ready func(*tea.Program)) error {
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if ready != nil {
		ready(p)
	}
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
