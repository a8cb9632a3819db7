package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jscyril/golang_lipsync_avatar/api"
	"github.com/jscyril/golang_lipsync_avatar/internal/avatar"
	"github.com/jscyril/golang_lipsync_avatar/internal/ui/components"
)

// PlayerView shows the avatar mouth, the playback state and status text
type PlayerView struct {
	Width       int
	Track       *api.VoiceTrack
	Status      api.PlaybackStatus
	VisemeID    string
	Loading     string
	Err         error
	Notice      string
	ProgressBar components.ProgressBar
	Spinner     spinner.Model

	// Styles
	TitleStyle    lipgloss.Style
	MouthStyle    lipgloss.Style
	SoundStyle    lipgloss.Style
	StatusStyle   lipgloss.Style
	ErrorStyle    lipgloss.Style
	ControlsStyle lipgloss.Style
	BorderStyle   lipgloss.Style
}

// NewPlayerView creates a new player view showing the idle mouth
func NewPlayerView(width int) PlayerView {
	return PlayerView{
		Width:       width,
		VisemeID:    api.IdleVisemeID,
		ProgressBar: components.NewProgressBar(width - 8),
		Spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		TitleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		MouthStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("86")).
			Foreground(lipgloss.Color("217")).
			Padding(1, 4),
		SoundStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true),
		StatusStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true),
		ErrorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		ControlsStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
	}
}

// SetTrack shows track waiting to start, nil for no track
func (v *PlayerView) SetTrack(track *api.VoiceTrack) {
	v.Track = track
	if track == nil {
		v.Status = api.StatusStopped
		v.ProgressBar.SetProgress(0, 0)
		return
	}
	v.Status = api.StatusLoading
	v.ProgressBar.SetProgress(0, track.Duration)
}

// SetPlayback updates the transport status and progress
func (v *PlayerView) SetPlayback(status api.PlaybackStatus, position, total time.Duration) {
	v.Status = status
	if total == 0 && v.Track != nil {
		total = v.Track.Duration
	}
	v.ProgressBar.SetProgress(position, total)
}

// Update advances the loading spinner
func (v PlayerView) Update(msg tea.Msg) (PlayerView, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		v.Spinner, cmd = v.Spinner.Update(msg)
		return v, cmd
	}
	return v, nil
}

// MouthView renders the mouth for the current viseme
func (v PlayerView) MouthView() string {
	mouth := avatar.MouthFor(v.VisemeID)
	return v.MouthStyle.Render(strings.Join(mouth.Art[:], "\n"))
}

// View renders the player view
func (v PlayerView) View() string {
	var sb strings.Builder

	mouth := avatar.MouthFor(v.VisemeID)
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		v.MouthView(),
		"  ",
		v.SoundStyle.Render(fmt.Sprintf("viseme %s\n%s", v.VisemeID, mouth.Sounds)),
	))
	sb.WriteString("\n\n")

	if v.Track == nil {
		sb.WriteString(v.TitleStyle.Render("Pick a voice to start"))
	} else {
		sb.WriteString(v.StatusStyle.Render(statusIcon(v.Status) + " "))
		sb.WriteString(v.TitleStyle.Render(v.Track.Title))
		sb.WriteString("\n\n")
		sb.WriteString(v.ProgressBar.View())
	}

	switch {
	case v.Loading != "":
		sb.WriteString("\n\n")
		sb.WriteString(v.Spinner.View() + " " + v.StatusStyle.Render(v.Loading))
	case v.Err != nil:
		sb.WriteString("\n\n")
		sb.WriteString(v.ErrorStyle.Render(fmt.Sprintf("Error: %v", v.Err)))
	case v.Notice != "":
		sb.WriteString("\n\n")
		sb.WriteString(v.SoundStyle.Render(v.Notice))
	}

	sb.WriteString("\n\n")
	sb.WriteString(v.ControlsStyle.Render("[1-9] Voice  [Space] Play/Pause  [←/→] Seek  [q] Quit"))

	width := v.Width - 4
	if width < 20 {
		width = 20
	}
	return v.BorderStyle.Width(width).Render(sb.String())
}

func statusIcon(status api.PlaybackStatus) string {
	switch status {
	case api.StatusPlaying:
		return "▶"
	case api.StatusPaused:
		return "⏸"
	case api.StatusLoading:
		return "…"
	default:
		return "⏹"
	}
}
