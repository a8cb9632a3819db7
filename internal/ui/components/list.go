package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jscyril/golang_lipsync_avatar/api"
)

// MaxTracks is the number of tracks reachable with the digit keys
const MaxTracks = 9

// TrackList renders the voice tracks as a row of numbered buttons
type TrackList struct {
	Items    []*api.VoiceTrack
	Active   string // id of the playing track, empty for none
	Disabled bool   // buttons are inert while a track loads
	Width    int

	ActiveStyle   lipgloss.Style
	NormalStyle   lipgloss.Style
	DisabledStyle lipgloss.Style
}

// NewTrackList creates a new track list
func NewTrackList(width int) TrackList {
	button := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	return TrackList{
		Width: width,
		ActiveStyle: button.
			BorderForeground(lipgloss.Color("212")).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Bold(true),
		NormalStyle: button.
			BorderForeground(lipgloss.Color("62")),
		DisabledStyle: button.
			BorderForeground(lipgloss.Color("238")).
			Foreground(lipgloss.Color("240")),
	}
}

// SetItems sets the list items
func (l *TrackList) SetItems(items []*api.VoiceTrack) {
	if len(items) > MaxTracks {
		items = items[:MaxTracks]
	}
	l.Items = items
}

// Track returns the listed track with the given id
func (l TrackList) Track(id string) (*api.VoiceTrack, bool) {
	for _, track := range l.Items {
		if track.ID == id {
			return track, true
		}
	}
	return nil, false
}

// ForKey returns the track bound to a digit key
func (l TrackList) ForKey(key string) (*api.VoiceTrack, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return nil, false
	}
	i := int(key[0] - '1')
	if i >= len(l.Items) {
		return nil, false
	}
	return l.Items[i], true
}

// View renders the track list
func (l TrackList) View() string {
	if len(l.Items) == 0 {
		return l.DisabledStyle.Render("No voice tracks")
	}

	buttons := make([]string, 0, len(l.Items))
	for i, track := range l.Items {
		label := fmt.Sprintf("[%d] %s", i+1, truncate(track.Title, 20))
		switch {
		case l.Disabled:
			buttons = append(buttons, l.DisabledStyle.Render(label))
		case track.ID == l.Active:
			buttons = append(buttons, l.ActiveStyle.Render("▶ "+label))
		default:
			buttons = append(buttons, l.NormalStyle.Render(label))
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
	if l.Width > 0 && lipgloss.Width(row) > l.Width {
		// Stack the buttons when they do not fit side by side
		return strings.Join(buttons, "\n")
	}
	return row
}

// truncate truncates a string to the specified number of runes
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
