package ui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jscyril/golang_lipsync_avatar/api"
	"github.com/jscyril/golang_lipsync_avatar/internal/avatar"
	"github.com/jscyril/golang_lipsync_avatar/internal/config"
)

type fakeController struct {
	selected []string
	toggles  int
	seeks    []time.Duration
}

func (c *fakeController) SelectTrack(id string) bool {
	c.selected = append(c.selected, id)
	return true
}

func (c *fakeController) TogglePlay() bool {
	c.toggles++
	return true
}

func (c *fakeController) SeekBy(delta time.Duration) bool {
	c.seeks = append(c.seeks, delta)
	return true
}

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (s *recordingSender) Send(msg tea.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *recordingSender) sent() []tea.Msg {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tea.Msg(nil), s.msgs...)
}

func testTracks() []*api.VoiceTrack {
	return []*api.VoiceTrack{
		{ID: "american", Name: "American", Title: "American", Duration: time.Minute},
		{ID: "indian", Name: "Indian", Title: "Indian"},
	}
}

func newTestModel(c Controller) Model {
	return NewModel(c, testTracks(), config.GetDefaultConfig().KeyBindings, 5*time.Second)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes a command the way the program would, ignoring its message
func run(cmd tea.Cmd) {
	if cmd != nil {
		cmd()
	}
}

func TestKeysDispatchToController(t *testing.T) {
	c := &fakeController{}
	m := newTestModel(c)

	_, cmd := update(t, m, key("2"))
	run(cmd)
	_, cmd = update(t, m, key(" "))
	run(cmd)
	_, cmd = update(t, m, key("right"))
	run(cmd)
	_, cmd = update(t, m, key("left"))
	run(cmd)

	assert.Equal(t, []string{"indian"}, c.selected)
	assert.Equal(t, 1, c.toggles)
	assert.Equal(t, []time.Duration{5 * time.Second, -5 * time.Second}, c.seeks)
}

func TestUnboundKeysDoNothing(t *testing.T) {
	c := &fakeController{}
	m := newTestModel(c)

	_, cmd := update(t, m, key("7"))
	assert.Nil(t, cmd)
	_, cmd = update(t, m, key("x"))
	assert.Nil(t, cmd)
}

func TestQuit(t *testing.T) {
	m := newTestModel(&fakeController{})
	_, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestLoadingDisablesTrackButtons(t *testing.T) {
	c := &fakeController{}
	m := newTestModel(c)

	m, _ = update(t, m, LoadingMsg{Text: "Loading American voice..."})
	assert.Contains(t, m.View(), "Loading American voice...")

	_, cmd := update(t, m, key("1"))
	assert.Nil(t, cmd)

	m, _ = update(t, m, ClearMsg{})
	assert.NotContains(t, m.View(), "Loading American voice...")
	_, cmd = update(t, m, key("1"))
	run(cmd)
	assert.Equal(t, []string{"american"}, c.selected)
}

func TestErrorClearsLoading(t *testing.T) {
	m := newTestModel(&fakeController{})
	m, _ = update(t, m, LoadingMsg{Text: "Loading Indian voice..."})
	m, _ = update(t, m, ErrorMsg{Err: errors.New("press play to start Indian")})

	view := m.View()
	assert.Contains(t, view, "press play to start Indian")
	assert.NotContains(t, view, "Loading Indian voice...")
	assert.False(t, m.trackList.Disabled)
}

func TestMouthMsgRedrawsMouth(t *testing.T) {
	m := newTestModel(&fakeController{})
	m, _ = update(t, m, MouthMsg{VisemeID: "21"})

	assert.Equal(t, "21", m.playerView.VisemeID)
	assert.Contains(t, m.View(), avatar.MouthFor("21").Art[1])
}

func TestActiveTrackMarker(t *testing.T) {
	m := newTestModel(&fakeController{})
	m, _ = update(t, m, ActiveTrackMsg{TrackID: "indian"})
	assert.Contains(t, m.View(), "▶ [2] Indian")

	m, _ = update(t, m, ActiveTrackMsg{})
	assert.NotContains(t, m.View(), "▶ [2]")
}

func TestPlaybackMsgRefreshesProgress(t *testing.T) {
	m := newTestModel(&fakeController{})
	m, _ = update(t, m, ActiveTrackMsg{TrackID: "american"})
	assert.Contains(t, m.View(), "00:00/01:00")

	m, _ = update(t, m, PlaybackMsg{
		TrackID:  "american",
		Status:   api.StatusPlaying,
		Position: 30 * time.Second,
		Duration: time.Minute,
	})
	assert.InDelta(t, 0.5, m.playerView.ProgressBar.Fraction(), 0.001)
	assert.Equal(t, api.StatusPlaying, m.playerView.Status)
	assert.Contains(t, m.View(), "00:30/01:00")

	// a late event of another track leaves the bar alone
	m, _ = update(t, m, PlaybackMsg{TrackID: "indian", Status: api.StatusPaused, Position: 50 * time.Second, Duration: time.Minute})
	assert.Equal(t, api.StatusPlaying, m.playerView.Status)
	assert.Contains(t, m.View(), "00:30/01:00")

	m, _ = update(t, m, ActiveTrackMsg{})
	assert.Contains(t, m.View(), "Pick a voice to start")
}

func TestStartupFailureIsShown(t *testing.T) {
	sender := &recordingSender{}
	b := NewBridge(sender)
	b.SetError(errors.New("preload assets failed: SVG_6.svg missing"))

	m := newTestModel(&fakeController{})
	for _, msg := range sender.sent() {
		m, _ = update(t, m, msg)
	}
	assert.Contains(t, m.View(), "SVG_6.svg missing")
}

func TestNoticeClearedByStatusChange(t *testing.T) {
	m := newTestModel(&fakeController{})
	m, _ = update(t, m, NoticeMsg{Text: "American visemes reloaded"})
	assert.Contains(t, m.View(), "American visemes reloaded")

	m, _ = update(t, m, LoadingMsg{Text: "Loading American voice..."})
	assert.NotContains(t, m.View(), "American visemes reloaded")
}

func TestBridgeForwardsTransportEvents(t *testing.T) {
	sender := &recordingSender{}
	b := NewBridge(sender)
	events := make(chan api.TransportEvent, 2)
	events <- api.TransportEvent{Type: api.EventPositionUpdate, TrackID: "american", Status: api.StatusPlaying, Position: time.Second, Duration: time.Minute}
	events <- api.TransportEvent{Type: api.EventPaused, TrackID: "american", Status: api.StatusPaused, Position: 2 * time.Second, Duration: time.Minute}
	close(events)

	require.NoError(t, b.Forward(context.Background(), events))

	assert.Equal(t, []tea.Msg{
		PlaybackMsg{TrackID: "american", Status: api.StatusPlaying, Position: time.Second, Duration: time.Minute},
		PlaybackMsg{TrackID: "american", Status: api.StatusPaused, Position: 2 * time.Second, Duration: time.Minute},
	}, sender.sent())
}

func TestBridgeForwardStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewBridge(nil).Forward(ctx, make(chan api.TransportEvent))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBridgeForwardsCalls(t *testing.T) {
	sender := &recordingSender{}
	b := NewBridge(nil)
	b.Show("3")
	b.SetSender(sender)

	failure := errors.New("boom")
	b.Show("6")
	b.SetLoading("Loading")
	b.SetError(failure)
	b.ClearMessages()
	b.SetActiveTrack("indian")
	b.Notify("reloaded")

	assert.Equal(t, []tea.Msg{
		MouthMsg{VisemeID: "6"},
		LoadingMsg{Text: "Loading"},
		ErrorMsg{Err: failure},
		ClearMsg{},
		ActiveTrackMsg{TrackID: "indian"},
		NoticeMsg{Text: "reloaded"},
	}, sender.sent())
}
