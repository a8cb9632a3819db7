package lipsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jscyril/golang_lipsync_avatar/api"
	"github.com/jscyril/golang_lipsync_avatar/internal/timeline"
)

func TestDriverStartStopIdempotent(t *testing.T) {
	factory := &tickerFactory{}
	d := NewDriver(&fakeTransport{}, &fakeDisplay{}, 0, factory.New)

	assert.Equal(t, Stopped, d.State())
	assert.Nil(t, d.C())
	d.Stop()

	d.Start()
	d.Start()
	require.Len(t, factory.made, 1)
	assert.Equal(t, Running, d.State())
	assert.NotNil(t, d.C())

	d.Stop()
	d.Stop()
	assert.Equal(t, Stopped, d.State())
	assert.Equal(t, 1, factory.made[0].stopped)
	assert.Nil(t, d.C())
}

func TestDriverDefaults(t *testing.T) {
	d := NewDriver(&fakeTransport{}, &fakeDisplay{}, 0, nil)
	assert.Equal(t, DefaultTickInterval, d.interval)

	d.Start()
	defer d.Stop()
	assert.Equal(t, Running, d.State())
}

func TestDriverTickRequiresPlaying(t *testing.T) {
	transport := &fakeTransport{status: api.StatusPaused, position: ms(600)}
	display := &fakeDisplay{}
	d := NewDriver(transport, display, 0, (&tickerFactory{}).New)
	s := newSession(&api.VoiceTrack{ID: "a"}, timeline.New([]api.VisemeEvent{
		{Offset: ms(500), VisemeID: "6"},
	}))

	d.Tick(s)
	assert.Empty(t, display.shown)
	assert.Equal(t, timeline.Before, s.CursorIndex())

	transport.status = api.StatusPlaying
	d.Tick(s)
	assert.Equal(t, []string{"6"}, display.shown)
	assert.Equal(t, 0, s.CursorIndex())
}

func TestDriverStateString(t *testing.T) {
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "running", Running.String())
}
