package lipsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jscyril/golang_lipsync_avatar/api"
)

// inLoop runs fn on the loop goroutine and waits for it to finish
func inLoop(t *testing.T, l *Loop, fn Command) {
	t.Helper()
	ran := make(chan struct{})
	require.True(t, l.Do(func(m *Machine) {
		fn(m)
		close(ran)
	}))
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not run command")
	}
}

func startLoop(t *testing.T, h *harness) (*Loop, chan api.TransportEvent, context.CancelFunc, chan error) {
	t.Helper()
	events := make(chan api.TransportEvent)
	loop := NewLoop(h.m, events)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- loop.Run(ctx) }()
	return loop, events, cancel, errc
}

func TestLoopDrivesMouth(t *testing.T) {
	h := newHarness(true)
	loop, events, cancel, errc := startLoop(t, h)
	defer cancel()

	require.True(t, loop.SelectTrack("a"))
	inLoop(t, loop, func(*Machine) {})

	events <- api.TransportEvent{Type: api.EventReady, TrackID: "a"}
	events <- api.TransportEvent{Type: api.EventPlaying, TrackID: "a"}

	var ticker *fakeTicker
	inLoop(t, loop, func(m *Machine) {
		assert.Equal(t, Running, m.Driver().State())
		ticker = h.tickers.made[len(h.tickers.made)-1]
		h.transport.position = ms(600)
	})

	ticker.c <- time.Now()

	var current string
	inLoop(t, loop, func(m *Machine) { current = m.Session().CurrentViseme() })
	assert.Equal(t, "6", current)

	events <- api.TransportEvent{Type: api.EventEnded, TrackID: "a"}
	inLoop(t, loop, func(m *Machine) {
		current = m.Session().CurrentViseme()
		assert.Equal(t, Stopped, m.Driver().State())
	})
	assert.Equal(t, "0", current)

	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)
	assert.False(t, loop.TogglePlay())
}

func TestLoopSeekAndToggle(t *testing.T) {
	h := newHarness(true)
	loop, events, cancel, errc := startLoop(t, h)
	defer cancel()

	require.True(t, loop.SelectTrack("a"))
	inLoop(t, loop, func(*Machine) {})
	events <- api.TransportEvent{Type: api.EventReady, TrackID: "a"}
	inLoop(t, loop, func(*Machine) { h.transport.position = ms(3000) })

	require.True(t, loop.SeekBy(-5*time.Second))
	require.True(t, loop.TogglePlay())

	var calls []string
	inLoop(t, loop, func(*Machine) { calls = append(calls, h.transport.calls...) })
	require.GreaterOrEqual(t, len(calls), 2)
	assert.Equal(t, []string{"seek:0", "pause"}, calls[len(calls)-2:])

	cancel()
	<-errc
}

func TestLoopExitsWhenEventsClose(t *testing.T) {
	h := newHarness(true)
	loop, events, cancel, errc := startLoop(t, h)
	defer cancel()

	exited := make(chan struct{})
	go func() {
		<-loop.Done()
		close(exited)
	}()

	close(events)

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not exit")
	}
	<-exited
	assert.False(t, loop.SelectTrack("a"))
}

func TestLoopStopsDriverOnExit(t *testing.T) {
	h := newHarness(true)
	loop, events, cancel, errc := startLoop(t, h)

	require.True(t, loop.SelectTrack("a"))
	inLoop(t, loop, func(*Machine) {})
	events <- api.TransportEvent{Type: api.EventReady, TrackID: "a"}
	events <- api.TransportEvent{Type: api.EventPlaying, TrackID: "a"}
	inLoop(t, loop, func(*Machine) {})

	cancel()
	<-errc

	assert.Equal(t, Stopped, h.m.Driver().State())
	require.Len(t, h.tickers.made, 1)
	assert.Equal(t, 1, h.tickers.made[0].stopped)
}

func TestLoopReportsLoadFailure(t *testing.T) {
	h := newHarness(true)
	failure := errors.New("timeline for indian is malformed")

	events := make(chan api.TransportEvent)
	loop := NewLoop(h.m, events)
	// queued before the loop runs, as at startup
	require.True(t, loop.ReportError(failure))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- loop.Run(ctx) }()

	var got error
	inLoop(t, loop, func(*Machine) { got = h.status.err })
	assert.Equal(t, failure, got)

	cancel()
	<-errc
}
