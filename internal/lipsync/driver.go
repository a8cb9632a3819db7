package lipsync

import (
	"time"

	"github.com/jscyril/golang_lipsync_avatar/api"
)

// DefaultTickInterval approximates the display refresh cadence
const DefaultTickInterval = 16 * time.Millisecond

// DriverState is the animation driver state
type DriverState int

const (
	Stopped DriverState = iota
	Running
)

func (s DriverState) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Ticker is a cancellable repeating task
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the production TickerFunc
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Driver samples the transport clock on every tick while the transport is
// playing and forwards viseme changes to the display.
type Driver struct {
	transport api.Transport
	display   api.Display
	interval  time.Duration
	newTicker TickerFunc
	ticker    Ticker
}

// NewDriver creates a stopped driver. A zero interval uses
// DefaultTickInterval and a nil newTicker uses NewTimeTicker.
func NewDriver(transport api.Transport, display api.Display, interval time.Duration, newTicker TickerFunc) *Driver {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if newTicker == nil {
		newTicker = NewTimeTicker
	}
	return &Driver{
		transport: transport,
		display:   display,
		interval:  interval,
		newTicker: newTicker,
	}
}

// State returns Running while the repeating task is scheduled
func (d *Driver) State() DriverState {
	if d.ticker != nil {
		return Running
	}
	return Stopped
}

// Start schedules the repeating task. Starting a running driver is a no-op.
func (d *Driver) Start() {
	if d.ticker != nil {
		return
	}
	d.ticker = d.newTicker(d.interval)
}

// Stop cancels the repeating task. Stopping a stopped driver is a no-op.
func (d *Driver) Stop() {
	if d.ticker == nil {
		return
	}
	d.ticker.Stop()
	d.ticker = nil
}

// C returns the tick channel, nil while stopped so that a select on it
// never fires.
func (d *Driver) C() <-chan time.Time {
	if d.ticker == nil {
		return nil
	}
	return d.ticker.C()
}

// Tick resolves the viseme for the current transport position and shows it
// if it changed. It does nothing unless the transport reports playing.
func (d *Driver) Tick(s *PlaybackSession) {
	if d.transport.Status() != api.StatusPlaying {
		return
	}
	id := s.cursor.Resolve(d.transport.Position())
	s.show(d.display, id, false)
}
