package lipsync

import (
	"context"
	"time"

	"github.com/jscyril/golang_lipsync_avatar/api"
)

// Command is a unit of work run on the loop goroutine
type Command func(m *Machine)

// Loop owns a Machine and runs every transport event, user command and
// driver tick on a single goroutine.
type Loop struct {
	machine  *Machine
	events   <-chan api.TransportEvent
	commands chan Command
	done     chan struct{}
}

// NewLoop creates a loop reading transport notifications from events
func NewLoop(machine *Machine, events <-chan api.TransportEvent) *Loop {
	return &Loop{
		machine:  machine,
		events:   events,
		commands: make(chan Command, 32),
		done:     make(chan struct{}),
	}
}

// Run processes events until ctx is cancelled or the event channel closes
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	defer l.machine.Shutdown()

	l.machine.Init()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-l.events:
			if !ok {
				return nil
			}
			l.machine.HandleEvent(ev)

		case cmd := <-l.commands:
			cmd(l.machine)

		case <-l.machine.driver.C():
			l.machine.Tick()
		}
	}
}

// Do queues cmd for the loop goroutine. It reports false once the loop has
// exited.
func (l *Loop) Do(cmd Command) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.commands <- cmd:
		return true
	case <-l.done:
		return false
	}
}

// SelectTrack queues a track switch
func (l *Loop) SelectTrack(id string) bool {
	return l.Do(func(m *Machine) { _ = m.SelectTrack(id) })
}

// TogglePlay queues a play/pause toggle
func (l *Loop) TogglePlay() bool {
	return l.Do(func(m *Machine) { m.TogglePlay() })
}

// SeekBy queues a relative seek
func (l *Loop) SeekBy(delta time.Duration) bool {
	return l.Do(func(m *Machine) { m.SeekBy(delta) })
}

// ReportError queues err for the status line
func (l *Loop) ReportError(err error) bool {
	return l.Do(func(m *Machine) { m.ReportError(err) })
}

// Done is closed when Run returns
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
