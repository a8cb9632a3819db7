// Package timeline holds the viseme timeline of a voice track and the
// resolver that maps a playback position to the mouth shape to display.
package timeline

import (
	"sort"
	"time"

	"github.com/jscyril/golang_lipsync_avatar/api"
)

// Timeline is an immutable sequence of viseme events sorted ascending by
// offset. Events sharing an offset keep their input order.
type Timeline struct {
	events []api.VisemeEvent
}

// New copies events and stable-sorts them by offset.
func New(events []api.VisemeEvent) Timeline {
	sorted := make([]api.VisemeEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})
	return Timeline{events: sorted}
}

// Len returns the number of events
func (t Timeline) Len() int {
	return len(t.events)
}

// Empty reports whether the timeline has no events. An empty timeline is
// always idle.
func (t Timeline) Empty() bool {
	return len(t.events) == 0
}

// At returns the event at index i
func (t Timeline) At(i int) api.VisemeEvent {
	return t.events[i]
}

// Events returns a copy of the events
func (t Timeline) Events() []api.VisemeEvent {
	out := make([]api.VisemeEvent, len(t.events))
	copy(out, t.events)
	return out
}

// End returns the offset of the last event, zero for an empty timeline.
func (t Timeline) End() time.Duration {
	if len(t.events) == 0 {
		return 0
	}
	return t.events[len(t.events)-1].Offset
}

// Last returns the final event, false for an empty timeline
func (t Timeline) Last() (api.VisemeEvent, bool) {
	if len(t.events) == 0 {
		return api.VisemeEvent{}, false
	}
	return t.events[len(t.events)-1], true
}

// Equal reports whether both timelines hold the same events in the same order.
func (t Timeline) Equal(other Timeline) bool {
	if len(t.events) != len(other.events) {
		return false
	}
	for i := range t.events {
		if t.events[i] != other.events[i] {
			return false
		}
	}
	return true
}
