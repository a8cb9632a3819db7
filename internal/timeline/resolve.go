package timeline

import (
	"sort"
	"time"

	"github.com/jscyril/golang_lipsync_avatar/api"
)

// Before is the cursor index meaning "no event resolved yet". A cursor at
// Before displays the idle viseme.
const Before = -1

// Resolve returns the viseme of the last event with Offset <= at, scanning
// forward from the event after last. last must be Before or an index whose
// event is already known to qualify; the scan stops at the first event past
// at. When nothing qualifies the result is the idle viseme and last is
// returned unchanged.
func Resolve(tl Timeline, last int, at time.Duration) (string, int) {
	id, index, _ := resolve(tl, last, at)
	return id, index
}

// resolve also reports how many events the scan advanced over.
func resolve(tl Timeline, last int, at time.Duration) (string, int, int) {
	if last < Before {
		last = Before
	}
	if last >= tl.Len() {
		last = tl.Len() - 1
	}

	index := last
	steps := 0
	for i := last + 1; i < tl.Len(); i++ {
		if tl.events[i].Offset > at {
			break
		}
		index = i
		steps++
	}

	if index == Before {
		return api.IdleVisemeID, Before, steps
	}
	return tl.events[index].VisemeID, index, steps
}

// Reseek returns the index of the last event with Offset <= at, or Before
// when at precedes every event. It does not depend on any previous cursor
// position and must be used whenever the query time may have moved
// backwards.
func Reseek(tl Timeline, at time.Duration) int {
	return sort.Search(tl.Len(), func(i int) bool {
		return tl.events[i].Offset > at
	}) - 1
}

// Cursor remembers the last resolved index so that consecutive queries
// during continuous playback cost amortized O(1).
type Cursor struct {
	tl      Timeline
	index   int
	scanned int
}

// NewCursor creates a cursor positioned before the first event
func NewCursor(tl Timeline) *Cursor {
	return &Cursor{tl: tl, index: Before}
}

// Timeline returns the timeline the cursor walks
func (c *Cursor) Timeline() Timeline {
	return c.tl
}

// Index returns the last resolved index, Before if none
func (c *Cursor) Index() int {
	return c.index
}

// Reset moves the cursor before the first event
func (c *Cursor) Reset() {
	c.index = Before
}

// Resolve advances the cursor to at and returns the current viseme. at must
// not be earlier than the previous query unless Reseek was called in between.
func (c *Cursor) Resolve(at time.Duration) string {
	id, index, steps := resolve(c.tl, c.index, at)
	c.index = index
	c.scanned += steps
	return id
}

// Reseek repositions the cursor for an arbitrary time and returns the
// viseme shown there.
func (c *Cursor) Reseek(at time.Duration) string {
	c.index = Reseek(c.tl, at)
	return c.Current()
}

// Current returns the viseme at the cursor
func (c *Cursor) Current() string {
	if c.index == Before || c.tl.Empty() {
		return api.IdleVisemeID
	}
	return c.tl.events[c.index].VisemeID
}
