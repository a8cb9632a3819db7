// Package tracks keeps the catalog of selectable voice tracks and their
// viseme timelines.
package tracks

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/jscyril/golang_lipsync_avatar/api"
	"github.com/jscyril/golang_lipsync_avatar/internal/timeline"
	playerrors "github.com/jscyril/golang_lipsync_avatar/pkg/errors"
)

type entry struct {
	track    *api.VoiceTrack
	timeline timeline.Timeline
	err      error // why the timeline could not be loaded
}

// Catalog maps track ids to tracks and timelines. Entries are replaced
// wholesale so a reader never sees half of a reload.
type Catalog struct {
	entries   map[string]entry
	order     []string
	defaultID string

	mu sync.RWMutex
}

// NewCatalog creates an empty catalog. defaultID may name a track that is
// added later.
func NewCatalog(defaultID string) *Catalog {
	return &Catalog{
		entries:   make(map[string]entry),
		defaultID: defaultID,
	}
}

// Add registers a track, replacing any track with the same id while keeping
// its position in the selection order.
func (c *Catalog) Add(track *api.VoiceTrack, tl timeline.Timeline) {
	c.add(track, tl, nil)
}

func (c *Catalog) add(track *api.VoiceTrack, tl timeline.Timeline, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[track.ID]; !exists {
		c.order = append(c.order, track.ID)
	}
	c.entries[track.ID] = entry{track: track, timeline: tl, err: err}
}

// TimelineError returns the load failure recorded for id's timeline, or nil
func (c *Catalog) TimelineError(id string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[id].err
}

// Lookup returns the track and timeline registered under id
func (c *Catalog) Lookup(id string) (*api.VoiceTrack, timeline.Timeline, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	if !ok {
		return nil, timeline.Timeline{}, fmt.Errorf("%w: %q", playerrors.ErrUnknownTrack, id)
	}
	return e.track, e.timeline, nil
}

// Replace swaps the timeline of an existing track and forgets any earlier
// load failure. The new timeline is used from the next selection of that
// track on.
func (c *Catalog) Replace(id string, tl timeline.Timeline) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return fmt.Errorf("%w: %q", playerrors.ErrUnknownTrack, id)
	}
	c.entries[id] = entry{track: e.track, timeline: tl}
	return nil
}

// DefaultID returns the configured default track, or the first track when
// the default is not in the catalog.
func (c *Catalog) DefaultID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.entries[c.defaultID]; ok {
		return c.defaultID
	}
	if len(c.order) > 0 {
		return c.order[0]
	}
	return c.defaultID
}

// Tracks returns every track in selection order
func (c *Catalog) Tracks() []*api.VoiceTrack {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tracks := make([]*api.VoiceTrack, 0, len(c.order))
	for _, id := range c.order {
		tracks = append(tracks, c.entries[id].track)
	}
	return tracks
}

// TrackForVisemes returns the id of the track whose timeline lives at path
func (c *Catalog) TrackForVisemes(path string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, id := range c.order {
		if filepath.Clean(c.entries[id].track.VisemePath) == filepath.Clean(path) {
			return id, true
		}
	}
	return "", false
}

// Len returns the number of tracks
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
