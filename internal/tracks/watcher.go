package tracks

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/jscyril/golang_lipsync_avatar/internal/timeline"
)

// Watcher reloads timelines when their files change on disk
type Watcher struct {
	watcher *fsnotify.Watcher
	catalog *Catalog
	logger  zerolog.Logger

	// reloaded receives the id of every track whose timeline was replaced
	reloaded chan string
}

// NewWatcher watches the directory of every catalog timeline
func NewWatcher(catalog *Catalog, logger zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		catalog:  catalog,
		logger:   logger.With().Str("component", "tracks.watcher").Logger(),
		reloaded: make(chan string, 8),
	}

	dirs := make(map[string]bool)
	for _, track := range catalog.Tracks() {
		dir := filepath.Dir(track.VisemePath)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Reloaded reports track ids after their timeline has been replaced
func (w *Watcher) Reloaded() <-chan string {
	return w.reloaded
}

// Run processes file events until ctx is cancelled or the watcher closes
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload(filepath.Clean(event.Name))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("Watcher error")
		}
	}
}

// reload replaces the timeline stored at path. A file that no longer parses
// leaves the previous timeline in place.
func (w *Watcher) reload(path string) {
	id, ok := w.catalog.TrackForVisemes(path)
	if !ok {
		return
	}

	tl, err := timeline.LoadFile(path, w.logger)
	if err != nil {
		w.logger.Warn().Err(err).Str("track", id).Msg("Keeping previous timeline")
		return
	}
	if err := w.catalog.Replace(id, tl); err != nil {
		w.logger.Warn().Err(err).Str("track", id).Msg("Track vanished during reload")
		return
	}

	w.logger.Info().Str("track", id).Int("visemes", tl.Len()).Msg("Timeline reloaded")
	select {
	case w.reloaded <- id:
	default:
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
