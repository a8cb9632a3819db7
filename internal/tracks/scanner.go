package tracks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jscyril/golang_lipsync_avatar/api"
	"github.com/jscyril/golang_lipsync_avatar/internal/audio"
	"github.com/jscyril/golang_lipsync_avatar/internal/timeline"
	playerrors "github.com/jscyril/golang_lipsync_avatar/pkg/errors"
)

const (
	VoiceSuffix  = "_voice"
	VisemeSuffix = "_viseme.json"
)

// Source names the files of one voice track
type Source struct {
	ID         string
	Name       string
	AudioPath  string
	VisemePath string
}

// SourceFor derives a track's file layout from its display name
func SourceFor(dir, name string) Source {
	return Source{
		ID:         strings.ToLower(name),
		Name:       name,
		AudioPath:  filepath.Join(dir, name+VoiceSuffix+".wav"),
		VisemePath: filepath.Join(dir, name+VisemeSuffix),
	}
}

// Discover finds every <Name>_voice.<ext> in dir that has a matching
// <Name>_viseme.json. Sources are ordered by name.
func Discover(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &playerrors.AssetError{Path: dir, Err: err}
	}

	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			present[e.Name()] = true
		}
	}

	var sources []Source
	for _, e := range entries {
		if e.IsDir() || !audio.IsSupported(e.Name()) {
			continue
		}
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		name, ok := strings.CutSuffix(base, VoiceSuffix)
		if !ok || name == "" || !present[name+VisemeSuffix] {
			continue
		}
		sources = append(sources, Source{
			ID:         strings.ToLower(name),
			Name:       name,
			AudioPath:  filepath.Join(dir, e.Name()),
			VisemePath: filepath.Join(dir, name+VisemeSuffix),
		})
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })
	return sources, nil
}

// Loader reads timelines and metadata for many sources concurrently
type Loader struct {
	workers    int
	metaReader *MetadataReader
	logger     zerolog.Logger
}

// NewLoader creates a loader using at most workers goroutines
func NewLoader(workers int, logger zerolog.Logger) *Loader {
	if workers <= 0 {
		workers = 4
	}
	return &Loader{
		workers:    workers,
		metaReader: NewMetadataReader(),
		logger:     logger.With().Str("component", "tracks").Logger(),
	}
}

// Load fills catalog with sources in the order given. A source whose
// timeline cannot be loaded is still added with an empty timeline, so its
// mouth stays idle; the failures are joined into the returned error.
func (l *Loader) Load(ctx context.Context, catalog *Catalog, sources []Source) error {
	tracks := make([]*api.VoiceTrack, len(sources))
	timelines := make([]timeline.Timeline, len(sources))
	failures := make([]error, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tracks[i] = l.track(src)
			tl, err := timeline.LoadFile(src.VisemePath, l.logger)
			if err != nil {
				failures[i] = fmt.Errorf("track %s: %w", src.ID, err)
				l.logger.Error().Err(err).Str("track", src.ID).Msg("Timeline not loaded, mouth will stay idle")
			}
			timelines[i] = tl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, track := range tracks {
		catalog.add(track, timelines[i], failures[i])
		l.logger.Info().
			Str("track", track.ID).
			Str("title", track.Title).
			Int("visemes", timelines[i].Len()).
			Msg("Track registered")
	}

	return errors.Join(failures...)
}

func (l *Loader) track(src Source) *api.VoiceTrack {
	track := &api.VoiceTrack{
		ID:         src.ID,
		Name:       src.Name,
		Title:      src.Name,
		AudioPath:  src.AudioPath,
		VisemePath: src.VisemePath,
		Duration:   l.metaReader.Duration(src.AudioPath),
	}
	if title := l.metaReader.Title(src.AudioPath); title != "" {
		track.Title = title
	}
	return track
}
