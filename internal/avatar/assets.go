// Package avatar maps viseme ids to the mouth graphics of the 2D avatar and
// keeps the preloaded graphic content in memory.
package avatar

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jscyril/golang_lipsync_avatar/api"
	playerrors "github.com/jscyril/golang_lipsync_avatar/pkg/errors"
)

// VisemeCount is the number of canonical viseme ids, "0" through "21".
const VisemeCount = 22

// DefaultMapping returns the viseme id to SVG filename mapping
func DefaultMapping() map[string]string {
	m := make(map[string]string, VisemeCount)
	for i := 0; i < VisemeCount; i++ {
		id := strconv.Itoa(i)
		m[id] = "SVG_" + id + ".svg"
	}
	return m
}

// Asset is the graphic for one viseme
type Asset struct {
	VisemeID string
	Filename string
	Content  []byte
}

// Assets holds the preloaded mouth graphics.
type Assets struct {
	dir     string
	mapping map[string]string
	content map[string][]byte
	workers int
	logger  zerolog.Logger
	mu      sync.RWMutex
}

// NewAssets creates an asset store reading from dir. A nil mapping uses
// DefaultMapping.
func NewAssets(dir string, mapping map[string]string, logger zerolog.Logger) *Assets {
	if mapping == nil {
		mapping = DefaultMapping()
	}
	return &Assets{
		dir:     dir,
		mapping: mapping,
		content: make(map[string][]byte),
		workers: 4,
		logger:  logger.With().Str("component", "avatar").Logger(),
	}
}

// Filenames returns the distinct asset files referenced by the mapping
func (a *Assets) Filenames() []string {
	seen := make(map[string]bool, len(a.mapping))
	names := make([]string, 0, len(a.mapping))
	for _, name := range a.mapping {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Preload reads every distinct asset once. Files that cannot be read are
// reported in the returned error but do not stop the others from loading.
func (a *Assets) Preload(ctx context.Context) error {
	names := a.Filenames()

	var mu sync.Mutex
	var failures []error

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for _, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			path := filepath.Join(a.dir, name)
			data, err := os.ReadFile(path)
			if err != nil {
				a.logger.Error().Err(err).Str("file", name).Msg("Failed to load avatar asset")
				mu.Lock()
				failures = append(failures, &playerrors.AssetError{Path: path, Err: err})
				mu.Unlock()
				return nil
			}

			a.mu.Lock()
			a.content[name] = data
			a.mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	a.logger.Info().
		Int("loaded", a.Loaded()).
		Int("failed", len(failures)).
		Msg("Avatar assets preloaded")

	if len(failures) > 0 {
		return playerrors.AssetLoad("preload assets", "", errors.Join(failures...))
	}
	return nil
}

// Loaded returns the number of assets held in memory
func (a *Assets) Loaded() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.content)
}

// Lookup returns the asset for visemeID. Unmapped ids and mapped assets that
// were never loaded fall back to the idle asset; the error reports why. The
// returned Asset is empty only when the idle asset is unavailable too.
func (a *Assets) Lookup(visemeID string) (Asset, error) {
	filename, ok := a.mapping[visemeID]
	if !ok {
		a.logger.Warn().Str("viseme", visemeID).Msg("No asset mapped for viseme, falling back to idle")
		idle, _ := a.idle()
		return idle, playerrors.NewPlayerError(playerrors.KindUnmappedViseme, "lookup", "",
			fmt.Errorf("%w: %q", playerrors.ErrUnmappedViseme, visemeID))
	}

	a.mu.RLock()
	content, loaded := a.content[filename]
	a.mu.RUnlock()
	if loaded {
		return Asset{VisemeID: visemeID, Filename: filename, Content: content}, nil
	}

	a.logger.Error().Str("viseme", visemeID).Str("file", filename).Msg("Asset mapped but not preloaded")
	idle, _ := a.idle()
	return idle, playerrors.AssetLoad("display", "", fmt.Errorf("asset %s not preloaded", filename))
}

func (a *Assets) idle() (Asset, bool) {
	filename, ok := a.mapping[api.IdleVisemeID]
	if !ok {
		return Asset{}, false
	}
	a.mu.RLock()
	content, loaded := a.content[filename]
	a.mu.RUnlock()
	if !loaded {
		return Asset{}, false
	}
	return Asset{VisemeID: api.IdleVisemeID, Filename: filename, Content: content}, true
}
