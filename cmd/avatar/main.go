package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jscyril/golang_lipsync_avatar/api"
	"github.com/jscyril/golang_lipsync_avatar/internal/audio"
	"github.com/jscyril/golang_lipsync_avatar/internal/avatar"
	"github.com/jscyril/golang_lipsync_avatar/internal/config"
	"github.com/jscyril/golang_lipsync_avatar/internal/lipsync"
	"github.com/jscyril/golang_lipsync_avatar/internal/logging"
	"github.com/jscyril/golang_lipsync_avatar/internal/tracks"
	"github.com/jscyril/golang_lipsync_avatar/internal/ui"
	"github.com/jscyril/golang_lipsync_avatar/pkg/events"
)

func main() {
	headless := flag.Bool("headless", false, "play the default voice without the terminal UI")
	flag.Parse()

	if err := run(*headless); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(headless bool) error {
	if _, err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	// Load configuration
	cfg, err := config.LoadOrCreate(config.GetConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logs, err := logging.New(logging.Config{
		LogDir:  cfg.LogDir,
		Level:   cfg.Level(),
		Console: headless,
	})
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logs.Close()
	log := logs.Zerolog()

	// Setup context with graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bus := events.NewEventBus()
	defer bus.Close()
	transportEvents := bus.Subscribe(
		api.EventReady, api.EventPlaying, api.EventPaused,
		api.EventSeeked, api.EventEnded, api.EventError,
	)
	var progressEvents <-chan api.TransportEvent
	if !headless {
		progressEvents = bus.Subscribe(
			api.EventPlaying, api.EventPaused, api.EventSeeked,
			api.EventEnded, api.EventPositionUpdate,
		)
	}

	engine := audio.NewAudioEngine(bus, log)
	engine.Start(ctx)
	if err := engine.SetVolume(cfg.Volume); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}

	// Load failures are shown once the playback loop runs
	var loadErrs []error

	assets := avatar.NewAssets(cfg.AssetDir, avatar.DefaultMapping(), log)
	if err := assets.Preload(ctx); err != nil {
		log.Warn().Err(err).Int("loaded", assets.Loaded()).Msg("Some viseme assets are missing")
		loadErrs = append(loadErrs, err)
	}

	catalog, err := loadCatalog(ctx, cfg, log)
	if err != nil && catalog == nil {
		return err
	}
	if err != nil {
		loadErrs = append(loadErrs, err)
	}
	loadErr := errors.Join(loadErrs...)

	var bridge *ui.Bridge
	notify := func(text string) { log.Info().Msg(text) }
	if !headless {
		bridge = ui.NewBridge(nil)
		notify = bridge.Notify
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.WatchTimelines {
		watcher, err := tracks.NewWatcher(catalog, log)
		if err != nil {
			log.Warn().Err(err).Msg("Timeline hot reload disabled")
		} else {
			defer watcher.Close()
			g.Go(func() error { return ignoreCancel(watcher.Run(ctx)) })
			g.Go(func() error { return reportReloads(ctx, watcher, catalog, notify) })
		}
	}

	opts := lipsync.Options{
		Autoplay:     cfg.Autoplay,
		TickInterval: cfg.TickInterval(),
	}

	if headless {
		status := &logStatus{logger: logs.Component("status")}
		display := avatar.NewAssetDisplay(assets, avatar.NewLogDisplay(assets, log), status)
		loop := lipsync.NewLoop(lipsync.NewMachine(catalog, engine, display, status, opts, log), transportEvents)
		if loadErr != nil {
			loop.ReportError(loadErr)
		}
		g.Go(func() error { return ignoreCancel(loop.Run(ctx)) })
		loop.SelectTrack(catalog.DefaultID())
		return g.Wait()
	}

	display := avatar.NewAssetDisplay(assets, bridge, bridge)
	loop := lipsync.NewLoop(lipsync.NewMachine(catalog, engine, display, bridge, opts, log), transportEvents)
	if loadErr != nil {
		loop.ReportError(loadErr)
	}
	model := ui.NewModel(loop, catalog.Tracks(), cfg.KeyBindings, cfg.SeekStep())

	g.Go(func() error {
		// Quitting the UI stops everything else
		defer cancel()
		return ui.Run(ctx, model, func(p *tea.Program) {
			bridge.SetSender(p)
			g.Go(func() error { return ignoreCancel(loop.Run(ctx)) })
			g.Go(func() error { return ignoreCancel(bridge.Forward(ctx, progressEvents)) })
		})
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

// loadCatalog registers the configured tracks, then any other voice found in
// the voice directory. A catalog returned with an error holds every track,
// some with timelines that failed to load.
func loadCatalog(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*tracks.Catalog, error) {
	sources := make([]tracks.Source, 0, len(cfg.Tracks))
	seen := make(map[string]bool)
	for _, t := range cfg.Tracks {
		sources = append(sources, tracks.Source{
			ID:         t.ID,
			Name:       t.Name,
			AudioPath:  cfg.AudioPath(t),
			VisemePath: cfg.VisemePath(t),
		})
		seen[t.ID] = true
	}

	discovered, err := tracks.Discover(cfg.VoiceDir)
	if err != nil {
		log.Warn().Err(err).Msg("Voice directory not scanned")
	}
	for _, src := range discovered {
		if !seen[src.ID] {
			sources = append(sources, src)
			seen[src.ID] = true
		}
	}

	catalog := tracks.NewCatalog(cfg.DefaultTrack)
	loadErr := tracks.NewLoader(4, log).Load(ctx, catalog, sources)
	if errors.Is(loadErr, context.Canceled) {
		return nil, loadErr
	}
	if catalog.Len() == 0 {
		return nil, fmt.Errorf("no voice tracks configured or found in %s", cfg.VoiceDir)
	}
	if loadErr != nil {
		log.Warn().Err(loadErr).Msg("Some timelines failed to load")
		return catalog, fmt.Errorf("viseme timelines not loaded: %w", loadErr)
	}
	return catalog, nil
}

// reportReloads tells the user when an edited timeline has been picked up
func reportReloads(ctx context.Context, w *tracks.Watcher, catalog *tracks.Catalog, notify func(string)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case id := <-w.Reloaded():
			name := id
			if track, _, err := catalog.Lookup(id); err == nil {
				name = track.Name
			}
			notify(fmt.Sprintf("%s visemes reloaded, select the voice again to use them", name))
		}
	}
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// logStatus reports status text to the log when no UI is attached
type logStatus struct {
	logger zerolog.Logger
}

func (s *logStatus) SetLoading(message string) { s.logger.Info().Msg(message) }
func (s *logStatus) SetError(err error)        { s.logger.Error().Err(err).Msg("Playback error") }
func (s *logStatus) ClearMessages()            {}
func (s *logStatus) SetActiveTrack(trackID string) {
	s.logger.Info().Str("track", trackID).Msg("Active track")
}
