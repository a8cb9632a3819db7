package avatar

import (
	"github.com/rs/zerolog"

	"github.com/jscyril/golang_lipsync_avatar/api"
	playerrors "github.com/jscyril/golang_lipsync_avatar/pkg/errors"
)

var (
	_ api.Display = (*LogDisplay)(nil)
	_ api.Display = (*AssetDisplay)(nil)
)

// LogDisplay renders visemes as log lines. It is the display used when no
// terminal UI is attached.
type LogDisplay struct {
	assets *Assets
	logger zerolog.Logger
	last   Asset
}

// NewLogDisplay creates a display backed by assets
func NewLogDisplay(assets *Assets, logger zerolog.Logger) *LogDisplay {
	return &LogDisplay{
		assets: assets,
		logger: logger.With().Str("component", "display").Logger(),
	}
}

// Show logs the asset that would be drawn for visemeID
func (d *LogDisplay) Show(visemeID string) {
	asset, err := d.assets.Lookup(visemeID)
	if err != nil {
		d.logger.Debug().Err(err).Str("viseme", visemeID).Msg("Display fallback")
	}
	d.last = asset
	d.logger.Info().
		Str("viseme", asset.VisemeID).
		Str("file", asset.Filename).
		Str("sounds", MouthFor(asset.VisemeID).Sounds).
		Msg("Mouth shape")
}

// Last returns the most recently shown asset
func (d *LogDisplay) Last() Asset {
	return d.last
}

// ErrorReporter receives asset failures worth showing to the user
type ErrorReporter interface {
	SetError(err error)
}

// AssetDisplay checks every viseme against the preloaded assets before
// handing it to next. Ids without a usable asset are drawn as idle.
type AssetDisplay struct {
	assets *Assets
	next   api.Display
	errs   ErrorReporter
}

// NewAssetDisplay wraps next; errs may be nil
func NewAssetDisplay(assets *Assets, next api.Display, errs ErrorReporter) *AssetDisplay {
	return &AssetDisplay{assets: assets, next: next, errs: errs}
}

// Show draws visemeID, or idle when its asset is unmapped or missing
func (d *AssetDisplay) Show(visemeID string) {
	if _, err := d.assets.Lookup(visemeID); err != nil {
		if d.errs != nil && playerrors.KindOf(err) == playerrors.KindAssetLoad {
			d.errs.SetError(err)
		}
		visemeID = api.IdleVisemeID
	}
	d.next.Show(visemeID)
}
