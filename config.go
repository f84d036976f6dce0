package strata

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Debug levels select how paint errors surface.
const (
	DebugSilent  = 0 // collect errors, log nothing
	DebugThrow   = 1 // return the first paint error from Refresh
	DebugVerbose = 2 // log every paint error and per-frame stats
)

// Config holds renderer settings. Every field can be set from the
// environment with a STRATA_ prefix, e.g. STRATA_DEBUG_LEVEL=2.
type Config struct {
	Width            int     `envconfig:"WIDTH" default:"800"`
	Height           int     `envconfig:"HEIGHT" default:"600"`
	DevicePixelRatio float64 `envconfig:"DEVICE_PIXEL_RATIO" default:"1"`
	DebugLevel       int     `envconfig:"DEBUG_LEVEL" default:"0"`
	CatchPaintErrors bool    `envconfig:"CATCH_PAINT_ERRORS" default:"true"`
	ClipEnabled      bool    `envconfig:"CLIP_ENABLED" default:"true"`
	MinHitWidth      float64 `envconfig:"MIN_HIT_WIDTH" default:"5"`
	DragThreshold    float64 `envconfig:"DRAG_THRESHOLD" default:"4"`
	ClickMoveLimit   int     `envconfig:"CLICK_MOVE_LIMIT" default:"5"`
	DoubleClickMS    int     `envconfig:"DOUBLE_CLICK_MS" default:"300"`
	ExportBackground string  `envconfig:"EXPORT_BACKGROUND" default:"white"`
	ScreenshotDir    string  `envconfig:"SCREENSHOT_DIR" default:"screenshots"`
}

// DefaultConfig returns the documented defaults without reading the environment.
func DefaultConfig() Config {
	return Config{
		Width:            800,
		Height:           600,
		DevicePixelRatio: 1,
		CatchPaintErrors: true,
		ClipEnabled:      true,
		MinHitWidth:      5,
		DragThreshold:    4,
		ClickMoveLimit:   5,
		DoubleClickMS:    300,
		ExportBackground: "white",
		ScreenshotDir:    "screenshots",
	}
}

// LoadConfig reads STRATA_* environment variables over the defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("strata", &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("strata: load config: %w", err)
	}
	return cfg.normalized(), nil
}

// normalized replaces out-of-range values with their defaults.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Height <= 0 {
		c.Height = def.Height
	}
	if c.DevicePixelRatio <= 0 {
		c.DevicePixelRatio = def.DevicePixelRatio
	}
	if c.DebugLevel < DebugSilent || c.DebugLevel > DebugVerbose {
		c.DebugLevel = def.DebugLevel
	}
	if c.MinHitWidth < 0 {
		c.MinHitWidth = def.MinHitWidth
	}
	if c.DragThreshold < 0 {
		c.DragThreshold = def.DragThreshold
	}
	if c.ClickMoveLimit < 0 {
		c.ClickMoveLimit = def.ClickMoveLimit
	}
	if c.DoubleClickMS <= 0 {
		c.DoubleClickMS = def.DoubleClickMS
	}
	return c
}

// propagatePaintErrors reports whether Refresh should stop at the first
// failing primitive.
func (c Config) propagatePaintErrors() bool {
	return c.DebugLevel == DebugThrow || !c.CatchPaintErrors
}
