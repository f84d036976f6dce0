package strata

import "time"

// debugStats holds per-refresh timing and paint counts.
type debugStats struct {
	traverseTime time.Duration
	paintTime    time.Duration
	nodes        int
	painted      int
	layers       int
}

// FrameStats summarizes the last refresh.
type FrameStats struct {
	Nodes           int // primitives in the draw list
	Painted         int // primitives actually redrawn
	LayersRepainted int // layers cleared and repainted
	Errors          int
	Traverse        time.Duration
	Paint           time.Duration
}

// Stats returns the counters from the last refresh.
func (c *Compositor) Stats() FrameStats {
	return FrameStats{
		Nodes:           c.stats.nodes,
		Painted:         c.stats.painted,
		LayersRepainted: c.stats.layers,
		Errors:          len(c.errs),
		Traverse:        c.stats.traverseTime,
		Paint:           c.stats.paintTime,
	}
}

// debugLog writes the refresh stats at debug level when verbose.
func (c *Compositor) debugLog() {
	if c.cfg.DebugLevel != DebugVerbose {
		return
	}
	Logger().Debug("refresh",
		"nodes", c.stats.nodes,
		"painted", c.stats.painted,
		"layers", c.stats.layers,
		"errors", len(c.errs),
		"traverse", c.stats.traverseTime,
		"paint", c.stats.paintTime,
	)
}
