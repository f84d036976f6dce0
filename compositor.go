package strata

import (
	"fmt"
	"slices"
	"time"
)

// Compositor maps tiers to layers and repaints only the layers whose
// content changed.
type Compositor struct {
	scene  *Scene
	cfg    Config
	layers map[int]*Layer
	opts   map[int]LayerOptions
	tiers  []int

	width, height int
	dpr           float64

	tierOf map[NodeID]int
	clip   clipScratch
	errs   []error
	stats  debugStats
}

// NewCompositor creates a compositor for scene sized from cfg.
func NewCompositor(scene *Scene, cfg Config) *Compositor {
	cfg = cfg.normalized()
	return &Compositor{
		scene:  scene,
		cfg:    cfg,
		layers: make(map[int]*Layer),
		opts:   make(map[int]LayerOptions),
		width:  cfg.Width,
		height: cfg.Height,
		dpr:    cfg.DevicePixelRatio,
		tierOf: make(map[NodeID]int),
	}
}

// Layer returns the layer for tier, creating it on first use.
func (c *Compositor) Layer(tier int) *Layer {
	if l, ok := c.layers[tier]; ok {
		return l
	}
	opts, ok := c.opts[tier]
	if !ok {
		opts = DefaultLayerOptions()
	}
	l := newLayer(tier, c.width, c.height, c.dpr, opts)
	c.layers[tier] = l
	i, _ := slices.BinarySearch(c.tiers, tier)
	c.tiers = slices.Insert(c.tiers, i, tier)
	return l
}

// ConfigureLayer sets the options for tier, now or when its layer is
// first created.
func (c *Compositor) ConfigureLayer(tier int, opts LayerOptions) {
	c.opts[tier] = opts
	if l, ok := c.layers[tier]; ok {
		l.SetOptions(opts)
	}
}

// Layers returns the live layers in ascending tier order.
func (c *Compositor) Layers() []*Layer {
	out := make([]*Layer, 0, len(c.tiers))
	for _, t := range c.tiers {
		out = append(out, c.layers[t])
	}
	return out
}

// Size returns the logical surface size.
func (c *Compositor) Size() (int, int) { return c.width, c.height }

// DevicePixelRatio returns the current surface scale.
func (c *Compositor) DevicePixelRatio() float64 { return c.dpr }

// Resize reallocates every layer. The next refresh repaints all of them.
func (c *Compositor) Resize(w, h int, dpr float64) error {
	if dpr <= 0 {
		dpr = c.dpr
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: surface size %dx%d", ErrInvalidArgument, w, h)
	}
	for _, t := range c.tiers {
		if err := c.layers[t].Resize(w, h, dpr); err != nil {
			return err
		}
	}
	c.width, c.height, c.dpr = w, h, dpr
	return nil
}

// Errors returns the paint errors collected by the last refresh.
func (c *Compositor) Errors() []error { return c.errs }

func (c *Compositor) markTier(tier int) {
	if l, ok := c.layers[tier]; ok {
		l.dirty = true
	}
}

// Refresh rebuilds the draw list and repaints dirty layers. With full set
// every layer in use is cleared and repainted.
//
// A layer is dirty when one of its primitives is dirty, when its primitive
// count changed, or when a primitive moved to or from it. Highlighted
// primitives are painted last within their tier using their highlight
// style. A layer left unused for one refresh is cleared once.
func (c *Compositor) Refresh(full bool) error {
	start := time.Now()
	list := c.scene.RebuildDrawList()
	c.errs = c.errs[:0]
	c.stats = debugStats{nodes: len(list), traverseTime: time.Since(start)}

	for _, l := range c.layers {
		l.unused++
		l.updateTransform()
	}

	counts := make(map[int]int)
	seen := make(map[NodeID]int, len(list))
	for _, n := range list {
		counts[n.ZTier]++
		seen[n.id] = n.ZTier
		if prev, ok := c.tierOf[n.id]; ok && prev != n.ZTier {
			c.markTier(prev)
		}
		if l := c.Layer(n.ZTier); n.dirty {
			l.dirty = true
		}
	}
	for id, tier := range c.tierOf {
		if _, ok := seen[id]; !ok {
			c.markTier(tier)
		}
	}
	c.tierOf = seen
	for tier, l := range c.layers {
		if counts[tier] != l.elementCount {
			l.elementCount = counts[tier]
			l.dirty = true
		}
	}

	paintStart := time.Now()
	err := c.paintPass(list, full)
	c.stats.paintTime = time.Since(paintStart)

	for _, l := range c.layers {
		if err == nil {
			l.dirty = false
		}
		if l.unused == 1 {
			l.Clear()
		}
	}
	c.debugLog()
	return err
}

func (c *Compositor) paintPass(list []*Node, full bool) error {
	var (
		cur      *Layer
		deferred []*Node
	)
	finish := func() error {
		if cur == nil {
			return nil
		}
		defer cur.ctx.Pop()
		for _, n := range deferred {
			if err := c.paintOne(cur, n, true); err != nil {
				return err
			}
		}
		deferred = deferred[:0]
		return nil
	}

	for _, n := range list {
		if cur == nil || n.ZTier != cur.Tier {
			if err := finish(); err != nil {
				return err
			}
			cur = c.Layer(n.ZTier)
			cur.unused = 0
			if full {
				cur.dirty = true
			}
			if cur.dirty {
				cur.Clear()
				c.stats.layers++
			}
			cur.ctx.Push()
		}
		if c.scene.IsHighlighted(n.id) {
			deferred = append(deferred, n)
			continue
		}
		if err := c.paintOne(cur, n, false); err != nil {
			cur.ctx.Pop()
			return err
		}
	}
	return finish()
}

// paintOne paints n if its layer is being repainted and clears its dirty
// flag. A failure either aborts the refresh or is collected, depending on
// the configured debug level.
func (c *Compositor) paintOne(l *Layer, n *Node, highlighted bool) error {
	defer func() { n.dirty = false }()
	if !l.dirty || n.Invisible {
		return nil
	}
	style := n.style
	if highlighted {
		style = style.Merge(n.highlight)
	}
	if style.Opacity <= 0 {
		return nil
	}
	err := c.paintNode(l, n, style)
	if err == nil {
		c.stats.painted++
		return nil
	}
	if c.cfg.propagatePaintErrors() {
		return err
	}
	c.errs = append(c.errs, err)
	if c.cfg.DebugLevel == DebugVerbose {
		Logger().Error("paint failed", "node", n.id, "name", n.Name, "error", err)
	}
	return nil
}
