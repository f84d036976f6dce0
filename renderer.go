package strata

import "fmt"

// Renderer owns a scene and everything needed to paint and interact with
// it. Drive it by calling Tick once per frame from a single goroutine.
type Renderer struct {
	Scene      *Scene
	Compositor *Compositor
	Pointer    *PointerController
	Animator   *Animator
	Images     *ImageCache

	// Events receives every event no handler stopped, plus surface-level
	// events such as resize and globalout.
	Events EventDispatcher

	cfg         Config
	repaintNext bool
	disposed    bool
	frame       uint64

	injectQueue     []syntheticPointerEvent
	screenshotQueue []string
	testRunner      *TestRunner
}

// New creates a renderer. Out-of-range config values fall back to their
// defaults.
func New(cfg Config) *Renderer {
	cfg = cfg.normalized()
	r := &Renderer{
		Scene:    NewScene(),
		Animator: &Animator{},
		Images:   NewImageCache(nil),
		cfg:      cfg,
	}
	r.Compositor = NewCompositor(r.Scene, cfg)
	r.Pointer = newPointerController(r.Scene, r.Compositor, &r.Events, cfg)
	return r
}

// Config returns the active configuration.
func (r *Renderer) Config() Config { return r.cfg }

// Frame returns the number of ticks processed.
func (r *Renderer) Frame() uint64 { return r.frame }

// Add appends n as a root.
func (r *Renderer) Add(n *Node) {
	r.Scene.AddRoot(n)
}

// Remove detaches the node with the given id. Animations driving the
// subtree stop at the next tick.
func (r *Renderer) Remove(id NodeID) {
	r.Scene.Remove(id)
}

// Layer returns the layer for tier.
func (r *Renderer) Layer(tier int) *Layer { return r.Compositor.Layer(tier) }

// ConfigureLayer sets the options of a tier's layer.
func (r *Renderer) ConfigureLayer(tier int, opts LayerOptions) {
	r.Compositor.ConfigureLayer(tier, opts)
}

// Play starts an animation.
func (r *Renderer) Play(a Animation) { r.Animator.Play(a) }

// SetImageLoader sets the loader used for image primitives.
func (r *Renderer) SetImageLoader(l ImageLoader) { r.Images.SetLoader(l) }

// Tick advances one frame: scripted input, animations and pan tweens, a
// refresh when anything changed, queued screenshots, then finished image
// loads, which repaint on the following tick.
func (r *Renderer) Tick(dt float32) error {
	if r.disposed {
		return nil
	}
	r.frame++
	if r.testRunner != nil {
		r.testRunner.step(r)
	}
	r.processInjectedInput()

	r.Animator.Tick(dt, r.Scene)
	animating := false
	for _, l := range r.Compositor.Layers() {
		if l.Animating() {
			l.advance(dt)
			animating = true
		}
	}

	var err error
	if r.repaintNext || animating || r.Scene.Changed() || r.layersDirty() {
		r.repaintNext = false
		err = r.Refresh()
	}
	r.flushScreenshots()
	if r.Images.drain(r.Scene) {
		r.repaintNext = true
	}
	return err
}

func (r *Renderer) layersDirty() bool {
	for _, l := range r.Compositor.layers {
		if l.dirty {
			return true
		}
	}
	return false
}

// Refresh repaints dirty layers now.
func (r *Renderer) Refresh() error {
	return r.refresh(false)
}

// RefreshAll clears and repaints every layer now.
func (r *Renderer) RefreshAll() error {
	return r.refresh(true)
}

func (r *Renderer) refresh(full bool) error {
	if r.disposed {
		return nil
	}
	err := r.Compositor.Refresh(full)
	r.Images.requestMissing(r.Scene.drawList)
	return err
}

// RefreshNextFrame schedules a refresh on the next tick.
func (r *Renderer) RefreshNextFrame() { r.repaintNext = true }

// Resize changes the logical surface size and device pixel ratio, then
// broadcasts a resize event. A dpr of 0 keeps the current ratio.
func (r *Renderer) Resize(w, h int, dpr float64) error {
	if err := r.Compositor.Resize(w, h, dpr); err != nil {
		return fmt.Errorf("strata: resize: %w", err)
	}
	r.cfg.Width, r.cfg.Height = w, h
	r.cfg.DevicePixelRatio = r.Compositor.DevicePixelRatio()
	r.repaintNext = true
	r.Events.Trigger(&Event{Type: EventResize, Width: w, Height: h})
	return nil
}

// Dispose releases the scene and every handler. The renderer is inert
// afterwards.
func (r *Renderer) Dispose() {
	if r.disposed {
		return
	}
	for _, n := range r.Scene.Roots() {
		n.Dispose()
	}
	r.Events.Clear()
	r.injectQueue = nil
	r.screenshotQueue = nil
	r.testRunner = nil
	r.disposed = true
}

// IsDisposed reports whether Dispose was called.
func (r *Renderer) IsDisposed() bool { return r.disposed }
