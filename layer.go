package strata

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// DefaultLastFrameAlpha is the motion-blur back-buffer opacity.
const DefaultLastFrameAlpha = 0.7

// LayerOptions configures a tier's raster layer.
type LayerOptions struct {
	ClearColor     Color
	MotionBlur     bool
	LastFrameAlpha float64 // opacity of the previous frame under motion blur
	Zoomable       bool
	Panable        bool
	MinZoom        float64
	MaxZoom        float64
}

// DefaultLayerOptions returns a transparent, static layer.
func DefaultLayerOptions() LayerOptions {
	return LayerOptions{
		LastFrameAlpha: DefaultLastFrameAlpha,
		MinZoom:        0.1,
		MaxZoom:        10,
	}
}

func (o LayerOptions) normalized() LayerOptions {
	if o.LastFrameAlpha < 0 || o.LastFrameAlpha > 1 {
		o.LastFrameAlpha = DefaultLastFrameAlpha
	}
	if o.MinZoom <= 0 {
		o.MinZoom = 0.1
	}
	if o.MaxZoom < o.MinZoom {
		o.MaxZoom = math.Max(10, o.MinZoom)
	}
	return o
}

// Layer is the persistent raster surface for one tier. The surface is
// sized logical×DPR; every draw is issued through a matrix that starts with
// the DPR scale followed by the layer's pan and zoom.
type Layer struct {
	Tier int

	opts   LayerOptions
	ctx    *gg.Context
	width  int
	height int
	dpr    float64

	dirty        bool
	elementCount int
	unused       int

	PanX, PanY float64
	Zoom       float64

	view    Matrix
	inverse Matrix
	matrix  Matrix

	panTween *panAnim
}

type panAnim struct {
	tweenX, tweenY *gween.Tween
	doneX, doneY   bool
}

func newLayer(tier, w, h int, dpr float64, opts LayerOptions) *Layer {
	l := &Layer{
		Tier:   tier,
		opts:   opts.normalized(),
		ctx:    gg.NewContext(deviceSize(w, dpr), deviceSize(h, dpr)),
		width:  w,
		height: h,
		dpr:    dpr,
		dirty:  true,
		Zoom:   1,
	}
	l.updateTransform()
	return l
}

func deviceSize(logical int, dpr float64) int {
	return max(1, int(math.Ceil(float64(logical)*dpr)))
}

// Options returns the layer configuration.
func (l *Layer) Options() LayerOptions { return l.opts }

// SetOptions replaces the configuration and forces a repaint.
func (l *Layer) SetOptions(o LayerOptions) {
	l.opts = o.normalized()
	l.Zoom = math.Min(math.Max(l.Zoom, l.opts.MinZoom), l.opts.MaxZoom)
	l.dirty = true
}

// Dirty reports whether the layer repaints on the next refresh.
func (l *Layer) Dirty() bool { return l.dirty }

// MarkDirty forces a repaint on the next refresh.
func (l *Layer) MarkDirty() { l.dirty = true }

// ElementCount is the number of primitives in this tier at the last refresh.
func (l *Layer) ElementCount() int { return l.elementCount }

// Context returns the backing raster context.
func (l *Layer) Context() *gg.Context { return l.ctx }

// Image returns a copy of the layer pixels at device resolution.
func (l *Layer) Image() image.Image { return l.ctx.Image() }

// Size returns the logical size.
func (l *Layer) Size() (int, int) { return l.width, l.height }

// DevicePixelRatio returns the surface scale.
func (l *Layer) DevicePixelRatio() float64 { return l.dpr }

// Clear erases the surface to the clear color. With motion blur the
// previous frame is composited back at LastFrameAlpha.
func (l *Layer) Clear() {
	alpha := l.opts.LastFrameAlpha
	if !l.opts.MotionBlur || alpha <= 0 {
		l.clearRaw()
		return
	}
	prev := l.ctx.Image()
	l.clearRaw()
	l.ctx.Push()
	l.ctx.Identity()
	l.ctx.DrawImageEx(gg.ImageBufFromImage(prev), gg.DrawImageOptions{Opacity: alpha})
	l.ctx.Pop()
}

func (l *Layer) clearRaw() {
	if l.opts.ClearColor.A > 0 {
		l.ctx.ClearWithColor(l.opts.ClearColor.toGG())
		return
	}
	l.ctx.Clear()
}

// Resize reallocates the surface for a new logical size or DPR and
// re-establishes the DPR scale.
func (l *Layer) Resize(w, h int, dpr float64) error {
	if w <= 0 || h <= 0 || !(dpr > 0) {
		return fmt.Errorf("%w: layer size %dx%d@%g", ErrInvalidArgument, w, h, dpr)
	}
	if err := l.ctx.Resize(deviceSize(w, dpr), deviceSize(h, dpr)); err != nil {
		return fmt.Errorf("strata: resize layer %d: %w", l.Tier, err)
	}
	l.width, l.height, l.dpr = w, h, dpr
	l.ctx.Identity()
	l.updateTransform()
	l.ctx.SetTransform(l.matrix.toGG())
	l.dirty = true
	return nil
}

// updateTransform recomputes the view matrix from pan and zoom.
func (l *Layer) updateTransform() {
	if !(l.Zoom > 0) || math.IsInf(l.Zoom, 0) {
		l.Zoom = 1
	}
	view := Translate(l.PanX, l.PanY).Multiply(Scale(l.Zoom, l.Zoom))
	if !view.IsFinite() {
		return
	}
	l.view = view
	l.inverse, _ = view.Invert()
	l.matrix = Scale(l.dpr, l.dpr).Multiply(view)
}

// View returns the pan/zoom matrix (layer space to logical surface space).
func (l *Layer) View() Matrix { return l.view }

// ToLocal maps a logical surface point into layer space.
func (l *Layer) ToLocal(x, y float64) (float64, float64) {
	return l.inverse.Apply(x, y)
}

// ToSurface maps a layer-space point onto the logical surface.
func (l *Layer) ToSurface(x, y float64) (float64, float64) {
	return l.view.Apply(x, y)
}

// Pan shifts the view by (dx, dy) logical pixels when the layer is panable.
func (l *Layer) Pan(dx, dy float64) {
	if !l.opts.Panable {
		return
	}
	l.PanX += dx
	l.PanY += dy
	l.updateTransform()
	l.dirty = true
}

// ZoomAt multiplies the zoom by factor, keeping the surface point (cx, cy)
// fixed, clamped to [MinZoom, MaxZoom]. No-op unless the layer is zoomable.
func (l *Layer) ZoomAt(factor, cx, cy float64) {
	if !l.opts.Zoomable || !(factor > 0) {
		return
	}
	z := math.Min(math.Max(l.Zoom*factor, l.opts.MinZoom), l.opts.MaxZoom)
	lx, ly := l.ToLocal(cx, cy)
	l.Zoom = z
	l.PanX = cx - lx*z
	l.PanY = cy - ly*z
	l.updateTransform()
	l.dirty = true
}

// PanTo animates the pan offset to (x, y) over duration seconds.
func (l *Layer) PanTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	l.panTween = &panAnim{
		tweenX: gween.New(float32(l.PanX), float32(x), duration, easeFn),
		tweenY: gween.New(float32(l.PanY), float32(y), duration, easeFn),
	}
}

// Animating reports whether a PanTo is in progress.
func (l *Layer) Animating() bool { return l.panTween != nil }

// advance steps the pan animation by dt seconds.
func (l *Layer) advance(dt float32) {
	a := l.panTween
	if a == nil {
		return
	}
	if !a.doneX {
		val, done := a.tweenX.Update(dt)
		l.PanX = float64(val)
		a.doneX = done
	}
	if !a.doneY {
		val, done := a.tweenY.Update(dt)
		l.PanY = float64(val)
		a.doneY = done
	}
	if a.doneX && a.doneY {
		l.panTween = nil
	}
	l.updateTransform()
	l.dirty = true
}
