package strata

import (
	"fmt"
	"image"
	"slices"
	"sync"

	"github.com/gogpu/gg"
)

// ImageShape draws a decoded image into the box at (X, Y) sized Width×Height.
// A zero size uses the image's own size. The pixels arrive asynchronously
// through an ImageCache; until then nothing is painted.
type ImageShape struct {
	X, Y          float64
	Width, Height float64
	Source        string
	crop          *image.Rectangle
}

// NewImage creates an image primitive. args follows the canvas drawImage
// convention and may be empty, (dx, dy), (dx, dy, dw, dh) or
// (sx, sy, sw, sh, dx, dy, dw, dh).
func NewImage(name, source string, args ...float64) (*Node, error) {
	s := &ImageShape{Source: source}
	if err := s.SetGeometry(args...); err != nil {
		return nil, err
	}
	return NewPrimitive(name, s), nil
}

// SetGeometry applies drawImage-style arguments.
func (s *ImageShape) SetGeometry(args ...float64) error {
	switch len(args) {
	case 0:
	case 2:
		s.X, s.Y = args[0], args[1]
	case 4:
		s.X, s.Y, s.Width, s.Height = args[0], args[1], args[2], args[3]
	case 8:
		r := image.Rect(int(args[0]), int(args[1]), int(args[0]+args[2]), int(args[1]+args[3]))
		s.crop = &r
		s.X, s.Y, s.Width, s.Height = args[4], args[5], args[6], args[7]
	default:
		return fmt.Errorf("%w: image geometry takes 0, 2, 4 or 8 values, got %d", ErrInvalidArgument, len(args))
	}
	return nil
}

// Kind returns "image".
func (s *ImageShape) Kind() string { return "image" }

func (s *ImageShape) bounds() Rect {
	return Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

// BuildPath traces the image bounds.
func (s *ImageShape) BuildPath(p *Path) {
	p.Rect(s.X, s.Y, s.Width, s.Height)
}

func (s *ImageShape) closedForm(x, y float64) (bool, bool) {
	return s.bounds().Contains(x, y), true
}

// drawImageShape paints the node's decoded image. gg maps only the box
// corners through the matrix, so rotation is not applied to pixels.
func drawImageShape(ctx *gg.Context, n *Node, s *ImageShape, style Style, m Matrix) {
	if n.image == nil {
		return
	}
	b := n.image.Bounds()
	if s.crop != nil {
		b = s.crop.Intersect(b)
	}
	w, h := s.Width, s.Height
	if w == 0 {
		w = float64(b.Dx())
	}
	if h == 0 {
		h = float64(b.Dy())
	}
	if b.Empty() || w <= 0 || h <= 0 || style.Opacity <= 0 {
		return
	}
	ctx.Push()
	ctx.SetTransform(m.toGG())
	ctx.DrawImageEx(gg.ImageBufFromImage(n.image), gg.DrawImageOptions{
		X:         s.X,
		Y:         s.Y,
		DstWidth:  w,
		DstHeight: h,
		SrcRect:   &b,
		Opacity:   style.Opacity,
	})
	ctx.Pop()
}

// ImageLoader fetches and decodes an image by source string. It runs on a
// background goroutine.
type ImageLoader func(source string) (image.Image, error)

type loadResult struct {
	source string
	img    image.Image
	err    error
}

// ImageCache decodes images off the frame loop and hands results back to
// the renderer at its next tick.
type ImageCache struct {
	loader  ImageLoader
	images  map[string]image.Image
	failed  map[string]error
	waiting map[string][]*Node
	wg      sync.WaitGroup

	mu   sync.Mutex
	done []loadResult // guarded by mu
}

// NewImageCache creates a cache using loader.
func NewImageCache(loader ImageLoader) *ImageCache {
	return &ImageCache{
		loader:  loader,
		images:  make(map[string]image.Image),
		failed:  make(map[string]error),
		waiting: make(map[string][]*Node),
	}
}

// Get returns a cached image.
func (c *ImageCache) Get(source string) (image.Image, bool) {
	img, ok := c.images[source]
	return img, ok
}

// Put stores a decoded image directly.
func (c *ImageCache) Put(source string, img image.Image) {
	c.images[source] = img
}

// SetLoader replaces the loader used for new requests.
func (c *ImageCache) SetLoader(l ImageLoader) { c.loader = l }

// Err returns the error of a failed load. Failed sources are not retried.
func (c *ImageCache) Err(source string) error { return c.failed[source] }

// Request binds n to its shape's source. A cached image is attached
// immediately; otherwise a load starts unless one is already pending.
func (c *ImageCache) Request(n *Node) {
	s, ok := n.shape.(*ImageShape)
	if !ok || s.Source == "" || c.failed[s.Source] != nil {
		return
	}
	if slices.Contains(c.waiting[s.Source], n) {
		return
	}
	if img, ok := c.images[s.Source]; ok {
		n.image = img
		n.MarkDirty()
		return
	}
	if c.loader == nil {
		return
	}
	pending := len(c.waiting[s.Source]) > 0
	c.waiting[s.Source] = append(c.waiting[s.Source], n)
	if pending {
		return
	}
	c.wg.Add(1)
	go func(src string) {
		defer c.wg.Done()
		img, err := c.loader(src)
		c.mu.Lock()
		c.done = append(c.done, loadResult{source: src, img: img, err: err})
		c.mu.Unlock()
	}(s.Source)
}

// requestMissing starts loads for image primitives in list that have no
// pixels yet.
func (c *ImageCache) requestMissing(list []*Node) {
	for _, n := range list {
		if _, ok := n.shape.(*ImageShape); ok && n.image == nil {
			c.Request(n)
		}
	}
}

// Wait blocks until every started load has finished. Results are queued
// without bound, so Wait never depends on a concurrent drain.
func (c *ImageCache) Wait() {
	c.wg.Wait()
}

// drain applies finished loads without blocking. It returns true when a
// live node received pixels. Nodes that were removed from scene or
// disposed meanwhile are skipped; the image is still cached.
func (c *ImageCache) drain(scene *Scene) bool {
	c.mu.Lock()
	done := c.done
	c.done = nil
	c.mu.Unlock()

	ready := false
	for _, r := range done {
		nodes := c.waiting[r.source]
		delete(c.waiting, r.source)
		if r.err != nil {
			c.failed[r.source] = r.err
			Logger().Warn("image load failed", "source", r.source, "error", r.err)
			continue
		}
		c.images[r.source] = r.img
		for _, n := range nodes {
			if n.disposed || n.Scene() != scene {
				continue
			}
			n.image = r.img
			n.MarkDirty()
			ready = true
		}
	}
	return ready
}
