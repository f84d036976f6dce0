package strata

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Screenshot queues a labeled capture of the composited layers. It is
// taken at the end of the next Tick, after the refresh, and written to
// Config.ScreenshotDir with a timestamped filename.
func (r *Renderer) Screenshot(label string) {
	r.screenshotQueue = append(r.screenshotQueue, label)
}

// Composite flattens every layer, lowest tier first, into one image at
// device resolution.
func (r *Renderer) Composite() *image.RGBA {
	w, h := r.Compositor.Size()
	dpr := r.Compositor.DevicePixelRatio()
	out := image.NewRGBA(image.Rect(0, 0, deviceSize(w, dpr), deviceSize(h, dpr)))
	for _, l := range r.Compositor.Layers() {
		img := l.Image()
		draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Over)
	}
	return out
}

// flushScreenshots writes a PNG for every queued label.
func (r *Renderer) flushScreenshots() {
	if len(r.screenshotQueue) == 0 {
		return
	}
	dir := r.cfg.ScreenshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		Logger().Error("screenshot: mkdir", "dir", dir, "error", err)
		r.screenshotQueue = r.screenshotQueue[:0]
		return
	}

	img := r.Composite()
	stamp := time.Now().Format("20060102_150405")
	for _, label := range r.screenshotQueue {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", stamp, sanitizeLabel(label)))
		if err := writePNG(path, img); err != nil {
			Logger().Error("screenshot", "error", err)
			continue
		}
		Logger().Debug("screenshot written", "path", path)
	}
	r.screenshotQueue = r.screenshotQueue[:0]
}

// writePNG encodes an image to a PNG file at the given path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
