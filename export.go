package strata

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gogpu/gg"
)

const jpegQuality = 92

// normalizeFormat lowercases and trims format and maps "jpg" to "jpeg".
func normalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "jpg" {
		return "jpeg"
	}
	return format
}

// Export rasterizes the whole draw list onto one fresh surface and encodes
// it. format is "png" or "jpeg" ("jpg" is accepted). background defaults
// to Config.ExportBackground, itself opaque white unless configured.
func (r *Renderer) Export(format string, background *Color) ([]byte, error) {
	format = normalizeFormat(format)
	if format != "png" && format != "jpeg" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if r.Scene.Changed() || r.Scene.drawList == nil {
		if err := r.Refresh(); err != nil {
			return nil, err
		}
	}

	bg := ColorOr(r.cfg.ExportBackground, ColorWhite)
	if background != nil {
		bg = *background
	}
	w, h := r.Compositor.Size()
	dpr := r.Compositor.DevicePixelRatio()
	ctx := gg.NewContext(deviceSize(w, dpr), deviceSize(h, dpr))
	defer ctx.Close()
	ctx.ClearWithColor(bg.toGG())

	c := r.Compositor
	for _, n := range r.Scene.drawList {
		if n.Invisible {
			continue
		}
		style := n.style
		if r.Scene.IsHighlighted(n.id) {
			style = style.Merge(n.highlight)
		}
		if style.Opacity <= 0 {
			continue
		}
		base := Scale(dpr, dpr)
		if l, ok := c.layers[n.ZTier]; ok {
			base = l.matrix
		}
		if err := c.paintTo(ctx, base, n, style); err != nil {
			if c.cfg.propagatePaintErrors() {
				return nil, fmt.Errorf("strata: export: %w", err)
			}
			Logger().Warn("export: paint failed", "node", n.id, "error", err)
		}
	}

	var buf bytes.Buffer
	var err error
	if format == "png" {
		err = ctx.EncodePNG(&buf)
	} else {
		err = ctx.EncodeJPEG(&buf, jpegQuality)
	}
	if err != nil {
		return nil, fmt.Errorf("strata: export %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// ExportDataURL returns Export's output as a base64 data URL.
func (r *Renderer) ExportDataURL(format string, background *Color) (string, error) {
	data, err := r.Export(format, background)
	if err != nil {
		return "", err
	}
	mime := "image/" + normalizeFormat(format)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
