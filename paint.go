package strata

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"github.com/gogpu/gg"
)

var errEmptyPath = errors.New("empty outline")

// paintNode draws n onto l under the layer matrix.
func (c *Compositor) paintNode(l *Layer, n *Node, style Style) error {
	return c.paintTo(l.ctx, l.matrix, n, style)
}

// paintTo draws n onto dst under base, the surface matrix. Panics from the
// raster backend are reported as a RenderError with Op "panic".
func (c *Compositor) paintTo(dst *gg.Context, base Matrix, n *Node, style Style) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newRenderError("panic", n, fmt.Errorf("%v", r))
		}
	}()
	m := base.Multiply(n.Transform.matrix)
	if c.cfg.ClipEnabled && len(n.clipChain) > 0 {
		return c.paintClipped(dst, base, n, style, m)
	}
	return drawPrimitive(dst, n, style, m)
}

// drawPrimitive draws the outline of n with style under the device matrix m.
func drawPrimitive(ctx *gg.Context, n *Node, style Style, m Matrix) error {
	switch s := n.shape.(type) {
	case *TextShape:
		drawTextShape(ctx, n, s, style, m)
		return nil
	case *ImageShape:
		drawImageShape(ctx, n, s, style, m)
		drawAttachedText(ctx, n, style, m)
		return nil
	}

	p := n.outline()
	if p.Len() == 0 {
		return newRenderError("fill", n, errEmptyPath)
	}
	fills := style.Brush.fills()
	strokes := style.Brush.strokes() && style.LineWidth > 0

	ctx.Push()
	defer ctx.Pop()

	if sh := style.Shadow; sh.Color.A > 0 && (sh.OffsetX != 0 || sh.OffsetY != 0) {
		ctx.SetTransform(m.Multiply(Translate(sh.OffsetX, sh.OffsetY)).toGG())
		p.drawInto(ctx)
		ctx.SetColor(sh.Color.scaleAlpha(style.Opacity).toNRGBA())
		var err error
		if fills {
			err = ctx.Fill()
		} else {
			ctx.SetLineWidth(style.LineWidth)
			err = ctx.Stroke()
		}
		if err != nil {
			return newRenderError("fill", n, err)
		}
	}

	ctx.SetTransform(m.toGG())
	p.drawInto(ctx)
	ctx.SetFillRule(gg.FillRuleNonZero)

	if fills {
		if style.Pattern != nil {
			ctx.SetFillPattern(style.Pattern)
		} else {
			ctx.SetColor(style.Fill.scaleAlpha(style.Opacity).toNRGBA())
		}
		fill := ctx.Fill
		if strokes {
			fill = ctx.FillPreserve
		}
		if err := fill(); err != nil {
			return newRenderError("fill", n, err)
		}
	}
	if strokes {
		ctx.SetLineWidth(style.LineWidth)
		ctx.SetLineCap(style.LineCap.toGG())
		ctx.SetLineJoin(style.LineJoin.toGG())
		if len(style.Dash) > 0 {
			ctx.SetDash(style.Dash...)
		} else {
			ctx.ClearDash()
		}
		ctx.SetColor(style.Stroke.scaleAlpha(style.Opacity).toNRGBA())
		if err := ctx.Stroke(); err != nil {
			return newRenderError("stroke", n, err)
		}
	}
	ctx.ClearPath()
	drawAttachedText(ctx, n, style, m)
	return nil
}

// clipScratch holds the offscreen surfaces used for clipped primitives.
// gg's fill and stroke do not honor its clip stack, so a clipped primitive
// is drawn alone and composited through an alpha mask built from the
// clip outlines.
type clipScratch struct {
	draw *gg.Context
	mask *gg.Context
}

func (s *clipScratch) ensure(w, h int) {
	if s.draw == nil || s.draw.Width() != w || s.draw.Height() != h {
		s.draw = gg.NewContext(w, h)
		s.mask = gg.NewContext(w, h)
	}
}

// paintClipped draws n through the intersection of its clip chain.
func (c *Compositor) paintClipped(dst *gg.Context, base Matrix, n *Node, style Style, m Matrix) error {
	w, h := dst.Width(), dst.Height()
	c.clip.ensure(w, h)

	sc := c.clip.draw
	sc.Identity()
	sc.Clear()
	if err := drawPrimitive(sc, n, style, m); err != nil {
		return err
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	for i := range mask.Pix {
		mask.Pix[i] = 0xff
	}
	mc := c.clip.mask
	for _, clip := range n.clipChain {
		mc.Identity()
		mc.Clear()
		mc.SetTransform(base.Multiply(clip.Transform.matrix).toGG())
		clip.outline().drawInto(mc)
		mc.SetFillRule(gg.FillRuleNonZero)
		mc.SetColor(ColorWhite.toNRGBA())
		if err := mc.Fill(); err != nil {
			return newRenderError("clip", n, err)
		}
		intersectAlpha(mask, mc.Image())
	}

	src := sc.Image()
	out := image.NewRGBA(src.Bounds())
	draw.DrawMask(out, out.Bounds(), src, image.Point{}, mask, image.Point{}, draw.Over)

	dst.Push()
	dst.Identity()
	dst.DrawImageEx(gg.ImageBufFromImage(out), gg.DrawImageOptions{})
	dst.Pop()
	return nil
}

// intersectAlpha multiplies mask by the alpha channel of img.
func intersectAlpha(mask *image.Alpha, img image.Image) {
	rgba, ok := img.(*image.RGBA)
	if !ok {
		b := img.Bounds()
		rgba = image.NewRGBA(b)
		draw.Draw(rgba, b, img, b.Min, draw.Src)
	}
	for i := range mask.Pix {
		j := i*4 + 3
		if j >= len(rgba.Pix) {
			mask.Pix[i] = 0
			continue
		}
		mask.Pix[i] = uint8(uint16(mask.Pix[i]) * uint16(rgba.Pix[j]) / 0xff)
	}
}

func (c LineCap) toGG() gg.LineCap {
	switch c {
	case CapRound:
		return gg.LineCapRound
	case CapSquare:
		return gg.LineCapSquare
	}
	return gg.LineCapButt
}

func (j LineJoin) toGG() gg.LineJoin {
	switch j {
	case JoinRound:
		return gg.LineJoinRound
	case JoinBevel:
		return gg.LineJoinBevel
	}
	return gg.LineJoinMiter
}
