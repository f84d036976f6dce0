package strata

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"
)

// textPadding is the gap between a shape's bounds and an outside label.
const textPadding = 4.0

// Fonts caches faces per size for one font source.
type Fonts struct {
	source *text.FontSource
	faces  map[float64]text.Face
}

// NewFonts parses TrueType/OpenType data. Nil data selects Go Regular.
func NewFonts(data []byte) (*Fonts, error) {
	if data == nil {
		data = goregular.TTF
	}
	src, err := text.NewFontSource(data)
	if err != nil {
		return nil, fmt.Errorf("strata: parse font: %w", err)
	}
	return &Fonts{source: src, faces: make(map[float64]text.Face)}, nil
}

var defaultFonts *Fonts

// DefaultFonts returns the shared Go Regular face cache.
func DefaultFonts() *Fonts {
	if defaultFonts == nil {
		f, err := NewFonts(nil)
		if err != nil {
			panic(err) // embedded font always parses
		}
		defaultFonts = f
	}
	return defaultFonts
}

// Face returns the face for size, rounded to a quarter point.
func (f *Fonts) Face(size float64) text.Face {
	size = math.Max(1, math.Round(size*4)/4)
	if face, ok := f.faces[size]; ok {
		return face
	}
	face := f.source.Face(size)
	f.faces[size] = face
	return face
}

// Measure returns the advance width, ascent and descent of s at size.
func (f *Fonts) Measure(s string, size float64) (w, ascent, descent float64) {
	face := f.Face(size)
	m := face.Metrics()
	w, _ = text.Measure(s, face)
	return w, m.Ascent, m.Descent
}

// TextShape is a single line of text whose box has its top-left at (X, Y).
type TextShape struct {
	X, Y     float64
	Content  string
	FontSize float64
	Fonts    *Fonts // nil uses DefaultFonts
}

// NewText creates a text primitive.
func NewText(name string, x, y float64, content string, size float64) *Node {
	return NewPrimitive(name, &TextShape{X: x, Y: y, Content: content, FontSize: size})
}

// Kind returns "text".
func (t *TextShape) Kind() string { return "text" }

func (t *TextShape) fonts() *Fonts {
	if t.Fonts != nil {
		return t.Fonts
	}
	return DefaultFonts()
}

func (t *TextShape) size() float64 {
	if t.FontSize <= 0 {
		return 12
	}
	return t.FontSize
}

func (t *TextShape) bounds() Rect {
	w, asc, desc := t.fonts().Measure(t.Content, t.size())
	return Rect{X: t.X, Y: t.Y, Width: w, Height: asc + desc}
}

// BuildPath outlines the text box; it is used for hit-testing and
// background fills.
func (t *TextShape) BuildPath(p *Path) {
	b := t.bounds()
	p.Rect(b.X, b.Y, b.Width, b.Height)
}

func (t *TextShape) closedForm(x, y float64) (bool, bool) {
	return t.bounds().Contains(x, y), true
}

// textAnchor describes where a label sits: a point on the bounds given as
// fractions, a padding direction, and the label alignment (0 left/top,
// 0.5 center, 1 right/bottom) around the resulting point.
type textAnchor struct {
	fx, fy         float64
	padX, padY     float64
	alignX, alignY float64
}

var textAnchors = map[TextPosition]textAnchor{
	TextInside:   {fx: 0.5, fy: 0.5, alignX: 0.5, alignY: 0.5},
	TextTop:      {fx: 0.5, fy: 0, padY: -1, alignX: 0.5, alignY: 1},
	TextBottom:   {fx: 0.5, fy: 1, padY: 1, alignX: 0.5, alignY: 0},
	TextLeft:     {fx: 0, fy: 0.5, padX: -1, alignX: 1, alignY: 0.5},
	TextRight:    {fx: 1, fy: 0.5, padX: 1, alignX: 0, alignY: 0.5},
	TextStart:    {padX: -1, alignX: 1, alignY: 0.5},
	TextEnd:      {padX: 1, alignX: 0, alignY: 0.5},
	TextSpecific: {alignX: 0, alignY: 1},
}

// textOrigin returns the local anchor point for a label on n.
func textOrigin(n *Node, pos TextPosition, style Style) (x, y float64, a textAnchor) {
	a = textAnchors[pos]
	switch pos {
	case TextStart:
		p := n.outline().StartPoint()
		x, y = p.X, p.Y
	case TextEnd:
		p := n.outline().EndPoint()
		x, y = p.X, p.Y
	case TextSpecific:
		x, y = style.TextX, style.TextY
	default:
		b := n.shapeBounds()
		x = b.X + b.Width*a.fx
		y = b.Y + b.Height*a.fy
	}
	return x, y, a
}

// drawLabel paints s with its anchor at the local point (x, y) under m.
// gg draws glyphs in device space, so only the anchor is transformed and
// the font size follows the matrix scale.
func drawLabel(ctx *gg.Context, fonts *Fonts, s string, size float64, col Color, m Matrix, x, y float64, a textAnchor) {
	if s == "" || col.A <= 0 {
		return
	}
	scale := m.scaleFactor()
	if scale == 0 {
		return
	}
	dsize := size * scale
	dx, dy := m.Apply(x, y)
	w, asc, desc := fonts.Measure(s, dsize)
	dx += a.padX * textPadding * scale
	dy += a.padY * textPadding * scale
	left := dx - a.alignX*w
	top := dy - a.alignY*(asc+desc)
	ctx.SetFont(fonts.Face(dsize))
	ctx.SetColor(col.toNRGBA())
	ctx.DrawString(s, left, top+asc)
}

// drawAttachedText paints the style's label for n.
func drawAttachedText(ctx *gg.Context, n *Node, style Style, m Matrix) {
	if style.Text == "" {
		return
	}
	x, y, a := textOrigin(n, style.TextPosition, style)
	fonts := DefaultFonts()
	if t, ok := n.shape.(*TextShape); ok {
		fonts = t.fonts()
	}
	drawLabel(ctx, fonts, style.Text, style.FontSize, style.TextColor.scaleAlpha(style.Opacity), m, x, y, a)
}

// drawTextShape paints a TextShape's content in its fill color.
func drawTextShape(ctx *gg.Context, n *Node, t *TextShape, style Style, m Matrix) {
	col := style.Fill
	if style.Brush == BrushStroke {
		col = style.Stroke
	}
	drawLabel(ctx, t.fonts(), t.Content, t.size(), col.scaleAlpha(style.Opacity), m, t.X, t.Y,
		textAnchor{alignX: 0, alignY: 0})
}
