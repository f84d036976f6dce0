package strata

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"
)

// Shadow is a hard drop shadow painted under a primitive's fill.
// Blur is recorded for hosts that can honour it; the software compositor
// paints an unblurred offset copy.
type Shadow struct {
	Color            Color
	OffsetX, OffsetY float64
	Blur             float64
}

// Style is the full paint description of a primitive.
type Style struct {
	Fill      Color
	Stroke    Color
	LineWidth float64
	Opacity   float64
	Brush     BrushType
	LineCap   LineCap
	LineJoin  LineJoin
	Dash      []float64
	Shadow    Shadow
	Pattern   *Pattern // overrides Fill when set

	// Attached text.
	Text         string
	TextColor    Color
	FontSize     float64
	TextPosition TextPosition
	TextX, TextY float64 // anchor for TextSpecific, local coordinates
}

// DefaultStyle returns the documented defaults: black fill and stroke,
// line width 1, full opacity, fill brush, text above the shape.
func DefaultStyle() Style {
	return Style{
		Fill:         ColorBlack,
		Stroke:       ColorBlack,
		LineWidth:    1,
		Opacity:      1,
		Brush:        BrushFill,
		TextColor:    ColorBlack,
		FontSize:     12,
		TextPosition: TextTop,
	}
}

// StyleOverride is a sparse set of style fields. Nil fields keep the
// underlying value when merged.
type StyleOverride struct {
	Fill      *Color
	Stroke    *Color
	LineWidth *float64
	Opacity   *float64
	Brush     *BrushType
	Shadow    *Shadow
	TextColor *Color
	FontSize  *float64
}

// Highlight returns an empty override for chained setters.
func Highlight() *StyleOverride { return &StyleOverride{} }

func (o *StyleOverride) WithFill(c Color) *StyleOverride      { o.Fill = &c; return o }
func (o *StyleOverride) WithStroke(c Color) *StyleOverride    { o.Stroke = &c; return o }
func (o *StyleOverride) WithLineWidth(w float64) *StyleOverride { o.LineWidth = &w; return o }
func (o *StyleOverride) WithOpacity(a float64) *StyleOverride { o.Opacity = &a; return o }
func (o *StyleOverride) WithBrush(b BrushType) *StyleOverride { o.Brush = &b; return o }
func (o *StyleOverride) WithShadow(s Shadow) *StyleOverride   { o.Shadow = &s; return o }
func (o *StyleOverride) WithTextColor(c Color) *StyleOverride { o.TextColor = &c; return o }
func (o *StyleOverride) WithFontSize(s float64) *StyleOverride { o.FontSize = &s; return o }

// Merge returns s with every non-nil field of o applied. A nil o returns s.
func (s Style) Merge(o *StyleOverride) Style {
	if o == nil {
		return s
	}
	if o.Fill != nil {
		s.Fill = *o.Fill
	}
	if o.Stroke != nil {
		s.Stroke = *o.Stroke
	}
	if o.LineWidth != nil {
		s.LineWidth = *o.LineWidth
	}
	if o.Opacity != nil {
		s.Opacity = *o.Opacity
	}
	if o.Brush != nil {
		s.Brush = *o.Brush
	}
	if o.Shadow != nil {
		s.Shadow = *o.Shadow
	}
	if o.TextColor != nil {
		s.TextColor = *o.TextColor
	}
	if o.FontSize != nil {
		s.FontSize = *o.FontSize
	}
	return s
}

// normalized clamps out-of-range values back to defaults.
func (s Style) normalized() Style {
	if s.LineWidth < 0 {
		s.LineWidth = 1
	}
	if s.Opacity < 0 || s.Opacity > 1 {
		s.Opacity = clamp01(s.Opacity)
	}
	if s.Brush > BrushBoth {
		s.Brush = BrushFill
	}
	if s.TextPosition > TextSpecific {
		s.TextPosition = TextTop
	}
	if s.FontSize <= 0 {
		s.FontSize = 12
	}
	return s
}

// Repetition selects how a Pattern tiles.
type Repetition uint8

const (
	Repeat Repetition = iota
	RepeatX
	RepeatY
	NoRepeat
)

// Pattern fills with an image tiled in device space.
type Pattern struct {
	img        image.Image
	repetition Repetition
	w, h       int
}

// NewPattern creates an image pattern. repetition must be one of "repeat"
// (or empty), "repeat-x", "repeat-y" or "no-repeat".
func NewPattern(img image.Image, repetition string) (*Pattern, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: pattern image is nil", ErrInvalidArgument)
	}
	var r Repetition
	switch repetition {
	case "", "repeat":
		r = Repeat
	case "repeat-x":
		r = RepeatX
	case "repeat-y":
		r = RepeatY
	case "no-repeat":
		r = NoRepeat
	default:
		return nil, fmt.Errorf("%w: pattern repetition %q", ErrInvalidArgument, repetition)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: pattern image is empty", ErrInvalidArgument)
	}
	return &Pattern{img: img, repetition: r, w: b.Dx(), h: b.Dy()}, nil
}

// ColorAt implements gg.Pattern.
func (p *Pattern) ColorAt(x, y float64) gg.RGBA {
	ix, iy := int(math.Floor(x)), int(math.Floor(y))
	if p.repetition == Repeat || p.repetition == RepeatX {
		ix = ((ix % p.w) + p.w) % p.w
	} else if ix < 0 || ix >= p.w {
		return gg.RGBA{}
	}
	if p.repetition == Repeat || p.repetition == RepeatY {
		iy = ((iy % p.h) + p.h) % p.h
	} else if iy < 0 || iy >= p.h {
		return gg.RGBA{}
	}
	b := p.img.Bounds()
	return gg.FromColor(p.img.At(b.Min.X+ix, b.Min.Y+iy))
}
