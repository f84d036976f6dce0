package strata

import "math"

// Vec2 is a 2D vector used for positions, offsets and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The origin is top-left, Y grows downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.Width, o.X+o.Width)
	maxY := math.Max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Inset grows (d > 0) or shrinks (d < 0) the rectangle on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// boundsOf returns the bounding rectangle of a set of points.
func boundsOf(pts ...Vec2) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// NodeKind distinguishes groups from drawable primitives.
type NodeKind uint8

const (
	KindGroup     NodeKind = iota // ordered children, optional clip
	KindPrimitive                 // drawable leaf with a Shape
)

func (k NodeKind) String() string {
	if k == KindGroup {
		return "group"
	}
	return "primitive"
}

// BrushType selects which paint operations run for a primitive.
type BrushType uint8

const (
	BrushFill   BrushType = iota // fill only
	BrushStroke                  // stroke only
	BrushBoth                    // fill, then stroke
)

// ParseBrushType maps "fill", "stroke" and "both" to a BrushType.
// Unknown values fall back to BrushFill.
func ParseBrushType(s string) BrushType {
	switch s {
	case "stroke":
		return BrushStroke
	case "both":
		return BrushBoth
	default:
		return BrushFill
	}
}

func (b BrushType) String() string {
	switch b {
	case BrushStroke:
		return "stroke"
	case BrushBoth:
		return "both"
	default:
		return "fill"
	}
}

func (b BrushType) fills() bool   { return b == BrushFill || b == BrushBoth }
func (b BrushType) strokes() bool { return b == BrushStroke || b == BrushBoth }

// TextPosition anchors a primitive's attached text relative to its bounds.
type TextPosition uint8

const (
	TextTop      TextPosition = iota // centered above the bounds
	TextInside                       // centered inside the bounds
	TextBottom                       // centered below the bounds
	TextLeft                         // right-aligned left of the bounds
	TextRight                        // left-aligned right of the bounds
	TextStart                        // before the first point of the outline
	TextEnd                          // after the last point of the outline
	TextSpecific                     // at Style.TextX, Style.TextY
)

var textPositionNames = [...]string{"top", "inside", "bottom", "left", "right", "start", "end", "specific"}

// ParseTextPosition maps an anchor name to a TextPosition.
// Unknown values fall back to TextTop.
func ParseTextPosition(s string) TextPosition {
	for i, name := range textPositionNames {
		if name == s {
			return TextPosition(i)
		}
	}
	return TextTop
}

func (p TextPosition) String() string {
	if int(p) < len(textPositionNames) {
		return textPositionNames[p]
	}
	return "top"
}

// LineCap is the shape drawn at the ends of open strokes.
type LineCap uint8

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// LineJoin is the shape drawn where stroke segments meet.
type LineJoin uint8

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button (scroll wheel click)
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)
