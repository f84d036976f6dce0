package strata

import "math"

// Shape is the geometry of a primitive, expressed in local coordinates.
type Shape interface {
	// Kind is a short lowercase name, also used as the node id prefix.
	Kind() string
	// BuildPath appends the outline to p.
	BuildPath(p *Path)
}

// closedFormShape is implemented by shapes with an algebraic fill test.
// ok is false when the test does not apply to the current geometry.
type closedFormShape interface {
	closedForm(x, y float64) (inside, ok bool)
}

// openShape marks outlines that are only ever stroked.
type openShape interface {
	isOpen() bool
}

// boundedShape is implemented by shapes whose bounds are not their path bounds.
type boundedShape interface {
	bounds() Rect
}

// Circle is a disc centered at (X, Y).
type Circle struct {
	X, Y, Radius float64
}

// Kind returns "circle".
func (c *Circle) Kind() string { return "circle" }

// BuildPath traces the circle about its center.
func (c *Circle) BuildPath(p *Path) { p.Circle(c.X, c.Y, math.Abs(c.Radius)) }
func (c *Circle) closedForm(x, y float64) (bool, bool) {
	dx, dy := x-c.X, y-c.Y
	return dx*dx+dy*dy <= c.Radius*c.Radius, true
}

// Ellipse is an axis-aligned ellipse centered at (X, Y).
type Ellipse struct {
	X, Y, RadiusX, RadiusY float64
}

// Kind returns "ellipse".
func (e *Ellipse) Kind() string { return "ellipse" }

// BuildPath traces the ellipse about its center.
func (e *Ellipse) BuildPath(p *Path) { p.Ellipse(e.X, e.Y, e.RadiusX, e.RadiusY) }
func (e *Ellipse) closedForm(x, y float64) (bool, bool) {
	if e.RadiusX == 0 || e.RadiusY == 0 {
		return false, true
	}
	dx, dy := (x-e.X)/e.RadiusX, (y-e.Y)/e.RadiusY
	return dx*dx+dy*dy <= 1, true
}

// Rectangle has its top-left corner at (X, Y). A positive Radius rounds
// the corners.
type Rectangle struct {
	X, Y, Width, Height float64
	Radius              float64
}

// Kind returns "rect".
func (r *Rectangle) Kind() string { return "rect" }

// BuildPath traces the rectangle, rounding corners when a radius is set.
func (r *Rectangle) BuildPath(p *Path) {
	p.RoundRect(r.X, r.Y, r.Width, r.Height, r.Radius)
}

func (r *Rectangle) closedForm(x, y float64) (bool, bool) {
	if r.Radius > 0 {
		return false, false
	}
	minX, maxX := math.Min(r.X, r.X+r.Width), math.Max(r.X, r.X+r.Width)
	minY, maxY := math.Min(r.Y, r.Y+r.Height), math.Max(r.Y, r.Y+r.Height)
	return x >= minX && x <= maxX && y >= minY && y <= maxY, true
}

// Ring is the band between two concentric circles.
type Ring struct {
	X, Y                     float64
	InnerRadius, OuterRadius float64
}

// Kind returns "ring".
func (r *Ring) Kind() string { return "ring" }

// BuildPath traces the outer and inner circles in opposite directions.
func (r *Ring) BuildPath(p *Path) {
	p.Circle(r.X, r.Y, r.OuterRadius)
	if r.InnerRadius > 0 {
		p.MoveTo(r.X+r.InnerRadius, r.Y)
		p.Arc(r.X, r.Y, r.InnerRadius, 0, -2*math.Pi)
		p.Close()
	}
}

func (r *Ring) closedForm(x, y float64) (bool, bool) {
	dx, dy := x-r.X, y-r.Y
	d2 := dx*dx + dy*dy
	return d2 >= r.InnerRadius*r.InnerRadius && d2 <= r.OuterRadius*r.OuterRadius, true
}

// angularSweep converts a start/end pair to a signed sweep. Angles grow
// clockwise on screen (from +X toward +Y). By default the band runs from
// start to end in that direction; counterClockwise runs it the other way.
// A difference of a full turn or more covers the whole circle.
func angularSweep(start, end float64, counterClockwise bool) float64 {
	if math.Abs(end-start) >= 2*math.Pi {
		if counterClockwise {
			return -2 * math.Pi
		}
		return 2 * math.Pi
	}
	if counterClockwise {
		return -normalizeAngle(start - end)
	}
	return normalizeAngle(end - start)
}

// Sector is a pie slice, or an annular slice when InnerRadius > 0.
type Sector struct {
	X, Y                 float64
	Radius, InnerRadius  float64
	StartAngle, EndAngle float64 // radians
	CounterClockwise     bool
}

// Kind returns "sector".
func (s *Sector) Kind() string { return "sector" }

// Sweep returns the signed angular extent of the slice.
func (s *Sector) Sweep() float64 {
	return angularSweep(s.StartAngle, s.EndAngle, s.CounterClockwise)
}

// BuildPath traces the wedge from the center, or the annular slice when
// InnerRadius is set.
func (s *Sector) BuildPath(p *Path) {
	sweep := s.Sweep()
	if s.InnerRadius > 0 {
		p.Arc(s.X, s.Y, s.Radius, s.StartAngle, sweep)
		p.Arc(s.X, s.Y, s.InnerRadius, s.StartAngle+sweep, -sweep)
		p.Close()
		return
	}
	p.MoveTo(s.X, s.Y)
	p.Arc(s.X, s.Y, s.Radius, s.StartAngle, sweep)
	p.Close()
}

func (s *Sector) closedForm(x, y float64) (bool, bool) {
	dx, dy := x-s.X, y-s.Y
	d2 := dx*dx + dy*dy
	if d2 > s.Radius*s.Radius || d2 < s.InnerRadius*s.InnerRadius {
		return false, true
	}
	if d2 == 0 {
		return s.InnerRadius == 0, true
	}
	return angleInSweep(math.Atan2(dy, dx), s.StartAngle, s.Sweep()), true
}

// Arc is an open circular arc.
type Arc struct {
	X, Y, Radius         float64
	StartAngle, EndAngle float64
	CounterClockwise     bool
}

// Kind returns "arc".
func (a *Arc) Kind() string { return "arc" }

// BuildPath traces the open arc from StartAngle to EndAngle.
func (a *Arc) BuildPath(p *Path) {
	p.Arc(a.X, a.Y, a.Radius, a.StartAngle, angularSweep(a.StartAngle, a.EndAngle, a.CounterClockwise))
}

func (a *Arc) isOpen() bool { return true }

// Line is a straight segment.
type Line struct {
	X1, Y1, X2, Y2 float64
}

// Kind returns "line".
func (l *Line) Kind() string { return "line" }

// BuildPath traces the open segment.
func (l *Line) BuildPath(p *Path) {
	p.MoveTo(l.X1, l.Y1)
	p.LineTo(l.X2, l.Y2)
}

func (l *Line) isOpen() bool { return true }

// Polyline is an open chain of points. Smooth joins the points with
// quadratic curves through the segment midpoints.
type Polyline struct {
	Points []Vec2
	Smooth bool
}

// Kind returns "polyline".
func (l *Polyline) Kind() string { return "polyline" }

// BuildPath traces the open chain of points.
func (l *Polyline) BuildPath(p *Path) {
	if !l.Smooth || len(l.Points) < 3 {
		p.Polyline(l.Points)
		return
	}
	pts := l.Points
	p.MoveTo(pts[0].X, pts[0].Y)
	for i := 1; i < len(pts)-1; i++ {
		mx, my := (pts[i].X+pts[i+1].X)/2, (pts[i].Y+pts[i+1].Y)/2
		if i == len(pts)-2 {
			mx, my = pts[i+1].X, pts[i+1].Y
		}
		p.QuadTo(pts[i].X, pts[i].Y, mx, my)
	}
}

func (l *Polyline) isOpen() bool { return true }

// Polygon is a closed polygon; self-intersections fill by non-zero winding.
type Polygon struct {
	Points []Vec2
}

// Kind returns "polygon".
func (g *Polygon) Kind() string { return "polygon" }

// BuildPath traces the closed chain of points.
func (g *Polygon) BuildPath(p *Path) { p.Polygon(g.Points) }

// BezierCurve is an open quadratic (Quadratic set, Control2 unused) or
// cubic curve.
type BezierCurve struct {
	Start, Control1, Control2, End Vec2
	Quadratic                      bool
}

// Kind returns "bezier".
func (b *BezierCurve) Kind() string { return "bezier" }

// BuildPath traces the curve from its control points.
func (b *BezierCurve) BuildPath(p *Path) {
	p.MoveTo(b.Start.X, b.Start.Y)
	if b.Quadratic {
		p.QuadTo(b.Control1.X, b.Control1.Y, b.End.X, b.End.Y)
		return
	}
	p.CubicTo(b.Control1.X, b.Control1.Y, b.Control2.X, b.Control2.Y, b.End.X, b.End.Y)
}

func (b *BezierCurve) isOpen() bool { return true }

// Star is a regular star with its first point straight up.
type Star struct {
	X, Y                     float64
	Points                   int
	InnerRadius, OuterRadius float64
}

// Kind returns "star".
func (s *Star) Kind() string { return "star" }

// BuildPath traces alternating outer and inner vertices.
func (s *Star) BuildPath(p *Path) {
	n := s.Points
	if n < 2 {
		n = 5
	}
	pts := make([]Vec2, 0, 2*n)
	for i := 0; i < 2*n; i++ {
		r := s.OuterRadius
		if i%2 == 1 {
			r = s.InnerRadius
		}
		sin, cos := math.Sincos(-math.Pi/2 + float64(i)*math.Pi/float64(n))
		pts = append(pts, Vec2{s.X + r*cos, s.Y + r*sin})
	}
	p.Polygon(pts)
}

// Isogon is a regular polygon with its first vertex straight up.
type Isogon struct {
	X, Y, Radius float64
	Sides        int
}

// Kind returns "isogon".
func (g *Isogon) Kind() string { return "isogon" }

// BuildPath traces the regular polygon.
func (g *Isogon) BuildPath(p *Path) {
	n := g.Sides
	if n < 3 {
		n = 3
	}
	pts := make([]Vec2, 0, n)
	for i := 0; i < n; i++ {
		sin, cos := math.Sincos(-math.Pi/2 + float64(i)*2*math.Pi/float64(n))
		pts = append(pts, Vec2{g.X + g.Radius*cos, g.Y + g.Radius*sin})
	}
	p.Polygon(pts)
}

// Heart is a heart outline whose top notch sits at (X, Y); Size is the
// overall height.
type Heart struct {
	X, Y, Size float64
}

// Kind returns "heart".
func (h *Heart) Kind() string { return "heart" }

// BuildPath traces the heart outline.
func (h *Heart) BuildPath(p *Path) {
	s := h.Size
	x, y := h.X, h.Y
	p.MoveTo(x, y+s*0.3)
	p.CubicTo(x, y, x-s*0.5, y, x-s*0.5, y+s*0.3)
	p.CubicTo(x-s*0.5, y+s*0.6, x, y+s*0.75, x, y+s)
	p.CubicTo(x, y+s*0.75, x+s*0.5, y+s*0.6, x+s*0.5, y+s*0.3)
	p.CubicTo(x+s*0.5, y, x, y, x, y+s*0.3)
	p.Close()
}

// Droplet is a tear shape with its tip at (X, Y) and a round base below.
type Droplet struct {
	X, Y, Size float64
}

// Kind returns "droplet".
func (d *Droplet) Kind() string { return "droplet" }

// BuildPath traces the droplet outline.
func (d *Droplet) BuildPath(p *Path) {
	r := d.Size / 3
	cy := d.Y + d.Size - r
	p.MoveTo(d.X, d.Y)
	p.CubicTo(d.X+r*0.4, d.Y+d.Size*0.3, d.X+r, cy-r*0.6, d.X+r, cy)
	p.Arc(d.X, cy, r, 0, math.Pi)
	p.CubicTo(d.X-r, cy-r*0.6, d.X-r*0.4, d.Y+d.Size*0.3, d.X, d.Y)
	p.Close()
}

// PathShape wraps a caller-built Path. Open paths are hit-tested by stroke
// distance. NativeHitTest delegates containment to the raster backend.
type PathShape struct {
	Path          *Path
	Open          bool
	NativeHitTest bool
}

// Kind returns "path".
func (s *PathShape) Kind() string { return "path" }

// BuildPath replays the parsed path commands.
func (s *PathShape) BuildPath(p *Path) {
	if s.Path != nil {
		p.cmds = append(p.cmds, s.Path.cmds...)
		p.start, p.cur, p.has = s.Path.start, s.Path.cur, s.Path.has
	}
}

func (s *PathShape) isOpen() bool { return s.Open }
