package strata

import (
	"math"

	"github.com/gogpu/gg"
)

type pathOp uint8

const (
	opMove pathOp = iota
	opLine
	opQuad
	opCubic
	opArc
	opClose
)

// arcSeg is a circular arc from Start sweeping Sweep radians (positive is
// increasing angle, i.e. clockwise on a Y-down surface).
type arcSeg struct {
	CX, CY, R    float64
	Start, Sweep float64
}

func (a arcSeg) point(t float64) Vec2 {
	sin, cos := math.Sincos(a.Start + a.Sweep*t)
	return Vec2{a.CX + a.R*cos, a.CY + a.R*sin}
}

type pathCmd struct {
	op  pathOp
	pts [3]Vec2
	arc arcSeg
}

// Path is an outline in a primitive's local coordinate space. Shapes build
// their outline into a Path which is then replayed onto the raster surface,
// walked for winding containment and stroke distance, or converted to a
// gg.Path for native point-in-path tests.
type Path struct {
	cmds  []pathCmd
	start Vec2
	cur   Vec2
	has   bool
}

// NewPath returns an empty path.
func NewPath() *Path { return &Path{} }

// Reset removes all segments.
func (p *Path) Reset() {
	p.cmds = p.cmds[:0]
	p.has = false
}

// Len returns the number of recorded commands.
func (p *Path) Len() int { return len(p.cmds) }

// MoveTo starts a new subpath.
func (p *Path) MoveTo(x, y float64) {
	pt := Vec2{x, y}
	p.cmds = append(p.cmds, pathCmd{op: opMove, pts: [3]Vec2{pt}})
	p.start, p.cur, p.has = pt, pt, true
}

func (p *Path) ensureStart(x, y float64) bool {
	if !p.has {
		p.MoveTo(x, y)
		return false
	}
	return true
}

// LineTo adds a straight segment.
func (p *Path) LineTo(x, y float64) {
	if !p.ensureStart(x, y) {
		return
	}
	pt := Vec2{x, y}
	p.cmds = append(p.cmds, pathCmd{op: opLine, pts: [3]Vec2{pt}})
	p.cur = pt
}

// QuadTo adds a quadratic Bézier segment.
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.ensureStart(cx, cy)
	end := Vec2{x, y}
	p.cmds = append(p.cmds, pathCmd{op: opQuad, pts: [3]Vec2{{cx, cy}, end}})
	p.cur = end
}

// CubicTo adds a cubic Bézier segment.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	p.ensureStart(c1x, c1y)
	end := Vec2{x, y}
	p.cmds = append(p.cmds, pathCmd{op: opCubic, pts: [3]Vec2{{c1x, c1y}, {c2x, c2y}, end}})
	p.cur = end
}

// Arc adds a circular arc from angle start sweeping by sweep radians. When
// the path has a current point a straight segment joins it to the arc start.
func (p *Path) Arc(cx, cy, r, start, sweep float64) {
	a := arcSeg{CX: cx, CY: cy, R: r, Start: start, Sweep: sweep}
	s := a.point(0)
	if !p.has {
		p.MoveTo(s.X, s.Y)
	} else if s != p.cur {
		p.LineTo(s.X, s.Y)
	}
	p.cmds = append(p.cmds, pathCmd{op: opArc, arc: a})
	p.cur = a.point(1)
}

// Close ends the current subpath with a segment back to its start.
func (p *Path) Close() {
	if !p.has {
		return
	}
	p.cmds = append(p.cmds, pathCmd{op: opClose})
	p.cur = p.start
}

// Rect adds a closed rectangle.
func (p *Path) Rect(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// RoundRect adds a closed rectangle with corner radius r.
func (p *Path) RoundRect(x, y, w, h, r float64) {
	r = math.Min(r, math.Min(math.Abs(w), math.Abs(h))/2)
	if r <= 0 {
		p.Rect(x, y, w, h)
		return
	}
	p.MoveTo(x+r, y)
	p.LineTo(x+w-r, y)
	p.Arc(x+w-r, y+r, r, -math.Pi/2, math.Pi/2)
	p.LineTo(x+w, y+h-r)
	p.Arc(x+w-r, y+h-r, r, 0, math.Pi/2)
	p.LineTo(x+r, y+h)
	p.Arc(x+r, y+h-r, r, math.Pi/2, math.Pi/2)
	p.LineTo(x, y+r)
	p.Arc(x+r, y+r, r, math.Pi, math.Pi/2)
	p.Close()
}

// Circle adds a closed circle.
func (p *Path) Circle(cx, cy, r float64) {
	p.MoveTo(cx+r, cy)
	p.Arc(cx, cy, r, 0, 2*math.Pi)
	p.Close()
}

// Ellipse adds a closed axis-aligned ellipse made of four cubic segments.
func (p *Path) Ellipse(cx, cy, rx, ry float64) {
	const k = 0.5522847498307936
	ox, oy := rx*k, ry*k
	p.MoveTo(cx+rx, cy)
	p.CubicTo(cx+rx, cy+oy, cx+ox, cy+ry, cx, cy+ry)
	p.CubicTo(cx-ox, cy+ry, cx-rx, cy+oy, cx-rx, cy)
	p.CubicTo(cx-rx, cy-oy, cx-ox, cy-ry, cx, cy-ry)
	p.CubicTo(cx+ox, cy-ry, cx+rx, cy-oy, cx+rx, cy)
	p.Close()
}

// Polygon adds a closed polygon through pts.
func (p *Path) Polygon(pts []Vec2) {
	p.Polyline(pts)
	if len(pts) > 0 {
		p.Close()
	}
}

// Polyline adds an open polyline through pts.
func (p *Path) Polyline(pts []Vec2) {
	for i, pt := range pts {
		if i == 0 {
			p.MoveTo(pt.X, pt.Y)
		} else {
			p.LineTo(pt.X, pt.Y)
		}
	}
}

// StartPoint returns the first point of the path.
func (p *Path) StartPoint() Vec2 {
	if len(p.cmds) == 0 {
		return Vec2{}
	}
	return p.cmds[0].pts[0]
}

// EndPoint returns the current point after the last segment.
func (p *Path) EndPoint() Vec2 { return p.cur }

// Bounds returns a box containing every segment. Curve bounds use their
// control points, so the box may be slightly larger than the outline.
func (p *Path) Bounds() Rect {
	var pts []Vec2
	p.walk(func(s segment) {
		switch s.op {
		case opLine:
			pts = append(pts, s.p0, s.p1)
		case opQuad:
			pts = append(pts, s.p0, s.c1, s.p1)
		case opCubic:
			pts = append(pts, s.p0, s.c1, s.c2, s.p1)
		case opArc:
			pts = append(pts, arcExtrema(s.arc)...)
		}
	}, false)
	if len(pts) == 0 && len(p.cmds) > 0 {
		pts = append(pts, p.cmds[0].pts[0])
	}
	return boundsOf(pts...)
}

// arcExtrema returns the arc end points plus any axis extreme points it crosses.
func arcExtrema(a arcSeg) []Vec2 {
	pts := []Vec2{a.point(0), a.point(1)}
	lo, hi := a.Start, a.Start+a.Sweep
	if hi < lo {
		lo, hi = hi, lo
	}
	first := math.Ceil(lo/(math.Pi/2)) * (math.Pi / 2)
	for ang := first; ang <= hi; ang += math.Pi / 2 {
		sin, cos := math.Sincos(ang)
		pts = append(pts, Vec2{a.CX + a.R*cos, a.CY + a.R*sin})
	}
	return pts
}

// segment is one drawable piece of a path with explicit endpoints.
type segment struct {
	op             pathOp // opLine, opQuad, opCubic or opArc
	p0, c1, c2, p1 Vec2
	arc            arcSeg
}

// walk visits every segment. When closeSubpaths is set, each open subpath
// is closed with a straight segment, matching fill semantics.
func (p *Path) walk(fn func(segment), closeSubpaths bool) {
	var start, cur Vec2
	open := false
	finish := func() {
		if closeSubpaths && open && cur != start {
			fn(segment{op: opLine, p0: cur, p1: start})
		}
	}
	for _, c := range p.cmds {
		switch c.op {
		case opMove:
			finish()
			start, cur, open = c.pts[0], c.pts[0], true
		case opLine:
			fn(segment{op: opLine, p0: cur, p1: c.pts[0]})
			cur = c.pts[0]
		case opQuad:
			fn(segment{op: opQuad, p0: cur, c1: c.pts[0], p1: c.pts[1]})
			cur = c.pts[1]
		case opCubic:
			fn(segment{op: opCubic, p0: cur, c1: c.pts[0], c2: c.pts[1], p1: c.pts[2]})
			cur = c.pts[2]
		case opArc:
			fn(segment{op: opArc, p0: cur, p1: c.arc.point(1), arc: c.arc})
			cur = c.arc.point(1)
		case opClose:
			if cur != start {
				fn(segment{op: opLine, p0: cur, p1: start})
			}
			cur, open = start, false
		}
	}
	finish()
}

// arcCubics splits an arc into cubic segments of at most 90 degrees.
func arcCubics(a arcSeg) [][4]Vec2 {
	n := int(math.Ceil(math.Abs(a.Sweep) / (math.Pi / 2)))
	if n < 1 {
		n = 1
	}
	step := a.Sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)
	out := make([][4]Vec2, 0, n)
	for i := 0; i < n; i++ {
		t0 := a.Start + step*float64(i)
		t1 := t0 + step
		s0, c0 := math.Sincos(t0)
		s1, c1 := math.Sincos(t1)
		p0 := Vec2{a.CX + a.R*c0, a.CY + a.R*s0}
		p3 := Vec2{a.CX + a.R*c1, a.CY + a.R*s1}
		p1 := Vec2{p0.X - k*a.R*s0, p0.Y + k*a.R*c0}
		p2 := Vec2{p3.X + k*a.R*s1, p3.Y - k*a.R*c1}
		out = append(out, [4]Vec2{p0, p1, p2, p3})
	}
	return out
}

// pathSink receives path commands; gg.Context and gg.Path both satisfy it
// once wrapped.
type pathSink interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticTo(cx, cy, x, y float64)
	CubicTo(c1x, c1y, c2x, c2y, x, y float64)
}

// replay sends the path into sink. close is called for closed subpaths.
func (p *Path) replay(sink pathSink, closeFn func()) {
	for _, c := range p.cmds {
		switch c.op {
		case opMove:
			sink.MoveTo(c.pts[0].X, c.pts[0].Y)
		case opLine:
			sink.LineTo(c.pts[0].X, c.pts[0].Y)
		case opQuad:
			sink.QuadraticTo(c.pts[0].X, c.pts[0].Y, c.pts[1].X, c.pts[1].Y)
		case opCubic:
			sink.CubicTo(c.pts[0].X, c.pts[0].Y, c.pts[1].X, c.pts[1].Y, c.pts[2].X, c.pts[2].Y)
		case opArc:
			for _, q := range arcCubics(c.arc) {
				sink.CubicTo(q[1].X, q[1].Y, q[2].X, q[2].Y, q[3].X, q[3].Y)
			}
		case opClose:
			closeFn()
		}
	}
}

// drawInto builds the path on ctx under ctx's current matrix.
func (p *Path) drawInto(ctx *gg.Context) {
	ctx.ClearPath()
	p.replay(ctx, ctx.ClosePath)
}

// toGG converts the path into a gg.Path in the same coordinate space.
func (p *Path) toGG() *gg.Path {
	gp := gg.NewPath()
	p.replay(gp, gp.Close)
	return gp
}
