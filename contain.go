package strata

import (
	"math"

	"github.com/gogpu/gg"
)

// DefaultMinHitWidth is the narrowest stroke band, in local units, that
// still registers pointer hits.
const DefaultMinHitWidth = 5.0

const (
	curveCoarseSteps = 24
	curveEpsilon     = 1e-3
	curveMaxHalvings = 40
)

func dist(a, b Vec2) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

// segmentDistance returns the distance from p to the segment ab.
func segmentDistance(p, a, b Vec2) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return dist(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return dist(p, Vec2{a.X + t*dx, a.Y + t*dy})
}

func quadAt(p0, c, p1 Vec2, t float64) Vec2 {
	mt := 1 - t
	return Vec2{
		mt*mt*p0.X + 2*mt*t*c.X + t*t*p1.X,
		mt*mt*p0.Y + 2*mt*t*c.Y + t*t*p1.Y,
	}
}

func cubicAt(p0, c1, c2, p1 Vec2, t float64) Vec2 {
	mt := 1 - t
	a, b, c, d := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
	return Vec2{
		a*p0.X + b*c1.X + c*c2.X + d*p1.X,
		a*p0.Y + b*c1.Y + c*c2.Y + d*p1.Y,
	}
}

// curveDistance finds the distance from p to a parametric curve on [0, 1].
// The curve is sampled coarsely, then the interval around the best sample
// is halved until the parameter step falls under curveEpsilon.
func curveDistance(p Vec2, at func(t float64) Vec2) float64 {
	best, bestT := math.Inf(1), 0.0
	for i := 0; i <= curveCoarseSteps; i++ {
		t := float64(i) / curveCoarseSteps
		if d := dist(p, at(t)); d < best {
			best, bestT = d, t
		}
	}
	step := 1.0 / curveCoarseSteps
	for i := 0; i < curveMaxHalvings && step > curveEpsilon*curveEpsilon; i++ {
		step /= 2
		moved := false
		for _, t := range [2]float64{bestT - step, bestT + step} {
			if t < 0 || t > 1 {
				continue
			}
			if d := dist(p, at(t)); d < best {
				best, bestT, moved = d, t, true
			}
		}
		if !moved && best < curveEpsilon {
			break
		}
	}
	return best
}

// arcDistance returns the distance from p to an arc.
func arcDistance(p Vec2, a arcSeg) float64 {
	if angleInSweep(math.Atan2(p.Y-a.CY, p.X-a.CX), a.Start, a.Sweep) {
		return math.Abs(math.Hypot(p.X-a.CX, p.Y-a.CY) - a.R)
	}
	return math.Min(dist(p, a.point(0)), dist(p, a.point(1)))
}

// segmentDist dispatches to the distance routine for a segment kind.
func segmentDist(p Vec2, s segment) float64 {
	switch s.op {
	case opQuad:
		return curveDistance(p, func(t float64) Vec2 { return quadAt(s.p0, s.c1, s.p1, t) })
	case opCubic:
		return curveDistance(p, func(t float64) Vec2 { return cubicAt(s.p0, s.c1, s.c2, s.p1, t) })
	case opArc:
		return arcDistance(p, s.arc)
	default:
		return segmentDistance(p, s.p0, s.p1)
	}
}

// strokeContains reports whether (x, y) lies within the stroke band of the
// path. The band is never narrower than minHit.
func strokeContains(path *Path, x, y, lineWidth, minHit float64) bool {
	half := math.Max(lineWidth, minHit) / 2
	p := Vec2{x, y}
	hit := false
	path.walk(func(s segment) {
		if !hit && segmentDist(p, s) <= half {
			hit = true
		}
	}, false)
	return hit
}

// windingNumber accumulates signed crossings of the ray from (x, y) toward
// +X. Every subpath is treated as closed. Upward edges include their lower
// end and downward edges their upper end, so vertices are counted once.
func windingNumber(path *Path, x, y float64) int {
	w := 0
	path.walk(func(s segment) {
		switch s.op {
		case opLine:
			w += lineCrossing(s.p0, s.p1, x, y)
		case opQuad:
			w += monotonicCrossings(func(t float64) Vec2 { return quadAt(s.p0, s.c1, s.p1, t) },
				quadExtrema(s.p0.Y, s.c1.Y, s.p1.Y), x, y)
		case opCubic:
			w += monotonicCrossings(func(t float64) Vec2 { return cubicAt(s.p0, s.c1, s.c2, s.p1, t) },
				cubicExtrema(s.p0.Y, s.c1.Y, s.c2.Y, s.p1.Y), x, y)
		case opArc:
			w += monotonicCrossings(s.arc.point, arcExtremaT(s.arc), x, y)
		}
	}, true)
	return w
}

func lineCrossing(a, b Vec2, x, y float64) int {
	if a.Y <= y {
		if b.Y > y && cross(a, b, x, y) > 0 {
			return 1
		}
	} else if b.Y <= y && cross(a, b, x, y) < 0 {
		return -1
	}
	return 0
}

// cross is positive when (x, y) lies left of a→b in a Y-down frame.
func cross(a, b Vec2, x, y float64) float64 {
	return (b.X-a.X)*(y-a.Y) - (x-a.X)*(b.Y-a.Y)
}

// monotonicCrossings splits a curve at the given parameter values, which
// must include every Y extremum, and counts ray crossings per span.
func monotonicCrossings(at func(t float64) Vec2, splits []float64, x, y float64) int {
	w := 0
	ts := append([]float64{0}, splits...)
	ts = append(ts, 1)
	for i := 0; i+1 < len(ts); i++ {
		t0, t1 := ts[i], ts[i+1]
		if t1-t0 <= 0 {
			continue
		}
		a, b := at(t0), at(t1)
		var dir int
		switch {
		case a.Y <= y && b.Y > y:
			dir = 1
		case b.Y <= y && a.Y > y:
			dir = -1
		default:
			continue
		}
		// Bisection on the monotonic span for the parameter where Y == y.
		lo, hi := t0, t1
		for k := 0; k < 52; k++ {
			mid := (lo + hi) / 2
			my := at(mid).Y
			if (my <= y) == (dir == 1) {
				lo = mid
			} else {
				hi = mid
			}
		}
		if at((lo+hi)/2).X > x {
			w += dir
		}
	}
	return w
}

func addRoot(roots []float64, t float64) []float64 {
	if t > 0 && t < 1 {
		return append(roots, t)
	}
	return roots
}

// quadExtrema returns the parameter of the Y extremum of a quadratic.
func quadExtrema(p0, c, p1 float64) []float64 {
	den := p0 - 2*c + p1
	if den == 0 {
		return nil
	}
	return addRoot(nil, (p0-c)/den)
}

// cubicExtrema returns sorted parameters where dY/dt is zero.
func cubicExtrema(p0, c1, c2, p1 float64) []float64 {
	a := -p0 + 3*c1 - 3*c2 + p1
	b := 2 * (p0 - 2*c1 + c2)
	c := c1 - p0
	var roots []float64
	if math.Abs(a) < 1e-12 {
		if b != 0 {
			roots = addRoot(roots, -c/b)
		}
		return roots
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return nil
	}
	sq := math.Sqrt(disc)
	r1, r2 := (-b-sq)/(2*a), (-b+sq)/(2*a)
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	roots = addRoot(roots, r1)
	roots = addRoot(roots, r2)
	return roots
}

// arcExtremaT returns the sorted parameters where the arc passes a Y
// extremum (angles π/2 + kπ).
func arcExtremaT(a arcSeg) []float64 {
	if a.Sweep == 0 {
		return nil
	}
	lo, hi := a.Start, a.Start+a.Sweep
	if hi < lo {
		lo, hi = hi, lo
	}
	var ts []float64
	first := math.Ceil((lo-math.Pi/2)/math.Pi)*math.Pi + math.Pi/2
	for ang := first; ang < hi; ang += math.Pi {
		ts = addRoot(ts, (ang-a.Start)/a.Sweep)
	}
	if a.Sweep < 0 {
		for i, j := 0, len(ts)-1; i < j; i, j = i+1, j-1 {
			ts[i], ts[j] = ts[j], ts[i]
		}
	}
	return ts
}

// fillContains applies the non-zero winding rule, the rule used to fill.
func fillContains(path *Path, x, y float64) bool {
	return windingNumber(path, x, y) != 0
}

// nativeContains asks the raster backend whether the point is inside.
func nativeContains(path *Path, x, y float64) bool {
	return path.toGG().Contains(gg.Pt(x, y))
}

// normalizeAngle maps a to [0, 2π).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// angleInSweep reports whether angle lies on the band that starts at start
// and sweeps by sweep radians. Sweeps of a full turn or more cover every
// angle. All comparisons happen on angles normalized to [0, 2π).
func angleInSweep(angle, start, sweep float64) bool {
	if math.Abs(sweep) >= 2*math.Pi-1e-12 {
		return true
	}
	if sweep < 0 {
		start, sweep = start+sweep, -sweep
	}
	return normalizeAngle(angle-start) <= sweep+1e-12
}
