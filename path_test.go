package strata

import (
	"math"
	"testing"
)

func assertRect(t *testing.T, name string, got, want Rect) {
	t.Helper()
	if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 ||
		math.Abs(got.Width-want.Width) > 1e-9 || math.Abs(got.Height-want.Height) > 1e-9 {
		t.Errorf("%s = %+v, want %+v", name, got, want)
	}
}

func TestPathBounds(t *testing.T) {
	tests := []struct {
		name  string
		build func(p *Path)
		want  Rect
	}{
		{"rect", func(p *Path) { p.Rect(2, 3, 10, 20) }, Rect{X: 2, Y: 3, Width: 10, Height: 20}},
		{"circle", func(p *Path) { p.Circle(10, 10, 5) }, Rect{X: 5, Y: 5, Width: 10, Height: 10}},
		{"quarter arc", func(p *Path) { p.Arc(0, 0, 10, 0, math.Pi/2) }, Rect{Width: 10, Height: 10}},
		{"reverse arc", func(p *Path) { p.Arc(0, 0, 10, math.Pi/2, -math.Pi/2) }, Rect{Width: 10, Height: 10}},
		{"polyline", func(p *Path) { p.Polyline([]Vec2{{0, 0}, {4, -2}, {8, 6}}) }, Rect{Y: -2, Width: 8, Height: 8}},
		{"single point", func(p *Path) { p.MoveTo(3, 4) }, Rect{X: 3, Y: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPath()
			tt.build(p)
			assertRect(t, "Bounds", p.Bounds(), tt.want)
		})
	}
}

func TestPathImplicitMove(t *testing.T) {
	p := NewPath()
	p.LineTo(5, 5)
	if p.Len() != 1 {
		t.Fatalf("Len = %d, want 1", p.Len())
	}
	p.LineTo(10, 5)
	if p.StartPoint() != (Vec2{5, 5}) || p.EndPoint() != (Vec2{10, 5}) {
		t.Errorf("start %v end %v", p.StartPoint(), p.EndPoint())
	}
}

func TestPathArcJoinsCurrentPoint(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.Arc(10, 0, 5, 0, math.Pi)
	// move, joining line, arc
	if p.Len() != 3 {
		t.Errorf("Len = %d, want 3", p.Len())
	}
	end := p.EndPoint()
	assertNear(t, "end x", end.X, 5)
	assertNear(t, "end y", end.Y, 0)
}

func TestPathCloseReturnsToStart(t *testing.T) {
	p := NewPath()
	p.Close()
	if p.Len() != 0 {
		t.Error("Close on an empty path added a command")
	}
	p.Polygon([]Vec2{{1, 1}, {5, 1}, {5, 5}})
	if p.EndPoint() != (Vec2{1, 1}) {
		t.Errorf("EndPoint = %v, want start", p.EndPoint())
	}
	p.Reset()
	if p.Len() != 0 {
		t.Error("Reset left commands")
	}
}

func TestRoundRectFallsBackToRect(t *testing.T) {
	p := NewPath()
	p.RoundRect(0, 0, 10, 10, 0)
	q := NewPath()
	q.Rect(0, 0, 10, 10)
	if p.Len() != q.Len() {
		t.Errorf("Len = %d, want %d", p.Len(), q.Len())
	}
	r := NewPath()
	r.RoundRect(0, 0, 10, 4, 50)
	assertRect(t, "clamped radius bounds", r.Bounds(), Rect{Width: 10, Height: 4})
}
