package strata

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want Matrix) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

func TestMatrixMultiplyOrder(t *testing.T) {
	// Scale applied first, then translate.
	m := Translate(10, 20).Multiply(Scale(2, 3))
	x, y := m.Apply(1, 1)
	assertNear(t, "x", x, 12)
	assertNear(t, "y", y, 23)
}

func TestMatrixRotate90(t *testing.T) {
	assertMatrix(t, "rot90", Rotate(math.Pi/2), Matrix{0, 1, -1, 0, 0, 0})
	x, y := Rotate(math.Pi / 2).Apply(1, 0)
	assertNear(t, "x", x, 0)
	assertNear(t, "y", y, 1)
}

func TestMatrixInvert(t *testing.T) {
	m := Translate(5, -7).Multiply(Rotate(0.3)).Multiply(Scale(2, 4))
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("Invert reported singular")
	}
	assertMatrix(t, "m*inv", m.Multiply(inv), IdentityMatrix)
}

func TestMatrixInvertSingular(t *testing.T) {
	_, ok := Scale(0, 1).Invert()
	if ok {
		t.Error("Invert of zero-scale matrix should fail")
	}
}

func TestMatrixIsFinite(t *testing.T) {
	if !IdentityMatrix.IsFinite() {
		t.Error("identity should be finite")
	}
	if (Matrix{1, 0, 0, 1, math.NaN(), 0}).IsFinite() {
		t.Error("NaN matrix reported finite")
	}
	if (Matrix{math.Inf(1), 0, 0, 1, 0, 0}).IsFinite() {
		t.Error("Inf matrix reported finite")
	}
}

func TestDecomposeRoundTrip(t *testing.T) {
	tests := []struct {
		name              string
		x, y, rot, sx, sy float64
	}{
		{"identity", 0, 0, 0, 1, 1},
		{"translate", 12, -4, 0, 1, 1},
		{"rotate", 3, 4, 0.7, 1, 1},
		{"scale", 0, 0, 0, 2, 0.5},
		{"mirrored", 1, 2, 0, 2, -0.5},
		{"all", 10, 20, -1.2, 3, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := NewTransformState()
			ts.X, ts.Y, ts.Rotation, ts.ScaleX, ts.ScaleY = tt.x, tt.y, tt.rot, tt.sx, tt.sy
			m := ts.LocalMatrix()
			x, y, rot, sx, sy := m.Decompose()
			assertNear(t, "x", x, tt.x)
			assertNear(t, "y", y, tt.y)
			assertNear(t, "rotation", rot, tt.rot)
			assertNear(t, "scaleX", sx, tt.sx)
			assertNear(t, "scaleY", sy, tt.sy)
			back := NewTransformState()
			back.X, back.Y, back.Rotation, back.ScaleX, back.ScaleY = x, y, rot, sx, sy
			assertMatrix(t, "recomposed", back.LocalMatrix(), m)
		})
	}
}

func TestDecomposeUsesColumnNorms(t *testing.T) {
	m := Translate(3, 4).Multiply(Rotate(0.5)).Multiply(Scale(2, 3))
	x, y, rot, sx, sy := m.Decompose()
	assertNear(t, "x", x, 3)
	assertNear(t, "y", y, 4)
	assertNear(t, "rotation", rot, 0.5)
	assertNear(t, "scaleX", sx, 2)
	assertNear(t, "scaleY", sy, 3)
}

func TestLocalMatrixOrder(t *testing.T) {
	ts := NewTransformState()
	ts.X, ts.Y = 10, 20
	ts.Rotation = math.Pi / 2
	ts.ScaleX, ts.ScaleY = 2, 3
	want := Translate(10, 20).Multiply(Rotate(math.Pi / 2)).Multiply(Scale(2, 3))
	assertMatrix(t, "local", ts.LocalMatrix(), want)
	// (1, 0) is scaled to (2, 0), rotated to (0, 2), then moved.
	x, y := ts.LocalMatrix().Apply(1, 0)
	assertNear(t, "x", x, 10)
	assertNear(t, "y", y, 22)
}

func TestPositionIsWorldOrigin(t *testing.T) {
	tests := []struct {
		name           string
		x, y           float64
		rot            float64
		sx, sy         float64
		rox, roy       float64
		sox, soy       float64
		pivotX, pivotY float64 // local point expected at (x+pivotX, y+pivotY)
	}{
		{"rotated", 100, 0, math.Pi / 2, 1, 1, 0, 0, 0, 0, 0, 0},
		{"scaled", 10, 0, 0, 2, 2, 0, 0, 0, 0, 0, 0},
		{"rotated and scaled", -7, 3, 1.1, 0.5, 4, 0, 0, 0, 0, 0, 0},
		{"rotation origin", 10, 20, math.Pi, 1, 1, 5, 0, 0, 0, 5, 0},
		{"scale origin", 10, 0, 0, 2, 2, 0, 0, 3, 4, 3, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewCircle("n", 0, 0, 1)
			n.SetPosition(tt.x, tt.y)
			n.SetRotation(tt.rot)
			n.SetScale(tt.sx, tt.sy)
			n.SetRotationOrigin(tt.rox, tt.roy)
			n.SetScaleOrigin(tt.sox, tt.soy)
			n.UpdateTransform()
			wx, wy := n.Transform.ToWorld(tt.pivotX, tt.pivotY)
			assertNear(t, "world x", wx, tt.x+tt.pivotX)
			assertNear(t, "world y", wy, tt.y+tt.pivotY)
		})
	}
}

func TestChildPositionUnderTransformedParent(t *testing.T) {
	tests := []struct {
		name         string
		px, py, prot float64
		psx          float64
		cx, cy, crot float64
		wantX, wantY float64
	}{
		{"rotated parent", 50, 0, math.Pi / 2, 1, 10, 0, 0, 50, 10},
		{"scaled parent", 0, 0, 0, 2, 5, 5, 0.4, 10, 10},
		{"rotated parent and child", 0, 0, math.Pi, 1, 10, 0, math.Pi / 2, -10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGroup("g")
			g.SetPosition(tt.px, tt.py)
			g.SetRotation(tt.prot)
			g.SetScale(tt.psx, tt.psx)
			c := NewCircle("c", 0, 0, 1)
			c.SetPosition(tt.cx, tt.cy)
			c.SetRotation(tt.crot)
			if err := g.AddChild(c); err != nil {
				t.Fatal(err)
			}
			c.UpdateTransform()
			x, y := c.Transform.WorldPosition()
			assertNear(t, "world x", x, tt.wantX)
			assertNear(t, "world y", y, tt.wantY)
		})
	}
}

func TestRotatedNodeHitAtPosition(t *testing.T) {
	s := NewScene()
	n := NewCircle("n", 0, 0, 5)
	n.SetPosition(100, 0)
	n.SetRotation(math.Pi / 2)
	n.Clickable = true
	s.AddRoot(n)
	list := s.RebuildDrawList()
	h := hitTester{}
	if h.findTopmost(100, 0, list, nil) != n {
		t.Error("rotated node not hit at its position")
	}
	if h.findTopmost(0, 100, list, nil) != nil {
		t.Error("rotated node hit at its rotated position")
	}
}

func TestLocalMatrixIdentity(t *testing.T) {
	ts := NewTransformState()
	assertMatrix(t, "identity", ts.LocalMatrix(), IdentityMatrix)
}

func TestLocalMatrixTranslation(t *testing.T) {
	ts := NewTransformState()
	ts.X, ts.Y = 10, 20
	assertMatrix(t, "translation", ts.LocalMatrix(), Matrix{1, 0, 0, 1, 10, 20})
}

func TestLocalMatrixRotationOrigin(t *testing.T) {
	ts := NewTransformState()
	ts.Rotation = math.Pi
	ts.RotationOriginX, ts.RotationOriginY = 10, 0
	x, y := ts.LocalMatrix().Apply(10, 0)
	// The origin itself is fixed by the rotation.
	assertNear(t, "x", x, 10)
	assertNear(t, "y", y, 0)
	x, y = ts.LocalMatrix().Apply(0, 0)
	assertNear(t, "x", x, 20)
	assertNear(t, "y", y, 0)
}

func TestLocalMatrixScaleOrigin(t *testing.T) {
	ts := NewTransformState()
	ts.ScaleX, ts.ScaleY = 2, 2
	ts.ScaleOriginX, ts.ScaleOriginY = 5, 5
	x, y := ts.LocalMatrix().Apply(5, 5)
	assertNear(t, "x", x, 5)
	assertNear(t, "y", y, 5)
}

func TestTransformComposition(t *testing.T) {
	g := NewGroup("g")
	g.SetPosition(10, 0)
	p := NewCircle("p", 0, 0, 1)
	p.SetPosition(5, 0)
	if err := g.AddChild(p); err != nil {
		t.Fatal(err)
	}
	p.UpdateTransform()
	x, y := p.Transform.WorldPosition()
	assertNear(t, "world x", x, 15)
	assertNear(t, "world y", y, 0)
}

func TestTransformUpdateRejectsNonFinite(t *testing.T) {
	ts := NewTransformState()
	ts.X = 3
	if !ts.Update(nil) {
		t.Fatal("finite update rejected")
	}
	before := ts.Matrix()
	ts.X = math.NaN()
	if ts.Update(nil) {
		t.Error("Update accepted NaN position")
	}
	assertMatrix(t, "kept matrix", ts.Matrix(), before)
}

func TestNeedsTransformFlags(t *testing.T) {
	parent := NewTransformState()
	parent.X = 1
	parent.Update(nil)
	child := NewTransformState()
	child.Update(&parent)
	if child.NeedsLocalTransform() {
		t.Error("untransformed child reports local transform")
	}
	if !child.NeedsTransform() {
		t.Error("child of transformed parent should need transform")
	}
}

func TestToLocalInverse(t *testing.T) {
	ts := NewTransformState()
	ts.X, ts.Y = 100, 50
	ts.Rotation = math.Pi / 2
	ts.Update(nil)
	wx, wy := ts.ToWorld(3, 4)
	lx, ly, ok := ts.ToLocal(wx, wy)
	if !ok {
		t.Fatal("ToLocal failed")
	}
	assertNear(t, "lx", lx, 3)
	assertNear(t, "ly", ly, 4)
}

func TestToLocalSingular(t *testing.T) {
	ts := NewTransformState()
	ts.ScaleX = 0
	ts.Update(nil)
	if _, _, ok := ts.ToLocal(1, 1); ok {
		t.Error("ToLocal on singular matrix should fail")
	}
}

func TestSetMatrixIgnoresNonFinite(t *testing.T) {
	ts := NewTransformState()
	ts.X = 7
	ts.SetMatrix(Matrix{1, 0, 0, 1, math.Inf(1), 0})
	assertNear(t, "X", ts.X, 7)
}

func TestSetMatrixResetsOrigins(t *testing.T) {
	ts := NewTransformState()
	ts.RotationOriginX = 4
	ts.SetMatrix(Translate(2, 3))
	assertNear(t, "X", ts.X, 2)
	assertNear(t, "Y", ts.Y, 3)
	assertNear(t, "RotationOriginX", ts.RotationOriginX, 0)
}

func TestMoveByUnderScaledParent(t *testing.T) {
	g := NewGroup("g")
	g.SetScale(2, 2)
	c := NewCircle("c", 0, 0, 1)
	if err := g.AddChild(c); err != nil {
		t.Fatal(err)
	}
	c.UpdateTransform()
	c.MoveBy(10, 0)
	assertNear(t, "local x", c.Transform.X, 5)
	c.UpdateTransform()
	x, _ := c.Transform.WorldPosition()
	assertNear(t, "world x", x, 10)
}

func TestMoveByUnderRotatedParent(t *testing.T) {
	g := NewGroup("g")
	g.SetRotation(math.Pi / 2)
	c := NewCircle("c", 0, 0, 1)
	c.SetRotation(0.3)
	if err := g.AddChild(c); err != nil {
		t.Fatal(err)
	}
	c.UpdateTransform()
	c.MoveBy(0, 10)
	assertNear(t, "local x", c.Transform.X, 10)
	assertNear(t, "local y", c.Transform.Y, 0)
	c.UpdateTransform()
	x, y := c.Transform.WorldPosition()
	assertNear(t, "world x", x, 0)
	assertNear(t, "world y", y, 10)
}

func TestLookAt(t *testing.T) {
	n := NewCircle("n", 0, 0, 1)
	n.LookAt(0, 10)
	assertNear(t, "rotation", n.Transform.Rotation, math.Pi/2)
}

func TestLookAtKeepsPositionAndScale(t *testing.T) {
	n := NewCircle("n", 0, 0, 1)
	n.SetPosition(10, 10)
	n.SetScale(2, 3)
	n.LookAt(10, 0)
	assertNear(t, "rotation", n.Transform.Rotation, -math.Pi/2)
	assertNear(t, "X", n.Transform.X, 10)
	assertNear(t, "Y", n.Transform.Y, 10)
	assertNear(t, "scaleX", n.Transform.ScaleX, 2)
	assertNear(t, "scaleY", n.Transform.ScaleY, 3)
}
