package strata

import (
	"math"

	"github.com/gogpu/gg"
)

// transformEpsilon is the threshold below which a position, rotation or
// scale delta counts as "no transform".
const transformEpsilon = 5e-5

// Matrix is a 2D affine matrix.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Matrix [6]float64

// IdentityMatrix leaves points unchanged.
var IdentityMatrix = Matrix{1, 0, 0, 1, 0, 0}

// Translate returns a translation matrix.
func Translate(x, y float64) Matrix { return Matrix{1, 0, 0, 1, x, y} }

// Scale returns a scaling matrix.
func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// Rotate returns a rotation matrix for r radians.
func Rotate(r float64) Matrix {
	sin, cos := math.Sincos(r)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// Multiply returns m * c: c is applied first, then m.
func (m Matrix) Multiply(c Matrix) Matrix {
	return Matrix{
		m[0]*c[0] + m[2]*c[1],
		m[1]*c[0] + m[3]*c[1],
		m[0]*c[2] + m[2]*c[3],
		m[1]*c[2] + m[3]*c[3],
		m[0]*c[4] + m[2]*c[5] + m[4],
		m[1]*c[4] + m[3]*c[5] + m[5],
	}
}

// Invert returns the inverse matrix. ok is false when m is singular.
func (m Matrix) Invert() (inv Matrix, ok bool) {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return IdentityMatrix, false
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Matrix{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}, true
}

// Apply transforms the point (x, y).
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// ApplyVector transforms (x, y) ignoring translation.
func (m Matrix) ApplyVector(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y, m[1]*x + m[3]*y
}

// IsFinite reports whether every entry is a finite number.
func (m Matrix) IsFinite() bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// scaleFactor is the geometric mean of the axis scales.
func (m Matrix) scaleFactor() float64 {
	return math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
}

// Decompose recovers position, rotation and scale such that composing them
// with zero origins reproduces m. Shear is discarded. Scale comes from the
// column norms because scale is applied before rotation.
func (m Matrix) Decompose() (x, y, rotation, scaleX, scaleY float64) {
	scaleX = math.Hypot(m[0], m[1])
	scaleY = math.Hypot(m[2], m[3])
	if m[0]*m[3]-m[1]*m[2] < 0 {
		scaleY = -scaleY
	}
	if scaleX != 0 {
		rotation = math.Atan2(m[1]/scaleX, m[0]/scaleX)
	}
	return m[4], m[5], rotation, scaleX, scaleY
}

func (m Matrix) toGG() gg.Matrix {
	return gg.Matrix{A: m[0], B: m[2], C: m[4], D: m[1], E: m[3], F: m[5]}
}

// TransformState holds a node's local transform properties and the
// composed matrix from its last update.
type TransformState struct {
	X, Y            float64
	Rotation        float64 // radians
	RotationOriginX float64
	RotationOriginY float64
	ScaleX, ScaleY  float64
	ScaleOriginX    float64
	ScaleOriginY    float64

	matrix         Matrix
	inverse        Matrix
	invertible     bool
	needsLocal     bool
	needsTransform bool
}

// NewTransformState returns an identity transform.
func NewTransformState() TransformState {
	return TransformState{ScaleX: 1, ScaleY: 1, matrix: IdentityMatrix, inverse: IdentityMatrix, invertible: true}
}

// Matrix returns the composed matrix from the last update.
func (t *TransformState) Matrix() Matrix { return t.matrix }

// NeedsLocalTransform reports whether the local properties differ from identity.
func (t *TransformState) NeedsLocalTransform() bool { return t.needsLocal }

// NeedsTransform reports whether this node or any ancestor is transformed.
func (t *TransformState) NeedsTransform() bool { return t.needsTransform }

// WorldPosition returns where the local origin lands after the last update.
func (t *TransformState) WorldPosition() (float64, float64) {
	return t.matrix.Apply(0, 0)
}

func nearZero(v float64) bool { return v > -transformEpsilon && v < transformEpsilon }

func (t *TransformState) computeNeedsLocal() bool {
	return !nearZero(t.X) || !nearZero(t.Y) || !nearZero(t.Rotation) ||
		!nearZero(t.ScaleX-1) || !nearZero(t.ScaleY-1)
}

// linearPart is the local matrix without the position translation:
// Translate(ro)·Rotate·Translate(-ro)·Translate(so)·Scale·Translate(-so).
// Scale is applied first, then rotation.
func (t *TransformState) linearPart() Matrix {
	m := IdentityMatrix
	if !nearZero(t.Rotation) {
		m = Translate(t.RotationOriginX, t.RotationOriginY).
			Multiply(Rotate(t.Rotation)).
			Multiply(Translate(-t.RotationOriginX, -t.RotationOriginY))
	}
	if !nearZero(t.ScaleX-1) || !nearZero(t.ScaleY-1) {
		m = m.Multiply(Translate(t.ScaleOriginX, t.ScaleOriginY)).
			Multiply(Scale(t.ScaleX, t.ScaleY)).
			Multiply(Translate(-t.ScaleOriginX, -t.ScaleOriginY))
	}
	return m
}

// LocalMatrix composes the local properties into a matrix: scale, then
// rotation, then the position translation.
func (t *TransformState) LocalMatrix() Matrix {
	return Translate(t.X, t.Y).Multiply(t.linearPart())
}

// Update recomputes the matrix against parent, which may be nil for roots.
// A non-finite result is rejected and the previous matrix kept; Update
// then reports false.
func (t *TransformState) Update(parent *TransformState) bool {
	needsLocal := t.computeNeedsLocal()
	parentNeeds := parent != nil && parent.needsTransform

	var m Matrix
	switch {
	case needsLocal && parentNeeds:
		m = parent.matrix.Multiply(t.LocalMatrix())
	case needsLocal:
		m = t.LocalMatrix()
	case parentNeeds:
		m = parent.matrix
	default:
		m = IdentityMatrix
	}
	if !m.IsFinite() {
		return false
	}
	t.needsLocal = needsLocal
	t.needsTransform = needsLocal || parentNeeds
	t.matrix = m
	t.inverse, t.invertible = m.Invert()
	return true
}

// ToLocal maps a point in the parent-of-root space into local space.
// ok is false when the matrix is singular.
func (t *TransformState) ToLocal(x, y float64) (lx, ly float64, ok bool) {
	if !t.needsTransform {
		return x, y, true
	}
	if !t.invertible {
		return 0, 0, false
	}
	lx, ly = t.inverse.Apply(x, y)
	return lx, ly, true
}

// ToWorld maps a local point through the composed matrix.
func (t *TransformState) ToWorld(x, y float64) (float64, float64) {
	return t.matrix.Apply(x, y)
}

// SetMatrix replaces the local properties with the decomposition of m.
// Origins are reset to zero. A non-finite m is ignored.
func (t *TransformState) SetMatrix(m Matrix) {
	if !m.IsFinite() {
		return
	}
	t.X, t.Y, t.Rotation, t.ScaleX, t.ScaleY = m.Decompose()
	t.RotationOriginX, t.RotationOriginY = 0, 0
	t.ScaleOriginX, t.ScaleOriginY = 0, 0
}
