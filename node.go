package strata

import (
	"fmt"
	"image"
	"math"

	"go.jetify.com/typeid/v2"
)

// NodeID is a node's unique, immutable identifier, a TypeID whose prefix
// names the node kind (e.g. "group_01h…", "circle_01h…").
type NodeID string

// Prefix returns the kind prefix of the id, or "" if the id is malformed.
func (id NodeID) Prefix() string {
	tid, err := typeid.Parse(string(id))
	if err != nil {
		return ""
	}
	return tid.Prefix()
}

// arena owns a set of nodes keyed by id. Every node belongs to exactly one
// arena; a detached node owns a private one, and the arena of a Scene is
// the scene's index. Parent and child links are ids resolved through it.
type arena struct {
	nodes map[NodeID]*Node
	scene *Scene
}

func newArena() *arena {
	return &arena{nodes: make(map[NodeID]*Node)}
}

// Node is a scene graph element: a Group with ordered children or a
// Primitive with a Shape. A single struct is used for both kinds.
type Node struct {
	id   NodeID
	Name string
	kind NodeKind

	arena    *arena
	parent   NodeID
	children []NodeID

	Transform TransformState
	Events    EventDispatcher

	// Ordering
	ZTier  int
	ZOrder int

	// Visibility & interaction
	Ignore    bool // skipped by traversal: no paint, no events
	Invisible bool // not painted, still hit-tested
	Clickable bool
	Draggable bool
	Hoverable bool

	UserData any

	shape     Shape
	style     Style
	highlight *StyleOverride
	clip      *Node

	dirty       bool
	path        *Path
	bbox        Rect
	bboxValid   bool
	clipChain   []*Node
	renderIndex int
	image       image.Image
	disposed    bool
}

func newNode(name string, kind NodeKind, prefix string) *Node {
	n := &Node{
		id:        NodeID(typeid.MustGenerate(prefix).String()),
		Name:      name,
		kind:      kind,
		Transform: NewTransformState(),
		Hoverable: true,
		style:     DefaultStyle(),
		dirty:     true,
	}
	a := newArena()
	a.nodes[n.id] = n
	n.arena = a
	return n
}

// NewGroup creates a detached group.
func NewGroup(name string) *Node {
	return newNode(name, KindGroup, "group")
}

// NewPrimitive creates a detached primitive drawing shape. Open shapes
// default to the stroke brush; text defaults to the inside anchor.
func NewPrimitive(name string, shape Shape) *Node {
	n := newNode(name, KindPrimitive, shape.Kind())
	n.shape = shape
	if o, ok := shape.(openShape); ok && o.isOpen() {
		n.style.Brush = BrushStroke
	}
	if _, ok := shape.(*TextShape); ok {
		n.style.TextPosition = TextInside
	}
	return n
}

// NewCircle creates a circle primitive centered at (x, y).
func NewCircle(name string, x, y, r float64) *Node {
	return NewPrimitive(name, &Circle{X: x, Y: y, Radius: r})
}

// NewRect creates a rectangle primitive with its top-left at (x, y).
func NewRect(name string, x, y, w, h float64) *Node {
	return NewPrimitive(name, &Rectangle{X: x, Y: y, Width: w, Height: h})
}

// NewLine creates a line primitive.
func NewLine(name string, x1, y1, x2, y2 float64) *Node {
	return NewPrimitive(name, &Line{X1: x1, Y1: y1, X2: x2, Y2: y2})
}

// NewPolygon creates a closed polygon primitive.
func NewPolygon(name string, pts []Vec2) *Node {
	return NewPrimitive(name, &Polygon{Points: pts})
}

// NewPathNode creates a primitive from a caller-built path.
func NewPathNode(name string, p *Path) *Node {
	return NewPrimitive(name, &PathShape{Path: p})
}

// --- Identity & hierarchy ---

// ID returns the node's unique id.
func (n *Node) ID() NodeID { return n.id }

// Kind reports whether n is a group or a primitive.
func (n *Node) Kind() NodeKind { return n.kind }

// IsGroup reports whether n can hold children.
func (n *Node) IsGroup() bool { return n.kind == KindGroup }

// Scene returns the scene n is attached to, or nil.
func (n *Node) Scene() *Scene {
	if n.arena == nil {
		return nil
	}
	return n.arena.scene
}

// Parent returns the parent group, or nil for roots and detached nodes.
func (n *Node) Parent() *Node {
	if n.parent == "" || n.arena == nil {
		return nil
	}
	return n.arena.nodes[n.parent]
}

// Children returns the children in insertion order.
func (n *Node) Children() []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, id := range n.children {
		if c := n.arena.nodes[id]; c != nil {
			out = append(out, c)
		}
	}
	return out
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int { return len(n.children) }

// AddChild appends child to n, detaching it from its previous parent or
// scene root list first.
func (n *Node) AddChild(child *Node) error {
	if n.kind != KindGroup {
		return fmt.Errorf("%w: %s", ErrNotGroup, n.id)
	}
	if child == nil || child.disposed || n.disposed {
		return fmt.Errorf("%w: nil or disposed child", ErrInvalidArgument)
	}
	if child.arena == n.arena {
		for p := n; p != nil; p = p.Parent() {
			if p == child {
				return fmt.Errorf("%w: %s", ErrCycle, child.id)
			}
		}
	}
	child.detach()
	if child.arena != n.arena {
		moveSubtree(child, n.arena)
	}
	child.parent = n.id
	n.children = append(n.children, child.id)
	child.markSubtreeDirty()
	return nil
}

// RemoveChild detaches child from n. The removed subtree keeps its
// structure in a private arena and may be added elsewhere.
func (n *Node) RemoveChild(child *Node) {
	if child == nil || child.parent != n.id || child.arena != n.arena {
		return
	}
	child.detach()
	moveSubtree(child, newArena())
}

// RemoveFromParent detaches n from its parent or from the scene roots.
func (n *Node) RemoveFromParent() {
	if n.parent == "" && n.Scene() == nil {
		return
	}
	n.detach()
	moveSubtree(n, newArena())
}

// detach unlinks n from its parent or scene root list without changing arenas.
func (n *Node) detach() {
	if p := n.Parent(); p != nil {
		p.removeChildID(n.id)
		n.parent = ""
		if s := n.Scene(); s != nil {
			s.changed = true
		}
		return
	}
	n.parent = ""
	if s := n.Scene(); s != nil {
		s.removeRootID(n.id)
	}
}

func (n *Node) removeChildID(id NodeID) {
	for i, c := range n.children {
		if c == id {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = ""
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// moveSubtree re-homes n and all descendants into dst.
func moveSubtree(n *Node, dst *arena) {
	src := n.arena
	var walk func(*Node)
	walk = func(m *Node) {
		delete(src.nodes, m.id)
		dst.nodes[m.id] = m
		m.arena = dst
		for _, id := range m.children {
			if c := src.nodes[id]; c != nil {
				walk(c)
			}
		}
	}
	walk(n)
	if src.scene != nil {
		src.scene.changed = true
	}
	if dst.scene != nil {
		dst.scene.changed = true
	}
}

// Walk visits n and its descendants depth-first in insertion order.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		c.Walk(fn)
	}
}

// Dispose detaches n and permanently disables it and its descendants.
// Pending image loads for disposed nodes never paint.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.Walk(func(m *Node) bool {
		m.disposed = true
		m.Events.Clear()
		return true
	})
}

// IsDisposed reports whether Dispose has been called.
func (n *Node) IsDisposed() bool { return n.disposed }

// --- Dirty tracking ---

// MarkDirty flags n for repaint and invalidates its cached outline and
// bounds. For a group, descendants are repainted at the next rebuild.
func (n *Node) MarkDirty() {
	n.dirty = true
	n.path = nil
	n.bboxValid = false
	if s := n.Scene(); s != nil {
		s.changed = true
	}
}

// IsDirty reports whether n is waiting for repaint.
func (n *Node) IsDirty() bool { return n.dirty }

func (n *Node) markSubtreeDirty() {
	n.Walk(func(m *Node) bool {
		m.MarkDirty()
		return true
	})
}

// --- Primitive data ---

// Shape returns the primitive's geometry, nil for groups.
func (n *Node) Shape() Shape { return n.shape }

// SetShape replaces the geometry and marks n dirty.
func (n *Node) SetShape(s Shape) {
	if n.kind != KindPrimitive || s == nil {
		return
	}
	n.shape = s
	n.MarkDirty()
}

// Style returns the base paint style.
func (n *Node) Style() Style { return n.style }

// SetStyle replaces the base style and marks n dirty. Out-of-range values
// fall back to defaults.
func (n *Node) SetStyle(s Style) {
	n.style = s.normalized()
	n.MarkDirty()
}

// UpdateStyle edits the base style in place.
func (n *Node) UpdateStyle(fn func(*Style)) {
	s := n.style
	fn(&s)
	n.SetStyle(s)
}

// HighlightStyle returns the sparse override painted while n is hovered
// or dragged.
func (n *Node) HighlightStyle() *StyleOverride { return n.highlight }

// SetHighlightStyle sets the highlight override.
func (n *Node) SetHighlightStyle(o *StyleOverride) {
	n.highlight = o
	n.MarkDirty()
}

// Clip returns the group's clip primitive, or nil.
func (n *Node) Clip() *Node { return n.clip }

// SetClip makes prim's filled region mask every descendant of the group.
// prim is owned by the group and must not be in a tree. Passing nil
// removes the clip.
func (n *Node) SetClip(prim *Node) error {
	if n.kind != KindGroup {
		return fmt.Errorf("%w: %s", ErrNotGroup, n.id)
	}
	if prim != nil && (prim.kind != KindPrimitive || prim.parent != "" || prim.Scene() != nil) {
		return fmt.Errorf("%w: clip must be a detached primitive", ErrInvalidArgument)
	}
	n.clip = prim
	n.markSubtreeDirty()
	return nil
}

// RenderIndex is n's position in the last draw-list rebuild.
func (n *Node) RenderIndex() int { return n.renderIndex }

// ClipChain returns the ancestor clips stamped at the last rebuild,
// outermost first.
func (n *Node) ClipChain() []*Node { return n.clipChain }

// IsSilent reports whether n cannot take part in pointer interaction.
func (n *Node) IsSilent() bool {
	return !n.Hoverable && !n.Draggable && !n.Clickable && !n.Events.HasHandlers()
}

// outline returns the cached local path, rebuilding it if needed.
func (n *Node) outline() *Path {
	if n.path == nil {
		n.path = NewPath()
		if n.shape != nil {
			n.shape.BuildPath(n.path)
		}
	}
	return n.path
}

// Bounds returns the local bounding box including half the stroke width.
func (n *Node) Bounds() Rect {
	if n.bboxValid {
		return n.bbox
	}
	var b Rect
	if n.shape != nil {
		b = n.shapeBounds()
		if n.style.Brush.strokes() {
			b = b.Inset(n.style.LineWidth / 2)
		}
	}
	n.bbox, n.bboxValid = b, true
	return b
}

// shapeBounds is the geometry box without stroke, used for text anchors.
func (n *Node) shapeBounds() Rect {
	if bs, ok := n.shape.(boundedShape); ok {
		return bs.bounds()
	}
	return n.outline().Bounds()
}

// ContainsPoint reports whether the local point (x, y) hits the primitive.
// Open outlines use stroke distance with a minimum band of minHit. Closed
// outlines use a closed-form test where the shape has one, the backend's
// point-in-path when requested, and non-zero winding otherwise. A stroked
// closed outline also hits on its stroke band.
func (n *Node) ContainsPoint(x, y, minHit float64) bool {
	if n.shape == nil {
		return false
	}
	if o, ok := n.shape.(openShape); ok && o.isOpen() {
		return strokeContains(n.outline(), x, y, n.style.LineWidth, minHit)
	}
	if n.fillContains(x, y) {
		return true
	}
	return n.style.Brush.strokes() && strokeContains(n.outline(), x, y, n.style.LineWidth, 0)
}

// fillContains tests the filled region only; clips use it.
func (n *Node) fillContains(x, y float64) bool {
	if n.shape == nil {
		return false
	}
	if cf, ok := n.shape.(closedFormShape); ok {
		if inside, ok := cf.closedForm(x, y); ok {
			return inside
		}
	}
	if ps, ok := n.shape.(*PathShape); ok && ps.NativeHitTest {
		return nativeContains(n.outline(), x, y)
	}
	return fillContains(n.outline(), x, y)
}

// --- Transform helpers ---

// SetPosition sets the local position and marks n dirty.
func (n *Node) SetPosition(x, y float64) {
	n.Transform.X, n.Transform.Y = x, y
	n.MarkDirty()
}

// Position returns the local position.
func (n *Node) Position() (float64, float64) { return n.Transform.X, n.Transform.Y }

// SetRotation sets the rotation in radians and marks n dirty.
func (n *Node) SetRotation(r float64) {
	n.Transform.Rotation = r
	n.MarkDirty()
}

// SetScale sets the scale factors and marks n dirty.
func (n *Node) SetScale(sx, sy float64) {
	n.Transform.ScaleX, n.Transform.ScaleY = sx, sy
	n.MarkDirty()
}

// SetRotationOrigin sets the pivot for rotation.
func (n *Node) SetRotationOrigin(x, y float64) {
	n.Transform.RotationOriginX, n.Transform.RotationOriginY = x, y
	n.MarkDirty()
}

// SetScaleOrigin sets the pivot for scaling.
func (n *Node) SetScaleOrigin(x, y float64) {
	n.Transform.ScaleOriginX, n.Transform.ScaleOriginY = x, y
	n.MarkDirty()
}

// UpdateTransform recomputes n's matrix from its parent chain.
func (n *Node) UpdateTransform() {
	if p := n.Parent(); p != nil {
		p.UpdateTransform()
		n.Transform.Update(&p.Transform)
		return
	}
	n.Transform.Update(nil)
}

// parentMatrix returns the composed matrix of n's parent.
func (n *Node) parentMatrix() Matrix {
	if p := n.Parent(); p != nil {
		return p.Transform.matrix
	}
	return IdentityMatrix
}

// MoveBy shifts n so that it travels (dx, dy) in world space.
func (n *Node) MoveBy(dx, dy float64) {
	lin := n.parentMatrix()
	lin[4], lin[5] = 0, 0
	if inv, ok := lin.Invert(); ok {
		dx, dy = inv.ApplyVector(dx, dy)
	}
	n.SetPosition(n.Transform.X+dx, n.Transform.Y+dy)
}

// LookAt rotates n so its +X axis points at the world point (x, y).
// Origins are folded into the position so the local origin stays put.
func (n *Node) LookAt(x, y float64) {
	n.UpdateTransform()
	ox, oy := n.Transform.WorldPosition()
	pm := n.parentMatrix()
	rot := math.Atan2(y-oy, x-ox) - math.Atan2(pm[1], pm[0])
	local := n.Transform.LocalMatrix()
	m := Translate(local[4], local[5]).
		Multiply(Rotate(rot)).
		Multiply(Scale(n.Transform.ScaleX, n.Transform.ScaleY))
	n.Transform.SetMatrix(m)
	n.MarkDirty()
}
