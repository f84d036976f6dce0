package strata

import (
	"math"
	"time"
)

type dragPhase uint8

const (
	phaseIdle dragPhase = iota
	phasePossibleDrag
	phaseDragging
)

// wheelZoomStep is the zoom factor applied per wheel notch.
const wheelZoomStep = 1.1

// PointerController turns host pointer samples into hit tests, hover
// tracking, clicks and drags. All methods run on the frame goroutine.
type PointerController struct {
	scene  *Scene
	comp   *Compositor
	global *EventDispatcher
	cfg    Config
	hit    hitTester

	phase       dragPhase
	button      MouseButton
	pressX      float64
	pressY      float64
	lastX       float64
	lastY       float64
	moveCount   int
	pressTarget *Node
	dragged     *Node
	dropTarget  *Node
	hover       *Node
	captured    *Node
	panning     bool

	lastClick     *Node
	lastClickTime time.Time
}

func newPointerController(scene *Scene, comp *Compositor, global *EventDispatcher, cfg Config) *PointerController {
	p := &PointerController{scene: scene, comp: comp, global: global, cfg: cfg}
	p.hit = hitTester{
		minHit:      cfg.MinHitWidth,
		ignoreClips: !cfg.ClipEnabled,
		layerToLocal: func(tier int, x, y float64) (float64, float64) {
			if l, ok := comp.layers[tier]; ok {
				return l.ToLocal(x, y)
			}
			return x, y
		},
	}
	return p
}

// Dragged returns the primitive being dragged, or nil.
func (p *PointerController) Dragged() *Node { return p.dragged }

// Hovered returns the primitive under the pointer, or nil.
func (p *PointerController) Hovered() *Node { return p.hover }

// Dragging reports whether a drag is in progress.
func (p *PointerController) Dragging() bool { return p.phase == phaseDragging }

// Capture routes every pointer event to n until the next release or
// ReleaseCapture.
func (p *PointerController) Capture(n *Node) { p.captured = n }

// ReleaseCapture ends a capture.
func (p *PointerController) ReleaseCapture() { p.captured = nil }

// HitTest returns the topmost interactive primitive at the surface point.
func (p *PointerController) HitTest(x, y float64) *Node {
	return p.hit.findTopmost(x, y, p.scene.drawList, p.dragged)
}

func (p *PointerController) target(x, y float64) *Node {
	if p.captured != nil && !p.captured.disposed && p.captured.Scene() == p.scene {
		return p.captured
	}
	return p.HitTest(x, y)
}

// PointerDown starts a press.
func (p *PointerController) PointerDown(e PointerEvent) {
	t := p.target(e.X, e.Y)
	p.updateHover(t, e)
	p.phase = phasePossibleDrag
	p.button = e.Button
	p.pressX, p.pressY = e.X, e.Y
	p.lastX, p.lastY = e.X, e.Y
	p.moveCount = 0
	p.pressTarget = t
	p.emit(EventMouseDown, t, e)
}

// PointerMove updates hover and advances any drag.
func (p *PointerController) PointerMove(e PointerEvent) {
	if p.phase != phaseIdle {
		p.moveCount++
	}
	if p.phase == phasePossibleDrag {
		dx, dy := e.X-p.pressX, e.Y-p.pressY
		if math.Hypot(dx, dy) > p.cfg.DragThreshold {
			p.startDrag(e)
		}
	}
	if p.phase == phaseDragging {
		p.continueDrag(e)
	}

	t := p.target(e.X, e.Y)
	p.updateHover(t, e)
	p.emit(EventMouseMove, t, e)
	p.lastX, p.lastY = e.X, e.Y
}

// PointerUp ends a press with a click, a drop or a pan.
func (p *PointerController) PointerUp(e PointerEvent) {
	if p.phase == phaseDragging && (e.X != p.lastX || e.Y != p.lastY) {
		p.continueDrag(e)
		p.lastX, p.lastY = e.X, e.Y
	}
	t := p.target(e.X, e.Y)
	p.emit(EventMouseUp, t, e)

	switch {
	case p.phase == phaseDragging && p.dragged != nil:
		p.endDrag(e, true)
	case p.phase != phaseIdle && !p.panning &&
		p.moveCount <= p.cfg.ClickMoveLimit && t == p.pressTarget:
		p.click(t, e)
	}

	p.phase = phaseIdle
	p.panning = false
	p.pressTarget = nil
	p.captured = nil
	p.updateHover(p.target(e.X, e.Y), e)
}

// PointerWheel dispatches a wheel event and, unless a handler stopped it,
// zooms every zoomable layer around the pointer.
func (p *PointerController) PointerWheel(e PointerEvent) {
	t := p.target(e.X, e.Y)
	ev := p.emit(EventMouseWheel, t, e)
	if ev.Stopped() || e.WheelY == 0 {
		return
	}
	factor := math.Pow(wheelZoomStep, e.WheelY)
	for _, l := range p.comp.Layers() {
		l.ZoomAt(factor, e.X, e.Y)
	}
}

// PointerLeave handles the pointer leaving the surface: hover ends, a drag
// in progress is cancelled and globalout is broadcast.
func (p *PointerController) PointerLeave(e PointerEvent) {
	if p.phase == phaseDragging && p.dragged != nil {
		p.endDrag(e, false)
	}
	p.phase = phaseIdle
	p.panning = false
	p.pressTarget = nil
	p.captured = nil
	p.updateHover(nil, e)
	ev := &Event{Type: EventGlobalOut, Original: e}
	p.global.Trigger(ev)
}

// startDrag rewinds the last position to the press point so the motion
// made below the threshold is not lost.
func (p *PointerController) startDrag(e PointerEvent) {
	p.phase = phaseDragging
	p.lastX, p.lastY = p.pressX, p.pressY
	n := p.pressTarget
	if n == nil {
		p.panning = true
		return
	}
	if !n.Draggable {
		return
	}
	p.dragged = n
	p.scene.AddHighlight(n.id)
	ev := p.newEvent(EventDragStart, n, e)
	p.dispatch(ev, n)
}

func (p *PointerController) continueDrag(e PointerEvent) {
	if p.panning {
		for _, l := range p.comp.Layers() {
			l.Pan(e.X-p.lastX, e.Y-p.lastY)
		}
		return
	}
	n := p.dragged
	if n == nil {
		return
	}
	if n.disposed || n.Scene() != p.scene {
		p.cancelDrag()
		return
	}
	l := p.comp.Layer(n.ZTier)
	x0, y0 := l.ToLocal(p.lastX, p.lastY)
	x1, y1 := l.ToLocal(e.X, e.Y)
	n.MoveBy(x1-x0, y1-y0)
	n.UpdateTransform()

	over := p.hit.findTopmost(e.X, e.Y, p.scene.drawList, n)
	if over != p.dropTarget {
		if p.dropTarget != nil {
			p.dispatch(p.newEvent(EventDragLeave, p.dropTarget, e), p.dropTarget)
		}
		if over != nil {
			p.dispatch(p.newEvent(EventDragEnter, over, e), over)
		}
		p.dropTarget = over
	}
	if over != nil {
		p.dispatch(p.newEvent(EventDragOver, over, e), over)
	}
}

// endDrag finishes the drag. drop reports whether the drop target, if any,
// receives a drop event.
func (p *PointerController) endDrag(e PointerEvent, drop bool) {
	n := p.dragged
	if drop && p.dropTarget != nil {
		p.dispatch(p.newEvent(EventDrop, p.dropTarget, e), p.dropTarget)
	} else if p.dropTarget != nil {
		p.dispatch(p.newEvent(EventDragLeave, p.dropTarget, e), p.dropTarget)
	}
	if n.Scene() == p.scene {
		p.dispatch(p.newEvent(EventDragEnd, n, e), n)
	}
	p.cancelDrag()
}

func (p *PointerController) cancelDrag() {
	if p.dragged != nil && p.dragged != p.hover {
		p.scene.RemoveHighlight(p.dragged.id)
	}
	p.dragged = nil
	p.dropTarget = nil
}

func (p *PointerController) click(t *Node, e PointerEvent) {
	p.emit(EventClick, t, e)

	now := e.Time
	if now.IsZero() {
		now = time.Now()
	}
	window := time.Duration(p.cfg.DoubleClickMS) * time.Millisecond
	if p.lastClick == t && !p.lastClickTime.IsZero() && now.Sub(p.lastClickTime) <= window {
		p.emit(EventDblClick, t, e)
		p.lastClickTime = time.Time{}
		return
	}
	p.lastClick = t
	p.lastClickTime = now
}

// updateHover fires mouseout/mouseover once per boundary crossing and keeps
// the highlight set in step with the hovered primitive.
func (p *PointerController) updateHover(t *Node, e PointerEvent) {
	if t == p.hover {
		return
	}
	if old := p.hover; old != nil {
		if old != p.dragged && old.Scene() == p.scene {
			p.scene.RemoveHighlight(old.id)
		}
		p.emit(EventMouseOut, old, e)
	}
	p.hover = t
	if t != nil {
		if t.Hoverable {
			p.scene.AddHighlight(t.id)
		}
		p.emit(EventMouseOver, t, e)
	}
}

func (p *PointerController) newEvent(t EventType, target *Node, e PointerEvent) *Event {
	return &Event{Type: t, Original: e, Target: target, DraggedTarget: p.dragged}
}

// emit builds an event for target and dispatches it.
func (p *PointerController) emit(t EventType, target *Node, e PointerEvent) *Event {
	ev := p.newEvent(t, target, e)
	p.dispatch(ev, target)
	return ev
}

// dispatch bubbles ev from target through its ancestors, then broadcasts it
// to the global dispatcher unless a handler stopped propagation.
func (p *PointerController) dispatch(ev *Event, target *Node) {
	x, y := ev.Original.X, ev.Original.Y
	if target != nil {
		if l, ok := p.comp.layers[target.ZTier]; ok {
			x, y = l.ToLocal(x, y)
		}
	}
	for cur := target; cur != nil; cur = cur.Parent() {
		ev.Current = cur
		ev.LocalX, ev.LocalY, _ = cur.Transform.ToLocal(x, y)
		cur.Events.Trigger(ev)
		if ev.stopped {
			return
		}
	}
	ev.Current = nil
	ev.LocalX, ev.LocalY = x, y
	p.global.Trigger(ev)
}
