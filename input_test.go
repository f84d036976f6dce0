package strata

import (
	"testing"
	"time"
)

// tickAll runs ticks until every injected event has been consumed.
func tickAll(t *testing.T, r *Renderer) {
	t.Helper()
	for i := 0; r.PendingInjections() > 0; i++ {
		if i > 1000 {
			t.Fatal("injection queue never drained")
		}
		if err := r.Tick(1.0 / 60); err != nil {
			t.Fatal(err)
		}
	}
}

func newInputRenderer(t *testing.T) *Renderer {
	t.Helper()
	r := New(testConfig())
	return r
}

func recordEvents(log *[]string, prefix string, d *EventDispatcher, types ...EventType) {
	for _, et := range types {
		d.On(et, func(e *Event) {
			*log = append(*log, prefix+":"+string(e.Type))
		})
	}
}

func assertLog(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestDragEndToEnd(t *testing.T) {
	r := newInputRenderer(t)
	root := NewGroup("root")
	a := NewCircle("A", 0, 0, 10)
	a.Draggable = true
	b := NewRect("B", 50, 50, 80, 20)
	_ = root.AddChild(a)
	_ = root.AddChild(b)
	r.Add(root)
	if err := r.Refresh(); err != nil {
		t.Fatal(err)
	}
	list := r.Scene.DrawList()
	if len(list) != 2 {
		t.Fatalf("draw list len = %d, want 2", len(list))
	}

	r.InjectDrag(0, 0, 30, 30, 5)
	tickAll(t, r)
	_ = r.Tick(1.0 / 60)

	assertNear(t, "A.X", a.Transform.X, 30)
	assertNear(t, "A.Y", a.Transform.Y, 30)
	assertNear(t, "B.X", b.Transform.X, 0)
	assertNear(t, "B.Y", b.Transform.Y, 0)
	assertOrder(t, r.Scene.DrawList(), "A", "B")
	if r.Pointer.Dragged() != nil {
		t.Error("drag still active after release")
	}
	if r.Scene.IsHighlighted(a.ID()) && r.Pointer.Hovered() != a {
		t.Error("dragged node left in highlight set")
	}
}

func TestDragEvents(t *testing.T) {
	r := newInputRenderer(t)
	a := NewCircle("A", 0, 0, 5)
	a.Draggable = true
	target := NewRect("target", 20, 20, 20, 20)
	r.Add(target)
	r.Add(a)
	_ = r.Refresh()

	var log []string
	recordEvents(&log, "a", &a.Events, EventDragStart, EventDragEnd)
	recordEvents(&log, "t", &target.Events, EventDragEnter, EventDragLeave, EventDrop)

	var dragged *Node
	target.Events.On(EventDrop, func(e *Event) { dragged = e.DraggedTarget })

	r.InjectPress(0, 0)
	r.InjectMove(10, 0)  // starts the drag, nothing underneath
	r.InjectMove(30, 30) // over target
	r.InjectRelease(30, 30)
	tickAll(t, r)

	assertLog(t, log, "a:dragstart", "t:dragenter", "t:drop", "a:dragend")
	if dragged != a {
		t.Error("drop event missing DraggedTarget")
	}
}

func TestDragLeaveFiresOnceOnExit(t *testing.T) {
	r := newInputRenderer(t)
	a := NewCircle("A", 0, 0, 5)
	a.Draggable = true
	target := NewRect("target", 20, 0, 10, 10)
	r.Add(target)
	r.Add(a)
	_ = r.Refresh()

	var log []string
	recordEvents(&log, "t", &target.Events, EventDragEnter, EventDragLeave)
	r.InjectPress(0, 0)
	r.InjectMove(25, 5)
	r.InjectMove(26, 5)
	r.InjectMove(60, 5)
	r.InjectRelease(60, 5)
	tickAll(t, r)
	assertLog(t, log, "t:dragenter", "t:dragleave")
}

func TestPointerLeaveCancelsDrag(t *testing.T) {
	r := newInputRenderer(t)
	a := NewCircle("A", 0, 0, 5)
	a.Draggable = true
	target := NewRect("target", 20, 0, 10, 10)
	r.Add(target)
	r.Add(a)
	_ = r.Refresh()

	var log []string
	recordEvents(&log, "t", &target.Events, EventDragLeave, EventDrop)
	recordEvents(&log, "a", &a.Events, EventDragEnd)
	recordEvents(&log, "g", &r.Events, EventGlobalOut)

	r.InjectPress(0, 0)
	r.InjectMove(25, 5)
	r.InjectLeave()
	tickAll(t, r)
	assertLog(t, log, "t:dragleave", "a:dragend", "g:globalout")
	if r.Pointer.Dragging() {
		t.Error("still dragging after leave")
	}
}

func TestPanOnEmptyArea(t *testing.T) {
	r := newInputRenderer(t)
	opts := DefaultLayerOptions()
	opts.Panable = true
	r.ConfigureLayer(0, opts)
	r.Add(NewCircle("c", 0, 0, 5))
	_ = r.Refresh()

	r.InjectDrag(40, 40, 50, 45, 4)
	tickAll(t, r)
	l := r.Layer(0)
	assertNear(t, "PanX", l.PanX, 10)
	assertNear(t, "PanY", l.PanY, 5)
}

func TestDragUnderZoomedLayer(t *testing.T) {
	r := newInputRenderer(t)
	opts := DefaultLayerOptions()
	opts.Zoomable = true
	r.ConfigureLayer(0, opts)
	a := NewCircle("A", 0, 0, 5)
	a.Draggable = true
	r.Add(a)
	_ = r.Refresh()
	r.Layer(0).ZoomAt(2, 0, 0)

	r.InjectDrag(0, 0, 20, 0, 3)
	tickAll(t, r)
	// 20 surface pixels at zoom 2 are 10 layer units.
	assertNear(t, "A.X", a.Transform.X, 10)
}

func TestBubblingOrder(t *testing.T) {
	r := newInputRenderer(t)
	outer := NewGroup("outer")
	inner := NewGroup("inner")
	c := NewCircle("c", 10, 10, 5)
	c.Clickable = true
	_ = inner.AddChild(c)
	_ = outer.AddChild(inner)
	r.Add(outer)
	_ = r.Refresh()

	var log []string
	recordEvents(&log, "c", &c.Events, EventClick)
	recordEvents(&log, "inner", &inner.Events, EventClick)
	recordEvents(&log, "outer", &outer.Events, EventClick)
	recordEvents(&log, "global", &r.Events, EventClick)

	var currents []*Node
	outer.Events.On(EventClick, func(e *Event) {
		currents = append(currents, e.Current, e.Target)
	})

	r.InjectClick(10, 10)
	tickAll(t, r)
	assertLog(t, log, "c:click", "inner:click", "outer:click", "global:click")
	if len(currents) != 2 || currents[0] != outer || currents[1] != c {
		t.Errorf("Current/Target = %v", names(currents))
	}
}

func TestStopPropagation(t *testing.T) {
	r := newInputRenderer(t)
	g := NewGroup("g")
	c := NewCircle("c", 10, 10, 5)
	_ = g.AddChild(c)
	r.Add(g)
	_ = r.Refresh()

	var log []string
	c.Events.On(EventClick, func(e *Event) {
		log = append(log, "c")
		e.StopPropagation()
	})
	c.Events.On(EventClick, func(*Event) { log = append(log, "c2") })
	recordEvents(&log, "g", &g.Events, EventClick)
	recordEvents(&log, "global", &r.Events, EventClick)

	r.InjectClick(10, 10)
	tickAll(t, r)
	assertLog(t, log, "c", "c2")
}

func TestEventLocalCoordinates(t *testing.T) {
	r := newInputRenderer(t)
	g := NewGroup("g")
	g.SetPosition(20, 10)
	c := NewCircle("c", 0, 0, 5)
	_ = g.AddChild(c)
	r.Add(g)
	_ = r.Refresh()

	var lx, ly float64
	c.Events.On(EventMouseDown, func(e *Event) { lx, ly = e.LocalX, e.LocalY })
	r.InjectPress(22, 13)
	tickAll(t, r)
	assertNear(t, "LocalX", lx, 2)
	assertNear(t, "LocalY", ly, 3)
}

func TestDoubleClick(t *testing.T) {
	r := newInputRenderer(t)
	c := NewCircle("c", 10, 10, 5)
	r.Add(c)
	_ = r.Refresh()
	var log []string
	recordEvents(&log, "c", &c.Events, EventClick, EventDblClick)

	t0 := time.Unix(1000, 0)
	click := func(at time.Time) {
		e := PointerEvent{X: 10, Y: 10, Time: at}
		r.Pointer.PointerDown(e)
		r.Pointer.PointerUp(e)
	}
	click(t0)
	click(t0.Add(100 * time.Millisecond))
	assertLog(t, log, "c:click", "c:click", "c:dblclick")

	log = nil
	click(t0.Add(2 * time.Second))
	click(t0.Add(3 * time.Second))
	assertLog(t, log, "c:click", "c:click")
}

func TestClickSuppressedAfterManyMoves(t *testing.T) {
	r := newInputRenderer(t)
	c := NewCircle("c", 10, 10, 8)
	r.Add(c)
	_ = r.Refresh()
	clicks := 0
	c.Events.On(EventClick, func(*Event) { clicks++ })

	p := r.Pointer
	p.PointerDown(PointerEvent{X: 10, Y: 10})
	for i := range 6 {
		p.PointerMove(PointerEvent{X: 10 + float64(i)*0.1, Y: 10})
	}
	p.PointerUp(PointerEvent{X: 10.5, Y: 10})
	if clicks != 0 {
		t.Errorf("clicks = %d, want 0", clicks)
	}

	p.PointerDown(PointerEvent{X: 10, Y: 10})
	p.PointerMove(PointerEvent{X: 11, Y: 10})
	p.PointerUp(PointerEvent{X: 11, Y: 10})
	if clicks != 1 {
		t.Errorf("clicks = %d, want 1", clicks)
	}
}

func TestClickRequiresSameTarget(t *testing.T) {
	r := newInputRenderer(t)
	a := NewCircle("a", 10, 10, 5)
	b := NewCircle("b", 40, 10, 5)
	r.Add(a)
	r.Add(b)
	_ = r.Refresh()
	clicks := 0
	r.Events.On(EventClick, func(*Event) { clicks++ })
	r.Pointer.PointerDown(PointerEvent{X: 10, Y: 10})
	r.Pointer.PointerUp(PointerEvent{X: 40, Y: 10})
	if clicks != 0 {
		t.Errorf("clicks = %d, want 0", clicks)
	}
}

func TestHoverEnterLeaveOnce(t *testing.T) {
	r := newInputRenderer(t)
	a := NewCircle("a", 10, 10, 5)
	r.Add(a)
	_ = r.Refresh()
	var log []string
	recordEvents(&log, "a", &a.Events, EventMouseOver, EventMouseOut)

	p := r.Pointer
	p.PointerMove(PointerEvent{X: 40, Y: 40})
	p.PointerMove(PointerEvent{X: 10, Y: 10})
	p.PointerMove(PointerEvent{X: 11, Y: 10})
	if !r.Scene.IsHighlighted(a.ID()) {
		t.Error("hovered node not highlighted")
	}
	p.PointerMove(PointerEvent{X: 40, Y: 40})
	assertLog(t, log, "a:mouseover", "a:mouseout")
	if r.Scene.IsHighlighted(a.ID()) {
		t.Error("highlight kept after mouseout")
	}
}

func TestSilentNodeNotHit(t *testing.T) {
	r := newInputRenderer(t)
	below := NewCircle("below", 10, 10, 5)
	above := NewCircle("above", 10, 10, 5)
	above.Hoverable = false
	r.Add(below)
	r.Add(above)
	_ = r.Refresh()
	if got := r.Pointer.HitTest(10, 10); got != below {
		t.Errorf("HitTest = %s, want below", nodeName(got))
	}

	above.Clickable = true
	if got := r.Pointer.HitTest(10, 10); got != above {
		t.Errorf("HitTest = %s, want above", nodeName(got))
	}
}

func TestInvisibleNodeStillHit(t *testing.T) {
	r := newInputRenderer(t)
	n := NewCircle("n", 10, 10, 5)
	n.Invisible = true
	r.Add(n)
	_ = r.Refresh()
	if r.Pointer.HitTest(10, 10) != n {
		t.Error("invisible node not hit")
	}
}

func TestHitTestTopmost(t *testing.T) {
	r := newInputRenderer(t)
	top := NewCircle("top", 10, 10, 5)
	top.ZTier = 1
	bottom := NewCircle("bottom", 10, 10, 5)
	r.Add(top)
	r.Add(bottom)
	_ = r.Refresh()
	if got := r.Pointer.HitTest(10, 10); got != top {
		t.Errorf("HitTest = %s, want top", nodeName(got))
	}
}

func TestHitTestThroughLayerPan(t *testing.T) {
	r := newInputRenderer(t)
	opts := DefaultLayerOptions()
	opts.Panable = true
	r.ConfigureLayer(0, opts)
	n := NewCircle("n", 0, 0, 5)
	r.Add(n)
	_ = r.Refresh()
	r.Layer(0).Pan(30, 0)
	if r.Pointer.HitTest(30, 0) != n {
		t.Error("panned node not hit at its surface position")
	}
	if r.Pointer.HitTest(0, 0) != nil {
		t.Error("hit at the unpanned position")
	}
}

func TestClipInheritanceHit(t *testing.T) {
	r := newInputRenderer(t)
	outer := NewGroup("outer")
	_ = outer.SetClip(NewCircle("clip", 45, 20, 10))
	inner := NewGroup("inner")
	inner.SetPosition(-5, -5)
	inner.SetRotation(0.3)
	big := NewRect("big", -100, -100, 300, 300)
	_ = inner.AddChild(big)
	_ = outer.AddChild(inner)
	r.Add(outer)
	_ = r.Refresh()

	tests := []hitCase{
		{"inside clip", 45, 20, true},
		{"edge of clip", 53, 20, true},
		{"outside clip", 10, 20, false},
		{"below clip", 45, 45, false},
	}
	for _, tt := range tests {
		got := r.Pointer.HitTest(tt.x, tt.y) == big
		if got != tt.want {
			t.Errorf("%s: hit = %v, want %v", tt.name, got, tt.want)
		}
	}
	if r.Scene.FindTopmost(10, 20) != nil {
		t.Error("FindTopmost ignored the clip")
	}
}

func TestWheelZoomsLayers(t *testing.T) {
	r := newInputRenderer(t)
	opts := DefaultLayerOptions()
	opts.Zoomable = true
	r.ConfigureLayer(0, opts)
	r.Add(NewCircle("c", 0, 0, 5))
	_ = r.Refresh()

	r.InjectWheel(10, 10, 1)
	tickAll(t, r)
	assertNear(t, "Zoom", r.Layer(0).Zoom, wheelZoomStep)

	c := r.Scene.Roots()[0]
	c.Events.On(EventMouseWheel, func(e *Event) { e.StopPropagation() })
	r.InjectWheel(0, 0, 1)
	tickAll(t, r)
	assertNear(t, "Zoom after stop", r.Layer(0).Zoom, wheelZoomStep)
}

func TestCaptureRoutesEvents(t *testing.T) {
	r := newInputRenderer(t)
	a := NewCircle("a", 10, 10, 5)
	b := NewCircle("b", 40, 10, 5)
	r.Add(a)
	r.Add(b)
	_ = r.Refresh()
	var got *Node
	a.Events.On(EventMouseMove, func(e *Event) { got = e.Target })
	r.Pointer.Capture(a)
	r.Pointer.PointerMove(PointerEvent{X: 40, Y: 10})
	if got != a {
		t.Error("captured node did not receive the move")
	}
	r.Pointer.ReleaseCapture()
	got = nil
	r.Pointer.PointerMove(PointerEvent{X: 40, Y: 10})
	if got != nil {
		t.Error("move routed to a after release")
	}
}

func TestDisposedDragTargetCancels(t *testing.T) {
	r := newInputRenderer(t)
	a := NewCircle("a", 0, 0, 5)
	a.Draggable = true
	r.Add(a)
	_ = r.Refresh()
	p := r.Pointer
	p.PointerDown(PointerEvent{X: 0, Y: 0})
	p.PointerMove(PointerEvent{X: 10, Y: 0})
	if p.Dragged() != a {
		t.Fatal("drag did not start")
	}
	a.Dispose()
	p.PointerMove(PointerEvent{X: 20, Y: 0})
	if p.Dragged() != nil {
		t.Error("drag of disposed node not cancelled")
	}
}

func nodeName(n *Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.Name
}
