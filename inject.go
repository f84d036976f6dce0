package strata

type syntheticKind uint8

const (
	synthPress syntheticKind = iota
	synthMove
	synthRelease
	synthWheel
	synthLeave
)

// syntheticPointerEvent represents a single injected pointer event in
// surface coordinates, fed through the same controller path as real input.
type syntheticPointerEvent struct {
	kind   syntheticKind
	x, y   float64
	button MouseButton
	wheel  float64
}

// InjectPress queues a left-button press at the given surface coordinates.
// The event is consumed on the next Tick.
func (r *Renderer) InjectPress(x, y float64) {
	r.injectQueue = append(r.injectQueue, syntheticPointerEvent{kind: synthPress, x: x, y: y})
}

// InjectMove queues a pointer move. Use it between InjectPress and
// InjectRelease to simulate a drag.
func (r *Renderer) InjectMove(x, y float64) {
	r.injectQueue = append(r.injectQueue, syntheticPointerEvent{kind: synthMove, x: x, y: y})
}

// InjectRelease queues a release at the given surface coordinates.
func (r *Renderer) InjectRelease(x, y float64) {
	r.injectQueue = append(r.injectQueue, syntheticPointerEvent{kind: synthRelease, x: x, y: y})
}

// InjectWheel queues a vertical wheel step at the given point.
func (r *Renderer) InjectWheel(x, y, delta float64) {
	r.injectQueue = append(r.injectQueue, syntheticPointerEvent{kind: synthWheel, x: x, y: y, wheel: delta})
}

// InjectLeave queues the pointer leaving the surface.
func (r *Renderer) InjectLeave() {
	r.injectQueue = append(r.injectQueue, syntheticPointerEvent{kind: synthLeave})
}

// InjectClick queues a press followed by a release at the same point.
// Consumes two ticks.
func (r *Renderer) InjectClick(x, y float64) {
	r.InjectPress(x, y)
	r.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate ticks, and
// release at (toX, toY). Minimum frames is 2 (press + release).
func (r *Renderer) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	r.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		r.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	r.InjectRelease(toX, toY)
}

// PendingInjections returns the number of queued synthetic events.
func (r *Renderer) PendingInjections() int { return len(r.injectQueue) }

// processInjectedInput pops one event from the queue and feeds it to the
// pointer controller. Returns true if an event was consumed.
func (r *Renderer) processInjectedInput() bool {
	if len(r.injectQueue) == 0 {
		return false
	}
	evt := r.injectQueue[0]
	copy(r.injectQueue, r.injectQueue[1:])
	r.injectQueue = r.injectQueue[:len(r.injectQueue)-1]

	e := PointerEvent{X: evt.x, Y: evt.y, Button: evt.button, WheelY: evt.wheel}
	switch evt.kind {
	case synthPress:
		r.Pointer.PointerDown(e)
	case synthMove:
		r.Pointer.PointerMove(e)
	case synthRelease:
		r.Pointer.PointerUp(e)
	case synthWheel:
		r.Pointer.PointerWheel(e)
	case synthLeave:
		r.Pointer.PointerLeave(e)
	}
	return true
}
