package strata

import "time"

// EventType names an event dispatched through the bubbling mechanism.
type EventType string

const (
	EventResize     EventType = "resize"
	EventClick      EventType = "click"
	EventDblClick   EventType = "dblclick"
	EventMouseWheel EventType = "mousewheel"
	EventMouseMove  EventType = "mousemove"
	EventMouseOver  EventType = "mouseover"
	EventMouseOut   EventType = "mouseout"
	EventMouseDown  EventType = "mousedown"
	EventMouseUp    EventType = "mouseup"
	EventGlobalOut  EventType = "globalout"
	EventDragStart  EventType = "dragstart"
	EventDragEnd    EventType = "dragend"
	EventDragEnter  EventType = "dragenter"
	EventDragOver   EventType = "dragover"
	EventDragLeave  EventType = "dragleave"
	EventDrop       EventType = "drop"
)

// PointerEvent is a normalized pointer sample from the host.
type PointerEvent struct {
	X, Y      float64 // surface coordinates in logical pixels
	Button    MouseButton
	Modifiers KeyModifiers
	WheelX    float64
	WheelY    float64
	Time      time.Time // zero means "now"
}

// Event is the payload passed to handlers.
type Event struct {
	Type          EventType
	Original      PointerEvent
	Target        *Node // deepest node hit, nil for surface-level events
	Current       *Node // node whose handlers are running
	DraggedTarget *Node // set for drag events
	LocalX        float64
	LocalY        float64
	Width, Height int // set for resize
	stopped       bool
}

// StopPropagation halts bubbling and the global broadcast.
func (e *Event) StopPropagation() { e.stopped = true }

// Stopped reports whether a handler called StopPropagation.
func (e *Event) Stopped() bool { return e.stopped }

// Handler receives events.
type Handler func(*Event)

type handlerEntry struct {
	id uint32
	fn Handler
}

// EventDispatcher stores handlers by event type.
type EventDispatcher struct {
	handlers map[EventType][]handlerEntry
	nextID   uint32
}

// CallbackHandle allows removing a registered handler.
type CallbackHandle struct {
	id    uint32
	d     *EventDispatcher
	event EventType
}

// Remove unregisters the handler so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.d == nil {
		return
	}
	s := h.d.handlers[h.event]
	for i := range s {
		if s[i].id == h.id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = handlerEntry{}
			h.d.handlers[h.event] = s[:len(s)-1]
			return
		}
	}
}

// On registers fn for events of type t.
func (d *EventDispatcher) On(t EventType, fn Handler) CallbackHandle {
	if d.handlers == nil {
		d.handlers = make(map[EventType][]handlerEntry)
	}
	d.nextID++
	d.handlers[t] = append(d.handlers[t], handlerEntry{id: d.nextID, fn: fn})
	return CallbackHandle{id: d.nextID, d: d, event: t}
}

// Off removes every handler for t.
func (d *EventDispatcher) Off(t EventType) {
	delete(d.handlers, t)
}

// Clear removes every handler.
func (d *EventDispatcher) Clear() {
	d.handlers = nil
}

// HasHandlers reports whether any handler is registered.
func (d *EventDispatcher) HasHandlers() bool {
	for _, s := range d.handlers {
		if len(s) > 0 {
			return true
		}
	}
	return false
}

// Listens reports whether a handler is registered for t.
func (d *EventDispatcher) Listens(t EventType) bool {
	return len(d.handlers[t]) > 0
}

// Trigger calls the handlers for e.Type in registration order. Stopping
// propagation does not skip the remaining handlers on the same dispatcher.
func (d *EventDispatcher) Trigger(e *Event) {
	s := d.handlers[e.Type]
	if len(s) == 0 {
		return
	}
	// Copy so handlers may remove themselves.
	fns := make([]Handler, len(s))
	for i := range s {
		fns[i] = s[i].fn
	}
	for _, fn := range fns {
		fn(e)
	}
}
