package arbor

// Event carries the data delivered to node and scene-level handlers.
type Event struct {
	Type      EventType
	Node      Node
	EntityID  uint32
	UserData  any
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	Modifiers KeyModifiers
}

// Handler receives events emitted on a node or dispatcher.
type Handler func(Event)

type handlerEntry struct {
	id uint32
	fn Handler
}

// handlerRegistry holds callbacks grouped by event type. The zero value is
// ready to use and costs nothing until a handler is registered.
type handlerRegistry struct {
	byType [numEventTypes][]handlerEntry
	nextID uint32
}

func (r *handlerRegistry) add(t EventType, fn Handler) CallbackHandle {
	if t >= numEventTypes || fn == nil {
		return CallbackHandle{}
	}
	r.nextID++
	id := r.nextID
	r.byType[t] = append(r.byType[t], handlerEntry{id: id, fn: fn})
	return CallbackHandle{id: id, reg: r, event: t}
}

// fire calls every handler registered for evt.Type. Handlers removed while
// firing are still called for this event; handlers added are not.
func (r *handlerRegistry) fire(evt Event) {
	if evt.Type >= numEventTypes {
		return
	}
	hs := r.byType[evt.Type]
	n := len(hs)
	for i := 0; i < n && i < len(hs); i++ {
		hs[i].fn(evt)
	}
}

func (r *handlerRegistry) count(t EventType) int {
	if t >= numEventTypes {
		return 0
	}
	return len(r.byType[t])
}

func (r *handlerRegistry) reset() {
	for i := range r.byType {
		r.byType[i] = nil
	}
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
// The entry is removed from the slice to avoid nil iteration waste.
func (h CallbackHandle) Remove() {
	if h.reg == nil || h.event >= numEventTypes {
		return
	}
	s := h.reg.byType[h.event]
	for i := range s {
		if s[i].id == h.id {
			// Copy so an in-flight fire keeps iterating its own slice.
			out := make([]handlerEntry, 0, len(s)-1)
			out = append(out, s[:i]...)
			out = append(out, s[i+1:]...)
			h.reg.byType[h.event] = out
			return
		}
	}
}
