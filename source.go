package arbor

import "math"

const defaultDragDeadZone = 4.0 // pixels

// PointerEvent is one raw event from an upstream pointer source, in the same
// coordinate space as the root layer.
type PointerEvent struct {
	Type      EventType
	X, Y      float64
	Button    MouseButton
	Modifiers KeyModifiers
}

// PointerSource produces raw pointer events. Subscribe registers fn and
// returns a function that removes it.
type PointerSource interface {
	Subscribe(fn func(PointerEvent)) (unsubscribe func())
}

// subscriberList is the fan-out shared by the stock sources.
type subscriberList struct {
	subs   []subscriber
	nextID uint32
}

type subscriber struct {
	id uint32
	fn func(PointerEvent)
}

func (l *subscriberList) subscribe(fn func(PointerEvent)) func() {
	if fn == nil {
		return func() {}
	}
	l.nextID++
	id := l.nextID
	l.subs = append(l.subs, subscriber{id: id, fn: fn})
	return func() {
		for i := range l.subs {
			if l.subs[i].id == id {
				out := make([]subscriber, 0, len(l.subs)-1)
				out = append(out, l.subs[:i]...)
				l.subs = append(out, l.subs[i+1:]...)
				return
			}
		}
	}
}

func (l *subscriberList) publish(evt PointerEvent) {
	for _, s := range l.subs {
		s.fn(evt)
	}
}

// PointerFeed is a PointerSource driven by explicit Push calls. Use it to
// bridge events from a custom input layer, or in tests.
type PointerFeed struct {
	subs subscriberList
}

// NewPointerFeed creates an empty feed.
func NewPointerFeed() *PointerFeed {
	return &PointerFeed{}
}

// Subscribe implements PointerSource.
func (f *PointerFeed) Subscribe(fn func(PointerEvent)) func() {
	return f.subs.subscribe(fn)
}

// Push delivers evt to every subscriber synchronously.
func (f *PointerFeed) Push(evt PointerEvent) {
	f.subs.publish(evt)
}

// Move pushes a pointer-move at (x, y).
func (f *PointerFeed) Move(x, y float64) {
	f.Push(PointerEvent{Type: EventPointerMove, X: x, Y: y})
}

// Tap pushes down, up and click at (x, y) with the left button.
func (f *PointerFeed) Tap(x, y float64) {
	f.Push(PointerEvent{Type: EventPointerDown, X: x, Y: y})
	f.Push(PointerEvent{Type: EventPointerUp, X: x, Y: y})
	f.Push(PointerEvent{Type: EventClick, X: x, Y: y})
}

// pointerTracker turns per-frame pointer samples into raw events:
// move when the position changes, down and up on button edges, and click on
// a release that stayed within the drag dead zone of its press.
type pointerTracker struct {
	down         bool
	seen         bool
	startX       float64
	startY       float64
	lastX        float64
	lastY        float64
	travelled    bool
	button       MouseButton // button captured at press time
	dragDeadZone float64
}

func newPointerTracker() pointerTracker {
	return pointerTracker{dragDeadZone: defaultDragDeadZone}
}

// sample runs the tracker for one frame and appends the resulting events.
func (t *pointerTracker) sample(x, y float64, pressed bool, button MouseButton, mods KeyModifiers, out []PointerEvent) []PointerEvent {
	if !t.seen || x != t.lastX || y != t.lastY {
		btn := button
		if t.down {
			btn = t.button
		}
		out = append(out, PointerEvent{Type: EventPointerMove, X: x, Y: y, Button: btn, Modifiers: mods})
		t.seen = true
		t.lastX, t.lastY = x, y
		if t.down && !t.travelled {
			dx := x - t.startX
			dy := y - t.startY
			if math.Sqrt(dx*dx+dy*dy) > t.dragDeadZone {
				t.travelled = true
			}
		}
	}

	switch {
	case pressed && !t.down:
		// Just pressed; capture the button for the duration of this interaction.
		t.down = true
		t.button = button
		t.startX, t.startY = x, y
		t.travelled = false
		out = append(out, PointerEvent{Type: EventPointerDown, X: x, Y: y, Button: button, Modifiers: mods})
	case !pressed && t.down:
		t.down = false
		out = append(out, PointerEvent{Type: EventPointerUp, X: x, Y: y, Button: t.button, Modifiers: mods})
		if !t.travelled {
			out = append(out, PointerEvent{Type: EventClick, X: x, Y: y, Button: t.button, Modifiers: mods})
		}
		t.travelled = false
	}
	return out
}
