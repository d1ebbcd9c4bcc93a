package arbor

import "testing"

// fakeReader is an inputReader driven by test code.
type fakeReader struct {
	x, y    int
	pressed bool
	button  MouseButton
	mods    KeyModifiers
	touch   bool
	tx, ty  int
}

func (r *fakeReader) cursor() (int, int)             { return r.x, r.y }
func (r *fakeReader) buttons() (bool, MouseButton)   { return r.pressed, r.button }
func (r *fakeReader) modifiers() KeyModifiers        { return r.mods }
func (r *fakeReader) primaryTouch() (int, int, bool) { return r.tx, r.ty, r.touch }

func eventTypes(evts []PointerEvent) []EventType {
	out := make([]EventType, len(evts))
	for i, e := range evts {
		out[i] = e.Type
	}
	return out
}

func equalTypes(a, b []EventType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTrackerClick(t *testing.T) {
	tr := newPointerTracker()
	var got []PointerEvent
	got = tr.sample(10, 10, false, MouseButtonLeft, 0, got)
	got = tr.sample(10, 10, true, MouseButtonLeft, 0, got)
	got = tr.sample(12, 11, true, MouseButtonLeft, 0, got)
	got = tr.sample(12, 11, false, MouseButtonLeft, 0, got)

	want := []EventType{EventPointerMove, EventPointerDown, EventPointerMove, EventPointerUp, EventClick}
	if !equalTypes(eventTypes(got), want) {
		t.Errorf("events = %v, want %v", eventTypes(got), want)
	}
}

func TestTrackerDragSuppressesClick(t *testing.T) {
	tr := newPointerTracker()
	var got []PointerEvent
	got = tr.sample(0, 0, true, MouseButtonLeft, 0, got)
	got = tr.sample(50, 0, true, MouseButtonLeft, 0, got)
	got = tr.sample(0, 0, false, MouseButtonLeft, 0, got)

	for _, e := range got {
		if e.Type == EventClick {
			t.Fatal("click fired after travelling past the dead zone")
		}
	}
}

func TestTrackerKeepsPressButton(t *testing.T) {
	tr := newPointerTracker()
	var got []PointerEvent
	got = tr.sample(0, 0, true, MouseButtonRight, 0, got)
	got = tr.sample(1, 0, true, MouseButtonLeft, 0, got)
	got = tr.sample(1, 0, false, MouseButtonLeft, 0, got)

	for _, e := range got {
		if e.Type != EventPointerDown && e.Type != EventPointerMove && e.Button != MouseButtonRight {
			t.Errorf("%v carried button %d, want right", e.Type, e.Button)
		}
	}
}

func TestTrackerIdleEmitsNothing(t *testing.T) {
	tr := newPointerTracker()
	first := tr.sample(5, 5, false, MouseButtonLeft, 0, nil)
	if len(first) != 1 {
		t.Fatalf("first sample = %d events, want 1 move", len(first))
	}
	if again := tr.sample(5, 5, false, MouseButtonLeft, 0, nil); len(again) != 0 {
		t.Errorf("unchanged sample produced %v", eventTypes(again))
	}
}

func TestPointerFeedSubscribe(t *testing.T) {
	f := NewPointerFeed()
	var a, b int
	unsubA := f.Subscribe(func(PointerEvent) { a++ })
	f.Subscribe(func(PointerEvent) { b++ })

	f.Tap(1, 1)
	unsubA()
	unsubA()
	f.Move(2, 2)

	if a != 3 || b != 4 {
		t.Errorf("a = %d, b = %d, want 3 and 4", a, b)
	}
}

func TestEbitenSourcePollMouse(t *testing.T) {
	r := &fakeReader{x: 10, y: 20, mods: ModShift}
	src := newEbitenSource(r)
	var got []PointerEvent
	src.Subscribe(func(e PointerEvent) { got = append(got, e) })

	src.Poll()
	r.pressed = true
	src.Poll()
	r.pressed = false
	src.Poll()

	want := []EventType{EventPointerMove, EventPointerDown, EventPointerUp, EventClick}
	if !equalTypes(eventTypes(got), want) {
		t.Fatalf("events = %v, want %v", eventTypes(got), want)
	}
	if got[1].X != 10 || got[1].Y != 20 || got[1].Modifiers != ModShift {
		t.Errorf("down = %+v", got[1])
	}
}

func TestEbitenSourceTouchWins(t *testing.T) {
	r := &fakeReader{x: 1, y: 1, touch: true, tx: 30, ty: 40}
	src := newEbitenSource(r)
	var got []PointerEvent
	src.Subscribe(func(e PointerEvent) { got = append(got, e) })

	src.Poll()

	want := []EventType{EventPointerMove, EventPointerDown}
	if !equalTypes(eventTypes(got), want) {
		t.Fatalf("events = %v, want %v", eventTypes(got), want)
	}
	if got[1].X != 30 || got[1].Y != 40 {
		t.Errorf("touch position = (%v, %v), want (30, 40)", got[1].X, got[1].Y)
	}
}

func TestEbitenSourceScreenToWorld(t *testing.T) {
	src := newEbitenSource(&fakeReader{x: 10, y: 10})
	src.ScreenToWorld = func(sx, sy float64) (float64, float64) { return sx * 2, sy + 5 }
	var got PointerEvent
	src.Subscribe(func(e PointerEvent) { got = e })

	src.Poll()

	if got.X != 20 || got.Y != 15 {
		t.Errorf("mapped = (%v, %v), want (20, 15)", got.X, got.Y)
	}
}

func TestEbitenSourceDeadZone(t *testing.T) {
	r := &fakeReader{}
	src := newEbitenSource(r)
	src.SetDragDeadZone(20)
	var clicks int
	src.Subscribe(func(e PointerEvent) {
		if e.Type == EventClick {
			clicks++
		}
	})

	r.pressed = true
	src.Poll()
	r.x = 15
	src.Poll()
	r.pressed = false
	src.Poll()

	if clicks != 1 {
		t.Errorf("clicks = %d, want 1 within a 20px dead zone", clicks)
	}
}
