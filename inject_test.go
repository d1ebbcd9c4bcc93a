package arbor

import "testing"

// injectScene returns a scene fed by an idle fake reader with one 100x100
// interactive rect at the origin.
func injectScene() (*Scene, *Shape) {
	s := newScene(newEbitenSource(&fakeReader{x: 500, y: 500}))
	box := NewRect("box", 100, 100)
	s.Root().Add(box)
	return s, box
}

func TestInjectClick(t *testing.T) {
	s, box := injectScene()

	var clicked bool
	box.OnClick(func(e Event) {
		clicked = true
		if e.Node != Node(box) {
			t.Error("expected box node")
		}
	})

	s.Source().InjectClick(50, 50)
	if s.Source().Pending() != 2 {
		t.Fatalf("expected 2 queued samples, got %d", s.Source().Pending())
	}

	// Frame 1: press
	s.Source().Poll()
	if s.Source().Pending() != 1 {
		t.Fatalf("expected 1 remaining sample after frame 1, got %d", s.Source().Pending())
	}
	if clicked {
		t.Error("click should not fire on press frame")
	}

	// Frame 2: release, click fires
	s.Source().Poll()
	if s.Source().Pending() != 0 {
		t.Fatalf("expected 0 remaining samples after frame 2, got %d", s.Source().Pending())
	}
	if !clicked {
		t.Error("click should fire on release frame")
	}
}

func TestInjectDrag(t *testing.T) {
	s, box := injectScene()

	var events []EventType
	for _, et := range []EventType{EventPointerDown, EventPointerUp, EventClick} {
		box.On(et, func(e Event) { events = append(events, e.Type) })
	}

	// Drag from (10,10) to (90,90) over 5 frames: press, 3 moves, release.
	s.Source().InjectDrag(10, 10, 90, 90, 5)
	if s.Source().Pending() != 5 {
		t.Fatalf("expected 5 queued samples, got %d", s.Source().Pending())
	}
	for s.Source().Pending() > 0 {
		s.Source().Poll()
	}

	want := []EventType{EventPointerDown, EventPointerUp}
	if !equalTypes(events, want) {
		t.Errorf("events = %v, want %v (no click after a drag)", events, want)
	}
}

func TestInjectDragMinimumFrames(t *testing.T) {
	s, _ := injectScene()
	s.Source().InjectDrag(0, 0, 10, 10, 0)
	if s.Source().Pending() != 2 {
		t.Errorf("expected press and release only, got %d samples", s.Source().Pending())
	}
}

func TestInjectHoverEntersAndLeaves(t *testing.T) {
	s, box := injectScene()

	var entered, left int
	box.OnHover(func(Event) { entered++ }, func(Event) { left++ })

	s.Source().InjectHover(10, 10)
	s.Source().InjectHover(200, 200)
	s.Source().Poll()
	if entered != 1 || !box.Hovered() {
		t.Fatalf("entered = %d, hovered = %v after first hover", entered, box.Hovered())
	}
	s.Source().Poll()
	if left != 1 || box.Hovered() {
		t.Errorf("left = %d, hovered = %v after moving away", left, box.Hovered())
	}
}

func TestInjectTakesPrecedenceOverDevice(t *testing.T) {
	r := &fakeReader{x: 50, y: 50, pressed: true}
	src := newEbitenSource(r)
	var got []PointerEvent
	src.Subscribe(func(e PointerEvent) { got = append(got, e) })

	src.InjectHover(5, 5)
	src.Poll()

	if len(got) != 1 || got[0].Type != EventPointerMove || got[0].X != 5 {
		t.Errorf("events = %+v, want a single move to (5, 5)", got)
	}
}
