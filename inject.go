package arbor

// syntheticPointerEvent represents a single injected pointer sample.
// Screen coordinates are used and converted through ScreenToWorld,
// identical to real mouse input.
type syntheticPointerEvent struct {
	screenX, screenY float64
	pressed          bool
	button           MouseButton
}

// InjectPress queues a pointer press at the given screen coordinates
// (left button). The sample is consumed on the next Poll.
func (s *EbitenSource) InjectPress(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectMove queues a pointer move with the button held down. Use this
// between InjectPress and InjectRelease to simulate a drag.
func (s *EbitenSource) InjectMove(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: true,
		button:  MouseButtonLeft,
	})
}

// InjectHover queues a pointer move with no button held.
func (s *EbitenSource) InjectHover(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		button: MouseButtonLeft,
	})
}

// InjectRelease queues a pointer release at the given screen coordinates.
func (s *EbitenSource) InjectRelease(x, y float64) {
	s.injectQueue = append(s.injectQueue, syntheticPointerEvent{
		screenX: x, screenY: y,
		pressed: false,
		button:  MouseButtonLeft,
	})
}

// InjectClick queues a press followed by a release at the same screen
// coordinates. Consumes two polls.
func (s *EbitenSource) InjectClick(x, y float64) {
	s.InjectPress(x, y)
	s.InjectRelease(x, y)
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY),
// linearly interpolated moves over frames-2 intermediate polls, and
// release at (toX, toY). Minimum frames is 2 (press + release).
func (s *EbitenSource) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	s.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		x := fromX + (toX-fromX)*t
		y := fromY + (toY-fromY)*t
		s.InjectMove(x, y)
	}
	s.InjectRelease(toX, toY)
}

// Pending returns the number of queued synthetic samples.
func (s *EbitenSource) Pending() int {
	return len(s.injectQueue)
}

// popInjected removes and returns the oldest queued sample.
func (s *EbitenSource) popInjected() (syntheticPointerEvent, bool) {
	if len(s.injectQueue) == 0 {
		return syntheticPointerEvent{}, false
	}
	evt := s.injectQueue[0]
	copy(s.injectQueue, s.injectQueue[1:])
	s.injectQueue = s.injectQueue[:len(s.injectQueue)-1]
	return evt, true
}
