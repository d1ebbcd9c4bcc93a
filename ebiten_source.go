package arbor

import "github.com/hajimehoshi/ebiten/v2"

// inputReader abstracts the device state an EbitenSource samples each frame.
type inputReader interface {
	cursor() (x, y int)
	buttons() (pressed bool, button MouseButton)
	modifiers() KeyModifiers
	primaryTouch() (x, y int, ok bool)
}

// ebitenReader reads live Ebitengine input state.
type ebitenReader struct {
	touchIDs []ebiten.TouchID
}

func (r *ebitenReader) cursor() (int, int) {
	return ebiten.CursorPosition()
}

func (r *ebitenReader) buttons() (bool, MouseButton) {
	switch {
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		return true, MouseButtonLeft
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
		return true, MouseButtonRight
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle):
		return true, MouseButtonMiddle
	}
	return false, MouseButtonLeft
}

func (r *ebitenReader) modifiers() KeyModifiers {
	var mods KeyModifiers
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= ModShift
	}
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		mods |= ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyAlt) {
		mods |= ModAlt
	}
	if ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= ModMeta
	}
	return mods
}

// primaryTouch reports the first active touch. Further touches are ignored;
// the engine follows a single logical pointer.
func (r *ebitenReader) primaryTouch() (int, int, bool) {
	r.touchIDs = ebiten.AppendTouchIDs(r.touchIDs[:0])
	if len(r.touchIDs) == 0 {
		return 0, 0, false
	}
	x, y := ebiten.TouchPosition(r.touchIDs[0])
	return x, y, true
}

// EbitenSource samples Ebitengine mouse and touch state once per Poll and
// publishes the resulting pointer events. Each source is an independent
// context object; several scenes or canvases can each own one.
type EbitenSource struct {
	// ScreenToWorld, when set, maps screen coordinates into the root
	// layer's space before events are published.
	ScreenToWorld func(sx, sy float64) (float64, float64)

	reader      inputReader
	tracker     pointerTracker
	subs        subscriberList
	injectQueue []syntheticPointerEvent
	buf         []PointerEvent
}

// NewEbitenSource creates a source reading live Ebitengine input.
func NewEbitenSource() *EbitenSource {
	return newEbitenSource(&ebitenReader{})
}

func newEbitenSource(r inputReader) *EbitenSource {
	return &EbitenSource{reader: r, tracker: newPointerTracker()}
}

// Subscribe implements PointerSource.
func (s *EbitenSource) Subscribe(fn func(PointerEvent)) func() {
	return s.subs.subscribe(fn)
}

// SetDragDeadZone sets how far in pixels the pointer may travel between
// press and release and still produce a click.
func (s *EbitenSource) SetDragDeadZone(pixels float64) {
	s.tracker.dragDeadZone = pixels
}

// Poll samples input for one frame. Injected events take precedence: while
// the inject queue is non-empty, one synthetic sample is consumed per call
// and real input is skipped.
func (s *EbitenSource) Poll() {
	mods := s.reader.modifiers()

	var x, y float64
	var pressed bool
	var button MouseButton
	if evt, ok := s.popInjected(); ok {
		x, y = evt.screenX, evt.screenY
		pressed, button = evt.pressed, evt.button
	} else if tx, ty, ok := s.reader.primaryTouch(); ok {
		x, y = float64(tx), float64(ty)
		pressed, button = true, MouseButtonLeft
	} else {
		mx, my := s.reader.cursor()
		x, y = float64(mx), float64(my)
		pressed, button = s.reader.buttons()
	}
	if s.ScreenToWorld != nil {
		x, y = s.ScreenToWorld(x, y)
	}

	events := s.tracker.sample(x, y, pressed, button, mods, s.buf[:0])
	// Detach the buffer so a handler that polls again gets its own.
	s.buf = nil
	for _, evt := range events {
		s.subs.publish(evt)
	}
	s.buf = events[:0]
}
