package arbor

import (
	"image"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
)

// Scene is the top-level object that owns the node tree, the dispatcher and
// the pointer source feeding it. It drives the frame loop: Update polls
// input and advances nodes, Draw renders back to front. Input dispatch runs
// synchronously inside Poll and is not gated by the frame clock.
type Scene struct {
	// ClearColor fills the screen before drawing when its alpha is non-zero.
	ClearColor Color

	root       *Group
	dispatcher *Dispatcher
	source     *EbitenSource
	tweens     []*TweenGroup
	testRunner *TestRunner

	// updateStack holds per-level snapshots for the update walk.
	updateStack []Node
}

// NewScene creates a scene with an empty root container wired to live
// Ebitengine input.
func NewScene() *Scene {
	return newScene(NewEbitenSource())
}

func newScene(src *EbitenSource) *Scene {
	root := NewGroup("root")
	s := &Scene{
		root:       root,
		dispatcher: NewDispatcher(root.Children()),
		source:     src,
	}
	s.dispatcher.Attach(src)
	return s
}

// Root returns the scene's root container.
func (s *Scene) Root() *Group {
	return s.root
}

// Dispatcher returns the dispatcher routing this scene's input.
func (s *Scene) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// Source returns the scene's pointer source, e.g. to inject input.
func (s *Scene) Source() *EbitenSource {
	return s.source
}

// SetLogger sets the logger for the dispatcher and every layer.
func (s *Scene) SetLogger(logger *slog.Logger) {
	s.dispatcher.SetLogger(logger)
}

// SetDebugMode enables or disables debug mode. When enabled, tree depth and
// child count warnings are logged and per-dispatch stats are logged at
// debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.dispatcher.SetDebugMode(enabled)
}

// SetEntityStore sets the optional ECS bridge.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.dispatcher.SetEntityStore(store)
}

// SetDragDeadZone sets the click tolerance of the scene's pointer source.
func (s *Scene) SetDragDeadZone(pixels float64) {
	s.source.SetDragDeadZone(pixels)
}

// AddTween registers a tween to be advanced by Update until it is Done.
func (s *Scene) AddTween(g *TweenGroup) {
	if g != nil {
		s.tweens = append(s.tweens, g)
	}
}

// Update processes input, then advances nodes and tweens by one tick.
// Hover is re-evaluated at the end of the tick so nodes that moved or
// scrolled under a still pointer get their enter and leave.
func (s *Scene) Update() {
	s.step(1.0 / float64(ebiten.TPS()))
}

// step runs one frame with an explicit timestep.
func (s *Scene) step(dt float64) {
	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.source.Poll()
	s.updateLayer(s.root.Children(), dt)

	live := s.tweens[:0]
	for _, g := range s.tweens {
		g.Update(float32(dt))
		if !g.Done {
			live = append(live, g)
		}
	}
	clear(s.tweens[len(live):])
	s.tweens = live

	s.dispatcher.RefreshHover()
}

// updateLayer calls Update on every Updater below l, back to front. Nodes
// added during the walk are picked up next frame; nodes removed are skipped.
func (s *Scene) updateLayer(l *Layer, dt float64) {
	start := len(s.updateStack)
	s.updateStack = append(s.updateStack, l.Sorted()...)
	end := len(s.updateStack)
	for i := start; i < end; i++ {
		n := s.updateStack[i]
		if n.base().owner != l {
			continue
		}
		if u, ok := n.(Updater); ok {
			u.Update(dt)
		}
		if c, ok := n.(Container); ok {
			s.updateLayer(c.Children(), dt)
		}
	}
	clear(s.updateStack[start:])
	s.updateStack = s.updateStack[:start]
}

// Draw renders the tree back to front onto screen. Drawers must not mutate
// the tree.
func (s *Scene) Draw(screen *ebiten.Image) {
	if s.ClearColor.A > 0 {
		screen.Fill(s.ClearColor.toRGBA())
	}
	s.drawLayer(screen, s.root.Children(), identityTransform)
}

func (s *Scene) drawLayer(dst *ebiten.Image, l *Layer, parent [6]float64) {
	for _, n := range l.Sorted() {
		b := n.base()
		if !b.Visible {
			continue
		}
		m := multiplyAffine(parent, computeLocalTransform(b))
		if d, ok := n.(Drawer); ok {
			d.Draw(dst, geoM(m))
		}
		c, ok := n.(Container)
		if !ok {
			continue
		}
		target := dst
		if v, ok := n.(*Viewport); ok && m[1] == 0 && m[2] == 0 {
			r := transformRect(m, v.Clip)
			target = dst.SubImage(image.Rect(
				int(r.X), int(r.Y),
				int(r.X+r.Width), int(r.Y+r.Height),
			)).(*ebiten.Image)
		}
		childM := m
		if cm, ok := n.(ContentMapper); ok {
			ox, oy := cm.ToContent(0, 0)
			childM = multiplyAffine(m, [6]float64{1, 0, 0, 1, -ox, -oy})
		}
		s.drawLayer(target, c.Children(), childM)
	}
}

// RunConfig configures the window for Run.
type RunConfig struct {
	Title  string
	Width  int
	Height int
	// ShowFPS draws an FPS/TPS readout above the scene.
	ShowFPS bool
}

// Run opens a window and drives the scene with a minimal ebiten.Game.
func Run(scene *Scene, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	g := &game{scene: scene, w: cfg.Width, h: cfg.Height}
	if cfg.ShowFPS {
		g.fps = &fpsOverlay{}
	}
	return ebiten.RunGame(g)
}

type game struct {
	scene *Scene
	w, h  int
	fps   *fpsOverlay
}

func (g *game) Update() error {
	g.scene.Update()
	if g.fps != nil {
		g.fps.update(1.0 / float64(ebiten.TPS()))
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
	if g.fps != nil {
		g.fps.draw(screen)
	}
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.w, g.h
}
