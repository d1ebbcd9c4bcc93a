// Package arbor is the input-dispatch and z-order core of a retained-mode 2D
// scene graph for [Ebitengine].
//
// Arbor keeps nodes in depth-ordered collections, routes every pointer event
// to exactly one node (first hit from the top wins, across nested
// containers), and maintains hover enter/leave state across the whole tree.
//
// # Quick start
//
//	scene := arbor.NewScene()
//	button := arbor.NewRect("ok", 120, 40)
//	button.SetPosition(100, 80)
//	button.OnClick(func(e arbor.Event) { fmt.Println("clicked") })
//	scene.Root().Add(button)
//	arbor.Run(scene, arbor.RunConfig{Title: "demo", Width: 640, Height: 480})
//
// For full control, implement [ebiten.Game] yourself and call
// [Scene.Update] and [Scene.Draw] directly.
//
// # Depth
//
// Every [Node] carries an integer depth within its owning [Layer]. Higher
// depths draw later and are hit first; equal depths fall back to insertion
// order. [Layer.BringToFront], [Layer.SendToBack], [Layer.BringForward] and
// [Layer.SendBackward] reorder without touching unrelated nodes, and depths
// are renormalized to 0, 10, 20, ... whenever they drift too far, so
// reordering can be repeated forever.
//
// # Dispatch
//
// A [Dispatcher] subscribes to one [PointerSource]. Down, up and click go
// to the topmost interactive node under the pointer; containers try their
// children before themselves. Move events run a hover sweep that enters
// the topmost hit node and leaves every other hovered node, including nodes
// occluded by it and children a [Viewport] has scrolled out of view.
// [Scene] repeats the sweep at the end of each frame with
// [Dispatcher.RefreshHover], so hover follows nodes that move under a
// still pointer.
//
// Custom nodes embed [NodeBase], initialize it with [NodeBase.Init], and
// override HitTest:
//
//	type Dial struct{ arbor.NodeBase }
//
//	func NewDial() *Dial {
//		d := &Dial{}
//		d.Init("dial")
//		d.Interactive = true
//		return d
//	}
//
//	func (d *Dial) HitTest(x, y float64) bool { return x*x+y*y <= 900 }
//
// Structural misuse (double add, removing a node that is not a member)
// is logged through log/slog and otherwise ignored.
//
// [Ebitengine]: https://ebitengine.org
package arbor
