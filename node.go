package arbor

import "github.com/hajimehoshi/ebiten/v2"

// Node is anything that can live in a Layer. Implementations embed NodeBase,
// which supplies the bookkeeping the engine needs; custom leaves usually
// override HitTest and sometimes Emit.
type Node interface {
	// HitTest reports whether the point, in the node's local coordinates,
	// lies inside the node. Nodes without geometry report false.
	HitTest(x, y float64) bool
	// Emit delivers an event to the node's handlers.
	Emit(evt Event)

	base() *NodeBase
}

// Container is a Node that owns a depth-ordered set of children. The
// Dispatcher recurses into containers before testing the container itself.
type Container interface {
	Node
	Children() *Layer
}

// ReachabilityFilter is implemented by containers that hide some children
// from hit testing without removing them, e.g. a scrolled viewport.
type ReachabilityFilter interface {
	IsChildReachable(child Node) bool
}

// Bounder is implemented by nodes that know their local-space bounds.
type Bounder interface {
	Bounds() Rect
}

// Updater is implemented by nodes that advance per frame.
type Updater interface {
	Update(dt float64)
}

// Drawer is implemented by nodes that render themselves. geo maps the node's
// local space to the destination image.
type Drawer interface {
	Draw(dst *ebiten.Image, geo ebiten.GeoM)
}

// nodeIDCounter is a plain counter (no atomic, arbor is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// NodeBase holds the state shared by every node. Embed it to build custom
// node types.
type NodeBase struct {
	// Identity
	ID   uint32
	Name string

	// Transform (local, relative to the owning container)
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
	PivotX   float64
	PivotY   float64

	// Visibility & interaction
	Visible     bool
	Interactive bool

	// HitShape is consulted by the default HitTest. Nil means never hit.
	HitShape HitShape

	// Metadata
	UserData any
	EntityID uint32

	depth    int
	hasDepth bool
	owner    *Layer
	hovered  bool
	disposed bool
	handlers handlerRegistry
}

func (b *NodeBase) base() *NodeBase { return b }

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(b *NodeBase, name string) {
	b.ID = nextNodeID()
	b.Name = name
	b.ScaleX = 1
	b.ScaleY = 1
	b.Visible = true
}

// Init assigns an ID and the default transform and visibility. Custom node
// types embedding NodeBase call it from their constructor.
func (b *NodeBase) Init(name string) {
	nodeDefaults(b, name)
}

// HitTest tests the point against HitShape.
func (b *NodeBase) HitTest(x, y float64) bool {
	if b.HitShape == nil {
		return false
	}
	return b.HitShape.Contains(x, y)
}

// Emit calls the handlers registered for evt.Type.
func (b *NodeBase) Emit(evt Event) {
	b.handlers.fire(evt)
}

// On registers a handler for events of type t delivered to this node.
func (b *NodeBase) On(t EventType, fn Handler) CallbackHandle {
	return b.handlers.add(t, fn)
}

// OnClick is shorthand for On(EventClick, fn).
func (b *NodeBase) OnClick(fn Handler) CallbackHandle {
	return b.handlers.add(EventClick, fn)
}

// OnPointerDown is shorthand for On(EventPointerDown, fn).
func (b *NodeBase) OnPointerDown(fn Handler) CallbackHandle {
	return b.handlers.add(EventPointerDown, fn)
}

// OnPointerUp is shorthand for On(EventPointerUp, fn).
func (b *NodeBase) OnPointerUp(fn Handler) CallbackHandle {
	return b.handlers.add(EventPointerUp, fn)
}

// OnHover registers enter and leave handlers in one call. Either may be nil.
func (b *NodeBase) OnHover(enter, leave Handler) {
	if enter != nil {
		b.handlers.add(EventPointerEnter, enter)
	}
	if leave != nil {
		b.handlers.add(EventPointerLeave, leave)
	}
}

// Depth returns the node's ordering key within its owner.
func (b *NodeBase) Depth() int {
	return b.depth
}

// SetDepth sets the ordering key explicitly and marks the owner unsorted.
func (b *NodeBase) SetDepth(z int) {
	b.hasDepth = true
	if b.depth == z {
		return
	}
	b.depth = z
	if b.owner != nil {
		b.owner.dirty = true
	}
}

// Hovered reports whether the node is the current hover winner.
// Only the Dispatcher sets this.
func (b *NodeBase) Hovered() bool {
	return b.hovered
}

// Owner returns the Layer holding this node, or nil.
func (b *NodeBase) Owner() *Layer {
	return b.owner
}

// SetPosition sets the node's local X and Y.
func (b *NodeBase) SetPosition(x, y float64) {
	b.X = x
	b.Y = y
}

// RemoveFromParent detaches this node from its owner.
// No-op if this node has no owner.
func (b *NodeBase) RemoveFromParent() {
	if b.owner == nil {
		return
	}
	b.owner.removeBase(b)
}

// IsDisposed returns true if this node has been disposed.
func (b *NodeBase) IsDisposed() bool {
	return b.disposed
}

// Dispose detaches the node and drops its handlers. Containers dispose their
// children as well; see Group.Dispose.
func (b *NodeBase) Dispose() {
	if b.disposed {
		return
	}
	b.RemoveFromParent()
	b.dispose()
}

func (b *NodeBase) dispose() {
	b.disposed = true
	b.ID = 0
	b.HitShape = nil
	b.UserData = nil
	b.handlers.reset()
}

// --- Shape ---

// Shape is the stock leaf: a hit shape with an optional solid fill.
type Shape struct {
	NodeBase

	// Color fills the shape's bounds when drawn. A zero alpha skips drawing.
	Color Color
}

// NewShape creates an interactive leaf with the given hit region.
func NewShape(name string, hit HitShape) *Shape {
	s := &Shape{Color: ColorWhite}
	nodeDefaults(&s.NodeBase, name)
	s.HitShape = hit
	s.Interactive = true
	return s
}

// NewRect is shorthand for a Shape with a HitRect at the origin.
func NewRect(name string, w, h float64) *Shape {
	return NewShape(name, HitRect{Width: w, Height: h})
}

// Bounds returns the local bounds of the hit shape.
func (s *Shape) Bounds() Rect {
	if s.HitShape == nil {
		return Rect{}
	}
	r, _ := shapeBounds(s.HitShape)
	return r
}

// Draw fills the shape's bounds using a scaled white pixel.
func (s *Shape) Draw(dst *ebiten.Image, geo ebiten.GeoM) {
	if s.Color.A <= 0 {
		return
	}
	r := s.Bounds()
	if r.Width <= 0 || r.Height <= 0 {
		return
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(r.Width, r.Height)
	op.GeoM.Translate(r.X, r.Y)
	op.GeoM.Concat(geo)
	op.ColorScale.Scale(float32(s.Color.R), float32(s.Color.G), float32(s.Color.B), 1)
	op.ColorScale.ScaleAlpha(float32(s.Color.A))
	dst.DrawImage(whitePixel(), &op)
}

var whitePixelImage *ebiten.Image

// whitePixel lazily allocates the 1x1 image used for solid fills.
func whitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(ColorWhite.toRGBA())
	}
	return whitePixelImage
}

// --- Group ---

// Group is a container node. It is not interactive by default; give it a
// HitShape and set Interactive to make the panel itself clickable.
type Group struct {
	NodeBase
	children Layer
}

// NewGroup creates an empty container.
func NewGroup(name string) *Group {
	g := &Group{}
	g.InitGroup(name, g)
	return g
}

// InitGroup initializes a Group embedded in a custom container type. self
// must be the outer value so the dispatcher finds its ReachabilityFilter,
// Clipper and ContentMapper methods.
func (g *Group) InitGroup(name string, self Container) {
	nodeDefaults(&g.NodeBase, name)
	g.children.container = self
}

// Children returns the group's depth-ordered collection.
func (g *Group) Children() *Layer {
	return &g.children
}

// Add is shorthand for Children().Add for each node.
func (g *Group) Add(nodes ...Node) {
	for _, n := range nodes {
		g.children.Add(n)
	}
}

// Remove is shorthand for Children().Remove.
func (g *Group) Remove(n Node) bool {
	return g.children.Remove(n)
}

// Dispose detaches the group and recursively disposes all descendants.
func (g *Group) Dispose() {
	if g.disposed {
		return
	}
	g.RemoveFromParent()
	disposeTree(g)
}

func disposeTree(n Node) {
	if c, ok := n.(Container); ok {
		layer := c.Children()
		for _, child := range layer.children {
			child.base().owner = nil
			child.base().hovered = false
			disposeTree(child)
		}
		layer.children = nil
		layer.sorted = nil
	}
	n.base().dispose()
}

// --- Helpers ---

// isAncestor reports whether candidate is node itself or one of its owners.
func isAncestor(candidate Node, node Node) bool {
	for p := node; p != nil; {
		if p == candidate {
			return true
		}
		owner := p.base().owner
		if owner == nil || owner.container == nil {
			return false
		}
		p = owner.container
	}
	return false
}

// nodeBounds returns n's bounds in its own local space. Containers without a
// hit shape report the union of their visible children.
func nodeBounds(n Node) (Rect, bool) {
	if b, ok := n.(Bounder); ok {
		return b.Bounds(), true
	}
	if hs := n.base().HitShape; hs != nil {
		if r, ok := shapeBounds(hs); ok {
			return r, true
		}
	}
	c, ok := n.(Container)
	if !ok {
		return Rect{}, false
	}
	var out Rect
	found := false
	for _, child := range c.Children().children {
		if !child.base().Visible {
			continue
		}
		r, ok := nodeBounds(child)
		if !ok {
			continue
		}
		r = transformRect(computeLocalTransform(child.base()), r)
		if !found {
			out = r
			found = true
			continue
		}
		out = unionRect(out, r)
	}
	return out, found
}

func unionRect(a, b Rect) Rect {
	minX := min(a.X, b.X)
	minY := min(a.Y, b.Y)
	maxX := max(a.X+a.Width, b.X+b.Width)
	maxY := max(a.Y+a.Height, b.Y+b.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
