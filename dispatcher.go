package arbor

import (
	"log/slog"
	"time"
)

// EntityStore is the interface for optional ECS integration.
// When set on a Dispatcher, delivered events are forwarded to the ECS.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent carries interaction data for the ECS bridge.
type InteractionEvent struct {
	Type      EventType
	EntityID  uint32
	GlobalX   float64
	GlobalY   float64
	LocalX    float64
	LocalY    float64
	Button    MouseButton
	Modifiers KeyModifiers
}

// Dispatcher routes pointer events into a tree rooted at one Layer.
//
// Discrete events (down, up, click) go to exactly one node: the topmost
// interactive node that hit-tests true, searching nested containers before
// the container itself. Move events recompute hover state for the whole
// tree in one top-down sweep. RefreshHover repeats the sweep at the last
// known pointer position after the tree moves under a still pointer.
//
// The Dispatcher never changes depth or structure; it only writes the
// hovered flag. Handlers may mutate the tree while an event is dispatched.
type Dispatcher struct {
	root     *Layer
	handlers handlerRegistry
	store    EntityStore
	logger   *slog.Logger
	debug    bool

	// stack holds per-level snapshots of sorted children for the walk in
	// progress. Levels push and pop in strict nesting order.
	stack  []Node
	leaves []Node

	// Last pointer position seen by a hover sweep.
	pointerX, pointerY float64
	hasPointer         bool

	unsubscribe func()
	stats       dispatchStats
}

// NewDispatcher creates a dispatcher for the tree rooted at root.
func NewDispatcher(root *Layer) *Dispatcher {
	if root == nil {
		root = NewLayer()
	}
	return &Dispatcher{root: root}
}

// Root returns the top-level layer.
func (d *Dispatcher) Root() *Layer {
	return d.root
}

// SetLogger sets the logger for the dispatcher and the whole tree.
func (d *Dispatcher) SetLogger(logger *slog.Logger) {
	d.logger = logger
	d.root.SetLogger(logger)
}

// SetDebugMode enables per-dispatch stats logging at debug level and the
// tree checks on every layer.
func (d *Dispatcher) SetDebugMode(enabled bool) {
	d.debug = enabled
	d.root.SetDebug(enabled)
}

// SetEntityStore sets the optional ECS bridge.
func (d *Dispatcher) SetEntityStore(store EntityStore) {
	d.store = store
}

func (d *Dispatcher) log() *slog.Logger {
	if d.logger != nil {
		return d.logger
	}
	return slog.Default()
}

// On registers a dispatcher-level handler. It fires for every delivered
// event of type t, before the target node's own handlers. For discrete
// events that hit nothing it fires with a nil Node.
func (d *Dispatcher) On(t EventType, fn Handler) CallbackHandle {
	return d.handlers.add(t, fn)
}

// Attach subscribes the dispatcher to src, replacing any previous source.
func (d *Dispatcher) Attach(src PointerSource) {
	d.Detach()
	if src == nil {
		return
	}
	d.unsubscribe = src.Subscribe(func(evt PointerEvent) {
		d.Dispatch(evt)
	})
}

// Detach unsubscribes from the current source, if any.
func (d *Dispatcher) Detach() {
	if d.unsubscribe != nil {
		d.unsubscribe()
		d.unsubscribe = nil
	}
}

// Dispatch routes one raw pointer event. Down, up and click are delivered
// to at most one node; move updates hover. It returns the node that
// consumed the event, or nil.
func (d *Dispatcher) Dispatch(evt PointerEvent) Node {
	switch {
	case evt.Type.IsDiscrete():
		return d.dispatchDiscrete(evt)
	case evt.Type == EventPointerMove:
		return d.dispatchHover(evt)
	default:
		d.log().Warn("arbor: ignoring non-pointer event", slog.String("type", evt.Type.String()))
		return nil
	}
}

// DispatchDiscrete delivers a down, up or click at (x, y) to the topmost
// hit node and returns it, or nil if nothing was hit.
func (d *Dispatcher) DispatchDiscrete(t EventType, x, y float64) Node {
	if !t.IsDiscrete() {
		d.log().Warn("arbor: not a discrete event", slog.String("type", t.String()))
		return nil
	}
	return d.dispatchDiscrete(PointerEvent{Type: t, X: x, Y: y})
}

// DispatchHover recomputes hover state for a pointer at (x, y) and returns
// the hovered node, or nil.
func (d *Dispatcher) DispatchHover(x, y float64) Node {
	return d.dispatchHover(PointerEvent{Type: EventPointerMove, X: x, Y: y})
}

func (d *Dispatcher) dispatchDiscrete(evt PointerEvent) Node {
	var t0 time.Time
	if d.debug {
		t0 = time.Now()
		d.stats = dispatchStats{event: evt.Type}
	}

	hit, lx, ly := d.pick(d.root, evt.X, evt.Y)
	d.deliver(evt.Type, hit, evt, lx, ly)

	if d.debug {
		d.stats.elapsed = time.Since(t0)
		d.stats.target = hit
		d.debugLog()
	}
	return hit
}

// pick finds the topmost interactive node under (x, y) within l, where the
// point is in l's coordinate space. It returns the node and the point in
// that node's local space.
func (d *Dispatcher) pick(l *Layer, x, y float64) (Node, float64, float64) {
	start := len(d.stack)
	d.stack = append(d.stack, l.Sorted()...)
	snap := d.stack[start:]
	filter := reachabilityOf(l)

	for i := len(snap) - 1; i >= 0; i-- {
		n := snap[i]
		b := n.base()
		if b.owner != l || !b.Visible {
			continue
		}
		d.stats.visited++
		if filter != nil && !filter.IsChildReachable(n) {
			continue
		}
		lx, ly, ok := toLocal(b, x, y)
		if !ok {
			continue
		}
		if c, isContainer := n.(Container); isContainer {
			if cx, cy, inside := childSpace(n, lx, ly); inside {
				if hit, hx, hy := d.pick(c.Children(), cx, cy); hit != nil {
					d.pop(start)
					return hit, hx, hy
				}
			}
		}
		if b.Interactive && n.HitTest(lx, ly) {
			d.pop(start)
			return n, lx, ly
		}
	}
	d.pop(start)
	return nil, 0, 0
}

// pop discards the snapshot level starting at start.
func (d *Dispatcher) pop(start int) {
	clear(d.stack[start:])
	d.stack = d.stack[:start]
}

// hoverResult accumulates the outcome of one hover sweep.
type hoverResult struct {
	winner Node
	lx, ly float64
}

func (d *Dispatcher) dispatchHover(evt PointerEvent) Node {
	d.pointerX, d.pointerY = evt.X, evt.Y
	d.hasPointer = true
	return d.hover(evt, true)
}

// RefreshHover re-runs the hover sweep at the last pointer position without
// delivering a move. Nodes that scrolled, moved or were culled out from under
// the pointer get their leave, and the node now beneath it gets its enter.
// It returns the hovered node, or nil. Before any move it does nothing.
func (d *Dispatcher) RefreshHover() Node {
	if !d.hasPointer {
		return nil
	}
	return d.hover(PointerEvent{Type: EventPointerMove, X: d.pointerX, Y: d.pointerY}, false)
}

// hover sweeps the tree for a pointer at evt and emits leave and enter
// transitions. When move is set the winner (or the dispatcher, on a miss)
// also receives evt as a pointer-move.
func (d *Dispatcher) hover(evt PointerEvent, move bool) Node {
	var t0 time.Time
	if d.debug {
		t0 = time.Now()
		d.stats = dispatchStats{event: evt.Type}
	}

	var res hoverResult
	d.sweepHover(d.root, evt.X, evt.Y, true, &res)

	// Leaves go out before the enter so handlers observe exit-then-enter.
	leaves := d.leaves
	d.leaves = nil
	for _, n := range leaves {
		d.deliver(EventPointerLeave, n, evt, 0, 0)
	}
	clear(leaves)
	d.leaves = leaves[:0]
	d.stats.transitions += len(leaves)

	winner := res.winner
	if winner != nil && !d.attached(winner) {
		// A leave handler detached the winner.
		winner = nil
	}
	if winner != nil {
		b := winner.base()
		if !b.hovered {
			b.hovered = true
			d.stats.transitions++
			d.deliver(EventPointerEnter, winner, evt, res.lx, res.ly)
		}
	}
	if winner != nil && !d.attached(winner) {
		winner = nil
	}
	if move {
		if winner != nil {
			d.deliver(EventPointerMove, winner, evt, res.lx, res.ly)
		} else {
			d.deliver(EventPointerMove, nil, evt, 0, 0)
		}
	}

	if d.debug && (move || d.stats.transitions > 0) {
		d.stats.elapsed = time.Since(t0)
		d.stats.target = winner
		d.debugLog()
	}
	return winner
}

// sweepHover visits every node under l topmost-first. The first reachable,
// interactive node hit at (x, y) becomes the winner; every other hovered
// node is unhovered and queued on d.leaves. reachable is false below a
// culled or hidden ancestor, which unhovers the whole subtree.
func (d *Dispatcher) sweepHover(l *Layer, x, y float64, reachable bool, res *hoverResult) {
	start := len(d.stack)
	d.stack = append(d.stack, l.Sorted()...)
	snap := d.stack[start:]
	filter := reachabilityOf(l)

	for i := len(snap) - 1; i >= 0; i-- {
		n := snap[i]
		b := n.base()
		if b.owner != l {
			continue
		}
		d.stats.visited++
		reach := reachable && b.Visible
		if reach && filter != nil && !filter.IsChildReachable(n) {
			reach = false
		}
		lx, ly, ok := toLocal(b, x, y)
		if !ok {
			reach = false
		}
		if c, isContainer := n.(Container); isContainer {
			cx, cy, inside := childSpace(n, lx, ly)
			d.sweepHover(c.Children(), cx, cy, reach && inside, res)
		}
		if reach && res.winner == nil && b.Interactive && n.HitTest(lx, ly) {
			res.winner = n
			res.lx, res.ly = lx, ly
			continue
		}
		if b.hovered {
			b.hovered = false
			d.leaves = append(d.leaves, n)
		}
	}
	d.pop(start)
}

// HoveredNode returns the node currently marked hovered, or nil.
func (d *Dispatcher) HoveredNode() Node {
	return findHovered(d.root)
}

func findHovered(l *Layer) Node {
	for _, n := range l.children {
		if n.base().hovered {
			return n
		}
		if c, ok := n.(Container); ok {
			if h := findHovered(c.Children()); h != nil {
				return h
			}
		}
	}
	return nil
}

// attached reports whether n is still reachable from the root by ownership.
func (d *Dispatcher) attached(n Node) bool {
	for {
		owner := n.base().owner
		if owner == nil {
			return false
		}
		if owner == d.root {
			return true
		}
		if owner.container == nil {
			return false
		}
		n = owner.container
	}
}

// childSpace maps a point in container n's local space into the space of
// its children. inside is false when n clips the point away.
func childSpace(n Node, lx, ly float64) (cx, cy float64, inside bool) {
	if c, ok := n.(Clipper); ok && !c.ClipContains(lx, ly) {
		return lx, ly, false
	}
	if m, ok := n.(ContentMapper); ok {
		cx, cy = m.ToContent(lx, ly)
		return cx, cy, true
	}
	return lx, ly, true
}

func reachabilityOf(l *Layer) ReachabilityFilter {
	if l.container == nil {
		return nil
	}
	f, _ := l.container.(ReachabilityFilter)
	return f
}

// deliver fires dispatcher-level handlers, then the node's own handlers,
// then the ECS bridge.
func (d *Dispatcher) deliver(t EventType, n Node, pe PointerEvent, lx, ly float64) {
	evt := Event{
		Type:      t,
		Node:      n,
		GlobalX:   pe.X,
		GlobalY:   pe.Y,
		LocalX:    lx,
		LocalY:    ly,
		Button:    pe.Button,
		Modifiers: pe.Modifiers,
	}
	if n != nil {
		b := n.base()
		evt.EntityID = b.EntityID
		evt.UserData = b.UserData
	}
	d.handlers.fire(evt)
	if n != nil {
		n.Emit(evt)
	}
	d.emitInteractionEvent(evt)
}

func (d *Dispatcher) emitInteractionEvent(evt Event) {
	if d.store == nil || evt.Node == nil || evt.EntityID == 0 {
		return
	}
	d.store.EmitEvent(InteractionEvent{
		Type:      evt.Type,
		EntityID:  evt.EntityID,
		GlobalX:   evt.GlobalX,
		GlobalY:   evt.GlobalY,
		LocalX:    evt.LocalX,
		LocalY:    evt.LocalY,
		Button:    evt.Button,
		Modifiers: evt.Modifiers,
	})
}
