package arbor

import (
	"log/slog"
	"math"
)

const (
	// depthStep is the spacing between depths after renormalization.
	depthStep = 10

	// depthGap is how far BringToFront/SendToBack jump past the current
	// extreme, leaving room for later midpoint insertions.
	depthGap = 1 << 16

	// renormalizeThreshold bounds depth magnitudes. Crossing it triggers a
	// renormalization that collapses every depth back to 0, 10, 20, ...
	renormalizeThreshold = math.MaxInt / 4
)

// Layer is a depth-ordered collection of nodes. Children are kept in
// insertion order; the sorted view is rebuilt lazily on read, ordered by
// ascending depth with insertion order breaking ties.
//
// A node belongs to at most one Layer. Misuse (double add, removing or
// reordering a node the layer does not own) is logged and ignored.
type Layer struct {
	container Container
	children  []Node
	sorted    []Node
	dirty     bool
	logger    *slog.Logger
	debug     bool
}

// NewLayer creates a standalone layer with no owning container.
func NewLayer() *Layer {
	return &Layer{}
}

// Container returns the node owning this layer, or nil for a standalone layer.
func (l *Layer) Container() Container {
	return l.container
}

// SetLogger sets the logger used for warnings on this layer and every
// nested container layer.
func (l *Layer) SetLogger(logger *slog.Logger) {
	l.logger = logger
	for _, c := range l.children {
		if sub, ok := c.(Container); ok {
			sub.Children().SetLogger(logger)
		}
	}
}

// SetDebug enables tree depth and child count checks on this layer and
// every nested container layer.
func (l *Layer) SetDebug(enabled bool) {
	l.debug = enabled
	for _, c := range l.children {
		if sub, ok := c.(Container); ok {
			sub.Children().SetDebug(enabled)
		}
	}
}

func (l *Layer) log() *slog.Logger {
	if l.logger != nil {
		return l.logger
	}
	return slog.Default()
}

func (l *Layer) warn(op string, n Node, msg string) {
	name := "<nil>"
	if n != nil {
		name = n.base().Name
	}
	l.log().Warn("arbor: "+msg, slog.String("op", op), slog.String("node", name))
}

// Len returns the number of children.
func (l *Layer) Len() int {
	return len(l.children)
}

// Nodes returns the children in insertion order. The returned slice MUST NOT
// be mutated by the caller.
func (l *Layer) Nodes() []Node {
	return l.children
}

// Contains reports whether n is a direct child of this layer.
func (l *Layer) Contains(n Node) bool {
	return n != nil && n.base().owner == l
}

// Add inserts n. A node already in this layer is left alone; a node owned
// by another layer is moved here. A node without an explicit depth gets the
// current child count, or max+1 when reordering has pushed an existing depth
// to or past that count, so it always lands on top.
func (l *Layer) Add(n Node) {
	if n == nil {
		l.warn("add", nil, "cannot add nil node")
		return
	}
	b := n.base()
	if b.owner == l {
		l.warn("add", n, "node is already a member")
		return
	}
	if b.disposed {
		l.warn("add", n, "cannot add disposed node")
		return
	}
	if l.container != nil && isAncestor(n, l.container) {
		l.warn("add", n, "adding node would create a cycle")
		return
	}
	if b.owner != nil {
		b.owner.removeBase(b)
	}
	if !b.hasDepth {
		b.depth = l.nextDepth()
	}
	b.owner = l
	l.children = append(l.children, n)
	l.dirty = true

	if sub, ok := n.(Container); ok {
		inner := sub.Children()
		if inner.logger == nil {
			inner.logger = l.logger
		}
		inner.debug = inner.debug || l.debug
	}
	if l.debug {
		debugCheckTreeDepth(l, n)
		debugCheckChildCount(l)
	}
}

// nextDepth returns the depth for a newly added node: the current child
// count, raised above the maximum when reordering has spread depths out.
func (l *Layer) nextDepth() int {
	d := len(l.children)
	if d == 0 {
		return 0
	}
	sorted := l.Sorted()
	top := sorted[len(sorted)-1].base().depth
	if top == math.MaxInt {
		l.Renormalize()
		top = sorted[len(sorted)-1].base().depth
	}
	if top >= d {
		d = top + 1
	}
	return d
}

// Remove detaches n and reports whether it was a member. Any hover state held
// by n or its descendants is cleared, emitting one pointer-leave per node.
func (l *Layer) Remove(n Node) bool {
	if n == nil {
		l.warn("remove", nil, "cannot remove nil node")
		return false
	}
	if n.base().owner != l {
		l.warn("remove", n, "node is not a member")
		return false
	}
	l.removeBase(n.base())
	return true
}

// removeBase removes the child whose base is b.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (l *Layer) removeBase(b *NodeBase) {
	for i, c := range l.children {
		if c.base() != b {
			continue
		}
		copy(l.children[i:], l.children[i+1:])
		l.children[len(l.children)-1] = nil
		l.children = l.children[:len(l.children)-1]
		b.owner = nil
		l.dirty = true
		clearHover(c)
		return
	}
}

// Clear removes every child.
func (l *Layer) Clear() {
	old := l.children
	l.children = nil
	clear(l.sorted)
	l.sorted = l.sorted[:0]
	l.dirty = false
	for _, c := range old {
		c.base().owner = nil
	}
	for _, c := range old {
		clearHover(c)
	}
}

// clearHover unhovers n and its descendants, emitting a pointer-leave for
// each node that was hovered.
func clearHover(n Node) {
	b := n.base()
	if b.hovered {
		b.hovered = false
		n.Emit(Event{Type: EventPointerLeave, Node: n, EntityID: b.EntityID, UserData: b.UserData})
	}
	if c, ok := n.(Container); ok {
		for _, child := range c.Children().children {
			clearHover(child)
		}
	}
}

// Sorted returns the children ordered by ascending depth, ties in insertion
// order. The sort runs only when something changed since the last read. The
// returned slice is reused by the layer and MUST NOT be mutated or retained
// across mutations.
func (l *Layer) Sorted() []Node {
	if !l.dirty && len(l.sorted) == len(l.children) {
		return l.sorted
	}
	l.sorted = append(l.sorted[:0], l.children...)
	// Stable insertion sort by depth; orders are usually nearly sorted.
	for i := 1; i < len(l.sorted); i++ {
		key := l.sorted[i]
		kd := key.base().depth
		j := i - 1
		for j >= 0 && l.sorted[j].base().depth > kd {
			l.sorted[j+1] = l.sorted[j]
			j--
		}
		l.sorted[j+1] = key
	}
	l.dirty = false
	return l.sorted
}

// Index returns n's position in the sorted order, or -1.
func (l *Layer) Index(n Node) int {
	if !l.Contains(n) {
		return -1
	}
	for i, c := range l.Sorted() {
		if c == n {
			return i
		}
	}
	return -1
}

// Front returns the topmost child, or nil if empty.
func (l *Layer) Front() Node {
	sorted := l.Sorted()
	if len(sorted) == 0 {
		return nil
	}
	return sorted[len(sorted)-1]
}

// Back returns the bottommost child, or nil if empty.
func (l *Layer) Back() Node {
	sorted := l.Sorted()
	if len(sorted) == 0 {
		return nil
	}
	return sorted[0]
}

// BringToFront moves n above every other child. No-op if n is already
// strictly frontmost.
func (l *Layer) BringToFront(n Node) {
	i := l.reorderIndex("bringToFront", n)
	if i < 0 {
		return
	}
	sorted := l.sorted
	last := len(sorted) - 1
	if i == last && (last == 0 || sorted[last-1].base().depth < n.base().depth) {
		return
	}
	top := sorted[last].base().depth
	if top > math.MaxInt-depthGap {
		l.Renormalize()
		top = sorted[last].base().depth
	}
	n.base().depth = top + depthGap
	l.dirty = true
	l.renormalizeIfNeeded()
}

// SendToBack moves n below every other child. No-op if n is already
// strictly backmost.
func (l *Layer) SendToBack(n Node) {
	i := l.reorderIndex("sendToBack", n)
	if i < 0 {
		return
	}
	sorted := l.sorted
	if i == 0 && (len(sorted) == 1 || sorted[1].base().depth > n.base().depth) {
		return
	}
	bottom := sorted[0].base().depth
	if bottom < math.MinInt+depthGap {
		l.Renormalize()
		bottom = sorted[0].base().depth
	}
	n.base().depth = bottom - depthGap
	l.dirty = true
	l.renormalizeIfNeeded()
}

// BringForward moves n exactly one position up in the sorted order.
// No-op if n is already frontmost.
func (l *Layer) BringForward(n Node) {
	i := l.reorderIndex("bringForward", n)
	if i < 0 || i == len(l.sorted)-1 {
		return
	}
	l.prepareWindow(i-1, i+2)
	sorted := l.sorted
	b := n.base()
	next := sorted[i+1].base()
	if i+2 < len(sorted) {
		beyond := sorted[i+2].base().depth
		if beyond-next.depth >= 2 {
			b.depth = next.depth + (beyond-next.depth)/2
		} else {
			b.depth, next.depth = next.depth, b.depth
		}
	} else {
		if next.depth > math.MaxInt-depthStep {
			l.Renormalize()
		}
		b.depth = next.depth + depthStep
	}
	l.dirty = true
	l.renormalizeIfNeeded()
}

// SendBackward moves n exactly one position down in the sorted order.
// No-op if n is already backmost.
func (l *Layer) SendBackward(n Node) {
	i := l.reorderIndex("sendBackward", n)
	if i <= 0 {
		return
	}
	l.prepareWindow(i-2, i+1)
	sorted := l.sorted
	b := n.base()
	prev := sorted[i-1].base()
	if i-2 >= 0 {
		beyond := sorted[i-2].base().depth
		if prev.depth-beyond >= 2 {
			b.depth = beyond + (prev.depth-beyond)/2
		} else {
			b.depth, prev.depth = prev.depth, b.depth
		}
	} else {
		if prev.depth < math.MinInt+depthStep {
			l.Renormalize()
		}
		b.depth = prev.depth - depthStep
	}
	l.dirty = true
	l.renormalizeIfNeeded()
}

// reorderIndex validates membership for a reorder op and returns n's sorted
// index, or -1 after logging.
func (l *Layer) reorderIndex(op string, n Node) int {
	if n == nil {
		l.warn(op, nil, "cannot reorder nil node")
		return -1
	}
	if n.base().owner != l {
		l.warn(op, n, "node is not a member")
		return -1
	}
	for i, c := range l.Sorted() {
		if c == n {
			return i
		}
	}
	return -1
}

// prepareWindow renormalizes when the sorted entries in [from, to] are not
// strictly increasing or sit beyond the threshold, so a single-step move
// never reorders anything but the node and its neighbor.
func (l *Layer) prepareWindow(from, to int) {
	from = max(from, 0)
	to = min(to, len(l.sorted)-1)
	for k := from; k <= to; k++ {
		d := l.sorted[k].base().depth
		if d > renormalizeThreshold || d < -renormalizeThreshold {
			l.Renormalize()
			return
		}
		if k > from && l.sorted[k-1].base().depth >= d {
			l.Renormalize()
			return
		}
	}
}

func (l *Layer) renormalizeIfNeeded() {
	sorted := l.Sorted()
	if len(sorted) == 0 {
		return
	}
	if sorted[0].base().depth < -renormalizeThreshold ||
		sorted[len(sorted)-1].base().depth > renormalizeThreshold {
		l.Renormalize()
	}
}

// Renormalize reassigns depths 0, 10, 20, ... in the current sorted order.
// Relative order, including tie order, is preserved exactly.
func (l *Layer) Renormalize() {
	sorted := l.Sorted()
	for i, c := range sorted {
		c.base().depth = i * depthStep
	}
	if l.debug {
		l.log().Debug("arbor: renormalized layer", slog.Int("children", len(sorted)))
	}
}
