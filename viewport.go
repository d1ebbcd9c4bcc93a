package arbor

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ContentMapper is implemented by containers whose children live in a
// space offset from the container's own, e.g. a scrolled viewport. It maps a
// point from the container's local space into its children's space.
type ContentMapper interface {
	ToContent(x, y float64) (float64, float64)
}

// Clipper is implemented by containers that only show children inside a
// region of their local space. Points outside the region never reach the
// children.
type Clipper interface {
	ClipContains(x, y float64) bool
}

// scrollAnim holds active scroll-to tweens for X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Viewport is a clipped, scrollable container. Children are laid out in
// content space; the viewport shows the part of content space starting at
// (ScrollX, ScrollY) through its Clip rectangle. Children entirely outside
// the visible region are unreachable: they are never hit and lose hover.
type Viewport struct {
	Group

	// Clip is the visible region in the viewport's local space.
	Clip Rect
	// ScrollX and ScrollY offset content space from local space.
	ScrollX, ScrollY float64

	scrollTween *scrollAnim
}

// NewViewport creates a viewport showing a w×h window at the origin. The
// viewport's own area is its clip rectangle; set Interactive to let it
// consume events that miss every child.
func NewViewport(name string, w, h float64) *Viewport {
	v := &Viewport{Clip: Rect{Width: w, Height: h}}
	v.InitGroup(name, v)
	v.HitShape = HitRect{Width: w, Height: h}
	return v
}

// Bounds returns the clip rectangle, so ancestors see the viewport as its
// visible window rather than its full content.
func (v *Viewport) Bounds() Rect {
	return v.Clip
}

// ToContent implements ContentMapper.
func (v *Viewport) ToContent(x, y float64) (float64, float64) {
	return x + v.ScrollX, y + v.ScrollY
}

// ClipContains implements Clipper.
func (v *Viewport) ClipContains(x, y float64) bool {
	return v.Clip.Contains(x, y)
}

// IsChildReachable reports whether any part of child is inside the visible
// region. Children that report no bounds are always reachable.
func (v *Viewport) IsChildReachable(child Node) bool {
	r, ok := nodeBounds(child)
	if !ok {
		return true
	}
	r = transformRect(computeLocalTransform(child.base()), r)
	return r.Translate(-v.ScrollX, -v.ScrollY).Intersects(v.Clip)
}

// ContentBounds returns the union of every visible child's bounds in
// content space.
func (v *Viewport) ContentBounds() Rect {
	var out Rect
	found := false
	for _, child := range v.children.children {
		if !child.base().Visible {
			continue
		}
		r, ok := nodeBounds(child)
		if !ok {
			continue
		}
		r = transformRect(computeLocalTransform(child.base()), r)
		if !found {
			out, found = r, true
			continue
		}
		out = unionRect(out, r)
	}
	return out
}

// ScrollBy moves the scroll offset by (dx, dy), clamped so the visible
// region stays within the content bounds.
func (v *Viewport) ScrollBy(dx, dy float64) {
	v.scrollTween = nil
	v.ScrollX += dx
	v.ScrollY += dy
	v.clampScroll()
}

// ScrollTo animates the scroll offset to (x, y) over duration seconds.
func (v *Viewport) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	v.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(v.ScrollX), float32(x), duration, easeFn),
		tweenY: gween.New(float32(v.ScrollY), float32(y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (v *Viewport) Scrolling() bool {
	return v.scrollTween != nil
}

// Update advances an active ScrollTo animation by dt seconds.
func (v *Viewport) Update(dt float64) {
	st := v.scrollTween
	if st == nil {
		return
	}
	if !st.doneX {
		val, done := st.tweenX.Update(float32(dt))
		v.ScrollX = float64(val)
		st.doneX = done
	}
	if !st.doneY {
		val, done := st.tweenY.Update(float32(dt))
		v.ScrollY = float64(val)
		st.doneY = done
	}
	if st.doneX && st.doneY {
		v.scrollTween = nil
	}
}

func (v *Viewport) clampScroll() {
	content := v.ContentBounds()
	lowX := min(content.X, 0)
	lowY := min(content.Y, 0)
	highX := max(content.X+content.Width-v.Clip.Width, lowX)
	highY := max(content.Y+content.Height-v.Clip.Height, lowY)
	v.ScrollX = min(max(v.ScrollX, lowX), highX)
	v.ScrollY = min(max(v.ScrollY, lowY), highY)
}

// Dispose detaches the viewport and recursively disposes all descendants.
func (v *Viewport) Dispose() {
	if v.disposed {
		return
	}
	v.scrollTween = nil
	v.RemoveFromParent()
	disposeTree(v)
}
