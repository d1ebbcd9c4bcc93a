package arbor

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 2 float64 transform fields on a node
// simultaneously. Create one via TweenPosition, TweenScale or TweenRotation
// and call Update(dt) each frame, or add it to a Scene with AddTween. Moving a
// node changes what it hit-tests against; hover catches up on the next
// pointer move. If the target node is disposed, the group stops immediately.
type TweenGroup struct {
	tweens [2]*gween.Tween
	count  int
	fields [2]*float64
	target *NodeBase
	Done   bool
}

// Update advances all tweens by dt seconds and writes values to the target
// fields. If the target node has been disposed, Done is set to true and no
// writes occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// TweenPosition creates a TweenGroup that animates X and Y to the given
// target coordinates over the specified duration using the easing function.
func TweenPosition(node Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	b := node.base()
	g := &TweenGroup{count: 2, target: b}
	g.tweens[0] = gween.New(float32(b.X), float32(toX), duration, easeOrLinear(fn))
	g.tweens[1] = gween.New(float32(b.Y), float32(toY), duration, easeOrLinear(fn))
	g.fields[0] = &b.X
	g.fields[1] = &b.Y
	return g
}

// TweenScale creates a TweenGroup that animates ScaleX and ScaleY.
func TweenScale(node Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	b := node.base()
	g := &TweenGroup{count: 2, target: b}
	g.tweens[0] = gween.New(float32(b.ScaleX), float32(toSX), duration, easeOrLinear(fn))
	g.tweens[1] = gween.New(float32(b.ScaleY), float32(toSY), duration, easeOrLinear(fn))
	g.fields[0] = &b.ScaleX
	g.fields[1] = &b.ScaleY
	return g
}

// TweenRotation creates a TweenGroup that animates Rotation (radians).
func TweenRotation(node Node, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	b := node.base()
	g := &TweenGroup{count: 1, target: b}
	g.tweens[0] = gween.New(float32(b.Rotation), float32(to), duration, easeOrLinear(fn))
	g.fields[0] = &b.Rotation
	return g
}

func easeOrLinear(fn ease.TweenFunc) ease.TweenFunc {
	if fn == nil {
		return ease.Linear
	}
	return fn
}
