package arbor

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestTweenPositionReachesTarget(t *testing.T) {
	node := NewGroup("pos")
	node.X = 10
	node.Y = 20

	g := TweenPosition(node, 100, 200, 1.0, ease.Linear)

	// Exact halves avoid float32 accumulation drift.
	g.Update(0.5)
	g.Update(0.5)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	if math.Abs(node.X-100) > 0.5 {
		t.Errorf("X = %f, want ~100", node.X)
	}
	if math.Abs(node.Y-200) > 0.5 {
		t.Errorf("Y = %f, want ~200", node.Y)
	}
}

func TestTweenScaleReachesTarget(t *testing.T) {
	node := NewGroup("scale")

	g := TweenScale(node, 2.0, 3.0, 0.5, ease.Linear)
	g.Update(0.25)
	g.Update(0.25)

	if !g.Done {
		t.Fatal("expected Done after full duration")
	}
	if math.Abs(node.ScaleX-2.0) > 0.01 {
		t.Errorf("ScaleX = %f, want ~2.0", node.ScaleX)
	}
	if math.Abs(node.ScaleY-3.0) > 0.01 {
		t.Errorf("ScaleY = %f, want ~3.0", node.ScaleY)
	}
}

func TestTweenRotationHalfway(t *testing.T) {
	node := NewRect("rot", 10, 10)

	g := TweenRotation(node, math.Pi, 1.0, nil)
	g.Update(0.5)

	if g.Done {
		t.Fatal("should not be Done halfway")
	}
	if math.Abs(node.Rotation-math.Pi/2) > 0.01 {
		t.Errorf("Rotation = %f, want ~%f", node.Rotation, math.Pi/2)
	}
}

func TestTweenStopsOnDisposedNode(t *testing.T) {
	node := NewRect("gone", 10, 10)
	g := TweenPosition(node, 100, 100, 1.0, ease.Linear)

	node.Dispose()
	g.Update(0.5)

	if !g.Done {
		t.Error("expected Done after target disposed")
	}
	if node.X != 0 {
		t.Errorf("X = %f, disposed node should not be written", node.X)
	}
}

func TestTweenMovesHitArea(t *testing.T) {
	root := NewGroup("root")
	box := NewRect("box", 10, 10)
	root.Add(box)
	d := NewDispatcher(root.Children())

	g := TweenPosition(box, 100, 0, 1.0, ease.Linear)
	g.Update(0.5)
	g.Update(0.5)

	if got := d.DispatchDiscrete(EventClick, 5, 5); got != nil {
		t.Errorf("old position hit %v", got)
	}
	if got := d.DispatchDiscrete(EventClick, 105, 5); got != Node(box) {
		t.Errorf("new position hit %v, want box", got)
	}
}

func TestSceneAdvancesAndDropsTweens(t *testing.T) {
	s := newScene(newEbitenSource(&fakeReader{}))
	node := NewRect("n", 10, 10)
	s.Root().Add(node)

	s.AddTween(TweenPosition(node, 10, 0, 0.5, ease.Linear))
	s.AddTween(nil)
	if len(s.tweens) != 1 {
		t.Fatalf("tweens = %d, want 1", len(s.tweens))
	}

	s.step(0.25)
	s.step(0.25)

	if len(s.tweens) != 0 {
		t.Errorf("finished tween not dropped, %d left", len(s.tweens))
	}
	if math.Abs(node.X-10) > 0.01 {
		t.Errorf("X = %f, want ~10", node.X)
	}
}
