package arbor

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// computeLocalTransform computes the local affine matrix from the node's
// transform properties. Returns [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(-PivotX, -PivotY) -> Scale -> Rotate -> Translate(X, Y)
func computeLocalTransform(n *NodeBase) [6]float64 {
	sx := n.ScaleX
	sy := n.ScaleY
	sin, cos := math.Sincos(n.Rotation)

	preTx := -n.PivotX * sx
	preTy := -n.PivotY * sy

	return [6]float64{
		cos * sx,
		sin * sx,
		-sin * sy,
		cos * sy,
		cos*preTx - sin*preTy + n.X,
		sin*preTx + cos*preTy + n.Y,
	}
}

// hasPlainTransform reports whether the node only translates.
func hasPlainTransform(n *NodeBase) bool {
	return n.ScaleX == 1 && n.ScaleY == 1 && n.Rotation == 0 &&
		n.PivotX == 0 && n.PivotY == 0
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// ok is false if the matrix is singular (e.g. a zero scale).
func invertAffine(m [6]float64) (inv [6]float64, ok bool) {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform, false
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}, true
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// transformRect returns the axis-aligned bounds of r after applying m.
func transformRect(m [6]float64, r Rect) Rect {
	x0, y0 := transformPoint(m, r.X, r.Y)
	x1, y1 := transformPoint(m, r.X+r.Width, r.Y)
	x2, y2 := transformPoint(m, r.X, r.Y+r.Height)
	x3, y3 := transformPoint(m, r.X+r.Width, r.Y+r.Height)
	minX := min(x0, x1, x2, x3)
	minY := min(y0, y1, y2, y3)
	maxX := max(x0, x1, x2, x3)
	maxY := max(y0, y1, y2, y3)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// toLocal maps a point from the owner's space into n's local space.
// ok is false for degenerate transforms, which can never be hit.
func toLocal(n *NodeBase, px, py float64) (lx, ly float64, ok bool) {
	if hasPlainTransform(n) {
		return px - n.X, py - n.Y, true
	}
	inv, ok := invertAffine(computeLocalTransform(n))
	if !ok {
		return 0, 0, false
	}
	lx, ly = transformPoint(inv, px, py)
	return lx, ly, true
}

// ParentToLocal converts a point in the owner's space to this node's local space.
func (b *NodeBase) ParentToLocal(px, py float64) (lx, ly float64) {
	lx, ly, _ = toLocal(b, px, py)
	return lx, ly
}

// LocalToParent converts a local-space point to the owner's space.
func (b *NodeBase) LocalToParent(lx, ly float64) (px, py float64) {
	return transformPoint(computeLocalTransform(b), lx, ly)
}

// geoM converts an affine matrix to an ebiten.GeoM.
func geoM(m [6]float64) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}
