package arbor

// HitShape is a hit region in a node's local coordinates.
type HitShape interface {
	Contains(x, y float64) bool
}

// HitRect is an axis-aligned rectangular hit area in local coordinates.
type HitRect struct {
	X, Y, Width, Height float64
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r HitRect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Bounds returns the rectangle as a Rect.
func (r HitRect) Bounds() Rect {
	return Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// HitCircle is a circular hit area in local coordinates.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// Bounds returns the circle's bounding square.
func (c HitCircle) Bounds() Rect {
	return Rect{
		X:      c.CenterX - c.Radius,
		Y:      c.CenterY - c.Radius,
		Width:  2 * c.Radius,
		Height: 2 * c.Radius,
	}
}

// HitPolygon is a convex polygon hit area in local coordinates.
// Points must define a convex polygon in either winding order.
type HitPolygon struct {
	Points []Vec2
}

// Contains reports whether (x, y) lies inside a convex polygon using cross-product sign test.
func (p HitPolygon) Contains(x, y float64) bool {
	n := len(p.Points)
	if n < 3 {
		return false
	}

	// Check that the point is on the same side of every edge.
	var positive, negative bool
	for i := 0; i < n; i++ {
		x1 := p.Points[i].X
		y1 := p.Points[i].Y
		j := (i + 1) % n
		x2 := p.Points[j].X
		y2 := p.Points[j].Y

		cross := (x2-x1)*(y-y1) - (y2-y1)*(x-x1)
		if cross > 0 {
			positive = true
		} else if cross < 0 {
			negative = true
		}
		if positive && negative {
			return false
		}
	}
	return true
}

// Bounds returns the polygon's axis-aligned bounding box.
func (p HitPolygon) Bounds() Rect {
	if len(p.Points) == 0 {
		return Rect{}
	}
	minX, minY := p.Points[0].X, p.Points[0].Y
	maxX, maxY := minX, minY
	for _, pt := range p.Points[1:] {
		minX = min(minX, pt.X)
		minY = min(minY, pt.Y)
		maxX = max(maxX, pt.X)
		maxY = max(maxY, pt.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// shapeBounds returns the local bounds of a hit shape, if it reports them.
func shapeBounds(s HitShape) (Rect, bool) {
	if b, ok := s.(interface{ Bounds() Rect }); ok {
		return b.Bounds(), true
	}
	return Rect{}, false
}
