package geom

import (
	"math"

	"github.com/gmlewis/fabcore/units"
)

// ToOutlineStrokes converts a centerline path into a set of closed
// outline paths that together form a stroke of the given width: one
// obround (or arc-obround) per segment of the source path. Used by
// board stroke-text rendering, where the generator needs a *filled*
// outline rather than a line of nonzero width.
func ToOutlineStrokes(p Path, width units.Length) []Path {
	if len(p.Vertices) < 2 || width <= 0 {
		return nil
	}
	var out []Path
	for i := 1; i < len(p.Vertices); i++ {
		from := p.Vertices[i-1]
		to := p.Vertices[i]
		if from.Bulge == 0 {
			out = append(out, obround(from.Pos, to.Pos, width))
		} else {
			out = append(out, arcObround(from.Pos, to.Pos, from.Bulge, width))
		}
	}
	return out
}

// obround returns a closed stadium-shaped outline of the given width
// around the straight segment p1-p2.
func obround(p1, p2 Point, width units.Length) Path {
	dx := float64(p2.X - p1.X)
	dy := float64(p2.Y - p1.Y)
	length := math.Hypot(dx, dy)
	r := float64(width) / 2
	if length == 0 {
		// Degenerate segment: emit a full circle of the stroke width.
		return Circle(width).Translated(p1)
	}
	ux, uy := dx/length, dy/length // along segment
	nx, ny := -uy, ux              // normal (left side)

	pt := func(along, side float64) Point {
		return Point{
			X: p1.X + units.Length(math.Round(ux*along+nx*side)),
			Y: p1.Y + units.Length(math.Round(uy*along+ny*side)),
		}
	}

	// Traversal is clockwise: along the left edge, a -180 degree cap
	// around p2, back along the right edge, and a -180 degree cap
	// around p1 to close.
	return Path{Vertices: []Vertex{
		{Pos: pt(0, r)},
		{Pos: pt(length, r), Bulge: units.FromDegrees(-180)},
		{Pos: pt(length, -r)},
		{Pos: pt(0, -r), Bulge: units.FromDegrees(-180)},
		{Pos: pt(0, r)},
	}}
}

// arcObround approximates the outline of an arc-shaped stroke segment
// by an obround built from the segment's chord. The bulge is ignored:
// the result does not follow the arc's curvature, so the true arc
// stroke extends beyond it by the arc's sagitta (small for shallow
// bulges). It is only used for rendering fill, never for electrical
// geometry.
func arcObround(p1, p2 Point, bulge units.Angle, width units.Length) Path {
	return obround(p1, p2, width)
}
