package geom

import "github.com/gmlewis/fabcore/units"

// Vertex is a point on a Path plus the sweep angle of the arc segment
// that starts at this vertex (zero means the segment to the next
// vertex is straight).
type Vertex struct {
	Pos   Point
	Bulge units.Angle
}

// Path is an ordered sequence of vertices. A path with two or more
// vertices whose first and last positions coincide is closed.
type Path struct {
	Vertices []Vertex
}

// NewPath builds a Path from vertices.
func NewPath(vertices ...Vertex) Path { return Path{Vertices: vertices} }

// IsClosed reports whether the path has at least two vertices and its
// first and last positions coincide.
func (p Path) IsClosed() bool {
	if len(p.Vertices) < 2 {
		return false
	}
	first := p.Vertices[0].Pos
	last := p.Vertices[len(p.Vertices)-1].Pos
	return first == last
}

// IsCurved reports whether any vertex has a non-zero bulge angle.
func (p Path) IsCurved() bool {
	for _, v := range p.Vertices {
		if v.Bulge != 0 {
			return true
		}
	}
	return false
}

// Transform applies rotate (around origin), optional mirror-X (about
// x=0) and then translate, in that order. This is the fixed pipeline the
// board exporter uses to place a footprint-local path in world space.
func (p Path) Transform(rotation units.Angle, mirror bool, translate Point) Path {
	out := Path{Vertices: make([]Vertex, len(p.Vertices))}
	for i, v := range p.Vertices {
		pos := v.Pos.Rotate(rotation, Point{})
		bulge := v.Bulge
		if mirror {
			pos = pos.MirroredX(Point{})
			bulge = -bulge
		}
		pos = pos.Translate(translate)
		out.Vertices[i] = Vertex{Pos: pos, Bulge: bulge}
	}
	return out
}

// Translated returns p translated by offset, ignoring rotation/mirror.
func (p Path) Translated(offset Point) Path {
	return p.Transform(0, false, offset)
}

// Circle returns a closed 3-vertex path tracing a circle of the given
// diameter, centered at the origin, built from two 180-degree arcs,
// the construction the board exporter uses for footprint circles (pads
// and vias are flashed with apertures instead).
func Circle(diameter units.Length) Path {
	r := units.Length(diameter / 2)
	return Path{Vertices: []Vertex{
		{Pos: Point{X: -r, Y: 0}, Bulge: units.FromDegrees(180)},
		{Pos: Point{X: r, Y: 0}, Bulge: units.FromDegrees(180)},
		{Pos: Point{X: -r, Y: 0}},
	}}
}
