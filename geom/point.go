// Package geom implements the board-plane geometry primitives the
// fabrication core draws with: points, bulge-vertex paths, arc-center
// computation, and stroke-to-outline conversion.
package geom

import (
	"math"

	"github.com/gmlewis/fabcore/units"
)

// Point is a position in board-plane nanometre coordinates.
type Point struct {
	X, Y units.Length
}

// Add returns p+o.
func (p Point) Add(o Point) Point { return Point{p.X + o.X, p.Y + o.Y} }

// Sub returns p-o.
func (p Point) Sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }

// Distance returns the Euclidean distance between p and o in nanometres.
func (p Point) Distance(o Point) float64 {
	dx := float64(p.X - o.X)
	dy := float64(p.Y - o.Y)
	return math.Hypot(dx, dy)
}

// Rotate returns p rotated by angle around center.
func (p Point) Rotate(angle units.Angle, center Point) Point {
	rad := angle.Degrees() * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	dx := float64(p.X - center.X)
	dy := float64(p.Y - center.Y)
	nx := dx*cos - dy*sin
	ny := dx*sin + dy*cos
	return Point{
		X: center.X + units.Length(math.Round(nx)),
		Y: center.Y + units.Length(math.Round(ny)),
	}
}

// MirroredX returns p flipped left/right about the vertical line
// x=center.X, matching a board device's mirrored placement (the
// footprint is viewed from the opposite side of the board).
func (p Point) MirroredX(center Point) Point {
	return Point{X: center.X - (p.X - center.X), Y: p.Y}
}

// Translate returns p translated by offset.
func (p Point) Translate(offset Point) Point { return p.Add(offset) }
