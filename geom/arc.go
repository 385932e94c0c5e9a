package geom

import (
	"math"

	"github.com/gmlewis/fabcore/units"
)

// ArcCenter returns the center of the circular arc starting at p1 and
// ending at p2 with the given signed sweep angle (positive =
// counter-clockwise). |sweep| must be less than 360 degrees.
//
// The center lies on the perpendicular bisector of p1p2. For a chord of
// half-length h = |p1-p2|/2, the signed distance from the chord midpoint
// to the center is h*cot(sweep/2); the radius is h/sin(sweep/2). At
// |sweep| == 180 degrees the center is exactly the chord midpoint.
func ArcCenter(p1, p2 Point, sweep units.Angle) Point {
	mid := Point{X: (p1.X + p2.X) / 2, Y: (p1.Y + p2.Y) / 2}
	theta := sweep.Degrees() * math.Pi / 180
	if math.Abs(math.Abs(sweep.Degrees())-180) < 1e-9 {
		return mid
	}

	dx := float64(p2.X - p1.X)
	dy := float64(p2.Y - p1.Y)
	halfChord := math.Hypot(dx, dy) / 2
	if halfChord == 0 {
		return p1
	}

	dist := halfChord / math.Tan(theta/2)

	// Unit vector along p1->p2, rotated +90 degrees gives the bisector
	// direction pointing to the left of travel (counter-clockwise side).
	ux, uy := dx/(2*halfChord), dy/(2*halfChord)
	nx, ny := -uy, ux

	return Point{
		X: mid.X + units.Length(math.Round(nx*dist)),
		Y: mid.Y + units.Length(math.Round(ny*dist)),
	}
}
