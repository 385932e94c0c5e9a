package geom

import (
	"math"
	"testing"

	"github.com/gmlewis/fabcore/units"
)

func TestArcCenterQuarterCircle(t *testing.T) {
	// spec.md scenario 4: p1=(0,0), p2=(10mm,10mm), sweep=+90 degrees
	// should produce center=(0,10mm) with equal radii to both endpoints.
	p1 := Point{X: units.FromMillimeters(0), Y: units.FromMillimeters(0)}
	p2 := Point{X: units.FromMillimeters(10), Y: units.FromMillimeters(10)}
	center := ArcCenter(p1, p2, units.FromDegrees(90))

	want := Point{X: units.FromMillimeters(0), Y: units.FromMillimeters(10)}
	if math.Abs(float64(center.X-want.X)) > 10 || math.Abs(float64(center.Y-want.Y)) > 10 {
		t.Fatalf("ArcCenter = %+v, want %+v", center, want)
	}

	r1 := center.Distance(p1)
	r2 := center.Distance(p2)
	if math.Abs(r1-r2) > 10 {
		t.Errorf("radii differ: |c-p1|=%v |c-p2|=%v", r1, r2)
	}
}

func TestArcCenterHalfCircleIsChordMidpoint(t *testing.T) {
	p1 := Point{X: units.FromMillimeters(0), Y: units.FromMillimeters(0)}
	p2 := Point{X: units.FromMillimeters(10), Y: units.FromMillimeters(0)}
	center := ArcCenter(p1, p2, units.FromDegrees(180))
	want := Point{X: units.FromMillimeters(5), Y: units.FromMillimeters(0)}
	if center != want {
		t.Errorf("ArcCenter at 180deg sweep = %+v, want chord midpoint %+v", center, want)
	}
}

func TestPointRotate90(t *testing.T) {
	p := Point{X: units.FromMillimeters(1), Y: units.FromMillimeters(0)}
	got := p.Rotate(units.FromDegrees(90), Point{})
	want := Point{X: 0, Y: units.FromMillimeters(1)}
	if math.Abs(float64(got.X-want.X)) > 1 || math.Abs(float64(got.Y-want.Y)) > 1 {
		t.Errorf("Rotate(90) = %+v, want %+v", got, want)
	}
}

func TestPointMirroredX(t *testing.T) {
	p := Point{X: units.FromMillimeters(3), Y: units.FromMillimeters(7)}
	got := p.MirroredX(Point{})
	want := Point{X: units.FromMillimeters(-3), Y: units.FromMillimeters(7)}
	if got != want {
		t.Errorf("MirroredX = %+v, want %+v", got, want)
	}
}

func TestPathIsClosed(t *testing.T) {
	open := NewPath(Vertex{Pos: Point{X: 0, Y: 0}}, Vertex{Pos: Point{X: 10, Y: 0}})
	if open.IsClosed() {
		t.Error("open path reported closed")
	}
	closed := NewPath(Vertex{Pos: Point{X: 0, Y: 0}}, Vertex{Pos: Point{X: 10, Y: 0}}, Vertex{Pos: Point{X: 0, Y: 0}})
	if !closed.IsClosed() {
		t.Error("closed path reported open")
	}
}

func TestPathIsCurved(t *testing.T) {
	straight := NewPath(Vertex{Pos: Point{X: 0, Y: 0}}, Vertex{Pos: Point{X: 10, Y: 0}})
	if straight.IsCurved() {
		t.Error("straight path reported curved")
	}
	curved := NewPath(Vertex{Pos: Point{X: 0, Y: 0}, Bulge: units.FromDegrees(90)}, Vertex{Pos: Point{X: 10, Y: 0}})
	if !curved.IsCurved() {
		t.Error("curved path reported straight")
	}
}

func TestPathTransformMirrorFlipsBulgeSign(t *testing.T) {
	p := NewPath(
		Vertex{Pos: Point{X: units.FromMillimeters(1), Y: 0}, Bulge: units.FromDegrees(90)},
		Vertex{Pos: Point{X: units.FromMillimeters(2), Y: 0}},
	)
	out := p.Transform(0, true, Point{})
	if out.Vertices[0].Bulge != units.FromDegrees(-90) {
		t.Errorf("mirrored bulge = %d, want %d", out.Vertices[0].Bulge, units.FromDegrees(-90))
	}
	if out.Vertices[0].Pos.X != units.FromMillimeters(-1) {
		t.Errorf("mirrored X = %d, want %d", out.Vertices[0].Pos.X, units.FromMillimeters(-1))
	}
}

func TestCircleIsClosedAndCurved(t *testing.T) {
	c := Circle(units.FromMillimeters(1))
	if !c.IsClosed() {
		t.Error("Circle path should be closed")
	}
	if !c.IsCurved() {
		t.Error("Circle path should be curved")
	}
}

func TestToOutlineStrokesDegenerateAndStraight(t *testing.T) {
	if got := ToOutlineStrokes(NewPath(Vertex{Pos: Point{}}), units.FromMillimeters(0.1)); got != nil {
		t.Error("single-vertex path should produce no strokes")
	}
	p := NewPath(Vertex{Pos: Point{X: 0, Y: 0}}, Vertex{Pos: Point{X: units.FromMillimeters(10), Y: 0}})
	out := ToOutlineStrokes(p, units.FromMillimeters(0.2))
	if len(out) != 1 {
		t.Fatalf("ToOutlineStrokes produced %d outlines, want 1", len(out))
	}
	if !out[0].IsClosed() {
		t.Error("stroke outline should be a closed path")
	}
}
