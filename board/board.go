// Package board defines the minimal board-model types the exporter
// walks: layers, devices, pads, net segments, planes, polygons, stroke
// texts, holes and design rules. It holds no persistence, UI, or design
// rule checking of its own; it exists only to give the exporter real
// input to read and real output to assert on in tests.
package board

import (
	"github.com/gmlewis/fabcore/attr"
	"github.com/gmlewis/fabcore/geom"
	"github.com/gmlewis/fabcore/units"
)

// Layer is a named drawing plane. MirrorOf names the layer id a
// mirrored device's geometry should be placed on instead (e.g. "top
// copper" mirrors to "bottom copper"); it is empty for layers with no
// mirrored counterpart (e.g. the outline).
type Layer struct {
	ID          string
	MirrorOf    string
	CopperIndex int // 0 = not a copper layer; 1 = top, N = bottom, 2..N-1 = inner
}

// Point and Path are board-local aliases of the geom types, so callers
// assembling a board don't need to import geom directly.
type Point = geom.Point
type Vertex = geom.Vertex
type Path = geom.Path

// Circle is a filled or outlined circular primitive local to a
// footprint or board layer. Width is the stroke width; because the
// stroke extends outward, a filled circle's image is the circle grown
// by its width.
type Circle struct {
	Layer    string
	Center   Point
	Diameter units.Length
	Width    units.Length
	Filled   bool
}

// Hole is an unplated mechanical hole, either inside a footprint
// (device-relative) or directly on the board.
type Hole struct {
	Position Point
	Diameter units.Length
}

// Pad is one copper contact of a device footprint.
type PadShape int

const (
	PadRound PadShape = iota
	PadRect
	PadOctagon
	// PadCustom is a free-form polygon pad; Outline must be closed with
	// at least 4 vertices and all-zero bulges.
	PadCustom
)

// PadBoardSide distinguishes a through-hole pad (present on every
// copper/stopmask layer) from a surface-mount pad bound to one side.
type PadBoardSide int

const (
	PadTHT PadBoardSide = iota
	PadSMTTop
	PadSMTBottom
)

type Pad struct {
	Name         string // package-pad name, e.g. "1"
	Shape        PadShape
	Width        units.Length
	Height       units.Length
	Rotation     units.Angle
	Position     Point // footprint-local
	Outline      Path  // PadCustom only: closed, footprint-local, unrotated
	BoardSide    PadBoardSide
	DrillDiameter units.Length // THT only; zero for SMT
	NetSignal    string        // "" = no net
	SignalName   string        // component-signal name
}

// Footprint is the library-defined geometry of a device, in
// footprint-local coordinates.
type Footprint struct {
	Pads        []Pad
	Polygons    []Polygon
	Circles     []Circle
	StrokeTexts []StrokeText
	Holes       []Hole
}

// Device is one placed component instance.
type Device struct {
	Designator   string
	Value        string
	MountType    attr.MountType
	Manufacturer string
	Mpn          string
	FootprintName string
	Position     Point
	Rotation     units.Angle
	Mirrored     bool
	Footprint    Footprint
	// StrokeTexts are instance-specific (e.g. a user-edited reference
	// designator placement) and rendered in addition to the footprint's
	// own stroke texts.
	StrokeTexts []StrokeText
}

// Via is a plated through-hole connecting copper layers without a
// component pad.
type ViaShape int

const (
	ViaRound ViaShape = iota
	ViaSquare
	ViaOctagon
)

type Via struct {
	UUID         string
	Position     Point
	DrillDiameter units.Length
	PadDiameter  units.Length
	Shape        ViaShape
	// Layers lists the copper layer ids this via's pad is flashed on.
	Layers []string
}

// NetLine is a straight copper trace segment on one layer.
type NetLine struct {
	UUID   string
	Layer  string
	Start  Point
	End    Point
	Width  units.Length
}

// NetSegment groups the vias and trace lines belonging to one
// electrical net.
type NetSegment struct {
	UUID       string
	NetSignal  string
	Vias       []Via
	Lines      []NetLine
}

// Plane is a pre-filled copper pour; Fragments holds the already
// computed fill outlines (no plane-filling algorithm lives here).
type Plane struct {
	Layer     string
	NetSignal string
	Fragments []Path
}

// Polygon is a board-level outline or filled shape not tied to a
// device, e.g. the board profile or a copper keepout fill.
type Polygon struct {
	Layer  string
	Path   Path
	Width  units.Length
	Filled bool
}

// StrokeText is pre-rendered stroke-font glyph geometry (the caller is
// responsible for font shaping; this core only draws the resulting
// paths).
type StrokeText struct {
	Layer  string
	Paths  []Path
	Width  units.Length
}

// DesignRules carries the clearances and thresholds the exporter needs
// to compute stopmask/paste expansion and via stopmask eligibility.
type DesignRules struct {
	StopMaskClearance units.Length
	PasteClearance    units.Length
	ViaStopMaskMinDrillDiameter units.Length
}

// ViaRequiresStopMask reports whether a via with the given drill
// diameter should receive a stopmask opening under these rules.
func (d DesignRules) ViaRequiresStopMask(drillDiameter units.Length) bool {
	return drillDiameter >= d.ViaStopMaskMinDrillDiameter
}

// Board is one physical board within a project.
type Board struct {
	UUID            string
	Name            string
	InnerLayerCount int
	Devices         []Device
	NetSegments     []NetSegment
	Planes          []Plane
	Polygons        []Polygon
	StrokeTexts     []StrokeText
	Holes           []Hole
	DesignRules     DesignRules
}

// Project is the enclosing EDA project a board belongs to.
type Project struct {
	Name       string
	UUID       string
	Revision   string
	Version    string
	BoardCount int
}
