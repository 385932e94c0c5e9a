package export

import (
	"sort"

	"github.com/gmlewis/fabcore/attr"
	"github.com/gmlewis/fabcore/board"
	"github.com/gmlewis/fabcore/gerber"
	"github.com/gmlewis/fabcore/geom"
	"github.com/gmlewis/fabcore/units"
)

// rotationGrid is the finest rotation increment the exporter trusts:
// a pad rotation combined from footprint-library and placement angles
// is snapped to this grid to absorb any sub-grid noise from upstream
// unit conversions before it reaches an aperture macro's rotation
// parameter.
const rotationGrid units.Angle = 1_000 // 0.001 degree

// minOutlineWidth is the smallest stroke width ever emitted on the
// board-outline layer; some readers reject true zero-width profiles.
const minOutlineWidth = units.Length(1_000) // 1 um

// drawLayer walks the board once for a single output layer, in a fixed
// order: devices, pads, net segments, planes, board polygons, stroke
// texts.
func (e *BoardExporter) drawLayer(g *gerber.Generator, layerID string) {
	e.drawDevices(g, layerID)
	e.drawPads(g, layerID)
	e.drawNetSegments(g, layerID)
	e.drawPlanes(g, layerID)
	e.drawPolygons(g, layerID)
	e.drawStrokeTexts(g, layerID)
}

// layerGraphics returns the function and net attributes plain graphics
// (polygons, circles, texts) carry on layerID: Profile on the outline,
// Conductor with the empty no-net marker on copper, nothing elsewhere.
func layerGraphics(layerID string) (*attr.ApertureFunction, *string) {
	switch {
	case layerID == LayerOutline:
		return attr.Func(attr.FuncProfile), nil
	case isCopperLayer(layerID):
		return attr.Func(attr.FuncConductor), attr.Net("")
	default:
		return nil, nil
	}
}

// widthForLayer clamps stroke widths to the outline layer's minimum.
func widthForLayer(width units.Length, layerID string) units.Length {
	if layerID == LayerOutline && width < minOutlineWidth {
		return minOutlineWidth
	}
	return width
}

// devicePrimitiveLayer returns the world layer id a footprint-local
// primitive drawn on primitiveLayer ends up on, after accounting for
// the owning device's mirrored placement.
func devicePrimitiveLayer(d board.Device, primitiveLayer string) string {
	if d.Mirrored {
		return mirrorLayer(primitiveLayer)
	}
	return primitiveLayer
}

func (e *BoardExporter) drawDevices(g *gerber.Generator, layerID string) {
	function, net := layerGraphics(layerID)
	for _, d := range e.Board.Devices {
		for _, poly := range d.Footprint.Polygons {
			if devicePrimitiveLayer(d, poly.Layer) != layerID {
				continue
			}
			path := poly.Path.Transform(d.Rotation, d.Mirrored, d.Position)
			g.DrawPathOutline(path, widthForLayer(poly.Width, layerID), function, net, d.Designator)
			if poly.Filled && path.IsClosed() {
				g.DrawPathArea(path, function, net, d.Designator)
			}
		}
		for _, c := range d.Footprint.Circles {
			if devicePrimitiveLayer(d, c.Layer) != layerID {
				continue
			}
			center := transformPoint(c.Center, d)
			if c.Filled {
				// The stroke extends outward, so the filled image is
				// the circle grown by its line width.
				g.DrawPathArea(geom.Circle(c.Diameter+c.Width).Translated(center), function, net, d.Designator)
			} else {
				g.DrawPathOutline(geom.Circle(c.Diameter).Translated(center),
					widthForLayer(c.Width, layerID), function, net, d.Designator)
			}
		}
		for _, st := range append(append([]board.StrokeText{}, d.Footprint.StrokeTexts...), d.StrokeTexts...) {
			if devicePrimitiveLayer(d, st.Layer) != layerID {
				continue
			}
			textFunction := function
			if isCopperLayer(layerID) {
				textFunction = attr.Func(attr.FuncNonConductor)
			}
			for _, p := range st.Paths {
				path := p.Transform(d.Rotation, d.Mirrored, d.Position)
				g.DrawPathOutline(path, widthForLayer(st.Width, layerID), textFunction, net, d.Designator)
			}
		}
	}
}

// drawPads emits every device pad that appears on layerID, expanding
// or shrinking its size for stopmask/paste layers and skipping it with
// a warning if the result is non-positive.
func (e *BoardExporter) drawPads(g *gerber.Generator, layerID string) {
	rules := e.Board.DesignRules
	for _, d := range e.Board.Devices {
		for _, pad := range d.Footprint.Pads {
			width, height, function, ok := e.padGeometryForLayer(pad, layerID, rules)
			if !ok {
				continue
			}
			if width <= 0 || height <= 0 {
				e.Logger.Printf("export: skipping pad %s on device %s: non-positive size after clearance", pad.Name, d.Designator)
				continue
			}

			rot := pad.Rotation
			if d.Mirrored {
				rot = -rot
			}
			rot += d.Rotation
			rot = units.RoundToGrid(rot, rotationGrid)

			pos := transformPoint(pad.Position, d)

			netName := pad.NetSignal
			if netName == "" {
				netName = "N/C"
			}
			fn := attr.Func(function)
			net := attr.Net(netName)

			switch pad.Shape {
			case board.PadRound:
				// A round pad is an obround stretched along its longer
				// axis; it collapses to a circle only when width == height.
				g.FlashObround(pos, width, height, rot, fn, net, d.Designator, pad.Name, pad.SignalName)
			case board.PadRect:
				g.FlashRect(pos, width, height, rot, fn, net, d.Designator, pad.Name, pad.SignalName)
			case board.PadOctagon:
				g.FlashOctagon(pos, width, height, rot, fn, net, d.Designator, pad.Name, pad.SignalName)
			case board.PadCustom:
				// Width/height-based clearance expansion/shrink doesn't
				// apply to a free-form outline; width/height above were
				// only used for the non-positive-size skip check.
				g.FlashOutline("PAD", pad.Outline, pos, rot, fn, net, d.Designator, pad.Name, pad.SignalName)
			default:
				panic("export: unknown pad shape")
			}
		}
	}
}

// padGeometryForLayer reports whether pad appears on layerID at all,
// and if so its (possibly clearance-adjusted) width/height and
// aperture function.
func (e *BoardExporter) padGeometryForLayer(pad board.Pad, layerID string, rules board.DesignRules) (width, height units.Length, function attr.ApertureFunction, ok bool) {
	isTHT := pad.BoardSide == board.PadTHT

	switch {
	case isCopperLayer(layerID):
		if !isTHT {
			onOuterLayer := layerID == LayerTopCopper || layerID == LayerBottomCopper
			if !onOuterLayer || !padOnSide(pad, layerID) {
				return 0, 0, 0, false
			}
		}
		function = attr.FuncComponentPad
		if !isTHT {
			function = attr.FuncSmdPadCopperDefined
		}
		return pad.Width, pad.Height, function, true

	case isStopMaskLayer(layerID):
		if !isTHT && !padOnSide(pad, layerID) {
			return 0, 0, 0, false
		}
		exp := rules.StopMaskClearance * 2
		function = attr.FuncComponentPad
		if !isTHT {
			function = attr.FuncSmdPadCopperDefined
		}
		return pad.Width + exp, pad.Height + exp, function, true

	case isSolderPasteLayer(layerID):
		if isTHT || !padOnSide(pad, layerID) {
			return 0, 0, 0, false
		}
		shrink := rules.PasteClearance * 2
		return pad.Width - shrink, pad.Height - shrink, attr.FuncSmdPadCopperDefined, true

	default:
		return 0, 0, 0, false
	}
}

// padOnSide reports whether an SMT pad's board side matches the top or
// bottom side implied by layerID (a stopmask or solder-paste layer).
func padOnSide(pad board.Pad, layerID string) bool {
	top := layerID == LayerTopSolderMask || layerID == LayerTopSolderPaste || layerID == LayerTopCopper
	if top {
		return pad.BoardSide == board.PadSMTTop
	}
	return pad.BoardSide == board.PadSMTBottom
}

func (e *BoardExporter) drawNetSegments(g *gerber.Generator, layerID string) {
	segments := append([]board.NetSegment{}, e.Board.NetSegments...)
	sort.Slice(segments, func(i, j int) bool { return segments[i].UUID < segments[j].UUID })

	rules := e.Board.DesignRules
	for _, seg := range segments {
		vias := append([]board.Via{}, seg.Vias...)
		sort.Slice(vias, func(i, j int) bool { return vias[i].UUID < vias[j].UUID })
		for _, v := range vias {
			e.drawVia(g, v, seg.NetSignal, layerID, rules)
		}

		lines := append([]board.NetLine{}, seg.Lines...)
		sort.Slice(lines, func(i, j int) bool { return lines[i].UUID < lines[j].UUID })
		for _, ln := range lines {
			if ln.Layer != layerID {
				continue
			}
			g.DrawLine(ln.Start, ln.End, ln.Width, attr.Func(attr.FuncConductor), attr.Net(seg.NetSignal), "")
		}
	}
}

func (e *BoardExporter) drawVia(g *gerber.Generator, v board.Via, netSignal, layerID string, rules board.DesignRules) {
	drawCopper := false
	for _, l := range v.Layers {
		if l == layerID {
			drawCopper = true
			break
		}
	}
	drawStopMask := isStopMaskLayer(layerID) && rules.ViaRequiresStopMask(v.DrillDiameter)

	if !drawCopper && !drawStopMask {
		return
	}

	diameter := v.PadDiameter
	if drawStopMask {
		diameter += rules.StopMaskClearance * 2
	}

	fn := attr.Func(attr.FuncViaPad)
	net := attr.Net(netSignal)

	switch v.Shape {
	case board.ViaRound:
		g.FlashCircle(v.Position, diameter, fn, net, "", "", "")
	case board.ViaSquare:
		g.FlashRect(v.Position, diameter, diameter, 0, fn, net, "", "", "")
	case board.ViaOctagon:
		g.FlashOctagon(v.Position, diameter, diameter, 0, fn, net, "", "", "")
	default:
		panic("export: unknown via shape")
	}
}

func (e *BoardExporter) drawPlanes(g *gerber.Generator, layerID string) {
	for _, p := range e.Board.Planes {
		if p.Layer != layerID {
			continue
		}
		for _, frag := range p.Fragments {
			g.DrawPathArea(frag, attr.Func(attr.FuncConductor), attr.Net(p.NetSignal), "")
		}
	}
}

func (e *BoardExporter) drawPolygons(g *gerber.Generator, layerID string) {
	function, net := layerGraphics(layerID)
	for _, p := range e.Board.Polygons {
		if p.Layer != layerID {
			continue
		}
		width := widthForLayer(p.Width, layerID)
		g.DrawPathOutline(p.Path, width, function, net, "")
		// Only fill closed paths; Gerber expects area outlines closed.
		if p.Filled && p.Path.IsClosed() {
			g.DrawPathArea(p.Path, function, net, "")
		}
	}
}

// drawStrokeTexts renders pre-shaped glyph paths as filled outlines:
// each centerline segment is converted to a closed stroke-width ring
// via geom.ToOutlineStrokes and emitted as a region, rather than
// interpolated with a round pen aperture.
func (e *BoardExporter) drawStrokeTexts(g *gerber.Generator, layerID string) {
	_, net := layerGraphics(layerID)
	var function *attr.ApertureFunction
	if isCopperLayer(layerID) {
		function = attr.Func(attr.FuncNonConductor)
	}
	for _, st := range e.Board.StrokeTexts {
		if st.Layer != layerID {
			continue
		}
		for _, p := range st.Paths {
			for _, ring := range geom.ToOutlineStrokes(p, widthForLayer(st.Width, layerID)) {
				g.DrawPathArea(ring, function, net, "")
			}
		}
	}
}
