package export

import (
	"github.com/gmlewis/fabcore/attr"
	"github.com/gmlewis/fabcore/board"
	"github.com/gmlewis/fabcore/excellon"
	"github.com/gmlewis/fabcore/geom"
)

func (e *BoardExporter) newExcellonGenerator(plating excellon.Plating, fromLayer, toLayer int) *excellon.Generator {
	return excellon.NewGenerator(e.Identity.SoftwareVendor, e.Identity.SoftwareApp, e.Identity.SoftwareVersion,
		e.Identity.CreationDate, e.projectName(), e.Project.UUID, e.Project.Revision, plating, fromLayer, toLayer)
}

// transformPoint maps a footprint-local point into world coordinates
// using the owning device's rotation, mirroring and position.
func transformPoint(p geom.Point, d board.Device) geom.Point {
	out := p.Rotate(d.Rotation, geom.Point{})
	if d.Mirrored {
		out = out.MirroredX(geom.Point{})
	}
	return out.Translate(d.Position)
}

// drawNPTHDrills writes every unplated mechanical hole (footprint
// holes, transformed to world coordinates, and board-level holes) into
// gen with function MechanicalDrill, returning how many were written.
func (e *BoardExporter) drawNPTHDrills(gen *excellon.Generator) int {
	count := 0
	for _, d := range e.Board.Devices {
		for _, h := range d.Footprint.Holes {
			world := transformPoint(h.Position, d)
			gen.Drill(world, h.Diameter, false, attr.FuncMechanicalDrill)
			count++
		}
	}
	for _, h := range e.Board.Holes {
		gen.Drill(h.Position, h.Diameter, false, attr.FuncMechanicalDrill)
		count++
	}
	return count
}

// drawPTHDrills writes every plated hole (THT pad drills and via
// drills) into gen, returning how many were written.
func (e *BoardExporter) drawPTHDrills(gen *excellon.Generator) int {
	count := 0
	for _, d := range e.Board.Devices {
		for _, pad := range d.Footprint.Pads {
			if pad.DrillDiameter <= 0 {
				continue
			}
			world := transformPoint(pad.Position, d)
			gen.Drill(world, pad.DrillDiameter, true, attr.FuncComponentDrill)
			count++
		}
	}
	for _, seg := range e.Board.NetSegments {
		for _, v := range seg.Vias {
			gen.Drill(v.Position, v.DrillDiameter, true, attr.FuncViaDrill)
			count++
		}
	}
	return count
}

// exportDrills renders the drill file(s) per spec.md §4.6.1 item 1:
// either one merged file (Mixed plating) or separate PTH/NPTH files,
// with the NPTH file skipped entirely when it contains no holes.
func (e *BoardExporter) exportDrills() ([]OutputFile, error) {
	toLayer := e.Board.InnerLayerCount + 2

	if e.Settings.MergeDrillFiles {
		gen := e.newExcellonGenerator(excellon.Mixed, 1, toLayer)
		e.drawPTHDrills(gen)
		e.drawNPTHDrills(gen)
		return []OutputFile{{
			Path:    e.resolvePath(e.Settings.SuffixDrills, e.baseAttrs()),
			Content: []byte(gen.Generate()),
		}}, nil
	}

	var files []OutputFile

	npth := e.newExcellonGenerator(excellon.No, 1, toLayer)
	if n := e.drawNPTHDrills(npth); n > 0 {
		files = append(files, OutputFile{
			Path:    e.resolvePath(e.Settings.SuffixDrillsNPTH, e.baseAttrs()),
			Content: []byte(npth.Generate()),
		})
	}

	pth := e.newExcellonGenerator(excellon.Yes, 1, toLayer)
	e.drawPTHDrills(pth)
	files = append(files, OutputFile{
		Path:    e.resolvePath(e.Settings.SuffixDrillsPTH, e.baseAttrs()),
		Content: []byte(pth.Generate()),
	})

	return files, nil
}
