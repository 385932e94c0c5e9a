// Package excellon implements the Excellon drill-file generator: a
// tool-table builder that groups drills by (diameter, plated, function)
// and emits the M48 header, per-tool drill blocks, and M30 footer.
package excellon

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gmlewis/fabcore/attr"
	"github.com/gmlewis/fabcore/geom"
	"github.com/gmlewis/fabcore/units"
)

// Plating selects which plating population a drill file covers.
type Plating int

const (
	Yes Plating = iota
	No
	Mixed
)

// tool is the key drills are grouped under: diameter, plated state and
// aperture function together determine which physical tool a CNC
// operator would use.
type tool struct {
	diameter units.Length
	plated   bool
	function attr.ApertureFunction
}

// toolEntry preserves first-seen order while collecting every position
// drilled with a given tool, mirroring the original's insertion-ordered
// multimap.
type toolEntry struct {
	tool      tool
	positions []geom.Point
}

// Generator accumulates drill positions into a tool table and renders
// a complete Excellon file.
type Generator struct {
	plating Plating

	fileAttrs []attr.Attribute

	entries []toolEntry
	byTool  map[tool]int // tool -> index into entries
}

// NewGenerator returns a Generator configured for one drill population
// (plating Yes/No/Mixed) spanning [fromLayer, toLayer]. vendor/app/
// version identify the producing tool; the file attributes mirror the
// Gerber header's, rendered as comments since Excellon has no native
// attribute syntax.
func NewGenerator(vendor, app, version string, creationDate time.Time, projectName, projectUUID, projectRevision string, plating Plating, fromLayer, toLayer int) *Generator {
	g := &Generator{
		plating: plating,
		byTool:  map[tool]int{},
	}
	g.fileAttrs = append(g.fileAttrs,
		attr.FileGenerationSoftware(vendor, app, version),
		attr.FileCreationDate(creationDate),
		attr.FileProjectID(projectName, projectUUID, projectRevision),
		attr.FilePartSingle(),
		attr.FileSameCoordinates(""),
	)
	switch plating {
	case Yes:
		g.fileAttrs = append(g.fileAttrs, attr.FileFunctionPlatedThroughHole(fromLayer, toLayer))
	case No:
		g.fileAttrs = append(g.fileAttrs, attr.FileFunctionNonPlatedThroughHole(fromLayer, toLayer))
	case Mixed:
		g.fileAttrs = append(g.fileAttrs, attr.FileFunctionMixedPlating(fromLayer, toLayer))
	default:
		panic(fmt.Sprintf("excellon: unknown plating %d", plating))
	}
	return g
}

// Drill records one drill hole under its tool. diameter must be
// positive; plated is meaningless (but harmless) when the generator's
// overall Plating is not Mixed.
func (g *Generator) Drill(position geom.Point, diameter units.Length, plated bool, function attr.ApertureFunction) {
	t := tool{diameter: diameter, plated: plated, function: function}
	if idx, ok := g.byTool[t]; ok {
		g.entries[idx].positions = append(g.entries[idx].positions, position)
		return
	}
	g.byTool[t] = len(g.entries)
	g.entries = append(g.entries, toolEntry{tool: t, positions: []geom.Point{position}})
}

// toolNumber returns the 1-based T-number of entries[idx], matching
// first-seen order.
func toolNumber(idx int) int { return idx + 1 }

// Generate assembles the complete Excellon file.
func (g *Generator) Generate() string {
	var out strings.Builder

	out.WriteString("M48\n")
	for _, a := range g.fileAttrs {
		out.WriteString(a.ToExcellonString())
	}
	out.WriteString("FMAT,2\n")
	out.WriteString("METRIC,TZ\n")

	for i, e := range g.entries {
		fnAttr := toolFunctionAttribute(g.plating, e.tool)
		out.WriteString(fnAttr.ToExcellonString())
		fmt.Fprintf(&out, "T%dC%s\n", toolNumber(i), e.tool.diameter.ToMmString())
	}

	out.WriteString("%\n")
	out.WriteString("G90\n")
	out.WriteString("G05\n")
	out.WriteString("M71\n")

	for i, e := range g.entries {
		fmt.Fprintf(&out, "T%d\n", toolNumber(i))
		for _, p := range e.positions {
			fmt.Fprintf(&out, "X%sY%s\n", p.X.ToNmString(), p.Y.ToNmString())
		}
	}

	out.WriteString("T0\n")
	out.WriteString("M30\n")

	return out.String()
}

// toolFunctionAttribute renders the aperture-function comment that
// precedes a tool definition. In a Mixed-plating file every tool gets
// the non-standard Plated/PTH or NonPlated/NPTH prefix so readers can
// tell plated and non-plated holes apart within one tool table.
func toolFunctionAttribute(plating Plating, t tool) attr.Attribute {
	if plating == Mixed {
		return attr.ApertureFunctionMixedPlatingDrill(t.plated, t.function)
	}
	return attr.ApertureFunctionAttr(t.function)
}

// SaveToFile writes the generated file as Latin-1 bytes, matching the
// original Excellon generator's output encoding.
func (g *Generator) SaveToFile(path string) error {
	s := g.Generate()
	latin1 := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xff {
			r = '?'
		}
		latin1 = append(latin1, byte(r))
	}
	if err := os.WriteFile(path, latin1, 0o644); err != nil {
		return fmt.Errorf("excellon: writing %s: %w", path, err)
	}
	return nil
}
