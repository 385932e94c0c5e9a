// Package gerber implements the RS-274X image-file generator: a
// drawing-call state machine that accumulates header, aperture list and
// body content and assembles them into a complete Gerber file with its
// MD5 footer attribute.
package gerber

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gmlewis/fabcore/aperture"
	"github.com/gmlewis/fabcore/attr"
	"github.com/gmlewis/fabcore/geom"
	"github.com/gmlewis/fabcore/logx"
	"github.com/gmlewis/fabcore/units"
)

// regionApertureDiameter is the fixed aperture selected before opening
// a G36 region. Readers must ignore the aperture inside a region, but
// some CAM tooling in the wild still inspects it, and zero-size
// apertures have caused trouble with fabricators, so a 10 micrometre
// circle is always selected.
const regionApertureDiameter = units.Length(10_000)

// componentOutlineWidth is the fixed stroke width for component body /
// courtyard outlines on assembly drawing files.
const componentOutlineWidth = units.Length(100_000) // 0.1 mm

// Generator accumulates one Gerber image file: configuration (file
// function, polarity), drawing calls, and finalisation into header +
// aperture list + body + MD5 footer.
type Generator struct {
	logger logx.Logger

	fileAttributes []attr.Attribute
	apertures      *aperture.List
	attrs          *attr.Writer

	body strings.Builder

	currentAperture int // -1 = none selected yet
}

// NewGenerator returns a Generator ready to accept configuration and
// drawing calls. vendor/app/version identify the producing tool in the
// file's .GenerationSoftware attribute; the remaining parameters
// populate .ProjectId.
func NewGenerator(vendor, app, version string, creationDate time.Time, projectName, projectUUID, projectRevision string) *Generator {
	return &Generator{
		logger: logx.Default,
		fileAttributes: []attr.Attribute{
			attr.FileGenerationSoftware(vendor, app, version),
			attr.FileCreationDate(creationDate),
			attr.FileProjectID(projectName, projectUUID, projectRevision),
			attr.FilePartSingle(),
			attr.FileSameCoordinates(""),
		},
		apertures:       aperture.NewList(),
		attrs:           attr.NewWriter(),
		currentAperture: -1,
	}
}

// SetLogger overrides the geometry-warning logger.
func (g *Generator) SetLogger(l logx.Logger) { g.logger = l }

// SetFileFunctionOutlines marks this file as the board profile.
func (g *Generator) SetFileFunctionOutlines(plated bool) {
	g.fileAttributes = append(g.fileAttributes, attr.FileFunctionProfile(plated))
}

// SetFileFunctionCopper marks this file as a copper layer image. Like
// the other file-function setters it must be called exactly once per
// file; the generator does not guard against repeated calls.
func (g *Generator) SetFileFunctionCopper(layer int, side attr.CopperSide, polarity attr.Polarity) {
	g.fileAttributes = append(g.fileAttributes, attr.FileFunctionCopper(layer, side))
	g.fileAttributes = append(g.fileAttributes, attr.FilePolarity(polarity))
}

// SetFileFunctionSolderMask marks this file as a stopmask image.
func (g *Generator) SetFileFunctionSolderMask(side attr.BoardSide, polarity attr.Polarity) {
	g.fileAttributes = append(g.fileAttributes, attr.FileFunctionSolderMask(side))
	g.fileAttributes = append(g.fileAttributes, attr.FilePolarity(polarity))
}

// SetFileFunctionLegend marks this file as a silkscreen image.
func (g *Generator) SetFileFunctionLegend(side attr.BoardSide, polarity attr.Polarity) {
	g.fileAttributes = append(g.fileAttributes, attr.FileFunctionLegend(side))
	g.fileAttributes = append(g.fileAttributes, attr.FilePolarity(polarity))
}

// SetFileFunctionPaste marks this file as a solder-paste stencil image.
func (g *Generator) SetFileFunctionPaste(side attr.BoardSide, polarity attr.Polarity) {
	g.fileAttributes = append(g.fileAttributes, attr.FileFunctionPaste(side))
	g.fileAttributes = append(g.fileAttributes, attr.FilePolarity(polarity))
}

// SetFileFunctionComponent marks this file as an X3 assembly
// (component placement) file.
func (g *Generator) SetFileFunctionComponent(layer int, side attr.BoardSide) {
	g.fileAttributes = append(g.fileAttributes, attr.FileFunctionComponent(layer, side))
}

// SetLayerPolarity emits %LPD*% (positive) or %LPC*% (negative) into
// the body immediately. Unlike the file-function setters this can
// legally be called more than once per file: silkscreen files paint
// positive legend then switch to negative polarity to clip stopmask
// openings.
func (g *Generator) SetLayerPolarity(p attr.Polarity) {
	switch p {
	case attr.Positive:
		g.body.WriteString("%LPD*%\n")
	case attr.Negative:
		g.body.WriteString("%LPC*%\n")
	default:
		panic(fmt.Sprintf("gerber: unknown polarity %d", p))
	}
}

func fmtCoord(l units.Length) string { return strconv.FormatInt(int64(l), 10) }

func (g *Generator) setCurrentAperture(code int) {
	if code == g.currentAperture {
		return
	}
	g.currentAperture = code
	fmt.Fprintf(&g.body, "D%d*\n", code)
}

func (g *Generator) moveTo(p geom.Point) {
	fmt.Fprintf(&g.body, "X%sY%sD02*\n", fmtCoord(p.X), fmtCoord(p.Y))
}

func (g *Generator) lineTo(p geom.Point) {
	fmt.Fprintf(&g.body, "X%sY%sD01*\n", fmtCoord(p.X), fmtCoord(p.Y))
}

func (g *Generator) arcTo(start, center, end geom.Point) {
	i := center.X - start.X
	j := center.Y - start.Y
	fmt.Fprintf(&g.body, "X%sY%sI%sJ%sD01*\n", fmtCoord(end.X), fmtCoord(end.Y), fmtCoord(i), fmtCoord(j))
}

func (g *Generator) flashAt(p geom.Point) {
	fmt.Fprintf(&g.body, "X%sY%sD03*\n", fmtCoord(p.X), fmtCoord(p.Y))
}

// functionAttr converts an optional aperture function to the optional
// attribute the aperture list attaches to a definition.
func functionAttr(f *attr.ApertureFunction) *attr.Attribute {
	if f == nil {
		return nil
	}
	a := attr.ApertureFunctionAttr(*f)
	return &a
}

// setCurrentAttributes diffs the requested object/aperture attribute
// set against the currently active one and emits only the changes.
// Empty strings and nil pointers mean "no such attribute".
func (g *Generator) setCurrentAttributes(apertureFunction *attr.ApertureFunction, net *string,
	component, pin, signal, value string, mountType *attr.MountType,
	manufacturer, mpn, footprint string, rotation *units.Angle) {
	var attrs []attr.Attribute
	if apertureFunction != nil {
		attrs = append(attrs, attr.ApertureFunctionAttr(*apertureFunction))
	}
	if net != nil {
		attrs = append(attrs, attr.ObjectNet(*net))
	}
	if component != "" {
		attrs = append(attrs, attr.ObjectComponent(component))
	}
	if component != "" && pin != "" {
		attrs = append(attrs, attr.ObjectPin(component, pin, signal))
	}
	if value != "" {
		attrs = append(attrs, attr.ComponentValue(value))
	}
	if mountType != nil {
		attrs = append(attrs, attr.ComponentMountType(*mountType))
	}
	if manufacturer != "" {
		attrs = append(attrs, attr.ComponentManufacturer(manufacturer))
	}
	if mpn != "" {
		attrs = append(attrs, attr.ComponentMpn(mpn))
	}
	if footprint != "" {
		attrs = append(attrs, attr.ComponentFootprint(footprint))
	}
	if rotation != nil {
		attrs = append(attrs, attr.ComponentRotation(rotation.Degrees()))
	}
	for _, line := range g.attrs.Diff(attr.NewSet(attrs...)) {
		g.body.WriteString(line)
	}
}

// setObjectAttributes is setCurrentAttributes for the common drawing
// calls that carry no component-detail attributes.
func (g *Generator) setObjectAttributes(apertureFunction *attr.ApertureFunction, net *string, component, pin, signal string) {
	g.setCurrentAttributes(apertureFunction, net, component, pin, signal, "", nil, "", "", "", nil)
}

// DrawLine strokes a straight segment of the given width with a
// circular aperture, as a D02 move followed by a D01 interpolation.
func (g *Generator) DrawLine(start, end geom.Point, width units.Length, function *attr.ApertureFunction, net *string, component string) {
	if width < 0 {
		g.logger.Printf("gerber: skipping line with negative width %v", width)
		return
	}
	g.setCurrentAperture(g.apertures.AddCircle(width, functionAttr(function)))
	g.setObjectAttributes(nil, net, component, "", "")
	g.moveTo(start)
	g.lineTo(end)
}

// DrawPathOutline strokes path with a circular aperture of the given
// width, following straight or arc segments per vertex bulge angle.
func (g *Generator) DrawPathOutline(path geom.Path, width units.Length, function *attr.ApertureFunction, net *string, component string) {
	if len(path.Vertices) < 2 {
		g.logger.Printf("gerber: skipping path outline with fewer than 2 vertices")
		return
	}
	if width < 0 {
		g.logger.Printf("gerber: skipping path outline with negative width %v", width)
		return
	}
	g.setCurrentAperture(g.apertures.AddCircle(width, functionAttr(function)))
	g.setObjectAttributes(nil, net, component, "", "")
	g.moveTo(path.Vertices[0].Pos)
	g.strokeSegments(path)
}

// DrawComponentOutline strokes a component body or courtyard outline
// on an assembly drawing file, with the full component attribute set
// (value, mount type, manufacturer, MPN, footprint, rotation). The
// stroke width is fixed; outline shape carries the information.
func (g *Generator) DrawComponentOutline(path geom.Path, rotation units.Angle, designator, value string, mountType attr.MountType, manufacturer, mpn, footprint string, function *attr.ApertureFunction) {
	if len(path.Vertices) < 2 {
		g.logger.Printf("gerber: skipping component outline with fewer than 2 vertices")
		return
	}
	g.setCurrentAperture(g.apertures.AddCircle(componentOutlineWidth, functionAttr(function)))
	g.setCurrentAttributes(nil, nil, designator, "", "", value, &mountType, manufacturer, mpn, footprint, &rotation)
	g.moveTo(path.Vertices[0].Pos)
	g.strokeSegments(path)
}

// strokeSegments emits the interpolation commands for every segment of
// path after the initial move. An arc segment switches to G02/G03 for
// its one command and restores G01 immediately, so the generator is
// always back in linear mode between segments.
func (g *Generator) strokeSegments(path geom.Path) {
	for i := 1; i < len(path.Vertices); i++ {
		from := path.Vertices[i-1]
		to := path.Vertices[i]
		if from.Bulge == 0 {
			g.lineTo(to.Pos)
			continue
		}
		if from.Bulge < 0 {
			g.body.WriteString("G02*\n")
		} else {
			g.body.WriteString("G03*\n")
		}
		center := geom.ArcCenter(from.Pos, to.Pos, from.Bulge)
		g.arcTo(from.Pos, center, to.Pos)
		g.body.WriteString("G01*\n")
	}
}

// DrawPathArea fills a closed path as a G36/G37 region. The function
// attribute, when given, is attached to the object as well as the
// region's (semantically ignored) 10 um aperture.
func (g *Generator) DrawPathArea(path geom.Path, function *attr.ApertureFunction, net *string, component string) {
	if !path.IsClosed() {
		g.logger.Printf("gerber: skipping non-closed area path")
		return
	}
	g.setCurrentAperture(g.apertures.AddCircle(regionApertureDiameter, functionAttr(function)))
	g.setObjectAttributes(function, net, component, "", "")

	g.body.WriteString("G36*\n")
	g.moveTo(path.Vertices[0].Pos)
	g.strokeSegments(path)
	g.body.WriteString("G37*\n")
}

// FlashCircle flashes a circular aperture at position. A zero diameter
// is allowed (a point flash, used e.g. for fiducial markers).
func (g *Generator) FlashCircle(position geom.Point, diameter units.Length, function *attr.ApertureFunction, net *string, component, pin, signal string) {
	if diameter < 0 {
		g.logger.Printf("gerber: skipping circle flash with negative diameter %v", diameter)
		return
	}
	g.setCurrentAperture(g.apertures.AddCircle(diameter, functionAttr(function)))
	g.setObjectAttributes(nil, net, component, pin, signal)
	g.flashAt(position)
}

// FlashRect flashes a rectangular aperture at position.
func (g *Generator) FlashRect(position geom.Point, width, height units.Length, rotation units.Angle, function *attr.ApertureFunction, net *string, component, pin, signal string) {
	if width <= 0 || height <= 0 {
		g.logger.Printf("gerber: skipping rect flash with non-positive size %vx%v", width, height)
		return
	}
	g.setCurrentAperture(g.apertures.AddRect(width, height, rotation, functionAttr(function)))
	g.setObjectAttributes(nil, net, component, pin, signal)
	g.flashAt(position)
}

// FlashObround flashes an obround aperture at position.
func (g *Generator) FlashObround(position geom.Point, width, height units.Length, rotation units.Angle, function *attr.ApertureFunction, net *string, component, pin, signal string) {
	if width <= 0 || height <= 0 {
		g.logger.Printf("gerber: skipping obround flash with non-positive size %vx%v", width, height)
		return
	}
	g.setCurrentAperture(g.apertures.AddObround(width, height, rotation, functionAttr(function)))
	g.setObjectAttributes(nil, net, component, pin, signal)
	g.flashAt(position)
}

// FlashOctagon flashes an octagon aperture at position. width and
// height may differ: the octagon is a width x height rectangle with
// its corners chamfered, regular only when width == height.
func (g *Generator) FlashOctagon(position geom.Point, width, height units.Length, rotation units.Angle, function *attr.ApertureFunction, net *string, component, pin, signal string) {
	if width <= 0 || height <= 0 {
		g.logger.Printf("gerber: skipping octagon flash with non-positive size %vx%v", width, height)
		return
	}
	g.setCurrentAperture(g.apertures.AddOctagon(width, height, rotation, functionAttr(function)))
	g.setObjectAttributes(nil, net, component, pin, signal)
	g.flashAt(position)
}

// FlashOutline flashes a free-form polygon aperture built from path (a
// closed, non-curved outline in the aperture's own local frame) at
// position, rotated by rotation. Used for custom pad shapes that don't
// fit the round/rect/obround/octagon templates.
func (g *Generator) FlashOutline(name string, path geom.Path, position geom.Point, rotation units.Angle, function *attr.ApertureFunction, net *string, component, pin, signal string) {
	if len(path.Vertices) < 5 || !path.IsClosed() {
		g.logger.Printf("gerber: skipping outline flash %q with fewer than 4 closed edges", name)
		return
	}
	g.setCurrentAperture(g.apertures.AddOutline(name, path, rotation, functionAttr(function)))
	g.setObjectAttributes(nil, net, component, pin, signal)
	g.flashAt(position)
}

// FlashComponent flashes the zero-size aperture marking a component's
// reference-designator origin, for assembly drawing files.
func (g *Generator) FlashComponent(position geom.Point, rotation units.Angle, designator, value string, mountType attr.MountType, manufacturer, mpn, footprint string) {
	g.setCurrentAperture(g.apertures.AddComponentMain())
	g.setCurrentAttributes(nil, nil, designator, "", "", value, &mountType, manufacturer, mpn, footprint, &rotation)
	g.flashAt(position)
}

// FlashComponentPin flashes the aperture marking a single component
// pin's origin on an assembly drawing file. Pin 1 gets a distinct
// aperture so it stays identifiable in assembly viewers.
func (g *Generator) FlashComponentPin(position geom.Point, rotation units.Angle, designator, value string, mountType attr.MountType, manufacturer, mpn, footprint, pin, signal string, isPin1 bool) {
	g.setCurrentAperture(g.apertures.AddComponentPin(isPin1))
	g.setCurrentAttributes(nil, nil, designator, pin, signal, value, &mountType, manufacturer, mpn, footprint, &rotation)
	g.flashAt(position)
}

// Generate assembles the complete Gerber file: header, aperture list,
// accumulated body, and MD5 footer.
func (g *Generator) Generate() string {
	var out strings.Builder

	out.WriteString("G04 --- HEADER BEGIN --- *\n")
	for _, a := range g.fileAttributes {
		out.WriteString(a.ToGerberString())
	}
	// Coordinate format 6.6 with leading zeros omitted and absolute
	// coordinates: integer nanometre values serialize directly.
	out.WriteString("%FSLAX66Y66*%\n")
	out.WriteString("%MOMM*%\n")
	out.WriteString("G01*\n")
	// Multi-quadrant arc mode; single-quadrant mode is deprecated and
	// buggy in some CAM software.
	out.WriteString("G75*\n")
	out.WriteString("G04 --- HEADER END --- *\n")

	out.WriteString("G04 --- APERTURE LIST BEGIN --- *\n")
	out.WriteString(g.apertures.GenerateString())
	out.WriteString("G04 --- APERTURE LIST END --- *\n")

	out.WriteString("G04 --- BOARD BEGIN --- *\n")
	out.WriteString(g.body.String())
	out.WriteString("G04 --- BOARD END --- *\n")

	checksum := calcMD5(out.String())
	out.WriteString(attr.FileMD5(checksum).ToGerberString())
	out.WriteString("M02*\n")

	return out.String()
}

// SaveToFile writes the generated file to path, failing if it cannot
// create or write the file.
func (g *Generator) SaveToFile(path string) error {
	if err := os.WriteFile(path, []byte(g.Generate()), 0o644); err != nil {
		return fmt.Errorf("gerber: writing %s: %w", path, err)
	}
	return nil
}

// calcMD5 computes the footer checksum: the hex MD5 of s with every
// newline removed.
func calcMD5(s string) string {
	stripped := strings.ReplaceAll(s, "\n", "")
	sum := md5.Sum([]byte(stripped))
	return hex.EncodeToString(sum[:])
}
