// Package aperture builds and deduplicates the Gerber aperture list: the
// %ADDnn...*% standard-template declarations, the %AM<name>*...*%
// macro definitions they sometimes need, and the D-code a generator
// must declare before it can flash or stroke with them.
package aperture

import (
	"fmt"
	"math"
	"strings"

	"github.com/gmlewis/fabcore/attr"
	"github.com/gmlewis/fabcore/geom"
	"github.com/gmlewis/fabcore/units"
)

// entry is one declared aperture: its D-code, rendered template string
// (without the D-code prefix) and optional function attribute.
type entry struct {
	code       int
	definition string
	function   *attr.Attribute
}

// macroDef is one %AM<name>*<body>*% definition, emitted once before
// its first use by a template that references <name>.
type macroDef struct {
	name string
	body string // primitive statements, each already "*\n"-terminated
}

// List accumulates aperture definitions in first-use order, assigning
// each distinct (definition, function) pair the next free D-code
// starting at 10, since D-codes below 10 are reserved for the G-code/M-code
// command set. Non-standard shapes (rotated rectangles/obrounds,
// octagons, free-form outlines) are declared as aperture macros, kept
// in a separate insertion-ordered table deduplicated by macro body so
// identical shapes share one %AM definition.
type List struct {
	entries []entry
	byKey   map[string]int // definition+function fingerprint -> D-code
	next    int

	macros     []macroDef
	macroByKey map[string]string // macro body -> macro name
	macroNext  int
}

// NewList returns an empty aperture list.
func NewList() *List {
	return &List{byKey: map[string]int{}, next: 10, macroByKey: map[string]string{}}
}

func key(definition string, function *attr.Attribute) string {
	if function == nil {
		return definition
	}
	return definition + "|" + function.ToGerberString()
}

// addAperture is the core dedup helper: it returns the D-code for
// (definition, function), declaring a new aperture only if this exact
// pair hasn't been seen before.
func (l *List) addAperture(definition string, function *attr.Attribute) int {
	k := key(definition, function)
	if code, ok := l.byKey[k]; ok {
		return code
	}
	code := l.next
	l.next++
	l.byKey[k] = code
	l.entries = append(l.entries, entry{code: code, definition: definition, function: function})
	return code
}

// addMacro declares (or reuses) a macro with the given body, returning
// its name. prefix names the macro family (e.g. "RECTROT") so distinct
// shapes stay human-readable in the output; a counter disambiguates
// distinct bodies sharing a prefix.
func (l *List) addMacro(prefix, body string) string {
	if name, ok := l.macroByKey[body]; ok {
		return name
	}
	l.macroNext++
	name := fmt.Sprintf("%s%d", prefix, l.macroNext)
	l.macroByKey[body] = name
	l.macros = append(l.macros, macroDef{name: name, body: body})
	return name
}

// AddCircle declares (or reuses) a circular aperture of the given
// diameter (which may be zero, for a draughtsman's point aperture) and
// returns its D-code.
func (l *List) AddCircle(diameter units.Length, function *attr.Attribute) int {
	def := fmt.Sprintf("C,%s", diameter.ToMmString())
	return l.addAperture(def, function)
}

// AddObround declares an obround (stadium) aperture, collapsing to a
// circle when width equals height since Gerber has no distinct obround
// primitive for that degenerate case. An unrotated obround uses the
// standard O template; a rotated one has no standard template (O
// carries no rotation field), so it is built as a macro combining a
// center rectangle (primitive 21) with a round cap (primitive 1) at
// each end of the obround's long axis.
func (l *List) AddObround(width, height units.Length, rotation units.Angle, function *attr.Attribute) int {
	if width == height {
		return l.AddCircle(width, function)
	}
	if rotation == 0 {
		def := fmt.Sprintf("O,%sX%s", width.ToMmString(), height.ToMmString())
		return l.addAperture(def, function)
	}
	body := obroundMacroBody(width, height, rotation)
	name := l.addMacro("OBROUND", body)
	return l.addAperture(name, function)
}

// obroundMacroBody renders the macro primitives for an obround of the
// given width/height, rotated about the origin by rotation: a center
// rectangle the length of the straight section, plus two circles of
// the short dimension's diameter capping its ends.
func obroundMacroBody(width, height units.Length, rotation units.Angle) string {
	horizontal := width >= height
	long, short := width, height
	if !horizontal {
		long, short = height, width
	}
	half := (long - short) / 2
	rot := rotation.ToDegString()

	var b strings.Builder
	if horizontal {
		fmt.Fprintf(&b, "21,1,%s,%s,0,0,%s*\n", (long-short).ToMmString(), short.ToMmString(), rot)
		fmt.Fprintf(&b, "1,1,%s,%s,0,%s*\n", short.ToMmString(), half.ToMmString(), rot)
		fmt.Fprintf(&b, "1,1,%s,%s,0,%s*\n", short.ToMmString(), (-half).ToMmString(), rot)
	} else {
		fmt.Fprintf(&b, "21,1,%s,%s,0,0,%s*\n", short.ToMmString(), (long-short).ToMmString(), rot)
		fmt.Fprintf(&b, "1,1,%s,0,%s,%s*\n", short.ToMmString(), half.ToMmString(), rot)
		fmt.Fprintf(&b, "1,1,%s,0,%s,%s*\n", short.ToMmString(), (-half).ToMmString(), rot)
	}
	return b.String()
}

// AddRect declares a rectangular aperture. An unrotated rectangle uses
// the standard R template; a rotated one has no standard template (R
// carries no rotation field), so it is built as a macro around
// primitive 21 (center line), whose own rotation parameter rotates the
// whole rectangle about the macro origin.
func (l *List) AddRect(width, height units.Length, rotation units.Angle, function *attr.Attribute) int {
	if rotation == 0 {
		def := fmt.Sprintf("R,%sX%s", width.ToMmString(), height.ToMmString())
		return l.addAperture(def, function)
	}
	body := fmt.Sprintf("21,1,%s,%s,0,0,%s*\n", width.ToMmString(), height.ToMmString(), rotation.ToDegString())
	name := l.addMacro("RECTROT", body)
	return l.addAperture(name, function)
}

// AddOctagon declares an octagon aperture inscribed in a width x height
// rectangle with its four corners chamfered at 45 degrees, regular
// only when width == height. Gerber has no standard octagon template,
// so this is always a macro built from primitive 4 (outline): eight
// vertices computed in the unrotated frame, with rotation applied via
// the primitive's own trailing rotation parameter.
func (l *List) AddOctagon(width, height units.Length, rotation units.Angle, function *attr.Attribute) int {
	body := octagonMacroBody(width, height, rotation)
	name := l.addMacro("OCTAGON", body)
	return l.addAperture(name, function)
}

// octagonMacroBody computes the eight chamfered-corner vertices of a
// width x height octagon, centered at the origin, and renders them as
// a primitive-4 outline statement with rotation as its final parameter.
func octagonMacroBody(width, height units.Length, rotation units.Angle) string {
	hw := float64(width) / 2
	hh := float64(height) / 2
	short := math.Min(float64(width), float64(height))
	chamfer := short * (2 - math.Sqrt2) / 2

	pts := [8][2]float64{
		{hw, hh - chamfer},
		{hw - chamfer, hh},
		{-(hw - chamfer), hh},
		{-hw, hh - chamfer},
		{-hw, -(hh - chamfer)},
		{-(hw - chamfer), -hh},
		{hw - chamfer, -hh},
		{hw, -(hh - chamfer)},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "4,1,8")
	for _, p := range pts {
		fmt.Fprintf(&b, ",%s,%s", roundLength(p[0]).ToMmString(), roundLength(p[1]).ToMmString())
	}
	// Close the outline back to its first vertex, then the trailing
	// rotation parameter.
	fmt.Fprintf(&b, ",%s,%s,%s*\n", roundLength(pts[0][0]).ToMmString(), roundLength(pts[0][1]).ToMmString(), rotation.ToDegString())
	return b.String()
}

func roundLength(nanometres float64) units.Length {
	return units.Length(math.Round(nanometres))
}

// AddOutline declares a free-form polygon aperture macro built from an
// arbitrary closed, non-curved outline (primitive 4), used by the
// generator's FlashOutline for custom pad shapes that aren't one of the
// standard templates. path must already be closed with all-zero
// bulges (the caller is responsible, per spec.md §4.2).
func (l *List) AddOutline(name string, path geom.Path, rotation units.Angle, function *attr.Attribute) int {
	var b strings.Builder
	fmt.Fprintf(&b, "4,1,%d", len(path.Vertices)-1)
	for _, v := range path.Vertices {
		fmt.Fprintf(&b, ",%s,%s", v.Pos.X.ToMmString(), v.Pos.Y.ToMmString())
	}
	fmt.Fprintf(&b, ",%s*\n", rotation.ToDegString())
	macroName := l.addMacro(strings.ToUpper(name), b.String())
	return l.addAperture(macroName, function)
}

// AddComponentMain declares the zero-size aperture used to flash a
// component's reference-designator origin point.
func (l *List) AddComponentMain() int {
	f := attr.ApertureFunctionAttr(attr.FuncComponentMain)
	return l.AddCircle(0, &f)
}

// AddComponentPin declares the aperture used to flash a component
// pin's origin point: a zero-size circle, except pin 1 which gets a
// small diamond so it stays identifiable in assembly viewers.
func (l *List) AddComponentPin(isPin1 bool) int {
	f := attr.ApertureFunctionAttr(attr.FuncComponentPin)
	if isPin1 {
		return l.addAperture("P,0.360000X4", &f)
	}
	return l.AddCircle(0, &f)
}

// GenerateString renders every %AM macro definition (in first-use
// order, each once), followed by the full %ADDnn...*% declaration
// block plus any aperture-function attribute comments, in D-code
// order. A function comment is suppressed when it is identical to the
// most recently emitted function comment; apertures without a function
// emit none and leave that comparison unchanged.
func (l *List) GenerateString() string {
	var out string
	for _, m := range l.macros {
		out += fmt.Sprintf("%%AM%s*\n%s%%\n", m.name, m.body)
	}

	var lastFunction string
	haveLast := false
	for _, e := range l.entries {
		if e.function != nil {
			rendered := e.function.ToGerberString()
			if !haveLast || rendered != lastFunction {
				out += rendered
				lastFunction = rendered
				haveLast = true
			}
		}
		out += fmt.Sprintf("%%ADD%d%s*%%\n", e.code, e.definition)
	}
	return out
}

// Len returns the number of distinct apertures declared so far.
func (l *List) Len() int { return len(l.entries) }
