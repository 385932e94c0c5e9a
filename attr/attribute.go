// Package attr implements the Gerber X2/X3 attribute value model:
// typed file/aperture/object/delete attributes, their escaping rules,
// and the stateful differ that emits only what changed between two
// graphic objects.
package attr

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Type is the X2/X3 attribute class.
type Type int

const (
	File Type = iota
	Aperture
	Object
	Delete
)

func (t Type) char() byte {
	switch t {
	case File:
		return 'F'
	case Aperture:
		return 'A'
	case Object:
		return 'O'
	case Delete:
		return 'D'
	default:
		panic(fmt.Sprintf("attr: unknown attribute type %d", t))
	}
}

// Attribute is a single Gerber X2/X3 attribute: a typed key with zero
// or more escaped values.
type Attribute struct {
	Type   Type
	Key    string
	Values []string
}

// strictASCII reports whether this attribute's key must be restricted
// to ASCII. Only object attributes .N, .C and .P may carry UTF-8 (for
// net, component and pin names that use non-ASCII characters); every
// other attribute, including the .CVal component value, is strict ASCII.
func (a Attribute) strictASCII() bool {
	if a.Type != Object {
		return true
	}
	switch a.Key {
	case ".N", ".C", ".P":
		return false
	default:
		return true
	}
}

func (a Attribute) render() string {
	s := "T" + string(a.Type.char()) + a.Key
	strict := a.strictASCII()
	for _, v := range a.Values {
		s += "," + escapeValue(v, strict)
	}
	return s
}

// ToGerberString renders a as a G04 comment carrying the X2/X3
// attribute, for compatibility with CAM readers that choke on real X2
// extended commands.
func (a Attribute) ToGerberString() string {
	return "G04 #@! " + a.render() + "*\n"
}

// ToExcellonString renders a as an Excellon comment line.
func (a Attribute) ToExcellonString() string {
	return "; #@! " + a.render() + "\n"
}

// Unset returns a Delete attribute for key.
func Unset(key string) Attribute { return Attribute{Type: Delete, Key: key} }

// Func returns a pointer to f, for use as an optional aperture-function
// argument (nil means the object carries no function attribute).
func Func(f ApertureFunction) *ApertureFunction { return &f }

// Net returns a pointer to name, for use as an optional net-name
// argument. A non-nil empty name renders the bare no-net marker used
// for unconnected copper; nil omits the attribute entirely.
func Net(name string) *string { return &name }

// escapeValue applies the Gerber/Excellon value escaping rules: strip
// CR, fold LF to space, then either an ASCII whitelist filter (after
// Unicode NFKD decomposition) or backslash/percent/asterisk/comma
// escaping for UTF-8-permitted values, and finally truncate to 65535
// characters.
func escapeValue(value string, strictASCII bool) string {
	v := strings.ReplaceAll(value, "\r", "")
	v = strings.ReplaceAll(v, "\n", " ")

	if strictASCII {
		v = norm.NFKD.String(v)
		var b strings.Builder
		for _, r := range v {
			if isValidStrictChar(r) {
				b.WriteRune(r)
			}
		}
		v = b.String()
	} else {
		v = escapeReserved(v)
	}

	if r := []rune(v); len(r) > 65535 {
		v = string(r[:65535])
	}
	return v
}

// escapeReserved backslash-escapes the characters that are reserved in
// Gerber/Excellon syntax (`\`, `%`, `*`, `,`) as \uXXXX, the form the X2/X3
// spec requires for UTF-8-permitted attribute values (.N, .C, .P).
func escapeReserved(v string) string {
	var b strings.Builder
	for _, r := range v {
		switch r {
		case '\\', '%', '*', ',':
			fmt.Fprintf(&b, `\u%04X`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

const validStrictChars = "-a-zA-Z0-9_+/!?<>\"'(){}.|&@# ;$:="

func isValidStrictChar(r rune) bool {
	if r > 127 {
		return false
	}
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	switch r {
	case '-', '_', '+', '/', '!', '?', '<', '>', '"', '\'', '(', ')', '{', '}',
		'.', '|', '&', '@', '#', ' ', ';', '$', ':', '=':
		return true
	}
	return false
}

// --- File attributes ---

func FileGenerationSoftware(vendor, application, version string) Attribute {
	values := []string{vendor, application}
	if version != "" {
		values = append(values, version)
	}
	return Attribute{Type: File, Key: ".GenerationSoftware", Values: values}
}

func FileCreationDate(t time.Time) Attribute {
	return Attribute{Type: File, Key: ".CreationDate", Values: []string{t.Format(time.RFC3339)}}
}

func FileProjectID(name, uuid, revision string) Attribute {
	return Attribute{Type: File, Key: ".ProjectId", Values: []string{name, uuid, revision}}
}

func FilePartSingle() Attribute {
	return Attribute{Type: File, Key: ".Part", Values: []string{"Single"}}
}

func FileSameCoordinates(identifier string) Attribute {
	var values []string
	if identifier != "" {
		values = []string{identifier}
	}
	return Attribute{Type: File, Key: ".SameCoordinates", Values: values}
}

func FileFunctionProfile(plated bool) Attribute {
	p := "NP"
	if plated {
		p = "P"
	}
	return Attribute{Type: File, Key: ".FileFunction", Values: []string{"Profile", p}}
}

// CopperSide identifies which side of the stack a copper layer is on.
type CopperSide int

const (
	CopperTop CopperSide = iota
	CopperInner
	CopperBottom
)

func FileFunctionCopper(layer int, side CopperSide) Attribute {
	values := []string{"Copper", fmt.Sprintf("L%d", layer)}
	switch side {
	case CopperTop:
		values = append(values, "Top")
	case CopperInner:
		values = append(values, "Inr")
	case CopperBottom:
		values = append(values, "Bot")
	default:
		panic(fmt.Sprintf("attr: unknown copper side %d", side))
	}
	return Attribute{Type: File, Key: ".FileFunction", Values: values}
}

// BoardSide identifies top/bottom for non-copper layer functions.
type BoardSide int

const (
	Top BoardSide = iota
	Bottom
)

func boardSideToken(side BoardSide) string {
	switch side {
	case Top:
		return "Top"
	case Bottom:
		return "Bot"
	default:
		panic(fmt.Sprintf("attr: unknown board side %d", side))
	}
}

func FileFunctionSolderMask(side BoardSide) Attribute {
	return Attribute{Type: File, Key: ".FileFunction", Values: []string{"Soldermask", boardSideToken(side)}}
}

func FileFunctionLegend(side BoardSide) Attribute {
	return Attribute{Type: File, Key: ".FileFunction", Values: []string{"Legend", boardSideToken(side)}}
}

func FileFunctionPaste(side BoardSide) Attribute {
	return Attribute{Type: File, Key: ".FileFunction", Values: []string{"Paste", boardSideToken(side)}}
}

func FileFunctionComponent(layer int, side BoardSide) Attribute {
	return Attribute{Type: File, Key: ".FileFunction", Values: []string{"Component", fmt.Sprintf("L%d", layer), boardSideToken(side)}}
}

func FileFunctionPlatedThroughHole(fromLayer, toLayer int) Attribute {
	return Attribute{Type: File, Key: ".FileFunction", Values: []string{"Plated", fmt.Sprint(fromLayer), fmt.Sprint(toLayer), "PTH"}}
}

func FileFunctionNonPlatedThroughHole(fromLayer, toLayer int) Attribute {
	return Attribute{Type: File, Key: ".FileFunction", Values: []string{"NonPlated", fmt.Sprint(fromLayer), fmt.Sprint(toLayer), "NPTH"}}
}

// FileFunctionMixedPlating renders the unofficial but Ucamco-recommended
// "MixedPlating" file function used when both PTH and NPTH holes are
// emitted into a single drill file.
func FileFunctionMixedPlating(fromLayer, toLayer int) Attribute {
	return Attribute{Type: File, Key: ".FileFunction", Values: []string{"MixedPlating", fmt.Sprint(fromLayer), fmt.Sprint(toLayer)}}
}

// Polarity is the dark/clear state of a Gerber layer or region.
type Polarity int

const (
	Positive Polarity = iota
	Negative
)

func FilePolarity(p Polarity) Attribute {
	switch p {
	case Positive:
		return Attribute{Type: File, Key: ".FilePolarity", Values: []string{"Positive"}}
	case Negative:
		return Attribute{Type: File, Key: ".FilePolarity", Values: []string{"Negative"}}
	default:
		panic(fmt.Sprintf("attr: unknown polarity %d", p))
	}
}

func FileMD5(md5hex string) Attribute {
	return Attribute{Type: File, Key: ".MD5", Values: []string{md5hex}}
}

// --- Aperture attributes ---

// ApertureFunction is the set of aperture/object function tokens the
// core emits (spec.md Glossary + §4.1).
type ApertureFunction int

const (
	FuncProfile ApertureFunction = iota
	FuncViaDrill
	FuncComponentDrill
	FuncMechanicalDrill
	FuncConductor
	FuncNonConductor
	FuncComponentPad
	FuncSmdPadCopperDefined
	FuncSmdPadSolderMaskDefined
	FuncViaPad
	FuncComponentMain
	FuncComponentPin
	FuncComponentOutlineBody
	FuncComponentOutlineCourtyard
)

func apertureFunctionValues(f ApertureFunction) []string {
	switch f {
	case FuncProfile:
		return []string{"Profile"}
	case FuncViaDrill:
		return []string{"ViaDrill"}
	case FuncComponentDrill:
		return []string{"ComponentDrill"}
	case FuncMechanicalDrill:
		return []string{"MechanicalDrill"}
	case FuncConductor:
		return []string{"Conductor"}
	case FuncNonConductor:
		return []string{"NonConductor"}
	case FuncComponentPad:
		return []string{"ComponentPad"}
	case FuncSmdPadCopperDefined:
		return []string{"SMDPad", "CuDef"}
	case FuncSmdPadSolderMaskDefined:
		return []string{"SMDPad", "SMDef"}
	case FuncViaPad:
		return []string{"ViaPad"}
	case FuncComponentMain:
		return []string{"ComponentMain"}
	case FuncComponentPin:
		return []string{"ComponentPin"}
	case FuncComponentOutlineBody:
		return []string{"ComponentOutline", "Body"}
	case FuncComponentOutlineCourtyard:
		return []string{"ComponentOutline", "Courtyard"}
	default:
		panic(fmt.Sprintf("attr: unknown aperture function %d", f))
	}
}

func ApertureFunctionAttr(f ApertureFunction) Attribute {
	return Attribute{Type: Aperture, Key: ".AperFunction", Values: apertureFunctionValues(f)}
}

// ApertureFunctionMixedPlatingDrill prepends the Plated/PTH or
// NonPlated/NPTH marker tokens used only in mixed-plating Excellon
// files (spec.md §4.1, §4.5).
func ApertureFunctionMixedPlatingDrill(plated bool, f ApertureFunction) Attribute {
	values := apertureFunctionValues(f)
	if plated {
		values = append([]string{"Plated", "PTH"}, values...)
	} else {
		values = append([]string{"NonPlated", "NPTH"}, values...)
	}
	return Attribute{Type: Aperture, Key: ".AperFunction", Values: values}
}

// --- Object attributes ---

func ObjectNet(net string) Attribute {
	return Attribute{Type: Object, Key: ".N", Values: []string{net}}
}

func ObjectComponent(component string) Attribute {
	return Attribute{Type: Object, Key: ".C", Values: []string{component}}
}

func ObjectPin(component, pin, signal string) Attribute {
	values := []string{component, pin}
	if signal != "" {
		values = append(values, signal)
	}
	return Attribute{Type: Object, Key: ".P", Values: values}
}

// MountType is the assembly mount type of a component.
type MountType int

const (
	MountTht MountType = iota
	MountSmt
	MountFiducial
	MountOther
)

func mountTypeToken(t MountType) string {
	switch t {
	case MountTht:
		return "THT"
	case MountSmt:
		return "SMT"
	case MountFiducial:
		return "Fiducial"
	case MountOther:
		return "Other"
	default:
		panic(fmt.Sprintf("attr: unknown mount type %d", t))
	}
}

func ComponentRotation(degrees float64) Attribute {
	return Attribute{Type: Object, Key: ".CRot", Values: []string{fmt.Sprintf("%g", degrees)}}
}

func ComponentManufacturer(manufacturer string) Attribute {
	return Attribute{Type: Object, Key: ".CMfr", Values: []string{manufacturer}}
}

func ComponentMpn(mpn string) Attribute {
	return Attribute{Type: Object, Key: ".CMPN", Values: []string{mpn}}
}

func ComponentValue(value string) Attribute {
	return Attribute{Type: Object, Key: ".CVal", Values: []string{value}}
}

func ComponentMountType(t MountType) Attribute {
	return Attribute{Type: Object, Key: ".CMnt", Values: []string{mountTypeToken(t)}}
}

func ComponentFootprint(footprint string) Attribute {
	return Attribute{Type: Object, Key: ".CFtp", Values: []string{footprint}}
}
