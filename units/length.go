// Package units implements the fixed-point length and angle types the
// fabrication core uses for every coordinate, and their Gerber/Excellon
// decimal serialization.
package units

import (
	"fmt"
	"strings"
)

// Length is a signed distance in nanometres.
type Length int64

// NewPositiveLength returns l if it is strictly greater than zero.
func NewPositiveLength(l Length) (Length, error) {
	if l <= 0 {
		return 0, fmt.Errorf("units: length %d is not positive", l)
	}
	return l, nil
}

// NewUnsignedLength returns l if it is zero or greater.
func NewUnsignedLength(l Length) (Length, error) {
	if l < 0 {
		return 0, fmt.Errorf("units: length %d is negative", l)
	}
	return l, nil
}

// FromMillimeters converts a millimetre quantity to nanometres.
func FromMillimeters(mm float64) Length {
	return Length(mm*1e6 + sign(mm)*0.5)
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}

// Millimeters returns l as a floating point millimetre value.
func (l Length) Millimeters() float64 {
	return float64(l) / 1e6
}

// ToMmString renders l as a signed decimal with exactly six fraction
// digits, no thousands separator, e.g. "-1.234500".
func (l Length) ToMmString() string {
	neg := l < 0
	v := int64(l)
	if neg {
		v = -v
	}
	whole := v / 1_000_000
	frac := v % 1_000_000
	s := fmt.Sprintf("%d.%06d", whole, frac)
	if neg {
		s = "-" + s
	}
	return s
}

// ToNmString renders l as a signed decimal integer of nanometres with
// no fraction digits and no leading zeros, as required by the Gerber
// 6.6 coordinate format (leading zeros omitted).
func (l Length) ToNmString() string {
	return fmt.Sprintf("%d", int64(l))
}

// Angle is a signed angle in micro-degrees (1e-6 degree).
type Angle int64

// FromDegrees converts a decimal-degree quantity to micro-degrees.
func FromDegrees(deg float64) Angle {
	return Angle(deg*1e6 + sign(deg)*0.5)
}

// Degrees returns a as a floating point degree value.
func (a Angle) Degrees() float64 {
	return float64(a) / 1e6
}

// Normalized returns a reduced to the half-open interval [0, 360) degrees.
func (a Angle) Normalized() Angle {
	const full = Angle(360_000_000)
	a %= full
	if a < 0 {
		a += full
	}
	return a
}

// ToDegString renders a as a decimal-degree string with up to six
// fraction digits, trailing zeros stripped.
func (a Angle) ToDegString() string {
	neg := a < 0
	v := int64(a)
	if neg {
		v = -v
	}
	whole := v / 1_000_000
	frac := v % 1_000_000
	s := fmt.Sprintf("%d.%06d", whole, frac)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if neg {
		s = "-" + s
	}
	return s
}

// RoundToGrid snaps a to the nearest multiple of the grid angle when it
// lies within one micro-degree of that multiple; otherwise a is returned
// unchanged.
func RoundToGrid(a, multiple Angle) Angle {
	if multiple == 0 {
		return a
	}
	rem := a % multiple
	if rem < 0 {
		rem += multiple
	}
	if rem <= 1 {
		return a - rem
	}
	if multiple-rem <= 1 {
		return a - rem + multiple
	}
	return a
}
