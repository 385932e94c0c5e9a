package units

import "testing"

func TestFromMillimetersRoundTrip(t *testing.T) {
	cases := []struct {
		mm   float64
		want Length
	}{
		{10, 10_000_000},
		{0.0011, 1100},
		{-1.6, -1_600_000},
		{0, 0},
	}
	for _, c := range cases {
		got := FromMillimeters(c.mm)
		if got != c.want {
			t.Errorf("FromMillimeters(%v) = %d, want %d", c.mm, got, c.want)
		}
	}
}

func TestLengthToMmString(t *testing.T) {
	cases := []struct {
		l    Length
		want string
	}{
		{1_600_000, "1.600000"},
		{800_000, "0.800000"},
		{-1_234_500, "-1.234500"},
		{0, "0.000000"},
	}
	for _, c := range cases {
		if got := c.l.ToMmString(); got != c.want {
			t.Errorf("Length(%d).ToMmString() = %q, want %q", c.l, got, c.want)
		}
	}
}

func TestLengthToNmString(t *testing.T) {
	cases := []struct {
		l    Length
		want string
	}{
		{10_000_000, "10000000"},
		{-5_000_000, "-5000000"},
		{0, "0"},
	}
	for _, c := range cases {
		if got := c.l.ToNmString(); got != c.want {
			t.Errorf("Length(%d).ToNmString() = %q, want %q", c.l, got, c.want)
		}
	}
}

func TestAngleNormalized(t *testing.T) {
	cases := []struct {
		in, want Angle
	}{
		{FromDegrees(370), FromDegrees(10)},
		{FromDegrees(-10), FromDegrees(350)},
		{FromDegrees(360), FromDegrees(0)},
		{FromDegrees(0), FromDegrees(0)},
	}
	for _, c := range cases {
		if got := c.in.Normalized(); got != c.want {
			t.Errorf("Angle(%d).Normalized() = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestAngleToDegString(t *testing.T) {
	cases := []struct {
		a    Angle
		want string
	}{
		{FromDegrees(90), "90"},
		{FromDegrees(-180), "-180"},
		{FromDegrees(0.5), "0.5"},
		{FromDegrees(0), "0"},
	}
	for _, c := range cases {
		if got := c.a.ToDegString(); got != c.want {
			t.Errorf("Angle.ToDegString() = %q, want %q", got, c.want)
		}
	}
}

func TestRoundToGrid(t *testing.T) {
	grid := FromDegrees(45)
	// Exactly on the grid: unchanged.
	if got := RoundToGrid(FromDegrees(90), grid); got != FromDegrees(90) {
		t.Errorf("RoundToGrid(90, 45) = %d, want %d", got, FromDegrees(90))
	}
	// Within one micro-degree of a grid multiple: snaps.
	near := FromDegrees(90) + 1
	if got := RoundToGrid(near, grid); got != FromDegrees(90) {
		t.Errorf("RoundToGrid(90+1ud, 45) = %d, want %d", got, FromDegrees(90))
	}
	// Far from any grid multiple: unchanged.
	off := FromDegrees(91)
	if got := RoundToGrid(off, grid); got != off {
		t.Errorf("RoundToGrid(91, 45) = %d, want %d", got, off)
	}
}

func TestNewPositiveLength(t *testing.T) {
	if _, err := NewPositiveLength(0); err == nil {
		t.Error("NewPositiveLength(0) should error")
	}
	if _, err := NewPositiveLength(-1); err == nil {
		t.Error("NewPositiveLength(-1) should error")
	}
	if got, err := NewPositiveLength(5); err != nil || got != 5 {
		t.Errorf("NewPositiveLength(5) = %d, %v, want 5, nil", got, err)
	}
}

func TestNewUnsignedLength(t *testing.T) {
	if _, err := NewUnsignedLength(-1); err == nil {
		t.Error("NewUnsignedLength(-1) should error")
	}
	if got, err := NewUnsignedLength(0); err != nil || got != 0 {
		t.Errorf("NewUnsignedLength(0) = %d, %v, want 0, nil", got, err)
	}
}
