package attr

import "testing"

func TestWriterDiffEmitsSetOnFirstUse(t *testing.T) {
	w := NewWriter()
	lines := w.Diff(NewSet(ObjectNet("GND")))
	if len(lines) != 1 {
		t.Fatalf("Diff() = %v, want 1 line", lines)
	}
	if lines[0] != ObjectNet("GND").ToGerberString() {
		t.Errorf("Diff() = %q, want set line", lines[0])
	}
}

func TestWriterDiffUnsetsRemovedKeys(t *testing.T) {
	w := NewWriter()
	w.Diff(NewSet(ObjectNet("GND"), ObjectComponent("R1")))

	lines := w.Diff(NewSet(ObjectNet("GND")))
	if len(lines) != 1 {
		t.Fatalf("Diff() = %v, want 1 unset line for .C", lines)
	}
	if lines[0] != Unset(".C").ToGerberString() {
		t.Errorf("Diff() = %q, want unset of .C", lines[0])
	}
}

func TestWriterDiffSetOnChange(t *testing.T) {
	w := NewWriter()
	w.Diff(NewSet(ObjectNet("GND")))

	lines := w.Diff(NewSet(ObjectNet("VCC")))
	if len(lines) != 1 {
		t.Fatalf("Diff() = %v, want a single replacing set line", lines)
	}
	if lines[0] != ObjectNet("VCC").ToGerberString() {
		t.Errorf("Diff() = %q, want set VCC", lines[0])
	}
}

func TestWriterDiffUnsetPrecedesSet(t *testing.T) {
	w := NewWriter()
	w.Diff(NewSet(ObjectComponent("R1")))

	lines := w.Diff(NewSet(ObjectNet("GND")))
	if len(lines) != 2 {
		t.Fatalf("Diff() = %v, want unset then set", lines)
	}
	if lines[0] != Unset(".C").ToGerberString() {
		t.Errorf("first line = %q, want unset of .C", lines[0])
	}
	if lines[1] != ObjectNet("GND").ToGerberString() {
		t.Errorf("second line = %q, want set of .N", lines[1])
	}
}

func TestWriterDiffNoChangeEmitsNothing(t *testing.T) {
	w := NewWriter()
	w.Diff(NewSet(ObjectNet("GND")))
	lines := w.Diff(NewSet(ObjectNet("GND")))
	if len(lines) != 0 {
		t.Errorf("Diff() with unchanged set = %v, want no lines", lines)
	}
}

func TestWriterDiffOrderFollowsFixedEmissionOrder(t *testing.T) {
	w := NewWriter()
	// Build the set with keys in reverse of the fixed emission order;
	// the writer must still emit aperture-function before net before
	// component regardless of construction order.
	next := NewSet(
		ObjectComponent("R1"),
		ObjectNet("GND"),
		ApertureFunctionAttr(FuncComponentPad),
	)
	lines := w.Diff(next)
	if len(lines) != 3 {
		t.Fatalf("Diff() = %v, want 3 lines", lines)
	}
	if lines[0] != ApertureFunctionAttr(FuncComponentPad).ToGerberString() {
		t.Errorf("first emitted = %q, want aperture-function first", lines[0])
	}
	if lines[1] != ObjectNet("GND").ToGerberString() {
		t.Errorf("second emitted = %q, want net second", lines[1])
	}
	if lines[2] != ObjectComponent("R1").ToGerberString() {
		t.Errorf("third emitted = %q, want component third", lines[2])
	}
}

func TestWriterReset(t *testing.T) {
	w := NewWriter()
	w.Diff(NewSet(ObjectNet("GND")))
	w.Reset()
	lines := w.Diff(NewSet(ObjectNet("GND")))
	if len(lines) != 1 {
		t.Errorf("Diff() after Reset = %v, want a fresh set line", lines)
	}
}
