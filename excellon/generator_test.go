package excellon

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gmlewis/fabcore/attr"
	"github.com/gmlewis/fabcore/geom"
	"github.com/gmlewis/fabcore/units"
)

func newTestGenerator(plating Plating, fromLayer, toLayer int) *Generator {
	return NewGenerator("fabcore", "test", "0.1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		"proj", "uuid-1", "rev-1", plating, fromLayer, toLayer)
}

func TestMergedDrillFile(t *testing.T) {
	// spec.md scenario 5.
	g := newTestGenerator(Mixed, 1, 3)
	g.Drill(geom.Point{X: units.FromMillimeters(1), Y: units.FromMillimeters(1)}, units.FromMillimeters(0.8), true, attr.FuncComponentDrill)
	g.Drill(geom.Point{X: units.FromMillimeters(5), Y: units.FromMillimeters(2)}, units.FromMillimeters(3.2), false, attr.FuncMechanicalDrill)

	out := g.Generate()

	if !strings.Contains(out, "; #@! TF.GenerationSoftware,fabcore,test,0.1\n") {
		t.Errorf("missing generation-software header attribute, got:\n%s", out)
	}
	if !strings.Contains(out, "; #@! TF.FileFunction,MixedPlating,1,3\n") {
		t.Errorf("missing mixed-plating file function, got:\n%s", out)
	}
	if !strings.Contains(out, "; #@! TA.AperFunction,Plated,PTH,ComponentDrill\n") {
		t.Errorf("missing plated tool function comment, got:\n%s", out)
	}
	if !strings.Contains(out, "; #@! TA.AperFunction,NonPlated,NPTH,MechanicalDrill\n") {
		t.Errorf("missing non-plated tool function comment, got:\n%s", out)
	}
	if !strings.Contains(out, "T1C0.800000\n") {
		t.Errorf("missing first tool definition, got:\n%s", out)
	}
	if !strings.Contains(out, "T2C3.200000\n") {
		t.Errorf("missing second tool definition, got:\n%s", out)
	}

	wantBody := "T1\nX1000000Y1000000\nT2\nX5000000Y2000000\n"
	if !strings.Contains(out, wantBody) {
		t.Errorf("body = %q, want it to contain %q", out, wantBody)
	}

	if !strings.HasSuffix(out, "T0\nM30\n") {
		t.Errorf("footer missing, got:\n%s", out)
	}
}

func TestToolsGroupedByDiameterPlatedFunction(t *testing.T) {
	g := newTestGenerator(Yes, 1, 2)
	g.Drill(geom.Point{X: 0, Y: 0}, units.FromMillimeters(0.3), true, attr.FuncViaDrill)
	g.Drill(geom.Point{X: units.FromMillimeters(1), Y: 0}, units.FromMillimeters(0.3), true, attr.FuncViaDrill)
	g.Drill(geom.Point{X: units.FromMillimeters(2), Y: 0}, units.FromMillimeters(0.5), true, attr.FuncViaDrill)

	out := g.Generate()
	if strings.Count(out, "T1C0.300000\n") != 1 {
		t.Errorf("expected one tool definition for the shared diameter, got:\n%s", out)
	}
	if !strings.Contains(out, "T2C0.500000\n") {
		t.Errorf("missing second distinct tool, got:\n%s", out)
	}
}

func TestSaveToFileWritesGeneratedContent(t *testing.T) {
	g := newTestGenerator(No, 1, 2)
	g.Drill(geom.Point{}, units.FromMillimeters(1.0), false, attr.FuncMechanicalDrill)
	dir := t.TempDir()
	path := dir + "/test.drl"
	if err := g.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if string(data) != g.Generate() {
		t.Errorf("saved file = %q, want the generated content %q", data, g.Generate())
	}
}
