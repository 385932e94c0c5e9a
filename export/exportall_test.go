package export

import (
	"strings"
	"testing"
	"time"

	"github.com/gmlewis/fabcore/attr"
	"github.com/gmlewis/fabcore/board"
	"github.com/gmlewis/fabcore/config"
	"github.com/gmlewis/fabcore/geom"
	"github.com/gmlewis/fabcore/units"
)

func testIdentity() Identity {
	return Identity{
		SoftwareVendor:  "fabcore",
		SoftwareApp:     "test",
		SoftwareVersion: "0.1",
		CreationDate:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func findFile(t *testing.T, files []OutputFile, suffix string) OutputFile {
	t.Helper()
	for _, f := range files {
		if strings.HasSuffix(f.Path, suffix) {
			return f
		}
	}
	t.Fatalf("no output file found with suffix %q among %d files", suffix, len(files))
	return OutputFile{}
}

func TestExportAllCustomPadFlashesOutline(t *testing.T) {
	mm := units.FromMillimeters
	outline := geom.NewPath(
		geom.Vertex{Pos: geom.Point{X: mm(-0.5), Y: mm(-0.5)}},
		geom.Vertex{Pos: geom.Point{X: mm(0.5), Y: mm(-0.5)}},
		geom.Vertex{Pos: geom.Point{X: mm(0.5), Y: mm(0.5)}},
		geom.Vertex{Pos: geom.Point{X: mm(-0.5), Y: mm(0.5)}},
		geom.Vertex{Pos: geom.Point{X: mm(-0.5), Y: mm(-0.5)}},
	)
	pad := board.Pad{
		Name:      "1",
		Shape:     board.PadCustom,
		Outline:   outline,
		Width:     mm(1.0),
		Height:    mm(1.0),
		BoardSide: board.PadSMTTop,
	}
	device := board.Device{
		Designator: "U1",
		MountType:  attr.MountSmt,
		Position:   geom.Point{X: mm(10), Y: mm(20)},
		Footprint:  board.Footprint{Pads: []board.Pad{pad}},
	}
	brd := &board.Board{
		Name:    "b",
		Devices: []board.Device{device},
	}
	proj := board.Project{Name: "proj", UUID: "u1", Revision: "r1", BoardCount: 1}
	cfg := config.DefaultConfig()
	cfg.OutputBasePath = ""

	exporter := NewBoardExporter(proj, brd, cfg, testIdentity(), t.TempDir())
	files, err := exporter.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll() error: %v", err)
	}

	top := findFile(t, files, cfg.SuffixCopperTop)
	content := string(top.Content)
	if !strings.Contains(content, "%AMPAD1*") {
		t.Errorf("top copper missing expected outline macro, got:\n%s", content)
	}
	if !strings.Contains(content, "X10000000Y20000000D03*") {
		t.Errorf("top copper missing expected flash, got:\n%s", content)
	}
}

func TestExportAllSinglePadNoNet(t *testing.T) {
	mm := units.FromMillimeters
	pad := board.Pad{
		Name:      "1",
		Shape:     board.PadRect,
		Width:     mm(1.6),
		Height:    mm(0.8),
		BoardSide: board.PadSMTTop,
	}
	device := board.Device{
		Designator: "R1",
		MountType:  attr.MountSmt,
		Position:   geom.Point{X: mm(10), Y: mm(20)},
		Footprint:  board.Footprint{Pads: []board.Pad{pad}},
	}
	brd := &board.Board{
		Name:    "b",
		Devices: []board.Device{device},
	}
	proj := board.Project{Name: "proj", UUID: "u1", Revision: "r1", BoardCount: 1}
	cfg := config.DefaultConfig()
	cfg.OutputBasePath = ""

	exporter := NewBoardExporter(proj, brd, cfg, testIdentity(), t.TempDir())
	files, err := exporter.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll() error: %v", err)
	}

	top := findFile(t, files, cfg.SuffixCopperTop)
	content := string(top.Content)
	if !strings.Contains(content, "%ADD10R,1.600000X0.800000*%") {
		t.Errorf("top copper missing expected aperture, got:\n%s", content)
	}
	if !strings.Contains(content, "X10000000Y20000000D03*") {
		t.Errorf("top copper missing expected flash, got:\n%s", content)
	}
	if !strings.Contains(content, "TO.N,N/C") {
		t.Errorf("top copper missing N/C net attribute, got:\n%s", content)
	}
}

func TestExportAllViaWithStopMaskOpening(t *testing.T) {
	mm := units.FromMillimeters
	via := board.Via{
		UUID:          "v1",
		Position:      geom.Point{},
		DrillDiameter: mm(0.3),
		PadDiameter:   mm(0.6),
		Shape:         board.ViaRound,
		Layers:        []string{LayerTopCopper, LayerBottomCopper},
	}
	brd := &board.Board{
		Name: "b",
		NetSegments: []board.NetSegment{
			{UUID: "n1", NetSignal: "VCC", Vias: []board.Via{via}},
		},
		DesignRules: board.DesignRules{
			StopMaskClearance:           mm(0.05),
			ViaStopMaskMinDrillDiameter: mm(0.3),
		},
	}
	proj := board.Project{Name: "proj", UUID: "u1", Revision: "r1", BoardCount: 1}
	cfg := config.DefaultConfig()
	cfg.OutputBasePath = ""

	exporter := NewBoardExporter(proj, brd, cfg, testIdentity(), t.TempDir())
	files, err := exporter.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll() error: %v", err)
	}

	mask := findFile(t, files, cfg.SuffixSolderMaskTop)
	maskContent := string(mask.Content)
	if !strings.Contains(maskContent, "%ADD10C,0.700000*%") {
		t.Errorf("top stopmask missing expected expanded aperture, got:\n%s", maskContent)
	}
	if !strings.Contains(maskContent, "TO.N,VCC") {
		t.Errorf("top stopmask via flash missing net attribute, got:\n%s", maskContent)
	}
	if !strings.Contains(maskContent, "TF.FilePolarity,Negative") {
		t.Errorf("top stopmask missing negative file polarity, got:\n%s", maskContent)
	}

	top := findFile(t, files, cfg.SuffixCopperTop)
	topContent := string(top.Content)
	if !strings.Contains(topContent, "%ADD10C,0.600000*%") {
		t.Errorf("top copper missing expected unexpanded via pad aperture, got:\n%s", topContent)
	}
	if !strings.Contains(topContent, "TO.N,VCC") {
		t.Errorf("top copper missing net attribute, got:\n%s", topContent)
	}
}

func TestExportAllTwoIdenticalPadsShareAperture(t *testing.T) {
	mm := units.FromMillimeters
	padFor := func(designator string) board.Device {
		return board.Device{
			Designator: designator,
			MountType:  attr.MountTht,
			Footprint: board.Footprint{Pads: []board.Pad{{
				Name:      "1",
				Shape:     board.PadRound,
				Width:     mm(1.0),
				Height:    mm(1.0),
				BoardSide: board.PadTHT,
				NetSignal: "GND",
			}}},
		}
	}
	brd := &board.Board{
		Name:    "b",
		Devices: []board.Device{padFor("U1"), padFor("U2")},
	}
	proj := board.Project{Name: "proj", UUID: "u1", Revision: "r1", BoardCount: 1}
	cfg := config.DefaultConfig()
	cfg.OutputBasePath = ""

	exporter := NewBoardExporter(proj, brd, cfg, testIdentity(), t.TempDir())
	files, err := exporter.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll() error: %v", err)
	}

	top := findFile(t, files, cfg.SuffixCopperTop)
	content := string(top.Content)
	if strings.Count(content, "%ADD10C,1.000000*%") != 1 {
		t.Errorf("expected exactly one shared aperture, got:\n%s", content)
	}
	if strings.Count(content, "TO.C,U1") != 1 || strings.Count(content, "TO.C,U2") != 1 {
		t.Errorf("expected each pad to carry its own component attribute, got:\n%s", content)
	}
}

func TestExportAllOvalRoundPadFlashesObround(t *testing.T) {
	mm := units.FromMillimeters
	device := board.Device{
		Designator: "R1",
		MountType:  attr.MountSmt,
		Footprint: board.Footprint{Pads: []board.Pad{{
			Name:      "1",
			Shape:     board.PadRound,
			Width:     mm(1.6),
			Height:    mm(0.8),
			BoardSide: board.PadSMTTop,
		}}},
	}
	brd := &board.Board{
		Name:    "b",
		Devices: []board.Device{device},
	}
	proj := board.Project{Name: "proj", UUID: "u1", Revision: "r1", BoardCount: 1}
	cfg := config.DefaultConfig()
	cfg.OutputBasePath = ""

	exporter := NewBoardExporter(proj, brd, cfg, testIdentity(), t.TempDir())
	files, err := exporter.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll() error: %v", err)
	}

	top := string(findFile(t, files, cfg.SuffixCopperTop).Content)
	if !strings.Contains(top, "%ADD10O,1.600000X0.800000*%") {
		t.Errorf("oval round pad should flash an obround aperture, got:\n%s", top)
	}
	if strings.Contains(top, "%ADD10C,") {
		t.Errorf("oval round pad must not collapse to a circle, got:\n%s", top)
	}
}

func TestExportAllMergedDrillFileListsPlatedToolsFirst(t *testing.T) {
	// spec.md scenario 5: one plated pad drill, one unplated board hole.
	mm := units.FromMillimeters
	device := board.Device{
		Designator: "U1",
		MountType:  attr.MountTht,
		Footprint: board.Footprint{Pads: []board.Pad{{
			Name:          "1",
			Shape:         board.PadRound,
			Width:         mm(1.6),
			Height:        mm(1.6),
			Position:      geom.Point{X: mm(1), Y: mm(1)},
			BoardSide:     board.PadTHT,
			DrillDiameter: mm(0.8),
		}}},
	}
	brd := &board.Board{
		Name:    "b",
		Devices: []board.Device{device},
		Holes:   []board.Hole{{Position: geom.Point{X: mm(5), Y: mm(2)}, Diameter: mm(3.2)}},
	}
	proj := board.Project{Name: "proj", UUID: "u1", Revision: "r1", BoardCount: 1}
	cfg := config.DefaultConfig()
	cfg.OutputBasePath = ""
	cfg.MergeDrillFiles = true

	exporter := NewBoardExporter(proj, brd, cfg, testIdentity(), t.TempDir())
	files, err := exporter.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll() error: %v", err)
	}

	drl := string(findFile(t, files, cfg.SuffixDrills).Content)
	if !strings.Contains(drl, "; #@! TA.AperFunction,Plated,PTH,ComponentDrill\nT1C0.800000\n") {
		t.Errorf("plated drill should be tool 1, got:\n%s", drl)
	}
	if !strings.Contains(drl, "; #@! TA.AperFunction,NonPlated,NPTH,MechanicalDrill\nT2C3.200000\n") {
		t.Errorf("non-plated drill should be tool 2, got:\n%s", drl)
	}
	if !strings.Contains(drl, "T1\nX1000000Y1000000\nT2\nX5000000Y2000000\n") {
		t.Errorf("drill body out of order, got:\n%s", drl)
	}
}

func TestExportAllSilkscreenClipsStopMaskWithNegativePolarity(t *testing.T) {
	mm := units.FromMillimeters
	device := board.Device{
		Designator: "R1",
		MountType:  attr.MountSmt,
		Footprint: board.Footprint{Pads: []board.Pad{{
			Name:      "1",
			Shape:     board.PadRect,
			Width:     mm(1.6),
			Height:    mm(0.8),
			BoardSide: board.PadSMTTop,
		}}},
	}
	brd := &board.Board{
		Name:    "b",
		Devices: []board.Device{device},
		DesignRules: board.DesignRules{
			StopMaskClearance: mm(0.05),
		},
	}
	proj := board.Project{Name: "proj", UUID: "u1", Revision: "r1", BoardCount: 1}
	cfg := config.DefaultConfig()
	cfg.OutputBasePath = ""
	cfg.SilkscreenLayersTop = []string{LayerTopSilkscreen}

	exporter := NewBoardExporter(proj, brd, cfg, testIdentity(), t.TempDir())
	files, err := exporter.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll() error: %v", err)
	}

	silk := string(findFile(t, files, cfg.SuffixSilkscreenTop).Content)
	if !strings.Contains(silk, "TF.FileFunction,Legend,Top") {
		t.Errorf("silkscreen missing legend file function, got:\n%s", silk)
	}
	if !strings.Contains(silk, "%LPC*%") {
		t.Errorf("silkscreen missing negative-polarity clip pass, got:\n%s", silk)
	}
	// The stopmask pad expansion is drawn after the polarity switch.
	lpcIdx := strings.Index(silk, "%LPC*%")
	if !strings.Contains(silk[lpcIdx:], "%ADD") && !strings.Contains(silk[lpcIdx:], "D03*") {
		t.Errorf("no stopmask geometry after polarity switch, got:\n%s", silk)
	}
}

func TestExportAllSkipsEmptyNPTHFile(t *testing.T) {
	brd := &board.Board{Name: "b"}
	proj := board.Project{Name: "proj", UUID: "u1", Revision: "r1", BoardCount: 1}
	cfg := config.DefaultConfig()
	cfg.OutputBasePath = ""
	cfg.MergeDrillFiles = false

	exporter := NewBoardExporter(proj, brd, cfg, testIdentity(), t.TempDir())
	files, err := exporter.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll() error: %v", err)
	}
	for _, f := range files {
		if strings.HasSuffix(f.Path, cfg.SuffixDrillsNPTH) {
			t.Errorf("expected no NPTH file when the board has no unplated holes, found %s", f.Path)
		}
	}
}

func TestExportAllSkipsSilkscreenWhenLayerListEmpty(t *testing.T) {
	brd := &board.Board{Name: "b"}
	proj := board.Project{Name: "proj", UUID: "u1", Revision: "r1", BoardCount: 1}
	cfg := config.DefaultConfig()
	cfg.OutputBasePath = ""

	exporter := NewBoardExporter(proj, brd, cfg, testIdentity(), t.TempDir())
	files, err := exporter.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll() error: %v", err)
	}
	for _, f := range files {
		if strings.HasSuffix(f.Path, cfg.SuffixSilkscreenTop) || strings.HasSuffix(f.Path, cfg.SuffixSilkscreenBot) {
			t.Errorf("expected no silkscreen file when the layer list is empty, found %s", f.Path)
		}
	}
}
