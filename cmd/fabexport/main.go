// fabexport builds a small demonstration board and runs it through the
// fabrication-data exporter, writing Gerber and Excellon files to an
// output directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gmlewis/fabcore/attr"
	"github.com/gmlewis/fabcore/board"
	"github.com/gmlewis/fabcore/config"
	"github.com/gmlewis/fabcore/export"
	"github.com/gmlewis/fabcore/geom"
	"github.com/gmlewis/fabcore/units"
)

var (
	outDir     = flag.String("out", "fabexport-output", "Directory to write fabrication files into")
	configPath = flag.String("config", "", "Path to a YAML fabrication-settings file (empty uses built-in defaults)")
	prefix     = flag.String("prefix", "demo", "Base file name used before each suffix")
	projName   = flag.String("project", "demo-project", "Project name written into file attributes")
)

func main() {
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("fabexport: %v", err)
		}
		cfg = loaded
	}
	cfg.OutputBasePath = filepath.Join(*outDir, *prefix)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("fabexport: creating output directory: %v", err)
	}

	brd := demoBoard()
	proj := board.Project{Name: *projName, UUID: "00000000-0000-0000-0000-000000000001", Revision: "1", Version: "1.0", BoardCount: 1}
	identity := export.Identity{
		SoftwareVendor:  "fabcore",
		SoftwareApp:     "fabexport",
		SoftwareVersion: "0.1.0",
		CreationDate:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	exporter := export.NewBoardExporter(proj, brd, cfg, identity, ".")
	files, err := exporter.ExportAll()
	if err != nil {
		log.Fatalf("fabexport: %v", err)
	}

	for _, f := range files {
		if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
			log.Fatalf("fabexport: creating directory for %s: %v", f.Path, err)
		}
		if err := os.WriteFile(f.Path, f.Content, 0o644); err != nil {
			log.Fatalf("fabexport: writing %s: %v", f.Path, err)
		}
		fmt.Printf("wrote %s (%d bytes)\n", f.Path, len(f.Content))
	}

	fmt.Println("Done.")
}

// demoBoard builds a minimal two-layer board with one SMT resistor pad
// and one via, just enough to exercise every file the exporter emits.
func demoBoard() *board.Board {
	mm := units.FromMillimeters

	pad := board.Pad{
		Name:      "1",
		Shape:     board.PadRect,
		Width:     mm(1.6),
		Height:    mm(0.8),
		Position:  geom.Point{},
		BoardSide: board.PadSMTTop,
		NetSignal: "",
	}

	device := board.Device{
		Designator: "R1",
		Value:      "10k",
		MountType:  attr.MountSmt,
		Position:   geom.Point{X: mm(10), Y: mm(20)},
		Footprint: board.Footprint{
			Pads: []board.Pad{pad},
		},
	}

	via := board.Via{
		UUID:          "v1",
		Position:      geom.Point{},
		DrillDiameter: mm(0.3),
		PadDiameter:   mm(0.6),
		Shape:         board.ViaRound,
		Layers:        []string{export.LayerTopCopper, export.LayerBottomCopper},
	}

	outline := board.Polygon{
		Layer: export.LayerOutline,
		Path: geom.NewPath(
			geom.Vertex{Pos: geom.Point{X: 0, Y: 0}},
			geom.Vertex{Pos: geom.Point{X: mm(40), Y: 0}},
			geom.Vertex{Pos: geom.Point{X: mm(40), Y: mm(40)}},
			geom.Vertex{Pos: geom.Point{X: 0, Y: mm(40)}},
			geom.Vertex{Pos: geom.Point{X: 0, Y: 0}},
		),
		Width: mm(0.001),
	}

	return &board.Board{
		UUID:            "b1",
		Name:            "demo-board",
		InnerLayerCount: 0,
		Devices:         []board.Device{device},
		NetSegments: []board.NetSegment{
			{UUID: "n1", NetSignal: "VCC", Vias: []board.Via{via}},
		},
		Polygons: []board.Polygon{outline},
		DesignRules: board.DesignRules{
			StopMaskClearance:           mm(0.05),
			PasteClearance:              mm(0.05),
			ViaStopMaskMinDrillDiameter: mm(0.3),
		},
	}
}
