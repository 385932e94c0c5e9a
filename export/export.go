// Package export is the board-export orchestration brain: it decides
// which output files a board produces, walks the board model once per
// file to feed a gerber.Generator or excellon.Generator, and resolves
// each file's final path.
package export

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gmlewis/fabcore/attr"
	"github.com/gmlewis/fabcore/board"
	"github.com/gmlewis/fabcore/config"
	"github.com/gmlewis/fabcore/gerber"
	"github.com/gmlewis/fabcore/logx"
)

// Settings is the fabrication-settings bundle the exporter consumes;
// it is simply config.Config so a YAML-loaded configuration can be
// passed straight through.
type Settings = config.Config

// Identity carries the producing tool's name/version (written into
// every file's .GenerationSoftware attribute) and a fixed creation
// timestamp so a rebuild of the same board is byte-reproducible.
type Identity struct {
	SoftwareVendor  string
	SoftwareApp     string
	SoftwareVersion string
	CreationDate    time.Time
}

// BoardExporter owns one board, its enclosing project and the settings
// driving file layout; it borrows all three immutably for the
// lifetime of an export.
type BoardExporter struct {
	Project  board.Project
	Board    *board.Board
	Settings *Settings
	Identity Identity
	Logger   logx.Logger

	projectRoot string // used to resolve relative output paths
}

// NewBoardExporter returns an exporter for one board.
func NewBoardExporter(project board.Project, brd *board.Board, settings *Settings, identity Identity, projectRoot string) *BoardExporter {
	return &BoardExporter{
		Project:     project,
		Board:       brd,
		Settings:    settings,
		Identity:    identity,
		Logger:      logx.Default,
		projectRoot: projectRoot,
	}
}

// DisambiguatedProjectName appends " (<boardName>)" to projectName when
// the project contains more than one board, so multi-board projects
// don't collide on their .ProjectId file attribute.
func DisambiguatedProjectName(projectBoardCount int, projectName, boardName string) string {
	if projectBoardCount > 1 {
		return fmt.Sprintf("%s (%s)", projectName, boardName)
	}
	return projectName
}

// OutputFile is one emitted file: its resolved path and rendered
// content, ready to be written to disk.
type OutputFile struct {
	Path    string
	Content []byte
}

func (e *BoardExporter) projectName() string {
	return DisambiguatedProjectName(e.Project.BoardCount, e.Project.Name, e.Board.Name)
}

func (e *BoardExporter) newGerberGenerator() *gerber.Generator {
	g := gerber.NewGenerator(e.Identity.SoftwareVendor, e.Identity.SoftwareApp, e.Identity.SoftwareVersion,
		e.Identity.CreationDate, e.projectName(), e.Project.UUID, e.Project.Revision)
	g.SetLogger(e.Logger)
	return g
}

// resolvePath applies the spec.md §4.6.4 substitution/sanitization
// rules and resolves the result relative to the project root unless it
// is already absolute.
func (e *BoardExporter) resolvePath(suffixTemplate string, attrs map[string]string) string {
	substituted := substitute(suffixTemplate, attrs)
	sanitized := sanitizeFileName(substituted)
	path := e.Settings.OutputBasePath + sanitized
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.projectRoot, path)
}

var substitutionPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

func substitute(template string, attrs map[string]string) string {
	return substitutionPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := substitutionPattern.FindStringSubmatch(match)[1]
		if v, ok := attrs[key]; ok {
			return v
		}
		return match
	})
}

var illegalFileNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// sanitizeFileName replaces spaces with underscores and strips
// characters illegal in file names, preserving case.
func sanitizeFileName(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	return illegalFileNameChars.ReplaceAllString(s, "")
}

func (e *BoardExporter) baseAttrs() map[string]string {
	return map[string]string{
		"PROJECT": e.projectName(),
		"BOARD":   e.Board.Name,
	}
}

// ExportAll renders every output file spec.md §4.6.1 names for this
// board, in order, skipping files that would be empty (the NPTH drill
// file when it has no holes, silkscreen files whose layer list is
// empty).
func (e *BoardExporter) ExportAll() ([]OutputFile, error) {
	var files []OutputFile

	drillFiles, err := e.exportDrills()
	if err != nil {
		return nil, err
	}
	files = append(files, drillFiles...)

	files = append(files, e.exportOutline())
	files = append(files, e.exportCopperLayer(LayerTopCopper, 1, attr.CopperTop, e.Settings.SuffixCopperTop, nil))

	for i := 1; i <= e.Board.InnerLayerCount; i++ {
		layerID := innerCopperLayer(i)
		a := map[string]string{"CU_LAYER": fmt.Sprint(i + 1)}
		files = append(files, e.exportCopperLayer(layerID, i+1, attr.CopperInner, e.Settings.SuffixCopperInner, a))
	}

	bottomLayerNum := e.Board.InnerLayerCount + 2
	files = append(files, e.exportCopperLayer(LayerBottomCopper, bottomLayerNum, attr.CopperBottom, e.Settings.SuffixCopperBot, nil))

	files = append(files, e.exportSolderMask(LayerTopSolderMask, e.Settings.SuffixSolderMaskTop, attr.Top))
	files = append(files, e.exportSolderMask(LayerBottomSolderMask, e.Settings.SuffixSolderMaskBot, attr.Bottom))

	if f, ok := e.exportSilkscreen(e.Settings.SilkscreenLayersTop, LayerTopSilkscreen, LayerTopSolderMask, e.Settings.SuffixSilkscreenTop, attr.Top); ok {
		files = append(files, f)
	}
	if f, ok := e.exportSilkscreen(e.Settings.SilkscreenLayersBot, LayerBottomSilkscreen, LayerBottomSolderMask, e.Settings.SuffixSilkscreenBot, attr.Bottom); ok {
		files = append(files, f)
	}

	if e.Settings.EnableSolderPasteTop {
		files = append(files, e.exportSolderPaste(LayerTopSolderPaste, e.Settings.SuffixSolderPasteTop, attr.Top))
	}
	if e.Settings.EnableSolderPasteBot {
		files = append(files, e.exportSolderPaste(LayerBottomSolderPaste, e.Settings.SuffixSolderPasteBot, attr.Bottom))
	}

	return files, nil
}

func (e *BoardExporter) exportOutline() OutputFile {
	g := e.newGerberGenerator()
	g.SetFileFunctionOutlines(false)
	e.drawLayer(g, LayerOutline)
	return OutputFile{
		Path:    e.resolvePath(e.Settings.SuffixOutlines, e.baseAttrs()),
		Content: []byte(g.Generate()),
	}
}

func (e *BoardExporter) exportCopperLayer(layerID string, layerNum int, side attr.CopperSide, suffixTemplate string, extraAttrs map[string]string) OutputFile {
	g := e.newGerberGenerator()
	g.SetFileFunctionCopper(layerNum, side, attr.Positive)
	e.drawLayer(g, layerID)
	a := e.baseAttrs()
	for k, v := range extraAttrs {
		a[k] = v
	}
	return OutputFile{
		Path:    e.resolvePath(suffixTemplate, a),
		Content: []byte(g.Generate()),
	}
}

// exportSolderMask draws the mask openings as a positive image; the
// file's negative meaning is carried by the .FilePolarity attribute,
// not by an %LPC% polarity switch.
func (e *BoardExporter) exportSolderMask(layerID, suffixTemplate string, side attr.BoardSide) OutputFile {
	g := e.newGerberGenerator()
	g.SetFileFunctionSolderMask(side, attr.Negative)
	e.drawLayer(g, layerID)
	return OutputFile{
		Path:    e.resolvePath(suffixTemplate, e.baseAttrs()),
		Content: []byte(g.Generate()),
	}
}

func (e *BoardExporter) exportSilkscreen(sourceLayers []string, silkscreenLayerID, stopMaskLayerID, suffixTemplate string, side attr.BoardSide) (OutputFile, bool) {
	if len(sourceLayers) == 0 {
		return OutputFile{}, false
	}
	g := e.newGerberGenerator()
	g.SetFileFunctionLegend(side, attr.Positive)
	for _, l := range sourceLayers {
		e.drawLayer(g, l)
	}
	// Clip legend ink off pad openings: redraw the stopmask geometry
	// at negative polarity over the positively painted legend.
	g.SetLayerPolarity(attr.Negative)
	e.drawLayer(g, stopMaskLayerID)
	return OutputFile{
		Path:    e.resolvePath(suffixTemplate, e.baseAttrs()),
		Content: []byte(g.Generate()),
	}, true
}

func (e *BoardExporter) exportSolderPaste(layerID, suffixTemplate string, side attr.BoardSide) OutputFile {
	g := e.newGerberGenerator()
	g.SetFileFunctionPaste(side, attr.Positive)
	e.drawLayer(g, layerID)
	return OutputFile{
		Path:    e.resolvePath(suffixTemplate, e.baseAttrs()),
		Content: []byte(g.Generate()),
	}
}
