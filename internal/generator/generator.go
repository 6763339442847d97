// Package generator turns spreadsheet rows into decks, one deck per row,
// by filling the named text shapes of a template.
package generator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikunjkothiya/deckgen/internal/config"
	"github.com/nikunjkothiya/deckgen/internal/deck"
	"github.com/nikunjkothiya/deckgen/internal/logging"
	"github.com/nikunjkothiya/deckgen/internal/sheet"
	"github.com/nikunjkothiya/deckgen/pkg/errors"
)

// DeckExt is the extension of every generated deck
const DeckExt = ".pptx"

// SummaryFile is the name of the batch report inside the output folder
const SummaryFile = "summary.pdf"

// Options controls where a batch writes and which columns it reads
type Options struct {
	OutputRoot    string
	SheetName     string
	NameColumn    string
	BulletColumn  string
	DefaultFolder string
	DefaultName   string
	Style         Style
}

// DefaultOptions returns the options of an unconfigured install
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig maps the application config onto generator options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		OutputRoot:    cfg.Paths.OutputDir,
		SheetName:     cfg.Columns.SheetName,
		NameColumn:    cfg.Columns.NameColumn,
		BulletColumn:  cfg.Columns.BulletColumn,
		DefaultFolder: cfg.Output.DefaultFolder,
		DefaultName:   cfg.Output.DefaultName,
		Style:         Style{FontSizePt: cfg.Output.FontSizePt, Align: deck.AlignLeft},
	}
}

// Previewer renders slide images of a saved deck into dir
type Previewer interface {
	Render(deckPath, dir string) ([]string, error)
}

// Exporter converts a saved deck to PDF inside dir
type Exporter interface {
	Export(ctx context.Context, deckPath, dir string) (string, error)
}

// Reporter writes the summary of a finished batch
type Reporter interface {
	Write(outputPath string, result *Result) error
}

// Request is one batch run
type Request struct {
	ExcelPath    string
	TemplatePath string
	StartRow     int
	// EndRow is exclusive. nil or 0 means through the last row.
	EndRow       *int
	OutputFolder string
}

// GeneratedFile describes one saved deck
type GeneratedFile struct {
	Row      int      `json:"row"`
	Name     string   `json:"name"`
	Path     string   `json:"path"`
	Shapes   int      `json:"shapes_updated"`
	Previews []string `json:"previews,omitempty"`
	PDF      string   `json:"pdf,omitempty"`
}

// Result is what a finished batch produced
type Result struct {
	OutputDir   string          `json:"output_dir"`
	Sheet       string          `json:"sheet"`
	TotalRows   int             `json:"total_rows"`
	Files       []GeneratedFile `json:"files"`
	Report      string          `json:"report,omitempty"`
	ProcessTime int64           `json:"process_time_ms"`
}

// Generator runs batches with fixed options. It holds no per-batch state.
type Generator struct {
	opts      Options
	log       *logging.Logger
	previewer Previewer
	exporter  Exporter
	reporter  Reporter
}

// New creates a generator. A nil logger discards output.
func New(opts Options, log *logging.Logger) *Generator {
	if log == nil {
		log = logging.Discard()
	}
	defaults := DefaultOptions()
	if opts.SheetName == "" {
		opts.SheetName = defaults.SheetName
	}
	if opts.DefaultFolder == "" {
		opts.DefaultFolder = defaults.DefaultFolder
	}
	if opts.DefaultName == "" {
		opts.DefaultName = defaults.DefaultName
	}
	style := DefaultStyle()
	if opts.Style.FontSizePt <= 0 {
		opts.Style.FontSizePt = style.FontSizePt
	}
	if opts.Style.Align == "" {
		opts.Style.Align = style.Align
	}
	return &Generator{opts: opts, log: log}
}

// SetPreviewer enables slide thumbnails for every saved deck
func (g *Generator) SetPreviewer(p Previewer) {
	g.previewer = p
}

// SetExporter enables PDF export of every saved deck
func (g *Generator) SetExporter(e Exporter) {
	g.exporter = e
}

// SetReporter enables the batch summary report
func (g *Generator) SetReporter(r Reporter) {
	g.reporter = r
}

// Options returns the generator's effective options
func (g *Generator) Options() Options {
	return g.opts
}

// Run generates one deck per row in [StartRow, EndRow). The first error
// aborts the batch; decks already written are left in place.
func (g *Generator) Run(ctx context.Context, req Request) (*Result, error) {
	startTime := time.Now()

	if req.StartRow < 0 {
		return nil, errors.New(errors.ErrInvalidInput, "start_row must not be negative")
	}
	if req.EndRow != nil && *req.EndRow < 0 {
		return nil, errors.New(errors.ErrInvalidInput, "end_row must not be negative")
	}

	folder, err := g.outputFolder(req.OutputFolder)
	if err != nil {
		return nil, err
	}

	table, err := sheet.Load(req.ExcelPath, g.opts.SheetName)
	if err != nil {
		return nil, err
	}
	g.log.Debug("Loaded %d rows from sheet %q of %s", table.Len(), table.Sheet, req.ExcelPath)

	if err := deck.Validate(req.TemplatePath); err != nil {
		return nil, err
	}

	start, end := rowRange(req.StartRow, req.EndRow, table.Len())

	outDir := filepath.Join(g.opts.OutputRoot, folder)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, errors.WrapWithFile(err, errors.ErrWriteFailed, "Failed to create output directory", outDir)
	}

	result := &Result{
		OutputDir: outDir,
		Sheet:     table.Sheet,
		TotalRows: table.Len(),
		Files:     make([]GeneratedFile, 0, end-start),
	}

	for i := start; i < end; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrUnknown, "Batch cancelled")
		}
		file, err := g.generateRow(ctx, req.TemplatePath, table, i, outDir)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, file)
	}

	if g.reporter != nil {
		reportPath := filepath.Join(outDir, SummaryFile)
		if err := g.reporter.Write(reportPath, result); err != nil {
			g.log.Warn("Summary report failed: %v", err)
		} else {
			result.Report = reportPath
		}
	}

	result.ProcessTime = time.Since(startTime).Milliseconds()
	return result, nil
}

// generateRow fills a freshly opened template with one row and saves it
func (g *Generator) generateRow(ctx context.Context, templatePath string, table *sheet.Table, index int, outDir string) (GeneratedFile, error) {
	row := table.Rows[index]

	d, err := deck.Open(templatePath)
	if err != nil {
		return GeneratedFile{}, err
	}
	defer d.Close()

	values := BuildPlaceholderMap(row, table.Columns, g.opts.BulletColumn)
	updated := 0
	for _, slide := range d.Slides() {
		updated += PopulateSlide(slide, values, g.opts.Style)
	}

	name := g.deckName(row)
	outputPath := filepath.Join(outDir, name+DeckExt)
	if err := d.Save(outputPath); err != nil {
		return GeneratedFile{}, err
	}
	g.log.Info("Saved %s in %s", outputPath, outDir)
	if updated == 0 {
		g.log.Warn("Row %d: no shape in the template matched a column name", index)
	}

	file := GeneratedFile{Row: index, Name: name, Path: outputPath, Shapes: updated}

	if g.previewer != nil {
		previews, err := g.previewer.Render(outputPath, filepath.Join(outDir, "previews"))
		if err != nil {
			g.log.Warn("Preview of %s failed: %v", outputPath, err)
		}
		file.Previews = previews
	}

	if g.exporter != nil {
		pdfPath, err := g.exporter.Export(ctx, outputPath, outDir)
		if err != nil {
			g.log.Warn("PDF export of %s failed: %v", outputPath, err)
		} else {
			file.PDF = pdfPath
		}
	}

	return file, nil
}

// deckName returns the file name, without extension, for a row
func (g *Generator) deckName(row sheet.Row) string {
	v := row.Get(g.opts.NameColumn)
	if !v.Present {
		return g.opts.DefaultName
	}
	return SanitizeName(v.Text)
}

// outputFolder resolves the requested folder below the output root
func (g *Generator) outputFolder(requested string) (string, error) {
	folder := strings.TrimSpace(requested)
	if folder == "" {
		return g.opts.DefaultFolder, nil
	}
	if !filepath.IsLocal(folder) {
		return "", errors.NewWithDetails(errors.ErrInvalidInput, "Invalid output folder", "", folder)
	}
	return folder, nil
}

// SanitizeName keeps a name value inside the output folder by replacing
// path separators and NUL
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, name)
}

// rowRange resolves the half-open row interval. end is clamped to total and
// a start past the end selects no rows.
func rowRange(start int, end *int, total int) (int, int) {
	e := total
	if end != nil && *end != 0 {
		e = *end
	}
	if e > total {
		e = total
	}
	if start > e {
		start = e
	}
	return start, e
}
