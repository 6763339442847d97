package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nikunjkothiya/deckgen/internal/config"
	"github.com/nikunjkothiya/deckgen/internal/generator"
	"github.com/nikunjkothiya/deckgen/internal/logging"
	"github.com/nikunjkothiya/deckgen/internal/office"
	"github.com/nikunjkothiya/deckgen/internal/preview"
	"github.com/nikunjkothiya/deckgen/internal/report"
	"github.com/nikunjkothiya/deckgen/internal/server"
	"github.com/nikunjkothiya/deckgen/pkg/errors"
)

// Version information
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
)

// Output is the JSON document printed after a one-shot batch
type Output struct {
	Success     bool                      `json:"success"`
	Message     string                    `json:"message,omitempty"`
	Error       *errors.ConversionError   `json:"error,omitempty"`
	OutputDir   string                    `json:"output_dir,omitempty"`
	Files       []generator.GeneratedFile `json:"files,omitempty"`
	Report      string                    `json:"report,omitempty"`
	ProcessTime int64                     `json:"process_time_ms,omitempty"`
}

func main() {
	// A missing .env is fine; the environment and defaults still apply
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args and either serves HTTP or runs one batch. It returns the
// process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("deckgen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	excelFile := fs.String("excel", "", "Spreadsheet path (.xlsx, .xlsm, .xls)")
	templateFile := fs.String("template", "", "Template deck path (.pptx)")
	startRow := fs.Int("start", 0, "First row to generate, 0-based")
	endRow := fs.Int("end", 0, "Row to stop before (0 = through the last row)")
	outputFolder := fs.String("output", "", "Output folder below OUTPUT_DIR")
	sheetName := fs.String("sheet", "", "Worksheet name (default from SHEET_NAME)")

	previews := fs.Bool("previews", false, "Render PNG thumbnails of each deck")
	summary := fs.Bool("summary", false, "Write a PDF summary of the batch")
	exportPDF := fs.Bool("pdf", false, "Export each deck to PDF with LibreOffice")
	libreOffice := fs.String("libreoffice", "", "Path to LibreOffice binary")

	serve := fs.Bool("serve", false, "Run the web form instead of a one-shot batch")
	addr := fs.String("addr", "", "Listen address (default from ADDR)")

	verbose := fs.Bool("verbose", false, "Enable debug logging")
	jsonOutput := fs.Bool("json", true, "Output results as JSON")
	version := fs.Bool("version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *version {
		fmt.Fprintf(stdout, "deckgen version %s (built %s)\n", Version, BuildTime)
		fmt.Fprintf(stdout, "Go version: %s\n", runtime.Version())
		fmt.Fprintf(stdout, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		printError(stdout, stderr, errors.As(err, errors.ErrInvalidInput, "Invalid configuration"), *jsonOutput)
		return 1
	}
	if *sheetName != "" {
		cfg.Columns.SheetName = *sheetName
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *libreOffice != "" {
		cfg.Output.LibreOfficePath = *libreOffice
	}
	cfg.Output.Previews = cfg.Output.Previews || *previews
	cfg.Output.SummaryPDF = cfg.Output.SummaryPDF || *summary
	cfg.Output.ExportPDF = cfg.Output.ExportPDF || *exportPDF
	if *verbose {
		cfg.LogLevel = "DEBUG"
	}

	logger := logging.New(stderr, logging.ParseLevel(cfg.LogLevel))
	gen := buildGenerator(cfg, logger)

	if *serve {
		srv, err := server.New(cfg, gen, logger)
		if err != nil {
			printError(stdout, stderr, errors.As(err, errors.ErrUnknown, "Failed to start server"), false)
			return 1
		}
		if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
			logger.Error("Server stopped: %v", err)
			return 1
		}
		return 0
	}

	if *excelFile == "" || *templateFile == "" {
		printError(stdout, stderr, errors.New(errors.ErrInvalidInput, "Both -excel and -template are required"), *jsonOutput)
		fs.Usage()
		return 1
	}

	req := generator.Request{
		ExcelPath:    *excelFile,
		TemplatePath: *templateFile,
		StartRow:     *startRow,
		OutputFolder: *outputFolder,
	}
	if *endRow != 0 {
		req.EndRow = endRow
	}

	result, err := gen.Run(ctx, req)
	if err != nil {
		printError(stdout, stderr, errors.As(err, errors.ErrUnknown, "Generation failed"), *jsonOutput)
		return 1
	}

	message := "PPT files generated successfully in " + result.OutputDir
	if *jsonOutput {
		output := Output{
			Success:     true,
			Message:     message,
			OutputDir:   result.OutputDir,
			Files:       result.Files,
			Report:      result.Report,
			ProcessTime: result.ProcessTime,
		}
		data, _ := json.MarshalIndent(output, "", "  ")
		fmt.Fprintln(stdout, string(data))
	} else {
		fmt.Fprintf(stdout, "✓ %s (%d files, %dms)\n", message, len(result.Files), result.ProcessTime)
	}
	return 0
}

// buildGenerator wires the optional per-deck and per-batch outputs
func buildGenerator(cfg *config.Config, logger *logging.Logger) *generator.Generator {
	gen := generator.New(generator.OptionsFromConfig(cfg), logger)

	if cfg.Output.Previews {
		gen.SetPreviewer(preview.New(int(cfg.Output.PreviewWidth)))
	}
	if cfg.Output.SummaryPDF {
		writer := report.NewWriter(cfg.Output.FontPath)
		if err := writer.SetPage(cfg.Output.ReportPage, cfg.Output.ReportOrientation); err != nil {
			logger.Warn("Summary report page settings ignored: %v", err)
		}
		gen.SetReporter(writer)
	}
	if cfg.Output.ExportPDF {
		if path, ok := office.Detect(cfg.Output.LibreOfficePath); ok {
			exporter := office.NewExporter(path)
			exporter.SetTimeout(cfg.Output.ExportTimeout)
			gen.SetExporter(exporter)
		} else {
			logger.Warn("PDF export requested but LibreOffice was not found")
		}
	}
	return gen
}

func printError(stdout, stderr io.Writer, err *errors.ConversionError, jsonOutput bool) {
	if jsonOutput {
		output := Output{
			Success: false,
			Error:   err,
		}
		data, _ := json.MarshalIndent(output, "", "  ")
		fmt.Fprintln(stdout, string(data))
		return
	}
	fmt.Fprintf(stderr, "Error: %s\n", err.Message)
	if err.Details != "" {
		fmt.Fprintf(stderr, "Details: %s\n", err.Details)
	}
}
