// Package report writes a PDF summary of a finished batch: one table row per
// generated deck.
package report

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nikunjkothiya/deckgen/internal/generator"
	"github.com/nikunjkothiya/deckgen/pkg/errors"
)

// Writer renders batch summaries with fixed page options
type Writer struct {
	Options Options
	now     func() time.Time
}

// NewWriter creates a summary writer. fontPath may be empty.
func NewWriter(fontPath string) *Writer {
	opts := DefaultOptions()
	opts.FontPath = fontPath
	return &Writer{Options: opts, now: time.Now}
}

// SetPage selects the paper ("A4" or "letter") and orientation
// ("landscape" or "portrait"), case-insensitively
func (w *Writer) SetPage(size, orientation string) error {
	switch strings.ToLower(size) {
	case "a4":
		w.Options.PageSize = PageA4
	case "letter":
		w.Options.PageSize = PageLetter
	default:
		return errors.NewWithDetails(errors.ErrInvalidInput, "Unknown page size", "", size)
	}
	switch o := Orientation(strings.ToLower(orientation)); o {
	case Landscape, Portrait:
		w.Options.Orientation = o
	default:
		return errors.NewWithDetails(errors.ErrInvalidInput, "Unknown page orientation", "", orientation)
	}
	return nil
}

// Write renders result to outputPath
func (w *Writer) Write(outputPath string, result *generator.Result) error {
	b, err := NewBuilder(w.Options)
	if err != nil {
		return err
	}
	b.AddPage()

	if err := b.AddText(w.Options.Title, TitleStyle()); err != nil {
		return err
	}
	for _, line := range headerLines(result, w.now()) {
		if err := b.AddText(line, NoteStyle()); err != nil {
			return err
		}
	}
	b.currentY += 10

	headers, rows := tableRows(result)
	if err := b.DrawTable(headers, rows, columnWidths(w.Options.ContentWidth())); err != nil {
		return err
	}
	return b.Save(outputPath)
}

// headerLines describes the batch above the table
func headerLines(result *generator.Result, at time.Time) []string {
	return []string{
		"Output folder: " + result.OutputDir,
		fmt.Sprintf("Sheet: %s, %d of %d rows generated", result.Sheet, len(result.Files), result.TotalRows),
		"Generated: " + at.Format("2006-01-02 15:04:05"),
	}
}

// tableRows returns the header and one row per generated deck
func tableRows(result *generator.Result) ([]string, [][]string) {
	headers := []string{"Row", "Name", "File", "Shapes", "Previews", "PDF"}
	rows := make([][]string, 0, len(result.Files))
	for _, f := range result.Files {
		pdfName := ""
		if f.PDF != "" {
			pdfName = filepath.Base(f.PDF)
		}
		rows = append(rows, []string{
			strconv.Itoa(f.Row),
			f.Name,
			filepath.Base(f.Path),
			strconv.Itoa(f.Shapes),
			strconv.Itoa(len(f.Previews)),
			pdfName,
		})
	}
	return headers, rows
}

// columnWidths splits the content width over the six columns
func columnWidths(total float64) []float64 {
	shares := []float64{0.07, 0.28, 0.33, 0.08, 0.09, 0.15}
	widths := make([]float64, len(shares))
	for i, s := range shares {
		widths[i] = total * s
	}
	return widths
}
