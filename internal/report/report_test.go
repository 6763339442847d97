package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikunjkothiya/deckgen/internal/generator"
	"github.com/nikunjkothiya/deckgen/pkg/errors"
)

func sampleResult(dir string) *generator.Result {
	return &generator.Result{
		OutputDir: dir,
		Sheet:     "Summaries",
		TotalRows: 3,
		Files: []generator.GeneratedFile{
			{Row: 0, Name: "Acme", Path: filepath.Join(dir, "Acme.pptx"), Shapes: 2, Previews: []string{"a.png"}},
			{Row: 1, Name: "Globex", Path: filepath.Join(dir, "Globex.pptx"), Shapes: 2, PDF: filepath.Join(dir, "Globex.pdf")},
		},
	}
}

func TestTableRows(t *testing.T) {
	headers, rows := tableRows(sampleResult("out"))

	assert.Equal(t, []string{"Row", "Name", "File", "Shapes", "Previews", "PDF"}, headers)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"0", "Acme", "Acme.pptx", "2", "1", ""}, rows[0])
	assert.Equal(t, []string{"1", "Globex", "Globex.pptx", "2", "0", "Globex.pdf"}, rows[1])
}

func TestHeaderLines(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	lines := headerLines(sampleResult("output/pptx_files"), at)

	assert.Equal(t, []string{
		"Output folder: output/pptx_files",
		"Sheet: Summaries, 2 of 3 rows generated",
		"Generated: 2024-03-01 09:30:00",
	}, lines)
}

func TestColumnWidthsFillContent(t *testing.T) {
	sum := 0.0
	for _, w := range columnWidths(700) {
		sum += w
	}
	assert.InDelta(t, 700, sum, 0.001)
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, isNumeric("12"))
	assert.True(t, isNumeric("-1,200.5"))
	assert.False(t, isNumeric("Acme"))
	assert.False(t, isNumeric(""))
	assert.False(t, isNumeric("--"))
}

func TestWriteSummary(t *testing.T) {
	if FindFont("") == "" {
		t.Skip("no TrueType font installed")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "summary.pdf")

	require.NoError(t, NewWriter("").Write(out, sampleResult(dir)))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestWriteWithoutFontFails(t *testing.T) {
	if FindFont("") != "" {
		t.Skip("a system font is installed")
	}
	err := NewWriter("").Write(filepath.Join(t.TempDir(), "summary.pdf"), sampleResult("out"))
	assert.Error(t, err)
}

func TestSetPage(t *testing.T) {
	w := NewWriter("")
	require.NoError(t, w.SetPage("Letter", "PORTRAIT"))
	assert.Equal(t, PageLetter, w.Options.PageSize)
	assert.Equal(t, Portrait, w.Options.Orientation)
	assert.InDelta(t, 612-2*w.Options.Margin, w.Options.ContentWidth(), 0.001)

	require.NoError(t, w.SetPage("a4", "landscape"))
	assert.InDelta(t, 841.89-2*w.Options.Margin, w.Options.ContentWidth(), 0.001)

	err := w.SetPage("A3", "landscape")
	assert.Equal(t, errors.ErrInvalidInput, errors.CodeOf(err))
	err = w.SetPage("A4", "sideways")
	assert.Equal(t, errors.ErrInvalidInput, errors.CodeOf(err))
}
