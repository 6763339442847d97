package office

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikunjkothiya/deckgen/pkg/errors"
)

// fakeOffice writes a script that behaves like soffice --convert-to pdf
func fakeOffice(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "soffice")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

const convertScript = `
outdir=""
while [ $# -gt 1 ]; do
  if [ "$1" = "--outdir" ]; then outdir="$2"; fi
  shift
done
name=$(basename "$1")
printf '%%PDF-1.4' > "$outdir/${name%.*}.pdf"`

func writeDeckFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("deck"), 0644))
	return path
}

func TestExportMovesPDFIntoDir(t *testing.T) {
	e := NewExporter(fakeOffice(t, convertScript))
	deckPath := writeDeckFile(t, "Acme.pptx")
	out := filepath.Join(t.TempDir(), "pdf")

	pdfPath, err := e.Export(context.Background(), deckPath, out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "Acme.pdf"), pdfPath)

	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestExportReportsFailures(t *testing.T) {
	deckPath := writeDeckFile(t, "Acme.pptx")

	failing := NewExporter(fakeOffice(t, `echo "source file could not be loaded" >&2; exit 1`))
	_, err := failing.Export(context.Background(), deckPath, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errors.ErrExportFailed, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "could not be loaded")

	silent := NewExporter(fakeOffice(t, `exit 0`))
	_, err = silent.Export(context.Background(), deckPath, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errors.ErrExportFailed, errors.CodeOf(err))
}

func TestExportTimeout(t *testing.T) {
	e := NewExporter(fakeOffice(t, "exec sleep 5"))
	e.SetTimeout(100 * time.Millisecond)
	deckPath := writeDeckFile(t, "Slow.pptx")

	start := time.Now()
	_, err := e.Export(context.Background(), deckPath, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errors.ErrExportFailed, errors.CodeOf(err))
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestExportMissingDeck(t *testing.T) {
	e := NewExporter("/nonexistent/soffice")
	_, err := e.Export(context.Background(), filepath.Join(t.TempDir(), "none.pptx"), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errors.ErrFileNotFound, errors.CodeOf(err))
}

func TestDetectOverride(t *testing.T) {
	bin := fakeOffice(t, "exit 0")

	path, ok := Detect(bin)
	assert.True(t, ok)
	assert.Equal(t, bin, path)

	_, ok = Detect(filepath.Join(t.TempDir(), "missing"))
	assert.False(t, ok)
}
