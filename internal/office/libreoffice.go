// Package office exports generated decks to PDF with a headless LibreOffice.
package office

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikunjkothiya/deckgen/pkg/errors"
)

// DefaultTimeout bounds a single export
const DefaultTimeout = 2 * time.Minute

// knownPaths are checked before searching PATH
var knownPaths = []string{
	"/usr/bin/libreoffice",
	"/usr/bin/soffice",
	"/usr/local/bin/libreoffice",
	"/usr/local/bin/soffice",
	"/Applications/LibreOffice.app/Contents/MacOS/soffice",
	"C:\\Program Files\\LibreOffice\\program\\soffice.exe",
	"C:\\Program Files (x86)\\LibreOffice\\program\\soffice.exe",
}

// Detect returns the LibreOffice executable to use. An explicit path wins
// when it exists.
func Detect(override string) (string, bool) {
	if override != "" {
		if _, err := os.Stat(override); err == nil {
			return override, true
		}
		return "", false
	}
	for _, p := range knownPaths {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	for _, name := range []string{"libreoffice", "soffice"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, true
		}
	}
	return "", false
}

// Exporter converts decks to PDF
type Exporter struct {
	libreOfficePath string
	timeout         time.Duration
}

// NewExporter creates an exporter for the LibreOffice binary at path
func NewExporter(path string) *Exporter {
	return &Exporter{libreOfficePath: path, timeout: DefaultTimeout}
}

// SetTimeout changes the per-deck time limit
func (e *Exporter) SetTimeout(d time.Duration) {
	e.timeout = d
}

// Export writes <dir>/<deck base name>.pdf and returns its path
func (e *Exporter) Export(ctx context.Context, deckPath, dir string) (string, error) {
	if _, err := os.Stat(deckPath); os.IsNotExist(err) {
		return "", errors.NewWithFile(errors.ErrFileNotFound, "File not found", deckPath)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.WrapWithFile(err, errors.ErrWriteFailed, "Failed to create output directory", dir)
	}

	// LibreOffice writes into a scratch directory with its own profile, so
	// parallel instances do not fight over the user installation
	tempDir, err := os.MkdirTemp("", "deckgen-lo-*")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrExportFailed, "Failed to create temp directory")
	}
	defer os.RemoveAll(tempDir)

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.libreOfficePath,
		"-env:UserInstallation=file://"+filepath.ToSlash(tempDir)+"/profile",
		"--headless",
		"--convert-to", "pdf:impress_pdf_Export",
		"--outdir", tempDir,
		deckPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", errors.NewWithDetails(errors.ErrExportFailed, "LibreOffice conversion failed", deckPath,
			strings.TrimSpace(err.Error()+": "+string(output)))
	}

	base := strings.TrimSuffix(filepath.Base(deckPath), filepath.Ext(deckPath))
	generated := filepath.Join(tempDir, base+".pdf")
	if _, err := os.Stat(generated); err != nil {
		return "", errors.NewWithFile(errors.ErrExportFailed, "LibreOffice failed to generate PDF", deckPath)
	}

	outputPath := filepath.Join(dir, base+".pdf")
	if err := os.Rename(generated, outputPath); err != nil {
		// Rename fails across filesystems
		if err := copyFile(generated, outputPath); err != nil {
			return "", errors.WrapWithFile(err, errors.ErrWriteFailed, "Failed to move generated PDF", outputPath)
		}
	}
	return outputPath, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
