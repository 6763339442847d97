package server

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nikunjkothiya/deckgen/internal/generator"
	"github.com/nikunjkothiya/deckgen/pkg/errors"
)

// Form field names of the upload form
const (
	fieldExcel    = "excel_file"
	fieldTemplate = "pptx_template_file"
	fieldStart    = "start_row"
	fieldEnd      = "end_row"
	fieldFolder   = "output_folder"
)

type pageData struct {
	Title         string
	Flashes       []Flash
	SheetName     string
	DefaultFolder string
	Folders       []folderListing
}

type folderListing struct {
	Name  string
	Files []fileEntry
}

type fileEntry struct {
	Name     string
	Href     string
	Size     int64
	Modified string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", pageData{
		Title:         "Deck generator",
		Flashes:       popFlashes(w, r),
		SheetName:     s.cfg.Columns.SheetName,
		DefaultFolder: s.cfg.Output.DefaultFolder,
	})
}

// handleGenerate stages both uploads, runs the batch and redirects back to
// the form with the outcome as a notification
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	result, err := s.generate(w, r)
	if err != nil {
		s.log.Error("Generation failed: %v", err)
		addFlash(w, r, LevelDanger, err.Error())
	} else {
		addFlash(w, r, LevelSuccess, "PPT files generated successfully in "+result.OutputDir)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) (*generator.Result, error) {
	maxBytes := s.cfg.Server.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "Invalid upload")
	}
	defer r.MultipartForm.RemoveAll()

	startRow, err := parseRow(r.FormValue(fieldStart), fieldStart, true)
	if err != nil {
		return nil, err
	}
	var endRow *int
	if strings.TrimSpace(r.FormValue(fieldEnd)) != "" {
		n, err := parseRow(r.FormValue(fieldEnd), fieldEnd, false)
		if err != nil {
			return nil, err
		}
		endRow = &n
	}

	excelPath, err := s.saveUpload(r, fieldExcel)
	if err != nil {
		return nil, err
	}
	templatePath, err := s.saveUpload(r, fieldTemplate)
	if err != nil {
		return nil, err
	}

	return s.gen.Run(r.Context(), generator.Request{
		ExcelPath:    excelPath,
		TemplatePath: templatePath,
		StartRow:     startRow,
		EndRow:       endRow,
		OutputFolder: r.FormValue(fieldFolder),
	})
}

// parseRow reads an integer form field
func parseRow(value, field string, required bool) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" && required {
		return 0, errors.New(errors.ErrInvalidInput, field+" is required")
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.NewWithDetails(errors.ErrInvalidInput, field+" must be an integer", "", value)
	}
	return n, nil
}

// saveUpload stores an uploaded file in the upload directory under its
// original base name, replacing any earlier upload of the same name
func (s *Server) saveUpload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", errors.NewWithDetails(errors.ErrInvalidInput, "Missing upload "+field, "", err.Error())
	}
	defer file.Close()

	name := filepath.Base(strings.ReplaceAll(header.Filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "", errors.New(errors.ErrInvalidInput, "Upload "+field+" has no file name")
	}

	dst := filepath.Join(s.cfg.Paths.UploadDir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", errors.WrapWithFile(err, errors.ErrWriteFailed, "Failed to store upload", dst)
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		return "", errors.WrapWithFile(err, errors.ErrWriteFailed, "Failed to store upload", dst)
	}
	if err := out.Close(); err != nil {
		return "", errors.WrapWithFile(err, errors.ErrWriteFailed, "Failed to store upload", dst)
	}
	s.log.Debug("Stored upload %s (%d bytes)", dst, header.Size)
	return dst, nil
}

// handleDownload serves a file from the output directory. The path may name
// a file inside a batch folder, e.g. /download/pptx_files/Acme.pptx.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	if rel == "" || !filepath.IsLocal(filepath.FromSlash(rel)) {
		http.NotFound(w, r)
		return
	}

	full := filepath.Join(s.cfg.Paths.OutputDir, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, full)
}

// handleFiles lists everything below the output directory, grouped by folder
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	folders, err := listOutputs(s.cfg.Paths.OutputDir)
	if err != nil {
		s.log.Error("Listing %s: %v", s.cfg.Paths.OutputDir, err)
		http.Error(w, "Failed to list files", http.StatusInternalServerError)
		return
	}
	s.render(w, "files.html", pageData{
		Title:   "Generated files",
		Flashes: popFlashes(w, r),
		Folders: folders,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// listOutputs walks root and groups files by their directory relative to root
func listOutputs(root string) ([]folderListing, error) {
	byFolder := make(map[string][]fileEntry)

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		relSlash := filepath.ToSlash(rel)
		folder := path.Dir(relSlash)
		byFolder[folder] = append(byFolder[folder], fileEntry{
			Name:     path.Base(relSlash),
			Href:     downloadHref(relSlash),
			Size:     info.Size(),
			Modified: info.ModTime().Format("2006-01-02 15:04"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(byFolder))
	for name := range byFolder {
		names = append(names, name)
	}
	sort.Strings(names)

	folders := make([]folderListing, 0, len(names))
	for _, name := range names {
		files := byFolder[name]
		sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
		folders = append(folders, folderListing{Name: name, Files: files})
	}
	return folders, nil
}

// downloadHref escapes each path segment of a relative output path
func downloadHref(rel string) string {
	parts := strings.Split(rel, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return "/download/" + strings.Join(parts, "/")
}

// humanSize formats a byte count for the file listing
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
