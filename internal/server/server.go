// Package server is the browser front end: an upload form that runs one
// batch per submission, plus download and listing of generated files.
package server

import (
	"context"
	"embed"
	stderrors "errors"
	"html/template"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nikunjkothiya/deckgen/internal/config"
	"github.com/nikunjkothiya/deckgen/internal/generator"
	"github.com/nikunjkothiya/deckgen/internal/logging"
	"github.com/nikunjkothiya/deckgen/pkg/errors"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Server routes the web front end
type Server struct {
	router    *chi.Mux
	cfg       *config.Config
	gen       *generator.Generator
	log       *logging.Logger
	templates *template.Template
}

// New creates the upload and output directories and sets up the routes
func New(cfg *config.Config, gen *generator.Generator, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	for _, dir := range []string{cfg.Paths.UploadDir, cfg.Paths.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.WrapWithFile(err, errors.ErrWriteFailed, "Failed to create directory", dir)
		}
	}

	templates, err := template.New("").Funcs(template.FuncMap{
		"bytes": humanSize,
	}).ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrUnknown, "Failed to parse templates")
	}

	s := &Server{
		router:    chi.NewRouter(),
		cfg:       cfg,
		gen:       gen,
		log:       logger,
		templates: templates,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  log.New(s.log.Writer(), "", log.LstdFlags),
		NoColor: true,
	}))
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Post("/", s.handleGenerate)
	s.router.Get("/download/*", s.handleDownload)
	s.router.Get("/files", s.handleFiles)
	s.router.Get("/healthz", s.handleHealth)
}

// ServeHTTP makes the server usable as an http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("Template %s: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
