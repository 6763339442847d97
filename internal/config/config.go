package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nikunjkothiya/deckgen/pkg/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Paths    PathConfig
	Columns  ColumnConfig
	Output   OutputConfig
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Addr        string
	MaxUploadMB int64
}

// PathConfig holds file system locations
type PathConfig struct {
	UploadDir string
	OutputDir string
}

// ColumnConfig names the spreadsheet sheet and the columns with special meaning
type ColumnConfig struct {
	SheetName    string
	NameColumn   string
	BulletColumn string
}

// OutputConfig controls what each batch run produces
type OutputConfig struct {
	DefaultFolder   string
	DefaultName     string
	FontSizePt      float64
	Previews        bool
	SummaryPDF      bool
	ExportPDF       bool
	LibreOfficePath string
	FontPath        string
	PreviewWidth    int64
	ExportTimeout   time.Duration

	// ReportPage is "A4" or "letter"; ReportOrientation is "landscape" or "portrait"
	ReportPage        string
	ReportOrientation string
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":5000",
			MaxUploadMB: 32,
		},
		Paths: PathConfig{
			UploadDir: "uploads",
			OutputDir: "output",
		},
		Columns: ColumnConfig{
			SheetName:    "Summaries",
			NameColumn:   "Case Study Name",
			BulletColumn: "Duckers Solution",
		},
		Output: OutputConfig{
			DefaultFolder:     "pptx_files",
			DefaultName:       "Slide",
			FontSizePt:        18,
			PreviewWidth:      960,
			ExportTimeout:     2 * time.Minute,
			ReportPage:        "A4",
			ReportOrientation: "landscape",
		},
		LogLevel: "INFO",
	}
}

// Load reads configuration from environment variables on top of Default
func Load() (*Config, error) {
	cfg := Default()

	cfg.Server.Addr = getEnvOrDefault("ADDR", cfg.Server.Addr)
	cfg.Paths.UploadDir = getEnvOrDefault("UPLOAD_DIR", cfg.Paths.UploadDir)
	cfg.Paths.OutputDir = getEnvOrDefault("OUTPUT_DIR", cfg.Paths.OutputDir)
	cfg.Columns.SheetName = getEnvOrDefault("SHEET_NAME", cfg.Columns.SheetName)
	cfg.Columns.NameColumn = getEnvOrDefault("NAME_COLUMN", cfg.Columns.NameColumn)
	cfg.Columns.BulletColumn = getEnvOrDefault("BULLET_COLUMN", cfg.Columns.BulletColumn)
	cfg.Output.DefaultFolder = getEnvOrDefault("DEFAULT_FOLDER", cfg.Output.DefaultFolder)
	cfg.Output.DefaultName = getEnvOrDefault("DEFAULT_NAME", cfg.Output.DefaultName)
	cfg.Output.LibreOfficePath = os.Getenv("LIBREOFFICE_PATH")
	cfg.Output.FontPath = os.Getenv("FONT_PATH")
	cfg.Output.ReportPage = getEnvOrDefault("REPORT_PAGE", cfg.Output.ReportPage)
	cfg.Output.ReportOrientation = getEnvOrDefault("REPORT_ORIENTATION", cfg.Output.ReportOrientation)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)

	var err error
	if cfg.Server.MaxUploadMB, err = getEnvInt("MAX_UPLOAD_MB", cfg.Server.MaxUploadMB); err != nil {
		return nil, err
	}
	if cfg.Output.PreviewWidth, err = getEnvInt("PREVIEW_WIDTH", cfg.Output.PreviewWidth); err != nil {
		return nil, err
	}
	if cfg.Output.FontSizePt, err = getEnvFloat("FONT_SIZE_PT", cfg.Output.FontSizePt); err != nil {
		return nil, err
	}
	if cfg.Output.Previews, err = getEnvBool("PREVIEWS", false); err != nil {
		return nil, err
	}
	if cfg.Output.SummaryPDF, err = getEnvBool("SUMMARY_PDF", false); err != nil {
		return nil, err
	}
	if cfg.Output.ExportPDF, err = getEnvBool("EXPORT_PDF", false); err != nil {
		return nil, err
	}
	if cfg.Output.ExportTimeout, err = getEnvDuration("EXPORT_TIMEOUT", cfg.Output.ExportTimeout); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail deep inside a batch
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.UploadDir) == "" || strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New(errors.ErrInvalidInput, "UPLOAD_DIR and OUTPUT_DIR must not be empty")
	}
	if c.Columns.SheetName == "" {
		return errors.New(errors.ErrInvalidInput, "SHEET_NAME must not be empty")
	}
	if c.Output.FontSizePt <= 0 {
		return errors.New(errors.ErrInvalidInput, "FONT_SIZE_PT must be positive")
	}
	if c.Output.PreviewWidth <= 0 {
		return errors.New(errors.ErrInvalidInput, "PREVIEW_WIDTH must be positive")
	}
	if c.Output.ExportTimeout <= 0 {
		return errors.New(errors.ErrInvalidInput, "EXPORT_TIMEOUT must be positive")
	}
	switch strings.ToLower(c.Output.ReportPage) {
	case "a4", "letter":
	default:
		return errors.NewWithDetails(errors.ErrInvalidInput, "REPORT_PAGE must be A4 or letter", "", c.Output.ReportPage)
	}
	switch strings.ToLower(c.Output.ReportOrientation) {
	case "landscape", "portrait":
	default:
		return errors.NewWithDetails(errors.ErrInvalidInput, "REPORT_ORIENTATION must be landscape or portrait", "", c.Output.ReportOrientation)
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.New(errors.ErrInvalidInput, "MAX_UPLOAD_MB must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, errors.NewWithDetails(errors.ErrInvalidInput, key+" must be an integer", "", err.Error())
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, errors.NewWithDetails(errors.ErrInvalidInput, key+" must be a number", "", err.Error())
	}
	return f, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, errors.NewWithDetails(errors.ErrInvalidInput, key+" must be true or false", "", err.Error())
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.NewWithDetails(errors.ErrInvalidInput, key+" must be a duration such as 90s", "", err.Error())
	}
	return d, nil
}
