// Package validation checks the files bondscope reads and writes before any
// work starts on them.
package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Reasons a table file is rejected.
var (
	ErrPathNotSet          = errors.New("path not configured")
	ErrNotExist            = errors.New("file does not exist")
	ErrIsDirectory         = errors.New("path is a directory")
	ErrUnsupportedFormat   = errors.New("unsupported table format")
	ErrSpreadsheetLockFile = errors.New("spreadsheet lock file")
)

// TableExtensions lists the formats the loader can read.
var TableExtensions = []string{".xlsx", ".csv"}

// FileValidator checks data tables and output directories.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateTableFile checks that path names a readable .xlsx or .csv file that
// is not an office lock file.
func (v *FileValidator) ValidateTableFile(path string) error {
	if path == "" {
		return ErrPathNotSet
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Skipping spreadsheet lock file", slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrSpreadsheetLockFile, base)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supported(ext) {
		v.logger.Error("Table file has unsupported extension",
			slog.String("file", path),
			slog.String("extension", ext))
		return fmt.Errorf("%w %q (want %s)", ErrUnsupportedFormat, ext, strings.Join(TableExtensions, " or "))
	}

	return v.ValidateFile(path)
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrNotExist, path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file", slog.String("path", path))
		return fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Probe with a real write; permission bits alone miss read-only mounts.
	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

func supported(ext string) bool {
	for _, e := range TableExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
