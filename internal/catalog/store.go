package catalog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrInputNotFound is returned when the catalog file does not exist.
var ErrInputNotFound = errors.New("catalog file not found")

// Format identifies a catalog encoding.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// DetectFormat picks the encoding from a file extension.
func DetectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return FormatCSV, nil
	case ".parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unsupported file format: %s (supported: .csv, .parquet)", ext)
	}
}

// FileStore reads and writes a catalog at a fixed path.
type FileStore struct {
	path   string
	format Format
}

// NewFileStore creates a store for path, detecting the format from its extension.
func NewFileStore(path string) (*FileStore, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	return &FileStore{path: path, format: format}, nil
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the catalog.
func (s *FileStore) Load() (*Catalog, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, s.path)
		}
		return nil, fmt.Errorf("failed to stat catalog: %w", err)
	}

	switch s.format {
	case FormatParquet:
		return readParquet(s.path)
	default:
		file, err := os.Open(s.path)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog file: %w", err)
		}
		defer file.Close()
		return ReadCSV(file)
	}
}

// Save writes the whole catalog. The file is written next to its target and
// renamed into place so a crash mid-write leaves the previous checkpoint intact.
func (s *FileStore) Save(cat *Catalog) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tempPath := s.path + ".tmp"
	out, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	var encode func(io.Writer, *Catalog) error
	switch s.format {
	case FormatParquet:
		encode = writeParquet
	default:
		encode = WriteCSV
	}

	if err := encode(out, cat); err != nil {
		out.Close()
		os.Remove(tempPath)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to move file: %w", err)
	}

	slog.Debug("Catalog saved", "path", s.path, "rows", cat.Len())
	return nil
}
