// Package export serializes a dataset.Table to CSV, XLSX, Stata DTA or a SQL
// database, and reads CSV and XLSX files back into tables.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/synthtab-cli/internal/dataset"
	"github.com/KaramelBytes/synthtab-cli/internal/utils"
)

// Format names an export target.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	DTA  Format = "dta"
	SQL  Format = "sql"
)

// DefaultBaseName is the file stem used when no output path is given.
const DefaultBaseName = "synthetic_data"

// ErrUnsupportedFormat indicates a format with no registered writer.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat accepts a format name or one of its common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "xlsx", "excel":
		return XLSX, nil
	case "dta", "stata":
		return DTA, nil
	case "sql", "db", "database":
		return SQL, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath infers the file format from the path extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return CSV, nil
	case "xlsx":
		return XLSX, nil
	case "dta":
		return DTA, nil
	}
	return "", fmt.Errorf("%w: cannot infer format from %q", ErrUnsupportedFormat, path)
}

// DefaultFileName returns synthetic_data.<ext> for file formats and "" for SQL.
func (f Format) DefaultFileName() string {
	if f == SQL {
		return ""
	}
	return DefaultBaseName + "." + string(f)
}

// Writer serializes a whole table to w.
type Writer interface {
	Format() Format
	Write(w io.Writer, t *dataset.Table) error
}

var registry []Writer

// Register adds a writer. A later registration for the same format wins.
func Register(w Writer) {
	registry = append(registry, w)
}

// For returns the writer registered for f.
func For(f Format) (Writer, error) {
	for i := len(registry) - 1; i >= 0; i-- {
		if registry[i].Format() == f {
			return registry[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
}

// Encode renders t in format f into memory.
func Encode(f Format, t *dataset.Table) ([]byte, error) {
	w, err := For(f)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := w.Write(&buf, t); err != nil {
		return nil, fmt.Errorf("encode %s: %w", f, err)
	}
	return buf.Bytes(), nil
}

// WriteFile encodes t and writes it atomically to path.
func WriteFile(path string, f Format, t *dataset.Table) error {
	b, err := Encode(f, t)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return utils.SafeWriteFile(path, b)
}

func init() {
	Register(csvWriter{})
	Register(xlsxWriter{})
	Register(dtaWriter{})
}
