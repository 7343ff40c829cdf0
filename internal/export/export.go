// Package export writes flattened option chains to files.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jonandersen/schwab/pkg/chain"
)

// Saver writes a flattened chain to path.
type Saver interface {
	Save(rows chain.Rows, path string) error
	Extension() string
}

// Formats lists the supported export formats.
var Formats = []string{"csv", "json", "parquet"}

// New returns the saver for format (csv, json, parquet).
func New(format string) (Saver, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}, nil
	case "json":
		return JSONSaver{}, nil
	case "parquet":
		return ParquetSaver{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (use: %s)", format, strings.Join(Formats, ", "))
	}
}

// ForPath picks the saver from the file extension of path.
func ForPath(path string) (Saver, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("cannot infer export format from %q", path)
	}
	return New(ext)
}
