package replicates

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"repsig/domain/core"
	"repsig/domain/replicate"
	"repsig/internal"
)

// Source is a parsed replicate file together with its content hash
type Source struct {
	Path  string
	Hash  core.Hash
	Table *replicate.Table
}

// Reader loads replicate files from disk
type Reader struct {
	marker string
	logger *internal.Logger
}

// NewReader creates a reader recognising headers by marker
func NewReader(marker string, logger *internal.Logger) *Reader {
	if marker == "" {
		marker = DefaultMarker
	}
	return &Reader{marker: marker, logger: logger}
}

// ReadFile reads the whole file into memory and parses it
func (r *Reader) ReadFile(path string) (*Source, error) {
	start := time.Now()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replicate file: %w", err)
	}

	table, err := Parse(bytes.NewReader(data), r.marker)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	r.logger.Debug("[Reader] %s parsed in %.2fms (%d columns, %d rows, %d replicate groups)",
		path, float64(time.Since(start).Nanoseconds())/1e6, len(table.Columns), len(table.Rows), table.Groups())

	return &Source{
		Path:  path,
		Hash:  core.NewHash(data),
		Table: table,
	}, nil
}
