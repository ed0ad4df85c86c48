package export

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"

	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/dataset"
	"github.com/gabriellmelo/analise-exploratoria-tcc/internal/utils"
)

// Writer is implemented by every export destination.
type Writer interface {
	Write(ctx context.Context, v dataset.View) error
	Close() error
}

// Header returns the canonical column headers in export order.
func Header() []string {
	out := make([]string, len(dataset.Columns))
	for i, c := range dataset.Columns {
		out[i] = c.Header()
	}
	return out
}

// Row renders r in Header order; nulls become empty cells.
func Row(r dataset.Record) []string {
	out := make([]string, len(dataset.Columns))
	for i, c := range dataset.Columns {
		if s, ok := r.Value(c); ok {
			out[i] = s
		}
	}
	return out
}

// WriteCSV writes the header and every record of v to w.
func WriteCSV(w io.Writer, v dataset.View) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	var werr error
	v.Each(func(r dataset.Record) {
		if werr == nil {
			werr = cw.Write(Row(r))
		}
	})
	if werr != nil {
		return fmt.Errorf("csv: write row: %w", werr)
	}
	cw.Flush()
	return cw.Error()
}

// Fingerprint is the SHA-1 of the CSV rendering of v. Equal views give equal
// fingerprints regardless of how they were filtered.
func Fingerprint(v dataset.View) string {
	h := sha1.New()
	_ = WriteCSV(h, v)
	return hex.EncodeToString(h.Sum(nil))
}

// CSVFile writes views to a file path, creating intermediate directories. An
// existing file is replaced only once the whole view has been rendered.
type CSVFile struct {
	path string
}

// NewCSVFile prepares path for writing without touching an existing file.
func NewCSVFile(path string) (*CSVFile, error) {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVFile{path: path}, nil
}

func (c *CSVFile) Write(ctx context.Context, v dataset.View) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, v); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(c.path, buf.Bytes()); err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	return nil
}

func (c *CSVFile) Close() error { return nil }
