package claims

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/banshee-data/claims.report/internal/fsutil"
)

// CSVSource reads a delimited claims file through a fsutil.FileSystem into
// header + rows form.
type CSVSource struct {
	header []string
	rows   [][]string
}

// NewCSVSource opens and fully reads the CSV file at path. A missing file is
// returned as an error wrapping fs.ErrNotExist so callers can report it as a
// missing-input condition rather than a generic failure.
func NewCSVSource(fsys fsutil.FileSystem, path string) (*CSVSource, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open claims file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are handled during cleaning
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("claims file %s is empty", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read claims file: %w", err)
	}

	return &CSVSource{header: header, rows: rows}, nil
}

// Header returns the column names.
func (s *CSVSource) Header() []string { return s.header }

// Rows returns all data rows.
func (s *CSVSource) Rows() ([][]string, error) { return s.rows, nil }
