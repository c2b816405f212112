// Package sheet reads tabular sources (xlsx workbooks and CSV files) into
// catalog and roadmap inputs.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported table format")
	ErrMissingColumn     = errors.New("missing required column")
	ErrSheetNotFound     = errors.New("sheet not found")
)

// Table is a header row plus data rows. Header names are normalized to
// lower_snake_case.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string

	index map[string]int
}

func NewTable(name string, header []string, rows [][]string) *Table {
	t := &Table{Name: name, Header: make([]string, len(header)), Rows: rows, index: make(map[string]int, len(header))}
	for i, h := range header {
		n := NormalizeHeader(h)
		t.Header[i] = n
		if _, ok := t.index[n]; !ok {
			t.index[n] = i
		}
	}
	return t
}

func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.Join(strings.Fields(h), "_")
}

// Require reports every listed column absent from the header.
func (t *Table) Require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if _, ok := t.index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w in %s: %s", ErrMissingColumn, t.Name, strings.Join(missing, ", "))
	}
	return nil
}

func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Get returns the trimmed cell of a row, or "" when the column or cell is
// absent. Short rows are common in xlsx output.
func (t *Table) Get(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// First returns the value of the first listed column present in the header.
func (t *Table) First(row []string, cols ...string) string {
	for _, c := range cols {
		if t.Has(c) {
			return t.Get(row, c)
		}
	}
	return ""
}

// ReadFile loads one table from path. For workbooks an empty sheet name picks
// the first sheet; CSV files ignore the sheet name.
func ReadFile(path, sheet string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		wb, err := OpenWorkbook(path)
		if err != nil {
			return nil, err
		}
		defer wb.Close()
		return wb.Table(sheet)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(filepath.Base(path), f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func ReadCSV(name string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", name, err)
	}
	return fromRecords(name, records), nil
}

// Workbook wraps an open excelize file.
type Workbook struct {
	f *excelize.File
}

func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Workbook{f: f}, nil
}

func (w *Workbook) Close() error {
	return w.f.Close()
}

func (w *Workbook) Table(sheet string) (*Table, error) {
	if sheet == "" {
		sheet = w.f.GetSheetName(0)
	}
	if idx, err := w.f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return fromRecords(sheet, rows), nil
}

func fromRecords(name string, records [][]string) *Table {
	if len(records) == 0 {
		return NewTable(name, nil, nil)
	}
	var rows [][]string
	for _, r := range records[1:] {
		if blank(r) {
			continue
		}
		rows = append(rows, r)
	}
	return NewTable(name, records[0], rows)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
