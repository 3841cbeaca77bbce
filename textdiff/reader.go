// Package textdiff normalizes spreadsheet contents into stable text lines so
// two revisions of a workbook can be compared with an ordinary text differ.
package textdiff

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/javajack/xlbridge"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// RowSetReader iterates named row-sets (worksheets) and their rows in
// source order. It starts positioned before the first row-set.
type RowSetReader interface {
	// NextRowSet advances to the next row-set.
	NextRowSet() bool
	// Name of the current row-set; empty for unnamed sources.
	Name() string
	// NextRow advances to the next row of the current row-set.
	NextRow() bool
	// Values of the current row: nil, string, float64 or bool.
	Values() []any
	Err() error
	Close() error
}

// Open picks a reader by file extension: ".csv" files form a single unnamed
// row-set, anything else is read as an xlsx workbook.
func Open(path string) (RowSetReader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return OpenCSV(path)
	case ".xls":
		return nil, fmt.Errorf("%s: legacy .xls workbooks are not supported, save as .xlsx", path)
	}
	return OpenXLSX(path)
}

type xlsxReader struct {
	file   *excelize.File
	sheets []string
	idx    int
	rows   *excelize.Rows
	rowNum int
	values []any
	err    error
}

// OpenXLSX reads every worksheet of an xlsx workbook in workbook order.
// Cell values are raw (number formats are not applied).
func OpenXLSX(path string) (RowSetReader, error) {
	f, err := xlbridge.OpenWorkbook(path)
	if err != nil {
		return nil, err
	}
	return NewXLSXReader(f), nil
}

// NewXLSXReader reads an already open workbook. Close closes the workbook.
func NewXLSXReader(f *excelize.File) RowSetReader {
	return &xlsxReader{file: f, sheets: f.GetSheetList(), idx: -1}
}

func (x *xlsxReader) NextRowSet() bool {
	if x.err != nil {
		return false
	}
	x.closeRows()
	x.idx++
	if x.idx >= len(x.sheets) {
		return false
	}
	rows, err := x.file.Rows(x.sheets[x.idx])
	if err != nil {
		x.err = fmt.Errorf("read sheet %q: %w", x.sheets[x.idx], err)
		return false
	}
	x.rows, x.rowNum = rows, 0
	return true
}

func (x *xlsxReader) Name() string {
	if x.idx < 0 || x.idx >= len(x.sheets) {
		return ""
	}
	return x.sheets[x.idx]
}

func (x *xlsxReader) NextRow() bool {
	if x.rows == nil || x.err != nil {
		return false
	}
	if !x.rows.Next() {
		if err := x.rows.Error(); err != nil {
			x.err = fmt.Errorf("read sheet %q: %w", x.Name(), err)
		}
		return false
	}
	x.rowNum++
	cols, err := x.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		x.err = fmt.Errorf("read sheet %q row %d: %w", x.Name(), x.rowNum, err)
		return false
	}
	x.values = make([]any, len(cols))
	for i, raw := range cols {
		if raw == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, x.rowNum)
		if err != nil {
			x.err = err
			return false
		}
		typ, err := x.file.GetCellType(x.Name(), cell)
		if err != nil {
			x.err = fmt.Errorf("read %s!%s: %w", x.Name(), cell, err)
			return false
		}
		x.values[i] = xlbridge.TypedCellValue(raw, typ).Native()
	}
	return true
}

func (x *xlsxReader) Values() []any { return x.values }
func (x *xlsxReader) Err() error { return x.err }

func (x *xlsxReader) closeRows() {
	if x.rows != nil {
		x.rows.Close()
		x.rows = nil
	}
}

func (x *xlsxReader) Close() error {
	x.closeRows()
	return x.file.Close()
}

type csvReader struct {
	closer  io.Closer
	r       *csv.Reader
	started bool
	done    bool
	values  []any
	err     error
}

// OpenCSV reads a CSV file as one unnamed row-set. A leading UTF-8 or UTF-16
// byte order mark is honored and stripped.
func OpenCSV(path string) (RowSetReader, error) {
	fh, err := xlbridge.OpenShared(path)
	if err != nil {
		return nil, err
	}
	return NewCSVReader(fh), nil
}

// NewCSVReader reads CSV from r; Close closes r when it is an io.Closer.
func NewCSVReader(r io.Reader) RowSetReader {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	c := &csvReader{r: cr}
	if closer, ok := r.(io.Closer); ok {
		c.closer = closer
	}
	return c
}

func (c *csvReader) NextRowSet() bool {
	if c.started {
		c.done = true
		return false
	}
	c.started = true
	return true
}

func (c *csvReader) Name() string { return "" }

func (c *csvReader) NextRow() bool {
	if !c.started || c.done || c.err != nil {
		return false
	}
	rec, err := c.r.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			c.err = err
		}
		c.done = true
		return false
	}
	c.values = make([]any, len(rec))
	for i, s := range rec {
		c.values[i] = s
	}
	return true
}

func (c *csvReader) Values() []any { return c.values }
func (c *csvReader) Err() error { return c.err }

func (c *csvReader) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
