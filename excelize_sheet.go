package xlbridge

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelizeSheet implements Sheet over one worksheet of an excelize workbook.
type ExcelizeSheet struct {
	file   *excelize.File
	name   string
	merges []CellRange
	rows   int
	cols   int
}

// NewExcelizeSheet binds a worksheet of an open workbook.
func NewExcelizeSheet(f *excelize.File, name string) (*ExcelizeSheet, error) {
	if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", name)
	}
	s := &ExcelizeSheet{file: f, name: name}
	if err := s.refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenSheet opens a workbook read-shared and binds one of its worksheets.
// The caller owns the returned sheet and must Close it.
func OpenSheet(path, name string) (*ExcelizeSheet, error) {
	f, err := OpenWorkbook(path)
	if err != nil {
		return nil, err
	}
	s, err := NewExcelizeSheet(f, name)
	if err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// OpenWorkbook opens an xlsx workbook. A file that exists but cannot be
// opened yields an *IOConflictError.
func OpenWorkbook(path string) (*excelize.File, error) {
	fh, err := OpenShared(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	f, err := excelize.OpenReader(fh)
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// OpenShared opens a source file for reading only. A file that exists but
// cannot be opened yields an *IOConflictError.
func OpenShared(path string) (*os.File, error) {
	fh, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %q: %w", path, err)
		}
		return nil, &IOConflictError{Path: path, Err: err}
	}
	return fh, nil
}

// refresh reloads the used extent and merge list after the sheet changed.
func (s *ExcelizeSheet) refresh() error {
	rows, err := s.file.GetRows(s.name)
	if err != nil {
		return fmt.Errorf("read rows from sheet %q: %w", s.name, err)
	}
	s.rows, s.cols = len(rows), 0
	for _, r := range rows {
		s.cols = max(s.cols, len(r))
	}

	mcs, err := s.file.GetMergeCells(s.name)
	if err != nil {
		return fmt.Errorf("read merged cells from sheet %q: %w", s.name, err)
	}
	s.merges = s.merges[:0]
	for _, mc := range mcs {
		rng, err := ParseCellRange(mc.GetStartAxis() + ":" + mc.GetEndAxis())
		if err != nil {
			return fmt.Errorf("merged range in sheet %q: %w", s.name, err)
		}
		s.merges = append(s.merges, rng)
		s.rows = max(s.rows, rng.Last.Row+1)
		s.cols = max(s.cols, rng.Last.Col+1)
	}
	return nil
}

func (s *ExcelizeSheet) Name() string { return s.name }
func (s *ExcelizeSheet) UsedRows() int { return s.rows }
func (s *ExcelizeSheet) UsedColumns() int { return s.cols }
func (s *ExcelizeSheet) File() *excelize.File { return s.file }

// Close closes the underlying workbook.
func (s *ExcelizeSheet) Close() error { return s.file.Close() }

func (s *ExcelizeSheet) mergeAt(row, col int) (CellRange, bool) {
	for _, m := range s.merges {
		if m.Contains(row, col) {
			return m, true
		}
	}
	return CellRange{}, false
}

// hidden reports whether the cell is covered by a merge it does not anchor.
func (s *ExcelizeSheet) hidden(row, col int) bool {
	m, ok := s.mergeAt(row, col)
	return ok && (m.First.Row != row || m.First.Col != col)
}

func (s *ExcelizeSheet) CellText(row, col int) (string, error) {
	if s.hidden(row, col) {
		return "", nil
	}
	cell := NewCellRef(s.name, row, col).CellName()
	v, err := s.file.GetCellValue(s.name, cell)
	if err != nil {
		return "", fmt.Errorf("read %s!%s: %w", s.name, cell, err)
	}
	return v, nil
}

func (s *ExcelizeSheet) MergeSpan(row, col int) (int, int, bool) {
	m, ok := s.mergeAt(row, col)
	if !ok {
		return 1, 1, false
	}
	return m.Rows(), m.Cols(), true
}

// ReadRange reads raw cell values: numbers ignore their number format, so the
// result depends on cell contents only.
func (s *ExcelizeSheet) ReadRange(fromRow, toRow, fromCol, toCol int) ([][]Value, error) {
	out := make([][]Value, 0, max(0, toRow-fromRow+1))
	for r := fromRow; r <= toRow; r++ {
		row := make([]Value, 0, toCol-fromCol+1)
		for c := fromCol; c <= toCol; c++ {
			v, err := s.cellValue(r, c)
			if err != nil {
				return nil, err
			}
			row = append(row, v)
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *ExcelizeSheet) cellValue(row, col int) (Value, error) {
	if s.hidden(row, col) {
		return Empty(), nil
	}
	cell := NewCellRef(s.name, row, col).CellName()
	raw, err := s.file.GetCellValue(s.name, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return Value{}, fmt.Errorf("read %s!%s: %w", s.name, cell, err)
	}
	if raw == "" {
		return Empty(), nil
	}
	typ, err := s.file.GetCellType(s.name, cell)
	if err != nil {
		return Value{}, fmt.Errorf("read type of %s!%s: %w", s.name, cell, err)
	}
	return TypedCellValue(raw, typ), nil
}

// TypedCellValue converts a raw cell string to a Value using its cell type.
func TypedCellValue(raw string, typ excelize.CellType) Value {
	switch typ {
	case excelize.CellTypeBool:
		return Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeNumber, excelize.CellTypeDate, excelize.CellTypeUnset:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return Float(f)
		}
	}
	return String(raw)
}

// WriteRange writes rows of values starting at (fromRow, fromCol), one
// SetSheetRow call per row. Empty values clear their cell.
func (s *ExcelizeSheet) WriteRange(fromRow, fromCol int, values [][]Value) error {
	for i, row := range values {
		cells := make([]any, len(row))
		for j, v := range row {
			if !v.Scalar() {
				return fmt.Errorf("write %s: %s value does not fit a cell",
					NewCellRef(s.name, fromRow+i, fromCol+j), v.Kind())
			}
			cells[j] = v.Native()
		}
		start := NewCellRef(s.name, fromRow+i, fromCol).CellName()
		if err := s.file.SetSheetRow(s.name, start, &cells); err != nil {
			return fmt.Errorf("write row %s!%s: %w", s.name, start, err)
		}
	}
	return s.refresh()
}

// ClearRange clears cell contents while preserving each cell's style.
func (s *ExcelizeSheet) ClearRange(fromRow, toRow, fromCol, toCol int) error {
	for r := fromRow; r <= toRow; r++ {
		for c := fromCol; c <= toCol; c++ {
			cell := NewCellRef(s.name, r, c).CellName()
			styleID, _ := s.file.GetCellStyle(s.name, cell)
			if err := s.file.SetCellValue(s.name, cell, nil); err != nil {
				return fmt.Errorf("clear %s!%s: %w", s.name, cell, err)
			}
			if styleID > 0 {
				s.file.SetCellStyle(s.name, cell, cell, styleID)
			}
		}
	}
	return s.refresh()
}
