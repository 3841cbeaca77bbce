package xlbridge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CellRef addresses one cell of a sheet.
type CellRef struct {
	Sheet string // sheet name (empty = current sheet)
	Row   int    // 0-based row index
	Col   int    // 0-based column index
}

// NewCellRef creates a CellRef with explicit sheet, row, col.
func NewCellRef(sheet string, row, col int) CellRef {
	return CellRef{Sheet: sheet, Row: row, Col: col}
}

// ParseCellRef parses a cell reference string like "A1", "Sheet1!B5", or "$A$1".
func ParseCellRef(s string) (CellRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CellRef{}, fmt.Errorf("empty cell reference")
	}

	var sheet string
	cellPart := s
	if idx := strings.LastIndex(s, "!"); idx >= 0 {
		sheet = strings.Trim(s[:idx], "'")
		cellPart = s[idx+1:]
	}

	cellPart = strings.ReplaceAll(cellPart, "$", "")
	col, row, err := parseCellName(cellPart)
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}
	return CellRef{Sheet: sheet, Row: row, Col: col}, nil
}

// parseCellName parses "A1" into col=0, row=0.
func parseCellName(name string) (col, row int, err error) {
	col, row, err = excelize.CellNameToCoordinates(name)
	if err != nil {
		return 0, 0, err
	}
	if row < 1 {
		return 0, 0, fmt.Errorf("invalid row in cell name: %q", name)
	}
	return col - 1, row - 1, nil
}

// String formats the CellRef as "Sheet1!A1" or "A1" if no sheet.
func (c CellRef) String() string {
	if c.Sheet != "" {
		return c.Sheet + "!" + c.CellName()
	}
	return c.CellName()
}

// CellName returns just the cell part like "A1" without sheet name.
func (c CellRef) CellName() string {
	return ColToName(c.Col) + strconv.Itoa(c.Row+1)
}

// ColToName converts a 0-based column index to a column name.
// 0→"A", 25→"Z", 26→"AA". Columns beyond the sheet limit yield "".
func ColToName(col int) string {
	name, _ := excelize.ColumnNumberToName(col + 1)
	return name
}

// NameToCol converts a column name to a 0-based column index.
// "A"→0, "Z"→25, "AA"→26
func NameToCol(name string) (int, error) {
	n, err := excelize.ColumnNameToNumber(name)
	if err != nil {
		return 0, err
	}
	return n - 1, nil
}

// CellRange is an inclusive rectangle of cells on one sheet.
type CellRange struct {
	First CellRef
	Last  CellRef
}

// ParseCellRange parses "A1:C5" or "Sheet1!A1:C5". A single cell yields a 1x1 range.
func ParseCellRange(s string) (CellRange, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	first, err := ParseCellRef(parts[0])
	if err != nil {
		return CellRange{}, err
	}
	last := first
	if len(parts) == 2 {
		if last, err = ParseCellRef(parts[1]); err != nil {
			return CellRange{}, err
		}
		if last.Sheet == "" {
			last.Sheet = first.Sheet
		}
	}
	return CellRange{First: first, Last: last}, nil
}

// Rows returns the number of rows covered.
func (r CellRange) Rows() int { return r.Last.Row - r.First.Row + 1 }

// Cols returns the number of columns covered.
func (r CellRange) Cols() int { return r.Last.Col - r.First.Col + 1 }

// Contains reports whether (row, col) lies inside the range.
func (r CellRange) Contains(row, col int) bool {
	return row >= r.First.Row && row <= r.Last.Row &&
		col >= r.First.Col && col <= r.Last.Col
}

// String formats the range as "A1:C5".
func (r CellRange) String() string {
	return r.First.CellName() + ":" + r.Last.CellName()
}
